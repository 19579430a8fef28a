package saturate

import (
	"context"
	"sort"
	"time"

	"github.com/google/uuid"

	"glenside/internal/egraph"
	"glenside/internal/ir"
	"glenside/internal/pattern"
)

// StopReason records why a run ended (spec §4.G).
type StopReason string

const (
	Saturated         StopReason = "Saturated"
	StoppedNodeLimit  StopReason = "NodeLimit"
	StoppedTimeLimit  StopReason = "TimeLimit"
	StoppedIterLimit  StopReason = "IterLimit"
	StoppedCancelled  StopReason = "CancelledByCaller"
)

// Result summarizes one Run.
type Result struct {
	RunID      uuid.UUID
	Iterations int
	Stop       StopReason
}

// Runner owns one e-graph, the rule set it saturates with, and the
// backoff state accumulated across iterations.
type Runner struct {
	g       *egraph.EGraph
	rules   []pattern.Rule
	cfg     Config
	backoff *BackoffScheduler
}

// New creates a Runner over g with the given rule set and budgets.
func New(g *egraph.EGraph, rules []pattern.Rule, cfg Config) *Runner {
	return &Runner{g: g, rules: rules, cfg: cfg, backoff: NewBackoffScheduler()}
}

type application struct {
	rule  pattern.Rule
	class ir.EClassId
	subst pattern.Subst
}

// Run executes the search/apply/rebuild loop until saturation, a budget
// is exhausted, or ctx is cancelled (spec §4.G: search every rule
// against the whole e-graph, apply every match found, rebuild, repeat).
// Cancellation is polled once per iteration, never mid-iteration, so a
// cancelled run still leaves the e-graph in a congruence-closed state.
func (r *Runner) Run(ctx context.Context) (*egraph.EGraph, Result) {
	runID := uuid.New()
	start := time.Now()

	for iter := 0; ; iter++ {
		if r.cfg.IterLimit > 0 && iter >= r.cfg.IterLimit {
			return r.g, Result{RunID: runID, Iterations: iter, Stop: StoppedIterLimit}
		}
		select {
		case <-ctx.Done():
			return r.g, Result{RunID: runID, Iterations: iter, Stop: StoppedCancelled}
		default:
		}
		if r.cfg.TimeLimit > 0 && time.Since(start) > r.cfg.TimeLimit {
			return r.g, Result{RunID: runID, Iterations: iter, Stop: StoppedTimeLimit}
		}
		if r.cfg.NodeLimit > 0 && r.nodeCount() > r.cfg.NodeLimit {
			return r.g, Result{RunID: runID, Iterations: iter, Stop: StoppedNodeLimit}
		}

		applications := r.search(iter)
		if len(applications) == 0 {
			return r.g, Result{RunID: runID, Iterations: iter, Stop: Saturated}
		}
		changed := r.apply(applications)
		// Rebuild never fails on a well-formed e-graph; a non-nil error
		// indicates a bug in the graph itself rather than a user mistake.
		if err := r.g.Rebuild(); err != nil {
			panic(err)
		}
		if !changed {
			// Every match this iteration re-derived an equivalence the
			// e-graph already has: the rule set has reached a fixed
			// point even though the matches themselves are nonempty.
			return r.g, Result{RunID: runID, Iterations: iter + 1, Stop: Saturated}
		}
	}
}

// search is the read phase: every rule is matched against the whole
// e-graph before anything is applied, so no rule observes a
// partially-rewritten graph within one iteration (spec §4.F, §8).
// Matched classes are visited in sorted order rather than MatchAll's map
// order, so applications build up in a stable, rule-declaration order
// (spec §5).
func (r *Runner) search(iter int) []application {
	var applications []application
	for _, rule := range r.rules {
		if !r.backoff.Available(rule.Name, iter) {
			continue
		}
		matches := rule.MatchAll(r.g)
		total := 0
		for _, substs := range matches {
			total += len(substs)
		}
		if r.cfg.MatchLimit > 0 && total > r.cfg.MatchLimit {
			r.backoff.Ban(rule.Name, iter, r.cfg.BanLength)
			continue
		}
		classes := make([]ir.EClassId, 0, len(matches))
		for class := range matches {
			classes = append(classes, class)
		}
		sort.Slice(classes, func(i, j int) bool { return classes[i] < classes[j] })
		for _, class := range classes {
			for _, s := range matches[class] {
				applications = append(applications, application{rule: rule, class: class, subst: s})
			}
		}
	}
	return applications
}

// apply is the write phase: every match found during search is applied
// and unioned with the class it matched, in the stable order search
// collected them in. The resulting partition doesn't depend on that
// order (union-find union is commutative and rebuild restores
// congruence afterward regardless), but the order is kept stable anyway
// per spec §5. It reports whether any application actually merged two
// previously distinct e-classes.
func (r *Runner) apply(applications []application) bool {
	changed := false
	for _, app := range applications {
		rhs, err := app.rule.Applier(app.subst, r.g)
		if err != nil {
			continue
		}
		if _, merged := r.g.Union(app.class, rhs); merged {
			changed = true
		}
	}
	return changed
}

func (r *Runner) nodeCount() int {
	total := 0
	for _, class := range r.g.Classes() {
		total += len(r.g.NodesOf(class))
	}
	return total
}
