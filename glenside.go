// Package glenside is the public face of the tensor-IR equality
// saturation compiler: a thin, documented surface over the internal/
// packages that do the actual work (spec §6's "Programmatic API"),
// named the way this module is, so a caller only ever imports
// "glenside" rather than reaching into internal/ directly.
package glenside

import (
	"context"

	"glenside/grammar"
	"glenside/internal/egraph"
	"glenside/internal/errors"
	"glenside/internal/extract"
	"glenside/internal/interp"
	"glenside/internal/ir"
	"glenside/internal/pattern"
	"glenside/internal/rules"
	"glenside/internal/saturate"
	"glenside/internal/shape"
	"glenside/internal/sym"
)

// Term is a boxed tensor IR tree, built directly, parsed from the
// textual surface syntax, or returned by Extract.
type Term = ir.Term

// SymbolTable interns tensor and symbol names; an EGraph and the
// terms added to it must share one.
type SymbolTable = sym.Table

// ShapeEnv declares the shape and dtype of every tensor symbol an
// EGraph's terms may reference, checked by AddTerm.
type ShapeEnv = shape.Env

// NewSymbolTable returns an empty symbol table.
func NewSymbolTable() *SymbolTable { return sym.NewTable() }

// NewShapeEnv returns an empty shape environment.
func NewShapeEnv() *ShapeEnv { return shape.NewEnv() }

// Parse implements "parse(str) -> Term": it parses a single textual
// tensor IR term (spec §6) and resolves its symbol references against
// tbl.
func Parse(src string, tbl *SymbolTable) (*Term, error) {
	return grammar.Parse(src, tbl)
}

// Print implements "print(Term) -> str": Parse(Print(t)) reproduces t,
// and Print(Parse(s)) reproduces s up to whitespace.
func Print(t *Term, tbl *SymbolTable) string {
	return grammar.Print(t, tbl)
}

// EGraph is glenside's equality-saturation e-graph: hash-consed e-nodes
// grouped into e-classes, each carrying a shape.Value analysis.
type EGraph = egraph.EGraph

// NewEGraph creates an empty e-graph whose terms are interned against
// tbl and type-checked against env.
func NewEGraph(tbl *SymbolTable, env *ShapeEnv) *EGraph {
	return egraph.New(tbl, env)
}

// AddTerm implements "EGraph::add_term(Term) -> EClassId": it inserts a
// boxed term into g, recursively hash-consing every subterm, and
// returns the e-class id of its root.
func AddTerm(g *EGraph, t *Term) (ir.EClassId, error) {
	return g.Add(t)
}

// Rule is one rewrite rule a Runner saturates an e-graph with.
type Rule = pattern.Rule

// DefaultRules returns the standard rewrite rule library (internal/rules),
// parameterized by the tiling rule's fixed block size.
func DefaultRules(tileSize int) []Rule {
	return rules.Default(tileSize)
}

// RunnerConfig bounds a saturation run: iteration count, e-graph node
// count, wall-clock time, matches considered per rule per iteration, and
// the rule-banning backoff's base length.
type RunnerConfig = saturate.Config

// DefaultRunnerConfig returns the same starting budget internal/saturate
// uses when a caller supplies none of its own.
func DefaultRunnerConfig() RunnerConfig {
	return saturate.DefaultConfig()
}

// Runner drives equality saturation: repeatedly matching every rule
// against the current e-graph and applying every match, until no rule
// fires, or a configured limit is hit first.
type Runner = saturate.Runner

// StopReason reports why a Runner's Run stopped.
type StopReason = saturate.StopReason

// NewRunner implements "Runner::new(egraph, rules, config)".
func NewRunner(g *EGraph, rs []Rule, cfg RunnerConfig) *Runner {
	return saturate.New(g, rs, cfg)
}

// Run implements "...run() -> (egraph, StopReason)".
func Run(ctx context.Context, r *Runner) (*EGraph, saturate.Result) {
	return r.Run(ctx)
}

// Cost scores an e-node against the costs already computed for its
// children, for Extractor to minimize over each e-class.
type Cost = extract.Cost

// DefaultCost is the rule library's own notion of cost: a per-head-family
// weight summed over the term, with systolic-array's own weight
// discounted so a lowering costs less than the dot-product plus
// cartesian-product it replaces.
func DefaultCost() Cost {
	return extract.NewDefaultCost()
}

// Extractor picks, for each e-class, the cheapest well-typed e-node and
// the cheapest well-typed representative of each of its children,
// recursively.
type Extractor = extract.Extractor

// NewExtractor implements "Extractor::new(egraph, cost_fn)".
func NewExtractor(g *EGraph, cost Cost) *Extractor {
	return extract.New(g, cost)
}

// Extract implements "...extract(root) -> Term".
func Extract(e *Extractor, root ir.EClassId) (*Term, error) {
	return e.Extract(root)
}

// TensorValue is the runtime value Interpret evaluates a term down to: a
// concrete dense array plus its access-axis split, or (for an
// access-cartesian-product) the pair of operands kept apart.
type TensorValue = interp.Value

// InterpEnv binds the tensor symbols a term's leaves reference to
// concrete backing arrays, for Interpret to read.
type InterpEnv = interp.Env

// NewInterpEnv returns an empty interpreter environment.
func NewInterpEnv() *InterpEnv { return interp.NewEnv() }

// Interpret implements "interpret(term, env) -> TensorValue" (test-only,
// spec §6): it evaluates t directly against env's bindings, without
// going through an e-graph, so rewrite rules can be checked against it
// for ground truth.
func Interpret(t *Term, env *InterpEnv) (TensorValue, error) {
	return interp.Interpret(t, env)
}

// ParseError, TypeError and ExtractFailure are the error types Parse,
// AddTerm and Extract respectively may return (spec §7's diagnostic
// taxonomy). BudgetExceeded belongs to the same taxonomy, but Run returns
// no error: it reports why it stopped through Result.Stop.
type (
	ParseError     = errors.ParseError
	TypeError      = errors.TypeError
	BudgetExceeded = errors.BudgetExceeded
	ExtractFailure = errors.ExtractFailure
)
