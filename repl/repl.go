// Package repl is glenside's interactive driver: a read-eval-print loop
// over a single long-lived e-graph, for exploring how a rewrite rule
// library saturates a term and what the extractor picks out of it
// without writing a Go program or a throwaway file first.
package repl

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"

	"glenside"
	"glenside/internal/ir"
	"glenside/internal/shape"
)

const prompt = "glenside> "

// session holds the state one REPL conversation accumulates: the
// symbol table and shape environment every parsed term and declared
// tensor share, and the e-graph they are added to.
type session struct {
	tbl *glenside.SymbolTable
	env *glenside.ShapeEnv
	g   *glenside.EGraph
}

func newSession() *session {
	tbl := glenside.NewSymbolTable()
	env := glenside.NewShapeEnv()
	return &session{tbl: tbl, env: env, g: glenside.NewEGraph(tbl, env)}
}

// Start runs the loop, reading commands from in and writing prompts,
// results and diagnostics to out, until in is exhausted or ":quit" is
// read.
func Start(in io.Reader, out io.Writer) {
	scanner := bufio.NewScanner(in)
	sess := newSession()

	fmt.Fprintln(out, "glenside REPL: :help for commands")
	for {
		fmt.Fprint(out, prompt)
		if !scanner.Scan() {
			return
		}
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		err := sess.dispatch(line, out)
		if err == errQuit {
			return
		}
		if err != nil {
			fmt.Fprintf(out, "error: %s\n", err)
		}
	}
}

var errQuit = fmt.Errorf("quit")

func (s *session) dispatch(line string, out io.Writer) error {
	cmd, rest, _ := strings.Cut(line, " ")
	rest = strings.TrimSpace(rest)

	switch cmd {
	case ":help":
		printHelp(out)
		return nil
	case ":quit", ":q":
		return errQuit
	case ":decl":
		return s.cmdDecl(rest, out)
	case ":add":
		return s.cmdAdd(rest, out)
	case ":run":
		return s.cmdRun(rest, out)
	case ":extract":
		return s.cmdExtract(rest, out)
	case ":classes":
		return s.cmdClasses(out)
	default:
		return fmt.Errorf("unknown command %q (:help for a list)", cmd)
	}
}

func printHelp(out io.Writer) {
	fmt.Fprintln(out, `commands:
  :decl NAME d0,d1,... [dtype]   declare a tensor's shape and dtype (default f32)
  :add TERM                      parse a textual IR term and add it to the e-graph
  :run [iterLimit]                saturate with the default rewrite rules (default iterLimit 60)
  :extract CLASSID                extract and print the cheapest term in a class
  :classes                        list every e-class id and its e-node count
  :quit                            exit`)
}

func (s *session) cmdDecl(rest string, out io.Writer) error {
	fields := strings.Fields(rest)
	if len(fields) < 2 {
		return fmt.Errorf(":decl needs a name and a comma-separated shape, e.g. :decl A 4,16")
	}
	name := fields[0]
	dims, err := parseDims(fields[1])
	if err != nil {
		return err
	}
	dtype := shape.F32
	if len(fields) >= 3 {
		dtype, err = dtypeByName(fields[2])
		if err != nil {
			return err
		}
	}
	s.env.Declare(s.tbl.Intern(name), dims, dtype)
	fmt.Fprintf(out, "declared %s : %s%v\n", name, dtype, dims)
	return nil
}

func (s *session) cmdAdd(rest string, out io.Writer) error {
	if rest == "" {
		return fmt.Errorf(":add needs a term, e.g. :add (access A 0)")
	}
	term, err := glenside.Parse(rest, s.tbl)
	if err != nil {
		return err
	}
	id, err := glenside.AddTerm(s.g, term)
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "e-class %d\n", id)
	return nil
}

func (s *session) cmdRun(rest string, out io.Writer) error {
	cfg := glenside.DefaultRunnerConfig()
	if rest != "" {
		n, err := strconv.Atoi(rest)
		if err != nil {
			return fmt.Errorf(":run's argument must be an iteration count: %w", err)
		}
		cfg.IterLimit = n
	}
	runner := glenside.NewRunner(s.g, glenside.DefaultRules(16), cfg)
	_, res := glenside.Run(context.Background(), runner)
	fmt.Fprintf(out, "stopped: %s after %d iteration(s)\n", res.Stop, res.Iterations)
	return nil
}

func (s *session) cmdExtract(rest string, out io.Writer) error {
	n, err := strconv.Atoi(rest)
	if err != nil {
		return fmt.Errorf(":extract needs an e-class id: %w", err)
	}
	ex := glenside.NewExtractor(s.g, glenside.DefaultCost())
	term, err := glenside.Extract(ex, ir.EClassId(n))
	if err != nil {
		return err
	}
	fmt.Fprintln(out, glenside.Print(term, s.tbl))
	return nil
}

func (s *session) cmdClasses(out io.Writer) error {
	for _, id := range s.g.Classes() {
		fmt.Fprintf(out, "%d: %d e-node(s)\n", id, len(s.g.NodesOf(id)))
	}
	return nil
}

func parseDims(spec string) ([]int64, error) {
	parts := strings.Split(spec, ",")
	dims := make([]int64, len(parts))
	for i, p := range parts {
		v, err := strconv.ParseInt(p, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("bad dimension %q: %w", p, err)
		}
		dims[i] = v
	}
	return dims, nil
}

func dtypeByName(name string) (shape.DType, error) {
	for _, d := range []shape.DType{shape.F32, shape.U8, shape.I8, shape.I32} {
		if d.String() == name {
			return d, nil
		}
	}
	return 0, fmt.Errorf("unknown dtype %q", name)
}
