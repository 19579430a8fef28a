// Command glenside-cli is the thin demo glenside ships for its
// equality-saturation core: read a textual IR program, saturate it
// against the default rewrite rule library, and print the cheapest
// term the extractor finds.
//
// A program file is a sequence of tensor declarations, one per line
// ("NAME d0,d1,... [dtype]", dtype defaulting to f32), followed by a
// blank line and the single term to compile. "//" starts a line comment.
package main

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/fatih/color"

	"glenside"
	"glenside/internal/shape"
)

func main() {
	if len(os.Args) < 2 {
		fmt.Println("usage: glenside-cli <file>")
		os.Exit(1)
	}

	if err := run(os.Args[1]); err != nil {
		color.Red("%s", err)
		os.Exit(1)
	}
}

func run(path string) error {
	source, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read file: %w", err)
	}

	decls, termSrc, err := splitProgram(string(source))
	if err != nil {
		return err
	}

	tbl := glenside.NewSymbolTable()
	env := glenside.NewShapeEnv()
	for _, d := range decls {
		env.Declare(tbl.Intern(d.name), d.dims, d.dtype)
	}

	term, err := glenside.Parse(termSrc, tbl)
	if err != nil {
		return err
	}

	g := glenside.NewEGraph(tbl, env)
	root, err := glenside.AddTerm(g, term)
	if err != nil {
		return err
	}

	runner := glenside.NewRunner(g, glenside.DefaultRules(16), glenside.DefaultRunnerConfig())
	_, res := glenside.Run(context.Background(), runner)

	ex := glenside.NewExtractor(g, glenside.DefaultCost())
	best, err := glenside.Extract(ex, root)
	if err != nil {
		return err
	}

	fmt.Printf("input:  %s\n", glenside.Print(term, tbl))
	fmt.Printf("output: %s\n", glenside.Print(best, tbl))
	color.Green("saturation stopped: %s", res.Stop)
	return nil
}

type decl struct {
	name  string
	dims  []int64
	dtype shape.DType
}

// splitProgram separates a program file's leading declaration lines
// from its trailing term, the one line left once comments and blank
// lines are dropped.
func splitProgram(source string) ([]decl, string, error) {
	var decls []decl
	var termLine string
	for _, line := range strings.Split(source, "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "//") {
			continue
		}
		fields := strings.Fields(line)
		if len(fields) >= 2 && looksLikeDims(fields[1]) {
			d, err := parseDecl(fields)
			if err != nil {
				return nil, "", err
			}
			decls = append(decls, d)
			continue
		}
		termLine = line
	}
	if termLine == "" {
		return nil, "", fmt.Errorf("program has no term to compile")
	}
	return decls, termLine, nil
}

func looksLikeDims(field string) bool {
	_, err := strconv.ParseInt(strings.SplitN(field, ",", 2)[0], 10, 64)
	return err == nil
}

func parseDecl(fields []string) (decl, error) {
	dims := make([]int64, 0)
	for _, p := range strings.Split(fields[1], ",") {
		v, err := strconv.ParseInt(p, 10, 64)
		if err != nil {
			return decl{}, fmt.Errorf("bad dimension %q in declaration of %s: %w", p, fields[0], err)
		}
		dims = append(dims, v)
	}
	dtype := shape.F32
	if len(fields) >= 3 {
		var ok bool
		dtype, ok = dtypeByName(fields[2])
		if !ok {
			return decl{}, fmt.Errorf("unknown dtype %q in declaration of %s", fields[2], fields[0])
		}
	}
	return decl{name: fields[0], dims: dims, dtype: dtype}, nil
}

func dtypeByName(name string) (shape.DType, bool) {
	for _, d := range []shape.DType{shape.F32, shape.U8, shape.I8, shape.I32} {
		if d.String() == name {
			return d, true
		}
	}
	return 0, false
}
