// Package interp is a reference interpreter for glenside's tensor IR: it
// walks a boxed ir.Term directly (not an e-graph) and executes it against
// concrete backing data, using gorgonia.org/tensor's *tensor.Dense as the
// runtime array representation. It exists to give rewrite rules a ground
// truth: two terms a rule claims are equivalent should evaluate to the
// same numbers.
package interp

import (
	"fmt"

	gtensor "gorgonia.org/tensor"

	"glenside/internal/sym"
)

// Env binds the tensor symbols a term's KindTensor leaves reference to
// concrete backing arrays. A term cannot be interpreted until every
// tensor it mentions is bound, mirroring shape.Env's declare-before-use
// requirement for shape analysis.
type Env struct {
	tensors map[sym.Symbol]*gtensor.Dense
}

// NewEnv creates an empty binding environment.
func NewEnv() *Env {
	return &Env{tensors: make(map[sym.Symbol]*gtensor.Dense)}
}

// Bind constructs a dense f32 tensor of the given shape from row-major
// backing data and records it under name.
func (e *Env) Bind(name sym.Symbol, shape []int64, data []float32) error {
	dims := make([]int, len(shape))
	for i, d := range shape {
		dims[i] = int(d)
	}
	if want := productInt(dims); want != len(data) {
		return fmt.Errorf("interp: tensor has shape %v (%d elements) but %d values were given", dims, want, len(data))
	}
	e.tensors[name] = gtensor.New(gtensor.WithShape(dims...), gtensor.WithBacking(data))
	return nil
}

// BindDense records an already-built dense tensor directly, used by
// callers (and tests) that already hold a *tensor.Dense.
func (e *Env) BindDense(name sym.Symbol, t *gtensor.Dense) {
	e.tensors[name] = t
}

func (e *Env) lookup(name sym.Symbol) (*gtensor.Dense, bool) {
	t, ok := e.tensors[name]
	return t, ok
}

func productInt(dims []int) int {
	p := 1
	for _, d := range dims {
		p *= d
	}
	return p
}
