package extract

import (
	"glenside/internal/egraph"
	"glenside/internal/errors"
	"glenside/internal/ir"
	"glenside/internal/shape"
)

type best struct {
	cost float64
	node ir.Node
}

// Extractor finds, for any e-class in an e-graph, the cheapest
// well-typed term it can represent, per a caller-supplied Cost (spec
// §4.H).
type Extractor struct {
	g    *egraph.EGraph
	cost Cost
}

// New creates an Extractor over g using cost.
func New(g *egraph.EGraph, cost Cost) *Extractor {
	return &Extractor{g: g, cost: cost}
}

// Extract returns the cheapest term rooted at root's e-class, or an
// ExtractFailure if root's class (or one it transitively needs) has no
// finite-cost, well-typed representative (spec §4.H, §7).
func (e *Extractor) Extract(root ir.EClassId) (*ir.Term, error) {
	bestOf := e.computeBest()
	return e.build(bestOf, e.g.Find(root))
}

// computeBest runs a Bellman-Ford-style fixed point over every e-class:
// an e-node's cost is only known once all its children's best costs are
// known, so classes are revisited until a full pass makes no further
// improvement. Classes whose analysis is shape.NotAType are excluded
// from consideration entirely (spec §3 "excluded from extraction but
// never deleted").
func (e *Extractor) computeBest() map[ir.EClassId]best {
	bestOf := make(map[ir.EClassId]best)
	classes := e.g.Classes()

	for pass := 0; pass <= len(classes); pass++ {
		changed := false
		for _, class := range classes {
			if e.g.AnalysisOf(class).Type.Kind == shape.NotAType {
				continue
			}
			for _, node := range e.g.NodesOf(class) {
				childCosts := make([]float64, len(node.Children))
				resolved := true
				for i, ch := range node.Children {
					cb, ok := bestOf[e.g.Find(ch)]
					if !ok {
						resolved = false
						break
					}
					childCosts[i] = cb.cost
				}
				if !resolved {
					continue
				}
				c := e.cost.NodeCost(node.Head, childCosts)
				if cur, ok := bestOf[class]; !ok || c < cur.cost {
					bestOf[class] = best{cost: c, node: node}
					changed = true
				}
			}
		}
		if !changed {
			break
		}
	}
	return bestOf
}

func (e *Extractor) build(bestOf map[ir.EClassId]best, class ir.EClassId) (*ir.Term, error) {
	canon := e.g.Find(class)
	b, ok := bestOf[canon]
	if !ok {
		return nil, errors.NewExtractFailure(int(canon))
	}
	children := make([]*ir.Term, len(b.node.Children))
	for i, ch := range b.node.Children {
		child, err := e.build(bestOf, ch)
		if err != nil {
			return nil, err
		}
		children[i] = child
	}
	return &ir.Term{Head: b.node.Head, Children: children}, nil
}
