// Package egraph implements the e-graph: a hash-consed, congruence-closed
// store of e-nodes grouped into e-classes, each e-class annotated with a
// shape/dtype analysis value (spec §2 "E-graph core", §3, §8).
package egraph

import (
	"fmt"
	"sort"

	pkgerrors "github.com/pkg/errors"

	"glenside/internal/errors"
	"glenside/internal/ir"
	"glenside/internal/shape"
	"glenside/internal/sym"
	"glenside/internal/unionfind"
)

// parentEntry remembers, for one of a class's e-nodes, the node itself
// (so Rebuild can re-canonicalize its children) and which class owns it.
type parentEntry struct {
	node  ir.Node
	owner unionfind.Id
}

// class holds the e-nodes and analysis value belonging to one e-class,
// plus the set of parent e-nodes (in any class) that have this class
// among their children — the frontier Rebuild repairs outward from.
type class struct {
	nodes   map[string]ir.Node
	data    shape.Value
	parents map[string]parentEntry
}

// EGraph is the union-find-backed e-node/e-class store. It owns the
// tensor declaration environment a KindTensor leaf's shape is looked up
// in, and holds the symbol table its terms were interned against (error
// messages name a node by its head only).
type EGraph struct {
	uf       *unionfind.UnionFind
	classes  map[unionfind.Id]*class
	hashcons map[string]unionfind.Id

	env *shape.Env
	tbl *sym.Table

	dirty []unionfind.Id // e-classes touched since the last Rebuild
}

// New creates an empty e-graph. tbl is stored with the e-graph but not
// read by it; env declares the tensors terms added to this e-graph may reference.
func New(tbl *sym.Table, env *shape.Env) *EGraph {
	return &EGraph{
		uf:       unionfind.New(),
		classes:  make(map[unionfind.Id]*class),
		hashcons: make(map[string]unionfind.Id),
		env:      env,
		tbl:      tbl,
	}
}

// Find returns the canonical id of the e-class id currently belongs to.
func (g *EGraph) Find(id ir.EClassId) ir.EClassId {
	return ir.EClassId(g.uf.Find(unionfind.Id(id)))
}

// Classes returns every live (canonical) e-class id, in ascending order.
// Callers (the extractor, the saturation runner) fold over this result,
// so a stable order is required for run-to-run determinism (spec §5,
// §8.4) rather than whatever order a map range happens to produce.
func (g *EGraph) Classes() []ir.EClassId {
	ids := make([]ir.EClassId, 0, len(g.classes))
	for id := range g.classes {
		if g.uf.Find(id) == id {
			ids = append(ids, ir.EClassId(id))
		}
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

// NodesOf returns the e-nodes belonging to class (must already be
// canonical; callers typically call Find first), ordered by their
// canonical hash-cons key rather than map iteration order, so that two
// equal-cost e-nodes in a class are always visited in the same order
// (spec §5, §8.4 determinism).
func (g *EGraph) NodesOf(id ir.EClassId) []ir.Node {
	c, ok := g.classes[unionfind.Id(id)]
	if !ok {
		return nil
	}
	keys := make([]string, 0, len(c.nodes))
	for k := range c.nodes {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	nodes := make([]ir.Node, len(keys))
	for i, k := range keys {
		nodes[i] = c.nodes[k]
	}
	return nodes
}

// AnalysisOf returns the canonical class's current analysis value.
func (g *EGraph) AnalysisOf(id ir.EClassId) shape.Value {
	canon := g.uf.Find(unionfind.Id(id))
	return g.classes[canon].data
}

// nodeKey canonicalizes a node (head plus canonical child ids) into a
// string usable as a hash-cons key. Two e-nodes with equal Head and
// pairwise-Find-equal children must map to the same key (spec §3
// "E-node", §8 hash-cons invariant).
func nodeKey(n ir.Node) string {
	key := fmt.Sprintf("%#v", n.Head)
	for _, c := range n.Children {
		key += fmt.Sprintf(":%d", c)
	}
	return key
}

func canonicalize(uf *unionfind.UnionFind, n ir.Node) ir.Node {
	children := make([]ir.EClassId, len(n.Children))
	for i, c := range n.Children {
		children[i] = ir.EClassId(uf.Find(unionfind.Id(c)))
	}
	return ir.Node{Head: n.Head, Children: children}
}

// Add inserts a term (and, recursively, its subterms) into the e-graph,
// returning the e-class id of its root. Structural well-formedness
// violations are raised immediately as a TypeError (spec §7
// "well-formedness violations ... surfaced to the caller at construction
// time").
func (g *EGraph) Add(t *ir.Term) (ir.EClassId, error) {
	childIds := make([]ir.EClassId, len(t.Children))
	childVals := make([]shape.Value, len(t.Children))
	for i, c := range t.Children {
		id, err := g.Add(c)
		if err != nil {
			return 0, err
		}
		childIds[i] = g.Find(id)
		childVals[i] = g.AnalysisOf(childIds[i])
	}

	node := ir.Node{Head: t.Head, Children: childIds}
	key := nodeKey(node)
	if canon, ok := g.hashcons[key]; ok {
		return ir.EClassId(canon), nil
	}

	val, err := shape.Make(g.env, t.Head, childVals)
	if err != nil {
		te, _ := errors.NewTypeError(t.Head.Name(), err.Error(), errors.ErrorShapeMismatch, errors.Position{})
		return 0, pkgerrors.WithStack(te)
	}

	id := g.uf.MakeSet()
	g.classes[id] = &class{
		nodes:   map[string]ir.Node{key: node},
		data:    val,
		parents: make(map[string]parentEntry),
	}
	g.hashcons[key] = id

	for _, cid := range childIds {
		canon := g.uf.Find(unionfind.Id(cid))
		g.classes[canon].parents[key] = parentEntry{node: node, owner: id}
	}

	return ir.EClassId(id), nil
}

// AddNode inserts a single already-matched e-node (children already
// e-class ids) without recursing, used by the pattern applier to build a
// rewrite's right-hand side out of e-classes already present in the
// e-graph (spec §4.E "Applier: builds new e-nodes ... from bound
// variables and literals").
func (g *EGraph) AddNode(head ir.Head, children []ir.EClassId) (ir.EClassId, error) {
	canonChildren := make([]ir.EClassId, len(children))
	childVals := make([]shape.Value, len(children))
	for i, c := range children {
		canonChildren[i] = g.Find(c)
		childVals[i] = g.AnalysisOf(canonChildren[i])
	}
	node := ir.Node{Head: head, Children: canonChildren}
	key := nodeKey(node)
	if canon, ok := g.hashcons[key]; ok {
		return ir.EClassId(canon), nil
	}

	val, err := shape.Make(g.env, head, childVals)
	if err != nil {
		te, _ := errors.NewTypeError(head.Name(), err.Error(), errors.ErrorShapeMismatch, errors.Position{})
		return 0, pkgerrors.WithStack(te)
	}

	id := g.uf.MakeSet()
	g.classes[id] = &class{
		nodes:   map[string]ir.Node{key: node},
		data:    val,
		parents: make(map[string]parentEntry),
	}
	g.hashcons[key] = id
	for _, cid := range canonChildren {
		canon := g.uf.Find(unionfind.Id(cid))
		g.classes[canon].parents[key] = parentEntry{node: node, owner: id}
	}
	return ir.EClassId(id), nil
}

// Union merges the e-classes a and b, folding their analysis values with
// shape.Merge and scheduling the result for the next Rebuild.
func (g *EGraph) Union(a, b ir.EClassId) (ir.EClassId, bool) {
	ca, cb := g.uf.Find(unionfind.Id(a)), g.uf.Find(unionfind.Id(b))
	if ca == cb {
		return ir.EClassId(ca), false
	}

	merged, _ := shape.Merge(g.classes[ca].data, g.classes[cb].data)

	root, changed := g.uf.Union(ca, cb)
	if !changed {
		return ir.EClassId(ca), false
	}
	survivor, absorbed := ca, cb
	if unionfind.Id(root) == cb {
		survivor, absorbed = cb, ca
	}

	sc, ac := g.classes[survivor], g.classes[absorbed]
	for k, n := range ac.nodes {
		sc.nodes[k] = n
	}
	for k, p := range ac.parents {
		sc.parents[k] = p
	}
	sc.data = merged
	delete(g.classes, absorbed)

	g.dirty = append(g.dirty, survivor)
	return ir.EClassId(survivor), true
}

// Rebuild restores the hash-cons and congruence invariants after a batch
// of Union calls: every e-node's children are re-canonicalized, nodes
// that collapse into duplicates are merged into one class, and merges
// discovered this way are repaired transitively (spec §3 "rebuild",
// spec §8 "hash-cons is a bijection" and congruence closure).
func (g *EGraph) Rebuild() error {
	for len(g.dirty) > 0 {
		todo := g.dirty
		g.dirty = nil

		seen := make(map[unionfind.Id]bool)
		for _, id := range todo {
			canon := g.uf.Find(id)
			if seen[canon] {
				continue
			}
			seen[canon] = true
			g.repair(canon)
		}
	}
	return nil
}

// repair re-canonicalizes class id's recorded parent e-nodes, merging
// any two that become identical once their children are canonicalized
// and re-registering each survivor as a parent of its (now-canonical)
// children so the next round of dirt propagates correctly.
func (g *EGraph) repair(id unionfind.Id) {
	c, ok := g.classes[id]
	if !ok {
		return
	}
	oldParents := c.parents
	c.parents = make(map[string]parentEntry)

	seenKey := make(map[string]unionfind.Id, len(oldParents))
	for oldKey, p := range oldParents {
		delete(g.hashcons, oldKey)
		canonNode := canonicalize(g.uf, p.node)
		newKey := nodeKey(canonNode)
		owner := g.uf.Find(p.owner)

		if existing, dup := seenKey[newKey]; dup && existing != owner {
			merged, _ := g.Union(ir.EClassId(existing), ir.EClassId(owner))
			owner = unionfind.Id(merged)
		}
		seenKey[newKey] = owner

		g.hashcons[newKey] = owner
		ownerClass, ok := g.classes[owner]
		if !ok {
			continue
		}
		delete(ownerClass.nodes, oldKey)
		ownerClass.nodes[newKey] = canonNode
		for _, ch := range canonNode.Children {
			chCanon := g.uf.Find(unionfind.Id(ch))
			if chClass, ok := g.classes[chCanon]; ok {
				chClass.parents[newKey] = parentEntry{node: canonNode, owner: owner}
			}
		}
	}
}
