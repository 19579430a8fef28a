package grammar

import (
	"strconv"

	"github.com/alecthomas/participle/v2/lexer"

	"glenside/internal/errors"
	"glenside/internal/ir"
	"glenside/internal/sym"
)

// Lower turns a parsed Program into a boxed ir.Term, resolving bare
// identifiers against tbl (spec §6: "Symbol references are bare
// identifiers").
func Lower(prog *Program, tbl *sym.Table) (*ir.Term, error) {
	return lowerNode(prog.Term, tbl)
}

func lowerNode(n *Node, tbl *sym.Table) (*ir.Term, error) {
	switch {
	case n.Number != nil:
		v, err := strconv.ParseInt(*n.Number, 10, 64)
		if err != nil {
			return nil, errors.NewParseError(toPosition(n.Pos), "a decimal integer literal", err)
		}
		return ir.Num(v), nil
	case n.Ident != nil:
		return ir.Tensor(tbl.Intern(*n.Ident)), nil
	case n.Form != nil:
		return lowerForm(n.Form, tbl)
	default:
		return nil, errors.NewParseError(toPosition(n.Pos), "a number, identifier or parenthesized form", nil)
	}
}

func lowerNum(n *Node) (int64, error) {
	if n.Number == nil {
		return 0, errors.NewParseError(toPosition(n.Pos), "a decimal integer literal", nil)
	}
	return strconv.ParseInt(*n.Number, 10, 64)
}

func lowerNums(nodes []*Node) ([]int64, error) {
	vals := make([]int64, len(nodes))
	for i, n := range nodes {
		v, err := lowerNum(n)
		if err != nil {
			return nil, err
		}
		vals[i] = v
	}
	return vals, nil
}

func lowerChildren(nodes []*Node, tbl *sym.Table) ([]*ir.Term, error) {
	terms := make([]*ir.Term, len(nodes))
	for i, n := range nodes {
		t, err := lowerNode(n, tbl)
		if err != nil {
			return nil, err
		}
		terms[i] = t
	}
	return terms, nil
}

// arity checks args against want, returning a ParseError that names the
// head and both argument counts if it does not match.
func arity(form *Form, want int) error {
	if len(form.Args) != want {
		return errors.NewParseError(toPosition(form.Pos), headArityMessage(form.Head, want, len(form.Args)), nil)
	}
	return nil
}

func headArityMessage(head string, want, got int) string {
	return head + " expects " + strconv.Itoa(want) + " argument(s), got " + strconv.Itoa(got)
}

func lowerForm(form *Form, tbl *sym.Table) (*ir.Term, error) {
	switch form.Head {
	case "shape":
		dims, err := lowerNums(form.Args)
		if err != nil {
			return nil, err
		}
		return ir.Shape(dims...), nil
	case "list":
		dims, err := lowerNums(form.Args)
		if err != nil {
			return nil, err
		}
		return ir.List(dims...), nil
	case "access":
		if err := arity(form, 2); err != nil {
			return nil, err
		}
		operand, err := lowerNode(form.Args[0], tbl)
		if err != nil {
			return nil, err
		}
		axis, err := lowerNum(form.Args[1])
		if err != nil {
			return nil, err
		}
		return ir.Access(operand, axis), nil
	case "access-transpose":
		if err := arity(form, 2); err != nil {
			return nil, err
		}
		operand, err := lowerNode(form.Args[0], tbl)
		if err != nil {
			return nil, err
		}
		axes, err := lowerNode(form.Args[1], tbl)
		if err != nil {
			return nil, err
		}
		return ir.AccessTranspose(operand, axes), nil
	case "access-reshape":
		if err := arity(form, 2); err != nil {
			return nil, err
		}
		operand, err := lowerNode(form.Args[0], tbl)
		if err != nil {
			return nil, err
		}
		newShape, err := lowerNode(form.Args[1], tbl)
		if err != nil {
			return nil, err
		}
		return ir.AccessReshape(operand, newShape), nil
	case "access-flatten":
		if err := arity(form, 1); err != nil {
			return nil, err
		}
		operand, err := lowerNode(form.Args[0], tbl)
		if err != nil {
			return nil, err
		}
		return ir.AccessFlatten(operand), nil
	case "access-slice":
		if err := arity(form, 4); err != nil {
			return nil, err
		}
		operand, err := lowerNode(form.Args[0], tbl)
		if err != nil {
			return nil, err
		}
		nums, err := lowerNums(form.Args[1:])
		if err != nil {
			return nil, err
		}
		return ir.AccessSlice(operand, nums[0], nums[1], nums[2]), nil
	case "access-concatenate":
		if err := arity(form, 3); err != nil {
			return nil, err
		}
		a, err := lowerNode(form.Args[0], tbl)
		if err != nil {
			return nil, err
		}
		b, err := lowerNode(form.Args[1], tbl)
		if err != nil {
			return nil, err
		}
		axis, err := lowerNum(form.Args[2])
		if err != nil {
			return nil, err
		}
		return ir.AccessConcatenate(a, b, axis), nil
	case "access-broadcast":
		if err := arity(form, 2); err != nil {
			return nil, err
		}
		operand, err := lowerNode(form.Args[0], tbl)
		if err != nil {
			return nil, err
		}
		newShape, err := lowerNode(form.Args[1], tbl)
		if err != nil {
			return nil, err
		}
		return ir.AccessBroadcast(operand, newShape), nil
	case "access-insert-axis":
		if err := arity(form, 2); err != nil {
			return nil, err
		}
		operand, err := lowerNode(form.Args[0], tbl)
		if err != nil {
			return nil, err
		}
		axis, err := lowerNum(form.Args[1])
		if err != nil {
			return nil, err
		}
		return ir.AccessInsertAxis(operand, axis), nil
	case "access-squeeze":
		if err := arity(form, 2); err != nil {
			return nil, err
		}
		operand, err := lowerNode(form.Args[0], tbl)
		if err != nil {
			return nil, err
		}
		axis, err := lowerNum(form.Args[1])
		if err != nil {
			return nil, err
		}
		return ir.AccessSqueeze(operand, axis), nil
	case "access-pad":
		if err := arity(form, 4); err != nil {
			return nil, err
		}
		operand, err := lowerNode(form.Args[0], tbl)
		if err != nil {
			return nil, err
		}
		nums, err := lowerNums(form.Args[1:])
		if err != nil {
			return nil, err
		}
		return ir.AccessPad(operand, nums[0], nums[1], nums[2]), nil
	case "access-windows":
		if err := arity(form, 3); err != nil {
			return nil, err
		}
		operand, err := lowerNode(form.Args[0], tbl)
		if err != nil {
			return nil, err
		}
		window, err := lowerNode(form.Args[1], tbl)
		if err != nil {
			return nil, err
		}
		stride, err := lowerNode(form.Args[2], tbl)
		if err != nil {
			return nil, err
		}
		return ir.AccessWindows(operand, window, stride), nil
	case "access-cartesian-product":
		if err := arity(form, 2); err != nil {
			return nil, err
		}
		a, err := lowerNode(form.Args[0], tbl)
		if err != nil {
			return nil, err
		}
		b, err := lowerNode(form.Args[1], tbl)
		if err != nil {
			return nil, err
		}
		return ir.AccessCartesianProduct(a, b), nil
	case "compute":
		if err := arity(form, 2); err != nil {
			return nil, err
		}
		if form.Args[0].Ident == nil {
			return nil, errors.NewParseError(toPosition(form.Args[0].Pos), "a compute operator name", nil)
		}
		op, ok := ir.ComputeOpByName(*form.Args[0].Ident)
		if !ok {
			return nil, errors.NewParseError(toPosition(form.Args[0].Pos), "a known compute operator", nil)
		}
		operand, err := lowerNode(form.Args[1], tbl)
		if err != nil {
			return nil, err
		}
		return ir.Compute(op, operand), nil
	case "systolic-array":
		if err := arity(form, 4); err != nil {
			return nil, err
		}
		r, err := lowerNum(form.Args[0])
		if err != nil {
			return nil, err
		}
		c, err := lowerNum(form.Args[1])
		if err != nil {
			return nil, err
		}
		activations, err := lowerNode(form.Args[2], tbl)
		if err != nil {
			return nil, err
		}
		weights, err := lowerNode(form.Args[3], tbl)
		if err != nil {
			return nil, err
		}
		return ir.SystolicArray(int(r), int(c), activations, weights), nil
	case "get-access-shape":
		if err := arity(form, 1); err != nil {
			return nil, err
		}
		operand, err := lowerNode(form.Args[0], tbl)
		if err != nil {
			return nil, err
		}
		return ir.GetAccessShape(operand), nil
	case "construct-tuple":
		items, err := lowerChildren(form.Args, tbl)
		if err != nil {
			return nil, err
		}
		return ir.ConstructTuple(items...), nil
	case "tuple-get-item":
		if err := arity(form, 2); err != nil {
			return nil, err
		}
		tuple, err := lowerNode(form.Args[0], tbl)
		if err != nil {
			return nil, err
		}
		index, err := lowerNum(form.Args[1])
		if err != nil {
			return nil, err
		}
		return ir.TupleGetItem(tuple, index), nil
	default:
		return nil, errors.NewParseError(toPosition(form.Pos), "a known tensor IR operator", nil)
	}
}

func toPosition(pos lexer.Position) errors.Position {
	return errors.Position{Line: pos.Line, Column: pos.Column, Offset: pos.Offset}
}
