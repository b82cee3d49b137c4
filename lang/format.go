package lang

import (
	"strconv"
	"strings"
)

// Binding strength of each syntactic level, lowest first.
const (
	precLambda = iota + 1
	precIf
	precOr
	precAnd
	precNot
	precCompare
	precAdd
	precMul
	precUnary
	precPow
	precAtom
)

func precedence(node Node) int {
	switch n := node.(type) {
	case *Lambda:
		return precLambda
	case *IfExp:
		return precIf
	case *BoolOp:
		if n.Op == OpAnd {
			return precAnd
		}

		return precOr
	case *UnaryOp:
		if n.Op == OpNot {
			return precNot
		}

		return precUnary
	case *Compare:
		return precCompare
	case *BinOp:
		switch n.Op {
		case OpAdd, OpSub:
			return precAdd
		case OpPow:
			return precPow
		default:
			return precMul
		}
	default:
		return precAtom
	}
}

// Format renders a tree back to expression source with the minimum of
// parentheses. Parsing the result yields an equivalent tree.
func Format(node Node) string {
	var sb strings.Builder

	format(&sb, node, precLambda)

	return sb.String()
}

// format writes node, parenthesized when it binds looser than minPrec.
func format(sb *strings.Builder, node Node, minPrec int) {
	prec := precedence(node)
	if prec < minPrec {
		sb.WriteByte('(')
		defer sb.WriteByte(')')
	}

	switch n := node.(type) {
	case *Literal:
		sb.WriteString(n.Value.String())

	case *Name:
		sb.WriteString(n.ID)

	case *ListLit:
		sb.WriteByte('[')
		formatList(sb, n.Elts)
		sb.WriteByte(']')

	case *TupleLit:
		sb.WriteByte('(')
		formatList(sb, n.Elts)

		if len(n.Elts) == 1 {
			sb.WriteByte(',')
		}

		sb.WriteByte(')')

	case *DictLit:
		sb.WriteByte('{')

		for i, item := range n.Items {
			if i > 0 {
				sb.WriteString(", ")
			}

			format(sb, item.Key, precLambda)
			sb.WriteString(": ")
			format(sb, item.Value, precLambda)
		}

		sb.WriteByte('}')

	case *UnaryOp:
		sb.WriteString(n.Op.String())

		if n.Op == OpNot {
			sb.WriteByte(' ')
		}

		format(sb, n.Operand, prec)

	case *BinOp:
		if n.Op == OpPow {
			format(sb, n.Left, precAtom)
			sb.WriteString(" ** ")
			format(sb, n.Right, precUnary)

			break
		}

		format(sb, n.Left, prec)
		sb.WriteString(" " + n.Op.String() + " ")
		format(sb, n.Right, prec+1)

	case *BoolOp:
		for i, v := range n.Values {
			if i > 0 {
				sb.WriteString(" " + n.Op.String() + " ")
			}

			format(sb, v, prec+1)
		}

	case *Compare:
		format(sb, n.Left, precAdd)

		for i, op := range n.Ops {
			sb.WriteString(" " + op.String() + " ")
			format(sb, n.Comparators[i], precAdd)
		}

	case *IfExp:
		format(sb, n.Body, precOr)
		sb.WriteString(" if ")
		format(sb, n.Test, precOr)
		sb.WriteString(" else ")
		format(sb, n.OrElse, precIf)

	case *Call:
		format(sb, n.Func, precAtom)
		sb.WriteByte('(')
		formatList(sb, n.Args)

		for i, kw := range n.Keywords {
			if i > 0 || len(n.Args) > 0 {
				sb.WriteString(", ")
			}

			sb.WriteString(kw.Name + "=")
			format(sb, kw.Value, precLambda)
		}

		sb.WriteByte(')')

	case *Subscript:
		format(sb, n.Value, precAtom)
		sb.WriteByte('[')
		format(sb, n.Index, precLambda)
		sb.WriteByte(']')

	case *Attribute:
		// 1.real would scan as a float
		if lit, ok := n.Value.(*Literal); ok && lit.Value.Kind == KindInt {
			sb.WriteString("(" + lit.Value.String() + ")")
		} else {
			format(sb, n.Value, precAtom)
		}

		sb.WriteByte('.')
		sb.WriteString(n.Attr)

	case *Lambda:
		sb.WriteString("lambda")

		if len(n.Params) > 0 {
			sb.WriteString(" " + strings.Join(n.Params, ", "))
		}

		sb.WriteString(": ")
		format(sb, n.Body, precLambda)
	}
}

func formatList(sb *strings.Builder, nodes []Node) {
	for i, n := range nodes {
		if i > 0 {
			sb.WriteString(", ")
		}

		format(sb, n, precLambda)
	}
}

// Dump renders the tree structure, one node per line, for debugging.
func Dump(node Node) string {
	var sb strings.Builder

	dump(&sb, node, "", 0)

	return sb.String()
}

func dump(sb *strings.Builder, node Node, label string, depth int) {
	sb.WriteString(strings.Repeat("  ", depth))

	if label != "" {
		sb.WriteString(label + ": ")
	}

	sb.WriteString(nodeName(node))

	switch n := node.(type) {
	case *Literal:
		sb.WriteString(" " + n.Value.String())
	case *Name:
		sb.WriteString(" " + n.ID)
	case *UnaryOp:
		sb.WriteString(" " + strconv.Quote(n.Op.String()))
	case *BinOp:
		sb.WriteString(" " + strconv.Quote(n.Op.String()))
	case *BoolOp:
		sb.WriteString(" " + strconv.Quote(n.Op.String()))
	case *Attribute:
		sb.WriteString(" ." + n.Attr)
	case *Lambda:
		sb.WriteString(" (" + strings.Join(n.Params, ", ") + ")")
	}

	sb.WriteString(" @" + node.Pos().String() + "\n")

	child := func(label string, c Node) { dump(sb, c, label, depth+1) }

	switch n := node.(type) {
	case *ListLit:
		for _, e := range n.Elts {
			child("", e)
		}
	case *TupleLit:
		for _, e := range n.Elts {
			child("", e)
		}
	case *DictLit:
		for _, item := range n.Items {
			child("key", item.Key)
			child("value", item.Value)
		}
	case *UnaryOp:
		child("", n.Operand)
	case *BinOp:
		child("", n.Left)
		child("", n.Right)
	case *BoolOp:
		for _, v := range n.Values {
			child("", v)
		}
	case *Compare:
		child("", n.Left)

		for i, op := range n.Ops {
			child(op.String(), n.Comparators[i])
		}
	case *IfExp:
		child("test", n.Test)
		child("body", n.Body)
		child("else", n.OrElse)
	case *Call:
		child("func", n.Func)

		for _, a := range n.Args {
			child("", a)
		}

		for _, kw := range n.Keywords {
			child(kw.Name, kw.Value)
		}
	case *Subscript:
		child("", n.Value)
		child("index", n.Index)
	case *Attribute:
		child("", n.Value)
	case *Lambda:
		child("body", n.Body)
	}
}

// nodeName returns the syntax class of a node, e.g. "BinOp".
func nodeName(node Node) string {
	switch node.(type) {
	case *Literal:
		return "Literal"
	case *Name:
		return "Name"
	case *ListLit:
		return "List"
	case *TupleLit:
		return "Tuple"
	case *DictLit:
		return "Dict"
	case *UnaryOp:
		return "UnaryOp"
	case *BinOp:
		return "BinOp"
	case *BoolOp:
		return "BoolOp"
	case *Compare:
		return "Compare"
	case *IfExp:
		return "IfExp"
	case *Call:
		return "Call"
	case *Subscript:
		return "Subscript"
	case *Attribute:
		return "Attribute"
	case *Lambda:
		return "Lambda"
	case nil:
		return "nil"
	default:
		return "Node"
	}
}
