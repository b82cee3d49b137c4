package lang

import "strconv"

// Node is an element of the abstract syntax tree produced by [Parse].
//
// Nodes are immutable once parsed; [Evaluate] never modifies them, so a parsed
// tree may be cached and evaluated concurrently.
type Node interface {
	// Pos returns the position of the node's first token.
	Pos() Position

	node()
}

// Op is an operator resolved at parse time.
type Op uint8

// Operators.
const (
	OpInvalid Op = iota

	// arithmetic
	OpAdd
	OpSub
	OpMul
	OpDiv
	OpFloorDiv
	OpMod
	OpPow

	// unary
	OpPos
	OpNeg
	OpNot

	// boolean
	OpAnd
	OpOr

	// comparison
	OpEq
	OpNotEq
	OpLt
	OpLtE
	OpGt
	OpGtE
	OpIn
	OpNotIn
	OpIs
	OpIsNot
)

var opText = [...]string{
	OpInvalid:  "<invalid>",
	OpAdd:      "+",
	OpSub:      "-",
	OpMul:      "*",
	OpDiv:      "/",
	OpFloorDiv: "//",
	OpMod:      "%",
	OpPow:      "**",
	OpPos:      "+",
	OpNeg:      "-",
	OpNot:      "not",
	OpAnd:      "and",
	OpOr:       "or",
	OpEq:       "==",
	OpNotEq:    "!=",
	OpLt:       "<",
	OpLtE:      "<=",
	OpGt:       ">",
	OpGtE:      ">=",
	OpIn:       "in",
	OpNotIn:    "not in",
	OpIs:       "is",
	OpIsNot:    "is not",
}

// String returns the operator's source text.
func (o Op) String() string {
	if int(o) < len(opText) {
		return opText[o]
	}

	return "Op(" + strconv.Itoa(int(o)) + ")"
}

// Operator lookup tables keyed by token text. They are built once and never
// modified.
//
//nolint:gochecknoglobals
var (
	additiveOps = map[string]Op{"+": OpAdd, "-": OpSub}

	multiplicativeOps = map[string]Op{
		"*": OpMul, "/": OpDiv, "//": OpFloorDiv, "%": OpMod,
	}

	unaryOps = map[string]Op{"+": OpPos, "-": OpNeg}

	comparisonOps = map[string]Op{
		"==": OpEq, "!=": OpNotEq,
		"<": OpLt, "<=": OpLtE, ">": OpGt, ">=": OpGtE,
		"in": OpIn, "not in": OpNotIn, "is": OpIs, "is not": OpIsNot,
	}
)

// Literal is a constant: number, string, boolean or None.
type Literal struct {
	Position Position
	Value    Value
}

// Name is an identifier reference.
type Name struct {
	Position Position
	ID       string
}

// ListLit is a list display [a, b, ...].
type ListLit struct {
	Position Position
	Elts     []Node
}

// TupleLit is a tuple display (a, b, ...).
type TupleLit struct {
	Position Position
	Elts     []Node
}

// DictItem is one key/value pair of a [DictLit].
type DictItem struct {
	Key   Node
	Value Node
}

// DictLit is a dict display {k: v, ...}.
type DictLit struct {
	Position Position
	Items    []DictItem
}

// UnaryOp is a prefix operation: +x, -x or not x.
type UnaryOp struct {
	Position Position
	Op       Op
	Operand  Node
}

// BinOp is an arithmetic operation.
type BinOp struct {
	Position Position
	Op       Op
	Left     Node
	Right    Node
}

// BoolOp is a flattened chain of one boolean operator: a and b and c.
type BoolOp struct {
	Position Position
	Op       Op
	Values   []Node
}

// Compare is a flattened comparison chain: Left Ops[0] Comparators[0] ...
type Compare struct {
	Position    Position
	Left        Node
	Ops         []Op
	Comparators []Node
}

// IfExp is a conditional expression: Body if Test else OrElse.
type IfExp struct {
	Position Position
	Test     Node
	Body     Node
	OrElse   Node
}

// KeywordArg is a keyword argument name=value of a [Call].
type KeywordArg struct {
	Name  string
	Value Node
}

// Call is a function call.
type Call struct {
	Position Position
	Func     Node
	Args     []Node
	Keywords []KeywordArg
}

// Subscript is an index or key lookup: Value[Index].
type Subscript struct {
	Position Position
	Value    Node
	Index    Node
}

// Attribute is an attribute reference: Value.Attr.
type Attribute struct {
	Position Position
	Value    Node
	Attr     string
}

// Lambda is a lambda literal. It is recognized by the parser so that it can be
// reported as unsupported during evaluation.
type Lambda struct {
	Position Position
	Params   []string
	Body     Node
}

func (n *Literal) Pos() Position   { return n.Position }
func (n *Name) Pos() Position      { return n.Position }
func (n *ListLit) Pos() Position   { return n.Position }
func (n *TupleLit) Pos() Position  { return n.Position }
func (n *DictLit) Pos() Position   { return n.Position }
func (n *UnaryOp) Pos() Position   { return n.Position }
func (n *BinOp) Pos() Position     { return n.Position }
func (n *BoolOp) Pos() Position    { return n.Position }
func (n *Compare) Pos() Position   { return n.Position }
func (n *IfExp) Pos() Position     { return n.Position }
func (n *Call) Pos() Position      { return n.Position }
func (n *Subscript) Pos() Position { return n.Position }
func (n *Attribute) Pos() Position { return n.Position }
func (n *Lambda) Pos() Position    { return n.Position }

func (*Literal) node()   {}
func (*Name) node()      {}
func (*ListLit) node()   {}
func (*TupleLit) node()  {}
func (*DictLit) node()   {}
func (*UnaryOp) node()   {}
func (*BinOp) node()     {}
func (*BoolOp) node()    {}
func (*Compare) node()   {}
func (*IfExp) node()     {}
func (*Call) node()      {}
func (*Subscript) node() {}
func (*Attribute) node() {}
func (*Lambda) node()    {}
