package lang

import (
	"errors"
	"strings"
	"testing"
)

func mustParse(t *testing.T, source string, opts ...Option) Node {
	t.Helper()

	tokens, err := Tokenize(source)
	if err != nil {
		t.Fatalf("Tokenize(%q) error: %v", source, err)
	}

	node, err := Parse(t.Context(), tokens, opts...)
	if err != nil {
		t.Fatalf("Parse(%q) error: %v", source, err)
	}

	return node
}

func parseErr(t *testing.T, source string, opts ...Option) error {
	t.Helper()

	tokens, err := Tokenize(source)
	if err != nil {
		return err
	}

	_, err = Parse(t.Context(), tokens, opts...)

	return err
}

func TestParse_Precedence(t *testing.T) {
	t.Parallel()

	node := mustParse(t, "1 + 2 * 3")

	add, ok := node.(*BinOp)
	if !ok || add.Op != OpAdd {
		t.Fatalf("root = %s, want BinOp +", Dump(node))
	}

	if mul, ok := add.Right.(*BinOp); !ok || mul.Op != OpMul {
		t.Errorf("right = %s, want BinOp *", Dump(add.Right))
	}
}

func TestParse_PowerBindsTighterThanUnaryMinus(t *testing.T) {
	t.Parallel()

	node := mustParse(t, "-2 ** 2")

	neg, ok := node.(*UnaryOp)
	if !ok || neg.Op != OpNeg {
		t.Fatalf("root = %s, want UnaryOp -", Dump(node))
	}

	if pow, ok := neg.Operand.(*BinOp); !ok || pow.Op != OpPow {
		t.Errorf("operand = %s, want BinOp **", Dump(neg.Operand))
	}
}

func TestParse_PowerIsRightAssociative(t *testing.T) {
	t.Parallel()

	node := mustParse(t, "2 ** 3 ** 2")

	pow, ok := node.(*BinOp)
	if !ok || pow.Op != OpPow {
		t.Fatalf("root = %s", Dump(node))
	}

	if _, ok := pow.Left.(*Literal); !ok {
		t.Errorf("left = %s, want literal", Dump(pow.Left))
	}

	if inner, ok := pow.Right.(*BinOp); !ok || inner.Op != OpPow {
		t.Errorf("right = %s, want BinOp **", Dump(pow.Right))
	}
}

func TestParse_ComparisonChain(t *testing.T) {
	t.Parallel()

	node := mustParse(t, "1 < x <= 3 not in y")

	c, ok := node.(*Compare)
	if !ok {
		t.Fatalf("root = %s, want Compare", Dump(node))
	}

	want := []Op{OpLt, OpLtE, OpNotIn}
	if len(c.Ops) != len(want) || len(c.Comparators) != len(want) {
		t.Fatalf("ops = %v, comparators = %d", c.Ops, len(c.Comparators))
	}

	for i, op := range want {
		if c.Ops[i] != op {
			t.Errorf("op %d = %v, want %v", i, c.Ops[i], op)
		}
	}
}

func TestParse_BoolChainsFlatten(t *testing.T) {
	t.Parallel()

	node := mustParse(t, "a or b or c and d")

	or, ok := node.(*BoolOp)
	if !ok || or.Op != OpOr || len(or.Values) != 3 {
		t.Fatalf("root = %s, want 3-way or", Dump(node))
	}

	if and, ok := or.Values[2].(*BoolOp); !ok || and.Op != OpAnd {
		t.Errorf("third operand = %s, want and", Dump(or.Values[2]))
	}
}

func TestParse_Containers(t *testing.T) {
	t.Parallel()

	tests := []struct {
		source string
		kind   string
		size   int
	}{
		{"()", "Tuple", 0},
		{"(1)", "Literal", 0},
		{"(1,)", "Tuple", 1},
		{"1, 2", "Tuple", 2},
		{"[1, 2,]", "List", 2},
		{"[]", "List", 0},
		{"{}", "Dict", 0},
		{"{'a': 1, 'b': [2]}", "Dict", 2},
		{"x[1, 2]", "Subscript", 2},
	}

	for _, tt := range tests {
		t.Run(tt.source, func(t *testing.T) {
			t.Parallel()

			node := mustParse(t, tt.source)
			if got := nodeName(node); got != tt.kind {
				t.Fatalf("root = %s, want %s", got, tt.kind)
			}

			if got := containerSize(node); got != tt.size {
				t.Errorf("size = %d, want %d\n%s", got, tt.size, Dump(node))
			}
		})
	}
}

// containerSize counts the elements of a container node, or of the tuple
// index of a subscript.
func containerSize(node Node) int {
	switch n := node.(type) {
	case *ListLit:
		return len(n.Elts)
	case *TupleLit:
		return len(n.Elts)
	case *DictLit:
		return len(n.Items)
	case *Subscript:
		return containerSize(n.Index)
	default:
		return 0
	}
}

func TestParse_CallArguments(t *testing.T) {
	t.Parallel()

	node := mustParse(t, "f(1, x, key='v', other=2)")

	call, ok := node.(*Call)
	if !ok {
		t.Fatalf("root = %s, want Call", Dump(node))
	}

	if len(call.Args) != 2 || len(call.Keywords) != 2 {
		t.Fatalf("args = %d, keywords = %d", len(call.Args), len(call.Keywords))
	}

	if call.Keywords[0].Name != "key" || call.Keywords[1].Name != "other" {
		t.Errorf("keywords = %+v", call.Keywords)
	}
}

func TestParse_ImplicitStringConcatenation(t *testing.T) {
	t.Parallel()

	node := mustParse(t, `'ab' "cd"`)

	lit, ok := node.(*Literal)
	if !ok || lit.Value.Str != "abcd" {
		t.Errorf("root = %s, want literal 'abcd'", Dump(node))
	}
}

func TestParse_Lambda(t *testing.T) {
	t.Parallel()

	node := mustParse(t, "lambda x, y: x + y")

	l, ok := node.(*Lambda)
	if !ok || strings.Join(l.Params, ",") != "x,y" {
		t.Errorf("root = %s, want Lambda(x, y)", Dump(node))
	}
}

func TestParse_LargeIntegerBecomesFloat(t *testing.T) {
	t.Parallel()

	node := mustParse(t, "99999999999999999999")

	lit, ok := node.(*Literal)
	if !ok || lit.Value.Kind != KindFloat || lit.Value.Float != 1e20 {
		t.Errorf("root = %s, want float 1e20", Dump(node))
	}
}

func TestParse_Errors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		source string
		want   error
	}{
		{"empty", "", ErrEmptyExpression},
		{"whitespace", "   \n ", ErrEmptyExpression},
		{"dangling operator", "1 +", ErrUnexpectedToken},
		{"unclosed list", "[1, 2", ErrUnexpectedToken},
		{"unclosed paren", "(1", ErrUnexpectedToken},
		{"trailing tokens", "1 2", ErrUnexpectedToken},
		{"set literal", "{1, 2}", ErrUnexpectedToken},
		{"positional after keyword", "f(a=1, 2)", ErrUnexpectedToken},
		{"duplicate keyword", "f(a=1, a=2)", ErrUnexpectedToken},
		{"missing else", "1 if x", ErrUnexpectedToken},
		{"assignment", "x = 1", ErrUnexpectedToken},
		{"number after name", "x.1", ErrUnexpectedToken},
		{"bad attribute", "x.(y)", ErrUnexpectedToken},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			err := parseErr(t, tt.source)
			if !errors.Is(err, tt.want) {
				t.Fatalf("parse(%q) error = %v, want %v", tt.source, err, tt.want)
			}

			if !errors.Is(err, ErrSyntax) {
				t.Errorf("error %v is not a syntax error", err)
			}
		})
	}
}

func TestParse_EndOfInputBeforeLastToken(t *testing.T) {
	t.Parallel()

	tokens, err := Tokenize("1 + 2")
	if err != nil {
		t.Fatalf("Tokenize error: %v", err)
	}

	eof := Token{Kind: TokenEOF, Pos: tokens[1].Pos}

	for _, stream := range [][]Token{
		{tokens[0], eof, tokens[1], tokens[2], tokens[3]},
		{tokens[0], eof, tokens[1], tokens[2]},
	} {
		_, err := Parse(t.Context(), stream)
		if !errors.Is(err, ErrUnexpectedToken) || !errors.Is(err, ErrSyntax) {
			t.Errorf("Parse(%v) error = %v, want %v", stream, err, ErrUnexpectedToken)
		}
	}
}

func TestParse_ErrorPosition(t *testing.T) {
	t.Parallel()

	err := parseErr(t, "[1, 2 3]")

	var e *Error
	if !errors.As(err, &e) {
		t.Fatalf("expected *Error, got %v", err)
	}

	pos, ok := e.Position()
	if !ok || pos.Offset != 6 {
		t.Errorf("position = %+v, want offset 6", pos)
	}
}

func TestParse_MaxDepth(t *testing.T) {
	t.Parallel()

	deep := strings.Repeat("(", 200) + "1" + strings.Repeat(")", 200)

	err := parseErr(t, deep)
	if !errors.Is(err, ErrMaxDepthExceeded) {
		t.Fatalf("error = %v, want %v", err, ErrMaxDepthExceeded)
	}

	// A raised limit admits the same input.
	if err := parseErr(t, deep, WithMaxDepth(1000)); err != nil {
		t.Errorf("WithMaxDepth(1000) error: %v", err)
	}

	if err := parseErr(t, strings.Repeat("-", 150)+"1"); !errors.Is(err, ErrMaxDepthExceeded) {
		t.Errorf("unary chain error = %v, want %v", err, ErrMaxDepthExceeded)
	}
}

func TestParse_MaxTokens(t *testing.T) {
	t.Parallel()

	src := "[" + strings.Repeat("1, ", 50) + "]"

	err := parseErr(t, src, WithMaxTokens(20))
	if !errors.Is(err, ErrMaxTokensExceeded) {
		t.Errorf("error = %v, want %v", err, ErrMaxTokensExceeded)
	}
}
