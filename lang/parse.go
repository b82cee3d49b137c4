package lang

import (
	"context"
	"errors"
	"log/slog"
	"math/big"
	"strconv"
	"strings"
)

// Parse builds an abstract syntax tree from tokens produced by [Tokenize].
//
// The whole token stream must form exactly one expression. Parse fails with an
// [ErrSyntax] error on an unexpected token, an unmatched bracket, an empty
// expression, or tokens left over after a complete expression.
func Parse(ctx context.Context, tokens []Token, opts ...Option) (Node, error) {
	o := makeOptions(opts...)

	if n := len(tokens); n == 0 || tokens[n-1].Kind != TokenEOF {
		var end Position
		if n > 0 {
			end = tokens[n-1].Pos
		}

		tokens = append(tokens[:n:n], Token{Kind: TokenEOF, Pos: end})
	}

	// Only the last token may end the input.
	for _, tok := range tokens[:len(tokens)-1] {
		if tok.Kind == TokenEOF {
			return nil, ErrUnexpectedToken.
				WithPosition(tok.Pos).
				With(slog.String("reason", "end of input before the last token"))
		}
	}

	if o.maxTokens > 0 && len(tokens)-1 > o.maxTokens {
		return nil, ErrMaxTokensExceeded.
			WithPosition(tokens[o.maxTokens].Pos).
			With(slog.Int("limit", o.maxTokens))
	}

	p := &parser{tokens: tokens, maxDepth: o.maxDepth}

	if p.eof() {
		return nil, ErrEmptyExpression.WithPosition(p.peek().Pos)
	}

	node, err := p.parseTopLevel()
	if err != nil {
		return nil, err
	}

	if !p.eof() {
		return nil, p.unexpected("end of expression")
	}

	o.logger.TraceContext(ctx, "parse complete",
		slog.Int("tokens", len(tokens)),
		slog.String("node", nodeName(node)),
	)

	return node, nil
}

// parser is a recursive descent parser with one rule per precedence level.
type parser struct {
	tokens   []Token
	pos      int
	depth    int
	maxDepth int
}

func (p *parser) peek() Token { return p.tokens[p.pos] }

func (p *parser) peekAt(n int) Token {
	if p.pos+n >= len(p.tokens) {
		return p.tokens[len(p.tokens)-1]
	}

	return p.tokens[p.pos+n]
}

func (p *parser) advance() Token {
	tok := p.tokens[p.pos]
	if tok.Kind != TokenEOF {
		p.pos++
	}

	return tok
}

func (p *parser) eof() bool { return p.peek().Kind == TokenEOF }

// accept consumes the next token if it matches kind and text.
func (p *parser) accept(kind TokenKind, text string) bool {
	if p.peek().Is(kind, text) {
		p.advance()

		return true
	}

	return false
}

func (p *parser) expect(kind TokenKind, text string) (Token, error) {
	if !p.peek().Is(kind, text) {
		return Token{}, p.unexpected(strconv.Quote(text))
	}

	return p.advance(), nil
}

func (p *parser) unexpected(expected string) *Error {
	tok := p.peek()

	return ErrUnexpectedToken.
		WithPosition(tok.Pos).
		With(
			slog.String("expected", expected),
			slog.String("found", tok.String()),
		)
}

// enter increments the nesting depth, failing once it exceeds the limit.
func (p *parser) enter() error {
	p.depth++

	if p.maxDepth > 0 && p.depth > p.maxDepth {
		return ErrMaxDepthExceeded.
			WithPosition(p.peek().Pos).
			With(slog.Int("limit", p.maxDepth))
	}

	return nil
}

func (p *parser) leave() { p.depth-- }

// parseTopLevel: test (',' test)* [','] -- a bare comma list is a tuple.
func (p *parser) parseTopLevel() (Node, error) {
	first, err := p.parseTest()
	if err != nil {
		return nil, err
	}

	if !p.peek().Is(TokenOperator, ",") {
		return first, nil
	}

	elts := []Node{first}

	for p.accept(TokenOperator, ",") {
		if p.eof() {
			break
		}

		elt, err := p.parseTest()
		if err != nil {
			return nil, err
		}

		elts = append(elts, elt)
	}

	return &TupleLit{Position: first.Pos(), Elts: elts}, nil
}

// parseTest: lambda | or_test ['if' or_test 'else' test]
func (p *parser) parseTest() (Node, error) {
	if err := p.enter(); err != nil {
		return nil, err
	}
	defer p.leave()

	if p.peek().Is(TokenKeyword, "lambda") {
		return p.parseLambda()
	}

	body, err := p.parseOrTest()
	if err != nil {
		return nil, err
	}

	if !p.accept(TokenKeyword, "if") {
		return body, nil
	}

	test, err := p.parseOrTest()
	if err != nil {
		return nil, err
	}

	if _, err := p.expect(TokenKeyword, "else"); err != nil {
		return nil, err
	}

	orElse, err := p.parseTest()
	if err != nil {
		return nil, err
	}

	return &IfExp{Position: body.Pos(), Test: test, Body: body, OrElse: orElse}, nil
}

// parseLambda: 'lambda' [NAME (',' NAME)*] ':' test
func (p *parser) parseLambda() (Node, error) {
	start := p.advance()

	var params []string

	for !p.peek().Is(TokenPunctuation, ":") {
		if len(params) > 0 {
			if _, err := p.expect(TokenOperator, ","); err != nil {
				return nil, err
			}
		}

		tok := p.peek()
		if tok.Kind != TokenName {
			return nil, p.unexpected("parameter name")
		}

		p.advance()

		params = append(params, tok.Text)
	}

	p.advance()

	body, err := p.parseTest()
	if err != nil {
		return nil, err
	}

	return &Lambda{Position: start.Pos, Params: params, Body: body}, nil
}

// parseOrTest: and_test ('or' and_test)*
func (p *parser) parseOrTest() (Node, error) {
	return p.parseBoolChain("or", OpOr, p.parseAndTest)
}

// parseAndTest: not_test ('and' not_test)*
func (p *parser) parseAndTest() (Node, error) {
	return p.parseBoolChain("and", OpAnd, p.parseNotTest)
}

func (p *parser) parseBoolChain(
	keyword string,
	op Op,
	operand func() (Node, error),
) (Node, error) {
	first, err := operand()
	if err != nil {
		return nil, err
	}

	values := []Node{first}

	for p.accept(TokenKeyword, keyword) {
		next, err := operand()
		if err != nil {
			return nil, err
		}

		values = append(values, next)
	}

	if len(values) == 1 {
		return first, nil
	}

	return &BoolOp{Position: first.Pos(), Op: op, Values: values}, nil
}

// parseNotTest: 'not' not_test | comparison
func (p *parser) parseNotTest() (Node, error) {
	if !p.peek().Is(TokenKeyword, "not") {
		return p.parseComparison()
	}

	if err := p.enter(); err != nil {
		return nil, err
	}
	defer p.leave()

	start := p.advance()

	operand, err := p.parseNotTest()
	if err != nil {
		return nil, err
	}

	return &UnaryOp{Position: start.Pos, Op: OpNot, Operand: operand}, nil
}

// comparisonOp returns the comparison operator at the current token, if any.
func (p *parser) comparisonOp() (Op, bool) {
	tok := p.peek()
	if tok.Kind != TokenOperator && tok.Kind != TokenKeyword {
		return OpInvalid, false
	}

	op, ok := comparisonOps[tok.Text]

	return op, ok
}

// parseComparison: arith (comp_op arith)*
func (p *parser) parseComparison() (Node, error) {
	left, err := p.parseArith()
	if err != nil {
		return nil, err
	}

	var (
		ops         []Op
		comparators []Node
	)

	for {
		op, ok := p.comparisonOp()
		if !ok {
			break
		}

		p.advance()

		right, err := p.parseArith()
		if err != nil {
			return nil, err
		}

		ops = append(ops, op)
		comparators = append(comparators, right)
	}

	if len(ops) == 0 {
		return left, nil
	}

	return &Compare{
		Position:    left.Pos(),
		Left:        left,
		Ops:         ops,
		Comparators: comparators,
	}, nil
}

// parseArith: term (('+'|'-') term)*
func (p *parser) parseArith() (Node, error) {
	return p.parseBinaryChain(additiveOps, p.parseTerm)
}

// parseTerm: factor (('*'|'/'|'//'|'%') factor)*
func (p *parser) parseTerm() (Node, error) {
	return p.parseBinaryChain(multiplicativeOps, p.parseFactor)
}

func (p *parser) parseBinaryChain(
	table map[string]Op,
	operand func() (Node, error),
) (Node, error) {
	left, err := operand()
	if err != nil {
		return nil, err
	}

	for {
		tok := p.peek()
		if tok.Kind != TokenOperator {
			return left, nil
		}

		op, ok := table[tok.Text]
		if !ok {
			return left, nil
		}

		p.advance()

		right, err := operand()
		if err != nil {
			return nil, err
		}

		left = &BinOp{Position: left.Pos(), Op: op, Left: left, Right: right}
	}
}

// parseFactor: ('+'|'-') factor | power
func (p *parser) parseFactor() (Node, error) {
	tok := p.peek()

	op, ok := unaryOps[tok.Text]
	if tok.Kind != TokenOperator || !ok {
		return p.parsePower()
	}

	if err := p.enter(); err != nil {
		return nil, err
	}
	defer p.leave()

	p.advance()

	operand, err := p.parseFactor()
	if err != nil {
		return nil, err
	}

	return &UnaryOp{Position: tok.Pos, Op: op, Operand: operand}, nil
}

// parsePower: postfix ['**' factor]
func (p *parser) parsePower() (Node, error) {
	base, err := p.parsePostfix()
	if err != nil {
		return nil, err
	}

	if !p.accept(TokenOperator, "**") {
		return base, nil
	}

	if err := p.enter(); err != nil {
		return nil, err
	}
	defer p.leave()

	exp, err := p.parseFactor()
	if err != nil {
		return nil, err
	}

	return &BinOp{Position: base.Pos(), Op: OpPow, Left: base, Right: exp}, nil
}

// parsePostfix: atom (call | subscript | attribute)*
func (p *parser) parsePostfix() (Node, error) {
	node, err := p.parseAtom()
	if err != nil {
		return nil, err
	}

	for {
		tok := p.peek()
		if tok.Kind != TokenPunctuation {
			return node, nil
		}

		switch tok.Text {
		case "(":
			node, err = p.parseCall(node)

		case "[":
			node, err = p.parseSubscript(node)

		case ".":
			p.advance()

			name := p.peek()
			if name.Kind != TokenName {
				return nil, p.unexpected("attribute name")
			}

			p.advance()

			node = &Attribute{Position: node.Pos(), Value: node, Attr: name.Text}

		default:
			return node, nil
		}

		if err != nil {
			return nil, err
		}
	}
}

// parseCall: '(' [arg (',' arg)* [',']] ')' with arg: test | NAME '=' test
func (p *parser) parseCall(fn Node) (Node, error) {
	p.advance()

	call := &Call{Position: fn.Pos(), Func: fn}
	seen := map[string]bool{}

	for !p.accept(TokenPunctuation, ")") {
		if p.peek().Kind == TokenName && p.peekAt(1).Is(TokenOperator, "=") {
			name := p.advance()
			p.advance()

			if seen[name.Text] {
				return nil, ErrUnexpectedToken.
					WithPosition(name.Pos).
					With(slog.String("duplicate", name.Text))
			}

			seen[name.Text] = true

			value, err := p.parseTest()
			if err != nil {
				return nil, err
			}

			call.Keywords = append(call.Keywords, KeywordArg{Name: name.Text, Value: value})
		} else {
			if len(call.Keywords) > 0 {
				return nil, p.unexpected("keyword argument")
			}

			arg, err := p.parseTest()
			if err != nil {
				return nil, err
			}

			call.Args = append(call.Args, arg)
		}

		if !p.accept(TokenOperator, ",") && !p.peek().Is(TokenPunctuation, ")") {
			return nil, p.unexpected(`"," or ")"`)
		}
	}

	return call, nil
}

// parseSubscript: '[' test (',' test)* [','] ']'
func (p *parser) parseSubscript(value Node) (Node, error) {
	open := p.advance()

	index, err := p.parseTest()
	if err != nil {
		return nil, err
	}

	if p.peek().Is(TokenOperator, ",") {
		elts := []Node{index}

		for p.accept(TokenOperator, ",") {
			if p.peek().Is(TokenPunctuation, "]") {
				break
			}

			elt, err := p.parseTest()
			if err != nil {
				return nil, err
			}

			elts = append(elts, elt)
		}

		index = &TupleLit{Position: open.Pos, Elts: elts}
	}

	if _, err := p.expect(TokenPunctuation, "]"); err != nil {
		return nil, err
	}

	return &Subscript{Position: value.Pos(), Value: value, Index: index}, nil
}

func (p *parser) parseAtom() (Node, error) {
	tok := p.peek()

	switch tok.Kind {
	case TokenNumber:
		p.advance()

		v, err := parseNumber(tok.Text)
		if err != nil {
			return nil, ErrInvalidNumber.
				WithPosition(tok.Pos).
				With(slog.String("found", strconv.Quote(tok.Text)))
		}

		return &Literal{Position: tok.Pos, Value: v}, nil

	case TokenString:
		var sb strings.Builder

		for p.peek().Kind == TokenString {
			sb.WriteString(p.advance().Text)
		}

		return &Literal{Position: tok.Pos, Value: NewString(sb.String())}, nil

	case TokenName:
		p.advance()

		return &Name{Position: tok.Pos, ID: tok.Text}, nil

	case TokenKeyword:
		switch tok.Text {
		case "True":
			p.advance()

			return &Literal{Position: tok.Pos, Value: True}, nil

		case "False":
			p.advance()

			return &Literal{Position: tok.Pos, Value: False}, nil

		case "None":
			p.advance()

			return &Literal{Position: tok.Pos, Value: None}, nil
		}

	case TokenPunctuation:
		switch tok.Text {
		case "(":
			return p.parseParen()
		case "[":
			return p.parseList()
		case "{":
			return p.parseDict()
		}
	}

	return nil, p.unexpected("expression")
}

// parseParen: '(' ')' | '(' test ')' | '(' test ',' [test (',' test)* [',']] ')'
func (p *parser) parseParen() (Node, error) {
	open := p.advance()

	if p.accept(TokenPunctuation, ")") {
		return &TupleLit{Position: open.Pos}, nil
	}

	first, err := p.parseTest()
	if err != nil {
		return nil, err
	}

	if p.accept(TokenPunctuation, ")") {
		return first, nil
	}

	if !p.peek().Is(TokenOperator, ",") {
		return nil, p.unexpected(`"," or ")"`)
	}

	elts := []Node{first}

	for p.accept(TokenOperator, ",") {
		if p.peek().Is(TokenPunctuation, ")") {
			break
		}

		elt, err := p.parseTest()
		if err != nil {
			return nil, err
		}

		elts = append(elts, elt)
	}

	if _, err := p.expect(TokenPunctuation, ")"); err != nil {
		return nil, err
	}

	return &TupleLit{Position: open.Pos, Elts: elts}, nil
}

// parseList: '[' [test (',' test)* [',']] ']'
func (p *parser) parseList() (Node, error) {
	open := p.advance()
	list := &ListLit{Position: open.Pos}

	for !p.accept(TokenPunctuation, "]") {
		elt, err := p.parseTest()
		if err != nil {
			return nil, err
		}

		list.Elts = append(list.Elts, elt)

		if !p.accept(TokenOperator, ",") && !p.peek().Is(TokenPunctuation, "]") {
			return nil, p.unexpected(`"," or "]"`)
		}
	}

	return list, nil
}

// parseDict: '{' [test ':' test (',' test ':' test)* [',']] '}'
func (p *parser) parseDict() (Node, error) {
	open := p.advance()
	dict := &DictLit{Position: open.Pos}

	for !p.accept(TokenPunctuation, "}") {
		key, err := p.parseTest()
		if err != nil {
			return nil, err
		}

		if !p.peek().Is(TokenPunctuation, ":") {
			if len(dict.Items) == 0 &&
				(p.peek().Is(TokenOperator, ",") || p.peek().Is(TokenPunctuation, "}")) {
				return nil, ErrUnexpectedToken.
					WithPosition(open.Pos).
					With(slog.String("found", "set literal"))
			}

			return nil, p.unexpected(`":"`)
		}

		p.advance()

		value, err := p.parseTest()
		if err != nil {
			return nil, err
		}

		dict.Items = append(dict.Items, DictItem{Key: key, Value: value})

		if !p.accept(TokenOperator, ",") && !p.peek().Is(TokenPunctuation, "}") {
			return nil, p.unexpected(`"," or "}"`)
		}
	}

	return dict, nil
}

// validUnderscores reports whether every underscore of a numeric literal
// separates two digits or directly follows a base prefix, as in 0x_ff.
func validUnderscores(text string) bool {
	prefixed := len(text) > 1 && text[0] == '0' && strings.ContainsRune("xXoObB", rune(text[1]))

	digit := isDigit
	if prefixed {
		digit = isHexDigit
	}

	for i := range len(text) {
		if text[i] != '_' {
			continue
		}

		if i+1 == len(text) || !digit(rune(text[i+1])) {
			return false
		}

		if prefixed && i == 2 {
			continue
		}

		if i == 0 || !digit(rune(text[i-1])) {
			return false
		}
	}

	return true
}

// parseNumber converts a numeric literal to an int or float value.
// Integers too large for int64 become floats.
func parseNumber(text string) (Value, error) {
	clean := strings.ReplaceAll(text, "_", "")

	if clean == "" || !validUnderscores(text) {
		return None, strconv.ErrSyntax
	}

	lower := strings.ToLower(clean)

	switch {
	case len(lower) > 1 && lower[0] == '0' && strings.ContainsRune("xob", rune(lower[1])):
		i, err := strconv.ParseInt(clean, 0, 64)
		if err == nil {
			return NewInt(i), nil
		}

		b, ok := new(big.Int).SetString(clean, 0)
		if !ok {
			return None, strconv.ErrSyntax
		}

		f, _ := new(big.Float).SetInt(b).Float64()

		return NewFloat(f), nil

	case strings.ContainsAny(lower, ".e"):
		f, err := strconv.ParseFloat(clean, 64)
		if err != nil && !errors.Is(err, strconv.ErrRange) {
			return None, err
		}

		return NewFloat(f), nil
	}

	if len(clean) > 1 && clean[0] == '0' && strings.Trim(clean, "0") != "" {
		return None, strconv.ErrSyntax
	}

	i, err := strconv.ParseInt(clean, 10, 64)
	if err == nil {
		return NewInt(i), nil
	}

	f, err := strconv.ParseFloat(clean, 64)
	if err != nil && !errors.Is(err, strconv.ErrRange) {
		return None, err
	}

	return NewFloat(f), nil
}
