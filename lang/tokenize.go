package lang

import (
	"log/slog"
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"
)

// Tokenize splits source into tokens. The returned slice always ends with a
// single [TokenEOF] token.
//
// Tokenize fails with an [ErrSyntax] error at the first character that
// cannot start a token.
func Tokenize(source string) ([]Token, error) {
	return tokenize(source, 0)
}

// tokenize scans source, failing once more than limit tokens (excluding EOF)
// are produced. A limit of zero disables the check.
func tokenize(source string, limit int) ([]Token, error) {
	s := scanner{src: source, line: 1, col: 1}

	var tokens []Token

	for {
		tok, err := s.next()
		if err != nil {
			return nil, err
		}

		tokens = append(tokens, tok)

		if tok.Kind == TokenEOF {
			return tokens, nil
		}

		if limit > 0 && len(tokens) > limit {
			return nil, ErrMaxTokensExceeded.
				WithPosition(tok.Pos).
				With(slog.Int("limit", limit))
		}
	}
}

// scanner holds the lexical state over a source string.
type scanner struct {
	src  string
	off  int
	line int
	col  int
}

func (s *scanner) pos() Position {
	return Position{Offset: s.off, Line: s.line, Column: s.col}
}

func (s *scanner) eof() bool { return s.off >= len(s.src) }

// peekAt returns the rune n runes ahead of the current offset, or -1.
func (s *scanner) peekAt(n int) rune {
	off := s.off
	for ; n > 0 && off < len(s.src); n-- {
		_, size := utf8.DecodeRuneInString(s.src[off:])
		off += size
	}

	if off >= len(s.src) {
		return -1
	}

	r, _ := utf8.DecodeRuneInString(s.src[off:])

	return r
}

func (s *scanner) peek() rune { return s.peekAt(0) }

func (s *scanner) advance() rune {
	if s.eof() {
		return -1
	}

	r, size := utf8.DecodeRuneInString(s.src[s.off:])
	s.off += size

	if r == '\n' {
		s.line++
		s.col = 1
	} else {
		s.col++
	}

	return r
}

func (s *scanner) skipSpace() {
	for !s.eof() {
		switch s.peek() {
		case ' ', '\t', '\r', '\n', '\f', '\v':
			s.advance()

		case '\\':
			// explicit line joining
			if s.peekAt(1) == '\n' {
				s.advance()
				s.advance()

				continue
			}

			return

		default:
			return
		}
	}
}

func (s *scanner) next() (Token, error) {
	s.skipSpace()

	start := s.pos()

	if s.eof() {
		return Token{Kind: TokenEOF, Pos: start}, nil
	}

	r := s.peek()

	switch {
	case isDigit(r), r == '.' && isDigit(s.peekAt(1)):
		return s.scanNumber(start)

	case r == '\'' || r == '"':
		return s.scanString(start, "")

	case isIdentifierStart(r):
		return s.scanWord(start)

	case strings.ContainsRune(punctuation, r):
		s.advance()

		return Token{Kind: TokenPunctuation, Text: string(r), Pos: start}, nil
	}

	rest := s.src[s.off:]
	for _, op := range operators {
		if strings.HasPrefix(rest, op) {
			for range op {
				s.advance()
			}

			return Token{Kind: TokenOperator, Text: op, Pos: start}, nil
		}
	}

	return Token{}, ErrInvalidCharacter.
		WithPosition(start).
		With(slog.String("found", strconv.QuoteRune(r)))
}

// scanWord scans an identifier, keyword, two-word operator, or a prefixed
// string literal such as r'...'.
func (s *scanner) scanWord(start Position) (Token, error) {
	for !s.eof() && isIdentifierContinue(s.peek()) {
		s.advance()
	}

	word := s.src[start.Offset:s.off]

	if q := s.peek(); (q == '\'' || q == '"') && isStringPrefix(word) {
		return s.scanString(start, strings.ToLower(word))
	}

	if !IsKeyword(word) {
		return Token{Kind: TokenName, Text: word, Pos: start}, nil
	}

	switch word {
	case "not":
		if s.followedByWord("in") {
			return Token{Kind: TokenOperator, Text: "not in", Pos: start}, nil
		}

	case "is":
		if s.followedByWord("not") {
			return Token{Kind: TokenOperator, Text: "is not", Pos: start}, nil
		}
	}

	return Token{Kind: TokenKeyword, Text: word, Pos: start}, nil
}

// followedByWord consumes the whitespace and word that follow the current
// offset if, and only if, the next word is exactly w.
func (s *scanner) followedByWord(w string) bool {
	save := *s

	s.skipSpace()

	if s.off == save.off || !strings.HasPrefix(s.src[s.off:], w) {
		*s = save

		return false
	}

	end := s.off + len(w)
	if end < len(s.src) {
		r, _ := utf8.DecodeRuneInString(s.src[end:])
		if isIdentifierContinue(r) {
			*s = save

			return false
		}
	}

	for range w {
		s.advance()
	}

	return true
}

func (s *scanner) scanNumber(start Position) (Token, error) {
	if s.peek() == '0' && strings.ContainsRune("xXoObB", s.peekAt(1)) {
		s.advance()
		s.advance()

		for !s.eof() && (isHexDigit(s.peek()) || s.peek() == '_') {
			s.advance()
		}
	} else {
		s.scanDigits()

		if s.peek() == '.' {
			s.advance()
			s.scanDigits()
		}

		if e := s.peek(); e == 'e' || e == 'E' {
			next := s.peekAt(1)
			if isDigit(next) ||
				((next == '+' || next == '-') && isDigit(s.peekAt(2))) {
				s.advance()

				if next == '+' || next == '-' {
					s.advance()
				}

				s.scanDigits()
			}
		}
	}

	text := s.src[start.Offset:s.off]

	if !s.eof() && isIdentifierContinue(s.peek()) {
		return Token{}, ErrInvalidNumber.
			WithPosition(start).
			With(slog.String("found", strconv.Quote(text+string(s.peek()))))
	}

	if _, err := parseNumber(text); err != nil {
		return Token{}, ErrInvalidNumber.
			WithPosition(start).
			With(slog.String("found", strconv.Quote(text)))
	}

	return Token{Kind: TokenNumber, Text: text, Pos: start}, nil
}

func (s *scanner) scanDigits() {
	for !s.eof() && (isDigit(s.peek()) || s.peek() == '_') {
		s.advance()
	}
}

// scanString scans a quoted literal starting at the current offset, which
// must be the opening quote. prefix is the lower-cased string prefix.
func (s *scanner) scanString(start Position, prefix string) (Token, error) {
	if strings.ContainsAny(prefix, "bf") {
		return Token{}, ErrInvalidString.
			WithPosition(start).
			With(slog.String("prefix", prefix))
	}

	raw := strings.Contains(prefix, "r")
	q := s.advance()
	triple := s.peek() == q && s.peekAt(1) == q

	if triple {
		s.advance()
		s.advance()
	}

	var sb strings.Builder

	for {
		if s.eof() {
			return Token{}, ErrUnterminated.WithPosition(start)
		}

		r := s.peek()

		switch {
		case r == q:
			if !triple {
				s.advance()

				return Token{Kind: TokenString, Text: sb.String(), Pos: start}, nil
			}

			if s.peekAt(1) == q && s.peekAt(2) == q {
				s.advance()
				s.advance()
				s.advance()

				return Token{Kind: TokenString, Text: sb.String(), Pos: start}, nil
			}

			sb.WriteRune(s.advance())

		case r == '\n' && !triple:
			return Token{}, ErrUnterminated.WithPosition(start)

		case r == '\\' && raw:
			sb.WriteRune(s.advance())

			if !s.eof() {
				sb.WriteRune(s.advance())
			}

		case r == '\\':
			escPos := s.pos()

			s.advance()

			err := s.scanEscape(&sb)
			if err != nil {
				return Token{}, err.WithPosition(escPos)
			}

		default:
			sb.WriteRune(s.advance())
		}
	}
}

// simpleEscapes maps single-character escapes to their values.
//
//nolint:gochecknoglobals
var simpleEscapes = map[rune]rune{
	'\\': '\\', '\'': '\'', '"': '"',
	'a': '\a', 'b': '\b', 'f': '\f', 'n': '\n', 'r': '\r', 't': '\t', 'v': '\v',
}

// scanEscape decodes one escape sequence; the backslash is already consumed.
func (s *scanner) scanEscape(sb *strings.Builder) *Error {
	if s.eof() {
		return ErrUnterminated
	}

	r := s.advance()

	if v, ok := simpleEscapes[r]; ok {
		sb.WriteRune(v)

		return nil
	}

	switch r {
	case '\n':
		return nil

	case '0', '1', '2', '3', '4', '5', '6', '7':
		v := int(r - '0')

		for i := 0; i < 2 && s.peek() >= '0' && s.peek() <= '7'; i++ {
			v = v*8 + int(s.advance()-'0')
		}

		sb.WriteRune(rune(v))

		return nil

	case 'x', 'u', 'U':
		n := map[rune]int{'x': 2, 'u': 4, 'U': 8}[r]

		var v rune

		for range n {
			d := s.peek()
			if !isHexDigit(d) {
				return ErrInvalidString.With(
					slog.String("escape", `\`+string(r)),
				)
			}

			s.advance()

			v = v*16 + rune(hexValue(d))
		}

		if !utf8.ValidRune(v) {
			return ErrInvalidString.With(slog.String("escape", `\`+string(r)))
		}

		sb.WriteRune(v)

		return nil
	}

	// Unknown escapes are kept verbatim.
	sb.WriteRune('\\')
	sb.WriteRune(r)

	return nil
}

func isStringPrefix(word string) bool {
	switch strings.ToLower(word) {
	case "r", "u", "b", "f", "rb", "br", "fr", "rf":
		return true
	default:
		return false
	}
}

func isDigit(r rune) bool { return r >= '0' && r <= '9' }

func isHexDigit(r rune) bool {
	return isDigit(r) || (r >= 'a' && r <= 'f') || (r >= 'A' && r <= 'F')
}

func hexValue(r rune) int {
	switch {
	case isDigit(r):
		return int(r - '0')
	case r >= 'a' && r <= 'f':
		return int(r-'a') + 10
	default:
		return int(r-'A') + 10
	}
}

func isIdentifierStart(r rune) bool {
	return r == '_' || unicode.IsLetter(r)
}

func isIdentifierContinue(r rune) bool {
	return r == '_' || unicode.IsLetter(r) || unicode.IsDigit(r)
}

// IsIdentifier reports whether s can be bound as a name: it scans as a
// single identifier and is not a keyword.
func IsIdentifier(s string) bool {
	for i, r := range s {
		if i == 0 && !isIdentifierStart(r) || !isIdentifierContinue(r) {
			return false
		}
	}

	return s != "" && !IsKeyword(s)
}
