package lang

import (
	"errors"
	"testing"
)

type tok struct {
	kind TokenKind
	text string
}

func tokensOf(t *testing.T, source string) []tok {
	t.Helper()

	tokens, err := Tokenize(source)
	if err != nil {
		t.Fatalf("Tokenize(%q) error: %v", source, err)
	}

	out := make([]tok, len(tokens))
	for i, tk := range tokens {
		out[i] = tok{tk.Kind, tk.Text}
	}

	return out
}

func TestTokenize_Kinds(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		source string
		want   []tok
	}{
		{
			name:   "empty",
			source: "",
			want:   []tok{{TokenEOF, ""}},
		},
		{
			name:   "domain term",
			source: "[('state', '=', 'draft')]",
			want: []tok{
				{TokenPunctuation, "["},
				{TokenPunctuation, "("},
				{TokenString, "state"},
				{TokenOperator, ","},
				{TokenString, "="},
				{TokenOperator, ","},
				{TokenString, "draft"},
				{TokenPunctuation, ")"},
				{TokenPunctuation, "]"},
				{TokenEOF, ""},
			},
		},
		{
			name:   "keywords and names",
			source: "True and x_1 or None",
			want: []tok{
				{TokenKeyword, "True"},
				{TokenKeyword, "and"},
				{TokenName, "x_1"},
				{TokenKeyword, "or"},
				{TokenKeyword, "None"},
				{TokenEOF, ""},
			},
		},
		{
			name:   "two-word operators",
			source: "a not in b is not c",
			want: []tok{
				{TokenName, "a"},
				{TokenOperator, "not in"},
				{TokenName, "b"},
				{TokenOperator, "is not"},
				{TokenName, "c"},
				{TokenEOF, ""},
			},
		},
		{
			name:   "not followed by name starting with in",
			source: "not inside",
			want: []tok{
				{TokenKeyword, "not"},
				{TokenName, "inside"},
				{TokenEOF, ""},
			},
		},
		{
			name:   "longest operator first",
			source: "a**b//c<=d!=e",
			want: []tok{
				{TokenName, "a"},
				{TokenOperator, "**"},
				{TokenName, "b"},
				{TokenOperator, "//"},
				{TokenName, "c"},
				{TokenOperator, "<="},
				{TokenName, "d"},
				{TokenOperator, "!="},
				{TokenName, "e"},
				{TokenEOF, ""},
			},
		},
		{
			name:   "numbers",
			source: "42 3.14 .5 1e-3 0x1F 1_000",
			want: []tok{
				{TokenNumber, "42"},
				{TokenNumber, "3.14"},
				{TokenNumber, ".5"},
				{TokenNumber, "1e-3"},
				{TokenNumber, "0x1F"},
				{TokenNumber, "1_000"},
				{TokenEOF, ""},
			},
		},
		{
			name:   "attribute access",
			source: "datetime.date.today()",
			want: []tok{
				{TokenName, "datetime"},
				{TokenPunctuation, "."},
				{TokenName, "date"},
				{TokenPunctuation, "."},
				{TokenName, "today"},
				{TokenPunctuation, "("},
				{TokenPunctuation, ")"},
				{TokenEOF, ""},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got := tokensOf(t, tt.source)
			if len(got) != len(tt.want) {
				t.Fatalf("got %d tokens %v, want %d %v", len(got), got, len(tt.want), tt.want)
			}

			for i := range got {
				if got[i] != tt.want[i] {
					t.Errorf("token %d = %v, want %v", i, got[i], tt.want[i])
				}
			}
		})
	}
}

func TestTokenize_Strings(t *testing.T) {
	t.Parallel()

	tests := []struct {
		source string
		want   string
	}{
		{`'abc'`, "abc"},
		{`"it's"`, "it's"},
		{`'a\nb'`, "a\nb"},
		{`'tab\there'`, "tab\there"},
		{`'\x41é\101'`, "Aé" + "A"},
		{`r'a\nb'`, `a\nb`},
		{`u'x'`, "x"},
		{`'''multi
line'''`, "multi\nline"},
		{`'keep \d'`, `keep \d`},
		{`'q\'q'`, "q'q"},
	}

	for _, tt := range tests {
		t.Run(tt.source, func(t *testing.T) {
			t.Parallel()

			got := tokensOf(t, tt.source)
			if got[0].kind != TokenString || got[0].text != tt.want {
				t.Errorf("Tokenize(%s) = %v, want string %q", tt.source, got[0], tt.want)
			}
		})
	}
}

func TestTokenize_Positions(t *testing.T) {
	t.Parallel()

	tokens, err := Tokenize("a +\n  b")
	if err != nil {
		t.Fatalf("Tokenize error: %v", err)
	}

	want := []Position{
		{Offset: 0, Line: 1, Column: 1},
		{Offset: 2, Line: 1, Column: 3},
		{Offset: 6, Line: 2, Column: 3},
	}

	for i, pos := range want {
		if tokens[i].Pos != pos {
			t.Errorf("token %d position = %+v, want %+v", i, tokens[i].Pos, pos)
		}
	}
}

func TestTokenize_Errors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		source string
		want   error
	}{
		{"unterminated", `'abc`, ErrUnterminated},
		{"newline in string", "'ab\ncd'", ErrUnterminated},
		{"invalid character", "a $ b", ErrInvalidCharacter},
		{"bytes prefix", `b'x'`, ErrInvalidString},
		{"f-string", `f'{x}'`, ErrInvalidString},
		{"leading zero", "012", ErrInvalidNumber},
		{"bad hex escape", `'\xZZ'`, ErrInvalidString},
		{"number followed by name", "12abc", ErrInvalidNumber},
		{"bad binary", "0b102", ErrInvalidNumber},
		{"underscore before point", "1_.5", ErrInvalidNumber},
		{"underscore after point", "1._5", ErrInvalidNumber},
		{"doubled underscore", "1__0", ErrInvalidNumber},
		{"trailing underscore", "1_", ErrInvalidNumber},
		{"underscore after prefix twice", "0x__f", ErrInvalidNumber},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			_, err := Tokenize(tt.source)
			if !errors.Is(err, tt.want) {
				t.Fatalf("Tokenize(%q) error = %v, want %v", tt.source, err, tt.want)
			}

			if !errors.Is(err, ErrSyntax) {
				t.Errorf("error %v is not a syntax error", err)
			}
		})
	}
}

func TestTokenize_InvalidCharacterPosition(t *testing.T) {
	t.Parallel()

	_, err := Tokenize("x ? y")

	var e *Error
	if !errors.As(err, &e) {
		t.Fatalf("expected *Error, got %T", err)
	}

	pos, ok := e.Position()
	if !ok || pos.Offset != 2 || pos.Column != 3 {
		t.Errorf("position = %+v (%v), want offset 2 column 3", pos, ok)
	}
}

func TestTokenize_LineContinuation(t *testing.T) {
	t.Parallel()

	got := tokensOf(t, "a + \\\n b")
	if len(got) != 4 || got[2] != (tok{TokenName, "b"}) {
		t.Errorf("tokens = %v", got)
	}
}
