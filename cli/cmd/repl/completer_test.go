package repl

import (
	"slices"
	"testing"

	"github.com/sahilm/fuzzy"
)

func TestWordBounds(t *testing.T) {
	tests := []struct {
		name      string
		input     string
		cursor    int
		wantWord  string
		wantStart int
		wantEnd   int
	}{
		{"simple", "foo", 3, "foo", 0, 3},
		{"dot_separated", "bar.baz", 7, "baz", 4, 7},
		{"after_plus", "a + fo", 6, "fo", 4, 6},
		{"after_paren", "clamp(fo", 8, "fo", 6, 8},
		{"after_comma", "clamp(a, fo", 11, "fo", 9, 11},
		{"after_bracket", "[('name', '=', fo", 17, "fo", 15, 17},
		{"underscore", "context_to", 10, "context_to", 0, 10},
		{"empty_at_boundary", "a + ", 4, "", 4, 4},
		{"mid_word", "foobar", 3, "foobar", 0, 6},
		{"at_start", "foo", 0, "foo", 0, 3},
		{"between_operators", "a+b", 2, "b", 2, 3},
		{"hyphen_delimits", "a-b", 3, "b", 2, 3},
		{"empty_after_dot", "record.", 7, "", 7, 7},
		{"cursor_past_end", "abc", 10, "abc", 0, 3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			word, start, end := wordBounds(tt.input, tt.cursor)
			if word != tt.wantWord || start != tt.wantStart || end != tt.wantEnd {
				t.Errorf("wordBounds(%q, %d) = (%q, %d, %d), want (%q, %d, %d)",
					tt.input, tt.cursor, word, start, end,
					tt.wantWord, tt.wantStart, tt.wantEnd)
			}
		})
	}
}

func TestParentPath(t *testing.T) {
	tests := []struct {
		name      string
		input     string
		wordStart int
		want      string
	}{
		{"top_level", "fo", 0, ""},
		{"simple_chain", "bar.baz.", 8, "bar.baz"},
		{"after_operator", "x + datetime.date.", 18, "datetime.date"},
		{"after_paren", "(bar.baz.", 9, "bar.baz"},
		{"no_chain", "a + ", 4, ""},
		{"deep_chain", "a.b.c.", 6, "a.b.c"},
		{"empty_segment", "a..", 3, ""},
		{"numeric_head", "1.", 2, ""},
		{"call_result", "f().", 4, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := parentPath(tt.input, tt.wordStart); got != tt.want {
				t.Errorf("parentPath(%q, %d) = %q, want %q",
					tt.input, tt.wordStart, got, tt.want)
			}
		})
	}
}

func TestInString(t *testing.T) {
	tests := []struct {
		input string
		pos   int
		want  bool
	}{
		{"'abc", 4, true},
		{"'abc'", 5, false},
		{`"a'b`, 4, true},
		{`'it\'s`, 6, true},
		{`'a' + "b`, 8, true},
		{"x + y", 5, false},
	}

	for _, tt := range tests {
		if got := inString(tt.input, tt.pos); got != tt.want {
			t.Errorf("inString(%q, %d) = %v, want %v", tt.input, tt.pos, got, tt.want)
		}
	}
}

func TestSessionCandidates(t *testing.T) {
	s := testSession(t)

	tests := []struct {
		parent string
		want   []string
	}{
		{"", []string{"clamp", "concat", "limit", "record", "uid"}},
		{"record", []string{"active", "get", "items", "keys", "name", "values"}},
		{"uid", nil},
		{"missing", nil},
	}

	for _, tt := range tests {
		t.Run(tt.parent, func(t *testing.T) {
			if got := s.candidates(tt.parent); !slices.Equal(got, tt.want) {
				t.Errorf("candidates(%q) = %v, want %v", tt.parent, got, tt.want)
			}
		})
	}
}

func TestSessionCallable(t *testing.T) {
	s := testSession(t)

	for path, want := range map[string]bool{
		"clamp":      true,
		"record.get": true,
		"limit":      false,
		"uid":        false,
		"missing":    false,
	} {
		if got := s.callable(path); got != want {
			t.Errorf("callable(%q) = %v, want %v", path, got, want)
		}
	}
}

func TestSessionCtrlCandidates(t *testing.T) {
	s := testSession(t)

	tests := []struct {
		name  string
		input string
		want  []string
	}{
		{"command", "le", ctrlCommands},
		{"unset", "unset u", []string{"record", "uid"}},
		{"let_name", "let to", nil},
		{"let_expr", "let total = cl", []string{"clamp", "concat", "limit", "record", "uid"}},
		{"let_member", "let n = record.na", []string{"active", "get", "items", "keys", "name", "values"}},
		{"other", "help x", nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, start, _ := wordBounds(tt.input, len(tt.input))
			if got := s.ctrlCandidates(tt.input, start); !slices.Equal(got, tt.want) {
				t.Errorf("ctrlCandidates(%q) = %v, want %v", tt.input, got, tt.want)
			}
		})
	}
}

func TestQualified(t *testing.T) {
	if got := qualified("", "uid"); got != "uid" {
		t.Errorf("qualified = %q", got)
	}

	if got := qualified("datetime.date", "today"); got != "datetime.date.today" {
		t.Errorf("qualified = %q", got)
	}
}

func TestRenderCandidateBar(t *testing.T) {
	never := func(string) bool { return false }

	if got := renderCandidateBar(nil, -1, false, 80, never); got != "" {
		t.Errorf("empty matches rendered %q", got)
	}

	matches := fuzzy.Find("c", []string{"clamp", "concat", "record"})
	if len(matches) != 3 {
		t.Fatalf("fuzzy.Find matched %d candidates, want 3", len(matches))
	}

	if got := renderCandidateBar(matches, 0, true, 80, never); got == "" {
		t.Error("candidate bar is empty")
	}
}
