package lang

import (
	"strings"
	"testing"
)

func TestFormat(t *testing.T) {
	t.Parallel()

	tests := []struct {
		source string
		want   string
	}{
		{"1+2*3", "1 + 2 * 3"},
		{"(1+2)*3", "(1 + 2) * 3"},
		{"1-(2-3)", "1 - (2 - 3)"},
		{"(1-2)-3", "1 - 2 - 3"},
		{"-2**2", "-2 ** 2"},
		{"(-2)**2", "(-2) ** 2"},
		{"(2**3)**2", "(2 ** 3) ** 2"},
		{"2**-1", "2 ** -1"},
		{"not(a and b)", "not (a and b)"},
		{"(a or b) and c", "(a or b) and c"},
		{"a or (b or c)", "a or (b or c)"},
		{"(1 < 2) < 3", "(1 < 2) < 3"},
		{"x not in[1,2]", "x not in [1, 2]"},
		{"a if(b if c else d)else e", "a if (b if c else d) else e"},
		{"(a if b else c) if d else e", "(a if b else c) if d else e"},
		{"[('state','=',\"draft\")]", "[('state', '=', 'draft')]"},
		{"{'a':1,'b':(2,)}", "{'a': 1, 'b': (2,)}"},
		{"1,2", "(1, 2)"},
		{"f(1,x=2)", "f(1, x=2)"},
		{"a.b(c)[0].d", "a.b(c)[0].d"},
		{"(a+b).c", "(a + b).c"},
		{"lambda x,y:x", "lambda x, y: x"},
		{"f(lambda: 1)", "f(lambda: 1)"},
		{"'it\\'s'", `"it's"`},
		{"1e100", "1e+100"},
	}

	for _, tt := range tests {
		t.Run(tt.source, func(t *testing.T) {
			t.Parallel()

			got := Format(mustParse(t, tt.source))
			if got != tt.want {
				t.Fatalf("Format(%q) = %q, want %q", tt.source, got, tt.want)
			}

			// Formatting is a fixed point.
			if again := Format(mustParse(t, got)); again != got {
				t.Errorf("Format is not idempotent: %q -> %q", got, again)
			}
		})
	}
}

func TestDump(t *testing.T) {
	t.Parallel()

	got := Dump(mustParse(t, "f(x, k=1) + 2"))

	want := []string{
		`BinOp "+" @1:1`,
		`  Call @1:1`,
		`    func: Name f @1:1`,
		`    Name x @1:3`,
		`    k: Literal 1 @1:8`,
		`  Literal 2 @1:13`,
	}

	if strings.TrimRight(got, "\n") != strings.Join(want, "\n") {
		t.Errorf("Dump =\n%s\nwant\n%s", got, strings.Join(want, "\n"))
	}
}
