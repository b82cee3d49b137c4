package cmd

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ardnew/pyexpr/lang"
)

func TestEval_Args(t *testing.T) {
	t.Parallel()

	ctx, out := testContext(t, "")

	e := &Eval{Exprs: []string{"1 + 2", "'ab' * 2", "[1, 2, 3][1] + len([4, 5])"}, Output: OutputNative}
	require.NoError(t, e.Run(ctx))
	assert.Equal(t, "3\n'abab'\n4\n", out.String())
}

func TestEval_Stdin(t *testing.T) {
	t.Parallel()

	ctx, out := testContext(t, "  (1, 'two')\n")

	e := &Eval{Output: OutputNative}
	require.NoError(t, e.Run(ctx))
	assert.Equal(t, "(1, 'two')\n", out.String())
}

func TestEval_Files(t *testing.T) {
	t.Parallel()

	a := writeFile(t, "a.py", "2 ** 10\n")
	b := writeFile(t, "b.py", "not True")

	ctx, out := testContext(t, "")

	e := &Eval{File: []string{a, b, a}, Output: OutputNative}
	require.NoError(t, e.Run(ctx))
	assert.Equal(t, "1024\nFalse\n", out.String())
}

func TestEval_Define(t *testing.T) {
	t.Parallel()

	ctx, out := testContext(t, "")

	e := &Eval{
		Scope:  Scope{Define: []string{"x=3", "y = x * 2"}},
		Exprs:  []string{"y + x"},
		Output: OutputNative,
	}
	require.NoError(t, e.Run(ctx))
	assert.Equal(t, "9\n", out.String())
}

func TestEval_Context(t *testing.T) {
	t.Parallel()

	yml := writeFile(t, "ctx.yaml", "uid: 7\nlang: fr_FR\n")
	jsn := writeFile(t, "ctx.json", `{"uid": 8, "active": true}`)

	ctx, out := testContext(t, "")

	e := &Eval{
		Scope:  Scope{Context: []string{yml, jsn}},
		Exprs:  []string{"(uid, lang, active)"},
		Output: OutputNative,
	}
	require.NoError(t, e.Run(ctx))
	assert.Equal(t, "(8, 'fr_FR', True)\n", out.String())
}

func TestEval_JSON(t *testing.T) {
	t.Parallel()

	ctx, out := testContext(t, "")

	e := &Eval{Exprs: []string{"{'a': (1, 2.5), 'b': None}"}, Output: OutputJSON}
	require.NoError(t, e.Run(ctx))
	assert.JSONEq(t, `{"a": [1, 2.5], "b": null}`, out.String())
}

func TestEval_YAML(t *testing.T) {
	t.Parallel()

	ctx, out := testContext(t, "")

	e := &Eval{Exprs: []string{"{'name': 'Acme', 'ids': [1, 2]}"}, Output: OutputYAML, Indent: 2}
	require.NoError(t, e.Run(ctx))
	assert.Contains(t, out.String(), "name: Acme")
	assert.Contains(t, out.String(), "- 1")
}

func TestEval_Condition(t *testing.T) {
	t.Parallel()

	ctx, out := testContext(t, "")

	e := &Eval{
		Scope:     Scope{Define: []string{"uid=5"}},
		Exprs:     []string{"uid > 3", "[]", "missing.attr"},
		Output:    OutputNative,
		Condition: true,
	}
	require.NoError(t, e.Run(ctx))
	assert.Equal(t, "True\nFalse\nFalse\n", out.String())

	out.Reset()

	e.Fallback = true
	require.NoError(t, e.Run(ctx))
	assert.Equal(t, "True\nFalse\nTrue\n", out.String())
}

func TestEval_Errors(t *testing.T) {
	t.Parallel()

	notMapping := writeFile(t, "list.yaml", "- 1\n- 2\n")

	tests := []struct {
		name string
		eval Eval
		want error
	}{
		{"syntax", Eval{Exprs: []string{"1 +"}}, lang.ErrSyntax},
		{"name", Eval{Exprs: []string{"nope"}}, lang.ErrUndefinedName},
		{"type", Eval{Exprs: []string{"1 / 0"}}, lang.ErrZeroDivision},
		{"definition", Eval{Scope: Scope{Define: []string{"1x=3"}}, Exprs: []string{"1"}}, ErrInvalidDefinition},
		{"context", Eval{Scope: Scope{Context: []string{notMapping}}, Exprs: []string{"1"}}, ErrDecodeContext},
		{"missing_file", Eval{File: []string{"/nonexistent/expr.py"}}, ErrReadInput},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			ctx, _ := testContext(t, "")

			tt.eval.Output = OutputNative
			assert.ErrorIs(t, tt.eval.Run(ctx), tt.want)
		})
	}
}
