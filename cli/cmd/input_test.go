package cmd

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ardnew/pyexpr/lang"
)

func TestUniqueSources(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	a := filepath.Join(dir, "a.yaml")
	b := filepath.Join(dir, "b.yaml")
	link := filepath.Join(dir, "link.yaml")
	missing := filepath.Join(dir, "missing.yaml")

	require.NoError(t, os.WriteFile(a, []byte("x: 1\n"), 0o600))
	require.NoError(t, os.WriteFile(b, []byte("y: 2\n"), 0o600))
	require.NoError(t, os.Symlink(a, link))

	got := uniqueSources([]string{a, stdinSource, link, b, stdinSource, missing, a, missing})
	assert.Equal(t, []string{a, stdinSource, b, missing, missing}, got)
}

func TestReadSource_Stdin(t *testing.T) {
	t.Parallel()

	ctx, _ := testContext(t, "uid: 3\n")

	data, err := readSource(ctx, stdinSource)
	require.NoError(t, err)
	assert.Equal(t, "uid: 3\n", string(data))
}

func TestDecodeDocument(t *testing.T) {
	t.Parallel()

	v, err := decodeDocument("doc", []byte("z: 1\na: [x, 2.5]\nm: {k: null}\n"))
	require.NoError(t, err)
	assert.Equal(t, "{'z': 1, 'a': ['x', 2.5], 'm': {'k': None}}", v.String())

	_, err = decodeDocument("doc", []byte("a: [1, 2"))
	assert.ErrorIs(t, err, ErrDecode)
}

func TestScopeEnv(t *testing.T) {
	t.Parallel()

	first := writeFile(t, "first.yaml", "uid: 1\ncompany_ids: [1, 3]\n")
	empty := writeFile(t, "empty.yaml", "")
	ctx, _ := testContext(t, "")

	s := Scope{
		Context: []string{first, empty},
		Define:  []string{"uid = uid + 1", "allowed=company_ids + [uid]"},
	}

	env, err := s.env(ctx, engineFrom(ctx))
	require.NoError(t, err)
	assert.True(t, lang.Equal(lang.NewInt(2), env["uid"]))
	assert.Equal(t, "[1, 3, 2]", env["allowed"].String())
}

func TestScopeEnv_KeysMustBeNames(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		content string
	}{
		{"numeric yaml", "1: one\n"},
		{"numeric json", `{"1": "one"}`},
		{"hyphenated", "company-id: 3\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			doc := writeFile(t, "keys.yaml", tt.content)
			ctx, _ := testContext(t, "")

			_, err := Scope{Context: []string{doc}}.env(ctx, engineFrom(ctx))
			assert.ErrorIs(t, err, ErrDecodeContext)
		})
	}
}
