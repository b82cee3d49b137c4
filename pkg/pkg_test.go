package pkg

import (
	"path/filepath"
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIdentity(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "pyexpr", Name)
	assert.NotEmpty(t, Description)
	assert.Regexp(t, regexp.MustCompile(`^\d+\.\d+\.\d+`), Version())

	require.NotEmpty(t, Author)

	for _, a := range Author {
		assert.False(t, a.Name == "" && a.Email == "")
	}
}

func TestDirs(t *testing.T) {
	t.Parallel()

	assert.Equal(t, Prefix(), filepath.Base(ConfigDir()))
	assert.Equal(t, Prefix(), filepath.Base(CacheDir()))
	assert.NotRegexp(t, `^\.`, Prefix())
}
