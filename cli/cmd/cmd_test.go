package cmd

import (
	"bytes"
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/ardnew/pyexpr/log"
)

// testContext returns a context whose commands read stdin and write to the
// returned buffer, evaluating with the default builtins and a silent logger.
func testContext(t *testing.T, stdin string) (context.Context, *bytes.Buffer) {
	t.Helper()

	var out bytes.Buffer

	eng := NewEngine()
	eng.Logger = log.Make(io.Discard)

	ctx := WithEngine(t.Context(), eng)
	ctx = WithStreams(ctx, strings.NewReader(stdin), &out)

	return ctx, &out
}

// writeFile writes content to name in a temporary directory.
func writeFile(t *testing.T, name, content string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	return path
}
