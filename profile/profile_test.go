//go:build !pprof

package profile

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStart_Disabled(t *testing.T) {
	t.Parallel()

	assert.False(t, Enabled)
	assert.Empty(t, Modes())

	for _, p := range []Profiler{{}, {Mode: "cpu", Dir: t.TempDir()}} {
		s := p.Start()
		assert.IsType(t, ignore{}, s)
		assert.NotPanics(t, s.Stop)
	}
}
