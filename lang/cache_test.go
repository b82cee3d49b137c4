package lang

import (
	"errors"
	"strings"
	"sync"
	"testing"
)

func TestParseString_CachesTrees(t *testing.T) {
	t.Parallel()

	const src = "[('cached', '=', 1)]"

	a, err := ParseString(t.Context(), src)
	if err != nil {
		t.Fatalf("ParseString error: %v", err)
	}

	b, err := ParseString(t.Context(), src)
	if err != nil {
		t.Fatalf("ParseString error: %v", err)
	}

	if a != b {
		t.Error("second parse did not return the cached tree")
	}

	// Different limits produce a separate entry.
	c, err := ParseString(t.Context(), src, WithMaxDepth(DefaultMaxDepth+1))
	if err != nil {
		t.Fatalf("ParseString error: %v", err)
	}

	if c == a {
		t.Error("parse with different options shared a cache entry")
	}
}

func TestParseString_CachesErrors(t *testing.T) {
	t.Parallel()

	for range 2 {
		_, err := ParseString(t.Context(), "[1, 2 3 cached error")
		if !errors.Is(err, ErrUnexpectedToken) {
			t.Fatalf("error = %v, want %v", err, ErrUnexpectedToken)
		}
	}
}

func TestParseString_ConcurrentFirstUse(t *testing.T) {
	t.Parallel()

	const src = "x if y else 'concurrent first use'"

	var (
		wg    sync.WaitGroup
		nodes = make([]Node, 32)
	)

	for i := range nodes {
		wg.Add(1)

		go func() {
			defer wg.Done()

			node, err := ParseString(t.Context(), src)
			if err != nil {
				t.Errorf("ParseString error: %v", err)
			}

			nodes[i] = node
		}()
	}

	wg.Wait()

	for i, n := range nodes {
		if n != nodes[0] {
			t.Errorf("goroutine %d got a different tree", i)
		}
	}
}

func TestParseReader(t *testing.T) {
	t.Parallel()

	node, err := ParseReader(t.Context(), strings.NewReader("{'from': 'reader'}"))
	if err != nil {
		t.Fatalf("ParseReader error: %v", err)
	}

	if got := Format(node); got != "{'from': 'reader'}" {
		t.Errorf("Format = %q", got)
	}
}

func TestParseReader_ReadError(t *testing.T) {
	t.Parallel()

	_, err := ParseReader(t.Context(), failingReader{})
	if !errors.Is(err, ErrReadInput) {
		t.Errorf("error = %v, want %v", err, ErrReadInput)
	}
}

type failingReader struct{}

func (failingReader) Read([]byte) (int, error) { return 0, errors.New("read failed") }
