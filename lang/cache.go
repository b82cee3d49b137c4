package lang

import (
	"bytes"
	"context"
	"encoding/gob"
	"io"
	"log/slog"
	"strconv"
	"sync"

	"github.com/klauspost/readahead"
	"github.com/zeebo/xxh3"
)

// globalCache stores parsed trees keyed by source and option hash. Trees are
// never modified after parsing, so cached entries are shared by concurrent
// evaluations.
//
//nolint:gochecknoglobals
var globalCache sync.Map

// state holds the parse result of one cache entry.
type state struct {
	once sync.Once
	node Node
	err  error
}

// hashOptions encodes options using gob and hashes with xxh3.
func hashOptions(key optionsKey) uint64 {
	var buf bytes.Buffer

	_ = gob.NewEncoder(&buf).Encode(key)

	return xxh3.Hash(buf.Bytes())
}

// ParseString tokenizes and parses source. Results are cached by source text
// and parse options, so repeated evaluation of the same expression parses it
// only once.
func ParseString(ctx context.Context, source string, opts ...Option) (Node, error) {
	o := makeOptions(opts...)

	sourceHash := xxh3.HashString(source)
	optsHash := hashOptions(o.key())
	cacheKey := strconv.FormatUint(sourceHash^optsHash, 36)

	value, cacheHit := globalCache.LoadOrStore(cacheKey, new(state))
	entry := value.(*state) //nolint:forcetypeassert

	o.logger.TraceContext(ctx, "cache lookup",
		slog.String("source_hash", strconv.FormatUint(sourceHash, 16)),
		slog.String("opts_hash", strconv.FormatUint(optsHash, 16)),
		slog.Bool("cache_hit", cacheHit),
	)

	entry.once.Do(func() {
		entry.node, entry.err = parseSource(ctx, source, opts...)
	})

	return entry.node, entry.err
}

// parseSource tokenizes and parses source without consulting the cache.
func parseSource(ctx context.Context, source string, opts ...Option) (Node, error) {
	o := makeOptions(opts...)

	tokens, err := tokenize(source, max(o.maxTokens, 0))
	if err != nil {
		return nil, err
	}

	return Parse(ctx, tokens, opts...)
}

// ParseReader parses an expression read from r.
func ParseReader(ctx context.Context, r io.Reader, opts ...Option) (Node, error) {
	// Wrap reader with async read-ahead so large inputs are fetched while
	// earlier chunks are copied.
	ra := readahead.NewReader(r)
	defer ra.Close()

	data, err := io.ReadAll(ra)
	if err != nil {
		return nil, ErrReadInput.Wrap(err).
			With(slog.String("source", "reader"))
	}

	makeOptions(opts...).logger.TraceContext(ctx, "read input",
		slog.Int("source_bytes", len(data)),
		slog.Bool("read_ahead", true),
	)

	return ParseString(ctx, string(data), opts...)
}

// ClearCache removes all cached parse trees.
func ClearCache() {
	globalCache.Clear()
}
