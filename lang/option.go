package lang

import (
	"context"
	"log/slog"

	"github.com/ardnew/pyexpr/log"
)

// Default resource bounds. They guard recursion depth and allocation against
// pathological input.
//
//nolint:gochecknoglobals
var (
	// DefaultMaxDepth is the maximum nesting depth of a parsed expression.
	DefaultMaxDepth = 100
	// DefaultMaxTokens is the maximum number of tokens in one expression.
	DefaultMaxTokens = 10000
	// DefaultMaxSequence is the maximum length of a string, list or tuple
	// produced by repetition or concatenation.
	DefaultMaxSequence = 1 << 20
)

// Option configures parsing and evaluation.
type Option func(*options)

type options struct {
	logger      log.Logger
	maxDepth    int
	maxTokens   int
	maxSequence int
}

// optionsKey holds the options that influence the shape of a parsed tree and
// therefore participate in the parse cache key.
type optionsKey struct {
	MaxDepth  int
	MaxTokens int
}

func makeOptions(opts ...Option) options {
	o := options{
		maxDepth:    DefaultMaxDepth,
		maxTokens:   DefaultMaxTokens,
		maxSequence: DefaultMaxSequence,
	}

	for _, opt := range opts {
		if opt != nil {
			opt(&o)
		}
	}

	return o
}

func (o options) key() optionsKey {
	return optionsKey{MaxDepth: o.maxDepth, MaxTokens: o.maxTokens}
}

// WithLogger sets the logger used for trace output.
// The zero [log.Logger] discards everything.
func WithLogger(logger log.Logger) Option {
	return func(o *options) { o.logger = logger }
}

// WithMaxDepth limits the nesting depth of parsed expressions.
// A non-positive depth disables the limit.
func WithMaxDepth(depth int) Option {
	return func(o *options) { o.maxDepth = depth }
}

// WithMaxTokens limits the number of tokens of a parsed expression.
// A non-positive count disables the limit.
func WithMaxTokens(count int) Option {
	return func(o *options) { o.maxTokens = count }
}

// WithMaxSequence limits the length of sequences built by the + and *
// operators. A non-positive length disables the limit.
func WithMaxSequence(length int) Option {
	return func(o *options) { o.maxSequence = length }
}

type sequenceLimitKey struct{}

// withSequenceLimit returns ctx carrying the sequence limit of an evaluation,
// so that callables invoked by it apply the same bound.
func withSequenceLimit(ctx context.Context, length int) context.Context {
	return context.WithValue(ctx, sequenceLimitKey{}, length)
}

// SequenceLimit returns the sequence limit of the evaluation that ctx was
// passed from, or [DefaultMaxSequence] outside of one. A non-positive limit
// means unlimited.
func SequenceLimit(ctx context.Context) int {
	if n, ok := ctx.Value(sequenceLimitKey{}).(int); ok {
		return n
	}

	return DefaultMaxSequence
}

// checkSequence reports [ErrSequenceTooLarge] when a sequence of the given
// length exceeds the limit carried by ctx.
func checkSequence(ctx context.Context, length int) error {
	if limit := SequenceLimit(ctx); limit > 0 && length > limit {
		return ErrSequenceTooLarge.With(slog.Int("limit", limit))
	}

	return nil
}
