package cmd

import (
	"context"
	"io"
	"os"

	"github.com/alecthomas/kong"

	"github.com/ardnew/pyexpr/builtins"
	"github.com/ardnew/pyexpr/lang"
	"github.com/ardnew/pyexpr/log"
)

// ContextKey is used to store a [kong.Context] value in [context.Context].
type contextKey struct{}

// WithContext returns a new context.Context containing the given kong.Context.
func WithContext(ctx context.Context, ktx *kong.Context) context.Context {
	return context.WithValue(ctx, contextKey{}, ktx)
}

func kongContextFrom(ctx context.Context) *kong.Context {
	ktx, ok := ctx.Value(contextKey{}).(*kong.Context)
	if !ok || ktx == nil {
		return nil
	}

	return ktx
}

// kongVar returns the kong variable named key, if the context carries a
// parsed command line defining it.
func kongVar(ctx context.Context, key string) (string, bool) {
	ktx := kongContextFrom(ctx)
	if ktx == nil {
		return "", false
	}

	v, ok := ktx.Model.Vars()[key]

	return v, ok
}

// Engine holds what every command needs to evaluate expressions: the
// builtins visible to them and the options bounding parse and evaluation.
type Engine struct {
	Builtins *lang.Registry
	Options  []lang.Option
	Logger   log.Logger
}

// NewEngine returns an engine with the default builtins and limits, logging
// through the package default logger.
func NewEngine() *Engine {
	logger := log.Default()

	return &Engine{
		Builtins: builtins.Default(),
		Options:  []lang.Option{lang.WithLogger(logger)},
		Logger:   logger,
	}
}

// Evaluate parses and evaluates source with env.
func (e *Engine) Evaluate(
	ctx context.Context,
	source string,
	env lang.Env,
) (lang.Value, error) {
	return lang.EvaluateExpr(ctx, source, env, e.Builtins, e.Options...)
}

// Parse parses source with the engine's limits.
func (e *Engine) Parse(ctx context.Context, source string) (lang.Node, error) {
	return lang.ParseString(ctx, source, e.Options...)
}

type engineKey struct{}

// WithEngine returns a new context.Context carrying eng.
func WithEngine(ctx context.Context, eng *Engine) context.Context {
	return context.WithValue(ctx, engineKey{}, eng)
}

// engineFrom returns the engine stored in ctx, or a default engine.
func engineFrom(ctx context.Context) *Engine {
	if eng, ok := ctx.Value(engineKey{}).(*Engine); ok && eng != nil {
		return eng
	}

	return NewEngine()
}

// Streams are the standard input and output of a command.
type Streams struct {
	In  io.Reader
	Out io.Writer
}

type streamsKey struct{}

// WithStreams returns a new context.Context whose commands read from in and
// write to out instead of the process's standard streams. A nil stream keeps
// its default.
func WithStreams(ctx context.Context, in io.Reader, out io.Writer) context.Context {
	return context.WithValue(ctx, streamsKey{}, Streams{In: in, Out: out})
}

func streamsFrom(ctx context.Context) Streams {
	s, _ := ctx.Value(streamsKey{}).(Streams)

	if s.In == nil {
		s.In = os.Stdin
	}

	if s.Out == nil {
		s.Out = os.Stdout
	}

	return s
}
