package cmd

import (
	"context"
	"log/slog"

	"github.com/ardnew/pyexpr/lang"
)

// Eval evaluates expressions and prints their values.
type Eval struct {
	Scope `embed:""`

	Exprs  []string `arg:""  help:"Expressions to evaluate; read from --file when omitted" name:"expr" optional:""`
	File   []string `       help:"Read one expression per file ('-' for stdin)"            placeholder:"FILE" short:"f" type:"path"`
	Output string   `       help:"Output format"                                           default:"native" enum:"native,json,yaml" short:"o"`
	Indent int      `       help:"Indent width of JSON and YAML output"                    default:"2" short:"i"`

	Condition bool `help:"Print the truthiness of each expression; failures print --fallback" short:"b"`
	Fallback  bool `help:"Result of a condition that fails to evaluate"`
}

// Run executes the eval command.
func (e *Eval) Run(ctx context.Context) (err error) {
	ctx, cancel := context.WithCancelCause(ctx)

	defer func(err *error) { cancel(*err) }(&err)

	eng := engineFrom(ctx)

	env, err := e.Scope.env(ctx, eng)
	if err != nil {
		return err
	}

	sources, err := e.sources(ctx)
	if err != nil {
		return err
	}

	out := streamsFrom(ctx).Out

	for _, src := range sources {
		var v lang.Value

		if e.Condition {
			v = lang.NewBool(lang.EvaluateBool(ctx, src, env, eng.Builtins, e.Fallback, eng.Options...))
		} else {
			v, err = eng.Evaluate(ctx, src, env)
			if err != nil {
				return lang.WrapError(err).With(
					slog.String("command", "eval"),
					slog.String("class", lang.ClassName(err)),
				)
			}
		}

		if err := write(out, v, e.Output, e.Indent); err != nil {
			return err
		}
	}

	return nil
}

// sources returns the expressions to evaluate: the arguments, or else the
// contents of each file, or else standard input.
func (e *Eval) sources(ctx context.Context) ([]string, error) {
	if len(e.Exprs) > 0 {
		return e.Exprs, nil
	}

	files := uniqueSources(e.File)
	if len(files) == 0 {
		files = []string{stdinSource}
	}

	out := make([]string, 0, len(files))

	for _, name := range files {
		src, err := readExpression(ctx, name)
		if err != nil {
			return nil, err
		}

		out = append(out, src)
	}

	return out, nil
}
