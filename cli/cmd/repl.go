package cmd

import (
	"context"

	"github.com/ardnew/pyexpr/cli/cmd/repl"
)

// Repl starts an interactive session evaluating expressions.
type Repl struct {
	Scope `embed:""`

	NoHistory bool `help:"Do not read or record input history"`
}

// Run executes the repl command.
func (r *Repl) Run(ctx context.Context) (err error) {
	ctx, cancel := context.WithCancelCause(ctx)

	defer func(err *error) { cancel(*err) }(&err)

	eng := engineFrom(ctx)

	env, err := r.Scope.env(ctx, eng)
	if err != nil {
		return err
	}

	cfg := repl.Config{
		Env:      env,
		Builtins: eng.Builtins,
		Options:  eng.Options,
		Logger:   eng.Logger,
	}

	if dir, ok := kongVar(ctx, CacheIdentifier); ok && !r.NoHistory {
		cfg.CacheDir = dir
	}

	return repl.Run(ctx, cfg)
}
