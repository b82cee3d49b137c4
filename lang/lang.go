package lang

import (
	"context"
	"log/slog"
)

// EvaluateExpr parses and evaluates source in one step. It is the entry
// point used by hosts that evaluate domain and context strings.
func EvaluateExpr(
	ctx context.Context,
	source string,
	env Env,
	builtins *Registry,
	opts ...Option,
) (Value, error) {
	node, err := ParseString(ctx, source, opts...)
	if err != nil {
		return None, err
	}

	return Evaluate(ctx, node, env, builtins, opts...)
}

// EvaluateBool evaluates source and returns its truthiness. Any error,
// including a syntax error, yields fallback instead; the error is logged at
// debug level. Hosts use it for optional view conditions where an invalid
// expression must not abort rendering.
func EvaluateBool(
	ctx context.Context,
	source string,
	env Env,
	builtins *Registry,
	fallback bool,
	opts ...Option,
) bool {
	v, err := EvaluateExpr(ctx, source, env, builtins, opts...)
	if err != nil {
		makeOptions(opts...).logger.DebugContext(ctx, "condition fallback",
			slog.String("source", source),
			slog.Bool("fallback", fallback),
			slog.Any("error", err),
		)

		return fallback
	}

	return v.Truthy()
}
