package cli

import (
	"context"
	"io"
	"log/slog"
	"strconv"
	"strings"

	"github.com/alecthomas/kong"

	"github.com/ardnew/pyexpr/builtins"
	"github.com/ardnew/pyexpr/lang"
	"github.com/ardnew/pyexpr/log"
)

// resolve returns a [kong.ConfigurationLoader] for configuration files
// written as a dict expression. The expression is evaluated without names
// other than the default builtins:
//
//	{
//	  'log_level': 'debug',
//	  'locale': 'fr_FR',
//	  'eval': {'output': 'json'},
//	  'filter': {'indent': 4},
//	}
//
// Keys name flags with hyphens or underscores. A nested dict keyed by a
// command name holds flags of that command; flags given at the top level
// apply to every command that has them. Command-line flags override the
// file. A file that fails to parse or evaluate is ignored with a warning.
func resolve(ctx context.Context) kong.ConfigurationLoader {
	return func(r io.Reader) (kong.Resolver, error) {
		node, err := lang.ParseReader(ctx, r)
		if err != nil {
			log.WarnContext(ctx, "ignoring configuration file", slog.Any("error", err))

			return config{}, nil
		}

		v, err := lang.Evaluate(ctx, node, nil, builtins.Default())
		if err != nil {
			log.WarnContext(ctx, "ignoring configuration file", slog.Any("error", err))

			return config{}, nil
		}

		if v.Kind != lang.KindDict {
			log.WarnContext(ctx, "ignoring configuration file",
				slog.String("error", "not a dict"),
				slog.String("type", v.TypeName()),
			)

			return config{}, nil
		}

		return makeConfig(v.Dict), nil
	}
}

// config implements [kong.Resolver] over an evaluated configuration dict.
type config struct {
	values map[string]any
	scopes map[string]config
}

func makeConfig(d *lang.Dict) config {
	c := config{values: map[string]any{}, scopes: map[string]config{}}

	for key, val := range d.All() {
		if key.Kind != lang.KindString {
			continue
		}

		name := normalize(key.Str)

		if val.Kind == lang.KindDict {
			c.scopes[name] = makeConfig(val.Dict)

			continue
		}

		if x, ok := flagInput(val); ok {
			c.values[name] = x
		}
	}

	return c
}

// normalize maps a configuration key to the form of kong flag names.
func normalize(key string) string {
	return strings.ReplaceAll(key, "_", "-")
}

// flagInput converts a value to the form kong parses flag values from.
// Numbers are given as text, and sequences as lists of scalars.
func flagInput(v lang.Value) (any, bool) {
	switch v.Kind {
	case lang.KindBool:
		return v.Bool, true
	case lang.KindInt:
		return strconv.FormatInt(v.Int, 10), true
	case lang.KindFloat:
		return strconv.FormatFloat(v.Float, 'f', -1, 64), true
	case lang.KindString:
		return v.Str, true
	case lang.KindList, lang.KindTuple:
		items := make([]any, 0, len(v.Items))

		for _, item := range v.Items {
			x, ok := flagInput(item)
			if !ok {
				return nil, false
			}

			if b, isBool := x.(bool); isBool {
				x = strconv.FormatBool(b)
			}

			items = append(items, x)
		}

		return items, true
	}

	return nil, false
}

// Validate implements [kong.Resolver].
func (config) Validate(*kong.Application) error {
	return nil
}

// Resolve implements [kong.Resolver]. The flag is looked up in the scope of
// the command it belongs to first, then in each enclosing scope.
func (c config) Resolve(
	_ *kong.Context,
	parent *kong.Path,
	flag *kong.Flag,
) (any, error) {
	scopes := []config{c}

	if parent != nil && parent.Command != nil {
		scope := c

		for name := range strings.FieldsSeq(parent.Command.Path()) {
			next, ok := scope.scopes[normalize(name)]
			if !ok {
				break
			}

			scopes = append(scopes, next)
			scope = next
		}
	}

	name := normalize(flag.Name)

	for i := len(scopes) - 1; i >= 0; i-- {
		if x, ok := scopes[i].values[name]; ok {
			return x, nil
		}
	}

	return nil, nil //nolint:nilnil
}
