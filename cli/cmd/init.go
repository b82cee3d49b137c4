package cmd

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/alecthomas/kong"

	"github.com/ardnew/pyexpr/lang"
	"github.com/ardnew/pyexpr/profile"
)

// defaultConfigIndent is the number of spaces to use for indentation
// when generating the default configuration file.
const defaultConfigIndent = 2

// Init generates a default configuration file with current flag values.
type Init struct {
	Force bool `help:"Overwrite existing configuration file" short:"f"`
}

// Run executes the init command.
func (i *Init) Run(ctx context.Context) (err error) {
	ctx, cancel := context.WithCancelCause(ctx)

	defer func(err *error) { cancel(*err) }(&err)

	confPath, ok := kongVar(ctx, ConfigIdentifier)
	if !ok {
		panic("internal error: config path undefined")
	}

	_, err = os.Stat(confPath)
	if err == nil && !i.Force {
		return ErrWriteConfig.
			With(slog.String("file", confPath)).
			Wrap(ErrFileExists)
	}

	if err := os.MkdirAll(filepath.Dir(confPath), 0o755); err != nil {
		return ErrWriteConfig.With(slog.String("file", confPath)).Wrap(err)
	}

	config := lang.Pretty(i.config(ctx), defaultConfigIndent) + "\n"

	if err := os.WriteFile(confPath, []byte(config), 0o644); err != nil { //nolint:gosec
		return ErrWriteConfig.With(slog.String("file", confPath)).Wrap(err)
	}

	engineFrom(ctx).Logger.DebugContext(ctx, "initialized configuration file",
		slog.String("path", confPath),
	)

	return nil
}

// config returns the application flags and their current values as a dict
// keyed by flag name with hyphens replaced by underscores.
func (i *Init) config(ctx context.Context) lang.Value {
	ktx := kongContextFrom(ctx)
	d := lang.NewDict()

	ignore := []string{"help", "version", profile.Tag}

	for _, flag := range ktx.Model.Flags {
		if flag.Hidden || slices.ContainsFunc(ignore, func(s string) bool {
			return strings.HasPrefix(flag.Name, s)
		}) {
			continue
		}

		if v, ok := flagValue(ktx, flag); ok {
			d.SetString(strings.ReplaceAll(flag.Name, "-", "_"), v)
		}
	}

	return lang.NewDictValue(d)
}

// flagValue converts the current value of flag. Empty strings and lists are
// left out of the configuration.
func flagValue(ktx *kong.Context, flag *kong.Flag) (lang.Value, bool) {
	x := ktx.FlagValue(flag)
	if x == nil {
		return lang.None, false
	}

	if s, ok := x.(string); ok && s == "" {
		return lang.None, false
	}

	v, err := lang.FromNative(x)
	if err != nil {
		if s, ok := x.(interface{ String() string }); ok {
			return lang.NewString(s.String()), true
		}

		return lang.None, false
	}

	if n, ok := v.Len(); ok && n == 0 && v.Kind != lang.KindString {
		return lang.None, false
	}

	return v, true
}
