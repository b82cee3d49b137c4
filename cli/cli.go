package cli

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/alecthomas/kong"

	"github.com/ardnew/pyexpr/builtins"
	"github.com/ardnew/pyexpr/cli/cmd"
	"github.com/ardnew/pyexpr/lang"
	"github.com/ardnew/pyexpr/log"
	"github.com/ardnew/pyexpr/pkg"
)

// baseConfig is the base name of the configuration file.
const baseConfig = "config"

// defaultDirMode is the permission mode of created directories.
const defaultDirMode os.FileMode = 0o700

// CLI is the top-level command-line interface for pyexpr.
type CLI struct {
	Log    logConfig    `embed:"" group:"log"    prefix:"log-"`
	Pprof  pprofConfig  `embed:"" group:"pprof"  prefix:"pprof-"`
	Engine engineConfig `embed:"" group:"engine"`

	Version kong.VersionFlag `help:"Print version and exit." short:"V"`

	Eval   cmd.Eval   `cmd:"" default:"withargs" help:"Evaluate expressions"`
	Fmt    cmd.Fmt    `cmd:""                    help:"Format or inspect an expression"`
	Filter cmd.Filter `cmd:""                    help:"Filter records with a domain"`
	Repl   cmd.Repl   `cmd:""                    help:"Start an interactive session"`
	Init   cmd.Init   `cmd:""                    help:"Initialize configuration file"`
}

// engineConfig holds the flags that shape expression evaluation.
type engineConfig struct {
	Locale      string `default:"en_US"           help:"Locale of month and weekday names in strftime."`
	Timezone    string `default:"UTC"             help:"Time zone of today and now (an IANA name or Local)." placeholder:"TZ"`
	MaxDepth    int    `default:"${maxDepth}"     help:"Maximum nesting depth of an expression."`
	MaxTokens   int    `default:"${maxTokens}"    help:"Maximum number of tokens in an expression."`
	MaxSequence int    `default:"${maxSequence}"  help:"Maximum length of a string, list or tuple built by an expression."`
}

func (*engineConfig) vars() kong.Vars {
	return kong.Vars{
		"maxDepth":    strconv.Itoa(lang.DefaultMaxDepth),
		"maxTokens":   strconv.Itoa(lang.DefaultMaxTokens),
		"maxSequence": strconv.Itoa(lang.DefaultMaxSequence),
	}
}

func (*engineConfig) group() kong.Group {
	return kong.Group{Key: "engine", Title: "Evaluation options"}
}

// engine builds the evaluation engine shared by every command. An unknown
// locale falls back to en_US with a warning.
func (f *engineConfig) engine(ctx context.Context) (*cmd.Engine, error) {
	loc, err := time.LoadLocation(f.Timezone)
	if err != nil {
		return nil, err
	}

	locale, ok := builtins.ParseLocale(f.Locale)
	if !ok {
		log.WarnContext(ctx, "unknown locale",
			slog.String("locale", f.Locale),
			slog.String("using", string(locale)),
		)
	}

	logger := log.Default()

	return &cmd.Engine{
		Builtins: builtins.Default(
			builtins.WithLocation(loc),
			builtins.WithLocale(locale),
		),
		Options: []lang.Option{
			lang.WithLogger(logger),
			lang.WithMaxDepth(f.MaxDepth),
			lang.WithMaxTokens(f.MaxTokens),
			lang.WithMaxSequence(f.MaxSequence),
		},
		Logger: logger,
	}, nil
}

// Run executes the pyexpr CLI with the given context and arguments.
// The exit function is called with the appropriate exit code upon completion.
func Run(
	ctx context.Context,
	exit func(code int),
	args ...string,
) error {
	var cli CLI

	for _, dir := range []string{pkg.ConfigDir(), pkg.CacheDir()} {
		if err := os.MkdirAll(dir, defaultDirMode); err != nil {
			return err
		}
	}

	configFilePath := filepath.Join(pkg.ConfigDir(), baseConfig)

	vars := kong.Vars{
		"version":            pkg.Version(),
		cmd.ConfigIdentifier: configFilePath,
		cmd.CacheIdentifier:  pkg.CacheDir(),
	}.
		CloneWith(cli.Log.vars()).
		CloneWith(cli.Pprof.vars()).
		CloneWith(cli.Engine.vars())

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	// Logging flags take effect before the rest of the command line is
	// parsed, wherever they appear.
	cli.Log.scan(args)

	parser, err := kong.New(&cli,
		kong.Name(pkg.Name),
		kong.Description(pkg.Description),
		kong.UsageOnError(),
		kong.Exit(exit),
		kong.ExplicitGroups(
			[]kong.Group{cli.Log.group(), cli.Pprof.group(), cli.Engine.group()},
		),
		kong.BindSingletonProvider(func() context.Context {
			return ctx
		}),
		kong.ConfigureHelp(
			kong.HelpOptions{
				Compact:             true,
				Summary:             true,
				Tree:                true,
				NoExpandSubcommands: true,
			}),
		kong.Configuration(kong.JSON, configFilePath+".json"),
		kong.Configuration(resolve(ctx), configFilePath),
		vars,
	)
	if err != nil {
		return err
	}

	ktx, err := parser.Parse(args)
	if err != nil {
		return err
	}

	cli.Log.start(ctx)

	eng, err := cli.Engine.engine(ctx)
	if err != nil {
		return err
	}

	ctx = cmd.WithContext(ctx, ktx)
	ctx = cmd.WithEngine(ctx, eng)

	// No-op unless built with tag pprof and a mode is selected.
	defer cli.Pprof.start(ctx)()

	return ktx.Run(ctx)
}
