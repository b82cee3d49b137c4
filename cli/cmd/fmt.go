package cmd

import (
	"context"
	"log/slog"

	"github.com/ardnew/pyexpr/lang"
)

// Fmt reformats or inspects a single expression.
type Fmt struct {
	Native Native `cmd:"" default:"withargs" help:"Print the canonical form of the expression (default)."`
	JSON   JSON   `cmd:""                    help:"Evaluate a literal expression and print it as JSON."`
	YAML   YAML   `cmd:""                    help:"Evaluate a literal expression and print it as YAML."`
	AST    AST    `cmd:""                    help:"Print the syntax tree of the expression."`
	Tokens Tokens `cmd:""                    help:"Print the tokens of the expression."`
}

// Input names the expression a fmt subcommand reads.
type Input struct {
	Source string `arg:"" default:"-" help:"Source input file or '-' for default stdin." name:"source"`
	Expr   string `       help:"Expression text; takes precedence over source"           short:"e"`
}

func (in Input) read(ctx context.Context) (string, error) {
	if in.Expr != "" {
		return in.Expr, nil
	}

	return readExpression(ctx, in.Source)
}

func (in Input) parse(ctx context.Context, format string) (lang.Node, error) {
	src, err := in.read(ctx)
	if err != nil {
		return nil, err
	}

	node, err := engineFrom(ctx).Parse(ctx, src)
	if err != nil {
		return nil, lang.WrapError(err).With(slog.String("format", format))
	}

	return node, nil
}

// Native formats input as canonical expression source.
type Native struct {
	Input `embed:""`
}

// Run executes the fmt native command.
func (f *Native) Run(ctx context.Context) error {
	node, err := f.parse(ctx, OutputNative)
	if err != nil {
		return err
	}

	return writeLine(streamsFrom(ctx).Out, "%s", lang.Format(node))
}

// JSON evaluates input without context and prints the value as JSON.
type JSON struct {
	Input `embed:""`

	Indent int `default:"2" help:"Indent width for JSON output" short:"i"`
}

// Run executes the fmt json command.
func (j *JSON) Run(ctx context.Context) error {
	return convert(ctx, j.Input, OutputJSON, j.Indent)
}

// YAML evaluates input without context and prints the value as YAML.
type YAML struct {
	Input `embed:""`

	Indent int `default:"2" help:"Indent width for YAML output" short:"i"`
}

// Run executes the fmt yaml command.
func (y *YAML) Run(ctx context.Context) error {
	return convert(ctx, y.Input, OutputYAML, y.Indent)
}

func convert(ctx context.Context, in Input, format string, indent int) error {
	node, err := in.parse(ctx, format)
	if err != nil {
		return err
	}

	eng := engineFrom(ctx)

	v, err := lang.Evaluate(ctx, node, nil, eng.Builtins, eng.Options...)
	if err != nil {
		return lang.WrapError(err).With(slog.String("format", format))
	}

	return write(streamsFrom(ctx).Out, v, format, indent)
}

// AST prints the syntax tree of the input.
type AST struct {
	Input `embed:""`
}

// Run executes the fmt ast command.
func (a *AST) Run(ctx context.Context) error {
	node, err := a.parse(ctx, "ast")
	if err != nil {
		return err
	}

	return writeBytes(streamsFrom(ctx).Out, []byte(lang.Dump(node)))
}

// Tokens prints one token per line with its position and kind.
type Tokens struct {
	Input `embed:""`
}

// Run executes the fmt tokens command.
func (t *Tokens) Run(ctx context.Context) error {
	src, err := t.read(ctx)
	if err != nil {
		return err
	}

	tokens, err := lang.Tokenize(src)
	if err != nil {
		return lang.WrapError(err).With(slog.String("format", "tokens"))
	}

	out := streamsFrom(ctx).Out

	for _, tok := range tokens {
		if err := writeLine(out, "%s\t%s\t%s", tok.Pos, tok.Kind, tok); err != nil {
			return err
		}
	}

	return nil
}
