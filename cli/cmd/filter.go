package cmd

import (
	"context"
	"log/slog"

	"github.com/ardnew/pyexpr/domain"
	"github.com/ardnew/pyexpr/lang"
)

// Filter evaluates a domain and prints the records that satisfy it.
type Filter struct {
	Scope `embed:""`

	Domain  string   `arg:"" help:"Domain expression, e.g. \"[('state', '=', 'draft')]\"" name:"domain"`
	Records []string `      help:"JSON or YAML files holding lists of records ('-' for stdin)" placeholder:"FILE" required:"" short:"r" type:"path"`
	Output  string   `      help:"Output format"                                               default:"json" enum:"json,yaml" short:"o"`
	Indent  int      `      help:"Indent width of the output"                                  default:"2" short:"i"`
	Count   bool     `      help:"Print the number of matching records only"`
	Explain bool     `      help:"Print the normalized domain and its compiled condition instead of filtering"`
}

// Run executes the filter command.
func (f *Filter) Run(ctx context.Context) (err error) {
	ctx, cancel := context.WithCancelCause(ctx)

	defer func(err *error) { cancel(*err) }(&err)

	eng := engineFrom(ctx)

	env, err := f.Scope.env(ctx, eng)
	if err != nil {
		return err
	}

	d, err := domain.Parse(ctx, f.Domain, env, eng.Builtins, eng.Options...)
	if err != nil {
		return lang.WrapError(err).With(slog.String("command", "filter"))
	}

	program, err := domain.Compile(d)
	if err != nil {
		return lang.WrapError(err).With(slog.String("domain", d.String()))
	}

	out := streamsFrom(ctx).Out

	if f.Explain {
		if err := writeLine(out, "%s", program.Domain()); err != nil {
			return err
		}

		return writeLine(out, "%s", program.Source())
	}

	var records []map[string]any

	for _, name := range uniqueSources(f.Records) {
		data, err := readSource(ctx, name)
		if err != nil {
			return err
		}

		recs, err := decodeRecords(name, data)
		if err != nil {
			return err
		}

		records = append(records, recs...)
	}

	matched, err := domain.Filter(records, program)
	if err != nil {
		return err
	}

	eng.Logger.DebugContext(ctx, "filtered records",
		slog.String("domain", program.Domain().String()),
		slog.Int("records", len(records)),
		slog.Int("matched", len(matched)),
	)

	if f.Count {
		return writeLine(out, "%d", len(matched))
	}

	return write(out, matched, f.Output, f.Indent)
}
