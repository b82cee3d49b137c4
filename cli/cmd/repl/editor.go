package repl

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/exec"
	"strings"

	"github.com/ardnew/pyexpr/lang"
	"github.com/ardnew/pyexpr/log"
)

const defaultEditor = "vi"

// editContextCommand implements [tea.ExecCommand] for the edit-evaluate-retry
// loop over the session's bound names. It writes them as a dict expression
// to a temp file, opens the user's editor, and evaluates the result. On
// error the user is prompted to re-edit; declining exits the program.
type editContextCommand struct {
	session *session
	ctxFunc func() context.Context
	logger  log.Logger
	edited  *lang.Value
	stdin   io.Reader
	stdout  io.Writer
	stderr  io.Writer
}

// SetStdin sets the stdin reader for the command.
func (c *editContextCommand) SetStdin(r io.Reader) { c.stdin = r }

// SetStdout sets the stdout writer for the command.
func (c *editContextCommand) SetStdout(w io.Writer) { c.stdout = w }

// SetStderr sets the stderr writer for the command.
func (c *editContextCommand) SetStderr(w io.Writer) { c.stderr = w }

// Run executes the edit loop. An emptied file cancels the edit and leaves
// edited nil. If the user declines to re-edit after an error, it returns
// [ErrEditDeclined].
func (c *editContextCommand) Run() error {
	ctx := c.ctxFunc()
	content := lang.Pretty(c.session.context(), 2) + "\n"

	f, err := os.CreateTemp("", "pyexpr-repl-*.py")
	if err != nil {
		return err
	}

	tmpPath := f.Name()

	defer os.Remove(tmpPath)

	f.Close()

	for {
		if err := os.WriteFile(tmpPath, []byte(content), 0o600); err != nil {
			return err
		}

		if err := runEditor(ctx, c.stdin, c.stdout, c.stderr, tmpPath); err != nil {
			return err
		}

		data, err := os.ReadFile(tmpPath)
		if err != nil {
			return err
		}

		source := strings.TrimSpace(string(data))
		if source == "" {
			return nil
		}

		v, evalErr := c.evaluate(ctx, source)

		c.logger.TraceContext(ctx, "editor evaluate attempt",
			slog.Int("content_length", len(data)),
			slog.Bool("success", evalErr == nil),
		)

		if evalErr == nil {
			c.edited = &v

			return nil
		}

		fmt.Fprintf(c.stderr, "\nError: %s\n", evalErr)
		fmt.Fprint(c.stdout, "Re-edit? [Y/n] ")

		scanner := bufio.NewScanner(c.stdin)
		if !scanner.Scan() {
			return ErrEditDeclined
		}

		if answer := strings.ToLower(strings.TrimSpace(scanner.Text())); answer == "n" || answer == "no" {
			return ErrEditDeclined
		}

		content = string(data)
	}
}

// evaluate reads an edited context. Names in it resolve to builtins only, so
// the result does not depend on the bindings it replaces.
func (c *editContextCommand) evaluate(ctx context.Context, source string) (lang.Value, error) {
	v, err := lang.EvaluateExpr(ctx, source, nil, c.session.builtins, c.session.opts...)
	if err != nil {
		return lang.None, err
	}

	check := &session{}
	if err := check.replace(v); err != nil {
		return lang.None, err
	}

	return v, nil
}

// runEditor launches the user's editor on the given file path.
func runEditor(
	ctx context.Context,
	stdin io.Reader,
	stdout io.Writer,
	stderr io.Writer,
	path string,
) error {
	fields := strings.Fields(os.Getenv("VISUAL"))
	if len(fields) == 0 {
		fields = strings.Fields(os.Getenv("EDITOR"))
	}

	if len(fields) == 0 {
		fields = []string{defaultEditor}
	}

	cmd := exec.CommandContext(ctx, fields[0], append(fields[1:], path)...) //nolint:gosec
	cmd.Stdin = stdin
	cmd.Stdout = stdout
	cmd.Stderr = stderr

	return cmd.Run()
}
