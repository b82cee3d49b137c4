package cmd

import (
	"context"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/goccy/go-yaml"
	"github.com/klauspost/readahead"

	"github.com/ardnew/pyexpr/lang"
)

// stdinSource is the special source indicator for reading from stdin.
const stdinSource = "-"

// fileKey uniquely identifies a file by its device and inode numbers, so
// that a file named twice through different paths or symlinks is read once.
type fileKey struct {
	dev uint64
	ino uint64
}

// uniqueSources returns sources with duplicates removed, keeping the first
// occurrence of each file. Every "-" after the first is dropped. Names that
// cannot be resolved are kept so that reading them reports the error.
func uniqueSources(sources []string) []string {
	out := make([]string, 0, len(sources))
	seen := make(map[fileKey]struct{})
	stdin := false

	for _, src := range sources {
		if src == stdinSource {
			if !stdin {
				out = append(out, src)
			}

			stdin = true

			continue
		}

		key, ok := sourceKey(src)
		if ok {
			if _, dup := seen[key]; dup {
				continue
			}

			seen[key] = struct{}{}
		}

		out = append(out, src)
	}

	return out
}

func sourceKey(path string) (fileKey, bool) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return fileKey{}, false
	}

	resolved, err := filepath.EvalSymlinks(abs)
	if err != nil {
		return fileKey{}, false
	}

	info, err := os.Stat(resolved)
	if err != nil {
		return fileKey{}, false
	}

	stat, ok := info.Sys().(*syscall.Stat_t)
	if !ok {
		return fileKey{}, false
	}

	return fileKey{dev: uint64(stat.Dev), ino: stat.Ino}, true //nolint:unconvert
}

// readSource reads the named source through a read-ahead buffer. The name
// "-" reads the command's standard input.
func readSource(ctx context.Context, name string) ([]byte, error) {
	var r io.Reader

	if name == stdinSource {
		r = streamsFrom(ctx).In
	} else {
		f, err := os.Open(name)
		if err != nil {
			return nil, ErrReadInput.Wrap(err).With(slog.String("source", name))
		}
		defer f.Close()

		r = f
	}

	ra := readahead.NewReader(r)
	defer ra.Close()

	data, err := io.ReadAll(ra)
	if err != nil {
		return nil, ErrReadInput.Wrap(err).With(slog.String("source", name))
	}

	return data, nil
}

// readExpression returns the expression held by the named source with
// surrounding whitespace removed.
func readExpression(ctx context.Context, name string) (string, error) {
	data, err := readSource(ctx, name)
	if err != nil {
		return "", err
	}

	return strings.TrimSpace(string(data)), nil
}

// decodeDocument decodes a JSON or YAML document into a value. Mappings keep
// the order of their keys.
func decodeDocument(name string, data []byte) (lang.Value, error) {
	var doc any

	err := yaml.UnmarshalWithOptions(data, &doc, yaml.UseOrderedMap())
	if err != nil {
		return lang.None, ErrDecode.Wrap(err).With(slog.String("source", name))
	}

	v, err := lang.FromNative(doc)
	if err != nil {
		return lang.None, ErrDecode.Wrap(err).With(slog.String("source", name))
	}

	return v, nil
}

// decodeRecords decodes a JSON or YAML list of mappings.
func decodeRecords(name string, data []byte) ([]map[string]any, error) {
	var records []map[string]any

	err := yaml.Unmarshal(data, &records)
	if err != nil {
		return nil, ErrDecodeRecords.Wrap(err).With(slog.String("source", name))
	}

	return records, nil
}

// Scope gathers the names an expression is evaluated with.
type Scope struct {
	Context []string `help:"JSON or YAML file of context values ('-' for stdin)" placeholder:"FILE" short:"c" type:"path"`
	Define  []string `help:"Bind NAME to the value of EXPR"                        placeholder:"NAME=EXPR" short:"D"`
}

// env loads the context files in order and then evaluates the definitions,
// each of which sees the names bound before it.
func (s Scope) env(ctx context.Context, eng *Engine) (lang.Env, error) {
	env := lang.Env{}

	for _, name := range uniqueSources(s.Context) {
		data, err := readSource(ctx, name)
		if err != nil {
			return nil, err
		}

		v, err := decodeDocument(name, data)
		if err != nil {
			return nil, err
		}

		if v.IsNone() {
			continue
		}

		if v.Kind != lang.KindDict {
			return nil, ErrDecodeContext.With(
				slog.String("source", name),
				slog.String("type", v.TypeName()),
			)
		}

		// Decoders may hand back numeric keys as strings, so the key is checked
		// as a name rather than by kind.
		for key, val := range v.Dict.All() {
			if key.Kind != lang.KindString || !lang.IsIdentifier(key.Str) {
				return nil, ErrDecodeContext.With(
					slog.String("source", name),
					slog.String("key", key.String()),
				)
			}

			env[key.Str] = val
		}
	}

	for _, def := range s.Define {
		name, source, ok := strings.Cut(def, "=")
		name = strings.TrimSpace(name)

		if !ok || !lang.IsIdentifier(name) {
			return nil, ErrInvalidDefinition.With(slog.String("define", def))
		}

		v, err := eng.Evaluate(ctx, source, env)
		if err != nil {
			return nil, lang.WrapError(err).With(slog.String("define", name))
		}

		env[name] = v
	}

	eng.Logger.DebugContext(ctx, "context loaded",
		slog.Int("files", len(s.Context)),
		slog.Int("names", len(env)),
	)

	return env, nil
}
