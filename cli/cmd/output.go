package cmd

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"

	"github.com/goccy/go-yaml"

	"github.com/ardnew/pyexpr/lang"
)

// Output formats of evaluated values.
const (
	OutputNative = "native"
	OutputJSON   = "json"
	OutputYAML   = "yaml"
)

// encode renders x, a [lang.Value] or plain Go data, in the named format.
// Native output is the expression repr of the value.
func encode(x any, format string, indent int) ([]byte, error) {
	switch format {
	case OutputJSON:
		b, err := json.Marshal(x)
		if err != nil {
			return nil, ErrEncode.Wrap(err).With(slog.String("format", format))
		}

		if indent > 0 {
			var buf bytes.Buffer

			err = json.Indent(&buf, b, "", string(bytes.Repeat([]byte{' '}, indent)))
			if err != nil {
				return nil, ErrEncode.Wrap(err).With(slog.String("format", format))
			}

			b = buf.Bytes()
		}

		return append(b, '\n'), nil

	case OutputYAML:
		opts := []yaml.EncodeOption{}
		if indent > 0 {
			opts = append(opts, yaml.Indent(indent), yaml.IndentSequence(true))
		}

		b, err := yaml.MarshalWithOptions(x, opts...)
		if err != nil {
			return nil, ErrEncode.Wrap(err).With(slog.String("format", format))
		}

		return b, nil

	default:
		if v, ok := x.(lang.Value); ok {
			return []byte(v.String() + "\n"), nil
		}

		v, err := lang.FromNative(x)
		if err != nil {
			return nil, ErrEncode.Wrap(err).With(slog.String("format", format))
		}

		return []byte(v.String() + "\n"), nil
	}
}

func write(w io.Writer, x any, format string, indent int) error {
	b, err := encode(x, format, indent)
	if err != nil {
		return err
	}

	return writeBytes(w, b)
}

func writeBytes(w io.Writer, b []byte) error {
	if _, err := w.Write(b); err != nil {
		return ErrWriteOutput.Wrap(err)
	}

	return nil
}

func writeLine(w io.Writer, format string, args ...any) error {
	if _, err := fmt.Fprintf(w, format+"\n", args...); err != nil {
		return ErrWriteOutput.Wrap(err)
	}

	return nil
}
