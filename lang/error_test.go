package lang

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"testing"
)

func TestError_IsMatchesSentinelAndClass(t *testing.T) {
	t.Parallel()

	err := ErrZeroDivision.With(slog.String("op", "/")).WithPosition(Position{Line: 1, Column: 3})

	if !errors.Is(err, ErrZeroDivision) {
		t.Error("derived error does not match its sentinel")
	}

	if !errors.Is(err, ErrType) {
		t.Error("derived error does not match its class")
	}

	if errors.Is(err, ErrName) || errors.Is(err, ErrKey) {
		t.Error("derived error matches an unrelated sentinel")
	}

	if ErrorClass(err) != ErrType {
		t.Errorf("ErrorClass = %v, want %v", ErrorClass(err), ErrType)
	}
}

func TestError_Message(t *testing.T) {
	t.Parallel()

	err := ErrUndefinedName.
		With(slog.String("name", "bar")).
		WithPosition(Position{Offset: 4, Line: 2, Column: 1})

	want := "name error: name is not defined at 2:1 name=bar"
	if err.Error() != want {
		t.Errorf("Error() = %q, want %q", err.Error(), want)
	}

	if ErrSyntax.Error() != "syntax error" {
		t.Errorf("class Error() = %q", ErrSyntax.Error())
	}
}

func TestError_InnermostPositionWins(t *testing.T) {
	t.Parallel()

	inner := Position{Offset: 7, Line: 1, Column: 8}
	err := ErrIndex.WithPosition(inner).WithPosition(Position{Line: 1, Column: 1})

	if pos, ok := err.Position(); !ok || pos != inner {
		t.Errorf("Position = %+v, want %+v", pos, inner)
	}
}

func TestError_WrapUnwrap(t *testing.T) {
	t.Parallel()

	err := ErrReadInput.Wrap(io.ErrUnexpectedEOF)

	if !errors.Is(err, io.ErrUnexpectedEOF) {
		t.Error("wrapped cause not found")
	}

	if !strings.HasSuffix(err.Error(), io.ErrUnexpectedEOF.Error()) {
		t.Errorf("Error() = %q does not end with cause", err.Error())
	}

	if ClassName(err) != "Error" {
		t.Errorf("ClassName = %q, want Error", ClassName(err))
	}

	if WrapError(err) != err {
		t.Error("WrapError re-wrapped an engine error")
	}

	plain := WrapError(io.EOF)
	if !errors.Is(plain, io.EOF) {
		t.Error("WrapError lost its cause")
	}
}

func TestError_ImmutableBuilders(t *testing.T) {
	t.Parallel()

	base := ErrKey.With(slog.String("key", "a"))
	_ = base.With(slog.String("extra", "b"))

	if strings.Contains(base.Error(), "extra") {
		t.Errorf("With modified its receiver: %q", base.Error())
	}
}

func TestError_LogValue(t *testing.T) {
	t.Parallel()

	err := ErrArgument.Wrap(fmt.Errorf("bad")).With(slog.String("func", "f"))

	got := map[string]string{}
	for _, a := range err.LogValue().Group() {
		got[a.Key] = a.Value.String()
	}

	want := map[string]string{
		"class": "type error",
		"error": "invalid argument",
		"cause": "bad",
		"func":  "f",
	}

	for k, v := range want {
		if got[k] != v {
			t.Errorf("LogValue[%s] = %q, want %q", k, got[k], v)
		}
	}
}

func TestClassName(t *testing.T) {
	t.Parallel()

	tests := map[error]string{
		ErrInvalidCharacter: "SyntaxError",
		ErrNoAttribute:      "NameError",
		ErrUnhashable:       "TypeError",
		ErrForbiddenCall:    "ForbiddenCallError",
		ErrNotImplemented:   "NotImplementedError",
		io.EOF:              "Error",
	}

	for err, want := range tests {
		if got := ClassName(err); got != want {
			t.Errorf("ClassName(%v) = %q, want %q", err, got, want)
		}
	}
}
