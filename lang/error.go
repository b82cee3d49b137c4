package lang

import (
	"errors"
	"log/slog"
	"strings"
)

// Error classes. Every error produced by the engine belongs to exactly one of
// these classes, so errors.Is(err, ErrType) holds for any type error variant.
var (
	ErrSyntax         = NewError("syntax error")
	ErrName           = NewError("name error")
	ErrType           = NewError("type error")
	ErrForbiddenCall  = NewError("forbidden call")
	ErrNotImplemented = NewError("not implemented")
)

// Syntax error variants.
var (
	ErrInvalidCharacter  = ErrSyntax.Subclass("invalid character")
	ErrInvalidNumber     = ErrSyntax.Subclass("invalid number literal")
	ErrInvalidString     = ErrSyntax.Subclass("invalid string literal")
	ErrUnterminated      = ErrSyntax.Subclass("unterminated string literal")
	ErrUnexpectedToken   = ErrSyntax.Subclass("unexpected token")
	ErrEmptyExpression   = ErrSyntax.Subclass("empty expression")
	ErrMaxDepthExceeded  = ErrSyntax.Subclass("maximum nesting depth exceeded")
	ErrMaxTokensExceeded = ErrSyntax.Subclass("maximum token count exceeded")
)

// Name error variants.
var (
	ErrUndefinedName = ErrName.Subclass("name is not defined")
	ErrNoAttribute   = ErrName.Subclass("attribute not found")
)

// Type error variants.
var (
	ErrUnsupportedOperand = ErrType.Subclass("unsupported operand")
	ErrZeroDivision       = ErrType.Subclass("division by zero")
	ErrIndex              = ErrType.Subclass("index out of range")
	ErrKey                = ErrType.Subclass("key not found")
	ErrUnhashable         = ErrType.Subclass("unhashable type")
	ErrNotSubscriptable   = ErrType.Subclass("object is not subscriptable")
	ErrCallableResult     = ErrType.Subclass("expression evaluated to a callable")
	ErrArgument           = ErrType.Subclass("invalid argument")
	ErrSequenceTooLarge   = ErrType.Subclass("sequence too large")
	ErrUnsupportedNative  = ErrType.Subclass("unsupported native type")
)

// Errors outside the evaluation taxonomy.
var (
	ErrReadInput   = NewError("failed to read input")
	ErrInterrupted = NewError("evaluation interrupted")
)

// Error represents an engine error with optional structured logging
// attributes. It implements both error and slog.LogValuer interfaces.
//
// Errors are immutable: every builder method returns a new Error that still
// matches its originating sentinel and class with errors.Is.
type Error struct {
	origin *Error // sentinel this error was derived from
	class  *Error // taxonomy class
	msg    string
	err    error // wrapped cause
	pos    *Position
	attrs  []slog.Attr
}

// NewError creates a new sentinel Error that is its own class.
func NewError(msg string) *Error {
	e := &Error{msg: msg}
	e.origin = e
	e.class = e

	return e
}

// WrapError wraps a standard error into an Error.
// An error that already is an [Error] is returned unchanged.
func WrapError(err error) *Error {
	ee := &Error{}
	if errors.As(err, &ee) {
		return ee
	}

	e := &Error{err: err}
	e.origin = e
	e.class = e

	return e
}

// Subclass creates a new sentinel Error belonging to the receiver's class.
func (e *Error) Subclass(msg string) *Error {
	s := &Error{msg: msg, class: e.class}
	s.origin = s

	return s
}

// Class returns the taxonomy class of the error, e.g. [ErrType] for
// [ErrZeroDivision].
func (e *Error) Class() *Error { return e.class }

// Message returns the error's own message without class, position or cause.
func (e *Error) Message() string { return e.msg }

// Position returns the source position attached to the error, if any.
func (e *Error) Position() (Position, bool) {
	if e.pos == nil {
		return Position{}, false
	}

	return *e.pos, true
}

// Error implements the error interface.
//
// The message is rendered as "<class>: <msg> [<pos>] <attrs>: <cause>",
// omitting every part that is unset.
func (e *Error) Error() string {
	part := make([]string, 0, 3)

	if e.class != nil && e.class != e.origin && e.class.msg != "" {
		part = append(part, e.class.msg)
	}

	var sb strings.Builder

	sb.WriteString(e.msg)

	if e.pos != nil {
		if sb.Len() > 0 {
			sb.WriteByte(' ')
		}

		sb.WriteString("at ")
		sb.WriteString(e.pos.String())
	}

	for _, a := range e.attrs {
		if sb.Len() > 0 {
			sb.WriteByte(' ')
		}

		sb.WriteString(a.Key)
		sb.WriteByte('=')
		sb.WriteString(a.Value.String())
	}

	if sb.Len() > 0 {
		part = append(part, sb.String())
	}

	if e.err != nil {
		part = append(part, e.err.Error())
	}

	return strings.Join(part, ": ")
}

// Unwrap implements error unwrapping for errors.Is/As.
func (e *Error) Unwrap() error { return e.err }

// Is reports whether target is the sentinel or the class this error was
// derived from.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok || t == nil {
		return false
	}

	return t == e.origin || t == e.class
}

// LogValue implements slog.LogValuer for rich structured logging.
func (e *Error) LogValue() slog.Value {
	attrs := make([]slog.Attr, 0, len(e.attrs)+4)

	if e.class != nil && e.class != e.origin {
		attrs = append(attrs, slog.String("class", e.class.msg))
	}

	if e.msg != "" {
		attrs = append(attrs, slog.String("error", e.msg))
	}

	if e.pos != nil {
		attrs = append(attrs, slog.String("pos", e.pos.String()))
	}

	if e.err != nil {
		attrs = append(attrs, slog.String("cause", e.err.Error()))
	}

	return slog.GroupValue(append(attrs, e.attrs...)...)
}

// Wrap creates a new Error wrapping another error.
func (e *Error) Wrap(err error) *Error {
	c := e.clone()
	c.err = err

	return c
}

// With adds attributes to the error for structured logging.
func (e *Error) With(attrs ...slog.Attr) *Error {
	c := e.clone()
	c.attrs = make([]slog.Attr, len(e.attrs)+len(attrs))
	copy(c.attrs, e.attrs)
	copy(c.attrs[len(e.attrs):], attrs)

	return c
}

// WithPosition attaches a source position to the error. An existing position
// is kept, so the innermost location wins.
func (e *Error) WithPosition(pos Position) *Error {
	if e.pos != nil {
		return e
	}

	c := e.clone()
	c.pos = &pos

	return c
}

func (e *Error) clone() *Error {
	c := *e

	return &c
}

// ErrorClass returns the taxonomy class of err, or nil if err did not
// originate from the engine.
func ErrorClass(err error) *Error {
	var e *Error
	if !errors.As(err, &e) {
		return nil
	}

	for _, class := range []*Error{
		ErrSyntax, ErrName, ErrType, ErrForbiddenCall, ErrNotImplemented,
	} {
		if errors.Is(err, class) {
			return class
		}
	}

	return e.class
}

// ClassName returns the conventional exception name for an error class, such
// as "SyntaxError" for [ErrSyntax]. Errors outside the taxonomy yield "Error".
func ClassName(err error) string {
	switch ErrorClass(err) {
	case ErrSyntax:
		return "SyntaxError"
	case ErrName:
		return "NameError"
	case ErrType:
		return "TypeError"
	case ErrForbiddenCall:
		return "ForbiddenCallError"
	case ErrNotImplemented:
		return "NotImplementedError"
	default:
		return "Error"
	}
}
