package lang

import (
	"context"
	"log/slog"
	"math"
	"strings"
)

// Binary applies an arithmetic operator to two values exactly as the
// expression operators do, with the default sequence limit.
func Binary(op Op, a, b Value) (Value, error) {
	o := makeOptions()

	return binary(op, a, b, &o)
}

// BinaryContext is [Binary] bounded by the sequence limit of the evaluation
// ctx was passed from. Callables use it to honor [WithMaxSequence].
func BinaryContext(ctx context.Context, op Op, a, b Value) (Value, error) {
	o := makeOptions(WithMaxSequence(SequenceLimit(ctx)))

	return binary(op, a, b, &o)
}

// Unary applies a prefix operator: OpPos, OpNeg or OpNot.
func Unary(op Op, v Value) (Value, error) {
	return unary(op, v)
}

// binary applies an arithmetic operator with Python semantics.
func binary(op Op, a, b Value, o *options) (Value, error) {
	if a.Kind == KindObject {
		if ar, ok := a.Obj.(Arithmetic); ok {
			v, ok, err := ar.Binary(op, b, false)
			if err != nil || ok {
				return v, err
			}
		}
	}

	if b.Kind == KindObject {
		if ar, ok := b.Obj.(Arithmetic); ok {
			v, ok, err := ar.Binary(op, a, true)
			if err != nil || ok {
				return v, err
			}
		}
	}

	if isNumeric(a) && isNumeric(b) {
		if isIntegral(a) && isIntegral(b) && op != OpDiv {
			return intArith(op, asInt(a), asInt(b))
		}

		return floatArith(op, asFloat(a), asFloat(b))
	}

	switch op {
	case OpAdd:
		if a.Kind == b.Kind {
			switch a.Kind {
			case KindString:
				return checkLength(NewString(a.Str+b.Str), o)

			case KindList:
				return checkLength(NewList(concat(a.Items, b.Items)...), o)

			case KindTuple:
				return checkLength(NewTuple(concat(a.Items, b.Items)...), o)
			}
		}

	case OpMul:
		if isIntegral(b) {
			if v, ok, err := repeat(a, asInt(b), o); ok {
				return v, err
			}
		}

		if isIntegral(a) {
			if v, ok, err := repeat(b, asInt(a), o); ok {
				return v, err
			}
		}
	}

	return None, unsupported(op, a, b)
}

func unsupported(op Op, a, b Value) *Error {
	return ErrUnsupportedOperand.With(
		slog.String("op", op.String()),
		slog.String("left", a.TypeName()),
		slog.String("right", b.TypeName()),
	)
}

func concat(a, b []Value) []Value {
	out := make([]Value, 0, len(a)+len(b))
	out = append(out, a...)

	return append(out, b...)
}

// repeat implements sequence * n. ok is false when seq is not a sequence.
func repeat(seq Value, n int64, o *options) (Value, bool, error) {
	var length int

	switch seq.Kind {
	case KindString:
		length = len(seq.Str)
	case KindList, KindTuple:
		length = len(seq.Items)
	default:
		return None, false, nil
	}

	if n <= 0 || length == 0 {
		n = 0
	}

	if n > 0 && o.maxSequence > 0 && n > int64(o.maxSequence/length) {
		return None, true, ErrSequenceTooLarge.With(
			slog.Int("limit", o.maxSequence),
		)
	}

	if n > 0 && n > int64(math.MaxInt/length) {
		return None, true, ErrSequenceTooLarge.With(slog.Int64("count", n))
	}

	count := int(n)

	switch seq.Kind {
	case KindString:
		return NewString(strings.Repeat(seq.Str, count)), true, nil

	case KindList:
		return NewList(repeatItems(seq.Items, count)...), true, nil

	default:
		return NewTuple(repeatItems(seq.Items, count)...), true, nil
	}
}

func repeatItems(items []Value, n int) []Value {
	out := make([]Value, 0, len(items)*n)
	for range n {
		out = append(out, items...)
	}

	return out
}

func checkLength(v Value, o *options) (Value, error) {
	n, _ := v.Len()
	if v.Kind == KindString {
		n = len(v.Str)
	}

	if o.maxSequence > 0 && n > o.maxSequence {
		return None, ErrSequenceTooLarge.With(slog.Int("limit", o.maxSequence))
	}

	return v, nil
}

// intArith applies op to two integers. Results that overflow int64 are
// computed in floating point instead.
func intArith(op Op, x, y int64) (Value, error) {
	switch op {
	case OpAdd:
		s := x + y
		if (x > 0 && y > 0 && s < 0) || (x < 0 && y < 0 && s >= 0) {
			return NewFloat(float64(x) + float64(y)), nil
		}

		return NewInt(s), nil

	case OpSub:
		s := x - y
		if (x >= 0 && y < 0 && s < 0) || (x < 0 && y > 0 && s >= 0) {
			return NewFloat(float64(x) - float64(y)), nil
		}

		return NewInt(s), nil

	case OpMul:
		if x == 0 || y == 0 {
			return NewInt(0), nil
		}

		p := x * y
		if p/y != x || (x == -1 && y == math.MinInt64) || (y == -1 && x == math.MinInt64) {
			return NewFloat(float64(x) * float64(y)), nil
		}

		return NewInt(p), nil

	case OpFloorDiv:
		if y == 0 {
			return None, ErrZeroDivision.With(slog.String("op", op.String()))
		}

		if x == math.MinInt64 && y == -1 {
			return NewFloat(-float64(x)), nil
		}

		q := x / y
		if x%y != 0 && (x < 0) != (y < 0) {
			q--
		}

		return NewInt(q), nil

	case OpMod:
		if y == 0 {
			return None, ErrZeroDivision.With(slog.String("op", op.String()))
		}

		if y == -1 {
			return NewInt(0), nil
		}

		r := x % y
		if r != 0 && (r < 0) != (y < 0) {
			r += y
		}

		return NewInt(r), nil

	case OpPow:
		if y < 0 {
			if x == 0 {
				return None, ErrZeroDivision.With(slog.String("op", op.String()))
			}

			return NewFloat(math.Pow(float64(x), float64(y))), nil
		}

		return intPow(x, y), nil
	}

	return floatArith(op, float64(x), float64(y))
}

// intPow computes x**y for y >= 0 by repeated squaring, falling back to
// floating point on overflow.
func intPow(x, y int64) Value {
	result, base, exp := int64(1), x, y

	for exp > 0 {
		if exp&1 == 1 {
			r, ok := mulExact(result, base)
			if !ok {
				return NewFloat(math.Pow(float64(x), float64(y)))
			}

			result = r
		}

		exp >>= 1

		if exp > 0 {
			b, ok := mulExact(base, base)
			if !ok {
				return NewFloat(math.Pow(float64(x), float64(y)))
			}

			base = b
		}
	}

	return NewInt(result)
}

func mulExact(x, y int64) (int64, bool) {
	if x == 0 || y == 0 {
		return 0, true
	}

	p := x * y
	if p/y != x || (x == -1 && y == math.MinInt64) || (y == -1 && x == math.MinInt64) {
		return 0, false
	}

	return p, true
}

func floatArith(op Op, x, y float64) (Value, error) {
	switch op {
	case OpAdd:
		return NewFloat(x + y), nil

	case OpSub:
		return NewFloat(x - y), nil

	case OpMul:
		return NewFloat(x * y), nil

	case OpDiv:
		if y == 0 {
			return None, ErrZeroDivision.With(slog.String("op", op.String()))
		}

		return NewFloat(x / y), nil

	case OpFloorDiv:
		if y == 0 {
			return None, ErrZeroDivision.With(slog.String("op", op.String()))
		}

		return NewFloat(math.Floor(x / y)), nil

	case OpMod:
		if y == 0 {
			return None, ErrZeroDivision.With(slog.String("op", op.String()))
		}

		r := math.Mod(x, y)
		if r != 0 && (r < 0) != (y < 0) {
			r += y
		}

		return NewFloat(r), nil

	case OpPow:
		if x == 0 && y < 0 {
			return None, ErrZeroDivision.With(slog.String("op", op.String()))
		}

		if x < 0 && y != math.Trunc(y) {
			return None, ErrUnsupportedOperand.With(
				slog.String("op", op.String()),
				slog.String("reason", "negative number raised to a fractional power"),
			)
		}

		return NewFloat(math.Pow(x, y)), nil
	}

	return None, ErrUnsupportedOperand.With(slog.String("op", op.String()))
}

// unary applies a prefix operator.
func unary(op Op, v Value) (Value, error) {
	switch op {
	case OpNot:
		return NewBool(!v.Truthy()), nil

	case OpPos:
		switch v.Kind {
		case KindBool:
			return NewInt(asInt(v)), nil
		case KindInt, KindFloat:
			return v, nil
		}

	case OpNeg:
		switch v.Kind {
		case KindBool:
			return NewInt(-asInt(v)), nil

		case KindInt:
			if v.Int == math.MinInt64 {
				return NewFloat(-float64(v.Int)), nil
			}

			return NewInt(-v.Int), nil

		case KindFloat:
			return NewFloat(-v.Float), nil

		case KindObject:
			if ar, ok := v.Obj.(Arithmetic); ok {
				r, ok, err := ar.Binary(OpNeg, None, false)
				if err != nil || ok {
					return r, err
				}
			}
		}
	}

	return None, ErrUnsupportedOperand.With(
		slog.String("op", op.String()),
		slog.String("operand", v.TypeName()),
	)
}
