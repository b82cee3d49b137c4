package lang

import (
	"cmp"
	"log/slog"
	"math"
	"reflect"
	"strings"
	"unsafe"
)

// Truthy reports whether the value is considered true: False, None, numeric
// zero and empty strings, lists, tuples and dicts are false; everything else
// is true.
func (v Value) Truthy() bool {
	switch v.Kind {
	case KindNone:
		return false
	case KindBool:
		return v.Bool
	case KindInt:
		return v.Int != 0
	case KindFloat:
		return v.Float != 0
	case KindString:
		return v.Str != ""
	case KindList, KindTuple:
		return len(v.Items) > 0
	case KindDict:
		return v.Dict.Len() > 0
	case KindCallable, KindObject:
		return true
	default:
		return false
	}
}

func isNumeric(v Value) bool {
	return v.Kind == KindBool || v.Kind == KindInt || v.Kind == KindFloat
}

// isIntegral reports whether v is a bool or int.
func isIntegral(v Value) bool {
	return v.Kind == KindBool || v.Kind == KindInt
}

func asInt(v Value) int64 {
	if v.Kind == KindBool {
		if v.Bool {
			return 1
		}

		return 0
	}

	return v.Int
}

func asFloat(v Value) float64 {
	if v.Kind == KindFloat {
		return v.Float
	}

	return float64(asInt(v))
}

// Equal reports whether a == b under Python's structural equality. Values of
// unrelated kinds are simply unequal.
func Equal(a, b Value) bool {
	if isNumeric(a) && isNumeric(b) {
		if isIntegral(a) && isIntegral(b) {
			return asInt(a) == asInt(b)
		}

		return asFloat(a) == asFloat(b)
	}

	if a.Kind != b.Kind {
		if a.Kind == KindObject {
			return objectEqual(a, b)
		}

		if b.Kind == KindObject {
			return objectEqual(b, a)
		}

		return false
	}

	switch a.Kind {
	case KindNone:
		return true

	case KindString:
		return a.Str == b.Str

	case KindList, KindTuple:
		if len(a.Items) != len(b.Items) {
			return false
		}

		for i := range a.Items {
			if !Equal(a.Items[i], b.Items[i]) {
				return false
			}
		}

		return true

	case KindDict:
		if a.Dict.Len() != b.Dict.Len() {
			return false
		}

		for key, av := range a.Dict.All() {
			bv, ok, err := b.Dict.Get(key)
			if err != nil || !ok || !Equal(av, bv) {
				return false
			}
		}

		return true

	case KindCallable:
		return a.Func == b.Func

	case KindObject:
		return objectEqual(a, b)
	}

	return false
}

func objectEqual(obj, other Value) bool {
	if o, ok := obj.Obj.(Ordered); ok {
		c, ok := o.Compare(other)

		return ok && c == 0
	}

	return identical(obj, other)
}

// identical implements the "is" operator. Scalars are identical when equal
// and of the same kind; containers, functions and objects when they share
// storage.
func identical(a, b Value) bool {
	if a.Kind != b.Kind {
		return false
	}

	switch a.Kind {
	case KindNone:
		return true
	case KindBool:
		return a.Bool == b.Bool
	case KindInt:
		return a.Int == b.Int
	case KindFloat:
		return a.Float == b.Float
	case KindString:
		return a.Str == b.Str
	case KindList, KindTuple:
		if len(a.Items) != len(b.Items) {
			return false
		}

		if a.Kind == KindTuple && len(a.Items) == 0 {
			return true
		}

		// Every list owns a non-empty backing array, see [NewList].
		return cap(a.Items) > 0 && unsafe.SliceData(a.Items) == unsafe.SliceData(b.Items)
	case KindDict:
		return a.Dict == b.Dict
	case KindCallable:
		return a.Func == b.Func
	case KindObject:
		ra, rb := reflect.ValueOf(a.Obj), reflect.ValueOf(b.Obj)
		if ra.Type() != rb.Type() {
			return false
		}

		switch ra.Kind() {
		case reflect.Pointer, reflect.Map, reflect.Chan, reflect.Func, reflect.Slice:
			return ra.Pointer() == rb.Pointer()
		}

		return ra.Comparable() && ra.Equal(rb)
	}

	return false
}

// order compares a and b for the ordering operator op, returning -1, 0 or +1.
// Values that cannot be ordered against each other produce an
// [ErrUnsupportedOperand] error.
func order(op Op, a, b Value) (int, error) {
	switch {
	case isIntegral(a) && isIntegral(b):
		return cmp.Compare(asInt(a), asInt(b)), nil

	case isNumeric(a) && isNumeric(b):
		return cmp.Compare(asFloat(a), asFloat(b)), nil

	case a.Kind == KindString && b.Kind == KindString:
		return strings.Compare(a.Str, b.Str), nil

	case a.Kind == b.Kind && (a.Kind == KindList || a.Kind == KindTuple):
		for i := range min(len(a.Items), len(b.Items)) {
			if Equal(a.Items[i], b.Items[i]) {
				continue
			}

			return order(op, a.Items[i], b.Items[i])
		}

		return cmp.Compare(len(a.Items), len(b.Items)), nil

	case a.Kind == KindObject:
		if o, ok := a.Obj.(Ordered); ok {
			if c, ok := o.Compare(b); ok {
				return c, nil
			}
		}

	case b.Kind == KindObject:
		if o, ok := b.Obj.(Ordered); ok {
			if c, ok := o.Compare(a); ok {
				return -c, nil
			}
		}
	}

	return 0, ErrUnsupportedOperand.With(
		slog.String("op", op.String()),
		slog.String("left", a.TypeName()),
		slog.String("right", b.TypeName()),
	)
}

// Order orders a and b, returning -1, 0 or +1, or an [ErrType] error when
// the values cannot be ordered, such as a dict and a number.
func Order(a, b Value) (int, error) {
	return order(OpLt, a, b)
}

// compare applies one comparison operator.
func compare(op Op, a, b Value) (bool, error) {
	switch op {
	case OpEq:
		return Equal(a, b), nil

	case OpNotEq:
		return !Equal(a, b), nil

	case OpIs:
		return identical(a, b), nil

	case OpIsNot:
		return !identical(a, b), nil

	case OpIn:
		return contains(b, a)

	case OpNotIn:
		ok, err := contains(b, a)

		return !ok, err

	case OpLt, OpLtE, OpGt, OpGtE:
		if isNumeric(a) && isNumeric(b) && (isNaN(a) || isNaN(b)) {
			return false, nil
		}

		c, err := order(op, a, b)
		if err != nil {
			return false, err
		}

		switch op {
		case OpLt:
			return c < 0, nil
		case OpLtE:
			return c <= 0, nil
		case OpGt:
			return c > 0, nil
		default:
			return c >= 0, nil
		}
	}

	return false, ErrNotImplemented.With(slog.String("op", op.String()))
}

func isNaN(v Value) bool {
	return v.Kind == KindFloat && math.IsNaN(v.Float)
}

// contains implements the "in" operator: item in container.
func contains(container, item Value) (bool, error) {
	switch container.Kind {
	case KindString:
		if item.Kind != KindString {
			return false, ErrUnsupportedOperand.With(
				slog.String("op", "in"),
				slog.String("reason", "left operand must be str"),
				slog.String("left", item.TypeName()),
			)
		}

		return strings.Contains(container.Str, item.Str), nil

	case KindList, KindTuple:
		for _, elem := range container.Items {
			if Equal(elem, item) {
				return true, nil
			}
		}

		return false, nil

	case KindDict:
		_, ok, err := container.Dict.Get(item)

		return ok, err
	}

	return false, ErrUnsupportedOperand.With(
		slog.String("op", "in"),
		slog.String("reason", "argument is not iterable"),
		slog.String("right", container.TypeName()),
	)
}
