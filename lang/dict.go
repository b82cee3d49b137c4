package lang

import (
	"fmt"
	"iter"
	"log/slog"
	"math"
	"strconv"
	"strings"
)

// Dict is an insertion-ordered mapping with unique keys.
//
// Keys are compared the way Python compares dict keys: numerically equal keys
// such as 1, 1.0 and True are the same key. Lists and dicts are unhashable.
//
// The zero Dict is empty and ready to use. Read methods also accept a nil
// receiver as an empty dict.
type Dict struct {
	keys  []Value
	vals  []Value
	index map[string]int
}

// NewDict returns an empty dict.
func NewDict() *Dict {
	return &Dict{index: map[string]int{}}
}

// Len returns the number of entries.
func (d *Dict) Len() int {
	if d == nil {
		return 0
	}

	return len(d.keys)
}

// Set stores value under key. An existing key keeps its position and has its
// value replaced.
func (d *Dict) Set(key, value Value) error {
	h, err := hashKey(key)
	if err != nil {
		return err
	}

	if d.index == nil {
		d.index = map[string]int{}
	}

	if i, ok := d.index[h]; ok {
		d.vals[i] = value

		return nil
	}

	d.index[h] = len(d.keys)
	d.keys = append(d.keys, key)
	d.vals = append(d.vals, value)

	return nil
}

// SetString stores value under a string key.
func (d *Dict) SetString(key string, value Value) {
	_ = d.Set(NewString(key), value)
}

// Get returns the value stored under key.
func (d *Dict) Get(key Value) (Value, bool, error) {
	h, err := hashKey(key)
	if err != nil {
		return None, false, err
	}

	if d == nil {
		return None, false, nil
	}

	i, ok := d.index[h]
	if !ok {
		return None, false, nil
	}

	return d.vals[i], true, nil
}

// Lookup returns the value stored under a string key.
func (d *Dict) Lookup(key string) (Value, bool) {
	v, ok, _ := d.Get(NewString(key))

	return v, ok
}

// Keys returns a copy of the keys in insertion order.
func (d *Dict) Keys() []Value {
	if d == nil {
		return nil
	}

	return append([]Value(nil), d.keys...)
}

// Values returns a copy of the values in insertion order.
func (d *Dict) Values() []Value {
	if d == nil {
		return nil
	}

	return append([]Value(nil), d.vals...)
}

// All returns an iterator over the entries in insertion order.
func (d *Dict) All() iter.Seq2[Value, Value] {
	return func(yield func(Value, Value) bool) {
		if d == nil {
			return
		}

		for i, k := range d.keys {
			if !yield(k, d.vals[i]) {
				return
			}
		}
	}
}

// Clone returns a shallow copy of the dict.
func (d *Dict) Clone() *Dict {
	c := NewDict()
	if d == nil {
		return c
	}

	c.keys = append(c.keys, d.keys...)
	c.vals = append(c.vals, d.vals...)

	for k, v := range d.index {
		c.index[k] = v
	}

	return c
}

// hashKey returns the canonical key string of a hashable value.
func hashKey(v Value) (string, error) {
	switch v.Kind {
	case KindNone:
		return "N", nil

	case KindBool:
		if v.Bool {
			return "n1", nil
		}

		return "n0", nil

	case KindInt:
		return "n" + strconv.FormatInt(v.Int, 10), nil

	case KindFloat:
		f := v.Float
		if f == math.Trunc(f) && f >= math.MinInt64 && f < math.MaxInt64 {
			return "n" + strconv.FormatInt(int64(f), 10), nil
		}

		return "f" + strconv.FormatFloat(f, 'g', -1, 64), nil

	case KindString:
		return "s" + v.Str, nil

	case KindTuple:
		var sb strings.Builder

		sb.WriteString("t")

		for _, item := range v.Items {
			h, err := hashKey(item)
			if err != nil {
				return "", err
			}

			sb.WriteString(strconv.Itoa(len(h)))
			sb.WriteByte(':')
			sb.WriteString(h)
		}

		return sb.String(), nil

	case KindCallable:
		return fmt.Sprintf("c%p", v.Func), nil

	case KindObject:
		if h, ok := v.Obj.(Hashable); ok {
			return "o" + v.Obj.TypeName() + ":" + h.HashKey(), nil
		}
	}

	return "", ErrUnhashable.With(slog.String("type", v.TypeName()))
}
