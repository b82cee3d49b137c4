package lang

import (
	"bytes"
	"cmp"
	"encoding/json"
	"fmt"
	"log/slog"
	"math"
	"reflect"
	"slices"
	"strconv"

	"github.com/goccy/go-yaml"
)

// Native converts the value to plain Go data:
//
//	None       nil
//	bool       bool
//	int        int64
//	float      float64
//	str        string
//	list/tuple []any
//	dict       map[string]any (keys rendered with [Value.Display])
//	object     its [Nativer] form, else its repr
//	callable   its repr
//
// Use [Value.MarshalJSON] or [Value.MarshalYAML] when dict order matters.
func (v Value) Native() any {
	switch v.Kind {
	case KindNone:
		return nil
	case KindBool:
		return v.Bool
	case KindInt:
		return v.Int
	case KindFloat:
		return v.Float
	case KindString:
		return v.Str
	case KindList, KindTuple:
		out := make([]any, len(v.Items))
		for i, item := range v.Items {
			out[i] = item.Native()
		}

		return out
	case KindDict:
		out := make(map[string]any, v.Dict.Len())
		for key, val := range v.Dict.All() {
			out[key.Display()] = val.Native()
		}

		return out
	case KindObject:
		if n, ok := v.Obj.(Nativer); ok {
			return n.Native()
		}
	}

	return v.String()
}

// FromNative converts plain Go data into a Value. Maps with string keys
// become dicts with sorted keys; goccy/go-yaml MapSlice values keep their
// order. Values that already are a [Value] or an [Object] are used as is.
func FromNative(x any) (Value, error) {
	switch t := x.(type) {
	case nil:
		return None, nil
	case Value:
		return t, nil
	case Object:
		return NewObject(t), nil
	case bool:
		return NewBool(t), nil
	case string:
		return NewString(t), nil
	case int:
		return NewInt(int64(t)), nil
	case int8:
		return NewInt(int64(t)), nil
	case int16:
		return NewInt(int64(t)), nil
	case int32:
		return NewInt(int64(t)), nil
	case int64:
		return NewInt(t), nil
	case uint8:
		return NewInt(int64(t)), nil
	case uint16:
		return NewInt(int64(t)), nil
	case uint32:
		return NewInt(int64(t)), nil
	case uint:
		return fromUint(uint64(t)), nil
	case uint64:
		return fromUint(t), nil
	case float32:
		return NewFloat(float64(t)), nil
	case float64:
		return NewFloat(t), nil
	case json.Number:
		if i, err := t.Int64(); err == nil {
			return NewInt(i), nil
		}

		f, err := t.Float64()
		if err != nil {
			return None, ErrUnsupportedNative.Wrap(err)
		}

		return NewFloat(f), nil
	case yaml.MapSlice:
		d := NewDict()

		for _, item := range t {
			k, err := FromNative(item.Key)
			if err != nil {
				return None, err
			}

			val, err := FromNative(item.Value)
			if err != nil {
				return None, err
			}

			if err := d.Set(k, val); err != nil {
				return None, err
			}
		}

		return NewDictValue(d), nil
	}

	return fromReflect(reflect.ValueOf(x))
}

func fromUint(u uint64) Value {
	if u > math.MaxInt64 {
		return NewFloat(float64(u))
	}

	return NewInt(int64(u))
}

func fromReflect(rv reflect.Value) (Value, error) {
	switch rv.Kind() {
	case reflect.Bool:
		return NewBool(rv.Bool()), nil

	case reflect.String:
		return NewString(rv.String()), nil

	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return NewInt(rv.Int()), nil

	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return fromUint(rv.Uint()), nil

	case reflect.Float32, reflect.Float64:
		return NewFloat(rv.Float()), nil

	case reflect.Pointer, reflect.Interface:
		if rv.IsNil() {
			return None, nil
		}

		return FromNative(rv.Elem().Interface())

	case reflect.Slice, reflect.Array:
		items := make([]Value, rv.Len())

		for i := range items {
			item, err := FromNative(rv.Index(i).Interface())
			if err != nil {
				return None, err
			}

			items[i] = item
		}

		return NewList(items...), nil

	case reflect.Map:
		type entry struct {
			key   Value
			value reflect.Value
		}

		entries := make([]entry, 0, rv.Len())

		iter := rv.MapRange()
		for iter.Next() {
			k, err := FromNative(iter.Key().Interface())
			if err != nil {
				return None, err
			}

			entries = append(entries, entry{k, iter.Value()})
		}

		slices.SortFunc(entries, func(a, b entry) int {
			c, err := order(OpLt, a.key, b.key)
			if err != nil {
				return cmp.Compare(a.key.String(), b.key.String())
			}

			return c
		})

		d := NewDict()

		for _, e := range entries {
			val, err := FromNative(e.value.Interface())
			if err != nil {
				return None, err
			}

			if err := d.Set(e.key, val); err != nil {
				return None, err
			}
		}

		return NewDictValue(d), nil
	}

	return None, ErrUnsupportedNative.With(
		slog.String("type", fmt.Sprintf("%T", rv.Interface())),
	)
}

// MarshalJSON encodes the value as JSON, preserving dict order. Dict keys
// that are not strings are rendered with [Value.Display]. Callables, tuple
// keys and non-finite floats cannot be encoded.
func (v Value) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer

	err := writeJSON(&buf, v)
	if err != nil {
		return nil, err
	}

	return buf.Bytes(), nil
}

func writeJSON(buf *bytes.Buffer, v Value) error {
	switch v.Kind {
	case KindNone:
		buf.WriteString("null")

	case KindBool:
		buf.WriteString(strconv.FormatBool(v.Bool))

	case KindInt:
		buf.WriteString(strconv.FormatInt(v.Int, 10))

	case KindFloat:
		if math.IsNaN(v.Float) || math.IsInf(v.Float, 0) {
			return ErrArgument.With(
				slog.String("reason", "non-finite float is not JSON serializable"),
			)
		}

		b, err := json.Marshal(v.Float)
		if err != nil {
			return ErrArgument.Wrap(err)
		}

		buf.Write(b)

	case KindString:
		b, err := json.Marshal(v.Str)
		if err != nil {
			return ErrArgument.Wrap(err)
		}

		buf.Write(b)

	case KindList, KindTuple:
		buf.WriteByte('[')

		for i, item := range v.Items {
			if i > 0 {
				buf.WriteByte(',')
			}

			if err := writeJSON(buf, item); err != nil {
				return err
			}
		}

		buf.WriteByte(']')

	case KindDict:
		buf.WriteByte('{')

		i := 0
		for key, val := range v.Dict.All() {
			if i > 0 {
				buf.WriteByte(',')
			}

			name, err := jsonKey(key)
			if err != nil {
				return err
			}

			b, _ := json.Marshal(name)
			buf.Write(b)
			buf.WriteByte(':')

			if err := writeJSON(buf, val); err != nil {
				return err
			}

			i++
		}

		buf.WriteByte('}')

	case KindObject:
		b, err := json.Marshal(v.Native())
		if err != nil {
			return ErrArgument.Wrap(err)
		}

		buf.Write(b)

	default:
		return ErrArgument.With(
			slog.String("reason", "value is not JSON serializable"),
			slog.String("type", v.TypeName()),
		)
	}

	return nil
}

func jsonKey(key Value) (string, error) {
	switch key.Kind {
	case KindString:
		return key.Str, nil
	case KindNone:
		return "null", nil
	case KindBool:
		return strconv.FormatBool(key.Bool), nil
	case KindInt, KindFloat, KindObject:
		return key.Display(), nil
	default:
		return "", ErrArgument.With(
			slog.String("reason", "dict key is not JSON serializable"),
			slog.String("type", key.TypeName()),
		)
	}
}

// MarshalYAML implements the goccy/go-yaml InterfaceMarshaler. Dicts are
// emitted as ordered mappings.
func (v Value) MarshalYAML() (any, error) {
	return yamlValue(v)
}

func yamlValue(v Value) (any, error) {
	switch v.Kind {
	case KindList, KindTuple:
		out := make([]any, len(v.Items))

		for i, item := range v.Items {
			y, err := yamlValue(item)
			if err != nil {
				return nil, err
			}

			out[i] = y
		}

		return out, nil

	case KindDict:
		out := make(yaml.MapSlice, 0, v.Dict.Len())

		for key, val := range v.Dict.All() {
			y, err := yamlValue(val)
			if err != nil {
				return nil, err
			}

			out = append(out, yaml.MapItem{Key: key.Native(), Value: y})
		}

		return out, nil

	case KindCallable:
		return nil, ErrArgument.With(
			slog.String("reason", "value is not YAML serializable"),
			slog.String("type", v.TypeName()),
		)
	}

	return v.Native(), nil
}
