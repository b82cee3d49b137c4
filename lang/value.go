package lang

import (
	"context"
	"strconv"
)

// Kind identifies the variant held by a [Value].
type Kind uint8

// Value kinds. The zero Kind is [KindNone], so the zero Value is None.
const (
	KindNone Kind = iota
	KindBool
	KindInt
	KindFloat
	KindString
	KindList
	KindTuple
	KindDict
	KindCallable
	KindObject
)

var kindName = [...]string{
	KindNone:     "NoneType",
	KindBool:     "bool",
	KindInt:      "int",
	KindFloat:    "float",
	KindString:   "str",
	KindList:     "list",
	KindTuple:    "tuple",
	KindDict:     "dict",
	KindCallable: "function",
	KindObject:   "object",
}

// String returns the conventional type name of the kind.
func (k Kind) String() string {
	if int(k) < len(kindName) {
		return kindName[k]
	}

	return "Kind(" + strconv.Itoa(int(k)) + ")"
}

// Value is a runtime value of the expression language.
//
// Exactly one field besides Kind is meaningful, selected by Kind:
//
//	KindBool     Bool
//	KindInt      Int
//	KindFloat    Float
//	KindString   Str
//	KindList     Items
//	KindTuple    Items
//	KindDict     Dict
//	KindCallable Func
//	KindObject   Obj
type Value struct {
	Kind  Kind
	Bool  bool
	Int   int64
	Float float64
	Str   string
	Items []Value
	Dict  *Dict
	Func  *Callable
	Obj   Object
}

// Singleton values.
//
//nolint:gochecknoglobals
var (
	None  = Value{}
	True  = Value{Kind: KindBool, Bool: true}
	False = Value{Kind: KindBool}
)

// NewBool returns a Bool value.
func NewBool(b bool) Value {
	if b {
		return True
	}

	return False
}

// NewInt returns an Int value.
func NewInt(i int64) Value { return Value{Kind: KindInt, Int: i} }

// NewFloat returns a Float value.
func NewFloat(f float64) Value { return Value{Kind: KindFloat, Float: f} }

// NewString returns a String value.
func NewString(s string) Value { return Value{Kind: KindString, Str: s} }

// NewList returns a List value holding items. The slice is not copied. An
// empty list gets its own backing array so that identity holds per list.
func NewList(items ...Value) Value {
	if len(items) == 0 {
		items = make([]Value, 0, 1)
	}

	return Value{Kind: KindList, Items: items}
}

// NewTuple returns a Tuple value holding items. The slice is not copied.
func NewTuple(items ...Value) Value {
	if items == nil {
		items = []Value{}
	}

	return Value{Kind: KindTuple, Items: items}
}

// NewDictValue returns a Dict value. A nil dict is replaced by an empty one.
func NewDictValue(d *Dict) Value {
	if d == nil {
		d = NewDict()
	}

	return Value{Kind: KindDict, Dict: d}
}

// NewCallable returns a Callable value for a host function.
func NewCallable(name string, fn Func) Value {
	return Value{Kind: KindCallable, Func: &Callable{Name: name, Fn: fn}}
}

// NewFunction returns a Callable value that also documents the names of its
// parameters. A name starting with "*" stands for any number of arguments.
func NewFunction(name string, params []string, fn Func) Value {
	return Value{Kind: KindCallable, Func: &Callable{Name: name, Params: params, Fn: fn}}
}

// NewObject returns an Object value. A nil object yields None.
func NewObject(obj Object) Value {
	if obj == nil {
		return None
	}

	return Value{Kind: KindObject, Obj: obj}
}

// TypeName returns the conventional type name of the value.
func (v Value) TypeName() string {
	if v.Kind == KindObject && v.Obj != nil {
		return v.Obj.TypeName()
	}

	return v.Kind.String()
}

// IsNone reports whether v is None.
func (v Value) IsNone() bool { return v.Kind == KindNone }

// Len returns the length of a string, list, tuple or dict, and false for
// every other kind.
func (v Value) Len() (int, bool) {
	switch v.Kind {
	case KindString:
		return len([]rune(v.Str)), true
	case KindList, KindTuple:
		return len(v.Items), true
	case KindDict:
		return v.Dict.Len(), true
	default:
		return 0, false
	}
}

// Func is the signature of host functions exposed to expressions.
// kwargs is nil when the call has no keyword arguments.
type Func func(ctx context.Context, args []Value, kwargs *Dict) (Value, error)

// Callable is a named host function.
type Callable struct {
	Name   string
	Params []string // parameter names, when known
	Fn     Func
}

// Call invokes the function.
func (c *Callable) Call(ctx context.Context, args []Value, kwargs *Dict) (Value, error) {
	return c.Fn(ctx, args, kwargs)
}

// Signer is implemented by callable objects that document their
// parameters, such as classes whose call constructs an instance.
type Signer interface {
	Params() []string
}

// Signature returns the parameter names of a callable value or of an
// object implementing [Signer].
func Signature(v Value) ([]string, bool) {
	switch v.Kind {
	case KindCallable:
		return v.Func.Params, v.Func.Params != nil

	case KindObject:
		if s, ok := v.Obj.(Signer); ok {
			return s.Params(), true
		}
	}

	return nil, false
}

// Object is a host value exposed to expressions, such as a date or a module
// namespace. Objects only enter an evaluation through the caller's
// environment or builtin registry.
type Object interface {
	// TypeName returns the type name used in error messages and repr.
	TypeName() string
	// Attr returns the named attribute.
	Attr(name string) (Value, bool)
}

// Caller is implemented by objects that can be called like functions.
type Caller interface {
	Call(ctx context.Context, args []Value, kwargs *Dict) (Value, error)
}

// Arithmetic is implemented by objects that support binary operators.
// reflected is true when the object is the right operand. Returning ok false
// means the operation is not supported for the given operand.
type Arithmetic interface {
	Binary(op Op, other Value, reflected bool) (result Value, ok bool, err error)
}

// Ordered is implemented by objects that can be compared. ok is false when
// other is not comparable with the receiver.
type Ordered interface {
	Compare(other Value) (cmp int, ok bool)
}

// Hashable is implemented by objects usable as dict keys.
type Hashable interface {
	HashKey() string
}

// Lister is implemented by objects that can enumerate their attributes.
// It only serves introspection such as interactive completion.
type Lister interface {
	AttrNames() []string
}

// Nativer is implemented by objects with a native Go representation, used by
// [Value.Native] and the JSON and YAML encoders.
type Nativer interface {
	Native() any
}
