package lang

import (
	"context"
	"errors"
	"log/slog"
	"strings"
)

// Env maps names to values for a single evaluation. Names in the environment
// shadow builtins of the same name.
type Env map[string]Value

// Evaluate evaluates a parsed expression.
//
// Names resolve first in env, then in builtins. Only callables reachable
// through a name or attribute from env or builtins can be invoked. The result
// must not be callable.
//
// Evaluation never modifies env, the registry or any value they hold.
func Evaluate(
	ctx context.Context,
	node Node,
	env Env,
	builtins *Registry,
	opts ...Option,
) (Value, error) {
	e := &evaluator{
		env:      env,
		builtins: builtins,
		opts:     makeOptions(opts...),
	}

	ctx = withSequenceLimit(ctx, e.opts.maxSequence)

	v, err := e.eval(ctx, node)
	if err != nil {
		e.opts.logger.TraceContext(ctx, "evaluate failed",
			slog.Any("error", err),
		)

		return None, err
	}

	if isCallable(v) {
		return None, ErrCallableResult.
			With(slog.String("type", v.TypeName())).
			WithPosition(node.Pos())
	}

	return v, nil
}

func isCallable(v Value) bool {
	switch v.Kind {
	case KindCallable:
		return true
	case KindObject:
		_, ok := v.Obj.(Caller)

		return ok
	}

	return false
}

type evaluator struct {
	env      Env
	builtins *Registry
	opts     options
}

func (e *evaluator) lookup(name string) (Value, bool) {
	if v, ok := e.env[name]; ok {
		return v, true
	}

	return e.builtins.Lookup(name)
}

func (e *evaluator) eval(ctx context.Context, node Node) (Value, error) {
	switch n := node.(type) {
	case *Literal:
		return n.Value, nil

	case *Name:
		v, ok := e.lookup(n.ID)
		if !ok {
			return None, ErrUndefinedName.
				With(slog.String("name", n.ID)).
				WithPosition(n.Position)
		}

		return v, nil

	case *ListLit:
		items, err := e.evalAll(ctx, n.Elts)
		if err != nil {
			return None, err
		}

		return NewList(items...), nil

	case *TupleLit:
		items, err := e.evalAll(ctx, n.Elts)
		if err != nil {
			return None, err
		}

		return NewTuple(items...), nil

	case *DictLit:
		return e.evalDict(ctx, n)

	case *UnaryOp:
		v, err := e.eval(ctx, n.Operand)
		if err != nil {
			return None, err
		}

		r, err := unary(n.Op, v)

		return r, e.locate(err, n.Position)

	case *BinOp:
		l, err := e.eval(ctx, n.Left)
		if err != nil {
			return None, err
		}

		r, err := e.eval(ctx, n.Right)
		if err != nil {
			return None, err
		}

		v, err := binary(n.Op, l, r, &e.opts)

		return v, e.locate(err, n.Position)

	case *BoolOp:
		return e.evalBool(ctx, n)

	case *Compare:
		return e.evalCompare(ctx, n)

	case *IfExp:
		test, err := e.eval(ctx, n.Test)
		if err != nil {
			return None, err
		}

		if test.Truthy() {
			return e.eval(ctx, n.Body)
		}

		return e.eval(ctx, n.OrElse)

	case *Call:
		return e.evalCall(ctx, n)

	case *Subscript:
		return e.evalSubscript(ctx, n)

	case *Attribute:
		v, err := e.eval(ctx, n.Value)
		if err != nil {
			return None, err
		}

		attr, ok := attribute(v, n.Attr)
		if !ok {
			return None, ErrNoAttribute.
				With(
					slog.String("type", v.TypeName()),
					slog.String("attr", n.Attr),
				).
				WithPosition(n.Position)
		}

		return attr, nil

	case *Lambda:
		return None, ErrNotImplemented.
			With(slog.String("construct", "lambda")).
			WithPosition(n.Position)
	}

	return None, ErrNotImplemented.
		With(slog.String("node", nodeName(node))).
		WithPosition(node.Pos())
}

// locate attaches pos to engine errors that have no position yet.
func (e *evaluator) locate(err error, pos Position) error {
	if err == nil {
		return nil
	}

	var ee *Error
	if errors.As(err, &ee) {
		return ee.WithPosition(pos)
	}

	return err
}

func (e *evaluator) evalAll(ctx context.Context, nodes []Node) ([]Value, error) {
	out := make([]Value, len(nodes))

	for i, n := range nodes {
		v, err := e.eval(ctx, n)
		if err != nil {
			return nil, err
		}

		out[i] = v
	}

	return out, nil
}

func (e *evaluator) evalDict(ctx context.Context, n *DictLit) (Value, error) {
	d := NewDict()

	for _, item := range n.Items {
		k, err := e.eval(ctx, item.Key)
		if err != nil {
			return None, err
		}

		v, err := e.eval(ctx, item.Value)
		if err != nil {
			return None, err
		}

		if err := d.Set(k, v); err != nil {
			return None, e.locate(err, item.Key.Pos())
		}
	}

	return NewDictValue(d), nil
}

// evalBool returns the first operand that decides the result, like Python's
// and/or, evaluating no further operands.
func (e *evaluator) evalBool(ctx context.Context, n *BoolOp) (Value, error) {
	var v Value

	for _, operand := range n.Values {
		var err error

		v, err = e.eval(ctx, operand)
		if err != nil {
			return None, err
		}

		if (n.Op == OpAnd) != v.Truthy() {
			return v, nil
		}
	}

	return v, nil
}

// evalCompare evaluates a comparison chain. a < b < c means a < b and b < c,
// with b evaluated once and c not evaluated when a < b is false.
func (e *evaluator) evalCompare(ctx context.Context, n *Compare) (Value, error) {
	left, err := e.eval(ctx, n.Left)
	if err != nil {
		return None, err
	}

	for i, op := range n.Ops {
		right, err := e.eval(ctx, n.Comparators[i])
		if err != nil {
			return None, err
		}

		ok, err := compare(op, left, right)
		if err != nil {
			return None, e.locate(err, n.Position)
		}

		if !ok {
			return False, nil
		}

		left = right
	}

	return True, nil
}

// evalCall resolves the callee without evaluating arbitrary expressions: it
// must be a name, or an attribute chain rooted at a name. Arguments are only
// evaluated once the callee is known to be callable.
func (e *evaluator) evalCall(ctx context.Context, n *Call) (Value, error) {
	if err := ctx.Err(); err != nil {
		return None, ErrInterrupted.Wrap(err).WithPosition(n.Position)
	}

	fn, err := e.callee(ctx, n.Func)
	if err != nil {
		return None, err
	}

	args, err := e.evalAll(ctx, n.Args)
	if err != nil {
		return None, err
	}

	var kwargs *Dict

	if len(n.Keywords) > 0 {
		kwargs = NewDict()

		for _, kw := range n.Keywords {
			v, err := e.eval(ctx, kw.Value)
			if err != nil {
				return None, err
			}

			kwargs.SetString(kw.Name, v)
		}
	}

	e.opts.logger.TraceContext(ctx, "call",
		slog.String("func", calleeName(n.Func)),
		slog.Int("args", len(args)),
		slog.Int("kwargs", kwargs.Len()),
	)

	var result Value

	switch fn.Kind {
	case KindCallable:
		result, err = fn.Func.Call(ctx, args, kwargs)
	default:
		result, err = fn.Obj.(Caller).Call(ctx, args, kwargs)
	}

	if err != nil {
		var ee *Error
		if !errors.As(err, &ee) {
			ee = ErrArgument.Wrap(err)
		}

		return None, ee.
			With(slog.String("func", calleeName(n.Func))).
			WithPosition(n.Position)
	}

	return result, nil
}

func (e *evaluator) callee(ctx context.Context, node Node) (Value, error) {
	var (
		fn Value
		ok bool
	)

	switch f := node.(type) {
	case *Name:
		fn, ok = e.lookup(f.ID)

	case *Attribute:
		recv, err := e.eval(ctx, f.Value)
		if err != nil {
			return None, err
		}

		fn, ok = attribute(recv, f.Attr)

	default:
		return None, ErrForbiddenCall.
			With(slog.String("callee", nodeName(node))).
			WithPosition(node.Pos())
	}

	if !ok || !isCallable(fn) {
		attrs := []slog.Attr{slog.String("name", calleeName(node))}
		if ok {
			attrs = append(attrs, slog.String("type", fn.TypeName()))
		}

		return None, ErrForbiddenCall.With(attrs...).WithPosition(node.Pos())
	}

	return fn, nil
}

// calleeName renders a dotted name for a call target.
func calleeName(node Node) string {
	switch f := node.(type) {
	case *Name:
		return f.ID
	case *Attribute:
		return calleeName(f.Value) + "." + f.Attr
	default:
		return "<" + strings.ToLower(nodeName(node)) + ">"
	}
}

func (e *evaluator) evalSubscript(ctx context.Context, n *Subscript) (Value, error) {
	v, err := e.eval(ctx, n.Value)
	if err != nil {
		return None, err
	}

	idx, err := e.eval(ctx, n.Index)
	if err != nil {
		return None, err
	}

	r, err := subscript(v, idx)

	return r, e.locate(err, n.Position)
}

func subscript(v, idx Value) (Value, error) {
	switch v.Kind {
	case KindList, KindTuple:
		i, err := seqIndexOf(idx, len(v.Items), v.TypeName())
		if err != nil {
			return None, err
		}

		return v.Items[i], nil

	case KindString:
		runes := []rune(v.Str)

		i, err := seqIndexOf(idx, len(runes), v.TypeName())
		if err != nil {
			return None, err
		}

		return NewString(string(runes[i])), nil

	case KindDict:
		r, ok, err := v.Dict.Get(idx)
		if err != nil {
			return None, err
		}

		if !ok {
			return None, ErrKey.With(slog.String("key", idx.String()))
		}

		return r, nil
	}

	return None, ErrNotSubscriptable.With(slog.String("type", v.TypeName()))
}

// seqIndexOf normalizes a possibly negative index into a sequence of length n.
func seqIndexOf(idx Value, n int, typeName string) (int, error) {
	if !isIntegral(idx) {
		return 0, ErrArgument.With(
			slog.String("reason", typeName+" indices must be integers"),
			slog.String("found", idx.TypeName()),
		)
	}

	i := asInt(idx)
	if i < 0 {
		i += int64(n)
	}

	if i < 0 || i >= int64(n) {
		return 0, ErrIndex.With(
			slog.Int64("index", asInt(idx)),
			slog.Int("len", n),
		)
	}

	return int(i), nil
}
