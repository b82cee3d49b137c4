// Package domain interprets Odoo-style record filters: lists of conditions
// combined with prefix logical operators, such as
//
//	['|', ('state', '=', 'draft'), ('amount', '>', 1000)]
//
// A domain is written in the expression language and evaluated with
// [lang.EvaluateExpr], so context values and builtins such as
// context_today() may appear in condition values. The resulting [Domain]
// can be validated, combined, rendered back to source, and compiled into a
// [Program] that matches plain Go records.
package domain

import (
	"context"
	"log/slog"
	"strings"

	"github.com/ardnew/pyexpr/lang"
)

// Kind identifies a domain term.
type Kind uint8

// Term kinds.
const (
	KindCondition Kind = iota
	KindAnd
	KindOr
	KindNot
	KindTrue
	KindFalse
)

// Symbols of the logical operators.
const (
	AndOperator = "&"
	OrOperator  = "|"
	NotOperator = "!"
)

// Condition is a leaf (field, operator, value).
type Condition struct {
	Field    string
	Operator string
	Value    lang.Value
}

// Term is one element of a domain: a logical operator, a condition, or one
// of the constant leaves.
type Term struct {
	Kind      Kind
	Condition Condition
}

// Domain is a filter in prefix notation. Consecutive terms without an
// explicit operator are joined by an implicit '&'.
type Domain []Term

// Constant domains.
//
//nolint:gochecknoglobals
var (
	True  = Domain{{Kind: KindTrue}}
	False = Domain{{Kind: KindFalse}}
)

// operators lists the known condition operators.
//
//nolint:gochecknoglobals
var operators = map[string]bool{
	"=": true, "==": true, "!=": true, "<>": true,
	"<": true, "<=": true, ">": true, ">=": true,
	"in": true, "not in": true,
	"like": true, "not like": true, "ilike": true, "not ilike": true,
	"=like": true, "=ilike": true,
	"child_of": true, "parent_of": true,
}

// Cond returns a condition term.
func Cond(field, operator string, value lang.Value) Term {
	return Term{
		Kind:      KindCondition,
		Condition: Condition{Field: field, Operator: operator, Value: value},
	}
}

// Parse evaluates src and interprets the result as a domain. The result is
// not validated; see [Domain.Validate].
func Parse(
	ctx context.Context,
	src string,
	env lang.Env,
	builtins *lang.Registry,
	opts ...lang.Option,
) (Domain, error) {
	v, err := lang.EvaluateExpr(ctx, src, env, builtins, opts...)
	if err != nil {
		return nil, err
	}

	return FromValue(v)
}

// FromValue interprets an evaluated list or tuple as a domain.
func FromValue(v lang.Value) (Domain, error) {
	if v.Kind != lang.KindList && v.Kind != lang.KindTuple {
		return nil, ErrInvalidDomain.With(
			slog.String("expected", "list"),
			slog.String("found", v.TypeName()),
		)
	}

	d := make(Domain, 0, len(v.Items))

	for i, item := range v.Items {
		t, err := termOf(item)
		if err != nil {
			return nil, err.With(slog.Int("term", i))
		}

		d = append(d, t)
	}

	return d, nil
}

func termOf(item lang.Value) (Term, *lang.Error) {
	switch item.Kind {
	case lang.KindString:
		switch item.Str {
		case AndOperator:
			return Term{Kind: KindAnd}, nil
		case OrOperator:
			return Term{Kind: KindOr}, nil
		case NotOperator:
			return Term{Kind: KindNot}, nil
		}

		return Term{}, ErrUnknownOperator.With(slog.String("operator", item.Str))

	case lang.KindList, lang.KindTuple:
		if len(item.Items) != 3 {
			return Term{}, ErrInvalidTerm.With(
				slog.String("reason", "condition must have 3 elements"),
				slog.Int("length", len(item.Items)),
			)
		}

		left, op, right := item.Items[0], item.Items[1], item.Items[2]

		if op.Kind != lang.KindString {
			return Term{}, ErrInvalidTerm.With(
				slog.String("reason", "operator must be a string"),
				slog.String("found", op.TypeName()),
			)
		}

		if k, ok := constantLeaf(left, op.Str, right); ok {
			return Term{Kind: k}, nil
		}

		if left.Kind != lang.KindString {
			return Term{}, ErrInvalidTerm.With(
				slog.String("reason", "field must be a string"),
				slog.String("found", left.TypeName()),
			)
		}

		return Cond(left.Str, strings.ToLower(op.Str), right), nil
	}

	return Term{}, ErrInvalidTerm.With(
		slog.String("reason", "term must be an operator or a condition"),
		slog.String("found", item.TypeName()),
	)
}

// constantLeaf recognizes (1, '=', 1) and (0, '=', 1).
func constantLeaf(left lang.Value, op string, right lang.Value) (Kind, bool) {
	if op != "=" || left.Kind != lang.KindInt || right.Kind != lang.KindInt || right.Int != 1 {
		return 0, false
	}

	switch left.Int {
	case 1:
		return KindTrue, true
	case 0:
		return KindFalse, true
	}

	return 0, false
}

// arity returns the number of operands a term consumes.
func (t Term) arity() int {
	switch t.Kind {
	case KindAnd, KindOr:
		return 2
	case KindNot:
		return 1
	}

	return 0
}

// Validate checks that every condition uses a known operator and names a
// field, and that every logical operator has its operands.
func (d Domain) Validate() error {
	expected := 1

	for i, t := range d {
		if expected == 0 {
			expected = 1
		}

		expected += t.arity() - 1

		if t.Kind != KindCondition {
			continue
		}

		c := t.Condition

		if c.Field == "" {
			return ErrInvalidTerm.With(
				slog.Int("term", i),
				slog.String("reason", "empty field name"),
			)
		}

		if !operators[c.Operator] {
			return ErrUnknownOperator.With(
				slog.Int("term", i),
				slog.String("operator", c.Operator),
			)
		}
	}

	if len(d) > 0 && expected != 0 {
		return ErrArity.With(slog.Int("missing", expected))
	}

	return nil
}

// Normalize returns the domain with every implicit '&' made explicit. The
// empty domain normalizes to [True].
func (d Domain) Normalize() Domain {
	if len(d) == 0 {
		return True
	}

	out := make(Domain, 0, len(d)+1)
	expected := 1

	for _, t := range d {
		if expected == 0 {
			out = append(Domain{{Kind: KindAnd}}, out...)
			expected = 1
		}

		expected += t.arity() - 1
		out = append(out, t)
	}

	return out
}

func (d Domain) equal(o Domain) bool {
	if len(d) != len(o) {
		return false
	}

	for i := range d {
		a, b := d[i], o[i]
		if a.Kind != b.Kind {
			return false
		}

		if a.Kind == KindCondition && (a.Condition.Field != b.Condition.Field ||
			a.Condition.Operator != b.Condition.Operator ||
			!lang.Equal(a.Condition.Value, b.Condition.Value)) {
			return false
		}
	}

	return true
}

// combine joins domains with op. unit domains are skipped and a zero
// domain absorbs the whole result.
func combine(op Kind, unit, zero Domain, ds []Domain) Domain {
	var (
		out   Domain
		count int
	)

	for _, d := range ds {
		if d.equal(unit) {
			continue
		}

		if d.equal(zero) {
			return zero
		}

		if len(d) > 0 {
			out = append(out, d.Normalize()...)
			count++
		}
	}

	if count == 0 {
		return unit
	}

	ops := make(Domain, count-1)
	for i := range ops {
		ops[i] = Term{Kind: op}
	}

	return append(ops, out...)
}

// And returns the conjunction of ds. Empty domains are ignored.
func And(ds ...Domain) Domain { return combine(KindAnd, True, False, ds) }

// Or returns the disjunction of ds. Empty domains are ignored.
func Or(ds ...Domain) Domain { return combine(KindOr, False, True, ds) }

// Not returns the negation of d.
func Not(d Domain) Domain {
	return append(Domain{{Kind: KindNot}}, d.Normalize()...)
}

// Value returns the domain as an expression value: a list of operator
// strings and condition tuples.
func (d Domain) Value() lang.Value {
	items := make([]lang.Value, len(d))

	for i, t := range d {
		switch t.Kind {
		case KindAnd:
			items[i] = lang.NewString(AndOperator)
		case KindOr:
			items[i] = lang.NewString(OrOperator)
		case KindNot:
			items[i] = lang.NewString(NotOperator)
		case KindTrue:
			items[i] = lang.NewTuple(lang.NewInt(1), lang.NewString("="), lang.NewInt(1))
		case KindFalse:
			items[i] = lang.NewTuple(lang.NewInt(0), lang.NewString("="), lang.NewInt(1))
		default:
			c := t.Condition
			items[i] = lang.NewTuple(lang.NewString(c.Field), lang.NewString(c.Operator), c.Value)
		}
	}

	return lang.NewList(items...)
}

// String renders the domain as expression source.
func (d Domain) String() string {
	return d.Value().String()
}
