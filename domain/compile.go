package domain

import (
	"log/slog"
	"strconv"
	"strings"
	"sync"

	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/vm"
	"github.com/zeebo/xxh3"

	"github.com/ardnew/pyexpr/lang"
)

// programs caches compiled domains keyed by the hash of their normalized
// rendering.
//
//nolint:gochecknoglobals
var programs sync.Map

type compiled struct {
	once    sync.Once
	program *Program
	err     error
}

// Program is a compiled domain. It is safe for concurrent use.
type Program struct {
	domain  Domain
	source  string
	matches []*matcher
	program *vm.Program
}

// Compile validates and normalizes d and translates it into an expr
// program. Compiled programs are cached, so compiling an equal domain again
// is cheap.
func Compile(d Domain) (*Program, error) {
	if err := d.Validate(); err != nil {
		return nil, err
	}

	norm := d.Normalize()
	key := strconv.FormatUint(xxh3.HashString(norm.String()), 36)

	value, _ := programs.LoadOrStore(key, new(compiled))
	entry := value.(*compiled) //nolint:forcetypeassert

	entry.once.Do(func() {
		entry.program, entry.err = compile(norm)
	})

	return entry.program, entry.err
}

func compile(d Domain) (*Program, error) {
	p := &Program{domain: d}

	var sb strings.Builder

	if _, err := p.translate(&sb, 0); err != nil {
		return nil, err
	}

	p.source = sb.String()

	cond := func(params ...any) (any, error) {
		record, _ := params[0].(map[string]any)
		index, _ := params[1].(int)

		return p.matches[index].match(record), nil
	}

	program, err := expr.Compile(p.source,
		expr.Env(map[string]any{"record": map[string]any{}}),
		expr.Function("cond", cond, new(func(map[string]any, int) bool)),
		expr.AsBool(),
	)
	if err != nil {
		return nil, ErrCompile.Wrap(err).With(slog.String("source", p.source))
	}

	p.program = program

	return p, nil
}

// translate writes the infix form of the subtree starting at term i and
// returns the index of the term following it.
func (p *Program) translate(sb *strings.Builder, i int) (int, error) {
	t := p.domain[i]

	switch t.Kind {
	case KindTrue:
		sb.WriteString("true")

	case KindFalse:
		sb.WriteString("false")

	case KindNot:
		sb.WriteString("(not ")

		next, err := p.translate(sb, i+1)
		if err != nil {
			return 0, err
		}

		sb.WriteByte(')')

		return next, nil

	case KindAnd, KindOr:
		join := " and "
		if t.Kind == KindOr {
			join = " or "
		}

		sb.WriteByte('(')

		next, err := p.translate(sb, i+1)
		if err != nil {
			return 0, err
		}

		sb.WriteString(join)

		if next, err = p.translate(sb, next); err != nil {
			return 0, err
		}

		sb.WriteByte(')')

		return next, nil

	default:
		m, err := newMatcher(t.Condition)
		if err != nil {
			return 0, err.With(slog.Int("term", i))
		}

		sb.WriteString("cond(record, " + strconv.Itoa(len(p.matches)) + ")")
		p.matches = append(p.matches, m)
	}

	return i + 1, nil
}

// Domain returns the normalized domain the program was compiled from.
func (p *Program) Domain() Domain { return p.domain }

// Source returns the expr source the domain was translated to.
func (p *Program) Source() string { return p.source }

// Match reports whether record satisfies the domain. Dotted field names
// traverse nested maps; lists along the path match when any element does.
func (p *Program) Match(record map[string]any) (bool, error) {
	if record == nil {
		record = map[string]any{}
	}

	out, err := expr.Run(p.program, map[string]any{"record": record})
	if err != nil {
		return false, ErrMatch.Wrap(err)
	}

	ok, _ := out.(bool)

	return ok, nil
}

// Filter returns the records matching the program, in order.
func Filter(records []map[string]any, p *Program) ([]map[string]any, error) {
	out := make([]map[string]any, 0, len(records))

	for i, r := range records {
		ok, err := p.Match(r)
		if err != nil {
			return nil, lang.WrapError(err).With(slog.Int("record", i))
		}

		if ok {
			out = append(out, r)
		}
	}

	return out, nil
}

// ClearCache removes all compiled programs.
func ClearCache() {
	programs.Clear()
}
