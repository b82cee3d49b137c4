package repl

import (
	"context"
	"log/slog"
	"maps"
	"slices"
	"strings"

	"github.com/ardnew/pyexpr/lang"
)

// session holds the names expressions typed at the prompt can see. Names
// bound with let shadow builtins of the same name.
type session struct {
	env      lang.Env
	builtins *lang.Registry
	opts     []lang.Option
}

func newSession(env lang.Env, builtins *lang.Registry, opts []lang.Option) *session {
	s := &session{
		env:      maps.Clone(env),
		builtins: builtins,
		opts:     opts,
	}

	if s.env == nil {
		s.env = lang.Env{}
	}

	return s
}

func (s *session) evaluate(ctx context.Context, source string) (lang.Value, error) {
	return lang.EvaluateExpr(ctx, source, s.env, s.builtins, s.opts...)
}

// let evaluates a binding of the form "NAME = EXPR" and stores the result.
func (s *session) let(ctx context.Context, binding string) (string, lang.Value, error) {
	name, source, ok := strings.Cut(binding, "=")
	name = strings.TrimSpace(name)

	if !ok || !lang.IsIdentifier(name) || strings.HasPrefix(source, "=") {
		return "", lang.None, ErrInvalidBinding.With(slog.String("binding", binding))
	}

	v, err := s.evaluate(ctx, source)
	if err != nil {
		return "", lang.None, err
	}

	s.env[name] = v

	return name, v, nil
}

// unset removes bound names. Builtins cannot be removed.
func (s *session) unset(names ...string) error {
	for _, name := range names {
		if _, ok := s.env[name]; !ok {
			return lang.ErrUndefinedName.With(slog.String("name", name))
		}

		delete(s.env, name)
	}

	return nil
}

// bound returns the names bound in the session, sorted.
func (s *session) bound() []string {
	return slices.Sorted(maps.Keys(s.env))
}

// names returns every name an expression can refer to, sorted.
func (s *session) names() []string {
	names := s.bound()

	for _, name := range s.builtins.Names() {
		if _, ok := s.env[name]; !ok {
			names = append(names, name)
		}
	}

	slices.Sort(names)

	return names
}

// lookup resolves a dotted path of a name followed by attributes.
func (s *session) lookup(path string) (lang.Value, bool) {
	segments := strings.Split(path, ".")

	v, ok := s.env[segments[0]]
	if !ok {
		v, ok = s.builtins.Lookup(segments[0])
	}

	for _, seg := range segments[1:] {
		if !ok {
			break
		}

		v, ok = lang.Attr(v, seg)
	}

	return v, ok
}

// context returns the bound names as a dict in name order.
func (s *session) context() lang.Value {
	d := lang.NewDict()

	for _, name := range s.bound() {
		d.SetString(name, s.env[name])
	}

	return lang.NewDictValue(d)
}

// replace rebinds the session to the entries of a dict value.
func (s *session) replace(v lang.Value) error {
	if v.Kind != lang.KindDict {
		return ErrEditNotMapping.With(slog.String("type", v.TypeName()))
	}

	env := make(lang.Env, v.Dict.Len())

	for key, val := range v.Dict.All() {
		if key.Kind != lang.KindString || !lang.IsIdentifier(key.Str) {
			return ErrEditNotMapping.With(slog.String("key", key.String()))
		}

		env[key.Str] = val
	}

	s.env = env

	return nil
}
