package repl

import (
	"errors"
	"slices"
	"testing"

	"github.com/ardnew/pyexpr/lang"
)

func TestSessionLet(t *testing.T) {
	s := testSession(t)

	name, v, err := s.let(t.Context(), "total = uid * 2 + limit")
	if err != nil {
		t.Fatalf("let: %v", err)
	}

	if name != "total" || !lang.Equal(v, lang.NewInt(24)) {
		t.Fatalf("let = (%q, %s), want (\"total\", 24)", name, v)
	}

	got, err := s.evaluate(t.Context(), "total - 4")
	if err != nil {
		t.Fatalf("evaluate: %v", err)
	}

	if !lang.Equal(got, lang.NewInt(20)) {
		t.Errorf("total - 4 = %s, want 20", got)
	}
}

func TestSessionLet_Invalid(t *testing.T) {
	s := testSession(t)

	for _, binding := range []string{
		"total",
		"= 3",
		"1x = 3",
		"uid == 3",
		"a.b = 3",
	} {
		t.Run(binding, func(t *testing.T) {
			_, _, err := s.let(t.Context(), binding)
			if !errors.Is(err, ErrInvalidBinding) {
				t.Errorf("let(%q) error = %v, want ErrInvalidBinding", binding, err)
			}
		})
	}
}

func TestSessionLet_EvalError(t *testing.T) {
	s := testSession(t)

	_, _, err := s.let(t.Context(), "x = missing + 1")
	if !errors.Is(err, lang.ErrUndefinedName) {
		t.Fatalf("error = %v, want ErrUndefinedName", err)
	}

	if _, ok := s.env["x"]; ok {
		t.Error("failed binding should not be stored")
	}
}

func TestSessionLet_ShadowsBuiltin(t *testing.T) {
	s := testSession(t)

	if _, _, err := s.let(t.Context(), "limit = 3"); err != nil {
		t.Fatalf("let: %v", err)
	}

	v, err := s.evaluate(t.Context(), "limit")
	if err != nil {
		t.Fatalf("evaluate: %v", err)
	}

	if !lang.Equal(v, lang.NewInt(3)) {
		t.Errorf("limit = %s, want 3", v)
	}

	if n := slices.Index(s.names(), "limit"); n < 0 || slices.Index(s.names()[n+1:], "limit") >= 0 {
		t.Errorf("names() = %v, want limit exactly once", s.names())
	}
}

func TestSessionUnset(t *testing.T) {
	s := testSession(t)

	if err := s.unset("uid"); err != nil {
		t.Fatalf("unset: %v", err)
	}

	if want := []string{"record"}; !slices.Equal(s.bound(), want) {
		t.Errorf("bound() = %v, want %v", s.bound(), want)
	}

	if err := s.unset("clamp"); !errors.Is(err, lang.ErrUndefinedName) {
		t.Errorf("unset builtin error = %v, want ErrUndefinedName", err)
	}
}

func TestSessionNames(t *testing.T) {
	s := testSession(t)

	want := []string{"clamp", "concat", "limit", "record", "uid"}
	if got := s.names(); !slices.Equal(got, want) {
		t.Errorf("names() = %v, want %v", got, want)
	}
}

func TestSessionLookup(t *testing.T) {
	s := testSession(t)

	tests := []struct {
		path string
		ok   bool
	}{
		{"uid", true},
		{"clamp", true},
		{"record", true},
		{"record.get", true},
		{"record.name", true},
		{"record.missing", false},
		{"uid.real", false},
		{"missing", false},
		{"missing.get", false},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			if _, ok := s.lookup(tt.path); ok != tt.ok {
				t.Errorf("lookup(%q) ok = %v, want %v", tt.path, ok, tt.ok)
			}
		})
	}
}

func TestSessionContextReplace(t *testing.T) {
	s := testSession(t)

	ctx := s.context()
	if want := "{'record': {'name': 'Acme', 'active': True}, 'uid': 7}"; ctx.String() != want {
		t.Fatalf("context() = %s, want %s", ctx, want)
	}

	v, err := lang.EvaluateExpr(t.Context(), "{'lang': 'fr_FR', 'tz': 'Europe/Paris'}", nil, nil)
	if err != nil {
		t.Fatalf("evaluate: %v", err)
	}

	if err := s.replace(v); err != nil {
		t.Fatalf("replace: %v", err)
	}

	if want := []string{"lang", "tz"}; !slices.Equal(s.bound(), want) {
		t.Errorf("bound() = %v, want %v", s.bound(), want)
	}
}

func TestSessionReplace_Invalid(t *testing.T) {
	for _, src := range []string{
		"[1, 2]",
		"{1: 'one'}",
		"{'not a name': 1}",
	} {
		t.Run(src, func(t *testing.T) {
			s := testSession(t)

			v, err := lang.EvaluateExpr(t.Context(), src, nil, nil)
			if err != nil {
				t.Fatalf("evaluate: %v", err)
			}

			if err := s.replace(v); !errors.Is(err, ErrEditNotMapping) {
				t.Errorf("replace(%s) error = %v, want ErrEditNotMapping", src, err)
			}

			if len(s.env) != 2 {
				t.Errorf("failed replace changed bindings: %v", s.bound())
			}
		})
	}
}
