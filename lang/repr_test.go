package lang

import (
	"slices"
	"strings"
	"testing"
)

func TestPretty(t *testing.T) {
	t.Parallel()

	d := NewDict()
	d.SetString("name", NewString("x"))
	d.SetString("ids", NewList(NewInt(1), NewInt(2)))

	inner := NewDict()
	inner.SetString("lang", NewString("en_US"))
	d.SetString("ctx", NewDictValue(inner))
	d.SetString("empty", NewDictValue(NewDict()))

	want := strings.Join([]string{
		"{",
		"  'name': 'x',",
		"  'ids': [1, 2],",
		"  'ctx': {",
		"    'lang': 'en_US',",
		"  },",
		"  'empty': {},",
		"}",
	}, "\n")

	got := Pretty(NewDictValue(d), 2)
	if got != want {
		t.Fatalf("Pretty() =\n%s\nwant\n%s", got, want)
	}

	v, err := EvaluateExpr(t.Context(), got, nil, nil)
	if err != nil {
		t.Fatalf("EvaluateExpr(Pretty()) error: %v", err)
	}

	if !Equal(v, NewDictValue(d)) {
		t.Errorf("round trip = %s, want %s", v, NewDictValue(d))
	}
}

func TestPretty_LongList(t *testing.T) {
	t.Parallel()

	items := make([]Value, 30)
	for i := range items {
		items[i] = NewInt(int64(i))
	}

	got := Pretty(NewTuple(items...), 1)

	if !strings.HasPrefix(got, "(\n 0,\n 1,\n") || !strings.HasSuffix(got, " 29,\n)") {
		t.Errorf("Pretty() = %q", got)
	}

	if got := Pretty(NewInt(5), 2); got != "5" {
		t.Errorf("Pretty(5) = %q", got)
	}
}

func TestIsIdentifier(t *testing.T) {
	t.Parallel()

	for s, want := range map[string]bool{
		"x":       true,
		"_tmp1":   true,
		"société": true,
		"":        false,
		"1x":      false,
		"a-b":     false,
		"a.b":     false,
		"lambda":  false,
		"None":    false,
	} {
		if got := IsIdentifier(s); got != want {
			t.Errorf("IsIdentifier(%q) = %v, want %v", s, got, want)
		}
	}
}

func TestAttrNames(t *testing.T) {
	t.Parallel()

	d := NewDict()
	d.SetString("zeta", NewInt(1))
	d.SetString("get", NewInt(2))
	_ = d.Set(NewInt(3), NewInt(3))

	names := AttrNames(NewDictValue(d))
	if !slices.IsSorted(names) {
		t.Errorf("AttrNames() not sorted: %v", names)
	}

	for _, want := range []string{"get", "items", "keys", "values", "zeta"} {
		if !slices.Contains(names, want) {
			t.Errorf("AttrNames() = %v, missing %q", names, want)
		}
	}

	if n := len(names); n != 5 {
		t.Errorf("AttrNames() has %d names, want 5: %v", n, names)
	}

	if names := AttrNames(NewString("s")); !slices.Contains(names, "startswith") {
		t.Errorf("string AttrNames() = %v", names)
	}

	if names := AttrNames(NewInt(1)); names != nil {
		t.Errorf("int AttrNames() = %v, want none", names)
	}

	v, ok := Attr(NewDictValue(d), "zeta")
	if !ok || !Equal(v, NewInt(1)) {
		t.Errorf("Attr(zeta) = %v, %v", v, ok)
	}

	if _, ok := Attr(NewInt(1), "real"); ok {
		t.Error("Attr(int, real) found")
	}
}
