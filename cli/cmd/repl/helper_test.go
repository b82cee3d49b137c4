package repl

import (
	"context"
	"testing"

	"github.com/ardnew/pyexpr/lang"
)

// testBuiltins returns a small registry of callables for the tests.
func testBuiltins() *lang.Registry {
	clamp := func(_ context.Context, args []lang.Value, _ *lang.Dict) (lang.Value, error) {
		v := args[0].Int
		v = max(v, args[1].Int)
		v = min(v, args[2].Int)

		return lang.NewInt(v), nil
	}

	concat := func(_ context.Context, args []lang.Value, _ *lang.Dict) (lang.Value, error) {
		var s string
		for _, a := range args {
			s += a.Str
		}

		return lang.NewString(s), nil
	}

	return lang.NewRegistry(map[string]lang.Value{
		"clamp":  lang.NewFunction("clamp", []string{"value", "lo", "hi"}, clamp),
		"concat": lang.NewFunction("concat", []string{"*parts"}, concat),
		"limit":  lang.NewInt(10),
	})
}

func testSession(t *testing.T) *session {
	t.Helper()

	rec := lang.NewDict()
	rec.SetString("name", lang.NewString("Acme"))
	rec.SetString("active", lang.True)

	return newSession(lang.Env{
		"uid":    lang.NewInt(7),
		"record": lang.NewDictValue(rec),
	}, testBuiltins(), nil)
}
