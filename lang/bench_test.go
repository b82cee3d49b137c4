package lang

import (
	"strings"
	"testing"
)

const benchDomain = "['|', ('state', 'in', ['draft', 'sent']), " +
	"'&', ('amount_total', '>=', 1000 * rate), ('partner_id.country_id.code', '=', 'BE')]"

func BenchmarkTokenize(b *testing.B) {
	for b.Loop() {
		if _, err := Tokenize(benchDomain); err != nil {
			b.Fatal(err)
		}
	}
}

func BenchmarkParse_Uncached(b *testing.B) {
	for b.Loop() {
		if _, err := parseSource(b.Context(), benchDomain); err != nil {
			b.Fatal(err)
		}
	}
}

func BenchmarkParseString_Cached(b *testing.B) {
	ClearCache()

	for b.Loop() {
		if _, err := ParseString(b.Context(), benchDomain); err != nil {
			b.Fatal(err)
		}
	}
}

func BenchmarkEvaluate(b *testing.B) {
	node, err := ParseString(b.Context(), benchDomain)
	if err != nil {
		b.Fatal(err)
	}

	env := Env{"rate": NewFloat(1.25)}

	for b.Loop() {
		if _, err := Evaluate(b.Context(), node, env, nil); err != nil {
			b.Fatal(err)
		}
	}
}

func BenchmarkEvaluate_WideList(b *testing.B) {
	src := "[" + strings.Repeat("('f', '=', 1), ", 500) + "]"

	node, err := ParseString(b.Context(), src)
	if err != nil {
		b.Fatal(err)
	}

	for b.Loop() {
		if _, err := Evaluate(b.Context(), node, nil, nil); err != nil {
			b.Fatal(err)
		}
	}
}
