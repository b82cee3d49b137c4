package repl

import (
	"slices"
	"strings"
	"testing"
)

func TestDetectFunctionCall(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  functionCall
	}{
		{"no_call", "uid + 1", functionCall{}},
		{"open", "clamp(", functionCall{name: "clamp", inCall: true}},
		{"second_arg", "clamp(uid, ", functionCall{name: "clamp", argIndex: 1, inCall: true}},
		{"closed", "clamp(uid, 1, 2)", functionCall{}},
		{"dotted", "datetime.date(2024, ", functionCall{name: "datetime.date", argIndex: 1, inCall: true}},
		{"space_before_paren", "clamp (1", functionCall{name: "clamp", inCall: true}},
		{"nested_inner", "clamp(concat(", functionCall{name: "concat", inCall: true}},
		{"nested_outer", "clamp(concat('a'), ", functionCall{name: "clamp", argIndex: 1, inCall: true}},
		{"list_arg", "clamp([1, 2], ", functionCall{name: "clamp", argIndex: 1, inCall: true}},
		{"inside_list", "clamp([1, ", functionCall{}},
		{"string_comma", "concat('a, b', ", functionCall{name: "concat", argIndex: 1, inCall: true}},
		{"string_paren", "concat('(', ", functionCall{name: "concat", argIndex: 1, inCall: true}},
		{"keyword", "relativedelta(days=", functionCall{name: "relativedelta", keyword: "days", inCall: true}},
		{"keyword_value", "relativedelta(months=1, days=3", functionCall{name: "relativedelta", argIndex: 1, keyword: "days", inCall: true}},
		{"equality_not_keyword", "clamp(uid == ", functionCall{name: "clamp", inCall: true}},
		{"grouping", "(uid, ", functionCall{}},
		{"call_result", "f()(", functionCall{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := detectFunctionCall(tt.input, len(tt.input)); got != tt.want {
				t.Errorf("detectFunctionCall(%q) = %+v, want %+v", tt.input, got, tt.want)
			}
		})
	}
}

func TestCurrentParam(t *testing.T) {
	params := []string{"value", "lo", "hi"}
	variadic := []string{"sep", "*parts"}
	keywords := []string{"dt", "**fields"}

	tests := []struct {
		name     string
		params   []string
		argIndex int
		keyword  string
		want     int
	}{
		{"first", params, 0, "", 0},
		{"last", params, 2, "", 2},
		{"too_many", params, 3, "", -1},
		{"keyword", params, 0, "hi", 2},
		{"unknown_keyword", params, 0, "mid", -1},
		{"variadic_fixed", variadic, 0, "", 0},
		{"variadic_rest", variadic, 4, "", 1},
		{"kwargs_positional", keywords, 1, "", -1},
		{"kwargs_keyword", keywords, 0, "days", 1},
		{"no_params", nil, 0, "", -1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := currentParam(tt.params, tt.argIndex, tt.keyword); got != tt.want {
				t.Errorf("currentParam(%v, %d, %q) = %d, want %d",
					tt.params, tt.argIndex, tt.keyword, got, tt.want)
			}
		})
	}
}

func TestSessionSignature(t *testing.T) {
	s := testSession(t)

	params, ok := s.signature("clamp")
	if !ok || !slices.Equal(params, []string{"value", "lo", "hi"}) {
		t.Errorf("signature(clamp) = %v, %v", params, ok)
	}

	if _, ok := s.signature("limit"); ok {
		t.Error("signature(limit) reported a non-callable")
	}

	if _, ok := s.signature("missing"); ok {
		t.Error("signature(missing) reported an unknown name")
	}
}

func TestRenderSignatureHint(t *testing.T) {
	call := detectFunctionCall("clamp(uid, ", 11)
	hint := renderSignatureHint("clamp", []string{"value", "lo", "hi"}, call)

	for _, part := range []string{"clamp", "value", "lo", "hi"} {
		if !strings.Contains(hint, part) {
			t.Errorf("hint %q does not contain %q", hint, part)
		}
	}
}
