package repl

import (
	"strings"
	"unicode/utf8"

	"github.com/charmbracelet/lipgloss"

	"github.com/ardnew/pyexpr/lang"
)

// Signature hint styles.
//
//nolint:gochecknoglobals
var (
	signatureStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	signatureNameStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("6")).
				Bold(true)
	currentParamStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("11")).
				Bold(true)
)

// functionCall describes the call whose argument list holds the cursor.
type functionCall struct {
	name     string // dotted callee path, e.g. "datetime.date"
	argIndex int    // 0-based index of the argument at the cursor
	keyword  string // keyword of the argument at the cursor, if any
	inCall   bool
}

// frame is an open bracket seen while scanning input.
type frame struct {
	open     rune
	pos      int // byte offset of the bracket
	args     int // commas seen at this depth
	argStart int // byte offset where the current argument starts
}

// detectFunctionCall reports the innermost call whose parentheses enclose the
// cursor. Brackets and commas inside string literals are ignored.
func detectFunctionCall(input string, cursor int) functionCall {
	cursor = min(max(cursor, 0), len(input))

	var (
		stack   []frame
		quote   rune
		escaped bool
	)

	for i, r := range input[:cursor] {
		if quote != 0 {
			switch {
			case escaped:
				escaped = false
			case r == '\\':
				escaped = true
			case r == quote:
				quote = 0
			}

			continue
		}

		switch r {
		case '\'', '"':
			quote = r
		case '(', '[', '{':
			stack = append(stack, frame{open: r, pos: i, argStart: i + 1})
		case ')', ']', '}':
			if len(stack) > 0 {
				stack = stack[:len(stack)-1]
			}
		case ',':
			if n := len(stack); n > 0 {
				stack[n-1].args++
				stack[n-1].argStart = i + 1
			}
		}
	}

	if len(stack) == 0 || stack[len(stack)-1].open != '(' {
		return functionCall{}
	}

	top := stack[len(stack)-1]

	name := calleeBefore(input, top.pos)
	if name == "" {
		return functionCall{}
	}

	call := functionCall{name: name, argIndex: top.args, inCall: true}

	arg := input[top.argStart:cursor]
	if key, rest, ok := strings.Cut(arg, "="); ok && !strings.HasPrefix(rest, "=") {
		if key = strings.TrimSpace(key); lang.IsIdentifier(key) {
			call.keyword = key
		}
	}

	return call
}

// calleeBefore returns the dotted name ending just before the opening
// parenthesis at pos, or "" when the parenthesis does not follow a name.
func calleeBefore(input string, pos int) string {
	end := len(strings.TrimRight(input[:pos], " \t"))
	start := end

	for start > 0 {
		r, size := utf8.DecodeLastRuneInString(input[:start])
		if r != '.' && isWordBoundary(r) {
			break
		}

		start -= size
	}

	name := input[start:end]

	for seg := range strings.SplitSeq(name, ".") {
		if !lang.IsIdentifier(seg) {
			return ""
		}
	}

	return name
}

// signature returns the parameters of the callable that path resolves to.
func (s *session) signature(path string) ([]string, bool) {
	v, ok := s.lookup(path)
	if !ok {
		return nil, false
	}

	return lang.Signature(v)
}

// currentParam returns the index of the parameter an argument binds to:
// the named parameter for a keyword argument, else the positional one,
// where a "*" parameter absorbs all remaining positions. It returns -1 when
// no parameter matches.
func currentParam(params []string, argIndex int, keyword string) int {
	if keyword != "" {
		for i, p := range params {
			if p == keyword {
				return i
			}
		}

		for i, p := range params {
			if strings.HasPrefix(p, "**") {
				return i
			}
		}

		return -1
	}

	for i, p := range params {
		if strings.HasPrefix(p, "*") {
			if strings.HasPrefix(p, "**") {
				return -1
			}

			return i
		}

		if i == argIndex {
			return i
		}
	}

	return -1
}

// renderSignatureHint renders name(params...) with the parameter at the
// cursor highlighted.
func renderSignatureHint(name string, params []string, call functionCall) string {
	current := currentParam(params, call.argIndex, call.keyword)

	var b strings.Builder

	b.WriteString(signatureNameStyle.Render(name))
	b.WriteString(signatureStyle.Render("("))

	for i, p := range params {
		if i > 0 {
			b.WriteString(signatureStyle.Render(", "))
		}

		if i == current {
			b.WriteString(currentParamStyle.Render(p))
		} else {
			b.WriteString(signatureStyle.Render(p))
		}
	}

	b.WriteString(signatureStyle.Render(")"))

	return b.String()
}
