package repl

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/charmbracelet/lipgloss"
	"github.com/sahilm/fuzzy"

	"github.com/ardnew/pyexpr/lang"
)

// ctrlCommands are the available control-mode commands.
//
//nolint:gochecknoglobals
var ctrlCommands = []string{"help", "list", "let", "unset", "edit", "clear", "quit"}

// isWordBoundary reports whether r ends a completion word. Words are
// identifiers, so anything but letters, digits and underscores delimits
// them, the member-access dot included.
func isWordBoundary(r rune) bool {
	return r != '_' && !unicode.IsLetter(r) && !unicode.IsDigit(r)
}

// wordBounds returns the current word at the cursor position and its byte
// boundaries within input.
// Returns an empty word when the cursor sits on a boundary (after a space,
// between dots, start of line, etc.).
func wordBounds(input string, cursor int) (word string, start, end int) {
	cursor = min(max(cursor, 0), len(input))

	start = cursor

	for start > 0 {
		r, size := utf8.DecodeLastRuneInString(input[:start])
		if isWordBoundary(r) {
			break
		}

		start -= size
	}

	end = cursor

	for end < len(input) {
		r, size := utf8.DecodeRuneInString(input[end:])
		if isWordBoundary(r) {
			break
		}

		end += size
	}

	return input[start:end], start, end
}

// parentPath returns the member-access chain leading up to the word starting
// at wordStart. For input "x + datetime.date.to" with the word "to", the
// parent path is "datetime.date". Returns "" for top-level words.
func parentPath(input string, wordStart int) string {
	prefix := input[:wordStart]
	if !strings.HasSuffix(prefix, ".") {
		return ""
	}

	prefix = strings.TrimSuffix(prefix, ".")
	pos := len(prefix)

	for pos > 0 {
		r, size := utf8.DecodeLastRuneInString(prefix[:pos])
		if r != '.' && isWordBoundary(r) {
			break
		}

		pos -= size
	}

	path := prefix[pos:]

	// A chain must start with a name and have no empty segments.
	for seg := range strings.SplitSeq(path, ".") {
		if !lang.IsIdentifier(seg) {
			return ""
		}
	}

	return path
}

// inString reports whether pos lies inside a string literal of input.
func inString(input string, pos int) bool {
	var quote rune

	escaped := false

	for _, r := range input[:pos] {
		switch {
		case escaped:
			escaped = false
		case quote != 0 && r == '\\':
			escaped = true
		case quote != 0 && r == quote:
			quote = 0
		case quote == 0 && (r == '\'' || r == '"'):
			quote = r
		}
	}

	return quote != 0
}

// candidates returns the completions of a word following parent in eval
// mode: every visible name at the top level, or the attributes of the value
// parent resolves to.
func (s *session) candidates(parent string) []string {
	if parent == "" {
		return s.names()
	}

	v, ok := s.lookup(parent)
	if !ok {
		return nil
	}

	return lang.AttrNames(v)
}

// callable reports whether path resolves to something that can be called.
func (s *session) callable(path string) bool {
	v, ok := s.lookup(path)
	if !ok {
		return false
	}

	switch v.Kind {
	case lang.KindCallable:
		return true
	case lang.KindObject:
		_, ok := v.Obj.(lang.Caller)

		return ok
	}

	return false
}

// ctrlCandidates returns the completions of a word in control mode: command
// names for the first word, bound names after unset, and expression names
// on the right of a let binding.
func (s *session) ctrlCandidates(input string, wordStart int) []string {
	head := input[:wordStart]

	fields := strings.Fields(head)
	if len(fields) == 0 {
		return ctrlCommands
	}

	switch fields[0] {
	case "unset":
		return s.bound()

	case "let":
		if strings.Contains(head, "=") {
			return s.candidates(parentPath(input, wordStart))
		}
	}

	return nil
}

// computeMatches calculates the fuzzy match results for the word at the cursor.
// It returns the matches (ranked best-first), the candidate list, and the word
// boundaries. When the current word is empty at the top level, it returns nil
// matches. When the word is empty after a dot (member access), it returns all
// candidates as matches.
func (m model) computeMatches() (
	matches fuzzy.Matches,
	candidates []string,
	wordStart, wordEnd int,
) {
	input := m.input.Value()

	word, wordStart, wordEnd := wordBounds(input, m.input.Position())
	if inString(input, wordStart) {
		return nil, nil, wordStart, wordEnd
	}

	parent := parentPath(input, wordStart)

	if m.mode == modeCtrl {
		candidates = m.session.ctrlCandidates(input, wordStart)
	} else {
		candidates = m.session.candidates(parent)
	}

	if len(candidates) == 0 || (word == "" && parent == "") {
		return nil, nil, wordStart, wordEnd
	}

	if word == "" {
		matches = make(fuzzy.Matches, len(candidates))
		for i, c := range candidates {
			matches[i] = fuzzy.Match{Str: c, Index: i}
		}

		return matches, candidates, wordStart, wordEnd
	}

	return fuzzy.Find(word, candidates), candidates, wordStart, wordEnd
}

// qualified joins parent and name into a dotted path.
func qualified(parent, name string) string {
	if parent == "" {
		return name
	}

	return parent + "." + name
}

// renderCandidateBar builds the single-line completion bar, ellipsized to fit
// within the given terminal width. The selected candidate (when tabbing)
// uses the selected style; callable candidates get a "()" suffix.
func renderCandidateBar(
	matches fuzzy.Matches,
	suggIdx int,
	tabActive bool,
	width int,
	callable func(string) bool,
) string {
	if len(matches) == 0 || width <= 0 {
		return ""
	}

	const sep = "  "

	sepWidth := lipgloss.Width(sep)
	ellipsis := hintStyle.Render("...")
	ellipsisWidth := lipgloss.Width(ellipsis)

	var b strings.Builder

	used := 0

	for i, match := range matches {
		rendered := renderCandidate(match, tabActive && i == suggIdx, callable(match.Str))

		entryWidth := lipgloss.Width(rendered)
		if i > 0 {
			entryWidth += sepWidth
		}

		last := i == len(matches)-1

		if i > 0 && used+entryWidth+ellipsisWidth > width && !(last && used+entryWidth <= width) {
			b.WriteString(sep)
			b.WriteString(ellipsis)

			break
		}

		if i > 0 {
			b.WriteString(sep)
		}

		b.WriteString(rendered)

		used += entryWidth
	}

	return b.String()
}

// renderCandidate renders a single candidate with matched characters
// highlighted.
func renderCandidate(match fuzzy.Match, selected, callable bool) string {
	base, highlight := suggestionStyle, matchStyle
	if selected {
		base, highlight = selectedStyle, selectedMatchStyle
	}

	matched := make(map[int]bool, len(match.MatchedIndexes))
	for _, idx := range match.MatchedIndexes {
		matched[idx] = true
	}

	var b strings.Builder

	for i, r := range match.Str {
		if matched[i] {
			b.WriteString(highlight.Render(string(r)))
		} else {
			b.WriteString(base.Render(string(r)))
		}
	}

	if callable {
		b.WriteString(base.Render("()"))
	}

	return b.String()
}
