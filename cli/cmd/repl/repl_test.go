package repl

import (
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/ardnew/pyexpr/lang"
	"github.com/ardnew/pyexpr/log"
)

func testModel(t *testing.T) model {
	t.Helper()

	return newModel(t.Context(), testSession(t), NewHistory(""), log.Default())
}

func submit(m model, line string) (model, tea.Cmd) {
	m.input.SetValue(line)
	m.input.SetCursor(len(line))

	return m.executeInput()
}

func TestModelExecuteInput_Eval(t *testing.T) {
	m, cmd := submit(testModel(t), "clamp(uid * 3, 0, limit)")
	if cmd == nil {
		t.Fatal("no output command")
	}

	if m.input.Value() != "" {
		t.Errorf("input not cleared: %q", m.input.Value())
	}

	entry, err := m.history.Entry(0)
	if err != nil || entry.Line != "clamp(uid * 3, 0, limit)" || entry.Mode != modeEval {
		t.Errorf("history entry = %+v, %v", entry, err)
	}
}

func TestModelExecuteInput_Blank(t *testing.T) {
	m, cmd := submit(testModel(t), "   ")
	if cmd != nil {
		t.Error("blank input produced a command")
	}

	if m.history.Len() != 0 {
		t.Error("blank input recorded in history")
	}
}

func TestModelExecuteInput_CommandPrefix(t *testing.T) {
	m, _ := submit(testModel(t), ":let total = uid + limit")

	v, ok := m.session.env["total"]
	if !ok || !lang.Equal(v, lang.NewInt(17)) {
		t.Fatalf("total = %s (bound %v), want 17", v, ok)
	}

	m, _ = submit(m, ":unset total uid")
	if got := m.session.bound(); len(got) != 1 || got[0] != "record" {
		t.Errorf("bound() = %v, want [record]", got)
	}
}

func TestModelExecuteCommand(t *testing.T) {
	m := testModel(t).switchToMode(modeCtrl)

	m, _ = submit(m, "let greeting = 'hi ' + record.name")
	if v := m.session.env["greeting"]; v.Str != "hi Acme" {
		t.Errorf("greeting = %s, want 'hi Acme'", v)
	}

	entry, err := m.history.Entry(0)
	if err != nil || entry.Mode != modeCtrl {
		t.Errorf("history entry = %+v, %v", entry, err)
	}

	m, _ = submit(m, "quit")
	if !m.quitting {
		t.Error("quit did not set quitting")
	}
}

func TestModelSwitchMode(t *testing.T) {
	m := testModel(t)
	m.input.SetValue("uid +")

	m = m.switchToMode(modeCtrl)
	if m.mode != modeCtrl || m.input.Value() != "" {
		t.Fatalf("ctrl mode input = %q", m.input.Value())
	}

	m.input.SetValue("li")
	m = m.switchToMode(modeEval)

	if got := m.input.Value(); got != "uid +" {
		t.Errorf("eval input restored as %q", got)
	}

	if got := m.switchToMode(modeCtrl).input.Value(); got != "li" {
		t.Errorf("ctrl input restored as %q", got)
	}
}

func TestModelHistoryStep(t *testing.T) {
	m := testModel(t)

	for _, e := range []HistoryEntry{{"uid", modeEval}, {"list", modeCtrl}, {"limit", modeEval}} {
		if err := m.history.Add(e.Line, e.Mode); err != nil {
			t.Fatal(err)
		}
	}

	m.historyIdx = m.history.Len()

	m = m.historyStep(-1, false)
	if m.input.Value() != "limit" || m.mode != modeEval {
		t.Fatalf("step 1 = %q (mode %d)", m.input.Value(), m.mode)
	}

	m = m.historyStep(-1, false)
	if m.input.Value() != "list" || m.mode != modeCtrl {
		t.Fatalf("step 2 = %q (mode %d)", m.input.Value(), m.mode)
	}

	m = m.switchToMode(modeEval)
	m.historyIdx = m.history.Len()

	m = m.historyStep(-1, true)
	m = m.historyStep(-1, true)

	if m.input.Value() != "uid" || m.mode != modeEval {
		t.Errorf("same-mode step = %q (mode %d)", m.input.Value(), m.mode)
	}

	m = m.historyStep(1, true)
	m = m.historyStep(1, true)

	if m.input.Value() != "" || m.historyIdx != m.history.Len() {
		t.Errorf("stepping past newest = %q at %d", m.input.Value(), m.historyIdx)
	}
}

func TestModelComputeMatches(t *testing.T) {
	m := testModel(t)
	m.input.SetValue("1 + cl")
	m.input.SetCursor(6)

	matches, _, start, end := m.computeMatches()
	if start != 4 || end != 6 {
		t.Errorf("word bounds = (%d, %d), want (4, 6)", start, end)
	}

	if len(matches) == 0 || matches[0].Str != "clamp" {
		t.Errorf("best match = %v, want clamp first", matches)
	}

	m.input.SetValue("'cl")
	m.input.SetCursor(3)

	if matches, _, _, _ := m.computeMatches(); matches != nil {
		t.Errorf("matches inside string = %v", matches)
	}
}

func TestModelCycle(t *testing.T) {
	m := testModel(t)
	m.input.SetValue("c")
	m.input.SetCursor(1)
	refreshMatches(&m, true)

	if len(m.matches) < 2 {
		t.Fatalf("matches = %v, want several", m.matches)
	}

	first := m.matches[0].Str

	m = m.cycle(1)
	if !m.tabActive || m.input.Value() != first {
		t.Errorf("after tab input = %q, want %q", m.input.Value(), first)
	}

	last := m.matches[len(m.matches)-1].Str

	m = m.cycle(-1)
	if m.suggIdx != len(m.matches)-1 || m.input.Value() != last {
		t.Errorf("after shift-tab input = %q, want %q", m.input.Value(), last)
	}
}
