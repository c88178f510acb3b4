package cli

import (
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
)

func key(s string) tea.KeyMsg {
	switch s {
	case "enter":
		return tea.KeyMsg{Type: tea.KeyEnter}
	case "esc":
		return tea.KeyMsg{Type: tea.KeyEsc}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func press(t *testing.T, m TreeModel, keys ...string) TreeModel {
	t.Helper()
	for _, k := range keys {
		next, _ := m.Update(key(k))
		m = next.(TreeModel)
	}
	return m
}

func TestTreeModelNavigation(t *testing.T) {
	m := newTreeModel(stateDocument("default", true))
	if len(m.rows) != 3 {
		t.Fatalf("initial rows = %d, want 3 (root expanded only)", len(m.rows))
	}

	tests := []struct {
		keys     []string
		selected string
		rows     int
	}{
		{[]string{"j"}, "header", 3},
		{[]string{"j", "l"}, "header", 4},
		{[]string{"j", "l", "j"}, "logo", 4},
		{[]string{"j", "l", "j", "h"}, "header", 4},
		{[]string{"j", "l", "j", "h", "h"}, "header", 3},
		{[]string{"j", "j", "j", "j"}, "menu", 3},
		{[]string{"k", "k"}, "root", 3},
		{[]string{"enter"}, "root", 1},
		{[]string{"enter", "enter"}, "root", 3},
	}

	for _, tt := range tests {
		t.Run(strings.Join(tt.keys, ","), func(t *testing.T) {
			got := press(t, newTreeModel(stateDocument("default", true)), tt.keys...)
			if id := got.Selected().ID; id != tt.selected {
				t.Errorf("Selected() = %q, want %q", id, tt.selected)
			}
			if len(got.rows) != tt.rows {
				t.Errorf("rows = %d, want %d", len(got.rows), tt.rows)
			}
		})
	}
}

func TestTreeModelCollapseClampsCursor(t *testing.T) {
	m := newTreeModel(stateDocument("default", true))
	m = press(t, m, "j", "l", "j")
	m.Expanded["root"] = false
	m.rebuild()
	if m.Cursor != 0 || m.Selected().ID != "root" {
		t.Errorf("Cursor = %d (%s), want 0 (root)", m.Cursor, m.Selected().ID)
	}
}

func TestTreeModelQuit(t *testing.T) {
	for _, k := range []string{"q", "esc"} {
		_, cmd := newTreeModel(stateDocument("default", false)).Update(key(k))
		if cmd == nil {
			t.Errorf("Update(%q) returned no command, want tea.Quit", k)
		}
	}
}

func TestTreeModelScroll(t *testing.T) {
	m := newTreeModel(stateDocument("default", true))
	next, _ := m.Update(tea.WindowSizeMsg{Width: 80, Height: 16})
	m = next.(TreeModel)
	if m.Height != 5 {
		t.Fatalf("Height = %d, want the minimum of 5", m.Height)
	}

	m.Height = 2
	m = press(t, m, "j", "j")
	if m.Offset != 1 {
		t.Errorf("Offset = %d, want 1", m.Offset)
	}
	m = press(t, m, "k", "k")
	if m.Offset != 0 {
		t.Errorf("Offset = %d, want 0", m.Offset)
	}
}

func TestTreeModelView(t *testing.T) {
	m := newTreeModel(stateDocument("default", true))
	view := m.View()
	for _, want := range []string{"https://example.com/", "header", "menu", "[1/3]", "states default"} {
		if !strings.Contains(view, want) {
			t.Errorf("View() missing %q", want)
		}
	}
	if strings.Contains(view, "logo") {
		t.Error("View() shows a child of a collapsed node")
	}
}

func TestTruncateText(t *testing.T) {
	tests := []struct {
		in   string
		n    int
		want string
	}{
		{"short", 10, "short"},
		{"  spaced\n\tout  ", 20, "spaced out"},
		{"Welcome to the example", 10, "Welcome t…"},
	}
	for _, tt := range tests {
		if got := truncateText(tt.in, tt.n); got != tt.want {
			t.Errorf("truncateText(%q, %d) = %q, want %q", tt.in, tt.n, got, tt.want)
		}
	}
}
