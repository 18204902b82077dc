package tui

import (
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/scubot/tidechart/pkg/render"
)

func embeds(n int) []render.Embed {
	var result []render.Embed
	for i := 0; i < n; i++ {
		result = append(result, render.Embed{
			Title:  "Tidal information for station #8518750",
			Fields: []render.Field{{Name: "High tide at 04:12", Value: "Depth: 5.1ft"}},
			Footer: "footer",
		})
	}
	return result
}

func press(m tea.Model, keys ...tea.KeyMsg) tea.Model {
	for _, k := range keys {
		m, _ = m.Update(k)
	}
	return m
}

func TestPaging(t *testing.T) {
	right := tea.KeyMsg{Type: tea.KeyRight}
	left := tea.KeyMsg{Type: tea.KeyLeft}
	next := tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("n")}
	end := tea.KeyMsg{Type: tea.KeyEnd}

	for _, tc := range []struct {
		name string
		keys []tea.KeyMsg
		want int
	}{
		{"start", nil, 0},
		{"right", []tea.KeyMsg{right}, 1},
		{"next", []tea.KeyMsg{next, next}, 2},
		{"stops at last", []tea.KeyMsg{right, right, right, right}, 2},
		{"stops at first", []tea.KeyMsg{left}, 0},
		{"end", []tea.KeyMsg{end}, 2},
	} {
		t.Run(tc.name, func(t *testing.T) {
			m := press(New(embeds(3)), tc.keys...).(Model)
			if m.Page() != tc.want {
				t.Errorf("Page() = %d, want %d", m.Page(), tc.want)
			}
		})
	}
}

func TestQuit(t *testing.T) {
	for _, k := range []tea.KeyMsg{
		{Type: tea.KeyRunes, Runes: []rune("q")},
		{Type: tea.KeyCtrlC},
	} {
		_, cmd := New(embeds(2)).Update(k)
		if cmd == nil {
			t.Fatalf("%s did not return a command", k)
		}
		if _, ok := cmd().(tea.QuitMsg); !ok {
			t.Errorf("%s did not quit", k)
		}
	}
}

func TestView(t *testing.T) {
	view := New(embeds(2)).View()
	for _, want := range []string{"Tidal information for station #8518750", "High tide at 04:12", "Depth: 5.1ft"} {
		if !strings.Contains(view, want) {
			t.Errorf("view missing %q:\n%s", want, view)
		}
	}

	if view := New(nil).View(); !strings.Contains(view, "No tides") {
		t.Errorf("empty view = %q", view)
	}
}
