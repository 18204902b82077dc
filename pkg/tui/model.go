// Package tui pages through tide embeds in the terminal.
package tui

import (
	"strings"

	"github.com/charmbracelet/bubbles/paginator"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/scubot/tidechart/pkg/render"
)

var (
	accent = lipgloss.Color("#1C6BA0")

	cardStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(accent).
			Padding(0, 1)
	titleStyle  = lipgloss.NewStyle().Bold(true).Foreground(accent)
	mutedStyle  = lipgloss.NewStyle().Faint(true)
	fieldStyle  = lipgloss.NewStyle().Bold(true)
	helpStyle   = lipgloss.NewStyle().Faint(true)
	activeDot   = lipgloss.NewStyle().Foreground(accent).Render("•")
	inactiveDot = lipgloss.NewStyle().Faint(true).Render("•")
)

// Model is the root Bubble Tea model.
type Model struct {
	pages []render.Embed
	pager paginator.Model
	width int
}

// New shows pages one at a time, starting with the first.
func New(pages []render.Embed) Model {
	p := paginator.New()
	p.Type = paginator.Dots
	p.PerPage = 1
	p.ActiveDot = activeDot
	p.InactiveDot = inactiveDot
	p.SetTotalPages(len(pages))
	return Model{pages: pages, pager: p}
}

func (m Model) Init() tea.Cmd {
	return nil
}

// Page is the index of the page on screen.
func (m Model) Page() int {
	return m.pager.Page
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		return m, nil
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "esc", "ctrl+c":
			return m, tea.Quit
		case "n", "j":
			m.pager.NextPage()
			return m, nil
		case "p", "k":
			m.pager.PrevPage()
			return m, nil
		case "home":
			m.pager.Page = 0
			return m, nil
		case "end":
			m.pager.Page = max(m.pager.TotalPages-1, 0)
			return m, nil
		}
	}

	var cmd tea.Cmd
	m.pager, cmd = m.pager.Update(msg)
	return m, cmd
}

func (m Model) View() string {
	if len(m.pages) == 0 {
		return mutedStyle.Render("No tides to show.") + "\n"
	}

	e := m.pages[m.pager.Page]
	var b strings.Builder
	b.WriteString(titleStyle.Render(e.Title))
	b.WriteString("\n")
	if e.Description != "" {
		b.WriteString(mutedStyle.Render(e.Description))
		b.WriteString("\n")
	}
	for _, f := range e.Fields {
		b.WriteString("\n")
		b.WriteString(fieldStyle.Render(f.Name))
		b.WriteString("\n")
		b.WriteString(f.Value)
	}
	if e.Footer != "" {
		b.WriteString("\n\n")
		b.WriteString(mutedStyle.Render(e.Footer))
	}

	card := cardStyle
	if m.width > 4 {
		card = card.MaxWidth(m.width)
	}
	return card.Render(b.String()) + "\n " + m.pager.View() + "\n" +
		helpStyle.Render(" ←/→ page • q quit") + "\n"
}
