package ui

import (
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/five82/roster/internal/roster"
)

// handleSearchInput handles keys while the search box has focus. The
// roll number is submitted exactly as typed.
func (m Model) handleSearchInput(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Confirm):
		m.searchInput.Blur()
		if m.sync == nil {
			return m, nil
		}
		m.searching = true
		return m, searchCmd(m.ctx, m.sync, m.searchInput.Value())

	case key.Matches(msg, m.keys.Escape):
		m.searchInput.Blur()
		return m, nil
	}

	var cmd tea.Cmd
	m.searchInput, cmd = m.searchInput.Update(msg)
	return m, cmd
}

// handleSearchKey handles keys on the search view once the box is blurred.
func (m Model) handleSearchKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if model, cmd, ok := m.handleRecordKey(msg); ok {
		return model, cmd
	}
	if key.Matches(msg, m.keys.Confirm) {
		m.searchInput.Focus()
		return m, textinput.Blink
	}
	return m, nil
}

// renderSearch renders the search box above the result card.
func (m Model) renderSearch() string {
	styles := m.theme.Styles()
	height := m.contentHeight()

	inputBg := m.theme.SurfaceAlt
	if m.searchInput.Focused() {
		inputBg = m.theme.FocusBg
	}
	bg := NewBgStyle(inputBg)
	input := m.searchInput
	input.Width = max(m.width-8, 10)
	inputBox := m.renderTitledBox("Search by Roll Number", bg.Space()+input.View(), m.width, 3, m.searchInput.Focused())

	resultBg := NewBgStyle(m.theme.SurfaceAlt)
	var content string
	switch {
	case m.searching:
		content = resultBg.Render(" Searching...", styles.MutedText)
	case m.snapshot.SearchResult != nil:
		content = m.renderStudentCard(*m.snapshot.SearchResult, resultBg)
	case m.searchDone:
		content = resultBg.Render(" No student found for roll number "+quoteKey(m.lastSearch), styles.MutedText)
	default:
		content = resultBg.Render(" Type a roll number and press enter", styles.FaintText)
	}

	resultBox := m.renderTitledBox("Search Result", content, m.width, max(height-3, 4), !m.searchInput.Focused())
	return inputBox + "\n" + resultBox
}

// renderStudentCard renders every attribute of one record.
func (m Model) renderStudentCard(s roster.Student, bg BgStyle) string {
	styles := m.theme.Styles()
	labelWidth := 0
	for _, f := range formFields {
		labelWidth = max(labelWidth, len(f.label))
	}

	lines := make([]string, 0, len(formFields)+2)
	lines = append(lines, "")
	for _, f := range formFields {
		value := strings.TrimSpace(f.get(s))
		if value == "" {
			value = "-"
		}
		lines = append(lines,
			bg.Space()+bg.Render(padRight(f.label, labelWidth+2), styles.MutedText)+bg.Render(value, styles.Text))
	}
	lines = append(lines, "", bg.Space()+
		bg.Render("e", styles.AccentText)+bg.Render(" edit  ", styles.FaintText)+
		bg.Render("d", styles.AccentText)+bg.Render(" delete", styles.FaintText))
	return strings.Join(lines, "\n")
}

func quoteKey(k string) string {
	if k == "" {
		return `""`
	}
	return `"` + k + `"`
}
