package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/five82/roster/internal/roster"
)

// studentColumn is one column of the students table.
type studentColumn struct {
	title  string
	weight int
	min    int
	value  func(roster.Student) string
}

var studentColumns = []studentColumn{
	{"Name", 4, 10, func(s roster.Student) string { return s.Name }},
	{"Roll No.", 2, 8, func(s roster.Student) string { return s.RollNumber }},
	{"Class", 2, 6, func(s roster.Student) string { return s.Class }},
	{"Gender", 2, 6, func(s roster.Student) string { return s.Gender }},
	{"Batch", 1, 5, func(s roster.Student) string { return s.BatchYear }},
	{"Contact", 3, 8, func(s roster.Student) string { return s.ContactNumber }},
	{"Address", 5, 8, func(s roster.Student) string { return s.Address }},
}

// handleStudentsKey handles navigation and record keys in the table.
func (m Model) handleStudentsKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if model, cmd, ok := m.handleRecordKey(msg); ok {
		return model, cmd
	}

	n := len(m.snapshot.Students)
	page := max(m.tableRows(), 1)

	switch {
	case key.Matches(msg, m.keys.Down):
		m.selectedRow++
	case key.Matches(msg, m.keys.Up):
		m.selectedRow--
	case key.Matches(msg, m.keys.Top):
		m.selectedRow = 0
	case key.Matches(msg, m.keys.Bottom):
		m.selectedRow = n - 1
	case key.Matches(msg, m.keys.PageDown):
		m.selectedRow += page
	case key.Matches(msg, m.keys.PageUp):
		m.selectedRow -= page
	case key.Matches(msg, m.keys.HalfPageDown):
		m.selectedRow += page / 2
	case key.Matches(msg, m.keys.HalfPageUp):
		m.selectedRow -= page / 2
	default:
		return m, nil
	}
	m.clampSelection()
	return m, nil
}

// tableRows is the number of data rows visible in the table box.
func (m Model) tableRows() int {
	// box borders and the column header
	return m.contentHeight() - 3
}

// columnWidths distributes width across the columns by weight, dropping
// columns from the right while the minimums do not fit.
func columnWidths(width int) []int {
	cols := len(studentColumns)
	for cols > 1 {
		need := cols - 1
		for _, c := range studentColumns[:cols] {
			need += c.min
		}
		if need <= width {
			break
		}
		cols--
	}

	avail := max(width-(cols-1), cols)
	totalWeight := 0
	for _, c := range studentColumns[:cols] {
		totalWeight += c.weight
	}

	widths := make([]int, cols)
	used := 0
	for i, c := range studentColumns[:cols] {
		widths[i] = max(avail*c.weight/totalWeight, 1)
		used += widths[i]
	}
	widths[0] += avail - used
	return widths
}

// renderStudents renders the students table.
func (m Model) renderStudents() string {
	height := m.contentHeight()
	innerWidth := max(m.width-4, 10)
	bgColor := m.theme.FocusBg
	bg := NewBgStyle(bgColor)
	styles := m.theme.Styles()

	title := fmt.Sprintf("Students (%d)", len(m.snapshot.Students))

	var content string
	switch {
	case len(m.snapshot.Students) == 0 && !m.snapshot.ListLoaded:
		content = bg.Render(" Loading students...", styles.MutedText)
	case len(m.snapshot.Students) == 0:
		content = bg.Render(" No students", styles.MutedText)
	default:
		content = m.renderStudentTable(innerWidth, height-3, bg)
	}

	return m.renderTitledBox(title, content, m.width, height, true)
}

// renderStudentTable renders the header row and the visible window of rows
// around the selection.
func (m Model) renderStudentTable(width, rows int, bg BgStyle) string {
	styles := m.theme.Styles()
	widths := columnWidths(width)
	students := m.snapshot.Students

	rows = max(rows, 1)
	start := 0
	if m.selectedRow >= rows {
		start = m.selectedRow - rows + 1
	}
	end := min(start+rows, len(students))

	lines := make([]string, 0, end-start+1)

	headers := make([]string, len(widths))
	for i, w := range widths {
		headers[i] = bg.Render(padRight(studentColumns[i].title, w), styles.AccentText.Bold(true))
	}
	lines = append(lines, bg.Space()+strings.Join(headers, bg.Space()))

	for i := start; i < end; i++ {
		s := students[i]
		cells := make([]string, len(widths))
		for c, w := range widths {
			cells[c] = padRight(strings.TrimSpace(studentColumns[c].value(s)), w)
		}
		row := " " + strings.Join(cells, " ")
		if i == m.selectedRow {
			lines = append(lines, styles.Selected.Width(width+1).Render(row))
		} else {
			lines = append(lines, lipgloss.NewStyle().
				Background(bg.Color()).
				Foreground(lipgloss.Color(m.theme.Text)).
				Width(width+1).
				Render(row))
		}
	}

	return strings.Join(lines, "\n")
}
