package ui

import (
	"strings"

	"github.com/five82/roster/internal/roster"
)

// renderConfirm renders the delete prompt for the pending target.
func (m Model) renderConfirm() string {
	styles := m.theme.Styles()
	s := m.confirm.student

	var b strings.Builder
	b.WriteString(styles.DangerText.Render("Delete student?"))
	b.WriteString("\n\n")
	b.WriteString(styles.Text.Render(displayName(s)))
	b.WriteString("\n")
	if s.RollNumber != "" {
		b.WriteString(styles.MutedText.Render("Roll Number " + s.RollNumber))
		b.WriteString("\n")
	}
	b.WriteString("\n")
	b.WriteString(styles.AccentText.Render("y"))
	b.WriteString(styles.FaintText.Render(" delete  "))
	b.WriteString(styles.AccentText.Render("n"))
	b.WriteString(styles.FaintText.Render(" cancel"))

	return m.renderModal(b.String(), 40)
}

// displayName is the label used for a record in prompts and notices.
func displayName(s roster.Student) string {
	name := strings.TrimSpace(s.Name)
	switch {
	case name != "":
		return name
	case s.RollNumber != "":
		return "#" + s.RollNumber
	case s.ID != "":
		return s.ID
	default:
		return "student"
	}
}
