package ui

import (
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/five82/roster/internal/roster"
)

// formFields is the input order of the add/edit form.
var formFields = []struct {
	label string
	get   func(roster.Student) string
	set   func(*roster.Student, string)
}{
	{"Name", func(s roster.Student) string { return s.Name }, func(s *roster.Student, v string) { s.Name = v }},
	{"Roll Number", func(s roster.Student) string { return s.RollNumber }, func(s *roster.Student, v string) { s.RollNumber = v }},
	{"Class", func(s roster.Student) string { return s.Class }, func(s *roster.Student, v string) { s.Class = v }},
	{"Address", func(s roster.Student) string { return s.Address }, func(s *roster.Student, v string) { s.Address = v }},
	{"Contact Number", func(s roster.Student) string { return s.ContactNumber }, func(s *roster.Student, v string) { s.ContactNumber = v }},
	{"Gender", func(s roster.Student) string { return s.Gender }, func(s *roster.Student, v string) { s.Gender = v }},
	{"Batch Year", func(s roster.Student) string { return s.BatchYear }, func(s *roster.Student, v string) { s.BatchYear = v }},
}

// studentForm is the draft behind the add and edit overlays. The draft is
// UI-owned; nothing reaches the store until the save succeeds and the list
// is reloaded.
type studentForm struct {
	seq        uint64
	id         string
	inputs     []textinput.Model
	focus      int
	dirty      bool
	fetching   bool
	submitting bool
	err        string
}

// newStudentForm opens an empty form, or an edit form prefilled from the
// local copy of s while the authoritative record is fetched.
func newStudentForm(seq uint64, s *roster.Student) *studentForm {
	f := &studentForm{seq: seq, inputs: make([]textinput.Model, len(formFields))}
	for i, field := range formFields {
		ti := textinput.New()
		ti.Placeholder = field.label
		ti.Prompt = ""
		ti.CharLimit = 128
		if s != nil {
			ti.SetValue(field.get(*s))
		}
		f.inputs[i] = ti
	}
	if s != nil {
		f.id = s.ID
		f.fetching = true
	}
	f.inputs[0].Focus()
	return f
}

func (f *studentForm) editing() bool {
	return f.id != ""
}

// prefill replaces the draft with the fetched record unless the user has
// already started typing. A failed fetch keeps the local copy.
func (f *studentForm) prefill(s roster.Student, err error) {
	f.fetching = false
	if err != nil || f.dirty {
		return
	}
	for i, field := range formFields {
		f.inputs[i].SetValue(field.get(s))
	}
}

func (f *studentForm) fail(err error) {
	f.submitting = false
	f.err = err.Error()
}

// student builds the record to submit from the draft.
func (f *studentForm) student() roster.Student {
	s := roster.Student{ID: f.id}
	for i, field := range formFields {
		field.set(&s, strings.TrimSpace(f.inputs[i].Value()))
	}
	return s
}

func (f *studentForm) move(step int) {
	f.inputs[f.focus].Blur()
	n := len(f.inputs)
	f.focus = ((f.focus+step)%n + n) % n
	f.inputs[f.focus].Focus()
}

// handleFormKey drives the form: tab/shift+tab move between fields, enter
// advances and submits from the last field, ctrl+s submits, esc cancels.
func (m Model) handleFormKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	f := m.form
	if f.submitting {
		if key.Matches(msg, m.keys.Escape) {
			m.form = nil
		}
		return m, nil
	}

	switch {
	case key.Matches(msg, m.keys.Escape):
		m.form = nil
		return m, nil
	case key.Matches(msg, m.keys.Tab), msg.String() == "down":
		f.move(1)
		return m, textinput.Blink
	case key.Matches(msg, m.keys.ShiftTab), msg.String() == "up":
		f.move(-1)
		return m, textinput.Blink
	case key.Matches(msg, m.keys.Confirm) && f.focus < len(f.inputs)-1:
		f.move(1)
		return m, textinput.Blink
	case key.Matches(msg, m.keys.Submit), key.Matches(msg, m.keys.Confirm):
		if m.sync == nil {
			return m, nil
		}
		f.submitting = true
		f.err = ""
		return m, saveCmd(m.ctx, m.sync, f.seq, f.student())
	}

	before := f.inputs[f.focus].Value()
	var cmd tea.Cmd
	f.inputs[f.focus], cmd = f.inputs[f.focus].Update(msg)
	if f.inputs[f.focus].Value() != before {
		f.dirty = true
	}
	return m, cmd
}

// updateForm forwards non-key messages such as cursor blinks.
func (m Model) updateForm(msg tea.Msg) (tea.Model, tea.Cmd) {
	f := m.form
	var cmd tea.Cmd
	f.inputs[f.focus], cmd = f.inputs[f.focus].Update(msg)
	return m, cmd
}

// renderForm renders the add/edit overlay.
func (m Model) renderForm() string {
	styles := m.theme.Styles()
	f := m.form

	title := "Add New Student"
	if f.editing() {
		title = "Edit Student"
	}

	labelWidth := 16
	inputWidth := 40
	var b strings.Builder
	b.WriteString(styles.Text.Bold(true).Render(title))
	b.WriteString("\n")
	b.WriteString(styles.FaintText.Render(strings.Repeat("─", labelWidth+inputWidth)))
	b.WriteString("\n\n")

	for i, field := range formFields {
		labelStyle := styles.MutedText
		if i == f.focus {
			labelStyle = styles.AccentText.Bold(true)
		}
		b.WriteString(labelStyle.Width(labelWidth).Render(field.label))
		in := f.inputs[i]
		in.Width = inputWidth
		b.WriteString(in.View())
		b.WriteString("\n")
	}

	b.WriteString("\n")
	switch {
	case f.submitting:
		b.WriteString(styles.WarningText.Render("Saving..."))
	case f.err != "":
		b.WriteString(styles.DangerText.Render(truncate(f.err, labelWidth+inputWidth)))
	case f.fetching:
		b.WriteString(styles.FaintText.Render("Loading latest record..."))
	default:
		b.WriteString(styles.FaintText.Render("tab next · enter/ctrl+s save · esc cancel"))
	}

	return m.renderModal(b.String(), 0)
}
