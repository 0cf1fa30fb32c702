package ui

import (
	"fmt"
	"slices"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/five82/roster/internal/logtail"
)

const logTailLimit = 500

// logState holds the activity log view state.
type logState struct {
	lines  []string
	follow bool
	dirty  bool
	err    error
}

// refreshLogs re-reads the tail of the log file.
func (m Model) refreshLogs() tea.Cmd {
	if m.logPath == "" {
		return nil
	}
	return readLogCmd(m.logPath, logTailLimit)
}

// handleLogLines stores a fresh tail, skipping the re-render when nothing
// changed.
func (m *Model) handleLogLines(msg logLinesMsg) {
	m.logState.err = msg.err
	if msg.err != nil {
		return
	}
	if !slices.Equal(m.logState.lines, msg.lines) {
		m.logState.lines = msg.lines
		m.logState.dirty = true
	}
	m.updateLogViewport()
}

// updateLogViewport sizes the viewport and re-renders its content when
// the lines or the theme changed.
func (m *Model) updateLogViewport() {
	width := max(m.width-4, 1)
	// header, command bar, box borders, status line
	height := max(m.height-5, 1)

	if m.logViewport.Width == 0 {
		m.logViewport = viewport.New(width, height)
		m.logState.dirty = true
	}
	if m.logViewport.Width != width {
		m.logState.dirty = true
	}
	m.logViewport.Width = width
	m.logViewport.Height = height
	m.logViewport.Style = lipgloss.NewStyle().Background(lipgloss.Color(m.theme.FocusBg))

	if m.logState.dirty {
		m.logViewport.SetContent(m.renderLogContent())
		m.logState.dirty = false
	}
	if m.logState.follow {
		m.logViewport.GotoBottom()
	}
}

// handleLogsKey scrolls the log view. Any manual scroll pauses follow mode.
func (m Model) handleLogsKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.ToggleFollow):
		m.logState.follow = !m.logState.follow
		if m.logState.follow {
			m.logViewport.GotoBottom()
			return m, m.refreshLogs()
		}
		return m, nil
	case key.Matches(msg, m.keys.Down):
		m.logViewport.LineDown(1)
	case key.Matches(msg, m.keys.Up):
		m.logViewport.LineUp(1)
	case key.Matches(msg, m.keys.Top):
		m.logViewport.GotoTop()
	case key.Matches(msg, m.keys.Bottom):
		m.logViewport.GotoBottom()
		m.logState.follow = true
		return m, nil
	case key.Matches(msg, m.keys.PageDown):
		m.logViewport.ViewDown()
	case key.Matches(msg, m.keys.PageUp):
		m.logViewport.ViewUp()
	case key.Matches(msg, m.keys.HalfPageDown):
		m.logViewport.HalfViewDown()
	case key.Matches(msg, m.keys.HalfPageUp):
		m.logViewport.HalfViewUp()
	default:
		return m, nil
	}
	m.logState.follow = m.logViewport.AtBottom()
	return m, nil
}

// renderLogs renders the log box and its status line.
func (m Model) renderLogs() string {
	styles := m.theme.Styles().WithBackground(m.theme.Surface)
	bg := NewBgStyle(m.theme.Surface)

	box := m.renderTitledBox("Activity Log", m.logViewport.View(), m.width, m.contentHeight()-1, true)

	follow := "off"
	if m.logState.follow {
		follow = "on"
	}
	parts := []string{
		bg.Render(fmt.Sprintf("%d lines  follow %s", len(m.logState.lines), follow), styles.FaintText),
		bg.Render(truncate(m.logPath, max(m.width/2, 10)), styles.AccentText),
	}
	if m.logState.err != nil {
		parts = append(parts, bg.Render(truncate(m.logState.err.Error(), 60), styles.DangerText))
	}
	sep := bg.Space() + bg.Render("•", styles.FaintText) + bg.Space()
	return box + "\n" + bg.FillLine(strings.Join(parts, sep), m.width)
}

// renderLogContent renders the decoded log lines.
func (m *Model) renderLogContent() string {
	bg := NewBgStyle(m.theme.FocusBg)
	styles := m.theme.Styles()
	width := m.logViewport.Width

	if len(m.logState.lines) == 0 {
		return bg.FillLine(bg.Render("No log entries", styles.MutedText), width)
	}

	lines := make([]string, 0, len(m.logState.lines))
	for _, line := range m.logState.lines {
		lines = append(lines, bg.FillLine(m.formatLogLine(line, styles, bg), width))
	}
	return strings.Join(lines, "\n")
}

// formatLogLine colorizes one JSON log record. Lines that do not decode
// are shown as they are.
func (m *Model) formatLogLine(line string, styles Styles, bg BgStyle) string {
	entry, ok := logtail.Parse(line)
	if !ok {
		return bg.Render(line, styles.Text)
	}

	var b strings.Builder
	if ts := shortTimestamp(entry.Time); ts != "" {
		b.WriteString(bg.Render(ts, styles.FaintText))
		b.WriteString(bg.Space())
	}
	b.WriteString(bg.Render(fmt.Sprintf("%-5s", entry.Level), levelStyle(entry.Level, styles).Bold(true)))
	if entry.Logger != "" {
		b.WriteString(bg.Space())
		b.WriteString(bg.Render("["+entry.Logger+"]", styles.AccentText))
	}
	b.WriteString(bg.Space())
	b.WriteString(bg.Render(entry.Message, styles.Text))
	if fields := entry.FieldString(); fields != "" {
		b.WriteString(bg.Space())
		b.WriteString(bg.Render(fields, styles.MutedText))
	}
	return b.String()
}

// shortTimestamp trims an ISO8601 timestamp to date and seconds.
func shortTimestamp(ts string) string {
	if len(ts) >= 19 && ts[10] == 'T' {
		return ts[:10] + " " + ts[11:19]
	}
	return ts
}

func levelStyle(level string, styles Styles) lipgloss.Style {
	switch level {
	case "INFO":
		return styles.SuccessText
	case "WARN":
		return styles.WarningText
	case "ERROR", "DPANIC", "PANIC", "FATAL":
		return styles.DangerText
	case "DEBUG":
		return styles.InfoText
	default:
		return styles.Text
	}
}
