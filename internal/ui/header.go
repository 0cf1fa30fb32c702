package ui

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/five82/roster/internal/roster"
	"github.com/five82/roster/internal/syncer"
)

// renderHeader renders the status bar.
func (m Model) renderHeader() string {
	styles := m.theme.Styles().WithBackground(m.theme.Surface)
	bg := NewBgStyle(m.theme.Surface)
	compact := m.width < 100

	var parts []string
	parts = append(parts, bg.Render("roster", styles.Logo))

	if host := displayHost(m.apiURL); host != "" && !compact {
		parts = append(parts, bg.Render(host, styles.FaintText))
	}

	switch {
	case m.status.IsOffline():
		parts = append(parts, bg.Render("● "+classifyConnectionError(m.status.LastError), styles.DangerText))
	case m.activity() != "":
		parts = append(parts, bg.Render("● "+m.activity(), styles.WarningText))
	case m.loading || m.status.Pending > 0:
		parts = append(parts, bg.Render("● SYNCING", styles.WarningText))
	case m.snapshot.ListLoaded || m.snapshot.StatsLoaded:
		parts = append(parts, bg.Render("● ONLINE", styles.SuccessText))
	default:
		parts = append(parts, bg.Render("● CONNECTING", styles.WarningText))
	}

	parts = append(parts,
		bg.Render("Students:", styles.MutedText)+bg.Space()+
			bg.Render(fmt.Sprintf("%d", len(m.snapshot.Students)), styles.Text),
		bg.Render("Total:", styles.MutedText)+bg.Space()+
			bg.Render(fmt.Sprintf("%d", m.snapshot.Statistics.TotalStudents), styles.Text),
	)

	if timeStr := m.formatTimestamp(); timeStr != "" {
		parts = append(parts, bg.Render(timeStr, styles.MutedText))
	}

	if err := m.status.LastError; err != nil {
		maxErr := 60
		if compact {
			maxErr = 30
		}
		parts = append(parts,
			bg.Render("ERROR", styles.DangerText.Bold(true))+bg.Space()+
				bg.Render(truncate(describeError(m.status.LastFailedOp, err), maxErr), styles.DangerText),
		)
	}

	if m.notice != "" {
		style := styles.InfoText
		if m.noticeErr {
			style = styles.WarningText
		}
		parts = append(parts, bg.Render(truncate(m.notice, 60), style))
	}

	return styles.Header.Width(m.width).MaxHeight(1).Render(bg.Join(parts, "  "))
}

// activityLabels names the user-initiated requests the header reports while
// they are pending, most disruptive first.
var activityLabels = []struct {
	op    syncer.Op
	label string
}{
	{syncer.OpDelete, "DELETING"},
	{syncer.OpCreate, "SAVING"},
	{syncer.OpUpdate, "SAVING"},
	{syncer.OpSearch, "SEARCHING"},
}

// activity returns the label of the first pending user request, or "".
func (m Model) activity() string {
	if m.sync == nil {
		return ""
	}
	for _, a := range activityLabels {
		if m.sync.Phase(a.op) == syncer.PhasePending {
			return a.label
		}
	}
	return ""
}

// formatTimestamp formats the last store change with a relative indicator.
func (m Model) formatTimestamp() string {
	if m.lastUpdated.IsZero() {
		return ""
	}

	timeSince := time.Since(m.lastUpdated)
	timeStr := m.lastUpdated.Format("15:04:05")

	if timeSince < time.Minute {
		timeStr += " (now)"
	} else if timeSince < time.Hour {
		timeStr += fmt.Sprintf(" (%dm ago)", int(timeSince.Minutes()))
	} else if timeSince < 24*time.Hour {
		timeStr += fmt.Sprintf(" (%dh ago)", int(timeSince.Hours()))
	}

	return timeStr
}

// classifyConnectionError returns a short description of the connection error.
func classifyConnectionError(err error) string {
	if err == nil {
		return ""
	}
	switch roster.KindOf(err) {
	case roster.KindStatus:
		return "API ERROR"
	case roster.KindDecode:
		return "BAD RESPONSE"
	}
	msg := err.Error()
	switch {
	case strings.Contains(msg, "connection refused"):
		return "OFFLINE"
	case strings.Contains(msg, "no such host"):
		return "HOST NOT FOUND"
	case strings.Contains(msg, "timeout"), strings.Contains(msg, "deadline exceeded"):
		return "TIMEOUT"
	default:
		return "ERROR"
	}
}

// describeError is the one-line status text for a failed operation.
func describeError(op syncer.Op, err error) string {
	if op == "" {
		return err.Error()
	}
	return string(op) + ": " + classifyConnectionError(err)
}

func displayHost(raw string) string {
	u, err := url.Parse(raw)
	if err != nil || u.Host == "" {
		return raw
	}
	return u.Host + strings.TrimRight(u.Path, "/")
}

// renderCommandBar renders the command hints bar.
func (m Model) renderCommandBar() string {
	styles := m.theme.Styles().WithBackground(m.theme.Surface)
	bg := NewBgStyle(m.theme.Surface)

	type cmd struct{ key, desc string }
	var commands []cmd

	switch m.currentView {
	case ViewStudents:
		commands = []cmd{
			{"j/k", "Navigate"},
			{"e", "Edit"},
			{"d", "Delete"},
			{"a", "Add"},
			{"x", "Export"},
			{"r", "Reload"},
		}
	case ViewSearch:
		if m.searchInput.Focused() {
			commands = []cmd{
				{"enter", "Search"},
				{"esc", "Results"},
			}
		} else {
			commands = []cmd{
				{"/", "New search"},
				{"e", "Edit"},
				{"d", "Delete"},
			}
		}
	case ViewLogs:
		followLabel := "Pause"
		if !m.logState.follow {
			followLabel = "Follow"
		}
		commands = []cmd{
			{"Space", followLabel},
			{"j/k", "Scroll"},
			{"g/G", "Top/Bottom"},
		}
	default:
		commands = []cmd{
			{"a", "Add"},
			{"r", "Reload"},
			{"x", "Export"},
		}
	}
	commands = append(commands,
		cmd{"1/2", "Dash/List"},
		cmd{"/", "Search"},
		cmd{"L", "Log"},
		cmd{"?", "More"},
	)

	colon := bg.Sep(":")
	sep := bg.Spaces(2)

	segments := make([]string, 0, len(commands)+1)
	for _, c := range commands {
		segments = append(segments,
			bg.Render(c.key, styles.AccentText)+colon+bg.Render(c.desc, styles.MutedText))
	}

	segments = append(segments,
		bg.Render("T", styles.AccentText)+colon+bg.Render(m.theme.Name, styles.FaintText))

	return styles.Header.Width(m.width).MaxHeight(1).Render(strings.Join(segments, sep))
}

// truncate shortens s to max runes with an ellipsis.
func truncate(s string, max int) string {
	if max <= 0 {
		return ""
	}
	r := []rune(s)
	if len(r) <= max {
		return s
	}
	if max <= 3 {
		return string(r[:max])
	}
	return string(r[:max-3]) + "..."
}

// padRight fits s into exactly width cells.
func padRight(s string, width int) string {
	if width <= 0 {
		return ""
	}
	s = truncate(s, width)
	if w := lipgloss.Width(s); w < width {
		s += strings.Repeat(" ", width-w)
	}
	return s
}
