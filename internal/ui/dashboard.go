package ui

import (
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/five82/roster/internal/stats"
)

// renderDashboard renders the summary cards above the two charts.
func (m Model) renderDashboard() string {
	height := m.contentHeight()
	gender := stats.Gender(m.snapshot.Statistics)
	batch := stats.BatchYear(m.snapshot.Statistics)

	cards := m.renderCards(gender, batch)
	chartHeight := max(height-lipgloss.Height(cards), 4)

	if m.width >= 100 {
		left := m.width / 2
		right := m.width - left
		return cards + "\n" + lipgloss.JoinHorizontal(lipgloss.Top,
			m.renderChartBox("Student Distribution by Gender", gender, left, chartHeight, false),
			m.renderChartBox("Number of Students by Batch Year", batch, right, chartHeight, true),
		)
	}

	top := max(chartHeight/2, 3)
	bottom := max(chartHeight-top, 3)
	return cards + "\n" +
		m.renderChartBox("Student Distribution by Gender", gender, m.width, top, false) + "\n" +
		m.renderChartBox("Number of Students by Batch Year", batch, m.width, bottom, true)
}

// renderCards renders the row of summary counters. Total comes from the
// statistics snapshot and Listed from the live list, so the two can
// disagree until the next reload.
func (m Model) renderCards(gender, batch stats.Series) string {
	type card struct {
		title string
		value string
		color string
	}
	cards := []card{
		{"Total Students", strconv.Itoa(m.snapshot.Statistics.TotalStudents), m.theme.Accent},
		{"Listed", strconv.Itoa(len(m.snapshot.Students)), m.theme.Info},
		{"Genders", strconv.Itoa(gender.Len()), m.theme.Success},
		{"Batch Years", strconv.Itoa(batch.Len()), m.theme.Warning},
	}

	width := max(m.width/len(cards), 12)
	rendered := make([]string, 0, len(cards))
	for i, c := range cards {
		w := width
		if i == len(cards)-1 {
			w = max(m.width-width*(len(cards)-1), 12)
		}
		style := lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color(m.theme.Border)).
			Background(lipgloss.Color(m.theme.SurfaceAlt)).
			Width(w-2).
			Padding(0, 1)
		title := lipgloss.NewStyle().
			Foreground(lipgloss.Color(m.theme.Muted)).
			Background(lipgloss.Color(m.theme.SurfaceAlt)).
			Render(c.title)
		value := lipgloss.NewStyle().
			Foreground(lipgloss.Color(c.color)).
			Background(lipgloss.Color(m.theme.SurfaceAlt)).
			Bold(true).
			Render(c.value)
		rendered = append(rendered, style.Render(title+"\n"+value))
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, rendered...)
}

// renderChartBox renders one chart inside a titled box.
func (m Model) renderChartBox(title string, s stats.Series, width, height int, columns bool) string {
	bg := NewBgStyle(m.theme.SurfaceAlt)
	innerWidth := max(width-4, 1)
	innerHeight := max(height-2, 1)

	var content string
	switch {
	case !m.snapshot.StatsLoaded && m.loading:
		content = bg.Render("Loading statistics...", m.theme.Styles().MutedText)
	case columns:
		content = renderColumnChart(s, innerWidth, innerHeight, m.theme, bg)
	default:
		content = renderBarChart(s, innerWidth, m.theme, bg)
	}
	return m.renderTitledBox(title, indent(content, bg), width, height, false)
}

// indent shifts every line one column right inside a box.
func indent(content string, bg BgStyle) string {
	lines := strings.Split(content, "\n")
	for i, l := range lines {
		lines[i] = bg.Space() + l
	}
	return strings.Join(lines, "\n")
}
