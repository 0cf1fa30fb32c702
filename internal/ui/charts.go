package ui

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/five82/roster/internal/stats"
)

const noChartData = "No data"

// renderBarChart draws one horizontal bar per category with its count and
// share of the total. Categories keep payload order.
func renderBarChart(s stats.Series, width int, theme Theme, bg BgStyle) string {
	styles := theme.Styles()
	if s.Empty() {
		return bg.Render(noChartData, styles.MutedText)
	}

	labelWidth := 0
	for i := 0; i < s.Len(); i++ {
		labelWidth = max(labelWidth, lipgloss.Width(s.Label(i)))
	}
	labelWidth = min(labelWidth, max(width/3, 6))

	maxValue := s.Max()
	valueWidth := len(strconv.Itoa(maxValue))
	// label, space, bar, space, value, space, "100%"
	barWidth := max(width-labelWidth-valueWidth-7, 1)

	lines := make([]string, 0, s.Len())
	for i := 0; i < s.Len(); i++ {
		v := max(s.Values[i], 0)
		n := 0
		if maxValue > 0 && v > 0 {
			n = max(v*barWidth/maxValue, 1)
		}
		barStyle := lipgloss.NewStyle().Foreground(lipgloss.Color(theme.ChartColor(i)))

		var b strings.Builder
		b.WriteString(bg.Render(padRight(s.Label(i), labelWidth), styles.Text))
		b.WriteString(bg.Space())
		b.WriteString(bg.Render(strings.Repeat("█", n), barStyle))
		b.WriteString(bg.Spaces(barWidth - n + 1))
		b.WriteString(bg.Render(fmt.Sprintf("%*d", valueWidth, v), styles.Text))
		b.WriteString(bg.Space())
		b.WriteString(bg.Render(fmt.Sprintf("%3.0f%%", s.Share(i)*100), styles.MutedText))
		lines = append(lines, b.String())
	}
	return strings.Join(lines, "\n")
}

// renderColumnChart draws one column per category, scaled to the tallest,
// with labels and counts underneath. Columns that do not fit are dropped
// from the right.
func renderColumnChart(s stats.Series, width, height int, theme Theme, bg BgStyle) string {
	styles := theme.Styles()
	if s.Empty() {
		return bg.Render(noChartData, styles.MutedText)
	}

	rows := max(height-2, 1)
	n := s.Len()
	colWidth := 6
	if n*(colWidth+1) > width {
		colWidth = max(width/n-1, 3)
	}
	shown := min(n, max(width/(colWidth+1), 1))

	maxValue := s.Max()
	heights := make([]int, shown)
	for i := 0; i < shown; i++ {
		v := max(s.Values[i], 0)
		if maxValue > 0 && v > 0 {
			heights[i] = (v*rows + maxValue - 1) / maxValue
		}
	}

	lines := make([]string, 0, rows+2)
	for r := rows; r >= 1; r-- {
		var b strings.Builder
		for i := 0; i < shown; i++ {
			if heights[i] >= r {
				barStyle := lipgloss.NewStyle().Foreground(lipgloss.Color(theme.ChartColor(i)))
				b.WriteString(bg.Render(strings.Repeat("█", colWidth), barStyle))
			} else {
				b.WriteString(bg.Spaces(colWidth))
			}
			b.WriteString(bg.Space())
		}
		lines = append(lines, b.String())
	}

	var labels, values strings.Builder
	for i := 0; i < shown; i++ {
		labels.WriteString(bg.Render(centerText(s.Label(i), colWidth), styles.MutedText))
		labels.WriteString(bg.Space())
		values.WriteString(bg.Render(centerText(strconv.Itoa(s.Values[i]), colWidth), styles.Text))
		values.WriteString(bg.Space())
	}
	lines = append(lines, labels.String(), values.String())

	return strings.Join(lines, "\n")
}

func centerText(s string, width int) string {
	s = truncate(s, width)
	return lipgloss.PlaceHorizontal(width, lipgloss.Center, s)
}
