package dashboard

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"

	"github.com/verte-zerg/funnelquiz/internal/stats"
)

func newTable(columns []table.Column) table.Model {
	t := table.New(
		table.WithColumns(columns),
		table.WithHeight(1),
	)
	t.SetStyles(tableStyles())
	return t
}

func tableStyles() table.Styles {
	styles := table.DefaultStyles()
	styles.Header = styles.Header.
		Border(lipgloss.NormalBorder(), false, false, true, false).
		BorderForeground(lipgloss.Color("#4A4A4A")).
		Foreground(lipgloss.Color("#C0C0C0")).
		Bold(true).
		Padding(0, 1).
		PaddingLeft(0)
	styles.Cell = styles.Cell.
		Padding(0, 1).
		PaddingLeft(0)
	styles.Selected = styles.Cell.
		Foreground(lipgloss.Color("#F0F0F0")).
		Bold(true)
	return styles
}

func dropoffColumns() []table.Column {
	return []table.Column{
		{Title: "Question", Width: 9},
		{Title: "Reached", Width: 9},
		{Title: "Drop-off", Width: 9},
	}
}

func dropoffRows(dropoffs []stats.QuestionDropoff) []table.Row {
	rows := make([]table.Row, 0, len(dropoffs))
	for _, d := range dropoffs {
		rows = append(rows, table.Row{
			fmt.Sprintf("Q%d", d.Question),
			humanize.Comma(int64(d.Reached)),
			fmt.Sprintf("%.1f%%", d.DropoffRate),
		})
	}
	return rows
}

func sourceColumns() []table.Column {
	return []table.Column{
		{Title: "Source", Width: 20},
		{Title: "Visitors", Width: 9},
		{Title: "Share", Width: 7},
	}
}

func sourceRows(sources []stats.SourceCount, total int) []table.Row {
	rows := make([]table.Row, 0, len(sources))
	for _, s := range sources {
		rows = append(rows, table.Row{
			s.Source,
			humanize.Comma(int64(s.Count)),
			fmt.Sprintf("%.1f%%", stats.Rate(s.Count, total)),
		})
	}
	return rows
}

func cohortColumns() []table.Column {
	return []table.Column{
		{Title: "Date", Width: 10},
		{Title: "Views", Width: 7},
		{Title: "Started", Width: 7},
		{Title: "Leads", Width: 7},
		{Title: "Completed", Width: 9},
		{Title: "VSL", Width: 5},
		{Title: "Lead rate", Width: 9},
	}
}

func cohortRows(cohorts []stats.Cohort) []table.Row {
	rows := make([]table.Row, 0, len(cohorts))
	for _, c := range cohorts {
		rows = append(rows, table.Row{
			c.Date,
			humanize.Comma(int64(c.PageViews)),
			humanize.Comma(int64(c.QuizStarted)),
			humanize.Comma(int64(c.EmailProvided)),
			humanize.Comma(int64(c.QuizCompleted)),
			humanize.Comma(int64(c.VSLClicked)),
			fmt.Sprintf("%.1f%%", stats.Rate(c.EmailProvided, c.PageViews)),
		})
	}
	return rows
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}

func padLines(s string, width int) string {
	if width <= 0 || s == "" {
		return s
	}
	lines := strings.Split(s, "\n")
	for i, line := range lines {
		lines[i] = padLine(line, width)
	}
	return strings.Join(lines, "\n")
}

func padLine(line string, width int) string {
	lineWidth := lipgloss.Width(line)
	if lineWidth < width {
		return line + strings.Repeat(" ", width-lineWidth)
	}
	return line
}

func fitLines(s string, width, height int) string {
	if width <= 0 || height <= 0 {
		return s
	}
	lines := strings.Split(s, "\n")
	for i, line := range lines {
		lines[i] = padLine(line, width)
	}
	if len(lines) > height {
		lines = lines[:height]
	}
	for len(lines) < height {
		lines = append(lines, strings.Repeat(" ", width))
	}
	return strings.Join(lines, "\n")
}

func truncateLine(s string, width int) string {
	if width <= 0 {
		return s
	}
	runes := []rune(s)
	if len(runes) <= width {
		return s
	}
	if width <= 3 {
		return string(runes[:width])
	}
	return string(runes[:width-3]) + "..."
}
