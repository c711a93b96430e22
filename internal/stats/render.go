package stats

import (
	"fmt"
	"io"

	"github.com/dustin/go-humanize"
)

// RenderSummary prints the headline numbers of a report.
func RenderSummary(w io.Writer, report Report) error {
	if report.Records == 0 {
		_, err := fmt.Fprintln(w, "No funnel records found.")
		return err
	}
	m := report.Metrics
	lines := []string{
		"Summary",
		fmt.Sprintf("Visitors: %s", humanize.Comma(int64(m.TotalPageViews))),
		fmt.Sprintf("Leads: %s (%s today)", humanize.Comma(int64(report.Leads.TotalLeads)), humanize.Comma(int64(report.Leads.LeadsToday))),
		fmt.Sprintf("Visitor to lead: %.2f%%", Rate(m.EmailProvided, m.TotalPageViews)),
		fmt.Sprintf("Avg readiness: %d", report.Leads.AvgReadiness),
	}
	if report.Leads.TopProfile != "" {
		lines = append(lines, fmt.Sprintf("Top profile: %s", report.Leads.TopProfile))
	}
	lines = append(lines, "")
	return writeLines(w, lines)
}

// RenderFunnel prints the stage bars. A width of 0 uses the terminal width.
func RenderFunnel(w io.Writer, m Metrics, width int, forceColor bool) error {
	if _, err := fmt.Fprintln(w, "Funnel"); err != nil {
		return err
	}
	if err := RenderFunnelBars(w, m.Stages(), width, forceColor); err != nil {
		return err
	}
	_, err := fmt.Fprintln(w, "")
	return err
}

// RenderDropoffs prints reach and drop-off per question.
func RenderDropoffs(w io.Writer, dropoffs []QuestionDropoff) error {
	rows := make([][]string, 0, len(dropoffs))
	for _, d := range dropoffs {
		rows = append(rows, []string{
			fmt.Sprintf("Q%d", d.Question),
			humanize.Comma(int64(d.Reached)),
			fmt.Sprintf("%.2f%%", d.DropoffRate),
		})
	}
	lines := append([]string{"Question Drop-off"},
		formatTable([]string{"Question", "Reached", "Drop-off"}, rows, map[int]bool{1: true, 2: true})...)
	return writeLines(w, append(lines, ""))
}

// RenderSources prints record counts per traffic source with their share.
func RenderSources(w io.Writer, sources []SourceCount) error {
	if len(sources) == 0 {
		_, err := fmt.Fprintln(w, "No traffic sources found.")
		return err
	}
	total := 0
	for _, s := range sources {
		total += s.Count
	}
	rows := make([][]string, 0, len(sources))
	for _, s := range sources {
		rows = append(rows, []string{
			s.Source,
			humanize.Comma(int64(s.Count)),
			fmt.Sprintf("%.2f%%", Rate(s.Count, total)),
		})
	}
	lines := append([]string{"Traffic Sources"},
		formatTable([]string{"Source", "Records", "Share"}, rows, map[int]bool{1: true, 2: true})...)
	return writeLines(w, append(lines, ""))
}

// RenderCohorts prints one row per day, most recent first.
func RenderCohorts(w io.Writer, cohorts []Cohort) error {
	if len(cohorts) == 0 {
		_, err := fmt.Fprintln(w, "No cohorts found.")
		return err
	}
	rows := make([][]string, 0, len(cohorts))
	for _, c := range cohorts {
		rows = append(rows, []string{
			c.Date,
			humanize.Comma(int64(c.PageViews)),
			humanize.Comma(int64(c.QuizStarted)),
			humanize.Comma(int64(c.EmailProvided)),
			humanize.Comma(int64(c.QuizCompleted)),
			humanize.Comma(int64(c.VSLClicked)),
			fmt.Sprintf("%.2f%%", Rate(c.EmailProvided, c.PageViews)),
		})
	}
	headers := []string{"Date", "Views", "Started", "Leads", "Completed", "VSL", "Lead rate"}
	rightAlign := map[int]bool{1: true, 2: true, 3: true, 4: true, 5: true, 6: true}
	lines := append([]string{"Daily Cohorts"}, formatTable(headers, rows, rightAlign)...)
	return writeLines(w, append(lines, ""))
}

// RenderReport prints every section of a report.
func RenderReport(w io.Writer, report Report, width int, forceColor bool) error {
	if err := RenderSummary(w, report); err != nil {
		return err
	}
	if report.Records == 0 {
		return nil
	}
	if err := RenderFunnel(w, report.Metrics, width, forceColor); err != nil {
		return err
	}
	if err := RenderDropoffs(w, report.Dropoffs); err != nil {
		return err
	}
	if err := RenderSources(w, report.Sources); err != nil {
		return err
	}
	return RenderCohorts(w, report.Cohorts)
}

func writeLines(w io.Writer, lines []string) error {
	for _, line := range lines {
		if _, err := fmt.Fprintln(w, line); err != nil {
			return err
		}
	}
	return nil
}
