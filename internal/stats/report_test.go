package stats

import (
	"bytes"
	"context"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/verte-zerg/funnelquiz/internal/model"
	"github.com/verte-zerg/funnelquiz/internal/store"
)

func TestBuildReport(t *testing.T) {
	dir := t.TempDir()
	st, err := store.Open(filepath.Join(dir, "funnelquiz.db"))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() {
		_ = st.Close()
	})

	ctx := context.Background()
	base := time.Date(2026, 5, 10, 9, 0, 0, 0, time.UTC)
	sessions := []struct {
		id     string
		source string
		steps  []model.Milestone
		lead   bool
	}{
		{"a", "facebook", []model.Milestone{model.MilestonePageViewed, model.MilestoneQuizStarted}, false},
		{"b", "facebook", []model.Milestone{model.MilestonePageViewed, model.MilestoneQuizStarted, model.MilestoneEmailScreenReached}, true},
		{"c", "", []model.Milestone{model.MilestonePageViewed}, false},
	}
	for i, s := range sessions {
		at := base.Add(time.Duration(i) * time.Hour)
		for _, m := range s.steps {
			fields := model.MilestoneFields{}
			if m == model.MilestonePageViewed {
				fields.Attribution = &model.Attribution{UTMSource: s.source}
			}
			if err := st.RecordMilestone(ctx, s.id, m, at, fields); err != nil {
				t.Fatalf("record %s: %v", m, err)
			}
		}
		if s.lead {
			if err := st.RecordMilestone(ctx, s.id, model.MilestoneLeadCaptured, at, model.MilestoneFields{
				Email: "lead@example.com", Name: "Lead", Profile: "LOVE CREATOR", ReadinessScore: 75,
			}); err != nil {
				t.Fatalf("record lead: %v", err)
			}
		}
	}

	report, err := BuildReport(ctx, st, model.ReportConfig{Location: time.UTC})
	if err != nil {
		t.Fatalf("build report: %v", err)
	}
	if report.Records != 3 {
		t.Fatalf("expected 3 records, got %d", report.Records)
	}
	if report.Metrics.TotalPageViews != 3 || report.Metrics.QuizStarted != 2 || report.Metrics.EmailProvided != 1 {
		t.Fatalf("unexpected metrics: %+v", report.Metrics)
	}
	if len(report.Sources) != 2 || report.Sources[0].Source != "facebook" || report.Sources[1].Source != model.DirectSource {
		t.Fatalf("unexpected sources: %+v", report.Sources)
	}
	if len(report.Cohorts) != 1 || report.Cohorts[0].Date != "2026-05-10" {
		t.Fatalf("unexpected cohorts: %+v", report.Cohorts)
	}
	if report.Leads.TotalLeads != 1 || report.Leads.TopProfile != "LOVE CREATOR" || report.Leads.AvgReadiness != 75 {
		t.Fatalf("unexpected lead stats: %+v", report.Leads)
	}

	filtered, err := BuildReport(ctx, st, model.ReportConfig{Filter: model.RecordFilter{Source: "facebook"}})
	if err != nil {
		t.Fatalf("build filtered report: %v", err)
	}
	if filtered.Records != 2 {
		t.Fatalf("expected 2 filtered records, got %d", filtered.Records)
	}
}

func TestRenderReport(t *testing.T) {
	pv := time.Date(2026, 5, 10, 9, 0, 0, 0, time.UTC)
	records := []model.FunnelRecord{
		{ID: "a", PageViewedAt: &pv, QuizStartedAt: &pv, LastQuestionReached: 3, Email: "x@y.z", Profile: "LOVE CREATOR"},
		{ID: "b", PageViewedAt: &pv, LastQuestionReached: 1},
	}
	report := NewReport(records, pv, time.UTC)

	var buf bytes.Buffer
	if err := RenderReport(&buf, report, 80, false); err != nil {
		t.Fatalf("render: %v", err)
	}
	out := buf.String()
	for _, want := range []string{"Summary", "Visitors: 2", "Funnel", "Question Drop-off", "Traffic Sources", "direct", "Daily Cohorts", "2026-05-10"} {
		if !strings.Contains(out, want) {
			t.Fatalf("report missing %q:\n%s", want, out)
		}
	}
}

func TestRenderSummaryEmpty(t *testing.T) {
	var buf bytes.Buffer
	if err := RenderReport(&buf, NewReport(nil, time.Now(), time.UTC), 80, false); err != nil {
		t.Fatalf("render: %v", err)
	}
	if strings.TrimSpace(buf.String()) != "No funnel records found." {
		t.Fatalf("unexpected empty output: %q", buf.String())
	}
}
