package store

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/verte-zerg/funnelquiz/internal/model"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	st, err := Open(filepath.Join(t.TempDir(), "funnelquiz.db"))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() {
		_ = st.Close()
	})
	return st
}

func TestRecordMilestoneUpsert(t *testing.T) {
	st := openTestStore(t)
	ctx := context.Background()
	base := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)

	record := func(m model.Milestone, offset time.Duration, fields model.MilestoneFields) {
		t.Helper()
		if err := st.RecordMilestone(ctx, "s-1", m, base.Add(offset), fields); err != nil {
			t.Fatalf("record %s: %v", m, err)
		}
	}

	record(model.MilestonePageViewed, 0, model.MilestoneFields{Attribution: &model.Attribution{UTMSource: "facebook", Variant: "B"}})
	record(model.MilestonePageViewed, time.Minute, model.MilestoneFields{Attribution: &model.Attribution{UTMSource: "google"}})
	record(model.MilestoneQuizStarted, time.Second, model.MilestoneFields{})
	record(model.MilestoneQuestionShown, 2*time.Second, model.MilestoneFields{QuestionIndex: 2})
	record(model.MilestoneQuestionShown, 3*time.Second, model.MilestoneFields{QuestionIndex: 1})
	record(model.MilestoneAnswerSubmitted, 3*time.Second, model.MilestoneFields{QuestionIndex: 1})
	record(model.MilestoneLeadCaptured, 4*time.Second, model.MilestoneFields{
		Email:          "ana@example.com",
		Name:           "Ana",
		Profile:        "ABUNDANCE MAGNET",
		ReadinessScore: 90,
		Answers:        map[string]string{"primary_desire": "money"},
	})
	record(model.MilestoneVSLClicked, 5*time.Second, model.MilestoneFields{})
	record(model.MilestoneVSLClicked, 6*time.Second, model.MilestoneFields{})

	records, err := st.ListRecords(ctx, model.RecordFilter{})
	if err != nil {
		t.Fatalf("list records: %v", err)
	}
	if len(records) != 1 {
		t.Fatalf("expected 1 record, got %d", len(records))
	}
	r := records[0]
	if r.PageViewedAt == nil || !r.PageViewedAt.Equal(base) {
		t.Fatalf("first page view must win: %v", r.PageViewedAt)
	}
	if r.Attribution.UTMSource != "facebook" || r.Attribution.Variant != "B" {
		t.Fatalf("first attribution must win: %+v", r.Attribution)
	}
	if r.LastQuestionReached != 2 {
		t.Fatalf("expected last question 2, got %d", r.LastQuestionReached)
	}
	if r.Email != "ana@example.com" || r.Profile != "ABUNDANCE MAGNET" || r.ReadinessScore != 90 {
		t.Fatalf("lead columns not set: %+v", r)
	}
	if r.VSLClickCount != 2 || r.VSLClickedAt == nil || !r.VSLClickedAt.Equal(base.Add(5*time.Second)) {
		t.Fatalf("unexpected vsl state: count=%d at=%v", r.VSLClickCount, r.VSLClickedAt)
	}
	if r.EmailScreenReachedAt != nil || r.QuizCompletedAt != nil {
		t.Fatalf("unreached milestones must stay nil")
	}
	if r.Answers["primary_desire"] != "money" {
		t.Fatalf("answers not attached: %+v", r.Answers)
	}
}

func TestIgnoredMilestonesCreateNoRow(t *testing.T) {
	st := openTestStore(t)
	ctx := context.Background()
	if err := st.RecordMilestone(ctx, "s-1", model.MilestonePatternRevealed, time.Now(), model.MilestoneFields{Pattern: "MONEY + DAILY"}); err != nil {
		t.Fatalf("record: %v", err)
	}
	records, err := st.ListRecords(ctx, model.RecordFilter{})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(records) != 0 {
		t.Fatalf("expected no records, got %d", len(records))
	}
	if err := st.RecordMilestone(ctx, "s-1", model.Milestone("bogus"), time.Now(), model.MilestoneFields{}); err == nil {
		t.Fatalf("expected unknown milestone error")
	}
}

func TestRecordAnswerLastValueWins(t *testing.T) {
	st := openTestStore(t)
	ctx := context.Background()
	now := time.Now()
	if err := st.RecordAnswer(ctx, "s-1", "primary_desire", "money", now); err != nil {
		t.Fatalf("record answer: %v", err)
	}
	if err := st.RecordAnswer(ctx, "s-1", "primary_desire", "love", now.Add(time.Second)); err != nil {
		t.Fatalf("record answer: %v", err)
	}
	answers, err := st.ListAnswers(ctx, "s-1")
	if err != nil {
		t.Fatalf("list answers: %v", err)
	}
	if len(answers) != 1 || answers["primary_desire"] != "love" {
		t.Fatalf("unexpected answers: %v", answers)
	}
}

func TestListRecordsFilters(t *testing.T) {
	st := openTestStore(t)
	ctx := context.Background()
	day := func(d int) *time.Time {
		ts := time.Date(2026, 3, d, 12, 0, 0, 0, time.UTC)
		return &ts
	}
	records := []model.FunnelRecord{
		{ID: "a", CreatedAt: *day(1), PageViewedAt: day(1), Attribution: model.Attribution{UTMSource: "facebook", Variant: "A"}},
		{ID: "b", CreatedAt: *day(2), PageViewedAt: day(2), Attribution: model.Attribution{Variant: "B"}},
		{ID: "c", CreatedAt: *day(3), PageViewedAt: day(3), Attribution: model.Attribution{UTMSource: "facebook", Variant: "B"},
			Answers: map[string]string{"main_block": "fear"}},
	}
	if err := st.InsertRecords(ctx, records); err != nil {
		t.Fatalf("insert: %v", err)
	}

	all, err := st.ListRecords(ctx, model.RecordFilter{})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(all) != 3 || all[0].ID != "c" || all[2].ID != "a" {
		t.Fatalf("expected newest first, got %+v", ids(all))
	}
	if all[0].Answers["main_block"] != "fear" {
		t.Fatalf("answers missing on inserted record")
	}

	cases := []struct {
		name   string
		filter model.RecordFilter
		want   []string
	}{
		{"since", model.RecordFilter{Since: day(2)}, []string{"c", "b"}},
		{"source", model.RecordFilter{Source: "facebook"}, []string{"c", "a"}},
		{"direct", model.RecordFilter{Source: model.DirectSource}, []string{"b"}},
		{"variant", model.RecordFilter{Variant: "B"}, []string{"c", "b"}},
		{"combined", model.RecordFilter{Variant: "B", Source: "facebook"}, []string{"c"}},
	}
	for _, tc := range cases {
		got, err := st.ListRecords(ctx, tc.filter)
		if err != nil {
			t.Fatalf("%s: %v", tc.name, err)
		}
		gotIDs := ids(got)
		if len(gotIDs) != len(tc.want) {
			t.Fatalf("%s: expected %v, got %v", tc.name, tc.want, gotIDs)
		}
		for i := range gotIDs {
			if gotIDs[i] != tc.want[i] {
				t.Fatalf("%s: expected %v, got %v", tc.name, tc.want, gotIDs)
			}
		}
	}
}

func ids(records []model.FunnelRecord) []string {
	out := make([]string, len(records))
	for i, r := range records {
		out[i] = r.ID
	}
	return out
}
