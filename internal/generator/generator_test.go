package generator

import (
	"reflect"
	"testing"
	"time"

	"github.com/verte-zerg/funnelquiz/internal/quiz"
	"github.com/verte-zerg/funnelquiz/internal/stats"
)

var fixedNow = time.Date(2026, 6, 1, 12, 0, 0, 0, time.UTC)

func newGenerator(t *testing.T, seed int64) *Generator {
	t.Helper()
	content, ok := quiz.Builtin("en")
	if !ok {
		t.Fatalf("missing builtin variant")
	}
	return New(content, seed)
}

func TestJourneysDeterministic(t *testing.T) {
	opts := Options{Visitors: 50, Days: 7, Now: fixedNow}
	a, err := newGenerator(t, 42).Journeys(opts)
	if err != nil {
		t.Fatalf("journeys: %v", err)
	}
	b, err := newGenerator(t, 42).Journeys(opts)
	if err != nil {
		t.Fatalf("journeys: %v", err)
	}
	if !reflect.DeepEqual(a, b) {
		t.Fatalf("expected identical journeys for the same seed")
	}
	c, err := newGenerator(t, 43).Journeys(opts)
	if err != nil {
		t.Fatalf("journeys: %v", err)
	}
	if reflect.DeepEqual(a, c) {
		t.Fatalf("expected different journeys for a different seed")
	}
}

func TestJourneysFunnelShape(t *testing.T) {
	content, _ := quiz.Builtin("en")
	records, err := New(content, 7).Journeys(Options{Visitors: 2000, Days: 14, Now: fixedNow})
	if err != nil {
		t.Fatalf("journeys: %v", err)
	}
	if len(records) != 2000 {
		t.Fatalf("expected 2000 records, got %d", len(records))
	}
	m := stats.ComputeMetrics(records)
	if m.TotalPageViews != 2000 {
		t.Fatalf("every visitor should view the page, got %d", m.TotalPageViews)
	}
	counts := []int{m.TotalPageViews, m.QuizStarted, m.EmailScreenReached, m.EmailProvided, m.QuizCompleted, m.VSLClicked}
	for i := 1; i < len(counts); i++ {
		if counts[i] > counts[i-1] {
			t.Fatalf("funnel widens at stage %d: %v", i, counts)
		}
		if counts[i] == 0 {
			t.Fatalf("stage %d is empty: %v", i, counts)
		}
	}

	oldest := fixedNow.Add(-14 * 24 * time.Hour)
	ids := map[string]struct{}{}
	for _, r := range records {
		if r.CreatedAt.Before(oldest) || r.CreatedAt.After(fixedNow) {
			t.Fatalf("record outside window: %s", r.CreatedAt)
		}
		if _, dup := ids[r.ID]; dup {
			t.Fatalf("duplicate id %s", r.ID)
		}
		ids[r.ID] = struct{}{}
		if r.Email == "" {
			continue
		}
		if r.Profile == "" || r.ReadinessScore < 35 || r.ReadinessScore > 100 {
			t.Fatalf("lead without a resolved profile: %+v", r)
		}
		if want := content.ResolveProfile(r.Answers).Title; r.Profile != want {
			t.Fatalf("profile mismatch: got %q want %q", r.Profile, want)
		}
		if len(r.Answers) != quiz.QuestionCount {
			t.Fatalf("lead should have answered every question: %+v", r.Answers)
		}
	}
}

func TestJourneysRejectsBadOptions(t *testing.T) {
	g := newGenerator(t, 1)
	if _, err := g.Journeys(Options{Visitors: 10, Days: 0}); err == nil {
		t.Fatalf("expected error for zero days")
	}
	if _, err := g.Journeys(Options{Visitors: -1, Days: 1}); err == nil {
		t.Fatalf("expected error for negative visitors")
	}
}

func TestPickHonoursWeights(t *testing.T) {
	g := newGenerator(t, 3)
	for i := 0; i < 100; i++ {
		if idx := g.pick([]float64{0, 5, 0}); idx != 1 {
			t.Fatalf("expected only weighted index, got %d", idx)
		}
	}
}
