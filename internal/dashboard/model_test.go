package dashboard

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/verte-zerg/funnelquiz/internal/model"
)

type fakeReader struct {
	records []model.FunnelRecord
	err     error
	filters []model.RecordFilter
}

func (f *fakeReader) ListRecords(_ context.Context, filter model.RecordFilter) ([]model.FunnelRecord, error) {
	f.filters = append(f.filters, filter)
	if f.err != nil {
		return nil, f.err
	}
	return f.records, nil
}

func sampleRecords() []model.FunnelRecord {
	at := time.Date(2026, 5, 10, 9, 0, 0, 0, time.UTC)
	return []model.FunnelRecord{
		{
			ID:                  "a",
			CreatedAt:           at,
			PageViewedAt:        &at,
			QuizStartedAt:       &at,
			LastQuestionReached: 2,
			Attribution:         model.Attribution{UTMSource: "facebook"},
		},
		{
			ID:                   "b",
			CreatedAt:            at,
			PageViewedAt:         &at,
			QuizStartedAt:        &at,
			EmailScreenReachedAt: &at,
			QuizCompletedAt:      &at,
			LastQuestionReached:  3,
			Email:                "lead@example.com",
			Profile:              "ABUNDANCE MAGNET",
			ReadinessScore:       80,
			Attribution:          model.Attribution{UTMSource: "google"},
		},
	}
}

func newSizedModel(t *testing.T, reader *fakeReader) *Model {
	t.Helper()
	m := NewModel(reader, model.ReportConfig{Location: time.UTC})
	m.Update(tea.WindowSizeMsg{Width: 100, Height: 40})
	return m
}

func TestOverviewShowsCardsAndFunnel(t *testing.T) {
	m := newSizedModel(t, &fakeReader{records: sampleRecords()})
	out := m.View()
	for _, want := range []string{"Overview", "Visitors", "ABUNDANCE MAGNET", "Page views", "records=2"} {
		if !strings.Contains(out, want) {
			t.Fatalf("expected %q in view:\n%s", want, out)
		}
	}
}

func TestTabsCycle(t *testing.T) {
	m := newSizedModel(t, &fakeReader{records: sampleRecords()})
	m.Update(tea.KeyMsg{Type: tea.KeyRight})
	if m.activeTab != tabQuestions {
		t.Fatalf("expected questions tab, got %d", m.activeTab)
	}
	if out := m.View(); !strings.Contains(out, "Q1") {
		t.Fatalf("expected question rows:\n%s", out)
	}
	m.Update(tea.KeyMsg{Type: tea.KeyRight})
	if out := m.View(); !strings.Contains(out, "facebook") || !strings.Contains(out, "50.0%") {
		t.Fatalf("expected source rows:\n%s", out)
	}
	m.Update(tea.KeyMsg{Type: tea.KeyLeft})
	m.Update(tea.KeyMsg{Type: tea.KeyLeft})
	m.Update(tea.KeyMsg{Type: tea.KeyLeft})
	if m.activeTab != tabCohorts {
		t.Fatalf("expected wrap to cohorts tab, got %d", m.activeTab)
	}
	if out := m.View(); !strings.Contains(out, "2026-05-10") {
		t.Fatalf("expected cohort rows:\n%s", out)
	}
}

func TestFilterFormAppliesSettings(t *testing.T) {
	reader := &fakeReader{records: sampleRecords()}
	m := newSizedModel(t, reader)

	m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("/")})
	if !m.filterMode {
		t.Fatalf("expected filter mode")
	}
	m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("2026-05-01")})
	m.Update(tea.KeyMsg{Type: tea.KeyTab})
	m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("facebook")})
	m.Update(tea.KeyMsg{Type: tea.KeyEnter})

	if m.filterMode {
		t.Fatalf("expected filter mode to close, error=%q", m.filterError)
	}
	last := reader.filters[len(reader.filters)-1]
	if last.Source != "facebook" || last.Since == nil || last.Since.Format(time.DateOnly) != "2026-05-01" {
		t.Fatalf("unexpected filter: %+v", last)
	}
}

func TestFilterFormRejectsBadDate(t *testing.T) {
	m := newSizedModel(t, &fakeReader{})
	m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("/")})
	m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("May 1")})
	m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	if !m.filterMode || m.filterError == "" {
		t.Fatalf("expected validation error")
	}
	m.Update(tea.KeyMsg{Type: tea.KeyEsc})
	if m.filterMode {
		t.Fatalf("expected esc to close the form")
	}
}

func TestRefreshReportsErrors(t *testing.T) {
	reader := &fakeReader{records: sampleRecords()}
	m := newSizedModel(t, reader)
	reader.err = errors.New("disk on fire")
	m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("r")})
	if !strings.Contains(m.View(), "disk on fire") {
		t.Fatalf("expected error in footer")
	}
	if len(reader.filters) != 2 {
		t.Fatalf("expected two loads, got %d", len(reader.filters))
	}
}

func TestTruncateLine(t *testing.T) {
	if got := truncateLine("abcdefgh", 6); got != "abc..." {
		t.Fatalf("unexpected truncation: %q", got)
	}
	if got := truncateLine("abc", 6); got != "abc" {
		t.Fatalf("unexpected truncation: %q", got)
	}
}
