package tracker

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/verte-zerg/funnelquiz/internal/model"
)

type fakeRecorder struct {
	mu         sync.Mutex
	milestones []model.Milestone
	answers    []string
	err        error
	block      chan struct{}
}

func (f *fakeRecorder) RecordMilestone(_ context.Context, _ string, milestone model.Milestone, _ time.Time, _ model.MilestoneFields) error {
	if f.block != nil {
		<-f.block
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.milestones = append(f.milestones, milestone)
	return f.err
}

func (f *fakeRecorder) RecordAnswer(_ context.Context, _ string, questionID, value string, _ time.Time) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.answers = append(f.answers, questionID+"="+value)
	return f.err
}

func TestTrackerDeliversInOrder(t *testing.T) {
	a := &fakeRecorder{}
	b := &fakeRecorder{err: errors.New("down")}
	tr := New(nil, Options{}, a, b)

	now := time.Now()
	tr.Milestone("s", model.MilestonePageViewed, now, model.MilestoneFields{})
	tr.Milestone("s", model.MilestoneQuizStarted, now, model.MilestoneFields{})
	tr.Answer("s", "primary_desire", "money", now)

	if err := tr.Close(context.Background()); err != nil {
		t.Fatalf("close: %v", err)
	}
	for _, r := range []*fakeRecorder{a, b} {
		if len(r.milestones) != 2 || r.milestones[0] != model.MilestonePageViewed || r.milestones[1] != model.MilestoneQuizStarted {
			t.Fatalf("unexpected milestones: %v", r.milestones)
		}
		if len(r.answers) != 1 || r.answers[0] != "primary_desire=money" {
			t.Fatalf("unexpected answers: %v", r.answers)
		}
	}
}

func TestTrackerDropsWhenFull(t *testing.T) {
	rec := &fakeRecorder{block: make(chan struct{})}
	tr := New(nil, Options{QueueSize: 1}, rec)

	now := time.Now()
	done := make(chan struct{})
	go func() {
		for i := 0; i < 10; i++ {
			tr.Milestone("s", model.MilestoneQuestionShown, now, model.MilestoneFields{QuestionIndex: 1})
		}
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatalf("enqueue blocked on a full queue")
	}
	if tr.Dropped() == 0 {
		t.Fatalf("expected dropped events")
	}
	close(rec.block)
	if err := tr.Close(context.Background()); err != nil {
		t.Fatalf("close: %v", err)
	}
	if got := uint64(len(rec.milestones)) + tr.Dropped(); got != 10 {
		t.Fatalf("expected delivered+dropped to be 10, got %d", got)
	}
}

func TestTrackerCloseHonoursContext(t *testing.T) {
	rec := &fakeRecorder{block: make(chan struct{})}
	tr := New(nil, Options{}, rec)
	tr.Milestone("s", model.MilestonePageViewed, time.Now(), model.MilestoneFields{})

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	if err := tr.Close(ctx); !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("expected deadline exceeded, got %v", err)
	}
	close(rec.block)

	tr.Milestone("s", model.MilestoneQuizStarted, time.Now(), model.MilestoneFields{})
	if tr.Dropped() != 1 {
		t.Fatalf("expected event after close to be dropped, got %d", tr.Dropped())
	}
}
