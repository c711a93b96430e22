// Package tracker delivers funnel events to recorders in the background.
package tracker

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/verte-zerg/funnelquiz/internal/logger"
	"github.com/verte-zerg/funnelquiz/internal/model"
)

// Recorder persists or forwards funnel events.
type Recorder interface {
	RecordMilestone(ctx context.Context, sessionID string, milestone model.Milestone, at time.Time, fields model.MilestoneFields) error
	RecordAnswer(ctx context.Context, sessionID, questionID, value string, at time.Time) error
}

const (
	defaultQueueSize = 256
	defaultTimeout   = 5 * time.Second
)

// Options tunes the queue.
type Options struct {
	QueueSize int
	// Timeout bounds each recorder call.
	Timeout time.Duration
}

type job struct {
	sessionID  string
	milestone  model.Milestone
	at         time.Time
	fields     model.MilestoneFields
	answer     bool
	questionID string
	value      string
}

// Tracker queues events and applies them to every recorder from one worker.
// Enqueueing never blocks: when the queue is full the event is dropped.
type Tracker struct {
	recorders []Recorder
	log       *logger.Logger
	timeout   time.Duration

	mu      sync.RWMutex
	closed  bool
	jobs    chan job
	done    chan struct{}
	dropped atomic.Uint64
}

// New starts a tracker worker.
func New(log *logger.Logger, opts Options, recorders ...Recorder) *Tracker {
	if log == nil {
		log = logger.Nop()
	}
	size := opts.QueueSize
	if size <= 0 {
		size = defaultQueueSize
	}
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	t := &Tracker{
		recorders: recorders,
		log:       log,
		timeout:   timeout,
		jobs:      make(chan job, size),
		done:      make(chan struct{}),
	}
	go t.run()
	return t
}

// Milestone queues a milestone event.
func (t *Tracker) Milestone(sessionID string, milestone model.Milestone, at time.Time, fields model.MilestoneFields) {
	t.enqueue(job{sessionID: sessionID, milestone: milestone, at: at, fields: fields})
}

// Answer queues an answer record.
func (t *Tracker) Answer(sessionID, questionID, value string, at time.Time) {
	t.enqueue(job{sessionID: sessionID, answer: true, questionID: questionID, value: value, at: at})
}

// Dropped reports how many events were discarded.
func (t *Tracker) Dropped() uint64 {
	return t.dropped.Load()
}

func (t *Tracker) enqueue(j job) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	if t.closed {
		t.dropped.Add(1)
		t.log.Warn("tracker closed, dropping event", "session_id", j.sessionID, "milestone", j.label())
		return
	}
	select {
	case t.jobs <- j:
	default:
		t.dropped.Add(1)
		t.log.Warn("tracker queue full, dropping event", "session_id", j.sessionID, "milestone", j.label())
	}
}

// Close stops intake and waits for queued events until ctx is done.
func (t *Tracker) Close(ctx context.Context) error {
	t.mu.Lock()
	if !t.closed {
		t.closed = true
		close(t.jobs)
	}
	t.mu.Unlock()

	select {
	case <-t.done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (t *Tracker) run() {
	defer close(t.done)
	for j := range t.jobs {
		for _, r := range t.recorders {
			t.apply(r, j)
		}
	}
}

func (t *Tracker) apply(r Recorder, j job) {
	ctx, cancel := context.WithTimeout(context.Background(), t.timeout)
	defer cancel()
	var err error
	if j.answer {
		err = r.RecordAnswer(ctx, j.sessionID, j.questionID, j.value, j.at)
	} else {
		err = r.RecordMilestone(ctx, j.sessionID, j.milestone, j.at, j.fields)
	}
	if err != nil {
		t.log.Error("failed to record event", "session_id", j.sessionID, "milestone", j.label(), "error", err)
	}
}

func (j job) label() string {
	if j.answer {
		return "answer"
	}
	return string(j.milestone)
}
