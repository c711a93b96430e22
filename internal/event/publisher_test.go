package event

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/streadway/amqp"

	"github.com/verte-zerg/funnelquiz/internal/model"
)

type published struct {
	exchange string
	key      string
	msg      amqp.Publishing
}

type fakeChannel struct {
	sent   []published
	err    error
	closed bool
}

func (f *fakeChannel) Publish(exchange, key string, _, _ bool, msg amqp.Publishing) error {
	if f.err != nil {
		return f.err
	}
	f.sent = append(f.sent, published{exchange: exchange, key: key, msg: msg})
	return nil
}

func (f *fakeChannel) Close() error {
	f.closed = true
	return nil
}

func TestPublisherRoutesMilestones(t *testing.T) {
	ch := &fakeChannel{}
	p := &Publisher{channel: ch, exchange: "funnel.events"}
	at := time.Date(2026, 2, 3, 4, 5, 6, 0, time.UTC)

	err := p.RecordMilestone(context.Background(), "s-1", model.MilestoneLeadCaptured, at, model.MilestoneFields{
		Email:   "ana@example.com",
		Profile: "ABUNDANCE MAGNET",
	})
	if err != nil {
		t.Fatalf("record milestone: %v", err)
	}
	if err := p.RecordAnswer(context.Background(), "s-1", "primary_desire", "money", at); err != nil {
		t.Fatalf("record answer: %v", err)
	}
	if len(ch.sent) != 2 {
		t.Fatalf("expected 2 messages, got %d", len(ch.sent))
	}
	if ch.sent[0].exchange != "funnel.events" || ch.sent[0].key != "funnel.lead_captured" {
		t.Fatalf("unexpected routing: %+v", ch.sent[0])
	}
	if ch.sent[1].key != "funnel.answer" {
		t.Fatalf("unexpected answer routing key %q", ch.sent[1].key)
	}
	if ch.sent[0].msg.ContentType != "application/json" || ch.sent[0].msg.MessageId == "" {
		t.Fatalf("unexpected publishing headers: %+v", ch.sent[0].msg)
	}

	var env Envelope
	if err := json.Unmarshal(ch.sent[0].msg.Body, &env); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if env.Type != "lead_captured" || env.SessionID != "s-1" || env.Fields == nil || env.Fields.Profile != "ABUNDANCE MAGNET" {
		t.Fatalf("unexpected envelope: %+v", env)
	}
	if !env.OccurredAt.Equal(at) {
		t.Fatalf("unexpected timestamp %v", env.OccurredAt)
	}

	p.Close()
	if !ch.closed {
		t.Fatalf("expected channel to be closed")
	}
}

func TestPublisherErrors(t *testing.T) {
	ch := &fakeChannel{err: errors.New("channel closed")}
	p := &Publisher{channel: ch, exchange: "x"}
	if err := p.RecordAnswer(context.Background(), "s", "q", "v", time.Now()); err == nil {
		t.Fatalf("expected publish error")
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	ok := &fakeChannel{}
	p = &Publisher{channel: ok, exchange: "x"}
	if err := p.RecordAnswer(ctx, "s", "q", "v", time.Now()); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context error, got %v", err)
	}
	if len(ok.sent) != 0 {
		t.Fatalf("nothing should be sent after cancel")
	}
}
