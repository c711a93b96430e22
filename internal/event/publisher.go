// Package event publishes funnel events to a RabbitMQ topic exchange.
package event

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/streadway/amqp"

	"github.com/verte-zerg/funnelquiz/internal/model"
)

// AnswerType is the event type of answer records.
const AnswerType = "answer"

// Envelope is the JSON body of every published message.
type Envelope struct {
	Type       string                 `json:"type"`
	SessionID  string                 `json:"session_id"`
	OccurredAt time.Time              `json:"occurred_at"`
	Fields     *model.MilestoneFields `json:"fields,omitempty"`
	QuestionID string                 `json:"question_id,omitempty"`
	Value      string                 `json:"value,omitempty"`
}

type channel interface {
	Publish(exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error
	Close() error
}

// Publisher sends funnel events with routing key "funnel.<type>".
type Publisher struct {
	mu       sync.Mutex
	conn     *amqp.Connection
	channel  channel
	exchange string
}

// NewPublisher dials the broker and declares a durable topic exchange.
func NewPublisher(amqpURL, exchange string) (*Publisher, error) {
	conn, err := amqp.Dial(amqpURL)
	if err != nil {
		return nil, fmt.Errorf("failed to dial broker: %w", err)
	}
	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("failed to open channel: %w", err)
	}
	err = ch.ExchangeDeclare(
		exchange,
		"topic",
		true,
		false,
		false,
		false,
		nil,
	)
	if err != nil {
		_ = ch.Close()
		_ = conn.Close()
		return nil, fmt.Errorf("failed to declare exchange: %w", err)
	}
	return &Publisher{conn: conn, channel: ch, exchange: exchange}, nil
}

// RoutingKey returns the routing key of an event type.
func RoutingKey(eventType string) string {
	return "funnel." + eventType
}

// RecordMilestone publishes a milestone event.
func (p *Publisher) RecordMilestone(ctx context.Context, sessionID string, milestone model.Milestone, at time.Time, fields model.MilestoneFields) error {
	return p.publish(ctx, Envelope{
		Type:       string(milestone),
		SessionID:  sessionID,
		OccurredAt: at.UTC(),
		Fields:     &fields,
	})
}

// RecordAnswer publishes an answer event.
func (p *Publisher) RecordAnswer(ctx context.Context, sessionID, questionID, value string, at time.Time) error {
	return p.publish(ctx, Envelope{
		Type:       AnswerType,
		SessionID:  sessionID,
		OccurredAt: at.UTC(),
		QuestionID: questionID,
		Value:      value,
	})
}

func (p *Publisher) publish(ctx context.Context, ev Envelope) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	body, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("failed to encode event: %w", err)
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.channel.Publish(
		p.exchange,
		RoutingKey(ev.Type),
		false,
		false,
		amqp.Publishing{
			ContentType:  "application/json",
			DeliveryMode: amqp.Persistent,
			MessageId:    uuid.NewString(),
			Timestamp:    ev.OccurredAt,
			Type:         ev.Type,
			Body:         body,
		},
	)
}

// Close closes the channel and the connection.
func (p *Publisher) Close() {
	if p.channel != nil {
		_ = p.channel.Close()
	}
	if p.conn != nil {
		_ = p.conn.Close()
	}
}
