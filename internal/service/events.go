package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/bytedance/sonic"
	"github.com/nats-io/nats.go"
)

// Submission lifecycle events.
const (
	EventSubmissionCreated = "submission.created"
	EventSubmissionGraded  = "submission.graded"
	EventSubmissionDeleted = "submission.deleted"
)

// SubmissionEvent is the payload published for every lifecycle transition.
type SubmissionEvent struct {
	Type         string    `json:"type"`
	SubmissionID string    `json:"submissionId"`
	Student      string    `json:"student"`
	Title        string    `json:"title"`
	Score        *float64  `json:"score,omitempty"`
	OccurredAt   time.Time `json:"occurredAt"`
}

// EventPublisher fans submission events out to other systems.
type EventPublisher interface {
	Publish(ctx context.Context, event SubmissionEvent) error
}

type noopPublisher struct{}

func (noopPublisher) Publish(context.Context, SubmissionEvent) error { return nil }

// NATSPublisher publishes events on <subject>.<event type without the "submission." prefix>.
type NATSPublisher struct {
	conn    *nats.Conn
	subject string
}

// NewNATSPublisher constructs a publisher on conn.
func NewNATSPublisher(conn *nats.Conn, subject string) *NATSPublisher {
	return &NATSPublisher{conn: conn, subject: subject}
}

func (p *NATSPublisher) Publish(ctx context.Context, event SubmissionEvent) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	payload, err := sonic.Marshal(event)
	if err != nil {
		return fmt.Errorf("encode event: %w", err)
	}
	if err := p.conn.Publish(p.Subject(event.Type), payload); err != nil {
		return fmt.Errorf("publish %s: %w", event.Type, err)
	}
	return nil
}

// Subject returns the NATS subject used for eventType.
func (p *NATSPublisher) Subject(eventType string) string {
	return p.subject + "." + strings.TrimPrefix(eventType, "submission.")
}
