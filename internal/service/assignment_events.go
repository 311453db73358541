package service

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/nats-io/nats.go"

	"github.com/noah-isme/gema-assignments/internal/dto"
)

// AssignmentUnsubmittedSubject is the default NATS subject for unsubmit events.
const AssignmentUnsubmittedSubject = "gema.assignments.unsubmitted"

// AssignmentEventPublisher fans out assignment lifecycle events to other services.
type AssignmentEventPublisher interface {
	PublishUnsubmitted(ctx context.Context, event dto.AssignmentUnsubmittedEvent) error
}

type natsAssignmentPublisher struct {
	conn    *nats.Conn
	subject string
}

// NewNATSAssignmentPublisher publishes events on the given subject. A nil connection yields a no-op publisher.
func NewNATSAssignmentPublisher(conn *nats.Conn, subject string) AssignmentEventPublisher {
	if conn == nil {
		return noopAssignmentPublisher{}
	}
	if subject == "" {
		subject = AssignmentUnsubmittedSubject
	}
	return &natsAssignmentPublisher{conn: conn, subject: subject}
}

func (p *natsAssignmentPublisher) PublishUnsubmitted(ctx context.Context, event dto.AssignmentUnsubmittedEvent) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshal unsubmit event: %w", err)
	}

	if err := p.conn.Publish(p.subject, payload); err != nil {
		return fmt.Errorf("publish unsubmit event: %w", err)
	}
	return nil
}

type noopAssignmentPublisher struct{}

func (noopAssignmentPublisher) PublishUnsubmitted(context.Context, dto.AssignmentUnsubmittedEvent) error {
	return nil
}
