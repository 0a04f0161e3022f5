// Package events announces workflow progress to whoever is listening.
// Publishing is fire-and-forget: callers log failures and carry on.
package events

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Type enumerates published event kinds.
type Type string

const (
	TypeSubmitted  Type = "workflow.submitted"
	TypeSummarized Type = "workflow.summarized"
	TypeFailed     Type = "workflow.failed"
	TypeDelivered  Type = "export.delivered"
)

// Event is one notification. Detail carries a short, non-sensitive note
// such as an export file name; summaries and documents are never included.
type Event struct {
	ID         uuid.UUID `json:"id"`
	Type       Type      `json:"type"`
	Surface    string    `json:"surface"`
	Detail     string    `json:"detail,omitempty"`
	OccurredAt time.Time `json:"occurred_at"`
}

// Publisher sends events somewhere.
type Publisher interface {
	Publish(ctx context.Context, ev Event) error
	Close() error
}

// NoOp drops every event.
type NoOp struct{}

func (NoOp) Publish(context.Context, Event) error { return nil }
func (NoOp) Close() error                         { return nil }
