package events

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/nats-io/nats.go"
)

// SubjectPrefix is prepended to the event type to form the NATS subject.
const SubjectPrefix = "summarizer."

// Conn is the subset of *nats.Conn the publisher uses.
type Conn interface {
	Publish(subject string, data []byte) error
	Drain() error
}

// NewNATS constructs a publisher over an open connection.
func NewNATS(log *slog.Logger, nc Conn) Publisher {
	return &natsPublisher{log: log, nc: nc, now: time.Now}
}

// ConnectNATS dials url and wraps the connection.
func ConnectNATS(log *slog.Logger, url string) (Publisher, error) {
	nc, err := nats.Connect(url, nats.Name("doc-summarizer"))
	if err != nil {
		return nil, err
	}
	return NewNATS(log, nc), nil
}

type natsPublisher struct {
	log *slog.Logger
	nc  Conn
	now func() time.Time
}

func (p *natsPublisher) Publish(_ context.Context, ev Event) error {
	if ev.Type == "" {
		return errors.New("event type required")
	}
	if ev.ID == uuid.Nil {
		ev.ID = uuid.New()
	}
	if ev.OccurredAt.IsZero() {
		ev.OccurredAt = p.now().UTC()
	}
	body, err := json.Marshal(ev)
	if err != nil {
		return err
	}
	p.log.Debug("publishing event", "id", ev.ID, "type", ev.Type, "surface", ev.Surface)
	return p.nc.Publish(SubjectPrefix+string(ev.Type), body)
}

func (p *natsPublisher) Close() error {
	return p.nc.Drain()
}
