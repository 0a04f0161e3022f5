package events

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingConn struct {
	subjects []string
	bodies   [][]byte
	err      error
	drained  bool
}

func (c *recordingConn) Publish(subject string, data []byte) error {
	c.subjects = append(c.subjects, subject)
	c.bodies = append(c.bodies, data)
	return c.err
}

func (c *recordingConn) Drain() error {
	c.drained = true
	return nil
}

func newTestPublisher(conn *recordingConn) *natsPublisher {
	fixed := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	return &natsPublisher{
		log: slog.New(slog.NewTextHandler(io.Discard, nil)),
		nc:  conn,
		now: func() time.Time { return fixed },
	}
}

func TestNATSPublishFillsDefaults(t *testing.T) {
	conn := &recordingConn{}
	p := newTestPublisher(conn)

	err := p.Publish(context.Background(), Event{Type: TypeSummarized, Surface: "pdf"})
	require.NoError(t, err)

	require.Equal(t, []string{"summarizer.workflow.summarized"}, conn.subjects)
	var got Event
	require.NoError(t, json.Unmarshal(conn.bodies[0], &got))
	assert.NotEqual(t, uuid.Nil, got.ID)
	assert.Equal(t, TypeSummarized, got.Type)
	assert.Equal(t, "pdf", got.Surface)
	assert.True(t, got.OccurredAt.Equal(time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)))
}

func TestNATSPublishKeepsExplicitID(t *testing.T) {
	conn := &recordingConn{}
	p := newTestPublisher(conn)
	id := uuid.New()

	require.NoError(t, p.Publish(context.Background(), Event{ID: id, Type: TypeDelivered, Detail: "summary.pdf"}))

	var got Event
	require.NoError(t, json.Unmarshal(conn.bodies[0], &got))
	assert.Equal(t, id, got.ID)
	assert.Equal(t, "summary.pdf", got.Detail)
}

func TestNATSPublishErrors(t *testing.T) {
	t.Run("missing type", func(t *testing.T) {
		conn := &recordingConn{}
		err := newTestPublisher(conn).Publish(context.Background(), Event{})
		assert.Error(t, err)
		assert.Empty(t, conn.subjects)
	})

	t.Run("connection error surfaces", func(t *testing.T) {
		conn := &recordingConn{err: errors.New("nats: connection closed")}
		err := newTestPublisher(conn).Publish(context.Background(), Event{Type: TypeFailed})
		assert.EqualError(t, err, "nats: connection closed")
	})
}

func TestNATSCloseDrains(t *testing.T) {
	conn := &recordingConn{}
	require.NoError(t, newTestPublisher(conn).Close())
	assert.True(t, conn.drained)
}

func TestNoOp(t *testing.T) {
	var p Publisher = NoOp{}
	assert.NoError(t, p.Publish(context.Background(), Event{Type: TypeSubmitted}))
	assert.NoError(t, p.Close())
}
