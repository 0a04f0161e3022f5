// Package chat holds the question-and-answer conversation about a summary.
//
// The log is append-only. A question adds two entries: the user's message
// and a bot placeholder that is later resolved in place. Only one question
// may be in flight at a time; a second one is rejected, not queued.
package chat

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"sync"

	"github.com/google/uuid"

	"doc-summarizer/internal/apiclient"
)

const (
	GreetingMessage = "Hello! I can answer questions about your summarized document. How can I help you today?"
	ApologyMessage  = "I'm sorry, I couldn't process your question. Please try again."
)

var (
	ErrEmptyQuestion = errors.New("question is empty")
	ErrBusy          = errors.New("a question is already being answered")
	ErrClosed        = errors.New("chat session closed")
	ErrNoContext     = errors.New("no summary to ask about")
)

// Asker is the part of the API client a session needs.
type Asker interface {
	AskQuestion(ctx context.Context, req apiclient.QARequest) (string, error)
}

// Session is safe for concurrent use.
type Session struct {
	asker Asker
	log   *slog.Logger

	mu    sync.Mutex
	state State
}

// New starts a session over summary, seeded with the greeting.
func New(summary string, asker Asker, log *slog.Logger) *Session {
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}
	return &Session{
		asker: asker,
		log:   log,
		state: State{
			Context: summary,
			Messages: []Message{{
				ID:     uuid.NewString(),
				Text:   GreetingMessage,
				Sender: SenderBot,
				Status: StatusSent,
			}},
		},
	}
}

// Ask sends question to the service and records the exchange. A failed
// request is not returned as an error: it resolves the placeholder to the
// apology message and returns nil. Errors are only returned when the
// question was rejected or the session was closed while waiting.
func (s *Session) Ask(ctx context.Context, question string) error {
	question = strings.TrimSpace(question)
	if question == "" {
		return ErrEmptyQuestion
	}

	asked := QuestionAsked{
		User:        Message{ID: uuid.NewString(), Text: question, Sender: SenderUser, Status: StatusSent},
		Placeholder: Message{ID: uuid.NewString(), Sender: SenderBot, Status: StatusLoading},
	}

	s.mu.Lock()
	switch {
	case s.state.Closed:
		s.mu.Unlock()
		return ErrClosed
	case s.state.Context == "":
		s.mu.Unlock()
		return ErrNoContext
	case s.state.Busy:
		s.mu.Unlock()
		return ErrBusy
	}
	s.state = Reduce(s.state, asked)
	req := apiclient.QARequest{Context: s.state.Context, Question: question}
	s.mu.Unlock()

	answer, err := s.asker.AskQuestion(ctx, req)

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state.Closed {
		s.log.Debug("dropping answer for closed session", "message_id", asked.Placeholder.ID)
		return ErrClosed
	}
	if err != nil {
		s.log.Error("failed to answer question", "err", err, "message_id", asked.Placeholder.ID)
		s.state = Reduce(s.state, AnswerFailed{ID: asked.Placeholder.ID})
		return nil
	}
	s.state = Reduce(s.state, AnswerReceived{ID: asked.Placeholder.ID, Text: answer})
	return nil
}

// Messages returns a copy of the log.
func (s *Session) Messages() []Message {
	s.mu.Lock()
	defer s.mu.Unlock()
	return appendCopy(s.state.Messages)
}

// Last returns the most recent message.
func (s *Session) Last() Message {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.Messages[len(s.state.Messages)-1]
}

func (s *Session) Busy() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.Busy
}

func (s *Session) Context() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.Context
}

// SetContext changes the summary later questions are asked against. The
// log is kept as is. An empty summary suspends the session: Ask returns
// ErrNoContext until a non-empty one is set.
func (s *Session) SetContext(summary string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state = Reduce(s.state, ContextChanged{Context: summary})
}

// Close discards the session. An answer still in flight is dropped.
func (s *Session) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state = Reduce(s.state, SessionClosed{})
}
