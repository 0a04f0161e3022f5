package chat

// Sender identifies who wrote a message.
type Sender string

const (
	SenderUser Sender = "user"
	SenderBot  Sender = "bot"
)

// Status tracks where a message is in its lifecycle.
type Status string

const (
	StatusSent    Status = "sent"
	StatusLoading Status = "loading"
	StatusError   Status = "error"
)

// Message is one entry in the conversation log.
type Message struct {
	ID     string
	Text   string
	Sender Sender
	Status Status
}

// State is the value a Session owns. Reduce is the only thing that
// changes it.
type State struct {
	Context  string
	Messages []Message
	Busy     bool
	Closed   bool
}

// Event is anything Reduce knows how to apply.
type Event interface{ isEvent() }

// QuestionAsked appends the user's message and a loading placeholder.
type QuestionAsked struct {
	User        Message
	Placeholder Message
}

// AnswerReceived resolves the placeholder with the service's answer.
type AnswerReceived struct {
	ID   string
	Text string
}

// AnswerFailed resolves the placeholder with the apology text.
type AnswerFailed struct {
	ID string
}

// ContextChanged replaces the text questions are answered against.
type ContextChanged struct {
	Context string
}

// SessionClosed marks the session discarded.
type SessionClosed struct{}

func (QuestionAsked) isEvent()  {}
func (AnswerReceived) isEvent() {}
func (AnswerFailed) isEvent()   {}
func (ContextChanged) isEvent() {}
func (SessionClosed) isEvent()  {}

// Reduce applies ev to s and returns the next state. It never mutates the
// message slice it was given. Events that do not fit the current state
// (a second question while busy or without a context, anything after
// close, an answer for an unknown placeholder) leave the state unchanged.
func Reduce(s State, ev Event) State {
	if s.Closed {
		return s
	}
	switch e := ev.(type) {
	case QuestionAsked:
		if s.Busy || s.Context == "" {
			return s
		}
		s.Messages = appendCopy(s.Messages, e.User, e.Placeholder)
		s.Busy = true
	case AnswerReceived:
		s.Messages, s.Busy = resolve(s.Messages, e.ID, e.Text, StatusSent, s.Busy)
	case AnswerFailed:
		s.Messages, s.Busy = resolve(s.Messages, e.ID, ApologyMessage, StatusError, s.Busy)
	case ContextChanged:
		s.Context = e.Context
	case SessionClosed:
		s.Closed = true
		s.Busy = false
	}
	return s
}

func appendCopy(msgs []Message, more ...Message) []Message {
	out := make([]Message, 0, len(msgs)+len(more))
	out = append(out, msgs...)
	return append(out, more...)
}

// resolve rewrites the loading placeholder with the given id in place. The
// placeholder is always the last message while busy.
func resolve(msgs []Message, id, text string, status Status, busy bool) ([]Message, bool) {
	n := len(msgs)
	if n == 0 || msgs[n-1].ID != id || msgs[n-1].Status != StatusLoading {
		return msgs, busy
	}
	out := appendCopy(msgs)
	out[n-1].Text = text
	out[n-1].Status = status
	return out, false
}
