// Package workflow drives one summarization surface from input to summary,
// then hands the summary to chat and export.
package workflow

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"doc-summarizer/internal/apiclient"
	"doc-summarizer/internal/chat"
	"doc-summarizer/internal/events"
	"doc-summarizer/internal/export"
	"doc-summarizer/internal/extract"
)

// User-facing messages.
const (
	MsgEnterText      = "Please enter some text to summarize."
	MsgUploadPDF      = "Please upload a PDF file first."
	MsgUploadDocument = "Please upload a document first."
	MsgNoSummary      = "Please generate a summary first."
)

var failureNotices = map[Surface]string{
	SurfaceText:     "An error occurred while summarizing the text. Please try again.",
	SurfacePDF:      "An error occurred while summarizing the PDF. Please try again.",
	SurfaceDocument: "An error occurred while summarizing the document. Please try again.",
}

// FailureNotice returns the fixed message shown when summarizing on surface fails.
func FailureNotice(surface Surface) string {
	return failureNotices[surface]
}

var (
	ErrBusy   = errors.New("a summary is already being generated")
	ErrClosed = errors.New("surface closed")
	// ErrFailed is returned by Submit when the service could not produce a
	// summary. The snapshot's Notice holds the message for the user.
	ErrFailed = errors.New("summarization failed")
	// ErrNoSummary is returned by Export when there is nothing to export.
	ErrNoSummary = &apiclient.ValidationError{Field: "Summary", Message: MsgNoSummary}
)

// Input is what the user provides on a surface. Text is used by the text
// surface, Filename and File by the upload surfaces.
type Input struct {
	Text      string
	Filename  string
	File      []byte
	Method    apiclient.Method
	Length    apiclient.Length
	UseOpenAI bool
}

func (in Input) withDefaults() Input {
	if in.Method == "" {
		in.Method = apiclient.MethodExtractive
	}
	if in.Length == "" {
		in.Length = apiclient.LengthMedium
	}
	return in
}

// Controller owns the snapshot of one surface. Independent surfaces use
// independent controllers.
type Controller struct {
	surface Surface
	api     apiclient.API
	pub     events.Publisher
	log     *slog.Logger

	mu      sync.Mutex
	snap    Snapshot
	nextGen uint64
	closed  bool
	session *chat.Session
}

func New(surface Surface, api apiclient.API, pub events.Publisher, log *slog.Logger) *Controller {
	if pub == nil {
		pub = events.NoOp{}
	}
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}
	return &Controller{
		surface: surface,
		api:     api,
		pub:     pub,
		log:     log.With("surface", string(surface)),
		snap:    Snapshot{Surface: surface, State: StateIdle},
	}
}

// Snapshot returns the current state.
func (c *Controller) Snapshot() Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.snap
}

// Submit validates in, sends it to the service and records the outcome.
// It returns a *apiclient.ValidationError for input that never left the
// client, ErrBusy while another submit is in flight, ErrFailed when the
// service failed and ErrClosed when the surface was closed meanwhile.
func (c *Controller) Submit(ctx context.Context, in Input) error {
	in = in.withDefaults()

	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return ErrClosed
	}
	if c.snap.State == StateSubmitting {
		c.mu.Unlock()
		return ErrBusy
	}
	if err := c.validate(in); err != nil {
		var ve *apiclient.ValidationError
		if errors.As(err, &ve) {
			c.snap = Reduce(c.snap, Rejected{Notice: ve.Message})
		}
		c.mu.Unlock()
		return err
	}
	c.nextGen++
	gen := c.nextGen
	c.snap = Reduce(c.snap, Submitted{Generation: gen})
	c.mu.Unlock()

	c.publish(ctx, events.TypeSubmitted, "")
	summary, err := c.dispatch(ctx, in)

	c.mu.Lock()
	if c.closed || c.snap.Generation != gen {
		c.mu.Unlock()
		c.log.Debug("discarding stale result", "generation", gen)
		return ErrClosed
	}
	if err != nil {
		c.snap = Reduce(c.snap, Failed{Generation: gen, Notice: FailureNotice(c.surface)})
		if c.session != nil {
			c.session.SetContext("")
		}
		c.mu.Unlock()
		c.log.Error("summarization failed", "err", err, "generation", gen)
		c.publish(ctx, events.TypeFailed, "")
		return ErrFailed
	}
	c.snap = Reduce(c.snap, Succeeded{Generation: gen, Summary: summary})
	if c.session != nil {
		c.session.SetContext(summary)
	}
	c.mu.Unlock()

	c.log.Info("summary ready", "generation", gen, "chars", len(summary))
	c.publish(ctx, events.TypeSummarized, "")
	return nil
}

// validate performs the surface's own checks first so the user sees the
// surface's message, then the request-level checks.
func (c *Controller) validate(in Input) error {
	switch c.surface {
	case SurfaceText:
		if strings.TrimSpace(in.Text) == "" {
			return &apiclient.ValidationError{Field: "Text", Message: MsgEnterText}
		}
		return apiclient.Validate(c.textRequest(in))
	case SurfacePDF:
		if len(in.File) == 0 || !extract.IsPDF(in.File) {
			return &apiclient.ValidationError{Field: "File", Message: MsgUploadPDF}
		}
	case SurfaceDocument:
		if len(in.File) == 0 {
			return &apiclient.ValidationError{Field: "File", Message: MsgUploadDocument}
		}
	default:
		return fmt.Errorf("unknown surface %q", c.surface)
	}
	return apiclient.Validate(c.upload(in))
}

func (c *Controller) dispatch(ctx context.Context, in Input) (string, error) {
	switch c.surface {
	case SurfaceText:
		return c.api.SummarizeText(ctx, c.textRequest(in))
	case SurfacePDF:
		return c.api.UploadPDF(ctx, c.upload(in))
	default:
		return c.api.UploadDocument(ctx, c.upload(in))
	}
}

func (c *Controller) textRequest(in Input) apiclient.SummaryRequest {
	return apiclient.SummaryRequest{
		Text:      in.Text,
		Method:    in.Method,
		Length:    in.Length,
		UseOpenAI: in.UseOpenAI,
	}
}

func (c *Controller) upload(in Input) apiclient.Upload {
	name := in.Filename
	if name == "" && c.surface == SurfacePDF {
		name = "document.pdf"
	}
	return apiclient.Upload{
		Filename:  name,
		Data:      in.File,
		Method:    in.Method,
		Length:    in.Length,
		UseOpenAI: in.UseOpenAI,
	}
}

// Chat returns the chat session for the current summary, creating it the
// first time chat becomes available. The session survives later
// submissions; a new summary only replaces its context.
func (c *Controller) Chat() (*chat.Session, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed || !c.snap.ChatAvailable() {
		return nil, false
	}
	if c.session == nil {
		c.session = chat.New(c.snap.Summary, c.api, c.log)
	}
	return c.session, true
}

// Close discards the surface. Results still in flight are dropped.
func (c *Controller) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.closed = true
	if c.session != nil {
		c.session.Close()
	}
}

func (c *Controller) currentSummary() (string, error) {
	snap := c.Snapshot()
	if snap.State != StateSummarized || snap.Summary == "" {
		return "", ErrNoSummary
	}
	return snap.Summary, nil
}

// Export encodes the current summary as format and hands it to d.
func (c *Controller) Export(ctx context.Context, format export.Format, d export.Deliverer) (export.Artifact, error) {
	summary, err := c.currentSummary()
	if err != nil {
		return export.Artifact{}, err
	}
	a, err := export.Encode(format, summary)
	if err != nil {
		return export.Artifact{}, err
	}
	if err := c.deliver(ctx, d, a); err != nil {
		return export.Artifact{}, err
	}
	return a, nil
}

// ExportAll encodes the current summary in every format and delivers each.
func (c *Controller) ExportAll(ctx context.Context, d export.Deliverer) ([]export.Artifact, error) {
	summary, err := c.currentSummary()
	if err != nil {
		return nil, err
	}
	arts, err := export.EncodeAll(ctx, summary)
	if err != nil {
		return nil, err
	}
	for _, a := range arts {
		if err := c.deliver(ctx, d, a); err != nil {
			return nil, err
		}
	}
	return arts, nil
}

func (c *Controller) deliver(ctx context.Context, d export.Deliverer, a export.Artifact) error {
	if err := d.Deliver(ctx, a); err != nil {
		return fmt.Errorf("deliver %s: %w", a.Filename, err)
	}
	c.publish(ctx, events.TypeDelivered, a.Filename)
	return nil
}

func (c *Controller) publish(ctx context.Context, typ events.Type, detail string) {
	ev := events.Event{Type: typ, Surface: string(c.surface), Detail: detail}
	if err := c.pub.Publish(ctx, ev); err != nil {
		c.log.Warn("failed to publish event", "type", typ, "err", err)
	}
}
