package workflow

// Surface is one of the independent summarization entry points.
type Surface string

const (
	SurfaceText     Surface = "text"
	SurfacePDF      Surface = "pdf"
	SurfaceDocument Surface = "document"
)

// ParseSurface maps a command-line name onto a Surface.
func ParseSurface(s string) (Surface, bool) {
	switch v := Surface(s); v {
	case SurfaceText, SurfacePDF, SurfaceDocument:
		return v, true
	}
	return "", false
}

// State is where a surface is in its submit cycle.
type State string

const (
	StateIdle       State = "idle"
	StateSubmitting State = "submitting"
	StateSummarized State = "summarized"
	StateFailed     State = "failed"
)

// Snapshot is the observable state of one surface. Notice holds the last
// user-facing validation or failure message and is never mixed into
// Summary.
type Snapshot struct {
	Surface    Surface
	State      State
	Summary    string
	Notice     string
	Generation uint64
}

// ChatAvailable reports whether questions can be asked about the summary.
func (s Snapshot) ChatAvailable() bool {
	return s.State == StateSummarized && s.Summary != ""
}

// Event is anything Reduce knows how to apply.
type Event interface{ isEvent() }

// Submitted starts a request tagged with Generation.
type Submitted struct{ Generation uint64 }

// Succeeded carries the summary for the request tagged Generation.
type Succeeded struct {
	Generation uint64
	Summary    string
}

// Failed records that the request tagged Generation did not complete.
type Failed struct {
	Generation uint64
	Notice     string
}

// Rejected reports input that never left the client.
type Rejected struct{ Notice string }

func (Submitted) isEvent() {}
func (Succeeded) isEvent() {}
func (Failed) isEvent()    {}
func (Rejected) isEvent()  {}

// Reduce returns the snapshot after ev. Outcomes for any generation other
// than the current in-flight one are ignored, as is a submit while one is
// already in flight.
func Reduce(s Snapshot, ev Event) Snapshot {
	switch e := ev.(type) {
	case Submitted:
		if s.State == StateSubmitting {
			return s
		}
		s.State = StateSubmitting
		s.Notice = ""
		s.Generation = e.Generation
	case Succeeded:
		if s.State != StateSubmitting || e.Generation != s.Generation {
			return s
		}
		s.State = StateSummarized
		s.Summary = e.Summary
	case Failed:
		if s.State != StateSubmitting || e.Generation != s.Generation {
			return s
		}
		s.State = StateFailed
		s.Summary = ""
		s.Notice = e.Notice
	case Rejected:
		if s.State == StateSubmitting {
			return s
		}
		s.Notice = e.Notice
	}
	return s
}
