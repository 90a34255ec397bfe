package compositor

import (
	"log/slog"
	"time"
)

// Stage names recorded in a Trace.
const (
	StageDetect  = "detect"
	StageClean   = "clean"
	StageEmbed   = "embed"
	StageSearch  = "search"
	StageSuggest = "suggest"
	StageDraw    = "draw"
	StageIndex   = "index"
)

// Event is one timed pipeline stage. Err holds the message of a recovered
// failure.
type Event struct {
	Stage   string        `json:"stage"`
	Elapsed time.Duration `json:"elapsed_ns"`
	Note    string        `json:"note,omitempty"`
	Err     string        `json:"error,omitempty"`
}

// Trace records what a render did, in order.
type Trace []Event

// Total sums stage durations.
func (t Trace) Total() time.Duration {
	var d time.Duration
	for _, e := range t {
		d += e.Elapsed
	}
	return d
}

// Failed reports whether stage recorded an error.
func (t Trace) Failed(stage string) bool {
	for _, e := range t {
		if e.Stage == stage && e.Err != "" {
			return true
		}
	}
	return false
}

// LogValue logs the trace as stage=duration pairs.
func (t Trace) LogValue() slog.Value {
	attrs := make([]slog.Attr, 0, len(t))
	for _, e := range t {
		attrs = append(attrs, slog.Duration(e.Stage, e.Elapsed))
	}
	return slog.GroupValue(attrs...)
}

type tracer struct {
	events Trace
}

// start begins timing stage. The returned func records it with an
// optional note and error.
func (tr *tracer) start(stage string) func(note string, err error) {
	begin := time.Now()
	return func(note string, err error) {
		e := Event{Stage: stage, Elapsed: time.Since(begin), Note: note}
		if err != nil {
			e.Err = err.Error()
		}
		tr.events = append(tr.events, e)
	}
}
