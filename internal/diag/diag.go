// Package diag carries structured parse diagnostics. Parsing never aborts the
// caller; everything it wants to say about a document flows through a Sink as
// append-only events.
package diag

import (
	"fmt"
	"log/slog"
	"sync"
)

// Level classifies event severity.
type Level int

const (
	Warning Level = iota
	Error
)

func (l Level) String() string {
	if l == Warning {
		return "warning"
	}
	return "error"
}

// Code identifies the failure class of an event.
type Code string

const (
	MissingRoot          Code = "missing_root"
	MissingMeta          Code = "missing_meta"
	MissingField         Code = "missing_field"
	UnrecognizedValue    Code = "unrecognized_value"
	SectionCountMismatch Code = "section_count_mismatch"
	SectionNameMismatch  Code = "section_name_mismatch"
	EmptyResult          Code = "empty_result"
)

// Event is one structured diagnostic tied to a source document.
type Event struct {
	Level  Level  `json:"level"`
	Code   Code   `json:"code"`
	File   string `json:"file"`
	Field  string `json:"field,omitempty"`
	Detail string `json:"detail,omitempty"`
}

func (e Event) String() string {
	s := fmt.Sprintf("%s: %s: %s", e.File, e.Level, e.Code)
	if e.Field != "" {
		s += " field=" + e.Field
	}
	if e.Detail != "" {
		s += " (" + e.Detail + ")"
	}
	return s
}

// Sink receives events. Implementations must be safe for concurrent use and
// must not block the parse.
type Sink interface {
	Emit(Event)
}

// Collector is an append-only in-memory sink, handy for returning diagnostics
// alongside a result.
type Collector struct {
	mu     sync.Mutex
	events []Event
}

func (c *Collector) Emit(e Event) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.events = append(c.events, e)
}

// Events returns a copy of everything emitted so far.
func (c *Collector) Events() []Event {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]Event, len(c.events))
	copy(out, c.events)
	return out
}

// Errors reports how many error-level events have been emitted.
func (c *Collector) Errors() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	n := 0
	for _, e := range c.events {
		if e.Level == Error {
			n++
		}
	}
	return n
}

// Logger adapts a slog.Logger into a Sink.
type Logger struct {
	Log *slog.Logger
}

func (l Logger) Emit(e Event) {
	if l.Log == nil {
		return
	}
	attrs := []any{"code", string(e.Code), "file", e.File}
	if e.Field != "" {
		attrs = append(attrs, "field", e.Field)
	}
	if e.Detail != "" {
		attrs = append(attrs, "detail", e.Detail)
	}
	if e.Level == Error {
		l.Log.Error("parse diagnostic", attrs...)
	} else {
		l.Log.Warn("parse diagnostic", attrs...)
	}
}

// Tee fans one event out to multiple sinks.
type Tee []Sink

func (t Tee) Emit(e Event) {
	for _, s := range t {
		if s != nil {
			s.Emit(e)
		}
	}
}

// Discard drops every event.
type Discard struct{}

func (Discard) Emit(Event) {}
