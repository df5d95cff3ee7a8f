// Package diag implements the prebakery's diagnostics sink: leveled
// events tagged by module id and source line, fanned out to one or
// more handlers.
package diag

import (
	"fmt"
	"sort"
	"strings"
)

// Severity orders diagnostic events from least to most severe.
type Severity uint8

const (
	Debug Severity = iota
	Info
	Warn
	Error
)

func (s Severity) String() string {
	switch s {
	case Debug:
		return "debug"
	case Info:
		return "info"
	case Warn:
		return "warn"
	case Error:
		return "error"
	}
	return "unknown"
}

// Event is a single diagnostic occurrence.
type Event struct {
	Severity Severity
	ModuleID string // empty if the event is not tied to a module
	Line     int    // zero if the event carries no line
	Message  string
}

func (e Event) String() string {
	var b strings.Builder
	if e.ModuleID != "" {
		b.WriteString(e.ModuleID)
		if e.Line > 0 {
			fmt.Fprintf(&b, ":%d", e.Line)
		}
		b.WriteString(": ")
	}
	b.WriteString(e.Severity.String())
	b.WriteString(": ")
	b.WriteString(e.Message)
	return b.String()
}

// Handler receives diagnostic events. A Handler may fail; its error
// is collected and rethrown by Sink.Close after every handler for the
// event has been invoked.
type Handler interface {
	Handle(Event) error
}

// HandlerFunc adapts a function to a Handler.
type HandlerFunc func(Event) error

func (f HandlerFunc) Handle(e Event) error { return f(e) }

// Sink fans an event out to every registered handler.
//
// Sink failures never abort dispatch: if a handler's Handle call
// returns an error, the error is recorded and every remaining handler
// still receives the event. Accumulated errors surface from Close.
type Sink struct {
	handlers []Handler
	errs     []error
}

// NewSink creates a Sink with the given handlers attached.
func NewSink(handlers ...Handler) *Sink {
	return &Sink{handlers: handlers}
}

// Attach registers an additional handler.
func (s *Sink) Attach(h Handler) { s.handlers = append(s.handlers, h) }

// Emit dispatches an event to every attached handler. Handler errors
// are swallowed here and surfaced later by Close.
func (s *Sink) Emit(e Event) {
	for _, h := range s.handlers {
		if err := h.Handle(e); err != nil {
			s.errs = append(s.errs, fmt.Errorf("diag: handler failed on %s: %w", e, err))
		}
	}
}

// Debugf, Infof, Warnf, and Errorf are convenience wrappers around
// Emit for the four severities.
func (s *Sink) Debugf(moduleID string, line int, format string, args ...interface{}) {
	s.Emit(Event{Debug, moduleID, line, fmt.Sprintf(format, args...)})
}
func (s *Sink) Infof(moduleID string, line int, format string, args ...interface{}) {
	s.Emit(Event{Info, moduleID, line, fmt.Sprintf(format, args...)})
}
func (s *Sink) Warnf(moduleID string, line int, format string, args ...interface{}) {
	s.Emit(Event{Warn, moduleID, line, fmt.Sprintf(format, args...)})
}
func (s *Sink) Errorf(moduleID string, line int, format string, args ...interface{}) {
	s.Emit(Event{Error, moduleID, line, fmt.Sprintf(format, args...)})
}

// Close returns the accumulated handler failures, if any, as a single
// error. It does not reset the accumulated errors.
func (s *Sink) Close() error {
	if len(s.errs) == 0 {
		return nil
	}
	msgs := make([]string, len(s.errs))
	for i, err := range s.errs {
		msgs[i] = err.Error()
	}
	sort.Strings(msgs)
	return fmt.Errorf("diag: %d handler error(s):\n%s", len(msgs), strings.Join(msgs, "\n"))
}
