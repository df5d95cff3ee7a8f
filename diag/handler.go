package diag

import (
	"fmt"
	"io"
)

// TextHandler writes each event as a single line to w, in the form
// "module:line: severity: message".
type TextHandler struct {
	W io.Writer
}

func (h TextHandler) Handle(e Event) error {
	_, err := fmt.Fprintln(h.W, e.String())
	return err
}

// Collector accumulates every event it receives, for use in tests
// that need to assert on the full diagnostic stream.
type Collector struct {
	Events []Event
}

func (c *Collector) Handle(e Event) error {
	c.Events = append(c.Events, e)
	return nil
}

// HasSeverity reports whether any collected event is at least sev.
func (c *Collector) HasSeverity(sev Severity) bool {
	for _, e := range c.Events {
		if e.Severity >= sev {
			return true
		}
	}
	return false
}
