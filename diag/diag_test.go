package diag_test

import (
	"errors"
	"testing"

	"prebake.dev/diag"
)

func TestEmitFansOutAndSwallowsThenRethrows(t *testing.T) {
	var a, b diag.Collector
	failing := diag.HandlerFunc(func(diag.Event) error { return errors.New("boom") })

	sink := diag.NewSink(&a, failing, &b)
	sink.Warnf("m1", 3, "careful: %d", 42)

	if len(a.Events) != 1 || len(b.Events) != 1 {
		t.Fatalf("expected both non-failing handlers to receive the event, got a=%d b=%d", len(a.Events), len(b.Events))
	}
	if err := sink.Close(); err == nil {
		t.Fatal("expected Close to rethrow the swallowed handler error")
	}
}

func TestSeverityOrdering(t *testing.T) {
	if !(diag.Debug < diag.Info && diag.Info < diag.Warn && diag.Warn < diag.Error) {
		t.Fatal("severities must be totally ordered debug < info < warn < error")
	}
}

func TestCollectorHasSeverity(t *testing.T) {
	var c diag.Collector
	c.Handle(diag.Event{Severity: diag.Info, Message: "x"})
	if c.HasSeverity(diag.Error) {
		t.Fatal("no error-level event was collected")
	}
	c.Handle(diag.Event{Severity: diag.Error, Message: "y"})
	if !c.HasSeverity(diag.Error) {
		t.Fatal("expected HasSeverity(Error) after collecting an error event")
	}
}

func TestEventString(t *testing.T) {
	e := diag.Event{Severity: diag.Warn, ModuleID: "file:///a.js", Line: 7, Message: "oops"}
	got := e.String()
	want := "file:///a.js:7: warn: oops"
	if got != want {
		t.Errorf("Event.String() = %q, want %q", got, want)
	}
}
