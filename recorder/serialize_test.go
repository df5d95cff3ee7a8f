package recorder_test

import (
	"testing"

	"github.com/vmihailenco/msgpack/v5"
	"prebake.dev/recorder"
)

type fakeTarget struct {
	name  string
	props map[string]recorder.RawValue
}

func newFakeTarget(name string) *fakeTarget {
	return &fakeTarget{name: name, props: make(map[string]recorder.RawValue)}
}

func (t *fakeTarget) Get(key string) (recorder.RawValue, bool, error) { return t.props[key], false, nil }
func (t *fakeTarget) Set(key string, v recorder.RawValue) error       { t.props[key] = v; return nil }
func (t *fakeTarget) Delete(key string) error                         { delete(t.props, key); return nil }
func (t *fakeTarget) DefineProperty(key string, d recorder.RawPropertyDescriptor) error {
	if d.HasValue {
		t.props[key] = d.Value
	}
	return nil
}
func (t *fakeTarget) GetPrototype() (recorder.RawValue, error) { return recorder.RawValue{}, nil }
func (t *fakeTarget) SetPrototype(recorder.RawValue) error     { return nil }
func (t *fakeTarget) PreventExtensions() error                 { return nil }
func (t *fakeTarget) Apply(recorder.RawValue, []recorder.RawValue) (recorder.RawValue, error) {
	return recorder.RawValue{}, nil
}
func (t *fakeTarget) Construct([]recorder.RawValue) (recorder.RawValue, error) {
	return recorder.RawValue{}, nil
}
func (t *fakeTarget) IsCallable() bool { return false }

// TestRecorderReachabilityFromASingleWrapper covers the scenario
// where og.global.Object; og.global.Array; og.global.Number are read
// in turn, and the snapshot is then taken rooted at the Number
// wrapper alone.
func TestRecorderReachabilityFromASingleWrapper(t *testing.T) {
	global := newFakeTarget("global")
	global.props["Object"] = recorder.RawValue{Object: newFakeTarget("Object")}
	global.props["Array"] = recorder.RawValue{Object: newFakeTarget("Array")}
	global.props["Number"] = recorder.RawValue{Object: newFakeTarget("Number")}

	r := recorder.New()
	gw := r.Bootstrap(global)

	if _, err := gw.Get("Object"); err != nil {
		t.Fatal(err)
	}
	if _, err := gw.Get("Array"); err != nil {
		t.Fatal(err)
	}
	numberVal, err := gw.Get("Number")
	if err != nil {
		t.Fatal(err)
	}

	data, err := recorder.Serialize(r, []recorder.Value{numberVal})
	if err != nil {
		t.Fatalf("Serialize: %v", err)
	}

	var snap recorder.Snapshot
	if err := msgpack.Unmarshal(data, &snap); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}

	if len(snap.Objects) != 2 {
		t.Fatalf("object pool size = %d, want 2", len(snap.Objects))
	}

	var total int
	var sawGetGlobal, sawGetNumber bool
	for _, obj := range snap.Objects {
		total++ // origin counts as one event
		total += len(obj.Changes)
		switch obj.Origin.Kind {
		case "get-global":
			sawGetGlobal = true
		case "get":
			if obj.Origin.Key == "Number" {
				sawGetNumber = true
			}
		}
	}
	if total != 2 {
		t.Errorf("total events = %d, want 2", total)
	}
	if !sawGetGlobal || !sawGetNumber {
		t.Errorf("expected a get-global event and a get(key=Number) event, got %+v", snap.Objects)
	}
}
