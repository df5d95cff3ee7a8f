// Package recorder builds an object-graph recording of everything a
// sandboxed program observes and mutates through a set of live
// values: every property read that runs a getter, every write,
// delete, prototype change, and call is trapped, timestamped with a
// strictly increasing sequence number, and appended to the touched
// object's history. Serialize later compacts the reachable subgraph
// rooted at a set of values into a portable snapshot.
package recorder

import "sync"

// Recorder owns every wrapper it has ever produced and the strictly
// increasing sequence counter events are stamped from.
type Recorder struct {
	mu        sync.Mutex
	seq       uint64
	wrappers  map[Target]*Wrapper
	histories map[*Wrapper]*history
}

// New returns an empty Recorder, ready for Bootstrap.
func New() *Recorder {
	return &Recorder{
		wrappers:  make(map[Target]*Wrapper),
		histories: make(map[*Wrapper]*history),
	}
}

// Bootstrap wraps global, the root of the reachable object graph, and
// gives it a get-global origin. Call this exactly once per Recorder.
func (r *Recorder) Bootstrap(global Target) *Wrapper {
	r.mu.Lock()
	defer r.mu.Unlock()
	w := r.wrapLocked(global)
	h := r.histories[w]
	if h.origin == nil {
		r.seq++
		h.origin = GetGlobalOrigin{Base: Base{Seq: r.seq}}
	}
	return w
}

// BindClosure wraps fn (a freshly captured closure) and gives it a
// code-bind origin naming the source it was bound from and the stack
// frames it captured.
func (r *Recorder) BindClosure(fn Target, sourceHandle interface{}, frames []Value) *Wrapper {
	r.mu.Lock()
	defer r.mu.Unlock()
	w := r.wrapLocked(fn)
	h := r.histories[w]
	if h.origin == nil {
		r.seq++
		h.origin = CodeBindOrigin{Base: Base{Seq: r.seq}, SourceHandle: sourceHandle, Frames: frames}
	}
	return w
}

// Materialize wraps obj (a value synthesized by a JSON-like
// deserializer, or any other "value faucet" that creates non-proxy
// objects out of whole cloth, rather than observed live) and
// synthesizes the event sequence a live construction of the same
// value would have left behind: a MaterializedConstructOrigin naming
// the well-known constructor it stands in for (Object or Array, per
// the caller's own determination), followed by one define-property
// mutation per key in keys, in that order, looked up in properties.
// A key with no entry in properties is skipped.
func (r *Recorder) Materialize(obj Target, constructorName string, keys []string, properties map[string]RawValue) (*Wrapper, error) {
	r.mu.Lock()
	w := r.wrapLocked(obj)
	h := r.histories[w]
	if h.origin == nil {
		r.seq++
		h.origin = MaterializedConstructOrigin{Base: Base{Seq: r.seq}, ConstructorName: constructorName}
	}
	r.mu.Unlock()

	for _, key := range keys {
		raw, ok := properties[key]
		if !ok {
			continue
		}
		desc := PropertyDescriptor{
			Value:        r.adopt(raw),
			HasValue:     true,
			Writable:     true,
			Enumerable:   true,
			Configurable: true,
		}
		if err := w.DefineProperty(key, desc); err != nil {
			return nil, err
		}
	}
	return w, nil
}

// adopt converts a RawValue crossing a trap boundary into a Value,
// wrapping any object it has not seen before. A freshly wrapped
// object's history starts with no origin; the caller (a trap that
// knows how the value came to exist) assigns one.
func (r *Recorder) adopt(raw RawValue) Value {
	switch {
	case raw.Object != nil:
		r.mu.Lock()
		w := r.wrapLocked(raw.Object)
		r.mu.Unlock()
		return Value{Object: w}
	case raw.Symbol != nil:
		return Value{Symbol: raw.Symbol}
	default:
		return Value{Primitive: raw.Primitive}
	}
}

// wrapLocked returns the wrapper for t, creating an origin-less one
// (with an empty history) the first time t is seen. Must be called
// with mu held.
func (r *Recorder) wrapLocked(t Target) *Wrapper {
	if w, ok := r.wrappers[t]; ok {
		return w
	}
	w := &Wrapper{target: t, recorder: r}
	r.wrappers[t] = w
	r.histories[w] = &history{wrapper: w}
	return w
}

// recordMutation stamps and appends one change event to w's history.
func (r *Recorder) recordMutation(w *Wrapper, build func(seq uint64) Mutation) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.seq++
	h := r.histories[w]
	h.changes = append(h.changes, build(r.seq))
}

// assignOriginIfUnset gives w's history an origin the first time it
// is called for w, reporting whether it did; later calls (the same
// object returned again by a later call/construct/get) are no-ops,
// since an object's origin is fixed at first sight.
func (r *Recorder) assignOriginIfUnset(w *Wrapper, build func(seq uint64) Origin) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	h := r.histories[w]
	if h.origin != nil {
		return false
	}
	r.seq++
	h.origin = build(r.seq)
	return true
}
