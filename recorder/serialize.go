package recorder

import (
	"sort"

	"github.com/vmihailenco/msgpack/v5"
)

// WireValue is an operand as it appears on the wire: exactly one of
// Primitive, ObjectRef (an index into the enclosing Snapshot's
// Objects pool), or Symbol is meaningful, discriminated by Kind.
type WireValue struct {
	Kind      string        `msgpack:"kind"`
	Primitive interface{}   `msgpack:"primitive,omitempty"`
	ObjectRef int           `msgpack:"objectRef,omitempty"`
	Symbol    *SymbolRecipe `msgpack:"symbol,omitempty"`
}

const (
	kindPrimitive = "primitive"
	kindObject    = "object"
	kindSymbol    = "symbol"
)

// WireDescriptor mirrors PropertyDescriptor with wire-safe operands.
type WireDescriptor struct {
	Value        *WireValue `msgpack:"value,omitempty"`
	Get          *WireValue `msgpack:"get,omitempty"`
	Set          *WireValue `msgpack:"set,omitempty"`
	HasValue     bool       `msgpack:"hasValue,omitempty"`
	HasGet       bool       `msgpack:"hasGet,omitempty"`
	HasSet       bool       `msgpack:"hasSet,omitempty"`
	Writable     bool       `msgpack:"writable,omitempty"`
	Enumerable   bool       `msgpack:"enumerable,omitempty"`
	Configurable bool       `msgpack:"configurable,omitempty"`
}

// WireEvent is one origin or change event as it appears on the wire.
// Kind names one of the concrete Origin/Mutation types; only the
// fields that kind uses are populated.
type WireEvent struct {
	Kind            string          `msgpack:"kind"`
	Seq             uint64          `msgpack:"seq"`
	Key             string          `msgpack:"key,omitempty"`
	Value           *WireValue      `msgpack:"value,omitempty"`
	Callee          *int            `msgpack:"callee,omitempty"`
	This            *WireValue      `msgpack:"this,omitempty"`
	Args            []WireValue     `msgpack:"args,omitempty"`
	Proto           *WireValue      `msgpack:"proto,omitempty"`
	ConstructorName string          `msgpack:"constructorName,omitempty"`
	SourceHandle    interface{}     `msgpack:"sourceHandle,omitempty"`
	Frames          []WireValue     `msgpack:"frames,omitempty"`
	Descriptor      *WireDescriptor `msgpack:"descriptor,omitempty"`
}

// ObjectRecord is the compacted history of one reachable object: its
// origin, plus every change event, in sequence order.
type ObjectRecord struct {
	Origin  WireEvent   `msgpack:"origin"`
	Changes []WireEvent `msgpack:"changes"`
}

// Snapshot is the portable compaction of a recorder's reachable
// object graph rooted at a chosen set of values.
type Snapshot struct {
	Objects []ObjectRecord `msgpack:"objects"`
	Roots   []WireValue    `msgpack:"roots"`
}

// compactor discovers the subgraph reachable from a set of roots via
// a worklist over object-typed operands: every wrapper it meets is
// assigned a pool slot the first time it is enqueued, so ObjectRef
// indices are stable across the whole snapshot.
type compactor struct {
	index    map[*Wrapper]int
	pool     []ObjectRecord
	worklist []*Wrapper
}

func newCompactor() *compactor {
	return &compactor{index: make(map[*Wrapper]int)}
}

func (c *compactor) refFor(w *Wrapper) int {
	if idx, ok := c.index[w]; ok {
		return idx
	}
	idx := len(c.pool)
	c.index[w] = idx
	c.pool = append(c.pool, ObjectRecord{})
	c.worklist = append(c.worklist, w)
	return idx
}

func (c *compactor) convertValue(v Value) WireValue {
	switch {
	case v.Object != nil:
		return WireValue{Kind: kindObject, ObjectRef: c.refFor(v.Object)}
	case v.Symbol != nil:
		return WireValue{Kind: kindSymbol, Symbol: v.Symbol}
	default:
		return WireValue{Kind: kindPrimitive, Primitive: v.Primitive}
	}
}

func (c *compactor) convertValues(vs []Value) []WireValue {
	if vs == nil {
		return nil
	}
	out := make([]WireValue, len(vs))
	for i, v := range vs {
		out[i] = c.convertValue(v)
	}
	return out
}

func (c *compactor) convertDescriptor(d PropertyDescriptor) *WireDescriptor {
	wd := &WireDescriptor{
		HasValue: d.HasValue, HasGet: d.HasGet, HasSet: d.HasSet,
		Writable: d.Writable, Enumerable: d.Enumerable, Configurable: d.Configurable,
	}
	if d.HasValue {
		v := c.convertValue(d.Value)
		wd.Value = &v
	}
	if d.HasGet {
		v := c.convertValue(d.Get)
		wd.Get = &v
	}
	if d.HasSet {
		v := c.convertValue(d.Set)
		wd.Set = &v
	}
	return wd
}

func (c *compactor) convertOrigin(o Origin) WireEvent {
	switch e := o.(type) {
	case GetGlobalOrigin:
		return WireEvent{Kind: "get-global", Seq: e.Seq}
	case GetOrigin:
		target := c.refFor(e.Target)
		return WireEvent{Kind: "get", Seq: e.Seq, Callee: &target, Key: e.Key}
	case ConstructOrigin:
		callee := c.refFor(e.Callee)
		return WireEvent{Kind: "construct", Seq: e.Seq, Callee: &callee, Args: c.convertValues(e.Args)}
	case ApplyOrigin:
		callee := c.refFor(e.Callee)
		this := c.convertValue(e.This)
		return WireEvent{Kind: "apply", Seq: e.Seq, Callee: &callee, This: &this, Args: c.convertValues(e.Args)}
	case CodeBindOrigin:
		return WireEvent{Kind: "code-bind", Seq: e.Seq, SourceHandle: e.SourceHandle, Frames: c.convertValues(e.Frames)}
	case MaterializedConstructOrigin:
		return WireEvent{Kind: "materialized-construct", Seq: e.Seq, ConstructorName: e.ConstructorName}
	default:
		return WireEvent{Kind: "unknown-origin", Seq: o.Sequence()}
	}
}

func (c *compactor) convertMutation(m Mutation) WireEvent {
	switch e := m.(type) {
	case GetMutation:
		return WireEvent{Kind: "get", Seq: e.Seq, Key: e.Key}
	case SetMutation:
		v := c.convertValue(e.Value)
		return WireEvent{Kind: "set", Seq: e.Seq, Key: e.Key, Value: &v}
	case DeleteMutation:
		return WireEvent{Kind: "delete", Seq: e.Seq, Key: e.Key}
	case DefinePropertyMutation:
		return WireEvent{Kind: "define-property", Seq: e.Seq, Key: e.Key, Descriptor: c.convertDescriptor(e.Descriptor)}
	case SetPrototypeOfMutation:
		v := c.convertValue(e.Proto)
		return WireEvent{Kind: "set-prototype-of", Seq: e.Seq, Proto: &v}
	case PreventExtensionsMutation:
		return WireEvent{Kind: "prevent-extensions", Seq: e.Seq}
	default:
		return WireEvent{Kind: "unknown-mutation", Seq: m.Sequence()}
	}
}

func (c *compactor) run(r *Recorder) {
	for len(c.worklist) > 0 {
		w := c.worklist[0]
		c.worklist = c.worklist[1:]
		idx := c.index[w]

		r.mu.Lock()
		h := r.histories[w]
		origin := h.origin
		changes := append([]Mutation(nil), h.changes...)
		r.mu.Unlock()

		rec := ObjectRecord{Changes: make([]WireEvent, len(changes))}
		if origin != nil {
			rec.Origin = c.convertOrigin(origin)
		}
		for i, m := range changes {
			rec.Changes[i] = c.convertMutation(m)
		}
		sort.SliceStable(rec.Changes, func(i, j int) bool { return rec.Changes[i].Seq < rec.Changes[j].Seq })
		c.pool[idx] = rec
	}
}

// Serialize compacts the object graph reachable from roots into a
// Snapshot and encodes it with msgpack.
func Serialize(r *Recorder, roots []Value) ([]byte, error) {
	c := newCompactor()
	wireRoots := c.convertValues(roots)
	c.run(r)
	return msgpack.Marshal(&Snapshot{Objects: c.pool, Roots: wireRoots})
}
