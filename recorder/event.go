package recorder

// Base carries the one field every event shares: the sequence number
// stamped at the moment its trap was dispatched. Sequence numbers are
// strictly increasing across the whole recorder, not per-object.
type Base struct {
	Seq uint64
}

func (b Base) Sequence() uint64 { return b.Seq }

// Origin is how an object's history began: the single event a trap
// assigns the first time it reaches a given live value. At most one
// of these ever attaches to a given history; a value wrapped without
// one (a prototype returned by GetPrototype, an object operand passed
// to Materialize) keeps a history with no origin.
type Origin interface {
	originNode()
	Sequence() uint64
}

// Mutation is something that happened to an already-wrapped object
// after its origin. A history accumulates these in sequence order.
type Mutation interface {
	mutationNode()
	Sequence() uint64
}

// GetGlobalOrigin is the bootstrap root: the one event recorded for
// the global object itself, before anything else has happened.
type GetGlobalOrigin struct{ Base }

func (GetGlobalOrigin) originNode() {}

// GetOrigin records that a value was first reached by reading a
// property off an already-known object. Assigned only the first time
// the read value is seen; later reads of the same value leave a
// GetMutation on the container instead, and only when the read ran a
// user-defined getter.
type GetOrigin struct {
	Base
	Target *Wrapper
	Key    string
}

func (GetOrigin) originNode() {}

// ConstructOrigin records that a value came into being via `new
// Callee(Args...)`.
type ConstructOrigin struct {
	Base
	Callee *Wrapper
	Args   []Value
}

func (ConstructOrigin) originNode() {}

// ApplyOrigin records that a value came into being as the return
// value of a plain call, Callee.Apply(This, Args...).
type ApplyOrigin struct {
	Base
	Callee *Wrapper
	This   Value
	Args   []Value
}

func (ApplyOrigin) originNode() {}

// CodeBindOrigin records a closure capture: a function value bound to
// a source handle (opaque to this package; the reknitter alone
// interprets it) together with the stack frames it closed over.
type CodeBindOrigin struct {
	Base
	SourceHandle interface{}
	Frames       []Value
}

func (CodeBindOrigin) originNode() {}

// MaterializedConstructOrigin records that a value was synthesized by
// the JSON-like materialization hook rather than observed live: the
// deserializer reports which well-known constructor it stands in for.
type MaterializedConstructOrigin struct {
	Base
	ConstructorName string
}

func (MaterializedConstructOrigin) originNode() {}

// GetMutation records a property read that ran a user-defined getter.
// Reads of a plain data property are not recorded at all.
type GetMutation struct {
	Base
	Key string
}

func (GetMutation) mutationNode() {}

type SetMutation struct {
	Base
	Key   string
	Value Value
}

func (SetMutation) mutationNode() {}

type DeleteMutation struct {
	Base
	Key string
}

func (DeleteMutation) mutationNode() {}

type DefinePropertyMutation struct {
	Base
	Key        string
	Descriptor PropertyDescriptor
}

func (DefinePropertyMutation) mutationNode() {}

type SetPrototypeOfMutation struct {
	Base
	Proto Value
}

func (SetPrototypeOfMutation) mutationNode() {}

// PreventExtensionsMutation is recorded before the underlying
// operation runs: once a target refuses extension there is no longer
// a reliable way to observe that the call happened at all.
type PreventExtensionsMutation struct{ Base }

func (PreventExtensionsMutation) mutationNode() {}
