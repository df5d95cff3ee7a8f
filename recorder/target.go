package recorder

// Target is the live-value collaborator the recorder interposes on.
// Implement it to make any concrete value representation recordable;
// package govalue supplies one over reflect for plain Go values, and
// a JS-realm sandbox binding would supply its own over proxy traps.
//
// Every method performs the underlying operation on the live value it
// wraps and reports the raw result; the recorder, not Target, decides
// whether and how the call gets recorded.
type Target interface {
	Get(key string) (value RawValue, viaAccessor bool, err error)
	Set(key string, value RawValue) error
	Delete(key string) error
	DefineProperty(key string, desc RawPropertyDescriptor) error
	GetPrototype() (RawValue, error)
	SetPrototype(proto RawValue) error
	PreventExtensions() error
	Apply(this RawValue, args []RawValue) (RawValue, error)
	Construct(args []RawValue) (RawValue, error)
	// IsCallable reports whether Apply (and, for constructors,
	// Construct) may meaningfully be invoked on this target.
	IsCallable() bool
}

// SymbolRecipe records how to recreate a symbol value: a shared,
// well-known key, or a freshly minted one carrying only a
// description.
type SymbolRecipe struct {
	Shared      bool
	Key         string // meaningful when Shared
	Description string // meaningful when !Shared
}

// RawValue is what a Target deals in directly: a nested live object
// (another Target), a symbol recipe, or an opaque primitive. Values
// that are not objects or functions pass through the recorder
// unwrapped, per spec.
type RawValue struct {
	Object    Target
	Symbol    *SymbolRecipe
	Primitive interface{}
}

func RawObject(t Target) RawValue         { return RawValue{Object: t} }
func RawSymbol(s SymbolRecipe) RawValue   { return RawValue{Symbol: &s} }
func RawPrimitive(p interface{}) RawValue { return RawValue{Primitive: p} }

// RawPropertyDescriptor is the Target-facing half of a property
// descriptor: its Value/Get/Set operands are raw, unwrapped values.
type RawPropertyDescriptor struct {
	Value        RawValue
	Get          RawValue
	Set          RawValue
	HasValue     bool
	HasGet       bool
	HasSet       bool
	Writable     bool
	Enumerable   bool
	Configurable bool
}

// Value is a RawValue that has crossed into the recorder: object
// operands are wrapped, so every reachable live object is backed by a
// *Wrapper with a history the serializer can walk.
type Value struct {
	Object    *Wrapper
	Symbol    *SymbolRecipe
	Primitive interface{}
}

func (v Value) IsObject() bool { return v.Object != nil }
func (v Value) IsSymbol() bool { return v.Symbol != nil }

// toRaw unwraps v back to the representation a Target expects.
func (v Value) toRaw() RawValue {
	switch {
	case v.Object != nil:
		return RawValue{Object: v.Object.target}
	case v.Symbol != nil:
		return RawValue{Symbol: v.Symbol}
	default:
		return RawValue{Primitive: v.Primitive}
	}
}

// PropertyDescriptor is the recorder-facing half of a property
// descriptor: its Value/Get/Set operands are wrapped Values, the form
// DefinePropertyMutation carries so the serializer can reach any
// object they hold.
type PropertyDescriptor struct {
	Value        Value
	Get          Value
	Set          Value
	HasValue     bool
	HasGet       bool
	HasSet       bool
	Writable     bool
	Enumerable   bool
	Configurable bool
}

func (d PropertyDescriptor) toRaw() RawPropertyDescriptor {
	return RawPropertyDescriptor{
		Value: d.Value.toRaw(), Get: d.Get.toRaw(), Set: d.Set.toRaw(),
		HasValue: d.HasValue, HasGet: d.HasGet, HasSet: d.HasSet,
		Writable: d.Writable, Enumerable: d.Enumerable, Configurable: d.Configurable,
	}
}
