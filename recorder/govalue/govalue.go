// Package govalue adapts plain Go values to recorder.Target via
// reflection, the same way stargo.varOf turns a reflect.Value into a
// Starlark variable: one adapter type per value, and a cache so the
// same live value always maps back to the same adapter. Operations a
// Go value has no analogue for (accessor properties, prototype
// changes, deleting from anything but a map) return an error.
package govalue

import (
	"fmt"
	"reflect"
	"strconv"
	"sync"

	"prebake.dev/recorder"
)

// Adapter wraps one Go value so the recorder can interpose on it. Two
// calls to Wrap for the same underlying value (same pointer, same map,
// same slice header) return the identical *Adapter, so the recorder's
// object↔wrapper cache sees one Target per live object.
type Adapter struct {
	v reflect.Value
}

var _ recorder.Target = (*Adapter)(nil)

// cache keys by the reflect.Value's underlying pointer so that
// wrapping the same struct pointer, map, or slice twice yields the
// same Adapter. Values with no stable pointer identity (plain
// structs and arrays passed by value) are never deduplicated; callers
// should pass addressable values when identity matters.
type cache struct {
	mu    sync.Mutex
	byPtr map[uintptr]*Adapter
}

var globalCache = &cache{byPtr: make(map[uintptr]*Adapter)}

func identity(v reflect.Value) (uintptr, bool) {
	switch v.Kind() {
	case reflect.Ptr, reflect.Map, reflect.Chan, reflect.Func:
		if v.IsNil() {
			return 0, false
		}
		return v.Pointer(), true
	case reflect.Slice:
		if v.IsNil() {
			return 0, false
		}
		return v.Pointer() + 1, true // offset so it can't collide with a Ptr to the same address
	default:
		return 0, false
	}
}

// Wrap returns the Adapter for v, the live Go value behind any
// interface{}.
func Wrap(value interface{}) *Adapter {
	return wrapValue(reflect.ValueOf(value))
}

func wrapValue(v reflect.Value) *Adapter {
	if key, ok := identity(v); ok {
		globalCache.mu.Lock()
		defer globalCache.mu.Unlock()
		if a, ok := globalCache.byPtr[key]; ok {
			return a
		}
		a := &Adapter{v: v}
		globalCache.byPtr[key] = a
		return a
	}
	return &Adapter{v: v}
}

func (a *Adapter) deref() reflect.Value {
	v := a.v
	for v.Kind() == reflect.Ptr || v.Kind() == reflect.Interface {
		if v.IsNil() {
			return v
		}
		v = v.Elem()
	}
	return v
}

// toRaw converts a reflect.Value into the RawValue the recorder
// expects: primitives pass through as their Go value, anything else
// is wrapped as a nested object.
func toRaw(v reflect.Value) recorder.RawValue {
	if !v.IsValid() {
		return recorder.RawValue{}
	}
	switch v.Kind() {
	case reflect.String:
		return recorder.RawPrimitive(v.String())
	case reflect.Bool:
		return recorder.RawPrimitive(v.Bool())
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return recorder.RawPrimitive(v.Int())
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return recorder.RawPrimitive(v.Uint())
	case reflect.Float32, reflect.Float64:
		return recorder.RawPrimitive(v.Float())
	case reflect.Invalid:
		return recorder.RawValue{}
	default:
		return recorder.RawObject(wrapValue(v))
	}
}

// fromRaw converts a RawValue operand back into a reflect.Value
// assignable to target type t.
func fromRaw(raw recorder.RawValue, t reflect.Type) (reflect.Value, error) {
	if raw.Object != nil {
		a, ok := raw.Object.(*Adapter)
		if !ok {
			return reflect.Value{}, fmt.Errorf("govalue: foreign Target cannot cross into a Go value of type %s", t)
		}
		return a.v, nil
	}
	if raw.Symbol != nil {
		return reflect.Value{}, fmt.Errorf("govalue: symbols have no Go representation")
	}
	if raw.Primitive == nil {
		return reflect.Zero(t), nil
	}
	rv := reflect.ValueOf(raw.Primitive)
	if rv.Type().ConvertibleTo(t) {
		return rv.Convert(t), nil
	}
	return reflect.Value{}, fmt.Errorf("govalue: cannot assign %T to %s", raw.Primitive, t)
}

// Get implements recorder.Target. Struct field and map access never
// runs user code, so viaAccessor is always false: Go has no property
// getters.
func (a *Adapter) Get(key string) (recorder.RawValue, bool, error) {
	v := a.deref()
	switch v.Kind() {
	case reflect.Struct:
		f := v.FieldByName(key)
		if !f.IsValid() {
			return recorder.RawValue{}, false, fmt.Errorf("govalue: no field %q on %s", key, v.Type())
		}
		if !f.CanInterface() {
			return recorder.RawValue{}, false, fmt.Errorf("govalue: field %q of %s is unexported", key, v.Type())
		}
		return toRaw(f), false, nil
	case reflect.Map:
		mv := v.MapIndex(reflect.ValueOf(key).Convert(v.Type().Key()))
		if !mv.IsValid() {
			return recorder.RawValue{}, false, nil
		}
		return toRaw(mv), false, nil
	case reflect.Slice, reflect.Array:
		i, err := strconv.Atoi(key)
		if err != nil || i < 0 || i >= v.Len() {
			return recorder.RawValue{}, false, fmt.Errorf("govalue: index %q out of range for %s of length %d", key, v.Type(), v.Len())
		}
		return toRaw(v.Index(i)), false, nil
	default:
		return recorder.RawValue{}, false, fmt.Errorf("govalue: cannot get %q on a %s", key, v.Kind())
	}
}

func (a *Adapter) Set(key string, value recorder.RawValue) error {
	v := a.deref()
	switch v.Kind() {
	case reflect.Struct:
		f := v.FieldByName(key)
		if !f.IsValid() || !f.CanSet() {
			return fmt.Errorf("govalue: field %q of %s is not settable", key, v.Type())
		}
		rv, err := fromRaw(value, f.Type())
		if err != nil {
			return err
		}
		f.Set(rv)
		return nil
	case reflect.Map:
		rv, err := fromRaw(value, v.Type().Elem())
		if err != nil {
			return err
		}
		v.SetMapIndex(reflect.ValueOf(key).Convert(v.Type().Key()), rv)
		return nil
	case reflect.Slice:
		i, err := strconv.Atoi(key)
		if err != nil || i < 0 || i >= v.Len() {
			return fmt.Errorf("govalue: index %q out of range for %s", key, v.Type())
		}
		rv, err := fromRaw(value, v.Type().Elem())
		if err != nil {
			return err
		}
		v.Index(i).Set(rv)
		return nil
	default:
		return fmt.Errorf("govalue: cannot set %q on a %s", key, v.Kind())
	}
}

func (a *Adapter) Delete(key string) error {
	v := a.deref()
	if v.Kind() != reflect.Map {
		return fmt.Errorf("govalue: delete is only defined for maps, got %s", v.Kind())
	}
	v.SetMapIndex(reflect.ValueOf(key).Convert(v.Type().Key()), reflect.Value{})
	return nil
}

// DefineProperty has no Go analogue beyond a plain assignment: it
// sets the value and ignores the accessor/attribute bits, which Go's
// type system has no room for.
func (a *Adapter) DefineProperty(key string, desc recorder.RawPropertyDescriptor) error {
	if !desc.HasValue {
		return fmt.Errorf("govalue: accessor properties are not representable on a Go value")
	}
	return a.Set(key, desc.Value)
}

func (a *Adapter) GetPrototype() (recorder.RawValue, error) {
	return recorder.RawValue{}, nil
}

func (a *Adapter) SetPrototype(recorder.RawValue) error {
	return fmt.Errorf("govalue: Go values have no settable prototype")
}

func (a *Adapter) PreventExtensions() error {
	return nil // a struct's field set is already fixed; nothing to do
}

func (a *Adapter) IsCallable() bool {
	return a.deref().Kind() == reflect.Func
}

func (a *Adapter) Apply(_ recorder.RawValue, args []recorder.RawValue) (recorder.RawValue, error) {
	v := a.deref()
	if v.Kind() != reflect.Func {
		return recorder.RawValue{}, fmt.Errorf("govalue: %s is not callable", v.Kind())
	}
	in, err := a.convertArgs(v, args)
	if err != nil {
		return recorder.RawValue{}, err
	}
	out := v.Call(in)
	return a.convertResults(out)
}

// Construct has no Go analogue (Go has no `new Foo(args)` protocol on
// arbitrary values); callable adapters treat Construct identically to
// Apply, which covers the common case of wrapping a factory function.
func (a *Adapter) Construct(args []recorder.RawValue) (recorder.RawValue, error) {
	return a.Apply(recorder.RawValue{}, args)
}

func (a *Adapter) convertArgs(fn reflect.Value, args []recorder.RawValue) ([]reflect.Value, error) {
	t := fn.Type()
	variadic := t.IsVariadic()
	in := make([]reflect.Value, len(args))
	for i, raw := range args {
		pt := t.In(i)
		if variadic && i >= t.NumIn()-1 {
			pt = t.In(t.NumIn() - 1).Elem()
		} else if i >= t.NumIn() {
			return nil, fmt.Errorf("govalue: too many arguments for %s", t)
		}
		rv, err := fromRaw(raw, pt)
		if err != nil {
			return nil, err
		}
		in[i] = rv
	}
	return in, nil
}

func (a *Adapter) convertResults(out []reflect.Value) (recorder.RawValue, error) {
	if len(out) == 0 {
		return recorder.RawValue{}, nil
	}
	last := out[len(out)-1]
	if last.Type().Implements(errorType) && !last.IsNil() {
		return recorder.RawValue{}, last.Interface().(error)
	}
	if len(out) == 1 || (last.Type().Implements(errorType) && len(out) == 2) {
		return toRaw(out[0]), nil
	}
	return toRaw(out[0]), nil
}

var errorType = reflect.TypeOf((*error)(nil)).Elem()
