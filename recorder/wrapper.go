package recorder

// Wrapper is the structurally transparent interposition value handed
// back in place of a live object or function. Every access through it
// is trapped: the underlying Target performs the real operation, and
// the recorder decides whether the trap leaves a mark on the object's
// history.
type Wrapper struct {
	target   Target
	recorder *Recorder
}

// Target returns the live value this wrapper interposes on.
func (w *Wrapper) Target() Target { return w.target }

func (w *Wrapper) Get(key string) (Value, error) {
	raw, viaAccessor, err := w.target.Get(key)
	if err != nil {
		return Value{}, err
	}
	v := w.recorder.adopt(raw)
	if v.Object != nil && w.recorder.assignOriginIfUnset(v.Object, func(seq uint64) Origin {
		return GetOrigin{Base: Base{Seq: seq}, Target: w, Key: key}
	}) {
		return v, nil
	}
	if viaAccessor {
		w.recorder.recordMutation(w, func(seq uint64) Mutation {
			return GetMutation{Base: Base{Seq: seq}, Key: key}
		})
	}
	return v, nil
}

func (w *Wrapper) Set(key string, value Value) error {
	if err := w.target.Set(key, value.toRaw()); err != nil {
		return err
	}
	w.recorder.recordMutation(w, func(seq uint64) Mutation {
		return SetMutation{Base: Base{Seq: seq}, Key: key, Value: value}
	})
	return nil
}

func (w *Wrapper) Delete(key string) error {
	if err := w.target.Delete(key); err != nil {
		return err
	}
	w.recorder.recordMutation(w, func(seq uint64) Mutation {
		return DeleteMutation{Base: Base{Seq: seq}, Key: key}
	})
	return nil
}

func (w *Wrapper) DefineProperty(key string, desc PropertyDescriptor) error {
	if err := w.target.DefineProperty(key, desc.toRaw()); err != nil {
		return err
	}
	w.recorder.recordMutation(w, func(seq uint64) Mutation {
		return DefinePropertyMutation{Base: Base{Seq: seq}, Key: key, Descriptor: desc}
	})
	return nil
}

func (w *Wrapper) GetPrototype() (Value, error) {
	raw, err := w.target.GetPrototype()
	if err != nil {
		return Value{}, err
	}
	return w.recorder.adopt(raw), nil
}

func (w *Wrapper) SetPrototype(proto Value) error {
	if err := w.target.SetPrototype(proto.toRaw()); err != nil {
		return err
	}
	w.recorder.recordMutation(w, func(seq uint64) Mutation {
		return SetPrototypeOfMutation{Base: Base{Seq: seq}, Proto: proto}
	})
	return nil
}

func (w *Wrapper) PreventExtensions() error {
	w.recorder.recordMutation(w, func(seq uint64) Mutation {
		return PreventExtensionsMutation{Base: Base{Seq: seq}}
	})
	return w.target.PreventExtensions()
}

func (w *Wrapper) Apply(this Value, args []Value) (Value, error) {
	rawArgs := make([]RawValue, len(args))
	for i, a := range args {
		rawArgs[i] = a.toRaw()
	}
	raw, err := w.target.Apply(this.toRaw(), rawArgs)
	if err != nil {
		return Value{}, err
	}
	result := w.recorder.adopt(raw)
	if result.Object != nil {
		w.recorder.assignOriginIfUnset(result.Object, func(seq uint64) Origin {
			return ApplyOrigin{Base: Base{Seq: seq}, Callee: w, This: this, Args: args}
		})
	}
	return result, nil
}

func (w *Wrapper) Construct(args []Value) (Value, error) {
	rawArgs := make([]RawValue, len(args))
	for i, a := range args {
		rawArgs[i] = a.toRaw()
	}
	raw, err := w.target.Construct(rawArgs)
	if err != nil {
		return Value{}, err
	}
	result := w.recorder.adopt(raw)
	if result.Object != nil {
		w.recorder.assignOriginIfUnset(result.Object, func(seq uint64) Origin {
			return ConstructOrigin{Base: Base{Seq: seq}, Callee: w, Args: args}
		})
	}
	return result, nil
}
