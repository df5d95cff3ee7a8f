package modset

import "prebake.dev/modid"

// Resolver resolves a specifier relative to a base URL to an absolute
// URL, the way the specifier package's Resolver does; Set depends on
// the narrow function shape rather than the concrete type so callers
// can wire in whatever resolution chain they like.
type Resolver func(specifier, base string) (string, error)

type waiter struct {
	stage Stage
	ch    chan *Module
}

// slot is the authoritative state for one module identity, stored
// under a single key: the canonical URL once known, the absolute URL
// until then.
type slot struct {
	mod     *Module
	waiters []waiter
}

// Set is the module bus. Every exported method serializes through a
// single internal goroutine; no field is touched outside it.
type Set struct {
	resolve Resolver

	cmds chan func()

	storage map[string]*slot
	// alias maps an absolute URL to the canonical key its module was
	// eventually found under, so a lookup made before canonicalization
	// completed still finds the authoritative slot afterward.
	alias        map[string]string
	anyPromoted  map[Stage][]func(*Module)
	newModuleCBs []func(*Module)
}

// New creates an empty module set. resolve is used by Fetch to turn a
// specifier into an absolute URL before constructing a tentative id.
func New(resolve Resolver) *Set {
	s := &Set{
		resolve:     resolve,
		cmds:        make(chan func()),
		storage:     make(map[string]*slot),
		alias:       make(map[string]string),
		anyPromoted: make(map[Stage][]func(*Module)),
	}
	go s.run()
	return s
}

func (s *Set) run() {
	for cmd := range s.cmds {
		cmd()
	}
}

// exec runs fn on the mailbox goroutine and blocks until it returns,
// giving every caller the illusion of exclusive access without an
// explicit lock.
func (s *Set) exec(fn func()) {
	done := make(chan struct{})
	s.cmds <- func() {
		fn()
		close(done)
	}
	<-done
}

// keyFor resolves id to the key its authoritative slot is stored
// under: its own canonical URL if it carries one, else whatever
// canonical URL its absolute URL has since been aliased to, else its
// absolute URL.
func (s *Set) keyFor(id modid.ID) string {
	if canon, ok := id.Canon(); ok {
		return canon
	}
	abs := id.Abs()
	if canon, ok := s.alias[abs]; ok {
		return canon
	}
	return abs
}

func (s *Set) slotFor(id modid.ID) *slot {
	return s.storage[s.keyFor(id)]
}

// Get looks up a module by either its absolute or canonical key.
func (s *Set) Get(id modid.ID) (*Module, bool) {
	var mod *Module
	var ok bool
	s.exec(func() {
		if sl := s.slotFor(id); sl != nil {
			mod, ok = sl.mod, true
		}
	})
	return mod, ok
}

// OnNewModule registers cb to run whenever a put stores a fresh
// UNRESOLVED module — the gatherer's entry point.
func (s *Set) OnNewModule(cb func(*Module)) {
	s.exec(func() {
		s.newModuleCBs = append(s.newModuleCBs, cb)
	})
}

// OnAnyPromotedTo registers cb to run, on the mailbox goroutine,
// whenever any module reaches stage. A callback that panics or (if it
// returns an error) fails is reported to diagnostics by the caller's
// own wrapping, never aborting dispatch to the remaining callbacks.
func (s *Set) OnAnyPromotedTo(stage Stage, cb func(*Module)) {
	s.exec(func() {
		s.anyPromoted[stage] = append(s.anyPromoted[stage], cb)
	})
}

// OnPromotedTo returns a channel that receives exactly one value: m
// once it reaches stage, or an error module if it fails first. It
// returns ok=false immediately, with no channel, if m is already past
// stage (an error is never "past", since it always satisfies any
// waiter with the error itself).
func (s *Set) OnPromotedTo(m *Module, stage Stage) (<-chan *Module, bool) {
	var ch chan *Module
	var ok bool
	s.exec(func() {
		cur := m
		if sl := s.slotFor(m.ID); sl != nil {
			cur = sl.mod
		}
		if cur.Stage() > stage && cur.Stage() != StageError {
			return
		}
		ch, ok = s.futureLocked(cur, stage), true
	})
	return ch, ok
}

// Put reconciles an incoming module under the preserve-error,
// preserve-later-stage, fire-promotion, fire-new-module rules and
// returns the module now occupying its id.
func (s *Set) Put(m *Module) *Module {
	var result *Module
	s.exec(func() {
		result = s.putLocked(m)
	})
	return result
}

func (s *Set) putLocked(m *Module) *Module {
	absKey := m.ID.Abs()
	canonKey, hasCanon := m.ID.Canon()

	// The identity's occupant before this put may be sitting under
	// either its plain abs key (if this is the first arrival to learn
	// its canon, or it has none yet) or its canonical key (if some
	// earlier arrival already established one).
	oldPlain := s.storage[absKey]
	var oldCanon *slot
	switch {
	case hasCanon:
		oldCanon = s.storage[canonKey]
	default:
		if aliased, ok := s.alias[absKey]; ok {
			oldCanon = s.storage[aliased]
		}
	}

	if oldPlain != nil && oldPlain.mod.Stage() == StageError {
		merged := oldPlain.mod.clone()
		merged.Errors = append(merged.Errors, m.Errors...)
		oldPlain.mod = merged
		return merged
	}
	if oldCanon != nil && oldCanon.mod.Stage() == StageError {
		merged := oldCanon.mod.clone()
		merged.Errors = append(merged.Errors, m.Errors...)
		oldCanon.mod = merged
		return merged
	}

	resolvedKey := absKey
	if hasCanon {
		resolvedKey = canonKey
	} else if aliased, ok := s.alias[absKey]; ok {
		resolvedKey = aliased
	}
	old := s.storage[resolvedKey]

	var stored *Module
	var newSlot *slot
	switch {
	case m.Stage() == StageError:
		// Rule 2: the incoming error is stored.
		stored, newSlot = m, &slot{mod: m}
	case old != nil && old.mod.Stage() > m.Stage():
		// Rule 3: a later stage is already present; the incoming is a
		// no-op.
		stored, newSlot = old.mod, old
	default:
		// Rule 4: store the incoming.
		stored, newSlot = m, &slot{mod: m}
	}

	s.storage[resolvedKey] = newSlot
	if hasCanon {
		s.alias[absKey] = canonKey
		if resolvedKey != absKey {
			delete(s.storage, absKey)
		}
	}

	if stored == m && stored.Stage() == StageUnresolved {
		for _, cb := range s.newModuleCBs {
			cb(stored)
		}
	}

	// Every slot this put replaced hands its waiters over: those the
	// stored module satisfies resolve now, the rest move to newSlot.
	for _, old := range dedupSlots(oldPlain, oldCanon) {
		if old == newSlot {
			continue
		}
		s.resolveWaiters(old, stored)
		newSlot.waiters = append(newSlot.waiters, old.waiters...)
		old.waiters = nil
	}

	if stored == m && stored.Stage() != StageUnresolved {
		for _, cb := range s.anyPromoted[stored.Stage()] {
			cb(stored)
		}
	}

	return stored
}

func dedupSlots(a, b *slot) []*slot {
	switch {
	case a == nil && b == nil:
		return nil
	case a == nil:
		return []*slot{b}
	case b == nil || a == b:
		return []*slot{a}
	default:
		return []*slot{a, b}
	}
}

func (s *Set) resolveWaiters(sl *slot, final *Module) {
	if final.Stage() == StageError {
		for _, w := range sl.waiters {
			w.ch <- final
			close(w.ch)
		}
		sl.waiters = nil
		return
	}
	remaining := sl.waiters[:0]
	for _, w := range sl.waiters {
		if final.Stage() >= w.stage {
			w.ch <- final
			close(w.ch)
		} else {
			remaining = append(remaining, w)
		}
	}
	sl.waiters = remaining
}

// Fetch resolves specifier against fc.ImporterID's base, constructs a
// tentative id, and puts a fresh unresolved module — unless one is
// already present under the same absolute key for the same importer,
// in which case the existing module's future is returned instead. The
// returned future resolves once the module reaches RESOLVED or ERROR;
// callers that need a later stage call OnPromotedTo again themselves.
func (s *Set) Fetch(specifier string, fc FetchContext) (<-chan *Module, error) {
	abs, err := s.resolve(specifier, fc.ImporterID.Abs())
	if err != nil {
		return nil, err
	}

	var ch chan *Module
	s.exec(func() {
		if existing := s.slotFor(modid.Tentative(abs)); existing != nil &&
			existing.mod.FetchCtx != nil &&
			existing.mod.FetchCtx.ImporterID.Equal(fc.ImporterID) {
			ch = s.futureLocked(existing.mod, StageResolved)
			return
		}
		tentative := &Module{ID: modid.Tentative(abs), FetchCtx: &fc}
		stored := s.putLocked(tentative)
		ch = s.futureLocked(stored, StageResolved)
	})
	return ch, nil
}

// futureLocked must run on the mailbox goroutine; it is the body
// OnPromotedTo uses, factored out so Fetch can call it within its own
// already-locked exec.
func (s *Set) futureLocked(m *Module, stage Stage) chan *Module {
	sl := s.slotFor(m.ID)
	if sl == nil {
		sl = &slot{mod: m}
		s.storage[m.ID.Abs()] = sl
	}
	cur := sl.mod
	if cur.Stage() >= stage || cur.Stage() == StageError {
		out := make(chan *Module, 1)
		out <- cur
		close(out)
		return out
	}
	out := make(chan *Module, 1)
	sl.waiters = append(sl.waiters, waiter{stage: stage, ch: out})
	return out
}
