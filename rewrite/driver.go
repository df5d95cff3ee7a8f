// Package rewrite implements the rewriter driver: it drives each
// resolved module through parse → link → transform, maintaining a
// per-module job whose state machine tracks dependency resolution and
// cycle-tolerant completion.
package rewrite

import (
	"fmt"
	"sync"

	"prebake.dev/diag"
	"prebake.dev/linkage"
	"prebake.dev/modid"
	"prebake.dev/modset"
)

// Driver owns every job and reacts to module-set promotions.
type Driver struct {
	set    *modset.Set
	parser Parser
	instr  Instrumenter
	sink   *diag.Sink

	mu   sync.Mutex
	jobs map[string]*job
}

// New creates a Driver bound to set, parser, and instr. sink receives
// a diagnostic for every parse failure, dependency failure, and
// recorded self-cycle.
func New(set *modset.Set, parser Parser, instr Instrumenter, sink *diag.Sink) *Driver {
	return &Driver{set: set, parser: parser, instr: instr, sink: sink, jobs: make(map[string]*job)}
}

// Start registers the driver with its Set: every module promoted to
// RESOLVED gets a job; every module promoted to ERROR fails its job
// (and fans the failure out to reverse-deps).
func (d *Driver) Start() {
	// Both callbacks run synchronously on the module set's own mailbox
	// goroutine; they must not call back into the Set from there (that
	// would deadlock against the very goroutine they're running on), so
	// each one hands off to a fresh goroutine immediately.
	d.set.OnAnyPromotedTo(modset.StageResolved, func(m *modset.Module) {
		go func() {
			d.mu.Lock()
			defer d.mu.Unlock()
			d.advanceUnstarted(d.jobFor(m))
		}()
	})
	d.set.OnAnyPromotedTo(modset.StageError, func(m *modset.Module) {
		go func() {
			d.mu.Lock()
			defer d.mu.Unlock()
			j := d.jobFor(m)
			d.fail(j, fmt.Errorf("module errored: %v", m.Errors))
		}()
	})
}

// jobFor returns m's job, creating it (as unstarted) if this is the
// first time the driver has seen m's identity. Must be called with
// mu held.
func (d *Driver) jobFor(m *modset.Module) *job {
	key := m.ID.Key()
	if j, ok := d.jobs[key]; ok {
		return j
	}
	j := newJob(m.ID)
	d.jobs[key] = j
	return j
}

func withModule(base *modset.Module, mutate func(*modset.Module)) *modset.Module {
	cp := *base
	cp.Errors = append([]error(nil), base.Errors...)
	mutate(&cp)
	return &cp
}

// advanceUnstarted runs the unstarted → started transition: parse,
// extract, and submit a fetch for every finding carrying a specifier.
// Must be called with mu held.
func (d *Driver) advanceUnstarted(j *job) {
	if j.state != stateUnstarted {
		return
	}
	m, ok := d.set.Get(j.id)
	if !ok || m.Source == nil {
		return
	}

	file, err := d.parser.Parse(j.id.Key(), *m.Source)
	if err != nil {
		d.fail(j, fmt.Errorf("parse failure: %w", err))
		return
	}
	j.state = stateStarted
	d.set.Put(withModule(m, func(cp *modset.Module) { cp.OriginalAST = file }))

	findings := linkage.Extract(file)
	for _, f := range findings {
		if !f.HasSpecifier {
			continue
		}
		d.submitDep(j, f)
	}

	if j.unresolved == 0 {
		d.advanceStartedToSatisfied(j)
	}
}

func findingLine(f linkage.Finding) int {
	for _, s := range f.Symbols {
		if s.Line > 0 {
			return s.Line
		}
	}
	return 0
}

// submitDep fetches the module for one specifier finding and arranges
// for onDepResolved to run, off the driver's own goroutine, once the
// future delivers. Must be called with mu held.
func (d *Driver) submitDep(j *job, f linkage.Finding) {
	line := findingLine(f)
	ch, err := d.set.Fetch(f.Specifier, modset.FetchContext{ImporterID: j.id, Line: line})
	if err != nil {
		d.sink.Errorf(j.id.Key(), line, "cannot resolve specifier %q: %v", f.Specifier, err)
		d.set.Put(&modset.Module{ID: modid.Tentative(f.Specifier), Errors: []error{err}})
		j.depFailed = true
		return
	}
	j.deps[f.Specifier] = &depEdge{specifier: f.Specifier}
	j.unresolved++
	go func() {
		dep := <-ch
		d.onDepResolved(j, f.Specifier, dep)
	}()
}

func (d *Driver) onDepResolved(j *job, specifier string, dep *modset.Module) {
	d.mu.Lock()
	defer d.mu.Unlock()

	edge := j.deps[specifier]
	edge.mod = dep
	depJob := d.jobFor(dep)
	edge.job = depJob
	depJob.addReverseDep(j)
	j.unresolved--

	if dep.Stage() == modset.StageError {
		j.depFailed = true
	}

	if j.unresolved == 0 && j.state == stateStarted {
		d.advanceStartedToSatisfied(j)
	}
}

// advanceStartedToSatisfied runs the started → satisfied transition
// once every outgoing fetch has published. A failed dependency fails
// the job outright; otherwise the job attempts its own cycle-tolerant
// completion walk and nudges its reverse-deps to retry theirs. Must be
// called with mu held.
func (d *Driver) advanceStartedToSatisfied(j *job) {
	if j.state != stateStarted {
		return
	}
	if j.depFailed {
		d.fail(j, fmt.Errorf("a dependency of %s failed to resolve", j.id.Key()))
		return
	}
	j.state = stateSatisfied
	d.tryComplete(j)
	d.recheckReverseDeps(j)
}

// walkComplete reports whether j can be deemed complete given the
// current states of its dependency jobs, tolerating cycles: a dep
// already on the current walk's stack is treated as complete for the
// purpose of this walk, and cyclic records that this happened
// somewhere along the walk rooted at j.
func walkComplete(j *job) (ready, cyclic bool) {
	stack := make(map[*job]bool)
	var visit func(cur *job) bool
	visit = func(cur *job) bool {
		if cur.state == stateComplete {
			return true
		}
		if stack[cur] {
			cyclic = true
			return true
		}
		if cur.state != stateSatisfied {
			return false
		}
		stack[cur] = true
		defer delete(stack, cur)
		for _, edge := range cur.deps {
			if edge.job == nil {
				return false
			}
			if !visit(edge.job) {
				return false
			}
		}
		return true
	}
	return visit(j), cyclic
}

// tryComplete attempts the satisfied → complete transition. Must be
// called with mu held.
func (d *Driver) tryComplete(j *job) {
	if j.state != stateSatisfied {
		return
	}
	ready, cyclic := walkComplete(j)
	if !ready {
		return
	}
	if cyclic {
		j.recursivelyDependsOnSelf = true
		d.sink.Infof(j.id.Key(), 0, "module recursively depends on itself through an export-all cycle")
	}
	d.complete(j)
}

// complete runs the satisfied → complete transition's side effect:
// instrumentation, then publishing the rewritten module. Must be
// called with mu held.
func (d *Driver) complete(j *job) {
	j.state = stateComplete

	m, ok := d.set.Get(j.id)
	if !ok || m.OriginalAST == nil {
		d.fail(j, fmt.Errorf("module %s reached complete without an original AST", j.id.Key()))
		return
	}

	rewritten, swiss, err := d.instr.Instrument(j.id.Key(), m.OriginalAST)
	if err != nil {
		d.fail(j, fmt.Errorf("instrumentation failure: %w", err))
		return
	}
	d.set.Put(withModule(m, func(cp *modset.Module) {
		cp.RewrittenAST = rewritten
		cp.SwissAST = swiss
	}))

	d.recheckReverseDeps(j)
}

// recheckReverseDeps retries the satisfied → complete walk for every
// reverse-dep currently sitting at satisfied — the bounded re-check a
// dep's state transition must trigger. Must be called with mu held.
func (d *Driver) recheckReverseDeps(j *job) {
	for _, rj := range j.reverseDeps {
		d.tryComplete(rj)
	}
}

// fail transitions j (and, transitively, every reverse-dep not
// already failed) to error, publishing an error module under each.
// Must be called with mu held.
func (d *Driver) fail(j *job, err error) {
	if j.state == stateError {
		return
	}
	j.state = stateError
	d.sink.Errorf(j.id.Key(), 0, "%v", err)

	if m, ok := d.set.Get(j.id); ok {
		d.set.Put(withModule(m, func(cp *modset.Module) {
			cp.Errors = append(cp.Errors, err)
		}))
	} else {
		d.set.Put(&modset.Module{ID: j.id, Errors: []error{err}})
	}

	for _, rj := range j.reverseDeps {
		d.fail(rj, fmt.Errorf("dependency %s failed: %w", j.id.Key(), err))
	}
}
