package rewrite

import (
	"prebake.dev/modid"
	"prebake.dev/modset"
)

// state is a job's position in the unstarted → started → satisfied →
// complete pipeline; error is reachable from any of the other four
// (complete included, when instrumentation fails).
type state uint8

const (
	stateUnstarted state = iota
	stateStarted
	stateSatisfied
	stateComplete
	stateError
)

// depEdge is one outgoing specifier fetch: present from the moment it
// is submitted to module-set, resolved once the fetch's future
// delivers a module.
type depEdge struct {
	specifier string
	mod       *modset.Module
	job       *job // the dep's own job, set once its module is known
}

// job is the rewriter driver's per-module state. Unexported: owned
// entirely by Driver, never escapes the package.
type job struct {
	id    modid.ID
	state state

	deps                     map[string]*depEdge
	unresolved               int
	depFailed                bool
	recursivelyDependsOnSelf bool

	reverseDeps []*job
}

func newJob(id modid.ID) *job {
	return &job{id: id, deps: make(map[string]*depEdge)}
}

func (j *job) addReverseDep(rj *job) {
	for _, existing := range j.reverseDeps {
		if existing == rj {
			return
		}
	}
	j.reverseDeps = append(j.reverseDeps, rj)
}
