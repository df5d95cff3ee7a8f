// Package modset implements the module set: the central bus modules
// flow through as they progress from unresolved to output or error.
// All mutation is serialized through a single mailbox goroutine, per
// the bus's single-owner concurrency requirement; callers never see a
// lock.
package modset

import (
	"prebake.dev/ast"
	"prebake.dev/modid"
)

// Stage is the module lifecycle's total order. ERROR compares
// strictly greater than every other stage so an error is never
// displaced by a later non-error arrival.
type Stage int

const (
	StageUnresolved Stage = iota
	StageResolved
	StageRewritten
	StageOutput
	StageError
)

func (s Stage) String() string {
	switch s {
	case StageUnresolved:
		return "unresolved"
	case StageResolved:
		return "resolved"
	case StageRewritten:
		return "rewritten"
	case StageOutput:
		return "output"
	case StageError:
		return "error"
	}
	return "invalid"
}

// FetchContext records why a module was fetched: the importer's id
// and the source line of the import/require that asked for it.
type FetchContext struct {
	ImporterID modid.ID
	Line       int
}

// Metadata is carried by every module from the id it was first
// fetched through.
type Metadata struct {
	BaseID     modid.ID
	Properties map[string]string
}

// Module is a lifecycle record. Its Stage is derived from which
// fields are populated, never stored redundantly. Fields accumulate
// as a module progresses; none is ever cleared.
type Module struct {
	ID       modid.ID
	Metadata Metadata
	FetchCtx *FetchContext

	Source *string

	// OriginalAST is attached alongside Source once the parser peer
	// has run; SwissAST is the rewriter's intermediate partially
	// evaluated form, attached alongside RewrittenAST — neither gates
	// a stage transition on its own.
	OriginalAST  *ast.File
	RewrittenAST *ast.File
	SwissAST     *ast.File
	OutputAST    *ast.File

	Errors []error
}

// Stage computes the module's current lifecycle stage from its
// populated fields.
func (m *Module) Stage() Stage {
	switch {
	case len(m.Errors) > 0:
		return StageError
	case m.OutputAST != nil:
		return StageOutput
	case m.RewrittenAST != nil:
		return StageRewritten
	case m.Source != nil:
		return StageResolved
	default:
		return StageUnresolved
	}
}

// clone returns a shallow copy, used when a put must merge diagnostics
// into an existing module without mutating a value the caller might
// still hold a reference to.
func (m *Module) clone() *Module {
	cp := *m
	cp.Errors = append([]error(nil), m.Errors...)
	return &cp
}
