// Package prebakery is the façade binding the module-set bus, the
// gatherer, and the rewriter driver into one entry point: give it a
// list of entry specifiers and get back a module set populated up to
// REWRITTEN (or ERROR) for each.
package prebakery

import (
	"prebake.dev/ast"
	"prebake.dev/recorder"
	"prebake.dev/rewrite"
)

// Parser turns a module's source into an original AST. Pinned here,
// rather than redeclared, because rewrite already owns the canonical
// shape rewrite.Driver consumes; prebakery imports rewrite, not the
// other way around, so this alias is how the façade names the same
// peer contract without creating an import cycle.
type Parser = rewrite.Parser

// Instrumenter performs the partial-evaluation transform over a
// module's complete dependency closure. See rewrite.Instrumenter.
type Instrumenter = rewrite.Instrumenter

// Reknitter consumes a module's swiss AST — the intermediate form
// carrying the holes the instrumenter left for values only known at
// sandbox-execution time — together with the recorder's compacted
// snapshot of what the sandbox observed, and produces the final AST
// requiring no further code generation. Out of scope for this repo's
// core (spec.md §1 names it a black-box peer); pinned here purely as
// the interface boundary a concrete reknitter would implement.
type Reknitter interface {
	Reknit(moduleID string, swiss *ast.File, snapshot []byte) (*ast.File, error)
}

// Sandbox executes a module's swiss AST against a live global object,
// reporting everything observed through the recorder's trap table.
// Out of scope for this repo's core, for the same reason as
// Reknitter; pinned here as the interface a concrete dynamic-language
// realm would implement.
type Sandbox interface {
	Global() recorder.Target
	Run(moduleID string, swiss *ast.File) error
}
