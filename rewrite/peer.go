package rewrite

import "prebake.dev/ast"

// Parser is the black-box collaborator that turns a module's source
// into an original AST. The concrete parser for the target language
// is out of this package's scope; only the node shapes in package ast
// are ever inspected.
type Parser interface {
	Parse(moduleID, source string) (*ast.File, error)
}

// Instrumenter is the black-box collaborator that performs the
// partial-evaluation transform once a job's dependency closure is
// complete: it consumes the original AST and produces the rewritten
// AST (no further dynamic code generation) alongside the "swiss" AST
// (the intermediate form carrying the holes the reknitter later
// fills).
type Instrumenter interface {
	Instrument(moduleID string, original *ast.File) (rewritten, swiss *ast.File, err error)
}
