// Package ast defines the node shapes the prebakery's core is allowed
// to inspect: the AST contract pinned in spec §6. A concrete
// parser/printer for the target language is a black-box peer (out of
// scope); this package only fixes the shapes that linkage and rewrite
// walk over. Anything else flows through as Opaque and is never
// inspected.
package ast

// Comment is a single leading comment attached to a declaration or a
// destructuring element, the home of @prebake.* stage annotations.
type Comment struct {
	Text string
	Line int
}

// Node is implemented by every node this package defines.
type Node interface {
	Line() int
	LeadingComments() []Comment
}

// Base is embedded by every concrete node type. Its fields are
// exported so callers (chiefly tests, since the concrete parser is a
// black-box peer) can build AST literals directly.
type Base struct {
	AtLine  int
	Leading []Comment
}

func (b Base) Line() int                  { return b.AtLine }
func (b Base) LeadingComments() []Comment { return b.Leading }

// Stmt is implemented by every statement-level node.
type Stmt interface {
	Node
	stmtNode()
}

// Expr is implemented by every expression-level node.
type Expr interface {
	Node
	exprNode()
}

// Pattern is implemented by every binding-target node: plain
// identifiers and the destructuring forms (object, array, rest,
// assignment-with-default).
type Pattern interface {
	Node
	patternNode()
}

// Opaque wraps any node shape the core does not need to inspect. It
// satisfies Stmt so it can appear wherever a statement is expected
// without the walker special-casing it.
type Opaque struct {
	Base
	Kind string
}

func (Opaque) stmtNode() {}

// File is the root of a parsed module.
type File struct {
	Body []Stmt
}

// Ident is a plain identifier. It is both an Expr (a reference) and a
// Pattern (a simple binding target).
type Ident struct {
	Base
	Name string
}

func (*Ident) exprNode()    {}
func (*Ident) patternNode() {}

// Literal is a literal value; in the shapes this package cares about
// it is always a string, naming an import/require specifier.
type Literal struct {
	Base
	Value string
}

func (*Literal) exprNode() {}
