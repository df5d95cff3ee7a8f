package ast

// ImportSpecifier is one named import item: "imported as local" or
// "imported" when the two coincide.
type ImportSpecifier struct {
	Base
	Imported *Ident
	Local    *Ident
}

// ImportDefaultSpecifier is the default-import binding in
// "import Default from 'x'".
type ImportDefaultSpecifier struct {
	Base
	Local *Ident
}

// ImportNamespaceSpecifier is the "* as ns" binding in
// "import * as ns from 'x'".
type ImportNamespaceSpecifier struct {
	Base
	Local *Ident
}

// ImportDeclaration covers every declaration-style import form:
// bare, default, named, namespace, and combinations of default with
// named or namespace.
type ImportDeclaration struct {
	Base
	Source    *Literal
	Default   *ImportDefaultSpecifier
	Named     []*ImportSpecifier
	Namespace *ImportNamespaceSpecifier
}

func (*ImportDeclaration) stmtNode() {}

// ExportSpecifier is one named export item, as in "export {local as
// exported}".
type ExportSpecifier struct {
	Base
	Local    *Ident
	Exported *Ident
}

// ExportNamedDeclaration covers named re-exports ("export {a} from
// 'x'", "export {a}") and exported variable/function declarations
// ("export const a = 1", "export function f() {}").
type ExportNamedDeclaration struct {
	Base
	Specifiers  []*ExportSpecifier
	Source      *Literal // non-nil for a re-export
	Declaration Stmt     // non-nil for an exported declaration; mutually exclusive with Specifiers/Source
}

func (*ExportNamedDeclaration) stmtNode() {}

// ExportDefaultDeclaration is "export default <expr-or-declaration>".
type ExportDefaultDeclaration struct {
	Base
	Declaration Node // an Expr, or a FunctionDeclaration
}

func (*ExportDefaultDeclaration) stmtNode() {}

// ExportAllDeclaration is "export * from 'x'" or, when Exported is
// set, "export * as ns from 'x'".
type ExportAllDeclaration struct {
	Base
	Exported *Ident // nil for a plain "export * from"
	Source   *Literal
}

func (*ExportAllDeclaration) stmtNode() {}
