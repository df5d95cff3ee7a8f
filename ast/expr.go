package ast

// CallExpression is "callee(args...)". Used both for ordinary calls
// and, when Callee is an unbound Ident named "require", for
// require-style linkage.
type CallExpression struct {
	Base
	Callee Expr
	Args   []Expr
}

func (*CallExpression) exprNode() {}

// MemberExpression is "object.property" (Computed == false) or
// "object[property]" (Computed == true). Used to recognize
// "exports.foo = ..." single-property exports.
type MemberExpression struct {
	Base
	Object   Expr
	Property Expr // *Ident when !Computed, else an arbitrary Expr
	Computed bool
}

func (*MemberExpression) exprNode() {}

// AssignmentExpression is "left = right" (or a destructuring
// variant); used to recognize "exports.foo = value" and
// "exports = {...}".
type AssignmentExpression struct {
	Base
	Left     Expr
	Right    Expr
	Operator string // "=" for the forms this package inspects
}

func (*AssignmentExpression) exprNode() {}

// SpreadElement is "...expr", used both for rest bindings in
// destructuring and for namespace-spread re-exports
// ("...require('lit')" inside an object literal).
type SpreadElement struct {
	Base
	Arg Expr
}

func (*SpreadElement) exprNode() {}

// ObjectProperty is one key: value pair of an object expression, or
// a spread entry when Spread is set (Key and Value are then unused;
// Spread holds the spread expression).
type ObjectProperty struct {
	Base
	Key    *Ident
	Value  Expr
	Spread Expr // non-nil for "...expr" entries
}

// ObjectExpression is "{ key: value, ... }", used to recognize the
// bulk "exports = { ... }" export form.
type ObjectExpression struct {
	Base
	Properties []*ObjectProperty
}

func (*ObjectExpression) exprNode() {}
