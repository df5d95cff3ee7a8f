package ast

// ObjectPatternProperty is one destructured property: "{ key: value
// = default }". Rest is the object-pattern's own catch-all and is
// carried on ObjectPattern instead, mirroring the rest-spread shape of
// object literals.
type ObjectPatternProperty struct {
	Base
	Key     *Ident
	Value   Pattern
	Default Expr // non-nil if this property has "= default"
}

// ObjectPattern is "{ a, b: c, ...rest }".
type ObjectPattern struct {
	Base
	Properties []*ObjectPatternProperty
	Rest       *Ident // non-nil for a trailing "...rest"
}

func (*ObjectPattern) patternNode() {}

// ArrayPattern is "[a, b, ...rest]".
type ArrayPattern struct {
	Base
	Elements []Pattern
	Rest     Pattern
}

func (*ArrayPattern) patternNode() {}

// AssignmentPattern is "pattern = default", a destructured element or
// parameter with a default value.
type AssignmentPattern struct {
	Base
	Left  Pattern
	Right Expr
}

func (*AssignmentPattern) patternNode() {}
