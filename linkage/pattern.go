package linkage

import "prebake.dev/ast"

// bindingNamesOnly walks a binding pattern collecting one Symbol per
// bound identifier, with Remote equal to Local: used where the
// pattern names local variables being exported, not keys being
// pulled off some other object.
func bindingNamesOnly(pattern ast.Pattern, fallbacks ...ast.Node) []Symbol {
	switch p := pattern.(type) {
	case nil:
		return nil
	case *ast.Ident:
		return []Symbol{{
			Remote: p.Name,
			Local:  p.Name,
			Stage:  stageWithFallback(prepend(p, fallbacks)...),
			Line:   p.Line(),
		}}
	case *ast.ObjectPattern:
		var out []Symbol
		for _, prop := range p.Properties {
			out = append(out, bindingNamesOnly(prop.Value, prepend(prop, fallbacks)...)...)
		}
		if p.Rest != nil {
			out = append(out, bindingNamesOnly(p.Rest, prepend(p, fallbacks)...)...)
		}
		return out
	case *ast.ArrayPattern:
		var out []Symbol
		for _, el := range p.Elements {
			out = append(out, bindingNamesOnly(el, fallbacks...)...)
		}
		if p.Rest != nil {
			out = append(out, bindingNamesOnly(p.Rest, fallbacks...)...)
		}
		return out
	case *ast.AssignmentPattern:
		return bindingNamesOnly(p.Left, fallbacks...)
	}
	return nil
}

// destructureFromObject walks a binding pattern standing in for the
// right-hand object of a require() call: top-level names map Remote
// to the source key and Local to the bound variable. Nested patterns
// beyond the first level fall back to bindingNamesOnly, since the key
// path that produced them no longer corresponds to a single remote
// name.
func destructureFromObject(pattern ast.Pattern, fallbacks ...ast.Node) []Symbol {
	switch p := pattern.(type) {
	case *ast.Ident:
		return []Symbol{{
			Remote: NameStar,
			Local:  p.Name,
			Stage:  stageWithFallback(prepend(p, fallbacks)...),
			Line:   p.Line(),
		}}
	case *ast.ObjectPattern:
		var out []Symbol
		for _, prop := range p.Properties {
			if v, ok := prop.Value.(*ast.Ident); ok {
				out = append(out, Symbol{
					Remote: prop.Key.Name,
					Local:  v.Name,
					Stage:  stageWithFallback(prepend(v, append([]ast.Node{prop, prop.Key}, fallbacks...))...),
					Line:   v.Line(),
				})
				continue
			}
			out = append(out, bindingNamesOnly(prop.Value, prepend(prop, fallbacks)...)...)
		}
		if p.Rest != nil {
			out = append(out, Symbol{
				Remote: NameStar,
				Local:  p.Rest.Name,
				Stage:  stageWithFallback(prepend(p.Rest, prepend(p, fallbacks))...),
				Line:   p.Rest.Line(),
			})
		}
		return out
	case *ast.ArrayPattern:
		var out []Symbol
		for _, el := range p.Elements {
			out = append(out, bindingNamesOnly(el, fallbacks...)...)
		}
		if p.Rest != nil {
			out = append(out, bindingNamesOnly(p.Rest, fallbacks...)...)
		}
		return out
	}
	return nil
}

func prepend(n ast.Node, rest []ast.Node) []ast.Node {
	out := make([]ast.Node, 0, len(rest)+1)
	out = append(out, n)
	out = append(out, rest...)
	return out
}
