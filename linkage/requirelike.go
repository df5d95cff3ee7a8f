package linkage

import "prebake.dev/ast"

// asRequireCall reports whether e is a call to an unqualified
// "require" with a single argument, and if so returns the call node.
func asRequireCall(e ast.Expr) (*ast.CallExpression, bool) {
	call, ok := e.(*ast.CallExpression)
	if !ok || len(call.Args) != 1 {
		return nil, false
	}
	callee, ok := call.Callee.(*ast.Ident)
	if !ok || callee.Name != "require" {
		return nil, false
	}
	return call, true
}

// requireLiteral extracts the string literal argument of a require()
// call, refusing to resolve a dynamic specifier.
func requireLiteral(call *ast.CallExpression) (*ast.Literal, bool) {
	lit, ok := call.Args[0].(*ast.Literal)
	return lit, ok
}

// requireBindingFindings handles "const x = require('lit')" and its
// destructured forms. It returns nil if decl does not consist solely
// of require() bindings with a static specifier.
func requireBindingFindings(decl *ast.VariableDeclaration) []Finding {
	var findings []Finding
	for _, d := range decl.Decls {
		if d.Init == nil {
			continue
		}
		call, ok := asRequireCall(d.Init)
		if !ok {
			continue
		}
		lit, ok := requireLiteral(call)
		if !ok {
			continue
		}
		symbols := destructureFromObject(d.ID, d, lit)
		findings = append(findings, Finding{
			Kind:         KindImport,
			LinkType:     LinkRequireLike,
			HasSpecifier: true,
			Specifier:    lit.Value,
			Symbols:      symbols,
		})
	}
	return findings
}

// bareRequireFinding handles "require('lit');" used purely for its
// side effects, with no bound symbols.
func bareRequireFinding(stmt *ast.ExpressionStatement) (Finding, bool) {
	call, ok := asRequireCall(stmt.Expr)
	if !ok {
		return Finding{}, false
	}
	lit, ok := requireLiteral(call)
	if !ok {
		return Finding{}, false
	}
	return Finding{
		Kind:         KindImport,
		LinkType:     LinkRequireLike,
		HasSpecifier: true,
		Specifier:    lit.Value,
	}, true
}

// exportsAssignmentFindings handles "exports.prop = value" and
// "exports = { ... }", the latter including namespace-spread
// re-exports ("...require('lit')" inside the object literal).
func exportsAssignmentFindings(stmt *ast.ExpressionStatement) ([]Finding, bool) {
	assign, ok := stmt.Expr.(*ast.AssignmentExpression)
	if !ok || assign.Operator != "=" {
		return nil, false
	}

	if member, ok := assign.Left.(*ast.MemberExpression); ok {
		obj, ok := member.Object.(*ast.Ident)
		if !ok || obj.Name != "exports" || member.Computed {
			return nil, false
		}
		prop, ok := member.Property.(*ast.Ident)
		if !ok {
			return nil, false
		}
		return []Finding{{
			Kind:     KindExport,
			LinkType: LinkRequireLike,
			Symbols: []Symbol{{
				Remote: prop.Name,
				Local:  prop.Name,
				Stage:  stageWithFallback(prop, member, assign),
				Line:   prop.Line(),
			}},
		}}, true
	}

	target, ok := assign.Left.(*ast.Ident)
	if !ok || target.Name != "exports" {
		return nil, false
	}
	obj, ok := assign.Right.(*ast.ObjectExpression)
	if !ok {
		return nil, false
	}

	var symbols []Symbol
	var reExports []Finding
	for _, prop := range obj.Properties {
		if prop.Spread != nil {
			if call, ok := asRequireCall(prop.Spread); ok {
				if lit, ok := requireLiteral(call); ok {
					reExports = append(reExports, Finding{
						Kind:         KindExport,
						LinkType:     LinkRequireLike,
						HasSpecifier: true,
						Specifier:    lit.Value,
						Symbols: []Symbol{{
							Remote: NameStar,
							Local:  NameStar,
							Stage:  stageWithFallback(lit, prop),
							Line:   prop.Line(),
						}},
					})
				}
			}
			continue
		}
		symbols = append(symbols, Symbol{
			Remote: prop.Key.Name,
			Local:  prop.Key.Name,
			Stage:  stageWithFallback(prop.Key, prop),
			Line:   prop.Key.Line(),
		})
	}

	findings := []Finding{{
		Kind:     KindExport,
		LinkType: LinkRequireLike,
		Symbols:  symbols,
	}}
	return append(findings, reExports...), true
}

// boundTopLevelNames collects every name bound directly at module
// top level, used to check whether "require" is shadowed before
// treating any require(...) call as linkage rather than an ordinary
// call to a local function of that name. Nested scopes are not
// tracked; this is a module-level approximation.
func boundTopLevelNames(file *ast.File) map[string]bool {
	names := map[string]bool{}
	add := func(syms []Symbol) {
		for _, s := range syms {
			if s.Local != "" && s.Local != NameStar {
				names[s.Local] = true
			}
		}
	}
	var walkDecl func(stmt ast.Stmt)
	walkDecl = func(stmt ast.Stmt) {
		switch d := stmt.(type) {
		case *ast.ImportDeclaration:
			if d.Default != nil {
				names[d.Default.Local.Name] = true
			}
			for _, n := range d.Named {
				names[n.Local.Name] = true
			}
			if d.Namespace != nil {
				names[d.Namespace.Local.Name] = true
			}
		case *ast.VariableDeclaration:
			for _, decl := range d.Decls {
				add(bindingNamesOnly(decl.ID))
			}
		case *ast.FunctionDeclaration:
			if d.Name != nil {
				names[d.Name.Name] = true
			}
		case *ast.ExportNamedDeclaration:
			if d.Declaration != nil {
				walkDecl(d.Declaration)
			}
		}
	}
	for _, stmt := range file.Body {
		walkDecl(stmt)
	}
	return names
}
