package linkage

import "prebake.dev/ast"

// Extract walks a module's top-level statements and returns one
// Finding per import and export encountered, in source order. It
// never mutates file.
func Extract(file *ast.File) []Finding {
	requireShadowed := boundTopLevelNames(file)["require"]

	var findings []Finding
	for _, stmt := range file.Body {
		switch s := stmt.(type) {
		case *ast.ImportDeclaration:
			findings = append(findings, importDeclarationFinding(s))
		case *ast.ExportNamedDeclaration:
			findings = append(findings, exportNamedFindings(s)...)
		case *ast.ExportDefaultDeclaration:
			findings = append(findings, exportDefaultFinding(s))
		case *ast.ExportAllDeclaration:
			findings = append(findings, exportAllFinding(s))
		case *ast.VariableDeclaration:
			if !requireShadowed {
				findings = append(findings, requireBindingFindings(s)...)
			}
		case *ast.ExpressionStatement:
			if !requireShadowed {
				if f, ok := bareRequireFinding(s); ok {
					findings = append(findings, f)
				}
			}
			if fs, ok := exportsAssignmentFindings(s); ok {
				findings = append(findings, fs...)
			}
		}
	}
	return findings
}

func importDeclarationFinding(s *ast.ImportDeclaration) Finding {
	var symbols []Symbol
	if s.Default != nil {
		symbols = append(symbols, Symbol{
			Remote: NameDefault,
			Local:  s.Default.Local.Name,
			Stage:  stageWithFallback(s.Default.Local, s.Default, s.Source),
			Line:   s.Default.Local.Line(),
		})
	}
	for _, n := range s.Named {
		symbols = append(symbols, Symbol{
			Remote: n.Imported.Name,
			Local:  n.Local.Name,
			Stage:  stageWithFallback(n.Local, n, s.Source),
			Line:   n.Local.Line(),
		})
	}
	if s.Namespace != nil {
		symbols = append(symbols, Symbol{
			Remote: NameStar,
			Local:  s.Namespace.Local.Name,
			Stage:  stageWithFallback(s.Namespace.Local, s.Namespace, s.Source),
			Line:   s.Namespace.Local.Line(),
		})
	}
	return Finding{
		Kind:         KindImport,
		LinkType:     LinkDeclaration,
		HasSpecifier: true,
		Specifier:    s.Source.Value,
		Symbols:      symbols,
	}
}

func exportNamedFindings(s *ast.ExportNamedDeclaration) []Finding {
	if s.Declaration != nil {
		switch d := s.Declaration.(type) {
		case *ast.VariableDeclaration:
			var symbols []Symbol
			for _, decl := range d.Decls {
				symbols = append(symbols, bindingNamesOnly(decl.ID, decl)...)
			}
			return []Finding{{Kind: KindExport, LinkType: LinkDeclaration, Symbols: symbols}}
		case *ast.FunctionDeclaration:
			if d.Name == nil {
				return nil
			}
			return []Finding{{
				Kind:     KindExport,
				LinkType: LinkDeclaration,
				Symbols: []Symbol{{
					Remote: d.Name.Name,
					Local:  d.Name.Name,
					Stage:  stageWithFallback(d.Name, d),
					Line:   d.Name.Line(),
				}},
			}}
		default:
			return nil
		}
	}

	var symbols []Symbol
	for _, spec := range s.Specifiers {
		remote := spec.Local.Name
		candidates := []ast.Node{spec.Local, spec}
		if spec.Exported != nil {
			remote = spec.Exported.Name
			candidates = []ast.Node{spec.Exported, spec.Local, spec}
		}
		if s.Source != nil {
			candidates = append(candidates, s.Source)
		}
		symbols = append(symbols, Symbol{
			Remote: remote,
			Local:  spec.Local.Name,
			Stage:  stageWithFallback(candidates...),
			Line:   spec.Local.Line(),
		})
	}
	f := Finding{Kind: KindExport, LinkType: LinkDeclaration, Symbols: symbols}
	if s.Source != nil {
		f.HasSpecifier = true
		f.Specifier = s.Source.Value
	}
	return []Finding{f}
}

func exportDefaultFinding(s *ast.ExportDefaultDeclaration) Finding {
	if fn, ok := s.Declaration.(*ast.FunctionDeclaration); ok {
		local := NameNone
		var line int
		candidates := []ast.Node{fn}
		if fn.Name != nil {
			local = fn.Name.Name
			line = fn.Name.Line()
			candidates = []ast.Node{fn.Name, fn}
		}
		return Finding{
			Kind:     KindExport,
			LinkType: LinkDeclaration,
			Symbols: []Symbol{{
				Remote: NameDefault,
				Local:  local,
				Stage:  stageWithFallback(candidates...),
				Line:   line,
			}},
		}
	}
	return Finding{
		Kind:     KindExport,
		LinkType: LinkDeclaration,
		Symbols: []Symbol{{
			Remote: NameDefault,
			Local:  NameNone,
			Stage:  stageOf(s.Declaration),
			Line:   s.Declaration.Line(),
		}},
	}
}

func exportAllFinding(s *ast.ExportAllDeclaration) Finding {
	remote := NameStar
	candidates := []ast.Node{s, s.Source}
	if s.Exported != nil {
		remote = s.Exported.Name
		candidates = []ast.Node{s.Exported, s, s.Source}
	}
	return Finding{
		Kind:         KindExport,
		LinkType:     LinkDeclaration,
		HasSpecifier: true,
		Specifier:    s.Source.Value,
		Symbols: []Symbol{{
			Remote: remote,
			Local:  NameStar,
			Stage:  stageWithFallback(candidates...),
			Line:   s.Line(),
		}},
	}
}
