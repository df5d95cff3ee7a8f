package rewrite_test

import (
	"fmt"
	"testing"

	"prebake.dev/ast"
	"prebake.dev/diag"
	"prebake.dev/modid"
	"prebake.dev/modset"
	"prebake.dev/rewrite"
)

type fakeParser struct {
	files map[string]*ast.File
}

func (p *fakeParser) Parse(moduleID, _ string) (*ast.File, error) {
	f, ok := p.files[moduleID]
	if !ok {
		return nil, fmt.Errorf("no fixture for %s", moduleID)
	}
	return f, nil
}

type fakeInstrumenter struct{}

func (fakeInstrumenter) Instrument(_ string, original *ast.File) (rewritten, swiss *ast.File, err error) {
	return &ast.File{Body: original.Body}, &ast.File{}, nil
}

// autoGather stands in for the gatherer: every newly unresolved module
// whose abs URL is a key in sources is immediately resolved with that
// source; anything else errors. This isolates the rewriter driver's
// own behavior from gather's.
func autoGather(set *modset.Set, sources map[string]string) {
	set.OnNewModule(func(m *modset.Module) {
		go func() {
			src, ok := sources[m.ID.Abs()]
			if !ok {
				set.Put(&modset.Module{ID: m.ID, Errors: []error{fmt.Errorf("no source for %s", m.ID.Abs())}})
				return
			}
			set.Put(&modset.Module{
				ID:       modid.Canonical(m.ID.Abs(), m.ID.Abs()),
				FetchCtx: m.FetchCtx,
				Source:   &src,
			})
		}()
	})
}

func identity(specifier, base string) (string, error) { return specifier, nil }

func TestDriverRewritesALinearDependencyChain(t *testing.T) {
	astA := &ast.File{Body: []ast.Stmt{
		&ast.ImportDeclaration{
			Source:  &ast.Literal{Value: "B"},
			Default: &ast.ImportDefaultSpecifier{Local: &ast.Ident{Name: "b"}},
		},
	}}
	astB := &ast.File{Body: nil}

	set := modset.New(identity)
	autoGather(set, map[string]string{"A": "source A", "B": "source B"})

	parser := &fakeParser{files: map[string]*ast.File{"A": astA, "B": astB}}
	driver := rewrite.New(set, parser, fakeInstrumenter{}, diag.NewSink())
	driver.Start()

	srcA := "source A"
	entry := modid.Canonical("A", "A")
	placeholder := set.Put(&modset.Module{ID: entry, Source: &srcA})

	ch, ok := set.OnPromotedTo(placeholder, modset.StageRewritten)
	if !ok {
		t.Fatal("OnPromotedTo returned ok=false immediately")
	}

	got := <-ch
	if got.Stage() != modset.StageRewritten {
		t.Fatalf("A stage = %v, errs = %v, want REWRITTEN", got.Stage(), got.Errors)
	}
	if got.RewrittenAST == nil || got.OriginalAST == nil {
		t.Fatal("A is missing original/rewritten ASTs")
	}

	b, ok := set.Get(modid.Canonical("B", "B"))
	if !ok || b.Stage() != modset.StageRewritten {
		t.Fatalf("B = %+v, %v, want REWRITTEN", b, ok)
	}
}

func TestDriverFailsReverseDepsWhenDependencyCannotBeResolved(t *testing.T) {
	astA := &ast.File{Body: []ast.Stmt{
		&ast.ImportDeclaration{
			Source:  &ast.Literal{Value: "missing"},
			Default: &ast.ImportDefaultSpecifier{Local: &ast.Ident{Name: "m"}},
		},
	}}

	set := modset.New(identity)
	autoGather(set, map[string]string{"A": "source A"})

	parser := &fakeParser{files: map[string]*ast.File{"A": astA}}
	driver := rewrite.New(set, parser, fakeInstrumenter{}, diag.NewSink())
	driver.Start()

	srcA := "source A"
	entry := modid.Canonical("A", "A")
	placeholder := set.Put(&modset.Module{ID: entry, Source: &srcA})

	ch, ok := set.OnPromotedTo(placeholder, modset.StageError)
	if !ok {
		t.Fatal("OnPromotedTo returned ok=false immediately")
	}

	got := <-ch
	if got.Stage() != modset.StageError {
		t.Fatalf("A stage = %v, want ERROR when its only dependency never resolves", got.Stage())
	}
}

// A mutual export-all cycle (A exports-all-from B, B exports-all-from
// A) must still converge: both jobs reach complete, each flagged
// recursively-depends-on-self, with an info diagnostic recorded.
func TestDriverTreatsExportAllCycleAsComplete(t *testing.T) {
	astA := &ast.File{Body: []ast.Stmt{
		&ast.ExportAllDeclaration{Source: &ast.Literal{Value: "B"}},
	}}
	astB := &ast.File{Body: []ast.Stmt{
		&ast.ExportAllDeclaration{Source: &ast.Literal{Value: "A"}},
	}}

	set := modset.New(identity)
	autoGather(set, map[string]string{"A": "source A", "B": "source B"})

	parser := &fakeParser{files: map[string]*ast.File{"A": astA, "B": astB}}
	collector := &diag.Collector{}
	sink := diag.NewSink(collector)
	driver := rewrite.New(set, parser, fakeInstrumenter{}, sink)
	driver.Start()

	srcA := "source A"
	entry := modid.Canonical("A", "A")
	placeholder := set.Put(&modset.Module{ID: entry, Source: &srcA})

	ch, ok := set.OnPromotedTo(placeholder, modset.StageRewritten)
	if !ok {
		t.Fatal("OnPromotedTo returned ok=false immediately")
	}

	got := <-ch
	if got.Stage() != modset.StageRewritten {
		t.Fatalf("A stage = %v, errs = %v, want REWRITTEN despite the A↔B cycle", got.Stage(), got.Errors)
	}

	b, ok := set.Get(modid.Canonical("B", "B"))
	if !ok || b.Stage() != modset.StageRewritten {
		t.Fatalf("B = %+v, %v, want REWRITTEN", b, ok)
	}

	if !collector.HasSeverity(diag.Info) {
		t.Error("expected an info diagnostic recording the self-cycle")
	}
}
