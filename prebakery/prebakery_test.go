package prebakery_test

import (
	"context"
	"fmt"
	"testing"

	"prebake.dev/ast"
	"prebake.dev/diag"
	"prebake.dev/fetch"
	"prebake.dev/modid"
	"prebake.dev/modset"
	"prebake.dev/prebakery"
)

// fakeFetcher resolves every abs URL to itself and serves source from
// a fixed table, understanding every canonicalize/fetch call and
// nothing else.
type fakeFetcher struct {
	sources map[string]string
}

func (f *fakeFetcher) Canonicalize(_ context.Context, absURL, _ string, _ fetch.Fetcher) fetch.Outcome[string] {
	return fetch.Understood(absURL)
}

func (f *fakeFetcher) List(context.Context, string, string, fetch.Fetcher) fetch.Outcome[[]string] {
	return fetch.NotUnderstood[[]string]()
}

func (f *fakeFetcher) Fetch(_ context.Context, canonURL, _ string, _ fetch.Fetcher) fetch.Outcome[fetch.Result] {
	src, ok := f.sources[canonURL]
	if !ok {
		return fetch.Err[fetch.Result](fmt.Errorf("no source for %s", canonURL))
	}
	return fetch.Understood(fetch.Result{AbsURL: canonURL, Source: src})
}

type fakeParser struct{ files map[string]*ast.File }

func (p *fakeParser) Parse(moduleID, _ string) (*ast.File, error) {
	if f, ok := p.files[moduleID]; ok {
		return f, nil
	}
	return &ast.File{}, nil
}

type fakeInstrumenter struct{}

func (fakeInstrumenter) Instrument(_ string, original *ast.File) (rewritten, swiss *ast.File, err error) {
	return &ast.File{Body: original.Body}, &ast.File{}, nil
}

func identity(specifier, _ string) (string, error) { return specifier, nil }

func TestPrebakeryRunFetchesLinksAndRewritesEntries(t *testing.T) {
	astEntry := &ast.File{Body: []ast.Stmt{
		&ast.ImportDeclaration{
			Source:  &ast.Literal{Value: "dep"},
			Default: &ast.ImportDefaultSpecifier{Local: &ast.Ident{Name: "d"}},
		},
	}}

	opts := prebakery.Options{
		BaseID:       modid.Canonical("base", "base"),
		Fetcher:      &fakeFetcher{sources: map[string]string{"entry": "entry source", "dep": "dep source"}},
		Sink:         diag.NewSink(),
		Resolve:      prebakery.Adapt(identity),
		Parser:       &fakeParser{files: map[string]*ast.File{"entry": astEntry}},
		Instrumenter: fakeInstrumenter{},
	}
	p := prebakery.New(opts)

	_, ids := p.Run([]string{"entry"}, opts.BaseID)

	entryID, ok := ids["entry"]
	if !ok {
		t.Fatal("no id recorded for entry specifier")
	}
	m, ok := p.Set().Get(entryID)
	if !ok {
		t.Fatalf("entry module %v not found in set", entryID)
	}
	if m.Stage() != modset.StageRewritten {
		t.Fatalf("entry stage = %v, errs = %v, want REWRITTEN", m.Stage(), m.Errors)
	}

	dep, ok := p.Set().Get(modid.Canonical("dep", "dep"))
	if !ok || dep.Stage() != modset.StageRewritten {
		t.Fatalf("dep = %+v, %v, want REWRITTEN", dep, ok)
	}
}

func TestPrebakeryRunSurfacesAnUnresolvableEntryAsError(t *testing.T) {
	opts := prebakery.Options{
		BaseID:       modid.Canonical("base", "base"),
		Fetcher:      &fakeFetcher{sources: map[string]string{}},
		Sink:         diag.NewSink(),
		Resolve:      prebakery.Adapt(identity),
		Parser:       &fakeParser{files: map[string]*ast.File{}},
		Instrumenter: fakeInstrumenter{},
	}
	p := prebakery.New(opts)

	_, ids := p.Run([]string{"missing"}, opts.BaseID)

	m, ok := p.Set().Get(ids["missing"])
	if !ok || m.Stage() != modset.StageError {
		t.Fatalf("missing = %+v, %v, want ERROR", m, ok)
	}
}
