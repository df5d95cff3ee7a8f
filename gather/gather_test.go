package gather_test

import (
	"context"
	"testing"

	"prebake.dev/diag"
	"prebake.dev/fetch"
	"prebake.dev/gather"
	"prebake.dev/modid"
	"prebake.dev/modset"
)

// fakeFetcher canonicalizes every abs URL in canon to the same
// canonical URL and serves identical source for it, modeling
// scenario 8.3: four distinct specifiers resolving to one module.
type fakeFetcher struct {
	canon  map[string]string
	source map[string]string
}

func (f *fakeFetcher) Canonicalize(_ context.Context, absURL, _ string, _ fetch.Fetcher) fetch.Outcome[string] {
	c, ok := f.canon[absURL]
	if !ok {
		return fetch.NotUnderstood[string]()
	}
	return fetch.Understood(c)
}

func (f *fakeFetcher) List(context.Context, string, string, fetch.Fetcher) fetch.Outcome[[]string] {
	return fetch.NotUnderstood[[]string]()
}

func (f *fakeFetcher) Fetch(_ context.Context, canonURL, _ string, _ fetch.Fetcher) fetch.Outcome[fetch.Result] {
	src, ok := f.source[canonURL]
	if !ok {
		return fetch.NotUnderstood[fetch.Result]()
	}
	return fetch.Understood(fetch.Result{AbsURL: canonURL, Source: src})
}

func TestGathererResolvesOverlappingFetchesToOneCanonicalModule(t *testing.T) {
	const canon = "file:///alert.canonical.js"
	abses := []string{
		"file:///alert(1)?base=A",
		"file:///alert(1%20)?base=A",
		"file:///alert(1)?base=B",
		"file:///alert(1%20)?base=B",
	}

	f := &fakeFetcher{canon: map[string]string{}, source: map[string]string{canon: "alert(1)"}}
	for _, abs := range abses {
		f.canon[abs] = canon
	}

	set := modset.New(func(specifier, base string) (string, error) { return specifier, nil })
	g := gather.New(set, f, diag.NewSink())
	g.Start()

	importer := modid.Tentative("file:///root.js")
	var futures []<-chan *modset.Module
	for _, abs := range abses {
		ch, err := set.Fetch(abs, modset.FetchContext{ImporterID: importer})
		if err != nil {
			t.Fatalf("Fetch(%s): %v", abs, err)
		}
		futures = append(futures, ch)
	}

	for i, ch := range futures {
		got := <-ch
		if got.Stage() != modset.StageResolved {
			t.Fatalf("future %d stage = %v, errs = %v", i, got.Stage(), got.Errors)
		}
		if got.Source == nil || *got.Source != "alert(1)" {
			t.Errorf("future %d source = %v, want %q", i, got.Source, "alert(1)")
		}
	}

	final, ok := set.Get(modid.Canonical(abses[0], canon))
	if !ok || final.Stage() != modset.StageResolved || *final.Source != "alert(1)" {
		t.Fatalf("final canonical lookup = %+v, %v", final, ok)
	}
}

func TestGathererPublishesErrorWhenFetcherCannotCanonicalize(t *testing.T) {
	f := &fakeFetcher{canon: map[string]string{}, source: map[string]string{}}
	set := modset.New(func(specifier, base string) (string, error) { return specifier, nil })
	g := gather.New(set, f, diag.NewSink())
	g.Start()

	importer := modid.Tentative("file:///root.js")
	ch, err := set.Fetch("file:///missing.js", modset.FetchContext{ImporterID: importer})
	if err != nil {
		t.Fatalf("Fetch: %v", err)
	}

	got := <-ch
	if got.Stage() != modset.StageError {
		t.Fatalf("stage = %v, want ERROR when the fetcher chain never understands the specifier", got.Stage())
	}
}
