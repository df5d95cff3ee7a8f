package gather

import (
	"context"
	"sync/atomic"
	"testing"

	"prebake.dev/diag"
	"prebake.dev/fetch"
	"prebake.dev/modid"
	"prebake.dev/modset"
)

type countingFetcher struct {
	canon      map[string]string
	source     map[string]string
	fetchCalls int32
}

func (f *countingFetcher) Canonicalize(_ context.Context, absURL, _ string, _ fetch.Fetcher) fetch.Outcome[string] {
	c, ok := f.canon[absURL]
	if !ok {
		return fetch.NotUnderstood[string]()
	}
	return fetch.Understood(c)
}

func (f *countingFetcher) List(context.Context, string, string, fetch.Fetcher) fetch.Outcome[[]string] {
	return fetch.NotUnderstood[[]string]()
}

func (f *countingFetcher) Fetch(_ context.Context, canonURL, _ string, _ fetch.Fetcher) fetch.Outcome[fetch.Result] {
	atomic.AddInt32(&f.fetchCalls, 1)
	src, ok := f.source[canonURL]
	if !ok {
		return fetch.NotUnderstood[fetch.Result]()
	}
	return fetch.Understood(fetch.Result{AbsURL: canonURL, Source: src})
}

// A second, unrelated call to handle for the exact same
// (importer, target) quadruple must not reach the fetcher chain
// again — the gatherer's own dedup must hold independent of however
// many times it is asked to resolve the same module.
func TestHandleDedupesRepeatedQuadruple(t *testing.T) {
	fetcher := &countingFetcher{
		canon:  map[string]string{"file:///a.js": "file:///a.js"},
		source: map[string]string{"file:///a.js": "body"},
	}
	set := modset.New(func(spec, base string) (string, error) { return spec, nil })
	g := New(set, fetcher, diag.NewSink())

	m := &modset.Module{
		ID:       modid.Tentative("file:///a.js"),
		FetchCtx: &modset.FetchContext{ImporterID: modid.Tentative("file:///root.js")},
	}

	done := make(chan struct{})
	ch, ok := set.OnPromotedTo(set.Put(&modset.Module{ID: m.ID}), modset.StageResolved)
	_ = ok
	go func() { <-ch; close(done) }()

	g.handle(m)
	g.handle(m)
	<-done

	if got := atomic.LoadInt32(&fetcher.fetchCalls); got != 1 {
		t.Errorf("fetchCalls = %d, want exactly 1 for two handle() calls sharing a quadruple", got)
	}
}
