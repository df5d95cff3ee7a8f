// Package gather implements the gatherer: the component that turns an
// unresolved module into a resolved one (or an error) by driving it
// through a fetcher chain's canonicalize and fetch operations.
package gather

import (
	"context"
	"fmt"
	"sync"

	"golang.org/x/sync/singleflight"

	"prebake.dev/diag"
	"prebake.dev/fetch"
	"prebake.dev/modid"
	"prebake.dev/modset"
)

// Gatherer subscribes to a Set's new-module events and resolves each
// one against a fetcher chain.
type Gatherer struct {
	set   *modset.Set
	chain fetch.Fetcher
	sink  *diag.Sink

	// group runs each fetch keyed on its dedup key. seen is claimed
	// under mu before group.Do is reached, so at most one call per key
	// ever gets here; seen alone is what enforces the dedup.
	group singleflight.Group

	mu   sync.Mutex
	seen map[string]bool
}

// New creates a Gatherer. chain is tried for both canonicalize and
// fetch; sink receives an error diagnostic for every module that fails
// to resolve.
func New(set *modset.Set, chain fetch.Fetcher, sink *diag.Sink) *Gatherer {
	return &Gatherer{set: set, chain: chain, sink: sink, seen: make(map[string]bool)}
}

// Start registers the gatherer with its Set. Each new module is
// handled off the mailbox goroutine, on its own goroutine, so a slow
// or blocking fetch never stalls the rest of the module set.
func (g *Gatherer) Start() {
	g.set.OnNewModule(func(m *modset.Module) {
		go g.handle(m)
	})
}

func (g *Gatherer) handle(m *modset.Module) {
	ctx := context.Background()
	base := importerBase(m)

	canon, err := canonicalize(ctx, g.chain, m.ID.Abs(), base)
	if err != nil {
		g.publishError(m, err)
		return
	}
	canonicalID := m.ID.WithCanon(canon)
	key := dedupKey(m, canonicalID)

	g.mu.Lock()
	if g.seen[key] {
		g.mu.Unlock()
		return
	}
	g.seen[key] = true
	g.mu.Unlock()

	v, err, _ := g.group.Do(key, func() (interface{}, error) {
		return fetchResult(ctx, g.chain, canon, base)
	})
	if err != nil {
		g.publishError(m, err)
		return
	}

	result := v.(fetch.Result)
	g.set.Put(&modset.Module{
		ID:       canonicalID,
		FetchCtx: m.FetchCtx,
		Metadata: modset.Metadata{BaseID: canonicalID, Properties: result.Metadata},
		Source:   &result.Source,
	})
}

func (g *Gatherer) publishError(m *modset.Module, err error) {
	if g.sink != nil {
		g.sink.Errorf(m.ID.Abs(), 0, "%v", err)
	}
	g.set.Put(&modset.Module{
		ID:       m.ID,
		FetchCtx: m.FetchCtx,
		Errors:   []error{err},
	})
}

func importerBase(m *modset.Module) string {
	if m.FetchCtx == nil {
		return ""
	}
	return m.FetchCtx.ImporterID.Abs()
}

// dedupKey builds the (importer-abs, importer-canon, target-abs,
// target-canon) quadruple a module's resolution is deduped on: once a
// given quadruple has been fetched, it is never fetched again, even by
// a later, unrelated call to handle.
func dedupKey(m *modset.Module, target modid.ID) string {
	var importerAbs, importerCanon string
	if m.FetchCtx != nil {
		importerAbs = m.FetchCtx.ImporterID.Abs()
		importerCanon, _ = m.FetchCtx.ImporterID.Canon()
	}
	targetCanon, _ := target.Canon()
	return importerAbs + "\x00" + importerCanon + "\x00" + target.Abs() + "\x00" + targetCanon
}

func canonicalize(ctx context.Context, chain fetch.Fetcher, abs, base string) (string, error) {
	out := chain.Canonicalize(ctx, abs, base, nil)
	if v, ok := out.Get(); ok {
		return v, nil
	}
	if out.IsNotUnderstood() {
		return "", fmt.Errorf("cannot canonicalize %s: not understood by any fetcher", abs)
	}
	return "", fmt.Errorf("cannot canonicalize %s: %w", abs, out.Error())
}

func fetchResult(ctx context.Context, chain fetch.Fetcher, canon, base string) (fetch.Result, error) {
	out := chain.Fetch(ctx, canon, base, nil)
	if v, ok := out.Get(); ok {
		return v, nil
	}
	if out.IsNotUnderstood() {
		return fetch.Result{}, fmt.Errorf("cannot fetch %s: not understood by any fetcher", canon)
	}
	return fetch.Result{}, fmt.Errorf("cannot fetch %s: %w", canon, out.Error())
}
