package prebakery

import (
	"sync"

	"prebake.dev/diag"
	"prebake.dev/fetch"
	"prebake.dev/gather"
	"prebake.dev/modid"
	"prebake.dev/modset"
	"prebake.dev/rewrite"
)

// Options configures a Prebakery. BaseID is not read by New; Run
// resolves entry specifiers against the baseID passed to it. Fetcher
// is the chain gather dispatches canonicalize and fetch through; Sink
// receives every diagnostic raised by the gatherer and rewriter;
// Resolve turns a specifier and a base URL into an absolute URL (for
// example a function wrapping specifier.Resolver.Resolve that returns
// its Resolved.URL, converted with Adapt).
type Options struct {
	BaseID       modid.ID
	Fetcher      fetch.Fetcher
	Sink         *diag.Sink
	Resolve      modset.Resolver
	Parser       Parser
	Instrumenter Instrumenter
}

// Adapt converts a (specifier, base string) -> (url, error) resolution
// function into the modset.Resolver type Options.Resolve wants. It
// does no wrapping of its own: specifier.Resolver.Resolve, which
// returns a Resolved rather than a string, has to be wrapped by the
// caller first.
func Adapt(resolve func(specifier, base string) (string, error)) modset.Resolver {
	return modset.Resolver(resolve)
}

// Prebakery wires a module set, a gatherer, and a rewriter driver
// together and drives entry specifiers through them.
type Prebakery struct {
	set  *modset.Set
	sink *diag.Sink
}

// New constructs a Prebakery and starts its gatherer and rewriter
// driver listening on a fresh module set.
func New(opts Options) *Prebakery {
	set := modset.New(opts.Resolve)
	gather.New(set, opts.Fetcher, opts.Sink).Start()
	rewrite.New(set, opts.Parser, opts.Instrumenter, opts.Sink).Start()
	return &Prebakery{set: set, sink: opts.Sink}
}

// Set returns the module set this Prebakery drives. Useful for
// registering additional OnAnyPromotedTo/OnNewModule observers before
// or after calling Run.
func (p *Prebakery) Set() *modset.Set { return p.set }

// Run fetches every entry specifier against baseID, awaits REWRITTEN
// (or ERROR) for each, and returns the populated module set alongside
// a map from each entry specifier to the module id it resolved to.
func (p *Prebakery) Run(entries []string, baseID modid.ID) (*modset.Set, map[string]modid.ID) {
	result := make(map[string]modid.ID, len(entries))
	var mu sync.Mutex
	var wg sync.WaitGroup

	for _, specifier := range entries {
		ch, err := p.set.Fetch(specifier, modset.FetchContext{ImporterID: baseID})
		if err != nil {
			p.sink.Errorf(baseID.Key(), 0, "cannot resolve entry specifier %q: %v", specifier, err)
			continue
		}
		wg.Add(1)
		go func(specifier string, ch <-chan *modset.Module) {
			defer wg.Done()
			id := p.awaitRewritten(<-ch)
			mu.Lock()
			result[specifier] = id
			mu.Unlock()
		}(specifier, ch)
	}

	wg.Wait()
	return p.set, result
}

// awaitRewritten takes a module at or past RESOLVED and blocks until
// it (or whatever it's since become) reaches REWRITTEN or ERROR,
// returning its final id.
func (p *Prebakery) awaitRewritten(m *modset.Module) modid.ID {
	if m.Stage() == modset.StageError {
		return m.ID
	}
	ch, ok := p.set.OnPromotedTo(m, modset.StageRewritten)
	if !ok {
		// Already past REWRITTEN (e.g. OUTPUT) by the time we asked.
		if cur, found := p.set.Get(m.ID); found {
			return cur.ID
		}
		return m.ID
	}
	final := <-ch
	return final.ID
}
