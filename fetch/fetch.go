package fetch

import "context"

// Result is what a successful Fetch call returns.
type Result struct {
	AbsURL   string
	Source   string
	Metadata map[string]string
}

// Fetcher is the polymorphic collaborator the gatherer drives:
// canonicalize resolves an absolute URL to a canonical one; list
// expands a glob to canonical URLs; fetch retrieves source and
// metadata for a canonical URL. Every operation receives next, the
// continuation representing the remainder of the chain, so a fetcher
// may delegate and reinterpret the delegated result (e.g. augment
// metadata after a successful delegated fetch).
type Fetcher interface {
	Canonicalize(ctx context.Context, absURL, base string, next Fetcher) Outcome[string]
	List(ctx context.Context, glob, base string, next Fetcher) Outcome[[]string]
	Fetch(ctx context.Context, canonURL, base string, next Fetcher) Outcome[Result]
}

// Chain is an ordered sequence of Fetchers tried in order. A
// NotUnderstood outcome from one member advances to the next; any
// other outcome (Understood or Err) terminates the chain. Each member
// is given the remainder of the chain as its next, so it can delegate
// explicitly instead of relying on the driver's own advance-on-decline
// behavior.
type Chain []Fetcher

func (c Chain) tail() Chain {
	if len(c) == 0 {
		return nil
	}
	return c[1:]
}

func (c Chain) Canonicalize(ctx context.Context, absURL, base string, _ Fetcher) Outcome[string] {
	if len(c) == 0 {
		return NotUnderstood[string]()
	}
	out := c[0].Canonicalize(ctx, absURL, base, c.tail())
	if !out.IsNotUnderstood() {
		return out
	}
	return c.tail().Canonicalize(ctx, absURL, base, nil)
}

func (c Chain) List(ctx context.Context, glob, base string, _ Fetcher) Outcome[[]string] {
	if len(c) == 0 {
		return NotUnderstood[[]string]()
	}
	out := c[0].List(ctx, glob, base, c.tail())
	if !out.IsNotUnderstood() {
		return out
	}
	return c.tail().List(ctx, glob, base, nil)
}

func (c Chain) Fetch(ctx context.Context, canonURL, base string, _ Fetcher) Outcome[Result] {
	if len(c) == 0 {
		return NotUnderstood[Result]()
	}
	out := c[0].Fetch(ctx, canonURL, base, c.tail())
	if !out.IsNotUnderstood() {
		return out
	}
	return c.tail().Fetch(ctx, canonURL, base, nil)
}

var _ Fetcher = Chain(nil)
