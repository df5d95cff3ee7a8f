// Package specifier resolves a module specifier string against a
// base URL, per the node-module-style lookup algorithm pinned in
// spec §6: a bare specifier is checked against the built-in table
// first, then resolved by walking the importer's path upward
// collecting node_modules-style directories; anything else (relative,
// absolute, or already a URL) is resolved as a URL against base.
package specifier

import (
	"fmt"
	"net/url"
	"path"
	"strings"
)

// Kind classifies a resolved specifier.
type Kind uint8

const (
	KindRelative Kind = iota
	KindBuiltin
	KindBare
	KindAbsoluteURL
)

// Resolved is the outcome of a successful resolution.
type Resolved struct {
	Kind Kind
	URL  string // absolute URL, or the built-in name when Kind == KindBuiltin
}

// Error reports a specifier that could not be resolved to any
// absolute URL.
type Error struct {
	Specifier string
	Base      string
	Reason    string
}

func (e *Error) Error() string {
	return fmt.Sprintf("specifier: cannot resolve %q against %q: %s", e.Specifier, e.Base, e.Reason)
}

// Resolver resolves specifiers against a base URL.
//
// Builtins names the platform's built-in module names, checked before
// any node_modules walk. Candidates enumerates the directories whose
// node_modules subdirectory is probed for a bare specifier, from
// nearest to furthest from base — callers typically derive this by
// walking dirname(base) upward, the way Node.js's own resolution
// algorithm does (NodeModulesCandidates does exactly that); this
// package accepts the already walked list so it stays independent of
// any concrete filesystem.
type Resolver struct {
	Builtins map[string]bool

	// Candidates, given a base URL, returns the ordered list of
	// directories to try a bare specifier under. The resolver joins
	// "node_modules/<specifier>" onto each candidate in turn and asks
	// Exists whether the result exists.
	Candidates func(base string) []string

	// Exists reports whether the given URL names an existing module.
	// If nil, the resolver treats every candidate join as existing —
	// useful for tests that only exercise path construction.
	Exists func(url string) bool
}

func isBare(specifier string) bool {
	if specifier == "" {
		return false
	}
	if strings.HasPrefix(specifier, "./") || strings.HasPrefix(specifier, "../") || strings.HasPrefix(specifier, "/") {
		return false
	}
	if u, err := url.Parse(specifier); err == nil && u.IsAbs() {
		return false
	}
	return true
}

// Resolve resolves specifier relative to base.
func (r Resolver) Resolve(specifier, base string) (Resolved, error) {
	if !isBare(specifier) {
		resolved, err := resolveURL(specifier, base)
		if err != nil {
			return Resolved{}, &Error{specifier, base, err.Error()}
		}
		return Resolved{Kind: KindAbsoluteURL, URL: resolved}, nil
	}

	if r.Builtins[specifier] {
		return Resolved{Kind: KindBuiltin, URL: specifier}, nil
	}

	if r.Candidates != nil {
		for _, dir := range r.Candidates(base) {
			candidate := joinModulePath(dir, specifier)
			if r.Exists == nil || r.Exists(candidate) {
				return Resolved{Kind: KindBare, URL: candidate}, nil
			}
		}
	}

	return Resolved{}, &Error{specifier, base, "not a built-in and not found in any node_modules directory"}
}

func resolveURL(specifier, base string) (string, error) {
	baseURL, err := url.Parse(base)
	if err != nil {
		return "", fmt.Errorf("invalid base URL: %w", err)
	}
	ref, err := url.Parse(specifier)
	if err != nil {
		return "", fmt.Errorf("invalid specifier: %w", err)
	}
	return baseURL.ResolveReference(ref).String(), nil
}

func joinModulePath(dir, specifier string) string {
	if strings.Contains(dir, "://") {
		u, err := url.Parse(dir)
		if err == nil {
			u.Path = path.Join(u.Path, "node_modules", specifier)
			return u.String()
		}
	}
	return path.Join(dir, "node_modules", specifier)
}

// NodeModulesCandidates returns a Candidates function that walks the
// directory containing baseURL upward to the filesystem root,
// yielding each ancestor directory in turn (the caller's Resolver
// joins "node_modules/<specifier>" onto each).
func NodeModulesCandidates() func(base string) []string {
	return func(base string) []string {
		dir := path.Dir(strings.TrimPrefix(base, "file://"))
		var dirs []string
		for {
			dirs = append(dirs, dir)
			parent := path.Dir(dir)
			if parent == dir {
				break
			}
			dir = parent
		}
		return dirs
	}
}
