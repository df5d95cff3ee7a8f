package fetch

import (
	"context"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
)

// Filesystem is the default fetcher: it understands file:// URLs
// (and schemeless filesystem paths, resolved against the process's
// working directory; base is not used) and declines — returns
// NotUnderstood — for anything else, letting the chain fall through
// to another provider.
type Filesystem struct{}

func (Filesystem) Canonicalize(_ context.Context, absURL, _ string, _ Fetcher) Outcome[string] {
	path, ok := filePath(absURL)
	if !ok {
		return NotUnderstood[string]()
	}
	clean, err := filepath.Abs(path)
	if err != nil {
		return Err[string](fmt.Errorf("fetch: canonicalize %s: %w", absURL, err))
	}
	return Understood(toFileURL(clean))
}

func (Filesystem) List(_ context.Context, glob, _ string, _ Fetcher) Outcome[[]string] {
	path, ok := filePath(glob)
	if !ok {
		return NotUnderstood[[]string]()
	}
	matches, err := filepath.Glob(path)
	if err != nil {
		return Err[[]string](fmt.Errorf("fetch: list %s: %w", glob, err))
	}
	urls := make([]string, len(matches))
	for i, m := range matches {
		abs, err := filepath.Abs(m)
		if err != nil {
			return Err[[]string](fmt.Errorf("fetch: list %s: %w", glob, err))
		}
		urls[i] = toFileURL(abs)
	}
	return Understood(urls)
}

func (Filesystem) Fetch(_ context.Context, canonURL, _ string, _ Fetcher) Outcome[Result] {
	path, ok := filePath(canonURL)
	if !ok {
		return NotUnderstood[Result]()
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return Err[Result](fmt.Errorf("fetch: read %s: %w", canonURL, err))
	}
	return Understood(Result{
		AbsURL: canonURL,
		Source: string(data),
		Metadata: map[string]string{
			"scheme": "file",
		},
	})
}

// filePath extracts a local filesystem path from a file:// URL, or
// treats a schemeless string as already a path.
func filePath(s string) (string, bool) {
	if strings.Contains(s, "://") {
		u, err := url.Parse(s)
		if err != nil || u.Scheme != "file" {
			return "", false
		}
		return u.Path, true
	}
	return s, true
}

func toFileURL(absPath string) string {
	return (&url.URL{Scheme: "file", Path: filepath.ToSlash(absPath)}).String()
}

var _ Fetcher = Filesystem{}
