// Package modid defines the module-identifier value type: a pair of
// URLs that starts tentative (absolute URL only) and becomes
// canonical once a fetcher assigns it a canonicalized URL.
package modid

// ID identifies a module. A tentative ID carries only Abs; a
// canonical ID additionally carries Canon. IDs are immutable once
// constructed — there is no mutator on this type.
type ID struct {
	abs   string
	canon string // "" if tentative
}

// Tentative constructs an ID known only by its absolute URL.
func Tentative(abs string) ID { return ID{abs: abs} }

// Canonical constructs an ID with both an absolute and a canonical
// URL.
func Canonical(abs, canon string) ID { return ID{abs: abs, canon: canon} }

// Abs returns the absolute URL.
func (id ID) Abs() string { return id.abs }

// Canon returns the canonical URL and whether the ID is canonical.
func (id ID) Canon() (string, bool) { return id.canon, id.canon != "" }

// IsCanonical reports whether id carries a canonical URL.
func (id ID) IsCanonical() bool { return id.canon != "" }

// Key returns the equality key: the canonical URL when present, else
// the absolute URL. Two IDs naming the same module compare equal by
// Key even if one is tentative and the other canonical.
func (id ID) Key() string {
	if id.canon != "" {
		return id.canon
	}
	return id.abs
}

// WithCanon returns a canonical ID sharing id's absolute URL.
func (id ID) WithCanon(canon string) ID { return ID{abs: id.abs, canon: canon} }

// Equal reports whether id and other designate the same module.
func (id ID) Equal(other ID) bool { return id.Key() == other.Key() }

func (id ID) String() string {
	if id.canon != "" {
		return id.canon
	}
	return id.abs + " (tentative)"
}
