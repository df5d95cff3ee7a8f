package modid_test

import (
	"testing"

	"prebake.dev/modid"
)

func TestTentativeKeyIsAbs(t *testing.T) {
	id := modid.Tentative("file:///a.js")
	if id.IsCanonical() {
		t.Fatal("tentative ID must not report canonical")
	}
	if id.Key() != "file:///a.js" {
		t.Errorf("Key() = %q, want abs URL", id.Key())
	}
}

func TestCanonicalKeyIsCanon(t *testing.T) {
	id := modid.Canonical("file:///a.js", "file:///a.js?canon=1")
	if !id.IsCanonical() {
		t.Fatal("canonical ID must report canonical")
	}
	if id.Key() != "file:///a.js?canon=1" {
		t.Errorf("Key() = %q, want canon URL", id.Key())
	}
}

func TestEqualAcrossTentativeAndCanonical(t *testing.T) {
	tentative := modid.Tentative("file:///a.js")
	canonical := tentative.WithCanon("file:///a.js")
	if !tentative.Equal(canonical) {
		t.Fatal("IDs sharing a key must compare equal regardless of variant")
	}
}

func TestWithCanonPreservesAbs(t *testing.T) {
	id := modid.Tentative("file:///a.js").WithCanon("file:///a.js?x")
	if id.Abs() != "file:///a.js" {
		t.Errorf("Abs() = %q, want original absolute URL", id.Abs())
	}
}
