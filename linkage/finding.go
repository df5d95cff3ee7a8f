// Package linkage implements the import/export extractor: a pure
// walk over an ast.File that emits Findings describing every
// declaration-style and require-style import and export, with each
// bound symbol classified moot/eager/runtime/none by its nearest
// leading @prebake.* comment.
package linkage

// Kind distinguishes an import finding from an export finding.
type Kind uint8

const (
	KindImport Kind = iota
	KindExport
)

func (k Kind) String() string {
	if k == KindExport {
		return "export"
	}
	return "import"
}

// LinkType distinguishes declaration-style linkage (import/export
// statements) from require-style linkage (require() calls and
// exports-object assignments).
type LinkType uint8

const (
	LinkDeclaration LinkType = iota
	LinkRequireLike
)

func (l LinkType) String() string {
	if l == LinkRequireLike {
		return "require-like"
	}
	return "declaration"
}

// Stage classifies a bound symbol by its nearest @prebake.* leading
// comment; StageNone means no annotation was found.
type Stage uint8

const (
	StageNone Stage = iota
	StageMoot
	StageEager
	StageRuntime
)

func (s Stage) String() string {
	switch s {
	case StageMoot:
		return "moot"
	case StageEager:
		return "eager"
	case StageRuntime:
		return "runtime"
	}
	return "none"
}

// Name sentinels used in Symbol.Remote / Symbol.Local, per spec's
// "remote: name|default|*|none, local: name|*|none".
const (
	NameDefault = "default"
	NameStar    = "*"
	NameNone    = ""
)

// Symbol is one bound name within a Finding.
type Symbol struct {
	Remote string
	Local  string
	Stage  Stage
	Line   int
}

// Finding is one import or export finding.
type Finding struct {
	Kind         Kind
	LinkType     LinkType
	Specifier    string // "" if HasSpecifier is false
	HasSpecifier bool
	Symbols      []Symbol
}
