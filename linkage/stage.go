package linkage

import (
	"strings"

	"prebake.dev/ast"
)

const (
	tagMoot    = "@prebake.moot"
	tagEager   = "@prebake.eager"
	tagRuntime = "@prebake.runtime"
)

// stageOf scans n's leading comments for a @prebake.* tag, last match
// wins within the comment list. It returns StageNone if n is nil or
// carries no recognized tag.
func stageOf(n ast.Node) Stage {
	if n == nil {
		return StageNone
	}
	stage := StageNone
	for _, c := range n.LeadingComments() {
		switch tagIn(c.Text) {
		case tagMoot:
			stage = StageMoot
		case tagEager:
			stage = StageEager
		case tagRuntime:
			stage = StageRuntime
		}
	}
	return stage
}

// tagIn reports which @prebake.* tag (if any) appears in a comment's
// text, tolerating surrounding comment punctuation.
func tagIn(text string) string {
	for _, tag := range [...]string{tagMoot, tagEager, tagRuntime} {
		if strings.Contains(text, tag) {
			return tag
		}
	}
	return ""
}

// stageWithFallback extracts a stage from the first of candidates that
// carries one, preferring the most specific (first) candidate. A
// symbol's stage comes from its own leading comment or, failing that,
// the enclosing specifier's.
func stageWithFallback(candidates ...ast.Node) Stage {
	for _, c := range candidates {
		if s := stageOf(c); s != StageNone {
			return s
		}
	}
	return StageNone
}
