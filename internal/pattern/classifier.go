package pattern

import (
	"regexp"
)

// construct pairs a detection regex with the human-readable name of the
// backtracking-only feature it detects. Detection runs on the pattern text
// itself, so it only needs to be precise enough to name the construct in a
// compile error; the engines remain the source of truth for acceptance.
type construct struct {
	probe *regexp.Regexp
	name  string
}

var backtrackingConstructs = []construct{
	// Lookarounds
	{regexp.MustCompile(`\(\?=`), "lookahead (?=...)"},
	{regexp.MustCompile(`\(\?!`), "negative lookahead (?!...)"},
	{regexp.MustCompile(`\(\?<=`), "lookbehind (?<=...)"},
	{regexp.MustCompile(`\(\?<!`), "negative lookbehind (?<!...)"},

	// Backreferences
	{regexp.MustCompile(`\\[1-9]\d*`), "numbered backreference"},
	{regexp.MustCompile(`\\k<\w+>`), "named backreference"},

	// Atomic groups
	{regexp.MustCompile(`\(\?>`), "atomic group (?>...)"},

	// Conditional groups
	{regexp.MustCompile(`\(\?\(`), "conditional group (?(...)...)"},

	// Possessive quantifiers
	{regexp.MustCompile(`[*+?}]\+`), "possessive quantifier"},
}

// BacktrackingConstruct returns the name of the first construct in expr that
// only the backtracking engine supports, or "" if none is present. Escaped
// metacharacters are masked first so `\\1` inside a literal `\\` escape does
// not trip the backreference probe.
func BacktrackingConstruct(expr string) string {
	masked := maskEscapedLiterals(expr)
	for _, c := range backtrackingConstructs {
		if c.probe.MatchString(masked) {
			return c.name
		}
	}
	return ""
}

// maskEscapedLiterals replaces `\\` pairs so the probes never read the second
// backslash of an escaped backslash as the start of a backreference.
func maskEscapedLiterals(expr string) string {
	out := make([]byte, 0, len(expr))
	for i := 0; i < len(expr); i++ {
		if expr[i] == '\\' && i+1 < len(expr) && expr[i+1] == '\\' {
			out = append(out, '.', '.')
			i++
			continue
		}
		out = append(out, expr[i])
	}
	return string(out)
}
