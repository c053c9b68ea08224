package pattern

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBacktrackingConstruct(t *testing.T) {
	tests := []struct {
		expr string
		want string
	}{
		{`(a)\1`, "numbered backreference"},
		{`(a)(b)\2`, "numbered backreference"},
		{`(?<name>a)\k<name>`, "named backreference"},
		{`foo(?=bar)`, "lookahead (?=...)"},
		{`foo(?!bar)`, "negative lookahead (?!...)"},
		{`(?<=foo)bar`, "lookbehind (?<=...)"},
		{`(?<!foo)bar`, "negative lookbehind (?<!...)"},
		{`(?>ab)c`, "atomic group (?>...)"},
		{`(?(1)a|b)`, "conditional group (?(...)...)"},
		{`a*+b`, "possessive quantifier"},

		// Plain patterns the linear engine handles
		{`error`, ""},
		{`^\s*err(or)?\b`, ""},
		{`[a-z]+\d{2,4}`, ""},
		{`(foo|bar)baz`, ""},

		// Escaped backslash before a digit is a literal, not a backref
		{`a\\1`, ""},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, BacktrackingConstruct(tt.expr), "pattern %q", tt.expr)
	}
}
