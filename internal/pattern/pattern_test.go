package pattern_test

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	lgerrors "github.com/standardbeagle/lgrep/internal/errors"
	"github.com/standardbeagle/lgrep/internal/pattern"
)

func TestParseEngine(t *testing.T) {
	tests := []struct {
		input   string
		want    pattern.Engine
		wantErr bool
	}{
		{"linear", pattern.EngineLinear, false},
		{"backtracking", pattern.EngineBacktracking, false},
		{"pcre2", 0, true},
		{"", 0, true},
		{"Linear", 0, true},
	}

	for _, tt := range tests {
		got, err := pattern.ParseEngine(tt.input)
		if tt.wantErr {
			assert.Error(t, err, "input %q", tt.input)
			continue
		}
		require.NoError(t, err, "input %q", tt.input)
		assert.Equal(t, tt.want, got, "input %q", tt.input)
	}
}

func TestCompile_LinearBasicMatch(t *testing.T) {
	m, err := pattern.Compile("error", pattern.EngineLinear, pattern.Options{})
	require.NoError(t, err)

	assert.Equal(t, pattern.EngineLinear, m.Engine())
	assert.Equal(t, "error", m.String())
	assert.True(t, m.MatchString("error: disk full"))
	assert.False(t, m.MatchString("ok"))
}

// TestCompile_LinearRejectsBackreference covers the engine boundary: a
// backreference must fail at compile time under the linear engine, never
// silently degrade, while the same pattern compiles and matches under the
// backtracking engine.
func TestCompile_LinearRejectsBackreference(t *testing.T) {
	_, err := pattern.Compile(`(a)\1`, pattern.EngineLinear, pattern.Options{})
	require.Error(t, err)

	var perr *lgerrors.PatternError
	require.ErrorAs(t, err, &perr)
	assert.Equal(t, "linear", perr.Engine)
	assert.Contains(t, perr.Reason, "backreference")

	m, err := pattern.Compile(`(a)\1`, pattern.EngineBacktracking, pattern.Options{})
	require.NoError(t, err)
	assert.True(t, m.MatchString("aa"))
	assert.False(t, m.MatchString("ab"))
}

func TestCompile_LinearRejectsLookaround(t *testing.T) {
	for _, expr := range []string{`foo(?=bar)`, `foo(?!bar)`, `(?<=foo)bar`, `(?<!foo)bar`} {
		_, err := pattern.Compile(expr, pattern.EngineLinear, pattern.Options{})
		var perr *lgerrors.PatternError
		require.ErrorAs(t, err, &perr, "pattern %q", expr)
		assert.Contains(t, perr.Reason, "look", "pattern %q should name the lookaround construct", expr)
	}
}

func TestCompile_BacktrackingLookaround(t *testing.T) {
	m, err := pattern.Compile(`foo(?=bar)`, pattern.EngineBacktracking, pattern.Options{})
	require.NoError(t, err)
	assert.True(t, m.MatchString("foobar"))
	assert.False(t, m.MatchString("foobaz"))

	m, err = pattern.Compile(`(?<=foo)bar`, pattern.EngineBacktracking, pattern.Options{})
	require.NoError(t, err)
	assert.True(t, m.MatchString("foobar"))
	assert.False(t, m.MatchString("bazbar"))
}

func TestCompile_InvalidSyntaxBothEngines(t *testing.T) {
	for _, engine := range []pattern.Engine{pattern.EngineLinear, pattern.EngineBacktracking} {
		_, err := pattern.Compile(`(unclosed`, engine, pattern.Options{})
		var perr *lgerrors.PatternError
		require.ErrorAs(t, err, &perr, "engine %s", engine)
		assert.Equal(t, `(unclosed`, perr.Expr)
	}
}

func TestCompile_IgnoreCaseBakedIn(t *testing.T) {
	for _, engine := range []pattern.Engine{pattern.EngineLinear, pattern.EngineBacktracking} {
		m, err := pattern.Compile("Error", engine, pattern.Options{IgnoreCase: true})
		require.NoError(t, err, "engine %s", engine)
		assert.True(t, m.MatchString("error: timeout"), "engine %s", engine)
		assert.True(t, m.MatchString("ERROR: timeout"), "engine %s", engine)

		m, err = pattern.Compile("Error", engine, pattern.Options{})
		require.NoError(t, err, "engine %s", engine)
		assert.False(t, m.MatchString("error: timeout"), "engine %s", engine)
	}
}

// Matching is a pure function of (matcher, line): repeated evaluation gives
// the same answer, including concurrent evaluation on a shared matcher.
func TestMatcher_Deterministic(t *testing.T) {
	for _, engine := range []pattern.Engine{pattern.EngineLinear, pattern.EngineBacktracking} {
		m, err := pattern.Compile(`^\s*err(or)?\b`, engine, pattern.Options{})
		require.NoError(t, err)

		lines := []string{"error: x", "  err y", "no match", "", "errors galore"}
		var first []bool
		for _, line := range lines {
			first = append(first, m.MatchString(line))
		}
		for i := 0; i < 100; i++ {
			for j, line := range lines {
				assert.Equal(t, first[j], m.MatchString(line), "engine %s line %q", engine, line)
			}
		}
	}
}

func TestMatcher_ConcurrentUse(t *testing.T) {
	m, err := pattern.Compile(`(a+)\1b`, pattern.EngineBacktracking, pattern.Options{})
	require.NoError(t, err)

	done := make(chan bool, 8)
	for i := 0; i < 8; i++ {
		go func() {
			ok := true
			for j := 0; j < 200; j++ {
				if !m.MatchString("aaaab") || m.MatchString("b") {
					ok = false
				}
			}
			done <- ok
		}()
	}
	for i := 0; i < 8; i++ {
		assert.True(t, <-done)
	}
}

func TestCompile_MatchTimeoutTreatedAsNoMatch(t *testing.T) {
	// Classic exponential blowup for a backtracking engine.
	m, err := pattern.Compile(`(a+)+$`, pattern.EngineBacktracking, pattern.Options{
		MatchTimeout: 10 * time.Millisecond,
	})
	require.NoError(t, err)

	line := ""
	for i := 0; i < 40; i++ {
		line += "a"
	}
	line += "b"

	// Must return (not hang) and report no match.
	assert.False(t, m.MatchString(line))
}

func TestCompile_UnknownEngine(t *testing.T) {
	_, err := pattern.Compile("x", pattern.Engine(42), pattern.Options{})
	var perr *lgerrors.PatternError
	require.True(t, errors.As(err, &perr))
}
