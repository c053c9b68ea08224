// Package pattern compiles search patterns into immutable line matchers.
//
// Two engines with mutually incompatible semantics are offered behind one
// call shape. The linear engine (stdlib regexp, RE2) guarantees matching in
// time linear in the input and rejects backreferences and lookaround at
// compile time. The backtracking engine (regexp2) accepts full lookaround
// and backreferences; its matching time is unbounded and pathological
// patterns can blow up exponentially — an accepted, documented trade-off.
package pattern

import (
	"fmt"
	"regexp"
	"time"

	"github.com/dlclark/regexp2"

	lgerrors "github.com/standardbeagle/lgrep/internal/errors"
)

// Engine selects the matching semantics a pattern is compiled for.
type Engine int

const (
	// EngineLinear matches in time linear in input length; no
	// backreferences or lookaround.
	EngineLinear Engine = iota

	// EngineBacktracking supports lookahead, lookbehind and
	// backreferences; matching time is unbounded.
	EngineBacktracking
)

// String returns the CLI spelling of the engine
func (e Engine) String() string {
	switch e {
	case EngineLinear:
		return "linear"
	case EngineBacktracking:
		return "backtracking"
	default:
		return fmt.Sprintf("engine(%d)", int(e))
	}
}

// ParseEngine parses the CLI spelling of an engine name
func ParseEngine(s string) (Engine, error) {
	switch s {
	case "linear":
		return EngineLinear, nil
	case "backtracking":
		return EngineBacktracking, nil
	default:
		return EngineLinear, fmt.Errorf("unknown engine %q (want linear or backtracking)", s)
	}
}

// Options control how a pattern is compiled. Case folding is baked into the
// compiled matcher so no per-line normalization happens at match time.
type Options struct {
	IgnoreCase bool

	// MatchTimeout caps a single backtracking match attempt. Zero means
	// no limit. Ignored by the linear engine, which needs no cap.
	MatchTimeout time.Duration
}

// Matcher is a compiled pattern. Implementations are immutable after Compile
// and safe to share across any number of goroutines without locking.
type Matcher interface {
	// MatchString reports whether one line of text matches the pattern.
	MatchString(line string) bool

	// Engine identifies the semantics the matcher was compiled under.
	Engine() Engine

	// String returns the original pattern text.
	String() string
}

// Compile turns a pattern into an immutable Matcher for the chosen engine.
// A pattern the engine cannot express fails here with *errors.PatternError —
// a backreference under the linear engine is a compile failure, never a
// silent downgrade.
func Compile(expr string, engine Engine, opts Options) (Matcher, error) {
	switch engine {
	case EngineLinear:
		return compileLinear(expr, opts)
	case EngineBacktracking:
		return compileBacktracking(expr, opts)
	default:
		return nil, lgerrors.NewPatternError(expr, engine.String(), "unknown engine", nil)
	}
}

type linearMatcher struct {
	expr string
	re   *regexp.Regexp
}

func compileLinear(expr string, opts Options) (Matcher, error) {
	src := expr
	if opts.IgnoreCase {
		src = "(?i)" + src
	}
	re, err := regexp.Compile(src)
	if err != nil {
		// RE2 already rejected the pattern; name the construct when a
		// backtracking-only feature is the likely cause.
		if c := BacktrackingConstruct(expr); c != "" {
			reason := fmt.Sprintf("%s is not supported by the linear engine", c)
			return nil, lgerrors.NewPatternError(expr, EngineLinear.String(), reason, err)
		}
		return nil, lgerrors.NewPatternError(expr, EngineLinear.String(), "", err)
	}
	return &linearMatcher{expr: expr, re: re}, nil
}

func (m *linearMatcher) MatchString(line string) bool { return m.re.MatchString(line) }
func (m *linearMatcher) Engine() Engine               { return EngineLinear }
func (m *linearMatcher) String() string               { return m.expr }

type backtrackingMatcher struct {
	expr string
	re   *regexp2.Regexp
}

func compileBacktracking(expr string, opts Options) (Matcher, error) {
	ropts := regexp2.None
	if opts.IgnoreCase {
		ropts |= regexp2.IgnoreCase
	}
	re, err := regexp2.Compile(expr, ropts)
	if err != nil {
		return nil, lgerrors.NewPatternError(expr, EngineBacktracking.String(), "", err)
	}
	if opts.MatchTimeout > 0 {
		re.MatchTimeout = opts.MatchTimeout
	}
	return &backtrackingMatcher{expr: expr, re: re}, nil
}

func (m *backtrackingMatcher) MatchString(line string) bool {
	// The only error regexp2 returns from a match run is the timeout.
	// A line that cannot be decided inside the cap counts as no match.
	ok, err := m.re.MatchString(line)
	return err == nil && ok
}

func (m *backtrackingMatcher) Engine() Engine { return EngineBacktracking }
func (m *backtrackingMatcher) String() string { return m.expr }
