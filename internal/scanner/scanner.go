// Package scanner streams files line by line through a compiled matcher and
// reduces the outcome to match records or a bare count.
package scanner

import (
	"bufio"
	"io"
	"os"
	"strings"

	lgerrors "github.com/standardbeagle/lgrep/internal/errors"
	"github.com/standardbeagle/lgrep/internal/pattern"
)

// MaxLineLength caps a single line. Lines are grown from a 64 KiB buffer up
// to this limit; a line at or over the limit fails the file scan with a
// read error, on the streaming and the chunked path alike.
const MaxLineLength = 16 * 1024 * 1024

const initialBufferSize = 64 * 1024

// Options select the output policy of one scan. Both flags are orthogonal to
// the pattern and freely combinable.
type Options struct {
	// CountOnly reduces the scan to a number of matching lines; no
	// records are assembled.
	CountOnly bool

	// InvertMatch reports the lines that do NOT match the pattern.
	InvertMatch bool
}

// Record is one matching (or, under invert, non-matching) line.
type Record struct {
	Path string `json:"path"`
	Line int    `json:"line"` // 1-based
	Text string `json:"text"` // line content without trailing newline
}

// Result is a tagged union: count mode carries Count, record mode carries
// Records. Never both — Records is nil whenever CountOnly is set.
type Result struct {
	CountOnly bool     `json:"count_only"`
	Count     int      `json:"count"`
	Records   []Record `json:"records,omitempty"`
}

// Matches returns the number of matched lines in either mode.
func (r Result) Matches() int {
	if r.CountOnly {
		return r.Count
	}
	return len(r.Records)
}

// ScanFile streams the file at path through m and reduces per opts.
//
// A line is content delimited by '\n'; the delimiter and a trailing '\r' are
// stripped. Line numbers are 1-based and count every line read, including
// lines excluded by the match decision. Matching runs on the raw bytes;
// record text is made valid UTF-8 by replacing undecodable sequences with
// U+FFFD, so a bad byte sequence never aborts the scan.
//
// The file handle is released before return on every path, including errors.
func ScanFile(path string, m pattern.Matcher, opts Options) (Result, error) {
	f, err := os.Open(path)
	if err != nil {
		return Result{}, lgerrors.NewFileError("open", path, err)
	}
	defer f.Close()

	res, err := scanReader(path, f, m, opts, 1)
	if err != nil {
		return Result{}, lgerrors.NewFileError("read", path, err)
	}
	return res, nil
}

// ScanLines applies the same match-and-reduce semantics to lines already in
// memory. startLine is the 1-based number of lines[0] within the original
// file; path is carried through to the emitted records. This is the scan
// primitive the aggregator uses for intra-file chunk parallelism.
func ScanLines(path string, lines []string, startLine int, m pattern.Matcher, opts Options) Result {
	res := Result{CountOnly: opts.CountOnly}
	for i, line := range lines {
		if m.MatchString(line) == opts.InvertMatch {
			continue
		}
		if opts.CountOnly {
			res.Count++
			continue
		}
		res.Records = append(res.Records, Record{
			Path: path,
			Line: startLine + i,
			Text: strings.ToValidUTF8(line, "�"),
		})
	}
	return res
}

func scanReader(path string, r io.Reader, m pattern.Matcher, opts Options, startLine int) (Result, error) {
	res := Result{CountOnly: opts.CountOnly}

	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, initialBufferSize), MaxLineLength)

	lineNum := startLine - 1
	for sc.Scan() {
		lineNum++
		line := sc.Text() // '\n' already stripped
		line = strings.TrimSuffix(line, "\r")

		if m.MatchString(line) == opts.InvertMatch {
			continue
		}
		if opts.CountOnly {
			res.Count++
			continue
		}
		res.Records = append(res.Records, Record{
			Path: path,
			Line: lineNum,
			Text: strings.ToValidUTF8(line, "�"),
		})
	}
	if err := sc.Err(); err != nil {
		return Result{}, err
	}
	return res, nil
}

// SplitLines breaks content into lines under ScanFile's line rule: '\n'
// delimits, the delimiter and a trailing '\r' are stripped, and a trailing
// newline does not produce an empty final line.
func SplitLines(content string) []string {
	if content == "" {
		return nil
	}
	content = strings.TrimSuffix(content, "\n")
	lines := strings.Split(content, "\n")
	for i, line := range lines {
		lines[i] = strings.TrimSuffix(line, "\r")
	}
	return lines
}
