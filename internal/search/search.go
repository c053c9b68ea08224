// Package search runs compiled patterns over files and directory trees,
// fanning scan units out across a bounded worker pool and merging the
// partial results back into one deterministic, ordered result.
package search

import (
	"bufio"
	"context"
	"io/fs"
	"os"
	"runtime"
	"time"

	"golang.org/x/sync/errgroup"

	lgerrors "github.com/standardbeagle/lgrep/internal/errors"
	"github.com/standardbeagle/lgrep/internal/pattern"
	"github.com/standardbeagle/lgrep/internal/scanner"
	"github.com/standardbeagle/lgrep/internal/walker"
)

// DefaultChunkThreshold is the file size above which SearchFile switches
// from streaming to parallel line-chunk scanning.
const DefaultChunkThreshold = 4 * 1024 * 1024

// Searcher holds the per-call search configuration. The zero value searches
// with the linear engine, case-sensitive, one worker per CPU, no filters.
//
// A Searcher carries no state between calls: each call compiles its own
// matcher, opens its own file handles and releases everything before
// returning, so independent callers can share one Searcher freely.
type Searcher struct {
	Engine       pattern.Engine
	IgnoreCase   bool
	MatchTimeout time.Duration // backtracking engine only

	// Workers bounds the worker pool. 0 means runtime.NumCPU().
	Workers int

	// ChunkThreshold is the single-file size at which scanning is split
	// into parallel line chunks. 0 means DefaultChunkThreshold.
	ChunkThreshold int64

	// Walk filters directory enumeration.
	Walk walker.Options
}

// DirResult is a directory scan outcome: the merged result plus the per-file
// failures that were isolated instead of aborting the scan.
type DirResult struct {
	scanner.Result
	Failures []lgerrors.PartialFailure `json:"failures,omitempty"`
}

func (s *Searcher) workers() int {
	if s.Workers > 0 {
		return s.Workers
	}
	return runtime.NumCPU()
}

func (s *Searcher) chunkThreshold() int64 {
	if s.ChunkThreshold > 0 {
		return s.ChunkThreshold
	}
	return DefaultChunkThreshold
}

func (s *Searcher) compile(expr string) (pattern.Matcher, error) {
	return pattern.Compile(expr, s.Engine, pattern.Options{
		IgnoreCase:   s.IgnoreCase,
		MatchTimeout: s.MatchTimeout,
	})
}

// SearchFile scans one file. A pattern that fails to compile or a file that
// cannot be read is fatal for the call. Files at or above the chunk
// threshold are split into line chunks and scanned in parallel; the merged
// output is byte-identical to a single-threaded scan for any worker count.
func (s *Searcher) SearchFile(ctx context.Context, expr, path string, opts scanner.Options) (scanner.Result, error) {
	m, err := s.compile(expr)
	if err != nil {
		return scanner.Result{}, err
	}

	info, err := os.Stat(path)
	if err != nil {
		return scanner.Result{}, lgerrors.NewFileError("stat", path, err)
	}
	if info.IsDir() {
		return scanner.Result{}, lgerrors.NewFileError("open", path, fs.ErrInvalid)
	}

	if s.workers() == 1 || info.Size() < s.chunkThreshold() {
		return scanner.ScanFile(path, m, opts)
	}
	return s.scanFileChunked(ctx, path, m, opts)
}

// SearchDir walks root and scans every enumerated file. Per-file read errors
// are demoted to partial failures on the result; only an unusable root or a
// cancelled context fails the call. Records are merged in the walker's
// sorted path order, then line order, regardless of worker completion order.
func (s *Searcher) SearchDir(ctx context.Context, expr, root string, opts scanner.Options) (DirResult, error) {
	m, err := s.compile(expr)
	if err != nil {
		return DirResult{}, err
	}

	paths, skipped, err := walker.Walk(root, s.Walk)
	if err != nil {
		return DirResult{}, err
	}

	// Workers write into their own unit slot; ordering metadata is the
	// slot index, so the merge below never depends on completion order
	// and no shared accumulator exists to lock.
	parts := make([]scanner.Result, len(paths))
	failed := make([]error, len(paths))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(s.workers())
	for i, path := range paths {
		i, path := i, path
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			res, err := scanner.ScanFile(path, m, opts)
			if err != nil {
				failed[i] = err
				return nil
			}
			parts[i] = res
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return DirResult{}, err
	}

	out := DirResult{Result: mergeOrdered(parts, opts), Failures: skipped}
	for i, err := range failed {
		if err != nil {
			out.Failures = append(out.Failures, lgerrors.NewPartialFailure(paths[i], err))
		}
	}
	return out, nil
}

// scanFileChunked reads the whole file, partitions its lines into contiguous
// chunks and scans the chunks concurrently. Chunk start lines keep the
// 1-based numbering of the streaming path.
func (s *Searcher) scanFileChunked(ctx context.Context, path string, m pattern.Matcher, opts scanner.Options) (scanner.Result, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return scanner.Result{}, lgerrors.NewFileError("read", path, err)
	}
	lines := scanner.SplitLines(string(content))

	// The streaming path fails on lines at or over the cap; an oversized
	// line must fail identically here or the worker count would change
	// the outcome.
	for _, line := range lines {
		if len(line) >= scanner.MaxLineLength {
			return scanner.Result{}, lgerrors.NewFileError("read", path, bufio.ErrTooLong)
		}
	}

	chunks := partitionLines(len(lines), s.workers())
	parts := make([]scanner.Result, len(chunks))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(s.workers())
	for i, c := range chunks {
		i, c := i, c
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			parts[i] = scanner.ScanLines(path, lines[c.start:c.end], c.start+1, m, opts)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return scanner.Result{}, err
	}

	return mergeOrdered(parts, opts), nil
}

type span struct {
	start, end int // line indexes, end exclusive
}

// partitionLines splits n lines into at most workers contiguous spans of
// near-equal size. Never returns an empty span.
func partitionLines(n, workers int) []span {
	if n == 0 {
		return nil
	}
	if workers > n {
		workers = n
	}
	spans := make([]span, 0, workers)
	size := n / workers
	rem := n % workers
	start := 0
	for i := 0; i < workers; i++ {
		end := start + size
		if i < rem {
			end++
		}
		spans = append(spans, span{start: start, end: end})
		start = end
	}
	return spans
}

// mergeOrdered reassembles partial results in dispatch order. Counts sum;
// record slices concatenate, preserving path-then-line ordering because the
// units were dispatched in that order.
func mergeOrdered(parts []scanner.Result, opts scanner.Options) scanner.Result {
	out := scanner.Result{CountOnly: opts.CountOnly}
	for _, p := range parts {
		if opts.CountOnly {
			out.Count += p.Count
			continue
		}
		out.Records = append(out.Records, p.Records...)
	}
	return out
}
