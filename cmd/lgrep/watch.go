package main

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/urfave/cli/v2"

	"github.com/standardbeagle/lgrep/internal/scanner"
	"github.com/standardbeagle/lgrep/internal/search"
)

const watchDebounce = 250 * time.Millisecond

// watchDir runs the directory search, then re-runs it whenever something
// under root changes, until the context is cancelled. Events are debounced
// so editor save bursts trigger one re-run.
func watchDir(ctx context.Context, c *cli.Context, s *search.Searcher, pattern, root string, opts scanner.Options) error {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return cli.Exit(fmt.Sprintf("lgrep: %v", err), 2)
	}
	defer w.Close()

	if err := addWatchesRecursive(w, root); err != nil {
		return cli.Exit(fmt.Sprintf("lgrep: %v", err), 2)
	}

	runOnce := func() {
		start := time.Now()
		res, err := s.SearchDir(ctx, pattern, root, opts)
		if err != nil {
			fmt.Fprintf(os.Stderr, "lgrep: %v\n", err)
			return
		}
		// Exit-code mapping is meaningless while watching; print only.
		_ = displayResult(c, pattern, res.Result, res.Failures, time.Since(start))
	}

	runOnce()

	// One timer, explicitly drained on Stop, so a stale fire can never
	// queue a duplicate re-run.
	var timer *time.Timer
	var timerC <-chan time.Time

	for {
		select {
		case <-ctx.Done():
			return nil

		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}
			// New directories need their own watch before their
			// contents produce events.
			if ev.Op.Has(fsnotify.Create) {
				if info, err := os.Stat(ev.Name); err == nil && info.IsDir() {
					_ = addWatchesRecursive(w, ev.Name)
				}
			}
			if timer == nil {
				timer = time.NewTimer(watchDebounce)
				timerC = timer.C
			} else {
				if !timer.Stop() {
					select {
					case <-timerC:
					default:
					}
				}
				timer.Reset(watchDebounce)
			}

		case err, ok := <-w.Errors:
			if !ok {
				return nil
			}
			fmt.Fprintf(os.Stderr, "lgrep: watch: %v\n", err)

		case <-timerC:
			timer = nil
			timerC = nil
			runOnce()
		}
	}
}

func addWatchesRecursive(w *fsnotify.Watcher, root string) error {
	return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return nil // unreadable subtree; the scan reports it anyway
		}
		if d.IsDir() {
			if err := w.Add(path); err != nil {
				fmt.Fprintf(os.Stderr, "lgrep: watch %s: %v\n", path, err)
			}
		}
		return nil
	})
}
