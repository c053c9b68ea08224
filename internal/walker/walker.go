// Package walker enumerates the regular files under a directory root in a
// deterministic order, with glob filtering and symlink-cycle protection.
package walker

import (
	"io/fs"
	"os"
	"path/filepath"
	"sort"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/cespare/xxhash/v2"

	lgerrors "github.com/standardbeagle/lgrep/internal/errors"
)

// Options filter the walk. Include and Exclude are doublestar patterns
// matched against slash-normalized paths relative to the root; directory
// exclusions match with or without a trailing slash.
type Options struct {
	Include        []string
	Exclude        []string
	FollowSymlinks bool
	MaxFileSize    int64 // 0 = no limit; larger files are filtered out
}

// Walk returns every regular file under root, sorted by path. Entries that
// cannot be read or statted are reported as partial failures, never as a
// walk abort. Repeated runs against an unmodified tree return identical
// slices: directory entries are read in sorted order and the final list is
// sorted again so the canonical order is plain string order of the paths.
//
// Symlink cycles cannot recurse forever: each directory's resolved identity
// is recorded in a visited set and a directory already seen in the current
// traversal is skipped.
func Walk(root string, opts Options) ([]string, []lgerrors.PartialFailure, error) {
	for _, p := range append(append([]string{}, opts.Include...), opts.Exclude...) {
		if !doublestar.ValidatePattern(p) {
			return nil, nil, lgerrors.NewConfigError("pattern", p, doublestar.ErrBadPattern)
		}
	}

	info, err := os.Stat(root)
	if err != nil {
		return nil, nil, lgerrors.NewFileError("stat", root, err)
	}
	if !info.IsDir() {
		return nil, nil, lgerrors.NewFileError("walk", root, fs.ErrInvalid)
	}

	w := &walker{root: root, opts: opts, visited: make(map[uint64]struct{})}
	w.walkDir(root)

	sort.Strings(w.paths)
	return w.paths, w.skipped, nil
}

type walker struct {
	root    string
	opts    Options
	visited map[uint64]struct{}
	paths   []string
	skipped []lgerrors.PartialFailure
}

func (w *walker) walkDir(dir string) {
	real, err := filepath.EvalSymlinks(dir)
	if err != nil {
		w.skip(dir, err)
		return
	}
	id := xxhash.Sum64String(real)
	if _, seen := w.visited[id]; seen {
		return
	}
	w.visited[id] = struct{}{}

	entries, err := os.ReadDir(dir) // sorted by name
	if err != nil {
		w.skip(dir, err)
		return
	}

	for _, e := range entries {
		path := filepath.Join(dir, e.Name())
		rel := w.relSlash(path)

		switch {
		case e.IsDir():
			if w.excluded(rel) || w.excluded(rel+"/") {
				continue
			}
			w.walkDir(path)

		case e.Type()&fs.ModeSymlink != 0:
			if !w.opts.FollowSymlinks {
				continue
			}
			target, err := os.Stat(path)
			if err != nil {
				w.skip(path, err)
				continue
			}
			if target.IsDir() {
				if w.excluded(rel) || w.excluded(rel+"/") {
					continue
				}
				w.walkDir(path)
				continue
			}
			if target.Mode().IsRegular() {
				w.addFile(path, rel, target)
			}

		case e.Type().IsRegular():
			info, err := e.Info()
			if err != nil {
				w.skip(path, err)
				continue
			}
			w.addFile(path, rel, info)
		}
	}
}

func (w *walker) addFile(path, rel string, info fs.FileInfo) {
	if w.excluded(rel) {
		return
	}
	if !w.included(rel) {
		return
	}
	if w.opts.MaxFileSize > 0 && info.Size() > w.opts.MaxFileSize {
		return
	}
	w.paths = append(w.paths, path)
}

func (w *walker) skip(path string, err error) {
	w.skipped = append(w.skipped, lgerrors.NewPartialFailure(path, err))
}

// relSlash returns path relative to the walk root, slash-normalized for
// pattern matching.
func (w *walker) relSlash(path string) string {
	rel, err := filepath.Rel(w.root, path)
	if err != nil {
		rel = path
	}
	return filepath.ToSlash(rel)
}

func (w *walker) excluded(rel string) bool {
	for _, p := range w.opts.Exclude {
		if ok, _ := doublestar.Match(p, rel); ok {
			return true
		}
	}
	return false
}

func (w *walker) included(rel string) bool {
	if len(w.opts.Include) == 0 {
		return true
	}
	for _, p := range w.opts.Include {
		if ok, _ := doublestar.Match(p, rel); ok {
			return true
		}
	}
	return false
}
