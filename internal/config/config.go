// Package config loads CLI defaults from an optional .lgrep.toml file.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/pelletier/go-toml/v2"

	lgerrors "github.com/standardbeagle/lgrep/internal/errors"
	"github.com/standardbeagle/lgrep/internal/pattern"
	"github.com/standardbeagle/lgrep/internal/search"
	"github.com/standardbeagle/lgrep/internal/walker"
)

// FileName is the config file looked up in the search root.
const FileName = ".lgrep.toml"

type Config struct {
	Engine     string `toml:"engine"`
	IgnoreCase bool   `toml:"ignore_case"`

	Performance Performance `toml:"performance"`
	Walk        Walk        `toml:"walk"`
}

type Performance struct {
	Workers          int `toml:"workers"`            // 0 = auto-detect (NumCPU)
	ChunkThresholdMB int `toml:"chunk_threshold_mb"` // 0 = built-in default
	MatchTimeoutMs   int `toml:"match_timeout_ms"`   // backtracking engine only; 0 = none
}

type Walk struct {
	Include        []string `toml:"include"`
	Exclude        []string `toml:"exclude"`
	FollowSymlinks bool     `toml:"follow_symlinks"`
	MaxFileSizeMB  int      `toml:"max_file_size_mb"` // 0 = no limit
}

// Default returns the built-in configuration: linear engine, case-sensitive,
// auto-detected worker count, no filters.
func Default() Config {
	return Config{Engine: pattern.EngineLinear.String()}
}

// Load reads dir/.lgrep.toml on top of the defaults. A missing file is not
// an error; a malformed one is.
func Load(dir string) (Config, error) {
	cfg := Default()

	path := filepath.Join(dir, FileName)
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return cfg, nil
	}
	if err != nil {
		return cfg, lgerrors.NewFileError("read", path, err)
	}
	if err := toml.Unmarshal(data, &cfg); err != nil {
		return cfg, lgerrors.NewConfigError("file", path, err)
	}
	return cfg, cfg.Validate()
}

// Validate collects every invalid field into one MultiError.
func (c Config) Validate() error {
	var errs []error

	if _, err := pattern.ParseEngine(c.Engine); err != nil {
		errs = append(errs, lgerrors.NewConfigError("engine", c.Engine, err))
	}
	if c.Performance.Workers < 0 {
		errs = append(errs, lgerrors.NewConfigError("performance.workers",
			fmt.Sprint(c.Performance.Workers), errors.New("must be >= 0")))
	}
	if c.Performance.ChunkThresholdMB < 0 {
		errs = append(errs, lgerrors.NewConfigError("performance.chunk_threshold_mb",
			fmt.Sprint(c.Performance.ChunkThresholdMB), errors.New("must be >= 0")))
	}
	if c.Performance.MatchTimeoutMs < 0 {
		errs = append(errs, lgerrors.NewConfigError("performance.match_timeout_ms",
			fmt.Sprint(c.Performance.MatchTimeoutMs), errors.New("must be >= 0")))
	}
	if c.Walk.MaxFileSizeMB < 0 {
		errs = append(errs, lgerrors.NewConfigError("walk.max_file_size_mb",
			fmt.Sprint(c.Walk.MaxFileSizeMB), errors.New("must be >= 0")))
	}

	if len(errs) == 0 {
		return nil
	}
	return lgerrors.NewMultiError(errs)
}

// Searcher builds the call-scoped searcher this configuration describes.
func (c Config) Searcher() (*search.Searcher, error) {
	engine, err := pattern.ParseEngine(c.Engine)
	if err != nil {
		return nil, lgerrors.NewConfigError("engine", c.Engine, err)
	}
	return &search.Searcher{
		Engine:         engine,
		IgnoreCase:     c.IgnoreCase,
		MatchTimeout:   time.Duration(c.Performance.MatchTimeoutMs) * time.Millisecond,
		Workers:        c.Performance.Workers,
		ChunkThreshold: int64(c.Performance.ChunkThresholdMB) * 1024 * 1024,
		Walk: walker.Options{
			Include:        c.Walk.Include,
			Exclude:        c.Walk.Exclude,
			FollowSymlinks: c.Walk.FollowSymlinks,
			MaxFileSize:    int64(c.Walk.MaxFileSizeMB) * 1024 * 1024,
		},
	}, nil
}
