package config_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/standardbeagle/lgrep/internal/config"
	lgerrors "github.com/standardbeagle/lgrep/internal/errors"
	"github.com/standardbeagle/lgrep/internal/pattern"
)

func TestDefault(t *testing.T) {
	cfg := config.Default()
	assert.Equal(t, "linear", cfg.Engine)
	assert.False(t, cfg.IgnoreCase)
	assert.Zero(t, cfg.Performance.Workers)
	require.NoError(t, cfg.Validate())
}

func TestLoad_MissingFileIsDefault(t *testing.T) {
	cfg, err := config.Load(t.TempDir())
	require.NoError(t, err)
	assert.Equal(t, config.Default(), cfg)
}

func TestLoad_FromTOML(t *testing.T) {
	dir := t.TempDir()
	content := `
engine = "backtracking"
ignore_case = true

[performance]
workers = 4
chunk_threshold_mb = 8
match_timeout_ms = 250

[walk]
include = ["**/*.log"]
exclude = ["tmp/**"]
follow_symlinks = true
max_file_size_mb = 64
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, config.FileName), []byte(content), 0o644))

	cfg, err := config.Load(dir)
	require.NoError(t, err)
	assert.Equal(t, "backtracking", cfg.Engine)
	assert.True(t, cfg.IgnoreCase)
	assert.Equal(t, 4, cfg.Performance.Workers)
	assert.Equal(t, []string{"**/*.log"}, cfg.Walk.Include)
	assert.Equal(t, []string{"tmp/**"}, cfg.Walk.Exclude)

	s, err := cfg.Searcher()
	require.NoError(t, err)
	assert.Equal(t, pattern.EngineBacktracking, s.Engine)
	assert.Equal(t, 250*time.Millisecond, s.MatchTimeout)
	assert.Equal(t, int64(8*1024*1024), s.ChunkThreshold)
	assert.Equal(t, int64(64*1024*1024), s.Walk.MaxFileSize)
	assert.True(t, s.Walk.FollowSymlinks)
}

func TestLoad_MalformedTOML(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, config.FileName), []byte("engine = ["), 0o644))

	_, err := config.Load(dir)
	var cerr *lgerrors.ConfigError
	require.ErrorAs(t, err, &cerr)
}

func TestValidate_CollectsEveryBadField(t *testing.T) {
	cfg := config.Default()
	cfg.Engine = "pcre2"
	cfg.Performance.Workers = -1
	cfg.Walk.MaxFileSizeMB = -5

	err := cfg.Validate()
	require.Error(t, err)

	var merr *lgerrors.MultiError
	require.ErrorAs(t, err, &merr)
	assert.Len(t, merr.Errors, 3)
}

func TestSearcher_RejectsUnknownEngine(t *testing.T) {
	cfg := config.Default()
	cfg.Engine = "nfa"

	_, err := cfg.Searcher()
	var cerr *lgerrors.ConfigError
	require.ErrorAs(t, err, &cerr)
}
