package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/urfave/cli/v2"

	"github.com/standardbeagle/lgrep/internal/config"
	"github.com/standardbeagle/lgrep/internal/scanner"
	"github.com/standardbeagle/lgrep/internal/search"
)

var Version = "0.2.0"

func main() {
	app := newApp()
	if err := app.Run(os.Args); err != nil {
		if _, ok := err.(cli.ExitCoder); !ok {
			err = cli.Exit(fmt.Sprintf("lgrep: %v", err), 2)
		}
		cli.HandleExitCoder(err)
	}
}

func newApp() *cli.App {
	return &cli.App{
		Name:                   "lgrep",
		Usage:                  "Parallel line search over files and directory trees",
		ArgsUsage:              "<pattern> <path>",
		Version:                Version,
		HideVersion:            true, // frees -v for --invert-match, as grep spells it
		UseShortOptionHandling: true,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "engine",
				Aliases: []string{"e"},
				Usage:   "Regex engine: linear (RE2, linear time) or backtracking (lookaround/backrefs)",
			},
			&cli.BoolFlag{
				Name:    "ignore-case",
				Aliases: []string{"i"},
				Usage:   "Case-insensitive matching",
			},
			&cli.BoolFlag{
				Name:    "count",
				Aliases: []string{"c"},
				Usage:   "Print only a count of matching lines",
			},
			&cli.BoolFlag{
				Name:    "invert-match",
				Aliases: []string{"v"},
				Usage:   "Report lines that do NOT match the pattern",
			},
			&cli.BoolFlag{
				Name:  "json",
				Usage: "Emit results as JSON",
			},
			&cli.IntFlag{
				Name:    "workers",
				Aliases: []string{"j"},
				Usage:   "Worker pool size (0 = one per CPU)",
			},
			&cli.StringSliceFlag{
				Name:  "include",
				Usage: "Only scan files matching glob patterns (e.g. --include '**/*.go'); replaces the config file's include list",
			},
			&cli.StringSliceFlag{
				Name:  "exclude",
				Usage: "Skip files matching glob patterns (e.g. --exclude 'vendor/**'); adds to the config file's exclude list",
			},
			&cli.BoolFlag{
				Name:  "follow-symlinks",
				Usage: "Follow symbolic links while walking directories",
			},
			&cli.BoolFlag{
				Name:    "watch",
				Aliases: []string{"w"},
				Usage:   "Re-run the search when files under a directory target change",
			},
		},
		Action: runSearch,
	}
}

// loadConfigWithOverrides loads .lgrep.toml from the target's directory and
// applies CLI flag overrides on top.
func loadConfigWithOverrides(c *cli.Context, target string) (config.Config, error) {
	dir := target
	if info, err := os.Stat(target); err == nil && !info.IsDir() {
		dir = filepath.Dir(target)
	}

	cfg, err := config.Load(dir)
	if err != nil {
		return cfg, err
	}

	if c.IsSet("engine") {
		cfg.Engine = c.String("engine")
	}
	if c.IsSet("ignore-case") {
		cfg.IgnoreCase = c.Bool("ignore-case")
	}
	if c.IsSet("workers") {
		cfg.Performance.Workers = c.Int("workers")
	}
	if include := c.StringSlice("include"); len(include) > 0 {
		cfg.Walk.Include = include
	}
	if exclude := c.StringSlice("exclude"); len(exclude) > 0 {
		cfg.Walk.Exclude = append(cfg.Walk.Exclude, exclude...)
	}
	if c.IsSet("follow-symlinks") {
		cfg.Walk.FollowSymlinks = c.Bool("follow-symlinks")
	}

	return cfg, cfg.Validate()
}

func runSearch(c *cli.Context) error {
	if c.NArg() != 2 {
		return cli.Exit("usage: lgrep [options] <pattern> <path>", 2)
	}
	pattern := c.Args().Get(0)
	target := c.Args().Get(1)

	cfg, err := loadConfigWithOverrides(c, target)
	if err != nil {
		return cli.Exit(fmt.Sprintf("lgrep: %v", err), 2)
	}
	searcher, err := cfg.Searcher()
	if err != nil {
		return cli.Exit(fmt.Sprintf("lgrep: %v", err), 2)
	}

	opts := scanner.Options{
		CountOnly:   c.Bool("count"),
		InvertMatch: c.Bool("invert-match"),
	}

	info, err := os.Stat(target)
	if err != nil {
		return cli.Exit(fmt.Sprintf("lgrep: %v", err), 2)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if info.IsDir() {
		if c.Bool("watch") {
			return watchDir(ctx, c, searcher, pattern, target, opts)
		}
		return runDirSearch(ctx, c, searcher, pattern, target, opts)
	}
	if c.Bool("watch") {
		return cli.Exit("lgrep: --watch requires a directory target", 2)
	}
	return runFileSearch(ctx, c, searcher, pattern, target, opts)
}

func runFileSearch(ctx context.Context, c *cli.Context, s *search.Searcher, pattern, path string, opts scanner.Options) error {
	start := time.Now()
	res, err := s.SearchFile(ctx, pattern, path, opts)
	if err != nil {
		return cli.Exit(fmt.Sprintf("lgrep: %v", err), 2)
	}
	return displayResult(c, pattern, res, nil, time.Since(start))
}

func runDirSearch(ctx context.Context, c *cli.Context, s *search.Searcher, pattern, root string, opts scanner.Options) error {
	start := time.Now()
	res, err := s.SearchDir(ctx, pattern, root, opts)
	if err != nil {
		return cli.Exit(fmt.Sprintf("lgrep: %v", err), 2)
	}
	return displayResult(c, pattern, res.Result, res.Failures, time.Since(start))
}
