package main

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/urfave/cli/v2"

	lgerrors "github.com/standardbeagle/lgrep/internal/errors"
	"github.com/standardbeagle/lgrep/internal/scanner"
)

// displayResult prints a scan result and maps it to grep-style exit codes:
// 0 when at least one line matched, 1 when none did, 2 on error.
func displayResult(c *cli.Context, pattern string, res scanner.Result, failures []lgerrors.PartialFailure, elapsed time.Duration) error {
	if c.Bool("json") {
		output := map[string]interface{}{
			"query":   pattern,
			"time_ms": float64(elapsed.Microseconds()) / 1000.0,
			"count":   res.Matches(),
		}
		if !res.CountOnly {
			output["results"] = res.Records
		}
		if len(failures) > 0 {
			output["failures"] = failures
		}
		if err := json.NewEncoder(os.Stdout).Encode(output); err != nil {
			return cli.Exit(fmt.Sprintf("lgrep: %v", err), 2)
		}
		return exitForCount(res.Matches())
	}

	for _, f := range failures {
		fmt.Fprintf(os.Stderr, "lgrep: skipped %s\n", f)
	}

	if res.CountOnly {
		fmt.Println(res.Count)
		return exitForCount(res.Count)
	}
	for _, r := range res.Records {
		fmt.Printf("%s:%d:%s\n", r.Path, r.Line, r.Text)
	}
	return exitForCount(len(res.Records))
}

func exitForCount(n int) error {
	if n == 0 {
		return cli.Exit("", 1)
	}
	return nil
}
