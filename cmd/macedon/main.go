// Command macedon is a concurrent HTTP endpoint availability verifier: it
// requests a set of URLs (given directly or listed in request files) a
// configurable number of times across a worker pool, and reports
// per-request outcomes plus a closing pass/fail summary.
package main

import (
	"fmt"
	"os"

	"github.com/es7s/macedon/internal/config"
	"github.com/es7s/macedon/internal/synchronizer"
)

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(argv []string) int {
	result := config.Parse(argv)
	if result.Err != nil {
		fmt.Fprintln(os.Stderr, result.Err)
		if result.ExitCode != 0 {
			return result.ExitCode
		}
		return synchronizer.ExitConfig
	}
	if result.ExitNow {
		return synchronizer.ExitOK
	}

	return synchronizer.New(result.Options).Run()
}
