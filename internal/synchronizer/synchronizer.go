// Package synchronizer is the orchestrator: it seeds the Task Queue,
// spawns N workers, awaits their completion, and prints the run's
// prologue/epilogue. Adapted from the teacher's internal/app.App
// run-lifecycle shape (injectDependency / preProcess / Run /
// postProcess) — here repurposed from a long-running HTTP server into a
// one-shot run that returns a process exit code.
package synchronizer

import (
	"fmt"
	"net/http"
	"os"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/es7s/macedon/internal/printer"
	"github.com/es7s/macedon/internal/queue"
	"github.com/es7s/macedon/internal/shutdown"
	"github.com/es7s/macedon/internal/state"
	"github.com/es7s/macedon/internal/task"
	"github.com/es7s/macedon/internal/worker"
	"github.com/es7s/macedon/pkg/logger"
	"github.com/es7s/macedon/internal/parser"
)

// Exit codes for configuration failures, distinct from the --exit-code
// "some request failed" result (also 1) and the pflag option-syntax
// failure code (2, applied by the caller before Run is ever reached).
const (
	ExitOK     = 0
	ExitConfig = 1
)

// Synchronizer runs a single verification pass for the given Options.
type Synchronizer struct {
	opts task.Options
}

// New builds a Synchronizer for opts.
func New(opts task.Options) *Synchronizer {
	return &Synchronizer{opts: opts}
}

// Run executes the full sequence: parse inputs, seed the queue, run the
// workers, and print the epilogue. It returns the process exit code.
func (s *Synchronizer) Run() int {
	fileTasks, parseErr := s.parseFiles()
	if parseErr != nil {
		fmt.Fprintln(os.Stderr, parseErr)
		return ExitConfig
	}

	base := append([]task.Task{}, fileTasks...)
	for _, raw := range s.opts.EndpointURLs {
		base = append(base, task.NewTask(http.MethodGet, ensureScheme(raw), nil, "", false))
	}

	amount := s.opts.Amount
	if amount < 0 {
		amount = 0
	}
	total := int64(len(base)) * int64(amount)
	if total == 0 {
		fmt.Fprintln(os.Stderr, "macedon: no URLs provided")
		return ExitConfig
	}

	q := queue.New(int(total))
	st := state.New(s.opts.Threads)
	for _, t := range base {
		st.AddMethod(t.Method)
		for i := 0; i < amount; i++ {
			q.Enqueue(t)
		}
	}
	st.AddTotal(total)

	pr := printer.New(os.Stdout, st, s.opts.Color, s.opts.ShowID, s.opts.ShowError)
	pr.SetTotal(total)

	handler := shutdown.Install(st, pr.PrintShutdownWarning)
	defer handler.Stop()

	pool := worker.NewPool(q, st, pr, s.opts)

	pr.PrintPrologue(s.opts.Threads, total)

	before := time.Now()
	var g errgroup.Group
	for i := 0; i < s.opts.Threads; i++ {
		id := i
		g.Go(func() error {
			pool.Run(id)
			return nil
		})
	}
	_ = g.Wait()
	wallTime := time.Since(before)

	sorted := st.SortedLatencies()
	median, hasMedian := state.Median(sorted)

	pr.PrintEpilogue(printer.EpilogueData{
		Success:   st.Success(),
		Failed:    st.Failed(),
		Total:     total,
		Median:    median,
		HasMedian: hasMedian,
		WallTime:  wallTime,
	})

	if s.opts.ExitCode && st.Failed() > 0 {
		return 1
	}
	return ExitOK
}

// parseFiles parses every configured input file. If files were provided
// but none yielded a single Task, that is a fatal NoValidTasks
// configuration error.
func (s *Synchronizer) parseFiles() ([]task.Task, error) {
	if len(s.opts.Files) == 0 {
		return nil, nil
	}

	var tasks []task.Task
	for _, f := range s.opts.Files {
		parsed, err := parser.Parse(f.Name, f.Reader)
		if err != nil {
			logger.Error("%v", err)
			continue
		}
		tasks = append(tasks, parsed...)
	}

	if len(tasks) == 0 {
		return nil, fmt.Errorf("macedon: no valid tasks found in %s", fileNames(s.opts.Files))
	}
	return tasks, nil
}

func fileNames(files []task.NamedReader) string {
	names := make([]string, len(files))
	for i, f := range files {
		names[i] = f.Name
	}
	return strings.Join(names, ", ")
}

// ensureScheme prefixes a bare host/URL argument with "http://" when it
// carries no http(s) scheme.
func ensureScheme(raw string) string {
	if strings.HasPrefix(raw, "http://") || strings.HasPrefix(raw, "https://") {
		return raw
	}
	return "http://" + raw
}
