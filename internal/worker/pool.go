// Package worker implements the cooperatively-cancellable task consumer
// that performs one HTTP request at a time and reports outcomes to the
// Shared State and Printer. Adapted from the teacher's async job-forwarding
// worker pool (internal/worker.Pool in the reference otlpxy service):
// here a worker pulls directly from a pre-seeded Task Queue instead of a
// persistent job channel, and classifies each outcome (success/failure)
// rather than fire-and-forget forwarding.
package worker

import (
	"io"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/es7s/macedon/internal/printer"
	"github.com/es7s/macedon/internal/queue"
	"github.com/es7s/macedon/internal/state"
	"github.com/es7s/macedon/internal/task"
	"github.com/es7s/macedon/pkg/logger"
)

// successStatus reports whether an HTTP status code counts as ok
// (1xx or 2xx).
func successStatus(code int) bool {
	return code < 300
}

// Pool runs a fixed number of workers draining a shared Queue until it
// is empty or a cooperative shutdown is signaled.
type Pool struct {
	queue   *queue.Queue
	state   *state.State
	printer *printer.Printer
	client  *http.Client
	delay   time.Duration
}

// NewPool builds a worker pool. The shared *http.Client is sized and
// configured once from opts, the same way the teacher's forwarders size
// a single Transport from the configured worker/concurrency count.
func NewPool(q *queue.Queue, st *state.State, pr *printer.Printer, opts task.Options) *Pool {
	connectTimeout := time.Duration(opts.Timeout / 2 * float64(time.Second))
	overallTimeout := time.Duration(opts.Timeout * float64(time.Second))

	transport := &http.Transport{
		Proxy: http.ProxyFromEnvironment,
		DialContext: (&net.Dialer{
			Timeout:   connectTimeout,
			KeepAlive: 30 * time.Second,
		}).DialContext,
		ForceAttemptHTTP2:     true,
		MaxIdleConns:          opts.Threads * 2,
		MaxIdleConnsPerHost:   opts.Threads,
		MaxConnsPerHost:       opts.Threads * 2,
		IdleConnTimeout:       90 * time.Second,
		TLSHandshakeTimeout:   connectTimeout,
		ExpectContinueTimeout: 1 * time.Second,
	}
	if opts.Insecure {
		transport.TLSClientConfig = insecureTLSConfig()
	}

	client := &http.Client{
		Transport: transport,
		Timeout:   overallTimeout,
	}

	return &Pool{
		queue:   q,
		state:   st,
		printer: pr,
		client:  client,
		delay:   time.Duration(opts.Delay * float64(time.Second)),
	}
}

// Run drains the queue from worker slot id until it is empty or the
// Shared State's shutdown latch is observed, implementing the
// per-iteration protocol: shutdown check, non-blocking dequeue,
// interruptible delay, atomic request-id assignment, request execution,
// outcome classification.
func (p *Pool) Run(id int) {
	for {
		if p.state.ShuttingDown() {
			p.state.SetWorkerState(id, "dead")
			return
		}

		t, ok := p.queue.TryDequeue()
		if !ok {
			p.state.SetWorkerState(id, "dead")
			return
		}

		if p.delay > 0 {
			p.state.SetWorkerState(id, "waiting")
			if !p.sleepInterruptible(p.delay) {
				p.state.SetWorkerState(id, "dead")
				return
			}
		}

		reqID := p.state.NextRequestID()
		p.state.SetWorkerState(id, "requesting")
		logger.Debug("worker %d: requesting #%d %s %s", id, reqID, t.Method, t.URL)

		p.execute(id, reqID, t)
	}
}

func (p *Pool) execute(id int, reqID int64, t task.Task) {
	req, err := p.buildRequest(t)
	if err != nil {
		p.state.IncFailed()
		p.printer.PrintFailed(reqID, t, 0, err)
		return
	}

	before := time.Now()
	resp, err := p.client.Do(req)
	elapsed := time.Since(before)
	if err != nil {
		p.state.IncFailed()
		p.printer.PrintFailed(reqID, t, elapsed, err)
		return
	}
	defer resp.Body.Close()

	size, _ := io.Copy(io.Discard, resp.Body)
	ok := successStatus(resp.StatusCode)
	if ok {
		p.state.IncSuccess()
	} else {
		p.state.IncFailed()
	}
	p.state.RecordLatency(elapsed.Seconds())
	p.printer.PrintCompleted(reqID, t, resp.StatusCode, ok, size, elapsed)
}

func (p *Pool) buildRequest(t task.Task) (*http.Request, error) {
	var body io.Reader
	if t.HasBody {
		body = strings.NewReader(t.Body)
	}
	req, err := http.NewRequest(t.Method, t.URL, body)
	if err != nil {
		return nil, err
	}
	for k, v := range t.Headers {
		req.Header.Set(k, v)
	}
	return req, nil
}

// sleepInterruptible sleeps d in 1-second slices, checking the shutdown
// latch between slices, and returns false if shutdown was observed
// before the full delay elapsed.
func (p *Pool) sleepInterruptible(d time.Duration) bool {
	const slice = time.Second
	remaining := d
	for remaining > 0 {
		if p.state.ShuttingDown() {
			return false
		}
		s := slice
		if remaining < s {
			s = remaining
		}
		time.Sleep(s)
		remaining -= s
	}
	return !p.state.ShuttingDown()
}
