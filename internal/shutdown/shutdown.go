// Package shutdown implements the two-stage cooperative shutdown
// protocol: the first SIGINT/SIGTERM sets the Shared State's shutdown
// latch and lets workers drain cooperatively; an identical second signal
// exits immediately, bypassing cleanup. Grounded on the teacher's
// internal/app.App signal-handling block (signal.Notify on
// os.Interrupt/syscall.SIGTERM), extended here to distinguish the first
// signal from a forcing second one.
package shutdown

import (
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/atomic"
)

// Latch is the subset of *state.State the handler needs.
type Latch interface {
	Shutdown()
}

// Handler installs the two-stage signal handling for the lifetime of a
// run and can be torn down with Stop.
type Handler struct {
	sigCh   chan os.Signal
	started atomic.Bool
}

// Install registers the signal handler. onFirstSignal is invoked once,
// after the shutdown latch is set, from the handler's own goroutine
// (typically used to print the cooperative-shutdown warning line).
func Install(latch Latch, onFirstSignal func()) *Handler {
	h := &Handler{sigCh: make(chan os.Signal, 2)}
	signal.Notify(h.sigCh, os.Interrupt, syscall.SIGTERM)

	go func() {
		for range h.sigCh {
			if h.started.CAS(false, true) {
				latch.Shutdown()
				if onFirstSignal != nil {
					onFirstSignal()
				}
				continue
			}
			// Second signal: unconditional immediate exit, no cleanup.
			os.Exit(0)
		}
	}()

	return h
}

// Stop unregisters the signal handler. Safe to call once, after the run
// has finished joining its workers.
func (h *Handler) Stop() {
	signal.Stop(h.sigCh)
	close(h.sigCh)
}
