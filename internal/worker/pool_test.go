package worker

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/es7s/macedon/internal/printer"
	"github.com/es7s/macedon/internal/queue"
	"github.com/es7s/macedon/internal/state"
	"github.com/es7s/macedon/internal/task"
)

func TestSuccessStatus(t *testing.T) {
	cases := map[int]bool{
		100: true,
		200: true,
		299: true,
		300: false,
		404: false,
		500: false,
	}
	for code, want := range cases {
		if got := successStatus(code); got != want {
			t.Fatalf("successStatus(%d) = %v, want %v", code, got, want)
		}
	}
}

func TestPoolRunDrainsQueueAndRecordsOutcome(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	}))
	defer srv.Close()

	q := queue.New(3)
	q.Enqueue(task.NewTask("GET", srv.URL, nil, "", false))
	q.Enqueue(task.NewTask("GET", srv.URL, nil, "", false))

	st := state.New(1)
	st.AddTotal(2)
	pr := printer.New(newDiscard(), st, task.ColorForceOff, false, false)

	opts := task.Options{Threads: 1, Timeout: 5}
	p := NewPool(q, st, pr, opts)
	p.Run(0)

	if st.Success() != 2 {
		t.Fatalf("expected 2 successes, got %d", st.Success())
	}
	if st.Failed() != 0 {
		t.Fatalf("expected 0 failures, got %d", st.Failed())
	}
}

func TestPoolRunCountsConnectionRefusedAsFailure(t *testing.T) {
	q := queue.New(1)
	q.Enqueue(task.NewTask("GET", "http://127.0.0.1:1", nil, "", false))

	st := state.New(1)
	st.AddTotal(1)
	pr := printer.New(newDiscard(), st, task.ColorForceOff, false, false)

	opts := task.Options{Threads: 1, Timeout: 2}
	p := NewPool(q, st, pr, opts)
	p.Run(0)

	if st.Failed() != 1 {
		t.Fatalf("expected 1 failure for connection refused, got %d", st.Failed())
	}
	if st.Success() != 0 {
		t.Fatalf("expected 0 successes, got %d", st.Success())
	}
}

type discard struct{}

func (discard) Write(p []byte) (int, error) { return len(p), nil }

func newDiscard() discard { return discard{} }
