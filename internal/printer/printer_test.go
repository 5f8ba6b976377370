package printer

import (
	"bytes"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"testing"
	"time"

	"github.com/es7s/macedon/internal/task"
)

var ansiSeq = regexp.MustCompile(`\x1b\[[0-9;]*m`)

type fakeCounter struct{ n int64 }

func (f *fakeCounter) IncPrinted() int64 {
	f.n++
	return f.n
}

func TestNonTTYOutputHasNoANSIEscapes(t *testing.T) {
	var buf bytes.Buffer
	p := New(&buf, &fakeCounter{}, task.ColorAuto, false, false)

	p.PrintPrologue(4, 1)
	p.PrintCompleted(1, task.NewTask("GET", "http://a", nil, "", false), 200, true, 123, 5*time.Millisecond)
	p.PrintEpilogue(EpilogueData{Success: 1, Failed: 0, Total: 1, Median: 0.005, HasMedian: true, WallTime: time.Second})

	if strings.ContainsRune(buf.String(), '\x1b') {
		t.Fatalf("expected no ESC bytes in non-TTY output, got:\n%s", buf.String())
	}
}

func TestPrintEpilogueReportsSuccessFraction(t *testing.T) {
	var buf bytes.Buffer
	p := New(&buf, &fakeCounter{}, task.ColorForceOff, false, false)

	p.PrintEpilogue(EpilogueData{Success: 1, Failed: 0, Total: 1, HasMedian: false, WallTime: time.Second})

	out := buf.String()
	if !strings.Contains(out, "Successful:  1/1") {
		t.Fatalf("expected epilogue to report 1/1, got:\n%s", out)
	}
	if !strings.Contains(out, "Result:      PASS") {
		t.Fatalf("expected PASS result line, got:\n%s", out)
	}
}

func TestPrintEpilogueFailReportsFAIL(t *testing.T) {
	var buf bytes.Buffer
	p := New(&buf, &fakeCounter{}, task.ColorForceOff, false, false)

	p.PrintEpilogue(EpilogueData{Success: 0, Failed: 1, Total: 1, HasMedian: false, WallTime: time.Second})

	if !strings.Contains(buf.String(), "Result:      FAIL") {
		t.Fatalf("expected FAIL result line for 0/1 success, got:\n%s", buf.String())
	}
}

func TestIDColumnWidthMatchesLog10Formula(t *testing.T) {
	cases := []struct {
		total int64
		want  int
	}{
		{0, 2},
		{1, 1},
		{9, 2},
		{10, 2},
		{99, 3},
		{100, 3},
	}
	for _, c := range cases {
		if got := idColumnWidth(c.total); got != c.want {
			t.Fatalf("idColumnWidth(%d) = %d, want %d", c.total, got, c.want)
		}
	}
}

func TestFormatBytesSIUnits(t *testing.T) {
	cases := map[int64]string{
		0:         "0B",
		999:       "999B",
		1_500:     "1.5KB",
		2_500_000: "2.5MB",
	}
	for n, want := range cases {
		if got := formatBytes(n); got != want {
			t.Fatalf("formatBytes(%d) = %q, want %q", n, got, want)
		}
	}
}

func TestPrintCompletedColoredStatusStaysPadded(t *testing.T) {
	var buf bytes.Buffer
	p := New(&buf, &fakeCounter{}, task.ColorForceOn, false, false)
	p.SetTotal(1)

	p.PrintCompleted(1, task.NewTask("GET", "http://a", nil, "", false), 200, true, 123, 5*time.Millisecond)

	out := buf.String()
	if !strings.ContainsRune(out, '\x1b') {
		t.Fatalf("expected forced color mode to emit SGR bytes, got:\n%s", out)
	}

	plain := ansiSeq.ReplaceAllString(out, "")
	wantPrefix := "200 " + fmt.Sprintf("%7s%7s", formatBytes(123), formatSeconds(0.005))
	if !strings.Contains(plain, wantPrefix) {
		t.Fatalf("expected status column padded to width 4 before coloring so Size/Elapsed stay aligned;\nplain output: %q\nwant prefix:  %q", plain, wantPrefix)
	}
}

func TestPrintFailedColoredClassStaysPaddedAndShowsElapsed(t *testing.T) {
	var buf bytes.Buffer
	p := New(&buf, &fakeCounter{}, task.ColorForceOn, false, false)
	p.SetTotal(1)

	p.PrintFailed(1, task.NewTask("GET", "http://a", nil, "", false), 5*time.Millisecond, errors.New("connection refused"))

	out := buf.String()
	plain := ansiSeq.ReplaceAllString(out, "")
	wantPrefix := "ERR        " + fmt.Sprintf("%7s", formatSeconds(0.005))
	if !strings.Contains(plain, wantPrefix) {
		t.Fatalf("expected merged status+size column padded to width 11 with Elapsed still rendered;\nplain output: %q\nwant prefix:  %q", plain, wantPrefix)
	}
}

func TestExtractErrorMessagePrefersErrno(t *testing.T) {
	err := &wrappedErr{msg: "dial tcp: [Errno 111] Connection refused"}
	got := ExtractErrorMessage(err)
	want := "[Errno 111] Connection refused"
	if got != want {
		t.Fatalf("ExtractErrorMessage() = %q, want %q", got, want)
	}
}

func TestExtractErrorMessageTruncatesTrailingQuote(t *testing.T) {
	err := &wrappedErr{msg: "OSError(111, '[Errno 111] Connection refused')"}
	got := ExtractErrorMessage(err)
	want := "[Errno 111] Connection refused'"
	if got != want {
		t.Fatalf("ExtractErrorMessage() = %q, want %q", got, want)
	}
}

type wrappedErr struct{ msg string }

func (e *wrappedErr) Error() string { return e.msg }
