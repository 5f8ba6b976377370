// Package printer implements the synchronized terminal renderer: row
// output from concurrent workers never interleaves, and on a TTY a
// single-line progress footer is continuously overwritten in place.
package printer

import (
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/labstack/gommon/color"
	"github.com/mattn/go-colorable"
	"github.com/mattn/go-isatty"

	"github.com/es7s/macedon/internal/task"
)

// cursorToCol1 is the control sequence written before each new row on a
// TTY so the previous progress footer is overwritten rather than
// scrolled. A bare carriage return already moves the cursor to column 1
// on every terminal that understands ANSI/VT100 control.
const cursorToCol1 = "\r"

// reverseOn/reverseOff bracket the inverted-video epilogue Result line;
// gommon/color's named palette has no "reverse video" helper, so this
// one spot uses the raw SGR code directly.
const (
	reverseOn  = "\x1b[7m"
	reverseOff = "\x1b[0m"
)

// printedCounter is satisfied by *state.State without an import of the
// state package: the printer only needs to increment-and-fetch
// requests_printed from inside its own mutex, pairing each printed row
// with a consistent progress value.
type printedCounter interface {
	IncPrinted() int64
}

// Printer serializes all output to the primary stream.
type Printer struct {
	mu        sync.Mutex
	out       io.Writer
	counter   printedCounter
	color     *color.Color
	isTTY     bool
	showID    bool
	showError bool
	idWidth   int
	total     int64
}

// New creates a Printer writing to out (typically os.Stdout), driving
// its progress footer from counter.
func New(out io.Writer, counter printedCounter, mode task.ColorMode, showID, showError bool) *Printer {
	isTTY := isTerminalWriter(out)
	if f, ok := out.(*os.File); ok && isTTY {
		// colorable translates ANSI SGR sequences into Win32 console API
		// calls on Windows terminals that don't interpret them natively;
		// a no-op wrapper everywhere else.
		out = colorable.NewColorable(f)
	}

	p := &Printer{
		out:       out,
		counter:   counter,
		color:     color.New(),
		showID:    showID,
		showError: showError,
	}
	p.color.SetOutput(out)
	p.isTTY = isTTY

	switch mode {
	case task.ColorForceOn:
		p.color.Enable()
	case task.ColorForceOff:
		p.color.Disable()
	default:
		if !p.isTTY {
			p.color.Disable()
		}
	}
	return p
}

func isTerminalWriter(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	fd := f.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}

// SetTotal fixes requests_total for the duration of the run, sizing the
// request-id column to ⌈log10(total)⌉+1 characters ("#" plus the id
// padded to one character fewer).
func (p *Printer) SetTotal(total int64) {
	p.total = total
	p.idWidth = idColumnWidth(total)
}

func idColumnWidth(total int64) int {
	if total <= 0 {
		return 2
	}
	return int(math.Ceil(math.Log10(float64(total)))) + 1
}

// PrintPrologue writes the two-line header (thread count, total request
// count), a separator, and the initial progress footer.
func (p *Printer) PrintPrologue(threads int, total int64) {
	p.mu.Lock()
	defer p.mu.Unlock()

	fmt.Fprintf(p.out, "Threads: %d\n", threads)
	fmt.Fprintf(p.out, "Requests: %d\n", total)
	p.writeSeparator()
	p.writeFooter(0, total)
}

// PrintCompleted reports a request that received an HTTP response.
func (p *Printer) PrintCompleted(reqID int64, t task.Task, statusCode int, ok bool, sizeBytes int64, elapsed time.Duration) {
	p.mu.Lock()
	defer p.mu.Unlock()

	printed := p.counter.IncPrinted()

	// Pad the plain status text to its column width *before* wrapping it
	// in color: gommon/color embeds raw SGR bytes in the returned string,
	// and fmt's %-Ns width verbs count those bytes, so padding after
	// coloring would never emit any padding at all.
	statusField := fmt.Sprintf("%-4s", strconv.Itoa(statusCode))
	if ok {
		statusField = p.color.Green(statusField)
	} else {
		statusField = p.color.Red(statusField)
	}

	row := p.formatRow(reqID, statusField, formatBytes(sizeBytes), formatSeconds(elapsed.Seconds()), t, "", false)
	p.writeRow(row, printed)
}

// PrintFailed reports a request that raised a network/protocol error
// before any response was received.
func (p *Printer) PrintFailed(reqID int64, t task.Task, elapsed time.Duration, err error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	printed := p.counter.IncPrinted()

	classField := p.color.Red(fmt.Sprintf("%-11s", errorClassName(err)))
	errText := ""
	if p.showError {
		errText = " " + ExtractErrorMessage(err)
	}

	row := p.formatRow(reqID, classField, "", formatSeconds(elapsed.Seconds()), t, errText, true)
	p.writeRow(row, printed)
}

// formatRow lays out Status(4) Size(7) Elapsed(7) [#id] Method URL
// [error]. statusField is already padded (and, for colored output,
// already wrapped in SGR codes) to its final column width by the
// caller. When merged, statusField spans the Status+Size columns (the
// network-error case) and size is "" — Elapsed is still rendered.
func (p *Printer) formatRow(reqID int64, statusField, size, elapsed string, t task.Task, errText string, merged bool) string {
	var b strings.Builder
	if merged {
		fmt.Fprintf(&b, "%s%7s", statusField, elapsed)
	} else {
		fmt.Fprintf(&b, "%s%7s%7s", statusField, size, elapsed)
	}
	if p.showID {
		fmt.Fprintf(&b, " #%-*d", p.idWidth-1, reqID)
	}
	fmt.Fprintf(&b, " %s %s%s", t.Method, t.URL, errText)
	return b.String()
}

func (p *Printer) writeRow(row string, printed int64) {
	if p.isTTY {
		fmt.Fprint(p.out, cursorToCol1)
	}
	fmt.Fprintln(p.out, row)
	p.writeFooter(printed, p.total)
}

func (p *Printer) writeFooter(printed, total int64) {
	if !p.isTTY {
		return
	}
	pct := 0.0
	if total > 0 {
		pct = float64(printed) / float64(total) * 100
	}
	fmt.Fprintf(p.out, "[ %3.0f%% %d/%d ]", pct, printed, total)
}

func (p *Printer) writeSeparator() {
	fmt.Fprintln(p.out, strings.Repeat("-", 40))
}

// PrintShutdownWarning prints the first-signal cooperative-shutdown
// notice.
func (p *Printer) PrintShutdownWarning() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.isTTY {
		fmt.Fprint(p.out, cursorToCol1)
	}
	fmt.Fprintln(p.out, p.color.Yellow("Shutting threads down (Ctrl+C again to force)"))
}

// EpilogueData summarizes the run for the closing report.
type EpilogueData struct {
	Success, Failed, Total int64
	Median                 float64
	HasMedian              bool
	WallTime               time.Duration
}

// PrintEpilogue writes the separator and the closing PASS/FAIL report.
func (p *Printer) PrintEpilogue(d EpilogueData) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.isTTY {
		fmt.Fprint(p.out, cursorToCol1)
	}
	p.writeSeparator()

	pass := d.Success == d.Total
	result := "FAIL"
	if pass {
		result = "PASS"
	}
	if p.isTTY {
		result = reverseOn + result + reverseOff
	}
	fmt.Fprintf(p.out, "Result:      %s\n", result)

	pct := 0.0
	if d.Total > 0 {
		pct = float64(d.Success) / float64(d.Total) * 100
	}
	fmt.Fprintf(p.out, "Successful:  %d/%d (%.1f%%)\n", d.Success, d.Total, pct)

	median := "---"
	if d.HasMedian {
		median = formatSeconds(d.Median)
	}
	fmt.Fprintf(p.out, "Avg (p50):   %s\n", median)
	fmt.Fprintf(p.out, "Total time:  %s\n", d.WallTime.Round(time.Millisecond))
}

// formatBytes renders n bytes using SI (decimal) unit prefixes.
func formatBytes(n int64) string {
	switch {
	case n < 1_000:
		return fmt.Sprintf("%dB", n)
	case n < 1_000_000:
		return fmt.Sprintf("%.1fKB", float64(n)/1_000)
	case n < 1_000_000_000:
		return fmt.Sprintf("%.1fMB", float64(n)/1_000_000)
	default:
		return fmt.Sprintf("%.1fGB", float64(n)/1_000_000_000)
	}
}

// formatSeconds renders an elapsed duration (in seconds) using SI
// (decimal) unit prefixes scaled for sub-second latencies.
func formatSeconds(s float64) string {
	switch {
	case s < 1e-6:
		return fmt.Sprintf("%.0fns", s*1e9)
	case s < 1e-3:
		return fmt.Sprintf("%.0fµs", s*1e6)
	case s < 1:
		return fmt.Sprintf("%.0fms", s*1e3)
	default:
		return fmt.Sprintf("%.2fs", s)
	}
}

// errorClassName derives a short label for a transport error, used as
// the Status column content when no HTTP response was received.
func errorClassName(err error) string {
	type timeout interface{ Timeout() bool }
	var t timeout
	if errors.As(err, &t) && t.Timeout() {
		return "TMOUT"
	}
	return "ERR"
}

// ExtractErrorMessage implements the trailing error-text extraction
// rule: prefer an embedded "[Errno ...]" substring (as surfaced by
// wrapped os.SyscallError values), else recurse into a wrapped cause,
// else fall back to the error's own message.
func ExtractErrorMessage(err error) string {
	if err == nil {
		return ""
	}
	msg := err.Error()
	if i := strings.Index(msg, "[Errno"); i >= 0 {
		rest := msg[i:]
		end := strings.IndexAny(rest, ")'")
		if end >= 0 {
			return rest[:end+1]
		}
		return rest
	}
	if wrapped := errors.Unwrap(err); wrapped != nil {
		return ExtractErrorMessage(wrapped)
	}
	return msg
}
