// Package parser turns an input text stream into a lazy... effectively
// finite, in-memory sequence of Tasks, auto-detecting one of two
// overlapping textual dialects: a plain "METHOD URL" per line format, and
// a subset of the JetBrains HTTP request-file format.
package parser

import (
	"fmt"
	"io"
	"regexp"
	"strings"

	"github.com/es7s/macedon/internal/task"
	"github.com/es7s/macedon/pkg/logger"
)

// ParseError is returned when a stream's structure cannot be read at all
// (not when individual lines are malformed — those are logged and
// skipped).
type ParseError struct {
	Name string
	Err  error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("macedon: cannot parse %s: %v", e.Name, e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }

var (
	rePlainLine   = regexp.MustCompile(`^\s*([A-Z]+)\s+(https?://\S+)\s*$`)
	reRequestLine = regexp.MustCompile(`^([A-Z]+)\s+(https?://\S+)\s*$`)
	reHeaderLine  = regexp.MustCompile(`^([A-Za-z0-9_-]+):(.+)$`)
	reSeparator   = regexp.MustCompile(`(?m)^###.*$`)
)

// Parse reads the entirety of r (named name, for diagnostics) and
// returns the Tasks it yields. Malformed lines are logged via
// pkg/logger and skipped; an empty or wholly-comment stream yields a
// nil/empty slice, not an error.
func Parse(name string, r io.Reader) ([]task.Task, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, &ParseError{Name: name, Err: err}
	}
	content := string(data)
	if isPlainDialect(content) {
		return parsePlain(name, content), nil
	}
	return parseStructured(name, content), nil
}

// isPlainDialect reports whether every non-blank, non-comment line in
// content matches the plain "METHOD URL" shape.
func isPlainDialect(content string) bool {
	for _, raw := range strings.Split(content, "\n") {
		line := strings.TrimRight(raw, "\r")
		trimmed := strings.TrimSpace(line)
		if trimmed == "" || strings.HasPrefix(trimmed, "#") {
			continue
		}
		if !rePlainLine.MatchString(line) {
			return false
		}
	}
	return true
}

func parsePlain(name, content string) []task.Task {
	var tasks []task.Task
	for _, raw := range strings.Split(content, "\n") {
		line := strings.TrimRight(raw, "\r")
		trimmed := strings.TrimSpace(line)
		if trimmed == "" || strings.HasPrefix(trimmed, "#") {
			continue
		}
		m := rePlainLine.FindStringSubmatch(line)
		if m == nil {
			logger.Warn("%s: skipping malformed line: %q", name, line)
			continue
		}
		tasks = append(tasks, task.NewTask(m[1], m[2], nil, "", false))
	}
	return tasks
}

func parseStructured(name, content string) []task.Task {
	var tasks []task.Task
	for _, block := range reSeparator.Split(content, -1) {
		t, ok := parseBlock(name, block)
		if ok {
			tasks = append(tasks, t)
		}
	}
	return tasks
}

// parseBlock parses one ###-delimited request block. Returns ok=false
// for an empty or unrecognizable block (logged, not fatal).
func parseBlock(name, block string) (task.Task, bool) {
	lines := strings.Split(block, "\n")

	var kept []string
	for _, l := range lines {
		if strings.HasPrefix(strings.TrimSpace(l), "#") {
			continue
		}
		kept = append(kept, l)
	}

	idx := 0
	for idx < len(kept) && strings.TrimSpace(kept[idx]) == "" {
		idx++
	}
	if idx >= len(kept) {
		return task.Task{}, false
	}

	reqLine := strings.TrimRight(kept[idx], "\r")
	m := reRequestLine.FindStringSubmatch(reqLine)
	if m == nil {
		logger.Warn("%s: skipping malformed request block, bad request line: %q", name, reqLine)
		return task.Task{}, false
	}
	method, url := m[1], m[2]
	idx++

	headers := task.Headers{}
	for idx < len(kept) {
		line := strings.TrimRight(kept[idx], "\r")
		if strings.TrimSpace(line) == "" {
			idx++
			break
		}
		hm := reHeaderLine.FindStringSubmatch(line)
		if hm == nil {
			logger.Warn("%s: skipping malformed header line: %q", name, line)
			idx++
			continue
		}
		key := strings.TrimSpace(hm[1])
		val := strings.TrimSpace(hm[2])
		if val != "" {
			headers.Set(key, val)
		}
		idx++
	}

	var body string
	hasBody := false
	if idx < len(kept) {
		raw := strings.Join(kept[idx:], "\n")
		trimmed := strings.TrimSpace(raw)
		if trimmed != "" {
			body = trimmed
			hasBody = true
		}
	}

	return task.NewTask(method, url, headers, body, hasBody), true
}
