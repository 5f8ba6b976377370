package config

import (
	"testing"

	"github.com/es7s/macedon/internal/task"
)

func TestParseDefaults(t *testing.T) {
	r := Parse([]string{"http://example.com"})
	if r.Err != nil || r.ExitNow {
		t.Fatalf("unexpected result: %+v", r)
	}
	if r.Options.Amount != 1 {
		t.Fatalf("expected default amount 1, got %d", r.Options.Amount)
	}
	if r.Options.Timeout != 10 {
		t.Fatalf("expected default timeout 10, got %v", r.Options.Timeout)
	}
	if r.Options.Threads <= 0 {
		t.Fatalf("expected auto-resolved threads > 0, got %d", r.Options.Threads)
	}
	if r.Options.Color != task.ColorAuto {
		t.Fatalf("expected default color mode auto")
	}
	if len(r.Options.EndpointURLs) != 1 || r.Options.EndpointURLs[0] != "http://example.com" {
		t.Fatalf("expected positional URL preserved, got %v", r.Options.EndpointURLs)
	}
}

func TestParseFlagsOverrideDefaults(t *testing.T) {
	r := Parse([]string{"-n", "3", "-T", "8", "-x", "-i", "--no-color", "http://a"})
	if r.Err != nil || r.ExitNow {
		t.Fatalf("unexpected result: %+v", r)
	}
	if r.Options.Amount != 3 {
		t.Fatalf("expected amount 3, got %d", r.Options.Amount)
	}
	if r.Options.Threads != 8 {
		t.Fatalf("expected threads 8, got %d", r.Options.Threads)
	}
	if !r.Options.ExitCode || !r.Options.Insecure {
		t.Fatalf("expected exit-code and insecure flags set")
	}
	if r.Options.Color != task.ColorForceOff {
		t.Fatalf("expected --no-color to force color off")
	}
}

func TestParseVerboseIsClampedAndRepeatable(t *testing.T) {
	r := Parse([]string{"-vvvv", "http://a"})
	if r.Options.Verbose != 3 {
		t.Fatalf("expected verbose clamped to 3, got %d", r.Options.Verbose)
	}
}

func TestParseHelpAndVersionExitEagerly(t *testing.T) {
	if r := Parse([]string{"--help"}); !r.ExitNow || r.Err != nil {
		t.Fatalf("expected --help to set ExitNow with no error, got %+v", r)
	}
	if r := Parse([]string{"--version"}); !r.ExitNow || r.Err != nil {
		t.Fatalf("expected --version to set ExitNow with no error, got %+v", r)
	}
}

func TestParseUnknownFlagIsExitCodeTwo(t *testing.T) {
	r := Parse([]string{"--bogus-flag"})
	if r.Err == nil || r.ExitCode != 2 {
		t.Fatalf("expected option-syntax error with ExitCode 2, got %+v", r)
	}
}

func TestParseStdinFile(t *testing.T) {
	r := Parse([]string{"-f", "-"})
	if r.Err != nil {
		t.Fatalf("unexpected error: %v", r.Err)
	}
	if len(r.Options.Files) != 1 || r.Options.Files[0].Name != "<stdin>" {
		t.Fatalf("expected one <stdin> file entry, got %+v", r.Options.Files)
	}
}
