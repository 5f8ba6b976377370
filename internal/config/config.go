// Package config assembles a task.Options value from the command line,
// optionally layered over an on-disk TOML defaults file. Grounded on the
// teacher's config.Load (viper TOML loading, SetDefault/Unmarshal,
// startup INFO logging), generalized here to a CLI tool: flags are
// parsed with github.com/spf13/pflag instead of being read purely from
// environment/file, and flags always win over the config file.
package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/es7s/macedon/internal/task"
	"github.com/es7s/macedon/pkg/logger"
)

// Version is the build version string, reported by --version.
const Version = "0.1.0"

// fileDefaults is the optional TOML defaults file schema, the config-file
// counterpart of the same knobs exposed as flags.
type fileDefaults struct {
	Threads   int     `mapstructure:"threads"`
	Amount    int     `mapstructure:"amount"`
	Delay     float64 `mapstructure:"delay"`
	Timeout   float64 `mapstructure:"timeout"`
	Insecure  bool    `mapstructure:"insecure"`
	ExitCode  bool    `mapstructure:"exit_code"`
	Color     string  `mapstructure:"color"`
	ShowID    bool    `mapstructure:"show_id"`
	ShowError bool    `mapstructure:"show_error"`
	Verbose   int     `mapstructure:"verbose"`
}

// ParseResult is what Parse produces: either ready-to-run Options, or a
// signal that the process should exit immediately (after --help/
// --version already printed their own output).
type ParseResult struct {
	Options  task.Options
	ExitNow  bool
	ExitCode int
	Err      error
}

// Parse builds task.Options from argv, a config file named by --config/-F
// (if any), and the package defaults. Flags always override config-file
// values, which in turn override the built-in defaults.
func Parse(argv []string) ParseResult {
	fs := pflag.NewFlagSet("macedon", pflag.ContinueOnError)
	fs.SortFlags = false

	threads := fs.IntP("threads", "T", 0, "number of worker threads (0 = auto-detect)")
	amount := fs.IntP("amount", "n", 1, "number of times to request each task")
	delay := fs.Float64P("delay", "d", 0, "delay in seconds before each worker's request")
	timeout := fs.Float64P("timeout", "t", 10, "per-request timeout in seconds")
	insecure := fs.BoolP("insecure", "i", false, "skip TLS certificate verification")
	files := fs.StringArrayP("file", "f", nil, "read tasks from file (repeatable, '-' for stdin)")
	exitCode := fs.BoolP("exit-code", "x", false, "exit 1 if any request failed")
	color := fs.BoolP("color", "c", false, "force-enable colored output")
	noColor := fs.BoolP("no-color", "C", false, "force-disable colored output")
	showID := fs.Bool("show-id", false, "print the request id column")
	showError := fs.Bool("show-error", false, "print error detail text for failed requests")
	verbose := fs.CountP("verbose", "v", "increase log verbosity (repeatable, up to 3)")
	configFile := fs.StringP("config", "F", "", "TOML file of default option values")
	version := fs.BoolP("version", "V", false, "print version and exit")
	help := fs.BoolP("help", "h", false, "print usage and exit")

	if err := fs.Parse(argv); err != nil {
		// Conventional exit code for option syntax errors.
		return ParseResult{ExitNow: true, ExitCode: 2, Err: err}
	}

	if *help {
		fmt.Fprintln(os.Stderr, "Usage: macedon [options] [url ...]")
		fs.PrintDefaults()
		return ParseResult{ExitNow: true}
	}
	if *version {
		fmt.Fprintf(os.Stderr, "macedon %s\n", Version)
		return ParseResult{ExitNow: true}
	}

	defaults := fileDefaults{
		Threads: task.DefaultThreads(),
		Amount:  1,
		Timeout: 10,
		Color:   "auto",
	}
	if *configFile != "" {
		loaded, err := loadFileDefaults(*configFile)
		if err != nil {
			return ParseResult{ExitNow: true, Err: err}
		}
		defaults = mergeDefaults(defaults, loaded)
	}

	opts := task.Options{
		EndpointURLs: fs.Args(),
		Amount:       resolveInt(fs, "amount", *amount, defaults.Amount),
		Threads:      resolveInt(fs, "threads", *threads, defaults.Threads),
		Delay:        resolveFloat(fs, "delay", *delay, defaults.Delay),
		Timeout:      resolveFloat(fs, "timeout", *timeout, defaults.Timeout),
		Insecure:     *insecure || defaults.Insecure,
		ExitCode:     *exitCode || defaults.ExitCode,
		ShowID:       *showID || defaults.ShowID,
		ShowError:    *showError || defaults.ShowError,
		Verbose:      resolveVerbose(fs, *verbose, defaults.Verbose),
	}
	if opts.Threads <= 0 {
		opts.Threads = task.DefaultThreads()
	}

	opts.Color = resolveColor(*color, *noColor, defaults.Color)

	readers, err := openFiles(*files)
	if err != nil {
		return ParseResult{ExitNow: true, Err: err}
	}
	opts.Files = readers

	logger.SetVerbosity(opts.Verbose)
	return ParseResult{Options: opts}
}

func loadFileDefaults(path string) (fileDefaults, error) {
	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("toml")
	if err := v.ReadInConfig(); err != nil {
		return fileDefaults{}, fmt.Errorf("macedon: reading config file %s: %w", path, err)
	}
	var fd fileDefaults
	if err := v.Unmarshal(&fd); err != nil {
		return fileDefaults{}, fmt.Errorf("macedon: parsing config file %s: %w", path, err)
	}
	return fd, nil
}

// mergeDefaults overlays the file's non-zero fields on top of base.
func mergeDefaults(base, file fileDefaults) fileDefaults {
	if file.Threads != 0 {
		base.Threads = file.Threads
	}
	if file.Amount != 0 {
		base.Amount = file.Amount
	}
	if file.Delay != 0 {
		base.Delay = file.Delay
	}
	if file.Timeout != 0 {
		base.Timeout = file.Timeout
	}
	if file.Color != "" {
		base.Color = file.Color
	}
	base.Insecure = base.Insecure || file.Insecure
	base.ExitCode = base.ExitCode || file.ExitCode
	base.ShowID = base.ShowID || file.ShowID
	base.ShowError = base.ShowError || file.ShowError
	if file.Verbose > base.Verbose {
		base.Verbose = file.Verbose
	}
	return base
}

func resolveInt(fs *pflag.FlagSet, name string, flagVal, fileVal int) int {
	if fs.Changed(name) {
		return flagVal
	}
	return fileVal
}

func resolveFloat(fs *pflag.FlagSet, name string, flagVal, fileVal float64) float64 {
	if fs.Changed(name) {
		return flagVal
	}
	return fileVal
}

func resolveVerbose(fs *pflag.FlagSet, flagVal, fileVal int) int {
	v := resolveInt(fs, "verbose", flagVal, fileVal)
	if v > 3 {
		v = 3
	}
	return v
}

func resolveColor(forceOn, forceOff bool, fileColor string) task.ColorMode {
	switch {
	case forceOn:
		return task.ColorForceOn
	case forceOff:
		return task.ColorForceOff
	}
	switch strings.ToLower(fileColor) {
	case "on", "always", "true":
		return task.ColorForceOn
	case "off", "never", "false":
		return task.ColorForceOff
	default:
		return task.ColorAuto
	}
}

// openFiles opens every --file argument, mapping "-" to stdin.
func openFiles(names []string) ([]task.NamedReader, error) {
	readers := make([]task.NamedReader, 0, len(names))
	for _, name := range names {
		if name == "-" {
			readers = append(readers, task.NamedReader{Name: "<stdin>", Reader: os.Stdin})
			continue
		}
		f, err := os.Open(name)
		if err != nil {
			return nil, fmt.Errorf("macedon: opening %s: %w", name, err)
		}
		readers = append(readers, task.NamedReader{Name: name, Reader: f})
	}
	return readers, nil
}
