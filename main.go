package main

import (
	"errors"
	"fmt"
	"io"
	"math/bits"
	"os"
	"regexp"
	"strconv"
	"strings"

	flag "github.com/spf13/pflag"
	"golang.org/x/term"
)

var version = "0.1.0"

// Config holds all command-line configuration
type Config struct {
	Mode    Mode
	BufSize int

	// Misc
	Help    bool
	Version bool
}

func main() {
	cfg, err := parseFlags(os.Args[1:], os.Stderr)
	if err != nil {
		if err == flag.ErrHelp {
			os.Exit(0)
		}
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}

	if cfg.Version {
		fmt.Fprintf(os.Stderr, "pipemeter %s\n", version)
		os.Exit(0)
	}

	os.Exit(run(cfg, os.Stdin, os.Stdout, os.Stderr))
}

func parseFlags(args []string, stderr io.Writer) (*Config, error) {
	cfg := &Config{
		Mode: ModeAdaptive,
	}

	fs := flag.NewFlagSet("pipemeter", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.SortFlags = false // Preserve definition order in help

	static := fs.BoolP("static", "s", false, "Use a fixed buffer size (no adaptive resizing)")
	totals := fs.BoolP("totals", "t", false, "Only print a final summary (implies a fixed buffer)")
	bufSize := fs.StringP("buffer", "b", "", "Initial buffer size, e.g. 64KB, 1m (default 1MB)")
	fs.BoolVarP(&cfg.Help, "help", "h", false, "Show help")
	fs.BoolVarP(&cfg.Version, "version", "v", false, "Show version")

	fs.Usage = func() {
		fmt.Fprintln(stderr, "pipemeter - measure a pipe without touching it")
		fmt.Fprintln(stderr, "")
		fmt.Fprintln(stderr, "Copies stdin to stdout unmodified and reports the amount of data")
		fmt.Fprintln(stderr, "transferred and the average throughput on stderr.")
		fmt.Fprintln(stderr, "")
		fmt.Fprintln(stderr, "Usage: pipemeter [flags] < input > output")
		fmt.Fprintln(stderr, "")
		fmt.Fprintln(stderr, "Examples:")
		fmt.Fprintln(stderr, "  tar c dir | pipemeter | ssh host tar x")
		fmt.Fprintln(stderr, "  pipemeter -t < disk.img > /dev/sdb")
		fmt.Fprintln(stderr, "  pipemeter -s -b 64KB < /dev/zero > /dev/null")
		fmt.Fprintln(stderr, "")
		fmt.Fprintln(stderr, "Flags:")
		fs.PrintDefaults()
		fmt.Fprintln(stderr, "")
		fmt.Fprintln(stderr, "Size formats: 4096, 64k, 64KB, 1m, 1MB (k=1024)")
		fmt.Fprintf(stderr, "  Adaptive buffers are powers of two between %d and %d bytes.\n", MinBufSize, MaxBufSize)
	}

	if err := fs.Parse(args); err != nil {
		if err == flag.ErrHelp {
			return cfg, err
		}
		fs.Usage()
		return nil, err
	}

	if cfg.Help {
		fs.Usage()
		return cfg, flag.ErrHelp
	}

	if fs.NArg() > 0 {
		return nil, fmt.Errorf("unexpected argument: %s", fs.Arg(0))
	}

	switch {
	case *totals:
		cfg.Mode = ModeTotalsOnly
	case *static:
		cfg.Mode = ModeStatic
	}

	cfg.BufSize = DefaultBufSize
	if *bufSize != "" {
		size, err := parseSize(*bufSize)
		if err != nil {
			return nil, fmt.Errorf("invalid --buffer: %w", err)
		}
		if err := validateBufSize(size, cfg.Mode); err != nil {
			return nil, fmt.Errorf("invalid --buffer: %w", err)
		}
		cfg.BufSize = size
	}

	return cfg, nil
}

// parseSize parses sizes like "4096", "64k", "64KB", "1mb".
// Units are binary (k=1024).
func parseSize(s string) (int, error) {
	s = strings.TrimSpace(strings.ToLower(s))
	if s == "" {
		return 0, errors.New("empty size")
	}

	re := regexp.MustCompile(`^(\d+)\s*([a-z]*)$`)
	matches := re.FindStringSubmatch(s)
	if matches == nil {
		return 0, fmt.Errorf("invalid size format: %s", s)
	}

	value, err := strconv.ParseInt(matches[1], 10, 64)
	if err != nil {
		return 0, err
	}

	var multiplier int64
	switch matches[2] {
	case "", "b", "byte", "bytes":
		multiplier = 1
	case "k", "kb", "kib":
		multiplier = 1 << 10
	case "m", "mb", "mib":
		multiplier = 1 << 20
	default:
		return 0, fmt.Errorf("unknown size unit: %s", matches[2])
	}

	if value > MaxBufSize/multiplier {
		return 0, fmt.Errorf("size %s exceeds maximum of %d bytes", s, MaxBufSize)
	}
	return int(value * multiplier), nil
}

// validateBufSize checks size against the constraints of mode. Adaptive
// buffers must halve and double cleanly within the bounds.
func validateBufSize(size int, mode Mode) error {
	if size < 1 || size > MaxBufSize {
		return fmt.Errorf("size %d out of range [1, %d]", size, MaxBufSize)
	}
	if mode != ModeAdaptive {
		return nil
	}
	if size < MinBufSize {
		return fmt.Errorf("adaptive buffer %d smaller than %d", size, MinBufSize)
	}
	if bits.OnesCount(uint(size)) != 1 {
		return fmt.Errorf("adaptive buffer %d is not a power of two", size)
	}
	return nil
}

// terminalWidth returns the column count of f, or 0 if f is not a terminal.
func terminalWidth(f *os.File) int {
	fd := int(f.Fd())
	if !term.IsTerminal(fd) {
		return 0
	}
	w, _, err := term.GetSize(fd)
	if err != nil {
		return 0
	}
	return w
}

func run(cfg *Config, stdin io.Reader, stdout io.Writer, stderr *os.File) int {
	reporter := NewReporter(Options{
		Output:  stderr,
		Mode:    cfg.Mode,
		BufSize: cfg.BufSize,
		Units:   NewUnits(),
		Width:   terminalWidth(stderr),
	})
	copier := NewCopier(stdin, stdout, reporter)

	if _, err := copier.Run(); err != nil {
		fmt.Fprintf(stderr, "error: %v\n", err)
		return 1
	}
	return 0
}
