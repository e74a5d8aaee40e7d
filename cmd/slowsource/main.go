// slowsource writes a fixed amount of data to stdout at a limited rate.
// It is a manual driver for the adaptive buffer: a source much slower than
// the buffer makes pipemeter shrink it, a fast one makes it grow.
//
// Usage: go run ./cmd/slowsource --profile 3g --size 4MB | pipemeter > /dev/null
package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"regexp"
	"strconv"
	"strings"

	flag "github.com/spf13/pflag"
	"golang.org/x/time/rate"
)

const maxBurstSize = 65536 // Cap burst at 64KB to prevent huge initial bursts

func main() {
	fs := flag.NewFlagSet("slowsource", flag.ContinueOnError)
	fs.SortFlags = false
	rateStr := fs.StringP("rate", "r", "", "Output rate (e.g., 56kbit, 100KB)")
	profile := fs.StringP("profile", "p", "", "Link profile: "+profileNames())
	sizeStr := fs.StringP("size", "n", "1MB", "Total bytes to write (e.g., 512KB, 10MB)")
	chunk := fs.IntP("chunk", "c", 4096, "Bytes per write")
	if err := fs.Parse(os.Args[1:]); err != nil {
		if err == flag.ErrHelp {
			os.Exit(0)
		}
		os.Exit(2)
	}

	var bytesPerSec int64
	if *profile != "" {
		r, ok := profiles[*profile]
		if !ok {
			fmt.Fprintf(os.Stderr, "error: unknown profile: %s\n", *profile)
			os.Exit(1)
		}
		bytesPerSec = r
	}
	if *rateStr != "" {
		r, err := parseBandwidth(*rateStr)
		if err != nil {
			fmt.Fprintf(os.Stderr, "error: invalid --rate: %v\n", err)
			os.Exit(1)
		}
		bytesPerSec = r
	}
	total, err := parseBandwidth(*sizeStr)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: invalid --size: %v\n", err)
		os.Exit(1)
	}
	if *chunk < 1 {
		fmt.Fprintln(os.Stderr, "error: --chunk must be positive")
		os.Exit(1)
	}

	if err := emit(context.Background(), os.Stdout, total, *chunk, newLimiter(bytesPerSec, *chunk)); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

// newLimiter returns a token bucket for bytesPerSec, or nil for unlimited.
func newLimiter(bytesPerSec int64, chunk int) *rate.Limiter {
	if bytesPerSec <= 0 {
		return nil
	}
	// At least one chunk, or 100ms of data
	burst := int(bytesPerSec / 10)
	if chunk > burst {
		burst = chunk
	}
	if burst > maxBurstSize {
		burst = maxBurstSize
	}
	return rate.NewLimiter(rate.Limit(bytesPerSec), burst)
}

// emit writes total bytes of a repeating pattern to dst in chunk-sized
// writes, waiting on limiter between them.
func emit(ctx context.Context, dst io.Writer, total int64, chunk int, limiter *rate.Limiter) error {
	if limiter != nil && chunk > limiter.Burst() {
		chunk = limiter.Burst()
	}
	buf := make([]byte, chunk)
	for i := range buf {
		buf[i] = byte('a' + i%26)
	}

	for total > 0 {
		n := int64(chunk)
		if n > total {
			n = total
		}
		if limiter != nil {
			if err := limiter.WaitN(ctx, int(n)); err != nil {
				return err
			}
		}
		if _, err := dst.Write(buf[:n]); err != nil {
			return err
		}
		total -= n
	}
	return nil
}

// parseBandwidth parses strings like "56kbit", "1mbit", "100KB".
// Bit units are converted to bytes. Uses SI units (k=1000).
func parseBandwidth(s string) (int64, error) {
	s = strings.TrimSpace(strings.ToLower(s))
	if s == "" {
		return 0, nil
	}

	re := regexp.MustCompile(`^(\d+(?:\.\d+)?)\s*([a-z/]*)$`)
	matches := re.FindStringSubmatch(s)
	if matches == nil {
		return 0, fmt.Errorf("invalid format: %s", s)
	}

	value, err := strconv.ParseFloat(matches[1], 64)
	if err != nil {
		return 0, err
	}

	var multiplier float64 = 1
	isBytes := false

	switch matches[2] {
	case "bit", "bits":
		multiplier = 1
	case "k", "kbit":
		multiplier = 1000
	case "m", "mbit":
		multiplier = 1000000
	case "", "b", "byte", "bytes":
		multiplier = 1
		isBytes = true
	case "kb", "kb/s":
		multiplier = 1000
		isBytes = true
	case "mb", "mb/s":
		multiplier = 1000000
		isBytes = true
	default:
		return 0, fmt.Errorf("unknown unit: %s", matches[2])
	}

	v := value * multiplier
	if isBytes {
		return int64(v), nil
	}
	return int64(v / 8), nil
}

func profileNames() string {
	return "9600, 2400, dialup, edge, 3g, lte, lte-poor, dsl, cable, satellite, satellite-geo, wifi-poor, wifi-bad"
}
