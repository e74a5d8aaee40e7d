package main

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"golang.org/x/time/rate"
)

// Buffer bounds for adaptive mode. Both are powers of two so repeated
// halving and doubling stays inside the range.
const (
	MinBufSize     = 256
	MaxBufSize     = 32 << 20 // 32MB
	DefaultBufSize = 1 << 20  // 1MB
)

// Reporting and resizing thresholds
const (
	reportInterval = time.Second            // At most one progress line per interval
	shrinkAfter    = 2 * time.Second        // Report gap that suggests a slow source
	growBefore     = 250 * time.Millisecond // Report gap that suggests a fast source
	minPad         = 4                      // Trailing spaces when terminal width is unknown
)

// Mode selects how a transfer is instrumented.
type Mode int

const (
	ModeAdaptive   Mode = iota // Live progress, buffer resized from read behavior
	ModeStatic                 // Live progress, fixed buffer
	ModeTotalsOnly             // Final summary only, fixed buffer
)

func (m Mode) String() string {
	switch m {
	case ModeAdaptive:
		return "adaptive"
	case ModeStatic:
		return "static"
	case ModeTotalsOnly:
		return "totals-only"
	default:
		return fmt.Sprintf("Mode(%d)", int(m))
	}
}

// Options configures a Reporter.
type Options struct {
	// Output receives progress and summary lines.
	// Default: os.Stderr
	Output io.Writer

	Mode Mode

	// BufSize is the initial read buffer size.
	// Default: DefaultBufSize
	BufSize int

	// Units used for scaling. Default: NewUnits()
	Units Units

	// Width is the terminal width in columns, 0 if unknown. Lines are
	// padded to erase whatever a longer previous line left behind.
	Width int

	// Start is when the transfer began. Default: time.Now()
	Start time.Time
}

// Reporter decides when to print progress and how large the next read
// should be. It is driven synchronously by a Copier and is not safe for
// concurrent use.
type Reporter struct {
	opts Options

	limiter    *rate.Limiter
	lastReport time.Duration // Elapsed time at the last progress line
	bufSize    int
}

// NewReporter creates a Reporter whose clock starts at opts.Start.
func NewReporter(opts Options) *Reporter {
	if opts.Output == nil {
		opts.Output = os.Stderr
	}
	if opts.BufSize <= 0 {
		opts.BufSize = DefaultBufSize
	}
	if opts.Units == (Units{}) {
		opts.Units = NewUnits()
	}
	if opts.Start.IsZero() {
		opts.Start = time.Now()
	}

	// One token per interval, burst of one. Spending the token at Start
	// keeps the first line from appearing before a full interval passed.
	limiter := rate.NewLimiter(rate.Every(reportInterval), 1)
	limiter.AllowN(opts.Start, 1)

	return &Reporter{
		opts:    opts,
		limiter: limiter,
		bufSize: opts.BufSize,
	}
}

// BufSize returns the buffer size the next read should use.
func (r *Reporter) BufSize() int {
	return r.bufSize
}

// Mode returns the transfer mode the Reporter was created with.
func (r *Reporter) Mode() Mode {
	return r.opts.Mode
}

// LastReport returns the elapsed time of the most recent progress line.
func (r *Reporter) LastReport() time.Duration {
	return r.lastReport
}

// Observe records that written bytes have been forwarded after elapsed,
// the last read having returned chunk bytes. It returns the buffer size
// for the next read and whether a progress line was printed.
//
// In adaptive mode a full buffer combined with a long gap between reports
// halves the buffer. Reads completing well inside a report interval
// double it. At most one of the two happens per call.
//
// In ModeTotalsOnly nothing is printed and the buffer never changes.
func (r *Reporter) Observe(written uint64, elapsed time.Duration, chunk int) (int, bool) {
	if r.opts.Mode == ModeTotalsOnly {
		return r.bufSize, false
	}

	since := elapsed - r.lastReport

	reported := r.limiter.AllowN(r.opts.Start.Add(elapsed), 1)
	if reported {
		r.progress(written, elapsed)
		r.lastReport = elapsed
	}

	if r.opts.Mode != ModeAdaptive {
		return r.bufSize, reported
	}

	switch {
	case reported && chunk == r.bufSize && r.bufSize >= 2*MinBufSize && since > shrinkAfter:
		r.bufSize /= 2
	case !reported && since < growBefore && r.bufSize <= MaxBufSize/2:
		r.bufSize *= 2
	}
	return r.bufSize, reported
}

// progress overwrites the current status line in place.
func (r *Reporter) progress(written uint64, elapsed time.Duration) {
	rateStr, err := r.opts.Units.Rate(written, elapsed)
	if err != nil {
		// The report gate never opens before one second.
		panic(err)
	}
	line := fmt.Sprintf("%s, %s/sec", r.opts.Units.Bytes(written), rateStr)
	fmt.Fprint(r.opts.Output, r.pad(line)+"\r")
}

// Summary prints the final line with the total elapsed time. The rate is
// omitted for transfers shorter than one second.
func (r *Reporter) Summary(written uint64, elapsed time.Duration) {
	rateStr, err := r.opts.Units.Rate(written, elapsed)
	if err != nil {
		rateStr = "--"
	}
	line := fmt.Sprintf("%s in %s, %s/sec",
		r.opts.Units.Bytes(written),
		elapsed.Round(time.Millisecond),
		rateStr,
	)
	fmt.Fprint(r.opts.Output, r.pad(line)+"\n")
}

func (r *Reporter) pad(line string) string {
	n := minPad
	if r.opts.Width > 0 {
		n = r.opts.Width - 1 - len(line)
	}
	if n <= 0 {
		return line
	}
	return line + strings.Repeat(" ", n)
}
