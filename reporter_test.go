package main

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
)

var epoch = time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

func newTestReporter(mode Mode, bufSize int) (*Reporter, *bytes.Buffer) {
	var out bytes.Buffer
	r := NewReporter(Options{
		Output:  &out,
		Mode:    mode,
		BufSize: bufSize,
		Units:   NewUnits(),
		Start:   epoch,
	})
	return r, &out
}

func ms(n int) time.Duration { return time.Duration(n) * time.Millisecond }

func TestReporterDefaults(t *testing.T) {
	r := NewReporter(Options{})
	if r.BufSize() != DefaultBufSize {
		t.Errorf("BufSize() = %d, want %d", r.BufSize(), DefaultBufSize)
	}
	if r.opts.Units != NewUnits() {
		t.Errorf("Units = %+v, want defaults", r.opts.Units)
	}
	if r.opts.Mode != ModeAdaptive {
		t.Errorf("Mode = %v, want adaptive", r.opts.Mode)
	}
}

func TestReporterFirstReportAfterOneSecond(t *testing.T) {
	r, out := newTestReporter(ModeStatic, 4096)

	if _, reported := r.Observe(100, ms(999), 100); reported {
		t.Fatal("reported before one second elapsed")
	}
	if out.Len() != 0 {
		t.Fatalf("unexpected output %q", out.String())
	}

	if _, reported := r.Observe(100, time.Second, 100); !reported {
		t.Fatal("no report at one second")
	}
	if got, want := out.String(), "100 Bytes, 100 Bytes/sec    \r"; got != want {
		t.Errorf("progress line: got %q, want %q", got, want)
	}
	if r.LastReport() != time.Second {
		t.Errorf("LastReport() = %v, want 1s", r.LastReport())
	}
}

func TestReporterRateLimited(t *testing.T) {
	r, _ := newTestReporter(ModeStatic, 4096)

	steps := []struct {
		elapsed  time.Duration
		reported bool
	}{
		{ms(500), false},
		{ms(1000), true},
		{ms(1500), false},
		{ms(1999), false},
		{ms(2000), true},
		{ms(2999), false},
		{ms(5000), true},
		{ms(5001), false},
		{ms(6000), true},
	}
	var got, want []bool
	for _, s := range steps {
		_, reported := r.Observe(4096, s.elapsed, 4096)
		got = append(got, reported)
		want = append(want, s.reported)
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("report pattern mismatch (-want +got):\n%s", diff)
	}
}

func TestReporterProgressLines(t *testing.T) {
	r, out := newTestReporter(ModeStatic, 4096)

	r.Observe(3*mb, ms(1000), 4096)
	r.Observe(10*mb, ms(2000), 4096)
	r.Observe(3*gb, ms(3000), 4096)

	lines := strings.SplitAfter(out.String(), "\r")
	want := []string{
		"3.00 MB, 3.00 MB/sec    \r",
		"10.00 MB, 5.00 MB/sec    \r",
		"3.00 GB, 1024.00 MB/sec    \r",
		"",
	}
	if diff := cmp.Diff(want, lines); diff != "" {
		t.Errorf("progress lines mismatch (-want +got):\n%s", diff)
	}
}

func TestReporterShrink(t *testing.T) {
	r, _ := newTestReporter(ModeAdaptive, 1024)

	// Full buffer, report after a gap longer than two seconds
	if size, reported := r.Observe(1024, ms(2500), 1024); !reported || size != 512 {
		t.Fatalf("Observe = (%d, %v), want (512, true)", size, reported)
	}
	// Not reported, gap too long to grow
	if size, _ := r.Observe(1536, ms(3000), 512); size != 512 {
		t.Fatalf("size after quiet read = %d, want 512", size)
	}
	if size, reported := r.Observe(2048, ms(5600), 512); !reported || size != 256 {
		t.Fatalf("Observe = (%d, %v), want (256, true)", size, reported)
	}
	// At the lower bound
	if size, reported := r.Observe(2304, ms(8000), 256); !reported || size != MinBufSize {
		t.Fatalf("Observe = (%d, %v), want (%d, true)", size, reported, MinBufSize)
	}
}

func TestReporterShrinkConditions(t *testing.T) {
	tests := []struct {
		name    string
		elapsed time.Duration
		chunk   int
		want    int
	}{
		{"partial read", ms(2500), 1000, 1024},
		{"gap exactly two seconds", ms(2000), 1024, 1024},
		{"gap under two seconds", ms(1500), 1024, 1024},
		{"full read after long gap", ms(2001), 1024, 512},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r, _ := newTestReporter(ModeAdaptive, 1024)
			size, reported := r.Observe(1024, tt.elapsed, tt.chunk)
			if !reported {
				t.Fatal("expected a report")
			}
			if size != tt.want {
				t.Errorf("size = %d, want %d", size, tt.want)
			}
		})
	}
}

func TestReporterGrow(t *testing.T) {
	r, _ := newTestReporter(ModeAdaptive, 1024)

	var sizes []int
	for _, e := range []int{50, 100, 249, 250, 400} {
		size, _ := r.Observe(1024, ms(e), 1024)
		sizes = append(sizes, size)
	}
	want := []int{2048, 4096, 8192, 8192, 8192}
	if diff := cmp.Diff(want, sizes); diff != "" {
		t.Errorf("sizes mismatch (-want +got):\n%s", diff)
	}
}

func TestReporterGrowAfterReport(t *testing.T) {
	r, _ := newTestReporter(ModeAdaptive, 1024)

	// A report never grows the buffer, even with a full chunk
	if size, reported := r.Observe(1024, ms(1000), 512); !reported || size != 1024 {
		t.Fatalf("Observe = (%d, %v), want (1024, true)", size, reported)
	}
	// Quick reads right after the report grow it
	if size, _ := r.Observe(2048, ms(1100), 1024); size != 2048 {
		t.Fatalf("size = %d, want 2048", size)
	}
}

func TestReporterGrowCapped(t *testing.T) {
	r, _ := newTestReporter(ModeAdaptive, MaxBufSize/2)

	if size, _ := r.Observe(1, ms(10), 1); size != MaxBufSize {
		t.Fatalf("size = %d, want %d", size, MaxBufSize)
	}
	if size, _ := r.Observe(2, ms(20), 1); size != MaxBufSize {
		t.Fatalf("size = %d, want %d (capped)", size, MaxBufSize)
	}
}

func TestReporterFixedModes(t *testing.T) {
	for _, mode := range []Mode{ModeStatic, ModeTotalsOnly} {
		t.Run(mode.String(), func(t *testing.T) {
			r, _ := newTestReporter(mode, 1024)
			for _, e := range []int{10, 20, 2500, 5000} {
				if size, _ := r.Observe(1024, ms(e), 1024); size != 1024 {
					t.Fatalf("size changed to %d at %dms", size, e)
				}
			}
		})
	}
}

func TestReporterTotalsOnlyNeverReports(t *testing.T) {
	r, out := newTestReporter(ModeTotalsOnly, 1024)

	for _, e := range []int{10, 1000, 2500, 5000, 9000} {
		size, reported := r.Observe(1024, ms(e), 1024)
		if reported || size != 1024 {
			t.Fatalf("Observe at %dms = (%d, %v), want (1024, false)", e, size, reported)
		}
	}
	if out.Len() != 0 {
		t.Errorf("totals-only reporter printed progress: %q", out.String())
	}

	r.Summary(1024, 9*time.Second)
	if got := strings.Count(out.String(), "\n"); got != 1 || strings.Contains(out.String(), "\r") {
		t.Errorf("expected only the summary line, got %q", out.String())
	}
}

func TestReporterSummary(t *testing.T) {
	tests := []struct {
		name    string
		written uint64
		elapsed time.Duration
		want    string
	}{
		{"empty", 0, 0, "0 Bytes in 0s, --/sec    \n"},
		{"sub-second", 4096, ms(2), "4.00 KB in 2ms, --/sec    \n"},
		{"rounded", 10 * mb, 2*time.Second + 400*time.Microsecond, "10.00 MB in 2s, 5.00 MB/sec    \n"},
		{"large", 600 * gb, 100 * time.Second, "600 GB in 1m40s, 6.00 GB/sec    \n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r, out := newTestReporter(ModeAdaptive, 1024)
			r.Summary(tt.written, tt.elapsed)
			if got := out.String(); got != tt.want {
				t.Errorf("Summary: got %q, want %q", got, tt.want)
			}
		})
	}
}

func TestReporterPadToWidth(t *testing.T) {
	var out bytes.Buffer
	r := NewReporter(Options{Output: &out, Width: 40, Start: epoch})

	r.Observe(100, time.Second, 100)
	line := strings.TrimSuffix(out.String(), "\r")
	if len(line) != 39 {
		t.Errorf("padded line length = %d, want 39: %q", len(line), line)
	}
	if !strings.HasPrefix(line, "100 Bytes, 100 Bytes/sec ") {
		t.Errorf("unexpected line %q", line)
	}

	// Lines longer than the terminal are left alone
	out.Reset()
	r = NewReporter(Options{Output: &out, Width: 10, Start: epoch})
	r.Summary(0, 0)
	if got, want := out.String(), "0 Bytes in 0s, --/sec\n"; got != want {
		t.Errorf("Summary: got %q, want %q", got, want)
	}
}

func TestModeString(t *testing.T) {
	got := []string{ModeAdaptive.String(), ModeStatic.String(), ModeTotalsOnly.String(), Mode(7).String()}
	want := []string{"adaptive", "static", "totals-only", "Mode(7)"}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Mode strings mismatch (-want +got):\n%s", diff)
	}
}
