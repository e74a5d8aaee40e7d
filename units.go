package main

import (
	"errors"
	"fmt"
	"time"
)

// ErrRateTooEarly is returned by Units.Rate when less than one second has
// elapsed. A rate over a partial second is not reported.
var ErrRateTooEarly = errors.New("rate requires at least one second of elapsed time")

// Units holds the 1024-based unit sizes used for scaling byte counts.
// Build it once with NewUnits and pass it to whatever formats output.
type Units struct {
	KB uint64
	MB uint64
	GB uint64
}

// NewUnits returns the binary (1024-based) unit sizes.
func NewUnits() Units {
	const kb = 1024
	return Units{
		KB: kb,
		MB: kb * kb,
		GB: kb * kb * kb,
	}
}

// Ceilings are inclusive: a value equal to the ceiling stays in the
// smaller unit.
func (u Units) maxBytes() uint64 { return 2 * u.KB }
func (u Units) maxKB() uint64    { return 2 * u.MB }
func (u Units) maxMB() uint64    { return 2 * u.GB }

// maxGBPrecise is the last byte count printed with decimal gigabytes.
func (u Units) maxGBPrecise() uint64 { return 512 * u.GB }

// Bytes renders n in the smallest unit that keeps it under the unit's
// ceiling, e.g. "2048 Bytes", "2.00 KB", "12.50 MB", "3.25 GB".
//
// Values that could exceed float64's exact integer range are reduced with
// integer division before conversion. Past 512 GB only whole gigabytes are
// printed.
func (u Units) Bytes(n uint64) string {
	switch {
	case n <= u.maxBytes():
		return fmt.Sprintf("%d Bytes", n)
	case n <= u.maxKB():
		return fmt.Sprintf("%.2f KB", float64(n)/float64(u.KB))
	case n <= u.maxMB():
		return fmt.Sprintf("%.2f MB", float64(n)/float64(u.MB))
	case n <= u.maxGBPrecise():
		return fmt.Sprintf("%.2f GB", float64(n/u.MB)/float64(u.KB))
	default:
		return fmt.Sprintf("%d GB", n/u.GB)
	}
}

// Rate renders the average throughput of n bytes over elapsed, without
// the "/sec" suffix. It fails with ErrRateTooEarly when elapsed is under
// one second.
func (u Units) Rate(n uint64, elapsed time.Duration) (string, error) {
	if elapsed < time.Second {
		return "", ErrRateTooEarly
	}
	secs := elapsed.Seconds()

	var perSec float64
	switch {
	case n <= u.maxMB():
		perSec = float64(n) / secs
	case n <= u.maxGBPrecise():
		perSec = float64(n/u.MB) / secs * float64(u.MB)
	default:
		perSec = float64(n/u.GB) / secs * float64(u.GB)
	}
	return u.scaleRate(perSec), nil
}

// scaleRate uses the fixed Bytes/KB/MB/GB ladder. Rates never need the
// whole-gigabyte tier.
func (u Units) scaleRate(perSec float64) string {
	switch {
	case perSec <= float64(u.maxBytes()):
		return fmt.Sprintf("%d Bytes", uint64(perSec))
	case perSec <= float64(u.maxKB()):
		return fmt.Sprintf("%.2f KB", perSec/float64(u.KB))
	case perSec <= float64(u.maxMB()):
		return fmt.Sprintf("%.2f MB", perSec/float64(u.MB))
	default:
		return fmt.Sprintf("%.2f GB", perSec/float64(u.GB))
	}
}
