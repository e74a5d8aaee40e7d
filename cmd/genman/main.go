//go:build ignore

// genman generates the pipemeter man page.
// Usage: go run cmd/genman/main.go > pipemeter.1
package main

import (
	"fmt"
	"os"
)

func main() {
	// Use a fixed date for reproducible builds/CI
	date := "October 2026"

	manpage := fmt.Sprintf(`.TH PIPEMETER 1 "%s" "pipemeter 0.1.0" "User Commands"
.SH NAME
pipemeter \- measure the data flowing through a pipe
.SH SYNOPSIS
.B pipemeter
[\fIflags\fR] < \fIinput\fR > \fIoutput\fR
.SH DESCRIPTION
.B pipemeter
copies standard input to standard output without modification and reports
the amount of data transferred and the average throughput on standard error.
.PP
While data flows, a status line is rewritten in place at most once per
second. When input ends, a summary line with the total elapsed time is
printed. Nothing but the input data is ever written to standard output.
.PP
By default the read buffer adapts to the source: it doubles while reads
complete quickly and halves when a full buffer takes more than two seconds
to fill.
.SH OPTIONS
.TP
.BR \-s ", " \-\-static
Use a fixed buffer size. Progress is still reported.
.TP
.BR \-t ", " \-\-totals
Only print the final summary. Implies a fixed buffer.
.TP
.BR \-b ", " \-\-buffer " \fIsize\fR"
Initial buffer size (default 1MB). In adaptive mode the size must be a
power of two between 256 bytes and 32MB.
.TP
.BR \-h ", " \-\-help
Show help message.
.TP
.BR \-v ", " \-\-version
Show version information.
.SH SIZE FORMATS
Sizes use binary units (k=1024):
.TP
.B 4096
4096 bytes
.TP
.B 64k\fR or \fB64KB
65,536 bytes
.TP
.B 1m\fR or \fB1MB
1,048,576 bytes
.SH OUTPUT
Progress lines have the form
.PP
.RS
.B 12.50 MB, 6.25 MB/sec
.RE
.PP
and the summary
.PP
.RS
.B 25.00 MB in 4.002s, 6.25 MB/sec
.RE
.PP
Totals up to 2048 bytes are shown in Bytes, up to 2MB in KB, up to 2GB in
MB, and beyond that in GB. Past 512GB only whole gigabytes are shown.
Transfers shorter than one second report the rate as
.BR \-\- .
.SH EXIT STATUS
.TP
.B 0
Input was copied completely, or help/version was shown.
.TP
.B 1
Invalid flags, or a read or write failed.
.SH EXAMPLES
.TP
Watch a tar stream over ssh:
.B tar c dir | pipemeter | ssh host tar x
.TP
Copy an image and only print the totals:
.B pipemeter \-t < disk.img > /dev/sdb
.SH NOTES
.IP \(bu 2
A short or failed write aborts the transfer. Data already written is not
rolled back.
.IP \(bu 2
Interrupting pipemeter skips the summary line.
.SH SEE ALSO
.BR pv (1),
.BR dd (1),
.BR tee (1)
`, date)

	fmt.Fprint(os.Stdout, manpage)
}
