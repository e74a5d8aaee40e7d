package main

import (
	"io"
	"time"
)

// Operations named in IOError
const (
	OpRead  = "read from input"
	OpWrite = "write to output"
)

// maxEmptyReads is how many consecutive (0, nil) reads are tolerated
// before giving up, the same limit bufio uses.
const maxEmptyReads = 100

// IOError reports a failed read or write together with its cause.
type IOError struct {
	Op  string
	Err error
}

func (e *IOError) Error() string {
	return e.Op + ": " + e.Err.Error()
}

func (e *IOError) Unwrap() error {
	return e.Err
}

// CopierOption customizes a Copier.
type CopierOption func(*Copier)

// WithClock replaces time.Now as the Copier's clock.
func WithClock(now func() time.Time) CopierOption {
	return func(c *Copier) {
		c.now = now
	}
}

// Copier forwards bytes from src to dst unmodified and keeps a running
// total, consulting a Reporter after every chunk.
type Copier struct {
	src      io.Reader
	dst      io.Writer
	reporter *Reporter
	now      func() time.Time

	start   time.Time
	buf     []byte
	written uint64
}

// NewCopier creates a Copier. The transfer clock starts here. The Copier
// follows the Reporter's mode: in ModeTotalsOnly it only asks for the final
// summary.
func NewCopier(src io.Reader, dst io.Writer, reporter *Reporter, opts ...CopierOption) *Copier {
	c := &Copier{
		src:      src,
		dst:      dst,
		reporter: reporter,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	c.start = c.now()
	c.buf = make([]byte, reporter.BufSize())
	return c
}

// Written returns the number of bytes forwarded so far.
func (c *Copier) Written() uint64 {
	return c.written
}

// Run copies until src is exhausted or an I/O error occurs. The final
// summary is printed exactly once in either case. A clean end of input
// returns a nil error.
func (c *Copier) Run() (uint64, error) {
	err := c.loop()
	c.reporter.Summary(c.written, c.now().Sub(c.start))
	return c.written, err
}

func (c *Copier) loop() error {
	empty := 0
	for {
		n, rerr := c.src.Read(c.buf)
		if n > 0 {
			empty = 0
			if err := c.forward(c.buf[:n]); err != nil {
				return err
			}
			if c.reporter.Mode() != ModeTotalsOnly {
				size, _ := c.reporter.Observe(c.written, c.now().Sub(c.start), n)
				c.resize(size)
			}
		}

		switch {
		case rerr == io.EOF:
			return nil
		case rerr != nil:
			return &IOError{Op: OpRead, Err: rerr}
		case n == 0:
			empty++
			if empty >= maxEmptyReads {
				return &IOError{Op: OpRead, Err: io.ErrNoProgress}
			}
		}
	}
}

// forward writes p in a single call. Short writes are failures.
func (c *Copier) forward(p []byte) error {
	nw, err := c.dst.Write(p)
	if err == nil && nw != len(p) {
		err = io.ErrShortWrite
	}
	if nw > 0 && nw <= len(p) {
		c.written += uint64(nw)
	}
	if err != nil {
		return &IOError{Op: OpWrite, Err: err}
	}
	return nil
}

// resize reuses the existing allocation whenever it is large enough.
func (c *Copier) resize(size int) {
	if size == len(c.buf) {
		return
	}
	if size <= cap(c.buf) {
		c.buf = c.buf[:size]
		return
	}
	c.buf = make([]byte, size)
}
