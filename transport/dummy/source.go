// Package dummy provides in-memory stream sources for tests and benchmarks.
package dummy

import (
	"io"
	"time"
)

// Source returns the pieces it was initialised with, one per read. Once all of them are
// returned, it starts over, unless it's a one-time source. This is used mainly for
// benchmarking.
type Source struct {
	data      [][]byte
	pointer   int
	oneTime   bool
	closed    bool
	Deadlines []time.Time
	// DeadlineErr is returned by SetReadDeadline if set.
	DeadlineErr error
}

func NewSource(data ...[]byte) *Source {
	return &Source{data: data}
}

// NewSourceString splits the text into pieces of n bytes.
func NewSourceString(text string, n int) *Source {
	var pieces [][]byte
	for len(text) > n {
		pieces = append(pieces, []byte(text[:n]))
		text = text[n:]
	}

	return NewSource(append(pieces, []byte(text))...)
}

// OneTime makes the source return io.EOF after the last piece instead of starting over.
func (s *Source) OneTime() *Source {
	s.oneTime = true
	return s
}

// Read copies the next piece. The piece is truncated if it doesn't fit into b.
func (s *Source) Read(b []byte) (n int, err error) {
	if s.closed {
		return 0, io.EOF
	}

	if s.pointer >= len(s.data) {
		if s.oneTime || len(s.data) == 0 {
			s.closed = true
			return 0, io.EOF
		}

		s.pointer = 0
	}

	n = copy(b, s.data[s.pointer])
	s.pointer++

	return n, nil
}

func (s *Source) SetReadDeadline(t time.Time) error {
	if s.DeadlineErr != nil {
		return s.DeadlineErr
	}

	s.Deadlines = append(s.Deadlines, t)
	return nil
}

func (s *Source) Close() error {
	s.closed = true
	return nil
}
