// Package transport adapts byte streams to the HTTP/1.1 parser: it reads from an io.Reader,
// keeps pipelined leftovers between messages and handles the end of the stream.
package transport

import (
	"io"
	"iter"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/dreamsmith-workshop/multiverse/config"
	"github.com/dreamsmith-workshop/multiverse/http"
	"github.com/dreamsmith-workshop/multiverse/http/http1"
	"github.com/indigo-web/utils/unreader"
	"github.com/pkg/errors"
)

// Deadliner is implemented by sources supporting read deadlines, e.g. net.Conn.
type Deadliner interface {
	SetReadDeadline(t time.Time) error
}

// Message is a message type a Reader can produce. Both *http.Request and *http.Response
// satisfy it.
type Message interface {
	comparable
	http.Message
}

type Option func(*options)

type options struct {
	clock   clock.Clock
	timeout time.Duration
	buff    []byte
}

// WithClock replaces the clock deadlines are computed from.
func WithClock(c clock.Clock) Option {
	return func(o *options) {
		o.clock = c
	}
}

// WithTimeout overrides config.NET.ReadTimeout. Zero disables deadlines.
func WithTimeout(timeout time.Duration) Option {
	return func(o *options) {
		o.timeout = timeout
	}
}

// WithBuffer makes the reader use the passed buffer instead of allocating its own.
func WithBuffer(buff []byte) Option {
	return func(o *options) {
		o.buff = buff
	}
}

// Reader produces messages out of a stream. It isn't safe for concurrent use.
type Reader[M Message] struct {
	src      io.Reader
	parser   *http1.Parser[M]
	unreader *unreader.Unreader
	clock    clock.Clock
	timeout  time.Duration
	buff     []byte
	// err is either the error the source returned along with the last chunk of data, which
	// is handled only after the data is consumed, or the terminal failure.
	err      error
	finished bool
}

func NewReader[M Message](src io.Reader, parser *http1.Parser[M], cfg config.NET, opts ...Option) *Reader[M] {
	o := options{
		clock:   clock.New(),
		timeout: cfg.ReadTimeout,
	}

	for _, opt := range opts {
		opt(&o)
	}

	if len(o.buff) == 0 {
		o.buff = make([]byte, max(cfg.ReadBufferSize, 1))
	}

	return &Reader[M]{
		src:      src,
		parser:   parser,
		unreader: new(unreader.Unreader),
		clock:    o.clock,
		timeout:  o.timeout,
		buff:     o.buff,
	}
}

// Read returns the next message of the stream. io.EOF is returned if the stream ended cleanly
// between messages. Parser errors are returned as is, errors of the source are wrapped.
// After any error all the subsequent calls fail, too.
func (r *Reader[M]) Read() (msg M, err error) {
	var zero M

	for !r.finished {
		data, err := r.unreader.PendingOr(r.fill)
		if err != nil {
			r.finished, r.err = true, err
			return zero, err
		}

		if len(data) > 0 {
			msg, extra, err := r.parser.Parse(data)
			if err != nil {
				r.finished, r.err = true, err
				return zero, err
			}

			if msg != zero {
				r.unreader.Unread(extra)
				return msg, nil
			}
		}

		if r.err != nil {
			return r.end()
		}
	}

	if r.err != nil && !errors.Is(r.err, io.EOF) {
		return zero, r.err
	}

	return zero, io.EOF
}

// All iterates over the messages until the stream ends. A failure is yielded once, and the
// iteration stops right after it.
func (r *Reader[M]) All() iter.Seq2[M, error] {
	return func(yield func(M, error) bool) {
		for {
			msg, err := r.Read()
			if errors.Is(err, io.EOF) {
				return
			}

			if !yield(msg, err) || err != nil {
				return
			}
		}
	}
}

func (r *Reader[M]) fill() ([]byte, error) {
	if r.err != nil {
		return nil, nil
	}

	if d, ok := r.src.(Deadliner); ok && r.timeout > 0 {
		if err := d.SetReadDeadline(r.clock.Now().Add(r.timeout)); err != nil {
			return nil, errors.Wrap(err, "transport: set read deadline")
		}
	}

	n, err := r.src.Read(r.buff)
	if err != nil {
		r.err = err
	}

	return r.buff[:n], nil
}

func (r *Reader[M]) end() (msg M, err error) {
	r.finished = true

	if !errors.Is(r.err, io.EOF) {
		r.err = errors.Wrap(r.err, "transport: read")
		return msg, r.err
	}

	msg, err = r.parser.Finish()
	if err != nil {
		r.err = err
		return msg, err
	}

	var zero M
	if msg == zero {
		return msg, io.EOF
	}

	return msg, nil
}
