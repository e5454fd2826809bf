// Package http is the HTTP/1.1 message model: requests, responses and their bodies. Messages
// are immutable values. They are either produced by a parser, or assembled by the builders,
// which refuse to produce a message violating the framing rules of RFC 9112.
package http

import (
	"fmt"
	"strconv"

	"github.com/dreamsmith-workshop/multiverse/http/headers"
	"github.com/dreamsmith-workshop/multiverse/http/proto"
)

// Message is the part common to both requests and responses.
type Message interface {
	Version() proto.Version
	Headers() *headers.Headers
	Body() Body
}

// draft accumulates the parts common for both builders. The first error encountered is
// remembered and reported by Build.
type draft struct {
	version  proto.Version
	headers  *headers.Headers
	trailer  *headers.Headers
	body     []byte
	chunks   [][]byte
	bodyKind BodyKind
	err      error
}

func newDraft() draft {
	return draft{
		version: proto.HTTP11,
		headers: headers.New(),
	}
}

func (d *draft) setVersion(v proto.Version) {
	if v.Major != 1 || !v.Valid() {
		d.fail(ErrInvalidVersion)
	}

	d.version = v
}

func (d *draft) addHeader(name, value string) {
	if err := d.headers.Add(name, value); err != nil {
		d.fail(fmt.Errorf("%w: %s: %w", ErrInvalidHeader, name, err))
	}
}

func (d *draft) setBody(data []byte) {
	d.bodyKind = BodyFixed
	d.body = append([]byte{}, data...)
	d.chunks = nil
}

func (d *draft) setChunked(chunks [][]byte) {
	d.bodyKind = BodyChunked
	d.body = nil
	d.chunks = d.chunks[:0]

	for _, chunk := range chunks {
		if len(chunk) > 0 {
			d.chunks = append(d.chunks, append([]byte{}, chunk...))
		}
	}
}

func (d *draft) addTrailer(name, value string) {
	if d.trailer == nil {
		d.trailer = headers.New()
	}

	if err := d.trailer.Add(name, value); err != nil {
		d.fail(fmt.Errorf("%w: %s: %w", ErrInvalidHeader, name, err))
	}
}

func (d *draft) fail(err error) {
	if d.err == nil {
		d.err = err
	}
}

// frame checks the framing headers against the body and appends the missing ones. Content
// isn't allowed when allowsBody is false. An empty fixed body is then treated as an absent one.
func (d *draft) frame(allowsBody, isResponse bool) (Body, error) {
	if d.err != nil {
		return Body{}, d.err
	}

	hasCL, hasTE := d.headers.Has("Content-Length"), d.headers.Has("Transfer-Encoding")
	if hasCL && hasTE {
		return Body{}, ErrAmbiguousFraming
	}

	if d.trailer != nil && d.bodyKind != BodyChunked {
		return Body{}, ErrTrailerNotChunked
	}

	if !allowsBody {
		if d.bodyKind == BodyChunked || len(d.body) > 0 {
			return Body{}, ErrBodyNotAllowed
		}

		return NoBody(), nil
	}

	switch d.bodyKind {
	case BodyChunked:
		if hasCL {
			return Body{}, ErrAmbiguousFraming
		}

		if err := d.frameChunked(hasTE); err != nil {
			return Body{}, err
		}

		trailer := d.trailer
		if trailer != nil {
			trailer = trailer.Clone()
		}

		return NewChunkedBody(d.chunks, trailer), nil
	case BodyFixed:
		if hasTE {
			return Body{}, ErrFramingMismatch
		}

		if err := d.frameFixed(hasCL); err != nil {
			return Body{}, err
		}

		return NewFixedBody(d.body), nil
	}

	switch {
	case hasTE:
		// declared as chunked, but nothing to send: the last-chunk only.
		if err := d.frameChunked(true); err != nil {
			return Body{}, err
		}

		return NewChunkedBody(nil, nil), nil
	case hasCL, isResponse:
		if err := d.frameFixed(hasCL); err != nil {
			return Body{}, err
		}

		return NewFixedBody(nil), nil
	default:
		return NoBody(), nil
	}
}

func (d *draft) frameChunked(hasTE bool) error {
	if !hasTE {
		d.addHeader("Transfer-Encoding", "chunked")
		return d.err
	}

	if !d.headers.Chunked() {
		return ErrFramingMismatch
	}

	return nil
}

func (d *draft) frameFixed(hasCL bool) error {
	if !hasCL {
		d.addHeader("Content-Length", strconv.Itoa(len(d.body)))
		return d.err
	}

	length, err := d.headers.ContentLength()
	if err != nil {
		return fmt.Errorf("%w: %w", ErrContentLengthInvalid, err)
	}

	if length != uint64(len(d.body)) {
		return ErrFramingMismatch
	}

	return nil
}
