package http

import (
	"bytes"
	"slices"

	"github.com/dreamsmith-workshop/multiverse/http/headers"
	"github.com/indigo-web/utils/ft"
)

// BodyKind tells how the message content is framed.
type BodyKind uint8

const (
	// BodyAbsent means the message has no content at all, which differs from an empty
	// fixed-length one.
	BodyAbsent BodyKind = iota
	// BodyFixed is delimited by Content-Length, or by closing the connection.
	BodyFixed
	// BodyChunked is transferred using the chunked transfer coding.
	BodyChunked
)

func (k BodyKind) String() string {
	switch k {
	case BodyAbsent:
		return "absent"
	case BodyFixed:
		return "fixed"
	case BodyChunked:
		return "chunked"
	default:
		return "unknown"
	}
}

// Body describes the content of a message. It is immutable once constructed.
type Body struct {
	kind    BodyKind
	data    []byte
	chunks  [][]byte
	trailer *headers.Headers
}

// NoBody returns the descriptor of an absent body.
func NoBody() Body {
	return Body{kind: BodyAbsent}
}

// NewFixedBody returns a fixed-length body. The data isn't copied and must not be modified
// afterwards.
func NewFixedBody(data []byte) Body {
	if data == nil {
		data = []byte{}
	}

	return Body{
		kind: BodyFixed,
		data: data,
	}
}

// NewChunkedBody returns a chunked body. Empty chunks are dropped, as a zero-length chunk
// terminates the body on the wire. A nil trailer is replaced by an empty collection.
func NewChunkedBody(chunks [][]byte, trailer *headers.Headers) Body {
	chunks = slices.DeleteFunc(slices.Clone(chunks), func(chunk []byte) bool {
		return len(chunk) == 0
	})

	if trailer == nil {
		trailer = headers.New()
	}

	return Body{
		kind:    BodyChunked,
		chunks:  chunks,
		trailer: trailer,
	}
}

func (b Body) Kind() BodyKind {
	return b.kind
}

// Len returns the total length of the content.
func (b Body) Len() uint64 {
	switch b.kind {
	case BodyFixed:
		return uint64(len(b.data))
	case BodyChunked:
		return uint64(ft.Sum(ft.Map(length, b.chunks)))
	default:
		return 0
	}
}

// Bytes returns the whole content. Chunked bodies are concatenated into a new slice.
func (b Body) Bytes() []byte {
	switch b.kind {
	case BodyFixed:
		return b.data
	case BodyChunked:
		return bytes.Join(b.chunks, nil)
	default:
		return nil
	}
}

// Chunks returns the chunk sequence. Only chunked bodies have any.
func (b Body) Chunks() [][]byte {
	return b.chunks
}

// Trailer returns the trailer section of a chunked body. It is nil for other kinds.
func (b Body) Trailer() *headers.Headers {
	return b.trailer
}

// Equal reports whether both bodies have the same kind, content, chunk boundaries and
// trailer fields.
func (b Body) Equal(other Body) bool {
	if b.kind != other.kind {
		return false
	}

	switch b.kind {
	case BodyFixed:
		return bytes.Equal(b.data, other.data)
	case BodyChunked:
		return slices.EqualFunc(b.chunks, other.chunks, bytes.Equal) && b.trailer.Equal(other.trailer)
	default:
		return true
	}
}

// unfortunately, len() cannot be passed as an ordinary function
func length(b []byte) int {
	return len(b)
}
