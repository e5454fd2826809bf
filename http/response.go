package http

import (
	"sync"

	"github.com/dreamsmith-workshop/multiverse/http/headers"
	"github.com/dreamsmith-workshop/multiverse/http/proto"
	"github.com/dreamsmith-workshop/multiverse/http/status"
	"github.com/dreamsmith-workshop/multiverse/internal/grammar"
)

// Response represents an HTTP response. It must not be copied after first use.
type Response struct {
	version proto.Version
	code    status.Code
	reason  string
	headers *headers.Headers
	body    Body

	clOnce sync.Once
	cl     uint64
	clErr  error
}

// AssembleResponse puts already validated parts together. It's intended for parsers, which
// validate each part on their own; everyone else must use NewResponse.
func AssembleResponse(
	v proto.Version, code status.Code, reason string, h *headers.Headers, body Body,
) *Response {
	return &Response{
		version: v,
		code:    code,
		reason:  reason,
		headers: h,
		body:    body,
	}
}

func (r *Response) Version() proto.Version {
	return r.version
}

func (r *Response) Code() status.Code {
	return r.code
}

// Reason returns the reason phrase as is. It carries no semantics and might be empty.
func (r *Response) Reason() string {
	return r.reason
}

func (r *Response) Headers() *headers.Headers {
	return r.headers
}

func (r *Response) Body() Body {
	return r.body
}

// ContentLength returns the value of the Content-Length field. It's parsed once, on the
// first call.
func (r *Response) ContentLength() (uint64, error) {
	r.clOnce.Do(func() {
		r.cl, r.clErr = r.headers.ContentLength()
	})

	return r.cl, r.clErr
}

// ResponseBuilder assembles a response, validating it in Build.
type ResponseBuilder struct {
	draft
	code   status.Code
	reason string
}

// NewResponse starts building a response with the given code. The reason phrase defaults to
// the registered one, which is empty for unknown codes.
func NewResponse(code status.Code) *ResponseBuilder {
	return &ResponseBuilder{
		draft:  newDraft(),
		code:   code,
		reason: status.Text(code),
	}
}

func (b *ResponseBuilder) Version(v proto.Version) *ResponseBuilder {
	b.setVersion(v)
	return b
}

// Reason overrides the reason phrase.
func (b *ResponseBuilder) Reason(reason string) *ResponseBuilder {
	if !grammar.IsReason(reason) {
		b.fail(ErrInvalidReason)
	}

	b.reason = reason
	return b
}

// Header appends a header field. Fields with the same name are never overwritten.
func (b *ResponseBuilder) Header(name, value string) *ResponseBuilder {
	b.addHeader(name, value)
	return b
}

// Body sets the fixed-length content. The data is copied.
func (b *ResponseBuilder) Body(data []byte) *ResponseBuilder {
	b.setBody(data)
	return b
}

// Chunked sets the content to be transferred in chunks. Empty chunks are dropped.
func (b *ResponseBuilder) Chunked(chunks ...[]byte) *ResponseBuilder {
	b.setChunked(chunks)
	return b
}

// Trailer appends a trailer field. Trailers are allowed for chunked bodies only.
func (b *ResponseBuilder) Trailer(name, value string) *ResponseBuilder {
	b.addTrailer(name, value)
	return b
}

// Build validates the response and appends missing framing headers. A response whose status
// allows content, but which has none, gets Content-Length: 0.
func (b *ResponseBuilder) Build() (*Response, error) {
	if !b.code.Valid() {
		return nil, ErrInvalidStatus
	}

	// RFC 9110, 8.6 and RFC 9112, 6.1. A 304 may still announce the length of the
	// representation it stands for.
	if b.code.IsInformational() || b.code == status.NoContent {
		if b.headers.Has("Content-Length") || b.headers.Has("Transfer-Encoding") {
			return nil, ErrFramingNotAllowed
		}
	}

	body, err := b.frame(b.code.AllowsBody(), true)
	if err != nil {
		return nil, err
	}

	return AssembleResponse(b.version, b.code, b.reason, b.headers.Clone(), body), nil
}
