package http

import (
	"fmt"
	"sync"

	"github.com/dreamsmith-workshop/multiverse/http/headers"
	"github.com/dreamsmith-workshop/multiverse/http/method"
	"github.com/dreamsmith-workshop/multiverse/http/proto"
	"github.com/dreamsmith-workshop/multiverse/http/target"
)

// Request represents an HTTP request. It must not be copied after first use.
type Request struct {
	method  method.Method
	target  target.Target
	version proto.Version
	headers *headers.Headers
	body    Body

	clOnce sync.Once
	cl     uint64
	clErr  error
}

// AssembleRequest puts already validated parts together. It's intended for parsers, which
// validate each part on their own; everyone else must use NewRequest.
func AssembleRequest(
	m method.Method, t target.Target, v proto.Version, h *headers.Headers, body Body,
) *Request {
	return &Request{
		method:  m,
		target:  t,
		version: v,
		headers: h,
		body:    body,
	}
}

func (r *Request) Method() method.Method {
	return r.method
}

func (r *Request) Target() target.Target {
	return r.target
}

func (r *Request) Version() proto.Version {
	return r.version
}

func (r *Request) Headers() *headers.Headers {
	return r.headers
}

func (r *Request) Body() Body {
	return r.body
}

// ContentLength returns the value of the Content-Length field. It's parsed once, on the
// first call.
func (r *Request) ContentLength() (uint64, error) {
	r.clOnce.Do(func() {
		r.cl, r.clErr = r.headers.ContentLength()
	})

	return r.cl, r.clErr
}

// RequestBuilder assembles a request, validating it in Build.
type RequestBuilder struct {
	draft
	method method.Method
	target string
}

// NewRequest starts building a request. HTTP/1.1 is used unless overridden.
func NewRequest(m method.Method, rawTarget string) *RequestBuilder {
	return &RequestBuilder{
		draft:  newDraft(),
		method: m,
		target: rawTarget,
	}
}

func (b *RequestBuilder) Version(v proto.Version) *RequestBuilder {
	b.setVersion(v)
	return b
}

// Header appends a header field. Fields with the same name are never overwritten.
func (b *RequestBuilder) Header(name, value string) *RequestBuilder {
	b.addHeader(name, value)
	return b
}

// Body sets the fixed-length content. The data is copied.
func (b *RequestBuilder) Body(data []byte) *RequestBuilder {
	b.setBody(data)
	return b
}

// Chunked sets the content to be transferred in chunks. Empty chunks are dropped.
func (b *RequestBuilder) Chunked(chunks ...[]byte) *RequestBuilder {
	b.setChunked(chunks)
	return b
}

// Trailer appends a trailer field. Trailers are allowed for chunked bodies only.
func (b *RequestBuilder) Trailer(name, value string) *RequestBuilder {
	b.addTrailer(name, value)
	return b
}

// Build validates the request and appends missing framing headers.
func (b *RequestBuilder) Build() (*Request, error) {
	if !b.method.Valid() {
		return nil, ErrInvalidMethod
	}

	t, err := target.ParseString(b.target, target.ExpectedForm(b.method))
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidTarget, err)
	}

	body, err := b.frame(true, false)
	if err != nil {
		return nil, err
	}

	return AssembleRequest(b.method, t, b.version, b.headers.Clone(), body), nil
}
