package http

import (
	"errors"
)

var (
	ErrInvalidMethod        = errors.New("method is not a valid token")
	ErrInvalidTarget        = errors.New("invalid request-target for the method")
	ErrInvalidVersion       = errors.New("HTTP-version is not supported")
	ErrInvalidHeader        = errors.New("invalid header field")
	ErrInvalidStatus        = errors.New("status code is out of the 100..599 range")
	ErrInvalidReason        = errors.New("reason phrase contains a disallowed character")
	ErrBodyNotAllowed       = errors.New("status code does not allow content")
	ErrFramingNotAllowed    = errors.New("status code does not allow framing header fields")
	ErrAmbiguousFraming     = errors.New("both Content-Length and Transfer-Encoding are present")
	ErrFramingMismatch      = errors.New("framing headers do not match the body")
	ErrContentLengthInvalid = errors.New("Content-Length is invalid")
	ErrTrailerNotChunked    = errors.New("trailer fields require a chunked body")
)
