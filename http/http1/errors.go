package http1

import (
	"fmt"

	"github.com/dreamsmith-workshop/multiverse/http/status"
)

// Kind classifies parse failures.
type Kind uint8

const (
	MalformedStartLine Kind = iota + 1
	MalformedHeader
	MalformedHeaderFold
	InvalidTarget
	UnsupportedVersion
	AmbiguousFraming
	InvalidContentLength
	UnsupportedTransferEncoding
	TruncatedBody
	UnexpectedEOF
	MalformedChunk
	ChunkSizeTooLarge
	BodyTooLarge
	HeaderTooLarge
	TooManyHeaders
	StartLineTooLong
)

var kinds = [...]struct {
	name string
	code status.Code
}{
	MalformedStartLine:          {"malformed start-line", status.BadRequest},
	MalformedHeader:             {"malformed header field", status.BadRequest},
	MalformedHeaderFold:         {"obs-fold with no field to continue", status.BadRequest},
	InvalidTarget:               {"invalid request-target", status.BadRequest},
	UnsupportedVersion:          {"unsupported HTTP version", status.HTTPVersionNotSupported},
	AmbiguousFraming:            {"ambiguous message framing", status.BadRequest},
	InvalidContentLength:        {"invalid Content-Length", status.BadRequest},
	UnsupportedTransferEncoding: {"unsupported transfer coding", status.NotImplemented},
	TruncatedBody:               {"truncated body", status.BadRequest},
	UnexpectedEOF:               {"unexpected end of input", status.BadRequest},
	MalformedChunk:              {"malformed chunk", status.BadRequest},
	ChunkSizeTooLarge:           {"chunk size too large", status.RequestEntityTooLarge},
	BodyTooLarge:                {"body too large", status.RequestEntityTooLarge},
	HeaderTooLarge:              {"header fields too large", status.RequestHeaderFieldsTooLarge},
	TooManyHeaders:              {"too many header fields", status.RequestHeaderFieldsTooLarge},
	StartLineTooLong:            {"start-line too long", status.RequestURITooLong},
}

func (k Kind) String() string {
	if int(k) >= len(kinds) || k == 0 {
		return "unknown"
	}

	return kinds[k].name
}

// StatusCode returns the status code a server would respond with.
func (k Kind) StatusCode() status.Code {
	if int(k) >= len(kinds) || k == 0 {
		return status.BadRequest
	}

	return kinds[k].code
}

// Error is a parse failure along with the absolute stream offset it was detected at.
type Error struct {
	Kind   Kind
	Offset uint64
}

func newError(kind Kind, offset uint64) *Error {
	return &Error{
		Kind:   kind,
		Offset: offset,
	}
}

func (e *Error) Error() string {
	return fmt.Sprintf("http1: %s at offset %d", e.Kind, e.Offset)
}

// Is matches errors of the same kind regardless of the offset, so errors.Is(err,
// ErrAmbiguousFraming) holds for any ambiguous framing failure.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	return ok && t.Kind == e.Kind
}

var (
	ErrMalformedStartLine          = &Error{Kind: MalformedStartLine}
	ErrMalformedHeader             = &Error{Kind: MalformedHeader}
	ErrMalformedHeaderFold         = &Error{Kind: MalformedHeaderFold}
	ErrInvalidTarget               = &Error{Kind: InvalidTarget}
	ErrUnsupportedVersion          = &Error{Kind: UnsupportedVersion}
	ErrAmbiguousFraming            = &Error{Kind: AmbiguousFraming}
	ErrInvalidContentLength        = &Error{Kind: InvalidContentLength}
	ErrUnsupportedTransferEncoding = &Error{Kind: UnsupportedTransferEncoding}
	ErrTruncatedBody               = &Error{Kind: TruncatedBody}
	ErrUnexpectedEOF               = &Error{Kind: UnexpectedEOF}
	ErrMalformedChunk              = &Error{Kind: MalformedChunk}
	ErrChunkSizeTooLarge           = &Error{Kind: ChunkSizeTooLarge}
	ErrBodyTooLarge                = &Error{Kind: BodyTooLarge}
	ErrHeaderTooLarge              = &Error{Kind: HeaderTooLarge}
	ErrTooManyHeaders              = &Error{Kind: TooManyHeaders}
	ErrStartLineTooLong            = &Error{Kind: StartLineTooLong}
)
