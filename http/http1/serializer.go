package http1

import (
	"io"
	"strconv"

	"github.com/dreamsmith-workshop/multiverse/http"
	"github.com/dreamsmith-workshop/multiverse/http/headers"
	"github.com/dreamsmith-workshop/multiverse/http/status"
)

const crlf = "\r\n"

// Serialize renders the message in the HTTP/1.1 wire format. The output is deterministic:
// header fields are written in their stored order and casing. Messages of unknown types
// produce nil.
func Serialize(m http.Message) []byte {
	switch msg := m.(type) {
	case *http.Request:
		return AppendRequest(nil, msg)
	case *http.Response:
		return AppendResponse(nil, msg)
	default:
		return nil
	}
}

// WriteTo serializes the message and writes it in a single call.
func WriteTo(w io.Writer, m http.Message) (int64, error) {
	n, err := w.Write(Serialize(m))
	return int64(n), err
}

// AppendRequest appends the serialized request to dst.
func AppendRequest(dst []byte, r *http.Request) []byte {
	s := serializer{buff: dst}
	s.buff = append(s.buff, r.Method().String()...)
	s.sp()
	s.buff = append(s.buff, r.Target().String()...)
	s.sp()
	s.buff = r.Version().AppendTo(s.buff)
	s.crlf()
	s.appendMessage(r.Headers(), r.Body())

	return s.buff
}

// AppendResponse appends the serialized response to dst. An empty reason phrase still keeps
// the separating space.
func AppendResponse(dst []byte, r *http.Response) []byte {
	s := serializer{buff: dst}
	s.buff = r.Version().AppendTo(s.buff)
	s.sp()
	s.buff = append(s.buff, status.StringCode(r.Code())...)
	s.sp()
	s.buff = append(s.buff, r.Reason()...)
	s.crlf()
	s.appendMessage(r.Headers(), r.Body())

	return s.buff
}

type serializer struct {
	buff []byte
}

func (s *serializer) appendMessage(hdrs *headers.Headers, body http.Body) {
	s.appendHeaders(hdrs)

	switch body.Kind() {
	case http.BodyFixed:
		// a Transfer-Encoding other than chunked means the content is delimited by closing
		// the connection, so adding Content-Length would make the framing ambiguous.
		if !hdrs.Has("Content-Length") && !hdrs.Has("Transfer-Encoding") {
			s.appendContentLength(body.Len())
		}

		s.crlf() // to finalize the headers block
		s.buff = append(s.buff, body.Bytes()...)
	case http.BodyChunked:
		if !hdrs.Chunked() {
			s.appendHeader("Transfer-Encoding", "chunked")
		}

		s.crlf()
		s.appendChunks(body)
	default:
		s.crlf()
	}
}

func (s *serializer) appendHeaders(hdrs *headers.Headers) {
	for name, value := range hdrs.All() {
		s.appendHeader(name, value)
	}
}

func (s *serializer) appendHeader(name, value string) {
	s.buff = append(s.buff, name...)
	s.colonsp()
	s.buff = append(s.buff, value...)
	s.crlf()
}

func (s *serializer) appendContentLength(value uint64) {
	s.buff = append(s.buff, "Content-Length: "...)
	s.buff = strconv.AppendUint(s.buff, value, 10)
	s.crlf()
}

// appendChunks writes every chunk as hex length, CRLF, data and CRLF, followed by the
// last-chunk and the trailer section.
func (s *serializer) appendChunks(body http.Body) {
	for _, chunk := range body.Chunks() {
		s.buff = strconv.AppendUint(s.buff, uint64(len(chunk)), 16)
		s.crlf()
		s.buff = append(s.buff, chunk...)
		s.crlf()
	}

	s.buff = append(s.buff, '0')
	s.crlf()
	s.appendHeaders(body.Trailer())
	s.crlf()
}

func (s *serializer) sp() {
	s.buff = append(s.buff, ' ')
}

func (s *serializer) colonsp() {
	s.buff = append(s.buff, ':', ' ')
}

func (s *serializer) crlf() {
	s.buff = append(s.buff, crlf...)
}
