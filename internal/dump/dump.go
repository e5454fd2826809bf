// Package dump renders parsed messages as JSON objects for inspection.
package dump

import (
	"io"
	"unicode/utf8"

	"github.com/dreamsmith-workshop/multiverse/http"
	"github.com/dreamsmith-workshop/multiverse/http/headers"
	"github.com/dreamsmith-workshop/multiverse/http/target"
	"github.com/dreamsmith-workshop/multiverse/rfc4648"
	"github.com/indigo-web/utils/ft"
	json "github.com/json-iterator/go"
)

type Field struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

type Target struct {
	Raw       string `json:"raw"`
	Form      string `json:"form"`
	Scheme    string `json:"scheme,omitempty"`
	Authority string `json:"authority,omitempty"`
	Path      string `json:"path,omitempty"`
	Query     string `json:"query,omitempty"`
}

// Body carries the content either as text, or base64-encoded if it isn't valid UTF-8.
type Body struct {
	Kind    string  `json:"kind"`
	Length  uint64  `json:"length"`
	Text    *string `json:"text,omitempty"`
	Base64  *string `json:"base64,omitempty"`
	Chunks  []int   `json:"chunks,omitempty"`
	Trailer []Field `json:"trailer,omitempty"`
}

type Request struct {
	Method  string  `json:"method"`
	Target  Target  `json:"target"`
	Version string  `json:"version"`
	Headers []Field `json:"headers"`
	Body    Body    `json:"body"`
}

type Response struct {
	Version string  `json:"version"`
	Code    int     `json:"code"`
	Reason  string  `json:"reason"`
	Headers []Field `json:"headers"`
	Body    Body    `json:"body"`
}

func FromRequest(r *http.Request) Request {
	return Request{
		Method:  r.Method().String(),
		Target:  fromTarget(r.Target()),
		Version: r.Version().String(),
		Headers: fromHeaders(r.Headers()),
		Body:    fromBody(r.Body()),
	}
}

func FromResponse(r *http.Response) Response {
	return Response{
		Version: r.Version().String(),
		Code:    int(r.Code()),
		Reason:  r.Reason(),
		Headers: fromHeaders(r.Headers()),
		Body:    fromBody(r.Body()),
	}
}

// Message converts either a request or a response. Other implementations of http.Message
// are rendered by their common parts only.
func Message(m http.Message) any {
	switch msg := m.(type) {
	case *http.Request:
		return FromRequest(msg)
	case *http.Response:
		return FromResponse(msg)
	default:
		return struct {
			Version string  `json:"version"`
			Headers []Field `json:"headers"`
			Body    Body    `json:"body"`
		}{
			Version: m.Version().String(),
			Headers: fromHeaders(m.Headers()),
			Body:    fromBody(m.Body()),
		}
	}
}

// Write renders the message as a single line of JSON followed by a line feed.
func Write(w io.Writer, m http.Message) error {
	stream := json.ConfigDefault.BorrowStream(w)
	defer json.ConfigDefault.ReturnStream(stream)

	stream.WriteVal(Message(m))
	stream.WriteRaw("\n")
	if stream.Error != nil {
		return stream.Error
	}

	return stream.Flush()
}

// Marshal renders the message indented, for humans.
func Marshal(m http.Message) ([]byte, error) {
	return json.ConfigCompatibleWithStandardLibrary.MarshalIndent(Message(m), "", "  ")
}

func fromTarget(t target.Target) Target {
	return Target{
		Raw:       t.String(),
		Form:      t.Form().String(),
		Scheme:    t.Scheme(),
		Authority: t.Authority(),
		Path:      t.Path(),
		Query:     t.Query(),
	}
}

func fromField(f headers.Field) Field {
	return Field{Name: f.Name, Value: f.Value}
}

func fromHeaders(h *headers.Headers) []Field {
	if h == nil || h.Empty() {
		return []Field{}
	}

	return ft.Map(fromField, h.Fields())
}

func length(b []byte) int {
	return len(b)
}

func fromBody(b http.Body) Body {
	body := Body{
		Kind:   b.Kind().String(),
		Length: b.Len(),
	}

	if b.Kind() == http.BodyAbsent {
		return body
	}

	data := b.Bytes()
	if utf8.Valid(data) {
		text := string(data)
		body.Text = &text
	} else {
		encoded := rfc4648.EncodeBase64(data)
		body.Base64 = &encoded
	}

	if b.Kind() == http.BodyChunked {
		body.Chunks = ft.Map(length, b.Chunks())
		if trailer := b.Trailer(); trailer != nil && !trailer.Empty() {
			body.Trailer = ft.Map(fromField, trailer.Fields())
		}
	}

	return body
}
