package headers

import (
	"errors"
	"strings"

	"github.com/dreamsmith-workshop/multiverse/internal/strutil"
	"github.com/dreamsmith-workshop/multiverse/rfc4648"
	"github.com/indigo-web/utils/strcomp"
)

var (
	ErrAbsent               = errors.New("header field is not present")
	ErrAmbiguous            = errors.New("header field occurs more than once")
	ErrInvalidContentLength = errors.New("Content-Length is not a non-negative decimal integer")
	ErrInvalidCredentials   = errors.New("Authorization does not carry valid basic credentials")
)

// singletons enumerates fields that must not be combined into a comma-separated list.
// Set-Cookie is here as well: it routinely contains commas and is therefore never merged.
var singletons = map[string]struct{}{
	"content-length":      {},
	"content-type":        {},
	"content-location":    {},
	"host":                {},
	"authorization":       {},
	"proxy-authorization": {},
	"date":                {},
	"expires":             {},
	"last-modified":       {},
	"etag":                {},
	"location":            {},
	"retry-after":         {},
	"max-forwards":        {},
	"from":                {},
	"referer":             {},
	"user-agent":          {},
	"server":              {},
	"age":                 {},
	"if-modified-since":   {},
	"if-unmodified-since": {},
	"if-range":            {},
	"set-cookie":          {},
}

// IsSingleton reports whether name designates a field with a singular value.
func IsSingleton(name string) bool {
	_, found := singletons[strings.ToLower(name)]
	return found
}

// Single returns the value of the field as a whole. Singleton fields must occur exactly once,
// while list-based ones are combined with ", " in the order they were received.
func (h *Headers) Single(name string) (string, error) {
	values := h.Values(name)

	switch {
	case len(values) == 0:
		return "", ErrAbsent
	case len(values) == 1:
		return values[0], nil
	case IsSingleton(name):
		return "", ErrAmbiguous
	default:
		return strings.Join(values, ", "), nil
	}
}

// ContentLength returns the declared length of the body.
func (h *Headers) ContentLength() (uint64, error) {
	value, err := h.Single("Content-Length")
	if err != nil {
		return 0, err
	}

	return ParseContentLength(value)
}

// ParseContentLength parses 1*DIGIT, rejecting signs, whitespace, lists and overflowing
// numbers.
func ParseContentLength(value string) (length uint64, err error) {
	if len(value) == 0 {
		return 0, ErrInvalidContentLength
	}

	for i := 0; i < len(value); i++ {
		char := value[i] - '0'
		if char > 9 {
			return 0, ErrInvalidContentLength
		}

		if length > (1<<64-1-uint64(char))/10 {
			return 0, ErrInvalidContentLength
		}

		length = length*10 + uint64(char)
	}

	return length, nil
}

// TransferEncoding returns the transfer codings across all the Transfer-Encoding fields in
// the order they were applied.
func (h *Headers) TransferEncoding() []string {
	return h.tokens("Transfer-Encoding")
}

// Chunked reports whether chunked is the final transfer coding applied.
func (h *Headers) Chunked() bool {
	codings := h.TransferEncoding()
	return len(codings) > 0 && strcomp.EqualFold(codings[len(codings)-1], "chunked")
}

func (h *Headers) Host() (string, error) {
	return h.Single("Host")
}

// Connection returns the connection options.
func (h *Headers) Connection() []string {
	return h.tokens("Connection")
}

// HasToken reports whether any of the fields with the name lists the token. Tokens are
// compared case-insensitively.
func (h *Headers) HasToken(name, token string) bool {
	for _, value := range h.Values(name) {
		for element := range strutil.Tokens(value) {
			if strcomp.EqualFold(element, token) {
				return true
			}
		}
	}

	return false
}

// BasicAuth decodes the credentials of the Basic authentication scheme.
func (h *Headers) BasicAuth() (user, password string, err error) {
	value, err := h.Single("Authorization")
	if err != nil {
		return "", "", err
	}

	scheme, credentials, found := strings.Cut(value, " ")
	if !found || !strcomp.EqualFold(scheme, "basic") {
		return "", "", ErrInvalidCredentials
	}

	decoded, err := rfc4648.DecodeBase64(strutil.LStripWS(credentials))
	if err != nil {
		return "", "", ErrInvalidCredentials
	}

	user, password, found = strings.Cut(string(decoded), ":")
	if !found {
		return "", "", ErrInvalidCredentials
	}

	return user, password, nil
}

func (h *Headers) tokens(name string) (tokens []string) {
	for _, value := range h.Values(name) {
		for token := range strutil.Tokens(value) {
			tokens = append(tokens, token)
		}
	}

	return tokens
}
