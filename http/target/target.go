// Package target parses and validates request-targets (RFC 9112, 3.2). Every form keeps
// the raw bytes verbatim: percent-encoded octets are never decoded implicitly.
package target

import (
	"errors"
	"fmt"
	"strings"

	"github.com/dreamsmith-workshop/multiverse/http/method"
	"github.com/dreamsmith-workshop/multiverse/internal/grammar"
	"github.com/dreamsmith-workshop/multiverse/internal/hexconv"
)

// Form is a set of request-target forms. Single forms are used to describe a parsed target,
// combinations are used to describe which forms are acceptable.
type Form uint8

const (
	Origin Form = 1 << iota
	Absolute
	Authority
	Asterisk

	Any = Origin | Absolute | Authority | Asterisk
)

func (f Form) String() string {
	switch f {
	case Origin:
		return "origin-form"
	case Absolute:
		return "absolute-form"
	case Authority:
		return "authority-form"
	case Asterisk:
		return "asterisk-form"
	default:
		return "form-set"
	}
}

var (
	ErrInvalidTarget            = errors.New("invalid request-target")
	ErrEmpty                    = fmt.Errorf("%w: empty", ErrInvalidTarget)
	ErrMalformedPercentEncoding = fmt.Errorf("%w: malformed percent-encoding", ErrInvalidTarget)
	ErrDisallowedChar           = fmt.Errorf("%w: disallowed character", ErrInvalidTarget)
	ErrFragment                 = fmt.Errorf("%w: fragments are not allowed", ErrInvalidTarget)
	ErrMissingScheme            = fmt.Errorf("%w: missing scheme", ErrInvalidTarget)
	ErrMissingAuthority         = fmt.Errorf("%w: missing authority", ErrInvalidTarget)
	ErrMissingPort              = fmt.Errorf("%w: missing port", ErrInvalidTarget)
	ErrUnexpectedForm           = fmt.Errorf("%w: unexpected form", ErrInvalidTarget)
)

// Target is a parsed request-target. The zero value is not a valid target.
type Target struct {
	raw       string
	scheme    string
	authority string
	path      string
	query     string
	hasQuery  bool
	form      Form
}

// ExpectedForm returns the set of forms acceptable for the method: authority-form is reserved
// for CONNECT, and asterisk-form for OPTIONS.
func ExpectedForm(m method.Method) Form {
	switch m {
	case method.CONNECT:
		return Authority
	case method.OPTIONS:
		return Origin | Absolute | Asterisk
	default:
		return Origin | Absolute
	}
}

// Parse validates raw as a request-target of one of the expected forms. The input is copied, so
// the caller may reuse the slice afterwards.
func Parse(raw []byte, expected Form) (Target, error) {
	return ParseString(string(raw), expected)
}

// ParseString does the same as Parse, but the string is referenced without copying.
func ParseString(raw string, expected Form) (t Target, err error) {
	if len(raw) == 0 {
		return t, ErrEmpty
	}

	if err = validateChars(raw); err != nil {
		return t, err
	}

	t.raw = raw

	switch {
	case raw == "*":
		t.form = Asterisk
	case raw[0] == '/':
		t.form = Origin
		t.path, t.query, t.hasQuery = splitQuery(raw)
		err = validatePath(t.path, t.query)
	case expected&Authority != 0 && !hasHierPart(raw) &&
		(expected&Absolute == 0 || validateAuthorityForm(raw) == nil):
		t.form = Authority
		t.authority = raw
		err = validateAuthorityForm(raw)
	default:
		t.form = Absolute
		err = t.parseAbsolute(raw)
	}

	if err != nil {
		return Target{}, err
	}

	if t.form&expected == 0 {
		return Target{}, ErrUnexpectedForm
	}

	return t, nil
}

func (t *Target) parseAbsolute(raw string) error {
	colon := strings.IndexByte(raw, ':')
	if colon <= 0 || !isScheme(raw[:colon]) {
		return ErrMissingScheme
	}

	t.scheme, raw = raw[:colon], raw[colon+1:]
	if strings.HasPrefix(raw, "//") {
		raw = raw[2:]
		end := strings.IndexAny(raw, "/?")
		if end == -1 {
			end = len(raw)
		}

		t.authority, raw = raw[:end], raw[end:]
		if err := validateAuthority(t.authority); err != nil {
			return err
		}
	}

	if isHTTPScheme(t.scheme) && len(t.Host()) == 0 {
		// RFC 9110, 4.2.1: http(s) URIs with an empty host must be rejected.
		return ErrMissingAuthority
	}

	t.path, t.query, t.hasQuery = splitQuery(raw)

	return validatePath(t.path, t.query)
}

func (t Target) Form() Form {
	return t.form
}

// String returns the target exactly as it was received.
func (t Target) String() string {
	return t.raw
}

// Path returns the raw path of origin-form and absolute-form targets. It is empty otherwise.
func (t Target) Path() string {
	return t.path
}

// Query returns the raw query without the leading question mark.
func (t Target) Query() string {
	return t.query
}

// HasQuery distinguishes an empty query ("/?") from an absent one ("/").
func (t Target) HasQuery() bool {
	return t.hasQuery
}

func (t Target) Scheme() string {
	return t.scheme
}

// Authority returns the authority component of absolute-form and authority-form targets.
func (t Target) Authority() string {
	return t.authority
}

// Host returns the host subcomponent of the authority. IP-literals keep their brackets.
func (t Target) Host() string {
	host, _ := splitHostPort(t.authority)
	return host
}

// Port returns the port subcomponent of the authority, if any.
func (t Target) Port() string {
	_, port := splitHostPort(t.authority)
	return port
}

// Normalized returns the target with its percent-encoding normalized.
func (t Target) Normalized() string {
	return NormalizePercentEncoding(t.raw)
}

// IsZero reports whether the target was never parsed.
func (t Target) IsZero() bool {
	return t.form == 0
}

func validateChars(raw string) error {
	for i := 0; i < len(raw); i++ {
		switch c := raw[i]; {
		case c == '#':
			return ErrFragment
		case c == '%':
			if i+2 >= len(raw) || (hexconv.Halfbyte[raw[i+1]]|hexconv.Halfbyte[raw[i+2]]) == 0xFF {
				return ErrMalformedPercentEncoding
			}

			i += 2
		case !grammar.IsVChar(c):
			return ErrDisallowedChar
		}
	}

	return nil
}

func splitQuery(raw string) (path, query string, hasQuery bool) {
	path, query, hasQuery = strings.Cut(raw, "?")
	return path, query, hasQuery
}

func validatePath(path, query string) error {
	for i := 0; i < len(path); i++ {
		if c := path[i]; !grammar.IsPChar(c) && c != '/' && c != '%' {
			return ErrDisallowedChar
		}
	}

	for i := 0; i < len(query); i++ {
		if c := query[i]; !grammar.IsPChar(c) && c != '/' && c != '?' && c != '%' {
			return ErrDisallowedChar
		}
	}

	return nil
}

// isScheme matches ALPHA *( ALPHA / DIGIT / "+" / "-" / "." ).
func isScheme(str string) bool {
	if len(str) == 0 || !isAlpha(str[0]) {
		return false
	}

	for i := 1; i < len(str); i++ {
		if c := str[i]; !isAlpha(c) && !grammar.IsDigit(c) && c != '+' && c != '-' && c != '.' {
			return false
		}
	}

	return true
}

func isHTTPScheme(scheme string) bool {
	return strings.EqualFold(scheme, "http") || strings.EqualFold(scheme, "https")
}

func isAlpha(c byte) bool {
	return (c|0x20) >= 'a' && (c|0x20) <= 'z'
}

// hasHierPart tells whether the target looks like "scheme://...". Otherwise, "host:port" is
// indistinguishable from "scheme:path-rootless".
func hasHierPart(raw string) bool {
	colon := strings.IndexByte(raw, ':')
	return colon > 0 && isScheme(raw[:colon]) && strings.HasPrefix(raw[colon+1:], "//")
}

func validateAuthority(authority string) error {
	hostport := authority
	if at := strings.LastIndexByte(authority, '@'); at != -1 {
		for i := 0; i < at; i++ {
			if c := authority[i]; !grammar.IsUnreserved(c) && !grammar.IsSubDelim(c) && c != ':' && c != '%' {
				return ErrDisallowedChar
			}
		}

		hostport = authority[at+1:]
	}

	host, port := splitHostPort(hostport)

	return validateHostPort(host, port)
}

// validateAuthorityForm matches uri-host ":" port, with no userinfo allowed.
func validateAuthorityForm(authority string) error {
	if strings.IndexByte(authority, '@') != -1 {
		return ErrDisallowedChar
	}

	host, port := splitHostPort(authority)
	if len(host) == 0 {
		return ErrMissingAuthority
	}

	if len(port) == 0 {
		return ErrMissingPort
	}

	return validateHostPort(host, port)
}

func validateHostPort(host, port string) error {
	for i := 0; i < len(port); i++ {
		if !grammar.IsDigit(port[i]) {
			return ErrDisallowedChar
		}
	}

	if len(host) > 0 && host[0] == '[' {
		if host[len(host)-1] != ']' || len(host) < 3 {
			return ErrDisallowedChar
		}

		for i := 1; i < len(host)-1; i++ {
			if c := host[i]; !grammar.IsHex(c) && c != ':' && c != '.' && !(c == 'v' || c == 'V') &&
				!grammar.IsUnreserved(c) && !grammar.IsSubDelim(c) {
				return ErrDisallowedChar
			}
		}

		return nil
	}

	for i := 0; i < len(host); i++ {
		if c := host[i]; !grammar.IsUnreserved(c) && !grammar.IsSubDelim(c) && c != '%' {
			return ErrDisallowedChar
		}
	}

	return nil
}

// splitHostPort strips userinfo and splits the rest into host and port. Brackets of an
// IP-literal are kept.
func splitHostPort(authority string) (host, port string) {
	if at := strings.LastIndexByte(authority, '@'); at != -1 {
		authority = authority[at+1:]
	}

	if len(authority) > 0 && authority[0] == '[' {
		end := strings.IndexByte(authority, ']')
		if end == -1 {
			return authority, ""
		}

		host, rest := authority[:end+1], authority[end+1:]
		if len(rest) > 0 && rest[0] == ':' {
			return host, rest[1:]
		}

		if len(rest) > 0 {
			// garbage after the IP-literal is reported as a part of the host.
			return authority, ""
		}

		return host, ""
	}

	colon := strings.LastIndexByte(authority, ':')
	if colon == -1 {
		return authority, ""
	}

	return authority[:colon], authority[colon+1:]
}
