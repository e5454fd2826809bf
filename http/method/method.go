package method

import (
	"strings"

	"github.com/dreamsmith-workshop/multiverse/internal/grammar"
)

// Method is a request method token. Methods registered with IANA in RFC 9110 and RFC 5789 are
// provided as constants, however any other valid token is a legal extension method, too.
// Methods are case-sensitive.
type Method string

const (
	GET     Method = "GET"
	HEAD    Method = "HEAD"
	POST    Method = "POST"
	PUT     Method = "PUT"
	DELETE  Method = "DELETE"
	CONNECT Method = "CONNECT"
	OPTIONS Method = "OPTIONS"
	TRACE   Method = "TRACE"
	PATCH   Method = "PATCH"
)

// Parse validates the token and returns the corresponding method. Known methods are returned
// as constants, so the passed string may safely be a transient view over a reusable buffer.
// Extension methods are copied.
func Parse(str string) (Method, bool) {
	if m := lookup(str); len(m) > 0 {
		return m, true
	}

	if !grammar.IsTokenString(str) {
		return "", false
	}

	return Method(strings.Clone(str)), true
}

func lookup(str string) Method {
	switch len(str) {
	case 3:
		if str == "GET" {
			return GET
		} else if str == "PUT" {
			return PUT
		}
	case 4:
		if str == "POST" {
			return POST
		} else if str == "HEAD" {
			return HEAD
		}
	case 5:
		if str == "PATCH" {
			return PATCH
		} else if str == "TRACE" {
			return TRACE
		}
	case 6:
		if str == "DELETE" {
			return DELETE
		}
	case 7:
		if str == "CONNECT" {
			return CONNECT
		} else if str == "OPTIONS" {
			return OPTIONS
		}
	}

	return ""
}

func (m Method) String() string {
	return string(m)
}

// IsKnown tells whether the method is one of the registered ones.
func (m Method) IsKnown() bool {
	_, found := properties[m]
	return found
}

// IsSafe reports whether the method is defined as safe (RFC 9110, 9.2.1). Extension methods
// are never considered safe.
func (m Method) IsSafe() bool {
	return properties[m].safe
}

// IsIdempotent reports whether the method is defined as idempotent (RFC 9110, 9.2.2).
func (m Method) IsIdempotent() bool {
	return properties[m].idempotent
}

// Valid reports whether the method is a non-empty token.
func (m Method) Valid() bool {
	return grammar.IsTokenString(string(m))
}
