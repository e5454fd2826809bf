package strutil

import (
	"iter"
	"strings"
)

// Tokens walks a comma-separated list as defined by RFC 9110, 5.6.1. Elements are stripped
// of optional whitespace, and empty ones are skipped, so "a, ,b" yields "a" and "b".
func Tokens(value string) iter.Seq[string] {
	return func(yield func(string) bool) {
		for len(value) > 0 {
			var token string
			comma := strings.IndexByte(value, ',')
			if comma == -1 {
				token, value = value, ""
			} else {
				token, value = value[:comma], value[comma+1:]
			}

			token = StripWS(token)
			if len(token) == 0 {
				continue
			}

			if !yield(token) {
				return
			}
		}
	}
}
