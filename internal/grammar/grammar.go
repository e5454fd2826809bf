// Package grammar classifies bytes according to the ABNF rules of RFC 9110, RFC 9112 and
// RFC 3986. Every predicate is a lookup into a table filled once at init and never changed
// afterwards, so they are safe for concurrent use and never allocate.
package grammar

type class uint16

const (
	cToken class = 1 << iota
	cVChar
	cObsText
	cWhitespace
	cDigit
	cHex
	cUnreserved
	cSubDelim
)

var table [256]class

func init() {
	for c := 0x21; c <= 0x7e; c++ {
		table[c] |= cVChar
	}

	for c := 0x80; c <= 0xff; c++ {
		table[c] |= cObsText
	}

	table[' '] |= cWhitespace
	table['\t'] |= cWhitespace

	// tchar = "!" / "#" / "$" / "%" / "&" / "'" / "*" / "+" / "-" / "." /
	//         "^" / "_" / "`" / "|" / "~" / DIGIT / ALPHA
	for _, c := range []byte("!#$%&'*+-.^_`|~") {
		table[c] |= cToken
	}

	for c := '0'; c <= '9'; c++ {
		table[c] |= cToken | cDigit | cHex | cUnreserved
	}

	for c := 'a'; c <= 'z'; c++ {
		table[c] |= cToken | cUnreserved
		table[c-0x20] |= cToken | cUnreserved
	}

	for c := 'a'; c <= 'f'; c++ {
		table[c] |= cHex
		table[c-0x20] |= cHex
	}

	for _, c := range []byte("-._~") {
		table[c] |= cUnreserved
	}

	for _, c := range []byte("!$&'()*+,;=") {
		table[c] |= cSubDelim
	}
}

// IsToken reports whether c is a tchar.
func IsToken(c byte) bool {
	return table[c]&cToken != 0
}

// IsVChar reports whether c is a visible US-ASCII character.
func IsVChar(c byte) bool {
	return table[c]&cVChar != 0
}

// IsObsText reports whether c belongs to obs-text (%x80-FF).
func IsObsText(c byte) bool {
	return table[c]&cObsText != 0
}

func IsVCharOrObsText(c byte) bool {
	return table[c]&(cVChar|cObsText) != 0
}

// IsWhitespace reports whether c is SP or HTAB, the only characters OWS and RWS consist of.
func IsWhitespace(c byte) bool {
	return table[c]&cWhitespace != 0
}

// IsFieldVChar reports whether c may appear inside a field value.
func IsFieldVChar(c byte) bool {
	return table[c]&(cVChar|cObsText|cWhitespace) != 0
}

func IsDigit(c byte) bool {
	return table[c]&cDigit != 0
}

func IsHex(c byte) bool {
	return table[c]&cHex != 0
}

func IsUnreserved(c byte) bool {
	return table[c]&cUnreserved != 0
}

func IsSubDelim(c byte) bool {
	return table[c]&cSubDelim != 0
}

// IsPChar reports whether c is a pchar other than a percent-encoded triplet.
func IsPChar(c byte) bool {
	return table[c]&(cUnreserved|cSubDelim) != 0 || c == ':' || c == '@'
}

// IsTokenString reports whether str is a non-empty sequence of tchars.
func IsTokenString(str string) bool {
	if len(str) == 0 {
		return false
	}

	for i := 0; i < len(str); i++ {
		if !IsToken(str[i]) {
			return false
		}
	}

	return true
}

// IsFieldValue reports whether str is a valid field value: no control characters except HTAB
// and no leading or trailing whitespace.
func IsFieldValue(str string) bool {
	for i := 0; i < len(str); i++ {
		if !IsFieldVChar(str[i]) {
			return false
		}
	}

	return len(str) == 0 || (!IsWhitespace(str[0]) && !IsWhitespace(str[len(str)-1]))
}

// IsReason reports whether str is a valid reason-phrase.
func IsReason(str string) bool {
	for i := 0; i < len(str); i++ {
		if !IsFieldVChar(str[i]) {
			return false
		}
	}

	return true
}

// TrimOWS strips leading and trailing optional whitespace.
func TrimOWS(b []byte) []byte {
	for len(b) > 0 && IsWhitespace(b[0]) {
		b = b[1:]
	}

	for len(b) > 0 && IsWhitespace(b[len(b)-1]) {
		b = b[:len(b)-1]
	}

	return b
}
