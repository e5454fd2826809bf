package target

import (
	"strings"

	"github.com/dreamsmith-workshop/multiverse/internal/grammar"
	"github.com/dreamsmith-workshop/multiverse/internal/hexconv"
)

// NormalizePercentEncoding applies the percent-encoding normalizations of RFC 3986, 6.2.2:
// hex digits of every triplet are uppercased and triplets denoting unreserved characters are
// decoded. A percent sign that doesn't start a valid triplet is encoded as %25. Because every
// percent sign of the output starts a canonical triplet, the function is idempotent on any input.
func NormalizePercentEncoding(str string) string {
	if strings.IndexByte(str, '%') == -1 {
		return str
	}

	var b strings.Builder
	b.Grow(len(str) + 2)

	for len(str) > 0 {
		percent := strings.IndexByte(str, '%')
		if percent == -1 {
			b.WriteString(str)
			break
		}

		b.WriteString(str[:percent])
		str = str[percent+1:]

		if len(str) < 2 || (hexconv.Halfbyte[str[0]]|hexconv.Halfbyte[str[1]]) == 0xFF {
			b.WriteString("%25")
			continue
		}

		x, y := hexconv.Halfbyte[str[0]], hexconv.Halfbyte[str[1]]
		str = str[2:]

		if char := x<<4 | y; grammar.IsUnreserved(char) {
			b.WriteByte(char)
			continue
		}

		b.Write([]byte{'%', hexconv.Upper(x), hexconv.Upper(y)})
	}

	return b.String()
}

// DecodePath decodes a percent-encoded path. Octets which would change the meaning of the
// path after decoding (the slash) or are unprintable stay encoded with lowercase hex digits.
// Returns false if the string contains a malformed triplet.
func DecodePath(str string) (string, bool) {
	var b strings.Builder
	b.Grow(len(str))
	s := str

	for len(s) > 0 {
		percent := strings.IndexByte(s, '%')
		if percent == -1 {
			break
		}

		b.WriteString(s[:percent])
		s = s[percent+1:]
		if len(s) < 2 {
			return "", false
		}

		c1, c2 := s[0], s[1]
		s = s[2:]
		x, y := hexconv.Halfbyte[c1], hexconv.Halfbyte[c2]
		if x|y == 0xFF {
			return "", false
		}

		char := (x << 4) | y
		if isUnsafeChar(char) {
			b.Write([]byte{'%', c1 | 0x20, c2 | 0x20})
			continue
		}

		b.WriteByte(char)
	}

	b.WriteString(s)

	return b.String(), true
}

func isUnsafeChar(c byte) bool {
	return c == '/' || c < 0x20 || c == 0x7f
}
