package proto

import "github.com/indigo-web/utils/uf"

// Version is an HTTP-version as defined by RFC 9112, 2.3. Both major and minor numbers are
// single decimal digits.
type Version struct {
	Major, Minor uint8
}

var (
	Unknown = Version{}
	HTTP10  = Version{Major: 1, Minor: 0}
	HTTP11  = Version{Major: 1, Minor: 1}
)

const (
	protoTokenLength   = len("HTTP/x.x")
	majorVersionOffset = len("HTTP/x") - 1
	dotOffset          = len("HTTP/x.") - 1
	minorVersionOffset = len("HTTP/x.x") - 1
	httpScheme         = "HTTP/"
)

// FromBytes parses the HTTP-version token. The name is case-sensitive.
func FromBytes(raw []byte) (Version, bool) {
	if len(raw) != protoTokenLength || uf.B2S(raw[:majorVersionOffset]) != httpScheme ||
		raw[dotOffset] != '.' {
		return Unknown, false
	}

	return Parse(raw[majorVersionOffset]-'0', raw[minorVersionOffset]-'0')
}

// Parse returns the version of the given numbers if both are single digits.
func Parse(major, minor uint8) (Version, bool) {
	if major > 9 || minor > 9 {
		return Unknown, false
	}

	return Version{Major: major, Minor: minor}, true
}

// Valid reports whether both numbers are single digits and the version isn't the zero one.
func (v Version) Valid() bool {
	return v != Unknown && v.Major <= 9 && v.Minor <= 9
}

// AtLeast reports whether v is not older than major.minor.
func (v Version) AtLeast(major, minor uint8) bool {
	return v.Major > major || (v.Major == major && v.Minor >= minor)
}

func (v Version) String() string {
	return string(v.AppendTo(nil))
}

// AppendTo appends the HTTP-version token to the buffer.
func (v Version) AppendTo(buff []byte) []byte {
	return append(buff, httpScheme[0], httpScheme[1], httpScheme[2], httpScheme[3], httpScheme[4],
		'0'+v.Major, '.', '0'+v.Minor)
}
