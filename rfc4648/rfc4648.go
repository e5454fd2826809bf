// Package rfc4648 implements the base-64 encoding of RFC 4648, section 4: the standard
// alphabet with mandatory padding. Decoding is strict, so non-canonical input (missing
// padding, trailing garbage, non-zero padding bits) is rejected rather than repaired.
package rfc4648

import (
	"encoding/base64"
	"errors"
)

var ErrMalformed = errors.New("rfc4648: malformed base64 input")

var encoding = base64.StdEncoding.Strict()

// EncodeBase64 returns the padded base-64 representation of data.
func EncodeBase64(data []byte) string {
	return encoding.EncodeToString(data)
}

// AppendBase64 appends the base-64 representation of data to dst.
func AppendBase64(dst, data []byte) []byte {
	return encoding.AppendEncode(dst, data)
}

// DecodeBase64 reverses EncodeBase64.
func DecodeBase64(encoded string) ([]byte, error) {
	decoded, err := encoding.DecodeString(encoded)
	if err != nil {
		return nil, ErrMalformed
	}

	return decoded, nil
}
