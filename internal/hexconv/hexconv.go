package hexconv

// Halfbyte maps an ASCII hex digit onto its value. Any other character maps to 0xFF, so
// validity of a pair can be checked at once via (x|y) == 0xFF.
var Halfbyte = [256]byte{}

func init() {
	for i := range Halfbyte {
		Halfbyte[i] = 0xFF
	}

	for c := '0'; c <= '9'; c++ {
		Halfbyte[c] = byte(c - '0')
	}

	for c := 'a'; c <= 'f'; c++ {
		Halfbyte[c] = byte(c-'a') + 10
		Halfbyte[c-0x20] = byte(c-'a') + 10
	}
}

const upperDigits = "0123456789ABCDEF"

// Upper returns the uppercase hex digit of the half-byte n.
func Upper(n byte) byte {
	return upperDigits[n&0xF]
}
