package hexconv

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func benchLocal(b *testing.B, str string) {
	b.SetBytes(int64(len(str)))
	b.ResetTimer()

	for range b.N {
		var result uint64

		for j := range str {
			result = (result << 4) | uint64(Halfbyte[str[j]])
		}
	}
}

func BenchmarkParse(b *testing.B) {
	b.Run("short", func(b *testing.B) {
		benchLocal(b, "123456789abcdef")
	})

	b.Run("long", func(b *testing.B) {
		benchLocal(b, strings.Repeat("123456789abcdef", 100))
	})
}

func TestHalfbyte(t *testing.T) {
	for i, c := range "0123456789abcdef" {
		require.Equal(t, byte(i), Halfbyte[c])
	}

	for i, c := range "ABCDEF" {
		require.Equal(t, byte(i+10), Halfbyte[c])
	}

	for _, c := range []byte("gG-_ %\x00\xff") {
		require.Equal(t, byte(0xFF), Halfbyte[c])
	}
}

func TestUpper(t *testing.T) {
	require.Equal(t, byte('0'), Upper(0))
	require.Equal(t, byte('A'), Upper(10))
	require.Equal(t, byte('F'), Upper(0x1F))
}
