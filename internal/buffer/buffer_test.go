package buffer

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func BenchmarkAppend(b *testing.B) {
	piece := []byte(strings.Repeat("a", 64))

	b.Run("within capacity", func(b *testing.B) {
		buff := New(1024, 1024)
		b.ReportAllocs()
		b.SetBytes(int64(len(piece)) * 16)
		b.ResetTimer()

		for i := 0; i < b.N; i++ {
			for j := 0; j < 16; j++ {
				_ = buff.Append(piece)
			}

			buff.Clear()
		}
	})

	b.Run("growing", func(b *testing.B) {
		b.ReportAllocs()
		b.SetBytes(int64(len(piece)) * 16)

		for i := 0; i < b.N; i++ {
			buff := New(16, 1024)
			for j := 0; j < 16; j++ {
				_ = buff.Append(piece)
			}
		}
	})
}

func TestBuffer(t *testing.T) {
	t.Run("pieces of a line", func(t *testing.T) {
		buff := New(4, 64)
		for _, piece := range []string{"GET", " /", " HTTP/1.1"} {
			require.True(t, buff.Append([]byte(piece)))
		}

		require.Equal(t, "GET / HTTP/1.1", string(buff.Preview()))
		require.Equal(t, 14, buff.Len())
	})

	t.Run("clear keeps the memory", func(t *testing.T) {
		buff := New(8, 64)
		require.True(t, buff.Append([]byte("Hello, World!")))
		capacity := buff.Cap()
		buff.Clear()

		require.Zero(t, buff.Len())
		require.Empty(t, buff.Preview())
		require.Equal(t, capacity, buff.Cap())

		require.True(t, buff.Append([]byte("Hi")))
		require.Equal(t, "Hi", string(buff.Preview()))
	})

	t.Run("exactly the limit", func(t *testing.T) {
		buff := New(4, 10)
		require.True(t, buff.Append([]byte("0123456789")))
		require.False(t, buff.Append([]byte("a")))
		require.Equal(t, "0123456789", string(buff.Preview()))
	})

	t.Run("rejected data isn't written", func(t *testing.T) {
		buff := New(4, 10)
		require.True(t, buff.Append([]byte("Hello")))
		require.False(t, buff.Append([]byte(", World!")))
		require.Equal(t, "Hello", string(buff.Preview()))
	})

	t.Run("capacity never exceeds the limit", func(t *testing.T) {
		buff := New(4, 100)
		for i := 0; i < 100; i++ {
			require.True(t, buff.Append([]byte{'a'}))
			require.LessOrEqual(t, buff.Cap(), 100)
		}

		require.False(t, buff.Append([]byte{'a'}))
		require.Equal(t, 100, buff.Cap())
	})

	t.Run("initial size over the limit", func(t *testing.T) {
		buff := New(1024, 16)
		require.Equal(t, 16, buff.Cap())
		require.False(t, buff.Append([]byte(strings.Repeat("a", 17))))
		require.Zero(t, buff.Len())
	})
}
