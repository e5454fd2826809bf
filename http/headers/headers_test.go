package headers

import (
	"slices"
	"strings"
	"testing"

	"github.com/dchest/uniuri"
	"github.com/dreamsmith-workshop/multiverse/rfc4648"
	"github.com/stretchr/testify/require"
)

func fromPairs(t *testing.T, pairs ...string) *Headers {
	h := New()
	for i := 0; i < len(pairs); i += 2 {
		require.NoError(t, h.Add(pairs[i], pairs[i+1]))
	}

	return h
}

func TestHeaders(t *testing.T) {
	headers := fromPairs(t,
		"Hello", "world",
		"Some", "multiple",
		"some", "values",
	)

	t.Run("Value", func(t *testing.T) {
		require.Equal(t, "world", headers.Value("hello"))
		require.Empty(t, headers.Value("Random"))
	})

	t.Run("Get", func(t *testing.T) {
		value, found := headers.Get("SOME")
		require.True(t, found)
		require.Equal(t, "multiple", value)

		_, found = headers.Get("Random")
		require.False(t, found)
	})

	t.Run("Values_Existing", func(t *testing.T) {
		require.Equal(t, []string{"multiple", "values"}, headers.Values("Some"))
	})

	t.Run("Values_NonExisting", func(t *testing.T) {
		values := headers.Values("Random")
		require.NotNil(t, values)
		require.Empty(t, values)
	})

	t.Run("Has", func(t *testing.T) {
		require.True(t, headers.Has("Hello"))
		require.False(t, headers.Has("Random"))
	})

	t.Run("Keys", func(t *testing.T) {
		require.Equal(t, []string{"Hello", "Some"}, headers.Keys())
	})

	t.Run("All preserves order and casing", func(t *testing.T) {
		var names []string
		for name := range headers.All() {
			names = append(names, name)
		}

		require.Equal(t, []string{"Hello", "Some", "some"}, names)
		require.Equal(t, 3, headers.Len())
		require.Equal(t, 2, headers.Count("some"))
	})

	t.Run("Fields is a copy", func(t *testing.T) {
		fields := headers.Fields()
		fields[0].Value = "changed"
		require.Equal(t, "world", headers.Value("Hello"))
	})

	t.Run("Clone", func(t *testing.T) {
		clone := headers.Clone()
		require.True(t, clone.Equal(headers))
		require.NoError(t, clone.Add("Extra", "value"))
		require.False(t, clone.Equal(headers))
		require.False(t, headers.Has("Extra"))
	})

	t.Run("zero value", func(t *testing.T) {
		var h Headers
		require.True(t, h.Empty())
		require.NoError(t, h.Add("Host", "example.com"))
		require.Equal(t, 1, h.Len())
	})
}

func TestAdd(t *testing.T) {
	t.Run("value whitespace is stripped", func(t *testing.T) {
		h := New()
		require.NoError(t, h.Add("Name", " \t value \t"))
		require.Equal(t, "value", h.Value("name"))
	})

	t.Run("never overwrites", func(t *testing.T) {
		h := fromPairs(t, "A", "1")
		require.NoError(t, h.Add("a", "2"))
		require.Equal(t, []string{"1", "2"}, h.Values("A"))
	})

	t.Run("invalid names", func(t *testing.T) {
		for _, name := range []string{"", "Bad Name", "Bad:Name", "Bad\x00", "Caf\xc3\xa9"} {
			require.ErrorIs(t, New().Add(name, "value"), ErrInvalidName, name)
		}
	})

	t.Run("invalid values", func(t *testing.T) {
		for _, value := range []string{"a\rb", "a\nb", "a\x00b", "a\x7fb"} {
			require.ErrorIs(t, New().Add("Name", value), ErrInvalidValue, value)
		}
	})

	t.Run("obs-text is allowed", func(t *testing.T) {
		require.NoError(t, New().Add("Name", "caf\xc3\xa9"))
	})

	t.Run("random names", func(t *testing.T) {
		h := New()
		names := make([]string, 50)
		for i := range names {
			names[i] = uniuri.NewLen(uniuri.UUIDLen)
			require.NoError(t, h.Add(names[i], uniuri.New()))
		}

		require.Equal(t, names, h.Keys())
		for _, name := range names {
			require.True(t, h.Has(strings.ToLower(name)))
		}
	})
}

func TestSingle(t *testing.T) {
	t.Run("absent", func(t *testing.T) {
		_, err := New().Single("Host")
		require.ErrorIs(t, err, ErrAbsent)
	})

	t.Run("list-based fields are combined", func(t *testing.T) {
		h := fromPairs(t, "Accept", "text/html", "Accept", "application/json")
		value, err := h.Single("accept")
		require.NoError(t, err)
		require.Equal(t, "text/html, application/json", value)
	})

	t.Run("singleton duplicates are ambiguous", func(t *testing.T) {
		for _, name := range []string{"Content-Length", "Host", "Content-Type", "Set-Cookie"} {
			h := fromPairs(t, name, "1", strings.ToUpper(name), "2")
			_, err := h.Single(name)
			require.ErrorIs(t, err, ErrAmbiguous, name)
		}
	})
}

func TestContentLength(t *testing.T) {
	for _, tc := range []struct {
		Value string
		Want  uint64
	}{
		{"0", 0},
		{"13", 13},
		{"0013", 13},
		{"18446744073709551615", 1<<64 - 1},
	} {
		length, err := fromPairs(t, "Content-Length", tc.Value).ContentLength()
		require.NoError(t, err, tc.Value)
		require.Equal(t, tc.Want, length)
	}

	for _, value := range []string{"", "-1", "+1", "1 2", "0x10", "5, 5", "18446744073709551616"} {
		_, err := ParseContentLength(value)
		require.ErrorIs(t, err, ErrInvalidContentLength, value)
	}

	_, err := fromPairs(t, "Content-Length", "1", "Content-Length", "1").ContentLength()
	require.ErrorIs(t, err, ErrAmbiguous)

	_, err = New().ContentLength()
	require.ErrorIs(t, err, ErrAbsent)
}

func TestTransferEncoding(t *testing.T) {
	h := fromPairs(t,
		"Transfer-Encoding", "gzip, ,deflate",
		"transfer-encoding", "CHUNKED",
	)
	require.Equal(t, []string{"gzip", "deflate", "CHUNKED"}, h.TransferEncoding())
	require.True(t, h.Chunked())

	h = fromPairs(t, "Transfer-Encoding", "chunked, gzip")
	require.False(t, h.Chunked())
	require.False(t, New().Chunked())
	require.Empty(t, New().TransferEncoding())
}

func TestConnection(t *testing.T) {
	h := fromPairs(t, "Connection", "keep-alive, Upgrade")
	require.Equal(t, []string{"keep-alive", "Upgrade"}, h.Connection())
	require.True(t, h.HasToken("connection", "upgrade"))
	require.False(t, h.HasToken("connection", "close"))
	require.True(t, slices.Equal(h.Connection(), h.tokens("CONNECTION")))
}

func TestBasicAuth(t *testing.T) {
	credentials := rfc4648.EncodeBase64([]byte("Aladdin:open sesame"))

	t.Run("valid", func(t *testing.T) {
		user, password, err := fromPairs(t, "Authorization", "Basic "+credentials).BasicAuth()
		require.NoError(t, err)
		require.Equal(t, "Aladdin", user)
		require.Equal(t, "open sesame", password)
	})

	t.Run("scheme is case-insensitive", func(t *testing.T) {
		_, _, err := fromPairs(t, "Authorization", "bAsIc "+credentials).BasicAuth()
		require.NoError(t, err)
	})

	t.Run("invalid", func(t *testing.T) {
		for _, value := range []string{
			"Bearer " + credentials,
			"Basic",
			"Basic not-base64",
			"Basic " + rfc4648.EncodeBase64([]byte("no-colon")),
		} {
			_, _, err := fromPairs(t, "Authorization", value).BasicAuth()
			require.ErrorIs(t, err, ErrInvalidCredentials, value)
		}
	})

	t.Run("absent", func(t *testing.T) {
		_, _, err := New().BasicAuth()
		require.ErrorIs(t, err, ErrAbsent)
	})
}

func BenchmarkValue(b *testing.B) {
	h := NewPrealloc(20)
	for i := 0; i < 19; i++ {
		_ = h.Add(uniuri.NewLen(10), "value")
	}
	_ = h.Add("Content-Length", "1024")

	b.ReportAllocs()
	b.ResetTimer()

	for i := 0; i < b.N; i++ {
		_ = h.Value("content-length")
	}
}
