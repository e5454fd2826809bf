package strutil

import (
	"slices"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestTokens(t *testing.T) {
	collect := func(value string) []string {
		return slices.Collect(Tokens(value))
	}

	require.Empty(t, collect(""))
	require.Empty(t, collect(" , ,\t"))
	require.Equal(t, []string{"chunked"}, collect("chunked"))
	require.Equal(t, []string{"gzip", "chunked"}, collect("gzip,chunked"))
	require.Equal(t, []string{"gzip", "chunked"}, collect(" gzip ,\t, chunked\t"))

	t.Run("early break", func(t *testing.T) {
		for token := range Tokens("a, b, c") {
			require.Equal(t, "a", token)
			break
		}
	})
}

func TestStripWS(t *testing.T) {
	require.Equal(t, "hello", StripWS(" \thello\t "))
	require.Equal(t, "a b", StripWS("a b"))
	require.Empty(t, StripWS(" \t"))
	require.Equal(t, "x ", LStripWS("\t x "))
	require.Equal(t, " x", RStripWS(" x\t"))
}
