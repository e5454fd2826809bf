package http1

import (
	"bytes"
	"testing"

	"github.com/dchest/uniuri"
	"github.com/dreamsmith-workshop/multiverse/config"
	"github.com/dreamsmith-workshop/multiverse/http"
	"github.com/dreamsmith-workshop/multiverse/http/headers"
	"github.com/dreamsmith-workshop/multiverse/http/method"
	"github.com/dreamsmith-workshop/multiverse/http/proto"
	"github.com/dreamsmith-workshop/multiverse/http/status"
	"github.com/stretchr/testify/require"
)

func buildRequest(t *testing.T, builder *http.RequestBuilder) *http.Request {
	t.Helper()
	request, err := builder.Build()
	require.NoError(t, err)
	return request
}

func buildResponse(t *testing.T, builder *http.ResponseBuilder) *http.Response {
	t.Helper()
	response, err := builder.Build()
	require.NoError(t, err)
	return response
}

func TestSerializer(t *testing.T) {
	t.Run("request without body", func(t *testing.T) {
		request := buildRequest(t, http.NewRequest(method.GET, "/hello?world").
			Header("Host", "example.com").
			Header("accept", "text/html"))

		want := "GET /hello?world HTTP/1.1\r\nHost: example.com\r\naccept: text/html\r\n\r\n"
		require.Equal(t, want, string(Serialize(request)))
	})

	t.Run("request with fixed body", func(t *testing.T) {
		request := buildRequest(t, http.NewRequest(method.POST, "/").
			Version(proto.HTTP10).
			Body([]byte("Hello, world!")))

		want := "POST / HTTP/1.0\r\nContent-Length: 13\r\n\r\nHello, world!"
		require.Equal(t, want, string(Serialize(request)))
	})

	t.Run("chunked with trailer", func(t *testing.T) {
		request := buildRequest(t, http.NewRequest(method.PUT, "/file").
			Chunked([]byte("Wiki"), []byte("pedia in\r\n\r\nchunks.")).
			Trailer("Checksum", "abc"))

		want := "PUT /file HTTP/1.1\r\nTransfer-Encoding: chunked\r\n\r\n" +
			"4\r\nWiki\r\n13\r\npedia in\r\n\r\nchunks.\r\n0\r\nChecksum: abc\r\n\r\n"
		require.Equal(t, want, string(Serialize(request)))
	})

	t.Run("response", func(t *testing.T) {
		response := buildResponse(t, http.NewResponse(status.NotFound).
			Header("Content-Type", "text/plain").
			Body([]byte("nope")))

		want := "HTTP/1.1 404 Not Found\r\nContent-Type: text/plain\r\nContent-Length: 4\r\n\r\nnope"
		require.Equal(t, want, string(Serialize(response)))
	})

	t.Run("empty reason", func(t *testing.T) {
		response := buildResponse(t, http.NewResponse(status.NoContent).Reason(""))
		require.Equal(t, "HTTP/1.1 204 \r\n\r\n", string(Serialize(response)))
	})

	t.Run("Content-Length for assembled messages", func(t *testing.T) {
		response := http.AssembleResponse(
			proto.HTTP11, status.OK, "OK", headers.New(), http.NewFixedBody([]byte("hi")),
		)
		require.Equal(t, "HTTP/1.1 200 OK\r\nContent-Length: 2\r\n\r\nhi", string(Serialize(response)))
	})

	t.Run("close-delimited response stays close-delimited", func(t *testing.T) {
		raw := "HTTP/1.1 200 OK\r\nTransfer-Encoding: gzip\r\n\r\nhello"
		cfg := config.Default()
		parser := NewResponseParser(cfg)
		_, _, err := parser.Parse([]byte(raw))
		require.NoError(t, err)
		response, err := parser.Finish()
		require.NoError(t, err)

		serialized := Serialize(response)
		require.Equal(t, raw, string(serialized))

		parser = NewResponseParser(cfg)
		_, _, err = parser.Parse(serialized)
		require.NoError(t, err)
		reparsed, err := parser.Finish()
		require.NoError(t, err)
		require.Equal(t, "hello", string(reparsed.Body().Bytes()))
		require.False(t, reparsed.Headers().Has("Content-Length"))
	})

	t.Run("append to existing buffer", func(t *testing.T) {
		request := buildRequest(t, http.NewRequest(method.GET, "/"))
		buff := AppendRequest([]byte("prefix"), request)
		require.Equal(t, "prefixGET / HTTP/1.1\r\n\r\n", string(buff))
	})

	t.Run("write to", func(t *testing.T) {
		response := buildResponse(t, http.NewResponse(status.OK))
		var buff bytes.Buffer
		n, err := WriteTo(&buff, response)
		require.NoError(t, err)
		require.Equal(t, int64(buff.Len()), n)
		require.Equal(t, "HTTP/1.1 200 OK\r\nContent-Length: 0\r\n\r\n", buff.String())
	})

	t.Run("deterministic", func(t *testing.T) {
		builder := http.NewRequest(method.POST, "/")
		for i := 0; i < 20; i++ {
			builder.Header(uniuri.NewLen(8), uniuri.New())
		}

		request := buildRequest(t, builder.Chunked([]byte(uniuri.NewLen(100))))
		first := Serialize(request)
		for i := 0; i < 10; i++ {
			require.Equal(t, first, Serialize(request))
		}
	})
}

func TestRoundTrip(t *testing.T) {
	cfg := config.Default()

	requests := []*http.RequestBuilder{
		http.NewRequest(method.GET, "/").Header("Host", "example.com"),
		http.NewRequest(method.GET, "/a%2fb?q=%7E").Header("Host", "example.com"),
		http.NewRequest(method.HEAD, "http://example.com:8080/index.html").Version(proto.HTTP10),
		http.NewRequest(method.OPTIONS, "*"),
		http.NewRequest(method.CONNECT, "example.com:443").Header("Host", "example.com:443"),
		http.NewRequest(method.POST, "/form").
			Header("Content-Type", "application/x-www-form-urlencoded").
			Body([]byte("a=b&c=d")),
		http.NewRequest(method.PUT, "/upload").
			Header("Set-Cookie", "a=b").
			Header("Set-Cookie", "c=d").
			Chunked([]byte("Hello, "), []byte("world!")).
			Trailer("Checksum", "abc"),
		http.NewRequest("PROPFIND", "/dav").Header("Depth", "1").Body(nil),
	}

	for _, builder := range requests {
		want := buildRequest(t, builder)
		raw := Serialize(want)
		parser := NewRequestParser(cfg)

		for _, n := range []int{1, 3, len(raw)} {
			got, extra, err := feedPartially(parser, raw, n)
			require.NoError(t, err, string(raw))
			require.Empty(t, extra)
			require.Equal(t, want.Method(), got.Method())
			require.Equal(t, want.Target(), got.Target())
			require.Equal(t, want.Version(), got.Version())
			require.Equal(t, want.Headers().Fields(), got.Headers().Fields())
			require.True(t, want.Body().Equal(got.Body()), string(raw))
		}
	}

	responses := []*http.ResponseBuilder{
		http.NewResponse(status.OK).Body([]byte("Hello, world!")),
		http.NewResponse(status.OK),
		http.NewResponse(status.NoContent),
		http.NewResponse(status.NotModified).Header("ETag", `"abc"`),
		http.NewResponse(status.Continue),
		http.NewResponse(299).Reason("").Header("X-Custom", "yes"),
		http.NewResponse(status.InternalServerError).Reason("Oops: really bad").
			Chunked([]byte("x"), nil, []byte("yz")).
			Trailer("Server-Timing", "db;dur=53"),
	}

	for _, builder := range responses {
		want := buildResponse(t, builder)
		raw := Serialize(want)
		parser := NewResponseParser(cfg)

		for _, n := range []int{1, 2, len(raw)} {
			got, extra, err := feedPartially(parser, raw, n)
			require.NoError(t, err, string(raw))
			require.Empty(t, extra)
			require.Equal(t, want.Version(), got.Version())
			require.Equal(t, want.Code(), got.Code())
			require.Equal(t, want.Reason(), got.Reason())
			require.Equal(t, want.Headers().Fields(), got.Headers().Fields())
			require.True(t, want.Body().Equal(got.Body()), string(raw))
		}
	}
}

func BenchmarkSerializer(b *testing.B) {
	response, err := http.NewResponse(status.OK).
		Header("Content-Type", "text/html").
		Header("Server", "multiverse").
		Body(bytes.Repeat([]byte("a"), 1024)).
		Build()
	require.NoError(b, err)

	buff := make([]byte, 0, 4096)
	b.SetBytes(int64(len(AppendResponse(nil, response))))
	b.ReportAllocs()
	b.ResetTimer()

	for i := 0; i < b.N; i++ {
		buff = AppendResponse(buff[:0], response)
	}
}
