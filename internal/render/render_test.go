package render

import (
	"testing"

	"github.com/indigo-web/httphead/http"
	"github.com/indigo-web/httphead/http/failure"
	"github.com/indigo-web/httphead/http/headers"
	"github.com/indigo-web/httphead/http/proto"
	"github.com/indigo-web/httphead/http/status"
	"github.com/stretchr/testify/require"
	"github.com/valyala/bytebufferpool"
)

type collector struct {
	data []byte
}

func (c *collector) Write(b []byte) error {
	c.data = append(c.data, b...)
	return nil
}

func TestRenderer(t *testing.T) {
	renderer := NewRenderer("Server", "httphead")

	t.Run("response", func(t *testing.T) {
		var out collector
		err := renderer.Response(Response{
			Proto:       proto.HTTP10,
			Code:        status.OK,
			ContentType: "text/plain",
			Body:        []byte("hello"),
		}, out.Write)
		require.NoError(t, err)

		want := "HTTP/1.0 200 OK\r\n" +
			"Server: httphead\r\n" +
			"Content-Type: text/plain\r\n" +
			"Content-Length: 5\r\n" +
			"\r\n" +
			"hello"
		require.Equal(t, want, string(out.data))
	})

	t.Run("failure", func(t *testing.T) {
		var out collector
		f := failure.New(failure.UnsupportedVersion, 14, "version is not supported")
		require.NoError(t, renderer.Failure(f, out.Write))
		require.Contains(t, string(out.data), "HTTP/1.1 505 HTTP Version Not Supported\r\n")
		require.Contains(t, string(out.data), "Connection: close\r\n")
		require.Contains(t, string(out.data), "\r\n\r\n"+f.Error()+"\n")
	})

	t.Run("error", func(t *testing.T) {
		var out collector
		err := renderer.Error(proto.Unknown, status.ErrBodyTooLarge.(status.HTTPError), out.Write)
		require.NoError(t, err)
		require.Contains(t, string(out.data), "HTTP/1.1 413 ")
		require.Contains(t, string(out.data), "Connection: close\r\n")
	})
}

func TestHead(t *testing.T) {
	buff := bytebufferpool.Get()
	defer bytebufferpool.Put(buff)

	req := http.NewMessage(http.Request, headers.New().Add("Host", "a b").Add("Accept", "*/*"))
	req.Method, req.Target, req.Version = "GET", "/", "HTTP/1.1"
	Head(buff, req)
	require.Equal(t, "GET / HTTP/1.1\r\nHost: a b\r\nAccept: */*\r\n\r\n", buff.String())

	buff.Reset()
	resp := http.NewMessage(http.Response, headers.New())
	resp.Version, resp.Code, resp.Reason = "HTTP/1.0", status.NotFound, "Not Found"
	Head(buff, resp)
	require.Equal(t, "HTTP/1.0 404 Not Found\r\n\r\n", buff.String())
}
