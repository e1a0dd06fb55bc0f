package http

import (
	"bufio"
	"context"
	"io"
	"net"
	nethttp "net/http"
	"strings"
	"testing"
	"time"

	"github.com/indigo-web/httphead/config"
	"github.com/indigo-web/httphead/internal/server/tcp"
	"github.com/indigo-web/httphead/internal/server/tcp/dummy"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
	"go.uber.org/zap/zaptest"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func newServer(t *testing.T) *Server {
	cfg := config.Default()
	cfg.NET.MaxBodySize = 64
	return NewServer(cfg, zaptest.NewLogger(t))
}

func run(t *testing.T, client *dummy.Client) string {
	newServer(t).Run(client)
	require.True(t, client.Closed())
	return client.Written()
}

func TestServer(t *testing.T) {
	t.Run("pipelined", func(t *testing.T) {
		raw := "GET /first HTTP/1.1\r\nHost: a\r\n\r\nGET /second HTTP/1.1\r\nHost: b\r\n\r\n"
		out := run(t, dummy.NewClient([]byte(raw)))
		require.Equal(t, 2, strings.Count(out, "HTTP/1.1 200 OK\r\n"))
		require.Contains(t, out, "\r\n\r\nGET /first HTTP/1.1\r\nHost: a\r\n\r\n")
		require.Contains(t, out, "\r\n\r\nGET /second HTTP/1.1\r\nHost: b\r\n\r\n")
		require.NotContains(t, out, "Connection: close")
	})

	t.Run("byte by byte", func(t *testing.T) {
		raw := "GET / HTTP/1.1\r\nX-Long: a\r\n b\r\n\r\n"
		out := run(t, dummy.Split([]byte(raw), 1))
		require.Contains(t, out, "HTTP/1.1 200 OK\r\n")
		require.Contains(t, out, "X-Long: a b\r\n")
	})

	t.Run("HTTP/1.0 closes", func(t *testing.T) {
		raw := "GET / HTTP/1.0\r\n\r\nGET / HTTP/1.0\r\n\r\n"
		out := run(t, dummy.NewClient([]byte(raw)))
		require.Equal(t, 1, strings.Count(out, "HTTP/1.0 200 OK\r\n"))
		require.Contains(t, out, "Connection: close\r\n")
	})

	t.Run("Connection: close", func(t *testing.T) {
		raw := "GET / HTTP/1.1\r\nConnection: close\r\n\r\nGET / HTTP/1.1\r\n\r\n"
		out := run(t, dummy.NewClient([]byte(raw)))
		require.Equal(t, 1, strings.Count(out, " 200 OK\r\n"))
	})

	t.Run("content length body is skipped", func(t *testing.T) {
		raw := "POST / HTTP/1.1\r\nContent-Length: 5\r\n\r\nhelloGET /next HTTP/1.1\r\n\r\n"
		out := run(t, dummy.Split([]byte(raw), 7))
		require.Equal(t, 2, strings.Count(out, " 200 OK\r\n"))
		require.Contains(t, out, "GET /next HTTP/1.1\r\n")
	})

	t.Run("chunked body is skipped", func(t *testing.T) {
		raw := "POST / HTTP/1.1\r\nTransfer-Encoding: chunked\r\n\r\n" +
			"5\r\nhello\r\n0\r\n\r\n" +
			"GET /after HTTP/1.1\r\n\r\n"
		out := run(t, dummy.NewClient([]byte(raw)))
		require.Equal(t, 2, strings.Count(out, " 200 OK\r\n"))
		require.Contains(t, out, "GET /after HTTP/1.1\r\n")
	})

	t.Run("body too large", func(t *testing.T) {
		raw := "POST / HTTP/1.1\r\nContent-Length: 100\r\n\r\n"
		out := run(t, dummy.NewClient([]byte(raw)))
		require.True(t, strings.HasPrefix(out, "HTTP/1.1 413 "))
		require.Contains(t, out, "Connection: close\r\n")
	})

	t.Run("malformed", func(t *testing.T) {
		raw := "GET / HTTP/1.1\r\nHost : a\r\n\r\nGET / HTTP/1.1\r\n\r\n"
		out := run(t, dummy.NewClient([]byte(raw)))
		require.True(t, strings.HasPrefix(out, "HTTP/1.1 400 Bad Request\r\n"), out)
		require.Contains(t, out, "Connection: close\r\n")
		require.Contains(t, out, "MalformedHeader")
		require.NotContains(t, out, "200 OK")
	})

	t.Run("unsupported version", func(t *testing.T) {
		out := run(t, dummy.NewClient([]byte("GET / HTTP/2.0\r\n\r\n")))
		require.True(t, strings.HasPrefix(out, "HTTP/1.1 505 "), out)
	})

	t.Run("limits close silently", func(t *testing.T) {
		raw := "GET / HTTP/1.1\r\nX-Big: " + strings.Repeat("a", 32*1024) + "\r\n\r\n"
		out := run(t, dummy.Split([]byte(raw), 4096))
		require.Empty(t, out)
	})

	t.Run("client gone mid-message", func(t *testing.T) {
		out := run(t, dummy.NewClient([]byte("GET / HT")))
		require.Empty(t, out)
	})
}

func TestEndToEnd(t *testing.T) {
	listener, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	server := newServer(t)
	tcpServer := tcp.NewServer(listener, nil, server.OnConnection)
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- tcpServer.Serve(ctx)
	}()

	conn, err := net.Dial("tcp", listener.Addr().String())
	require.NoError(t, err)
	defer conn.Close()
	require.NoError(t, conn.SetDeadline(time.Now().Add(5*time.Second)))
	reader := bufio.NewReader(conn)

	_, err = conn.Write([]byte("GET /hello HTTP/1.1\r\nHost: localhost\r\n\r\n"))
	require.NoError(t, err)
	resp, err := nethttp.ReadResponse(reader, nil)
	require.NoError(t, err)
	require.Equal(t, nethttp.StatusOK, resp.StatusCode)
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	require.Equal(t, "GET /hello HTTP/1.1\r\nHost: localhost\r\n\r\n", string(body))

	_, err = conn.Write([]byte("GET / HTTP/1.1\r\nHost : localhost\r\n\r\n"))
	require.NoError(t, err)
	resp, err = nethttp.ReadResponse(reader, nil)
	require.NoError(t, err)
	require.Equal(t, nethttp.StatusBadRequest, resp.StatusCode)
	require.True(t, resp.Close)
	_, _ = io.Copy(io.Discard, resp.Body)

	cancel()
	<-done
}
