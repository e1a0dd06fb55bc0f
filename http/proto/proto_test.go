package proto

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestFromBytes(t *testing.T) {
	require.Equal(t, HTTP10, FromBytes([]byte("HTTP/1.0")))
	require.Equal(t, HTTP11, FromBytes([]byte("HTTP/1.1")))

	for _, raw := range []string{"HTTP/2", "HTTP/2.0", "HTTP/9.9", "http/1.1", "HTTP/1-1", "HTTP/1.1 ", ""} {
		require.Equal(t, Unknown, FromBytes([]byte(raw)), raw)
	}
}

func TestProto(t *testing.T) {
	require.Equal(t, "HTTP/1.1", HTTP11.String())
	require.Empty(t, Unknown.String())
	require.True(t, HTTP11.KeepAlive())
	require.False(t, HTTP10.KeepAlive())
	require.Equal(t, HTTP1, HTTP10|HTTP11)
}
