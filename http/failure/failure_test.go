package failure

import (
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/indigo-web/httphead/http/status"
	jsoniter "github.com/json-iterator/go"
	"github.com/stretchr/testify/require"
)

func TestKind(t *testing.T) {
	t.Run("codes", func(t *testing.T) {
		require.Equal(t, status.RequestHeaderFieldsTooLarge, HeadersTooBig.Code())
		require.Equal(t, status.RequestHeaderFieldsTooLarge, TooManyHeaders.Code())
		require.Equal(t, status.RequestHeaderFieldsTooLarge, HeaderNameTooLong.Code())
		require.Equal(t, status.RequestHeaderFieldsTooLarge, HeaderValueTooLong.Code())
		require.Equal(t, status.RequestURITooLong, StartLineTooLong.Code())
		require.Equal(t, status.BadRequest, MalformedStartLine.Code())
		require.Equal(t, status.BadRequest, MalformedHeader.Code())
		require.Equal(t, status.NotImplemented, UnsupportedMethod.Code())
		require.Equal(t, status.HTTPVersionNotSupported, UnsupportedVersion.Code())
	})

	t.Run("classes", func(t *testing.T) {
		for _, kind := range []Kind{HeadersTooBig, TooManyHeaders, StartLineTooLong, HeaderNameTooLong, HeaderValueTooLong} {
			require.Equal(t, Limit, kind.Class(), kind.String())
		}

		require.Equal(t, Grammar, MalformedStartLine.Class())
		require.Equal(t, Grammar, MalformedHeader.Class())
		require.Equal(t, Policy, UnsupportedMethod.Class())
		require.Equal(t, Policy, UnsupportedVersion.Class())
	})

	t.Run("string", func(t *testing.T) {
		require.Equal(t, "TooManyHeaders", TooManyHeaders.String())
		require.Equal(t, "Kind(200)", Kind(200).String())
	})
}

func TestFailure(t *testing.T) {
	t.Run("errors.Is by kind", func(t *testing.T) {
		f := New(TooManyHeaders, 1024, "header count exceeded").WithLimit(50)
		var err error = f

		require.ErrorIs(t, err, ErrTooManyHeaders)
		require.NotErrorIs(t, err, ErrHeadersTooBig)
		require.ErrorIs(t, fmt.Errorf("conn 1: %w", err), ErrTooManyHeaders)
	})

	t.Run("as", func(t *testing.T) {
		wrapped := fmt.Errorf("parse: %w", New(MalformedHeader, 3, "whitespace before colon"))
		f, ok := As(wrapped)
		require.True(t, ok)
		require.Equal(t, MalformedHeader, f.Kind)
		require.Equal(t, 3, f.Offset)

		_, ok = As(errors.New("something else"))
		require.False(t, ok)
	})

	t.Run("token is copied and truncated", func(t *testing.T) {
		token := []byte(strings.Repeat("x", 100))
		f := New(HeaderNameTooLong, 0, "").WithToken(token)
		require.Len(t, f.Token, maxTokenLen)
		token[0] = 'y'
		require.Equal(t, byte('x'), f.Token[0])
	})

	t.Run("token is readable in json", func(t *testing.T) {
		f := New(MalformedHeader, 20, "whitespace between header name and colon").WithToken([]byte("Host"))
		data, err := jsoniter.ConfigCompatibleWithStandardLibrary.Marshal(f)
		require.NoError(t, err)
		require.JSONEq(t,
			`{"kind":"MalformedHeader","offset":20,"detail":"whitespace between header name and colon","token":"Host"}`,
			string(data),
		)
	})

	t.Run("message", func(t *testing.T) {
		f := New(UnsupportedVersion, 9, "unrecognized version").WithToken([]byte("HTTP/9.9"))
		require.Equal(t, `UnsupportedVersion at offset 9: unrecognized version near "HTTP/9.9"`, f.Error())
	})

	t.Run("close connection", func(t *testing.T) {
		require.True(t, New(HeadersTooBig, 0, "").CloseConnection())
		require.False(t, New(MalformedHeader, 0, "").CloseConnection())
		require.False(t, New(UnsupportedMethod, 0, "").CloseConnection())
	})
}
