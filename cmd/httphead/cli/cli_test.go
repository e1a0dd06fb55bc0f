package cli

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/indigo-web/httphead/http/failure"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func execute(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()
	t.Setenv("HTTPHEAD_LOGGER_LEVEL", "error")

	root := NewRootCmd()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetIn(strings.NewReader(stdin))
	root.SetArgs(args)

	err := root.ExecuteContext(context.Background())
	return out.String(), err
}

func TestVersion(t *testing.T) {
	out, err := execute(t, "", "--version")
	require.NoError(t, err)
	assert.Equal(t, "httphead version "+Version+"\n", out)
}

func TestParse(t *testing.T) {
	const raw = "GET /foo HTTP/1.1\r\nHost: example.com\r\nX-Long: a\r\n b\r\n\r\nbody"

	t.Run("text", func(t *testing.T) {
		out, err := execute(t, raw, "parse", "--chunk", "3")
		require.NoError(t, err)
		assert.Contains(t, out, "GET /foo HTTP/1.1\r\nHost: example.com\r\nX-Long: a b\r\n\r\n")
		assert.Contains(t, out, "# X-Long used obsolete line folding\n")
		assert.Contains(t, out, "4 bytes follow")
	})

	t.Run("json from file", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "request.txt")
		require.NoError(t, os.WriteFile(path, []byte(raw), 0o600))

		out, err := execute(t, "", "parse", "--json", path)
		require.NoError(t, err)

		var rep report
		require.NoError(t, json.Unmarshal([]byte(out), &rep))
		assert.Equal(t, "MessageComplete", rep.Outcome)
		assert.Equal(t, len(raw)-len("body"), rep.Offset)
		assert.Equal(t, 4, rep.Extra)
		require.NotNil(t, rep.Message)
		assert.Equal(t, "request", rep.Message.Kind)
		assert.Equal(t, "/foo", rep.Message.Target)
		assert.Equal(t, []headerView{{"Host", "example.com"}, {"X-Long", "a b"}}, rep.Message.Headers)
		assert.Equal(t, []int{1}, rep.Message.Folded)
	})

	t.Run("response", func(t *testing.T) {
		out, err := execute(t, "HTTP/1.1 404 Not Found\r\n\r\n", "parse", "--response", "--json")
		require.NoError(t, err)

		var rep report
		require.NoError(t, json.Unmarshal([]byte(out), &rep))
		assert.EqualValues(t, 404, rep.Message.Code)
		assert.Equal(t, "Not Found", rep.Message.Reason)
	})

	t.Run("rejected", func(t *testing.T) {
		out, err := execute(t, "GET / HTTP/9.9\r\n\r\n", "parse", "--json")
		require.True(t, errors.Is(err, errRejected))
		require.True(t, errors.Is(err, failure.ErrUnsupportedVersion))
		assert.Contains(t, out, `"outcome": "Rejected"`)
		assert.Contains(t, out, `"status": 505`)
		assert.Contains(t, out, "UnsupportedVersion")
		assert.Contains(t, out, `"token": "HTTP/9.9"`)
	})

	t.Run("incomplete", func(t *testing.T) {
		out, err := execute(t, "GET / HTTP/1.1\r\nHost: a\r\n", "parse")
		require.ErrorIs(t, err, errIncomplete)
		assert.Empty(t, out)
	})

	t.Run("limits from environment", func(t *testing.T) {
		t.Setenv("HTTPHEAD_LIMITS_MAX_HEADER_COUNT", "1")
		out, err := execute(t, raw, "parse")
		require.True(t, errors.Is(err, failure.ErrTooManyHeaders))
		assert.Contains(t, out, "431 Request Header Fields Too Large")
	})
}
