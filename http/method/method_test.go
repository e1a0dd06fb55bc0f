package method

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestParse(t *testing.T) {
	for _, m := range List {
		require.Equal(t, m, Parse(m.String()))
	}

	require.Equal(t, Unknown, Parse("get"))
	require.Equal(t, Unknown, Parse("BREW"))
	require.Equal(t, Unknown, Parse(""))
}

func TestNames(t *testing.T) {
	names := Names()
	require.Len(t, names, len(List))
	require.Equal(t, "GET", names[0])
	require.Equal(t, "PATCH", names[len(names)-1])
	require.Empty(t, Unknown.String())
}
