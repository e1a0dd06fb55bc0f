package buffer

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func pushSegment(t *testing.T, buff Buffer, text string) Buffer {
	ok := buff.Append([]byte(text))
	require.True(t, ok)
	segment := buff.Finish()
	require.Equal(t, text, string(segment))
	return buff
}

func BenchmarkBuffer(b *testing.B) {
	buff := New(1024, 4096)
	smallString := []byte(strings.Repeat("a", 1023))
	bigString := []byte(strings.Repeat("a", 4095))

	b.Run("no overflow", func(b *testing.B) {
		b.ReportAllocs()
		b.SetBytes(int64(len(smallString)))
		b.ResetTimer()

		for i := 0; i < b.N; i++ {
			_ = buff.Append(smallString)
			buff.Clear()
		}
	})

	b.Run("with overflow", func(b *testing.B) {
		b.ReportAllocs()
		b.SetBytes(int64(len(bigString)))
		b.ResetTimer()

		for i := 0; i < b.N; i++ {
			_ = buff.Append(bigString)
			buff.Clear()
			buff.memory = buff.memory[0:0:1024]
		}
	})
}

func TestBuffer(t *testing.T) {
	t.Run("no overflow", func(t *testing.T) {
		buff := New(10, 20)
		buff = pushSegment(t, buff, "Hello")
		buff = pushSegment(t, buff, "Here")
	})

	t.Run("with overflow", func(t *testing.T) {
		buff := New(10, 20)
		// "Hello, World!" is 13 characters length, so it will force the Buffer
		// to grow an underlying slice
		buff = pushSegment(t, buff, "Hello, ")
		buff = pushSegment(t, buff, "World!")
	})

	t.Run("exceeding the limit", func(t *testing.T) {
		buff := New(4, 5)
		require.True(t, buff.Append([]byte("Hello")))
		require.False(t, buff.Append([]byte("!")))
		require.False(t, buff.AppendByte('!'))
		require.Equal(t, "Hello", string(buff.Preview()))
	})

	t.Run("segments survive growth", func(t *testing.T) {
		buff := New(2, 64)
		require.True(t, buff.Append([]byte("Host")))
		name := buff.Finish()
		for _, c := range []byte("example.com") {
			require.True(t, buff.AppendByte(c))
		}

		value := buff.Finish()
		require.Equal(t, "Host", string(name))
		require.Equal(t, "example.com", string(value))
		require.Equal(t, 15, buff.Len())
	})

	t.Run("trim right", func(t *testing.T) {
		buff := New(10, 20)
		buff = pushSegment(t, buff, "ab")
		require.True(t, buff.Append([]byte("value \t ")))
		buff.TrimRight(func(c byte) bool { return c == ' ' || c == '\t' })
		require.Equal(t, "value", string(buff.Finish()))

		require.True(t, buff.Append([]byte("   ")))
		buff.TrimRight(func(c byte) bool { return c == ' ' })
		require.Empty(t, buff.Finish())
	})

	t.Run("clear", func(t *testing.T) {
		buff := New(10, 20)
		buff = pushSegment(t, buff, "Hello")
		buff.Clear()
		require.Zero(t, buff.Len())
		require.Zero(t, buff.SegmentLength())
	})
}
