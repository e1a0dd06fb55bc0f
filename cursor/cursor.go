// Package cursor provides a bounded, forward-only view over a single chunk of input.
package cursor

// Cursor walks a caller-owned byte slice. Running out of bytes is a normal condition
// reported through the boolean results, never an error: the caller is expected to
// come back later with a fresh Cursor over the next chunk.
type Cursor struct {
	data []byte
	pos  int
	mark int
}

func New(data []byte) *Cursor {
	return &Cursor{data: data}
}

// Reset points the cursor at a new chunk, so a single Cursor may serve a whole connection.
func (c *Cursor) Reset(data []byte) {
	c.data = data
	c.pos = 0
	c.mark = 0
}

// Peek returns the current byte without consuming it. False means end of chunk.
func (c *Cursor) Peek() (byte, bool) {
	if c.pos >= len(c.data) {
		return 0, false
	}

	return c.data[c.pos], true
}

// Advance consumes and returns the current byte. False means end of chunk.
func (c *Cursor) Advance() (byte, bool) {
	if c.pos >= len(c.data) {
		return 0, false
	}

	char := c.data[c.pos]
	c.pos++
	return char, true
}

// Remaining returns the number of unconsumed bytes.
func (c *Cursor) Remaining() int {
	return len(c.data) - c.pos
}

// Pos returns the number of consumed bytes.
func (c *Cursor) Pos() int {
	return c.pos
}

// Rest returns the unconsumed bytes. The slice aliases the chunk.
func (c *Cursor) Rest() []byte {
	return c.data[c.pos:]
}

// Skip consumes n bytes, clamped to the remaining amount.
func (c *Cursor) Skip(n int) {
	if n > c.Remaining() {
		n = c.Remaining()
	}

	c.pos += n
}

// Mark remembers the current position for a later SinceMark.
func (c *Cursor) Mark() {
	c.mark = c.pos
}

// SinceMark returns the bytes consumed since the last Mark (or since the beginning
// of the chunk). The slice aliases the chunk and must not be retained past the call.
func (c *Cursor) SinceMark() []byte {
	return c.data[c.mark:c.pos]
}

// Slice copies the bytes in [start, end) of the chunk. Indices are clamped into the chunk.
func (c *Cursor) Slice(start, end int) []byte {
	if start < 0 {
		start = 0
	}

	if end > len(c.data) {
		end = len(c.data)
	}

	if start >= end {
		return nil
	}

	return append([]byte(nil), c.data[start:end]...)
}
