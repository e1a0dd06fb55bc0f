// Package dummy provides in-memory clients for testing connection handlers.
package dummy

import (
	"bytes"
	"io"
	"net"

	"github.com/indigo-web/httphead/internal/server/tcp"
)

var _ tcp.Client = new(Client)

// Client returns the data it was initialised with, one piece per Read, and io.EOF
// afterwards. Everything written is collected.
type Client struct {
	data    [][]byte
	pending []byte
	written bytes.Buffer
	closed  bool
}

func NewClient(data ...[]byte) *Client {
	return &Client{data: data}
}

// Split makes a client returning data in pieces of at most n bytes.
func Split(data []byte, n int) *Client {
	var pieces [][]byte
	for len(data) > n {
		pieces = append(pieces, data[:n])
		data = data[n:]
	}

	return NewClient(append(pieces, data)...)
}

func (c *Client) Read() (data []byte, err error) {
	if c.closed {
		return nil, net.ErrClosed
	}

	if len(c.pending) > 0 {
		data, c.pending = c.pending, nil
		return data, nil
	}

	if len(c.data) == 0 {
		return nil, io.EOF
	}

	data, c.data = c.data[0], c.data[1:]
	return data, nil
}

func (c *Client) Unread(takeback []byte) {
	c.pending = takeback
}

func (c *Client) Write(b []byte) error {
	if c.closed {
		return net.ErrClosed
	}

	c.written.Write(b)
	return nil
}

func (*Client) Remote() net.Addr {
	return &net.TCPAddr{IP: net.IPv4(127, 0, 0, 1), Port: 16100}
}

func (c *Client) Close() error {
	c.closed = true
	return nil
}

// Written returns everything written so far.
func (c *Client) Written() string {
	return c.written.String()
}

func (c *Client) Closed() bool {
	return c.closed
}
