package tcp

import (
	"errors"
	"net"
	"os"
	"time"

	"github.com/indigo-web/httphead/http/status"
)

type Client interface {
	Read() ([]byte, error)
	// Unread stores the data to be returned by the next Read. Only the last unread
	// chunk is kept.
	Unread([]byte)
	Write([]byte) error
	Remote() net.Addr
	Close() error
}

type client struct {
	pending []byte
	buff    []byte
	conn    net.Conn
	timeout time.Duration
}

func NewClient(conn net.Conn, timeout time.Duration, buff []byte) Client {
	return &client{
		buff:    buff,
		conn:    conn,
		timeout: timeout,
	}
}

// Read returns pending data if any, otherwise reads from the connection. The returned
// slice is valid until the next Read. A connection idling longer than the timeout fails
// with status.ErrRequestTimeout.
func (c *client) Read() ([]byte, error) {
	if len(c.pending) > 0 {
		data := c.pending
		c.pending = nil
		return data, nil
	}

	if err := c.conn.SetReadDeadline(time.Now().Add(c.timeout)); err != nil {
		return nil, err
	}

	n, err := c.conn.Read(c.buff)
	if n > 0 {
		return c.buff[:n], nil
	}

	if errors.Is(err, os.ErrDeadlineExceeded) {
		err = status.ErrRequestTimeout
	}

	return nil, err
}

func (c *client) Unread(b []byte) {
	c.pending = b
}

func (c *client) Write(b []byte) error {
	_, err := c.conn.Write(b)
	return err
}

func (c *client) Remote() net.Addr {
	return c.conn.RemoteAddr()
}

func (c *client) Close() error {
	return c.conn.Close()
}
