// Package body skips request bodies, so that the next message on a persistent connection
// starts where the parser expects it. Bodies are never interpreted.
package body

import (
	"errors"
	"io"
	"strconv"
	"strings"

	"github.com/indigo-web/chunkedbody"
	"github.com/indigo-web/httphead/http"
	"github.com/indigo-web/httphead/http/status"
	"github.com/indigo-web/httphead/internal/server/tcp"
	"github.com/indigo-web/utils/strcomp"
)

type Framing uint8

const (
	None Framing = iota
	Length
	Chunked
)

// Drainer reads bodies from a client and throws them away.
type Drainer struct {
	client   tcp.Client
	settings chunkedbody.Settings
	maxSize  int64
}

func NewDrainer(client tcp.Client, maxSize int64) *Drainer {
	settings := chunkedbody.DefaultSettings()
	if maxSize < int64(settings.MaxChunkSize) {
		settings.MaxChunkSize = int(maxSize)
	}

	return &Drainer{
		client:   client,
		settings: settings,
		maxSize:  maxSize,
	}
}

// FramingOf tells how the body of the message is delimited. Transfer-Encoding takes
// precedence over Content-Length; a non-chunked final coding can't be delimited at all.
func FramingOf(msg *http.Message) (framing Framing, length int64, err error) {
	if codings := msg.Headers.Values("Transfer-Encoding"); len(codings) > 0 {
		last := codings[len(codings)-1]
		if comma := strings.LastIndexByte(last, ','); comma != -1 {
			last = last[comma+1:]
		}

		if !strcomp.EqualFold(strings.TrimSpace(last), "chunked") {
			return None, 0, status.ErrBadEncoding
		}

		return Chunked, 0, nil
	}

	lengths := msg.Headers.Values("Content-Length")
	if len(lengths) == 0 {
		return None, 0, nil
	}

	for i, value := range lengths {
		n, err := parseLength(value)
		if err != nil || (i > 0 && n != length) {
			return None, 0, status.ErrBadLength
		}

		length = n
	}

	return Length, length, nil
}

func parseLength(value string) (int64, error) {
	if len(value) == 0 || value[0] == '+' || value[0] == '-' {
		return 0, status.ErrBadLength
	}

	return strconv.ParseInt(value, 10, 64)
}

// Drain consumes the body of the message and returns its length. Bytes following the body
// are unread back into the client.
func (d *Drainer) Drain(msg *http.Message) (int64, error) {
	framing, length, err := FramingOf(msg)
	if err != nil {
		return 0, err
	}

	switch framing {
	case None:
		return 0, nil
	case Length:
		return d.drainLength(length)
	default:
		return d.drainChunked(msg.Headers.Has("Trailer"))
	}
}

func (d *Drainer) drainLength(length int64) (int64, error) {
	if length > d.maxSize {
		return 0, status.ErrBodyTooLarge
	}

	left := length
	for left > 0 {
		data, err := d.client.Read()
		if err != nil {
			return length - left, err
		}

		if int64(len(data)) >= left {
			d.client.Unread(data[left:])
			return length, nil
		}

		left -= int64(len(data))
	}

	return length, nil
}

func (d *Drainer) drainChunked(trailer bool) (int64, error) {
	parser := chunkedbody.NewParser(d.settings)
	var received int64

	for {
		data, err := d.client.Read()
		if err != nil {
			return received, err
		}

		for len(data) > 0 {
			chunk, extra, err := parser.Parse(data, trailer)
			received += int64(len(chunk))
			if received > d.maxSize {
				return received, status.ErrBodyTooLarge
			}

			switch {
			case err == nil:
			case errors.Is(err, io.EOF):
				d.client.Unread(extra)
				return received, nil
			default:
				return received, status.ErrBadChunk
			}

			data = extra
		}
	}
}
