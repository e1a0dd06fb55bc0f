// Package render serializes the demo server's responses and the textual form of parsed
// message heads.
package render

import (
	"strconv"

	"github.com/indigo-web/httphead/http"
	"github.com/indigo-web/httphead/http/failure"
	"github.com/indigo-web/httphead/http/proto"
	"github.com/indigo-web/httphead/http/status"
	"github.com/valyala/bytebufferpool"
)

const (
	sp   = " "
	crlf = "\r\n"
)

// Writer is usually tcp.Client.Write.
type Writer func([]byte) error

type Response struct {
	Proto       proto.Proto
	Code        status.Code
	ContentType string
	Body        []byte
	// Close adds the Connection: close header.
	Close bool
}

// Renderer writes responses, always appending the default headers.
type Renderer struct {
	defaultHeaders []string
}

// NewRenderer takes default headers as key-value pairs.
func NewRenderer(defaultHeaders ...string) *Renderer {
	return &Renderer{
		defaultHeaders: defaultHeaders,
	}
}

func (r *Renderer) Response(resp Response, writer Writer) error {
	buff := bytebufferpool.Get()
	defer bytebufferpool.Put(buff)

	protocol := resp.Proto
	if protocol == proto.Unknown {
		protocol = proto.HTTP11
	}

	_, _ = buff.WriteString(protocol.String())
	_, _ = buff.WriteString(sp)
	buff.B = strconv.AppendUint(buff.B, uint64(resp.Code), 10)
	_, _ = buff.WriteString(sp)
	_, _ = buff.WriteString(string(status.Text(resp.Code)))
	_, _ = buff.WriteString(crlf)

	for i := 0; i+1 < len(r.defaultHeaders); i += 2 {
		writeHeader(buff, r.defaultHeaders[i], r.defaultHeaders[i+1])
	}

	if len(resp.ContentType) > 0 {
		writeHeader(buff, "Content-Type", resp.ContentType)
	}

	if resp.Close {
		writeHeader(buff, "Connection", "close")
	}

	_, _ = buff.WriteString("Content-Length: ")
	buff.B = strconv.AppendInt(buff.B, int64(len(resp.Body)), 10)
	_, _ = buff.WriteString(crlf + crlf)
	_, _ = buff.Write(resp.Body)

	return writer(buff.B)
}

// Failure answers a rejected message. The connection is always closed afterwards, as it's
// unknown where the next message would begin.
func (r *Renderer) Failure(f *failure.Failure, writer Writer) error {
	return r.Response(Response{
		Proto:       proto.HTTP11,
		Code:        f.Code(),
		ContentType: "text/plain",
		Body:        []byte(f.Error() + "\n"),
		Close:       true,
	}, writer)
}

// Error answers an error occurred after the head was parsed, e.g. a malformed body.
func (r *Renderer) Error(protocol proto.Proto, err status.HTTPError, writer Writer) error {
	return r.Response(Response{
		Proto:       protocol,
		Code:        err.Code,
		ContentType: "text/plain",
		Body:        []byte(err.Message + "\n"),
		Close:       true,
	}, writer)
}

func writeHeader(buff *bytebufferpool.ByteBuffer, key, value string) {
	_, _ = buff.WriteString(key)
	_, _ = buff.WriteString(": ")
	_, _ = buff.WriteString(value)
	_, _ = buff.WriteString(crlf)
}

// Head appends the message head in its wire form, with normalized line endings and folded
// values joined.
func Head(buff *bytebufferpool.ByteBuffer, msg *http.Message) {
	switch msg.Kind {
	case http.Request:
		_, _ = buff.WriteString(msg.Method)
		_, _ = buff.WriteString(sp)
		_, _ = buff.WriteString(msg.Target)
		_, _ = buff.WriteString(sp)
		_, _ = buff.WriteString(msg.Version)
	default:
		_, _ = buff.WriteString(msg.Version)
		_, _ = buff.WriteString(sp)
		buff.B = strconv.AppendUint(buff.B, uint64(msg.Code), 10)
		_, _ = buff.WriteString(sp)
		_, _ = buff.WriteString(msg.Reason)
	}

	_, _ = buff.WriteString(crlf)

	headers := msg.Headers.Iter()
	for header, ok := headers.Next(); ok; header, ok = headers.Next() {
		writeHeader(buff, header.Key, header.Value)
	}

	_, _ = buff.WriteString(crlf)
}
