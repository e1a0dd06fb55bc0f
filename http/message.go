package http

import (
	"github.com/indigo-web/httphead/http/headers"
	"github.com/indigo-web/httphead/http/method"
	"github.com/indigo-web/httphead/http/proto"
	"github.com/indigo-web/httphead/http/status"
)

type Kind uint8

const (
	Request Kind = iota + 1
	Response
)

func (k Kind) String() string {
	switch k {
	case Request:
		return "request"
	case Response:
		return "response"
	default:
		return "unknown"
	}
}

// Message is a parsed message head: a start line and an ordered header block.
//
// Strings point into the parser's memory and are valid only until the State the
// message came from is reset. Use Clone to keep a message around longer.
type Message struct {
	Kind Kind
	// Method, Target and Version are set for requests. Target is kept as raw bytes
	// of the wire, no decoding is applied.
	Method string
	Target string
	// Version is the verbatim version token, set for both kinds.
	Version string
	// Proto is Version recognized, or proto.Unknown if it's allowed by configuration
	// but not one of HTTP/1.0 and HTTP/1.1.
	Proto proto.Proto
	// Code and Reason are set for responses.
	Code    status.Code
	Reason  string
	Headers *headers.Headers
	// Folded holds indices (in Headers) of values that used obsolete line folding. Such
	// values are joined with a single space; whether to accept them is up to the caller.
	Folded []int
}

func NewMessage(kind Kind, hdrs *headers.Headers) *Message {
	return &Message{
		Kind:    kind,
		Headers: hdrs,
	}
}

// MethodKind recognizes the request method.
func (m *Message) MethodKind() method.Method {
	return method.Parse(m.Method)
}

// HasFolding reports whether any header used obsolete line folding.
func (m *Message) HasFolding() bool {
	return len(m.Folded) > 0
}

// KeepAlive decides whether the connection persists after this message, based on the
// protocol default and the Connection header.
func (m *Message) KeepAlive() bool {
	for _, value := range m.Headers.Values("Connection") {
		if containsToken(value, "close") {
			return false
		}

		if containsToken(value, "keep-alive") {
			return true
		}
	}

	return m.Proto.KeepAlive()
}

// Clone returns a deep copy that doesn't depend on the parser's memory.
func (m *Message) Clone() *Message {
	clone := *m
	clone.Method = copyString(m.Method)
	clone.Target = copyString(m.Target)
	clone.Version = copyString(m.Version)
	clone.Reason = copyString(m.Reason)
	clone.Headers = m.Headers.Clone()
	clone.Folded = append([]int(nil), m.Folded...)

	return &clone
}

// Reset prepares the message for reuse.
func (m *Message) Reset() {
	kind, hdrs, folded := m.Kind, m.Headers, m.Folded[:0]
	hdrs.Clear()
	*m = Message{
		Kind:    kind,
		Headers: hdrs,
		Folded:  folded,
	}
}

func copyString(s string) string {
	if len(s) == 0 {
		return ""
	}

	return string(append([]byte(nil), s...))
}
