// Package failure holds the closed set of reasons a message head can be rejected for.
package failure

import (
	"errors"
	"strconv"

	"github.com/indigo-web/httphead/http/status"
)

type Kind uint8

const (
	Unknown Kind = iota
	HeadersTooBig
	TooManyHeaders
	MalformedStartLine
	MalformedHeader
	UnsupportedMethod
	UnsupportedVersion
	StartLineTooLong
	HeaderNameTooLong
	HeaderValueTooLong
)

var kindNames = [...]string{
	Unknown:            "Unknown",
	HeadersTooBig:      "HeadersTooBig",
	TooManyHeaders:     "TooManyHeaders",
	MalformedStartLine: "MalformedStartLine",
	MalformedHeader:    "MalformedHeader",
	UnsupportedMethod:  "UnsupportedMethod",
	UnsupportedVersion: "UnsupportedVersion",
	StartLineTooLong:   "StartLineTooLong",
	HeaderNameTooLong:  "HeaderNameTooLong",
	HeaderValueTooLong: "HeaderValueTooLong",
}

func (k Kind) String() string {
	if int(k) >= len(kindNames) {
		return "Kind(" + strconv.Itoa(int(k)) + ")"
	}

	return kindNames[k]
}

// MarshalText makes kinds render by name in JSON and logs.
func (k Kind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

// Class groups kinds by what they tell about the peer.
type Class uint8

const (
	// Limit is a resource ceiling hit. The peer may be abusive, so reading further
	// data just to compose a response isn't worth it.
	Limit Class = iota + 1
	// Grammar is a syntactically broken message.
	Grammar
	// Policy is a well-formed message we refuse to serve.
	Policy
)

func (c Class) String() string {
	switch c {
	case Limit:
		return "limit"
	case Grammar:
		return "grammar"
	case Policy:
		return "policy"
	default:
		return "unknown"
	}
}

func (k Kind) Class() Class {
	switch k {
	case HeadersTooBig, TooManyHeaders, StartLineTooLong, HeaderNameTooLong, HeaderValueTooLong:
		return Limit
	case UnsupportedMethod, UnsupportedVersion:
		return Policy
	default:
		return Grammar
	}
}

// Code returns the status code a server should answer with.
func (k Kind) Code() status.Code {
	switch k {
	case HeadersTooBig, TooManyHeaders, HeaderNameTooLong, HeaderValueTooLong:
		return status.RequestHeaderFieldsTooLarge
	case StartLineTooLong:
		return status.RequestURITooLong
	case UnsupportedMethod:
		return status.NotImplemented
	case UnsupportedVersion:
		return status.HTTPVersionNotSupported
	default:
		return status.BadRequest
	}
}

// maxTokenLen bounds how many bytes of the offending token are kept for diagnostics.
const maxTokenLen = 64

// Failure describes why a message was rejected. It carries enough context to be
// logged without rescanning the input.
type Failure struct {
	Kind Kind `json:"kind"`
	// Offset is the position in the message (counting from its first byte, across
	// all the chunks) at which the failure was detected.
	Offset int    `json:"offset"`
	Detail string `json:"detail"`
	// Token is (at most 64 bytes of) the offending token, if any.
	Token string `json:"token,omitempty"`
	// Limit is the exceeded ceiling. Zero for non-limit kinds.
	Limit int `json:"limit,omitempty"`
}

func New(kind Kind, offset int, detail string) *Failure {
	return &Failure{
		Kind:   kind,
		Offset: offset,
		Detail: detail,
	}
}

// WithToken attaches a copy of the offending token.
func (f *Failure) WithToken(token []byte) *Failure {
	if len(token) > maxTokenLen {
		token = token[:maxTokenLen]
	}

	f.Token = string(token)
	return f
}

// WithLimit records the exceeded limit.
func (f *Failure) WithLimit(limit int) *Failure {
	f.Limit = limit
	return f
}

func (f *Failure) Error() string {
	msg := f.Kind.String() + " at offset " + strconv.Itoa(f.Offset)
	if len(f.Detail) > 0 {
		msg += ": " + f.Detail
	}

	if f.Limit > 0 {
		msg += " (limit " + strconv.Itoa(f.Limit) + ")"
	}

	if len(f.Token) > 0 {
		msg += " near " + strconv.Quote(f.Token)
	}

	return msg
}

// Is matches failures by kind, so errors.Is(err, failure.ErrTooManyHeaders) works
// regardless of offset and detail.
func (f *Failure) Is(target error) bool {
	other, ok := target.(*Failure)
	return ok && other.Kind == f.Kind
}

// Code is a shortcut for f.Kind.Code().
func (f *Failure) Code() status.Code {
	return f.Kind.Code()
}

// CloseConnection reports whether the connection should be dropped without an
// answer.
func (f *Failure) CloseConnection() bool {
	return f.Kind.Class() == Limit
}

// As extracts a *Failure from the error chain.
func As(err error) (*Failure, bool) {
	var f *Failure
	if errors.As(err, &f) {
		return f, true
	}

	return nil, false
}

// Sentinels for errors.Is comparisons.
var (
	ErrHeadersTooBig      = &Failure{Kind: HeadersTooBig}
	ErrTooManyHeaders     = &Failure{Kind: TooManyHeaders}
	ErrMalformedStartLine = &Failure{Kind: MalformedStartLine}
	ErrMalformedHeader    = &Failure{Kind: MalformedHeader}
	ErrUnsupportedMethod  = &Failure{Kind: UnsupportedMethod}
	ErrUnsupportedVersion = &Failure{Kind: UnsupportedVersion}
	ErrStartLineTooLong   = &Failure{Kind: StartLineTooLong}
	ErrHeaderNameTooLong  = &Failure{Kind: HeaderNameTooLong}
	ErrHeaderValueTooLong = &Failure{Kind: HeaderValueTooLong}
)
