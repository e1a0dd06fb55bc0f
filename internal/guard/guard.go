// Package guard enforces the configured ceilings of a message head. Checks are meant to
// be called as bytes are consumed, so that a token without a terminator is still bounded.
package guard

import (
	"github.com/indigo-web/httphead/config"
	"github.com/indigo-web/httphead/http/failure"
)

type Guard struct {
	limits *config.Limits
}

func New(limits *config.Limits) Guard {
	return Guard{limits: limits}
}

// Limits returns the underlying limits.
func (g Guard) Limits() *config.Limits {
	return g.limits
}

// CheckStartLine checks the start line length so far, terminator excluded. The offset
// is the position the failure is reported at.
func (g Guard) CheckStartLine(n, offset int) *failure.Failure {
	return check(n, g.limits.MaxStartLineBytes, offset, failure.StartLineTooLong, "start line is too long")
}

func (g Guard) CheckHeaderName(n, offset int) *failure.Failure {
	return check(n, g.limits.MaxHeaderNameBytes, offset, failure.HeaderNameTooLong, "header name is too long")
}

func (g Guard) CheckHeaderValue(n, offset int) *failure.Failure {
	return check(n, g.limits.MaxHeaderValueBytes, offset, failure.HeaderValueTooLong, "header value is too long")
}

func (g Guard) CheckHeaderCount(n, offset int) *failure.Failure {
	return check(n, g.limits.MaxHeaderCount, offset, failure.TooManyHeaders, "too many headers")
}

func (g Guard) CheckTotalHeaderBytes(n, offset int) *failure.Failure {
	return check(n, g.limits.MaxTotalHeaderBytes, offset, failure.HeadersTooBig, "header block is too big")
}

func check(n, limit, offset int, kind failure.Kind, detail string) *failure.Failure {
	if n <= limit {
		return nil
	}

	return failure.New(kind, offset, detail).WithLimit(limit)
}
