// Package scanner recognizes the tokens of a message head byte by byte. The scanner keeps
// all of its progress in itself, so it can be suspended at any byte and resumed with the
// next chunk of input.
package scanner

import (
	"fmt"

	"github.com/indigo-web/httphead/cursor"
	"github.com/indigo-web/httphead/http"
	"github.com/indigo-web/httphead/http/failure"
	"github.com/indigo-web/httphead/http/headers"
	"github.com/indigo-web/httphead/http/proto"
	"github.com/indigo-web/httphead/http/status"
	"github.com/indigo-web/httphead/internal/buffer"
	"github.com/indigo-web/httphead/internal/guard"
	"github.com/indigo-web/utils/uf"
)

type Phase uint8

const (
	StartLine Phase = iota + 1
	HeaderName
	HeaderValue
	HeaderFold
	Done
	Failed
)

func (p Phase) String() string {
	switch p {
	case StartLine:
		return "StartLine"
	case HeaderName:
		return "HeaderName"
	case HeaderValue:
		return "HeaderValue"
	case HeaderFold:
		return "HeaderFold"
	case Done:
		return "Done"
	case Failed:
		return "Failed"
	default:
		return "Unknown"
	}
}

type Result uint8

const (
	// Suspended means the chunk ran out before the token was complete.
	Suspended Result = iota
	Complete
	Rejected
)

type step uint8

const (
	sLineStart step = iota
	sLineStartCR
	sToken
	sCR
	sOWS
)

// maxEmptyLines is how many empty lines are tolerated before the start line.
const maxEmptyLines = 1

// Start line fields. Requests are method, target and version, responses are version,
// code and reason.
const (
	fieldFirst = iota
	fieldSecond
	fieldThird
)

// Scanner is the mutable state of a single message head.
type Scanner struct {
	kind  http.Kind
	phase Phase
	step  step
	field int
	arena buffer.Buffer
	msg   *http.Message
	fail  *failure.Failure
	// offset is the number of bytes of the message consumed so far.
	offset         int
	emptyLines     int
	startLineBytes int
	headerCount    int
	headerBytes    int
	name           string
	// valuePending is set between the end of a header line and the beginning of the next
	// one, when it's not yet known whether the value continues on a folded line.
	valuePending bool
	folded       bool
	pendingSpace bool
}

func New(kind http.Kind, arenaSize, maxArenaSize int) *Scanner {
	return &Scanner{
		kind:  kind,
		phase: StartLine,
		arena: buffer.New(arenaSize, maxArenaSize),
		msg:   http.NewMessage(kind, headers.New()),
	}
}

func (s *Scanner) Phase() Phase {
	return s.phase
}

func (s *Scanner) Kind() http.Kind {
	return s.kind
}

// Message returns the message being built. It's complete only in the Done phase.
func (s *Scanner) Message() *http.Message {
	return s.msg
}

// Failure returns the failure that moved the scanner into the Failed phase, nil otherwise.
func (s *Scanner) Failure() *failure.Failure {
	return s.fail
}

// Offset returns the number of bytes of the message consumed so far.
func (s *Scanner) Offset() int {
	return s.offset
}

// AtLineStart reports whether the scanner is between two header lines, where HeadersEnd
// must decide what comes next.
func (s *Scanner) AtLineStart() bool {
	return s.phase == HeaderName && (s.step == sLineStart || s.step == sLineStartCR)
}

// Reset prepares the scanner for the next message. Strings of the previous message become
// invalid, as their memory gets reused.
func (s *Scanner) Reset() {
	s.arena.Clear()
	s.msg.Reset()
	*s = Scanner{
		kind:  s.kind,
		phase: StartLine,
		arena: s.arena,
		msg:   s.msg,
	}
}

// StartLine consumes the request or status line including its line terminator.
func (s *Scanner) StartLine(cur *cursor.Cursor, g guard.Guard) Result {
	for {
		c, ok := cur.Advance()
		if !ok {
			return Suspended
		}

		at := s.offset
		s.offset++

		switch s.step {
		case sLineStart:
			switch c {
			case '\r':
				s.step = sLineStartCR
				continue
			case '\n':
				if f := s.emptyLine(at); f != nil {
					return s.reject(f)
				}

				continue
			}

			s.step = sToken
		case sLineStartCR:
			if c != '\n' {
				return s.reject(failure.New(failure.MalformedStartLine, at, "CR not followed by LF"))
			}

			if f := s.emptyLine(at); f != nil {
				return s.reject(f)
			}

			s.step = sLineStart
			continue
		case sCR:
			if c != '\n' {
				return s.reject(failure.New(failure.MalformedStartLine, at, "CR not followed by LF"))
			}

			return s.endStartLine(at, g)
		case sToken:
		default:
			panic(fmt.Sprintf("BUG: unexpected start line step: %d", s.step))
		}

		switch c {
		case '\r':
			s.step = sCR
			continue
		case '\n':
			return s.endStartLine(at, g)
		}

		s.startLineBytes++
		if f := g.CheckStartLine(s.startLineBytes, at); f != nil {
			return s.reject(f)
		}

		var f *failure.Failure
		if s.kind == http.Request {
			f = s.requestByte(c, at, g)
		} else {
			f = s.responseByte(c, at, g)
		}

		if f != nil {
			return s.reject(f)
		}
	}
}

func (s *Scanner) emptyLine(at int) *failure.Failure {
	s.emptyLines++
	if s.emptyLines > maxEmptyLines {
		return failure.New(failure.MalformedStartLine, at, "too many empty lines before the start line")
	}

	s.step = sLineStart
	return nil
}

func (s *Scanner) requestByte(c byte, at int, g guard.Guard) *failure.Failure {
	switch s.field {
	case fieldFirst:
		if c == ' ' {
			return s.endMethod(at, g)
		}

		if !isTchar(c) {
			return malformedStartLine(at, "invalid method character", c)
		}
	case fieldSecond:
		if c == ' ' {
			if s.arena.SegmentLength() == 0 {
				return failure.New(failure.MalformedStartLine, at, "empty request target")
			}

			s.msg.Target = uf.B2S(s.arena.Finish())
			s.field++
			return nil
		}

		if c <= ' ' || c == 0x7f {
			return malformedStartLine(at, "invalid request target character", c)
		}
	default:
		if c == ' ' {
			return failure.New(failure.MalformedStartLine, at, "unexpected space after the version")
		}

		if !isVchar(c) {
			return malformedStartLine(at, "invalid version character", c)
		}
	}

	return s.appendStartLine(c, at, g)
}

func (s *Scanner) responseByte(c byte, at int, g guard.Guard) *failure.Failure {
	switch s.field {
	case fieldFirst:
		if c == ' ' {
			if f := s.endVersion(at, g); f != nil {
				return f
			}

			s.field++
			return nil
		}

		if !isVchar(c) {
			return malformedStartLine(at, "invalid version character", c)
		}
	case fieldSecond:
		if c == ' ' {
			return s.endCode(at)
		}

		if c < '0' || c > '9' {
			return malformedStartLine(at, "invalid status code character", c)
		}

		if s.arena.SegmentLength() == 3 {
			return failure.New(failure.MalformedStartLine, at, "status code must consist of 3 digits")
		}
	default:
		if c != '\t' && (c < ' ' || c == 0x7f) {
			return malformedStartLine(at, "invalid reason phrase character", c)
		}
	}

	return s.appendStartLine(c, at, g)
}

func (s *Scanner) appendStartLine(c byte, at int, g guard.Guard) *failure.Failure {
	if !s.arena.AppendByte(c) {
		return failure.New(failure.StartLineTooLong, at, "start line is too long").
			WithLimit(g.Limits().MaxStartLineBytes)
	}

	return nil
}

func (s *Scanner) endMethod(at int, g guard.Guard) *failure.Failure {
	if s.arena.SegmentLength() == 0 {
		return failure.New(failure.MalformedStartLine, at, "empty method")
	}

	method := s.arena.Finish()
	if !g.Limits().MethodAllowed(method) {
		return failure.New(failure.UnsupportedMethod, at, "method is not allowed").
			WithToken(method)
	}

	s.msg.Method = uf.B2S(method)
	s.field++
	return nil
}

func (s *Scanner) endVersion(at int, g guard.Guard) *failure.Failure {
	if s.arena.SegmentLength() == 0 {
		return failure.New(failure.MalformedStartLine, at, "empty version")
	}

	version := s.arena.Finish()
	if !g.Limits().VersionAllowed(version) {
		return failure.New(failure.UnsupportedVersion, at, "version is not supported").
			WithToken(version)
	}

	s.msg.Version = uf.B2S(version)
	s.msg.Proto = proto.FromBytes(version)
	return nil
}

func (s *Scanner) endCode(at int) *failure.Failure {
	digits := s.arena.Finish()
	code, ok := status.FromDigits(digits)
	if !ok {
		return failure.New(failure.MalformedStartLine, at, "invalid status code").WithToken(digits)
	}

	s.msg.Code = code
	s.field++
	return nil
}

func (s *Scanner) endStartLine(at int, g guard.Guard) Result {
	switch s.kind {
	case http.Request:
		if s.field != fieldThird {
			return s.reject(failure.New(failure.MalformedStartLine, at, "incomplete request line"))
		}

		if f := s.endVersion(at, g); f != nil {
			return s.reject(f)
		}
	default:
		switch s.field {
		case fieldFirst:
			return s.reject(failure.New(failure.MalformedStartLine, at, "incomplete status line"))
		case fieldSecond:
			if f := s.endCode(at); f != nil {
				return s.reject(f)
			}
		default:
			s.msg.Reason = uf.B2S(s.arena.Finish())
		}
	}

	s.phase = HeaderName
	s.step = sLineStart
	return Complete
}

// HeadersEnd decides what the beginning of a header line is: the empty line ending
// the head, a continuation of the previous value (obsolete folding) or a new header.
// Only the bytes of the empty line are consumed.
func (s *Scanner) HeadersEnd(cur *cursor.Cursor, g guard.Guard) Result {
	for {
		switch s.step {
		case sLineStart:
			c, ok := cur.Peek()
			if !ok {
				return Suspended
			}

			switch c {
			case '\r':
				cur.Advance()
				s.offset++
				s.step = sLineStartCR
			case '\n':
				cur.Advance()
				s.offset++
				return s.finish()
			case ' ', '\t':
				if !s.valuePending {
					return s.reject(failure.New(
						failure.MalformedHeader, s.offset, "header line begins with whitespace",
					))
				}

				s.arena.TrimRight(isOWS)
				s.valuePending = false
				s.folded = true
				s.pendingSpace = true
				s.phase = HeaderFold
				s.step = sOWS
				return Complete
			default:
				s.commitValue()
				s.step = sToken
				return Complete
			}
		case sLineStartCR:
			c, ok := cur.Advance()
			if !ok {
				return Suspended
			}

			at := s.offset
			s.offset++
			if c != '\n' {
				return s.reject(failure.New(failure.MalformedHeader, at, "CR not followed by LF"))
			}

			return s.finish()
		default:
			panic(fmt.Sprintf("BUG: unexpected line start step: %d", s.step))
		}
	}
}

func (s *Scanner) finish() Result {
	s.commitValue()
	s.phase = Done
	return Complete
}

// HeaderName consumes a header name including the colon.
func (s *Scanner) HeaderName(cur *cursor.Cursor, g guard.Guard) Result {
	for {
		c, ok := cur.Advance()
		if !ok {
			return Suspended
		}

		at := s.offset
		s.offset++
		s.headerBytes++

		switch {
		case c == ':':
			if s.arena.SegmentLength() == 0 {
				return s.reject(failure.New(failure.MalformedHeader, at, "empty header name"))
			}

			if f := g.CheckTotalHeaderBytes(s.headerBytes, at); f != nil {
				return s.reject(f)
			}

			s.headerCount++
			if f := g.CheckHeaderCount(s.headerCount, at); f != nil {
				return s.reject(f)
			}

			s.name = uf.B2S(s.arena.Finish())
			s.phase = HeaderValue
			s.step = sOWS
			return Complete
		case c == ' ' || c == '\t':
			return s.reject(failure.New(failure.MalformedHeader, at, "whitespace between header name and colon").
				WithToken(s.arena.Preview()))
		case c == '\r' || c == '\n':
			return s.reject(failure.New(failure.MalformedHeader, at, "header line without colon").
				WithToken(s.arena.Preview()))
		case !isTchar(c):
			return s.reject(malformedHeader(at, "invalid header name character", c))
		}

		if !s.arena.AppendByte(c) {
			return s.reject(s.arenaExhausted(at, g))
		}

		if f := g.CheckHeaderName(s.arena.SegmentLength(), at); f != nil {
			return s.reject(f)
		}

		if f := g.CheckTotalHeaderBytes(s.headerBytes, at); f != nil {
			return s.reject(f)
		}
	}
}

// HeaderValue consumes a header value including the line terminator. Leading and trailing
// whitespace isn't a part of the value and doesn't count towards its length.
func (s *Scanner) HeaderValue(cur *cursor.Cursor, g guard.Guard) Result {
	for {
		c, ok := cur.Advance()
		if !ok {
			return Suspended
		}

		at := s.offset
		s.offset++
		s.headerBytes++

		switch s.step {
		case sOWS:
			if isOWS(c) {
				if f := g.CheckTotalHeaderBytes(s.headerBytes, at); f != nil {
					return s.reject(f)
				}

				continue
			}

			s.step = sToken
		case sCR:
			if c != '\n' {
				return s.reject(failure.New(failure.MalformedHeader, at, "CR not followed by LF"))
			}

			return s.endValueLine(at, g)
		case sToken:
		default:
			panic(fmt.Sprintf("BUG: unexpected header value step: %d", s.step))
		}

		switch {
		case c == '\r':
			s.step = sCR
		case c == '\n':
			return s.endValueLine(at, g)
		case isOWS(c):
			if !s.arena.AppendByte(c) {
				return s.reject(s.arenaExhausted(at, g))
			}
		case c < ' ' || c == 0x7f:
			return s.reject(malformedHeader(at, "invalid header value character", c))
		default:
			if s.pendingSpace {
				s.pendingSpace = false
				if s.arena.SegmentLength() > 0 && !s.arena.AppendByte(' ') {
					return s.reject(s.arenaExhausted(at, g))
				}
			}

			if !s.arena.AppendByte(c) {
				return s.reject(s.arenaExhausted(at, g))
			}

			if f := g.CheckHeaderValue(s.arena.SegmentLength(), at); f != nil {
				return s.reject(f)
			}
		}

		if f := g.CheckTotalHeaderBytes(s.headerBytes, at); f != nil {
			return s.reject(f)
		}
	}
}

func (s *Scanner) endValueLine(at int, g guard.Guard) Result {
	if f := g.CheckTotalHeaderBytes(s.headerBytes, at); f != nil {
		return s.reject(f)
	}

	s.valuePending = true
	s.phase = HeaderName
	s.step = sLineStart
	return Complete
}

// commitValue adds the pending header, if any, to the message.
func (s *Scanner) commitValue() {
	if !s.valuePending {
		return
	}

	s.arena.TrimRight(isOWS)
	s.msg.Headers.Add(s.name, uf.B2S(s.arena.Finish()))
	if s.folded {
		s.msg.Folded = append(s.msg.Folded, s.msg.Headers.Len()-1)
	}

	s.valuePending = false
	s.folded = false
	s.pendingSpace = false
}

// arenaExhausted is reported when the arena overflows before any of the limits is hit,
// which happens only if the limits were changed since the scanner was made.
func (s *Scanner) arenaExhausted(at int, g guard.Guard) *failure.Failure {
	return failure.New(failure.HeadersTooBig, at, "header block is too big").
		WithLimit(g.Limits().MaxTotalHeaderBytes)
}

func (s *Scanner) reject(f *failure.Failure) Result {
	s.fail = f
	s.phase = Failed
	return Rejected
}

func malformedStartLine(at int, detail string, c byte) *failure.Failure {
	return failure.New(failure.MalformedStartLine, at, detail).WithToken([]byte{c})
}

func malformedHeader(at int, detail string, c byte) *failure.Failure {
	return failure.New(failure.MalformedHeader, at, detail).WithToken([]byte{c})
}
