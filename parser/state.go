package parser

import (
	"github.com/indigo-web/httphead/config"
	"github.com/indigo-web/httphead/http"
	"github.com/indigo-web/httphead/http/failure"
	"github.com/indigo-web/httphead/internal/scanner"
)

// arenaPrealloc is how much token memory is allocated upfront. The arena grows on demand
// up to the sum of the start line and header block limits.
const arenaPrealloc = 4096

// State is the progress of a single message head. It's owned by the caller, usually one per
// connection, and is reused between messages via Reset. A State must not be used by more
// than one goroutine at a time.
type State struct {
	scan *scanner.Scanner
}

func NewRequestState(limits *config.Limits) *State {
	return newState(http.Request, limits)
}

func NewResponseState(limits *config.Limits) *State {
	return newState(http.Response, limits)
}

func newState(kind http.Kind, limits *config.Limits) *State {
	return &State{
		scan: scanner.New(kind, arenaPrealloc, limits.MaxStartLineBytes+limits.MaxTotalHeaderBytes),
	}
}

func (s *State) Phase() scanner.Phase {
	return s.scan.Phase()
}

func (s *State) Kind() http.Kind {
	return s.scan.Kind()
}

// Message returns the parsed message. It's complete only after MessageComplete was
// returned, and valid until Reset.
func (s *State) Message() *http.Message {
	return s.scan.Message()
}

// Failure returns the sticky failure of a rejected message, nil otherwise.
func (s *State) Failure() *failure.Failure {
	return s.scan.Failure()
}

// Offset returns the number of bytes of the message consumed so far. After MessageComplete,
// it's the length of the message head.
func (s *State) Offset() int {
	return s.scan.Offset()
}

// Reset prepares the state for the next message on the same connection. The previous
// message must be cloned if it's needed afterwards.
func (s *State) Reset() {
	s.scan.Reset()
}
