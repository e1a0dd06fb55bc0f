// Package parser incrementally parses HTTP/1.x message heads: the start line and the header
// block. Input is accepted in chunks of any size, down to a single byte, and every limit is
// enforced while the bytes are consumed, so an unterminated token can't grow unbounded.
// The body isn't touched: it's whatever follows the head.
package parser

import (
	"fmt"

	"github.com/indigo-web/httphead/config"
	"github.com/indigo-web/httphead/cursor"
	"github.com/indigo-web/httphead/internal/guard"
	"github.com/indigo-web/httphead/internal/scanner"
)

type Outcome uint8

const (
	NeedMoreData Outcome = iota
	MessageComplete
	Rejected
)

func (o Outcome) String() string {
	switch o {
	case NeedMoreData:
		return "NeedMoreData"
	case MessageComplete:
		return "MessageComplete"
	case Rejected:
		return "Rejected"
	default:
		return "Unknown"
	}
}

// Parse consumes bytes from the cursor until the message head is complete, the chunk is
// exhausted or the input is rejected. The returned error is a *failure.Failure iff the
// outcome is Rejected.
//
// On MessageComplete, the message is st.Message() and the cursor stands on the first byte
// after the head. Bytes after it are left unconsumed. A rejected state stays rejected:
// further calls return the same failure without consuming anything, and so does a complete
// state with MessageComplete until it's Reset.
func Parse(cur *cursor.Cursor, st *State, limits *config.Limits) (Outcome, error) {
	g := guard.New(limits)
	scan := st.scan

	for {
		var result scanner.Result

		switch scan.Phase() {
		case scanner.StartLine:
			result = scan.StartLine(cur, g)
		case scanner.HeaderName:
			if scan.AtLineStart() {
				result = scan.HeadersEnd(cur, g)
			} else {
				result = scan.HeaderName(cur, g)
			}
		case scanner.HeaderValue, scanner.HeaderFold:
			result = scan.HeaderValue(cur, g)
		case scanner.Done:
			return MessageComplete, nil
		case scanner.Failed:
			return Rejected, scan.Failure()
		default:
			panic(fmt.Sprintf("BUG: unexpected phase: %v", scan.Phase()))
		}

		if result == scanner.Suspended {
			return NeedMoreData, nil
		}
	}
}

// Feed is Parse over a plain slice. On MessageComplete, extra holds the bytes following
// the head, aliasing data.
func Feed(data []byte, st *State, limits *config.Limits) (outcome Outcome, extra []byte, err error) {
	var cur cursor.Cursor
	cur.Reset(data)

	outcome, err = Parse(&cur, st, limits)
	if outcome == MessageComplete {
		extra = cur.Rest()
	}

	return outcome, extra, err
}
