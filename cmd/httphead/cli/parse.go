package cli

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/indigo-web/httphead/http"
	"github.com/indigo-web/httphead/http/failure"
	"github.com/indigo-web/httphead/http/status"
	"github.com/indigo-web/httphead/internal/logging"
	"github.com/indigo-web/httphead/internal/render"
	"github.com/indigo-web/httphead/parser"
	jsoniter "github.com/json-iterator/go"
	"github.com/spf13/cobra"
	"github.com/valyala/bytebufferpool"
	"go.uber.org/zap"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

var (
	errIncomplete = errors.New("input ended before the message head did")
	errRejected   = errors.New("message rejected")
)

type parseOptions struct {
	chunk    int
	json     bool
	response bool
}

func newParseCmd(a *app) *cobra.Command {
	var opts parseOptions

	cmd := &cobra.Command{
		Use:   "parse [file]",
		Short: "Parse a single message head from a file or stdin",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			input := cmd.InOrStdin()
			if len(args) == 1 {
				file, err := os.Open(args[0])
				if err != nil {
					return err
				}
				defer file.Close()
				input = file
			}

			data, err := io.ReadAll(input)
			if err != nil {
				return fmt.Errorf("read input: %w", err)
			}

			return runParse(a, cmd.OutOrStdout(), data, opts)
		},
	}

	flags := cmd.Flags()
	flags.IntVar(&opts.chunk, "chunk", 0, "feed the parser in chunks of this many bytes (0 is all at once)")
	flags.BoolVar(&opts.json, "json", false, "print the result as JSON")
	flags.BoolVar(&opts.response, "response", false, "expect a status line instead of a request line")

	return cmd
}

type headerView struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

type messageView struct {
	Kind    string       `json:"kind"`
	Method  string       `json:"method,omitempty"`
	Target  string       `json:"target,omitempty"`
	Version string       `json:"version"`
	Code    status.Code  `json:"code,omitempty"`
	Reason  string       `json:"reason,omitempty"`
	Headers []headerView `json:"headers"`
	Folded  []int        `json:"folded,omitempty"`
}

type report struct {
	Outcome string           `json:"outcome"`
	Offset  int              `json:"offset"`
	Extra   int              `json:"extra"`
	Message *messageView     `json:"message,omitempty"`
	Failure *failure.Failure `json:"failure,omitempty"`
	Status  status.Code      `json:"status,omitempty"`
}

func viewOf(msg *http.Message) *messageView {
	view := &messageView{
		Kind:    msg.Kind.String(),
		Method:  msg.Method,
		Target:  msg.Target,
		Version: msg.Version,
		Code:    msg.Code,
		Reason:  msg.Reason,
		Headers: make([]headerView, 0, msg.Headers.Len()),
		Folded:  msg.Folded,
	}

	for i := 0; i < msg.Headers.Len(); i++ {
		header := msg.Headers.At(i)
		view.Headers = append(view.Headers, headerView{Name: header.Key, Value: header.Value})
	}

	return view
}

func runParse(a *app, out io.Writer, data []byte, opts parseOptions) error {
	limits := &a.cfg.Limits
	st := parser.NewRequestState(limits)
	if opts.response {
		st = parser.NewResponseState(limits)
	}

	chunk := opts.chunk
	if chunk <= 0 {
		chunk = len(data)
	}

	var (
		outcome = parser.NeedMoreData
		extra   []byte
		err     error
		fed     int
	)

	for fed < len(data) && outcome == parser.NeedMoreData {
		end := min(fed+chunk, len(data))
		outcome, extra, err = parser.Feed(data[fed:end], st, limits)
		fed = end
	}

	rep := report{
		Outcome: outcome.String(),
		Offset:  st.Offset(),
	}

	switch outcome {
	case parser.MessageComplete:
		rep.Extra = len(extra) + len(data) - fed
		rep.Message = viewOf(st.Message())
		a.logger.Debug("parsed", zap.Int("offset", rep.Offset), zap.Int("extra", rep.Extra))
	case parser.Rejected:
		f, _ := failure.As(err)
		rep.Failure, rep.Status = f, f.Code()
		a.logger.Log(logging.FailureLevel(f), "rejected", logging.Failure(f)...)
	}

	if opts.json {
		encoded, err := json.MarshalIndent(rep, "", "  ")
		if err != nil {
			return err
		}

		if _, err = fmt.Fprintln(out, string(encoded)); err != nil {
			return err
		}
	} else if err := printText(out, st.Message(), rep); err != nil {
		return err
	}

	switch outcome {
	case parser.MessageComplete:
		return nil
	case parser.Rejected:
		return fmt.Errorf("%w: %w", errRejected, err)
	default:
		return errIncomplete
	}
}

func printText(out io.Writer, msg *http.Message, rep report) error {
	if rep.Failure != nil {
		_, err := fmt.Fprintf(out, "%d %s: %s\n", rep.Status, status.Text(rep.Status), rep.Failure)
		return err
	}

	if rep.Message == nil {
		return nil
	}

	buff := bytebufferpool.Get()
	defer bytebufferpool.Put(buff)

	render.Head(buff, msg)
	for _, i := range msg.Folded {
		fmt.Fprintf(buff, "# %s used obsolete line folding\n", msg.Headers.At(i).Key)
	}

	fmt.Fprintf(buff, "# head is %d bytes, %d bytes follow\n", rep.Offset, rep.Extra)
	_, err := out.Write(buff.B)
	return err
}
