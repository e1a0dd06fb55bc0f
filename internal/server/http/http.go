// Package http is the connection loop of the demo server: it feeds whatever the client
// sends into the parser, answers every complete message head with its own textual form,
// and maps rejections onto statuses.
package http

import (
	"errors"
	"fmt"
	"net"

	"github.com/google/uuid"
	"github.com/indigo-web/httphead/config"
	"github.com/indigo-web/httphead/http/failure"
	"github.com/indigo-web/httphead/http/proto"
	"github.com/indigo-web/httphead/http/status"
	"github.com/indigo-web/httphead/internal/body"
	"github.com/indigo-web/httphead/internal/logging"
	"github.com/indigo-web/httphead/internal/render"
	"github.com/indigo-web/httphead/internal/server/tcp"
	"github.com/indigo-web/httphead/parser"
	"github.com/valyala/bytebufferpool"
	"go.uber.org/zap"
)

type Server struct {
	cfg      *config.Config
	logger   *zap.Logger
	renderer *render.Renderer
}

func NewServer(cfg *config.Config, logger *zap.Logger) *Server {
	return &Server{
		cfg:      cfg,
		logger:   logger,
		renderer: render.NewRenderer("Server", "httphead"),
	}
}

// OnConnection serves a freshly accepted connection until it's closed.
func (s *Server) OnConnection(conn net.Conn) {
	s.Run(tcp.NewClient(conn, s.cfg.NET.ReadTimeout, make([]byte, s.cfg.NET.ReadBufferSize)))
}

func (s *Server) Run(client tcp.Client) {
	logger := s.logger.With(
		zap.Stringer("conn", uuid.New()),
		zap.Stringer("remote", client.Remote()),
	)
	logger.Debug("connection opened")

	sess := session{
		client:  client,
		state:   parser.NewRequestState(&s.cfg.Limits),
		drainer: body.NewDrainer(client, s.cfg.NET.MaxBodySize),
		logger:  logger,
	}

	for s.handle(&sess) {
	}

	_ = client.Close()
	logger.Debug("connection closed", zap.Int("messages", sess.messages))
}

type session struct {
	client   tcp.Client
	state    *parser.State
	drainer  *body.Drainer
	logger   *zap.Logger
	messages int
}

// handle makes a single read and processes it. False means the connection must
// be closed.
func (s *Server) handle(sess *session) (ok bool) {
	data, err := sess.client.Read()
	if err != nil {
		if errors.Is(err, status.ErrRequestTimeout) && sess.state.Offset() > 0 {
			s.answerError(sess, proto.HTTP11, err)
		}

		sess.logger.Debug("read failed", zap.Error(err))
		return false
	}

	outcome, extra, err := parser.Feed(data, sess.state, &s.cfg.Limits)
	switch outcome {
	case parser.NeedMoreData:
		return true
	case parser.MessageComplete:
		sess.client.Unread(extra)
		return s.respond(sess)
	case parser.Rejected:
		f, _ := failure.As(err)
		sess.logger.Log(logging.FailureLevel(f), "message rejected", logging.Failure(f)...)

		// exceeded limits are mostly abuse, not worth the answer
		if !f.CloseConnection() {
			_ = s.renderer.Failure(f, sess.client.Write)
		}

		return false
	default:
		panic(fmt.Sprintf("BUG: got unexpected parser outcome: %v", outcome))
	}
}

func (s *Server) respond(sess *session) bool {
	msg := sess.state.Message()
	sess.messages++

	length, err := sess.drainer.Drain(msg)
	if err != nil {
		s.answerError(sess, msg.Proto, err)
		sess.logger.Debug("body", zap.Error(err))
		return false
	}

	keepAlive := msg.KeepAlive()

	buff := bytebufferpool.Get()
	render.Head(buff, msg)
	err = s.renderer.Response(render.Response{
		Proto:       msg.Proto,
		Code:        status.OK,
		ContentType: "text/plain",
		Body:        buff.B,
		Close:       !keepAlive,
	}, sess.client.Write)
	bytebufferpool.Put(buff)

	sess.logger.Debug(
		"message parsed",
		zap.String("method", msg.Method),
		zap.String("target", msg.Target),
		zap.Int("headers", msg.Headers.Len()),
		zap.Bool("folded", msg.HasFolding()),
		zap.Int64("body", length),
	)

	sess.state.Reset()
	return err == nil && keepAlive
}

func (s *Server) answerError(sess *session, protocol proto.Proto, err error) {
	var httpErr status.HTTPError
	if !errors.As(err, &httpErr) || httpErr.Code == status.CloseConnection {
		return
	}

	_ = s.renderer.Error(protocol, httpErr, sess.client.Write)
}
