package tcp

import (
	"context"
	"errors"
	"net"
	"sync"
	"sync/atomic"

	"github.com/indigo-web/httphead/http/status"
	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"
)

type OnConnection func(net.Conn)

type Server struct {
	sock     net.Listener
	onConn   OnConnection
	limiter  *rate.Limiter
	mu       sync.Mutex
	conns    map[net.Conn]struct{}
	shutdown atomic.Bool
}

// NewServer makes a server handing every accepted connection to onConn in its own
// goroutine. A nil limiter means accepting as fast as possible.
func NewServer(sock net.Listener, limiter *rate.Limiter, onConn OnConnection) *Server {
	return &Server{
		sock:    sock,
		onConn:  onConn,
		limiter: limiter,
		conns:   map[net.Conn]struct{}{},
	}
}

func (s *Server) Addr() net.Addr {
	return s.sock.Addr()
}

// Serve accepts connections until the context is done or the server is stopped, and
// returns after all the connection handlers are done. Stopping isn't an error, but it's
// reported as status.ErrShutdown.
func (s *Server) Serve(ctx context.Context) error {
	g, ctx := errgroup.WithContext(ctx)
	accepting := make(chan struct{})

	g.Go(func() error {
		select {
		case <-ctx.Done():
			return s.Stop()
		case <-accepting:
			return nil
		}
	})

	g.Go(func() error {
		defer close(accepting)
		return s.accept(ctx)
	})

	return g.Wait()
}

func (s *Server) accept(ctx context.Context) error {
	var wg sync.WaitGroup
	defer wg.Wait()

	for {
		if s.limiter != nil {
			if err := s.limiter.Wait(ctx); err != nil {
				return status.ErrShutdown
			}
		}

		conn, err := s.sock.Accept()
		if err != nil {
			if s.shutdown.Load() || errors.Is(err, net.ErrClosed) {
				return status.ErrShutdown
			}

			// handlers would otherwise be waited for while their connections are still open
			_ = s.Stop()
			return err
		}

		s.track(conn)
		wg.Add(1)
		go func() {
			defer wg.Done()
			defer s.untrack(conn)
			s.onConn(conn)
		}()
	}
}

func (s *Server) track(conn net.Conn) {
	s.mu.Lock()
	s.conns[conn] = struct{}{}
	s.mu.Unlock()
}

func (s *Server) untrack(conn net.Conn) {
	s.mu.Lock()
	delete(s.conns, conn)
	s.mu.Unlock()
}

func (s *Server) stopListener() error {
	if !s.shutdown.CompareAndSwap(false, true) {
		return nil
	}

	return s.sock.Close()
}

// Stop shuts listener and ALL the connections down
func (s *Server) Stop() error {
	err := s.stopListener()

	s.mu.Lock()
	for conn := range s.conns {
		_ = conn.Close()
	}
	s.mu.Unlock()

	return err
}

// GracefulShutdown stops a listener, but leaving all the connections free to end their
// lives peacefully
func (s *Server) GracefulShutdown() error {
	return s.stopListener()
}
