package cli

import (
	"errors"
	"fmt"
	"net"
	"os"
	"os/signal"
	"syscall"

	"github.com/indigo-web/httphead/http/status"
	"github.com/indigo-web/httphead/internal/server/http"
	"github.com/indigo-web/httphead/internal/server/tcp"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

func newServeCmd(a *app) *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run a server answering every request with its parsed head",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if addr != "" {
				a.cfg.NET.Addr = addr
			}

			listener, err := net.Listen("tcp", a.cfg.NET.Addr)
			if err != nil {
				return fmt.Errorf("listen: %w", err)
			}

			limiter := rate.NewLimiter(rate.Limit(a.cfg.NET.AcceptRate), a.cfg.NET.AcceptBurst)
			server := tcp.NewServer(listener, limiter, http.NewServer(a.cfg, a.logger).OnConnection)

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			a.logger.Info("listening", zap.Stringer("addr", server.Addr()))
			err = server.Serve(ctx)
			a.logger.Info("stopped")
			if errors.Is(err, status.ErrShutdown) {
				return nil
			}

			return err
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "address to listen on, overrides net.addr")

	return cmd
}
