// Package cli is the httphead command line: a demo server and a one-shot parser.
package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/indigo-web/httphead/config"
	"github.com/indigo-web/httphead/internal/logging"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// Version is set at build time:
// go build -ldflags "-X github.com/indigo-web/httphead/cmd/httphead/cli.Version=1.0.0"
var Version = "0.1.0"

// app is what every subcommand gets once the root command loaded the configuration.
type app struct {
	cfgFile string
	cfg     *config.Config
	logger  *zap.Logger
}

func NewRootCmd() *cobra.Command {
	a := new(app)

	root := &cobra.Command{
		Use:           "httphead",
		Short:         "httphead parses HTTP/1.x message heads incrementally.",
		Version:       Version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(a.cfgFile)
			if err != nil {
				return err
			}

			a.cfg = cfg
			a.logger = logging.NewStderr(cfg.Logger)
			a.logger.Debug("configuration loaded", zap.String("version", Version))
			return nil
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if a.logger != nil {
				_ = a.logger.Sync()
			}
		},
	}

	root.PersistentFlags().StringVarP(&a.cfgFile, "config", "c", "", "config file (default is ./httphead.yaml)")
	root.SetVersionTemplate(`{{printf "%s version %s\n" .Name .Version}}`)
	root.AddCommand(newServeCmd(a), newParseCmd(a))

	return root
}

func Execute() {
	if err := NewRootCmd().ExecuteContext(context.Background()); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
