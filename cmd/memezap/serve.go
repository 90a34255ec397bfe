package main

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/ironsheep/memezap/internal/app"
	"github.com/ironsheep/memezap/internal/logger"
	"github.com/ironsheep/memezap/internal/server"
)

const serveLongDesc string = `Run the MCP server over stdio.

Requests are read from stdin one per line and responses written to stdout,
so logs only ever go to stderr. Use --log-file to also keep a JSON log.

Configure it in your MCP client, for example:
  {"command": "memezap", "args": ["serve", "--config", "/path/memezap.toml"]}`

func newServeCmd(root *rootOptions) *cobra.Command {
	var logFile string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the MCP server",
		Long:  serveLongDesc,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			log := root.logger
			if logFile != "" {
				if err := os.MkdirAll(filepath.Dir(logFile), 0o755); err != nil {
					return fmt.Errorf("creating log directory: %w", err)
				}
				f, err := os.OpenFile(logFile, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
				if err != nil {
					return fmt.Errorf("opening log file: %w", err)
				}
				defer f.Close()
				log = logger.Multi(log, logger.New(
					logger.WithJSON(true),
					logger.WithLevel(slog.LevelDebug),
					logger.WithWriter(f),
				))
				root.logger = log
			}

			return root.withServices(cmd, func(svc *app.Services) error {
				log.Info("memezap MCP server starting",
					"version", Version,
					"commit", GitCommit,
					"index", svc.Index.Stats().Backend,
					"templates", svc.Index.Len(),
				)
				srv := server.New(svc, log,
					server.WithIO(cmd.InOrStdin(), cmd.OutOrStdout()),
					server.WithVersion(Version),
				)
				return srv.Run(cmd.Context())
			})
		},
	}

	cmd.Flags().StringVar(&logFile, "log-file", "", "Also write JSON logs to this file")

	return cmd
}
