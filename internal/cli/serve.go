package cli

import (
	"github.com/guiyumin/fbdl/internal/config"
	"github.com/guiyumin/fbdl/internal/server"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
)

var serveAddr string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve link extraction over HTTP",
	Long: `Start an HTTP server exposing link extraction as JSON.

  POST /api/extract  {"url": "https://www.facebook.com/.../videos/123/"}
  GET  /healthz

Requests are handled one at a time.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := config.LoadOrDefault()
		if attempts > 0 {
			cfg.MaxAttempts = attempts
		}
		if cmd.Flags().Changed("browser") {
			cfg.Browser = useBrowser
		}
		addr := cfg.ServeAddr
		if serveAddr != "" {
			addr = serveAddr
		}

		logger := newLogger(verbose, zerolog.InfoLevel)
		srv := server.New(newRegistry(cfg, logger, nil), logger)
		return srv.Run(addr)
	},
}

func init() {
	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "listen address (default from config, 127.0.0.1:8080)")
	rootCmd.AddCommand(serveCmd)
}
