package cmd

import (
	"fmt"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/abhisek/sunny/internal/app"
	"github.com/abhisek/sunny/internal/logging"
	"github.com/abhisek/sunny/internal/server"
	"github.com/abhisek/sunny/internal/telemetry"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		if addr, _ := cmd.Flags().GetString("addr"); addr != "" {
			cfg.Server.Addr = addr
		}
		if demo, _ := cmd.Flags().GetBool("demo"); demo {
			cfg.Server.Demo = true
		}
		if err := cfg.Validate(); err != nil {
			return fmt.Errorf("invalid configuration: %w", err)
		}

		logger, err := logging.New(cfg.Telemetry.LogLevel, cfg.Telemetry.LogFormat)
		if err != nil {
			return err
		}
		defer syncLogger(logger)

		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		shutdownTracing, err := telemetry.SetupTracing(ctx, cfg.Telemetry.OTLPEndpoint)
		if err != nil {
			return fmt.Errorf("setup tracing: %w", err)
		}
		defer func() {
			if err := shutdownTracing(cmd.Context()); err != nil {
				logger.Warn("flush traces", zap.Error(err))
			}
		}()

		a, err := app.New(ctx, cfg, logger)
		if err != nil {
			return err
		}
		defer a.Close()

		logger.Info("starting sunny",
			zap.String("version", version),
			zap.String("store", cfg.Store.Driver),
			zap.Bool("demo", a.Provider == nil))
		return server.ListenAndServe(ctx, a.HTTPServer(), logger)
	},
}

func init() {
	serveCmd.Flags().String("addr", "", "Listen address (overrides SUNNY_SERVER_ADDR)")
	serveCmd.Flags().Bool("demo", false, "Serve canned content without calling an LLM")
}
