package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/abhisek/sunny/internal/app"
	"github.com/abhisek/sunny/internal/config"
	"github.com/abhisek/sunny/internal/logging"
)

var rootCmd = &cobra.Command{
	Use:          "sunny",
	Short:        "AI tutor backend for kids",
	Long:         "Sunny serves the JSON API behind a kids' tutoring app: adaptive quizzes, learning sessions, chat, notes and progress tracking.",
	SilenceUsage: true,
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().String("config", "", "Path to a YAML config file (overrides SUNNY_CONFIG)")
	rootCmd.PersistentFlags().String("db", "", "Path to the SQLite database (overrides SUNNY_STORE_PATH)")

	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(llmCmd)
	rootCmd.AddCommand(progressCmd)
	rootCmd.AddCommand(resetCmd)
	rootCmd.AddCommand(schemaCmd)
	rootCmd.AddCommand(versionCmd)
}

// loadConfig reads the configuration, applying the --db flag last.
func loadConfig(cmd *cobra.Command) (config.Config, error) {
	path, _ := cmd.Flags().GetString("config")
	cfg, err := config.Load(path)
	if err != nil {
		return cfg, err
	}
	if p, _ := cmd.Flags().GetString("db"); p != "" {
		cfg.Store.Driver = "sqlite"
		cfg.Store.Path = p
	}
	return cfg, nil
}

// openApp builds the services for the maintenance commands. They log
// warnings only and run without an LLM.
func openApp(ctx context.Context, cmd *cobra.Command) (*app.App, error) {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return nil, err
	}
	cfg.Server.Demo = true
	logger, err := logging.New("warn", "console")
	if err != nil {
		return nil, err
	}
	a, err := app.New(ctx, cfg, logger)
	if err != nil {
		return nil, fmt.Errorf("open app: %w", err)
	}
	return a, nil
}

func syncLogger(l *zap.Logger) {
	_ = l.Sync()
}
