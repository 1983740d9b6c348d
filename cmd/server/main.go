package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/pawdiary/pawdiary/internal/app"
	"github.com/pawdiary/pawdiary/internal/config"
)

var (
	configPath string
	dbPath     string
)

var rootCmd = &cobra.Command{
	Use:           "pawdiary",
	Short:         "pawdiary logs pet care activities",
	Long:          "pawdiary is a local-first pet activity log served over JSON-RPC, WebSocket and MCP.",
	SilenceUsage:  true,
	SilenceErrors: true,
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Path to a YAML config file")
	rootCmd.PersistentFlags().StringVar(&dbPath, "db", "", "Path to the SQLite database")
}

// loadConfig reads configuration and applies persistent flag overrides.
func loadConfig() (config.Config, error) {
	if configPath != "" {
		if err := os.Setenv("PAWDIARY_CONFIG_PATH", configPath); err != nil {
			return config.Config{}, err
		}
	}
	cfg, err := config.Load()
	if err != nil {
		return config.Config{}, fmt.Errorf("config error: %w", err)
	}
	if dbPath != "" {
		cfg.DB.Path = dbPath
	}
	return cfg, nil
}

// openApp opens the database and builds the services. The returned func
// closes the database.
func openApp(cfg config.Config, logger *slog.Logger) (*app.App, func(), error) {
	db, err := app.OpenDB(cfg.DB.Path)
	if err != nil {
		return nil, nil, fmt.Errorf("open database: %w", err)
	}
	a, err := app.New(db, cfg, logger)
	if err != nil {
		_ = db.Close()
		return nil, nil, err
	}
	return a, func() { _ = db.Close() }, nil
}

// quietLogger is used by one-shot commands so output stays clean.
func quietLogger(w io.Writer) *slog.Logger {
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: slog.LevelWarn}))
}
