package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/spf13/cobra"

	"github.com/pawdiary/pawdiary/internal/app"
)

var transportMode string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the server over HTTP or stdio",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		if transportMode != "" {
			cfg.Transport.Mode = transportMode
			if err := cfg.Validate(); err != nil {
				return err
			}
		}

		// Use stderr for logs in stdio mode to keep stdout clean for JSON-RPC.
		logWriter := io.Writer(os.Stdout)
		if cfg.Transport.Mode == "stdio" {
			logWriter = os.Stderr
		}
		if cfg.Log.Path != "" {
			fileWriter, file, err := newLogFileWriter(cfg.Log.Path)
			if err != nil {
				fmt.Fprintf(os.Stderr, "log file error: %v\n", err)
			} else {
				defer file.Close()
				logWriter = fileWriter
			}
		}
		logger := slog.New(slog.NewTextHandler(logWriter, &slog.HandlerOptions{
			Level: parseLogLevel(cfg.Log.Level),
		}))

		a, closeDB, err := openApp(cfg, logger)
		if err != nil {
			logger.Error("failed to start", "error", err)
			return err
		}
		defer closeDB()

		ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()
		go a.Run(ctx)

		if cfg.Transport.Mode == "stdio" {
			return runStdioMode(ctx, logger, a)
		}
		return runHTTPMode(ctx, logger, a)
	},
}

func init() {
	serveCmd.Flags().StringVar(&transportMode, "transport", "", "Transport mode: http or stdio (overrides config)")
	rootCmd.AddCommand(serveCmd)
}

func runStdioMode(ctx context.Context, logger *slog.Logger, a *app.App) error {
	logger.Info("starting stdio transport", "auth", "disabled")

	// Run blocks until stdin closes or the context is canceled.
	if err := a.MCPServer("stdio").Run(ctx, &sdkmcp.StdioTransport{}); err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("stdio server error", "error", err)
		return err
	}
	logger.Info("shutting down")
	return nil
}

func runHTTPMode(ctx context.Context, logger *slog.Logger, a *app.App) error {
	addr := fmt.Sprintf("%s:%d", a.Config.Server.Host, a.Config.Server.Port)
	httpServer := &http.Server{
		Addr:              addr,
		Handler:           a.Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("server listening", "addr", addr, "auth", a.Config.Auth.Enabled)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			logger.Error("server error", "error", err)
			return err
		}
		return nil
	case <-ctx.Done():
	}
	return waitForShutdown(logger, httpServer)
}

func waitForShutdown(logger *slog.Logger, server *http.Server) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	logger.Info("shutting down")
	if err := server.Shutdown(ctx); err != nil {
		logger.Error("shutdown error", "error", err)
		return err
	}
	return nil
}
