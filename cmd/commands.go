package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"GolfSync/internal/api"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
)

const shutdownTimeout = 15 * time.Second

// RootOptions global flags
type RootOptions struct {
	ConfigDir string
	Verbose   bool
}

// NewRootCommand golfsync CLI
func NewRootCommand() *cobra.Command {
	opts := &RootOptions{}

	cmd := &cobra.Command{
		Use:   "golfsync",
		Short: "Golf club participants, competitions and attendance",
		Long: `Keeps the club's participants, competitions and attendance fees in one JSON
document stored in a private GitHub gist, mirrored into a local cache.`,
		SilenceUsage: true,
	}

	cmd.PersistentFlags().StringVar(&opts.ConfigDir, "config", "./config", "directory holding config.yaml")
	cmd.PersistentFlags().BoolVarP(&opts.Verbose, "verbose", "v", false, "debug logging")

	cmd.AddCommand(NewServeCommand(opts))
	cmd.AddCommand(NewExportCommand(opts))
	cmd.AddCommand(NewCheckTokenCommand(opts))

	return cmd
}

// NewServeCommand runs the JSON API until SIGINT/SIGTERM
func NewServeCommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP API",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			a, err := bootstrap(ctx, opts)
			if err != nil {
				return err
			}
			defer a.Close()

			gin.SetMode(a.cfg.Server.Mode)
			srv := &http.Server{
				Addr:    fmt.Sprintf(":%d", a.cfg.Server.Port),
				Handler: api.NewRouter(a.engine, a.cfg, a.logger),
			}

			errCh := make(chan error, 1)
			go func() {
				a.logger.Infof("server listening on port %d", a.cfg.Server.Port)
				if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					errCh <- err
				}
				close(errCh)
			}()

			select {
			case err := <-errCh:
				if err != nil {
					return fmt.Errorf("start server: %w", err)
				}
				return nil
			case <-ctx.Done():
			}

			// stop accepting requests, then let pending remote writes finish
			a.logger.Info("shutting down")
			shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
			defer cancel()
			if err := srv.Shutdown(shutdownCtx); err != nil {
				a.logger.WithError(err).Warn("server shutdown incomplete")
			}
			if err := a.engine.Flush(shutdownCtx); err != nil {
				a.logger.WithError(err).Warn("remote writes still pending at exit, local cache is up to date")
			}
			return nil
		},
	}
}

// NewExportCommand writes the backup document to a directory
func NewExportCommand(opts *RootOptions) *cobra.Command {
	var outDir string
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write golf-competition-data-<date>.json",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := bootstrap(cmd.Context(), opts)
			if err != nil {
				return err
			}
			defer a.Close()

			doc := a.engine.Export()
			data, err := json.MarshalIndent(doc, "", "  ")
			if err != nil {
				return fmt.Errorf("encode export: %w", err)
			}
			if err := os.MkdirAll(outDir, 0o755); err != nil {
				return fmt.Errorf("create output directory: %w", err)
			}
			path := filepath.Join(outDir, doc.FileName())
			if err := os.WriteFile(path, data, 0o644); err != nil {
				return fmt.Errorf("write export: %w", err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), path)
			return nil
		},
	}
	cmd.Flags().StringVar(&outDir, "out", ".", "output directory")
	return cmd
}

// NewCheckTokenCommand verifies the configured GitHub token
func NewCheckTokenCommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "check-token",
		Short: "Check that the GitHub token is accepted",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := bootstrap(cmd.Context(), opts)
			if err != nil {
				return err
			}
			defer a.Close()

			if !a.engine.HasToken() {
				return errors.New("no GitHub token configured (set GITHUB_TOKEN or save one through /api/settings)")
			}
			if !a.engine.ValidateToken(cmd.Context()) {
				return errors.New("GitHub rejected the token")
			}
			out := cmd.OutOrStdout()
			fmt.Fprintln(out, "token ok")
			if url := a.engine.GistURL(); url != "" {
				fmt.Fprintln(out, url)
			}
			return nil
		},
	}
}
