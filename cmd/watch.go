package cmd

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"gcalnote/internal/config"
	"gcalnote/internal/server"
	"gcalnote/internal/vault"
)

func newWatchCmd() *cobra.Command {
	var vaultDir string
	var metricsAddr string

	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Watch a note vault and auto-insert events into daily notes",
		Long: `Watch the vault directory for opened or changed notes. When a daily
note is touched, the day's events are inserted and kept fresh on the
configured refresh interval until a non-daily note is touched.

When a metrics address is configured, Prometheus metrics and a health
check are served on it.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			settings, err := config.Load(configPath)
			if err != nil {
				return err
			}
			if vaultDir != "" {
				settings.VaultDir = vaultDir
			}
			if settings.VaultDir == "" {
				return fmt.Errorf("no vault directory configured; set vault_dir or pass --vault")
			}
			if metricsAddr != "" {
				settings.MetricsAddr = metricsAddr
			}

			logger := slog.Default()

			v, err := vault.NewDir(settings.VaultDir, logger)
			if err != nil {
				return err
			}
			orch, err := newOrchestrator(settings, v)
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			var metricsServer *server.MetricsServer
			if settings.MetricsAddr != "" {
				metricsServer = server.NewMetricsServer(settings.MetricsAddr)
				go func() {
					if err := metricsServer.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
						logger.Error("metrics server failed", "error", err)
					}
				}()
			}

			opened, err := v.Watch(ctx)
			if err != nil {
				return err
			}

			logger.Info("watching vault", "dir", settings.VaultDir)
			err = orch.Run(ctx, opened)

			if metricsServer != nil {
				shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
				defer cancel()
				if serr := metricsServer.Shutdown(shutdownCtx); serr != nil {
					logger.Error("metrics server shutdown failed", "error", serr)
				}
			}

			if errors.Is(err, context.Canceled) {
				return nil
			}
			return err
		},
	}

	cmd.Flags().StringVar(&vaultDir, "vault", "", "Vault directory to watch (overrides vault_dir)")
	cmd.Flags().StringVar(&metricsAddr, "metrics-addr", "", "Address for the metrics endpoint (e.g. :9090; overrides metrics_addr)")
	return cmd
}
