// Command campaignctl runs operational tasks against the booking backend:
// scheduled campaign sweeps, population imports and operator tokens.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/ArowuTest/tourbook-backend/internal/app"
	"github.com/ArowuTest/tourbook-backend/internal/config"
	"github.com/ArowuTest/tourbook-backend/internal/metrics"
	"github.com/ArowuTest/tourbook-backend/pkg/logger"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var rootCmd = &cobra.Command{
	Use:           "campaignctl",
	Short:         "Operational commands for campaigns and the notification population",
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.AddCommand(schedulerCmd, importUsersCmd, issueTokenCmd)
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

// withApp loads configuration, builds the application and closes it after fn returns
func withApp(ctx context.Context, fn func(*app.App) error) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	zlog, err := logger.New(cfg.LogLevel)
	if err != nil {
		return err
	}
	defer func() { _ = zlog.Sync() }()
	metrics.Init()

	application, err := app.New(ctx, cfg, zlog)
	if err != nil {
		return err
	}
	defer func() {
		if err := application.Close(context.Background()); err != nil {
			zlog.Error("error closing connections", zap.Error(err))
		}
	}()

	return fn(application)
}
