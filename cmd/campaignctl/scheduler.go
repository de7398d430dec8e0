package main

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/ArowuTest/tourbook-backend/internal/app"
	"github.com/spf13/cobra"
)

var (
	schedulerInterval time.Duration
	schedulerOnce     bool
)

// schedulerCmd promotes scheduled campaigns whose send time has passed
var schedulerCmd = &cobra.Command{
	Use:   "scheduler",
	Short: "Activate scheduled campaigns that are due",
	Long: `Sweep SCHEDULED campaigns whose send time has passed and activate them.

Runs until interrupted, sweeping every --interval. With --once a single
sweep runs and its report is printed.`,
	RunE: runScheduler,
}

func init() {
	schedulerCmd.Flags().DurationVar(&schedulerInterval, "interval", 0, "sweep interval (defaults to Scheduler.Interval)")
	schedulerCmd.Flags().BoolVar(&schedulerOnce, "once", false, "run a single sweep and exit")
}

func runScheduler(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()
	return withApp(ctx, func(a *app.App) error {
		if schedulerOnce {
			report, err := a.Scheduler.PromoteDue(ctx, time.Now())
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "due=%d activated=%d skipped=%d failed=%d\n",
				report.Due, report.Activated, report.Skipped, report.Failed)
			return nil
		}

		interval := schedulerInterval
		if interval <= 0 {
			interval = a.Config.Scheduler.Interval
		}
		err := a.Scheduler.Run(ctx, interval)
		if errors.Is(err, context.Canceled) {
			return nil
		}
		return err
	})
}
