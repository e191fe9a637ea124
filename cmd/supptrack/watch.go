package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/and161185/supp-tracker/internal/rollover"
)

func newWatchCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "watch",
		Short: "Follow day changes and prepare each new day until interrupted",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, userID, err := c.user(cmd.Context())
			if err != nil {
				return err
			}
			d := rollover.New(rollover.Config{
				UserID:   userID,
				Days:     a.Stores.Days,
				Applier:  a.Templates,
				Clock:    a.Clock,
				Policy:   a.Policy(),
				Interval: a.Cfg.RolloverInterval,
				Log:      a.Log,
				Metrics:  a.Metrics,
				OnChange: func(s rollover.Snapshot) {
					fmt.Fprintf(c.out, "%s: %d supplements\n", s.Date, len(s.Supplements))
				},
			})
			snap := d.Snapshot()
			fmt.Fprintf(c.out, "watching %s from %s (policy %s)\n", c.email, snap.Date, a.Policy())
			a.Log.Info("watch started", zap.String("user", userID.String()), zap.Duration("interval", a.Cfg.RolloverInterval))
			return d.Run(cmd.Context())
		},
	}
}
