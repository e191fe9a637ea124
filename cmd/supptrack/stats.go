package main

import (
	"github.com/spf13/cobra"
)

func newStatsCmd(c *cli) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Adherence statistics",
	}

	history := &cobra.Command{
		Use:   "history",
		Short: "Totals and completion rate over every stored day",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, userID, err := c.user(cmd.Context())
			if err != nil {
				return err
			}
			h, err := a.Stats.History(cmd.Context(), userID)
			if err != nil {
				return err
			}
			return c.printJSON(h)
		},
	}

	weekly := &cobra.Command{
		Use:   "weekly [date]",
		Short: "Sunday-start week containing date (today by default)",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, userID, err := c.user(cmd.Context())
			if err != nil {
				return err
			}
			anchor, err := c.dateArg(a, args, 0)
			if err != nil {
				return err
			}
			w, err := a.Stats.Weekly(cmd.Context(), userID, anchor)
			if err != nil {
				return err
			}
			return c.printJSON(w)
		},
	}

	cmd.AddCommand(history, weekly)
	return cmd
}
