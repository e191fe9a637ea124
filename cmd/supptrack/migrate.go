package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/and161185/supp-tracker/internal/config"
	"github.com/and161185/supp-tracker/internal/repository/local"
	"github.com/and161185/supp-tracker/internal/service"
)

func newMigrateLocalCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate-local",
		Short: "Copy days kept in the local store into the primary store",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			a, userID, err := c.user(ctx)
			if err != nil {
				return err
			}
			if a.Cfg.StoreBackend == config.BackendLocal {
				return fmt.Errorf("primary store is already local (%s_STORE_BACKEND)", config.Prefix)
			}
			localDays := a.Stores.LocalDays
			if localDays == nil {
				db, err := local.Open(ctx, a.Cfg.SQLitePath)
				if err != nil {
					return err
				}
				defer db.Close()
				localDays = local.NewDayRepo(db)
			}
			res, err := service.MigrateLocal(ctx, localDays, a.Stores.PrimaryDays, userID, a.Log)
			if err != nil {
				return err
			}
			fmt.Fprintln(c.out, res.Message)
			return nil
		},
	}
}
