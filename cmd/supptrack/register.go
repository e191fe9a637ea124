package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newRegisterCmd(c *cli) *cobra.Command {
	var name, password string
	cmd := &cobra.Command{
		Use:   "register",
		Short: "Create an account for --user",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := c.open(cmd.Context())
			if err != nil {
				return err
			}
			id, err := a.Auth.Register(cmd.Context(), c.email, password, name)
			if err != nil {
				return err
			}
			fmt.Fprintf(c.out, "registered %s (%s)\n", c.email, id)
			return nil
		},
	}
	cmd.Flags().StringVar(&name, "name", "", "display name")
	cmd.Flags().StringVar(&password, "password", "", "password (at least 6 characters)")
	return cmd
}
