package main

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/and161185/supp-tracker/internal/convert"
)

func newTemplateCmd(c *cli) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "template",
		Short: "Save, show and apply the daily template",
	}
	cmd.AddCommand(
		newTemplateSaveCmd(c),
		newTemplateShowCmd(c),
		newTemplateDeleteCmd(c),
		newTemplateApplyCmd(c),
		newTemplateApplyRangeCmd(c),
	)
	return cmd
}

func newTemplateSaveCmd(c *cli) *cobra.Command {
	var fromDay, file string
	cmd := &cobra.Command{
		Use:   "save",
		Short: "Save a day (--from-day) or a JSON supplement list (--file, - for stdin) as the template",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			a, userID, err := c.user(ctx)
			if err != nil {
				return err
			}
			switch {
			case fromDay != "" && file != "":
				return errors.New("use either --from-day or --file")
			case fromDay != "":
				date, err := convert.ParseDate(fromDay)
				if err != nil {
					return err
				}
				t, err := a.Templates.SaveFromDay(ctx, userID, date)
				if err != nil {
					return err
				}
				fmt.Fprintf(c.out, "saved %d supplements from %s as template\n", len(t.Entries), date)
				return nil
			case file != "":
				b, err := c.readAll(file)
				if err != nil {
					return err
				}
				var in []convert.SupplementIn
				if err := json.Unmarshal(b, &in); err != nil {
					return fmt.Errorf("parse %s: %w", file, err)
				}
				supps, err := convert.FromWireSupplements(in, a.Clock.Now())
				if err != nil {
					return err
				}
				if err := a.Templates.Save(ctx, userID, supps); err != nil {
					return err
				}
				fmt.Fprintf(c.out, "saved %d supplements as template\n", len(supps))
				return nil
			default:
				return errors.New("one of --from-day or --file is required")
			}
		},
	}
	cmd.Flags().StringVar(&fromDay, "from-day", "", "date (YYYY-MM-DD) whose list becomes the template")
	cmd.Flags().StringVarP(&file, "file", "f", "", "JSON file with a supplement list")
	return cmd
}

func newTemplateShowCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Print the saved template",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, userID, err := c.user(cmd.Context())
			if err != nil {
				return err
			}
			t, err := a.Templates.Get(cmd.Context(), userID)
			if err != nil {
				return err
			}
			return c.printJSON(convert.ToWireTemplate(t))
		},
	}
}

func newTemplateDeleteCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "delete",
		Short: "Delete the saved template",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, userID, err := c.user(cmd.Context())
			if err != nil {
				return err
			}
			if err := a.Templates.Delete(cmd.Context(), userID); err != nil {
				return err
			}
			fmt.Fprintln(c.out, "template deleted")
			return nil
		},
	}
}

func newTemplateApplyCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "apply [date]",
		Short: "Replace a day's list (today by default) with the template",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, userID, err := c.user(cmd.Context())
			if err != nil {
				return err
			}
			date, err := c.dateArg(a, args, 0)
			if err != nil {
				return err
			}
			if err := a.Templates.ApplyToDate(cmd.Context(), userID, date); err != nil {
				return err
			}
			fmt.Fprintf(c.out, "template applied to %s\n", date)
			return nil
		},
	}
}

func newTemplateApplyRangeCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "apply-range <start> <end>",
		Short: "Apply the template to every date of an inclusive range (at most 90 days)",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, userID, err := c.user(cmd.Context())
			if err != nil {
				return err
			}
			req, err := convert.FromWireRange(convert.RangeIn{Start: args[0], End: args[1]})
			if err != nil {
				return err
			}
			res, err := a.Templates.ApplyRange(cmd.Context(), userID, req.Start, req.End)
			if err != nil {
				return err
			}
			if err := c.printJSON(convert.ToWireRange(res, req, nil)); err != nil {
				return err
			}
			if res.Partial() {
				return fmt.Errorf("%d of %d dates failed", res.ErrorCount, len(res.Attempted))
			}
			return nil
		},
	}
}
