package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"cloud.google.com/go/civil"
	"github.com/gofrs/uuid/v5"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/and161185/supp-tracker/internal/app"
	"github.com/and161185/supp-tracker/internal/clock"
	"github.com/and161185/supp-tracker/internal/config"
	"github.com/and161185/supp-tracker/internal/convert"
)

// cli carries state shared by subcommands.
type cli struct {
	out io.Writer
	in  io.Reader

	email   string
	verbose bool

	// log and clk are injected by tests; built on demand otherwise.
	log *zap.Logger
	clk clock.Clock

	app *app.App
}

func newRootCmd(c *cli) *cobra.Command {
	root := &cobra.Command{
		Use:   "supptrack",
		Short: "supptrack - daily supplement tracking from the terminal",
		Long: `supptrack works directly on the store configured through SUPPTRACK_* variables
(or a .env file): save and apply the daily template, read adherence statistics,
and watch for day changes.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
			return c.close()
		},
	}
	root.SetOut(c.out)
	root.PersistentFlags().StringVarP(&c.email, "user", "u", os.Getenv(config.Prefix+"_USER"), "account email")
	root.PersistentFlags().BoolVarP(&c.verbose, "verbose", "v", false, "development logging")

	root.AddCommand(
		newVersionCmd(c),
		newRegisterCmd(c),
		newTemplateCmd(c),
		newStatsCmd(c),
		newWatchCmd(c),
		newMigrateLocalCmd(c),
	)
	return root
}

func newVersionCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(c.out, "supptrack %s (built %s)\n", version, buildDate)
		},
	}
}

func (c *cli) logger() (*zap.Logger, error) {
	if c.log != nil {
		return c.log, nil
	}
	zc := zap.NewProductionConfig()
	zc.Level = zap.NewAtomicLevelAt(zap.WarnLevel)
	if c.verbose {
		zc = zap.NewDevelopmentConfig()
	}
	log, err := zc.Build()
	if err != nil {
		return nil, err
	}
	c.log = log
	return log, nil
}

// open loads configuration and connects the store once per invocation.
func (c *cli) open(ctx context.Context) (*app.App, error) {
	if c.app != nil {
		return c.app, nil
	}
	log, err := c.logger()
	if err != nil {
		return nil, err
	}
	cfg, err := config.Load(log)
	if err != nil {
		return nil, err
	}
	a, err := app.Open(ctx, cfg, log)
	if err != nil {
		return nil, err
	}
	if c.clk != nil {
		a = app.Build(cfg, log, a.Stores, c.clk)
	}
	c.app = a
	return a, nil
}

func (c *cli) close() error {
	if c.app == nil {
		return nil
	}
	err := c.app.Close()
	c.app = nil
	return err
}

// user opens the store and resolves --user to an account id.
func (c *cli) user(ctx context.Context) (*app.App, uuid.UUID, error) {
	a, err := c.open(ctx)
	if err != nil {
		return nil, uuid.Nil, err
	}
	email := strings.ToLower(strings.TrimSpace(c.email))
	if email == "" {
		return nil, uuid.Nil, fmt.Errorf("--user is required (or %s_USER)", config.Prefix)
	}
	u, err := a.Stores.Users.GetByEmail(ctx, email)
	if err != nil {
		return nil, uuid.Nil, fmt.Errorf("user %s: %w", email, err)
	}
	return a, u.ID, nil
}

// dateArg parses args[i], defaulting to today.
func (c *cli) dateArg(a *app.App, args []string, i int) (civil.Date, error) {
	if len(args) <= i {
		return clock.Today(a.Clock), nil
	}
	return convert.ParseDate(args[i])
}

func (c *cli) printJSON(v any) error {
	enc := json.NewEncoder(c.out)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// readAll reads a file path or stdin when p is "-".
func (c *cli) readAll(p string) ([]byte, error) {
	if p == "-" {
		return io.ReadAll(c.in)
	}
	return os.ReadFile(p)
}
