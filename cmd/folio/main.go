package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"

	"github.com/spf13/cobra"

	"github.com/bobmcallan/folio/internal/app"
	"github.com/bobmcallan/folio/internal/common"
)

// cli carries the flags and the lazily built App shared by all commands
type cli struct {
	out io.Writer
	err io.Writer

	configPath  string
	apiURL      string
	logLevel    string
	portfolioID int64

	app *app.App
}

func newRootCmd(out, errOut io.Writer) *cobra.Command {
	c := &cli{out: out, err: errOut}

	root := &cobra.Command{
		Use:           "folio",
		Short:         "Track portfolios, trades and watchlists from the terminal",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if cmd.Name() == "version" || cmd.Name() == "help" {
				return nil
			}
			return c.init()
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			common.PrintBanner(c.err, c.app.Config, c.app.Session)
			return cmd.Help()
		},
	}
	root.SetOut(out)
	root.SetErr(errOut)

	flags := root.PersistentFlags()
	flags.StringVar(&c.configPath, "config", "", "config file (default: $FOLIO_CONFIG, folio.toml beside the binary, config/folio.toml)")
	flags.StringVar(&c.apiURL, "api", "", "override the API base URL")
	flags.StringVar(&c.logLevel, "log-level", "", "override the log level (trace, debug, info, warn, error)")
	flags.Int64Var(&c.portfolioID, "portfolio", 0, "portfolio ID to operate on (default: first portfolio)")

	root.AddCommand(
		c.versionCmd(),
		c.portfoliosCmd(),
		c.portfolioCmd(),
		c.holdingsCmd(),
		c.transactionsCmd(),
		c.tradeCmd(),
		c.searchCmd(),
		c.stockCmd(),
		c.historyCmd(),
		c.watchlistsCmd(),
		c.watchlistCmd(),
		c.dashboardCmd(),
	)
	return root
}

func (c *cli) init() error {
	config, err := app.LoadConfig(c.configPath)
	if err != nil {
		return err
	}
	if c.apiURL != "" {
		config.API.BaseURL = c.apiURL
	}
	if c.logLevel != "" {
		config.Logging.Level = c.logLevel
	}
	c.app = app.New(config, common.NewLoggerFromConfig(config.Logging))
	return nil
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	err := newRootCmd(os.Stdout, os.Stderr).ExecuteContext(ctx)
	stop()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
