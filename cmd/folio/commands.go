package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"github.com/bobmcallan/folio/internal/common"
	"github.com/bobmcallan/folio/internal/models"
	"github.com/bobmcallan/folio/internal/services/dashboard"
	"github.com/bobmcallan/folio/internal/services/portfolio"
)

func (c *cli) versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(c.out, "folio %s\n", common.GetFullVersion())
		},
	}
}

// --- Portfolios ---

// selectPortfolio loads the portfolio list and selects the --portfolio flag
// target, or keeps the default selection. With loadDetails the selected
// portfolio's holdings and transactions are loaded too.
func (c *cli) selectPortfolio(ctx context.Context, loadDetails bool) (*models.Portfolio, error) {
	store := c.app.Portfolios
	if err := store.Activate(ctx); err != nil {
		return nil, err
	}
	if c.portfolioID != 0 {
		if err := store.Select(c.portfolioID); err != nil {
			return nil, err
		}
	}

	selected := store.Snapshot().Selected
	if selected == nil {
		return nil, portfolio.ErrNoPortfolioSelected
	}
	if loadDetails {
		if err := store.SetActivePortfolio(ctx, selected.PortfolioID); err != nil {
			return nil, err
		}
	}
	return selected, nil
}

func (c *cli) portfoliosCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "portfolios",
		Short: "List portfolios",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := c.app.Portfolios.Activate(cmd.Context()); err != nil {
				return err
			}
			if c.portfolioID != 0 {
				if err := c.app.Portfolios.Select(c.portfolioID); err != nil {
					return err
				}
			}
			fmt.Fprint(c.out, formatPortfolios(c.app.Portfolios.Snapshot()))
			return nil
		},
	}
}

func (c *cli) portfolioCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "portfolio",
		Short: "Manage portfolios",
	}

	var description string
	create := &cobra.Command{
		Use:   "create NAME",
		Short: "Create a portfolio",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var desc *string
			if cmd.Flags().Changed("description") {
				desc = &description
			}
			p, err := c.app.Portfolios.CreatePortfolio(cmd.Context(), args[0], desc)
			if err != nil {
				return err
			}
			fmt.Fprintf(c.out, "Created portfolio %q (#%d)\n", p.Name, p.PortfolioID)
			return nil
		},
	}
	create.Flags().StringVar(&description, "description", "", "portfolio description")

	cmd.AddCommand(create)
	return cmd
}

func (c *cli) holdingsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "holdings",
		Short: "Show holdings of the selected portfolio",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := c.selectPortfolio(cmd.Context(), true)
			if err != nil {
				return err
			}
			fmt.Fprintf(c.out, "## %s\n\n", p.Name)
			fmt.Fprint(c.out, formatHoldings(c.app.Portfolios.Snapshot().Holdings))
			return nil
		},
	}
}

func (c *cli) transactionsCmd() *cobra.Command {
	var limit int
	cmd := &cobra.Command{
		Use:   "transactions",
		Short: "Show transactions of the selected portfolio, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := c.selectPortfolio(cmd.Context(), true)
			if err != nil {
				return err
			}
			txs := c.app.Portfolios.Snapshot().Transactions
			if limit > 0 && len(txs) > limit {
				txs = txs[:limit]
			}
			fmt.Fprintf(c.out, "## %s\n\n", p.Name)
			fmt.Fprint(c.out, formatTransactions(txs))
			return nil
		},
	}
	cmd.Flags().IntVar(&limit, "limit", 0, "show at most this many transactions")
	return cmd
}

// --- Trading ---

func (c *cli) tradeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "trade",
		Short: "Buy or sell a stock in the selected portfolio",
	}
	cmd.AddCommand(c.tradeSideCmd(models.TradeBuy), c.tradeSideCmd(models.TradeSell))
	return cmd
}

func (c *cli) tradeSideCmd(tradeType models.TradeType) *cobra.Command {
	var feeArg string
	name := strings.ToLower(string(tradeType))

	cmd := &cobra.Command{
		Use:   name + " STOCK QUANTITY [PRICE]",
		Short: fmt.Sprintf("Record a %s; PRICE defaults to the current quote", name),
		Args:  cobra.RangeArgs(2, 3),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			stock, err := c.resolveStock(ctx, args[0])
			if err != nil {
				return err
			}
			quantity, err := parseDecimal("quantity", args[1])
			if err != nil {
				return err
			}
			var price decimal.Decimal
			if len(args) == 3 {
				if price, err = parseDecimal("price", args[2]); err != nil {
					return err
				}
			} else {
				if !stock.HasQuote() {
					return fmt.Errorf("%s has no current quote; pass PRICE explicitly", stock.Symbol)
				}
				price = stock.CurrentPrice.Decimal
			}
			fee, err := parseDecimal("fee", feeArg)
			if err != nil {
				return err
			}

			p, err := c.selectPortfolio(ctx, false)
			if err != nil {
				return err
			}

			tx, err := c.app.Dashboard.ExecuteTrade(ctx, stock.StockID, tradeType, quantity, price, fee)
			if tx == nil {
				return err
			}

			fmt.Fprintf(c.out, "Recorded %s %s %s @ %s in %s (total %s)\n",
				tx.Type, tx.Quantity.String(), stock.Symbol,
				formatMoney(tx.Price, stock.Currency), p.Name, formatMoney(tx.TotalAmount, stock.Currency))
			if errors.Is(err, portfolio.ErrStaleView) {
				fmt.Fprintf(c.err, "Warning: %v\n", err)
				return nil
			}
			fmt.Fprint(c.out, "\n"+formatHoldings(c.app.Portfolios.Snapshot().Holdings))
			return nil
		},
	}
	cmd.Flags().StringVar(&feeArg, "fee", "0", "brokerage fee")
	return cmd
}

func parseDecimal(field, s string) (decimal.Decimal, error) {
	d, err := decimal.NewFromString(strings.TrimSpace(s))
	if err != nil {
		return decimal.Zero, fmt.Errorf("invalid %s %q", field, s)
	}
	return d, nil
}

// resolveStock accepts a numeric stock ID or a symbol. A bare ID is looked
// up through search so the symbol and quote are available for display.
func (c *cli) resolveStock(ctx context.Context, ref string) (*models.Stock, error) {
	id, err := strconv.ParseInt(ref, 10, 64)
	if err != nil {
		return c.app.Stocks.Stock(ctx, ref)
	}
	stocks, err := c.app.Stocks.Search(ctx, ref)
	if err != nil {
		return nil, err
	}
	for i := range stocks {
		if stocks[i].StockID == id {
			return &stocks[i], nil
		}
	}
	return &models.Stock{StockID: id, Symbol: "#" + ref}, nil
}

// --- Market ---

func (c *cli) searchCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "search QUERY",
		Short: "Search stocks by symbol or company name",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			stocks, err := c.app.Stocks.Search(cmd.Context(), strings.Join(args, " "))
			if err != nil {
				return err
			}
			fmt.Fprint(c.out, formatStocks(stocks))
			return nil
		},
	}
}

func (c *cli) stockCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "stock SYMBOL",
		Short: "Show stock detail",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			stock, err := c.app.Stocks.Stock(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			fmt.Fprint(c.out, formatStock(stock))
			return nil
		},
	}
}

func (c *cli) historyCmd() *cobra.Command {
	var period, pngPath string
	cmd := &cobra.Command{
		Use:   "history SYMBOL",
		Short: "Show a stock's price history",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			p := models.HistoryPeriod(strings.ToLower(period))

			stock, err := c.app.Stocks.Stock(ctx, args[0])
			if err != nil {
				return err
			}
			points, err := c.app.Stocks.PriceHistory(ctx, stock.StockID, p)
			if err != nil {
				return err
			}

			if pngPath == "" {
				fmt.Fprint(c.out, formatPriceHistory(stock, points))
				return nil
			}

			png, err := dashboard.RenderPriceChart(stock.Symbol, p, points)
			if err != nil {
				return err
			}
			if err := os.WriteFile(pngPath, png, 0o644); err != nil {
				return fmt.Errorf("failed to write chart: %w", err)
			}
			fmt.Fprintf(c.out, "Wrote %d price points to %s\n", len(points), pngPath)
			return nil
		},
	}
	cmd.Flags().StringVar(&period, "period", string(models.Period1M), "1d, 1w, 1m, 3m, 6m, 1y, 5y or max")
	cmd.Flags().StringVar(&pngPath, "png", "", "write a PNG chart to this file instead of printing a table")
	return cmd
}

// --- Watchlists ---

func (c *cli) watchlistsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "watchlists",
		Short: "List watchlists and their stocks",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := c.app.Watchlists.Activate(cmd.Context()); err != nil {
				return err
			}
			fmt.Fprint(c.out, formatWatchlists(c.app.Watchlists.Snapshot()))
			return nil
		},
	}
}

func (c *cli) watchlistCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "watchlist",
		Short: "Manage watchlists",
	}

	create := &cobra.Command{
		Use:   "create NAME",
		Short: "Create a watchlist",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			wl, err := c.app.Watchlists.CreateWatchlist(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			fmt.Fprintf(c.out, "Created watchlist %q (#%d)\n", wl.Name, wl.WatchlistID)
			return nil
		},
	}

	add := &cobra.Command{
		Use:   "add WATCHLIST_ID STOCK",
		Short: "Add a stock to a watchlist",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.changeWatchlistItem(cmd.Context(), args, c.app.Watchlists.AddItem)
		},
	}

	remove := &cobra.Command{
		Use:   "remove WATCHLIST_ID STOCK",
		Short: "Remove a stock from a watchlist",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.changeWatchlistItem(cmd.Context(), args, c.app.Watchlists.RemoveItem)
		},
	}

	cmd.AddCommand(create, add, remove)
	return cmd
}

// changeWatchlistItem applies an item change then reloads, since the store
// does not apply membership changes locally.
func (c *cli) changeWatchlistItem(ctx context.Context, args []string, change func(context.Context, int64, int64) error) error {
	watchlistID, err := strconv.ParseInt(args[0], 10, 64)
	if err != nil {
		return fmt.Errorf("invalid watchlist ID %q", args[0])
	}
	stock, err := c.resolveStock(ctx, args[1])
	if err != nil {
		return err
	}

	if err := change(ctx, watchlistID, stock.StockID); err != nil {
		return err
	}
	if err := c.app.Watchlists.LoadWatchlists(ctx); err != nil {
		return err
	}

	wl, ok := c.app.Watchlists.Watchlist(watchlistID)
	if !ok {
		return fmt.Errorf("watchlist %d not found after reload", watchlistID)
	}
	fmt.Fprint(c.out, formatWatchlist(wl))
	return nil
}

// --- Dashboard ---

func (c *cli) dashboardCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "dashboard",
		Short: "Show the dashboard overview",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			common.PrintBanner(c.err, c.app.Config, c.app.Session)

			ctx := cmd.Context()
			if c.portfolioID != 0 {
				if _, err := c.selectPortfolio(ctx, false); err != nil {
					return err
				}
			}

			ov, err := c.app.Dashboard.Overview(ctx)
			if ov != nil {
				fmt.Fprint(c.out, formatOverview(ov))
			}
			if err != nil {
				fmt.Fprintf(c.err, "Warning: %v\n", err)
			}
			return nil
		},
	}
}
