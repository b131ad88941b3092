package interfaces

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/bobmcallan/folio/internal/models"
)

// PortfolioStore is the portfolio session state consumed by presentation code
type PortfolioStore interface {
	// Activate performs the first-activation load of portfolios until one succeeds
	Activate(ctx context.Context) error

	// LoadPortfolios replaces the portfolio list from the server
	LoadPortfolios(ctx context.Context) error

	// LoadPortfolioDetails replaces holdings and transactions for a portfolio
	LoadPortfolioDetails(ctx context.Context, portfolioID int64) error

	// CreatePortfolio creates a portfolio and appends it to the local list
	CreatePortfolio(ctx context.Context, name string, description *string) (*models.Portfolio, error)

	// ExecuteTrade submits a trade on the selected portfolio and refreshes its details
	ExecuteTrade(ctx context.Context, stockID int64, tradeType models.TradeType, quantity, price, fee decimal.Decimal) (*models.Transaction, error)

	// Select makes a loaded portfolio the selected one
	Select(portfolioID int64) error

	// SetActivePortfolio loads details unless they are already loaded for the id
	SetActivePortfolio(ctx context.Context, portfolioID int64) error

	// Snapshot returns a copy of the current state
	Snapshot() models.PortfolioSnapshot

	// Subscribe registers fn to receive a snapshot after every state change
	Subscribe(fn func(models.PortfolioSnapshot)) (unsubscribe func())
}

// WatchlistStore is the watchlist session state consumed by presentation code
type WatchlistStore interface {
	Activate(ctx context.Context) error
	LoadWatchlists(ctx context.Context) error
	CreateWatchlist(ctx context.Context, name string) (*models.Watchlist, error)
	AddItem(ctx context.Context, watchlistID, stockID int64) error
	RemoveItem(ctx context.Context, watchlistID, stockID int64) error
	Watchlist(watchlistID int64) (models.Watchlist, bool)
	Snapshot() models.WatchlistSnapshot
	Subscribe(fn func(models.WatchlistSnapshot)) (unsubscribe func())
}

// StockDirectory serves stock lookups for search and detail views
type StockDirectory interface {
	Search(ctx context.Context, query string) ([]models.Stock, error)
	Stock(ctx context.Context, symbol string) (*models.Stock, error)
	PriceHistory(ctx context.Context, stockID int64, period models.HistoryPeriod) ([]models.PricePoint, error)
}
