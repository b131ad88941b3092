// Package interfaces defines service contracts for Folio
package interfaces

import (
	"context"

	"github.com/bobmcallan/folio/internal/models"
)

// StockGateway provides access to the stock endpoints
type StockGateway interface {
	// SearchStocks finds stocks matching a free-text query
	SearchStocks(ctx context.Context, query string) ([]models.Stock, error)

	// GetStock retrieves a stock by symbol
	GetStock(ctx context.Context, symbol string) (*models.Stock, error)

	// GetPriceHistory retrieves the price history of a stock for a period
	GetPriceHistory(ctx context.Context, stockID int64, period models.HistoryPeriod) ([]models.PricePoint, error)
}

// PortfolioGateway provides access to portfolio, holding and transaction endpoints
type PortfolioGateway interface {
	// ListPortfolios retrieves the portfolios owned by the session user
	ListPortfolios(ctx context.Context) ([]models.Portfolio, error)

	// CreatePortfolio creates a portfolio; description may be nil
	CreatePortfolio(ctx context.Context, name string, description *string) (*models.Portfolio, error)

	// ListHoldings retrieves the holdings of a portfolio
	ListHoldings(ctx context.Context, portfolioID int64) ([]models.Holding, error)

	// CreateTransaction submits a buy or sell
	CreateTransaction(ctx context.Context, req models.TradeRequest) (*models.Transaction, error)

	// ListTransactions retrieves the transactions of a portfolio
	ListTransactions(ctx context.Context, portfolioID int64) ([]models.Transaction, error)
}

// WatchlistGateway provides access to watchlist endpoints
type WatchlistGateway interface {
	ListWatchlists(ctx context.Context) ([]models.Watchlist, error)
	CreateWatchlist(ctx context.Context, name string) (*models.Watchlist, error)
	AddWatchlistItem(ctx context.Context, watchlistID, stockID int64) error
	RemoveWatchlistItem(ctx context.Context, watchlistID, stockID int64) error
}

// DashboardGateway provides access to the dashboard aggregate
type DashboardGateway interface {
	GetDashboardStats(ctx context.Context) (*models.DashboardStats, error)
}

// Gateway is the full remote data contract
type Gateway interface {
	StockGateway
	PortfolioGateway
	WatchlistGateway
	DashboardGateway
}
