// Package dashboard composes the session stores and the dashboard aggregate
// into the overview shown on the dashboard.
package dashboard

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/shopspring/decimal"

	"github.com/bobmcallan/folio/internal/common"
	"github.com/bobmcallan/folio/internal/interfaces"
	"github.com/bobmcallan/folio/internal/models"
)

// DefaultRecentTransactions is the number of transactions listed in an overview
const DefaultRecentTransactions = 5

// Overview is the dashboard view model. Stats is nil until the aggregate has
// been fetched successfully at least once.
type Overview struct {
	Stats              *models.DashboardStats
	Portfolio          models.PortfolioSnapshot
	Watchlists         models.WatchlistSnapshot
	RecentTransactions []models.Transaction
}

// Service is a presentation consumer: it reads store snapshots and holds the
// last dashboard aggregate, with no business rules of its own.
type Service struct {
	gateway    interfaces.DashboardGateway
	portfolios interfaces.PortfolioStore
	watchlists interfaces.WatchlistStore
	logger     *common.Logger
	recent     int

	mu    sync.RWMutex
	stats *models.DashboardStats
}

// NewService creates a new dashboard service. recent <= 0 uses DefaultRecentTransactions.
func NewService(gateway interfaces.DashboardGateway, portfolios interfaces.PortfolioStore, watchlists interfaces.WatchlistStore, logger *common.Logger, recent int) *Service {
	if logger == nil {
		logger = common.NewSilentLogger()
	}
	if recent <= 0 {
		recent = DefaultRecentTransactions
	}
	return &Service{
		gateway:    gateway,
		portfolios: portfolios,
		watchlists: watchlists,
		logger:     logger,
		recent:     recent,
	}
}

// Stats fetches the dashboard aggregate. On failure the previously fetched
// stats are kept and the error returned.
func (s *Service) Stats(ctx context.Context) (*models.DashboardStats, error) {
	stats, err := s.gateway.GetDashboardStats(ctx)
	if err != nil {
		s.logger.Warn().Err(err).Msg("Failed to fetch dashboard stats")
		return nil, fmt.Errorf("failed to fetch dashboard stats: %w", err)
	}

	s.mu.Lock()
	s.stats = stats
	s.mu.Unlock()
	return stats, nil
}

// LastStats returns the most recently fetched aggregate, or nil
func (s *Service) LastStats() *models.DashboardStats {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.stats
}

// Overview activates both stores, refreshes the aggregate and assembles the
// view. Store and stats failures are joined and returned alongside the
// overview built from whatever state is available.
func (s *Service) Overview(ctx context.Context) (*Overview, error) {
	var errs []error
	if err := s.portfolios.Activate(ctx); err != nil {
		errs = append(errs, err)
	}
	if err := s.watchlists.Activate(ctx); err != nil {
		errs = append(errs, err)
	}
	if _, err := s.Stats(ctx); err != nil {
		errs = append(errs, err)
	}

	snap := s.portfolios.Snapshot()
	if snap.Selected != nil && snap.DetailsPortfolioID != snap.Selected.PortfolioID {
		if err := s.portfolios.SetActivePortfolio(ctx, snap.Selected.PortfolioID); err != nil {
			errs = append(errs, err)
		}
		snap = s.portfolios.Snapshot()
	}

	recent := snap.Transactions
	if len(recent) > s.recent {
		recent = recent[:s.recent]
	}

	overview := &Overview{
		Stats:              s.LastStats(),
		Portfolio:          snap,
		Watchlists:         s.watchlists.Snapshot(),
		RecentTransactions: recent,
	}
	return overview, errors.Join(errs...)
}

// ExecuteTrade submits a trade through the portfolio store and refreshes the
// aggregate once the trade is recorded, even when the post-trade view
// refresh failed.
func (s *Service) ExecuteTrade(ctx context.Context, stockID int64, tradeType models.TradeType, quantity, price, fee decimal.Decimal) (*models.Transaction, error) {
	tx, err := s.portfolios.ExecuteTrade(ctx, stockID, tradeType, quantity, price, fee)
	if tx != nil {
		s.TradeCompleted(ctx)
	}
	return tx, err
}

// TradeCompleted re-fetches the aggregate after a trade. Failures are logged only.
func (s *Service) TradeCompleted(ctx context.Context) {
	if _, err := s.Stats(ctx); err != nil {
		s.logger.Debug().Err(err).Msg("Dashboard stats not refreshed after trade")
	}
}
