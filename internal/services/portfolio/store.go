// Package portfolio provides the portfolio session store: the in-memory view
// of the user's portfolios, the selected portfolio's holdings and
// transactions, and the status of the most recent operation.
package portfolio

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"

	"github.com/bobmcallan/folio/internal/common"
	"github.com/bobmcallan/folio/internal/interfaces"
	"github.com/bobmcallan/folio/internal/models"
)

var (
	// ErrNoPortfolioSelected is returned by ExecuteTrade before any network call
	ErrNoPortfolioSelected = errors.New("no portfolio selected")

	// ErrInvalidTrade is returned for trades that cannot be submitted
	ErrInvalidTrade = errors.New("invalid trade")

	// ErrPortfolioNotFound is returned by Select for an id not in the loaded list
	ErrPortfolioNotFound = errors.New("portfolio not found")

	// ErrStaleView means the trade was recorded but the post-trade refresh
	// failed; the transaction is returned alongside it.
	ErrStaleView = errors.New("trade recorded but portfolio view may be stale")

	// ErrSuperseded means a later details load or trade was issued while this
	// load was in flight, so its result was discarded.
	ErrSuperseded = errors.New("superseded by a later request")
)

// Compile-time interface check
var _ interfaces.PortfolioStore = (*Store)(nil)

// Store implements PortfolioStore.
//
// State is guarded by mu but operations do not exclude each other. Details
// loads are fenced: each one takes the next generation number and its
// result is applied only while that number is still the latest, so the most
// recently started load wins regardless of completion order. A successful
// trade submission also advances the generation.
type Store struct {
	gateway interfaces.PortfolioGateway
	logger  *common.Logger

	mu           sync.RWMutex
	portfolios   []models.Portfolio
	selected     *models.Portfolio
	holdings     []models.Holding
	transactions []models.Transaction
	detailsID    int64
	activeID     int64
	status       models.Status
	generation   uint64

	// notifyMu serialises state changes with their notifications so
	// subscribers see snapshots in the order they were produced.
	notifyMu    sync.Mutex
	subscribers map[int]func(models.PortfolioSnapshot)
	nextSubID   int

	activateMu sync.Mutex
	activated  bool
}

// NewStore creates a new portfolio store in the idle state
func NewStore(gateway interfaces.PortfolioGateway, logger *common.Logger) *Store {
	if logger == nil {
		logger = common.NewSilentLogger()
	}
	return &Store{
		gateway:      gateway,
		logger:       logger,
		portfolios:   []models.Portfolio{},
		holdings:     []models.Holding{},
		transactions: []models.Transaction{},
		status:       models.Status{State: models.StatusIdle},
		subscribers:  make(map[int]func(models.PortfolioSnapshot)),
	}
}

// Activate loads portfolios on first call. Later calls are no-ops once a
// load has succeeded; after a failure the next call loads again.
func (s *Store) Activate(ctx context.Context) error {
	s.activateMu.Lock()
	defer s.activateMu.Unlock()
	if s.activated {
		return nil
	}
	if err := s.LoadPortfolios(ctx); err != nil {
		return err
	}
	s.activated = true
	return nil
}

// LoadPortfolios replaces the portfolio list. When nothing is selected the
// first returned portfolio becomes selected; an existing selection is kept
// and refreshed with the fetched record of the same id. On failure the
// previous list is left untouched.
func (s *Store) LoadPortfolios(ctx context.Context) error {
	s.update(func() { s.status = models.Loading() })

	list, err := s.gateway.ListPortfolios(ctx)
	if err != nil {
		s.logger.Warn().Err(err).Msg("Failed to load portfolios")
		s.update(func() { s.status = models.Failed(err.Error()) })
		return fmt.Errorf("failed to load portfolios: %w", err)
	}

	s.update(func() {
		s.portfolios = list
		if s.selected == nil {
			if len(list) > 0 {
				s.selected = list[0].Clone()
			}
		} else if fresh := findPortfolio(list, s.selected.PortfolioID); fresh != nil {
			s.selected = fresh.Clone()
		}
		s.status = models.Ready()
	})

	s.logger.Debug().Int("count", len(list)).Msg("Portfolios loaded")
	return nil
}

// LoadPortfolioDetails fetches holdings and transactions concurrently and
// replaces both only when both succeed. If either fails neither collection
// changes. Returns ErrSuperseded when a later load or trade was issued
// before this one finished.
func (s *Store) LoadPortfolioDetails(ctx context.Context, portfolioID int64) error {
	var gen uint64
	s.update(func() {
		s.generation++
		gen = s.generation
		s.status = models.Loading()
	})

	var (
		holdings     []models.Holding
		transactions []models.Transaction
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		h, err := s.gateway.ListHoldings(gctx, portfolioID)
		holdings = h
		return err
	})
	g.Go(func() error {
		t, err := s.gateway.ListTransactions(gctx, portfolioID)
		transactions = t
		return err
	})
	err := g.Wait()

	applied := false
	s.update(func() {
		if gen != s.generation {
			return
		}
		applied = true
		if err != nil {
			s.status = models.Failed(err.Error())
			return
		}
		if holdings == nil {
			holdings = []models.Holding{}
		}
		if transactions == nil {
			transactions = []models.Transaction{}
		}
		s.holdings = holdings
		s.transactions = transactions
		s.detailsID = portfolioID
		s.status = models.Ready()
	})

	if !applied {
		s.logger.Debug().Int64("portfolio_id", portfolioID).Msg("Discarded superseded portfolio details")
		return ErrSuperseded
	}
	if err != nil {
		s.logger.Warn().Err(err).Int64("portfolio_id", portfolioID).Msg("Failed to load portfolio details")
		return fmt.Errorf("failed to load portfolio details: %w", err)
	}
	return nil
}

// CreatePortfolio creates a portfolio and appends it to the end of the local
// list without reloading or changing the selection.
func (s *Store) CreatePortfolio(ctx context.Context, name string, description *string) (*models.Portfolio, error) {
	s.update(func() { s.status = models.Loading() })

	p, err := s.gateway.CreatePortfolio(ctx, name, description)
	if err != nil {
		s.logger.Warn().Err(err).Str("name", name).Msg("Failed to create portfolio")
		s.update(func() { s.status = models.Failed(err.Error()) })
		return nil, fmt.Errorf("failed to create portfolio: %w", err)
	}

	s.update(func() {
		s.portfolios = append(s.portfolios, *p.Clone())
		s.status = models.Ready()
	})

	s.logger.Info().Int64("portfolio_id", p.PortfolioID).Str("name", p.Name).Msg("Portfolio created")
	return p.Clone(), nil
}

// ExecuteTrade submits a trade against the selected portfolio. On success
// the transaction is prepended locally when the loaded details belong to
// that portfolio, then its details are reloaded before returning. If that reload fails the
// transaction is still returned, with an error wrapping ErrStaleView.
func (s *Store) ExecuteTrade(ctx context.Context, stockID int64, tradeType models.TradeType, quantity, price, fee decimal.Decimal) (*models.Transaction, error) {
	s.mu.RLock()
	selected := s.selected.Clone()
	s.mu.RUnlock()

	if selected == nil {
		s.update(func() { s.status = models.Failed(ErrNoPortfolioSelected.Error()) })
		return nil, ErrNoPortfolioSelected
	}
	if err := validateTrade(tradeType, quantity, price, fee); err != nil {
		s.update(func() { s.status = models.Failed(err.Error()) })
		return nil, err
	}

	s.update(func() { s.status = models.Loading() })

	tx, err := s.gateway.CreateTransaction(ctx, models.TradeRequest{
		PortfolioID: selected.PortfolioID,
		StockID:     stockID,
		Type:        tradeType,
		Quantity:    quantity,
		Price:       price,
		Fee:         fee,
	})
	if err != nil {
		s.logger.Warn().Err(err).Int64("portfolio_id", selected.PortfolioID).Int64("stock_id", stockID).Msg("Trade failed")
		s.update(func() { s.status = models.Failed(err.Error()) })
		return nil, fmt.Errorf("failed to execute trade: %w", err)
	}

	s.update(func() {
		s.generation++
		if s.detailsID == selected.PortfolioID {
			s.transactions = append([]models.Transaction{*tx}, s.transactions...)
		}
	})

	s.logger.Info().
		Int64("portfolio_id", selected.PortfolioID).
		Int64("transaction_id", tx.TransactionID).
		Str("type", string(tradeType)).
		Str("quantity", quantity.String()).
		Str("price", price.String()).
		Msg("Trade executed")

	result := *tx
	if err := s.LoadPortfolioDetails(ctx, selected.PortfolioID); err != nil && !errors.Is(err, ErrSuperseded) {
		return &result, fmt.Errorf("%w: %w", ErrStaleView, err)
	}
	return &result, nil
}

// Select makes a loaded portfolio the selected one.
func (s *Store) Select(portfolioID int64) error {
	found := false
	s.update(func() {
		if p := findPortfolio(s.portfolios, portfolioID); p != nil {
			s.selected = p.Clone()
			found = true
		}
	})
	if !found {
		return fmt.Errorf("%w: %d", ErrPortfolioNotFound, portfolioID)
	}
	return nil
}

// SetActivePortfolio records the target portfolio and loads its details
// unless they are already loaded for that id. Zero clears the target.
func (s *Store) SetActivePortfolio(ctx context.Context, portfolioID int64) error {
	s.mu.Lock()
	loaded := s.activeID == portfolioID && s.detailsID == portfolioID
	s.activeID = portfolioID
	s.mu.Unlock()

	if loaded || portfolioID == 0 {
		return nil
	}
	return s.LoadPortfolioDetails(ctx, portfolioID)
}

// Snapshot returns a deep copy of the current state.
func (s *Store) Snapshot() models.PortfolioSnapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snapshotLocked()
}

// Subscribe registers fn to receive a snapshot after every state change.
// fn runs synchronously on the goroutine that changed the state and must
// not call store operations itself.
func (s *Store) Subscribe(fn func(models.PortfolioSnapshot)) func() {
	s.notifyMu.Lock()
	id := s.nextSubID
	s.nextSubID++
	s.subscribers[id] = fn
	s.notifyMu.Unlock()

	return func() {
		s.notifyMu.Lock()
		delete(s.subscribers, id)
		s.notifyMu.Unlock()
	}
}

// update applies fn under the state lock and notifies subscribers.
func (s *Store) update(fn func()) {
	s.notifyMu.Lock()
	defer s.notifyMu.Unlock()

	s.mu.Lock()
	fn()
	var snap models.PortfolioSnapshot
	if len(s.subscribers) > 0 {
		snap = s.snapshotLocked()
	}
	s.mu.Unlock()

	for _, sub := range s.subscribers {
		sub(snap)
	}
}

func (s *Store) snapshotLocked() models.PortfolioSnapshot {
	portfolios := make([]models.Portfolio, len(s.portfolios))
	for i := range s.portfolios {
		portfolios[i] = *s.portfolios[i].Clone()
	}
	return models.PortfolioSnapshot{
		Portfolios:         portfolios,
		Selected:           s.selected.Clone(),
		Holdings:           append([]models.Holding{}, s.holdings...),
		Transactions:       append([]models.Transaction{}, s.transactions...),
		DetailsPortfolioID: s.detailsID,
		ActivePortfolioID:  s.activeID,
		Status:             s.status,
	}
}

func findPortfolio(list []models.Portfolio, id int64) *models.Portfolio {
	for i := range list {
		if list[i].PortfolioID == id {
			return &list[i]
		}
	}
	return nil
}

func validateTrade(tradeType models.TradeType, quantity, price, fee decimal.Decimal) error {
	switch {
	case !tradeType.Valid():
		return fmt.Errorf("%w: type must be BUY or SELL, got %q", ErrInvalidTrade, tradeType)
	case !quantity.IsPositive():
		return fmt.Errorf("%w: quantity must be positive", ErrInvalidTrade)
	case price.IsNegative():
		return fmt.Errorf("%w: price must not be negative", ErrInvalidTrade)
	case fee.IsNegative():
		return fmt.Errorf("%w: fee must not be negative", ErrInvalidTrade)
	}
	return nil
}
