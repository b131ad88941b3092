// Package watchlist provides the watchlist session store
package watchlist

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/bobmcallan/folio/internal/common"
	"github.com/bobmcallan/folio/internal/interfaces"
	"github.com/bobmcallan/folio/internal/models"
)

var (
	// ErrEmptyName is returned by CreateWatchlist before any network call
	ErrEmptyName = errors.New("watchlist name is required")

	// ErrSuperseded means a later LoadWatchlists started before this one finished
	ErrSuperseded = errors.New("superseded by a later request")
)

// Compile-time interface check
var _ interfaces.WatchlistStore = (*Store)(nil)

// Store implements WatchlistStore.
//
// Membership changes are sent to the server but never applied to the local
// list; callers reload to observe them.
type Store struct {
	gateway interfaces.WatchlistGateway
	logger  *common.Logger

	mu         sync.RWMutex
	watchlists []models.Watchlist
	status     models.Status
	generation uint64

	notifyMu    sync.Mutex
	subscribers map[int]func(models.WatchlistSnapshot)
	nextSubID   int

	activateMu sync.Mutex
	activated  bool
}

// NewStore creates a new watchlist store in the idle state
func NewStore(gateway interfaces.WatchlistGateway, logger *common.Logger) *Store {
	if logger == nil {
		logger = common.NewSilentLogger()
	}
	return &Store{
		gateway:     gateway,
		logger:      logger,
		watchlists:  []models.Watchlist{},
		status:      models.Status{State: models.StatusIdle},
		subscribers: make(map[int]func(models.WatchlistSnapshot)),
	}
}

// Activate loads watchlists until one load has succeeded
func (s *Store) Activate(ctx context.Context) error {
	s.activateMu.Lock()
	defer s.activateMu.Unlock()
	if s.activated {
		return nil
	}
	if err := s.LoadWatchlists(ctx); err != nil {
		return err
	}
	s.activated = true
	return nil
}

// LoadWatchlists replaces the local list. On failure the previous list is kept.
func (s *Store) LoadWatchlists(ctx context.Context) error {
	var gen uint64
	s.update(func() {
		s.generation++
		gen = s.generation
		s.status = models.Loading()
	})

	list, err := s.gateway.ListWatchlists(ctx)

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
		s.watchlists = list
		s.status = models.Ready()
	})

	if !applied {
		return ErrSuperseded
	}
	if err != nil {
		s.logger.Warn().Err(err).Msg("Failed to load watchlists")
		return fmt.Errorf("failed to load watchlists: %w", err)
	}
	s.logger.Debug().Int("count", len(list)).Msg("Watchlists loaded")
	return nil
}

// CreateWatchlist creates a watchlist and appends it to the local list
func (s *Store) CreateWatchlist(ctx context.Context, name string) (*models.Watchlist, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		s.update(func() { s.status = models.Failed(ErrEmptyName.Error()) })
		return nil, ErrEmptyName
	}

	s.update(func() { s.status = models.Loading() })

	wl, err := s.gateway.CreateWatchlist(ctx, name)
	if err != nil {
		s.logger.Warn().Err(err).Str("name", name).Msg("Failed to create watchlist")
		s.update(func() { s.status = models.Failed(err.Error()) })
		return nil, fmt.Errorf("failed to create watchlist: %w", err)
	}

	created := wl.Clone()
	s.update(func() {
		s.watchlists = append(s.watchlists, created.Clone())
		s.status = models.Ready()
	})

	s.logger.Info().Int64("watchlist_id", created.WatchlistID).Str("name", created.Name).Msg("Watchlist created")
	return &created, nil
}

// AddItem adds a stock to a watchlist on the server
func (s *Store) AddItem(ctx context.Context, watchlistID, stockID int64) error {
	return s.mutateItem(ctx, "add", watchlistID, stockID, s.gateway.AddWatchlistItem)
}

// RemoveItem removes a stock from a watchlist on the server
func (s *Store) RemoveItem(ctx context.Context, watchlistID, stockID int64) error {
	return s.mutateItem(ctx, "remove", watchlistID, stockID, s.gateway.RemoveWatchlistItem)
}

func (s *Store) mutateItem(ctx context.Context, action string, watchlistID, stockID int64, call func(context.Context, int64, int64) error) error {
	s.update(func() { s.status = models.Loading() })

	if err := call(ctx, watchlistID, stockID); err != nil {
		s.logger.Warn().Err(err).Str("action", action).Int64("watchlist_id", watchlistID).Int64("stock_id", stockID).Msg("Watchlist item change failed")
		s.update(func() { s.status = models.Failed(err.Error()) })
		return fmt.Errorf("failed to %s watchlist item: %w", action, err)
	}

	s.update(func() { s.status = models.Ready() })
	s.logger.Info().Str("action", action).Int64("watchlist_id", watchlistID).Int64("stock_id", stockID).Msg("Watchlist item changed")
	return nil
}

// Watchlist returns a copy of a loaded watchlist
func (s *Store) Watchlist(watchlistID int64) (models.Watchlist, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, wl := range s.watchlists {
		if wl.WatchlistID == watchlistID {
			return wl.Clone(), true
		}
	}
	return models.Watchlist{}, false
}

// Snapshot returns a deep copy of the current state
func (s *Store) Snapshot() models.WatchlistSnapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snapshotLocked()
}

// Subscribe registers fn to receive a snapshot after every state change.
// fn must not call store operations.
func (s *Store) Subscribe(fn func(models.WatchlistSnapshot)) func() {
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

func (s *Store) update(fn func()) {
	s.notifyMu.Lock()
	defer s.notifyMu.Unlock()

	s.mu.Lock()
	fn()
	var snap models.WatchlistSnapshot
	if len(s.subscribers) > 0 {
		snap = s.snapshotLocked()
	}
	s.mu.Unlock()

	for _, sub := range s.subscribers {
		sub(snap)
	}
}

func (s *Store) snapshotLocked() models.WatchlistSnapshot {
	list := make([]models.Watchlist, len(s.watchlists))
	for i, wl := range s.watchlists {
		list[i] = wl.Clone()
	}
	return models.WatchlistSnapshot{Watchlists: list, Status: s.status}
}
