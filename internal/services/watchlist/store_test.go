package watchlist

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bobmcallan/folio/internal/common"
	"github.com/bobmcallan/folio/internal/models"
)

type mockWatchlistGateway struct {
	mu    sync.Mutex
	calls int

	list   func() ([]models.Watchlist, error)
	create func(name string) (*models.Watchlist, error)
	add    func(watchlistID, stockID int64) error
	remove func(watchlistID, stockID int64) error
}

func (m *mockWatchlistGateway) count() {
	m.mu.Lock()
	m.calls++
	m.mu.Unlock()
}

func (m *mockWatchlistGateway) callCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls
}

func (m *mockWatchlistGateway) ListWatchlists(_ context.Context) ([]models.Watchlist, error) {
	m.count()
	return m.list()
}

func (m *mockWatchlistGateway) CreateWatchlist(_ context.Context, name string) (*models.Watchlist, error) {
	m.count()
	return m.create(name)
}

func (m *mockWatchlistGateway) AddWatchlistItem(_ context.Context, watchlistID, stockID int64) error {
	m.count()
	return m.add(watchlistID, stockID)
}

func (m *mockWatchlistGateway) RemoveWatchlistItem(_ context.Context, watchlistID, stockID int64) error {
	m.count()
	return m.remove(watchlistID, stockID)
}

func techWatchlist() models.Watchlist {
	return models.Watchlist{
		WatchlistID: 4,
		UserID:      1,
		Name:        "Tech",
		Items: []models.WatchlistItem{
			{ItemID: 1, WatchlistID: 4, StockID: 7, Stock: &models.Stock{StockID: 7, Symbol: "AAPL"}},
		},
	}
}

func newTestStore(gw *mockWatchlistGateway) *Store {
	if gw.list == nil {
		gw.list = func() ([]models.Watchlist, error) { return []models.Watchlist{techWatchlist()}, nil }
	}
	return NewStore(gw, common.NewSilentLogger())
}

func TestLoadWatchlists(t *testing.T) {
	s := newTestStore(&mockWatchlistGateway{})
	assert.Equal(t, models.StatusIdle, s.Snapshot().Status.State)

	require.NoError(t, s.LoadWatchlists(context.Background()))

	snap := s.Snapshot()
	require.Len(t, snap.Watchlists, 1)
	assert.Equal(t, "Tech", snap.Watchlists[0].Name)
	assert.Equal(t, models.Ready(), snap.Status)
}

func TestLoadWatchlists_FailureKeepsPreviousList(t *testing.T) {
	gw := &mockWatchlistGateway{}
	s := newTestStore(gw)
	require.NoError(t, s.LoadWatchlists(context.Background()))

	gw.list = func() ([]models.Watchlist, error) { return nil, errors.New("service unavailable") }
	require.Error(t, s.LoadWatchlists(context.Background()))

	snap := s.Snapshot()
	assert.Len(t, snap.Watchlists, 1)
	assert.Equal(t, models.Failed("service unavailable"), snap.Status)
}

func TestLoadWatchlists_LaterStartWins(t *testing.T) {
	release := make(chan struct{})
	first := true
	var mu sync.Mutex
	gw := &mockWatchlistGateway{list: func() ([]models.Watchlist, error) {
		mu.Lock()
		slow := first
		first = false
		mu.Unlock()
		if slow {
			<-release
			return []models.Watchlist{}, nil
		}
		return []models.Watchlist{techWatchlist()}, nil
	}}
	s := newTestStore(gw)

	done := make(chan error, 1)
	go func() { done <- s.LoadWatchlists(context.Background()) }()
	require.Eventually(t, func() bool { return gw.callCount() == 1 }, time.Second, 5*time.Millisecond)

	require.NoError(t, s.LoadWatchlists(context.Background()))
	close(release)

	assert.ErrorIs(t, <-done, ErrSuperseded)
	assert.Len(t, s.Snapshot().Watchlists, 1)
}

func TestCreateWatchlist_Appends(t *testing.T) {
	gw := &mockWatchlistGateway{create: func(name string) (*models.Watchlist, error) {
		return &models.Watchlist{WatchlistID: 9, Name: name, Items: []models.WatchlistItem{}}, nil
	}}
	s := newTestStore(gw)
	require.NoError(t, s.LoadWatchlists(context.Background()))

	wl, err := s.CreateWatchlist(context.Background(), "  Dividends ")
	require.NoError(t, err)
	assert.Equal(t, "Dividends", wl.Name)

	snap := s.Snapshot()
	require.Len(t, snap.Watchlists, 2)
	assert.Equal(t, int64(9), snap.Watchlists[1].WatchlistID)
}

func TestCreateWatchlist_EmptyNameMakesNoCall(t *testing.T) {
	gw := &mockWatchlistGateway{}
	s := newTestStore(gw)

	_, err := s.CreateWatchlist(context.Background(), "   ")
	assert.ErrorIs(t, err, ErrEmptyName)
	assert.Equal(t, 0, gw.callCount())
	assert.True(t, s.Snapshot().Status.IsError())
}

func TestItemChanges_AreNotAppliedLocally(t *testing.T) {
	var added, removed []int64
	gw := &mockWatchlistGateway{
		add:    func(_, stockID int64) error { added = append(added, stockID); return nil },
		remove: func(_, stockID int64) error { removed = append(removed, stockID); return nil },
	}
	s := newTestStore(gw)
	require.NoError(t, s.LoadWatchlists(context.Background()))

	require.NoError(t, s.AddItem(context.Background(), 4, 11))
	require.NoError(t, s.RemoveItem(context.Background(), 4, 7))

	assert.Equal(t, []int64{11}, added)
	assert.Equal(t, []int64{7}, removed)

	wl, ok := s.Watchlist(4)
	require.True(t, ok)
	assert.True(t, wl.Contains(7), "removal not visible until reload")
	assert.False(t, wl.Contains(11), "addition not visible until reload")
	assert.True(t, s.Snapshot().Status.IsReady())
}

func TestAddItem_FailureSetsStatus(t *testing.T) {
	gw := &mockWatchlistGateway{add: func(_, _ int64) error { return errors.New("Stock already in watchlist") }}
	s := newTestStore(gw)

	err := s.AddItem(context.Background(), 4, 7)
	require.Error(t, err)
	assert.Equal(t, "Stock already in watchlist", s.Snapshot().Status.Message)
}

func TestRemoveItem_FailureKeepsItem(t *testing.T) {
	gw := &mockWatchlistGateway{remove: func(_, _ int64) error { return errors.New("Stock not in watchlist") }}
	s := newTestStore(gw)
	require.NoError(t, s.LoadWatchlists(context.Background()))

	err := s.RemoveItem(context.Background(), 4, 7)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to remove watchlist item")

	snap := s.Snapshot()
	assert.Equal(t, models.Failed("Stock not in watchlist"), snap.Status)

	wl, ok := s.Watchlist(4)
	require.True(t, ok)
	assert.True(t, wl.Contains(7))
	assert.Len(t, wl.Items, 1)
}

func TestWatchlist_ReturnsCopy(t *testing.T) {
	s := newTestStore(&mockWatchlistGateway{})
	require.NoError(t, s.LoadWatchlists(context.Background()))

	wl, ok := s.Watchlist(4)
	require.True(t, ok)
	wl.Items[0].Stock.Symbol = "MSFT"

	again, _ := s.Watchlist(4)
	assert.Equal(t, "AAPL", again.Items[0].Stock.Symbol)

	_, ok = s.Watchlist(99)
	assert.False(t, ok)
}

func TestActivate_LoadsOnce(t *testing.T) {
	gw := &mockWatchlistGateway{}
	s := newTestStore(gw)

	require.NoError(t, s.Activate(context.Background()))
	require.NoError(t, s.Activate(context.Background()))
	assert.Equal(t, 1, gw.callCount())
}

func TestActivate_RetriesAfterFailure(t *testing.T) {
	gw := &mockWatchlistGateway{list: func() ([]models.Watchlist, error) { return nil, errors.New("offline") }}
	s := newTestStore(gw)
	require.Error(t, s.Activate(context.Background()))

	gw.list = func() ([]models.Watchlist, error) { return []models.Watchlist{techWatchlist()}, nil }
	require.NoError(t, s.Activate(context.Background()))
	require.NoError(t, s.Activate(context.Background()))

	assert.Equal(t, 2, gw.callCount())
	assert.Len(t, s.Snapshot().Watchlists, 1)
}

func TestSubscribe_ReceivesStatusTransitions(t *testing.T) {
	s := newTestStore(&mockWatchlistGateway{})
	var states []models.StatusState
	unsubscribe := s.Subscribe(func(snap models.WatchlistSnapshot) { states = append(states, snap.Status.State) })
	defer unsubscribe()

	require.NoError(t, s.LoadWatchlists(context.Background()))
	assert.Equal(t, []models.StatusState{models.StatusLoading, models.StatusReady}, states)
}
