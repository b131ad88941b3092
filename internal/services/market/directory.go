// Package market provides stock search, detail and price history lookups
package market

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/patrickmn/go-cache"

	"github.com/bobmcallan/folio/internal/common"
	"github.com/bobmcallan/folio/internal/interfaces"
	"github.com/bobmcallan/folio/internal/models"
)

// ErrInvalidPeriod is returned for history periods the service does not support
var ErrInvalidPeriod = errors.New("invalid history period")

// Compile-time interface check
var _ interfaces.StockDirectory = (*Directory)(nil)

// Directory implements StockDirectory. Search results and stock details are
// cached for the configured TTL; price history is always fetched.
type Directory struct {
	gateway interfaces.StockGateway
	logger  *common.Logger
	cache   *cache.Cache
}

// NewDirectory creates a new stock directory
func NewDirectory(gateway interfaces.StockGateway, logger *common.Logger, ttl, cleanup time.Duration) *Directory {
	if logger == nil {
		logger = common.NewSilentLogger()
	}
	return &Directory{
		gateway: gateway,
		logger:  logger,
		cache:   cache.New(ttl, cleanup),
	}
}

// Search finds stocks matching query. An empty query returns no results
// without contacting the server.
func (d *Directory) Search(ctx context.Context, query string) ([]models.Stock, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return []models.Stock{}, nil
	}

	key := "search:" + strings.ToLower(query)
	if cached, ok := d.cache.Get(key); ok {
		return copyStocks(cached.([]models.Stock)), nil
	}

	stocks, err := d.gateway.SearchStocks(ctx, query)
	if err != nil {
		d.logger.Warn().Err(err).Str("query", query).Msg("Stock search failed")
		return nil, fmt.Errorf("failed to search stocks: %w", err)
	}

	d.cache.Set(key, copyStocks(stocks), cache.DefaultExpiration)
	d.logger.Debug().Str("query", query).Int("results", len(stocks)).Msg("Stock search")
	return stocks, nil
}

// Stock returns the detail of a stock by symbol. The symbol is sent as
// given; cached lookups are shared regardless of case.
func (d *Directory) Stock(ctx context.Context, symbol string) (*models.Stock, error) {
	symbol = strings.TrimSpace(symbol)
	if symbol == "" {
		return nil, errors.New("symbol is required")
	}

	key := "stock:" + strings.ToUpper(symbol)
	if cached, ok := d.cache.Get(key); ok {
		stock := cached.(models.Stock)
		return &stock, nil
	}

	stock, err := d.gateway.GetStock(ctx, symbol)
	if err != nil {
		d.logger.Warn().Err(err).Str("symbol", symbol).Msg("Stock lookup failed")
		return nil, fmt.Errorf("failed to get stock %s: %w", symbol, err)
	}

	d.cache.Set(key, *stock, cache.DefaultExpiration)
	return stock, nil
}

// PriceHistory returns the price history of a stock over period
func (d *Directory) PriceHistory(ctx context.Context, stockID int64, period models.HistoryPeriod) ([]models.PricePoint, error) {
	if !period.Valid() {
		return nil, fmt.Errorf("%w: %q", ErrInvalidPeriod, period)
	}

	points, err := d.gateway.GetPriceHistory(ctx, stockID, period)
	if err != nil {
		d.logger.Warn().Err(err).Int64("stock_id", stockID).Str("period", string(period)).Msg("Price history failed")
		return nil, fmt.Errorf("failed to get price history: %w", err)
	}
	return points, nil
}

// Invalidate drops all cached lookups
func (d *Directory) Invalidate() {
	d.cache.Flush()
}

func copyStocks(in []models.Stock) []models.Stock {
	return append([]models.Stock{}, in...)
}
