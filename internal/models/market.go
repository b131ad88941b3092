// Package models defines data structures for Folio
package models

import (
	"github.com/shopspring/decimal"
)

// Stock is a listed security as returned by the stock endpoints.
// Live-market fields stay invalid until a price feed has populated them,
// which keeps "not yet quoted" distinct from a quote of zero.
type Stock struct {
	StockID               int64               `json:"stock_id"`
	Symbol                string              `json:"symbol"`
	CompanyName           string              `json:"company_name"`
	Exchange              string              `json:"exchange"`
	Currency              string              `json:"currency"`
	CurrentPrice          decimal.NullDecimal `json:"current_price"`
	PriceChange           decimal.NullDecimal `json:"price_change"`
	PriceChangePercentage decimal.NullDecimal `json:"price_change_percentage"`
}

// HasQuote reports whether a current price has been populated.
func (s *Stock) HasQuote() bool {
	return s != nil && s.CurrentPrice.Valid
}

// PricePoint is one entry of a stock's price history.
type PricePoint struct {
	PriceID   int64           `json:"price_id"`
	StockID   int64           `json:"stock_id"`
	Price     decimal.Decimal `json:"price"`
	Timestamp Timestamp       `json:"timestamp"`
}

// HistoryPeriod selects the window of a price history request.
type HistoryPeriod string

const (
	Period1D  HistoryPeriod = "1d"
	Period1W  HistoryPeriod = "1w"
	Period1M  HistoryPeriod = "1m"
	Period3M  HistoryPeriod = "3m"
	Period6M  HistoryPeriod = "6m"
	Period1Y  HistoryPeriod = "1y"
	Period5Y  HistoryPeriod = "5y"
	PeriodMax HistoryPeriod = "max"
)

// Valid reports whether p is one of the known history periods.
func (p HistoryPeriod) Valid() bool {
	switch p {
	case Period1D, Period1W, Period1M, Period3M, Period6M, Period1Y, Period5Y, PeriodMax:
		return true
	}
	return false
}
