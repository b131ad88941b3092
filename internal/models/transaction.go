package models

import (
	"strings"

	"github.com/shopspring/decimal"
)

// TradeType is the side of a transaction.
type TradeType string

const (
	TradeBuy  TradeType = "BUY"
	TradeSell TradeType = "SELL"
)

// Valid reports whether t is BUY or SELL.
func (t TradeType) Valid() bool {
	return t == TradeBuy || t == TradeSell
}

// ParseTradeType accepts "buy"/"sell" in any case.
func ParseTradeType(s string) (TradeType, bool) {
	t := TradeType(strings.ToUpper(strings.TrimSpace(s)))
	return t, t.Valid()
}

// Transaction is an append-only record of one buy or sell.
type Transaction struct {
	TransactionID   int64           `json:"transaction_id"`
	PortfolioID     int64           `json:"portfolio_id"`
	StockID         int64           `json:"stock_id"`
	Type            TradeType       `json:"type"`
	Quantity        decimal.Decimal `json:"quantity"`
	Price           decimal.Decimal `json:"price"`
	Fee             decimal.Decimal `json:"fee"`
	TotalAmount     decimal.Decimal `json:"total_amount"`
	TransactionDate Timestamp       `json:"transaction_date"`
	StockSymbol     string          `json:"stock_symbol,omitempty"`
	CompanyName     string          `json:"company_name,omitempty"`
}

// TradeRequest is the body of a create-transaction call.
type TradeRequest struct {
	PortfolioID int64           `json:"portfolio_id"`
	StockID     int64           `json:"stock_id"`
	Type        TradeType       `json:"type"`
	Quantity    decimal.Decimal `json:"quantity"`
	Price       decimal.Decimal `json:"price"`
	Fee         decimal.Decimal `json:"fee"`
}
