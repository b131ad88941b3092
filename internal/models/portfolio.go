package models

import (
	"github.com/shopspring/decimal"
)

// Portfolio represents a user's portfolio. TotalValue and TotalGain are
// computed by the server from the holdings and are only ever replaced by a
// fresh fetch, never recomputed locally.
type Portfolio struct {
	PortfolioID int64           `json:"portfolio_id"`
	UserID      int64           `json:"user_id"`
	Name        string          `json:"name"`
	Description *string         `json:"description,omitempty"`
	CreatedAt   Timestamp       `json:"created_at"`
	TotalValue  decimal.Decimal `json:"total_value"`
	TotalGain   decimal.Decimal `json:"total_gain"`
	Holdings    []Holding       `json:"holdings"`
}

// Clone returns a deep copy so callers cannot mutate store-owned state.
func (p *Portfolio) Clone() *Portfolio {
	if p == nil {
		return nil
	}
	cp := *p
	if p.Description != nil {
		d := *p.Description
		cp.Description = &d
	}
	if p.Holdings != nil {
		cp.Holdings = append([]Holding(nil), p.Holdings...)
	}
	return &cp
}

// Holding represents a position in one security within a portfolio.
// CurrentValue = Quantity x CurrentPrice and GainLoss = CurrentValue - TotalInvested
// as reported by the server.
type Holding struct {
	StockID            int64               `json:"stock_id"`
	Symbol             string              `json:"symbol"`
	Quantity           decimal.Decimal     `json:"quantity"`
	AvgPrice           decimal.Decimal     `json:"avg_price"`
	CurrentPrice       decimal.NullDecimal `json:"current_price"`
	TotalInvested      decimal.Decimal     `json:"total_invested"`
	CurrentValue       decimal.Decimal     `json:"current_value"`
	GainLoss           decimal.Decimal     `json:"gain_loss"`
	GainLossPercentage decimal.Decimal     `json:"gain_loss_percentage"`
}

// DashboardStats is the aggregate returned by the dashboard endpoint.
type DashboardStats struct {
	TotalPortfolioValue decimal.Decimal `json:"total_portfolio_value"`
	TotalGainLoss       decimal.Decimal `json:"total_gain_loss"`
	DailyGainLoss       decimal.Decimal `json:"daily_gain_loss"`
	TopHoldings         []Holding       `json:"top_holdings"`
	RecentTransactions  []Transaction   `json:"recent_transactions"`
}
