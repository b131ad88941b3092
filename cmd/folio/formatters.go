package main

import (
	"fmt"
	"strings"

	"github.com/Rhymond/go-money"
	"github.com/shopspring/decimal"

	"github.com/bobmcallan/folio/internal/models"
	"github.com/bobmcallan/folio/internal/services/dashboard"
)

// defaultCurrency is used for portfolio amounts, which carry no currency of their own
const defaultCurrency = money.USD

// formatMoney formats an amount in the given currency, e.g. $1,234.50
func formatMoney(v decimal.Decimal, currency string) string {
	if currency == "" {
		currency = defaultCurrency
	}
	cur := money.New(0, currency).Currency()
	minor := v.Shift(int32(cur.Fraction)).Round(0)
	return cur.Formatter().Format(minor.IntPart())
}

// formatSignedMoney prefixes positive amounts with +
func formatSignedMoney(v decimal.Decimal, currency string) string {
	if v.IsPositive() {
		return "+" + formatMoney(v, currency)
	}
	return formatMoney(v, currency)
}

func formatSignedPct(v decimal.Decimal) string {
	s := v.StringFixed(2) + "%"
	if v.IsPositive() {
		return "+" + s
	}
	return s
}

func formatOptionalMoney(v decimal.NullDecimal, currency string) string {
	if !v.Valid {
		return "-"
	}
	return formatMoney(v.Decimal, currency)
}

func formatPortfolios(snap models.PortfolioSnapshot) string {
	if len(snap.Portfolios) == 0 {
		return "No portfolios.\n"
	}

	var sb strings.Builder
	sb.WriteString("| | ID | Name | Value | Gain |\n")
	sb.WriteString("|---|---|---|---|---|\n")
	for _, p := range snap.Portfolios {
		marker := ""
		if snap.Selected != nil && snap.Selected.PortfolioID == p.PortfolioID {
			marker = "*"
		}
		sb.WriteString(fmt.Sprintf("| %s | %d | %s | %s | %s |\n",
			marker, p.PortfolioID, p.Name,
			formatMoney(p.TotalValue, ""), formatSignedMoney(p.TotalGain, "")))
	}
	return sb.String()
}

func formatHoldings(holdings []models.Holding) string {
	if len(holdings) == 0 {
		return "No holdings.\n"
	}

	var sb strings.Builder
	sb.WriteString("| Symbol | Qty | Avg Price | Price | Value | Gain | Gain % |\n")
	sb.WriteString("|---|---|---|---|---|---|---|\n")
	for _, h := range holdings {
		sb.WriteString(fmt.Sprintf("| %s | %s | %s | %s | %s | %s | %s |\n",
			h.Symbol,
			h.Quantity.String(),
			formatMoney(h.AvgPrice, ""),
			formatOptionalMoney(h.CurrentPrice, ""),
			formatMoney(h.CurrentValue, ""),
			formatSignedMoney(h.GainLoss, ""),
			formatSignedPct(h.GainLossPercentage)))
	}
	return sb.String()
}

func formatTransactions(txs []models.Transaction) string {
	if len(txs) == 0 {
		return "No transactions.\n"
	}

	var sb strings.Builder
	sb.WriteString("| Date | Type | Symbol | Qty | Price | Fee | Total |\n")
	sb.WriteString("|---|---|---|---|---|---|---|\n")
	for _, tx := range txs {
		symbol := tx.StockSymbol
		if symbol == "" {
			symbol = fmt.Sprintf("#%d", tx.StockID)
		}
		date := "-"
		if !tx.TransactionDate.IsZero() {
			date = tx.TransactionDate.Format("2006-01-02")
		}
		sb.WriteString(fmt.Sprintf("| %s | %s | %s | %s | %s | %s | %s |\n",
			date, tx.Type, symbol, tx.Quantity.String(),
			formatMoney(tx.Price, ""), formatMoney(tx.Fee, ""), formatMoney(tx.TotalAmount, "")))
	}
	return sb.String()
}

func formatStocks(stocks []models.Stock) string {
	if len(stocks) == 0 {
		return "No matching stocks.\n"
	}

	var sb strings.Builder
	sb.WriteString("| ID | Symbol | Company | Exchange | Price | Change |\n")
	sb.WriteString("|---|---|---|---|---|---|\n")
	for _, s := range stocks {
		change := "-"
		if s.PriceChangePercentage.Valid {
			change = formatSignedPct(s.PriceChangePercentage.Decimal)
		}
		sb.WriteString(fmt.Sprintf("| %d | %s | %s | %s | %s | %s |\n",
			s.StockID, s.Symbol, s.CompanyName, s.Exchange,
			formatOptionalMoney(s.CurrentPrice, s.Currency), change))
	}
	return sb.String()
}

func formatStock(s *models.Stock) string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("# %s - %s\n\n", s.Symbol, s.CompanyName))
	sb.WriteString(fmt.Sprintf("**Stock ID:** %d\n", s.StockID))
	sb.WriteString(fmt.Sprintf("**Exchange:** %s\n", s.Exchange))
	sb.WriteString(fmt.Sprintf("**Currency:** %s\n", s.Currency))
	if !s.HasQuote() {
		sb.WriteString("**Price:** no quote available\n")
		return sb.String()
	}
	sb.WriteString(fmt.Sprintf("**Price:** %s\n", formatMoney(s.CurrentPrice.Decimal, s.Currency)))
	if s.PriceChange.Valid {
		pct := ""
		if s.PriceChangePercentage.Valid {
			pct = " (" + formatSignedPct(s.PriceChangePercentage.Decimal) + ")"
		}
		sb.WriteString(fmt.Sprintf("**Change:** %s%s\n", formatSignedMoney(s.PriceChange.Decimal, s.Currency), pct))
	}
	return sb.String()
}

func formatPriceHistory(stock *models.Stock, points []models.PricePoint) string {
	if len(points) == 0 {
		return "No price history.\n"
	}

	var sb strings.Builder
	sb.WriteString("| Time | Price |\n")
	sb.WriteString("|---|---|\n")
	for _, p := range points {
		sb.WriteString(fmt.Sprintf("| %s | %s |\n",
			p.Timestamp.Format("2006-01-02 15:04"), formatMoney(p.Price, stock.Currency)))
	}
	return sb.String()
}

func formatWatchlists(snap models.WatchlistSnapshot) string {
	if len(snap.Watchlists) == 0 {
		return "No watchlists.\n"
	}

	var sb strings.Builder
	for i, wl := range snap.Watchlists {
		if i > 0 {
			sb.WriteString("\n")
		}
		sb.WriteString(formatWatchlist(wl))
	}
	return sb.String()
}

func formatWatchlist(wl models.Watchlist) string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("## %s (#%d)\n\n", wl.Name, wl.WatchlistID))
	if len(wl.Items) == 0 {
		sb.WriteString("Empty.\n")
		return sb.String()
	}
	sb.WriteString("| Symbol | Company | Price | Added |\n")
	sb.WriteString("|---|---|---|---|\n")
	for _, item := range wl.Items {
		symbol, company, price := fmt.Sprintf("#%d", item.StockID), "", "-"
		if item.Stock != nil {
			symbol = item.Stock.Symbol
			company = item.Stock.CompanyName
			price = formatOptionalMoney(item.Stock.CurrentPrice, item.Stock.Currency)
		}
		added := "-"
		if !item.AddedDate.IsZero() {
			added = item.AddedDate.Format("2006-01-02")
		}
		sb.WriteString(fmt.Sprintf("| %s | %s | %s | %s |\n", symbol, company, price, added))
	}
	return sb.String()
}

func formatOverview(ov *dashboard.Overview) string {
	var sb strings.Builder
	sb.WriteString("# Dashboard\n\n")

	if ov.Stats != nil {
		sb.WriteString(fmt.Sprintf("**Total Value:** %s\n", formatMoney(ov.Stats.TotalPortfolioValue, "")))
		sb.WriteString(fmt.Sprintf("**Total Gain/Loss:** %s\n", formatSignedMoney(ov.Stats.TotalGainLoss, "")))
		sb.WriteString(fmt.Sprintf("**Today:** %s\n\n", formatSignedMoney(ov.Stats.DailyGainLoss, "")))
	} else {
		sb.WriteString("Dashboard stats unavailable.\n\n")
	}

	if p := ov.Portfolio.Selected; p != nil {
		sb.WriteString(fmt.Sprintf("## %s\n\n", p.Name))
		sb.WriteString(formatHoldings(ov.Portfolio.Holdings))
		sb.WriteString("\n")
	}

	sb.WriteString("## Recent Transactions\n\n")
	sb.WriteString(formatTransactions(ov.RecentTransactions))

	if len(ov.Watchlists.Watchlists) > 0 {
		sb.WriteString("\n# Watchlists\n\n")
		sb.WriteString(formatWatchlists(ov.Watchlists))
	}

	if ov.Portfolio.Status.IsError() {
		sb.WriteString(fmt.Sprintf("\n> %s\n", ov.Portfolio.Status.Message))
	}
	return sb.String()
}
