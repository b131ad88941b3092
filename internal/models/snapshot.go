package models

// PortfolioSnapshot is a point-in-time copy of the portfolio session state.
// DetailsPortfolioID identifies the portfolio Holdings and Transactions
// belong to; zero means no details have been loaded.
type PortfolioSnapshot struct {
	Portfolios         []Portfolio
	Selected           *Portfolio
	Holdings           []Holding
	Transactions       []Transaction
	DetailsPortfolioID int64
	ActivePortfolioID  int64
	Status             Status
}

// WatchlistSnapshot is a point-in-time copy of the watchlist session state.
type WatchlistSnapshot struct {
	Watchlists []Watchlist
	Status     Status
}
