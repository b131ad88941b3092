package models

// Watchlist is a named set of stocks a user tracks.
type Watchlist struct {
	WatchlistID int64           `json:"watchlist_id"`
	UserID      int64           `json:"user_id"`
	Name        string          `json:"name"`
	Items       []WatchlistItem `json:"items"`
}

// WatchlistItem references a tracked stock. Stock is only present when the
// server embeds it.
type WatchlistItem struct {
	ItemID      int64     `json:"item_id"`
	WatchlistID int64     `json:"watchlist_id"`
	StockID     int64     `json:"stock_id"`
	AddedDate   Timestamp `json:"added_date"`
	Stock       *Stock    `json:"stock,omitempty"`
}

// Contains reports whether the watchlist tracks the given stock.
func (w Watchlist) Contains(stockID int64) bool {
	for _, item := range w.Items {
		if item.StockID == stockID {
			return true
		}
	}
	return false
}

// Clone returns a deep copy of the watchlist.
func (w Watchlist) Clone() Watchlist {
	cp := w
	if w.Items != nil {
		cp.Items = make([]WatchlistItem, len(w.Items))
		for i, item := range w.Items {
			cp.Items[i] = item
			if item.Stock != nil {
				s := *item.Stock
				cp.Items[i].Stock = &s
			}
		}
	}
	return cp
}
