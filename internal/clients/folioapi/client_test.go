package folioapi

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bobmcallan/folio/internal/common"
	"github.com/bobmcallan/folio/internal/models"
)

func newTestClient(t *testing.T, handler http.HandlerFunc, opts ...ClientOption) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	opts = append([]ClientOption{WithBaseURL(srv.URL), WithRateLimit(0)}, opts...)
	return NewClient(common.NewSession("test-token"), opts...)
}

func TestRequests_CarryJSONAndBearerHeaders(t *testing.T) {
	var got http.Header
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		got = r.Header.Clone()
		w.Write([]byte(`[]`))
	})

	_, err := client.ListPortfolios(context.Background())
	require.NoError(t, err)

	assert.Equal(t, "application/json", got.Get("Content-Type"))
	assert.Equal(t, "Bearer test-token", got.Get("Authorization"))
	assert.Len(t, got.Get("X-Request-ID"), 8)
}

func TestRequests_AnonymousSessionOmitsAuthorization(t *testing.T) {
	var got http.Header
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = r.Header.Clone()
		w.Write([]byte(`[]`))
	}))
	defer srv.Close()

	client := NewClient(nil, WithBaseURL(srv.URL))
	_, err := client.ListWatchlists(context.Background())
	require.NoError(t, err)
	assert.Empty(t, got.Get("Authorization"))
}

func TestSearchStocks_EscapesQuery(t *testing.T) {
	var rawQuery, path string
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		path = r.URL.Path
		rawQuery = r.URL.Query().Get("q")
		w.Write([]byte(`[{"stock_id":7,"symbol":"BRK.B","company_name":"Berkshire","exchange":"NYSE","currency":"USD","current_price":412.5}]`))
	})

	stocks, err := client.SearchStocks(context.Background(), "brk b&c")
	require.NoError(t, err)

	assert.Equal(t, "/stocks/search", path)
	assert.Equal(t, "brk b&c", rawQuery)
	require.Len(t, stocks, 1)
	assert.True(t, stocks[0].HasQuote())
	assert.False(t, stocks[0].PriceChange.Valid, "absent field stays unset")
}

func TestGetPriceHistory_Path(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/stocks/7/history", r.URL.Path)
		assert.Equal(t, "1m", r.URL.Query().Get("period"))
		w.Write([]byte(`[{"price_id":1,"stock_id":7,"price":5.25,"timestamp":"2024-03-01T10:00:00"}]`))
	})

	points, err := client.GetPriceHistory(context.Background(), 7, models.Period1M)
	require.NoError(t, err)
	require.Len(t, points, 1)
	assert.True(t, points[0].Price.Equal(decimal.RequireFromString("5.25")))
	assert.Equal(t, 2024, points[0].Timestamp.Year())
}

func TestListHoldings_NullBodyBecomesEmptySlice(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/portfolios/3/holdings", r.URL.Path)
		w.Write([]byte(`null`))
	})

	holdings, err := client.ListHoldings(context.Background(), 3)
	require.NoError(t, err)
	assert.NotNil(t, holdings)
	assert.Empty(t, holdings)
}

func TestCreateTransaction_SendsNumericBody(t *testing.T) {
	var body map[string]interface{}
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/transactions", r.URL.Path)
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		w.WriteHeader(http.StatusCreated)
		w.Write([]byte(`{"transaction_id":99,"portfolio_id":1,"stock_id":7,"type":"BUY","quantity":10,"price":5,"fee":1,"total_amount":51,"transaction_date":"2024-03-01T10:00:00Z"}`))
	})

	tx, err := client.CreateTransaction(context.Background(), models.TradeRequest{
		PortfolioID: 1,
		StockID:     7,
		Type:        models.TradeBuy,
		Quantity:    decimal.NewFromInt(10),
		Price:       decimal.RequireFromString("5.00"),
		Fee:         decimal.RequireFromString("1.00"),
	})
	require.NoError(t, err)

	assert.Equal(t, float64(1), body["portfolio_id"])
	assert.Equal(t, "BUY", body["type"])
	assert.Equal(t, float64(10), body["quantity"])
	assert.Equal(t, float64(5), body["price"])
	assert.Equal(t, float64(1), body["fee"])
	assert.Equal(t, int64(99), tx.TransactionID)
	assert.True(t, tx.TotalAmount.Equal(decimal.NewFromInt(51)))
}

func TestCreatePortfolio_OmitsNilDescription(t *testing.T) {
	var raw []byte
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		raw, _ = io.ReadAll(r.Body)
		w.Write([]byte(`{"portfolio_id":42,"user_id":1,"name":"Retirement","created_at":"2024-01-02","total_value":0,"total_gain":0,"holdings":[]}`))
	})

	p, err := client.CreatePortfolio(context.Background(), "Retirement", nil)
	require.NoError(t, err)
	assert.JSONEq(t, `{"name":"Retirement"}`, string(raw))
	assert.Equal(t, int64(42), p.PortfolioID)
	assert.Nil(t, p.Description)
}

func TestWatchlistItems_NoResponseBody(t *testing.T) {
	var calls []string
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		calls = append(calls, r.Method+" "+r.URL.Path)
		w.WriteHeader(http.StatusNoContent)
	})

	require.NoError(t, client.AddWatchlistItem(context.Background(), 4, 7))
	require.NoError(t, client.RemoveWatchlistItem(context.Background(), 4, 7))
	assert.Equal(t, []string{"POST /watchlists/4/items", "DELETE /watchlists/4/items/7"}, calls)
}

func TestErrorResponse_UsesBodyText(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "Insufficient shares", http.StatusBadRequest)
	})

	_, err := client.CreateTransaction(context.Background(), models.TradeRequest{Type: models.TradeSell})
	require.Error(t, err)

	var reqErr *RequestError
	require.True(t, errors.As(err, &reqErr))
	assert.Equal(t, "Insufficient shares", reqErr.Message)
	assert.Equal(t, "POST /transactions", reqErr.Endpoint)
}

func TestErrorResponse_EmptyBodyGetsGenericMessage(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	})

	_, err := client.GetDashboardStats(context.Background())
	require.Error(t, err)
	assert.Equal(t, "request failed", err.Error())
}

func TestMalformedBody_IsRequestError(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"portfolio_id":`))
	})

	_, err := client.ListPortfolios(context.Background())
	var reqErr *RequestError
	require.True(t, errors.As(err, &reqErr))
	assert.Contains(t, reqErr.Message, "failed to decode response")
}

func TestTransportFault_IsRequestError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := srv.URL
	srv.Close()

	client := NewClient(common.NewSession(""), WithBaseURL(url))
	_, err := client.ListPortfolios(context.Background())

	var reqErr *RequestError
	require.True(t, errors.As(err, &reqErr))
	assert.Contains(t, reqErr.Message, "failed to execute request")
}

func TestTimeout_ResolvesToFailure(t *testing.T) {
	release := make(chan struct{})
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}, WithTimeout(50*time.Millisecond))
	defer close(release)

	start := time.Now()
	_, err := client.ListTransactions(context.Background(), 1)
	require.Error(t, err)

	assert.Less(t, time.Since(start), 5*time.Second)
	assert.Contains(t, err.Error(), "timed out")
}
