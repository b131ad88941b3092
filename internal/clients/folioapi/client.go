// Package folioapi provides a client for the Folio portfolio service API
package folioapi

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/time/rate"

	"github.com/bobmcallan/folio/internal/common"
	"github.com/bobmcallan/folio/internal/interfaces"
	"github.com/bobmcallan/folio/internal/models"
)

const (
	DefaultBaseURL   = "http://localhost:8000/api"
	DefaultTimeout   = 30 * time.Second
	DefaultRateLimit = 10 // requests per second

	// maxErrorBody caps how much of a failed response is kept as the message
	maxErrorBody = 4096
)

// Client implements interfaces.Gateway over HTTP/JSON. It holds no state
// between calls other than the session credential.
type Client struct {
	baseURL    string
	session    *common.Session
	httpClient *http.Client
	logger     *common.Logger
	limiter    *rate.Limiter
	timeout    time.Duration
}

// ClientOption configures the client
type ClientOption func(*Client)

// WithBaseURL sets the base URL
func WithBaseURL(baseURL string) ClientOption {
	return func(c *Client) {
		c.baseURL = strings.TrimRight(baseURL, "/")
	}
}

// WithLogger sets the logger
func WithLogger(logger *common.Logger) ClientOption {
	return func(c *Client) {
		c.logger = logger
	}
}

// WithRateLimit sets the rate limit; zero or negative disables limiting
func WithRateLimit(requestsPerSecond int) ClientOption {
	return func(c *Client) {
		if requestsPerSecond <= 0 {
			c.limiter = rate.NewLimiter(rate.Inf, 0)
			return
		}
		c.limiter = rate.NewLimiter(rate.Limit(requestsPerSecond), requestsPerSecond)
	}
}

// WithTimeout bounds every request, including time spent waiting on the rate limiter
func WithTimeout(timeout time.Duration) ClientOption {
	return func(c *Client) {
		if timeout > 0 {
			c.timeout = timeout
		}
	}
}

// WithHTTPClient replaces the underlying HTTP client
func WithHTTPClient(httpClient *http.Client) ClientOption {
	return func(c *Client) {
		c.httpClient = httpClient
	}
}

// NewClient creates a new client for the given session. A nil session is
// treated as anonymous.
func NewClient(session *common.Session, opts ...ClientOption) *Client {
	if session == nil {
		session = common.NewSession("")
	}
	c := &Client{
		baseURL:    DefaultBaseURL,
		session:    session,
		httpClient: &http.Client{},
		limiter:    rate.NewLimiter(rate.Limit(DefaultRateLimit), DefaultRateLimit),
		logger:     common.NewSilentLogger(),
		timeout:    DefaultTimeout,
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// RequestError is the single failure kind surfaced by the client. Transport
// faults, non-2xx responses and undecodable bodies all produce it.
type RequestError struct {
	Endpoint string
	Message  string
	cause    error
}

func (e *RequestError) Error() string {
	return e.Message
}

func (e *RequestError) Unwrap() error {
	return e.cause
}

func (c *Client) fail(endpoint string, cause error, format string, args ...interface{}) error {
	return &RequestError{
		Endpoint: endpoint,
		Message:  fmt.Sprintf(format, args...),
		cause:    cause,
	}
}

// do performs a rate-limited, time-bounded request. body is JSON-encoded when
// non-nil; result is decoded from the response when non-nil.
func (c *Client) do(ctx context.Context, method, path string, body, result interface{}) error {
	endpoint := method + " " + path

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	if err := c.limiter.Wait(ctx); err != nil {
		return c.fail(endpoint, err, "rate limit wait: %v", err)
	}

	var bodyReader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return c.fail(endpoint, err, "failed to marshal request: %v", err)
		}
		bodyReader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, bodyReader)
	if err != nil {
		return c.fail(endpoint, err, "failed to create request: %v", err)
	}

	requestID := uuid.New().String()[:8]
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Request-ID", requestID)
	if auth := c.session.AuthorizationHeader(); auth != "" {
		req.Header.Set("Authorization", auth)
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Warn().Err(err).Str("endpoint", endpoint).Str("request_id", requestID).Msg("API request failed")
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return c.fail(endpoint, err, "request timed out after %s", c.timeout)
		}
		return c.fail(endpoint, err, "failed to execute request: %v", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return c.fail(endpoint, err, "failed to read response: %v", err)
	}

	c.logger.Debug().
		Str("endpoint", endpoint).
		Str("request_id", requestID).
		Int("status", resp.StatusCode).
		Dur("duration", time.Since(start)).
		Msg("API request")

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		if len(data) > maxErrorBody {
			data = data[:maxErrorBody]
		}
		msg := strings.TrimSpace(string(data))
		if msg == "" {
			msg = "request failed"
		}
		c.logger.Warn().Str("endpoint", endpoint).Int("status", resp.StatusCode).Str("message", msg).Msg("API error response")
		return c.fail(endpoint, nil, "%s", msg)
	}

	if result == nil {
		return nil
	}

	if err := json.Unmarshal(data, result); err != nil {
		return c.fail(endpoint, err, "failed to decode response: %v", err)
	}

	return nil
}

// getList decodes a JSON array, normalising null to an empty slice
func getList[T any](ctx context.Context, c *Client, path string) ([]T, error) {
	var out []T
	if err := c.do(ctx, http.MethodGet, path, nil, &out); err != nil {
		return nil, err
	}
	if out == nil {
		out = []T{}
	}
	return out, nil
}

// SearchStocks finds stocks matching a query
func (c *Client) SearchStocks(ctx context.Context, query string) ([]models.Stock, error) {
	path := "/stocks/search?" + url.Values{"q": {query}}.Encode()
	return getList[models.Stock](ctx, c, path)
}

// GetStock retrieves a stock by symbol
func (c *Client) GetStock(ctx context.Context, symbol string) (*models.Stock, error) {
	var stock models.Stock
	if err := c.do(ctx, http.MethodGet, "/stocks/"+url.PathEscape(symbol), nil, &stock); err != nil {
		return nil, err
	}
	return &stock, nil
}

// GetPriceHistory retrieves the price history of a stock
func (c *Client) GetPriceHistory(ctx context.Context, stockID int64, period models.HistoryPeriod) ([]models.PricePoint, error) {
	path := fmt.Sprintf("/stocks/%d/history?%s", stockID, url.Values{"period": {string(period)}}.Encode())
	return getList[models.PricePoint](ctx, c, path)
}

// ListPortfolios retrieves all portfolios of the session user
func (c *Client) ListPortfolios(ctx context.Context) ([]models.Portfolio, error) {
	return getList[models.Portfolio](ctx, c, "/portfolios")
}

type createPortfolioRequest struct {
	Name        string  `json:"name"`
	Description *string `json:"description,omitempty"`
}

// CreatePortfolio creates a portfolio
func (c *Client) CreatePortfolio(ctx context.Context, name string, description *string) (*models.Portfolio, error) {
	var p models.Portfolio
	body := createPortfolioRequest{Name: name, Description: description}
	if err := c.do(ctx, http.MethodPost, "/portfolios", body, &p); err != nil {
		return nil, err
	}
	return &p, nil
}

// ListHoldings retrieves holdings for a portfolio
func (c *Client) ListHoldings(ctx context.Context, portfolioID int64) ([]models.Holding, error) {
	return getList[models.Holding](ctx, c, fmt.Sprintf("/portfolios/%d/holdings", portfolioID))
}

// transactionRequest sends amounts as JSON numbers rather than decimal's
// default quoted strings.
type transactionRequest struct {
	PortfolioID int64            `json:"portfolio_id"`
	StockID     int64            `json:"stock_id"`
	Type        models.TradeType `json:"type"`
	Quantity    json.Number      `json:"quantity"`
	Price       json.Number      `json:"price"`
	Fee         json.Number      `json:"fee"`
}

// CreateTransaction submits a buy or sell
func (c *Client) CreateTransaction(ctx context.Context, req models.TradeRequest) (*models.Transaction, error) {
	body := transactionRequest{
		PortfolioID: req.PortfolioID,
		StockID:     req.StockID,
		Type:        req.Type,
		Quantity:    json.Number(req.Quantity.String()),
		Price:       json.Number(req.Price.String()),
		Fee:         json.Number(req.Fee.String()),
	}
	var tx models.Transaction
	if err := c.do(ctx, http.MethodPost, "/transactions", body, &tx); err != nil {
		return nil, err
	}
	return &tx, nil
}

// ListTransactions retrieves transactions for a portfolio
func (c *Client) ListTransactions(ctx context.Context, portfolioID int64) ([]models.Transaction, error) {
	return getList[models.Transaction](ctx, c, fmt.Sprintf("/portfolios/%d/transactions", portfolioID))
}

// ListWatchlists retrieves all watchlists of the session user
func (c *Client) ListWatchlists(ctx context.Context) ([]models.Watchlist, error) {
	return getList[models.Watchlist](ctx, c, "/watchlists")
}

// CreateWatchlist creates a watchlist
func (c *Client) CreateWatchlist(ctx context.Context, name string) (*models.Watchlist, error) {
	var wl models.Watchlist
	body := map[string]string{"name": name}
	if err := c.do(ctx, http.MethodPost, "/watchlists", body, &wl); err != nil {
		return nil, err
	}
	return &wl, nil
}

// AddWatchlistItem adds a stock to a watchlist
func (c *Client) AddWatchlistItem(ctx context.Context, watchlistID, stockID int64) error {
	body := map[string]int64{"stock_id": stockID}
	return c.do(ctx, http.MethodPost, fmt.Sprintf("/watchlists/%d/items", watchlistID), body, nil)
}

// RemoveWatchlistItem removes a stock from a watchlist
func (c *Client) RemoveWatchlistItem(ctx context.Context, watchlistID, stockID int64) error {
	return c.do(ctx, http.MethodDelete, fmt.Sprintf("/watchlists/%d/items/%d", watchlistID, stockID), nil, nil)
}

// GetDashboardStats retrieves the dashboard aggregate
func (c *Client) GetDashboardStats(ctx context.Context) (*models.DashboardStats, error) {
	var stats models.DashboardStats
	if err := c.do(ctx, http.MethodGet, "/dashboard/stats", nil, &stats); err != nil {
		return nil, err
	}
	return &stats, nil
}

// Ensure Client implements Gateway
var _ interfaces.Gateway = (*Client)(nil)
