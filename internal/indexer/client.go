// Package indexer provides the client for the blockchain indexer service:
// token balances, transaction history, and confirmation status. Requests
// are retried with backoff and guarded by a circuit breaker; an optional
// WebSocket stream delivers confirmation events without polling.
package indexer

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/tetherto/wdk-mcp-toolkit-sub001/internal/circuitbreaker"
	"github.com/tetherto/wdk-mcp-toolkit-sub001/internal/metrics"
	"github.com/tetherto/wdk-mcp-toolkit-sub001/internal/retry"
)

var (
	// ErrNotConfigured is returned when no indexer URL is set.
	ErrNotConfigured = errors.New("indexer: not configured")

	// ErrUnavailable is returned while the circuit breaker is open.
	ErrUnavailable = errors.New("indexer: temporarily unavailable")
)

const (
	breakerKey   = "indexer"
	maxAttempts  = 3
	retryBackoff = 250 * time.Millisecond
)

// Config holds the connection settings for the indexer service.
type Config struct {
	BaseURL string // e.g. "https://indexer.example.com"
	APIKey  string
	WSURL   string // Optional event stream endpoint, e.g. "wss://indexer.example.com/v1/stream"
}

// Client is an HTTP client for the indexer API.
type Client struct {
	cfg        Config
	httpClient *http.Client
	breaker    *circuitbreaker.Breaker
}

// New creates a new indexer client.
func New(cfg Config) *Client {
	return &Client{
		cfg: cfg,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
		breaker: circuitbreaker.New(5, 30*time.Second),
	}
}

// Configured reports whether an indexer URL is set. Tools that depend on
// the indexer degrade gracefully when it is not.
func (c *Client) Configured() bool {
	return c.cfg.BaseURL != ""
}

// apiError represents an error response from the indexer.
type apiError struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

// StatusError is an HTTP-level error from the indexer.
type StatusError struct {
	Code int
	Msg  string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("indexer error (%d): %s", e.Code, e.Msg)
}

// doRequest makes an HTTP request to the indexer with retry and circuit
// breaking, and returns the response body.
func (c *Client) doRequest(ctx context.Context, method, path string, query url.Values, body any) (json.RawMessage, error) {
	if !c.Configured() {
		return nil, ErrNotConfigured
	}
	if !c.breaker.Allow(breakerKey) {
		return nil, ErrUnavailable
	}

	var out json.RawMessage
	start := time.Now()
	err := retry.Do(ctx, maxAttempts, retryBackoff, func() error {
		raw, err := c.roundTrip(ctx, method, path, query, body)
		if err != nil {
			return err
		}
		out = raw
		return nil
	})
	metrics.ObserveUpstream("indexer", err, time.Since(start))

	if err != nil {
		// Client errors mean the upstream is healthy; only transport
		// failures and 5xx count toward tripping the circuit.
		var se *StatusError
		if !(errors.As(err, &se) && se.Code < 500) {
			c.breaker.RecordFailure(breakerKey)
		}
		return nil, err
	}
	c.breaker.RecordSuccess(breakerKey)
	return out, nil
}

// roundTrip performs a single HTTP exchange. Client errors (4xx) are
// wrapped as permanent so the retry loop stops immediately.
func (c *Client) roundTrip(ctx context.Context, method, path string, query url.Values, body any) (json.RawMessage, error) {
	u, err := url.Parse(c.cfg.BaseURL + path)
	if err != nil {
		return nil, retry.Permanent(fmt.Errorf("invalid URL: %w", err))
	}
	if query != nil {
		u.RawQuery = query.Encode()
	}

	var reqBody io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return nil, retry.Permanent(fmt.Errorf("marshal request body: %w", err))
		}
		reqBody = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, u.String(), reqBody)
	if err != nil {
		return nil, retry.Permanent(fmt.Errorf("create request: %w", err))
	}

	req.Header.Set("Authorization", "Bearer "+c.cfg.APIKey)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode >= 400 {
		var apiErr apiError
		msg := string(respBody)
		if json.Unmarshal(respBody, &apiErr) == nil && apiErr.Message != "" {
			msg = apiErr.Message
		}
		err := &StatusError{Code: resp.StatusCode, Msg: msg}
		if resp.StatusCode < 500 {
			return nil, retry.Permanent(err)
		}
		return nil, err
	}

	return json.RawMessage(respBody), nil
}

// TokenBalance is one token position reported by the indexer.
// Balance is a base-unit decimal string; the caller formats it.
type TokenBalance struct {
	Symbol   string `json:"symbol"`
	Contract string `json:"contract"`
	Balance  string `json:"balance"`
	Decimals int    `json:"decimals"`
}

// TokenBalances returns all token positions for an address.
func (c *Client) TokenBalances(ctx context.Context, address string) ([]TokenBalance, error) {
	raw, err := c.doRequest(ctx, http.MethodGet, "/v1/addresses/"+address+"/balances", nil, nil)
	if err != nil {
		return nil, err
	}

	var resp struct {
		Balances []TokenBalance `json:"balances"`
	}
	if err := json.Unmarshal(raw, &resp); err != nil {
		return nil, fmt.Errorf("parse balances: %w", err)
	}
	return resp.Balances, nil
}

// Transaction is one history entry reported by the indexer.
// Amount is a base-unit decimal string.
type Transaction struct {
	Hash        string    `json:"hash"`
	From        string    `json:"from"`
	To          string    `json:"to"`
	Token       string    `json:"token"` // Symbol; empty means the native asset
	Amount      string    `json:"amount"`
	Status      string    `json:"status"` // pending, confirmed, failed
	BlockNumber uint64    `json:"blockNumber"`
	Timestamp   time.Time `json:"timestamp"`
}

// TransactionsPage is a page of history with an opaque continuation cursor.
type TransactionsPage struct {
	Transactions []Transaction `json:"transactions"`
	NextCursor   string        `json:"nextCursor"`
}

// Transactions returns a page of transaction history for an address.
func (c *Client) Transactions(ctx context.Context, address string, limit int, cursor string) (*TransactionsPage, error) {
	q := url.Values{}
	if limit > 0 {
		q.Set("limit", strconv.Itoa(limit))
	}
	if cursor != "" {
		q.Set("cursor", cursor)
	}

	raw, err := c.doRequest(ctx, http.MethodGet, "/v1/addresses/"+address+"/transactions", q, nil)
	if err != nil {
		return nil, err
	}

	var page TransactionsPage
	if err := json.Unmarshal(raw, &page); err != nil {
		return nil, fmt.Errorf("parse transactions: %w", err)
	}
	return &page, nil
}

// TxStatus is the indexer's view of one transaction.
type TxStatus struct {
	Hash          string `json:"hash"`
	Status        string `json:"status"`
	Confirmations uint64 `json:"confirmations"`
	BlockNumber   uint64 `json:"blockNumber"`
}

// TransactionStatus returns the confirmation state of a transaction.
func (c *Client) TransactionStatus(ctx context.Context, txHash string) (*TxStatus, error) {
	raw, err := c.doRequest(ctx, http.MethodGet, "/v1/transactions/"+txHash, nil, nil)
	if err != nil {
		return nil, err
	}

	var status TxStatus
	if err := json.Unmarshal(raw, &status); err != nil {
		return nil, fmt.Errorf("parse status: %w", err)
	}
	return &status, nil
}

// Ping verifies the indexer is reachable. Used by health checks.
func (c *Client) Ping(ctx context.Context) error {
	_, err := c.doRequest(ctx, http.MethodGet, "/v1/health", nil, nil)
	return err
}
