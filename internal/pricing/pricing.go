// Package pricing provides spot prices for registry tokens with a TTL
// cache in front. Prices travel as decimal strings and all conversion
// math runs through big.Rat; float64 never touches an amount.
package pricing

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"math/big"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/tetherto/wdk-mcp-toolkit-sub001/internal/metrics"
)

var (
	// ErrNotConfigured is returned when no pricing URL is set.
	ErrNotConfigured = errors.New("pricing: not configured")

	// ErrNoPrice is returned when the API has no quote for a symbol.
	ErrNoPrice = errors.New("pricing: no price for symbol")
)

// coinIDs maps registry symbols to price API identifiers. Symbols not
// listed here are passed through lowercased.
var coinIDs = map[string]string{
	"eth":  "ethereum",
	"weth": "weth",
	"usdt": "tether",
	"usdc": "usd-coin",
	"dai":  "dai",
	"wbtc": "wrapped-bitcoin",
}

// Config holds the connection settings for the pricing service.
type Config struct {
	BaseURL   string // e.g. "https://api.coingecko.com/api/v3"
	TTL       time.Duration
	RedisAddr string // Optional, selects the Redis cache backend
}

// Client fetches spot prices with a TTL cache in front. When a refresh
// fails it serves the last known price rather than erroring out.
type Client struct {
	cfg        Config
	httpClient *http.Client
	cache      Cache
	logger     *slog.Logger

	mu   sync.RWMutex
	last map[string]string // last good price per key, served when a refresh fails
}

// Option configures a Client.
type Option func(*Client)

// WithCache overrides the cache backend. Used in tests.
func WithCache(c Cache) Option {
	return func(cl *Client) { cl.cache = c }
}

// New creates a pricing client. The cache backend is Redis when
// cfg.RedisAddr is set, in-memory otherwise.
func New(cfg Config, logger *slog.Logger, opts ...Option) *Client {
	if cfg.TTL <= 0 {
		cfg.TTL = 30 * time.Second
	}
	if logger == nil {
		logger = slog.Default()
	}
	c := &Client{
		cfg: cfg,
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
		logger: logger,
		last:   make(map[string]string),
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.cache == nil {
		if cfg.RedisAddr != "" {
			c.cache = NewRedisCache(cfg.RedisAddr)
		} else {
			c.cache = NewMemoryCache()
		}
	}
	return c
}

// Configured reports whether a pricing URL is set. Fiat estimates are
// omitted when it is not.
func (c *Client) Configured() bool {
	return c.cfg.BaseURL != ""
}

// Quote is one cached spot price. Price is a decimal string.
type Quote struct {
	Symbol string
	VS     string
	Price  string
}

// Spot returns the spot price of symbol in the vs currency (default
// "usd") as a decimal string.
func (c *Client) Spot(ctx context.Context, symbol, vs string) (*Quote, error) {
	if !c.Configured() {
		return nil, ErrNotConfigured
	}
	if vs == "" {
		vs = "usd"
	}
	vs = strings.ToLower(vs)

	id := strings.ToLower(symbol)
	if mapped, ok := coinIDs[id]; ok {
		id = mapped
	}

	key := "price:" + id + ":" + vs
	if price, ok := c.cache.Get(ctx, key); ok {
		metrics.PriceCacheHits.Inc()
		return &Quote{Symbol: symbol, VS: vs, Price: price}, nil
	}
	metrics.PriceCacheMisses.Inc()

	price, err := c.fetch(ctx, id, vs)
	if err != nil {
		// Serve the last good price so transient API failures do not
		// take fiat estimates down with them.
		c.mu.RLock()
		stale, ok := c.last[key]
		c.mu.RUnlock()
		if ok {
			c.logger.Warn("pricing refresh failed, serving last known price",
				"symbol", symbol, "vs", vs, "error", err)
			return &Quote{Symbol: symbol, VS: vs, Price: stale}, nil
		}
		return nil, err
	}

	c.cache.Set(ctx, key, price, c.cfg.TTL)
	c.mu.Lock()
	c.last[key] = price
	c.mu.Unlock()

	return &Quote{Symbol: symbol, VS: vs, Price: price}, nil
}

// fetch queries the price API for one id/vs pair. The response is
// decoded with json.Number so the price is never a float64.
func (c *Client) fetch(ctx context.Context, id, vs string) (string, error) {
	q := url.Values{}
	q.Set("ids", id)
	q.Set("vs_currencies", vs)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet,
		c.cfg.BaseURL+"/simple/price?"+q.Encode(), nil)
	if err != nil {
		return "", fmt.Errorf("create request: %w", err)
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	metrics.ObserveUpstream("pricing", err, time.Since(start))
	if err != nil {
		return "", fmt.Errorf("fetch price: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("price API returned status %d", resp.StatusCode)
	}

	dec := json.NewDecoder(resp.Body)
	dec.UseNumber()
	var result map[string]map[string]json.Number
	if err := dec.Decode(&result); err != nil {
		return "", fmt.Errorf("decode price response: %w", err)
	}

	price, ok := result[id][vs]
	if !ok || price.String() == "" {
		return "", fmt.Errorf("%w: %s/%s", ErrNoPrice, id, vs)
	}
	if r, ok := new(big.Rat).SetString(price.String()); !ok || r.Sign() <= 0 {
		return "", fmt.Errorf("pricing: invalid price %q for %s/%s", price.String(), id, vs)
	}
	return price.String(), nil
}

// Rate returns the conversion rate from one symbol to another, derived
// from the two USD spot prices.
func (c *Client) Rate(ctx context.Context, from, to string) (*big.Rat, error) {
	if strings.EqualFold(from, to) {
		return big.NewRat(1, 1), nil
	}

	fromQuote, err := c.Spot(ctx, from, "usd")
	if err != nil {
		return nil, err
	}
	toQuote, err := c.Spot(ctx, to, "usd")
	if err != nil {
		return nil, err
	}

	fromRat, ok := new(big.Rat).SetString(fromQuote.Price)
	if !ok {
		return nil, fmt.Errorf("pricing: invalid price %q for %s", fromQuote.Price, from)
	}
	toRat, ok := new(big.Rat).SetString(toQuote.Price)
	if !ok || toRat.Sign() == 0 {
		return nil, fmt.Errorf("pricing: invalid price %q for %s", toQuote.Price, to)
	}

	return fromRat.Quo(fromRat, toRat), nil
}

// Ping verifies the pricing API is reachable. Used by health checks.
func (c *Client) Ping(ctx context.Context) error {
	if !c.Configured() {
		return ErrNotConfigured
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.cfg.BaseURL+"/ping", nil)
	if err != nil {
		return err
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 400 {
		return fmt.Errorf("pricing ping returned status %d", resp.StatusCode)
	}
	return nil
}

// ConvertBase converts an input amount in base units to the output
// token's base units at the given rate, flooring the result.
func ConvertBase(amountIn *big.Int, inDecimals, outDecimals int, rate *big.Rat) *big.Int {
	out := new(big.Rat).SetInt(amountIn)
	out.Mul(out, rate)

	shift := outDecimals - inDecimals
	if shift > 0 {
		out.Mul(out, new(big.Rat).SetInt(pow10(shift)))
	} else if shift < 0 {
		out.Quo(out, new(big.Rat).SetInt(pow10(-shift)))
	}

	return new(big.Int).Quo(out.Num(), out.Denom())
}

// ApplySlippage reduces amount by slippageBps basis points, flooring.
func ApplySlippage(amount *big.Int, slippageBps int64) *big.Int {
	if slippageBps <= 0 {
		return new(big.Int).Set(amount)
	}
	out := new(big.Int).Mul(amount, big.NewInt(10000-slippageBps))
	return out.Quo(out, big.NewInt(10000))
}

// FiatValue returns the fiat value of a base-unit amount at the given
// decimal-string price, rounded to 2 decimal places.
func FiatValue(amountBase *big.Int, decimals int, price string) (string, error) {
	p, ok := new(big.Rat).SetString(price)
	if !ok {
		return "", fmt.Errorf("pricing: invalid price %q", price)
	}
	v := new(big.Rat).SetInt(amountBase)
	v.Quo(v, new(big.Rat).SetInt(pow10(decimals)))
	v.Mul(v, p)
	return v.FloatString(2), nil
}

func pow10(n int) *big.Int {
	return new(big.Int).Exp(big.NewInt(10), big.NewInt(int64(n)), nil)
}
