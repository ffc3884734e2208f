// Package tokens holds the per-token metadata the tool layer needs:
// which assets exist, their contract addresses, and, critically for
// amount conversion, how many decimals each one carries.
package tokens

import (
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/ethereum/go-ethereum/common"
	"gopkg.in/yaml.v3"
)

// Token describes one asset on the configured chain. A token with an
// empty Contract is the chain's native asset.
type Token struct {
	Symbol   string `yaml:"symbol"`
	Name     string `yaml:"name"`
	Decimals int    `yaml:"decimals"`
	Contract string `yaml:"contract,omitempty"`
}

// IsNative reports whether the token is the chain's native asset.
func (t Token) IsNative() bool { return t.Contract == "" }

// Registry is a symbol-keyed token set. Lookups are case-insensitive.
type Registry struct {
	bySymbol map[string]Token
	native   Token
}

// Defaults returns the built-in Ethereum mainnet token set.
func Defaults() *Registry {
	r := &Registry{bySymbol: make(map[string]Token)}
	for _, t := range []Token{
		{Symbol: "ETH", Name: "Ether", Decimals: 18},
		{Symbol: "WETH", Name: "Wrapped Ether", Decimals: 18, Contract: "0xC02aaA39b223FE8D0A0e5C4F27eAD9083C756Cc2"},
		{Symbol: "USDT", Name: "Tether USD", Decimals: 6, Contract: "0xdAC17F958D2ee523a2206206994597C13D831ec7"},
		{Symbol: "USDC", Name: "USD Coin", Decimals: 6, Contract: "0xA0b86991c6218b36c1d19D4a2e9Eb0cE3606eB48"},
		{Symbol: "DAI", Name: "Dai Stablecoin", Decimals: 18, Contract: "0x6B175474E89094C44Da98b954EedeAC495271d0F"},
		{Symbol: "WBTC", Name: "Wrapped BTC", Decimals: 8, Contract: "0x2260FAC5E5542a773Aa44fBCfeDf7C193bc2C599"},
	} {
		r.put(t)
	}
	return r
}

// LoadFile merges tokens from a YAML file into the registry. Entries
// with a known symbol replace the built-in definition. The file is a
// list:
//
//	- symbol: PEPE
//	  name: Pepe
//	  decimals: 18
//	  contract: "0x6982508145454Ce325dDbE47a25d4ec3d2311933"
//
// A missing file is not an error, so deployments without custom tokens
// need no file at all.
func (r *Registry) LoadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("tokens: read %s: %w", path, err)
	}

	var list []Token
	if err := yaml.Unmarshal(data, &list); err != nil {
		return fmt.Errorf("tokens: parse %s: %w", path, err)
	}

	for i, t := range list {
		if err := validate(t); err != nil {
			return fmt.Errorf("tokens: %s entry %d: %w", path, i, err)
		}
		r.put(t)
	}
	return nil
}

func validate(t Token) error {
	if strings.TrimSpace(t.Symbol) == "" {
		return fmt.Errorf("symbol is required")
	}
	if t.Decimals < 0 {
		return fmt.Errorf("%s: decimals must be >= 0, got %d", t.Symbol, t.Decimals)
	}
	if t.Contract != "" && !common.IsHexAddress(t.Contract) {
		return fmt.Errorf("%s: contract %q is not a valid address", t.Symbol, t.Contract)
	}
	return nil
}

func (r *Registry) put(t Token) {
	t.Symbol = strings.ToUpper(strings.TrimSpace(t.Symbol))
	r.bySymbol[t.Symbol] = t
	if t.IsNative() {
		r.native = t
	}
}

// Get looks up a token by symbol, case-insensitively.
func (r *Registry) Get(symbol string) (Token, bool) {
	t, ok := r.bySymbol[strings.ToUpper(strings.TrimSpace(symbol))]
	return t, ok
}

// Native returns the chain's native asset.
func (r *Registry) Native() Token { return r.native }

// All returns every registered token, sorted by symbol for stable output.
func (r *Registry) All() []Token {
	out := make([]Token, 0, len(r.bySymbol))
	for _, t := range r.bySymbol {
		out = append(out, t)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Symbol < out[j].Symbol })
	return out
}
