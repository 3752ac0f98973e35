// Package tokens holds the allow-list of tokens the gateway will quote.
package tokens

import (
	"strings"
	"sync"

	ethcommon "github.com/ethereum/go-ethereum/common"

	"github.com/thehyperflames/swap-gateway/internal/common"
)

// Token is one allow-listed asset.
type Token struct {
	Address  ethcommon.Address `json:"address"`
	Symbol   string            `json:"symbol"`
	Name     string            `json:"name"`
	Decimals uint8             `json:"decimals"`
}

// Registry is the token allow-list. Lookups are by lowercase hex address.
type Registry struct {
	mu     sync.RWMutex
	tokens map[string]Token
}

func NewRegistry() *Registry {
	return &Registry{tokens: make(map[string]Token)}
}

// NewDefaultRegistry returns a registry seeded with the mainnet majors.
func NewDefaultRegistry() *Registry {
	r := NewRegistry()
	r.Add(Token{Address: common.WETH, Symbol: "WETH", Name: "Wrapped Ether", Decimals: 18})
	r.Add(Token{Address: common.USDC, Symbol: "USDC", Name: "USD Coin", Decimals: 6})
	r.Add(Token{Address: common.USDT, Symbol: "USDT", Name: "Tether USD", Decimals: 6})
	r.Add(Token{Address: common.DAI, Symbol: "DAI", Name: "Dai Stablecoin", Decimals: 18})
	return r
}

func (r *Registry) Add(t Token) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.tokens[strings.ToLower(t.Address.Hex())] = t
}

// Validate checks an address string against the allow-list and returns its
// canonical lowercase hex form. Returns ErrInvalidInput for malformed hex
// and ErrTokenNotAllowed for unknown tokens.
func (r *Registry) Validate(addr string) (string, error) {
	addr = strings.TrimSpace(addr)
	if !ethcommon.IsHexAddress(addr) {
		return "", common.ErrInvalidInput
	}
	key := strings.ToLower(ethcommon.HexToAddress(addr).Hex())

	r.mu.RLock()
	defer r.mu.RUnlock()
	if _, ok := r.tokens[key]; !ok {
		return "", common.ErrTokenNotAllowed
	}
	return key, nil
}

// Get returns the token for a lowercase hex address.
func (r *Registry) Get(lowerHex string) (Token, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	t, ok := r.tokens[strings.ToLower(lowerHex)]
	return t, ok
}

// Decimals returns a token's decimals, defaulting to 18 for unknowns.
func (r *Registry) Decimals(lowerHex string) uint8 {
	if t, ok := r.Get(lowerHex); ok {
		return t.Decimals
	}
	return 18
}

// List returns all allow-listed tokens.
func (r *Registry) List() []Token {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]Token, 0, len(r.tokens))
	for _, t := range r.tokens {
		out = append(out, t)
	}
	return out
}
