package pricefeed

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/bytedance/sonic"
)

// HTTPSource queries a CoinGecko-compatible token price endpoint.
type HTTPSource struct {
	name    string
	baseURL string
	client  *http.Client
}

func NewHTTPSource(name, baseURL string, timeout time.Duration) *HTTPSource {
	return &HTTPSource{
		name:    name,
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  &http.Client{Timeout: timeout},
	}
}

func (s *HTTPSource) Name() string { return s.name }

func (s *HTTPSource) PriceUSD(ctx context.Context, token string) (float64, error) {
	endpoint := fmt.Sprintf("%s/simple/token_price/ethereum?contract_addresses=%s&vs_currencies=usd",
		s.baseURL, url.QueryEscape(token))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return 0, err
	}
	req.Header.Set("Accept", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return 0, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return 0, fmt.Errorf("status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<16))
	if err != nil {
		return 0, err
	}

	// {"0xc02a...": {"usd": 3000.12}}
	var payload map[string]map[string]float64
	if err := sonic.Unmarshal(body, &payload); err != nil {
		return 0, fmt.Errorf("decode price response: %w", err)
	}

	entry, ok := payload[strings.ToLower(token)]
	if !ok {
		return 0, fmt.Errorf("no price for %s", token)
	}
	price, ok := entry["usd"]
	if !ok {
		return 0, fmt.Errorf("no usd price for %s", token)
	}
	return price, nil
}

// StaticSource serves prices from a fixed table. Used in dev environments
// and as a deterministic fallback for the stable anchors.
type StaticSource struct {
	prices map[string]float64
}

func NewStaticSource(prices map[string]float64) *StaticSource {
	lowered := make(map[string]float64, len(prices))
	for k, v := range prices {
		lowered[strings.ToLower(k)] = v
	}
	return &StaticSource{prices: lowered}
}

func (s *StaticSource) Name() string { return "static" }

func (s *StaticSource) PriceUSD(_ context.Context, token string) (float64, error) {
	price, ok := s.prices[strings.ToLower(token)]
	if !ok {
		return 0, fmt.Errorf("no price for %s", token)
	}
	return price, nil
}
