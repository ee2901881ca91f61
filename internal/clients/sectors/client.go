// Package sectors provides a client for the external instrument sector lookup service.
// It is used to enrich symbols the built-in classification table does not know.
package sectors

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/aristath/rebalancer/internal/domain"
	"github.com/aristath/rebalancer/internal/modules/classification"
	"github.com/rs/zerolog"
)

// LookupResponse is the body returned by GET /sectors/{symbol}
type LookupResponse struct {
	Symbol     string `json:"symbol"`
	AssetClass string `json:"asset_class"`
	Sector     string `json:"sector"`
}

// Client is the sector lookup API client.
type Client struct {
	baseURL    string
	apiKey     string // Optional
	httpClient *http.Client
	log        zerolog.Logger
}

// NewClient creates a new sector lookup client.
func NewClient(baseURL, apiKey string, timeout time.Duration, log zerolog.Logger) *Client {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		apiKey:  apiKey,
		httpClient: &http.Client{
			Timeout: timeout,
		},
		log: log.With().Str("client", "sectors").Logger(),
	}
}

// LookupSector fetches class and sector for symbol.
// A 404 yields an empty entry and no error.
func (c *Client) LookupSector(ctx context.Context, symbol string) (classification.Entry, error) {
	endpoint := c.baseURL + "/sectors/" + url.PathEscape(domain.NormalizeSymbol(symbol))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return classification.Entry{}, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if c.apiKey != "" {
		req.Header.Set("X-API-Key", c.apiKey)
	}

	c.log.Debug().Str("symbol", symbol).Msg("Requesting sector lookup")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return classification.Entry{}, fmt.Errorf("HTTP request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return classification.Entry{}, nil
	}
	if resp.StatusCode != http.StatusOK {
		bodyBytes, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return classification.Entry{}, fmt.Errorf("sector lookup error: status %d, body: %s", resp.StatusCode, string(bodyBytes))
	}

	var body LookupResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return classification.Entry{}, fmt.Errorf("failed to decode response: %w", err)
	}

	entry := classification.Entry{Sector: strings.TrimSpace(body.Sector)}
	if class, ok := domain.ParseAssetClass(body.AssetClass); ok {
		entry.AssetClass = class
	}
	return entry, nil
}
