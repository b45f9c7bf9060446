package tools

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

// Typed failure variants for the outbound store APIs. The tool layer collapses
// them into conversational {error} payloads; tests and callers can still tell
// them apart with errors.Is.
var (
	ErrAuthentication = errors.New("authentication failed")
	ErrAPI            = errors.New("api request failed")
	ErrConnectivity   = errors.New("connection failed")
)

const defaultHTTPTimeout = 15 * time.Second

// StatusClient calls the order-status service. The API key is injected at
// construction rather than read from the environment per call.
type StatusClient struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
}

func NewStatusClient(baseURL, apiKey string, timeout time.Duration) *StatusClient {
	if timeout <= 0 {
		timeout = defaultHTTPTimeout
	}
	return &StatusClient{
		baseURL:    strings.TrimRight(baseURL, "/"),
		apiKey:     apiKey,
		httpClient: &http.Client{Timeout: timeout},
	}
}

// OrderStatus fetches the order record for the given order number. The 200
// response body is returned verbatim as decoded JSON.
func (c *StatusClient) OrderStatus(ctx context.Context, orderNumber int) (map[string]any, error) {
	endpoint := fmt.Sprintf("%s/orders/status/%d?API_KEY=%s", c.baseURL, orderNumber, url.QueryEscape(c.apiKey))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrAPI, err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrConnectivity, err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusForbidden:
		return nil, fmt.Errorf("%w: status %d", ErrAuthentication, resp.StatusCode)
	case resp.StatusCode != http.StatusOK:
		return nil, fmt.Errorf("%w: status %d", ErrAPI, resp.StatusCode)
	}

	var order map[string]any
	if err := json.NewDecoder(resp.Body).Decode(&order); err != nil {
		return nil, fmt.Errorf("%w: decode response: %v", ErrAPI, err)
	}
	return order, nil
}

// PlantSearchClient calls the plant-search service.
type PlantSearchClient struct {
	baseURL    string
	httpClient *http.Client
}

func NewPlantSearchClient(baseURL string, timeout time.Duration) *PlantSearchClient {
	if timeout <= 0 {
		timeout = defaultHTTPTimeout
	}
	return &PlantSearchClient{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: timeout},
	}
}

// PlantSearchQuery filters the search. CareLevel accepts multiple levels
// separated by ";" and is forwarded as-is.
type PlantSearchQuery struct {
	MinPrice  float64
	MaxPrice  float64
	CareLevel string
}

// Search returns the matching plants exactly as the service reported them.
func (c *PlantSearchClient) Search(ctx context.Context, q PlantSearchQuery) ([]any, error) {
	params := url.Values{}
	if q.MinPrice > 0 {
		params.Set("min_price", strconv.FormatFloat(q.MinPrice, 'f', -1, 64))
	}
	if q.MaxPrice > 0 {
		params.Set("max_price", strconv.FormatFloat(q.MaxPrice, 'f', -1, 64))
	}
	if q.CareLevel != "" {
		params.Set("care_level", q.CareLevel)
	}

	endpoint := c.baseURL + "/search"
	if enc := params.Encode(); enc != "" {
		endpoint += "?" + enc
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrAPI, err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrConnectivity, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: status %d", ErrAPI, resp.StatusCode)
	}

	var plants []any
	if err := json.NewDecoder(resp.Body).Decode(&plants); err != nil {
		return nil, fmt.Errorf("%w: decode response: %v", ErrAPI, err)
	}
	return plants, nil
}
