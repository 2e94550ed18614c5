package provider

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"
)

// RatesConfig carries the settings of the currency rate adapter.
type RatesConfig struct {
	BaseURL    string // e.g. https://api.exchangerate-api.com/v4/latest
	Timeout    time.Duration
	HTTPClient *http.Client
}

// Rates fetches the rate table for a base currency. The caller projects out
// the target code it needs.
type Rates struct {
	client  *http.Client
	baseURL string
	timeout time.Duration
}

// NewRates builds the adapter.
func NewRates(cfg RatesConfig) *Rates {
	client := cfg.HTTPClient
	if client == nil {
		client = http.DefaultClient
	}
	return &Rates{
		client:  client,
		baseURL: strings.TrimSuffix(cfg.BaseURL, "/"),
		timeout: cfg.Timeout,
	}
}

// Lookup returns the target-code to rate mapping for the base currency.
func (r *Rates) Lookup(ctx context.Context, base string) (map[string]float64, error) {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	url := fmt.Sprintf("%s/%s", r.baseURL, base)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, unknownError(NameRates, err.Error())
	}

	resp, err := r.client.Do(req)
	if err != nil {
		return nil, classify(NameRates, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, statusError(NameRates, resp.StatusCode)
	}

	var body struct {
		Rates map[string]float64 `json:"rates"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, unknownError(NameRates, "malformed rates payload: "+err.Error())
	}
	if len(body.Rates) == 0 {
		return nil, unknownError(NameRates, "response missing rates")
	}
	return body.Rates, nil
}
