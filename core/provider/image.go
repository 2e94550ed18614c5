package provider

import (
	"context"
	"io"
	"net/http"
	"time"
)

// ImageConfig carries the settings of the random image adapter.
type ImageConfig struct {
	URL        string // e.g. https://picsum.photos/800/600
	Timeout    time.Duration
	HTTPClient *http.Client
}

// Image resolves the random image endpoint to a final resource URL.
type Image struct {
	client  *http.Client
	url     string
	timeout time.Duration
}

// NewImage builds the adapter.
func NewImage(cfg ImageConfig) *Image {
	client := cfg.HTTPClient
	if client == nil {
		client = http.DefaultClient
	}
	return &Image{client: client, url: cfg.URL, timeout: cfg.Timeout}
}

// Fetch follows the endpoint's redirects and returns the final image URL.
// Success requires status exactly 200.
func (i *Image) Fetch(ctx context.Context) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, i.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, i.url, nil)
	if err != nil {
		return "", unknownError(NameImage, err.Error())
	}

	resp, err := i.client.Do(req)
	if err != nil {
		return "", classify(NameImage, err)
	}
	defer func() {
		_, _ = io.Copy(io.Discard, resp.Body)
		_ = resp.Body.Close()
	}()

	if resp.StatusCode != http.StatusOK {
		return "", statusError(NameImage, resp.StatusCode)
	}

	final := resp.Request.URL.String()
	if final == "" {
		return "", unknownError(NameImage, "response missing resource url")
	}
	return final, nil
}
