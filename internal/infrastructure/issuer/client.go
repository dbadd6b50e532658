// Package issuer talks to the external key-issuing endpoint. One POST per
// key; the service replies with either a minted key or a failure reason.
package issuer

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/keymint/storefront-system/internal/core/domain"
)

// Config holds the client settings. DefaultURL is used when a product tier
// carries no endpoint of its own. Timeout <= 0 disables the client
// deadline entirely; a hung call then blocks its purchase until the
// transport gives up.
type Config struct {
	DefaultURL string
	Timeout    time.Duration
}

// Client is the HTTP implementation of ports.KeyIssuer.
type Client struct {
	httpClient *http.Client
	defaultURL string
}

func NewClient(cfg Config) *Client {
	return &Client{
		httpClient: &http.Client{Timeout: cfg.Timeout},
		defaultURL: cfg.DefaultURL,
	}
}

type issueRequest struct {
	ProductName string `json:"productName"`
	Duration    string `json:"duration"`
}

type issueResponse struct {
	Success bool   `json:"success"`
	Key     string `json:"key,omitempty"`
	Error   string `json:"error,omitempty"`
}

// Issue requests one key for (productName, tier) from endpoint, falling
// back to the configured default URL when endpoint is empty. A non-2xx
// status or success:false is a failure; no retries are attempted.
func (c *Client) Issue(ctx context.Context, endpoint, productName string, tier domain.DurationTier) (string, error) {
	url := endpoint
	if url == "" {
		url = c.defaultURL
	}

	body, err := json.Marshal(issueRequest{ProductName: productName, Duration: string(tier)})
	if err != nil {
		return "", fmt.Errorf("issuer: encode request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("issuer: build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("issuer: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", fmt.Errorf("issuer: unexpected status %d", resp.StatusCode)
	}

	var out issueResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", fmt.Errorf("issuer: decode response: %w", err)
	}
	if !out.Success {
		if out.Error != "" {
			return "", fmt.Errorf("issuer: %s", out.Error)
		}
		return "", fmt.Errorf("issuer: service reported failure")
	}
	if out.Key == "" {
		return "", fmt.Errorf("issuer: success response without key")
	}
	return out.Key, nil
}
