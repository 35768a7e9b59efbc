package bvc

import (
	"context"
	"fmt"
	"time"

	"MarketBoard/internal/domain/models"
	drepo "MarketBoard/internal/domain/repository"
	xhttp "MarketBoard/pkg/http"
)

// Client fetches the instrument collection from the exchange's market
// endpoint. The endpoint is read-only and unpaginated: one GET returns
// every symbol with its embedded history.
type Client struct {
	baseURL string
	client  *xhttp.Client
	nowFn   func() time.Time
}

// NewClient creates a market feed client.
func NewClient(baseURL string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Client{
		baseURL: baseURL,
		client:  xhttp.NewClient(xhttp.WithTimeout(timeout)),
		nowFn:   time.Now,
	}
}

// Fetch retrieves the full snapshot. Any transport or decode failure is
// returned as-is; the caller keeps its last-known-good dataset.
func (c *Client) Fetch(ctx context.Context) (*models.Snapshot, error) {
	if c.baseURL == "" {
		return nil, fmt.Errorf("market feed url not configured")
	}

	var snap models.Snapshot
	err := c.client.SendAndParse(ctx, &xhttp.RequestOptions{
		Method: xhttp.MethodGet,
		URL:    c.baseURL + "/market",
		Headers: map[string]string{
			"Accept": "application/json",
		},
	}, &snap)
	if err != nil {
		return nil, fmt.Errorf("fetch market data: %w", err)
	}

	snap.FetchedAt = c.nowFn()
	if snap.Count == 0 {
		snap.Count = len(snap.Data)
	}
	return &snap, nil
}

var _ drepo.MarketFeed = (*Client)(nil)
