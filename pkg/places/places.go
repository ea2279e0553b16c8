package places

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"reviewfunnel/pkg/config"

	"go.uber.org/fx"
)

var Module = fx.Module("places",
	fx.Provide(New),
)

// Snapshot is the point-in-time business data captured at signup. The lookup
// provider itself is an external collaborator; only these fields are read.
type Snapshot struct {
	Name         string  `json:"name"`
	Rating       float64 `json:"rating"`
	ReviewCount  int64   `json:"review_count"`
	ReferenceURL string  `json:"url"`
}

type Lookup interface {
	Lookup(ctx context.Context, businessID string) (*Snapshot, error)
}

type client struct {
	baseURL string
	apiKey  string
	http    *http.Client
}

func New(cfg *config.Config) Lookup {
	timeout := cfg.Places.Timeout
	if timeout == 0 {
		timeout = 10 * time.Second
	}

	return &client{
		baseURL: cfg.Places.BaseURL,
		apiKey:  cfg.Places.APIKey,
		http:    &http.Client{Timeout: timeout},
	}
}

func (c *client) Lookup(ctx context.Context, businessID string) (*Snapshot, error) {
	u := fmt.Sprintf("%s/places/%s?key=%s", c.baseURL, url.PathEscape(businessID), url.QueryEscape(c.apiKey))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, err
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("places: unexpected status %d", resp.StatusCode)
	}

	var snap Snapshot
	if err := json.NewDecoder(resp.Body).Decode(&snap); err != nil {
		return nil, err
	}

	return &snap, nil
}
