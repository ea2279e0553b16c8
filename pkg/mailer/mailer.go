package mailer

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"reviewfunnel/pkg/config"

	"go.uber.org/fx"
)

var Module = fx.Module("mailer",
	fx.Provide(New),
)

// Email is a transactional message. Bodies are minimal text/html; template
// rendering lives outside this system.
type Email struct {
	From    string   `json:"from"`
	To      []string `json:"to"`
	Subject string   `json:"subject"`
	HTML    string   `json:"html,omitempty"`
	Text    string   `json:"text,omitempty"`
}

type Mailer interface {
	Send(ctx context.Context, email Email) error
}

type client struct {
	baseURL string
	apiKey  string
	from    string
	http    *http.Client
}

func New(cfg *config.Config) Mailer {
	return &client{
		baseURL: cfg.Mailer.BaseURL,
		apiKey:  cfg.Mailer.APIKey,
		from:    cfg.Mailer.From,
		http:    &http.Client{Timeout: 10 * time.Second},
	}
}

func (c *client) Send(ctx context.Context, email Email) error {
	if email.From == "" {
		email.From = c.from
	}

	body, err := json.Marshal(email)
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/emails", bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		b, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return fmt.Errorf("mailer: unexpected status %d: %s", resp.StatusCode, b)
	}

	return nil
}
