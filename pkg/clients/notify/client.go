// Package notify pushes report summaries to an operator-configured webhook.
package notify

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/woodtrack/sawmill/internal/config"
)

// Client delivers notification messages.
type Client interface {
	Push(ctx context.Context, title, text string) error
}

// WebhookClient is a resty-backed implementation of Client posting JSON
// payloads to a single webhook URL.
type WebhookClient struct {
	httpClient *resty.Client
	url        string
}

// NewClient builds a webhook client from the provided configuration values.
func NewClient(cfg config.NotifyConfig) *WebhookClient {
	restyClient := resty.New()
	restyClient.
		SetHeader("Content-Type", "application/json").
		SetTimeout(15 * time.Second)
	if cfg.Token != "" {
		restyClient.SetHeader("Authorization", fmt.Sprintf("Bearer %s", cfg.Token))
	}

	return &WebhookClient{
		httpClient: restyClient,
		url:        cfg.WebhookURL,
	}
}

type pushPayload struct {
	Title string `json:"title"`
	Text  string `json:"text"`
}

// Push posts one message to the webhook.
func (c *WebhookClient) Push(ctx context.Context, title, text string) error {
	resp, err := c.httpClient.R().
		SetContext(ctx).
		SetBody(pushPayload{Title: title, Text: text}).
		Post(c.url)
	if err != nil {
		return fmt.Errorf("push notification: %w", err)
	}

	if resp.StatusCode() >= http.StatusBadRequest {
		return fmt.Errorf("notification webhook error: status=%d, body=%s", resp.StatusCode(), resp.String())
	}

	return nil
}
