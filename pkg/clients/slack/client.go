package slack

import (
	"context"
	"fmt"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/mamadbah2/herdsman/internal/config"
)

// Client exposes the Slack operations used by the application.
type Client interface {
	PostMessage(ctx context.Context, text string) error
}

// WebhookClient is a resty-backed incoming-webhook implementation of Client.
type WebhookClient struct {
	httpClient *resty.Client
	webhookURL string
}

// NewClient builds a Slack webhook client using the provided configuration.
func NewClient(cfg config.SlackConfig) *WebhookClient {
	restyClient := resty.New()
	restyClient.
		SetHeader("Content-Type", "application/json").
		SetTimeout(15 * time.Second)

	return &WebhookClient{
		httpClient: restyClient,
		webhookURL: cfg.WebhookURL,
	}
}

// PostMessage delivers a plain-text message to the configured webhook.
func (c *WebhookClient) PostMessage(ctx context.Context, text string) error {
	payload := map[string]any{"text": text}

	resp, err := c.httpClient.R().
		SetContext(ctx).
		SetBody(payload).
		Post(c.webhookURL)
	if err != nil {
		return fmt.Errorf("post slack message: %w", err)
	}
	if resp.IsError() {
		return fmt.Errorf("slack webhook returned %s: %s", resp.Status(), resp.String())
	}

	return nil
}
