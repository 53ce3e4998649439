package notify

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/mamadbah2/herdsman/internal/domain/models"
	client "github.com/mamadbah2/herdsman/pkg/clients/slack"
)

// Notifier describes the delivery operations the scheduler can perform.
type Notifier interface {
	SendAlertDigest(ctx context.Context, alerts []models.Alert) error
}

// SlackNotifier delivers alert digests through a Slack incoming webhook.
type SlackNotifier struct {
	client client.Client
	logger *zap.Logger
}

// NewSlackNotifier wires a new notifier instance.
func NewSlackNotifier(client client.Client, logger *zap.Logger) *SlackNotifier {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SlackNotifier{client: client, logger: logger}
}

// SendAlertDigest posts one message summarizing the active high-severity
// alerts. Nothing is sent when the list is empty.
func (n *SlackNotifier) SendAlertDigest(ctx context.Context, alerts []models.Alert) error {
	urgent := make([]models.Alert, 0, len(alerts))
	for _, a := range alerts {
		if a.Status == models.AlertActive && a.Severity == models.SeverityHigh {
			urgent = append(urgent, a)
		}
	}
	if len(urgent) == 0 {
		n.logger.Debug("no high-severity alerts, digest skipped")
		return nil
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Herd attention digest: %d animals need action.\n", len(urgent))
	for _, a := range urgent {
		b.WriteString("• " + a.Message)
		if a.DueAt != nil {
			fmt.Fprintf(&b, " (due %s)", a.DueAt.Format("2006-01-02"))
		}
		b.WriteString("\n")
	}

	if err := n.client.PostMessage(ctx, b.String()); err != nil {
		return fmt.Errorf("send alert digest: %w", err)
	}

	n.logger.Info("alert digest sent", zap.Int("alerts", len(urgent)))
	return nil
}
