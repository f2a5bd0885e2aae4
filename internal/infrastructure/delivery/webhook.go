package delivery

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"essay-duet-api/internal/domain/service"
)

var tracer = otel.Tracer("delivery")

// WebhookNotifier 通过 HTTP 回调把通知推给前端网关
type WebhookNotifier struct {
	url        string
	httpClient *http.Client
}

// NewWebhookNotifier 创建 Webhook 投递器
func NewWebhookNotifier(url string, timeout time.Duration) *WebhookNotifier {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &WebhookNotifier{
		url:        url,
		httpClient: &http.Client{Timeout: timeout},
	}
}

// webhookPayload 回调请求体
type webhookPayload struct {
	Recipient string `json:"recipient"`
	Intent    string `json:"intent"`
	EssayID   string `json:"essay_id"`
	Text      string `json:"text"`
}

// Deliver 投递单条通知，非 2xx 响应视为失败
func (w *WebhookNotifier) Deliver(ctx context.Context, n service.Notification) error {
	ctx, span := tracer.Start(ctx, "delivery.webhook.Deliver")
	span.SetAttributes(
		attribute.String("notify.intent", string(n.Intent)),
		attribute.String("notify.recipient", n.Recipient),
	)
	defer span.End()

	body, err := json.Marshal(webhookPayload{
		Recipient: n.Recipient,
		Intent:    string(n.Intent),
		EssayID:   n.EssayID,
		Text:      RenderText(n),
	})
	if err != nil {
		return fmt.Errorf("failed to marshal webhook payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, w.url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to build webhook request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := w.httpClient.Do(req)
	if err != nil {
		span.RecordError(err)
		return fmt.Errorf("webhook request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		err := fmt.Errorf("webhook returned status %d", resp.StatusCode)
		span.RecordError(err)
		return err
	}
	return nil
}
