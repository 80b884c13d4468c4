package events

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/atvirokodosprendimai/regintake/internal/core/domain"
)

const defaultWebhookTimeout = 10 * time.Second

const (
	headerTopic     = "X-Regintake-Topic"
	headerEventType = "X-Regintake-Event-Type"
	headerEventID   = "X-Regintake-Event-Id"
	headerRequestID = "X-Request-ID"
	headerSignature = "X-Hub-Signature-256"
)

// WebhookPublisher POSTs registration events to a configured endpoint, signed
// with HMAC-SHA256 over the body. Non-2xx responses are errors. Delivery is not
// retried.
type WebhookPublisher struct {
	url    string
	secret []byte
	client *http.Client
}

func NewWebhookPublisher(url, secret string, timeout time.Duration) *WebhookPublisher {
	if timeout <= 0 {
		timeout = defaultWebhookTimeout
	}
	return &WebhookPublisher{
		url:    url,
		secret: []byte(secret),
		client: &http.Client{Timeout: timeout},
	}
}

// Publish POSTs the signed envelope. The request id of the submission that
// produced the event is forwarded as X-Request-ID so the receiver can correlate
// it with the intake logs.
func (p *WebhookPublisher) Publish(ctx context.Context, topic string, event domain.EventEnvelope) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}

	sig := p.sign(payload)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.url, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set(headerTopic, topic)
	req.Header.Set(headerEventType, event.EventType)
	req.Header.Set(headerEventID, event.EventID)
	if event.RequestID != "" {
		req.Header.Set(headerRequestID, event.RequestID)
	}
	req.Header.Set(headerSignature, "sha256="+sig)

	resp, err := p.client.Do(req)
	if err != nil {
		return fmt.Errorf("send webhook: %w", err)
	}
	defer func() {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))
		resp.Body.Close()
	}()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("webhook returned status %d", resp.StatusCode)
	}
	return nil
}

// sign returns the lowercase hex-encoded HMAC-SHA256 of payload using p.secret.
func (p *WebhookPublisher) sign(payload []byte) string {
	mac := hmac.New(sha256.New, p.secret)
	mac.Write(payload)
	return hex.EncodeToString(mac.Sum(nil))
}
