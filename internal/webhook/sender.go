package webhook

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"io"
	"net/http"
	"time"

	"github.com/hashicorp/go-retryablehttp"
)

const (
	userAgent = "chainhook/1.0"

	headerDeliveryID = "X-Chainhook-Delivery"
	headerWebhookID  = "X-Chainhook-Webhook"
	headerEventID    = "X-Chainhook-Event"
	headerTimestamp  = "X-Chainhook-Timestamp"
	headerSignature  = "X-Chainhook-Signature"

	// maxResponseBytes caps how much of a subscriber's response body is
	// persisted with the delivery record.
	maxResponseBytes = 2048
)

// deliveryPayload is the wire format POSTed to subscribers.
type deliveryPayload struct {
	ID        string          `json:"id"`
	Type      string          `json:"type"`
	Timestamp string          `json:"timestamp"`
	Data      json.RawMessage `json:"data"`
}

// disableTransportRetries turns off retryablehttp's own retry loop. The
// delivery state machine owns retries; a transport-level retry would count
// as a single attempt while hitting the subscriber more than once.
func disableTransportRetries(client *retryablehttp.Client) *retryablehttp.Client {
	client.RetryMax = 0
	client.CheckRetry = func(ctx context.Context, resp *http.Response, err error) (bool, error) {
		return false, err
	}
	return client
}

// signPayload computes the hex-encoded HMAC-SHA256 of the exact serialized
// body using the subscription secret.
func signPayload(secret string, body []byte) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(body)
	return hex.EncodeToString(mac.Sum(nil))
}

// truncate clips s to maxResponseBytes.
func truncate(s string) string {
	if len(s) > maxResponseBytes {
		return s[:maxResponseBytes]
	}
	return s
}

// send performs one HTTP delivery attempt. It returns the response status
// code and (truncated) body when a response was received, or a non-nil error
// when the request itself failed (timeout, connection error). Interpreting
// non-2xx status codes is left to the caller.
func (s *service) send(ctx context.Context, delivery Delivery, sub Subscription, event Event) (int, string, error) {
	body, err := json.Marshal(deliveryPayload{
		ID:        event.ID.String(),
		Type:      event.Kind,
		Timestamp: s.now().UTC().Format(time.RFC3339),
		Data:      event.Payload,
	})
	if err != nil {
		return 0, "", err
	}

	ctx, cancel := context.WithTimeout(ctx, s.requestTimeout)
	defer cancel()

	req, err := retryablehttp.NewRequestWithContext(ctx, http.MethodPost, sub.URL, body)
	if err != nil {
		return 0, "", err
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set(headerDeliveryID, delivery.ID.String())
	req.Header.Set(headerWebhookID, sub.ID.String())
	req.Header.Set(headerEventID, event.ID.String())
	req.Header.Set(headerTimestamp, s.now().UTC().Format(time.RFC3339))

	if sub.Secret != "" {
		req.Header.Set(headerSignature, signPayload(sub.Secret, body))
	}

	// Subscription-defined headers win over engine-set ones.
	for name, value := range sub.Headers {
		req.Header.Set(name, value)
	}

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return 0, "", err
	}
	defer resp.Body.Close()

	raw, _ := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	return resp.StatusCode, string(raw), nil
}
