// Package transport delivers sync operations to the remote sync service
// over HTTP. Remote outcomes are folded into the queue's sentinel error
// taxonomy so the drain loop never inspects HTTP specifics.
package transport

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/quizlight/recall-sync-engine/internal/core/domain"
	"github.com/quizlight/recall-sync-engine/internal/core/queue"
)

// TokenSource supplies the bearer token for outgoing requests. An empty
// token is sent as-is and rejected remotely, which the queue handles as an
// auth pause.
type TokenSource interface {
	Token() string
}

type HTTPTransport struct {
	baseURL string
	client  *http.Client
	tokens  TokenSource
}

func NewHTTPTransport(baseURL string, client *http.Client, tokens TokenSource) *HTTPTransport {
	if client == nil {
		client = &http.Client{Timeout: 30 * time.Second}
	}
	return &HTTPTransport{
		baseURL: baseURL,
		client:  client,
		tokens:  tokens,
	}
}

// operationEnvelope is the wire shape of one sync operation. The
// idempotency key rides both in the body and in a header so intermediaries
// can dedupe without parsing.
type operationEnvelope struct {
	Key        string          `json:"key"`
	EntityType string          `json:"entity_type"`
	EntityID   string          `json:"entity_id"`
	Kind       string          `json:"kind"`
	Payload    json.RawMessage `json:"payload,omitempty"`
	EnqueuedAt time.Time       `json:"enqueued_at"`
}

func (t *HTTPTransport) Send(ctx context.Context, op *domain.SyncOperation) error {
	body, err := json.Marshal(operationEnvelope{
		Key:        op.Key,
		EntityType: op.EntityType,
		EntityID:   op.EntityID,
		Kind:       string(op.Kind),
		Payload:    op.Payload,
		EnqueuedAt: op.EnqueuedAt,
	})
	if err != nil {
		return fmt.Errorf("%w: encode operation %s: %v", queue.ErrValidationRejected, op.Key, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, t.baseURL+"/sync/operations", bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("%w: build request: %v", queue.ErrNetwork, err)
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Idempotency-Key", op.Key)
	if t.tokens != nil {
		req.Header.Set("Authorization", "Bearer "+t.tokens.Token())
	}

	resp, err := t.client.Do(req)
	if err != nil {
		// Covers DNS failures, refused connections, timeouts and a
		// cancelled context alike.
		return fmt.Errorf("%w: %v", queue.ErrNetwork, err)
	}
	defer resp.Body.Close()

	// Drain so the connection can be reused.
	io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))

	return mapStatus(resp.StatusCode, op)
}

func mapStatus(status int, op *domain.SyncOperation) error {
	switch {
	case status >= 200 && status < 300:
		return nil
	case status == http.StatusUnauthorized || status == http.StatusForbidden:
		return fmt.Errorf("%w: remote returned %d", queue.ErrAuthRequired, status)
	case status == http.StatusConflict:
		return fmt.Errorf("%w: operation %s", queue.ErrConflictRejected, op.Key)
	case status == http.StatusBadRequest || status == http.StatusUnprocessableEntity:
		return fmt.Errorf("%w: remote returned %d for operation %s", queue.ErrValidationRejected, status, op.Key)
	default:
		// 5xx and anything unrecognized is assumed transient.
		return fmt.Errorf("%w: remote returned %d", queue.ErrNetwork, status)
	}
}
