package delivery

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"golang.org/x/oauth2"

	"github.com/athletereach/outreach/pkg/rawemail"
)

// GmailConfig holds the raw-ingestion endpoint settings for the connected
// mailbox. The endpoint is configurable so tests and self-hosted gateways can
// point elsewhere.
type GmailConfig struct {
	SendEndpoint string        `env:"GMAIL_SEND_ENDPOINT" envDefault:"https://gmail.googleapis.com/gmail/v1/users/me/messages/send"`
	Timeout      time.Duration `env:"GMAIL_SEND_TIMEOUT" envDefault:"30s"`
}

// GmailClient delivers composed messages through the provider's raw-message
// ingestion API. Token refresh is handled entirely by the oauth2 transport;
// this client never touches credentials directly.
type GmailClient struct {
	httpClient *http.Client
	endpoint   string
	timeout    time.Duration
}

// NewGmailClient creates a Client that authenticates every request with
// tokens from ts.
func NewGmailClient(cfg GmailConfig, ts oauth2.TokenSource) (*GmailClient, error) {
	if cfg.SendEndpoint == "" {
		return nil, fmt.Errorf("%w: SendEndpoint is required", ErrInvalidConfig)
	}
	if ts == nil {
		return nil, fmt.Errorf("%w: token source is required", ErrInvalidConfig)
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}

	return &GmailClient{
		httpClient: oauth2.NewClient(context.Background(), ts),
		endpoint:   cfg.SendEndpoint,
		timeout:    timeout,
	}, nil
}

type sendRequest struct {
	Raw      string `json:"raw"`
	ThreadID string `json:"threadId,omitempty"`
}

type sendResponse struct {
	ID string `json:"id"`
}

type errorResponse struct {
	Error struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

// Deliver posts the base64url-encoded message and returns the provider
// message id. A call that exceeds the configured timeout fails like any other
// delivery error; it is never left in flight from the caller's point of view.
func (c *GmailClient) Deliver(ctx context.Context, msg rawemail.TransportMessage) (string, error) {
	if msg.Raw == "" {
		return "", errors.Join(ErrDelivery, ErrEmptyMessage)
	}

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	body, err := json.Marshal(sendRequest{Raw: msg.Raw, ThreadID: msg.ThreadID})
	if err != nil {
		return "", errors.Join(ErrDelivery, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return "", errors.Join(ErrDelivery, err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", errors.Join(ErrDelivery, err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return "", errors.Join(ErrDelivery, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		var provider errorResponse
		if json.Unmarshal(respBody, &provider) == nil && provider.Error.Message != "" {
			return "", fmt.Errorf("%w: provider rejected message: %d - %s",
				ErrDelivery, provider.Error.Code, provider.Error.Message)
		}
		return "", fmt.Errorf("%w: unexpected status %d", ErrDelivery, resp.StatusCode)
	}

	var out sendResponse
	if err := json.Unmarshal(respBody, &out); err != nil {
		return "", errors.Join(ErrDelivery, err)
	}
	if out.ID == "" {
		return "", fmt.Errorf("%w: provider returned no message id", ErrDelivery)
	}
	return out.ID, nil
}
