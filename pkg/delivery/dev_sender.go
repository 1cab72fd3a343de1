package delivery

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/athletereach/outreach/pkg/rawemail"
)

// DevSender implements Client for local development. It decodes the raw
// payload and writes the RFC822 message as an .eml file next to a JSON
// metadata file instead of calling the provider.
type DevSender struct {
	dir string
}

// NewDevSender creates a development delivery client that saves messages to
// disk. The directory is created on first delivery if needed.
func NewDevSender(dir string) *DevSender {
	return &DevSender{dir: dir}
}

type devMetadata struct {
	Timestamp string   `json:"timestamp"`
	To        []string `json:"to"`
	ThreadID  string   `json:"thread_id,omitempty"`
	MessageID string   `json:"message_id"`
}

func (d *DevSender) Deliver(ctx context.Context, msg rawemail.TransportMessage) (string, error) {
	if msg.Raw == "" {
		return "", fmt.Errorf("%w: %w", ErrDelivery, ErrEmptyMessage)
	}

	decoded, err := base64.RawURLEncoding.DecodeString(msg.Raw)
	if err != nil {
		return "", fmt.Errorf("%w: payload is not url-safe base64: %w", ErrDelivery, err)
	}

	if err := os.MkdirAll(d.dir, 0o755); err != nil {
		return "", fmt.Errorf("%w: failed to create directory: %w", ErrDelivery, err)
	}

	now := time.Now()
	id := "dev-" + uuid.NewString()
	base := fmt.Sprintf("%s_%s", now.Format("2006_01_02_150405"), strings.ReplaceAll(id, "-", "_"))

	if err := os.WriteFile(filepath.Join(d.dir, base+".eml"), decoded, 0o644); err != nil {
		return "", fmt.Errorf("%w: failed to write message file: %w", ErrDelivery, err)
	}

	meta, err := json.MarshalIndent(devMetadata{
		Timestamp: now.Format(time.RFC3339),
		To:        msg.To,
		ThreadID:  msg.ThreadID,
		MessageID: id,
	}, "", "  ")
	if err != nil {
		return "", fmt.Errorf("%w: failed to marshal metadata: %w", ErrDelivery, err)
	}
	if err := os.WriteFile(filepath.Join(d.dir, base+".json"), meta, 0o644); err != nil {
		return "", fmt.Errorf("%w: failed to write metadata file: %w", ErrDelivery, err)
	}

	return id, nil
}
