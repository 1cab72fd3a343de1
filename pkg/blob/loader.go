package blob

import (
	"context"
	"fmt"
	"io"

	"github.com/athletereach/outreach/pkg/rawemail"
)

// DefaultMaxAttachmentSize bounds a single loaded attachment.
// Mailbox providers reject messages around 25MB total, so a lower per-file
// cap keeps composed messages within provider limits.
const DefaultMaxAttachmentSize = 10 << 20

// Loader reads stored blobs into email attachments.
type Loader struct {
	storage  Storage
	maxBytes int64
}

// LoaderOption configures a Loader.
type LoaderOption func(*Loader)

// WithMaxAttachmentSize overrides the per-attachment size cap.
func WithMaxAttachmentSize(maxBytes int64) LoaderOption {
	return func(l *Loader) {
		if maxBytes > 0 {
			l.maxBytes = maxBytes
		}
	}
}

// NewLoader creates a Loader backed by the given storage.
func NewLoader(storage Storage, opts ...LoaderOption) (*Loader, error) {
	if storage == nil {
		return nil, ErrInvalidConfig
	}

	l := &Loader{
		storage:  storage,
		maxBytes: DefaultMaxAttachmentSize,
	}

	for _, opt := range opts {
		opt(l)
	}

	return l, nil
}

// Load reads the blob stored under key into an attachment payload.
func (l *Loader) Load(ctx context.Context, key string) (rawemail.Attachment, error) {
	rc, obj, err := l.storage.Open(ctx, key)
	if err != nil {
		return rawemail.Attachment{}, err
	}
	defer func() { _ = rc.Close() }()

	// Read one byte past the cap to distinguish at-limit from over-limit.
	data, err := io.ReadAll(io.LimitReader(rc, l.maxBytes+1))
	if err != nil {
		return rawemail.Attachment{}, fmt.Errorf("%w: %v", ErrFailedToReadFile, err)
	}
	if int64(len(data)) > l.maxBytes {
		return rawemail.Attachment{}, fmt.Errorf("%w: %s exceeds %d bytes", ErrFileTooLarge, key, l.maxBytes)
	}

	return rawemail.Attachment{
		Filename:    obj.Filename,
		ContentType: obj.ContentType,
		Data:        data,
	}, nil
}
