package rawemail

import (
	"crypto/rand"
	"encoding/base64"
	"encoding/hex"
	"errors"
	"fmt"
	"mime"
	"mime/quotedprintable"
	"strings"
)

// Email is the rendered content a composed message is built from.
type Email struct {
	To       []string
	Subject  string
	HTMLBody string
}

// Attachment is a file embedded into the outgoing message.
// ContentType defaults to application/octet-stream when empty.
type Attachment struct {
	Filename    string
	ContentType string
	Data        []byte
}

// AddressPolicy controls the sender-side headers of a composed message.
// BccSelf appends the From address as Bcc so the user keeps a copy of every
// outreach email in their own mailbox.
type AddressPolicy struct {
	From    string
	ReplyTo string
	BccSelf bool
}

// TransportMessage is the provider-ready payload. Raw holds the full RFC822
// message encoded with URL-safe base64 (standard alphabet with '+' mapped to
// '-', '/' to '_', and padding stripped), the exact format the mailbox
// provider's raw-message ingestion expects. ThreadID optionally targets an
// existing conversation.
type TransportMessage struct {
	To       []string
	Raw      string
	ThreadID string
}

// base64 line length mandated by RFC 2045 for encoded attachment bodies.
const wrapAt = 76

// Compose builds a transport-ready multipart message from rendered email
// content. It is all-or-nothing: any invalid input returns an error without
// producing a partial message. The only non-deterministic element is the
// randomly generated MIME boundary; the content itself is a pure transform of
// the inputs, so re-running Compose on the same inputs is always safe.
func Compose(in Email, attachments []Attachment, policy AddressPolicy) (TransportMessage, error) {
	if len(in.To) == 0 {
		return TransportMessage{}, errors.Join(ErrCompose, ErrNoRecipients)
	}
	if strings.TrimSpace(in.Subject) == "" {
		return TransportMessage{}, errors.Join(ErrCompose, ErrEmptySubject)
	}
	for i, att := range attachments {
		if att.Filename == "" {
			return TransportMessage{}, errors.Join(ErrCompose, ErrInvalidAttachment,
				fmt.Errorf("attachment %d has no filename", i))
		}
		if len(att.Data) == 0 {
			return TransportMessage{}, errors.Join(ErrCompose, ErrInvalidAttachment,
				fmt.Errorf("attachment %q is empty", att.Filename))
		}
	}

	boundary, err := randomBoundary()
	if err != nil {
		return TransportMessage{}, errors.Join(ErrCompose, err)
	}

	var sb strings.Builder

	writeHeader := func(name, value string) {
		sb.WriteString(name)
		sb.WriteString(": ")
		sb.WriteString(value)
		sb.WriteString("\r\n")
	}

	if policy.From != "" {
		writeHeader("From", policy.From)
	}
	writeHeader("To", strings.Join(in.To, ", "))
	if policy.ReplyTo != "" {
		writeHeader("Reply-To", policy.ReplyTo)
	}
	if policy.BccSelf && policy.From != "" {
		writeHeader("Bcc", policy.From)
	}
	writeHeader("Subject", mime.QEncoding.Encode("utf-8", in.Subject))
	writeHeader("MIME-Version", "1.0")
	writeHeader("Content-Type", fmt.Sprintf("multipart/mixed; boundary=%q", boundary))
	sb.WriteString("\r\n")

	// HTML body part.
	sb.WriteString("--" + boundary + "\r\n")
	writeHeader("Content-Type", `text/html; charset="utf-8"`)
	writeHeader("Content-Transfer-Encoding", "quoted-printable")
	sb.WriteString("\r\n")
	if err := writeQuotedPrintable(&sb, in.HTMLBody); err != nil {
		return TransportMessage{}, errors.Join(ErrCompose, err)
	}
	sb.WriteString("\r\n")

	// One part per attachment, base64-encoded.
	for _, att := range attachments {
		contentType := att.ContentType
		if contentType == "" {
			contentType = "application/octet-stream"
		}

		sb.WriteString("--" + boundary + "\r\n")
		writeHeader("Content-Type", fmt.Sprintf("%s; name=%q", contentType, att.Filename))
		writeHeader("Content-Disposition", fmt.Sprintf("attachment; filename=%q", att.Filename))
		writeHeader("Content-Transfer-Encoding", "base64")
		sb.WriteString("\r\n")
		writeWrapped(&sb, base64.StdEncoding.EncodeToString(att.Data))
		sb.WriteString("\r\n")
	}

	sb.WriteString("--" + boundary + "--\r\n")

	return TransportMessage{
		To:  in.To,
		Raw: base64.RawURLEncoding.EncodeToString([]byte(sb.String())),
	}, nil
}

// randomBoundary returns a 32-char hex boundary. Hex output cannot collide
// with base64 or quoted-printable part content by accident in practice, and
// never needs quoting beyond what Compose already applies.
func randomBoundary() (string, error) {
	var buf [16]byte
	if _, err := rand.Read(buf[:]); err != nil {
		return "", fmt.Errorf("failed to generate boundary: %w", err)
	}
	return hex.EncodeToString(buf[:]), nil
}

func writeQuotedPrintable(sb *strings.Builder, body string) error {
	w := quotedprintable.NewWriter(sb)
	if _, err := w.Write([]byte(body)); err != nil {
		return fmt.Errorf("failed to encode html body: %w", err)
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("failed to finalize html body: %w", err)
	}
	return nil
}

// writeWrapped emits encoded with CRLF line breaks every wrapAt characters.
func writeWrapped(sb *strings.Builder, encoded string) {
	for len(encoded) > wrapAt {
		sb.WriteString(encoded[:wrapAt])
		sb.WriteString("\r\n")
		encoded = encoded[wrapAt:]
	}
	if len(encoded) > 0 {
		sb.WriteString(encoded)
		sb.WriteString("\r\n")
	}
}
