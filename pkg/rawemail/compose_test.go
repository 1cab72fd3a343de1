package rawemail_test

import (
	"bytes"
	"encoding/base64"
	"io"
	"mime"
	"mime/multipart"
	"mime/quotedprintable"
	"net/mail"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/athletereach/outreach/pkg/rawemail"
)

func decodeRaw(t *testing.T, raw string) []byte {
	t.Helper()
	decoded, err := base64.RawURLEncoding.DecodeString(raw)
	require.NoError(t, err, "raw payload must be url-safe base64 without padding")
	return decoded
}

func TestCompose_ValidRFC822(t *testing.T) {
	t.Parallel()

	msg, err := rawemail.Compose(
		rawemail.Email{
			To:       []string{"coach@stateu.edu", "assistant@stateu.edu"},
			Subject:  "Recruiting interest",
			HTMLBody: "<p>Hello Coach</p>",
		},
		nil,
		rawemail.AddressPolicy{From: "athlete@example.com"},
	)
	require.NoError(t, err)
	assert.Equal(t, []string{"coach@stateu.edu", "assistant@stateu.edu"}, msg.To)

	parsed, err := mail.ReadMessage(bytes.NewReader(decodeRaw(t, msg.Raw)))
	require.NoError(t, err)

	assert.Equal(t, "athlete@example.com", parsed.Header.Get("From"))
	assert.Equal(t, "coach@stateu.edu, assistant@stateu.edu", parsed.Header.Get("To"))
	assert.Equal(t, "Recruiting interest", parsed.Header.Get("Subject"))
	assert.Equal(t, "1.0", parsed.Header.Get("MIME-Version"))
	assert.Empty(t, parsed.Header.Get("Bcc"))

	mediaType, params, err := mime.ParseMediaType(parsed.Header.Get("Content-Type"))
	require.NoError(t, err)
	assert.Equal(t, "multipart/mixed", mediaType)
	require.NotEmpty(t, params["boundary"])

	mr := multipart.NewReader(parsed.Body, params["boundary"])
	part, err := mr.NextPart()
	require.NoError(t, err)

	partType, _, err := mime.ParseMediaType(part.Header.Get("Content-Type"))
	require.NoError(t, err)
	assert.Equal(t, "text/html", partType)

	body, err := io.ReadAll(quotedprintable.NewReader(part))
	require.NoError(t, err)
	assert.Equal(t, "<p>Hello Coach</p>", string(body))

	_, err = mr.NextPart()
	assert.Equal(t, io.EOF, err, "body-only message has exactly one part")
}

func TestCompose_Attachments(t *testing.T) {
	t.Parallel()

	pdf := bytes.Repeat([]byte{0x25, 0x50, 0x44, 0x46}, 64)

	msg, err := rawemail.Compose(
		rawemail.Email{
			To:       []string{"coach@stateu.edu"},
			Subject:  "Highlights",
			HTMLBody: "<p>Film attached</p>",
		},
		[]rawemail.Attachment{
			{Filename: "highlights.pdf", ContentType: "application/pdf", Data: pdf},
			{Filename: "stats.bin", Data: []byte{0x01, 0x02}},
		},
		rawemail.AddressPolicy{From: "athlete@example.com"},
	)
	require.NoError(t, err)

	parsed, err := mail.ReadMessage(bytes.NewReader(decodeRaw(t, msg.Raw)))
	require.NoError(t, err)

	_, params, err := mime.ParseMediaType(parsed.Header.Get("Content-Type"))
	require.NoError(t, err)
	boundary := params["boundary"]

	mr := multipart.NewReader(parsed.Body, boundary)

	// Part 1: HTML body.
	part, err := mr.NextPart()
	require.NoError(t, err)
	partType, _, _ := mime.ParseMediaType(part.Header.Get("Content-Type"))
	assert.Equal(t, "text/html", partType)

	// Part 2: PDF attachment round-trips through base64.
	part, err = mr.NextPart()
	require.NoError(t, err)
	partType, partParams, _ := mime.ParseMediaType(part.Header.Get("Content-Type"))
	assert.Equal(t, "application/pdf", partType)
	assert.Equal(t, "highlights.pdf", partParams["name"])
	assert.Equal(t, "base64", part.Header.Get("Content-Transfer-Encoding"))
	assert.Contains(t, part.Header.Get("Content-Disposition"), "attachment")

	encoded, err := io.ReadAll(part)
	require.NoError(t, err)
	decoded, err := base64.StdEncoding.DecodeString(strings.ReplaceAll(string(encoded), "\r\n", ""))
	require.NoError(t, err)
	assert.Equal(t, pdf, decoded)

	// Part 3: attachment without explicit content type falls back to octet-stream.
	part, err = mr.NextPart()
	require.NoError(t, err)
	partType, _, _ = mime.ParseMediaType(part.Header.Get("Content-Type"))
	assert.Equal(t, "application/octet-stream", partType)

	_, err = mr.NextPart()
	assert.Equal(t, io.EOF, err)

	// Boundary markers: one opener per part plus a single closing marker.
	full := string(decodeRaw(t, msg.Raw))
	assert.Equal(t, 4, strings.Count(full, "--"+boundary), "3 openers + 1 terminator")
	assert.Equal(t, 1, strings.Count(full, "--"+boundary+"--"))
}

func TestCompose_BccSelf(t *testing.T) {
	t.Parallel()

	msg, err := rawemail.Compose(
		rawemail.Email{To: []string{"coach@stateu.edu"}, Subject: "Hi", HTMLBody: "<p>hi</p>"},
		nil,
		rawemail.AddressPolicy{From: "athlete@example.com", BccSelf: true},
	)
	require.NoError(t, err)

	parsed, err := mail.ReadMessage(bytes.NewReader(decodeRaw(t, msg.Raw)))
	require.NoError(t, err)
	assert.Equal(t, "athlete@example.com", parsed.Header.Get("Bcc"))
}

func TestCompose_Validation(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name        string
		in          rawemail.Email
		attachments []rawemail.Attachment
		wantErr     error
	}{
		{
			name:    "no recipients",
			in:      rawemail.Email{Subject: "Hi", HTMLBody: "x"},
			wantErr: rawemail.ErrNoRecipients,
		},
		{
			name:    "blank subject",
			in:      rawemail.Email{To: []string{"a@b.c"}, Subject: "   ", HTMLBody: "x"},
			wantErr: rawemail.ErrEmptySubject,
		},
		{
			name:        "attachment without filename",
			in:          rawemail.Email{To: []string{"a@b.c"}, Subject: "Hi", HTMLBody: "x"},
			attachments: []rawemail.Attachment{{Data: []byte{1}}},
			wantErr:     rawemail.ErrInvalidAttachment,
		},
		{
			name:        "empty attachment",
			in:          rawemail.Email{To: []string{"a@b.c"}, Subject: "Hi", HTMLBody: "x"},
			attachments: []rawemail.Attachment{{Filename: "empty.bin"}},
			wantErr:     rawemail.ErrInvalidAttachment,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			_, err := rawemail.Compose(tt.in, tt.attachments, rawemail.AddressPolicy{})
			require.Error(t, err)
			assert.ErrorIs(t, err, tt.wantErr)
			assert.ErrorIs(t, err, rawemail.ErrCompose)
		})
	}
}

func TestCompose_ContentStableAcrossRuns(t *testing.T) {
	t.Parallel()

	in := rawemail.Email{To: []string{"coach@stateu.edu"}, Subject: "Hi", HTMLBody: "<p>hi</p>"}

	first, err := rawemail.Compose(in, nil, rawemail.AddressPolicy{From: "a@b.c"})
	require.NoError(t, err)
	second, err := rawemail.Compose(in, nil, rawemail.AddressPolicy{From: "a@b.c"})
	require.NoError(t, err)

	// Boundaries are random so raw payloads differ, but decoded headers match.
	p1, err := mail.ReadMessage(bytes.NewReader(decodeRaw(t, first.Raw)))
	require.NoError(t, err)
	p2, err := mail.ReadMessage(bytes.NewReader(decodeRaw(t, second.Raw)))
	require.NoError(t, err)

	assert.Equal(t, p1.Header.Get("To"), p2.Header.Get("To"))
	assert.Equal(t, p1.Header.Get("Subject"), p2.Header.Get("Subject"))
}
