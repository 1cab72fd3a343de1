package email_test

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/athletereach/outreach/pkg/email"
)

func TestSendEmailParams_Validate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		params  email.SendEmailParams
		wantErr bool
	}{
		{
			name: "valid params",
			params: email.SendEmailParams{
				SendTo:   "user@example.com",
				Subject:  "Test Subject",
				BodyHTML: "<p>Hello</p>",
			},
		},
		{
			name: "valid params with tag",
			params: email.SendEmailParams{
				SendTo:   "coach@stateu.edu",
				Subject:  "Recruiting inquiry",
				BodyHTML: "<p>Hello Coach</p>",
				Tag:      "outreach",
			},
		},
		{
			name: "missing recipient",
			params: email.SendEmailParams{
				Subject:  "Test Subject",
				BodyHTML: "<p>Hello</p>",
			},
			wantErr: true,
		},
		{
			name: "invalid recipient address",
			params: email.SendEmailParams{
				SendTo:   "not-an-email",
				Subject:  "Test Subject",
				BodyHTML: "<p>Hello</p>",
			},
			wantErr: true,
		},
		{
			name: "missing subject",
			params: email.SendEmailParams{
				SendTo:   "user@example.com",
				BodyHTML: "<p>Hello</p>",
			},
			wantErr: true,
		},
		{
			name: "missing body",
			params: email.SendEmailParams{
				SendTo:  "user@example.com",
				Subject: "Test Subject",
			},
			wantErr: true,
		},
		{
			name: "whitespace only subject",
			params: email.SendEmailParams{
				SendTo:   "user@example.com",
				Subject:  "   ",
				BodyHTML: "<p>Hello</p>",
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			err := tt.params.Validate()
			if tt.wantErr {
				assert.ErrorIs(t, err, email.ErrInvalidParams)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestDevSender_SendEmail(t *testing.T) {
	t.Parallel()

	t.Run("writes html and metadata files", func(t *testing.T) {
		t.Parallel()

		dir := t.TempDir()
		sender := email.NewDevSender(dir)

		err := sender.SendEmail(context.Background(), email.SendEmailParams{
			SendTo:   "coach@stateu.edu",
			Subject:  "Recruiting inquiry",
			BodyHTML: "<p>Hello Coach</p>",
			Tag:      "outreach",
		})
		require.NoError(t, err)

		entries, err := os.ReadDir(dir)
		require.NoError(t, err)
		require.Len(t, entries, 2)

		var htmlPath, jsonPath string
		for _, entry := range entries {
			switch filepath.Ext(entry.Name()) {
			case ".html":
				htmlPath = filepath.Join(dir, entry.Name())
			case ".json":
				jsonPath = filepath.Join(dir, entry.Name())
			}
		}
		require.NotEmpty(t, htmlPath)
		require.NotEmpty(t, jsonPath)

		body, err := os.ReadFile(htmlPath)
		require.NoError(t, err)
		assert.Equal(t, "<p>Hello Coach</p>", string(body))

		raw, err := os.ReadFile(jsonPath)
		require.NoError(t, err)
		var meta map[string]string
		require.NoError(t, json.Unmarshal(raw, &meta))
		assert.Equal(t, "coach@stateu.edu", meta["send_to"])
		assert.Equal(t, "Recruiting inquiry", meta["subject"])
		assert.Equal(t, "outreach", meta["tag"])
	})

	t.Run("sanitizes subject into filename", func(t *testing.T) {
		t.Parallel()

		dir := t.TempDir()
		sender := email.NewDevSender(dir)

		err := sender.SendEmail(context.Background(), email.SendEmailParams{
			SendTo:   "coach@stateu.edu",
			Subject:  "Hello / World?!",
			BodyHTML: "<p>body</p>",
		})
		require.NoError(t, err)

		entries, err := os.ReadDir(dir)
		require.NoError(t, err)
		for _, entry := range entries {
			assert.NotContains(t, entry.Name(), "/")
			assert.NotContains(t, entry.Name(), "?")
			assert.Equal(t, strings.ToLower(entry.Name()), entry.Name())
		}
	})

	t.Run("rejects invalid params", func(t *testing.T) {
		t.Parallel()

		sender := email.NewDevSender(t.TempDir())
		err := sender.SendEmail(context.Background(), email.SendEmailParams{
			Subject:  "missing recipient",
			BodyHTML: "<p>body</p>",
		})
		assert.ErrorIs(t, err, email.ErrInvalidParams)
	})
}
