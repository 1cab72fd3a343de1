package blob_test

import (
	"bytes"
	"io"
	"mime/multipart"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/athletereach/outreach/pkg/blob"
)

func createFileHeader(t *testing.T, filename string, content []byte) *multipart.FileHeader {
	t.Helper()

	body := new(bytes.Buffer)
	writer := multipart.NewWriter(body)

	part, err := writer.CreateFormFile("file", filename)
	require.NoError(t, err)
	_, err = part.Write(content)
	require.NoError(t, err)
	require.NoError(t, writer.Close())

	req := &http.Request{
		Method: "POST",
		Header: http.Header{
			"Content-Type": []string{writer.FormDataContentType()},
		},
		Body: io.NopCloser(body),
	}
	require.NoError(t, req.ParseMultipartForm(32<<20))

	files := req.MultipartForm.File["file"]
	require.NotEmpty(t, files)
	return files[0]
}

func TestSanitizeFilename(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"plain filename", "transcript.pdf", "transcript.pdf"},
		{"path traversal", "../../../etc/passwd", "passwd"},
		{"windows path", "C:\\Windows\\file.txt", "file.txt"},
		{"null bytes", "file\x00.txt", "file.txt"},
		{"empty", "", "unnamed"},
		{"dot", ".", "unnamed"},
		{"dot dot", "..", "unnamed"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.expected, blob.SanitizeFilename(tt.input))
		})
	}
}

func TestDetectContentType(t *testing.T) {
	t.Parallel()

	t.Run("detects pdf from magic bytes", func(t *testing.T) {
		t.Parallel()

		fh := createFileHeader(t, "renamed.txt", []byte("%PDF-1.4\n%fake pdf content"))
		contentType, err := blob.DetectContentType(fh)
		require.NoError(t, err)
		assert.Equal(t, "application/pdf", contentType)
	})

	t.Run("nil header", func(t *testing.T) {
		t.Parallel()

		_, err := blob.DetectContentType(nil)
		assert.ErrorIs(t, err, blob.ErrNilFileHeader)
	})
}

func TestValidateSize(t *testing.T) {
	t.Parallel()

	fh := createFileHeader(t, "notes.txt", bytes.Repeat([]byte("a"), 100))

	assert.NoError(t, blob.ValidateSize(fh, 100))
	assert.ErrorIs(t, blob.ValidateSize(fh, 99), blob.ErrFileTooLarge)
	assert.ErrorIs(t, blob.ValidateSize(nil, 100), blob.ErrNilFileHeader)
}

func TestValidateContentType(t *testing.T) {
	t.Parallel()

	fh := createFileHeader(t, "doc.pdf", []byte("%PDF-1.4\ncontent"))

	assert.NoError(t, blob.ValidateContentType(fh, "application/pdf", "image/png"))
	assert.NoError(t, blob.ValidateContentType(fh))
	assert.ErrorIs(t, blob.ValidateContentType(fh, "image/png"), blob.ErrContentTypeNotAllowed)
}
