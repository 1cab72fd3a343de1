package blob_test

import (
	"context"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/athletereach/outreach/pkg/blob"
)

func TestNewLocalStorage(t *testing.T) {
	t.Parallel()

	t.Run("creates base directory", func(t *testing.T) {
		t.Parallel()

		dir := t.TempDir() + "/nested/store"
		storage, err := blob.NewLocalStorage(dir, "/attachments/")
		require.NoError(t, err)
		assert.NotNil(t, storage)
	})

	t.Run("empty base dir rejected", func(t *testing.T) {
		t.Parallel()

		_, err := blob.NewLocalStorage("", "/attachments/")
		assert.ErrorIs(t, err, blob.ErrInvalidConfig)
	})
}

func TestLocalStorage_SaveAndOpen(t *testing.T) {
	t.Parallel()

	storage, err := blob.NewLocalStorage(t.TempDir(), "/attachments/")
	require.NoError(t, err)

	content := []byte("%PDF-1.4\ntranscript content")
	fh := createFileHeader(t, "transcript.pdf", content)

	obj, err := storage.Save(context.Background(), fh, "user-1/transcript.pdf")
	require.NoError(t, err)
	assert.Equal(t, "user-1/transcript.pdf", obj.Key)
	assert.Equal(t, "transcript.pdf", obj.Filename)
	assert.Equal(t, int64(len(content)), obj.Size)
	assert.Equal(t, "application/pdf", obj.ContentType)

	rc, opened, err := storage.Open(context.Background(), "user-1/transcript.pdf")
	require.NoError(t, err)
	defer func() { _ = rc.Close() }()

	data, err := io.ReadAll(rc)
	require.NoError(t, err)
	assert.Equal(t, content, data)
	assert.Equal(t, "transcript.pdf", opened.Filename)
	assert.Equal(t, int64(len(content)), opened.Size)
	assert.Equal(t, "application/pdf", opened.ContentType)
}

func TestLocalStorage_SaveDirectoryKey(t *testing.T) {
	t.Parallel()

	storage, err := blob.NewLocalStorage(t.TempDir(), "/attachments/")
	require.NoError(t, err)

	fh := createFileHeader(t, "schedule.png", []byte("\x89PNG\r\n\x1a\nfake"))

	obj, err := storage.Save(context.Background(), fh, "user-2/")
	require.NoError(t, err)
	assert.Equal(t, "user-2/schedule.png", obj.Key)
	assert.True(t, storage.Exists(context.Background(), "user-2/schedule.png"))
}

func TestLocalStorage_PathTraversal(t *testing.T) {
	t.Parallel()

	storage, err := blob.NewLocalStorage(t.TempDir(), "/attachments/")
	require.NoError(t, err)

	fh := createFileHeader(t, "evil.txt", []byte("payload"))

	_, err = storage.Save(context.Background(), fh, "../../outside.txt")
	assert.ErrorIs(t, err, blob.ErrInvalidKey)

	_, _, err = storage.Open(context.Background(), "../../etc/passwd")
	assert.ErrorIs(t, err, blob.ErrInvalidKey)

	assert.False(t, storage.Exists(context.Background(), "../../etc/passwd"))
}

func TestLocalStorage_Delete(t *testing.T) {
	t.Parallel()

	storage, err := blob.NewLocalStorage(t.TempDir(), "/attachments/")
	require.NoError(t, err)

	fh := createFileHeader(t, "notes.txt", []byte("some notes"))
	_, err = storage.Save(context.Background(), fh, "user-3/notes.txt")
	require.NoError(t, err)

	require.NoError(t, storage.Delete(context.Background(), "user-3/notes.txt"))
	assert.False(t, storage.Exists(context.Background(), "user-3/notes.txt"))

	err = storage.Delete(context.Background(), "user-3/notes.txt")
	assert.ErrorIs(t, err, blob.ErrBlobNotFound)
}

func TestLocalStorage_OpenMissing(t *testing.T) {
	t.Parallel()

	storage, err := blob.NewLocalStorage(t.TempDir(), "/attachments/")
	require.NoError(t, err)

	_, _, err = storage.Open(context.Background(), "user-4/missing.pdf")
	assert.ErrorIs(t, err, blob.ErrBlobNotFound)
}

func TestLocalStorage_URL(t *testing.T) {
	t.Parallel()

	storage, err := blob.NewLocalStorage(t.TempDir(), "/attachments")
	require.NoError(t, err)

	assert.Equal(t, "/attachments/user-1/transcript.pdf", storage.URL("user-1/transcript.pdf"))
	assert.Equal(t, "/absolute/path.pdf", storage.URL("/absolute/path.pdf"))
}
