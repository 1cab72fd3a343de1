package blob_test

import (
	"bytes"
	"context"
	"io"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/smithy-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/athletereach/outreach/pkg/blob"
)

type mockS3Client struct {
	objects map[string][]byte
	types   map[string]string

	putErr    error
	getErr    error
	headErr   error
	deleteErr error
}

func newMockS3Client() *mockS3Client {
	return &mockS3Client{
		objects: make(map[string][]byte),
		types:   make(map[string]string),
	}
}

func (m *mockS3Client) PutObject(_ context.Context, params *s3.PutObjectInput, _ ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	if m.putErr != nil {
		return nil, m.putErr
	}
	data, err := io.ReadAll(params.Body)
	if err != nil {
		return nil, err
	}
	m.objects[aws.ToString(params.Key)] = data
	m.types[aws.ToString(params.Key)] = aws.ToString(params.ContentType)
	return &s3.PutObjectOutput{}, nil
}

func (m *mockS3Client) GetObject(_ context.Context, params *s3.GetObjectInput, _ ...func(*s3.Options)) (*s3.GetObjectOutput, error) {
	if m.getErr != nil {
		return nil, m.getErr
	}
	data, ok := m.objects[aws.ToString(params.Key)]
	if !ok {
		return nil, &smithy.GenericAPIError{Code: "NoSuchKey", Message: "key not found"}
	}
	return &s3.GetObjectOutput{
		Body:          io.NopCloser(bytes.NewReader(data)),
		ContentLength: aws.Int64(int64(len(data))),
		ContentType:   aws.String(m.types[aws.ToString(params.Key)]),
	}, nil
}

func (m *mockS3Client) HeadObject(_ context.Context, params *s3.HeadObjectInput, _ ...func(*s3.Options)) (*s3.HeadObjectOutput, error) {
	if m.headErr != nil {
		return nil, m.headErr
	}
	if _, ok := m.objects[aws.ToString(params.Key)]; !ok {
		return nil, &smithy.GenericAPIError{Code: "NotFound", Message: "not found"}
	}
	return &s3.HeadObjectOutput{}, nil
}

func (m *mockS3Client) DeleteObject(_ context.Context, params *s3.DeleteObjectInput, _ ...func(*s3.Options)) (*s3.DeleteObjectOutput, error) {
	if m.deleteErr != nil {
		return nil, m.deleteErr
	}
	delete(m.objects, aws.ToString(params.Key))
	delete(m.types, aws.ToString(params.Key))
	return &s3.DeleteObjectOutput{}, nil
}

func newS3Storage(t *testing.T, client blob.S3Client) *blob.S3Storage {
	t.Helper()

	storage, err := blob.NewS3Storage(context.Background(), blob.S3Config{
		Bucket: "attachments",
		Region: "us-east-1",
	}, blob.WithS3Client(client))
	require.NoError(t, err)
	return storage
}

func TestNewS3Storage_InvalidConfig(t *testing.T) {
	t.Parallel()

	_, err := blob.NewS3Storage(context.Background(), blob.S3Config{Region: "us-east-1"})
	assert.ErrorIs(t, err, blob.ErrInvalidConfig)

	_, err = blob.NewS3Storage(context.Background(), blob.S3Config{Bucket: "attachments"})
	assert.ErrorIs(t, err, blob.ErrInvalidConfig)
}

func TestS3Storage_SaveAndOpen(t *testing.T) {
	t.Parallel()

	client := newMockS3Client()
	storage := newS3Storage(t, client)

	content := []byte("%PDF-1.4\ntranscript content")
	fh := createFileHeader(t, "transcript.pdf", content)

	obj, err := storage.Save(context.Background(), fh, "user-1/transcript.pdf")
	require.NoError(t, err)
	assert.Equal(t, "user-1/transcript.pdf", obj.Key)
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

func TestS3Storage_OpenMissing(t *testing.T) {
	t.Parallel()

	storage := newS3Storage(t, newMockS3Client())

	_, _, err := storage.Open(context.Background(), "missing.pdf")
	assert.ErrorIs(t, err, blob.ErrBlobNotFound)
}

func TestS3Storage_Delete(t *testing.T) {
	t.Parallel()

	client := newMockS3Client()
	storage := newS3Storage(t, client)

	fh := createFileHeader(t, "notes.txt", []byte("notes"))
	_, err := storage.Save(context.Background(), fh, "user-2/notes.txt")
	require.NoError(t, err)

	require.NoError(t, storage.Delete(context.Background(), "user-2/notes.txt"))
	assert.False(t, storage.Exists(context.Background(), "user-2/notes.txt"))

	err = storage.Delete(context.Background(), "user-2/notes.txt")
	assert.ErrorIs(t, err, blob.ErrBlobNotFound)
}

func TestS3Storage_KeyTraversal(t *testing.T) {
	t.Parallel()

	storage := newS3Storage(t, newMockS3Client())

	fh := createFileHeader(t, "evil.txt", []byte("payload"))

	_, err := storage.Save(context.Background(), fh, "a/../../b")
	assert.ErrorIs(t, err, blob.ErrInvalidKey)

	_, _, err = storage.Open(context.Background(), "a/../../b")
	assert.ErrorIs(t, err, blob.ErrInvalidKey)
}

func TestS3Storage_ErrorClassification(t *testing.T) {
	t.Parallel()

	client := newMockS3Client()
	client.headErr = &smithy.GenericAPIError{Code: "AccessDenied", Message: "denied"}
	storage := newS3Storage(t, client)

	err := storage.Delete(context.Background(), "user-3/notes.txt")
	assert.ErrorIs(t, err, blob.ErrAccessDenied)
}

func TestS3Storage_URL(t *testing.T) {
	t.Parallel()

	storage := newS3Storage(t, newMockS3Client())
	assert.Equal(t, "https://attachments.s3.us-east-1.amazonaws.com/user-1/a.pdf", storage.URL("user-1/a.pdf"))
}
