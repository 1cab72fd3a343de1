package blob

import (
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// LocalStorage implements Storage on the local filesystem.
// All operations are confined to baseDir to prevent path traversal.
type LocalStorage struct {
	baseDir       string        // Absolute path, all blobs live under it
	baseURL       string        // URL prefix for serving blobs (e.g. "/attachments/")
	uploadTimeout time.Duration // Optional bound on Save
}

// LocalOption configures LocalStorage.
type LocalOption func(*LocalStorage)

// WithLocalUploadTimeout bounds the duration of a single Save call.
// If not set, the caller's context deadline applies.
func WithLocalUploadTimeout(timeout time.Duration) LocalOption {
	return func(s *LocalStorage) {
		s.uploadTimeout = timeout
	}
}

// NewLocalStorage creates a filesystem-backed blob store rooted at baseDir.
// The directory is created if it does not exist.
func NewLocalStorage(baseDir, baseURL string, opts ...LocalOption) (*LocalStorage, error) {
	if baseDir == "" {
		return nil, ErrInvalidConfig
	}

	absBaseDir, err := filepath.Abs(baseDir)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to resolve base directory: %v", ErrFailedToGetAbsolutePath, err)
	}

	if err := os.MkdirAll(absBaseDir, 0755); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrFailedToCreateDirectory, err)
	}

	if baseURL != "" && !strings.HasSuffix(baseURL, "/") {
		baseURL += "/"
	}

	s := &LocalStorage{
		baseDir: absBaseDir,
		baseURL: baseURL,
	}

	for _, opt := range opts {
		opt(s)
	}

	return s, nil
}

// Save stores an uploaded file under key.
// Copies in 32KB chunks with context checks so large uploads can be
// cancelled midway; partial files are removed on any error.
func (s *LocalStorage) Save(ctx context.Context, fh *multipart.FileHeader, key string) (*Object, error) {
	if s.uploadTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.uploadTimeout)
		defer cancel()
	}

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	default:
	}

	if fh == nil {
		return nil, ErrNilFileHeader
	}

	filename := SanitizeFilename(fh.Filename)

	// A key ending in a separator addresses a directory, store under
	// the sanitized upload filename in that case.
	dir := filepath.Dir(key)
	base := filepath.Base(key)
	if base == "." || base == "" {
		key = filepath.Join(dir, filename)
	}

	absPath, err := s.resolveKey(key)
	if err != nil {
		return nil, err
	}

	if err = os.MkdirAll(filepath.Dir(absPath), 0755); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrFailedToCreateDirectory, err)
	}

	src, err := fh.Open()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrFailedToOpenFile, err)
	}
	defer func() { _ = src.Close() }()

	dst, err := os.OpenFile(absPath, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0644)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrFailedToCreateFile, err)
	}
	defer func() { _ = dst.Close() }()

	written := int64(0)
	buf := make([]byte, 32*1024)
	for {
		select {
		case <-ctx.Done():
			_ = dst.Close()
			_ = os.Remove(absPath)
			return nil, ctx.Err()
		default:
		}

		n, readErr := src.Read(buf)
		if n > 0 {
			nw, writeErr := dst.Write(buf[:n])
			if writeErr != nil {
				_ = dst.Close()
				_ = os.Remove(absPath)
				return nil, fmt.Errorf("%w: %v", ErrFailedToWriteFile, writeErr)
			}
			written += int64(nw)
		}
		if readErr == io.EOF {
			break
		}
		if readErr != nil {
			_ = dst.Close()
			_ = os.Remove(absPath)
			return nil, fmt.Errorf("%w: %v", ErrFailedToReadFile, readErr)
		}
	}

	contentType, err := DetectContentType(fh)
	if err != nil {
		contentType = "application/octet-stream"
	}

	relKey, err := filepath.Rel(s.baseDir, absPath)
	if err != nil {
		relKey = key
	}

	return &Object{
		Key:         filepath.ToSlash(relKey),
		Filename:    filename,
		Size:        written, // Actual bytes written, not FileHeader.Size
		ContentType: contentType,
	}, nil
}

// Open returns the blob content for key.
// Content type is sniffed from the first bytes since the filesystem keeps no
// metadata alongside the blob.
func (s *LocalStorage) Open(ctx context.Context, key string) (io.ReadCloser, *Object, error) {
	select {
	case <-ctx.Done():
		return nil, nil, ctx.Err()
	default:
	}

	absPath, err := s.resolveKey(key)
	if err != nil {
		return nil, nil, err
	}

	f, err := os.Open(absPath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil, fmt.Errorf("%w: %s", ErrBlobNotFound, key)
		}
		return nil, nil, fmt.Errorf("%w: %v", ErrFailedToOpenFile, err)
	}

	info, err := f.Stat()
	if err != nil {
		_ = f.Close()
		return nil, nil, fmt.Errorf("%w: %v", ErrFailedToStatPath, err)
	}
	if info.IsDir() {
		_ = f.Close()
		return nil, nil, fmt.Errorf("%w: %s", ErrBlobNotFound, key)
	}

	buffer := make([]byte, 512)
	n, err := f.Read(buffer)
	if err != nil && err != io.EOF {
		_ = f.Close()
		return nil, nil, fmt.Errorf("%w: %v", ErrFailedToReadFile, err)
	}
	if _, err := f.Seek(0, io.SeekStart); err != nil {
		_ = f.Close()
		return nil, nil, fmt.Errorf("%w: %v", ErrFailedToReadFile, err)
	}

	obj := &Object{
		Key:         key,
		Filename:    filepath.Base(absPath),
		Size:        info.Size(),
		ContentType: http.DetectContentType(buffer[:n]),
	}

	return f, obj, nil
}

// Delete removes the blob stored under key.
func (s *LocalStorage) Delete(ctx context.Context, key string) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
	}

	absPath, err := s.resolveKey(key)
	if err != nil {
		return err
	}

	info, err := os.Stat(absPath)
	if err != nil {
		if os.IsNotExist(err) {
			return fmt.Errorf("%w: %s", ErrBlobNotFound, key)
		}
		return fmt.Errorf("%w: %v", ErrFailedToStatPath, err)
	}

	if info.IsDir() {
		return fmt.Errorf("%w: %s", ErrBlobNotFound, key)
	}

	if err := os.Remove(absPath); err != nil {
		return fmt.Errorf("%w: %v", ErrFailedToDeleteFile, err)
	}

	return nil
}

// Exists reports whether a blob is stored under key.
func (s *LocalStorage) Exists(ctx context.Context, key string) bool {
	select {
	case <-ctx.Done():
		return false
	default:
	}

	absPath, err := s.resolveKey(key)
	if err != nil {
		return false
	}

	info, err := os.Stat(absPath)
	return err == nil && !info.IsDir()
}

// URL returns the public URL for a blob.
func (s *LocalStorage) URL(key string) string {
	key = filepath.ToSlash(filepath.Clean(key))

	if strings.HasPrefix(key, "/") {
		return key
	}

	return s.baseURL + key
}

// resolveKey validates and resolves a key within the base directory.
// Ensures the resolved path stays inside baseDir to block ../ escapes.
func (s *LocalStorage) resolveKey(key string) (string, error) {
	key = filepath.Clean(key)
	absPath := filepath.Join(s.baseDir, key)

	absPath, err := filepath.Abs(absPath)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrFailedToGetAbsolutePath, err)
	}

	if !strings.HasPrefix(absPath, s.baseDir+string(filepath.Separator)) && absPath != s.baseDir {
		return "", fmt.Errorf("%w: %s", ErrInvalidKey, key)
	}

	return absPath, nil
}
