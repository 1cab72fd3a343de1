package blob

import (
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"path/filepath"
	"slices"
	"strings"
)

// Object describes a stored attachment blob.
type Object struct {
	Key         string
	Filename    string
	Size        int64
	ContentType string
}

// Storage abstracts the attachment blob backends.
type Storage interface {
	// Save stores an uploaded file under key and returns its metadata.
	Save(ctx context.Context, fh *multipart.FileHeader, key string) (*Object, error)
	// Open returns the blob content and metadata for key.
	// The caller owns the returned reader and must close it.
	Open(ctx context.Context, key string) (io.ReadCloser, *Object, error)
	// Delete removes the blob stored under key.
	Delete(ctx context.Context, key string) error
	// Exists reports whether a blob is stored under key.
	Exists(ctx context.Context, key string) bool
	// URL returns the public URL for a blob.
	URL(key string) string
}

// GetExtension returns the file extension including the dot.
func GetExtension(fh *multipart.FileHeader) string {
	if fh == nil {
		return ""
	}
	return filepath.Ext(fh.Filename)
}

// DetectContentType sniffs the MIME type from the file content.
// Uses http.DetectContentType which reads the first 512 bytes to identify
// file types based on magic bytes rather than trusting file extensions.
// Resets file position to allow subsequent reads of the same file.
func DetectContentType(fh *multipart.FileHeader) (string, error) {
	if fh == nil {
		return "", ErrNilFileHeader
	}

	file, err := fh.Open()
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrFailedToOpenFile, err)
	}
	defer func() { _ = file.Close() }()

	// 512 bytes is the maximum http.DetectContentType reads
	buffer := make([]byte, 512)
	n, err := file.Read(buffer)
	if err != nil && err != io.EOF {
		return "", fmt.Errorf("%w: %v", ErrFailedToReadFile, err)
	}

	if seeker, ok := file.(io.Seeker); ok {
		_, _ = seeker.Seek(0, io.SeekStart)
	}

	return http.DetectContentType(buffer[:n]), nil
}

// ValidateSize checks if the file size is within the allowed limit.
// Note: for streamed uploads FileHeader.Size may be 0, so storage
// implementations still bound the actual bytes written during upload.
func ValidateSize(fh *multipart.FileHeader, maxBytes int64) error {
	if fh == nil {
		return ErrNilFileHeader
	}
	if fh.Size > maxBytes {
		return fmt.Errorf("file size %d bytes exceeds %d bytes limit: %w", fh.Size, maxBytes, ErrFileTooLarge)
	}
	return nil
}

// ValidateContentType checks if the sniffed content type is in the allowed
// list. Pass no types to allow everything.
func ValidateContentType(fh *multipart.FileHeader, allowedTypes ...string) error {
	if fh == nil {
		return ErrNilFileHeader
	}
	if len(allowedTypes) == 0 {
		return nil
	}

	contentType, err := DetectContentType(fh)
	if err != nil {
		return err
	}

	if slices.Contains(allowedTypes, contentType) {
		return nil
	}

	return fmt.Errorf("content type %s not in allowed types %v: %w", contentType, allowedTypes, ErrContentTypeNotAllowed)
}

// SanitizeFilename removes any path components and dangerous characters from
// a filename to prevent path traversal. Returns "unnamed" for empty or
// special directory references.
func SanitizeFilename(filename string) string {
	filename = strings.ReplaceAll(filename, "\\", "/")
	filename = filepath.Base(filename)
	filename = strings.ReplaceAll(filename, "\x00", "")

	if filename == "." || filename == ".." || filename == "" || filename == "/" {
		filename = "unnamed"
	}

	return filename
}
