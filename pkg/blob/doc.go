// Package blob stores email attachment files and loads them back as
// attachment payloads at send time.
//
// The package is built around the Storage interface with two backends:
//   - LocalStorage keeps blobs on the local filesystem for development
//   - S3Storage targets Amazon S3 and S3-compatible services
//
// Queue items reference attachments by blob key rather than carrying the
// bytes, so the dispatch worker resolves keys through a Loader only when a
// message is actually composed:
//
//	storage, err := blob.NewLocalStorage("./attachments", "/attachments/")
//	if err != nil {
//	    return err
//	}
//
//	loader, err := blob.NewLoader(storage)
//	if err != nil {
//	    return err
//	}
//
//	att, err := loader.Load(ctx, "user-123/transcript.pdf")
//	// att.Filename, att.ContentType and att.Data are ready for composing
//
// Uploads arrive as multipart form files and are validated before storage:
//
//	if err := blob.ValidateSize(fh, 10<<20); err != nil {
//	    return err
//	}
//	if err := blob.ValidateContentType(fh, "application/pdf", "image/png", "image/jpeg"); err != nil {
//	    return err
//	}
//	obj, err := storage.Save(ctx, fh, "user-123/"+blob.SanitizeFilename(fh.Filename))
//
// Content types are sniffed from file content rather than trusted from the
// upload, and all keys are validated against path traversal.
package blob
