// Package email sends operational mail that does not go through the outreach
// dispatch queue, primarily dispatch failure notices.
//
// The EmailSender interface lets providers be swapped without touching
// callers: NewPostmarkClient for production delivery with open and link
// tracking, NewDevSender for local runs where notices land on disk as
// timestamped HTML and JSON files.
//
// Parameters are validated before any provider is touched. Sentinel errors
// (ErrInvalidConfig, ErrInvalidParams, ErrFailedToSendEmail) support
// errors.Is checks across providers.
package email
