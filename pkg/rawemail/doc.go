// Package rawemail composes provider-ready raw email payloads.
//
// The mailbox provider ingests complete RFC822 messages encoded with URL-safe
// base64 (no padding). Compose builds a multipart/mixed MIME message (one
// HTML body part plus zero or more base64-encoded attachment parts) and
// applies that exact encoding. The encoding contract is bit-exact: standard
// base64 with '+' replaced by '-', '/' by '_', and trailing '=' stripped.
//
// Compose is all-or-nothing. A malformed attachment aborts the single message
// being composed and never produces a partial payload, so one bad recipient
// in a batch cannot corrupt the others.
package rawemail
