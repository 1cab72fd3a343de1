// Package outreach exposes the outreach service over HTTP.
//
// All routes require the X-User-ID header carrying the authenticated user's
// UUID; template, queue and record access is scoped to that user. Requests
// and responses are JSON except attachment uploads, which arrive as
// multipart form data.
//
// Error responses carry a single {"error": "..."} body. Quota denials map to
// 402 so clients can prompt a plan upgrade; provider failures map to 502 to
// signal that a retry may succeed.
package outreach
