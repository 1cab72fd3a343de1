package httpserver

import "errors"

var (
	// ErrStart indicates the listener failed or the server was started twice.
	ErrStart = errors.New("httpserver.errors.failed_to_start")
	// ErrShutdown indicates graceful shutdown did not complete in time.
	ErrShutdown = errors.New("httpserver.errors.failed_to_shutdown")
)
