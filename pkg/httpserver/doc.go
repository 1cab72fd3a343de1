// Package httpserver wraps net/http with context-driven graceful shutdown,
// env-based configuration, and probe handlers, so the binary's main stays
// a few lines of wiring.
//
//	srv := httpserver.NewFromConfig(cfg, httpserver.WithLogger(log))
//	return srv.Run(ctx, router)
package httpserver
