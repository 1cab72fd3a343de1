// Package pg bootstraps the PostgreSQL layer: a pgx/v5 connection pool opened
// with retry, goose schema migrations, a pool-backed healthcheck, and small
// error classification helpers.
//
// Usage:
//
//	var cfg pg.Config
//	// populate cfg from the environment
//
//	pool, err := pg.Connect(ctx, cfg)
//	if err != nil {
//		return err
//	}
//	defer pool.Close()
//
//	if err := pg.Migrate(ctx, pool, cfg, slog.Default()); err != nil {
//		return err
//	}
//
// Repositories take the *pgxpool.Pool directly; this package deliberately
// adds no query abstraction on top of pgx.
package pg
