// Package logger builds the application's slog.Logger: JSON in deployed
// environments, readable text in development, with a handful of attribute
// helpers for the keys used across the codebase.
//
//	log := logger.New(logger.WithEnvironment(cfg.Environment, "outreach"))
//	logger.SetAsDefault(log)
package logger
