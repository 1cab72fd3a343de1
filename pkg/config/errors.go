package config

import "errors"

var (
	// ErrParsingConfig is returned when the environment cannot be parsed into
	// the config struct, usually a missing required variable.
	ErrParsingConfig = errors.New("failed to parse environment variables into config")

	// ErrConfigNotLoaded is returned when a cached config vanished between
	// parse and read; it indicates a programming error, not bad input.
	ErrConfigNotLoaded = errors.New("configuration has not been loaded")

	// ErrNilPointer is returned when Load receives a nil target.
	ErrNilPointer = errors.New("nil pointer provided to config loader")
)
