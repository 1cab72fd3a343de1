package logger

import (
	"errors"
	"log/slog"
)

// Error renders an error under the conventional "error" key; nil errors log
// as an empty string rather than panicking.
func Error(err error) slog.Attr {
	if err == nil {
		return slog.String("error", "")
	}
	return slog.String("error", err.Error())
}

// Errors joins multiple errors under the "error" key.
func Errors(errs ...error) slog.Attr {
	return Error(errors.Join(errs...))
}

// Component tags records with the subsystem that produced them.
func Component(name string) slog.Attr {
	return slog.String("component", name)
}

// UserID tags records with the acting user.
func UserID(id any) slog.Attr {
	return slog.Any("user_id", id)
}
