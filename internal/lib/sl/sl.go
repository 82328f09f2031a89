// Package sl has small helpers for slog attributes.
package sl

import "log/slog"

// Err wraps err as an "error" attribute. A nil error renders as an empty string.
func Err(err error) slog.Attr {
	if err == nil {
		return slog.String("error", "")
	}
	return slog.String("error", err.Error())
}
