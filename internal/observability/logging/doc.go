// Package logging builds the service's slog loggers and carries them
// through request contexts.
//
//	logger := logging.NewLogger()
//	logging.WithRequestID(r.Context(), logger).Warn("session rejected")
package logging
