// Package logging configures structured logging for postd.
//
// It wraps log/slog so every component logs the same way:
//
//	logger := logging.New(logging.Config{
//	    Level:  logging.LevelInfo,
//	    Format: logging.FormatJSON,
//	})
//	logger.Info("server started", "addr", ":8080")
//
// Components accept a *slog.Logger through an option and fall back to Nop.
// Request handlers pull a request-scoped logger (carrying the request id)
// with FromContext.
package logging
