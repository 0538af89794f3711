// Package log provides the logging sink used by certship components.
//
// The forwarder only needs leveled messages (debug, info, warn, error) with
// optional key-value fields. A zerolog adapter is provided for production use
// and a no-op logger for tests and embedding without output.
//
// # Usage
//
//	logger := log.NewZerologAdapter(os.Stderr, zerolog.InfoLevel)
//	logger.Warn("delivery failed", log.Endpoint(url), log.Err(err))
//
// # Custom Loggers
//
// Implement the Logger interface to route certship output into an existing
// logging subsystem, such as the host pipeline's own logger.
package log
