package log

// NoopLogger discards everything. It is the forwarder's default when no
// logger is configured.
type NoopLogger struct{}

// NewNoopLogger returns a logger that discards all messages.
func NewNoopLogger() *NoopLogger { return &NoopLogger{} }

func (*NoopLogger) Debug(string, ...Field) {}
func (*NoopLogger) Info(string, ...Field)  {}
func (*NoopLogger) Warn(string, ...Field)  {}
func (*NoopLogger) Error(string, ...Field) {}

var _ Logger = (*NoopLogger)(nil)
