package log

import "time"

// Logger is the sink for everything certship reports. Delivery failures are
// only ever visible through it, so implementations should not drop Warn or
// Error messages.
type Logger interface {
	Debug(msg string, fields ...Field)
	Info(msg string, fields ...Field)
	Warn(msg string, fields ...Field)
	Error(msg string, fields ...Field)
}

// Field is a key-value pair attached to a message.
type Field struct {
	Key   string
	Value interface{}
}

// Keys shared by the forwarder's log lines.
const (
	KeyTag      = "tag"
	KeyEndpoint = "endpoint"
	KeyPlugin   = "plugin"
	KeyError    = "error"
)

// Tag names the host tag a record was emitted under.
func Tag(tag string) Field { return Field{Key: KeyTag, Value: tag} }

// Endpoint names the delivery endpoint.
func Endpoint(url string) Field { return Field{Key: KeyEndpoint, Value: url} }

// Plugin names the plugin a message concerns.
func Plugin(name string) Field { return Field{Key: KeyPlugin, Value: name} }

// Err attaches err under KeyError.
func Err(err error) Field { return Field{Key: KeyError, Value: err} }

func String(key, value string) Field { return Field{Key: key, Value: value} }

func Int(key string, value int) Field { return Field{Key: key, Value: value} }

func Bool(key string, value bool) Field { return Field{Key: key, Value: value} }

func Duration(key string, value time.Duration) Field { return Field{Key: key, Value: value} }

func Time(key string, value time.Time) Field { return Field{Key: key, Value: value} }
