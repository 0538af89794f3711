package log

import "github.com/bft-labs/certship/internal/ports"

// Scoped decorates a logger with fields attached to every message,
// e.g. the name of the plugin that logs.
type Scoped struct {
	next   ports.Logger
	fields []ports.Field
}

// WithFields returns a logger that prepends fields to every call.
func WithFields(next ports.Logger, fields ...ports.Field) *Scoped {
	if s, ok := next.(*Scoped); ok {
		merged := make([]ports.Field, 0, len(s.fields)+len(fields))
		merged = append(merged, s.fields...)
		merged = append(merged, fields...)
		return &Scoped{next: s.next, fields: merged}
	}
	return &Scoped{next: next, fields: fields}
}

func (s *Scoped) Debug(msg string, fields ...ports.Field) { s.next.Debug(msg, s.with(fields)...) }
func (s *Scoped) Info(msg string, fields ...ports.Field)  { s.next.Info(msg, s.with(fields)...) }
func (s *Scoped) Warn(msg string, fields ...ports.Field)  { s.next.Warn(msg, s.with(fields)...) }
func (s *Scoped) Error(msg string, fields ...ports.Field) { s.next.Error(msg, s.with(fields)...) }

func (s *Scoped) with(fields []ports.Field) []ports.Field {
	if len(fields) == 0 {
		return s.fields
	}
	out := make([]ports.Field, 0, len(s.fields)+len(fields))
	out = append(out, s.fields...)
	return append(out, fields...)
}

var _ ports.Logger = (*Scoped)(nil)
