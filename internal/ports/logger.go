package ports

import "github.com/bft-labs/certship/pkg/log"

// Logger is the logging sink used across the application layer.
type Logger = log.Logger

// Field is a structured log field.
type Field = log.Field

// Field constructors re-exported for adapters that only import ports.
var (
	String   = log.String
	Int      = log.Int
	Bool     = log.Bool
	Duration = log.Duration
	Time     = log.Time
	Err      = log.Err
	Tag      = log.Tag
	Endpoint = log.Endpoint
	Plugin   = log.Plugin
)
