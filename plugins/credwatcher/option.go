package credwatcher

import "github.com/bft-labs/certship/pkg/certship"

// WithCredentialWatcher returns a certship Option that reloads client
// credentials as soon as they appear on disk.
//
// Usage:
//
//	f, err := certship.New(cfg,
//	    credwatcher.WithCredentialWatcher(credwatcher.Config{
//	        DebounceDelay: 200 * time.Millisecond,
//	    }),
//	)
func WithCredentialWatcher(cfg Config) certship.Option {
	return certship.WithPlugin(New(cfg))
}

// WithDefaultCredentialWatcher enables the watcher with default settings.
func WithDefaultCredentialWatcher() certship.Option {
	return WithCredentialWatcher(DefaultConfig())
}
