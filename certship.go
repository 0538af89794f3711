// Package certship forwards structured log records to an HTTPS ingestion
// endpoint, authenticating with a client certificate read from disk.
//
// This package is a thin entry point over pkg/certship for callers that
// only need the basics:
//
//	f, err := certship.New(certship.Config{
//	    EndpointURL: "https://ingest.example.com/api",
//	})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	if err := f.Start(ctx); err != nil {
//	    log.Fatal(err)
//	}
//	defer f.Shutdown()
//	f.Emit(ctx, "app.logs", batch, nil)
//
// Use pkg/certship directly for event handlers and plugins.
package certship

import (
	"github.com/bft-labs/certship/pkg/certship"
)

// Config holds the forwarder configuration.
type Config = certship.Config

// Forwarder delivers record batches over mutual TLS.
type Forwarder = certship.Forwarder

// Record, Entry and Batch describe the data handed to Emit.
type (
	Record = certship.Record
	Entry  = certship.Entry
	Batch  = certship.Batch
)

// Option configures a Forwarder.
type Option = certship.Option

// New validates cfg and returns a stopped Forwarder.
func New(cfg Config, opts ...Option) (*Forwarder, error) {
	return certship.New(cfg, opts...)
}

// DefaultCertPath and DefaultKeyPath are where client credentials are read
// from when Config leaves the paths empty.
const (
	DefaultCertPath = certship.DefaultCertPath
	DefaultKeyPath  = certship.DefaultKeyPath
)
