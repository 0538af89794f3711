package certship

import (
	"crypto/x509"
	"fmt"
	"time"

	"github.com/bft-labs/certship/internal/adapters/fs"
	httpAdapter "github.com/bft-labs/certship/internal/adapters/http"
	"github.com/bft-labs/certship/internal/domain"
)

// Default credential locations and timeouts.
const (
	DefaultCertPath    = fs.DefaultCertPath
	DefaultKeyPath     = fs.DefaultKeyPath
	DefaultOpenTimeout = httpAdapter.DefaultOpenTimeout
	DefaultReadTimeout = httpAdapter.DefaultReadTimeout
)

// Config configures a Forwarder.
type Config struct {
	// EndpointURL is the full https URL records are posted to. Required.
	EndpointURL string

	// CertPath and KeyPath locate the PEM client certificate and RSA key.
	CertPath string
	KeyPath  string

	// VerifyServerCertificate enables verification of the endpoint's
	// certificate chain and host name. Default: false.
	VerifyServerCertificate bool

	// RootCAs replaces the system roots when VerifyServerCertificate is set.
	RootCAs *x509.CertPool

	// OpenTimeout bounds dialing plus the TLS handshake. Default: 30s.
	OpenTimeout time.Duration

	// ReadTimeout bounds the wait for a response. Default: 60s.
	ReadTimeout time.Duration
}

// SetDefaults fills zero-valued fields.
func (c *Config) SetDefaults() {
	if c.CertPath == "" {
		c.CertPath = DefaultCertPath
	}
	if c.KeyPath == "" {
		c.KeyPath = DefaultKeyPath
	}
	if c.OpenTimeout == 0 {
		c.OpenTimeout = DefaultOpenTimeout
	}
	if c.ReadTimeout == 0 {
		c.ReadTimeout = DefaultReadTimeout
	}
}

// Validate checks the configuration and parses the endpoint.
// Errors wrap ErrInvalidEndpoint or ErrInvalidConfig.
func (c Config) Validate() error {
	if _, err := domain.ParseEndpoint(c.EndpointURL); err != nil {
		return err
	}
	if c.OpenTimeout < 0 {
		return fmt.Errorf("%w: open timeout must not be negative", domain.ErrInvalidConfig)
	}
	if c.ReadTimeout < 0 {
		return fmt.Errorf("%w: read timeout must not be negative", domain.ErrInvalidConfig)
	}
	return nil
}
