package http

import (
	"crypto/tls"
	"crypto/x509"
	"net"
	"net/http"
	"time"

	"github.com/bft-labs/certship/internal/domain"
	"github.com/bft-labs/certship/internal/ports"
)

// Default timeouts for the TLS exchange.
const (
	DefaultOpenTimeout = 30 * time.Second
	DefaultReadTimeout = 60 * time.Second
)

// TransportConfig configures the mutual-TLS connection to the endpoint.
type TransportConfig struct {
	Endpoint domain.Endpoint

	// VerifyServerCertificate enables verification of the peer's certificate
	// chain and host name. When false the client still presents its own
	// certificate but accepts any server certificate.
	VerifyServerCertificate bool

	// OpenTimeout bounds the TCP dial and the TLS handshake.
	OpenTimeout time.Duration

	// ReadTimeout bounds the wait for response headers after the request
	// is written. The whole exchange is bounded by OpenTimeout+ReadTimeout.
	ReadTimeout time.Duration

	// RootCAs overrides the system pool when VerifyServerCertificate is set.
	RootCAs *x509.CertPool
}

// connector opens one-shot HTTPS clients that present the client certificate.
// Every client gets its own transport so no connection outlives an exchange.
type connector struct {
	cfg   TransportConfig
	creds ports.CredentialProvider
}

func newConnector(cfg TransportConfig, creds ports.CredentialProvider) connector {
	if cfg.OpenTimeout <= 0 {
		cfg.OpenTimeout = DefaultOpenTimeout
	}
	if cfg.ReadTimeout <= 0 {
		cfg.ReadTimeout = DefaultReadTimeout
	}
	return connector{cfg: cfg, creds: creds}
}

// open returns a client bound to a fresh transport. The caller must call
// release once the response body has been consumed.
func (c connector) open(cert tls.Certificate) (*http.Client, func()) {
	tlsCfg := &tls.Config{
		Certificates: []tls.Certificate{cert},
		ServerName:   c.cfg.Endpoint.Host,
		MinVersion:   tls.VersionTLS12,
		// #nosec G402 -- server verification is an explicit opt-in via VerifyServerCertificate.
		InsecureSkipVerify: !c.cfg.VerifyServerCertificate,
	}
	if c.cfg.RootCAs != nil {
		tlsCfg.RootCAs = c.cfg.RootCAs
	}

	dialer := &net.Dialer{Timeout: c.cfg.OpenTimeout}
	transport := &http.Transport{
		Proxy:                 http.ProxyFromEnvironment,
		DialContext:           dialer.DialContext,
		TLSClientConfig:       tlsCfg,
		TLSHandshakeTimeout:   c.cfg.OpenTimeout,
		ResponseHeaderTimeout: c.cfg.ReadTimeout,
		DisableKeepAlives:     true,
	}

	client := &http.Client{
		Transport: transport,
		Timeout:   c.cfg.OpenTimeout + c.cfg.ReadTimeout,
		CheckRedirect: func(*http.Request, []*http.Request) error {
			return http.ErrUseLastResponse
		},
	}
	return client, transport.CloseIdleConnections
}
