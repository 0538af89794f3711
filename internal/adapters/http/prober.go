package http

import (
	"context"
	"net/http"

	"github.com/bft-labs/certship/internal/ports"
)

// Prober implements ports.Prober with a HEAD request against the endpoint root.
type Prober struct {
	conn   connector
	logger ports.Logger
}

// NewProber creates a prober sharing the dispatcher's TLS settings.
func NewProber(cfg TransportConfig, creds ports.CredentialProvider, logger ports.Logger) *Prober {
	return &Prober{
		conn:   newConnector(cfg, creds),
		logger: logger,
	}
}

// Probe reports whether the endpoint answered a HEAD / over mutual TLS.
// Any HTTP response counts as reachable, whatever its status; only
// transport-level failures fail the probe.
func (p *Prober) Probe(ctx context.Context) bool {
	endpoint := p.conn.cfg.Endpoint

	// The credential store has already logged why loading failed.
	cert, err := p.conn.creds.ClientCertificate()
	if err != nil {
		return false
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodHead, endpoint.URL("/"), nil)
	if err != nil {
		p.logger.Error("connection to server not available", ports.Err(err))
		return false
	}
	req.Header.Set("User-Agent", userAgent)

	client, release := p.conn.open(cert)
	defer release()

	resp, err := client.Do(req)
	if err != nil {
		p.logger.Error("connection to server not available",
			ports.Endpoint(endpoint.String()),
			ports.Err(err),
		)
		return false
	}
	resp.Body.Close()

	p.logger.Debug("connection to server verified",
		ports.Endpoint(endpoint.String()),
		ports.Int("status", resp.StatusCode),
	)
	return true
}

// Ensure Prober implements ports.Prober.
var _ ports.Prober = (*Prober)(nil)
