package http

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"

	"github.com/google/uuid"

	"github.com/bft-labs/certship/internal/domain"
	"github.com/bft-labs/certship/internal/ports"
)

// maxSummaryBody caps how much of a rejected response body ends up in logs.
const maxSummaryBody = 4 << 10

const userAgent = "certship/1"

// Dispatcher implements ports.Dispatcher over a one-shot mutual-TLS client.
type Dispatcher struct {
	conn   connector
	logger ports.Logger
}

// NewDispatcher creates a dispatcher for the configured endpoint.
func NewDispatcher(cfg TransportConfig, creds ports.CredentialProvider, logger ports.Logger) *Dispatcher {
	return &Dispatcher{
		conn:   newConnector(cfg, creds),
		logger: logger,
	}
}

// Send delivers one request and classifies the response.
// Only a 2xx status counts as success. Send never returns an error; the
// connection is closed before it returns regardless of the outcome.
func (d *Dispatcher) Send(ctx context.Context, req domain.RequestDescriptor) domain.Outcome {
	cert, err := d.conn.creds.ClientCertificate()
	if err != nil {
		return domain.Unreachable(err)
	}

	endpoint := d.conn.cfg.Endpoint
	httpReq, err := http.NewRequestWithContext(ctx, req.Method, endpoint.URL(req.Path), bytes.NewReader(req.Body))
	if err != nil {
		d.logTransportError(req.Method, err)
		return domain.Unreachable(err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("User-Agent", userAgent)
	httpReq.Header.Set("X-Request-Id", uuid.NewString())

	client, release := d.conn.open(cert)
	defer release()

	resp, err := client.Do(httpReq)
	if err != nil {
		d.logTransportError(req.Method, err)
		return domain.Unreachable(err)
	}
	defer resp.Body.Close()

	if domain.IsSuccessStatus(resp.StatusCode) {
		return domain.Delivered(resp.StatusCode)
	}

	body, _ := io.ReadAll(io.LimitReader(resp.Body, maxSummaryBody))
	outcome := domain.Rejected(resp.StatusCode, body)
	d.logger.Warn("failed to deliver record",
		ports.String("method", req.Method),
		ports.String("body", string(req.Body)),
		ports.Endpoint(endpoint.String()),
		ports.String("response", outcome.Summary),
	)
	return outcome
}

func (d *Dispatcher) logTransportError(method string, err error) {
	d.logger.Warn("request raised exception",
		ports.String("method", method),
		ports.String("error_type", errorType(err)),
		ports.Err(err),
	)
}

// errorType names the concrete error behind the *url.Error wrapper that
// net/http puts around transport failures.
func errorType(err error) string {
	var uerr *url.Error
	if errors.As(err, &uerr) && uerr.Err != nil {
		return fmt.Sprintf("%T", uerr.Err)
	}
	return fmt.Sprintf("%T", err)
}

// Ensure Dispatcher implements ports.Dispatcher.
var _ ports.Dispatcher = (*Dispatcher)(nil)
