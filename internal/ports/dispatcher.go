package ports

import (
	"context"

	"github.com/bft-labs/certship/internal/domain"
)

// Dispatcher delivers a single request to the endpoint.
// Send never panics or returns an error; every failure is an Outcome.
type Dispatcher interface {
	Send(ctx context.Context, req domain.RequestDescriptor) domain.Outcome
}

// Prober checks whether the endpoint is reachable with the loaded credentials.
type Prober interface {
	Probe(ctx context.Context) bool
}
