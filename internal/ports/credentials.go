package ports

import (
	"crypto/tls"

	"github.com/bft-labs/certship/internal/domain"
)

// CredentialProvider owns the client certificate and private key.
// Implementations must be safe for concurrent use.
type CredentialProvider interface {
	// EnsureLoaded loads the credentials if they are not verified yet.
	// Returns true once valid credentials are cached. Failures are logged
	// by the implementation and reported as false.
	EnsureLoaded() bool

	// ClientCertificate returns the cached certificate for the TLS handshake,
	// loading it first if needed. Returns domain.ErrCredentialsUnavailable
	// when no valid credentials could be loaded.
	ClientCertificate() (tls.Certificate, error)

	// State returns the current credential state.
	State() domain.CredentialState
}
