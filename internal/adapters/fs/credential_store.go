package fs

import (
	"crypto/rsa"
	"crypto/tls"
	"crypto/x509"
	"encoding/pem"
	"fmt"
	"os"
	"sync"
	"sync/atomic"

	"github.com/bft-labs/certship/internal/domain"
	"github.com/bft-labs/certship/internal/ports"
)

// Default locations of the agent's client identity.
const (
	DefaultCertPath = "/etc/opt/microsoft/omsagent/certs/oms.crt"
	DefaultKeyPath  = "/etc/opt/microsoft/omsagent/certs/oms.key"
)

// CredentialStore implements ports.CredentialProvider using PEM files on disk.
//
// Credentials are loaded lazily on first use. Once a load succeeds the cached
// certificate is kept for the lifetime of the process; failed loads are
// retried on the next call.
type CredentialStore struct {
	certPath string
	keyPath  string
	logger   ports.Logger

	// readFile is swapped in tests to count filesystem reads.
	readFile func(name string) ([]byte, error)

	mu       sync.Mutex
	verified atomic.Bool
	state    atomic.Int32
	cert     tls.Certificate
}

// NewCredentialStore creates a store for the given certificate and key paths.
// Empty paths fall back to DefaultCertPath and DefaultKeyPath.
func NewCredentialStore(certPath, keyPath string, logger ports.Logger) *CredentialStore {
	if certPath == "" {
		certPath = DefaultCertPath
	}
	if keyPath == "" {
		keyPath = DefaultKeyPath
	}
	return &CredentialStore{
		certPath: certPath,
		keyPath:  keyPath,
		logger:   logger,
		readFile: os.ReadFile,
	}
}

// EnsureLoaded loads and validates the credentials unless already verified.
// Concurrent first calls are serialized so only one read pair happens.
func (s *CredentialStore) EnsureLoaded() bool {
	if s.verified.Load() {
		return true
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.verified.Load() {
		return true
	}
	s.state.Store(int32(domain.CredentialsPending))

	cert, err := s.load()
	if err != nil {
		s.logger.Error("error reading certs",
			ports.String("cert_path", s.certPath),
			ports.String("key_path", s.keyPath),
			ports.Err(err),
		)
		return false
	}

	s.cert = cert
	s.verified.Store(true)
	s.state.Store(int32(domain.CredentialsVerified))

	s.logger.Debug("client credentials loaded",
		ports.String("subject", cert.Leaf.Subject.String()),
		ports.Time("not_after", cert.Leaf.NotAfter),
	)
	return true
}

// ClientCertificate returns the cached certificate, loading it if needed.
func (s *CredentialStore) ClientCertificate() (tls.Certificate, error) {
	if !s.EnsureLoaded() {
		return tls.Certificate{}, domain.ErrCredentialsUnavailable
	}
	return s.cert, nil
}

// State returns the current credential state.
func (s *CredentialStore) State() domain.CredentialState {
	return domain.CredentialState(s.state.Load())
}

// CertPath returns the certificate file path.
func (s *CredentialStore) CertPath() string { return s.certPath }

// KeyPath returns the private key file path.
func (s *CredentialStore) KeyPath() string { return s.keyPath }

func (s *CredentialStore) load() (tls.Certificate, error) {
	certPEM, err := s.readFile(s.certPath)
	if err != nil {
		return tls.Certificate{}, fmt.Errorf("read certificate: %w", err)
	}
	chain, leaf, err := parseCertificates(certPEM)
	if err != nil {
		return tls.Certificate{}, err
	}

	keyPEM, err := s.readFile(s.keyPath)
	if err != nil {
		return tls.Certificate{}, fmt.Errorf("read private key: %w", err)
	}
	key, err := parseRSAKey(keyPEM)
	if err != nil {
		return tls.Certificate{}, err
	}

	if !key.PublicKey.Equal(leaf.PublicKey) {
		return tls.Certificate{}, domain.ErrKeyMismatch
	}

	return tls.Certificate{
		Certificate: chain,
		PrivateKey:  key,
		Leaf:        leaf,
	}, nil
}

// parseCertificates returns the DER chain from all CERTIFICATE blocks and the
// parsed leaf (the first block).
func parseCertificates(data []byte) ([][]byte, *x509.Certificate, error) {
	var (
		chain [][]byte
		leaf  *x509.Certificate
	)
	for {
		var block *pem.Block
		block, data = pem.Decode(data)
		if block == nil {
			break
		}
		if block.Type != "CERTIFICATE" {
			continue
		}
		if leaf == nil {
			c, err := x509.ParseCertificate(block.Bytes)
			if err != nil {
				return nil, nil, fmt.Errorf("%w: %v", domain.ErrInvalidCertificate, err)
			}
			leaf = c
		}
		chain = append(chain, block.Bytes)
	}
	if leaf == nil {
		return nil, nil, fmt.Errorf("%w: no CERTIFICATE block found", domain.ErrInvalidCertificate)
	}
	return chain, leaf, nil
}

// parseRSAKey accepts PKCS#1 "RSA PRIVATE KEY" and PKCS#8 "PRIVATE KEY" blocks.
func parseRSAKey(data []byte) (*rsa.PrivateKey, error) {
	for {
		var block *pem.Block
		block, data = pem.Decode(data)
		if block == nil {
			return nil, fmt.Errorf("%w: no private key block found", domain.ErrInvalidPrivateKey)
		}

		switch block.Type {
		case "RSA PRIVATE KEY":
			key, err := x509.ParsePKCS1PrivateKey(block.Bytes)
			if err != nil {
				return nil, fmt.Errorf("%w: %v", domain.ErrInvalidPrivateKey, err)
			}
			return key, nil
		case "PRIVATE KEY":
			parsed, err := x509.ParsePKCS8PrivateKey(block.Bytes)
			if err != nil {
				return nil, fmt.Errorf("%w: %v", domain.ErrInvalidPrivateKey, err)
			}
			key, ok := parsed.(*rsa.PrivateKey)
			if !ok {
				return nil, fmt.Errorf("%w: key is %T, want RSA", domain.ErrInvalidPrivateKey, parsed)
			}
			return key, nil
		}
	}
}

// Ensure CredentialStore implements ports.CredentialProvider.
var _ ports.CredentialProvider = (*CredentialStore)(nil)
