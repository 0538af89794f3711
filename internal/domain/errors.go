package domain

import "errors"

// Domain errors represent error conditions in the certship domain.
// These errors are returned by the public API and can be checked with errors.Is.
var (
	// ErrInvalidEndpoint is returned when the endpoint URL cannot be used.
	ErrInvalidEndpoint = errors.New("certship: invalid endpoint url")

	// ErrCredentialsUnavailable is returned when the client certificate and key
	// have not been loaded successfully.
	ErrCredentialsUnavailable = errors.New("certship: client credentials unavailable")

	// ErrInvalidCertificate is returned when the certificate file holds no usable X.509 certificate.
	ErrInvalidCertificate = errors.New("certship: invalid client certificate")

	// ErrInvalidPrivateKey is returned when the key file holds no usable RSA private key.
	ErrInvalidPrivateKey = errors.New("certship: invalid client private key")

	// ErrKeyMismatch is returned when the private key does not belong to the certificate.
	ErrKeyMismatch = errors.New("certship: private key does not match certificate")

	// ErrSerialization is returned when a record cannot be encoded as JSON.
	ErrSerialization = errors.New("certship: record serialization failed")

	// ErrAlreadyRunning is returned when Start() is called on a running instance.
	ErrAlreadyRunning = errors.New("certship: already running")

	// ErrNotRunning is returned when Shutdown() is called on a stopped instance.
	ErrNotRunning = errors.New("certship: not running")

	// ErrShutdownTimeout is returned when graceful shutdown times out.
	ErrShutdownTimeout = errors.New("certship: shutdown timeout")

	// ErrInvalidConfig is returned when configuration validation fails.
	ErrInvalidConfig = errors.New("certship: invalid configuration")
)
