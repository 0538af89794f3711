package fs

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/bft-labs/certship/internal/domain"
	"github.com/bft-labs/certship/internal/ports"
	"github.com/bft-labs/certship/internal/testutil/certs"
)

// recordingLogger captures messages by level.
type recordingLogger struct {
	mu     sync.Mutex
	errors []string
	debugs []string
}

func (l *recordingLogger) Debug(msg string, fields ...ports.Field) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.debugs = append(l.debugs, msg)
}
func (l *recordingLogger) Info(msg string, fields ...ports.Field) {}
func (l *recordingLogger) Warn(msg string, fields ...ports.Field) {}
func (l *recordingLogger) Error(msg string, fields ...ports.Field) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.errors = append(l.errors, msg)
}

func (l *recordingLogger) errorCount() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.errors)
}

// countingReads wraps os.ReadFile and counts calls.
func countingReads(store *CredentialStore) *atomic.Int32 {
	var n atomic.Int32
	store.readFile = func(name string) ([]byte, error) {
		n.Add(1)
		return os.ReadFile(name)
	}
	return &n
}

func TestCredentialStore_EnsureLoaded_Success(t *testing.T) {
	pair := certs.New(t, "agent-1")
	certPath, keyPath := pair.WriteFiles(t, t.TempDir())

	logger := &recordingLogger{}
	store := NewCredentialStore(certPath, keyPath, logger)

	if got := store.State(); got != domain.CredentialsUninitialized {
		t.Fatalf("initial state = %v, want Uninitialized", got)
	}
	if !store.EnsureLoaded() {
		t.Fatal("EnsureLoaded() = false, want true")
	}
	if got := store.State(); got != domain.CredentialsVerified {
		t.Errorf("state = %v, want Verified", got)
	}

	cert, err := store.ClientCertificate()
	if err != nil {
		t.Fatalf("ClientCertificate() error = %v", err)
	}
	if cert.Leaf == nil || cert.Leaf.Subject.CommonName != "agent-1" {
		t.Errorf("leaf subject = %+v, want CN agent-1", cert.Leaf)
	}
	if len(cert.Certificate) != 1 {
		t.Errorf("chain length = %d, want 1", len(cert.Certificate))
	}
	if logger.errorCount() != 0 {
		t.Errorf("unexpected error logs: %v", logger.errors)
	}
}

func TestCredentialStore_EnsureLoaded_Idempotent(t *testing.T) {
	pair := certs.New(t, "agent-1")
	certPath, keyPath := pair.WriteFiles(t, t.TempDir())

	store := NewCredentialStore(certPath, keyPath, &recordingLogger{})
	reads := countingReads(store)

	for i := 0; i < 5; i++ {
		if !store.EnsureLoaded() {
			t.Fatalf("EnsureLoaded() call %d = false", i)
		}
	}
	if got := reads.Load(); got != 2 {
		t.Errorf("file reads = %d, want 2 (one cert, one key)", got)
	}

	// Removing the files must not matter once verified.
	_ = os.Remove(certPath)
	_ = os.Remove(keyPath)
	if !store.EnsureLoaded() {
		t.Error("EnsureLoaded() after file removal = false, want true")
	}
	if got := reads.Load(); got != 2 {
		t.Errorf("file reads after removal = %d, want 2", got)
	}
}

func TestCredentialStore_EnsureLoaded_ConcurrentFirstLoad(t *testing.T) {
	pair := certs.New(t, "agent-1")
	certPath, keyPath := pair.WriteFiles(t, t.TempDir())

	store := NewCredentialStore(certPath, keyPath, &recordingLogger{})
	reads := countingReads(store)

	var wg sync.WaitGroup
	var failures atomic.Int32
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if !store.EnsureLoaded() {
				failures.Add(1)
			}
		}()
	}
	wg.Wait()

	if failures.Load() != 0 {
		t.Errorf("%d goroutines saw EnsureLoaded() = false", failures.Load())
	}
	if got := reads.Load(); got != 2 {
		t.Errorf("file reads = %d, want 2", got)
	}
}

func TestCredentialStore_EnsureLoaded_Failures(t *testing.T) {
	pair := certs.New(t, "agent-1")
	other := certs.New(t, "someone-else")

	tests := []struct {
		name    string
		cert    []byte
		key     []byte
		skip    string // file to leave missing: "cert" or "key"
		wantErr error
	}{
		{name: "missing cert", key: pair.KeyPEM, skip: "cert", wantErr: os.ErrNotExist},
		{name: "missing key", cert: pair.CertPEM, skip: "key", wantErr: os.ErrNotExist},
		{name: "malformed cert", cert: []byte("not a certificate"), key: pair.KeyPEM, wantErr: domain.ErrInvalidCertificate},
		{
			name:    "corrupt certificate block",
			cert:    []byte("-----BEGIN CERTIFICATE-----\nAAAA\n-----END CERTIFICATE-----\n"),
			key:     pair.KeyPEM,
			wantErr: domain.ErrInvalidCertificate,
		},
		{name: "malformed key", cert: pair.CertPEM, key: []byte("garbage"), wantErr: domain.ErrInvalidPrivateKey},
		{name: "mismatched key", cert: pair.CertPEM, key: other.KeyPEM, wantErr: domain.ErrKeyMismatch},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := t.TempDir()
			certPath := filepath.Join(dir, "oms.crt")
			keyPath := filepath.Join(dir, "oms.key")
			if tt.skip != "cert" {
				if err := os.WriteFile(certPath, tt.cert, 0o600); err != nil {
					t.Fatal(err)
				}
			}
			if tt.skip != "key" {
				if err := os.WriteFile(keyPath, tt.key, 0o600); err != nil {
					t.Fatal(err)
				}
			}

			logger := &recordingLogger{}
			store := NewCredentialStore(certPath, keyPath, logger)

			if store.EnsureLoaded() {
				t.Fatal("EnsureLoaded() = true, want false")
			}
			if got := store.State(); got != domain.CredentialsPending {
				t.Errorf("state = %v, want Pending", got)
			}
			if logger.errorCount() != 1 {
				t.Errorf("error logs = %d, want 1", logger.errorCount())
			}

			_, err := store.ClientCertificate()
			if !errors.Is(err, domain.ErrCredentialsUnavailable) {
				t.Errorf("ClientCertificate() error = %v, want ErrCredentialsUnavailable", err)
			}

			// Verify the underlying cause directly.
			if _, err := store.load(); !errors.Is(err, tt.wantErr) {
				t.Errorf("load() error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestCredentialStore_RecoversAfterFilesAppear(t *testing.T) {
	dir := t.TempDir()
	certPath := filepath.Join(dir, "oms.crt")
	keyPath := filepath.Join(dir, "oms.key")

	store := NewCredentialStore(certPath, keyPath, &recordingLogger{})
	if store.EnsureLoaded() {
		t.Fatal("EnsureLoaded() with no files = true")
	}

	certs.New(t, "late").WriteFiles(t, dir)
	if !store.EnsureLoaded() {
		t.Fatal("EnsureLoaded() after files written = false")
	}
	if store.State() != domain.CredentialsVerified {
		t.Errorf("state = %v, want Verified", store.State())
	}
}

func TestCredentialStore_PKCS8Key(t *testing.T) {
	pair := certs.New(t, "pkcs8")
	dir := t.TempDir()
	certPath := filepath.Join(dir, "oms.crt")
	keyPath := filepath.Join(dir, "oms.key")
	if err := os.WriteFile(certPath, pair.CertPEM, 0o600); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(keyPath, pair.PKCS8KeyPEM(t), 0o600); err != nil {
		t.Fatal(err)
	}

	store := NewCredentialStore(certPath, keyPath, &recordingLogger{})
	if !store.EnsureLoaded() {
		t.Fatal("EnsureLoaded() with PKCS#8 key = false")
	}
}

func TestCredentialStore_ChainKeepsExtraBlocks(t *testing.T) {
	pair := certs.New(t, "leaf")
	intermediate := certs.New(t, "intermediate")
	dir := t.TempDir()
	certPath := filepath.Join(dir, "oms.crt")
	keyPath := filepath.Join(dir, "oms.key")

	bundle := strings.Join([]string{string(pair.CertPEM), string(intermediate.CertPEM)}, "")
	if err := os.WriteFile(certPath, []byte(bundle), 0o600); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(keyPath, pair.KeyPEM, 0o600); err != nil {
		t.Fatal(err)
	}

	store := NewCredentialStore(certPath, keyPath, &recordingLogger{})
	cert, err := store.ClientCertificate()
	if err != nil {
		t.Fatalf("ClientCertificate() error = %v", err)
	}
	if len(cert.Certificate) != 2 {
		t.Errorf("chain length = %d, want 2", len(cert.Certificate))
	}
	if cert.Leaf.Subject.CommonName != "leaf" {
		t.Errorf("leaf CN = %q, want leaf", cert.Leaf.Subject.CommonName)
	}
}

func TestNewCredentialStore_Defaults(t *testing.T) {
	store := NewCredentialStore("", "", &recordingLogger{})
	if store.CertPath() != DefaultCertPath {
		t.Errorf("CertPath() = %q, want %q", store.CertPath(), DefaultCertPath)
	}
	if store.KeyPath() != DefaultKeyPath {
		t.Errorf("KeyPath() = %q, want %q", store.KeyPath(), DefaultKeyPath)
	}
}
