package main

import (
	"context"
	"crypto/tls"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/prometheus/common/expfmt"
	"github.com/rs/zerolog"

	"github.com/bft-labs/certship/internal/cliconfig"
	"github.com/bft-labs/certship/internal/testutil/certs"
)

type recorder struct {
	mu     sync.Mutex
	bodies []string
}

func (r *recorder) handler(w http.ResponseWriter, req *http.Request) {
	if req.Method == http.MethodPost {
		b, _ := io.ReadAll(req.Body)
		r.mu.Lock()
		r.bodies = append(r.bodies, string(b))
		r.mu.Unlock()
	}
	w.WriteHeader(http.StatusOK)
}

func (r *recorder) snapshot() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.bodies...)
}

func newTestCLI(t *testing.T, rec *recorder) *cli {
	t.Helper()
	srv := httptest.NewUnstartedServer(http.HandlerFunc(rec.handler))
	srv.TLS = &tls.Config{ClientAuth: tls.RequireAnyClientCert}
	srv.StartTLS()
	t.Cleanup(srv.Close)

	certPath, keyPath := certs.New(t, "agent").WriteFiles(t, t.TempDir())

	cfg := cliconfig.DefaultConfig()
	cfg.EndpointURL = srv.URL + "/api/records"
	cfg.CertPath = certPath
	cfg.KeyPath = keyPath
	cfg.OpenTimeout = 2 * time.Second
	cfg.ReadTimeout = 2 * time.Second
	cfg.WatchCredentials = false
	cfg.BatchSize = 2
	cfg.FlushInterval = 0
	if err := cfg.Validate(); err != nil {
		t.Fatal(err)
	}
	return &cli{cfg: cfg, log: zerolog.Nop()}
}

func TestForward_DeliversInOrder(t *testing.T) {
	rec := &recorder{}
	c := newTestCLI(t, rec)
	c.cfg.MetricsFile = filepath.Join(t.TempDir(), "certship.prom")

	input := strings.Join([]string{
		`{"seq":1}`,
		`{}`,
		`{"seq":2}`,
		`garbage`,
		`{"seq":3}`,
	}, "\n")

	if err := c.forward(context.Background(), strings.NewReader(input)); err != nil {
		t.Fatalf("forward() error = %v", err)
	}

	want := []string{`{"seq":1}`, `{"seq":2}`, `{"seq":3}`}
	if got := rec.snapshot(); strings.Join(got, "\n") != strings.Join(want, "\n") {
		t.Errorf("bodies = %v, want %v", got, want)
	}

	f, err := os.Open(c.cfg.MetricsFile)
	if err != nil {
		t.Fatalf("metrics file: %v", err)
	}
	defer f.Close()

	var parser expfmt.TextParser
	families, err := parser.TextToMetricFamilies(f)
	if err != nil {
		t.Fatalf("parse metrics: %v", err)
	}
	checks := map[string]float64{
		"certship_records_delivered_total": 3,
		"certship_records_skipped_total":   1,
		"certship_records_failed_total":    0,
	}
	for name, want := range checks {
		mf, ok := families[name]
		if !ok {
			t.Errorf("metric %s missing", name)
			continue
		}
		if got := mf.GetMetric()[0].GetCounter().GetValue(); got != want {
			t.Errorf("%s = %v, want %v", name, got, want)
		}
	}
}

func TestForward_FlushInterval(t *testing.T) {
	rec := &recorder{}
	c := newTestCLI(t, rec)
	c.cfg.BatchSize = 100
	c.cfg.FlushInterval = 20 * time.Millisecond

	pr, pw := io.Pipe()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	done := make(chan error, 1)
	go func() { done <- c.forward(ctx, pr) }()

	if _, err := io.WriteString(pw, `{"seq":1}`+"\n"); err != nil {
		t.Fatal(err)
	}

	deadline := time.Now().Add(5 * time.Second)
	for len(rec.snapshot()) == 0 && time.Now().Before(deadline) {
		time.Sleep(10 * time.Millisecond)
	}
	if got := rec.snapshot(); len(got) != 1 {
		t.Fatalf("bodies before EOF = %v, want one partial batch flushed by time", got)
	}

	pw.Close()
	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("forward() error = %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("forward() did not return after EOF")
	}
}

func TestForward_CanceledContextDrainsPending(t *testing.T) {
	rec := &recorder{}
	c := newTestCLI(t, rec)
	c.cfg.BatchSize = 100

	pr, pw := io.Pipe()
	defer pw.Close()
	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan error, 1)
	go func() { done <- c.forward(ctx, pr) }()

	if _, err := io.WriteString(pw, `{"seq":1}`+"\n"+`{"seq":2}`+"\n"); err != nil {
		t.Fatal(err)
	}
	// The pipe write returns once the reader has consumed the bytes; give
	// the loop a moment to hand both entries to the batcher.
	time.Sleep(100 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("forward() error = %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("forward() did not return after cancel")
	}

	if got := rec.snapshot(); len(got) != 2 {
		t.Errorf("bodies = %v, want both pending records drained", got)
	}
}
