package certship

import (
	"context"
	"fmt"
	"io"
	"sync"

	"github.com/bft-labs/certship/internal/adapters/fs"
	httpAdapter "github.com/bft-labs/certship/internal/adapters/http"
	logAdapter "github.com/bft-labs/certship/internal/adapters/log"
	"github.com/bft-labs/certship/internal/app"
	"github.com/bft-labs/certship/internal/domain"
	"github.com/bft-labs/certship/internal/metrics"
	"github.com/bft-labs/certship/internal/ports"
)

// Forwarder delivers record batches to a single endpoint over mutual TLS.
// Use New to create one, Start to load credentials and probe the endpoint,
// Emit for every batch, and Shutdown when the host stops.
type Forwarder struct {
	config    Config
	endpoint  domain.Endpoint
	lifecycle *app.Lifecycle
	creds     *fs.CredentialStore
	prober    ports.Prober
	processor *app.Processor
	metrics   *metrics.Metrics
	logger    ports.Logger
	plugins   []Plugin

	mu sync.Mutex
}

// New validates cfg and wires a Forwarder in StateStopped.
// Configuration errors are the only errors New returns; nothing is read from
// disk or the network until Start or Emit.
func New(cfg Config, opts ...Option) (*Forwarder, error) {
	cfg.SetDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	endpoint, err := domain.ParseEndpoint(cfg.EndpointURL)
	if err != nil {
		return nil, err
	}

	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}

	m := metrics.New()
	obs := &observer{handler: o.eventHandler, metrics: m}

	creds := fs.NewCredentialStore(cfg.CertPath, cfg.KeyPath, o.logger)
	transport := httpAdapter.TransportConfig{
		Endpoint:                endpoint,
		VerifyServerCertificate: cfg.VerifyServerCertificate,
		OpenTimeout:             cfg.OpenTimeout,
		ReadTimeout:             cfg.ReadTimeout,
		RootCAs:                 cfg.RootCAs,
	}
	dispatcher := httpAdapter.NewDispatcher(transport, creds, o.logger)

	return &Forwarder{
		config:    cfg,
		endpoint:  endpoint,
		lifecycle: app.NewLifecycle(o.logger, obs),
		creds:     creds,
		prober:    httpAdapter.NewProber(transport, creds, o.logger),
		processor: app.NewProcessor(app.NewRequestBuilder(endpoint), dispatcher, o.logger, obs),
		metrics:   m,
		logger:    o.logger,
		plugins:   o.plugins,
	}, nil
}

// Start initializes plugins, loads the client credentials and probes the
// endpoint. Neither a credential failure nor a failed probe stops the
// forwarder: credentials are retried on every delivery and the probe is
// advisory. Start returns an error only when already started or when a
// plugin fails to initialize.
func (f *Forwarder) Start(ctx context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if !f.lifecycle.CanStart() {
		return domain.ErrAlreadyRunning
	}
	if err := f.lifecycle.TransitionTo(app.StateStarting, "Start() called"); err != nil {
		return err
	}

	runCtx, cancel := context.WithCancel(ctx)
	f.lifecycle.SetCancel(cancel)

	pluginCfg := PluginConfig{
		EndpointURL: f.endpoint.String(),
		CertPath:    f.creds.CertPath(),
		KeyPath:     f.creds.KeyPath(),
		Credentials: f.creds,
	}
	for i, p := range f.plugins {
		pluginCfg.Logger = logAdapter.WithFields(f.logger, ports.Plugin(p.Name()))
		if err := p.Initialize(runCtx, pluginCfg); err != nil {
			f.logger.Error("plugin initialization failed",
				ports.Plugin(p.Name()),
				ports.Err(err),
			)
			f.shutdownPlugins(f.plugins[:i])
			f.lifecycle.Cancel()
			_ = f.lifecycle.TransitionTo(app.StateCrashed, "plugin init failed: "+p.Name())
			return fmt.Errorf("initialize plugin %s: %w", p.Name(), err)
		}
		f.logger.Info("plugin initialized", ports.Plugin(p.Name()))
	}

	f.checkConnection(runCtx)

	return f.lifecycle.TransitionTo(app.StateRunning, "started")
}

// checkConnection loads credentials and probes the endpoint, recording both
// results in the metrics.
func (f *Forwarder) checkConnection(ctx context.Context) bool {
	ok := f.prober.Probe(ctx)
	f.metrics.SetCredentialsVerified(f.creds.State() == domain.CredentialsVerified)
	f.metrics.SetProbeSuccess(ok)
	return ok
}

// Probe re-runs the connection check on demand.
func (f *Forwarder) Probe(ctx context.Context) bool {
	return f.checkConnection(ctx)
}

// Emit delivers every non-empty record of batch in order and then calls done.
// done is called exactly once, whatever happened to the individual records;
// per-record failures are logged, counted and reported to the event handler
// but never returned. done may be nil.
//
// Batches emitted while Shutdown is in progress are not sent; their
// non-empty records are reported as failed.
func (f *Forwarder) Emit(ctx context.Context, tag string, batch Batch, done func()) BatchResult {
	if done != nil {
		defer done()
	}
	if !f.lifecycle.BeginFlight() {
		return f.refuse(tag, batch)
	}
	defer f.lifecycle.EndFlight()

	result := f.processor.ProcessBatch(ctx, tag, batch)
	f.metrics.RecordBatch()
	f.metrics.SetCredentialsVerified(f.creds.State() == domain.CredentialsVerified)

	f.logger.Debug("batch processed",
		ports.Tag(tag),
		ports.Int("delivered", result.Delivered),
		ports.Int("failed", result.Failed),
		ports.Int("skipped", result.Skipped),
	)
	return result
}

func (f *Forwarder) refuse(tag string, batch Batch) BatchResult {
	var result BatchResult
	for _, e := range batch {
		if e.Record.Empty() {
			result.Skipped++
			continue
		}
		result.Failed++
	}
	f.logger.Warn("batch not delivered: forwarder is shutting down",
		ports.Tag(tag),
		ports.Int("records", result.Failed),
	)
	return result
}

// Shutdown waits for in-flight batches and shuts plugins down in reverse
// order. It returns ErrShutdownTimeout, leaving the forwarder Crashed, when
// batches are still in flight after the shutdown timeout.
func (f *Forwarder) Shutdown() error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if !f.lifecycle.CanStop() {
		return domain.ErrNotRunning
	}
	if err := f.lifecycle.TransitionTo(app.StateStopping, "Shutdown() called"); err != nil {
		return err
	}

	f.lifecycle.Cancel()
	err := f.lifecycle.Drain(app.ShutdownTimeout)

	f.shutdownPlugins(f.plugins)

	if err != nil {
		_ = f.lifecycle.TransitionTo(app.StateCrashed, "shutdown timeout")
		return err
	}
	return f.lifecycle.TransitionTo(app.StateStopped, "graceful shutdown")
}

func (f *Forwarder) shutdownPlugins(plugins []Plugin) {
	ctx := context.Background()
	for i := len(plugins) - 1; i >= 0; i-- {
		p := plugins[i]
		if err := p.Shutdown(ctx); err != nil {
			f.logger.Error("plugin shutdown failed",
				ports.Plugin(p.Name()),
				ports.Err(err),
			)
			continue
		}
		f.logger.Info("plugin shutdown complete", ports.Plugin(p.Name()))
	}
}

// Status returns the current lifecycle state.
func (f *Forwarder) Status() State {
	return convertState(f.lifecycle.State())
}

// CredentialState returns how far credential loading has progressed.
func (f *Forwarder) CredentialState() CredentialState {
	return f.creds.State()
}

// Endpoint returns the configured endpoint URL.
func (f *Forwarder) Endpoint() string {
	return f.endpoint.String()
}

// Stats returns a snapshot of the delivery counters.
func (f *Forwarder) Stats() Stats {
	return f.metrics.Snapshot()
}

// WriteMetrics writes the counters in the Prometheus text format.
func (f *Forwarder) WriteMetrics(w io.Writer) error {
	return f.metrics.WriteText(w)
}
