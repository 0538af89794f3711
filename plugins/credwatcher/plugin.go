// Package credwatcher reloads client credentials as soon as they appear on
// disk. While the forwarder has no verified certificate it watches the
// certificate and key directories and retries the load on every change, so
// delivery resumes without waiting for the next batch. Once the credentials
// are verified the watcher exits; verified credentials are never reloaded.
package credwatcher

import (
	"context"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/bft-labs/certship/internal/app"
	"github.com/bft-labs/certship/pkg/certship"
	"github.com/bft-labs/certship/pkg/log"
)

// Config holds configuration options for the credential watcher.
type Config struct {
	// DebounceDelay is how long to wait after the last change before loading.
	// Default: 100 milliseconds
	DebounceDelay time.Duration

	// PollInitial and PollMax bound the retry interval used when a credential
	// directory does not exist yet and cannot be watched.
	// Defaults: 1 second and 30 seconds
	PollInitial time.Duration
	PollMax     time.Duration
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() Config {
	return Config{
		DebounceDelay: 100 * time.Millisecond,
		PollInitial:   time.Second,
		PollMax:       30 * time.Second,
	}
}

// Plugin implements certship.Plugin.
type Plugin struct {
	cfg Config

	mu       sync.Mutex
	creds    certship.CredentialLoader
	certPath string
	keyPath  string
	logger   log.Logger
	cancel   context.CancelFunc
	wg       sync.WaitGroup
	loaded   chan struct{}
	loadOnce sync.Once
}

// New creates a credential watcher.
func New(cfg Config) *Plugin {
	def := DefaultConfig()
	if cfg.DebounceDelay <= 0 {
		cfg.DebounceDelay = def.DebounceDelay
	}
	if cfg.PollInitial <= 0 {
		cfg.PollInitial = def.PollInitial
	}
	if cfg.PollMax <= 0 {
		cfg.PollMax = def.PollMax
	}
	return &Plugin{cfg: cfg, loaded: make(chan struct{})}
}

// Name returns the plugin identifier.
func (p *Plugin) Name() string {
	return "credwatcher"
}

// Loaded is closed once the watcher has seen the credentials verified.
func (p *Plugin) Loaded() <-chan struct{} {
	return p.loaded
}

// Initialize starts watching unless the credentials are already verified.
func (p *Plugin) Initialize(ctx context.Context, cfg certship.PluginConfig) error {
	p.mu.Lock()
	p.creds = cfg.Credentials
	p.certPath = cfg.CertPath
	p.keyPath = cfg.KeyPath
	p.logger = cfg.Logger
	if p.logger == nil {
		p.logger = log.NewNoopLogger()
	}
	p.mu.Unlock()

	if p.creds == nil || p.certPath == "" || p.keyPath == "" {
		p.logger.Warn("credential watcher disabled: no credential paths configured")
		return nil
	}
	if p.creds.State() == certship.CredentialsVerified {
		p.markLoaded()
		return nil
	}

	watchCtx, cancel := context.WithCancel(ctx)
	p.cancel = cancel

	p.wg.Add(1)
	go p.run(watchCtx)

	p.logger.Info("credential watcher started",
		log.String("cert_path", p.certPath),
		log.String("key_path", p.keyPath),
	)
	return nil
}

// Shutdown stops the watcher.
func (p *Plugin) Shutdown(ctx context.Context) error {
	if p.cancel != nil {
		p.cancel()
	}
	p.wg.Wait()
	return nil
}

func (p *Plugin) run(ctx context.Context) {
	defer p.wg.Done()

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		p.logger.Error("credential watcher: failed to create watcher", log.Err(err))
		p.poll(ctx)
		return
	}
	defer watcher.Close()

	for _, dir := range p.dirs() {
		if err := watcher.Add(dir); err != nil {
			p.logger.Warn("credential watcher: cannot watch directory, polling instead",
				log.String("dir", dir),
				log.Err(err),
			)
			p.poll(ctx)
			return
		}
	}

	// Files written before the watches were registered produce no event.
	if p.tryLoad() {
		return
	}

	var (
		debounce  *time.Timer
		debounceC <-chan time.Time
	)
	defer func() {
		if debounce != nil {
			debounce.Stop()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return

		case event, ok := <-watcher.Events:
			if !ok {
				return
			}
			if !p.relevant(event) {
				continue
			}
			if debounce == nil {
				debounce = time.NewTimer(p.cfg.DebounceDelay)
			} else {
				if !debounce.Stop() {
					select {
					case <-debounce.C:
					default:
					}
				}
				debounce.Reset(p.cfg.DebounceDelay)
			}
			debounceC = debounce.C

		case <-debounceC:
			debounceC = nil
			if p.tryLoad() {
				return
			}

		case err, ok := <-watcher.Errors:
			if !ok {
				return
			}
			p.logger.Error("credential watcher: watcher error", log.Err(err))
		}
	}
}

// poll retries the load with backoff until it succeeds or ctx ends.
func (p *Plugin) poll(ctx context.Context) {
	b := app.NewBackoff(p.cfg.PollInitial, p.cfg.PollMax)
	for {
		if err := b.Wait(ctx); err != nil {
			return
		}
		if p.tryLoad() {
			return
		}
	}
}

func (p *Plugin) tryLoad() bool {
	if !p.creds.EnsureLoaded() {
		return false
	}
	p.logger.Info("credential watcher: client credentials loaded, stopping")
	p.markLoaded()
	return true
}

func (p *Plugin) markLoaded() {
	p.loadOnce.Do(func() { close(p.loaded) })
}

func (p *Plugin) dirs() []string {
	certDir := filepath.Dir(p.certPath)
	keyDir := filepath.Dir(p.keyPath)
	if certDir == keyDir {
		return []string{certDir}
	}
	return []string{certDir, keyDir}
}

// relevant reports whether event happened in a watched directory. Any entry
// counts, not just the cert and key names: mounted secrets are swapped by
// renaming a symlink next to them, which never touches those names.
func (p *Plugin) relevant(event fsnotify.Event) bool {
	dir := filepath.Dir(filepath.Clean(event.Name))
	for _, d := range p.dirs() {
		if dir == filepath.Clean(d) {
			return true
		}
	}
	return false
}

// Ensure Plugin implements certship.Plugin.
var _ certship.Plugin = (*Plugin)(nil)
