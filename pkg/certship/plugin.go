package certship

import "context"

// Plugin extends a Forwarder. Plugins are initialized in registration order
// by Start and shut down in reverse order by Shutdown.
type Plugin interface {
	// Name identifies the plugin in logs.
	Name() string

	// Initialize is called from Start. ctx is canceled on Shutdown.
	// Returning an error aborts Start and leaves the forwarder Crashed.
	Initialize(ctx context.Context, cfg PluginConfig) error

	// Shutdown releases the plugin's resources.
	Shutdown(ctx context.Context) error
}

// CredentialLoader is the part of the credential store exposed to plugins.
type CredentialLoader interface {
	EnsureLoaded() bool
	State() CredentialState
}

// PluginConfig is what a plugin receives at initialization.
type PluginConfig struct {
	EndpointURL string
	CertPath    string
	KeyPath     string
	Credentials CredentialLoader
	Logger      Logger
}

// BasePlugin provides no-op Initialize and Shutdown.
type BasePlugin struct{}

func (BasePlugin) Initialize(context.Context, PluginConfig) error { return nil }
func (BasePlugin) Shutdown(context.Context) error                 { return nil }
