// Package ports defines the interfaces (ports) that connect the application
// layer to infrastructure adapters.
//
// # Port Interfaces
//
//   - [CredentialProvider]: Loads and caches the client certificate and key
//   - [Dispatcher]: Delivers one serialized record and classifies the outcome
//   - [Prober]: Performs the startup liveness check against the endpoint
//   - [Logger]: Structured logging abstraction
//
// # Usage
//
// The application layer (internal/app) depends only on these interfaces.
// Infrastructure adapters (internal/adapters) implement them with the file
// system and an HTTPS transport.
package ports
