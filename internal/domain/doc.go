// Package domain contains the core domain entities and value objects for certship.
//
// This package represents the innermost layer of the Clean Architecture. It has
// no dependencies on infrastructure concerns (HTTP, file system, logging) and
// contains only pure business logic.
//
// # Entities
//
//   - [Endpoint]: The parsed delivery target (scheme, host, port, path)
//   - [Record], [Entry], [Batch]: Host-supplied log records and their timestamps
//   - [RequestDescriptor]: A serialized record paired with its target path
//   - [Outcome]: The classified result of one delivery attempt
//   - [CredentialState]: The process-wide client credential state machine
//
// # Design Principles
//
// Domain entities are:
//   - Immutable after construction (where practical)
//   - Free of infrastructure dependencies
//   - Testable without mocks or external systems
package domain
