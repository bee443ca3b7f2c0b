// Package driven defines the interfaces that core calls OUT to infrastructure.
//
// These are the "driven" or "secondary" ports in hexagonal architecture.
// Core services depend on these interfaces, and infrastructure adapters
// implement them.
//
// # Required Interfaces
//
//   - DescriptorSource: Fetches descriptor payloads by locator (HTTP, directory, SQLite)
//   - TrackingEngineProvider: A black-box tracking engine emitting lifecycle and target events
//   - Camera: Acquires exclusive camera streams
//   - ConfigStore: Application configuration
//
// # Optional Interfaces
//
//   - DescriptorStore: Writable descriptor storage, used by import commands.
//
// # Import Rules
//
//   - Can Import: domain package only
//   - Cannot Import: Any adapter package
package driven
