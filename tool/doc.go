// Package tool defines the contract boundary for agent tool integration.
//
// The package is split by concern:
//   - manifest: transport-agnostic tool/action descriptors
//   - registry: registration records and storage backends
//   - adapter: invocation interface and transport adapters
//   - validate: validation diagnostics and pipelines
//   - health: health status models and probing
//
// The contract is transport-agnostic so CLI and embedding callers share a
// single manifest/registration shape regardless of how a tool executes.
package tool
