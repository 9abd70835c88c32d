// Package memory contains concrete MemoryStore implementations. The store
// interface and Record type reside in the core package. Import
// github.com/researchpilot/researchpilot/core and depend on core.MemoryStore
// in your code; select an implementation (in-memory for tests, the JSONL
// FileStore or the sqlite adapter for durable sessions) at wiring time.
//
// Rationale: keeps domain contracts centralized while allowing pluggable
// backends (databases, embedding indexes, etc.) to be added without
// introducing dependency cycles.
package memory
