// Package core provides the foundational domain types and interfaces used by
// ResearchPilot. It defines the core abstractions for:
//
//   - Stages (specialist processing steps transforming pipeline state)
//   - State (the mutable aggregate owned by a single pipeline run)
//   - RoutingDecision (the classifier's category + memory verdict)
//   - Record / MemoryStore (session-scoped durable interaction log)
//   - The recoverable error taxonomy shared across packages
//
// The package intentionally keeps implementation concerns (persistence,
// dispatch, concrete stages, model access) out of scope, exposing small
// interfaces to enable custom backends and extensions.
package core
