// Package stage contains the concrete specialist stages executed by the
// dispatcher: memory retrieval, research analysis, hypothesis generation,
// experiment design, synthesis and memory update. Each stage implements
// core.Stage and is a function from run state to run state; the dispatcher
// owns retry, timeout and skip-on-failure policy.
//
// Error convention: failures of external collaborators (model endpoint,
// literature source) are returned as core.ExternalCallError so the
// dispatcher can retry them; malformed-but-received model output degrades
// in-stage to a deterministic fallback plus a diagnostic note.
package stage
