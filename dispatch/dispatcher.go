// Package dispatch executes the orchestration loop: classify the query,
// expand the routing table into a stage plan, and run the plan with bounded
// retries, per-stage timeouts, and skip-on-failure degradation. The executed
// sequence is always exactly the table's sequence for the decided category;
// a failed specialist is skipped with a diagnostic, never replaced.
package dispatch

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/cenkalti/backoff/v4"

	"github.com/researchpilot/researchpilot/core"
	"github.com/researchpilot/researchpilot/internal/util"
	"github.com/researchpilot/researchpilot/logging"
	"github.com/researchpilot/researchpilot/memory"
	"github.com/researchpilot/researchpilot/resolve"
)

// QueryClassifier decides the routing for one query. router.Classifier
// satisfies it.
type QueryClassifier interface {
	Classify(ctx context.Context, query string, memory []core.Record) (core.RoutingDecision, error)
}

// Options configures a Dispatcher.
type Options struct {
	// MaxRetries is how many times a failed external call is retried before
	// the stage is skipped. The first attempt is not a retry.
	MaxRetries uint64
	// InitialBackoff seeds the exponential backoff between retries.
	InitialBackoff time.Duration
	// StageTimeout bounds each stage attempt. Zero disables the bound.
	StageTimeout time.Duration
	// DefaultCategory is used when classification is ambiguous or keeps
	// failing.
	DefaultCategory core.Category
	Logger          logging.Logger
}

// Result is the outcome of one dispatched run.
type Result struct {
	SessionID   string               `json:"session_id"`
	RunID       string               `json:"run_id"`
	Category    core.Category        `json:"category"`
	Response    string               `json:"response"`
	Diagnostics []string             `json:"diagnostics,omitempty"`
	Executed    []core.StageID       `json:"executed"`
	Skipped     []core.StageID       `json:"skipped,omitempty"`
	Elapsed     time.Duration        `json:"elapsed"`
	Decision    core.RoutingDecision `json:"decision"`
}

// Dispatcher owns the stage registry and runs queries through it.
type Dispatcher struct {
	*core.LoggerAdapter
	classifier QueryClassifier
	resolver   *resolve.Resolver
	store      core.MemoryStore
	stages     map[core.StageID]core.Stage
	opts       Options
}

// New constructs a Dispatcher over the given stages. Registering two stages
// with the same identifier is a construction error.
func New(classifier QueryClassifier, store core.MemoryStore, stages []core.Stage, optFns ...func(o *Options)) (*Dispatcher, error) {
	opts := Options{
		MaxRetries:      2,
		InitialBackoff:  200 * time.Millisecond,
		StageTimeout:    60 * time.Second,
		DefaultCategory: core.CategoryConceptual,
	}
	for _, fn := range optFns {
		fn(&opts)
	}
	if !opts.DefaultCategory.Valid() {
		return nil, fmt.Errorf("invalid default category %q", opts.DefaultCategory)
	}

	registry := make(map[core.StageID]core.Stage, len(stages))
	for _, s := range stages {
		if _, dup := registry[s.ID()]; dup {
			return nil, fmt.Errorf("duplicate stage %s", s.ID())
		}
		registry[s.ID()] = s
	}

	return &Dispatcher{
		LoggerAdapter: core.NewLoggerAdapter(opts.Logger),
		classifier:    classifier,
		resolver:      resolve.New(),
		store:         store,
		stages:        registry,
		opts:          opts,
	}, nil
}

// Dispatch runs one query through classification and the planned stage
// sequence and returns the synthesized result. The only fatal input error is
// an empty query; everything downstream degrades with diagnostics. A
// cancelled context aborts the run before the memory update so no partial
// record is written.
func (d *Dispatcher) Dispatch(ctx context.Context, sessionID, query string) (*Result, error) {
	started := time.Now()
	state, err := core.NewState(sessionID, util.NewID(), query)
	if err != nil {
		return nil, err
	}
	d.LogInfo("run started", "session", sessionID, "run", state.RunID)

	decision := d.classify(ctx, state)
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	d.resolveTargets(state, decision)
	if err := state.SetDecision(decision); err != nil {
		return nil, err
	}

	plan := Plan(decision)
	result := &Result{
		SessionID: sessionID,
		RunID:     state.RunID,
		Category:  decision.Category,
		Decision:  decision,
	}

	for _, id := range plan {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		stage, ok := d.stages[id]
		if !ok {
			state.AddDiagnostic("stage %s is not registered, skipped", id)
			result.Skipped = append(result.Skipped, id)
			continue
		}
		if err := d.runStage(ctx, stage, state); err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			state.AddDiagnostic("stage %s skipped after %d attempts: %v", id, d.opts.MaxRetries+1, err)
			result.Skipped = append(result.Skipped, id)
			d.LogWarn("stage skipped", "stage", id, "error", err)
			continue
		}
		result.Executed = append(result.Executed, id)
	}

	result.Response = state.Response()
	result.Diagnostics = state.Diagnostics()
	result.Elapsed = time.Since(started)
	d.LogInfo("run finished", "run", state.RunID, "category", result.Category,
		"executed", len(result.Executed), "skipped", len(result.Skipped), "elapsed", result.Elapsed)
	return result, nil
}

// classify obtains the routing decision, retrying transient failures. Any
// terminal classification failure degrades to the configured default category
// rather than failing the run.
func (d *Dispatcher) classify(ctx context.Context, state *core.State) core.RoutingDecision {
	// Prior records inform both the prompt and the needs-memory heuristic.
	// A failing store just means classification sees no history.
	priorRecords, err := d.store.RetrieveRelevant(state.SessionID, state.Query, memory.DefaultRetrievalLimit)
	if err != nil {
		d.LogWarn("classification context unavailable", "error", err)
		priorRecords = nil
	}

	var decision core.RoutingDecision
	op := func() error {
		var err error
		decision, err = d.classifier.Classify(ctx, state.Query, priorRecords)
		if err != nil && !isRetryable(ctx, err) {
			return backoff.Permanent(err)
		}
		return err
	}
	if err := backoff.Retry(op, d.newBackOff(ctx)); err != nil {
		state.AddDiagnostic("classification failed (%v), defaulting to %s", err, d.opts.DefaultCategory)
		return core.RoutingDecision{
			Category:   d.opts.DefaultCategory,
			Confidence: core.ConfidenceLow,
			Reasoning:  "fallback after classification failure",
		}
	}
	return decision
}

// resolveTargets normalizes the classifier's free-form stage suggestions.
// The result is telemetry only; unresolvable names earn a diagnostic and the
// category default is substituted in the decision's target list.
func (d *Dispatcher) resolveTargets(state *core.State, decision core.RoutingDecision) {
	for i, raw := range decision.TargetStages {
		id, matched := d.resolver.Resolve(raw, decision.Category)
		if !matched {
			state.AddDiagnostic("%v: %q, substituted %s", core.ErrUnresolvedStageName, raw, id)
		}
		decision.TargetStages[i] = string(id)
		d.LogDebug("target stage resolved", "raw", raw, "stage", id, "matched", matched)
	}
}

// runStage executes one stage with the retry policy: external-call failures
// and per-attempt timeouts are retried with exponential backoff, everything
// else is permanent.
func (d *Dispatcher) runStage(ctx context.Context, stage core.Stage, state *core.State) error {
	op := func() error {
		attemptCtx := ctx
		cancel := func() {}
		if d.opts.StageTimeout > 0 {
			attemptCtx, cancel = context.WithTimeout(ctx, d.opts.StageTimeout)
		}
		err := stage.Run(attemptCtx, state)
		cancel()
		if err == nil {
			return nil
		}
		if !isRetryable(ctx, err) {
			return backoff.Permanent(err)
		}
		d.LogDebug("stage attempt failed, retrying", "stage", stage.ID(), "error", err)
		return err
	}
	return backoff.Retry(op, d.newBackOff(ctx))
}

func (d *Dispatcher) newBackOff(ctx context.Context) backoff.BackOff {
	bo := backoff.NewExponentialBackOff()
	bo.InitialInterval = d.opts.InitialBackoff
	return backoff.WithMaxRetries(backoff.WithContext(bo, ctx), d.opts.MaxRetries)
}

// isRetryable reports whether a stage attempt failure is worth retrying: the
// parent context must still be live and the error must be an external call
// failure or a per-attempt timeout.
func isRetryable(ctx context.Context, err error) bool {
	if ctx.Err() != nil {
		return false
	}
	var extErr *core.ExternalCallError
	if errors.As(err, &extErr) {
		return true
	}
	return errors.Is(err, context.DeadlineExceeded)
}
