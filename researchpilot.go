// Package researchpilot provides a high-level façade over the dispatch
// pipeline and its services (memory, literature search, classification &
// logging) for building research-planning assistants. Most applications
// interact with this package by:
//  1. Creating a Planner via New() with a model (optionally overriding the
//     default in-memory services)
//  2. Calling Run() once per query, reusing a session identifier across
//     queries that belong to the same conversation
//
// The façade delegates orchestration to dispatch.Dispatcher while keeping
// setup ergonomics concise. All defaults are safe for local development;
// production deployments typically supply a durable memory store and a
// structured logger.
package researchpilot

import (
	"context"

	"github.com/researchpilot/researchpilot/core"
	"github.com/researchpilot/researchpilot/dispatch"
	"github.com/researchpilot/researchpilot/internal/util"
	"github.com/researchpilot/researchpilot/literature"
	"github.com/researchpilot/researchpilot/logging"
	"github.com/researchpilot/researchpilot/memory"
	"github.com/researchpilot/researchpilot/model"
	"github.com/researchpilot/researchpilot/router"
	"github.com/researchpilot/researchpilot/stage"
)

// Options configures the Planner instance.
type Options struct {
	// MemoryStore persists session records across runs. Defaults to an
	// in-memory store.
	MemoryStore core.MemoryStore

	// Searcher serves literature lookups for the research analyst. Defaults
	// to the arXiv client.
	Searcher stage.Searcher

	// DispatchOptions tune retry, timeout and fallback behavior.
	DispatchOptions []func(o *dispatch.Options)

	// Logger (defaults to a NoOp logger if nil)
	Logger logging.Logger
}

// Planner is the high-level façade aggregating the dispatcher and services.
type Planner struct {
	opts       Options
	dispatcher *dispatch.Dispatcher
}

// New creates a Planner around the given reasoning model. Any unset service
// is initialized with a local default.
func New(m model.Model, optFns ...func(o *Options)) (*Planner, error) {
	opts := Options{
		MemoryStore: memory.NewInMemoryStore(),
		Searcher:    literature.NewClient(),
		Logger:      logging.NoOpLogger{},
	}
	for _, fn := range optFns {
		fn(&opts)
	}

	stages := []core.Stage{
		stage.NewMemoryRetrieval(opts.MemoryStore, func(o *stage.MemoryRetrievalOptions) {
			o.Logger = opts.Logger
		}),
		stage.NewResearchAnalyst(m, opts.Searcher, func(o *stage.ResearchAnalystOptions) {
			o.Logger = opts.Logger
		}),
		stage.NewHypothesisGenerator(m, func(o *stage.HypothesisGeneratorOptions) {
			o.Logger = opts.Logger
		}),
		stage.NewExperimentDesigner(m, func(o *stage.ExperimentDesignerOptions) {
			o.Logger = opts.Logger
		}),
		stage.NewSynthesizer(m, func(o *stage.SynthesizerOptions) {
			o.Logger = opts.Logger
		}),
		stage.NewMemoryUpdate(opts.MemoryStore, func(o *stage.MemoryUpdateOptions) {
			o.Logger = opts.Logger
		}),
	}

	dispatchOpts := append([]func(o *dispatch.Options){func(o *dispatch.Options) {
		o.Logger = opts.Logger
	}}, opts.DispatchOptions...)

	dispatcher, err := dispatch.New(router.New(m, opts.Logger), opts.MemoryStore, stages, dispatchOpts...)
	if err != nil {
		return nil, err
	}

	return &Planner{opts: opts, dispatcher: dispatcher}, nil
}

// Run dispatches one query within a session. An empty sessionID starts a
// fresh session.
func (p *Planner) Run(ctx context.Context, sessionID, query string) (*dispatch.Result, error) {
	if sessionID == "" {
		sessionID = NewSessionID()
	}
	return p.dispatcher.Dispatch(ctx, sessionID, query)
}

// Memory exposes the configured memory store, e.g. for inspection in tests
// or admin tooling.
func (p *Planner) Memory() core.MemoryStore { return p.opts.MemoryStore }

// NewSessionID returns a fresh unique session identifier.
func NewSessionID() string { return util.NewID() }
