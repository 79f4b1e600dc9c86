// Package genapi drives generation over the cross product of topics and
// targets, one cell at a time.
package genapi

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/teranos/ypgen/cell"
	"github.com/teranos/ypgen/errors"
	"github.com/teranos/ypgen/logger"
	"github.com/teranos/ypgen/metamodel"
	"github.com/teranos/ypgen/store"
	"github.com/teranos/ypgen/target"
)

// Generator runs batches against one context with one registry
type Generator struct {
	context  *metamodel.Context
	registry *target.Registry
	store    store.Store
	viewer   cell.Viewer
	logger   *zap.SugaredLogger
}

// Option configures a Generator
type Option func(*Generator)

// WithStore sets the content store used by GenerateViaStore and Status
func WithStore(s store.Store) Option {
	return func(g *Generator) {
		g.store = s
	}
}

// WithViewer sets the viewer used when a request asks for the editor
func WithViewer(v cell.Viewer) Option {
	return func(g *Generator) {
		g.viewer = v
	}
}

// WithLogger replaces the component logger
func WithLogger(l *zap.SugaredLogger) Option {
	return func(g *Generator) {
		g.logger = l
	}
}

// New creates a Generator for ctx using the targets of registry
func New(ctx *metamodel.Context, registry *target.Registry, opts ...Option) *Generator {
	g := &Generator{
		context:  ctx,
		registry: registry,
		logger:   logger.ComponentLogger("genapi"),
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Context returns the model the generator works on
func (g *Generator) Context() *metamodel.Context {
	return g.context
}

// Registry returns the generator's targets
func (g *Generator) Registry() *target.Registry {
	return g.registry
}

// Request selects the pairs of a batch and how to generate them.
// Nil Topics or Targets select everything eligible.
type Request struct {
	Topics     []string
	Targets    []string
	DryRun     bool
	WithEditor bool
}

func (g *Generator) options(req Request, runID string) cell.Options {
	return cell.Options{
		DryRun:     req.DryRun,
		WithEditor: req.WithEditor,
		Viewer:     g.viewer,
		RunID:      runID,
	}
}

// GenerateViaStore logs in once and then generates every selected pair into
// the store. A login failure aborts the batch before any cell runs, and so
// does an authentication failure during a save. Any other per-page failure
// is recorded in its result and the batch continues. Cancelling ctx stops
// the batch between two cells.
func (g *Generator) GenerateViaStore(ctx context.Context, req Request) ([]*cell.Result, error) {
	if g.store == nil {
		return nil, errors.NewInvalidRequestError("no content store configured")
	}
	runID := uuid.NewString()
	ctx = logger.WithRunID(ctx, runID)
	log := logger.LoggerFromContext(ctx, g.logger)
	start := time.Now()

	if err := g.store.Login(ctx); err != nil {
		log.Errorw("Login failed, nothing generated", logger.FieldBaseURL, g.store.BaseURL(), logger.FieldError, err)
		return nil, errors.Wrap(err, "login failed")
	}

	pairs := g.Iterate(req.Topics, req.Targets)
	opts := g.options(req, runID)
	results := make([]*cell.Result, 0, len(pairs))
	for _, pair := range pairs {
		if err := ctx.Err(); err != nil {
			log.Warnw("Batch stopped", logger.FieldCount, len(results), logger.FieldError, err)
			return results, err
		}
		c := cell.Create(pair.Target, pair.Element)
		r, err := c.GenerateViaStore(ctx, g.store, opts)
		results = append(results, r)
		g.logResult(log, pair, r)
		if err != nil {
			log.Errorw("Session lost, batch aborted", logger.FieldPageTitle, r.PageTitle, logger.FieldError, err)
			return results, err
		}
	}

	g.logSummary(log, results, start)
	return results, nil
}

// GenerateToFile generates every selected pair into files below dir.
// Filesystem failures are recorded per result.
func (g *Generator) GenerateToFile(ctx context.Context, dir string, req Request) ([]*cell.Result, error) {
	if dir == "" {
		return nil, errors.NewInvalidRequestError("no target directory given")
	}
	runID := uuid.NewString()
	ctx = logger.WithRunID(ctx, runID)
	log := logger.LoggerFromContext(ctx, g.logger).With(logger.FieldPath, dir)
	start := time.Now()

	pairs := g.Iterate(req.Topics, req.Targets)
	opts := g.options(req, runID)
	results := make([]*cell.Result, 0, len(pairs))
	for _, pair := range pairs {
		if err := ctx.Err(); err != nil {
			log.Warnw("Batch stopped", logger.FieldCount, len(results), logger.FieldError, err)
			return results, err
		}
		r := cell.Create(pair.Target, pair.Element).GenerateToFile(ctx, dir, opts)
		results = append(results, r)
		g.logResult(log, pair, r)
	}

	g.logSummary(log, results, start)
	return results, nil
}

func (g *Generator) logResult(log *zap.SugaredLogger, pair Pair, r *cell.Result) {
	fields := []interface{}{
		logger.FieldTopic, pair.Topic.Name,
		logger.FieldTarget, pair.Target.Key,
		logger.FieldPageTitle, r.PageTitle,
		logger.FieldOutcome, r.Outcome.String(),
	}
	switch {
	case r.Failed() && errors.IsNotImplemented(r.Err):
		log.Errorw("Target cannot generate", append(fields, logger.FieldError, r.Err)...)
	case r.Failed():
		log.Warnw("Generation failed", append(fields, logger.FieldError, r.Err)...)
	default:
		fields = append(fields, logger.FieldAdded, r.Stat.Added, logger.FieldDeleted, r.Stat.Deleted)
		if url := r.DiffURL(); url != "" {
			fields = append(fields, logger.FieldDiffURL, url)
		}
		log.Infow("Generated", fields...)
	}
}

func (g *Generator) logSummary(log *zap.SugaredLogger, results []*cell.Result, start time.Time) {
	s := Summarize(results)
	log.Infow("Batch finished",
		logger.FieldCount, s.Total,
		logger.FieldChanged, s.Changed,
		logger.FieldFailed, s.Failed,
		logger.FieldDurationMS, time.Since(start).Milliseconds())
}
