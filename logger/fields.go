package logger

import (
	"context"

	"go.uber.org/zap"
)

// Standard field names for consistent structured logging across ypgen.
// Use these constants instead of raw strings to ensure consistency.
const (
	// Identity and context
	FieldRunID     = "run_id"
	FieldComponent = "component"

	// Generation
	FieldTopic     = "topic"
	FieldTarget    = "target"
	FieldPageTitle = "page_title"
	FieldPageURL   = "page_url"
	FieldDiffURL   = "diff_url"
	FieldStatus    = "status"
	FieldOutcome   = "outcome"
	FieldDryRun    = "dry_run"
	FieldChanged   = "changed"
	FieldAdded     = "added"
	FieldDeleted   = "deleted"

	// Store
	FieldWiki    = "wiki"
	FieldBaseURL = "base_url"
	FieldUser    = "user"

	// Timing
	FieldDurationMS = "duration_ms"

	// Errors
	FieldError = "error"

	// Counts and sizes
	FieldCount  = "count"
	FieldFailed = "failed"
	FieldSize   = "size"

	// Files and paths
	FieldFile = "file"
	FieldPath = "path"
)

type contextKey string

const runIDKey contextKey = "logger_run_id"

// WithRunID adds a batch run ID to the context for logging
func WithRunID(ctx context.Context, runID string) context.Context {
	return context.WithValue(ctx, runIDKey, runID)
}

// RunIDFromContext returns the batch run ID stored in ctx, if any
func RunIDFromContext(ctx context.Context) string {
	runID, _ := ctx.Value(runIDKey).(string)
	return runID
}

// ComponentLogger returns a named logger for a specific component.
// This is the preferred way to get a logger for dependency injection.
func ComponentLogger(name string) *zap.SugaredLogger {
	return Logger.Named(name)
}

// LoggerFromContext returns the given logger enriched with the run ID in ctx.
func LoggerFromContext(ctx context.Context, base *zap.SugaredLogger) *zap.SugaredLogger {
	if base == nil {
		base = Logger
	}
	if runID := RunIDFromContext(ctx); runID != "" {
		return base.With(FieldRunID, runID)
	}
	return base
}
