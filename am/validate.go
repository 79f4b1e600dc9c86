package am

import (
	"slices"

	"github.com/teranos/ypgen/errors"
)

// Validate checks that the configuration is valid
func (c *Config) Validate() error {
	if c.Wiki.ID == "" {
		return errors.NewInvalidRequestError("wiki.id cannot be empty")
	}

	if !slices.Contains(StoreKinds, c.Store.Kind) {
		return errors.WithHint(
			errors.NewInvalidRequestError("store.kind %q is unknown", c.Store.Kind),
			"use one of mediawiki, sqlite, memory")
	}
	if c.Store.Kind == StoreMediaWiki && c.Wiki.URL == "" {
		return errors.NewInvalidRequestError("wiki.url cannot be empty when store.kind is mediawiki")
	}
	if c.Store.Kind == StoreSQLite && c.Store.SQLitePath == "" {
		return errors.NewInvalidRequestError("store.sqlite_path cannot be empty when store.kind is sqlite")
	}

	if c.Wiki.TimeoutSeconds <= 0 {
		return errors.NewInvalidRequestError("wiki.timeout_seconds must be > 0, got %d", c.Wiki.TimeoutSeconds)
	}

	// 0 = unlimited, negative = invalid
	if c.Wiki.EditsPerMinute < 0 {
		return errors.NewInvalidRequestError("wiki.edits_per_minute must be >= 0, got %d", c.Wiki.EditsPerMinute)
	}

	if c.Generate.StatusConcurrency < 0 {
		return errors.NewInvalidRequestError("generate.status_concurrency must be >= 0, got %d", c.Generate.StatusConcurrency)
	}

	return nil
}
