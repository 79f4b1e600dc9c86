package commands

import (
	"context"
	"strings"

	"github.com/spf13/cobra"

	"github.com/teranos/ypgen/am"
	"github.com/teranos/ypgen/editor"
	"github.com/teranos/ypgen/errors"
	"github.com/teranos/ypgen/genapi"
	"github.com/teranos/ypgen/logger"
	"github.com/teranos/ypgen/metamodel"
	"github.com/teranos/ypgen/store"
	"github.com/teranos/ypgen/store/mediawiki"
	"github.com/teranos/ypgen/store/sqlite"
	"github.com/teranos/ypgen/target"
)

// selection holds the flags shared by every command that works on the grid
type selection struct {
	contextPath string
	topics      []string
	targets     []string
}

func (s *selection) addFlags(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&s.contextPath, "context", "c", "", "Context description file (default: generate.context)")
	cmd.Flags().StringSliceVarP(&s.topics, "topics", "t", nil, "Topics to select (default: all)")
	cmd.Flags().StringSliceVar(&s.targets, "targets", nil, "Targets to select (default: all grid targets)")
}

// path returns the context description to load
func (s *selection) path(cfg *am.Config) string {
	if s.contextPath != "" {
		return s.contextPath
	}
	return cfg.Generate.Context
}

// session is everything a command needs to run a batch
type session struct {
	cfg         *am.Config
	contextPath string
	gen         *genapi.Generator
	store       store.Store
	closeStore  func() error
}

type sessionOptions struct {
	withStore bool
	viewer    *editor.Editor
}

// openSession loads the context for a validated config and, when asked,
// opens the store
func openSession(cfg *am.Config, sel *selection, opts sessionOptions) (*session, error) {
	var err error
	s := &session{cfg: cfg, contextPath: sel.path(cfg), closeStore: func() error { return nil }}
	if opts.withStore {
		s.store, s.closeStore, err = openStore(cfg)
		if err != nil {
			return nil, err
		}
	}

	mm, err := metamodel.Load(s.contextPath)
	if err != nil {
		s.Close()
		return nil, err
	}
	s.gen = s.newGenerator(mm, opts)
	return s, nil
}

func (s *session) newGenerator(mm *metamodel.Context, opts sessionOptions) *genapi.Generator {
	genOpts := []genapi.Option{genapi.WithLogger(logger.ComponentLogger("genapi"))}
	if s.store != nil {
		genOpts = append(genOpts, genapi.WithStore(s.store))
	}
	if opts.viewer != nil {
		genOpts = append(genOpts, genapi.WithViewer(opts.viewer))
	}
	return genapi.New(mm, target.NewRegistry(), genOpts...)
}

// Close releases the store
func (s *session) Close() {
	if err := s.closeStore(); err != nil {
		logger.Warnw("Failed to close store", logger.FieldError, err)
	}
}

// loadConfig loads and validates the configuration
func loadConfig() (*am.Config, error) {
	cfg, err := am.Load()
	if err != nil {
		return nil, errors.Wrap(err, "failed to load config")
	}
	if err := cfg.Validate(); err != nil {
		return nil, errors.Wrap(err, "configuration validation failed")
	}
	return cfg, nil
}

// openStore creates the store selected by store.kind
func openStore(cfg *am.Config) (store.Store, func() error, error) {
	noop := func() error { return nil }

	switch cfg.Store.Kind {
	case am.StoreMediaWiki:
		client, err := mediawiki.New(mediawiki.Config{
			BaseURL:        cfg.Wiki.URL,
			APIPath:        cfg.Wiki.APIPath,
			User:           cfg.Wiki.User,
			Password:       cfg.Wiki.Password,
			Timeout:        cfg.Wiki.Timeout(),
			EditsPerMinute: cfg.Wiki.EditsPerMinute,
			AllowPrivate:   cfg.Wiki.AllowPrivateIPs,
		}, logger.ComponentLogger("mediawiki"))
		if err != nil {
			return nil, nil, err
		}
		return client, noop, nil
	case am.StoreSQLite:
		db, err := sqlite.Open(cfg.Store.SQLitePath, cfg.Wiki.URL, logger.ComponentLogger("sqlite"))
		if err != nil {
			return nil, nil, err
		}
		return db, db.Close, nil
	case am.StoreMemory:
		return store.NewMemory(cfg.Wiki.URL), noop, nil
	default:
		return nil, nil, errors.NewInvalidRequestError("store.kind %q is unknown", cfg.Store.Kind)
	}
}

// commandContext returns the context of cmd, or Background when it was
// run without one
func commandContext(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}

// boolFlag returns the flag value when it was given, else the configured default
func boolFlag(cmd *cobra.Command, name string, configured bool) bool {
	if !cmd.Flags().Changed(name) {
		return configured
	}
	v, _ := cmd.Flags().GetBool(name)
	return v
}

func splitKey(key string) []string {
	return strings.Split(key, ".")
}
