// Package sqlite keeps snapshots of generated pages in a local SQLite file.
// It lets generation be reconciled offline: the snapshot plays the part of
// the wiki, and page URLs still point at the wiki the snapshot mirrors.
package sqlite

import (
	"context"
	"database/sql"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"go.uber.org/zap"

	"github.com/teranos/ypgen/errors"
	"github.com/teranos/ypgen/logger"
	"github.com/teranos/ypgen/store"
)

// Store is a store.Store backed by a pages table
type Store struct {
	db      *sql.DB
	baseURL string
	logger  *zap.SugaredLogger
	now     func() time.Time
}

var _ store.Store = (*Store)(nil)

// Open opens (creating if needed) the snapshot database at path
func Open(path, baseURL string, log *zap.SugaredLogger) (*Store, error) {
	if log == nil {
		log = logger.ComponentLogger("sqlite")
	}
	log.Debugw("Opening snapshot database", logger.FieldPath, path)

	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, errors.Wrap(err, "failed to open database")
	}
	for _, pragma := range []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA busy_timeout = 5000",
	} {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, errors.Wrapf(err, "failed to apply %q", pragma)
		}
	}

	s, err := New(db, baseURL, log)
	if err != nil {
		db.Close()
		return nil, err
	}
	log.Infow("Snapshot database opened", logger.FieldPath, path)
	return s, nil
}

// New wraps an open database and applies pending migrations
func New(db *sql.DB, baseURL string, log *zap.SugaredLogger) (*Store, error) {
	if log == nil {
		log = logger.ComponentLogger("sqlite")
	}
	if err := Migrate(db, log); err != nil {
		return nil, errors.Wrap(err, "failed to migrate snapshot database")
	}
	return &Store{db: db, baseURL: baseURL, logger: log, now: time.Now}, nil
}

// Close closes the database
func (s *Store) Close() error {
	return s.db.Close()
}

// Login is a no-op: a local snapshot has no session
func (s *Store) Login(ctx context.Context) error {
	return nil
}

func (s *Store) BaseURL() string {
	return s.baseURL
}

func (s *Store) GetPage(ctx context.Context, title string) (*store.Page, error) {
	page := &store.Page{Title: title}
	err := s.db.QueryRowContext(ctx, `SELECT text FROM pages WHERE title = ?`, title).Scan(&page.Text)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		return page, nil
	case err != nil:
		return nil, errors.Mark(errors.Wrapf(err, "failed to read %s", title), errors.ErrStoreRead)
	}
	page.Exists = true
	return page, nil
}

func (s *Store) SavePage(ctx context.Context, title, text, summary string) error {
	_, err := s.db.ExecContext(ctx, `INSERT INTO pages (title, text, summary, updated_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(title) DO UPDATE SET text = excluded.text, summary = excluded.summary, updated_at = excluded.updated_at`,
		title, text, summary, s.now().UTC())
	if err != nil {
		return errors.Mark(errors.Wrapf(err, "failed to save %s", title), errors.ErrStoreWrite)
	}
	s.logger.Debugw("Saved snapshot", logger.FieldPageTitle, title, logger.FieldSize, len(text))
	return nil
}

// Titles lists the stored page titles in alphabetical order
func (s *Store) Titles(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT title FROM pages ORDER BY title`)
	if err != nil {
		return nil, errors.Mark(errors.Wrap(err, "failed to list pages"), errors.ErrStoreRead)
	}
	defer rows.Close()

	var titles []string
	for rows.Next() {
		var title string
		if err := rows.Scan(&title); err != nil {
			return nil, errors.Mark(errors.Wrap(err, "failed to scan title"), errors.ErrStoreRead)
		}
		titles = append(titles, title)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Mark(errors.Wrap(err, "failed to list pages"), errors.ErrStoreRead)
	}
	return titles, nil
}
