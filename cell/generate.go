package cell

import (
	"context"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/natefinch/atomic"

	"github.com/teranos/ypgen/diff"
	"github.com/teranos/ypgen/errors"
	"github.com/teranos/ypgen/logger"
	"github.com/teranos/ypgen/store"
	"github.com/teranos/ypgen/version"
)

// Viewer shows generated text to the user, typically in an editor
type Viewer interface {
	View(ctx context.Context, title, text string) error
}

// Options control a generation call
type Options struct {
	// DryRun computes text and diff but writes nothing
	DryRun bool
	// WithEditor hands the diff (or the text of a new page) to Viewer
	WithEditor bool
	Viewer     Viewer
	// Summary is the edit summary, version.EditSummary() when empty
	Summary string
	RunID   string
}

func (o Options) summary() string {
	if o.Summary != "" {
		return o.Summary
	}
	return version.EditSummary()
}

func (c *Cell) newResult(mode Mode, opts Options) *Result {
	return &Result{
		Mode:      mode,
		Element:   c.Element,
		Target:    c.Target,
		PageTitle: c.PageTitle(),
		RunID:     opts.RunID,
	}
}

// GenerateViaStore generates the page text and reconciles it with the store.
//
// The prior page is always read, so repeated generation against an unchanged
// model finds no difference and writes nothing. Per-page failures are
// recorded in the result. Only authentication failures are returned as an
// error, because no further page can be written without a session.
func (c *Cell) GenerateViaStore(ctx context.Context, s store.Store, opts Options) (*Result, error) {
	r := c.newResult(ModeStore, opts)

	if c.Target.IsMulti {
		c.setInfo()
		for _, sub := range c.SubCells {
			subResult, err := sub.GenerateViaStore(ctx, s, opts)
			if subResult != nil {
				r.SubResults = append(r.SubResults, subResult)
			}
			if err != nil {
				r.aggregate()
				return r, err
			}
		}
		r.aggregate()
		return r, nil
	}

	markup, err := c.Target.Generate(c.Element)
	if err != nil {
		return r.fail(err), nil
	}
	r.Markup = markup
	r.generated = true

	r.PageURL = store.PageURL(s.BaseURL(), r.PageTitle)
	c.PageURL = r.PageURL
	page, err := s.GetPage(ctx, r.PageTitle)
	if err != nil {
		c.setError(err)
		if errors.IsUnauthorized(err) {
			return r.fail(err), err
		}
		return r.fail(err), nil
	}
	c.setFromPage(page)
	if c.Target.IsCode() {
		c.setInfo()
	}
	if page.HasContent() {
		r.Prior = &page.Text
	}
	r.reconcile()

	switch {
	case r.Outcome == OutcomeUnchanged:
	case opts.DryRun:
		r.Outcome = OutcomeDryRun
	default:
		if err := s.SavePage(ctx, r.PageTitle, markup, opts.summary()); err != nil {
			if errors.IsUnauthorized(err) {
				return r.fail(err), err
			}
			return r.fail(err), nil
		}
		r.Outcome = OutcomeChanged
	}

	c.view(ctx, r, opts)
	return r, nil
}

// GenerateToFile generates the page text into {dir}/{page title}{extension}.
// Parent directories are created as needed and the file is replaced
// atomically. Filesystem failures are recorded in the result.
func (c *Cell) GenerateToFile(ctx context.Context, dir string, opts Options) *Result {
	r := c.newResult(ModeFile, opts)

	if c.Target.IsMulti {
		c.setInfo()
		for _, sub := range c.SubCells {
			r.SubResults = append(r.SubResults, sub.GenerateToFile(ctx, dir, opts))
		}
		r.aggregate()
		return r
	}

	r.Path = filepath.Join(dir, r.PageTitle+c.Target.FileExtension)
	markup, err := c.Target.Generate(c.Element)
	if err != nil {
		return r.fail(err)
	}
	r.Markup = markup
	r.generated = true

	prior, err := os.ReadFile(r.Path)
	switch {
	case errors.Is(err, fs.ErrNotExist) || errors.Is(err, syscall.ENOTDIR):
		c.setFromPage(&store.Page{Title: r.PageTitle})
	case err != nil:
		c.setError(err)
		return r.fail(errors.Mark(errors.Wrapf(err, "failed to read %s", r.Path), errors.ErrStoreRead))
	default:
		text := string(prior)
		c.setFromPage(&store.Page{Title: r.PageTitle, Exists: true, Text: text})
		if text != "" {
			r.Prior = &text
		}
	}
	if c.Target.IsCode() {
		c.setInfo()
	}
	r.reconcile()

	switch {
	case r.Outcome == OutcomeUnchanged:
	case opts.DryRun:
		r.Outcome = OutcomeDryRun
	default:
		if err := writeFile(r.Path, markup); err != nil {
			return r.fail(err)
		}
		r.Outcome = OutcomeChanged
	}

	c.view(ctx, r, opts)
	return r
}

func writeFile(path, text string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return errors.Mark(errors.Wrapf(err, "failed to create directory for %s", path), errors.ErrStoreWrite)
	}
	if err := atomic.WriteFile(path, strings.NewReader(text)); err != nil {
		return errors.Mark(errors.Wrapf(err, "failed to write %s", path), errors.ErrStoreWrite)
	}
	return nil
}

// reconcile fills diff and stat and marks results without changes.
// In store mode both sides are compared as the wiki keeps them, since a
// saved page loses its trailing whitespace.
func (r *Result) reconcile() {
	prior, markup := r.Prior, r.Markup
	if r.Mode == ModeStore {
		markup = diff.AsStored(markup)
		if prior != nil {
			stored := diff.AsStored(*prior)
			prior = &stored
		}
	}
	r.Diff = diff.Named(prior, markup, r.PageTitle, r.PageTitle+" (generated)")
	r.Stat = diff.StatOf(prior, markup)
	if r.Prior != nil && r.Diff == nil {
		r.Outcome = OutcomeUnchanged
	} else {
		r.Outcome = OutcomeChanged
	}
}

func (r *Result) fail(err error) *Result {
	r.Outcome = OutcomeFailed
	r.Err = err
	return r
}

// view hands the result to the viewer. Viewer failures are logged only:
// the page has already been generated or written at this point.
func (c *Cell) view(ctx context.Context, r *Result, opts Options) {
	if !opts.WithEditor || opts.Viewer == nil {
		return
	}
	text := r.Markup
	if r.Diff != nil && r.Prior != nil {
		text = *r.Diff
	}
	if err := opts.Viewer.View(ctx, r.PageTitle, text); err != nil {
		logger.Warnw("Viewer failed", logger.FieldPageTitle, r.PageTitle, logger.FieldError, err)
	}
}
