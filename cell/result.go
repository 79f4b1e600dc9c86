package cell

import (
	"github.com/teranos/ypgen/diff"
	"github.com/teranos/ypgen/metamodel"
	"github.com/teranos/ypgen/target"
)

// Mode tells where a result was written to
type Mode int

const (
	ModeStore Mode = iota
	ModeFile
)

func (m Mode) String() string {
	if m == ModeFile {
		return "file"
	}
	return "store"
}

// Outcome is what happened to the generated text
type Outcome int

const (
	// OutcomeChanged means the text was written and differed from the prior copy
	OutcomeChanged Outcome = iota
	// OutcomeUnchanged means the prior copy already matched; nothing was written
	OutcomeUnchanged
	// OutcomeDryRun means the write was skipped on request
	OutcomeDryRun
	// OutcomeFailed means generation, reading or writing failed; see Err
	OutcomeFailed
)

var outcomeNames = map[Outcome]string{
	OutcomeChanged:   "changed",
	OutcomeUnchanged: "unchanged",
	OutcomeDryRun:    "dry-run",
	OutcomeFailed:    "failed",
}

func (o Outcome) String() string {
	return outcomeNames[o]
}

// Result reports one generation call. Multi targets carry one sub-result
// per property and no text of their own.
type Result struct {
	Mode    Mode
	Element metamodel.Element
	Target  *target.Target

	PageTitle string
	// PageURL is set in store mode
	PageURL string
	// Path is set in file mode
	Path string

	Markup string
	// Prior is the stored text, nil when absent or empty
	Prior *string
	Diff  *string
	Stat  diff.Stat

	Outcome Outcome
	Err     error

	SubResults []*Result
	RunID      string

	generated bool
}

// PageChanged reports whether the generated text differs from the prior
// copy. A page without prior content is new and therefore changed. A multi
// result changed if any of its sub-results did.
func (r *Result) PageChanged() bool {
	if r.Target != nil && r.Target.IsMulti {
		for _, sub := range r.SubResults {
			if sub.PageChanged() {
				return true
			}
		}
		return false
	}
	if !r.generated {
		return false
	}
	return r.Prior == nil || r.Diff != nil
}

// Failed reports whether this result or any sub-result failed
func (r *Result) Failed() bool {
	if r.Outcome == OutcomeFailed {
		return true
	}
	for _, sub := range r.SubResults {
		if sub.Failed() {
			return true
		}
	}
	return false
}

// Reason is the failure message, empty on success
func (r *Result) Reason() string {
	if r.Err == nil {
		return ""
	}
	return r.Err.Error()
}

// DiffURL links the wiki's comparison of the last two revisions. It is only
// set for pages that were written to a store and actually changed.
func (r *Result) DiffURL() string {
	if r.Mode != ModeStore || r.Outcome != OutcomeChanged || r.PageURL == "" || !r.PageChanged() {
		return ""
	}
	return r.PageURL + "?diff=cur&oldid=prev"
}

// Location is the page URL or file path of the result
func (r *Result) Location() string {
	if r.Mode == ModeFile {
		return r.Path
	}
	return r.PageURL
}

// aggregate derives the outcome of a multi result from its sub-results
func (r *Result) aggregate() {
	r.Outcome = OutcomeUnchanged
	for _, sub := range r.SubResults {
		r.Stat.Added += sub.Stat.Added
		r.Stat.Deleted += sub.Stat.Deleted
		switch {
		case sub.Outcome == OutcomeFailed:
			r.Outcome = OutcomeFailed
			if r.Err == nil {
				r.Err = sub.Err
			}
		case r.Outcome == OutcomeFailed:
		case sub.Outcome == OutcomeChanged:
			r.Outcome = OutcomeChanged
		case sub.Outcome == OutcomeDryRun && r.Outcome == OutcomeUnchanged:
			r.Outcome = OutcomeDryRun
		}
	}
}
