// Package cell pairs one model element with one target.
//
// A Cell is created per (element, target) pair on demand and thrown away
// after use. It derives the page title, fetches the stored page to compute a
// display status, and generates the page either into a store or into a file.
// Cells are not safe for concurrent use; distinct cells share nothing but the
// read-only model, targets and store client.
package cell

import (
	"context"
	"fmt"

	"github.com/dustin/go-humanize"

	"github.com/teranos/ypgen/metamodel"
	"github.com/teranos/ypgen/store"
	"github.com/teranos/ypgen/target"
)

// Cell is the pairing of a model element with a target
type Cell struct {
	Element metamodel.Element
	Target  *target.Target

	Status        Status
	StatusMessage string
	// PageURL is set once the store has been consulted
	PageURL string
	// Err holds the store error behind StatusError
	Err error

	// SubCells has one cell per property of the topic, in property order.
	// Only multi targets have sub-cells.
	SubCells []*Cell
	subByKey map[string]*Cell
}

// Create builds the cell for t and el. For a multi target it eagerly builds
// one sub-cell per property of the topic, each paired with t.SubTarget.
// Sub-cells never nest further.
func Create(t *target.Target, el metamodel.Element) *Cell {
	c := &Cell{Element: el, Target: t}
	if !t.IsMulti || t.SubTarget == nil {
		return c
	}
	c.subByKey = make(map[string]*Cell)
	if topic, ok := el.(*metamodel.Topic); ok {
		for _, prop := range topic.Properties {
			sub := &Cell{Element: prop, Target: t.SubTarget}
			c.SubCells = append(c.SubCells, sub)
			c.subByKey[prop.Name] = sub
		}
	}
	return c
}

// PageTitle is the title of the page the cell generates
func (c *Cell) PageTitle() string {
	return c.Target.PageTitle(c.Element)
}

// LabelText is the grid label of the cell
func (c *Cell) LabelText() string {
	return c.Target.LabelText(c.Element)
}

// SubCell returns the sub-cell of the named property
func (c *Cell) SubCell(property string) (*Cell, bool) {
	sub, ok := c.subByKey[property]
	return sub, ok
}

// Fetch computes the display status. Multi and code targets become
// StatusInfo without touching the store. Otherwise the page is read:
// non-empty text is StatusMatch, absent or empty text is StatusMissing and a
// read failure is StatusError. A missing page is never an error.
func (c *Cell) Fetch(ctx context.Context, s store.Store) Status {
	if !c.Target.Comparable() {
		c.setInfo()
		return c.Status
	}

	c.PageURL = store.PageURL(s.BaseURL(), c.PageTitle())
	page, err := s.GetPage(ctx, c.PageTitle())
	if err != nil {
		c.setError(err)
		return c.Status
	}
	c.setFromPage(page)
	return c.Status
}

func (c *Cell) setInfo() {
	c.Status = StatusInfo
	switch {
	case c.Target.IsMulti:
		c.StatusMessage = fmt.Sprintf("%d %s", len(c.SubCells), pluralize(len(c.SubCells), "page", "pages"))
	case c.Target.IsCode():
		c.StatusMessage = "code"
	default:
		c.StatusMessage = ""
	}
}

func (c *Cell) setError(err error) {
	c.Status = StatusError
	c.Err = err
	c.StatusMessage = err.Error()
}

func (c *Cell) setFromPage(page *store.Page) {
	c.Err = nil
	if page.HasContent() {
		c.Status = StatusMatch
		c.StatusMessage = humanize.Bytes(uint64(len(page.Text)))
		return
	}
	c.Status = StatusMissing
	c.StatusMessage = "missing"
}

func pluralize(n int, one, many string) string {
	if n == 1 {
		return one
	}
	return many
}
