package genapi

import (
	"context"

	"golang.org/x/sync/errgroup"

	"github.com/teranos/ypgen/cell"
	"github.com/teranos/ypgen/errors"
	"github.com/teranos/ypgen/logger"
)

// DefaultStatusConcurrency bounds parallel page reads in Status
const DefaultStatusConcurrency = 4

// Status builds the grid cells of the selected topics and targets and
// fetches them concurrently. Fetching is read-only, and every goroutine
// works on its own cell. Sub-cells of multi targets are fetched as well.
// Per-cell read failures end up as cell.StatusError; only cancellation of
// ctx is returned as an error.
func (g *Generator) Status(ctx context.Context, topicNames, targetNames []string, concurrency int) ([]*cell.Cell, error) {
	if g.store == nil {
		return nil, errors.NewInvalidRequestError("no content store configured")
	}
	if concurrency <= 0 {
		concurrency = DefaultStatusConcurrency
	}

	pairs := g.Iterate(topicNames, targetNames)
	cells := make([]*cell.Cell, len(pairs))
	var all []*cell.Cell
	for i, pair := range pairs {
		cells[i] = cell.Create(pair.Target, pair.Element)
		all = append(all, cells[i])
		all = append(all, cells[i].SubCells...)
	}

	eg, egCtx := errgroup.WithContext(ctx)
	eg.SetLimit(concurrency)
	for _, c := range all {
		eg.Go(func() error {
			if err := egCtx.Err(); err != nil {
				return err
			}
			c.Fetch(egCtx, g.store)
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return cells, err
	}

	g.logger.Debugw("Fetched status", logger.FieldCount, len(all))
	return cells, nil
}
