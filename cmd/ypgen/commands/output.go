package commands

import (
	"fmt"
	"io"
	"strings"

	"github.com/pterm/pterm"

	"github.com/teranos/ypgen/cell"
	"github.com/teranos/ypgen/errors"
	"github.com/teranos/ypgen/genapi"
	"github.com/teranos/ypgen/metamodel"
	"github.com/teranos/ypgen/target"
)

func renderTable(w io.Writer, data pterm.TableData) error {
	out, err := pterm.DefaultTable.WithHasHeader().WithData(data).Srender()
	if err != nil {
		return errors.Wrap(err, "failed to render table")
	}
	_, err = fmt.Fprintln(w, out)
	return err
}

// renderResults prints one row per page, multi results expanded
func renderResults(w io.Writer, results []*cell.Result) error {
	data := pterm.TableData{{"Page", "Target", "Outcome", "Changes", "Location"}}
	var add func(r *cell.Result)
	add = func(r *cell.Result) {
		if len(r.SubResults) > 0 {
			for _, sub := range r.SubResults {
				add(sub)
			}
			return
		}
		location := r.Location()
		if r.Failed() {
			location = r.Reason()
		} else if url := r.DiffURL(); url != "" {
			location = url
		}
		data = append(data, []string{r.PageTitle, r.Target.Key, outcomeText(r), r.Stat.String(), location})
	}
	for _, r := range results {
		add(r)
	}
	return renderTable(w, data)
}

func outcomeText(r *cell.Result) string {
	switch r.Outcome {
	case cell.OutcomeFailed:
		return pterm.Red(r.Outcome.String())
	case cell.OutcomeChanged:
		return pterm.Green(r.Outcome.String())
	case cell.OutcomeDryRun:
		if r.PageChanged() {
			return pterm.Yellow(r.Outcome.String())
		}
		return r.Outcome.String()
	default:
		return pterm.Gray(r.Outcome.String())
	}
}

func renderSummary(w io.Writer, s genapi.Summary) {
	line := fmt.Sprintf("%d results: %d changed, %d unchanged, %d dry-run, %d failed",
		s.Total, s.Changed, s.Unchanged, s.DryRun, s.Failed)
	if s.Failed > 0 {
		fmt.Fprint(w, pterm.Warning.Sprintln(line))
		return
	}
	fmt.Fprint(w, pterm.Success.Sprintln(line))
}

// rowName is the topic a grid cell belongs to
func rowName(el metamodel.Element) string {
	if prop, ok := el.(*metamodel.Property); ok {
		return prop.Topic
	}
	return el.ElementName()
}

// renderGrid prints a topic by target table of status symbols. Multi cells
// show their own symbol followed by the counts of their sub-cells.
func renderGrid(w io.Writer, cells []*cell.Cell) error {
	var rows, cols []string
	seenRow, seenCol := map[string]bool{}, map[string]bool{}
	grid := map[string]map[string][]*cell.Cell{}
	for _, c := range cells {
		row, col := rowName(c.Element), c.Target.Key
		if !seenRow[row] {
			seenRow[row] = true
			rows = append(rows, row)
			grid[row] = map[string][]*cell.Cell{}
		}
		if !seenCol[col] {
			seenCol[col] = true
			cols = append(cols, col)
		}
		grid[row][col] = append(grid[row][col], c)
	}

	data := pterm.TableData{append([]string{"Topic"}, cols...)}
	for _, row := range rows {
		line := []string{row}
		for _, col := range cols {
			line = append(line, gridCellText(grid[row][col]))
		}
		data = append(data, line)
	}
	if err := renderTable(w, data); err != nil {
		return err
	}

	for _, c := range cells {
		for _, failed := range append([]*cell.Cell{c}, c.SubCells...) {
			if failed.Status == cell.StatusError {
				fmt.Fprint(w, pterm.Error.Sprintf("%s: %s\n", failed.LabelText(), failed.StatusMessage))
			}
		}
	}
	return nil
}

func gridCellText(cells []*cell.Cell) string {
	var parts []string
	for _, c := range cells {
		text := c.Status.Symbol()
		if len(c.SubCells) > 0 {
			counts := map[cell.Status]int{}
			for _, sub := range c.SubCells {
				counts[sub.Status]++
			}
			for _, status := range []cell.Status{cell.StatusMatch, cell.StatusMissing, cell.StatusError, cell.StatusInfo} {
				if counts[status] > 0 {
					text += fmt.Sprintf(" %d%s", counts[status], status.Symbol())
				}
			}
		}
		parts = append(parts, text)
	}
	return strings.Join(parts, "")
}

func renderTargets(w io.Writer, registry *target.Registry) error {
	data := pterm.TableData{{"Key", "Name", "Kind", "Icon", "Grid", "Multi", "Extension"}}
	for _, t := range registry.Targets() {
		data = append(data, []string{
			t.Key, t.Name, t.Kind.String(), t.Icon,
			yesNo(t.ShowInGrid), yesNo(t.IsMulti), t.FileExtension,
		})
	}
	return renderTable(w, data)
}

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return ""
}
