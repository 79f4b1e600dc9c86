package genapi

import "github.com/teranos/ypgen/cell"

// Summary counts the outcomes of a batch
type Summary struct {
	Total     int
	Changed   int
	Unchanged int
	DryRun    int
	Failed    int
}

// Summarize counts results by outcome. Multi results count once.
func Summarize(results []*cell.Result) Summary {
	s := Summary{Total: len(results)}
	for _, r := range results {
		switch {
		case r.Failed():
			s.Failed++
		case r.Outcome == cell.OutcomeChanged:
			s.Changed++
		case r.Outcome == cell.OutcomeDryRun:
			s.DryRun++
		default:
			s.Unchanged++
		}
	}
	return s
}

// Stale returns the results whose page differs from the generated text,
// flattening multi results into their changed sub-results
func Stale(results []*cell.Result) []*cell.Result {
	var stale []*cell.Result
	for _, r := range results {
		if len(r.SubResults) > 0 {
			stale = append(stale, Stale(r.SubResults)...)
			continue
		}
		if r.PageChanged() {
			stale = append(stale, r)
		}
	}
	return stale
}

// Failures returns the failed results, flattening multi results
func Failures(results []*cell.Result) []*cell.Result {
	var failed []*cell.Result
	for _, r := range results {
		if len(r.SubResults) > 0 {
			failed = append(failed, Failures(r.SubResults)...)
			continue
		}
		if r.Failed() {
			failed = append(failed, r)
		}
	}
	return failed
}
