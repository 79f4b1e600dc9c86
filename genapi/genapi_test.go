package genapi

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest"
	"go.uber.org/zap/zaptest/observer"

	"github.com/teranos/ypgen/cell"
	"github.com/teranos/ypgen/errors"
	yptest "github.com/teranos/ypgen/internal/testing"
	"github.com/teranos/ypgen/logger"
	"github.com/teranos/ypgen/store"
	"github.com/teranos/ypgen/target"
)

const baseURL = "https://wiki.example.org"

func newGenerator(t *testing.T, s store.Store, opts ...Option) *Generator {
	t.Helper()
	opts = append([]Option{WithStore(s), WithLogger(zaptest.NewLogger(t).Sugar())}, opts...)
	return New(yptest.CityContext(t), target.NewRegistry(), opts...)
}

func keys(pairs []Pair) []string {
	var out []string
	for _, p := range pairs {
		out = append(out, p.Topic.Name+"/"+p.Target.Key+"/"+p.Element.ElementName())
	}
	return out
}

func TestIterateGridOrder(t *testing.T) {
	g := newGenerator(t, nil)

	pairs := g.Iterate(nil, nil)
	require.Len(t, pairs, 2*7)
	assert.Equal(t, "City/category/City", keys(pairs)[0])
	assert.Equal(t, "City/properties/City", keys(pairs)[6])
	assert.Equal(t, "Country/category/Country", keys(pairs)[7])
	for _, p := range pairs {
		assert.True(t, p.Target.ShowInGrid, "bulk runs skip hidden target %s", p.Target.Key)
	}
}

func TestIterateExplicitHiddenTargets(t *testing.T) {
	g := newGenerator(t, nil)

	pairs := g.Iterate([]string{"City"}, []string{"property", "python"})
	assert.Equal(t, []string{
		"City/property/name",
		"City/property/population",
		"City/python/City",
	}, keys(pairs))
}

func TestIterateUnknownFilters(t *testing.T) {
	core, logs := observer.New(zap.WarnLevel)
	g := newGenerator(t, nil, WithLogger(zap.New(core).Sugar()))

	assert.Empty(t, g.Iterate(nil, []string{"bogus"}))
	assert.Empty(t, g.Iterate([]string{"Atlantis"}, nil))
	assert.Equal(t, 1, logs.FilterMessage("Unknown target ignored").Len())
	assert.Equal(t, 1, logs.FilterMessage("Unknown topic ignored").Len())

	assert.Equal(t, []string{"City/help/City"}, keys(g.Iterate([]string{"City", "Atlantis"}, []string{"help", "bogus"})))
}

func TestEndToEndDryRun(t *testing.T) {
	s := store.NewMemory(baseURL)
	g := newGenerator(t, s)

	results, err := g.GenerateViaStore(context.Background(), Request{
		Topics:  []string{"City"},
		Targets: []string{"category", "help", "properties"},
		DryRun:  true,
	})
	require.NoError(t, err)
	require.Len(t, results, 3)

	for _, r := range results {
		assert.True(t, r.PageChanged(), r.PageTitle)
		assert.False(t, r.Failed(), r.PageTitle)
		assert.NotEmpty(t, r.RunID)
	}
	assert.Equal(t, results[0].RunID, results[2].RunID)

	category := results[0]
	assert.Equal(t, "Category:City", category.PageTitle)
	assert.NotContains(t, category.Markup, "[[Category:City]]")
	assert.Contains(t, category.Markup, "Form:City")

	properties := results[2]
	assert.Len(t, properties.SubResults, 2)
	assert.Equal(t, cell.OutcomeDryRun, properties.Outcome)

	multi := cell.Create(properties.Target, properties.Element)
	assert.Equal(t, cell.StatusInfo, multi.Fetch(context.Background(), s))

	assert.Zero(t, s.Len(), "dry run writes nothing")
}

func TestIdempotentBatch(t *testing.T) {
	s := store.NewMemory(baseURL)
	g := newGenerator(t, s)
	ctx := context.Background()

	first, err := g.GenerateViaStore(ctx, Request{})
	require.NoError(t, err)
	assert.Equal(t, len(first), Summarize(first).Changed)

	second, err := g.GenerateViaStore(ctx, Request{})
	require.NoError(t, err)
	assert.Empty(t, Stale(second))
	assert.Equal(t, len(second), Summarize(second).Unchanged)
}

func TestFailureIsolation(t *testing.T) {
	s := store.NewMemory(baseURL)
	s.FailSaveOn["Form:City"] = true
	g := newGenerator(t, s)

	results, err := g.GenerateViaStore(context.Background(), Request{Topics: []string{"City"}})
	require.NoError(t, err)
	require.Len(t, results, 7, "one result per requested pair")

	failures := Failures(results)
	require.Len(t, failures, 1)
	assert.Equal(t, "Form:City", failures[0].PageTitle)
	assert.True(t, errors.Is(failures[0].Err, errors.ErrStoreWrite))
	assert.Equal(t, 1, Summarize(results).Failed)

	text, ok := s.Text("Template:City")
	assert.True(t, ok, "batch continued after the failure")
	assert.NotEmpty(t, text)
}

func TestLoginFailureIsFatal(t *testing.T) {
	s := store.NewMemory(baseURL)
	s.FailLogin = true
	g := newGenerator(t, s)

	results, err := g.GenerateViaStore(context.Background(), Request{})
	require.Error(t, err)
	assert.True(t, errors.IsUnauthorized(err))
	assert.Empty(t, results)
	assert.Zero(t, s.Reads(), "no cell ran")
}

func TestCancelStopsBetweenCells(t *testing.T) {
	s := store.NewMemory(baseURL)
	g := newGenerator(t, s)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	results, err := g.GenerateViaStore(ctx, Request{})
	assert.ErrorIs(t, err, context.Canceled)
	assert.Empty(t, results)
}

func TestRunIDLogged(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	s := store.NewMemory(baseURL)
	g := newGenerator(t, s, WithLogger(zap.New(core).Sugar()))

	results, err := g.GenerateViaStore(context.Background(), Request{Topics: []string{"City"}, Targets: []string{"help"}})
	require.NoError(t, err)
	require.Len(t, results, 1)

	entries := logs.FilterMessage("Generated").All()
	require.Len(t, entries, 1)
	fields := entries[0].ContextMap()
	assert.Equal(t, results[0].RunID, fields[logger.FieldRunID])
	assert.Equal(t, "Help:City", fields[logger.FieldPageTitle])
	assert.True(t, strings.HasSuffix(fields[logger.FieldDiffURL].(string), "?diff=cur&oldid=prev"))
}

func TestGenerateToFile(t *testing.T) {
	g := newGenerator(t, nil)
	dir := t.TempDir()

	results, err := g.GenerateToFile(context.Background(), dir, Request{Targets: []string{"category", "python"}})
	require.NoError(t, err)
	require.Len(t, results, 4)
	assert.FileExists(t, results[1].Path)
	assert.True(t, strings.HasSuffix(results[1].Path, "Python:City.py"))

	_, err = g.GenerateToFile(context.Background(), "", Request{})
	assert.True(t, errors.IsInvalidRequestError(err))
}

func TestStatus(t *testing.T) {
	s := store.NewMemory(baseURL)
	s.Put("Category:City", "x")
	s.Put("Property:City name", "y")
	s.FailGetOn["Help:City"] = true
	g := newGenerator(t, s)

	cells, err := g.Status(context.Background(), []string{"City"}, nil, 3)
	require.NoError(t, err)
	require.Len(t, cells, 7)

	byTitle := map[string]*cell.Cell{}
	for _, c := range cells {
		byTitle[c.PageTitle()] = c
	}
	assert.Equal(t, cell.StatusMatch, byTitle["Category:City"].Status)
	assert.Equal(t, cell.StatusMissing, byTitle["Concept:City"].Status)
	assert.Equal(t, cell.StatusError, byTitle["Help:City"].Status)

	multi := byTitle["Properties:City"]
	assert.Equal(t, cell.StatusInfo, multi.Status)
	name, _ := multi.SubCell("name")
	population, _ := multi.SubCell("population")
	assert.Equal(t, cell.StatusMatch, name.Status)
	assert.Equal(t, cell.StatusMissing, population.Status)
}
