package cell

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/teranos/ypgen/errors"
	yptest "github.com/teranos/ypgen/internal/testing"
	"github.com/teranos/ypgen/store"
	"github.com/teranos/ypgen/version"
)

type recordingViewer struct {
	titles []string
	texts  []string
	err    error
}

func (v *recordingViewer) View(_ context.Context, title, text string) error {
	v.titles = append(v.titles, title)
	v.texts = append(v.texts, text)
	return v.err
}

func loggedInStore(t *testing.T) *store.Memory {
	t.Helper()
	s := store.NewMemory(baseURL)
	require.NoError(t, s.Login(context.Background()))
	return s
}

func TestGenerateViaStoreIdempotent(t *testing.T) {
	city := yptest.City(t)
	s := loggedInStore(t)
	ctx := context.Background()

	for _, key := range []string{"category", "concept", "form", "help", "listOf", "template", "python"} {
		t.Run(key, func(t *testing.T) {
			first, err := Create(getTarget(t, key), city).GenerateViaStore(ctx, s, Options{})
			require.NoError(t, err)
			assert.Equal(t, OutcomeChanged, first.Outcome)
			assert.True(t, first.PageChanged())
			assert.Nil(t, first.Prior)
			assert.NotEmpty(t, first.DiffURL())

			second, err := Create(getTarget(t, key), city).GenerateViaStore(ctx, s, Options{})
			require.NoError(t, err)
			assert.Nil(t, second.Diff, "second run leaves no residual diff")
			assert.False(t, second.PageChanged())
			assert.Equal(t, OutcomeUnchanged, second.Outcome)
			assert.Empty(t, second.DiffURL())
			assert.True(t, second.Stat.Zero())
		})
	}
	assert.Equal(t, 7, s.Saves(), "unchanged pages are not saved again")
}

func TestGenerateViaStoreUsesEditSummaryAndStatus(t *testing.T) {
	city := yptest.City(t)
	s := loggedInStore(t)
	s.Put("Category:City", "outdated\n")

	c := Create(getTarget(t, "category"), city)
	r, err := c.GenerateViaStore(context.Background(), s, Options{RunID: "run-1"})
	require.NoError(t, err)

	assert.Equal(t, StatusMatch, c.Status)
	require.NotNil(t, r.Prior)
	assert.Equal(t, "outdated\n", *r.Prior)
	require.NotNil(t, r.Diff)
	assert.Contains(t, *r.Diff, "-outdated\n")
	assert.Equal(t, 1, r.Stat.Deleted)
	assert.Equal(t, baseURL+"/index.php/Category:City?diff=cur&oldid=prev", r.DiffURL())
	assert.Equal(t, "run-1", r.RunID)
	assert.Equal(t, "modified by ypgen "+version.Version, version.EditSummary())

	text, _ := s.Text("Category:City")
	assert.Equal(t, r.Markup, text)
}

func TestGenerateViaStoreDryRun(t *testing.T) {
	city := yptest.City(t)
	s := store.NewMemory(baseURL)

	r, err := Create(getTarget(t, "help"), city).GenerateViaStore(context.Background(), s, Options{DryRun: true})
	require.NoError(t, err)
	assert.Equal(t, OutcomeDryRun, r.Outcome)
	assert.True(t, r.PageChanged())
	assert.Empty(t, r.DiffURL())
	assert.Zero(t, s.Len())
}

func TestGenerateViaStoreEmptyPageIsNew(t *testing.T) {
	city := yptest.City(t)
	s := loggedInStore(t)
	s.Put("Concept:City", "")

	c := Create(getTarget(t, "concept"), city)
	r, err := c.GenerateViaStore(context.Background(), s, Options{DryRun: true})
	require.NoError(t, err)
	assert.Equal(t, StatusMissing, c.Status)
	assert.Nil(t, r.Prior)
	assert.True(t, r.PageChanged())
}

func TestGenerateViaStoreMulti(t *testing.T) {
	city := yptest.City(t)
	s := loggedInStore(t)

	c := Create(getTarget(t, "properties"), city)
	r, err := c.GenerateViaStore(context.Background(), s, Options{})
	require.NoError(t, err)

	assert.Equal(t, StatusInfo, c.Status)
	require.Len(t, r.SubResults, 2)
	assert.Equal(t, "Property:City name", r.SubResults[0].PageTitle)
	assert.Equal(t, OutcomeChanged, r.Outcome)
	assert.True(t, r.PageChanged())
	assert.Empty(t, r.Markup)
	assert.Equal(t, 2, s.Saves())
}

func TestGenerateViaStoreWriteFailure(t *testing.T) {
	city := yptest.City(t)
	s := loggedInStore(t)
	s.FailSaveOn["Property:City population"] = true

	r, err := Create(getTarget(t, "properties"), city).GenerateViaStore(context.Background(), s, Options{})
	require.NoError(t, err, "write failures stay in the result")
	assert.True(t, r.Failed())
	assert.Equal(t, OutcomeFailed, r.Outcome)
	assert.False(t, r.SubResults[0].Failed())
	assert.True(t, r.SubResults[1].Failed())
	assert.True(t, errors.Is(r.SubResults[1].Err, errors.ErrStoreWrite))
	assert.NotEmpty(t, r.Reason())
}

func TestGenerateViaStoreAuthFailurePropagates(t *testing.T) {
	city := yptest.City(t)
	s := store.NewMemory(baseURL) // never logged in

	r, err := Create(getTarget(t, "form"), city).GenerateViaStore(context.Background(), s, Options{})
	require.Error(t, err)
	assert.True(t, errors.IsUnauthorized(err))
	assert.True(t, r.Failed())
}

func TestGenerateViaStoreReadFailure(t *testing.T) {
	city := yptest.City(t)
	s := loggedInStore(t)
	s.FailGetOn["Template:City"] = true

	c := Create(getTarget(t, "template"), city)
	r, err := c.GenerateViaStore(context.Background(), s, Options{})
	require.NoError(t, err)
	assert.Equal(t, OutcomeFailed, r.Outcome)
	assert.Equal(t, StatusError, c.Status)
	assert.True(t, errors.Is(r.Err, errors.ErrStoreRead))
	assert.Zero(t, s.Saves())
}

func TestGenerateViaStoreViewer(t *testing.T) {
	city := yptest.City(t)
	s := loggedInStore(t)
	s.Put("Help:City", "old\n")
	viewer := &recordingViewer{err: errors.New("editor exited 1")}

	r, err := Create(getTarget(t, "help"), city).GenerateViaStore(context.Background(), s,
		Options{DryRun: true, WithEditor: true, Viewer: viewer})
	require.NoError(t, err)
	assert.False(t, r.Failed(), "viewer errors do not fail the page")
	require.Equal(t, []string{"Help:City"}, viewer.titles)
	assert.Equal(t, *r.Diff, viewer.texts[0])

	_, err = Create(getTarget(t, "form"), city).GenerateViaStore(context.Background(), s, Options{DryRun: true, Viewer: viewer})
	require.NoError(t, err)
	assert.Len(t, viewer.titles, 1, "viewer only runs with WithEditor")
}

func TestGenerateToFile(t *testing.T) {
	city := yptest.City(t)
	dir := filepath.Join(t.TempDir(), "wikibackup", "test")
	ctx := context.Background()

	r := Create(getTarget(t, "category"), city).GenerateToFile(ctx, dir, Options{})
	require.NoError(t, r.Err)
	assert.Equal(t, filepath.Join(dir, "Category:City.wiki"), r.Path)
	assert.Equal(t, r.Path, r.Location())
	assert.Equal(t, OutcomeChanged, r.Outcome)
	assert.Empty(t, r.DiffURL(), "files have no diff url")

	data, err := os.ReadFile(r.Path)
	require.NoError(t, err)
	assert.Equal(t, r.Markup, string(data))

	again := Create(getTarget(t, "category"), city).GenerateToFile(ctx, dir, Options{})
	assert.Equal(t, OutcomeUnchanged, again.Outcome)
	assert.False(t, again.PageChanged())

	code := Create(getTarget(t, "python"), city).GenerateToFile(ctx, dir, Options{})
	assert.Equal(t, filepath.Join(dir, "Python:City.py"), code.Path)
	assert.FileExists(t, code.Path)
}

func TestGenerateToFileDryRunAndMulti(t *testing.T) {
	city := yptest.City(t)
	dir := t.TempDir()
	ctx := context.Background()

	dry := Create(getTarget(t, "listOf"), city).GenerateToFile(ctx, dir, Options{DryRun: true})
	assert.Equal(t, OutcomeDryRun, dry.Outcome)
	assert.NoFileExists(t, dry.Path)

	multi := Create(getTarget(t, "properties"), city).GenerateToFile(ctx, dir, Options{})
	require.Len(t, multi.SubResults, 2)
	assert.FileExists(t, filepath.Join(dir, "Property:City name.wiki"))
	assert.FileExists(t, filepath.Join(dir, "Property:City population.wiki"))
}

func TestGenerateToFileWriteFailure(t *testing.T) {
	city := yptest.City(t)
	parent := t.TempDir()
	blocker := filepath.Join(parent, "blocker")
	require.NoError(t, os.WriteFile(blocker, []byte("not a directory"), 0o644))

	r := Create(getTarget(t, "form"), city).GenerateToFile(context.Background(), filepath.Join(blocker, "out"), Options{})
	assert.Equal(t, OutcomeFailed, r.Outcome)
	assert.True(t, errors.Is(r.Err, errors.ErrStoreWrite))
}

func TestGenerateViaStoreIgnoresTrailingWhitespace(t *testing.T) {
	city := yptest.City(t)
	s := loggedInStore(t)
	ctx := context.Background()
	concept := getTarget(t, "concept")

	markup, err := concept.Generate(city)
	require.NoError(t, err)
	require.NoError(t, s.SavePage(ctx, "Concept:City", strings.TrimRight(markup, "\n"), ""))
	saves := s.Saves()

	r, err := Create(concept, city).GenerateViaStore(ctx, s, Options{})
	require.NoError(t, err)
	assert.Equal(t, OutcomeUnchanged, r.Outcome)
	assert.Nil(t, r.Diff)
	assert.Equal(t, saves, s.Saves())
}

func TestGenerateToFileKeepsTrailingWhitespace(t *testing.T) {
	city := yptest.City(t)
	dir := t.TempDir()
	concept := getTarget(t, "concept")

	markup, err := concept.Generate(city)
	require.NoError(t, err)
	path := filepath.Join(dir, "Concept:City.wiki")
	require.NoError(t, os.WriteFile(path, []byte(strings.TrimRight(markup, "\n")), 0o644))

	r := Create(concept, city).GenerateToFile(context.Background(), dir, Options{DryRun: true})
	assert.Equal(t, OutcomeDryRun, r.Outcome, "exported files are compared byte for byte")
	assert.NotNil(t, r.Diff)
}
