package mediawiki

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/teranos/ypgen/cell"
	"github.com/teranos/ypgen/errors"
	yptest "github.com/teranos/ypgen/internal/testing"
	"github.com/teranos/ypgen/target"
)

// fakeWiki serves the subset of the action API the client uses
type fakeWiki struct {
	mu        sync.Mutex
	pages     map[string]string
	password  string
	loggedIn  bool
	edits     int
	editError string
}

func (f *fakeWiki) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()
	_ = r.ParseForm()

	reply := func(v any) {
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(v)
	}
	apiErr := func(code string) {
		reply(map[string]any{"error": map[string]string{"code": code, "info": code + " info"}})
	}

	switch r.Form.Get("action") {
	case "query":
		if r.Form.Get("meta") == "tokens" {
			kind := r.Form.Get("type")
			reply(map[string]any{"query": map[string]any{"tokens": map[string]string{kind + "token": kind + "-token+\\"}}})
			return
		}
		title := r.Form.Get("titles")
		text, ok := f.pages[title]
		page := map[string]any{"title": title}
		if !ok {
			page["missing"] = true
		} else {
			page["revisions"] = []any{map[string]any{"slots": map[string]any{"main": map[string]any{"content": text}}}}
		}
		reply(map[string]any{"query": map[string]any{"pages": []any{page}}})
	case "login":
		if r.Form.Get("lgtoken") != "login-token+\\" || r.Form.Get("lgpassword") != f.password {
			reply(map[string]any{"login": map[string]string{"result": "Failed", "reason": "Incorrect username or password"}})
			return
		}
		f.loggedIn = true
		reply(map[string]any{"login": map[string]string{"result": "Success"}})
	case "edit":
		if r.Method != http.MethodPost {
			apiErr("mustbeposted")
			return
		}
		if f.editError != "" {
			apiErr(f.editError)
			return
		}
		if r.Form.Get("assert") == "user" && !f.loggedIn {
			apiErr("assertuserfailed")
			return
		}
		if r.Form.Get("token") != "csrf-token+\\" {
			apiErr("badtoken")
			return
		}
		// MediaWiki drops trailing whitespace when it saves
		title := r.Form.Get("title")
		text := strings.TrimRight(r.Form.Get("text"), " \t\r\n")
		nochange := f.pages[title] == text
		f.pages[title] = text
		f.edits++
		reply(map[string]any{"edit": map[string]any{"result": "Success", "nochange": nochange}})
	default:
		apiErr("badvalue")
	}
}

func newTestClient(t *testing.T, fake *fakeWiki, password string) *Client {
	t.Helper()
	srv := httptest.NewServer(fake)
	t.Cleanup(srv.Close)

	c, err := New(Config{
		BaseURL:      srv.URL,
		User:         "bot",
		Password:     password,
		Timeout:      5 * time.Second,
		AllowPrivate: true,
	}, zaptest.NewLogger(t).Sugar())
	require.NoError(t, err)
	return c
}

func TestNewValidates(t *testing.T) {
	_, err := New(Config{}, nil)
	assert.True(t, errors.IsInvalidRequestError(err))

	c, err := New(Config{BaseURL: "https://wiki.example.org/"}, nil)
	require.NoError(t, err)
	assert.Equal(t, "https://wiki.example.org", c.BaseURL())
	assert.Equal(t, "https://wiki.example.org/api.php", c.apiURL)
}

func TestLoginGetSave(t *testing.T) {
	fake := &fakeWiki{pages: map[string]string{"Help:City": "old help"}, password: "secret"}
	c := newTestClient(t, fake, "secret")
	ctx := context.Background()

	require.NoError(t, c.Login(ctx))

	page, err := c.GetPage(ctx, "Help:City")
	require.NoError(t, err)
	assert.True(t, page.Exists)
	assert.Equal(t, "old help", page.Text)

	page, err = c.GetPage(ctx, "Form:City")
	require.NoError(t, err)
	assert.False(t, page.Exists)
	assert.Empty(t, page.Text)

	require.NoError(t, c.SavePage(ctx, "Form:City", "{{{for template|City}}}", "modified by ypgen"))
	require.NoError(t, c.SavePage(ctx, "Help:City", "new help", "modified by ypgen"))
	assert.Equal(t, 2, fake.edits)
	assert.Equal(t, "new help", fake.pages["Help:City"])
}

func TestLoginFailureIsUnauthorized(t *testing.T) {
	fake := &fakeWiki{pages: map[string]string{}, password: "secret"}
	c := newTestClient(t, fake, "wrong")

	err := c.Login(context.Background())
	require.Error(t, err)
	assert.True(t, errors.IsUnauthorized(err))
	assert.NotEmpty(t, errors.GetAllHints(err))
}

func TestSaveWithoutLoginIsUnauthorized(t *testing.T) {
	fake := &fakeWiki{pages: map[string]string{}, password: "secret"}
	c := newTestClient(t, fake, "secret")

	err := c.SavePage(context.Background(), "Category:City", "x", "")
	assert.True(t, errors.IsUnauthorized(err))
}

func TestSaveErrorIsStoreWrite(t *testing.T) {
	fake := &fakeWiki{pages: map[string]string{}, password: "secret", editError: "protectedpage"}
	c := newTestClient(t, fake, "secret")
	ctx := context.Background()
	require.NoError(t, c.Login(ctx))

	err := c.SavePage(ctx, "Category:City", "x", "")
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrStoreWrite))
	assert.False(t, errors.IsUnauthorized(err))
	assert.Contains(t, err.Error(), "protectedpage")
}

func TestGetPageServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	c, err := New(Config{BaseURL: srv.URL, AllowPrivate: true, Timeout: time.Second}, zaptest.NewLogger(t).Sugar())
	require.NoError(t, err)

	_, err = c.GetPage(context.Background(), "Category:City")
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrStoreRead))
}

func TestAnonymousLogin(t *testing.T) {
	c, err := New(Config{BaseURL: "https://wiki.example.org"}, zaptest.NewLogger(t).Sugar())
	require.NoError(t, err)
	assert.NoError(t, c.Login(context.Background()), "no request is made without a user")
}

func TestRegenerationSettlesAfterWikiTrim(t *testing.T) {
	fake := &fakeWiki{pages: map[string]string{}, password: "secret"}
	c := newTestClient(t, fake, "secret")
	ctx := context.Background()
	require.NoError(t, c.Login(ctx))

	city := yptest.City(t)
	registry := target.NewRegistry()
	for _, key := range []string{"concept", "form", "python"} {
		t.Run(key, func(t *testing.T) {
			tgt, ok := registry.Get(key)
			require.True(t, ok)

			first, err := cell.Create(tgt, city).GenerateViaStore(ctx, c, cell.Options{})
			require.NoError(t, err)
			assert.Equal(t, cell.OutcomeChanged, first.Outcome)
			require.True(t, strings.HasSuffix(first.Markup, "\n"))
			assert.False(t, strings.HasSuffix(fake.pages[first.PageTitle], "\n"))

			edits := fake.edits
			second, err := cell.Create(tgt, city).GenerateViaStore(ctx, c, cell.Options{})
			require.NoError(t, err)
			assert.Equal(t, cell.OutcomeUnchanged, second.Outcome)
			assert.Nil(t, second.Diff)
			assert.True(t, second.Stat.Zero())
			assert.Empty(t, second.DiffURL())
			assert.Equal(t, edits, fake.edits, "an unchanged page is not saved again")
		})
	}
}
