// Package mediawiki implements store.Store on top of the MediaWiki action API.
package mediawiki

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/teranos/ypgen/errors"
	"github.com/teranos/ypgen/internal/httpclient"
	"github.com/teranos/ypgen/logger"
	"github.com/teranos/ypgen/store"
)

// DefaultAPIPath is where MediaWiki serves the action API below the base URL
const DefaultAPIPath = "/api.php"

// maxResponseBytes caps API responses; page texts are far smaller
const maxResponseBytes = 32 << 20

// authErrorCodes are API error codes that mean the session is not allowed to act
var authErrorCodes = map[string]bool{
	"notloggedin":      true,
	"permissiondenied": true,
	"badtoken":         true,
	"assertuserfailed": true,
	"assertbotfailed":  true,
	"readapidenied":    true,
	"writeapidenied":   true,
	"blocked":          true,
}

// Config holds the connection settings of one wiki
type Config struct {
	BaseURL  string
	APIPath  string
	User     string
	Password string
	Timeout  time.Duration
	// EditsPerMinute throttles SavePage; 0 disables throttling
	EditsPerMinute int
	AllowPrivate   bool
}

// Client talks to one wiki with one session
type Client struct {
	cfg     Config
	apiURL  string
	http    *httpclient.Client
	limiter *rate.Limiter
	logger  *zap.SugaredLogger

	mu        sync.Mutex
	csrfToken string
}

var _ store.Store = (*Client)(nil)

// New creates a client. Nothing is sent until Login or GetPage is called.
func New(cfg Config, log *zap.SugaredLogger) (*Client, error) {
	if cfg.BaseURL == "" {
		return nil, errors.NewInvalidRequestError("wiki base url is empty")
	}
	if _, err := url.Parse(cfg.BaseURL); err != nil {
		return nil, errors.Mark(errors.Wrapf(err, "invalid wiki base url %q", cfg.BaseURL), errors.ErrInvalidRequest)
	}
	if cfg.APIPath == "" {
		cfg.APIPath = DefaultAPIPath
	}
	if log == nil {
		log = logger.ComponentLogger("mediawiki")
	}

	limit := rate.Inf
	if cfg.EditsPerMinute > 0 {
		limit = rate.Limit(float64(cfg.EditsPerMinute) / 60.0)
	}

	return &Client{
		cfg:     cfg,
		apiURL:  strings.TrimSuffix(cfg.BaseURL, "/") + cfg.APIPath,
		http:    httpclient.New(httpclient.Options{Timeout: cfg.Timeout, AllowPrivate: cfg.AllowPrivate}),
		limiter: rate.NewLimiter(limit, 1),
		logger:  log.With(logger.FieldBaseURL, cfg.BaseURL),
	}, nil
}

func (c *Client) BaseURL() string {
	return strings.TrimSuffix(c.cfg.BaseURL, "/")
}

// apiError is the error object of an action API response
type apiError struct {
	Code string `json:"code"`
	Info string `json:"info"`
}

func (e *apiError) err(action string) error {
	err := errors.Newf("%s: %s (%s)", action, e.Info, e.Code)
	if authErrorCodes[e.Code] {
		return errors.Mark(err, errors.ErrUnauthorized)
	}
	return err
}

// call performs one API request and decodes the JSON response into out.
// GET is used for reads, POST for anything carrying a token.
func (c *Client) call(ctx context.Context, method string, params url.Values, out any) error {
	params.Set("format", "json")
	params.Set("formatversion", "2")

	var req *http.Request
	var err error
	if method == http.MethodGet {
		req, err = http.NewRequestWithContext(ctx, method, c.apiURL+"?"+params.Encode(), nil)
	} else {
		req, err = http.NewRequestWithContext(ctx, method, c.apiURL, strings.NewReader(params.Encode()))
		if req != nil {
			req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
		}
	}
	if err != nil {
		return errors.Wrap(err, "failed to build request")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return errors.Wrapf(err, "%s %s failed", method, params.Get("action"))
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return errors.Wrap(err, "failed to read response")
	}
	if resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden {
		return errors.Mark(errors.Newf("%s: HTTP %d", params.Get("action"), resp.StatusCode), errors.ErrUnauthorized)
	}
	if resp.StatusCode != http.StatusOK {
		return errors.Newf("%s: HTTP %d", params.Get("action"), resp.StatusCode)
	}

	var envelope struct {
		Error *apiError `json:"error"`
	}
	if err := json.Unmarshal(body, &envelope); err != nil {
		return errors.Wrapf(err, "%s: invalid JSON response", params.Get("action"))
	}
	if envelope.Error != nil {
		return envelope.Error.err(params.Get("action"))
	}
	if err := json.Unmarshal(body, out); err != nil {
		return errors.Wrapf(err, "%s: unexpected response", params.Get("action"))
	}
	return nil
}

func (c *Client) token(ctx context.Context, kind string) (string, error) {
	var resp struct {
		Query struct {
			Tokens map[string]string `json:"tokens"`
		} `json:"query"`
	}
	params := url.Values{"action": {"query"}, "meta": {"tokens"}, "type": {kind}}
	if err := c.call(ctx, http.MethodGet, params, &resp); err != nil {
		return "", err
	}
	token := resp.Query.Tokens[kind+"token"]
	if token == "" {
		return "", errors.Newf("wiki returned no %s token", kind)
	}
	return token, nil
}

// Login opens a session with the configured bot credentials. Without a
// user the session stays anonymous. Failures are marked errors.ErrUnauthorized.
func (c *Client) Login(ctx context.Context) error {
	start := time.Now()
	if c.cfg.User == "" {
		c.logger.Infow("No wiki user configured, continuing anonymously")
		return nil
	}

	loginToken, err := c.token(ctx, "login")
	if err != nil {
		return errors.Mark(errors.Wrap(err, "failed to get login token"), errors.ErrUnauthorized)
	}

	var resp struct {
		Login struct {
			Result string `json:"result"`
			Reason string `json:"reason"`
		} `json:"login"`
	}
	params := url.Values{
		"action":     {"login"},
		"lgname":     {c.cfg.User},
		"lgpassword": {c.cfg.Password},
		"lgtoken":    {loginToken},
	}
	if err := c.call(ctx, http.MethodPost, params, &resp); err != nil {
		return errors.Mark(errors.Wrap(err, "login failed"), errors.ErrUnauthorized)
	}
	if resp.Login.Result != "Success" {
		err := errors.Newf("login as %s failed: %s %s", c.cfg.User, resp.Login.Result, resp.Login.Reason)
		return errors.WithHint(errors.Mark(err, errors.ErrUnauthorized), "use a bot password from Special:BotPasswords")
	}

	c.mu.Lock()
	c.csrfToken = ""
	c.mu.Unlock()

	c.logger.Infow("Logged in to wiki",
		logger.FieldUser, c.cfg.User,
		logger.FieldDurationMS, time.Since(start).Milliseconds())
	return nil
}

// GetPage reads the current text of a page. A missing page is not an error.
func (c *Client) GetPage(ctx context.Context, title string) (*store.Page, error) {
	var resp struct {
		Query struct {
			Pages []struct {
				Title     string `json:"title"`
				Missing   bool   `json:"missing"`
				Invalid   bool   `json:"invalid"`
				Revisions []struct {
					Slots struct {
						Main struct {
							Content string `json:"content"`
						} `json:"main"`
					} `json:"slots"`
				} `json:"revisions"`
			} `json:"pages"`
		} `json:"query"`
	}
	params := url.Values{
		"action":  {"query"},
		"prop":    {"revisions"},
		"titles":  {title},
		"rvprop":  {"content"},
		"rvslots": {"main"},
	}
	if err := c.call(ctx, http.MethodGet, params, &resp); err != nil {
		if errors.Is(err, errors.ErrUnauthorized) {
			return nil, err
		}
		return nil, errors.Mark(errors.Wrapf(err, "failed to read %s", title), errors.ErrStoreRead)
	}

	page := &store.Page{Title: title}
	if len(resp.Query.Pages) == 0 {
		return page, nil
	}
	p := resp.Query.Pages[0]
	if p.Invalid {
		return nil, errors.Mark(errors.Newf("invalid page title %q", title), errors.ErrStoreRead)
	}
	if p.Missing || len(p.Revisions) == 0 {
		return page, nil
	}
	page.Exists = true
	page.Text = p.Revisions[0].Slots.Main.Content
	return page, nil
}

// SavePage replaces the text of a page, creating it if needed.
// Edits are throttled to Config.EditsPerMinute.
func (c *Client) SavePage(ctx context.Context, title, text, summary string) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return errors.Mark(errors.Wrap(err, "edit throttle"), errors.ErrStoreWrite)
	}

	token, err := c.csrf(ctx)
	if err != nil {
		return err
	}

	var resp struct {
		Edit struct {
			Result   string `json:"result"`
			NoChange bool   `json:"nochange"`
		} `json:"edit"`
	}
	params := url.Values{
		"action":  {"edit"},
		"title":   {title},
		"text":    {text},
		"summary": {summary},
		"token":   {token},
	}
	if c.cfg.User != "" {
		params.Set("assert", "user")
	}
	if err := c.call(ctx, http.MethodPost, params, &resp); err != nil {
		if errors.Is(err, errors.ErrUnauthorized) {
			c.mu.Lock()
			c.csrfToken = ""
			c.mu.Unlock()
			return err
		}
		return errors.Mark(errors.Wrapf(err, "failed to save %s", title), errors.ErrStoreWrite)
	}
	if resp.Edit.Result != "Success" {
		return errors.Mark(errors.Newf("save of %s returned %q", title, resp.Edit.Result), errors.ErrStoreWrite)
	}

	c.logger.Debugw("Saved page",
		logger.FieldPageTitle, title,
		logger.FieldChanged, !resp.Edit.NoChange)
	return nil
}

func (c *Client) csrf(ctx context.Context) (string, error) {
	c.mu.Lock()
	token := c.csrfToken
	c.mu.Unlock()
	if token != "" {
		return token, nil
	}

	token, err := c.token(ctx, "csrf")
	if err != nil {
		if errors.Is(err, errors.ErrUnauthorized) {
			return "", err
		}
		return "", errors.Mark(errors.Wrap(err, "failed to get edit token"), errors.ErrStoreWrite)
	}
	c.mu.Lock()
	c.csrfToken = token
	c.mu.Unlock()
	return token, nil
}
