// Package httpclient builds the HTTP client used to talk to a wiki.
package httpclient

import (
	"context"
	"net"
	"net/http"
	"net/http/cookiejar"
	"net/netip"
	"net/url"
	"strings"
	"time"

	"github.com/teranos/ypgen/errors"
	"github.com/teranos/ypgen/version"
)

// Options configure a Client
type Options struct {
	Timeout time.Duration
	// AllowPrivate permits wikis on loopback or private networks.
	// Most wikis managed this way run on an intranet, so config defaults to true.
	AllowPrivate bool
	// MaxRedirects defaults to 10
	MaxRedirects int
}

// Client is an http.Client with a session cookie jar, a user agent and
// optional blocking of private network addresses
type Client struct {
	*http.Client
	allowPrivate bool
	userAgent    string
}

// New creates a Client. Each Client has its own cookie jar, so one Client
// holds one wiki session.
func New(opts Options) *Client {
	jar, _ := cookiejar.New(nil) // never fails with nil options
	maxRedirects := opts.MaxRedirects
	if maxRedirects <= 0 {
		maxRedirects = 10
	}

	c := &Client{
		Client:       &http.Client{Timeout: opts.Timeout, Jar: jar},
		allowPrivate: opts.AllowPrivate,
		userAgent:    version.Name + "/" + version.Version,
	}
	c.CheckRedirect = func(req *http.Request, via []*http.Request) error {
		if len(via) >= maxRedirects {
			return errors.Newf("stopped after %d redirects", maxRedirects)
		}
		if err := c.validateURL(req.URL); err != nil {
			return errors.Wrap(err, "redirect blocked")
		}
		return nil
	}

	if !c.allowPrivate {
		dialer := &net.Dialer{Timeout: 30 * time.Second, KeepAlive: 30 * time.Second}
		c.Transport = &http.Transport{
			DialContext: func(ctx context.Context, network, addr string) (net.Conn, error) {
				host, _, err := net.SplitHostPort(addr)
				if err != nil {
					return nil, errors.Wrap(err, "invalid address")
				}
				addrs, err := net.DefaultResolver.LookupNetIP(ctx, "ip", host)
				if err != nil {
					return nil, errors.Wrapf(err, "failed to resolve host %q", host)
				}
				for _, ip := range addrs {
					if isPrivate(ip) {
						return nil, errors.Newf("private IP address blocked: %s", ip)
					}
				}
				return dialer.DialContext(ctx, network, addr)
			},
			MaxIdleConns:        10,
			IdleConnTimeout:     90 * time.Second,
			TLSHandshakeTimeout: 10 * time.Second,
		}
	}
	return c
}

func (c *Client) validateURL(u *url.URL) error {
	switch strings.ToLower(u.Scheme) {
	case "http", "https":
	default:
		return errors.Newf("scheme %q not allowed", u.Scheme)
	}
	host := u.Hostname()
	if host == "" {
		return errors.New("URL missing hostname")
	}
	if c.allowPrivate {
		return nil
	}
	if host == "localhost" || strings.HasSuffix(host, ".localhost") {
		return errors.New("localhost access blocked")
	}
	if ip, err := netip.ParseAddr(host); err == nil && isPrivate(ip) {
		return errors.Newf("private IP address blocked: %s", host)
	}
	return nil
}

// Do validates the request URL, sets the user agent and executes it
func (c *Client) Do(req *http.Request) (*http.Response, error) {
	if err := c.validateURL(req.URL); err != nil {
		return nil, errors.Wrap(err, "request blocked")
	}
	if req.Header.Get("User-Agent") == "" {
		req.Header.Set("User-Agent", c.userAgent)
	}
	return c.Client.Do(req)
}

func isPrivate(ip netip.Addr) bool {
	ip = ip.Unmap()
	return ip.IsLoopback() || ip.IsPrivate() || ip.IsLinkLocalUnicast() ||
		ip.IsLinkLocalMulticast() || ip.IsMulticast() || ip.IsUnspecified()
}
