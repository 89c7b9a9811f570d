// Package fetch collects page information over plain HTTP, without a
// browser.
//
// A fetched page is what the server sends: scripts added at runtime are not
// counted, and the cookie string holds only the cookies the final response
// sets that page scripts could read (those without HttpOnly).
package fetch

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"strings"
	"time"

	"github.com/nao1215/pageguard/internal/snapshot"
)

const (
	// DefaultUserAgent is sent with every request.
	DefaultUserAgent = "Mozilla/5.0 (X11; Linux x86_64; rv:128.0) Gecko/20100101 Firefox/128.0"

	// DefaultMaxBodySize bounds how much of a response body is parsed.
	DefaultMaxBodySize int64 = 10 * 1024 * 1024

	// DefaultTimeout bounds a request when no client is supplied.
	DefaultTimeout = 30 * time.Second
)

var (
	// ErrStatus is returned for responses outside the 2xx range.
	ErrStatus = errors.New("unexpected HTTP status")

	// ErrNotHTML is returned when the response is not an HTML document.
	ErrNotHTML = errors.New("response is not HTML")
)

// Fetcher downloads pages and turns them into page information.
type Fetcher struct {
	client      *http.Client
	userAgent   string
	maxBodySize int64
}

// Option configures a Fetcher.
type Option func(*Fetcher)

// WithClient sets the HTTP client.
func WithClient(client *http.Client) Option {
	return func(f *Fetcher) {
		f.client = client
	}
}

// WithUserAgent sets a custom User-Agent header.
func WithUserAgent(ua string) Option {
	return func(f *Fetcher) {
		f.userAgent = ua
	}
}

// WithMaxBodySize sets the maximum response body size.
func WithMaxBodySize(size int64) Option {
	return func(f *Fetcher) {
		if size > 0 {
			f.maxBodySize = size
		}
	}
}

// New creates a Fetcher.
func New(opts ...Option) *Fetcher {
	f := &Fetcher{
		client:      &http.Client{Timeout: DefaultTimeout},
		userAgent:   DefaultUserAgent,
		maxBodySize: DefaultMaxBodySize,
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// Collect fetches pageURL and returns its page information. Redirects are
// followed and the final URL is reported.
func (f *Fetcher) Collect(ctx context.Context, pageURL string) (snapshot.PageInfo, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		return snapshot.PageInfo{}, err
	}
	req.Header.Set("User-Agent", f.userAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml;q=0.9,*/*;q=0.8")
	req.Header.Set("Accept-Language", "en-US,en;q=0.5")

	resp, err := f.client.Do(req)
	if err != nil {
		return snapshot.PageInfo{}, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return snapshot.PageInfo{}, fmt.Errorf("%w: %s", ErrStatus, resp.Status)
	}
	if !isHTML(resp.Header.Get("Content-Type")) {
		return snapshot.PageInfo{}, fmt.Errorf("%w: %s", ErrNotHTML, resp.Header.Get("Content-Type"))
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, f.maxBodySize))
	if err != nil {
		return snapshot.PageInfo{}, fmt.Errorf("failed to read %s: %w", pageURL, err)
	}

	finalURL := pageURL
	if resp.Request != nil && resp.Request.URL != nil {
		finalURL = resp.Request.URL.String()
	}
	return snapshot.FromHTML(finalURL, bytes.NewReader(body), DocumentCookie(resp.Cookies()))
}

// DocumentCookie renders cookies the way document.cookie would show them.
// HttpOnly cookies are left out.
func DocumentCookie(cookies []*http.Cookie) string {
	parts := make([]string, 0, len(cookies))
	for _, c := range cookies {
		if c.HttpOnly {
			continue
		}
		parts = append(parts, c.Name+"="+c.Value)
	}
	return strings.Join(parts, "; ")
}

func isHTML(contentType string) bool {
	if contentType == "" {
		// servers that omit the header usually send HTML
		return true
	}
	mediaType, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		return false
	}
	return mediaType == "text/html" || mediaType == "application/xhtml+xml"
}
