// Package host defines the capabilities the summary panel needs from the
// browser hosting the pages: finding the active tab and running the snapshot
// collection routine inside a tab's document context.
//
// Exactly one Platform implementation is chosen at startup and used for every
// call; callers never probe for alternative APIs.
package host

import (
	"context"
	"errors"
	"net/url"
	"strings"

	"github.com/nao1215/pageguard/internal/snapshot"
)

// ErrNoActiveTab is returned when the host has no tab to report on.
var ErrNoActiveTab = errors.New("no active tab")

// Tab is a browser tab.
type Tab struct {
	// ID identifies the tab within the host.
	ID string `json:"id"`
	// URL is the tab's current location.
	URL string `json:"url"`
}

// Hostname returns the hostname of the tab's URL.
func (t Tab) Hostname() (string, error) {
	u, err := url.Parse(t.URL)
	if err != nil {
		return "", err
	}
	if u.Hostname() == "" {
		return "", errors.New("tab URL has no hostname: " + t.URL)
	}
	return strings.ToLower(u.Hostname()), nil
}

// Platform is the host capability interface.
type Platform interface {
	// ActiveTab returns the tab the user is looking at.
	ActiveTab(ctx context.Context) (Tab, error)

	// CollectPage runs the page information routine inside the document of
	// tab tabID and returns its result.
	CollectPage(ctx context.Context, tabID string) (snapshot.PageInfo, error)
}
