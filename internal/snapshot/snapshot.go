package snapshot

import (
	"net/url"
	"strings"
	"time"
)

// KeyPrefix is prepended to the hostname to form the store key.
const KeyPrefix = "security_data_"

// Key returns the store key for hostname.
func Key(hostname string) string {
	return KeyPrefix + hostname
}

// HostnameFromKey reverses Key. The second result is false if key does not
// carry the snapshot prefix.
func HostnameFromKey(key string) (string, bool) {
	if !strings.HasPrefix(key, KeyPrefix) {
		return "", false
	}
	return strings.TrimPrefix(key, KeyPrefix), true
}

// PageInfo is the raw material collected from a page's document context.
type PageInfo struct {
	// URL is the full location of the document (location.href).
	URL string `json:"url"`

	// Cookie is the raw document.cookie string.
	Cookie string `json:"cookie"`

	// ScriptCount is the number of script elements in the document.
	ScriptCount int `json:"script_count"`

	// ScriptSources holds the src attribute of every script element that
	// has one, in document order.
	ScriptSources []string `json:"script_sources"`

	// PasswordFields is the number of password inputs present. It is
	// informational and not part of the stored snapshot.
	PasswordFields int `json:"password_fields"`
}

// PageSnapshot is the security posture of one page at one point in time.
type PageSnapshot struct {
	URL                   string    `json:"url"`
	Protocol              string    `json:"protocol"`
	CookieCount           int       `json:"cookie_count"`
	ScriptCount           int       `json:"script_count"`
	ThirdPartyScriptCount int       `json:"third_party_script_count"`
	HTTPSOnly             bool      `json:"https_only"`
	Timestamp             time.Time `json:"timestamp"`
}

// Hostname returns the hostname of the snapshot's URL, or "" if the URL does
// not parse.
func (s PageSnapshot) Hostname() string {
	return hostname(s.URL)
}

// Compute derives a snapshot from page information collected at now.
func Compute(info PageInfo, now time.Time) PageSnapshot {
	protocol := ""
	pageHost := ""
	base, err := url.Parse(info.URL)
	if err == nil {
		if base.Scheme != "" {
			protocol = strings.ToLower(base.Scheme) + ":"
		}
		pageHost = strings.ToLower(base.Hostname())
	}

	snap := PageSnapshot{
		URL:         info.URL,
		Protocol:    protocol,
		CookieCount: CountCookies(info.Cookie),
		ScriptCount: info.ScriptCount,
		HTTPSOnly:   protocol == "https:",
		Timestamp:   now.UTC().Truncate(time.Millisecond),
	}
	if base != nil {
		snap.ThirdPartyScriptCount = CountThirdPartyScripts(base, pageHost, info.ScriptSources)
	}
	return snap
}

// CountCookies approximates the number of cookies in a document cookie
// string by splitting on ';'.
func CountCookies(cookie string) int {
	if cookie == "" {
		return 0
	}
	return len(strings.Split(cookie, ";"))
}

// CountThirdPartyScripts counts sources that resolve, against base, to a
// hostname other than pageHost. Hostnames compare case-insensitively.
// Sources that fail to resolve are skipped.
func CountThirdPartyScripts(base *url.URL, pageHost string, sources []string) int {
	count := 0
	for _, src := range sources {
		resolved, err := base.Parse(strings.TrimSpace(src))
		if err != nil {
			continue
		}
		if strings.ToLower(resolved.Hostname()) != strings.ToLower(pageHost) {
			count++
		}
	}
	return count
}

func hostname(raw string) string {
	u, err := url.Parse(raw)
	if err != nil {
		return ""
	}
	return strings.ToLower(u.Hostname())
}
