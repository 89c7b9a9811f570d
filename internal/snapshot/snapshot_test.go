package snapshot

import (
	"testing"
	"time"
)

var collectedAt = time.Date(2024, 5, 1, 12, 0, 0, 123456789, time.UTC)

func TestCompute(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		info PageInfo
		want PageSnapshot
	}{
		{
			name: "https page without cookies or scripts",
			info: PageInfo{URL: "https://example.com/login"},
			want: PageSnapshot{
				URL:       "https://example.com/login",
				Protocol:  "https:",
				HTTPSOnly: true,
			},
		},
		{
			name: "http page with first and third party scripts",
			info: PageInfo{
				URL:         "http://shop.example.com/cart",
				Cookie:      "a=1; b=2; c=3",
				ScriptCount: 5,
				ScriptSources: []string{
					"/static/app.js",
					"https://shop.example.com/vendor.js",
					"https://cdn.example.net/lib.js",
					"//tracker.example.org/t.js",
				},
			},
			want: PageSnapshot{
				URL:                   "http://shop.example.com/cart",
				Protocol:              "http:",
				CookieCount:           3,
				ScriptCount:           5,
				ThirdPartyScriptCount: 2,
				HTTPSOnly:             false,
			},
		},
		{
			name: "hostnames compare case-insensitively",
			info: PageInfo{
				URL:           "https://Example.COM/login",
				ScriptCount:   2,
				ScriptSources: []string{"https://example.com/app.js", "/local.js"},
			},
			want: PageSnapshot{
				URL:         "https://Example.COM/login",
				Protocol:    "https:",
				ScriptCount: 2,
				HTTPSOnly:   true,
			},
		},
		{
			name: "subdomains count as third party",
			info: PageInfo{
				URL:           "https://example.com/",
				ScriptCount:   1,
				ScriptSources: []string{"https://static.example.com/app.js"},
			},
			want: PageSnapshot{
				URL:                   "https://example.com/",
				Protocol:              "https:",
				ScriptCount:           1,
				ThirdPartyScriptCount: 1,
				HTTPSOnly:             true,
			},
		},
		{
			name: "unparsable sources are skipped",
			info: PageInfo{
				URL:           "https://example.com/",
				ScriptCount:   3,
				ScriptSources: []string{"http://[::1", "%zz", "https://cdn.example.net/x.js"},
			},
			want: PageSnapshot{
				URL:                   "https://example.com/",
				Protocol:              "https:",
				ScriptCount:           3,
				ThirdPartyScriptCount: 1,
				HTTPSOnly:             true,
			},
		},
		{
			name: "empty src resolves to the page itself",
			info: PageInfo{
				URL:           "https://example.com/",
				ScriptCount:   1,
				ScriptSources: []string{""},
			},
			want: PageSnapshot{
				URL:         "https://example.com/",
				Protocol:    "https:",
				ScriptCount: 1,
				HTTPSOnly:   true,
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got := Compute(tt.info, collectedAt)
			tt.want.Timestamp = collectedAt.Truncate(time.Millisecond)
			if got != tt.want {
				t.Errorf("Compute() = %+v\nwant %+v", got, tt.want)
			}
		})
	}
}

func TestCountCookies(t *testing.T) {
	t.Parallel()

	tests := []struct {
		cookie string
		want   int
	}{
		{cookie: "", want: 0},
		{cookie: "session=abc", want: 1},
		{cookie: "a=1; b=2", want: 2},
		// A value containing the separator is over-counted.
		{cookie: `a="x;y"; b=2`, want: 3},
	}
	for _, tt := range tests {
		if got := CountCookies(tt.cookie); got != tt.want {
			t.Errorf("CountCookies(%q) = %d, want %d", tt.cookie, got, tt.want)
		}
	}
}

func TestKey(t *testing.T) {
	t.Parallel()

	if got := Key("example.com"); got != "security_data_example.com" {
		t.Errorf("Key() = %q", got)
	}
	host, ok := HostnameFromKey("security_data_example.com")
	if !ok || host != "example.com" {
		t.Errorf("HostnameFromKey() = %q, %v", host, ok)
	}
	if _, ok := HostnameFromKey("other_example.com"); ok {
		t.Error("HostnameFromKey accepted a key without the prefix")
	}
}

func TestPageSnapshotHostname(t *testing.T) {
	t.Parallel()

	s := PageSnapshot{URL: "https://Example.com:8443/a?b=c"}
	if got := s.Hostname(); got != "example.com" {
		t.Errorf("Hostname() = %q", got)
	}
}
