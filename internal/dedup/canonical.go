// Package dedup canonicalizes URLs, folds duplicate news candidates, and
// enriches the final selection with full article content.
package dedup

import (
	"net/url"
	"strings"
)

// aggregatorHosts are wrappers that hide the real article URL inside a
// query parameter.
var aggregatorHosts = map[string]bool{
	"news.google.com":      true,
	"google.com":           true,
	"news.yahoo.com":       true,
	"bing.com":             true,
	"feedproxy.google.com": true,
}

// wrapperParams are checked in order when unwrapping an aggregator URL.
var wrapperParams = []string{"url", "q", "u"}

// CanonicalURL reduces a URL to its dedup key: lowercased host without
// "www.", plus the path with any trailing slash trimmed. Aggregator
// wrappers are unwrapped first when they carry the target URL in a
// query parameter.
func CanonicalURL(raw string) string {
	u, err := url.Parse(strings.TrimSpace(raw))
	if err != nil || u.Host == "" {
		return strings.ToLower(strings.TrimSpace(raw))
	}

	host := strings.ToLower(u.Host)
	if aggregatorHosts[strings.TrimPrefix(host, "www.")] {
		if target := unwrap(u); target != nil {
			u = target
			host = strings.ToLower(u.Host)
		}
	}

	host = strings.TrimPrefix(host, "www.")
	path := strings.TrimSuffix(strings.ToLower(u.Path), "/")
	return host + path
}

func unwrap(u *url.URL) *url.URL {
	q := u.Query()
	for _, p := range wrapperParams {
		v := q.Get(p)
		if v == "" {
			continue
		}
		target, err := url.Parse(v)
		if err == nil && target.Host != "" && target.Scheme != "" {
			return target
		}
	}
	return nil
}

// Host returns the canonical host of a URL (lowercased, no "www.").
// Used by the one-per-portal selection.
func Host(raw string) string {
	u, err := url.Parse(strings.TrimSpace(raw))
	if err != nil || u.Host == "" {
		return ""
	}
	return strings.TrimPrefix(strings.ToLower(u.Host), "www.")
}
