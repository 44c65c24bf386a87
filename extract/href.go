package extract

import (
	"net/url"
	"strings"
)

// ResolveHref turns an href found on a page into an absolute URL. It returns
// "" when href is empty or cannot be parsed.
func ResolveHref(href, base string) string {
	href = strings.TrimSpace(href)
	if href == "" {
		return ""
	}
	if strings.HasPrefix(href, "//") {
		href = "https:" + href
	}
	b, err := url.Parse(base)
	if err != nil {
		return ""
	}
	resolved, err := b.Parse(href)
	if err != nil {
		return ""
	}
	if resolved.Scheme != "http" && resolved.Scheme != "https" {
		return ""
	}
	return resolved.String()
}

// CanonicalURL resolves href and strips its query and fragment. It returns ""
// unless the result is on host or one of its subdomains.
func CanonicalURL(href, base, host string) string {
	abs := ResolveHref(href, base)
	if abs == "" {
		return ""
	}
	u, err := url.Parse(abs)
	if err != nil {
		return ""
	}
	if !onHost(u.Hostname(), host) {
		return ""
	}
	u.RawQuery = ""
	u.Fragment = ""
	u.RawFragment = ""
	return u.String()
}

// Host returns the bare host of rawURL with any "www." prefix removed.
func Host(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return ""
	}
	return strings.TrimPrefix(strings.ToLower(u.Hostname()), "www.")
}

func onHost(h, host string) bool {
	h = strings.ToLower(h)
	host = strings.ToLower(host)
	return h == host || strings.HasSuffix(h, "."+host)
}
