package util

import (
	"net/url"
	"sort"
	"strings"
)

// CanonicalizeURL lowercases scheme and host, drops the fragment and tracking params,
// and sorts the remaining query so the same page always maps to the same string.
// Extra params to drop can be passed (case-insensitive).
func CanonicalizeURL(raw string, drop ...string) string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return ""
	}
	u, err := url.Parse(raw)
	if err != nil {
		return raw
	}

	u.Scheme = strings.ToLower(u.Scheme)
	u.Host = strings.ToLower(u.Host)
	u.Fragment = ""
	u.RawFragment = ""

	extra := make(map[string]bool, len(drop))
	for _, d := range drop {
		extra[strings.ToLower(d)] = true
	}

	q := u.Query()
	for k := range q {
		lk := strings.ToLower(k)
		if strings.HasPrefix(lk, "utm_") ||
			lk == "gclid" || lk == "fbclid" || lk == "msclkid" ||
			extra[lk] {
			q.Del(k)
		}
	}

	// deterministic query
	for k := range q {
		vals := q[k]
		sort.Strings(vals)
		q[k] = vals
	}
	u.RawQuery = q.Encode()
	return u.String()
}

// SwapHost replaces the host of raw when it equals from. Other URLs pass through.
func SwapHost(raw, from, to string) string {
	u, err := url.Parse(strings.TrimSpace(raw))
	if err != nil || !strings.EqualFold(u.Host, from) {
		return raw
	}
	u.Host = to
	return u.String()
}

// Resolve makes href absolute against base. Unparseable input is returned trimmed.
func Resolve(base, href string) string {
	href = strings.TrimSpace(href)
	if href == "" {
		return ""
	}
	b, err := url.Parse(base)
	if err != nil {
		return href
	}
	h, err := url.Parse(href)
	if err != nil {
		return href
	}
	return b.ResolveReference(h).String()
}
