package resource

import (
	"net/http"
	"net/url"
	"strings"
)

// Key returns the canonical cache key for a reference.
// Two references map to the same key iff their canonical forms match.
func Key(ref *Reference) string {
	if ref == nil {
		return ""
	}

	return KeyForURL(ref.Method, ref.URI)
}

// KeyForURL returns the canonical cache key for a method and raw URL.
// The key is the method plus the normalized URL (lowercased scheme and
// host, path as-is, query sorted by key, fragment stripped).
// Request headers never participate in the key.
func KeyForURL(method, rawurl string) string {
	if method == "" {
		method = http.MethodGet
	}

	canonical := rawurl
	if u, err := url.Parse(rawurl); err == nil {
		u.Scheme = strings.ToLower(u.Scheme)
		u.Host = strings.ToLower(u.Host)
		u.RawQuery = u.Query().Encode()
		u.Fragment = ""
		canonical = u.String()
	}

	return method + ":" + canonical
}
