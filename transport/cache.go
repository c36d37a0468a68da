package transport

import (
	"context"
	"net/http"
	"strings"

	"github.com/picfetch/picfetch/cache"
	"github.com/picfetch/picfetch/resource"
)

// httpCache adapts a cache.Provider to the httpcache.Cache interface.
// httpcache keys requests by their URL (or "METHOD URL" for non-GET
// requests); those are mapped onto the canonical keyspace so that the
// HTTP caching layer and the rest of the module address the same
// entries.
type httpCache struct {
	provider cache.Provider
}

func (h httpCache) Get(key string) ([]byte, bool) {
	data, err := h.provider.Get(context.Background(), canonicalKey(key))
	if err != nil {
		return nil, false
	}

	return data, true
}

func (h httpCache) Set(key string, data []byte) {
	h.provider.Set(context.Background(), canonicalKey(key), data)
}

func (h httpCache) Delete(key string) {
	h.provider.Delete(context.Background(), canonicalKey(key))
}

func canonicalKey(key string) string {
	if method, rawurl, ok := strings.Cut(key, " "); ok {
		return resource.KeyForURL(method, rawurl)
	}

	return resource.KeyForURL(http.MethodGet, key)
}
