package transport

import (
	"context"
	"io"
	"net/http"

	"github.com/gregjones/httpcache"
	"github.com/picfetch/picfetch/cache"
	"github.com/picfetch/picfetch/resource"
)

// Hop is a single step of a redirect chain: the request URL that was
// visited and the status of the redirect response that led to it
type Hop struct {
	URL    string
	Status int
}

// Metrics is the per-fetch transfer metadata.
// It is produced once per fetch and read-only afterwards.
type Metrics struct {
	// RedirectCount is the number of redirects that were followed
	RedirectCount int
	// Via lists every request visited after the original one, in order.
	// The last hop is the request that produced the final response.
	Via []Hop
	// FromCache reports whether the final response was served from a
	// local cache instead of the network
	FromCache bool
}

// Response is the result of a fetch
type Response struct {
	Status  int
	Header  http.Header
	Body    []byte
	URL     string
	Metrics Metrics
}

// Transport fetches a remote reference
type Transport interface {
	Fetch(ctx context.Context, ref *resource.Reference) (*Response, error)
}

// Client is a Transport backed by a reusable http client.
// A single Client is meant to be shared between load sessions.
type Client struct {
	HTTP *http.Client
}

// New returns a new Client instance.
// When a cache provider is given, responses are additionally cached at
// the HTTP layer through it, and fetches satisfied from that layer are
// reported as cache hits in the transfer metrics.
func New(provider cache.Provider) *Client {
	var rt http.RoundTripper = http.DefaultTransport

	if provider != nil {
		cachingTransport := httpcache.NewTransport(httpCache{provider})
		cachingTransport.Transport = rt
		cachingTransport.MarkCachedResponses = true
		rt = cachingTransport
	}

	return &Client{
		HTTP: &http.Client{
			Transport:     rt,
			CheckRedirect: recordRedirect,
		},
	}
}

// Fetch performs the fetch for a reference and captures the transfer
// metrics alongside the response
func (c *Client) Fetch(ctx context.Context, ref *resource.Reference) (*Response, error) {
	rec := &redirectRecorder{}
	ctx = context.WithValue(ctx, recorderKey{}, rec)

	req, err := http.NewRequestWithContext(ctx, ref.Method, ref.URI, nil)
	if err != nil {
		return nil, err
	}

	for name, values := range ref.Header {
		req.Header[name] = values
	}

	res, err := c.HTTP.Do(req)
	if err != nil {
		return nil, err
	}
	defer res.Body.Close()

	body, err := io.ReadAll(res.Body)
	if err != nil {
		return nil, err
	}

	return &Response{
		Status: res.StatusCode,
		Header: res.Header,
		Body:   body,
		URL:    res.Request.URL.String(),
		Metrics: Metrics{
			RedirectCount: len(rec.hops),
			Via:           rec.hops,
			FromCache:     res.Header.Get(httpcache.XFromCache) == "1",
		},
	}, nil
}

type recorderKey struct{}

type redirectRecorder struct {
	hops []Hop
}

// recordRedirect captures the redirect chain of a request.
// The recorder travels in the request context, so a single shared
// client can track chains for concurrent fetches independently.
func recordRedirect(req *http.Request, via []*http.Request) error {
	rec, ok := req.Context().Value(recorderKey{}).(*redirectRecorder)
	if !ok {
		return nil
	}

	status := 0
	if req.Response != nil {
		status = req.Response.StatusCode
	}

	rec.hops = append(rec.hops, Hop{
		URL:    req.URL.String(),
		Status: status,
	})

	return nil
}
