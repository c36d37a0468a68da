package loader

import (
	"context"
	"fmt"
	"net/http"

	"github.com/picfetch/picfetch/cache"
	"github.com/picfetch/picfetch/decode"
	"github.com/picfetch/picfetch/resource"
	"github.com/picfetch/picfetch/transport"
	"github.com/rs/zerolog"
	"golang.org/x/sync/singleflight"
)

// Remote fetches a reference over the network, reconciles the cache
// store, and decodes the result
type Remote struct {
	Transport transport.Transport
	Cache     cache.Provider
	Decoder   decode.Decoder
	Scale     float64
	// Log is the logger to use. The zero value logs nothing.
	Log zerolog.Logger

	fetchGroup singleflight.Group
}

type fetched struct {
	body      []byte
	fromCache bool
}

// Load fetches and decodes a remote reference.
// Concurrent loads for the same cache key share a single fetch.
// The shared fetch is detached from the caller's context: cancelling
// one caller makes that caller return early with an error, while the
// fetch itself runs to completion and settles the cache store for
// everyone else.
func (r *Remote) Load(ctx context.Context, ref *resource.Reference) *Result {
	key := resource.Key(ref)

	ch := r.fetchGroup.DoChan(key, func() (interface{}, error) {
		return r.fetch(context.WithoutCancel(ctx), ref, key)
	})

	select {
	case <-ctx.Done():
		return Failure(fmt.Errorf("%w: %s", ErrTransport, ctx.Err()))
	case res := <-ch:
		if res.Err != nil {
			return Failure(res.Err)
		}

		f := res.Val.(*fetched)

		artifact, err := r.Decoder.Decode(f.body, r.Scale)
		if err != nil {
			return Failure(fmt.Errorf("%w: %s", ErrDecode, err))
		}

		return &Result{
			Artifact:  artifact,
			FromCache: f.fromCache,
		}
	}
}

func (r *Remote) fetch(ctx context.Context, ref *resource.Reference, key string) (*fetched, error) {
	r.Log.Trace().Str("key", key).Msg("Fetching")

	res, err := r.Transport.Fetch(ctx, ref)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrTransport, err)
	}

	if res.Status < http.StatusOK || res.Status >= http.StatusMultipleChoices {
		return nil, fmt.Errorf("%w: unexpected status %d", ErrTransport, res.Status)
	}

	if res.Metrics.FromCache {
		r.Log.Trace().Str("key", key).Msg("Served from cache")
	}

	if res.Metrics.RedirectCount > 0 {
		r.reconcile(ctx, ref, key, res.Metrics.Via)
	}

	// The original request resolves directly to the final payload from
	// now on, without re-traversing any redirect chain
	entry := cache.NewEntry(res.Status, res.Header, res.Body)
	if err := cache.SetEntry(ctx, r.Cache, key, entry); err != nil {
		r.Log.Warn().Err(err).Str("key", key).Msg("Could not store cache entry")
	}

	return &fetched{
		body:      res.Body,
		fromCache: res.Metrics.FromCache,
	}, nil
}

// reconcile removes the cache entries of every request visited during
// a redirect chain, so that only the original request's key remains.
// The original key itself is never deleted; it is replaced by a single
// store, so a concurrent reader observes either the previous entry or
// the reconciled one.
func (r *Remote) reconcile(ctx context.Context, ref *resource.Reference, key string, via []transport.Hop) {
	for _, hop := range via {
		hopKey := resource.KeyForURL(ref.Method, hop.URL)
		if hopKey == key {
			continue
		}

		if err := r.Cache.Delete(ctx, hopKey); err != nil {
			r.Log.Warn().Err(err).Str("url", hop.URL).Msg("Could not remove redirect cache entry")
		}
	}

	r.Log.Trace().Str("key", key).Msgf("Reconciled %d redirect hops", len(via))
}
