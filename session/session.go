package session

import (
	"context"
	"sync"

	"github.com/picfetch/picfetch/cache"
	"github.com/picfetch/picfetch/cache/memory"
	"github.com/picfetch/picfetch/decode"
	"github.com/picfetch/picfetch/loader"
	"github.com/picfetch/picfetch/resource"
	"github.com/rs/zerolog"
)

// DefaultCache is the default cache store for sessions constructed
// without one. It is shared between all such sessions in the process.
var DefaultCache cache.Provider = memory.New()

// LocalLoader resolves file and inline references synchronously
type LocalLoader interface {
	Load(ref *resource.Reference) *loader.Result
}

// RemoteLoader fetches remote references asynchronously
type RemoteLoader interface {
	Load(ctx context.Context, ref *resource.Reference) *loader.Result
}

// Options configures a load session
type Options struct {
	// Reference is the initial resource reference, may be nil
	Reference *resource.Reference

	// Cache is the cache store consulted at construction time and
	// reconciled by remote loads, DefaultCache if nil
	Cache cache.Provider

	// Decoder decodes cached entry bytes for warm starts, the
	// stdlib decoder if nil
	Decoder decode.Decoder

	// Scale is the decode scale hint
	Scale float64

	// Transition is applied to animated phase commits
	Transition *Transition

	// OnPhase observes every phase commit
	OnPhase PhaseFunc

	// SupportsLocalLoading gates file and inline loading. When false,
	// local references leave the phase unresolved.
	SupportsLocalLoading bool

	Local  LocalLoader
	Remote RemoteLoader

	// Log is the logger to use. The zero value logs nothing.
	Log zerolog.Logger
}

// Session drives the load lifecycle for one resource reference at a
// time. At most one asynchronous load attempt is in flight per
// reference identity; changing the reference cancels the previous
// attempt and discards its eventual completion.
type Session struct {
	opts Options

	mutex      sync.Mutex
	ref        *resource.Reference
	phase      Phase
	generation uint64
	cancel     context.CancelFunc
	pending    bool
}

// New creates a session and synchronously computes the initial phase:
// local references are resolved immediately, remote references are
// looked up in the cache store so that warm content is available
// before the first asynchronous step runs.
func New(opts Options) *Session {
	if opts.Cache == nil {
		opts.Cache = DefaultCache
	}
	if opts.Decoder == nil {
		opts.Decoder = decode.Std{}
	}
	if opts.Local == nil {
		opts.Local = loader.NewLocal(opts.Decoder, opts.Scale)
	}

	s := &Session{
		opts: opts,
	}

	s.mutex.Lock()
	notify := s.rearm(opts.Reference)
	s.mutex.Unlock()
	notify()

	return s
}

// Phase returns the current load phase
func (s *Session) Phase() Phase {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	return s.phase
}

// Start runs the asynchronous load step if the initial phase was not
// already resolved synchronously
func (s *Session) Start(ctx context.Context) {
	s.mutex.Lock()

	if !s.pending {
		s.mutex.Unlock()
		return
	}
	s.pending = false

	attemptCtx, cancel := context.WithCancel(ctx)
	s.cancel = cancel

	generation := s.generation
	ref := s.ref

	s.mutex.Unlock()

	go s.load(attemptCtx, generation, ref)
}

// SetReference re-arms the session for a new reference: any in-flight
// attempt for the previous reference is cancelled, the initial phase
// is recomputed, and the asynchronous step re-runs if needed
func (s *Session) SetReference(ctx context.Context, ref *resource.Reference) {
	s.mutex.Lock()
	notify := s.rearm(ref)
	s.mutex.Unlock()
	notify()

	s.Start(ctx)
}

// rearm recomputes the initial phase for a reference and returns the
// observer notification to run once the mutex is released.
// The caller must hold the mutex.
func (s *Session) rearm(ref *resource.Reference) func() {
	s.generation++
	if s.cancel != nil {
		s.cancel()
		s.cancel = nil
	}

	s.ref = ref
	s.pending = false

	switch resource.Classify(ref) {
	case resource.LocalFile, resource.InlineEncoded:
		if !s.opts.SupportsLocalLoading {
			// Local loading is unavailable on this capability level,
			// the phase stays unresolved
			return s.commitPhase(Phase{State: Empty}, nil)
		}

		result := s.opts.Local.Load(ref)
		if result.Err != nil {
			return s.commitPhase(Phase{State: Failure, Err: result.Err}, nil)
		}

		return s.commitPhase(Phase{State: Success, Artifact: result.Artifact}, nil)

	case resource.Remote:
		if artifact := s.cachedArtifact(ref); artifact != nil {
			// Warm start: no empty phase is ever observed
			return s.commitPhase(Phase{State: Success, Artifact: artifact}, nil)
		}

		s.pending = true
	}

	return s.commitPhase(Phase{State: Empty}, nil)
}

// cachedArtifact synchronously resolves a reference from the cache
// store, returning nil when there is no usable entry
func (s *Session) cachedArtifact(ref *resource.Reference) *decode.Artifact {
	entry, err := cache.GetEntry(context.Background(), s.opts.Cache, resource.Key(ref))
	if err != nil {
		return nil
	}

	artifact, err := s.opts.Decoder.Decode(entry.Body, s.opts.Scale)
	if err != nil {
		// Undecodable entry, fall through to a fresh load
		return nil
	}

	return artifact
}

func (s *Session) load(ctx context.Context, generation uint64, ref *resource.Reference) {
	var result *loader.Result
	if s.opts.Remote != nil {
		result = s.opts.Remote.Load(ctx, ref)
	} else {
		result = loader.Failure(loader.ErrTransport)
	}

	s.mutex.Lock()

	// Only the attempt matching the current identity may commit
	if generation != s.generation || ctx.Err() != nil {
		s.mutex.Unlock()
		s.opts.Log.Debug().Str("uri", ref.URI).Msg("Discarding stale load attempt")
		return
	}

	var notify func()
	switch {
	case result.Err != nil:
		s.opts.Log.Warn().Err(result.Err).Str("uri", ref.URI).Msg("Load attempt failed")
		notify = s.commitPhase(Phase{State: Failure, Err: result.Err}, s.opts.Transition)
	case result.FromCache:
		// Already-available content updates instantaneously
		notify = s.commitPhase(Phase{State: Success, Artifact: result.Artifact}, nil)
	default:
		notify = s.commitPhase(Phase{State: Success, Artifact: result.Artifact}, s.opts.Transition)
	}

	s.mutex.Unlock()
	notify()
}

// commitPhase stores a phase and returns the observer notification.
// The caller must hold the mutex, release it, and then run the
// returned function, so that the observer is free to call back into
// the session.
func (s *Session) commitPhase(phase Phase, transition *Transition) func() {
	s.phase = phase

	if s.opts.OnPhase == nil {
		return func() {}
	}

	return func() {
		s.opts.OnPhase(phase, transition)
	}
}
