package engine

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/yuri-sevatz/youtube-sync/internal/catalog"
	"github.com/yuri-sevatz/youtube-sync/internal/identity"
	"github.com/yuri-sevatz/youtube-sync/internal/provider"
)

// Engine ties the catalog store to the provider client.
type Engine struct {
	store    *catalog.Store
	resolver *identity.Resolver
	client   provider.Client
	logger   *slog.Logger
	interval time.Duration
	now      func() time.Time
}

// Option configures engine construction.
type Option func(*Engine)

// WithDefaultInterval sets the refresh interval applied to new sources when
// the caller does not name one.
func WithDefaultInterval(interval time.Duration) Option {
	return func(e *Engine) {
		if interval > 0 {
			e.interval = interval
		}
	}
}

// WithClock overrides the engine's time source.
func WithClock(now func() time.Time) Option {
	return func(e *Engine) {
		if now != nil {
			e.now = now
		}
	}
}

// New constructs an engine over an open store and provider client.
func New(store *catalog.Store, resolver *identity.Resolver, client provider.Client, logger *slog.Logger, opts ...Option) *Engine {
	eng := &Engine{
		store:    store,
		resolver: resolver,
		client:   client,
		logger:   logger.With("component", "engine"),
		interval: 24 * time.Hour,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(eng)
	}
	return eng
}

// Add registers a new source. The URL is classified and reduced to its
// identity offline; no provider call happens here. The source comes back
// enabled and immediately due, stored under its canonical URL when the
// extractor has a registered converter.
func (e *Engine) Add(ctx context.Context, url string, interval time.Duration) (*catalog.Source, error) {
	ex, err := e.resolver.Classify(url)
	if err != nil {
		return nil, err
	}
	id, err := e.resolver.IdentityOf(url)
	if err != nil {
		return nil, err
	}
	fingerprint, err := e.resolver.MatchFingerprint(url, ex)
	if err != nil {
		return nil, err
	}
	canonical, ok := e.resolver.CanonicalURL(id)
	if !ok {
		canonical = url
	}
	if interval <= 0 {
		interval = e.interval
	}

	// Identity drift check: the same concrete URL may already be tracked
	// under an identity minted by an older provider release. The fingerprint
	// catches that before the unique constraint would let it through.
	if existing, err := e.store.SourceByMatch(ctx, id.Key, fingerprint); err != nil {
		return nil, err
	} else if existing != nil && existing.Identity != id {
		return nil, fmt.Errorf("%w: %s tracked as %s", catalog.ErrDuplicateSource, id, existing.Identity)
	}

	src := &catalog.Source{
		Identity:         id,
		Allow:            true,
		URL:              canonical,
		MatchFingerprint: fingerprint,
		NextDue:          e.now(),
		RefreshInterval:  interval,
	}
	if err := e.store.AddSource(ctx, src); err != nil {
		return nil, err
	}
	e.logger.Info("source added",
		"key", id.Key, "data", id.Data, "url", canonical, "interval", interval)
	return src, nil
}

// Remove deletes the source behind a URL, along with any videos that no other
// source still references.
func (e *Engine) Remove(ctx context.Context, url string) (*catalog.Source, error) {
	id, err := e.resolver.IdentityOf(url)
	if err != nil {
		return nil, err
	}
	src, err := e.store.SourceByIdentity(ctx, id)
	if err != nil {
		return nil, err
	}
	if src == nil {
		return nil, fmt.Errorf("%w: %s", catalog.ErrNotFound, id)
	}
	if err := e.store.RemoveSource(ctx, src.ID); err != nil {
		return nil, err
	}
	e.logger.Info("source removed", "key", id.Key, "data", id.Data)
	return src, nil
}

// Toggle flips allow on every entity the URL's identity matches. A source URL
// flips the source; a video URL flips the video.
func (e *Engine) Toggle(ctx context.Context, url string, allow bool) (int64, error) {
	id, err := e.resolver.IdentityOf(url)
	if err != nil {
		return 0, err
	}
	affected, err := e.store.ToggleByIdentity(ctx, id, allow)
	if err != nil {
		return 0, err
	}
	if affected == 0 {
		return 0, fmt.Errorf("%w: %s", catalog.ErrNotFound, id)
	}
	e.logger.Info("entities toggled", "key", id.Key, "data", id.Data, "allow", allow, "count", affected)
	return affected, nil
}
