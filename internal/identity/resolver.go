// Package identity derives stable, deduplicated identities from provider URLs.
//
// An identity is the (extractor key, extractor data) pair used as the catalog
// dedup key. The Resolver composes the provider's ordered extractor rules with
// the converter registry; both tables are built once at startup and passed in,
// never consulted as global state.
package identity

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/yuri-sevatz/youtube-sync/internal/converter"
	"github.com/yuri-sevatz/youtube-sync/internal/provider"
)

// ErrNoSuitableExtractor indicates no recognition rule matches a URL. This is
// an input error, never retried.
var ErrNoSuitableExtractor = errors.New("no suitable extractor")

// Identity is the stable dedup key for a source or video.
type Identity struct {
	Key  string
	Data string
}

func (id Identity) String() string {
	return id.Key + " " + id.Data
}

// Resolver classifies URLs and derives identities and match fingerprints.
type Resolver struct {
	extractors []provider.Extractor
	byName     map[string]string
	converters converter.Registry
}

// NewResolver builds a resolver over the given classification order and
// converter registry.
func NewResolver(extractors []provider.Extractor, converters converter.Registry) *Resolver {
	return &Resolver{
		extractors: extractors,
		byName:     provider.KeysByName(extractors),
		converters: converters,
	}
}

// Classify returns the first extractor whose recognition rule matches url.
func (r *Resolver) Classify(url string) (provider.Extractor, error) {
	for _, ex := range r.extractors {
		if ex.ValidURL.MatchString(url) {
			return ex, nil
		}
	}
	return provider.Extractor{}, fmt.Errorf("%w: %s", ErrNoSuitableExtractor, url)
}

// IdentityOf composes classification with the matching converter's input.
// Extractors without a converter fall back to the raw URL as identity data;
// such providers get no URL-surface-form dedup.
func (r *Resolver) IdentityOf(url string) (Identity, error) {
	ex, err := r.Classify(url)
	if err != nil {
		return Identity{}, err
	}
	conv, ok := r.converters.Lookup(ex.Key)
	if !ok {
		return Identity{Key: ex.Key, Data: url}, nil
	}
	data, err := conv.Input(url)
	if err != nil {
		return Identity{}, err
	}
	return Identity{Key: ex.Key, Data: data}, nil
}

// MatchFingerprint captures every group of the extractor's own recognition
// rule as an opaque disambiguation token. The same identity data can point at
// different live content across provider upgrades; the fingerprint is what
// detects that drift.
func (r *Resolver) MatchFingerprint(url string, ex provider.Extractor) (string, error) {
	groups := ex.ValidURL.FindStringSubmatch(url)
	if groups == nil {
		return "", fmt.Errorf("%w: %s", ErrNoSuitableExtractor, url)
	}
	encoded, err := json.Marshal(groups[1:])
	if err != nil {
		return "", fmt.Errorf("encode fingerprint: %w", err)
	}
	return string(encoded), nil
}

// Refingerprint recomputes the match fingerprint for a stored URL. The second
// return is false when no current rule accepts the URL; callers keep the
// original identity in that case.
func (r *Resolver) Refingerprint(url string) (string, bool) {
	ex, err := r.Classify(url)
	if err != nil {
		return "", false
	}
	fp, err := r.MatchFingerprint(url, ex)
	if err != nil {
		return "", false
	}
	return fp, true
}

// CanonicalURL rebuilds the canonical URL for an identity, when the identity's
// extractor has a registered converter.
func (r *Resolver) CanonicalURL(id Identity) (string, bool) {
	conv, ok := r.converters.Lookup(id.Key)
	if !ok {
		return "", false
	}
	return conv.Output(id.Data), true
}

// KeyForName maps a public extractor name to its internal key.
func (r *Resolver) KeyForName(name string) (string, bool) {
	key, ok := r.byName[name]
	return key, ok
}
