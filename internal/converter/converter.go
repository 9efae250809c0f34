// Package converter maps provider URLs to and from compact identity values.
//
// Each converter pairs a recognition pattern with a pure inverse template so
// that a URL accepted once can always be rebuilt from its stored identity,
// regardless of how the surface form of later URLs drifts. Converters are
// looked up by extractor key; providers without a registered converter fall
// back to raw-URL identities and lose surface-form dedup for that provider.
package converter

import (
	"errors"
	"fmt"
	"regexp"
)

var (
	// ErrInvalidURL indicates the URL does not match the converter's pattern.
	ErrInvalidURL = errors.New("invalid url")
	// ErrInvalidIdentity indicates the URL matched but no identity group was present.
	ErrInvalidIdentity = errors.New("invalid identity")
)

// ParseFunc extracts the identity value from a pattern's submatches.
// groups[0] is the full match. Returning "" signals a missing identity.
type ParseFunc func(groups []string) string

// Converter translates between one provider's URL surface forms and the
// compact identity value stored for deduplication.
type Converter struct {
	pattern  *regexp.Regexp
	parse    ParseFunc
	template string
}

// New builds a converter from a recognition pattern, a capture-group parse
// function, and an inverse URL template containing a single %s verb.
func New(pattern *regexp.Regexp, parse ParseFunc, template string) Converter {
	return Converter{pattern: pattern, parse: parse, template: template}
}

// Input derives the identity value from a URL.
func (c Converter) Input(url string) (string, error) {
	groups := c.pattern.FindStringSubmatch(url)
	if groups == nil {
		return "", fmt.Errorf("%w: %s", ErrInvalidURL, url)
	}
	value := c.parse(groups)
	if value == "" {
		return "", fmt.Errorf("%w: %s", ErrInvalidIdentity, url)
	}
	return value, nil
}

// Output rebuilds the canonical URL for an identity previously produced by
// Input. It is a pure template substitution and never fails for such values.
func (c Converter) Output(identity string) string {
	return fmt.Sprintf(c.template, identity)
}

// Registry holds converters indexed by extractor key.
type Registry map[string]Converter

// Lookup returns the converter registered for an extractor key.
func (r Registry) Lookup(key string) (Converter, bool) {
	c, ok := r[key]
	return c, ok
}
