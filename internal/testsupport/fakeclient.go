package testsupport

import (
	"context"
	"fmt"
	"sync"

	"github.com/yuri-sevatz/youtube-sync/internal/provider"
)

// FakeClient is an in-memory provider.Client for engine and command tests.
type FakeClient struct {
	mu sync.Mutex

	// VersionString is returned by Version; empty means Version fails.
	VersionString string
	// Listings maps source URLs to canned listings.
	Listings map[string]provider.Listing
	// ListErr fails List for specific URLs.
	ListErr map[string]error
	// FetchErr fails Fetch for specific item identities ("key data").
	FetchErr map[string]error

	// Fetched records the identities actually downloaded, in order.
	Fetched []string
	// Vetoed records the identities the filter turned away.
	Vetoed []string
	// ListCalls records each URL passed to List.
	ListCalls []string
}

var _ provider.Client = (*FakeClient)(nil)

// NewFakeClient returns a fake reporting the given provider version.
func NewFakeClient(version string) *FakeClient {
	return &FakeClient{
		VersionString: version,
		Listings:      map[string]provider.Listing{},
		ListErr:       map[string]error{},
		FetchErr:      map[string]error{},
	}
}

func (f *FakeClient) Version(context.Context) (string, error) {
	if f.VersionString == "" {
		return "", &provider.FetchError{Err: fmt.Errorf("binary not found")}
	}
	return f.VersionString, nil
}

func (f *FakeClient) List(_ context.Context, url string) (provider.Listing, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.ListCalls = append(f.ListCalls, url)
	if err := f.ListErr[url]; err != nil {
		return provider.Listing{}, err
	}
	listing, ok := f.Listings[url]
	if !ok {
		return provider.Listing{}, &provider.FetchError{URL: url, Err: fmt.Errorf("no listing registered")}
	}
	return listing, nil
}

func (f *FakeClient) Fetch(_ context.Context, item provider.Item, filter provider.MatchFilter) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	ident := item.Key + " " + item.Data
	if filter != nil {
		if reason := filter(item); reason != "" {
			f.Vetoed = append(f.Vetoed, ident)
			return nil
		}
	}
	if err := f.FetchErr[ident]; err != nil {
		return err
	}
	f.Fetched = append(f.Fetched, ident)
	return nil
}
