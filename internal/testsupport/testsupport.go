// Package testsupport holds helpers shared by tests across packages.
package testsupport

import (
	"path/filepath"
	"testing"

	"github.com/yuri-sevatz/youtube-sync/internal/catalog"
)

// MustOpenStore opens a fresh catalog store in a temp directory and registers
// cleanup.
func MustOpenStore(t *testing.T) *catalog.Store {
	t.Helper()
	store, err := catalog.Open(filepath.Join(t.TempDir(), "catalog.db"))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() {
		if err := store.Close(); err != nil {
			t.Errorf("close store: %v", err)
		}
	})
	return store
}
