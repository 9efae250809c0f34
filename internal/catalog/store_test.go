package catalog

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/yuri-sevatz/youtube-sync/internal/identity"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := Open(filepath.Join(t.TempDir(), "catalog.db"))
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

func testSource(key, data string) *Source {
	return &Source{
		Identity:         identity.Identity{Key: key, Data: data},
		Allow:            true,
		URL:              "https://www.youtube.com/user/" + data,
		MatchFingerprint: `["user","` + data + `"]`,
		NextDue:          time.Now().UTC(),
		RefreshInterval:  24 * time.Hour,
	}
}

func TestAddSourceAssignsID(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	src := testSource("YoutubeUser", "someuser")
	if err := store.AddSource(ctx, src); err != nil {
		t.Fatalf("AddSource: %v", err)
	}
	if src.ID == 0 {
		t.Fatal("expected assigned id")
	}

	got, err := store.SourceByIdentity(ctx, src.Identity)
	if err != nil {
		t.Fatalf("SourceByIdentity: %v", err)
	}
	if got == nil || got.ID != src.ID {
		t.Fatalf("SourceByIdentity = %+v", got)
	}
	if got.URL != src.URL || got.MatchFingerprint != src.MatchFingerprint {
		t.Fatalf("persisted source mismatch: %+v", got)
	}
	if got.RefreshInterval != 24*time.Hour {
		t.Fatalf("RefreshInterval = %s", got.RefreshInterval)
	}
	if !got.Allow || got.LastFetched != nil {
		t.Fatalf("fresh source state wrong: %+v", got)
	}
}

func TestAddSourceDuplicate(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	if err := store.AddSource(ctx, testSource("YoutubeUser", "someuser")); err != nil {
		t.Fatalf("AddSource: %v", err)
	}
	err := store.AddSource(ctx, testSource("YoutubeUser", "someuser"))
	if !errors.Is(err, ErrDuplicateSource) {
		t.Fatalf("expected ErrDuplicateSource, got %v", err)
	}

	sources, err := store.ListSources(ctx)
	if err != nil {
		t.Fatalf("ListSources: %v", err)
	}
	if len(sources) != 1 {
		t.Fatalf("duplicate insert left %d sources", len(sources))
	}
}

func TestSourceByMatch(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	src := testSource("YoutubeUser", "someuser")
	if err := store.AddSource(ctx, src); err != nil {
		t.Fatalf("AddSource: %v", err)
	}

	got, err := store.SourceByMatch(ctx, "YoutubeUser", src.MatchFingerprint)
	if err != nil {
		t.Fatalf("SourceByMatch: %v", err)
	}
	if got == nil || got.ID != src.ID {
		t.Fatalf("SourceByMatch = %+v", got)
	}

	missing, err := store.SourceByMatch(ctx, "YoutubeUser", `["user","other"]`)
	if err != nil {
		t.Fatalf("SourceByMatch: %v", err)
	}
	if missing != nil {
		t.Fatalf("expected nil for unknown fingerprint, got %+v", missing)
	}
}

func TestReconcileSharesVideosAcrossSources(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	first := testSource("YoutubeUser", "alpha")
	second := testSource("YoutubeUser", "beta")
	for _, src := range []*Source{first, second} {
		if err := store.AddSource(ctx, src); err != nil {
			t.Fatalf("AddSource: %v", err)
		}
	}

	videoID := identity.Identity{Key: "Youtube", Data: "dQw4w9WgXcQ"}
	fromFirst, err := store.Reconcile(ctx, first.ID, videoID)
	if err != nil {
		t.Fatalf("Reconcile: %v", err)
	}
	fromSecond, err := store.Reconcile(ctx, second.ID, videoID)
	if err != nil {
		t.Fatalf("Reconcile: %v", err)
	}
	if fromFirst.ID != fromSecond.ID {
		t.Fatalf("same identity produced two videos: %d, %d", fromFirst.ID, fromSecond.ID)
	}

	// Relisting must not duplicate the link.
	if _, err := store.Reconcile(ctx, first.ID, videoID); err != nil {
		t.Fatalf("Reconcile again: %v", err)
	}
	count, err := store.SourceCountForVideo(ctx, fromFirst.ID)
	if err != nil {
		t.Fatalf("SourceCountForVideo: %v", err)
	}
	if count != 2 {
		t.Fatalf("reference count = %d, want 2", count)
	}

	videos, err := store.ListVideos(ctx)
	if err != nil {
		t.Fatalf("ListVideos: %v", err)
	}
	if len(videos) != 1 || videos[0].Sources != 2 {
		t.Fatalf("ListVideos = %+v", videos)
	}
}

func TestRemoveSourceKeepsSharedVideos(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	first := testSource("YoutubeUser", "alpha")
	second := testSource("YoutubeUser", "beta")
	for _, src := range []*Source{first, second} {
		if err := store.AddSource(ctx, src); err != nil {
			t.Fatalf("AddSource: %v", err)
		}
	}

	shared := identity.Identity{Key: "Youtube", Data: "sharedvideo"}
	exclusive := identity.Identity{Key: "Youtube", Data: "onlyfirstxx"}
	for _, pair := range []struct {
		sourceID int64
		video    identity.Identity
	}{
		{first.ID, shared},
		{second.ID, shared},
		{first.ID, exclusive},
	} {
		if _, err := store.Reconcile(ctx, pair.sourceID, pair.video); err != nil {
			t.Fatalf("Reconcile: %v", err)
		}
	}

	if err := store.RemoveSource(ctx, first.ID); err != nil {
		t.Fatalf("RemoveSource: %v", err)
	}

	if got, err := store.VideoByIdentity(ctx, shared); err != nil || got == nil {
		t.Fatalf("shared video should survive: %+v, %v", got, err)
	}
	if got, err := store.VideoByIdentity(ctx, exclusive); err != nil || got != nil {
		t.Fatalf("exclusive video should be gone: %+v, %v", got, err)
	}
	if got, err := store.SourceByIdentity(ctx, first.Identity); err != nil || got != nil {
		t.Fatalf("removed source should be gone: %+v, %v", got, err)
	}
}

func TestRemoveSourceMissing(t *testing.T) {
	store := newTestStore(t)
	if err := store.RemoveSource(context.Background(), 42); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestToggleByIdentityFlipsBothKinds(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	// The same identity pair may exist as both a source and a video.
	src := testSource("YoutubeUser", "someuser")
	if err := store.AddSource(ctx, src); err != nil {
		t.Fatalf("AddSource: %v", err)
	}
	if _, err := store.Reconcile(ctx, src.ID, src.Identity); err != nil {
		t.Fatalf("Reconcile: %v", err)
	}

	affected, err := store.ToggleByIdentity(ctx, src.Identity, false)
	if err != nil {
		t.Fatalf("ToggleByIdentity: %v", err)
	}
	if affected != 2 {
		t.Fatalf("affected = %d, want 2", affected)
	}

	gotSrc, err := store.SourceByIdentity(ctx, src.Identity)
	if err != nil || gotSrc == nil {
		t.Fatalf("SourceByIdentity: %+v, %v", gotSrc, err)
	}
	if gotSrc.Allow {
		t.Fatal("source should be disabled")
	}
	gotVideo, err := store.VideoByIdentity(ctx, src.Identity)
	if err != nil || gotVideo == nil {
		t.Fatalf("VideoByIdentity: %+v, %v", gotVideo, err)
	}
	if gotVideo.Allow {
		t.Fatal("video should be disabled")
	}

	if affected, err := store.ToggleByIdentity(ctx, identity.Identity{Key: "Youtube", Data: "nope"}, true); err != nil || affected != 0 {
		t.Fatalf("unknown identity: affected=%d err=%v", affected, err)
	}
}

func TestAdvanceSourceAndAggregates(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	src := testSource("YoutubeUser", "someuser")
	if err := store.AddSource(ctx, src); err != nil {
		t.Fatalf("AddSource: %v", err)
	}

	saved, err := store.Reconcile(ctx, src.ID, identity.Identity{Key: "Youtube", Data: "aaaaaaaaaaa"})
	if err != nil {
		t.Fatalf("Reconcile: %v", err)
	}
	if _, err := store.Reconcile(ctx, src.ID, identity.Identity{Key: "Youtube", Data: "bbbbbbbbbbb"}); err != nil {
		t.Fatalf("Reconcile: %v", err)
	}

	fetched := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
	if err := store.MarkVideoFetched(ctx, saved.ID, fetched); err != nil {
		t.Fatalf("MarkVideoFetched: %v", err)
	}
	nextDue := fetched.Add(24 * time.Hour)
	if err := store.AdvanceSource(ctx, src.ID, fetched, nextDue); err != nil {
		t.Fatalf("AdvanceSource: %v", err)
	}

	sources, err := store.ListSources(ctx)
	if err != nil {
		t.Fatalf("ListSources: %v", err)
	}
	if len(sources) != 1 {
		t.Fatalf("sources = %d", len(sources))
	}
	got := sources[0]
	if got.VideosTotal != 2 || got.VideosSaved != 1 || got.VideosMissing != 1 {
		t.Fatalf("aggregates = %d/%d/%d", got.VideosSaved, got.VideosMissing, got.VideosTotal)
	}
	if got.LastFetched == nil || !got.LastFetched.Equal(fetched) {
		t.Fatalf("LastFetched = %v", got.LastFetched)
	}
	if !got.NextDue.Equal(nextDue) {
		t.Fatalf("NextDue = %v, want %v", got.NextDue, nextDue)
	}

	videos, err := store.VideosForSource(ctx, src.ID)
	if err != nil {
		t.Fatalf("VideosForSource: %v", err)
	}
	if len(videos) != 2 {
		t.Fatalf("videos = %d", len(videos))
	}
	if !videos[0].Downloaded() || videos[1].Downloaded() {
		t.Fatalf("download state wrong: %+v", videos)
	}
}

func TestConfigRows(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	if _, ok, err := store.GetConfig(ctx, "missing"); err != nil || ok {
		t.Fatalf("GetConfig missing: ok=%v err=%v", ok, err)
	}
	if err := store.SetConfig(ctx, "ytdl_version", "2026.01.01"); err != nil {
		t.Fatalf("SetConfig: %v", err)
	}
	if err := store.SetConfig(ctx, "ytdl_version", "2026.02.02"); err != nil {
		t.Fatalf("SetConfig overwrite: %v", err)
	}
	value, ok, err := store.GetConfig(ctx, "ytdl_version")
	if err != nil || !ok {
		t.Fatalf("GetConfig: ok=%v err=%v", ok, err)
	}
	if value != "2026.02.02" {
		t.Fatalf("value = %s", value)
	}
}

func TestUpdateSourceFingerprint(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	src := testSource("YoutubeUser", "someuser")
	if err := store.AddSource(ctx, src); err != nil {
		t.Fatalf("AddSource: %v", err)
	}
	if err := store.UpdateSourceFingerprint(ctx, src.ID, `["user","renamed"]`); err != nil {
		t.Fatalf("UpdateSourceFingerprint: %v", err)
	}
	got, err := store.SourceByIdentity(ctx, src.Identity)
	if err != nil || got == nil {
		t.Fatalf("SourceByIdentity: %v", err)
	}
	if got.MatchFingerprint != `["user","renamed"]` {
		t.Fatalf("fingerprint = %s", got.MatchFingerprint)
	}
}
