package catalog

import (
	"time"

	"github.com/yuri-sevatz/youtube-sync/internal/identity"
)

// Kind discriminates the two entity specializations.
type Kind string

const (
	KindSource Kind = "source"
	KindVideo  Kind = "video"
)

// Source is a trackable remote listing refreshed on a schedule.
type Source struct {
	ID       int64
	Identity identity.Identity
	Allow    bool
	// LastFetched is nil until the source completes a full sync pass.
	LastFetched *time.Time
	// URL is the canonical URL the source was created from, retained so the
	// source can be re-resolved after extractor upgrades.
	URL string
	// MatchFingerprint narrows the identity when extractor data alone cannot
	// prevent cross-entity collisions after provider upgrades.
	MatchFingerprint string
	NextDue          time.Time
	RefreshInterval  time.Duration

	// Aggregates over the content graph, populated by ListSources.
	VideosSaved   int
	VideosMissing int
	VideosTotal   int
}

// Video is a single downloadable item, possibly referenced by many sources.
type Video struct {
	ID       int64
	Identity identity.Identity
	Allow    bool
	// LastFetched is nil until the video has been downloaded.
	LastFetched *time.Time
	// Sources is the reference count from the content graph, populated by
	// ListVideos.
	Sources int
}

// Downloaded reports whether the video has already been fetched.
func (v *Video) Downloaded() bool {
	return v.LastFetched != nil
}
