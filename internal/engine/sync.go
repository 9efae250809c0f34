package engine

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/yuri-sevatz/youtube-sync/internal/catalog"
	"github.com/yuri-sevatz/youtube-sync/internal/identity"
	"github.com/yuri-sevatz/youtube-sync/internal/provider"
)

// SyncOptions selects the scope and depth of a sync pass.
type SyncOptions struct {
	// URL narrows the pass to one source. Empty means every source.
	URL string
	// Download fetches missing videos after reconciling listings. When false
	// the pass only refreshes the content graph.
	Download bool
	// Force ignores next-due scheduling.
	Force bool
}

// Report summarizes one sync pass.
type Report struct {
	RunID          string
	SourcesSynced  int
	SourcesSkipped int
	SourcesFailed  int
	VideosFetched  int
	VideosFailed   int
	ItemsSkipped   int
}

// Sync runs a refresh pass over the selected sources. Each source is isolated:
// a listing or download failure is logged and counted, and the pass moves on.
// Scheduling only advances for a source whose downloads all succeeded.
func (e *Engine) Sync(ctx context.Context, opts SyncOptions) (*Report, error) {
	report := &Report{RunID: uuid.NewString()}
	log := e.logger.With("run_id", report.RunID)

	sources, err := e.selectSources(ctx, opts.URL)
	if err != nil {
		return nil, err
	}
	log.Info("sync pass starting", "sources", len(sources), "download", opts.Download, "force", opts.Force)

	for _, src := range sources {
		if err := ctx.Err(); err != nil {
			return report, err
		}
		e.syncSource(ctx, log, src, opts, report)
	}

	log.Info("sync pass finished",
		"synced", report.SourcesSynced,
		"skipped", report.SourcesSkipped,
		"failed", report.SourcesFailed,
		"fetched", report.VideosFetched,
		"video_failures", report.VideosFailed)
	return report, nil
}

func (e *Engine) selectSources(ctx context.Context, url string) ([]*catalog.Source, error) {
	if url == "" {
		return e.store.ListSources(ctx)
	}
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
	return []*catalog.Source{src}, nil
}

func (e *Engine) syncSource(ctx context.Context, log *slog.Logger, src *catalog.Source, opts SyncOptions, report *Report) {
	srcLog := log.With("key", src.Identity.Key, "data", src.Identity.Data)

	if !src.Allow {
		srcLog.Debug("source disabled, skipping")
		report.SourcesSkipped++
		return
	}
	if !opts.Force && e.now().Before(src.NextDue) {
		srcLog.Debug("source not due, skipping", "next_due", src.NextDue)
		report.SourcesSkipped++
		return
	}

	listing, err := e.client.List(ctx, src.URL)
	if err != nil {
		srcLog.Warn("listing failed", "url", src.URL, "error", err,
			"transient", provider.IsTransient(err))
		report.SourcesFailed++
		return
	}
	for _, reason := range listing.Skipped {
		srcLog.Warn("listing entry skipped", "reason", reason)
		report.ItemsSkipped++
	}

	complete := true
	for _, item := range listing.Items {
		if err := ctx.Err(); err != nil {
			return
		}
		id := identity.Identity{Key: item.Key, Data: item.Data}
		video, err := e.store.Reconcile(ctx, src.ID, id)
		if err != nil {
			srcLog.Warn("reconcile failed", "video_key", id.Key, "video_data", id.Data, "error", err)
			report.VideosFailed++
			complete = false
			continue
		}
		if !opts.Download {
			continue
		}

		if item.URL == "" {
			// Flat listing entries may omit a display URL; rebuild it from
			// the identity when a converter exists.
			if canonical, ok := e.resolver.CanonicalURL(id); ok {
				item.URL = canonical
			}
		}

		veto := downloadVeto(video)
		filter := func(provider.Item) string { return veto }
		if err := e.client.Fetch(ctx, item, filter); err != nil {
			srcLog.Warn("download failed", "video_key", id.Key, "video_data", id.Data, "error", err)
			report.VideosFailed++
			complete = false
			continue
		}
		if veto != "" {
			continue
		}
		if err := e.store.MarkVideoFetched(ctx, video.ID, e.now()); err != nil {
			srcLog.Warn("record download failed", "video_key", id.Key, "video_data", id.Data, "error", err)
			report.VideosFailed++
			complete = false
			continue
		}
		report.VideosFetched++
	}

	// A refresh-only pass never advances scheduling; neither does a pass with
	// any failed download. The source stays due and is retried next run.
	if opts.Download && complete {
		now := e.now()
		if err := e.store.AdvanceSource(ctx, src.ID, now, now.Add(src.RefreshInterval)); err != nil {
			srcLog.Warn("advance schedule failed", "error", err)
			report.SourcesFailed++
			return
		}
	}
	report.SourcesSynced++
}

func downloadVeto(video *catalog.Video) string {
	switch {
	case !video.Allow:
		return fmt.Sprintf("video disabled: %s", video.Identity)
	case video.Downloaded():
		return fmt.Sprintf("video already downloaded: %s", video.Identity)
	default:
		return ""
	}
}
