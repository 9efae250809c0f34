package main

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/spf13/cobra"
)

func newSourcesCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "sources",
		Short: "List subscribed sources and their video statistics",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withEnvironment(cmd.Context(), func(runCtx context.Context, env *environment) error {
				sources, err := env.store.ListSources(runCtx)
				if err != nil {
					return err
				}
				if len(sources) == 0 {
					fmt.Fprintln(cmd.OutOrStdout(), "No sources subscribed.")
					return nil
				}

				headers := []string{"ID", "Extractor", "Identity", "Enabled", "Last Fetched", "Next Due", "Interval", "Saved", "Missing", "Total"}
				aligns := []columnAlignment{alignRight, alignLeft, alignLeft, alignLeft, alignLeft, alignLeft, alignRight, alignRight, alignRight, alignRight}
				rows := make([][]string, 0, len(sources))
				for _, src := range sources {
					rows = append(rows, []string{
						strconv.FormatInt(src.ID, 10),
						src.Identity.Key,
						src.Identity.Data,
						yesNo(src.Allow),
						formatTimePtr(src.LastFetched),
						formatLocalTime(src.NextDue),
						src.RefreshInterval.String(),
						strconv.Itoa(src.VideosSaved),
						strconv.Itoa(src.VideosMissing),
						strconv.Itoa(src.VideosTotal),
					})
				}
				fmt.Fprintln(cmd.OutOrStdout(), renderTable(cmd.OutOrStdout(), headers, rows, aligns))
				return nil
			})
		},
	}
}

func newVideosCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "videos",
		Short: "List tracked videos and their download state",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withEnvironment(cmd.Context(), func(runCtx context.Context, env *environment) error {
				videos, err := env.store.ListVideos(runCtx)
				if err != nil {
					return err
				}
				if len(videos) == 0 {
					fmt.Fprintln(cmd.OutOrStdout(), "No videos tracked.")
					return nil
				}

				headers := []string{"ID", "Extractor", "Identity", "Enabled", "Downloaded", "Sources"}
				aligns := []columnAlignment{alignRight, alignLeft, alignLeft, alignLeft, alignLeft, alignRight}
				rows := make([][]string, 0, len(videos))
				for _, video := range videos {
					rows = append(rows, []string{
						strconv.FormatInt(video.ID, 10),
						video.Identity.Key,
						video.Identity.Data,
						yesNo(video.Allow),
						formatTimePtr(video.LastFetched),
						strconv.Itoa(video.Sources),
					})
				}
				fmt.Fprintln(cmd.OutOrStdout(), renderTable(cmd.OutOrStdout(), headers, rows, aligns))
				return nil
			})
		},
	}
}

func formatTimePtr(value *time.Time) string {
	if value == nil {
		return "never"
	}
	return formatLocalTime(*value)
}

func formatLocalTime(value time.Time) string {
	if value.IsZero() {
		return "-"
	}
	return value.Local().Format("2006-01-02 15:04")
}
