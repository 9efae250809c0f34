package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/yuri-sevatz/youtube-sync/internal/engine"
)

func newSyncCommand(ctx *commandContext) *cobra.Command {
	var forceFlag bool

	cmd := &cobra.Command{
		Use:   "sync [url]",
		Short: "Refresh due sources and download missing videos",
		Args:  cobra.MaximumNArgs(1),
		RunE:  syncRunE(ctx, &forceFlag, true),
	}
	cmd.Flags().BoolVarP(&forceFlag, "force", "f", false, "Sync even when not yet due")
	return cmd
}

func newFetchCommand(ctx *commandContext) *cobra.Command {
	var forceFlag bool

	cmd := &cobra.Command{
		Use:   "fetch [url]",
		Short: "Refresh source listings without downloading anything",
		Args:  cobra.MaximumNArgs(1),
		RunE:  syncRunE(ctx, &forceFlag, false),
	}
	cmd.Flags().BoolVarP(&forceFlag, "force", "f", false, "Refresh even when not yet due")
	return cmd
}

func syncRunE(ctx *commandContext, force *bool, download bool) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		return ctx.withLock(func() error {
			return ctx.withEnvironment(cmd.Context(), func(runCtx context.Context, env *environment) error {
				opts := engine.SyncOptions{Download: download, Force: *force}
				if len(args) == 1 {
					opts.URL = args[0]
					opts.Force = true
				}
				report, err := env.engine.Sync(runCtx, opts)
				if err != nil {
					return err
				}

				out := cmd.OutOrStdout()
				fmt.Fprintf(out, "Synced %d source(s), skipped %d, failed %d\n",
					report.SourcesSynced, report.SourcesSkipped, report.SourcesFailed)
				if download {
					fmt.Fprintf(out, "Downloaded %d video(s), failed %d\n",
						report.VideosFetched, report.VideosFailed)
				}
				if report.ItemsSkipped > 0 {
					fmt.Fprintf(out, "Skipped %d unrecognized listing entr(ies)\n", report.ItemsSkipped)
				}
				if report.SourcesFailed > 0 || report.VideosFailed > 0 {
					return fmt.Errorf("sync completed with failures (run %s)", report.RunID)
				}
				return nil
			})
		})
	}
}
