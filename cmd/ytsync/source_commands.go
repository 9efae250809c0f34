package main

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"
)

func newAddCommand(ctx *commandContext) *cobra.Command {
	var intervalFlag time.Duration

	cmd := &cobra.Command{
		Use:   "add <url>",
		Short: "Subscribe to a source URL",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withEnvironment(cmd.Context(), func(runCtx context.Context, env *environment) error {
				src, err := env.engine.Add(runCtx, args[0], intervalFlag)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Added %s (refresh every %s)\n", src.Identity, src.RefreshInterval)
				return nil
			})
		},
	}
	cmd.Flags().DurationVar(&intervalFlag, "interval", 0, "Refresh interval for this source (default from config)")
	return cmd
}

func newRemoveCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "remove <url>",
		Short: "Unsubscribe from a source and drop videos only it referenced",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withEnvironment(cmd.Context(), func(runCtx context.Context, env *environment) error {
				src, err := env.engine.Remove(runCtx, args[0])
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Removed %s\n", src.Identity)
				return nil
			})
		},
	}
}

func newEnableCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "enable <url>",
		Short: "Re-enable a source or video for syncing",
		Args:  cobra.ExactArgs(1),
		RunE:  toggleRunE(ctx, true),
	}
}

func newDisableCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "disable <url>",
		Short: "Exclude a source or video from syncing without removing it",
		Args:  cobra.ExactArgs(1),
		RunE:  toggleRunE(ctx, false),
	}
}

func toggleRunE(ctx *commandContext, allow bool) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		return ctx.withEnvironment(cmd.Context(), func(runCtx context.Context, env *environment) error {
			affected, err := env.engine.Toggle(runCtx, args[0], allow)
			if err != nil {
				return err
			}
			state := "Disabled"
			if allow {
				state = "Enabled"
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s %d record(s)\n", state, affected)
			return nil
		})
	}
}
