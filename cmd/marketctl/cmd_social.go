package main

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"artmarket/internal/model"
)

var socialCmd = &cobra.Command{
	Use:   "social",
	Short: "Facebook and Instagram announcements",
}

var socialAnnounceCmd = &cobra.Command{
	Use:   "announce [product-id]",
	Short: "Post a published product to the configured networks",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withRuntime(cmd, func(ctx context.Context, rt *runtime) error {
			posts, err := rt.social.Announce(ctx, args[0])
			printPosts(cmd.OutOrStdout(), posts)
			return err
		})
	},
}

var socialHistoryCmd = &cobra.Command{
	Use:   "history [product-id]",
	Short: "List recorded posts for a product",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withRuntime(cmd, func(ctx context.Context, rt *runtime) error {
			posts, err := rt.social.History(ctx, args[0])
			if err != nil {
				return err
			}
			printPosts(cmd.OutOrStdout(), posts)
			return nil
		})
	},
}

func printPosts(w io.Writer, posts []model.SocialPost) {
	for _, p := range posts {
		line := fmt.Sprintf("%s\t%s\t%s", p.Network, p.Status, p.ExternalID)
		if p.Error != "" {
			line += "\t" + p.Error
		}
		fmt.Fprintln(w, line)
	}
}
