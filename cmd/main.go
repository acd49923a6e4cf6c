package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var cfgFile string

func main() {
	if err := rootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "magicboard",
		Short:         "Community leaderboard ranked by Magician Score",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: $MAGIC_CONFIG)")

	root.AddCommand(serveCmd())
	root.AddCommand(leaderboardCmd())
	root.AddCommand(memberCmd())

	return root
}

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP API server",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runServe(cmd.Context())
		},
	}
}

func leaderboardCmd() *cobra.Command {
	var (
		sortKey  string
		search   string
		page     int
		pageSize int
		asJSON   bool
	)

	cmd := &cobra.Command{
		Use:   "leaderboard",
		Short: "Print one page of the leaderboard",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runLeaderboard(cmd.Context(), cmd.OutOrStdout(), leaderboardArgs{
				sort:     sortKey,
				search:   search,
				page:     page,
				pageSize: pageSize,
				json:     asJSON,
			})
		},
	}

	cmd.Flags().StringVar(&sortKey, "sort", "score", "sort key: score, posts, views, likes, replies, retweets, quotes")
	cmd.Flags().StringVarP(&search, "query", "q", "", "filter by handle or display name")
	cmd.Flags().IntVar(&page, "page", 1, "page number")
	cmd.Flags().IntVar(&pageSize, "page-size", 0, "rows per page (default: from config)")
	cmd.Flags().BoolVar(&asJSON, "json", false, "output as JSON")
	return cmd
}

func memberCmd() *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "member <handle>",
		Short: "Print a member's card",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runMember(cmd.Context(), cmd.OutOrStdout(), args[0], asJSON)
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "output as JSON")
	return cmd
}
