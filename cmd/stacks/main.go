package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/campuslib/stacks/internal/app"
)

func main() {
	os.Exit(run())
}

func run() int {
	var opts app.Options

	rootCmd := &cobra.Command{
		Use:   "stacks",
		Short: "Terminal client for the university library",
		Long: `stacks is a terminal client for the university library service:
browse the catalog, borrow and return books, track reading statuses
and keep a wishlist.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return app.Run(cmd.Context(), opts)
		},
	}

	rootCmd.Flags().StringVar(&opts.ConfigPath, "config", "", "override config path (optional)")
	rootCmd.Flags().StringVar(&opts.PrefsPath, "prefs", "", "override preferences path (optional)")
	rootCmd.Flags().StringVar(&opts.ServerURL, "server", "", "override backend base URL (optional)")

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "stacks: %v\n", err)
		return 1
	}
	return 0
}
