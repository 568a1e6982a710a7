package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"usmbot/internal/interfaces/console"
)

func historyCmd() *cobra.Command {
	var (
		since time.Duration
		limit int
	)
	cmd := &cobra.Command{
		Use:   "history",
		Short: "List recorded engagements",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := loadConfig()
			c := buildContainers(cfg, false)
			defer c.Close()

			var from time.Time
			if since > 0 {
				from = time.Now().Add(-since)
			}
			list, err := c.Infra().Repository().ListEngagements(context.Background(), from, limit)
			if err != nil {
				return err
			}

			if err := console.NewHistoryWriter(os.Stdout).Write(list); err != nil {
				return err
			}
			fmt.Println(console.Summary(list, from))
			return nil
		},
	}
	cmd.Flags().DurationVar(&since, "since", 0, "only show engagements newer than this (e.g. 72h)")
	cmd.Flags().IntVarP(&limit, "limit", "n", 50, "maximum rows, 0 for all")
	return cmd
}
