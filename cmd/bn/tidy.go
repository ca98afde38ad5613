package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/steveyegge/beans/internal/engine"
	"github.com/steveyegge/beans/internal/timeparsing"
)

var tidyCmd = &cobra.Command{
	Use:   "tidy",
	Short: "Archive closed beans, release stale claims, rebuild the index",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		e := mustEngine()
		dryRun, _ := cmd.Flags().GetBool("dry-run")
		stale, _ := cmd.Flags().GetString("stale")

		opts := engine.TidyOptions{DryRun: dryRun}
		if stale != "" {
			t, err := timeparsing.Parse(stale, time.Now())
			if err != nil {
				FatalKindedError(err)
			}
			opts.StaleBefore = t
		}

		report, err := e.Tidy(rootCtx, opts)
		if err != nil {
			FatalKindedError(err)
		}
		if jsonOutput {
			outputJSON(report)
			return
		}
		prefix := ""
		if dryRun {
			prefix = "[dry-run] "
		}
		for _, id := range report.Archived {
			fmt.Printf("%sArchived %s\n", prefix, id)
		}
		for _, id := range report.Released {
			fmt.Printf("%sReleased stale claim on %s\n", prefix, id)
		}
		if len(report.Archived) == 0 && len(report.Released) == 0 {
			fmt.Println("Store is tidy.")
		}
	},
}

func init() {
	tidyCmd.Flags().Bool("dry-run", false, "report without changing anything")
	tidyCmd.Flags().String("stale", "", "release claims older than this (e.g. -1d, 'yesterday'; default 24h)")
	rootCmd.AddCommand(tidyCmd)
}
