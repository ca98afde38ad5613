package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/steveyegge/beans/internal/graph"
	"github.com/steveyegge/beans/internal/index"
	"github.com/steveyegge/beans/internal/types"
	"github.com/steveyegge/beans/internal/ui"
)

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Summarize the store",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		e := mustEngine()
		idx, err := e.Snapshot(index.Options{IncludeArchived: true})
		if err != nil {
			FatalKindedError(err)
		}
		g := graph.New(idx)

		counts := map[string]int{}
		byPriority := map[int]int{}
		for _, entry := range idx.Entries {
			counts[string(entry.Status)]++
			if entry.Status != types.StatusClosed {
				byPriority[entry.Priority]++
			}
		}
		ready := len(g.ReadySet())
		blocked := len(g.BlockedSet())

		if jsonOutput {
			outputJSON(map[string]interface{}{
				"total":       len(idx.Entries),
				"by_status":   counts,
				"by_priority": byPriority,
				"ready":       ready,
				"blocked":     blocked,
			})
			return
		}
		fmt.Println(ui.Header("Store summary"))
		fmt.Printf("  Total beans:  %d\n", len(idx.Entries))
		fmt.Printf("  Open:         %d\n", counts["open"])
		fmt.Printf("  In progress:  %d\n", counts["in_progress"])
		fmt.Printf("  Closed:       %d\n", counts["closed"])
		fmt.Printf("  Ready:        %d\n", ready)
		fmt.Printf("  Blocked:      %d\n", blocked)
		for p := 0; p <= 4; p++ {
			if byPriority[p] > 0 {
				fmt.Printf("  P%d (active):  %d\n", p, byPriority[p])
			}
		}
	},
}

func init() {
	rootCmd.AddCommand(statsCmd)
}
