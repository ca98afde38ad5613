package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/steveyegge/beans/internal/graph"
	"github.com/steveyegge/beans/internal/index"
	"github.com/steveyegge/beans/internal/types"
	"github.com/steveyegge/beans/internal/ui"
)

var readyCmd = &cobra.Command{
	Use:   "ready",
	Short: "List beans that are ready to work on",
	Long: `A bean is ready when it is open, has a verify command, and every
dependency (explicit or inferred from requires/produces) is closed. Beans
without a verify command are goals and are never scheduled.`,
	Args: cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		runReadiness(true)
	},
}

var blockedCmd = &cobra.Command{
	Use:   "blocked",
	Short: "List beans blocked on unclosed dependencies",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		runReadiness(false)
	},
}

func runReadiness(ready bool) {
	e := mustEngine()
	idx, err := e.Snapshot(index.Options{})
	if err != nil {
		FatalKindedError(err)
	}
	reportIndexWarnings(idx)
	g := graph.New(idx)

	var ids []string
	if ready {
		ids = g.ReadySet()
	} else {
		ids = g.BlockedSet()
	}

	if jsonOutput {
		outputJSON(ids)
		return
	}
	if len(ids) == 0 {
		if ready {
			fmt.Println("No beans are ready.")
		} else {
			fmt.Println("No beans are blocked.")
		}
		return
	}
	for _, id := range ids {
		entry := idx.Get(id)
		if ready {
			fmt.Printf("%s %-8s P%d %s\n", ui.IconReady, id, entry.Priority, entry.Title)
		} else {
			blockers := openBlockers(g, idx, id)
			fmt.Printf("%s %-8s P%d %s %s\n", ui.IconBlocked, id, entry.Priority, entry.Title,
				ui.Muted(fmt.Sprintf("(waiting on %v)", blockers)))
		}
	}
}

func openBlockers(g *graph.Graph, idx *index.Index, id string) []string {
	var out []string
	for _, dep := range g.Edges(id) {
		if e := idx.Get(dep); e != nil && e.Status != types.StatusClosed {
			out = append(out, dep)
		}
	}
	return out
}

func init() {
	rootCmd.AddCommand(readyCmd)
	rootCmd.AddCommand(blockedCmd)
}
