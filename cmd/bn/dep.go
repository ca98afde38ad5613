package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/steveyegge/beans/internal/engine"
	"github.com/steveyegge/beans/internal/graph"
	"github.com/steveyegge/beans/internal/index"
)

var depCmd = &cobra.Command{
	Use:   "dep",
	Short: "Manage dependency edges",
}

var depAddCmd = &cobra.Command{
	Use:   "add <id> <dep-id>...",
	Short: "Add dependency edges (cycle-checked)",
	Args:  cobra.MinimumNArgs(2),
	Run: func(cmd *cobra.Command, args []string) {
		e := mustEngine()
		id := resolveOne(e, args[0], index.Options{})
		f, err := e.Update(rootCtx, id, engine.UpdateOptions{AddDeps: args[1:]})
		if err != nil {
			FatalKindedError(err)
		}
		if jsonOutput {
			outputJSON(f.Bean)
			return
		}
		fmt.Printf("Bean %s now depends on %v\n", id, f.Bean.Dependencies)
	},
}

var depRemoveCmd = &cobra.Command{
	Use:     "rm <id> <dep-id>...",
	Aliases: []string{"remove"},
	Short:   "Remove dependency edges",
	Args:    cobra.MinimumNArgs(2),
	Run: func(cmd *cobra.Command, args []string) {
		e := mustEngine()
		id := resolveOne(e, args[0], index.Options{})
		f, err := e.Update(rootCtx, id, engine.UpdateOptions{RemoveDeps: args[1:]})
		if err != nil {
			FatalKindedError(err)
		}
		if jsonOutput {
			outputJSON(f.Bean)
			return
		}
		fmt.Printf("Bean %s now depends on %v\n", id, f.Bean.Dependencies)
	},
}

var depListCmd = &cobra.Command{
	Use:   "list <id>",
	Short: "Show a bean's edges and dependents",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		e := mustEngine()
		idx, err := e.Snapshot(index.Options{IncludeArchived: true})
		if err != nil {
			FatalKindedError(err)
		}
		id := resolveOne(e, args[0], index.Options{IncludeArchived: true})
		g := graph.New(idx)
		edges := g.Edges(id)
		dependents := g.Dependents(id)
		if jsonOutput {
			outputJSON(map[string]interface{}{"id": id, "depends_on": edges, "dependents": dependents})
			return
		}
		fmt.Printf("%s depends on: %v\n", id, edges)
		fmt.Printf("%s is depended on by: %v\n", id, dependents)
	},
}

func init() {
	depCmd.AddCommand(depAddCmd)
	depCmd.AddCommand(depRemoveCmd)
	depCmd.AddCommand(depListCmd)
	rootCmd.AddCommand(depCmd)
}
