package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/steveyegge/beans/internal/graph"
	"github.com/steveyegge/beans/internal/index"
)

var graphCmd = &cobra.Command{
	Use:   "graph [id]",
	Short: "Render the dependency graph as a tree of dependents",
	Args:  cobra.MaximumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		e := mustEngine()
		idx, err := e.Snapshot(index.Options{})
		if err != nil {
			FatalKindedError(err)
		}
		reportIndexWarnings(idx)
		g := graph.New(idx)

		if cycle := g.FindCycle(); cycle != nil {
			WarnError("dependency cycle detected: %s", strings.Join(cycle, " -> "))
		}

		var roots []string
		if len(args) == 1 {
			roots = []string{resolveOne(e, args[0], index.Options{})}
		} else {
			for _, entry := range idx.Entries {
				if len(g.Edges(entry.ID)) == 0 {
					roots = append(roots, entry.ID)
				}
			}
		}

		var b strings.Builder
		visited := make(map[string]bool)
		for _, root := range roots {
			if entry := idx.Get(root); entry != nil {
				fmt.Fprintf(&b, "%s %s\n", entry.ID, entry.Title)
			}
			renderDependents(&b, g, idx, root, "", visited)
		}
		fmt.Print(b.String())
	},
}

// renderDependents draws the reverse-dependency tree under id with
// box-drawing connectors.
func renderDependents(b *strings.Builder, g *graph.Graph, idx *index.Index, id, prefix string, visited map[string]bool) {
	if visited[id] {
		return
	}
	visited[id] = true

	dependents := g.Dependents(id)
	for i, dep := range dependents {
		last := i == len(dependents)-1
		connector := "├── "
		childPrefix := prefix + "│   "
		if last {
			connector = "└── "
			childPrefix = prefix + "    "
		}
		b.WriteString(prefix)
		b.WriteString(connector)
		if entry := idx.Get(dep); entry != nil {
			fmt.Fprintf(b, "%s %s\n", entry.ID, entry.Title)
		} else {
			fmt.Fprintf(b, "%s\n", dep)
		}
		renderDependents(b, g, idx, dep, childPrefix, visited)
	}
}

func init() {
	rootCmd.AddCommand(graphCmd)
}
