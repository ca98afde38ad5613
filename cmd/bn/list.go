package main

import (
	"fmt"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"

	"github.com/steveyegge/beans/internal/engine"
	"github.com/steveyegge/beans/internal/graph"
	"github.com/steveyegge/beans/internal/index"
	"github.com/steveyegge/beans/internal/timeparsing"
	"github.com/steveyegge/beans/internal/types"
	"github.com/steveyegge/beans/internal/ui"
)

var listCmd = &cobra.Command{
	Use:     "list",
	Aliases: []string{"ls"},
	Short:   "List beans",
	Args:    cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		e := mustEngine()

		status, _ := cmd.Flags().GetString("status")
		label, _ := cmd.Flags().GetString("label")
		assignee, _ := cmd.Flags().GetString("assignee")
		since, _ := cmd.Flags().GetString("since")
		includeArchived, _ := cmd.Flags().GetBool("archived")
		watch, _ := cmd.Flags().GetBool("watch")

		var sinceTime time.Time
		if since != "" {
			t, err := timeparsing.Parse(since, time.Now())
			if err != nil {
				FatalKindedError(err)
			}
			sinceTime = t
		}

		filter := listFilter{status: status, label: label, assignee: assignee, since: sinceTime}
		render := func() {
			idx, err := e.Snapshot(index.Options{IncludeArchived: includeArchived})
			if err != nil {
				FatalKindedError(err)
			}
			reportIndexWarnings(idx)
			renderList(idx, filter)
		}
		render()

		if watch {
			watchStore(e, render)
		}
	},
}

type listFilter struct {
	status   string
	label    string
	assignee string
	since    time.Time
}

func (f listFilter) match(e index.Entry, g *graph.Graph) bool {
	switch f.status {
	case "", "all":
	case "ready":
		if !g.Ready(e.ID) {
			return false
		}
	case "blocked":
		if !g.Blocked(e.ID) {
			return false
		}
	default:
		if string(e.Status) != f.status {
			return false
		}
	}
	if f.label != "" {
		found := false
		for _, l := range e.Labels {
			if l == f.label {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	if f.assignee != "" && e.Assignee != f.assignee && e.ClaimedBy != f.assignee {
		return false
	}
	if !f.since.IsZero() && e.UpdatedAt.Before(f.since) {
		return false
	}
	return true
}

func renderList(idx *index.Index, filter listFilter) {
	g := graph.New(idx)
	var matched []index.Entry
	for _, e := range idx.Entries {
		if filter.match(e, g) {
			matched = append(matched, e)
		}
	}

	if jsonOutput {
		outputJSON(matched)
		return
	}
	if len(matched) == 0 {
		fmt.Println("No beans found.")
		return
	}
	for _, e := range matched {
		marker := ui.StatusLabel(e.Status)
		detail := ""
		if e.Status == types.StatusOpen && g.Blocked(e.ID) {
			detail = ui.Muted(" [blocked]")
		}
		if e.ClaimedBy != "" {
			detail += ui.Muted(fmt.Sprintf(" (%s)", e.ClaimedBy))
		}
		fmt.Printf("%-8s P%d %s %s%s\n", e.ID, e.Priority, marker, e.Title, detail)
	}
}

// watchStore re-renders whenever a bean file changes. Foreground only;
// interrupt to stop.
func watchStore(e *engine.Engine, render func()) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		FatalError("starting watcher: %v", err)
	}
	defer watcher.Close()
	if err := watcher.Add(e.Store.Root()); err != nil {
		FatalError("watching %s: %v", e.Store.Root(), err)
	}

	// Debounce bursts: a rename-based mutation fires several events.
	var pending <-chan time.Time
	for {
		select {
		case <-rootCtx.Done():
			return
		case event, ok := <-watcher.Events:
			if !ok {
				return
			}
			if event.Op&(fsnotify.Create|fsnotify.Write|fsnotify.Rename|fsnotify.Remove) != 0 {
				pending = time.After(200 * time.Millisecond)
			}
		case err, ok := <-watcher.Errors:
			if !ok {
				return
			}
			WarnError("watch error: %v", err)
		case <-pending:
			pending = nil
			fmt.Println()
			render()
		}
	}
}

func init() {
	listCmd.Flags().StringP("status", "s", "", "filter by status (open, in_progress, closed, ready, blocked, all)")
	listCmd.Flags().StringP("label", "l", "", "filter by label")
	listCmd.Flags().String("assignee", "", "filter by assignee or claimant")
	listCmd.Flags().String("since", "", "only beans updated since (e.g. -1d, 2026-01-01, 'yesterday')")
	listCmd.Flags().Bool("archived", false, "include archived beans")
	listCmd.Flags().BoolP("watch", "w", false, "keep running and re-render on store changes")
	rootCmd.AddCommand(listCmd)
}
