package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/steveyegge/beans/internal/index"
	"github.com/steveyegge/beans/internal/ui"
)

var showCmd = &cobra.Command{
	Use:   "show <id|selector>",
	Short: "Show a bean's full contents",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		e := mustEngine()
		id := resolveOne(e, args[0], index.Options{IncludeArchived: true})
		f, err := e.Store.Load(id)
		if err != nil {
			FatalKindedError(err)
		}
		bean := f.Bean

		if jsonOutput {
			outputJSON(bean)
			return
		}

		var b strings.Builder
		fmt.Fprintf(&b, "# %s: %s\n\n", bean.ID, bean.Title)
		fmt.Fprintf(&b, "- Status: %s\n", bean.Status)
		fmt.Fprintf(&b, "- Priority: P%d\n", bean.Priority)
		if bean.Parent != "" {
			fmt.Fprintf(&b, "- Parent: %s\n", bean.Parent)
		}
		if len(bean.Dependencies) > 0 {
			fmt.Fprintf(&b, "- Dependencies: %s\n", strings.Join(bean.Dependencies, ", "))
		}
		if len(bean.Produces) > 0 {
			fmt.Fprintf(&b, "- Produces: %s\n", strings.Join(bean.Produces, ", "))
		}
		if len(bean.Requires) > 0 {
			fmt.Fprintf(&b, "- Requires: %s\n", strings.Join(bean.Requires, ", "))
		}
		if len(bean.Labels) > 0 {
			fmt.Fprintf(&b, "- Labels: %s\n", strings.Join(bean.Labels, ", "))
		}
		if bean.Assignee != "" {
			fmt.Fprintf(&b, "- Assignee: %s\n", bean.Assignee)
		}
		if bean.ClaimedBy != "" {
			fmt.Fprintf(&b, "- Claimed by: %s\n", bean.ClaimedBy)
		}
		if bean.Verify != "" {
			fmt.Fprintf(&b, "- Verify: `%s`\n", bean.Verify)
		}
		if bean.Attempts > 0 {
			fmt.Fprintf(&b, "- Attempts: %d\n", bean.Attempts)
		}
		if bean.Tokens > 0 {
			fmt.Fprintf(&b, "- Tokens: ~%d\n", bean.Tokens)
		}
		if bean.IsArchived {
			b.WriteString("- Archived\n")
		}
		if bean.Description != "" {
			fmt.Fprintf(&b, "\n## Description\n\n%s\n", bean.Description)
		}
		if bean.Acceptance != "" {
			fmt.Fprintf(&b, "\n## Acceptance\n\n%s\n", bean.Acceptance)
		}
		if bean.Design != "" {
			fmt.Fprintf(&b, "\n## Design\n\n%s\n", bean.Design)
		}
		if bean.Notes != "" {
			fmt.Fprintf(&b, "\n## Notes\n\n%s\n", bean.Notes)
		}

		fmt.Print(ui.RenderMarkdown(b.String()))
	},
}

func init() {
	rootCmd.AddCommand(showCmd)
}
