package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/steveyegge/beans/internal/engine"
	"github.com/steveyegge/beans/internal/index"
)

var updateCmd = &cobra.Command{
	Use:   "update <id|selector>",
	Short: "Edit a bean's fields",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		e := mustEngine()
		id := resolveOne(e, args[0], index.Options{IncludeArchived: true})

		var opts engine.UpdateOptions
		strFlag := func(name string) *string {
			if !cmd.Flags().Changed(name) {
				return nil
			}
			v, _ := cmd.Flags().GetString(name)
			return &v
		}
		opts.Title = strFlag("title")
		opts.Description = strFlag("description")
		opts.Acceptance = strFlag("acceptance")
		opts.Design = strFlag("design")
		opts.Verify = strFlag("verify")
		opts.Assignee = strFlag("assignee")
		if cmd.Flags().Changed("priority") {
			p, _ := cmd.Flags().GetInt("priority")
			opts.Priority = &p
		}
		opts.AppendNotes, _ = cmd.Flags().GetString("notes")
		addLabels, _ := cmd.Flags().GetString("add-label")
		opts.AddLabels = splitCSV(addLabels)
		rmLabels, _ := cmd.Flags().GetString("remove-label")
		opts.RemoveLabels = splitCSV(rmLabels)
		if cmd.Flags().Changed("produces") {
			v, _ := cmd.Flags().GetString("produces")
			tokens := splitCSV(v)
			opts.Produces = &tokens
		}
		if cmd.Flags().Changed("requires") {
			v, _ := cmd.Flags().GetString("requires")
			tokens := splitCSV(v)
			opts.Requires = &tokens
		}

		f, err := e.Update(rootCtx, id, opts)
		if err != nil {
			FatalKindedError(err)
		}
		if jsonOutput {
			outputJSON(f.Bean)
			return
		}
		fmt.Printf("Updated bean %s: %s\n", id, f.Bean.Title)
	},
}

func init() {
	updateCmd.Flags().String("title", "", "new title")
	updateCmd.Flags().StringP("description", "d", "", "new description")
	updateCmd.Flags().String("acceptance", "", "new acceptance criteria")
	updateCmd.Flags().String("design", "", "new design notes")
	updateCmd.Flags().StringP("verify", "v", "", "new verify command")
	updateCmd.Flags().String("assignee", "", "new assignee")
	updateCmd.Flags().IntP("priority", "p", 2, "new priority 0-4")
	updateCmd.Flags().String("notes", "", "append a notes entry")
	updateCmd.Flags().String("add-label", "", "comma-separated labels to add")
	updateCmd.Flags().String("remove-label", "", "comma-separated labels to remove")
	updateCmd.Flags().String("produces", "", "replace produced capability tokens")
	updateCmd.Flags().String("requires", "", "replace required capability tokens")
	rootCmd.AddCommand(updateCmd)
}
