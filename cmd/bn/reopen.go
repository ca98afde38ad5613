package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/steveyegge/beans/internal/index"
)

var reopenCmd = &cobra.Command{
	Use:   "reopen <id|selector>...",
	Short: "Reopen closed beans and restore them to the active tree",
	Args:  cobra.MinimumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		e := mustEngine()
		for _, id := range resolveTargets(e, args, index.Options{IncludeArchived: true}) {
			f, err := e.Reopen(rootCtx, id)
			if err != nil {
				FatalKindedError(err)
			}
			if jsonOutput {
				outputJSON(f.Bean)
				continue
			}
			fmt.Printf("Reopened bean %s: %s\n", id, f.Bean.Title)
		}
	},
}

var unarchiveCmd = &cobra.Command{
	Use:   "unarchive <id>",
	Short: "Move an archived bean back to the active tree",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		e := mustEngine()
		f, err := e.Unarchive(rootCtx, args[0])
		if err != nil {
			FatalKindedError(err)
		}
		if jsonOutput {
			outputJSON(f.Bean)
			return
		}
		fmt.Printf("Unarchived bean %s: %s\n", f.Bean.ID, f.Bean.Title)
	},
}

func init() {
	rootCmd.AddCommand(reopenCmd)
	rootCmd.AddCommand(unarchiveCmd)
}
