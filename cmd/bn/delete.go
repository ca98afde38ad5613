package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/charmbracelet/huh"
	"github.com/spf13/cobra"

	"github.com/steveyegge/beans/internal/index"
)

var deleteCmd = &cobra.Command{
	Use:     "delete <id|selector>...",
	Aliases: []string{"rm"},
	Short:   "Delete beans and strip them from other beans' dependencies",
	Args:    cobra.MinimumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		e := mustEngine()
		force, _ := cmd.Flags().GetBool("force")
		ids := resolveTargets(e, args, index.Options{IncludeArchived: true})

		if !force && !jsonOutput {
			confirmed := false
			form := huh.NewConfirm().
				Title(fmt.Sprintf("Delete %d bean(s)? %v", len(ids), ids)).
				Description("The files are removed; dependencies on them are stripped.").
				Value(&confirmed)
			if err := form.Run(); err != nil {
				if errors.Is(err, huh.ErrUserAborted) {
					os.Exit(130)
				}
				FatalError("%v", err)
			}
			if !confirmed {
				os.Exit(130)
			}
		}

		for _, id := range ids {
			if err := e.Delete(rootCtx, id); err != nil {
				FatalKindedError(err)
			}
			if !jsonOutput {
				fmt.Printf("Deleted bean %s\n", id)
			}
		}
		if jsonOutput {
			outputJSON(map[string]interface{}{"deleted": ids})
		}
	},
}

func init() {
	deleteCmd.Flags().BoolP("force", "f", false, "delete without confirmation")
	rootCmd.AddCommand(deleteCmd)
}
