package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/steveyegge/beans/internal/index"
	"github.com/steveyegge/beans/internal/types"
)

var closeCmd = &cobra.Command{
	Use:   "close <id|selector>...",
	Short: "Close one or more beans",
	Long: `Close runs each bean's verify command; a non-zero exit records the
attempt in the bean's notes and leaves it open. On success the bean moves
to the archive, and a parent whose last child closed is closed too.`,
	Args: cobra.MinimumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		e := mustEngine()
		reason, _ := cmd.Flags().GetString("reason")
		force, _ := cmd.Flags().GetBool("force")

		ids := resolveTargets(e, args, index.Options{})
		failed := false
		for _, id := range ids {
			outcome, err := e.Close(rootCtx, id, reason, force)
			if err != nil {
				failed = true
				if types.IsKind(err, types.KindVerifyFailed) && outcome != nil && outcome.Result != nil {
					fmt.Fprintf(os.Stderr, "Error: %v\n", err)
					continue
				}
				FatalKindedError(err)
			}
			if jsonOutput {
				outputJSON(map[string]interface{}{
					"id":          id,
					"closed":      true,
					"auto_closed": outcome.AutoClosed,
				})
				continue
			}
			fmt.Printf("Closed bean %s: %s\n", id, outcome.File.Bean.Title)
			for _, parent := range outcome.AutoClosed {
				fmt.Printf("Closed bean %s (%s)\n", parent, "all children completed")
			}
			for _, warning := range outcome.CascadeWarnings {
				WarnError("%s", warning)
			}
		}
		if failed {
			os.Exit(1)
		}
	},
}

func init() {
	closeCmd.Flags().StringP("reason", "r", "", "close reason recorded on the bean")
	closeCmd.Flags().Bool("force", false, "close without running the verify command")
	rootCmd.AddCommand(closeCmd)
}
