package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/steveyegge/beans/internal/index"
)

var claimCmd = &cobra.Command{
	Use:   "claim <id|selector>",
	Short: "Claim a bean for work (or release it with --release)",
	Long: `Claim transitions an open bean to in_progress and records who holds it.
Two simultaneous claims are resolved optimistically: exactly one wins and
the other fails with a claim-conflict.`,
	Args: cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		e := mustEngine()
		id := resolveOne(e, args[0], index.Options{})
		release, _ := cmd.Flags().GetBool("release")
		force, _ := cmd.Flags().GetBool("force")

		if release {
			f, err := e.Release(rootCtx, id)
			if err != nil {
				FatalKindedError(err)
			}
			if jsonOutput {
				outputJSON(f.Bean)
				return
			}
			fmt.Printf("Released claim on bean %s: %s\n", id, f.Bean.Title)
			return
		}

		f, err := e.Claim(rootCtx, id, currentActor(), force)
		if err != nil {
			FatalKindedError(err)
		}
		if jsonOutput {
			outputJSON(f.Bean)
			return
		}
		fmt.Printf("Claimed bean %s: %s (by %s)\n", id, f.Bean.Title, f.Bean.ClaimedBy)
	},
}

func init() {
	claimCmd.Flags().Bool("release", false, "release the claim instead of acquiring it")
	claimCmd.Flags().Bool("force", false, "take over a bean claimed by someone else")
	rootCmd.AddCommand(claimCmd)
}
