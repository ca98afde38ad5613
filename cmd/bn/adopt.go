package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var adoptCmd = &cobra.Command{
	Use:   "adopt <parent-id> <id>...",
	Short: "Move beans under a parent, renumbering them",
	Long: `Adopt renumbers each bean into the parent's next free child slot and
rewrites every reference to the old IDs throughout the store. The rename
is staged so a partial failure rolls back cleanly.`,
	Args: cobra.MinimumNArgs(2),
	Run: func(cmd *cobra.Command, args []string) {
		e := mustEngine()
		mapping, err := e.Adopt(rootCtx, args[0], args[1:])
		if err != nil {
			FatalKindedError(err)
		}
		if jsonOutput {
			outputJSON(mapping)
			return
		}
		for _, old := range args[1:] {
			fmt.Printf("Adopted %s as %s\n", old, mapping[old])
		}
	},
}

func init() {
	rootCmd.AddCommand(adoptCmd)
}
