package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/steveyegge/beans/internal/index"
)

var verifyCmd = &cobra.Command{
	Use:   "verify <id|selector>",
	Short: "Run a bean's verify command without mutating the bean",
	Long: `Run the bean's verify command in the project directory and exit with
its exit code. The bean itself is not touched; use 'bn close' to record
the result.`,
	Args: cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		e := mustEngine()
		id := resolveOne(e, args[0], index.Options{IncludeArchived: true})
		res, err := e.Verify(rootCtx, id)
		if err != nil {
			FatalKindedError(err)
		}
		if jsonOutput {
			outputJSON(map[string]interface{}{
				"id":         id,
				"exit_code":  res.ExitCode,
				"elapsed_ms": res.Elapsed.Milliseconds(),
				"output":     res.Output,
				"truncated":  res.Truncated,
			})
		} else {
			fmt.Print(res.Output)
			if res.Passed() {
				fmt.Printf("Verify passed for %s (%.1fs)\n", id, res.Elapsed.Seconds())
			} else {
				fmt.Fprintf(os.Stderr, "Verify failed for %s: exit %d (%.1fs)\n", id, res.ExitCode, res.Elapsed.Seconds())
			}
		}
		if !res.Passed() {
			os.Exit(res.ExitCode)
		}
	},
}

func init() {
	rootCmd.AddCommand(verifyCmd)
}
