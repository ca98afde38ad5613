package main

import (
	"fmt"
	"os"
	"os/exec"

	"github.com/spf13/cobra"

	"github.com/steveyegge/beans/internal/index"
)

var editCmd = &cobra.Command{
	Use:   "edit <id|selector>",
	Short: "Open a bean file in your editor",
	Long: `Open the bean's file in BEANS_EDITOR (falling back to $EDITOR, then vi)
and re-parse it afterwards to catch syntax mistakes early.`,
	Args: cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		e := mustEngine()
		id := resolveOne(e, args[0], index.Options{IncludeArchived: true})
		f, err := e.Store.Load(id)
		if err != nil {
			FatalKindedError(err)
		}

		editor := currentEditor()
		ed := exec.Command("sh", "-c", editor+" "+f.Path)
		ed.Stdin = os.Stdin
		ed.Stdout = os.Stdout
		ed.Stderr = os.Stderr
		if err := ed.Run(); err != nil {
			FatalError("editor exited with error: %v", err)
		}

		// Re-parse so a syntax mistake surfaces now, not on the next command.
		if _, err := e.Store.LoadPath(f.Path); err != nil {
			FatalError("bean %s no longer parses: %v", id, err)
		}
		fmt.Printf("Updated bean %s\n", id)
	},
}

func init() {
	rootCmd.AddCommand(editCmd)
}
