package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/steveyegge/beans/internal/store"
)

var initCmd = &cobra.Command{
	Use:   "init [project-name]",
	Short: "Initialize a .beans store in the current directory",
	Args:  cobra.MaximumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		cwd, err := os.Getwd()
		if err != nil {
			FatalError("%v", err)
		}
		project := filepath.Base(cwd)
		if len(args) > 0 {
			project = args[0]
		}
		s, err := store.Init(cwd, project)
		if err != nil {
			FatalKindedError(err)
		}
		if jsonOutput {
			outputJSON(map[string]string{"root": s.Root(), "project": project})
			return
		}
		fmt.Printf("Initialized beans store at %s (project %q)\n", s.Root(), project)
	},
}

func init() {
	rootCmd.AddCommand(initCmd)
}
