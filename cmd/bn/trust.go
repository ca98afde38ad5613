package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/charmbracelet/huh"
	"github.com/spf13/cobra"
)

var trustCmd = &cobra.Command{
	Use:   "trust",
	Short: "Allow this store's hook scripts to run",
	Long: `Hooks are executables under .beans/hooks/ that run around lifecycle
transitions. They execute with your privileges, so they are skipped until
you explicitly trust the store.`,
	Args: cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		s := mustStore()
		revoke, _ := cmd.Flags().GetBool("revoke")
		check, _ := cmd.Flags().GetBool("check")

		switch {
		case check:
			if jsonOutput {
				outputJSON(map[string]bool{"trusted": s.Trusted()})
				return
			}
			if s.Trusted() {
				fmt.Println("Hooks are trusted.")
			} else {
				fmt.Println("Hooks are not trusted.")
			}
		case revoke:
			if err := s.RevokeTrust(); err != nil {
				FatalKindedError(err)
			}
			if !jsonOutput {
				fmt.Println("Hook trust revoked.")
			}
		default:
			if !jsonOutput {
				confirmed := false
				form := huh.NewConfirm().
					Title("Trust hook scripts in this store?").
					Description("Executables under " + s.HooksDir() + " will run with your privileges.").
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
			if err := s.Trust(); err != nil {
				FatalKindedError(err)
			}
			if !jsonOutput {
				fmt.Println("Hooks trusted.")
			}
		}
	},
}

func init() {
	trustCmd.Flags().Bool("revoke", false, "revoke hook trust")
	trustCmd.Flags().Bool("check", false, "report trust state")
	rootCmd.AddCommand(trustCmd)
}
