package main

import (
	"fmt"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/steveyegge/beans/internal/engine"
	"github.com/steveyegge/beans/internal/types"
)

var createCmd = &cobra.Command{
	Use:     "create <title>",
	Aliases: []string{"new"},
	Short:   "Create a new bean",
	Long: `Create a new bean.

If a verify command is supplied it must currently exit non-zero: a test
that already passes proves nothing about unfinished work. Use --pass-ok
to skip that gate deliberately.`,
	Args: cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		runCreate(cmd, args[0], false)
	},
}

var quickCmd = &cobra.Command{
	Use:   "quick <title>",
	Short: "Create a bean with required substance (verify or acceptance)",
	Long: `Create a bean like 'create', but require at least one of --verify or
--acceptance so the bean is immediately actionable.`,
	Args: cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		runCreate(cmd, args[0], true)
	},
}

func runCreate(cmd *cobra.Command, title string, requireSubstance bool) {
	e := mustEngine()

	opts := engine.CreateOptions{Title: title, RequireSubstance: requireSubstance}
	opts.Description, _ = cmd.Flags().GetString("description")
	opts.Acceptance, _ = cmd.Flags().GetString("acceptance")
	opts.Design, _ = cmd.Flags().GetString("design")
	opts.Notes, _ = cmd.Flags().GetString("notes")
	opts.Verify, _ = cmd.Flags().GetString("verify")
	opts.Parent, _ = cmd.Flags().GetString("parent")
	opts.Assignee, _ = cmd.Flags().GetString("assignee")
	opts.PassOK, _ = cmd.Flags().GetBool("pass-ok")

	if cmd.Flags().Changed("priority") {
		p, _ := cmd.Flags().GetInt("priority")
		opts.Priority = &p
	}
	labels, _ := cmd.Flags().GetString("labels")
	opts.Labels = splitCSV(labels)
	deps, _ := cmd.Flags().GetString("deps")
	opts.Dependencies = splitCSV(deps)
	produces, _ := cmd.Flags().GetString("produces")
	opts.Produces = splitCSV(produces)
	requires, _ := cmd.Flags().GetString("requires")
	opts.Requires = splitCSV(requires)

	if opts.Description == "" && !quietFlag {
		yellow := color.New(color.FgYellow).SprintFunc()
		fmt.Fprintf(os.Stderr, "%s Creating bean without description.\n", yellow("⚠"))
		fmt.Fprintf(os.Stderr, "  Beans without descriptions lack context for future work.\n")
	}

	if claim, _ := cmd.Flags().GetBool("claim"); claim {
		opts.ClaimBy = currentActor()
		if opts.ClaimBy == "" {
			FatalError("--claim requires an actor; set BEANS_ACTOR or pass --actor")
		}
	}

	f, err := e.Create(rootCtx, opts)
	if err != nil {
		FatalKindedError(err)
	}

	if jsonOutput {
		outputJSON(f.Bean)
		return
	}
	fmt.Printf("Created bean %s: %s\n", f.Bean.ID, f.Bean.Title)
	if f.Bean.Status == types.StatusInProgress {
		fmt.Printf("Claimed by %s\n", f.Bean.ClaimedBy)
	}
}

func addCreateFlags(cmd *cobra.Command) {
	cmd.Flags().StringP("description", "d", "", "description body")
	cmd.Flags().String("acceptance", "", "acceptance criteria")
	cmd.Flags().String("design", "", "design notes")
	cmd.Flags().String("notes", "", "initial notes entry")
	cmd.Flags().StringP("verify", "v", "", "shell command that must exit 0 to close this bean")
	cmd.Flags().Bool("pass-ok", false, "allow a verify command that already passes")
	cmd.Flags().IntP("priority", "p", 2, "priority 0-4 (0 highest)")
	cmd.Flags().String("parent", "", "parent bean ID (allocates the next child slot)")
	cmd.Flags().String("assignee", "", "intended actor")
	cmd.Flags().StringP("labels", "l", "", "comma-separated labels")
	cmd.Flags().String("deps", "", "comma-separated dependency IDs")
	cmd.Flags().String("produces", "", "comma-separated capability tokens this bean produces")
	cmd.Flags().String("requires", "", "comma-separated capability tokens this bean requires")
	cmd.Flags().Bool("claim", false, "claim the bean immediately after creation")
}

func init() {
	addCreateFlags(createCmd)
	addCreateFlags(quickCmd)
	rootCmd.AddCommand(createCmd)
	rootCmd.AddCommand(quickCmd)
}
