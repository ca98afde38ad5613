// Command bn is a file-backed task engine for coordinating autonomous
// agents. Every task (a bean) is a standalone text file in a .beans store;
// lifecycle transitions are gated by each bean's verify command.
package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/charmbracelet/huh"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/steveyegge/beans/internal/engine"
	"github.com/steveyegge/beans/internal/store"
	"github.com/steveyegge/beans/internal/telemetry"
	"github.com/steveyegge/beans/internal/ui"
)

// Version is stamped by the release build.
var Version = "dev"

var (
	actorFlag  string
	jsonOutput bool
	quietFlag  bool
	noColor    bool

	rootCtx    context.Context
	rootCancel context.CancelFunc
)

var rootCmd = &cobra.Command{
	Use:           "bn",
	Short:         "File-backed task engine for coordinating autonomous agents",
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		if noColor || jsonOutput {
			ui.DisableColor()
		}
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&actorFlag, "actor", "", "actor identity (defaults to BEANS_ACTOR, then $USER)")
	rootCmd.PersistentFlags().BoolVar(&jsonOutput, "json", false, "machine-readable JSON output")
	rootCmd.PersistentFlags().BoolVarP(&quietFlag, "quiet", "q", false, "suppress non-essential output")
	rootCmd.PersistentFlags().BoolVar(&noColor, "no-color", false, "disable styled output")

	viper.SetEnvPrefix("beans")
	viper.AutomaticEnv()
	_ = viper.BindPFlag("actor", rootCmd.PersistentFlags().Lookup("actor"))
}

// currentActor resolves the acting identity: --actor flag, BEANS_ACTOR,
// then $USER.
func currentActor() string {
	if actor := viper.GetString("actor"); actor != "" {
		return actor
	}
	return os.Getenv("USER")
}

// currentEditor resolves the editor command: BEANS_EDITOR, $EDITOR, vi.
func currentEditor() string {
	if ed := viper.GetString("editor"); ed != "" {
		return ed
	}
	if ed := os.Getenv("EDITOR"); ed != "" {
		return ed
	}
	return "vi"
}

// mustStore discovers the store from the working directory or exits.
func mustStore() *store.Store {
	cwd, err := os.Getwd()
	if err != nil {
		FatalError("%v", err)
	}
	s, err := store.Discover(cwd)
	if err != nil {
		FatalKindedError(err)
	}
	return s
}

// mustEngine builds a lifecycle engine over the discovered store.
func mustEngine() *engine.Engine {
	return engine.New(mustStore())
}

func main() {
	rootCtx, rootCancel = signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer rootCancel()

	if err := telemetry.Init(rootCtx, "bn", Version); err != nil {
		WarnError("telemetry init failed: %v", err)
	}
	start := time.Now()

	cmd, _, _ := rootCmd.Find(os.Args[1:])
	name := "bn"
	if cmd != nil {
		name = cmd.Name()
	}

	err := rootCmd.Execute()
	exitCode := 0
	if err != nil {
		exitCode = 2 // Run-style commands exit on their own; Execute errors are argument errors
	}

	telemetry.RecordCommand(rootCtx, name, time.Since(start), exitCode)
	telemetry.Shutdown(rootCtx)

	if err != nil {
		if errors.Is(err, huh.ErrUserAborted) {
			os.Exit(130)
		}
		FatalArgError("%v", err)
	}
}
