package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"
)

var configCmd = &cobra.Command{
	Use:   "config [key] [value]",
	Short: "Show or set store configuration",
	Long: `With no arguments, print the store configuration. With a key, print
that value. With a key and value, set it.

Keys: project, next_id, auto_close_parent, max_tokens, run`,
	Args: cobra.MaximumNArgs(2),
	Run: func(cmd *cobra.Command, args []string) {
		s := mustStore()
		cfg, err := s.LoadConfig()
		if err != nil {
			FatalKindedError(err)
		}

		if len(args) == 0 {
			if jsonOutput {
				outputJSON(cfg)
				return
			}
			fmt.Printf("project: %s\n", cfg.Project)
			fmt.Printf("next_id: %d\n", cfg.NextID)
			fmt.Printf("auto_close_parent: %v\n", cfg.AutoCloseParent)
			fmt.Printf("max_tokens: %d\n", cfg.EffectiveMaxTokens())
			if cfg.Run != "" {
				fmt.Printf("run: %s\n", cfg.Run)
			}
			return
		}

		key := args[0]
		if len(args) == 1 {
			switch key {
			case "project":
				fmt.Println(cfg.Project)
			case "next_id":
				fmt.Println(cfg.NextID)
			case "auto_close_parent":
				fmt.Println(cfg.AutoCloseParent)
			case "max_tokens":
				fmt.Println(cfg.EffectiveMaxTokens())
			case "run":
				fmt.Println(cfg.Run)
			default:
				FatalError("unknown config key %q", key)
			}
			return
		}

		value := args[1]
		switch key {
		case "project":
			cfg.Project = value
		case "next_id":
			n, err := strconv.Atoi(value)
			if err != nil || n < 1 {
				FatalError("next_id must be a positive integer")
			}
			cfg.NextID = n
		case "auto_close_parent":
			b, err := strconv.ParseBool(value)
			if err != nil {
				FatalError("auto_close_parent must be true or false")
			}
			cfg.AutoCloseParent = b
		case "max_tokens":
			n, err := strconv.ParseInt(value, 10, 64)
			if err != nil || n < 1 {
				FatalError("max_tokens must be a positive integer")
			}
			cfg.MaxTokens = n
		case "run":
			cfg.Run = value
		default:
			FatalError("unknown config key %q", key)
		}
		if err := s.SaveConfig(cfg); err != nil {
			FatalKindedError(err)
		}
		fmt.Printf("Set %s = %s\n", key, value)
	},
}

func init() {
	rootCmd.AddCommand(configCmd)
}
