package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/stewardhq/steward/internal/cli"
	"github.com/stewardhq/steward/internal/config"
)

var schemaCmd = &cobra.Command{
	Use:   "schema",
	Short: "Print the capability schema injected into model prompts",
	Run: func(cmd *cobra.Command, args []string) {
		configPath, _ := cmd.Flags().GetString("config")

		cfg, err := config.Load(configPath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "config error: %v\n", err)
			os.Exit(1)
		}

		logger := cli.NewLogger(cfg.Log.Level, false)
		assistant, err := cli.BuildAssistant(cfg, logger, nil)
		if err != nil {
			fmt.Fprintf(os.Stderr, "failed to initialize assistant: %v\n", err)
			os.Exit(1)
		}

		fmt.Println(assistant.Schema(cmd.Context()))
	},
}

func init() {
	rootCmd.AddCommand(schemaCmd)
}
