package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/stewardhq/steward/internal/cli"
	"github.com/stewardhq/steward/internal/config"
)

var runCmd = &cobra.Command{
	Use:   "run [request]",
	Short: "Talk to the assistant interactively, or handle a single request",
	Long: `Starts an interactive conversation on stdin/stdout. With a request
argument it handles that one request and exits.`,
	Run: func(cmd *cobra.Command, args []string) {
		configPath, _ := cmd.Flags().GetString("config")
		debug, _ := cmd.Flags().GetBool("debug")
		sessionID, _ := cmd.Flags().GetString("session")

		cfg, err := config.Load(configPath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "config error: %v\n", err)
			os.Exit(1)
		}

		logger := cli.NewLogger(cfg.Log.Level, debug)
		assistant, err := cli.BuildAssistant(cfg, logger, nil)
		if err != nil {
			fmt.Fprintf(os.Stderr, "failed to initialize assistant: %v\n", err)
			os.Exit(1)
		}

		once := ""
		if len(args) > 0 {
			once = args[0]
		}
		if once == "" && cli.IsInteractive() {
			cli.PrintBanner(version)
		}

		sigCtx := cli.NewSignalContext(context.Background())
		defer sigCtx.Cancel()

		if err := cli.RunRepl(sigCtx, assistant, cli.ReplOptions{
			SessionID: sessionID,
			Once:      once,
		}); err != nil {
			fmt.Fprintf(os.Stderr, "error: %v\n", err)
			os.Exit(1)
		}
	},
}

func init() {
	rootCmd.AddCommand(runCmd)
	runCmd.Flags().String("session", "", "Session ID to resume (defaults to a new session)")
}
