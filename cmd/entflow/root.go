package main

import (
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "entflow",
	Short: "entflow runs discrete event simulations of entity flow models.",
	Long: `entflow runs discrete event simulations of entity flow models. ` +
		`The CLI currently provides a built-in source-buffer-server demo ` +
		`model (run) that exercises the scheduler, the process model, and ` +
		`the queue statistics.`,
}

// Execute adds all child commands to the root command and sets flags
// appropriately.
func Execute() {
	// A .env file can provide ENTFLOW_MONITOR_PORT and ENTFLOW_OUTPUT.
	_ = godotenv.Load()

	err := rootCmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}
