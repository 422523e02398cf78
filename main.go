package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/PressTune/initializers"
)

var rootCmd = &cobra.Command{
	Use:   "presstune",
	Short: "PressTune comment service",
	Long: `PressTune serves threaded comments for the site: the comment tree API,
votes, session handling and realtime invalidation over websockets.

Running without a subcommand starts the server.`,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		initializers.LoadEnv()
		initializers.LoadConfig()
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		return runServe(cmd.Context())
	},
	SilenceUsage: true,
}

func init() {
	rootCmd.AddCommand(serveCmd, migrateCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
