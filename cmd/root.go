package cmd

import (
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "coursetrail",
	Short: "Course progress and spaced-repetition tracker",
	Long: "coursetrail evaluates learner progress through structured courses and " +
		"schedules reviews of individual learning items.",
	SilenceUsage: true,
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	flags := rootCmd.PersistentFlags()
	flags.String("db", "", "Path to SQLite database file (overrides COURSETRAIL_DB env var)")
	flags.String("config", "", "Path to config file (default $XDG_CONFIG_HOME/coursetrail/config.yaml)")
	flags.String("log-level", "", "Log level: debug, info, warn or error")
	flags.String("actor", "", `Learner identity as a JSON agent, e.g. {"mbox":"mailto:me@example.com"}`)

	rootCmd.AddCommand(evaluateCmd)
	rootCmd.AddCommand(validateCmd)
	rootCmd.AddCommand(flattenCmd)
	rootCmd.AddCommand(progressCmd)
	rootCmd.AddCommand(reviewCmd)
	rootCmd.AddCommand(dueCmd)
	rootCmd.AddCommand(historyCmd)
	rootCmd.AddCommand(versionCmd)
}
