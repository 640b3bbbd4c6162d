// Package commands implements the edgenode CLI, following the cobra
// command-tree shape dittofs builds its own cmd/dittofs/commands around.
package commands

import (
	"os"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

var (
	// Logger is the application-level logger for this CLI, distinct from
	// pkg/log's library-internal logger (newtron's pkg/util.Logger shape).
	Logger = logrus.New()

	cfgFile  string
	logLevel string
	envFile  string
)

var rootCmd = &cobra.Command{
	Use:           "edgenode",
	Short:         "Example Sparkplug B edge node driver",
	Long:          "edgenode loads a node configuration file and runs a Sparkplug B session against one or more MQTT brokers.",
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if err := godotenv.Load(envFile); err != nil && !os.IsNotExist(err) {
			return err
		}
		lvl, err := logrus.ParseLevel(logLevel)
		if err != nil {
			return err
		}
		Logger.SetLevel(lvl)
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "./edgenode.yaml", "path to the node configuration file")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "info", "log level: trace, debug, info, warn, error")
	rootCmd.PersistentFlags().StringVar(&envFile, "env-file", ".env", "path to an optional .env file")

	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(versionCmd)
	rootCmd.CompletionOptions.DisableDefaultCmd = true
}

// Execute runs the root command. Called once from main.main.
func Execute() error {
	return rootCmd.Execute()
}
