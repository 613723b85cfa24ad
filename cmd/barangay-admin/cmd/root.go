package cmd

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"barangay-events/internal/config"
	"barangay-events/internal/logger"
)

var (
	envFile string

	rootCmd = &cobra.Command{
		Use:   "barangay-admin",
		Short: "Maintenance tools for the barangay events bulletin",
		Long: `barangay-admin works against the same database and brokers as the
events service, configured through the same environment variables.

Examples:
  # Load sample events into a fresh database
  barangay-admin seed --reset

  # Follow event changes published to Kafka
  barangay-admin tail --source kafka`,
		SilenceUsage: true,
	}
)

// Execute runs the root command. It is called once by main.main().
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&envFile, "env-file", ".env", "dotenv file to load if present")

	rootCmd.AddCommand(seedCmd)
	rootCmd.AddCommand(tailCmd)
	rootCmd.AddCommand(migrateCmd)
}

func loadConfig() *config.Config {
	_ = godotenv.Load(envFile)
	return config.Load()
}

func newLogger(cmd *cobra.Command) *logger.Logger {
	return logger.NewWithWriter(cmd.ErrOrStderr())
}
