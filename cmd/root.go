package cmd

import (
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "churn-analytics",
	Short: "Customer churn and sales forecasting service",
}

func init() {
	rootCmd.AddCommand(startCmd)
	rootCmd.AddCommand(migrateCmd)
	rootCmd.AddCommand(trainCmd)
	rootCmd.AddCommand(forecastCmd)
	rootCmd.AddCommand(ingestCmd)
	rootCmd.AddCommand(remoteCmd)
}

func Execute() error {
	return rootCmd.Execute()
}
