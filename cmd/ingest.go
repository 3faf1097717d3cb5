package cmd

import (
	"context"
	"fmt"
	"os"

	"churn-analytics/internal/service"

	"github.com/spf13/cobra"
)

var ingestFile string

var ingestCmd = &cobra.Command{
	Use:   "ingest",
	Short: "Load customers, products and orders from the customer CSV export",
	RunE: func(cmd *cobra.Command, args []string) error {
		f, err := os.Open(ingestFile)
		if err != nil {
			return fmt.Errorf("failed to open %s: %w", ingestFile, err)
		}
		defer f.Close()

		return runWithServices(func(ctx context.Context, s *service.Service) (interface{}, error) {
			return s.IngestService.IngestCSV(ctx, f)
		})
	},
}

func init() {
	ingestCmd.Flags().StringVarP(&ingestFile, "file", "f", "customer_data.csv", "path to the CSV file")
}
