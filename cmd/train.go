package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"churn-analytics/internal/service"

	"github.com/spf13/cobra"
)

var trainCmd = &cobra.Command{
	Use:   "train",
	Short: "Train a model in-process",
}

var trainChurnCmd = &cobra.Command{
	Use:   "churn",
	Short: "Train the churn classifier and re-score every customer",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runWithServices(func(ctx context.Context, s *service.Service) (interface{}, error) {
			return s.ChurnService.TrainChurnModel(ctx)
		})
	},
}

var trainSalesCmd = &cobra.Command{
	Use:   "sales",
	Short: "Train the sales regressor and refresh top product forecasts",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runWithServices(func(ctx context.Context, s *service.Service) (interface{}, error) {
			return s.SalesService.TrainSalesModel(ctx)
		})
	},
}

var forecastCmd = &cobra.Command{
	Use:   "forecast",
	Short: "Generate forecasts in-process",
}

var forecastAllCmd = &cobra.Command{
	Use:   "all",
	Short: "Generate quarterly and yearly forecasts for every product with orders",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runWithServices(func(ctx context.Context, s *service.Service) (interface{}, error) {
			return s.SalesService.GenerateAllForecasts(ctx)
		})
	},
}

func init() {
	trainCmd.AddCommand(trainChurnCmd)
	trainCmd.AddCommand(trainSalesCmd)
	forecastCmd.AddCommand(forecastAllCmd)
}

// runWithServices builds the dependency graph, runs fn and prints its result
// as indented JSON.
func runWithServices(fn func(ctx context.Context, s *service.Service) (interface{}, error)) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	appDep, err := NewAppDependency(ctx)
	if err != nil {
		return fmt.Errorf("failed to create app dependency: %w", err)
	}
	defer func() { _ = appDep.Close() }()

	services, err := appDep.NewServices(ctx)
	if err != nil {
		return err
	}

	result, err := fn(ctx, services)
	if err != nil {
		return err
	}
	return printJSON(result)
}

func printJSON(v interface{}) error {
	out, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal result: %w", err)
	}
	fmt.Println(string(out))
	return nil
}
