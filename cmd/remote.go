package cmd

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"churn-analytics/config"
	"churn-analytics/internal/dto"
	"churn-analytics/pkg/httpclient"

	"github.com/spf13/cobra"
)

var (
	remoteBaseURL    string
	remoteCustomerID string
	remoteProductID  string
	remotePeriod     string
	remoteHorizon    int
)

var remoteCmd = &cobra.Command{
	Use:   "remote",
	Short: "Call the ML endpoints of a running API",
}

var remoteTrainChurnCmd = &cobra.Command{
	Use:   "train-churn",
	Short: "Trigger churn training on the server",
	RunE: func(cmd *cobra.Command, args []string) error {
		return remotePost(cmd.Context(), "/ml-training/train-churn-model", nil)
	},
}

var remoteTrainSalesCmd = &cobra.Command{
	Use:   "train-sales",
	Short: "Trigger sales training on the server",
	RunE: func(cmd *cobra.Command, args []string) error {
		return remotePost(cmd.Context(), "/ml-training/train-sales-model", nil)
	},
}

var remotePredictCmd = &cobra.Command{
	Use:   "predict",
	Short: "Predict churn for one customer",
	RunE: func(cmd *cobra.Command, args []string) error {
		return remotePost(cmd.Context(), "/ml-training/predict-churn", dto.PredictChurnRequest{CustomerID: remoteCustomerID})
	},
}

var remoteForecastCmd = &cobra.Command{
	Use:   "forecast",
	Short: "Forecast sales for one product",
	RunE: func(cmd *cobra.Command, args []string) error {
		return remotePost(cmd.Context(), "/ml-training/forecast-sales", dto.ForecastSalesRequest{
			ProductID:       remoteProductID,
			ForecastPeriod:  remotePeriod,
			ForecastHorizon: remoteHorizon,
		})
	},
}

func init() {
	remoteCmd.PersistentFlags().StringVar(&remoteBaseURL, "base-url", "", "API base URL (defaults to client.base_url)")

	remotePredictCmd.Flags().StringVar(&remoteCustomerID, "customer", "", "customer id")
	_ = remotePredictCmd.MarkFlagRequired("customer")

	remoteForecastCmd.Flags().StringVar(&remoteProductID, "product", "", "product id")
	remoteForecastCmd.Flags().StringVar(&remotePeriod, "period", "monthly", "daily, weekly, monthly, quarterly or yearly")
	remoteForecastCmd.Flags().IntVar(&remoteHorizon, "horizon", 12, "number of periods")
	_ = remoteForecastCmd.MarkFlagRequired("product")

	remoteCmd.AddCommand(remoteTrainChurnCmd, remoteTrainSalesCmd, remotePredictCmd, remoteForecastCmd)
}

func newRemoteClient() (httpclient.HTTPClient, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	baseURL := cfg.Client.BaseURL
	if remoteBaseURL != "" {
		baseURL = remoteBaseURL
	}
	return httpclient.New(baseURL, cfg.Client.Timeout), nil
}

func remotePost(ctx context.Context, endpoint string, body interface{}) error {
	if ctx == nil {
		ctx = context.Background()
	}
	client, err := newRemoteClient()
	if err != nil {
		return err
	}

	var result dto.BaseResponse
	resp, err := client.Post(ctx, endpoint, body, &result)
	if err != nil {
		var statusErr *httpclient.StatusError
		if errors.As(err, &statusErr) {
			var failure dto.BaseResponse
			if json.Unmarshal(resp.Body, &failure) == nil && failure.Message != "" {
				return fmt.Errorf("%s failed with status %d: %s", endpoint, statusErr.StatusCode, failure.Message)
			}
		}
		return fmt.Errorf("%s failed: %w", endpoint, err)
	}
	return printJSON(result)
}
