package ml

import (
	"encoding/json"
	"fmt"
	"time"

	"churn-analytics/internal/feature"
)

// envelope tags an estimator payload with its registered kind.
type envelope struct {
	Kind    string          `json:"kind"`
	Payload json.RawMessage `json:"payload"`
}

func wrap(kind string, v any) (envelope, error) {
	payload, err := json.Marshal(v)
	if err != nil {
		return envelope{}, fmt.Errorf("marshal %s: %w", kind, err)
	}
	return envelope{Kind: kind, Payload: payload}, nil
}

// ChurnArtifact bundles everything needed to score a customer. It is never
// mutated after training.
type ChurnArtifact struct {
	Version        string                `json:"version"`
	RunID          string                `json:"run_id"`
	TrainedAt      time.Time             `json:"trained_at"`
	FeatureColumns []string              `json:"feature_columns"`
	Scaler         StandardScaler        `json:"scaler"`
	Encoders       feature.EncoderTables `json:"encoders"`
	Model          Classifier            `json:"-"`
}

type churnArtifactJSON struct {
	Version        string                `json:"version"`
	RunID          string                `json:"run_id"`
	TrainedAt      time.Time             `json:"trained_at"`
	FeatureColumns []string              `json:"feature_columns"`
	Scaler         StandardScaler        `json:"scaler"`
	Encoders       feature.EncoderTables `json:"encoders"`
	Model          envelope              `json:"model"`
}

func (a ChurnArtifact) MarshalJSON() ([]byte, error) {
	if a.Model == nil {
		return nil, fmt.Errorf("churn artifact %s has no model", a.Version)
	}
	env, err := wrap(a.Model.Kind(), a.Model)
	if err != nil {
		return nil, err
	}
	return json.Marshal(churnArtifactJSON{
		Version:        a.Version,
		RunID:          a.RunID,
		TrainedAt:      a.TrainedAt,
		FeatureColumns: a.FeatureColumns,
		Scaler:         a.Scaler,
		Encoders:       a.Encoders,
		Model:          env,
	})
}

func (a *ChurnArtifact) UnmarshalJSON(data []byte) error {
	var raw churnArtifactJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	model, err := newClassifier(raw.Model.Kind)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(raw.Model.Payload, model); err != nil {
		return fmt.Errorf("unmarshal %s: %w", raw.Model.Kind, err)
	}
	*a = ChurnArtifact{
		Version:        raw.Version,
		RunID:          raw.RunID,
		TrainedAt:      raw.TrainedAt,
		FeatureColumns: raw.FeatureColumns,
		Scaler:         raw.Scaler,
		Encoders:       raw.Encoders,
		Model:          model,
	}
	return nil
}

// Score returns the churn probability of rec using the artifact's own
// encoders and scaler.
func (a *ChurnArtifact) Score(rec feature.CustomerRecord, now time.Time) (float64, error) {
	vec, err := feature.BuildChurnVector(rec, a.Encoders, now)
	if err != nil {
		return 0, err
	}
	return a.Model.PredictProba(a.Scaler.Transform(vec)), nil
}

// SalesArtifact bundles the fitted regressor with its scaler.
type SalesArtifact struct {
	Version        string         `json:"version"`
	RunID          string         `json:"run_id"`
	TrainedAt      time.Time      `json:"trained_at"`
	FeatureColumns []string       `json:"feature_columns"`
	Scaler         StandardScaler `json:"scaler"`
	Model          Regressor      `json:"-"`
}

type salesArtifactJSON struct {
	Version        string         `json:"version"`
	RunID          string         `json:"run_id"`
	TrainedAt      time.Time      `json:"trained_at"`
	FeatureColumns []string       `json:"feature_columns"`
	Scaler         StandardScaler `json:"scaler"`
	Model          envelope       `json:"model"`
}

func (a SalesArtifact) MarshalJSON() ([]byte, error) {
	if a.Model == nil {
		return nil, fmt.Errorf("sales artifact %s has no model", a.Version)
	}
	env, err := wrap(a.Model.Kind(), a.Model)
	if err != nil {
		return nil, err
	}
	return json.Marshal(salesArtifactJSON{
		Version:        a.Version,
		RunID:          a.RunID,
		TrainedAt:      a.TrainedAt,
		FeatureColumns: a.FeatureColumns,
		Scaler:         a.Scaler,
		Model:          env,
	})
}

func (a *SalesArtifact) UnmarshalJSON(data []byte) error {
	var raw salesArtifactJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	model, err := newRegressor(raw.Model.Kind)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(raw.Model.Payload, model); err != nil {
		return fmt.Errorf("unmarshal %s: %w", raw.Model.Kind, err)
	}
	*a = SalesArtifact{
		Version:        raw.Version,
		RunID:          raw.RunID,
		TrainedAt:      raw.TrainedAt,
		FeatureColumns: raw.FeatureColumns,
		Scaler:         raw.Scaler,
		Model:          model,
	}
	return nil
}

// Predict returns the raw, unclamped quantity for a calendar point.
func (a *SalesArtifact) Predict(date time.Time, unitPrice float64) float64 {
	return a.Model.Predict(a.Scaler.Transform(feature.CalendarVector(date, unitPrice)))
}
