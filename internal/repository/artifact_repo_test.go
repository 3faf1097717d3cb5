package repository

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"churn-analytics/internal/dto"
	"churn-analytics/internal/feature"
	"churn-analytics/internal/ml"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func trainedChurnArtifact(t *testing.T, version string) *ml.ChurnArtifact {
	t.Helper()
	X := [][]float64{{0, 1}, {1, 0}, {0.2, 0.9}, {0.9, 0.1}}
	y := []int{0, 1, 0, 1}
	clf := ml.NewRandomForestClassifier(ml.ForestConfig{Trees: 3, Seed: 42})
	require.NoError(t, clf.Fit(context.Background(), X, y))
	scaler, err := ml.FitStandardScaler(X)
	require.NoError(t, err)
	return &ml.ChurnArtifact{
		Version:        version,
		TrainedAt:      time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC),
		FeatureColumns: []string{"a", "b"},
		Scaler:         scaler,
		Encoders:       feature.EncoderTables{Gender: feature.FitLabelEncoder([]string{"F", "M"})},
		Model:          clf,
	}
}

func TestArtifactRepository_MissingIsNotFound(t *testing.T) {
	repo := NewArtifactRepository(t.TempDir())

	_, err := repo.LoadChurn(context.Background())
	assert.ErrorIs(t, err, dto.ErrArtifactNotFound)

	_, err = repo.LoadSales(context.Background())
	assert.ErrorIs(t, err, dto.ErrArtifactNotFound)
}

func TestArtifactRepository_SaveReplacesAtomically(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "models")
	repo := NewArtifactRepository(dir)
	ctx := context.Background()

	require.NoError(t, repo.SaveChurn(ctx, trainedChurnArtifact(t, "v1")))
	require.NoError(t, repo.SaveChurn(ctx, trainedChurnArtifact(t, "v2")))

	loaded, err := repo.LoadChurn(ctx)
	require.NoError(t, err)
	assert.Equal(t, "v2", loaded.Version)
	assert.Equal(t, []string{"F", "M"}, loaded.Encoders.Gender.Classes)

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1, "no temp files left behind")
	assert.Equal(t, churnArtifactFile, entries[0].Name())
}

func TestArtifactRepository_FailedSaveKeepsPrevious(t *testing.T) {
	repo := NewArtifactRepository(t.TempDir())
	ctx := context.Background()
	require.NoError(t, repo.SaveChurn(ctx, trainedChurnArtifact(t, "v1")))

	broken := trainedChurnArtifact(t, "v2")
	broken.Model = nil
	assert.Error(t, repo.SaveChurn(ctx, broken))

	loaded, err := repo.LoadChurn(ctx)
	require.NoError(t, err)
	assert.Equal(t, "v1", loaded.Version)
}

func TestArtifactRepository_SalesRoundTrip(t *testing.T) {
	repo := NewArtifactRepository(t.TempDir())
	ctx := context.Background()

	X := [][]float64{{2024, 1, 0, 1, 10}, {2024, 2, 1, 32, 10}, {2024, 3, 2, 61, 10}}
	reg := ml.NewRandomForestRegressor(ml.ForestConfig{Trees: 3, Seed: 42})
	require.NoError(t, reg.Fit(ctx, X, []float64{1, 2, 3}))
	scaler, err := ml.FitStandardScaler(X)
	require.NoError(t, err)

	art := &ml.SalesArtifact{Version: "v1", Scaler: scaler, Model: reg}
	require.NoError(t, repo.SaveSales(ctx, art))

	loaded, err := repo.LoadSales(ctx)
	require.NoError(t, err)
	day := time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC)
	assert.Equal(t, art.Predict(day, 10), loaded.Predict(day, 10))
}
