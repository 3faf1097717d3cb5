package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"churn-analytics/internal/dto"
	"churn-analytics/internal/ml"
)

const (
	churnArtifactFile = "churn_model.json"
	salesArtifactFile = "sales_model.json"
)

// ArtifactRepository persists trained models on local disk. Writes go to a
// temp file in the same directory and are renamed into place, so a reader
// sees either the previous artifact or the new one.
type ArtifactRepository interface {
	SaveChurn(ctx context.Context, artifact *ml.ChurnArtifact) error
	LoadChurn(ctx context.Context) (*ml.ChurnArtifact, error)
	SaveSales(ctx context.Context, artifact *ml.SalesArtifact) error
	LoadSales(ctx context.Context) (*ml.SalesArtifact, error)
}

type fileArtifactRepository struct {
	dir string
}

func NewArtifactRepository(dir string) ArtifactRepository {
	return &fileArtifactRepository{dir: dir}
}

func (r *fileArtifactRepository) SaveChurn(ctx context.Context, artifact *ml.ChurnArtifact) error {
	return r.save(ctx, churnArtifactFile, artifact)
}

func (r *fileArtifactRepository) LoadChurn(ctx context.Context) (*ml.ChurnArtifact, error) {
	var artifact ml.ChurnArtifact
	if err := r.load(ctx, churnArtifactFile, &artifact); err != nil {
		return nil, err
	}
	return &artifact, nil
}

func (r *fileArtifactRepository) SaveSales(ctx context.Context, artifact *ml.SalesArtifact) error {
	return r.save(ctx, salesArtifactFile, artifact)
}

func (r *fileArtifactRepository) LoadSales(ctx context.Context) (*ml.SalesArtifact, error) {
	var artifact ml.SalesArtifact
	if err := r.load(ctx, salesArtifactFile, &artifact); err != nil {
		return nil, err
	}
	return &artifact, nil
}

func (r *fileArtifactRepository) save(ctx context.Context, name string, v any) (err error) {
	if err := ctx.Err(); err != nil {
		return err
	}
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encode %s: %w", name, err)
	}
	if err := os.MkdirAll(r.dir, 0o755); err != nil {
		return fmt.Errorf("create artifact dir: %w", err)
	}

	tmp, err := os.CreateTemp(r.dir, name+".tmp-*")
	if err != nil {
		return fmt.Errorf("create temp artifact: %w", err)
	}
	defer func() {
		if err != nil {
			_ = os.Remove(tmp.Name())
		}
	}()

	if _, err = tmp.Write(data); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("write %s: %w", name, err)
	}
	if err = tmp.Sync(); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("sync %s: %w", name, err)
	}
	if err = tmp.Close(); err != nil {
		return fmt.Errorf("close %s: %w", name, err)
	}
	if err = os.Rename(tmp.Name(), filepath.Join(r.dir, name)); err != nil {
		return fmt.Errorf("swap %s: %w", name, err)
	}
	return nil
}

func (r *fileArtifactRepository) load(ctx context.Context, name string, v any) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	data, err := os.ReadFile(filepath.Join(r.dir, name))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("%s: %w", name, dto.ErrArtifactNotFound)
		}
		return fmt.Errorf("read %s: %w", name, err)
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("decode %s: %w", name, err)
	}
	return nil
}
