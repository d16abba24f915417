// Package regressor loads the trained demand model and runs predictions on
// aligned feature rows.
package regressor

import (
	"context"
	"fmt"
	"time"

	"demand-forecast-api/models"
)

// Model is a loaded regression artifact. Predict expects a row already
// aligned to FeatureNames.
type Model interface {
	Predict(ctx context.Context, row models.FeatureRecord) (float64, error)
	FeatureNames() models.Schema
	Version() string
}

type Options struct {
	// Path is an XGBoost JSON model file.
	Path string
	// URL is the base address of a prediction sidecar. It takes precedence
	// over Path when set.
	URL string
	// FeatureNames is used when the artifact does not carry its own.
	FeatureNames []string
	Timeout      time.Duration
	ReadyTimeout time.Duration
}

func Load(ctx context.Context, opts Options) (Model, error) {
	if opts.URL != "" {
		r, err := NewRemote(ctx, RemoteConfig{
			URL:          opts.URL,
			Timeout:      opts.Timeout,
			ReadyTimeout: opts.ReadyTimeout,
			FeatureNames: opts.FeatureNames,
		})
		if err != nil {
			return nil, err
		}
		return r, nil
	}
	if opts.Path == "" {
		return nil, fmt.Errorf("no model path or url configured: %w", models.ErrModelUnavailable)
	}
	b, err := LoadBooster(opts.Path, opts.FeatureNames)
	if err != nil {
		return nil, err
	}
	return b, nil
}

func checkAligned(row models.FeatureRecord, names models.Schema) error {
	if len(row) != len(names) {
		return fmt.Errorf("row has %d features, model expects %d", len(row), len(names))
	}
	for i, f := range row {
		if f.Name != names[i] {
			return fmt.Errorf("feature %d is %q, model expects %q", i, f.Name, names[i])
		}
	}
	return nil
}
