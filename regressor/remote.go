package regressor

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"demand-forecast-api/models"

	"github.com/xh3b4sd/tracer"
	"k8s.io/klog/v2"
)

type RemoteConfig struct {
	// URL is the sidecar base address, e.g. http://localhost:9000.
	URL string
	// Timeout bounds each predict request. Defaults to 5s.
	Timeout time.Duration
	// ReadyTimeout bounds the wait for the sidecar to answer "OK" on GET /.
	// Defaults to 30s.
	ReadyTimeout time.Duration
	PollInterval time.Duration
	// FeatureNames is used when GET /schema is not served.
	FeatureNames []string
	Client       *http.Client
}

// Remote forwards predictions to a model server running next to the API:
//
//	GET  /        -> "OK" once the model is loaded
//	GET  /schema  -> {"feature_names": [...], "version": "..."}
//	POST /predict <- {"feature_names": [...], "rows": [[...]]}
//	              -> {"predictions": [...]}
type Remote struct {
	url     string
	client  *http.Client
	names   models.Schema
	version string
}

type schemaResponse struct {
	FeatureNames []string `json:"feature_names"`
	Version      string   `json:"version"`
}

type predictRequest struct {
	FeatureNames []string    `json:"feature_names"`
	Rows         [][]float64 `json:"rows"`
}

type predictResponse struct {
	Predictions []float64 `json:"predictions"`
}

func NewRemote(ctx context.Context, cfg RemoteConfig) (*Remote, error) {
	if cfg.Timeout == 0 {
		cfg.Timeout = 5 * time.Second
	}
	if cfg.ReadyTimeout == 0 {
		cfg.ReadyTimeout = 30 * time.Second
	}
	if cfg.PollInterval == 0 {
		cfg.PollInterval = time.Second
	}
	if cfg.Client == nil {
		cfg.Client = &http.Client{Timeout: cfg.Timeout}
	}

	r := &Remote{
		url:    strings.TrimSuffix(cfg.URL, "/"),
		client: cfg.Client,
	}

	if err := r.waitReady(ctx, cfg.ReadyTimeout, cfg.PollInterval); err != nil {
		return nil, err
	}

	schema, err := r.schema(ctx)
	if err != nil {
		klog.InfoS("Model server has no schema endpoint, using configured feature names", "url", r.url, "err", err)
		schema = schemaResponse{FeatureNames: cfg.FeatureNames}
	}
	if len(schema.FeatureNames) == 0 {
		schema.FeatureNames = cfg.FeatureNames
	}
	r.names = models.Schema(schema.FeatureNames)
	if err := r.names.Validate(); err != nil {
		return nil, fmt.Errorf("model server feature names: %w", err)
	}
	r.version = schema.Version
	if r.version == "" {
		r.version = "remote " + r.url
	}
	return r, nil
}

func (r *Remote) waitReady(ctx context.Context, timeout, interval time.Duration) error {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		if r.ready(ctx) {
			return nil
		}
		select {
		case <-ctx.Done():
			return fmt.Errorf("model server %s not ready: %w", r.url, models.ErrModelUnavailable)
		case <-ticker.C:
		}
	}
}

func (r *Remote) ready(ctx context.Context) bool {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, r.url+"/", nil)
	if err != nil {
		return false
	}
	res, err := r.client.Do(req)
	if err != nil {
		return false
	}
	defer res.Body.Close()

	bod, err := io.ReadAll(res.Body)
	if err != nil {
		return false
	}
	return strings.TrimSpace(string(bod)) == "OK"
}

func (r *Remote) schema(ctx context.Context) (schemaResponse, error) {
	var out schemaResponse

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, r.url+"/schema", nil)
	if err != nil {
		return out, tracer.Mask(err)
	}
	res, err := r.client.Do(req)
	if err != nil {
		return out, tracer.Mask(err)
	}
	defer res.Body.Close()

	if res.StatusCode != http.StatusOK {
		return out, fmt.Errorf("schema request returned %s", res.Status)
	}
	if err := json.NewDecoder(res.Body).Decode(&out); err != nil {
		return out, tracer.Mask(err)
	}
	return out, nil
}

func (r *Remote) Predict(ctx context.Context, row models.FeatureRecord) (float64, error) {
	if err := checkAligned(row, r.names); err != nil {
		return 0, err
	}

	byt, err := json.Marshal(predictRequest{
		FeatureNames: r.names,
		Rows:         [][]float64{row.Values()},
	})
	if err != nil {
		return 0, tracer.Mask(err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, r.url+"/predict", bytes.NewReader(byt))
	if err != nil {
		return 0, tracer.Mask(err)
	}
	req.Header.Set("Content-Type", "application/json")

	res, err := r.client.Do(req)
	if err != nil {
		return 0, tracer.Mask(err)
	}
	defer res.Body.Close()

	if res.StatusCode != http.StatusOK {
		return 0, fmt.Errorf("predict request returned %s", res.Status)
	}

	var out predictResponse
	if err := json.NewDecoder(res.Body).Decode(&out); err != nil {
		return 0, tracer.Mask(err)
	}
	if len(out.Predictions) != 1 {
		return 0, fmt.Errorf("expected 1 prediction, got %d", len(out.Predictions))
	}
	return out.Predictions[0], nil
}

func (r *Remote) FeatureNames() models.Schema { return r.names }

func (r *Remote) Version() string { return r.version }
