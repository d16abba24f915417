package services

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"demand-forecast-api/features"
	"demand-forecast-api/history"
	"demand-forecast-api/models"
	"demand-forecast-api/regressor"

	"github.com/google/uuid"
	"k8s.io/klog/v2"
)

var (
	ErrHistoryUnavailable = errors.New("history unavailable")
	ErrNoData             = errors.New("no historical data for slot")
)

const cacheKeyPrefix = "demand:prediction:"

// PredictionDeps are loaded once at startup. Model and History may be nil,
// in which case ModelErr and HistoryErr say why.
type PredictionDeps struct {
	Model          regressor.Model
	ModelErr       error
	History        *history.Dataset
	HistoryErr     error
	Cache          *CacheService
	Defaults       models.InputDefaults
	ReferenceYears []int
	CacheTTL       time.Duration
	Channel        string
}

type PredictionService struct {
	model      regressor.Model
	modelErr   error
	history    *history.Dataset
	historyErr error
	cache      *CacheService
	defaults   models.InputDefaults
	years      []int
	cacheTTL   time.Duration
	channel    string

	now   func() time.Time
	newID func() string
}

type Status struct {
	ModelReady     bool   `json:"model_ready"`
	ModelVersion   string `json:"model_version,omitempty"`
	ModelError     string `json:"model_error,omitempty"`
	HistoryReady   bool   `json:"history_ready"`
	HistorySource  string `json:"history_source,omitempty"`
	HistoryRows    int    `json:"history_rows"`
	HistoryError   string `json:"history_error,omitempty"`
	ReferenceYears []int  `json:"reference_years"`
	CacheEnabled   bool   `json:"cache_enabled"`
}

func NewPredictionService(d PredictionDeps) *PredictionService {
	if d.Model == nil && d.ModelErr == nil {
		d.ModelErr = models.ErrModelUnavailable
	}
	if d.History == nil && d.HistoryErr == nil {
		d.HistoryErr = ErrHistoryUnavailable
	}
	return &PredictionService{
		model:      d.Model,
		modelErr:   d.ModelErr,
		history:    d.History,
		historyErr: d.HistoryErr,
		cache:      d.Cache,
		defaults:   d.Defaults,
		years:      d.ReferenceYears,
		cacheTTL:   d.CacheTTL,
		channel:    d.Channel,
		now:        time.Now,
		newID:      uuid.NewString,
	}
}

func (s *PredictionService) Defaults() models.InputDefaults { return s.defaults }

func (s *PredictionService) ReferenceYears() []int { return s.years }

func (s *PredictionService) Status() Status {
	st := Status{
		ModelReady:     s.model != nil,
		HistoryReady:   s.history != nil,
		ReferenceYears: s.years,
		CacheEnabled:   s.cache.Available(),
	}
	if s.model != nil {
		st.ModelVersion = s.model.Version()
	} else {
		st.ModelError = s.modelErr.Error()
	}
	if s.history != nil {
		st.HistorySource = s.history.Source()
		st.HistoryRows = s.history.Len()
	} else {
		st.HistoryError = s.historyErr.Error()
	}
	return st
}

// Schema returns the feature names the model expects, in order.
func (s *PredictionService) Schema() (models.Schema, string, error) {
	if s.model == nil {
		return nil, "", s.unavailable()
	}
	return s.model.FeatureNames(), s.model.Version(), nil
}

// HandleSubmit turns one raw submission into a prediction with its historical
// comparison. It errors only when the model cannot produce a value.
func (s *PredictionService) HandleSubmit(ctx context.Context, raw models.RawInputs) (*models.PredictionResult, error) {
	return s.run(ctx, raw, false)
}

// Submit is HandleSubmit backed by the Redis result cache. The result is
// published to the predictions channel when Redis is available.
func (s *PredictionService) Submit(ctx context.Context, raw models.RawInputs) (*models.PredictionResult, error) {
	result, err := s.run(ctx, raw, true)
	if err != nil {
		return nil, err
	}
	if err := s.Publish(ctx, result); err != nil {
		klog.ErrorS(err, "Failed to publish prediction", "id", result.ID)
	}
	return result, nil
}

func (s *PredictionService) Publish(ctx context.Context, result *models.PredictionResult) error {
	if !s.cache.Available() || s.channel == "" {
		return nil
	}
	if err := s.cache.Publish(ctx, s.channel, result); err != nil {
		return fmt.Errorf("publish to %s: %w", s.channel, err)
	}
	predictionsPublished.Inc()
	return nil
}

func (s *PredictionService) run(ctx context.Context, raw models.RawInputs, cached bool) (*models.PredictionResult, error) {
	if s.model == nil {
		predictionsFailed.WithLabelValues("model_unavailable").Inc()
		return nil, s.unavailable()
	}

	record := features.Normalize(raw, s.defaults)
	schema := s.model.FeatureNames()
	row, err := features.Align(record, schema)
	if err != nil {
		predictionsFailed.WithLabelValues("schema").Inc()
		return nil, err
	}
	if missing := features.Missing(record, schema); len(missing) > 0 {
		for _, name := range missing {
			featuresZeroFilled.WithLabelValues(name).Inc()
		}
		klog.V(2).InfoS("Model features not supplied, sent as 0", "features", missing)
	}
	if dropped := features.Dropped(record, schema); len(dropped) > 0 {
		klog.V(2).InfoS("Inputs not used by the model", "features", dropped)
	}

	value, source, err := s.predict(ctx, row, cached)
	if err != nil {
		predictionsFailed.WithLabelValues("predict").Inc()
		return nil, fmt.Errorf("predict: %w", err)
	}
	predictionsServed.WithLabelValues(source).Inc()

	month := record.Int(models.FeatureMonth)
	weekday := record.Int(models.FeatureWeekday)
	hour := record.Int(models.FeatureHour)
	season := features.SeasonOf(month)

	result := &models.PredictionResult{
		ID:           s.newID(),
		CreatedAt:    s.now().UTC(),
		ModelVersion: s.model.Version(),
		Inputs:       record,
		Weekend:      features.IsWeekend(weekday) == 1,
		Season:       season,
		SeasonLabel:  season.Label(),
		Prediction:   value,
		Formatted:    FormatMW(value),
	}
	s.compare(result, month, weekday, hour)

	klog.V(1).InfoS("Prediction served", "id", result.ID, "prediction", value, "source", source)
	return result, nil
}

func (s *PredictionService) predict(ctx context.Context, row models.FeatureRecord, cached bool) (float64, string, error) {
	key := s.cacheKey(row)
	if cached {
		var value float64
		err := s.cache.Get(ctx, key, &value)
		if err == nil {
			return value, "cache", nil
		}
		if !errors.Is(err, ErrCacheMiss) {
			klog.ErrorS(err, "Prediction cache read failed", "key", key)
		}
	}

	start := time.Now()
	value, err := s.model.Predict(ctx, row)
	predictionDuration.Observe(time.Since(start).Seconds())
	if err != nil {
		return 0, "", err
	}

	if cached {
		if err := s.cache.Set(ctx, key, value, s.cacheTTL); err != nil {
			klog.ErrorS(err, "Prediction cache write failed", "key", key)
		}
	}
	return value, "model", nil
}

func (s *PredictionService) compare(result *models.PredictionResult, month, weekday, hour int) {
	if s.history == nil {
		result.HistoryMessage = history.UnavailableMessage
		result.Comparisons = make([]models.Comparison, 0, len(s.years))
		for _, year := range s.years {
			result.Comparisons = append(result.Comparisons, models.Comparison{
				Year:    year,
				Message: history.UnavailableMessage,
			})
		}
		historyLookups.WithLabelValues("unavailable").Add(float64(len(s.years)))
		return
	}

	result.HistoryAvailable = true
	result.Comparisons = s.history.Compare(month, weekday, hour, s.years, FormatMW)
	for _, c := range result.Comparisons {
		if c.Found {
			historyLookups.WithLabelValues("found").Inc()
		} else {
			historyLookups.WithLabelValues("no_data").Inc()
		}
	}
	result.Summary = history.Summarize(result.Prediction, result.Comparisons)
}

// LookupSlot returns the historical value for one year, month, weekday and
// hour.
func (s *PredictionService) LookupSlot(year, month, weekday, hour int) (models.Comparison, error) {
	if s.history == nil {
		return models.Comparison{}, fmt.Errorf("%w: %v", ErrHistoryUnavailable, s.historyErr)
	}
	c := s.history.Compare(month, weekday, hour, []int{year}, FormatMW)[0]
	if !c.Found {
		return c, ErrNoData
	}
	return c, nil
}

// ListObservations pages through the dataset newest first. year 0 means all
// years.
func (s *PredictionService) ListObservations(year int, cursor *history.Cursor, limit int) ([]models.HistoricalObservation, *history.Cursor, error) {
	if s.history == nil {
		return nil, nil, fmt.Errorf("%w: %v", ErrHistoryUnavailable, s.historyErr)
	}
	rows, next := s.history.Page(year, cursor, limit)
	return rows, next, nil
}

func (s *PredictionService) unavailable() error {
	if errors.Is(s.modelErr, models.ErrModelUnavailable) {
		return s.modelErr
	}
	return fmt.Errorf("%w: %v", models.ErrModelUnavailable, s.modelErr)
}

// cacheKey identifies an aligned row for one model version.
func (s *PredictionService) cacheKey(row models.FeatureRecord) string {
	var b strings.Builder
	b.WriteString(cacheKeyPrefix)
	b.WriteString(s.model.Version())
	for _, f := range row {
		b.WriteByte(':')
		b.WriteString(strconv.FormatFloat(f.Value, 'g', -1, 64))
	}
	return b.String()
}
