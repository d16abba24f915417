package services

import (
	"context"
	"errors"
	"math"
	"testing"
	"time"

	"demand-forecast-api/history"
	"demand-forecast-api/models"
	"demand-forecast-api/regressor"
)

type stubModel struct {
	names   models.Schema
	value   float64
	err     error
	version string
	rows    []models.FeatureRecord
}

func (m *stubModel) Predict(_ context.Context, row models.FeatureRecord) (float64, error) {
	m.rows = append(m.rows, row)
	return m.value, m.err
}

func (m *stubModel) FeatureNames() models.Schema { return m.names }

func (m *stubModel) Version() string {
	if m.version != "" {
		return m.version
	}
	return "stub-v1"
}

// endToEndInputs is a Tuesday in January at 18h.
var endToEndInputs = models.RawInputs{
	DemandLag1:   "28000",
	DemandLag24:  "27500",
	DemandLag168: "26000",
	MovingAvg24h: "27000",
	Hour:         "18",
	Month:        "1",
	Weekday:      "2",
	Temps:        []models.RawValue{"30", "29", "22", "28", "33"},
}

func testHistory() *history.Dataset {
	return history.NewDataset("memory", []models.HistoricalObservation{{
		Fecha:      time.Date(2022, 1, 4, 18, 0, 0, 0, time.UTC),
		Year:       2022,
		Month:      1,
		Hour:       18,
		DemandReal: 30000,
	}})
}

func newTestService(m *stubModel, h *history.Dataset) *PredictionService {
	var model regressor.Model
	if m != nil {
		model = m
	}
	svc := NewPredictionService(PredictionDeps{
		Model:          model,
		History:        h,
		Defaults:       models.DefaultInputs(),
		ReferenceYears: []int{2022, 2023},
	})
	svc.newID = func() string { return "test-id" }
	svc.now = func() time.Time { return time.Date(2025, 1, 7, 18, 0, 0, 0, time.UTC) }
	return svc
}

func TestHandleSubmitEndToEnd(t *testing.T) {
	m := &stubModel{names: models.CanonicalFeatures, value: 28000}
	svc := newTestService(m, testHistory())

	result, err := svc.HandleSubmit(context.Background(), endToEndInputs)
	if err != nil {
		t.Fatalf("HandleSubmit failed: %v", err)
	}

	if result.Formatted != "28,000 MW" {
		t.Errorf("Formatted = %q, want %q", result.Formatted, "28,000 MW")
	}
	if result.ID != "test-id" {
		t.Errorf("ID = %q, want test-id", result.ID)
	}
	if result.Weekend {
		t.Error("Weekend = true for dia_semana 2")
	}
	if result.Season != models.SeasonWinter || result.SeasonLabel != "Invierno" {
		t.Errorf("Season = %q/%q, want winter/Invierno", result.Season, result.SeasonLabel)
	}

	if len(m.rows) != 1 {
		t.Fatalf("model called %d times, want 1", len(m.rows))
	}
	want := map[string]float64{
		"demanda_lag_1": 28000, "demanda_lag_24": 27500, "demanda_lag_168": 26000,
		"media_movil_24h": 27000, "hora": 18, "mes": 1, "es_finde": 0, "dia_semana": 2,
		"Madrid_temperature_2m": 30, "Valencia_temperature_2m": 29,
		"Pais_Vasco_temperature_2m": 22, "Cataluna_temperature_2m": 28,
		"Andalucia_temperature_2m": 33,
	}
	row := m.rows[0]
	for i, f := range row {
		if f.Name != models.CanonicalFeatures[i] {
			t.Errorf("row[%d] = %q, want %q", i, f.Name, models.CanonicalFeatures[i])
		}
		if f.Value != want[f.Name] {
			t.Errorf("%s = %v, want %v", f.Name, f.Value, want[f.Name])
		}
	}

	if !result.HistoryAvailable {
		t.Fatal("HistoryAvailable = false")
	}
	if len(result.Comparisons) != 2 {
		t.Fatalf("got %d comparisons, want 2", len(result.Comparisons))
	}
	if c := result.Comparisons[0]; !c.Found || c.Formatted != "30,000 MW" {
		t.Errorf("2022 comparison = %+v, want found 30,000 MW", c)
	}
	if c := result.Comparisons[1]; c.Found || c.Message != history.NoDataMessage {
		t.Errorf("2023 comparison = %+v, want %q", c, history.NoDataMessage)
	}
	if result.Summary == nil || result.Summary.Mean != 30000 {
		t.Fatalf("Summary = %+v, want mean 30000", result.Summary)
	}
	if math.Abs(result.Summary.DeltaPct-(-20.0/3)) > 1e-9 {
		t.Errorf("DeltaPct = %v, want -6.67", result.Summary.DeltaPct)
	}
}

func TestHandleSubmitZeroFillsUnknownFeatures(t *testing.T) {
	m := &stubModel{names: models.Schema{"hora", "precio", "es_finde"}, value: 100}
	svc := newTestService(m, nil)

	raw := endToEndInputs
	raw.Weekday = "7"
	if _, err := svc.HandleSubmit(context.Background(), raw); err != nil {
		t.Fatalf("HandleSubmit failed: %v", err)
	}

	row := m.rows[0]
	if len(row) != 3 {
		t.Fatalf("row has %d features, want 3", len(row))
	}
	if row[0].Value != 18 || row[1].Value != 0 || row[2].Value != 1 {
		t.Errorf("row = %+v, want hora 18, precio 0, es_finde 1", row)
	}
}

func TestHandleSubmitFallsBackOnBadInput(t *testing.T) {
	m := &stubModel{names: models.CanonicalFeatures, value: 1}
	svc := newTestService(m, nil)

	raw := models.RawInputs{DemandLag1: "abc", Hour: "25", Temps: []models.RawValue{"", "x"}}
	if _, err := svc.HandleSubmit(context.Background(), raw); err != nil {
		t.Fatalf("HandleSubmit failed: %v", err)
	}

	got := m.rows[0].Map()
	if got["demanda_lag_1"] != 27000 {
		t.Errorf("demanda_lag_1 = %v, want default 27000", got["demanda_lag_1"])
	}
	if got["hora"] != 18 {
		t.Errorf("hora = %v, want default 18", got["hora"])
	}
	if got["Madrid_temperature_2m"] != 30 || got["Valencia_temperature_2m"] != 29 {
		t.Errorf("temperatures = %v/%v, want defaults 30/29", got["Madrid_temperature_2m"], got["Valencia_temperature_2m"])
	}
}

func TestHandleSubmitModelUnavailable(t *testing.T) {
	svc := newTestService(nil, testHistory())

	_, err := svc.HandleSubmit(context.Background(), endToEndInputs)
	if !errors.Is(err, models.ErrModelUnavailable) {
		t.Fatalf("error = %v, want ErrModelUnavailable", err)
	}
	if _, _, err := svc.Schema(); !errors.Is(err, models.ErrModelUnavailable) {
		t.Errorf("Schema() error = %v, want ErrModelUnavailable", err)
	}

	st := svc.Status()
	if st.ModelReady || st.ModelError == "" {
		t.Errorf("Status = %+v, want model not ready with error", st)
	}
	if !st.HistoryReady || st.HistoryRows != 1 {
		t.Errorf("Status = %+v, want history ready with 1 row", st)
	}
}

func TestHandleSubmitEmptySchema(t *testing.T) {
	svc := newTestService(&stubModel{value: 1}, nil)

	_, err := svc.HandleSubmit(context.Background(), endToEndInputs)
	if !errors.Is(err, models.ErrModelUnavailable) {
		t.Fatalf("error = %v, want ErrModelUnavailable", err)
	}
}

func TestHandleSubmitPredictError(t *testing.T) {
	boom := errors.New("boom")
	svc := newTestService(&stubModel{names: models.CanonicalFeatures, err: boom}, nil)

	_, err := svc.HandleSubmit(context.Background(), endToEndInputs)
	if !errors.Is(err, boom) {
		t.Fatalf("error = %v, want wrapped boom", err)
	}
}

func TestHandleSubmitWithoutHistory(t *testing.T) {
	svc := newTestService(&stubModel{names: models.CanonicalFeatures, value: 28000}, nil)

	result, err := svc.Submit(context.Background(), endToEndInputs)
	if err != nil {
		t.Fatalf("Submit failed: %v", err)
	}
	if result.HistoryAvailable {
		t.Error("HistoryAvailable = true without dataset")
	}
	if result.HistoryMessage != history.UnavailableMessage {
		t.Errorf("HistoryMessage = %q", result.HistoryMessage)
	}
	for _, c := range result.Comparisons {
		if c.Found || c.Message != history.UnavailableMessage {
			t.Errorf("comparison %+v, want unavailable", c)
		}
	}
	if result.Summary != nil {
		t.Errorf("Summary = %+v, want nil", result.Summary)
	}
}

func TestLookupSlot(t *testing.T) {
	svc := newTestService(nil, testHistory())

	c, err := svc.LookupSlot(2022, 1, 2, 18)
	if err != nil {
		t.Fatalf("LookupSlot failed: %v", err)
	}
	if c.Value != 30000 {
		t.Errorf("Value = %v, want 30000", c.Value)
	}

	if _, err := svc.LookupSlot(2022, 1, 3, 18); !errors.Is(err, ErrNoData) {
		t.Errorf("error = %v, want ErrNoData", err)
	}

	empty := newTestService(nil, nil)
	if _, err := empty.LookupSlot(2022, 1, 2, 18); !errors.Is(err, ErrHistoryUnavailable) {
		t.Errorf("error = %v, want ErrHistoryUnavailable", err)
	}
}
