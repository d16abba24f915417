package models

import "time"

// Comparison is the historical value for one reference year. Found is false
// when the dataset has no row for the slot, in which case Message explains it.
type Comparison struct {
	Year      int       `json:"year"`
	Found     bool      `json:"found"`
	Value     float64   `json:"value,omitempty"`
	Formatted string    `json:"formatted,omitempty"`
	Fecha     time.Time `json:"fecha,omitzero"`
	Matches   int       `json:"matches,omitempty"`
	Mean      float64   `json:"mean,omitempty"`
	Message   string    `json:"message,omitempty"`
}

type HistorySummary struct {
	Years    int     `json:"years"`
	Mean     float64 `json:"mean"`
	StdDev   float64 `json:"std_dev"`
	DeltaPct float64 `json:"delta_pct"`
}

type PredictionResult struct {
	ID               string          `json:"id"`
	CreatedAt        time.Time       `json:"created_at"`
	ModelVersion     string          `json:"model_version"`
	Inputs           FeatureRecord   `json:"inputs"`
	Weekend          bool            `json:"weekend"`
	Season           Season          `json:"season"`
	SeasonLabel      string          `json:"season_label"`
	Prediction       float64         `json:"prediction"`
	Formatted        string          `json:"formatted"`
	HistoryAvailable bool            `json:"history_available"`
	HistoryMessage   string          `json:"history_message,omitempty"`
	Comparisons      []Comparison    `json:"comparisons"`
	Summary          *HistorySummary `json:"summary,omitempty"`
}
