package models

import "math"

const (
	FeatureDemandLag1   = "demanda_lag_1"
	FeatureDemandLag24  = "demanda_lag_24"
	FeatureDemandLag168 = "demanda_lag_168"
	FeatureMovingAvg24h = "media_movil_24h"
	FeatureHour         = "hora"
	FeatureMonth        = "mes"
	FeatureWeekend      = "es_finde"
	FeatureWeekday      = "dia_semana"
)

// Region is a temperature input. Feature is the model column name, Label is
// what the form shows.
type Region struct {
	Feature string `json:"feature"`
	Label   string `json:"label"`
}

var Regions = []Region{
	{Feature: "Madrid_temperature_2m", Label: "Madrid"},
	{Feature: "Valencia_temperature_2m", Label: "Valencia"},
	{Feature: "Pais_Vasco_temperature_2m", Label: "País Vasco"},
	{Feature: "Cataluna_temperature_2m", Label: "Cataluña"},
	{Feature: "Andalucia_temperature_2m", Label: "Andalucía"},
}

// CanonicalFeatures is the order in which the form assembles a record.
var CanonicalFeatures = Schema{
	FeatureDemandLag1,
	FeatureDemandLag24,
	FeatureDemandLag168,
	FeatureMovingAvg24h,
	FeatureHour,
	FeatureMonth,
	FeatureWeekend,
	FeatureWeekday,
	Regions[0].Feature,
	Regions[1].Feature,
	Regions[2].Feature,
	Regions[3].Feature,
	Regions[4].Feature,
}

type Feature struct {
	Name  string  `json:"name"`
	Value float64 `json:"value"`
}

// FeatureRecord is an ordered feature row. When a name appears more than once
// the last occurrence wins.
type FeatureRecord []Feature

func (r FeatureRecord) Get(name string) (float64, bool) {
	for i := len(r) - 1; i >= 0; i-- {
		if r[i].Name == name {
			return r[i].Value, true
		}
	}
	return 0, false
}

// Int returns the named value rounded to the nearest integer, or 0 when absent.
func (r FeatureRecord) Int(name string) int {
	v, _ := r.Get(name)
	return int(math.Round(v))
}

func (r FeatureRecord) Names() []string {
	names := make([]string, len(r))
	for i, f := range r {
		names[i] = f.Name
	}
	return names
}

func (r FeatureRecord) Values() []float64 {
	values := make([]float64, len(r))
	for i, f := range r {
		values[i] = f.Value
	}
	return values
}

func (r FeatureRecord) Map() map[string]float64 {
	m := make(map[string]float64, len(r))
	for _, f := range r {
		m[f.Name] = f.Value
	}
	return m
}
