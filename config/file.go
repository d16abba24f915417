package config

import (
	"os"

	"gopkg.in/yaml.v2"
)

// fileConfig is the optional YAML overlay. Only the keys present in the file
// replace values loaded from the environment.
//
//	reference_years: [2022, 2023, 2024]
//	feature_names: [demanda_lag_1, demanda_lag_24, ...]
//	defaults:
//	  demanda_lag_1: 27000
//	  hora: 18
//	  temperatures:
//	    Madrid_temperature_2m: 30
type fileConfig struct {
	ReferenceYears []int         `yaml:"reference_years"`
	FeatureNames   []string      `yaml:"feature_names"`
	Defaults       *fileDefaults `yaml:"defaults"`
}

type fileDefaults struct {
	DemandLag1   *float64           `yaml:"demanda_lag_1"`
	DemandLag24  *float64           `yaml:"demanda_lag_24"`
	DemandLag168 *float64           `yaml:"demanda_lag_168"`
	MovingAvg24h *float64           `yaml:"media_movil_24h"`
	Hour         *int               `yaml:"hora"`
	Month        *int               `yaml:"mes"`
	Weekday      *int               `yaml:"dia_semana"`
	Temperatures map[string]float64 `yaml:"temperatures"`
}

func loadFile(cfg *Config, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}

	var fc fileConfig
	if err := yaml.UnmarshalStrict(data, &fc); err != nil {
		return err
	}

	if len(fc.ReferenceYears) > 0 {
		cfg.History.ReferenceYears = fc.ReferenceYears
	}
	if len(fc.FeatureNames) > 0 {
		cfg.Model.FeatureNames = fc.FeatureNames
	}
	if d := fc.Defaults; d != nil {
		in := &cfg.Inputs
		setFloat(&in.DemandLag1, d.DemandLag1)
		setFloat(&in.DemandLag24, d.DemandLag24)
		setFloat(&in.DemandLag168, d.DemandLag168)
		setFloat(&in.MovingAvg24h, d.MovingAvg24h)
		setInt(&in.Hour, d.Hour)
		setInt(&in.Month, d.Month)
		setInt(&in.Weekday, d.Weekday)
		for k, v := range d.Temperatures {
			in.Temperatures[k] = v
		}
	}
	return nil
}

func setFloat(dst *float64, v *float64) {
	if v != nil {
		*dst = *v
	}
}

func setInt(dst *int, v *int) {
	if v != nil {
		*dst = *v
	}
}
