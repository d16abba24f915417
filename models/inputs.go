package models

import (
	"bytes"
	"encoding/json"
)

// RawValue is a user-entered value before normalization. JSON clients may send
// it as a string or as a bare number; both keep their literal text.
type RawValue string

func (v *RawValue) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if bytes.Equal(b, []byte("null")) {
		*v = ""
		return nil
	}
	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*v = RawValue(s)
		return nil
	}
	*v = RawValue(b)
	return nil
}

// RawValues is a list of raw values. Anything other than a JSON array decodes
// as an empty list so the defaults apply.
type RawValues []RawValue

func (v *RawValues) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) == 0 || b[0] != '[' {
		*v = nil
		return nil
	}
	var out []RawValue
	if err := json.Unmarshal(b, &out); err != nil {
		return err
	}
	*v = out
	return nil
}

// RawInputs is one form submission. Temperatures may be given per region or
// positionally through Temps in Regions order; the per-region field wins.
type RawInputs struct {
	DemandLag1    RawValue  `form:"demanda_lag_1" json:"demanda_lag_1"`
	DemandLag24   RawValue  `form:"demanda_lag_24" json:"demanda_lag_24"`
	DemandLag168  RawValue  `form:"demanda_lag_168" json:"demanda_lag_168"`
	MovingAvg24h  RawValue  `form:"media_movil_24h" json:"media_movil_24h"`
	Hour          RawValue  `form:"hora" json:"hora"`
	Month         RawValue  `form:"mes" json:"mes"`
	Weekday       RawValue  `form:"dia_semana" json:"dia_semana"`
	TempMadrid    RawValue  `form:"Madrid_temperature_2m" json:"Madrid_temperature_2m"`
	TempValencia  RawValue  `form:"Valencia_temperature_2m" json:"Valencia_temperature_2m"`
	TempPaisVasco RawValue  `form:"Pais_Vasco_temperature_2m" json:"Pais_Vasco_temperature_2m"`
	TempCataluna  RawValue  `form:"Cataluna_temperature_2m" json:"Cataluna_temperature_2m"`
	TempAndalucia RawValue  `form:"Andalucia_temperature_2m" json:"Andalucia_temperature_2m"`
	Temps         RawValues `form:"temps" json:"temps"`
}

// Temperatures returns one raw value per entry of Regions.
func (r RawInputs) Temperatures() []RawValue {
	named := []RawValue{r.TempMadrid, r.TempValencia, r.TempPaisVasco, r.TempCataluna, r.TempAndalucia}
	out := make([]RawValue, len(Regions))
	for i := range Regions {
		switch {
		case named[i] != "":
			out[i] = named[i]
		case i < len(r.Temps):
			out[i] = r.Temps[i]
		}
	}
	return out
}

// InputDefaults are the example values substituted for unusable input.
type InputDefaults struct {
	DemandLag1   float64            `yaml:"demanda_lag_1" json:"demanda_lag_1"`
	DemandLag24  float64            `yaml:"demanda_lag_24" json:"demanda_lag_24"`
	DemandLag168 float64            `yaml:"demanda_lag_168" json:"demanda_lag_168"`
	MovingAvg24h float64            `yaml:"media_movil_24h" json:"media_movil_24h"`
	Hour         int                `yaml:"hora" json:"hora"`
	Month        int                `yaml:"mes" json:"mes"`
	Weekday      int                `yaml:"dia_semana" json:"dia_semana"`
	Temperatures map[string]float64 `yaml:"temperatures" json:"temperatures"`
}

func DefaultInputs() InputDefaults {
	return InputDefaults{
		DemandLag1:   27000,
		DemandLag24:  27000,
		DemandLag168: 27000,
		MovingAvg24h: 27000,
		Hour:         18,
		Month:        1,
		Weekday:      3,
		Temperatures: map[string]float64{
			"Madrid_temperature_2m":     30,
			"Valencia_temperature_2m":   29,
			"Pais_Vasco_temperature_2m": 22,
			"Cataluna_temperature_2m":   28,
			"Andalucia_temperature_2m":  33,
		},
	}
}

// Temperature returns the default for a region feature, 0 when unknown.
func (d InputDefaults) Temperature(feature string) float64 {
	return d.Temperatures[feature]
}
