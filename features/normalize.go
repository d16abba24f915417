// Package features turns raw form input into the feature row a demand model
// consumes: tolerant number parsing, calendar-derived flags and alignment of
// the row against the model's expected columns.
package features

import (
	"math"
	"strconv"
	"strings"

	"demand-forecast-api/models"
)

// Thousands separators accepted on input. The decimal point is always '.'.
var separators = strings.NewReplacer(
	",", "",
	"_", "",
	" ", "",
	"\u00a0", "",
	"\u202f", "",
)

// ParseNumber parses free text as a float. Empty, non-numeric, hexadecimal,
// NaN and infinite input yield fallback; it never fails.
func ParseNumber(s string, fallback float64) float64 {
	cleaned := separators.Replace(strings.TrimSpace(s))
	if cleaned == "" || isHex(cleaned) {
		return fallback
	}
	v, err := strconv.ParseFloat(cleaned, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return fallback
	}
	return v
}

func isHex(s string) bool {
	s = strings.TrimLeft(s, "+-")
	return len(s) > 1 && s[0] == '0' && (s[1] == 'x' || s[1] == 'X')
}

// ParseInt parses an integral value within [min, max]. Fractions and values
// out of range yield fallback.
func ParseInt(s string, fallback, min, max int) int {
	v := ParseNumber(s, math.NaN())
	if math.IsNaN(v) || v != math.Trunc(v) || v < float64(min) || v > float64(max) {
		return fallback
	}
	return int(v)
}

func parseDemand(v models.RawValue, fallback float64) float64 {
	d := ParseNumber(string(v), fallback)
	if d < 0 {
		return fallback
	}
	return d
}

// Normalize builds the canonical feature record for one submission.
func Normalize(raw models.RawInputs, d models.InputDefaults) models.FeatureRecord {
	hour := ParseInt(string(raw.Hour), d.Hour, 0, 23)
	month := ParseInt(string(raw.Month), d.Month, 1, 12)
	weekday := ParseInt(string(raw.Weekday), d.Weekday, 1, 7)

	record := models.FeatureRecord{
		{Name: models.FeatureDemandLag1, Value: parseDemand(raw.DemandLag1, d.DemandLag1)},
		{Name: models.FeatureDemandLag24, Value: parseDemand(raw.DemandLag24, d.DemandLag24)},
		{Name: models.FeatureDemandLag168, Value: parseDemand(raw.DemandLag168, d.DemandLag168)},
		{Name: models.FeatureMovingAvg24h, Value: parseDemand(raw.MovingAvg24h, d.MovingAvg24h)},
		{Name: models.FeatureHour, Value: float64(hour)},
		{Name: models.FeatureMonth, Value: float64(month)},
		{Name: models.FeatureWeekend, Value: float64(IsWeekend(weekday))},
		{Name: models.FeatureWeekday, Value: float64(weekday)},
	}

	temps := raw.Temperatures()
	for i, region := range models.Regions {
		record = append(record, models.Feature{
			Name:  region.Feature,
			Value: ParseNumber(string(temps[i]), d.Temperature(region.Feature)),
		})
	}

	return record
}
