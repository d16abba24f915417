package history

import (
	"math"

	"demand-forecast-api/models"

	"gonum.org/v1/gonum/stat"
)

const (
	NoDataMessage      = "Sin datos para esta franja"
	UnavailableMessage = "Histórico no disponible"
)

// Compare looks up the same month, weekday and hour in each reference year.
// format renders a found value for display.
func (d *Dataset) Compare(month, weekday, hour int, years []int, format func(float64) string) []models.Comparison {
	out := make([]models.Comparison, 0, len(years))
	for _, year := range years {
		c := models.Comparison{Year: year}
		m, ok := d.Lookup(SlotKey{Year: year, Month: month, Weekday: weekday, Hour: hour})
		if !ok {
			c.Message = NoDataMessage
			out = append(out, c)
			continue
		}
		c.Found = true
		c.Value = m.Observation.DemandReal
		c.Fecha = m.Observation.Fecha
		c.Matches = m.Count
		c.Mean = m.Mean
		if format != nil {
			c.Formatted = format(c.Value)
		}
		out = append(out, c)
	}
	return out
}

// Summarize describes the found comparison values and how far the prediction
// sits from their mean. It returns nil when nothing was found.
func Summarize(prediction float64, comparisons []models.Comparison) *models.HistorySummary {
	var values []float64
	for _, c := range comparisons {
		if c.Found {
			values = append(values, c.Value)
		}
	}
	if len(values) == 0 {
		return nil
	}

	mean, std := stat.MeanStdDev(values, nil)
	if len(values) < 2 || math.IsNaN(std) {
		std = 0
	}
	s := &models.HistorySummary{
		Years:  len(values),
		Mean:   mean,
		StdDev: std,
	}
	if mean != 0 {
		s.DeltaPct = (prediction - mean) / mean * 100
	}
	return s
}
