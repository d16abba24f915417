package history

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"strconv"
	"strings"
	"time"

	"demand-forecast-api/models"

	"k8s.io/klog/v2"
)

// ErrNotFound marks a dataset source that does not exist.
var ErrNotFound = errors.New("historical dataset not found")

var dateLayouts = []string{
	"2006-01-02 15:04:05",
	"2006-01-02 15:04:05Z07:00",
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04",
	"2006-01-02",
	"02/01/2006 15:04",
	"02/01/2006 15:04:05",
}

func parseFecha(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized date %q", s)
}

// LoadCSV reads a dataset with at least the columns fecha and demanda_real.
// year, mes and hora are taken from their columns when present and parseable,
// otherwise derived from fecha. Unparseable rows are skipped.
func LoadCSV(path string) (*Dataset, error) {
	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%s: %w", path, ErrNotFound)
		}
		return nil, fmt.Errorf("open historical dataset: %w", err)
	}
	defer f.Close()

	rows, skipped, err := readCSV(f)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	if skipped > 0 {
		klog.InfoS("Skipped unparseable historical rows", "path", path, "skipped", skipped)
	}
	return NewDataset(path, rows), nil
}

func readCSV(r io.Reader) ([]models.HistoricalObservation, int, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err != nil {
		return nil, 0, fmt.Errorf("read header: %w", err)
	}
	cols := make(map[string]int, len(header))
	for i, name := range header {
		cols[strings.TrimSpace(strings.TrimPrefix(name, "\ufeff"))] = i
	}
	for _, required := range []string{"fecha", "demanda_real"} {
		if _, ok := cols[required]; !ok {
			return nil, 0, fmt.Errorf("missing column %q", required)
		}
	}

	field := func(rec []string, name string) (string, bool) {
		i, ok := cols[name]
		if !ok || i >= len(rec) {
			return "", false
		}
		return strings.TrimSpace(rec[i]), true
	}
	intField := func(rec []string, name string, fallback int) int {
		s, ok := field(rec, name)
		if !ok {
			return fallback
		}
		v, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return fallback
		}
		return int(v)
	}

	var rows []models.HistoricalObservation
	skipped := 0
	for {
		rec, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, 0, err
		}

		fs, _ := field(rec, "fecha")
		fecha, err := parseFecha(fs)
		if err != nil {
			skipped++
			continue
		}
		ds, _ := field(rec, "demanda_real")
		demand, err := strconv.ParseFloat(ds, 64)
		if err != nil || math.IsNaN(demand) {
			skipped++
			continue
		}

		rows = append(rows, models.HistoricalObservation{
			Fecha:      fecha,
			Year:       intField(rec, "year", fecha.Year()),
			Month:      intField(rec, "mes", int(fecha.Month())),
			Hour:       intField(rec, "hora", fecha.Hour()),
			DemandReal: demand,
		})
	}
	return rows, skipped, nil
}
