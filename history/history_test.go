package history

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"demand-forecast-api/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const fixtureCSV = `fecha,year,mes,hora,demanda_real
2022-06-22 18:00:00,2022,6,18,31500
2022-06-15 18:00:00,2022,6,18,30500
2022-06-15 19:00:00,2022,6,19,31000
2024-01-09 18:00:00,2024,1,18,29000
not-a-date,2024,1,18,1
2024-01-10 18:00:00,2024,1,18,nan
`

func writeCSV(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "dataset_consulta.csv")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestISOWeekday(t *testing.T) {
	monday := time.Date(2024, 1, 8, 0, 0, 0, 0, time.UTC)
	for i := 0; i < 7; i++ {
		assert.Equal(t, i+1, ISOWeekday(monday.AddDate(0, 0, i)))
	}
}

func TestLoadCSV(t *testing.T) {
	d, err := LoadCSV(writeCSV(t, fixtureCSV))
	require.NoError(t, err)

	assert.Equal(t, 4, d.Len())
	assert.Equal(t, []int{2022, 2024}, d.Years())
}

func TestLookupExactMatch(t *testing.T) {
	d, err := LoadCSV(writeCSV(t, fixtureCSV))
	require.NoError(t, err)

	m, ok := d.Lookup(SlotKey{Year: 2022, Month: 6, Weekday: 3, Hour: 18})
	require.True(t, ok)
	assert.Equal(t, 30500.0, m.Observation.DemandReal, "earliest row is reported")
	assert.Equal(t, 2, m.Count)
	assert.Equal(t, 31000.0, m.Mean)
	assert.Equal(t, 3, m.Observation.Weekday)

	_, ok = d.Lookup(SlotKey{Year: 2023, Month: 6, Weekday: 3, Hour: 18})
	assert.False(t, ok)

	_, ok = d.Lookup(SlotKey{Year: 2022, Month: 6, Weekday: 4, Hour: 18})
	assert.False(t, ok, "no nearest-neighbour fallback")
}

func TestLookupSingleRow(t *testing.T) {
	d := NewDataset("memory", []models.HistoricalObservation{{
		Fecha:      time.Date(2022, 6, 15, 18, 0, 0, 0, time.UTC),
		Year:       2022,
		Month:      6,
		Hour:       18,
		DemandReal: 30500,
	}})

	m, ok := d.Lookup(SlotKey{Year: 2022, Month: 6, Weekday: 3, Hour: 18})
	require.True(t, ok)
	assert.Equal(t, 30500.0, m.Observation.DemandReal)
}

func TestLoadCSVDerivesMissingColumns(t *testing.T) {
	d, err := LoadCSV(writeCSV(t, "fecha,demanda_real\n2023-03-05T08:00:00Z,25000\n"))
	require.NoError(t, err)

	m, ok := d.Lookup(SlotKey{Year: 2023, Month: 3, Weekday: 7, Hour: 8})
	require.True(t, ok)
	assert.Equal(t, 25000.0, m.Observation.DemandReal)
}

func TestLoadCSVErrors(t *testing.T) {
	_, err := LoadCSV(filepath.Join(t.TempDir(), "missing.csv"))
	assert.True(t, errors.Is(err, ErrNotFound))

	_, err = LoadCSV(writeCSV(t, "fecha,valor\n2023-01-01,1\n"))
	assert.Error(t, err)

	_, err = LoadCSV(writeCSV(t, ""))
	assert.Error(t, err)
}

func TestCompare(t *testing.T) {
	d, err := LoadCSV(writeCSV(t, fixtureCSV))
	require.NoError(t, err)

	format := func(v float64) string { return strings.Repeat("#", int(v/10000)) }
	got := d.Compare(6, 3, 18, []int{2022, 2023}, format)
	require.Len(t, got, 2)

	assert.True(t, got[0].Found)
	assert.Equal(t, 2022, got[0].Year)
	assert.Equal(t, 30500.0, got[0].Value)
	assert.Equal(t, "###", got[0].Formatted)
	assert.Equal(t, 2, got[0].Matches)

	assert.False(t, got[1].Found)
	assert.Equal(t, 2023, got[1].Year)
	assert.Equal(t, NoDataMessage, got[1].Message)
}

func TestSummarize(t *testing.T) {
	assert.Nil(t, Summarize(100, []models.Comparison{{Year: 2022}}))

	one := Summarize(33000, []models.Comparison{{Found: true, Value: 30000}, {Year: 2023}})
	require.NotNil(t, one)
	assert.Equal(t, 1, one.Years)
	assert.Equal(t, 30000.0, one.Mean)
	assert.Equal(t, 0.0, one.StdDev)
	assert.InDelta(t, 10.0, one.DeltaPct, 1e-9)

	two := Summarize(30000, []models.Comparison{{Found: true, Value: 29000}, {Found: true, Value: 31000}})
	require.NotNil(t, two)
	assert.Equal(t, 30000.0, two.Mean)
	assert.InDelta(t, 1414.2135, two.StdDev, 1e-3)
	assert.Equal(t, 0.0, two.DeltaPct)
}

func TestPage(t *testing.T) {
	d, err := LoadCSV(writeCSV(t, fixtureCSV))
	require.NoError(t, err)

	rows, next := d.Page(0, nil, 2)
	require.Len(t, rows, 2)
	require.NotNil(t, next)
	assert.Equal(t, 29000.0, rows[0].DemandReal, "newest first")
	assert.Equal(t, 31500.0, rows[1].DemandReal)

	rows, next = d.Page(0, next, 2)
	require.Len(t, rows, 2)
	assert.Nil(t, next)
	assert.Equal(t, 31000.0, rows[0].DemandReal)
	assert.Equal(t, 30500.0, rows[1].DemandReal)

	rows, next = d.Page(2024, nil, 10)
	require.Len(t, rows, 1)
	assert.Nil(t, next)

	before, err := ParseCursor("2022-06-22T18:00:00Z")
	require.NoError(t, err)
	rows, _ = d.Page(0, &before, 10)
	require.Len(t, rows, 2, "a bare time excludes rows at that time")
	assert.Equal(t, 31000.0, rows[0].DemandReal)
}

func TestPageSharedTimestamp(t *testing.T) {
	at := time.Date(2023, 5, 1, 10, 0, 0, 0, time.UTC)
	d := NewDataset("memory", []models.HistoricalObservation{
		{Fecha: at.Add(time.Hour), Year: 2023, Month: 5, Hour: 11, DemandReal: 4},
		{Fecha: at, Year: 2023, Month: 5, Hour: 10, DemandReal: 1},
		{Fecha: at, Year: 2023, Month: 5, Hour: 10, DemandReal: 2},
		{Fecha: at, Year: 2023, Month: 5, Hour: 10, DemandReal: 3},
		{Fecha: at.Add(-time.Hour), Year: 2023, Month: 5, Hour: 9, DemandReal: 0},
	})

	var seen []float64
	var cursor *Cursor
	for pages := 0; pages < 10; pages++ {
		rows, next := d.Page(0, cursor, 2)
		for _, r := range rows {
			seen = append(seen, r.DemandReal)
		}
		if next == nil {
			break
		}
		parsed, err := ParseCursor(next.String())
		require.NoError(t, err)
		assert.True(t, next.Before.Equal(parsed.Before))
		assert.Equal(t, next.Skip, parsed.Skip)
		cursor = &parsed
	}

	assert.ElementsMatch(t, []float64{0, 1, 2, 3, 4}, seen)
	assert.Len(t, seen, 5, "no row repeated or skipped")
}

func TestParseCursorRejects(t *testing.T) {
	for _, in := range []string{"", "yesterday", "2023-05-01T10:00:00Z,x", "2023-05-01T10:00:00Z,-2"} {
		_, err := ParseCursor(in)
		assert.Error(t, err, in)
	}
}
