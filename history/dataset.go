// Package history holds the observed demand used to put a prediction in
// context. The dataset is loaded once and only read afterwards.
package history

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"demand-forecast-api/models"

	"gonum.org/v1/gonum/stat"
)

// SlotKey identifies an hour of a given weekday within a month of a year.
type SlotKey struct {
	Year    int `json:"year"`
	Month   int `json:"mes"`
	Weekday int `json:"dia_semana"`
	Hour    int `json:"hora"`
}

// Match is the result of an exact slot lookup. Observation is the earliest
// matching row; Count and Mean cover every row in the slot.
type Match struct {
	Observation models.HistoricalObservation `json:"observation"`
	Count       int                          `json:"count"`
	Mean        float64                      `json:"mean"`
}

type Dataset struct {
	source string
	rows   []models.HistoricalObservation
	index  map[SlotKey][]int
	years  []int
}

// ISOWeekday numbers days 1 = Monday … 7 = Sunday.
func ISOWeekday(t time.Time) int {
	wd := int(t.Weekday())
	if wd == 0 {
		return 7
	}
	return wd
}

// NewDataset indexes rows by slot. Rows are sorted by date; Weekday is always
// recomputed from Fecha.
func NewDataset(source string, rows []models.HistoricalObservation) *Dataset {
	sorted := make([]models.HistoricalObservation, len(rows))
	copy(sorted, rows)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Fecha.Before(sorted[j].Fecha) })

	d := &Dataset{
		source: source,
		rows:   sorted,
		index:  make(map[SlotKey][]int),
	}
	seenYears := make(map[int]struct{})
	for i := range d.rows {
		r := &d.rows[i]
		r.Weekday = ISOWeekday(r.Fecha)
		key := SlotKey{Year: r.Year, Month: r.Month, Weekday: r.Weekday, Hour: r.Hour}
		d.index[key] = append(d.index[key], i)
		if _, ok := seenYears[r.Year]; !ok {
			seenYears[r.Year] = struct{}{}
			d.years = append(d.years, r.Year)
		}
	}
	sort.Ints(d.years)
	return d
}

// Lookup is an exact equality filter on all four slot fields.
func (d *Dataset) Lookup(key SlotKey) (Match, bool) {
	idx := d.index[key]
	if len(idx) == 0 {
		return Match{}, false
	}
	values := make([]float64, len(idx))
	for i, j := range idx {
		values[i] = d.rows[j].DemandReal
	}
	return Match{
		Observation: d.rows[idx[0]],
		Count:       len(idx),
		Mean:        stat.Mean(values, nil),
	}, true
}

func (d *Dataset) Len() int { return len(d.rows) }

func (d *Dataset) Source() string { return d.source }

// Years lists the distinct years present, ascending.
func (d *Dataset) Years() []int {
	out := make([]int, len(d.years))
	copy(out, d.years)
	return out
}

// Cursor marks where a page of observations ended. Skip counts the rows at
// Before already returned; a negative Skip excludes every row at Before.
type Cursor struct {
	Before time.Time
	Skip   int
}

func (c Cursor) String() string {
	return c.Before.Format(time.RFC3339Nano) + "," + strconv.Itoa(c.Skip)
}

// ParseCursor reads "<RFC 3339 time>[,<skip>]". A bare time pages strictly
// before it.
func ParseCursor(s string) (Cursor, error) {
	ts, skip, hasSkip := strings.Cut(s, ",")
	t, err := time.Parse(time.RFC3339Nano, ts)
	if err != nil {
		return Cursor{}, fmt.Errorf("invalid cursor time %q: %w", ts, err)
	}
	c := Cursor{Before: t, Skip: -1}
	if hasSkip {
		n, err := strconv.Atoi(skip)
		if err != nil || n < 0 {
			return Cursor{}, fmt.Errorf("invalid cursor offset %q", skip)
		}
		c.Skip = n
	}
	return c, nil
}

// Page returns up to limit observations newest first, starting after cursor
// (from the newest row when nil), optionally restricted to one year. next is
// nil when no rows remain.
func (d *Dataset) Page(year int, cursor *Cursor, limit int) (rows []models.HistoricalObservation, next *Cursor) {
	if limit <= 0 {
		return nil, nil
	}
	end, skip := len(d.rows), 0
	if cursor != nil {
		if cursor.Skip < 0 {
			end = sort.Search(len(d.rows), func(i int) bool { return !d.rows[i].Fecha.Before(cursor.Before) })
		} else {
			end = sort.Search(len(d.rows), func(i int) bool { return d.rows[i].Fecha.After(cursor.Before) })
			skip = cursor.Skip
		}
	}

	for i := end - 1; i >= 0; i-- {
		r := d.rows[i]
		if year != 0 && r.Year != year {
			continue
		}
		if skip > 0 && r.Fecha.Equal(cursor.Before) {
			skip--
			continue
		}
		if len(rows) == limit {
			return rows, nextCursor(rows, cursor)
		}
		rows = append(rows, r)
	}
	return rows, nil
}

func nextCursor(rows []models.HistoricalObservation, prev *Cursor) *Cursor {
	last := rows[len(rows)-1].Fecha
	seen := 0
	for _, r := range rows {
		if r.Fecha.Equal(last) {
			seen++
		}
	}
	if prev != nil && prev.Skip > 0 && prev.Before.Equal(last) {
		seen += prev.Skip
	}
	return &Cursor{Before: last, Skip: seen}
}
