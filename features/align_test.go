package features

import (
	"errors"
	"reflect"
	"testing"

	"demand-forecast-api/models"
)

func TestAlignPadsAndOrders(t *testing.T) {
	schema := models.Schema{"a", "b", "c"}
	got, err := Align(models.FeatureRecord{{Name: "b", Value: 5}}, schema)
	if err != nil {
		t.Fatalf("Align() error: %v", err)
	}
	want := models.FeatureRecord{{Name: "a", Value: 0}, {Name: "b", Value: 5}, {Name: "c", Value: 0}}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Align() = %v, want %v", got, want)
	}
}

func TestAlignDropsExtrasAndReorders(t *testing.T) {
	record := models.FeatureRecord{
		{Name: "z", Value: 9},
		{Name: "c", Value: 3},
		{Name: "a", Value: 1},
	}
	got, err := Align(record, models.Schema{"a", "c"})
	if err != nil {
		t.Fatalf("Align() error: %v", err)
	}
	want := models.FeatureRecord{{Name: "a", Value: 1}, {Name: "c", Value: 3}}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Align() = %v, want %v", got, want)
	}
}

func TestAlignLastDuplicateWins(t *testing.T) {
	record := models.FeatureRecord{{Name: "a", Value: 1}, {Name: "a", Value: 2}}
	got, _ := Align(record, models.Schema{"a"})
	if got[0].Value != 2 {
		t.Errorf("a = %v, want 2", got[0].Value)
	}
}

func TestAlignIdempotent(t *testing.T) {
	schema := models.Schema{"hora", "demanda_lag_1", "extra_col", "mes"}
	record := Normalize(models.RawInputs{DemandLag1: "31000"}, models.DefaultInputs())

	once, err := Align(record, schema)
	if err != nil {
		t.Fatalf("Align() error: %v", err)
	}
	twice, err := Align(once, schema)
	if err != nil {
		t.Fatalf("Align() error: %v", err)
	}
	if !reflect.DeepEqual(once, twice) {
		t.Errorf("Align is not idempotent: %v vs %v", once, twice)
	}
}

func TestAlignWithoutSchema(t *testing.T) {
	for _, schema := range []models.Schema{nil, {}} {
		_, err := Align(models.FeatureRecord{{Name: "a", Value: 1}}, schema)
		if !errors.Is(err, models.ErrModelUnavailable) {
			t.Errorf("Align(%v) error = %v, want ErrModelUnavailable", schema, err)
		}
	}
}

func TestMissingAndDropped(t *testing.T) {
	record := models.FeatureRecord{{Name: "a", Value: 1}, {Name: "x", Value: 2}}
	schema := models.Schema{"a", "b"}

	if got := Missing(record, schema); !reflect.DeepEqual(got, []string{"b"}) {
		t.Errorf("Missing() = %v, want [b]", got)
	}
	if got := Dropped(record, schema); !reflect.DeepEqual(got, []string{"x"}) {
		t.Errorf("Dropped() = %v, want [x]", got)
	}
}
