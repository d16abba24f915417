package features

import (
	"fmt"

	"demand-forecast-api/models"
)

// Align returns a record holding exactly the schema's features in schema
// order. Features missing from record are 0; extra ones are dropped.
func Align(record models.FeatureRecord, schema models.Schema) (models.FeatureRecord, error) {
	if len(schema) == 0 {
		return nil, fmt.Errorf("align features: %w", models.ErrModelUnavailable)
	}

	values := record.Map()
	aligned := make(models.FeatureRecord, len(schema))
	for i, name := range schema {
		aligned[i] = models.Feature{Name: name, Value: values[name]}
	}
	return aligned, nil
}

// Missing lists the schema features absent from record.
func Missing(record models.FeatureRecord, schema models.Schema) []string {
	values := record.Map()
	var missing []string
	for _, name := range schema {
		if _, ok := values[name]; !ok {
			missing = append(missing, name)
		}
	}
	return missing
}

// Dropped lists the record features the schema does not use.
func Dropped(record models.FeatureRecord, schema models.Schema) []string {
	want := make(map[string]struct{}, len(schema))
	for _, name := range schema {
		want[name] = struct{}{}
	}
	var dropped []string
	for _, f := range record {
		if _, ok := want[f.Name]; !ok {
			dropped = append(dropped, f.Name)
		}
	}
	return dropped
}
