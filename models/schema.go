package models

import (
	"errors"
	"fmt"
)

// ErrModelUnavailable is returned whenever a prediction cannot run because the
// model artifact, and with it the expected schema, was not loaded.
var ErrModelUnavailable = errors.New("model unavailable")

// Schema is the ordered list of feature names a model expects.
type Schema []string

func (s Schema) Validate() error {
	if len(s) == 0 {
		return errors.New("schema has no features")
	}
	seen := make(map[string]struct{}, len(s))
	for _, name := range s {
		if name == "" {
			return errors.New("schema contains an empty feature name")
		}
		if _, ok := seen[name]; ok {
			return fmt.Errorf("schema lists feature %q more than once", name)
		}
		seen[name] = struct{}{}
	}
	return nil
}

func (s Schema) Index(name string) int {
	for i, n := range s {
		if n == name {
			return i
		}
	}
	return -1
}
