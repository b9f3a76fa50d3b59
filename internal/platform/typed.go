package platform

import (
	"encoding/json"
	"fmt"

	"github.com/aretw0/strata/pkg/core"
	"github.com/aretw0/strata/pkg/strata"
)

// DecodeLabels reads a note's labels into a typed struct.
// T should be a struct of string fields; json tags select which label
// each field maps to. Labels without a matching field are ignored, and
// fields without a matching label stay zero.
func DecodeLabels[T any](n *strata.Note) (T, error) {
	var out T

	values := make(map[string]string)
	for _, a := range n.Attributes() {
		if a.AttributeType() == core.AttributeLabel {
			values[a.Name()] = a.Value()
		}
	}

	data, err := json.Marshal(values)
	if err != nil {
		return out, fmt.Errorf("failed to process note labels: %w", err)
	}
	if err := json.Unmarshal(data, &out); err != nil {
		return out, fmt.Errorf("failed to unmarshal labels into type %T: %w", new(T), err)
	}
	return out, nil
}

// ApplyLabels writes a typed struct onto a note's labels.
// Existing labels with matching names are updated in place; missing
// ones are created. Labels the struct does not mention are left alone.
func ApplyLabels[T any](n *strata.Note, v T) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("failed to marshal typed labels: %w", err)
	}

	var values map[string]string
	if err := json.Unmarshal(data, &values); err != nil {
		return fmt.Errorf("type %T does not flatten to string labels: %w", new(T), err)
	}

	existing := make(map[string]*strata.Attribute)
	for _, a := range n.Attributes() {
		if a.AttributeType() == core.AttributeLabel {
			existing[a.Name()] = a
		}
	}

	for name, value := range values {
		if a, ok := existing[name]; ok {
			if a.Value() != value {
				a.SetValue(value)
			}
			continue
		}
		n.NewLabel(name, value)
	}
	return nil
}
