package render

import (
	"encoding/json"
	"fmt"

	"gopkg.in/yaml.v3"
)

type jsonRenderer struct{}

func (r *jsonRenderer) Render(kind Kind, data any) ([]byte, error) {
	out, err := json.MarshalIndent(payload(kind, data), "", "  ")
	if err != nil {
		return nil, fmt.Errorf("rendering %s as json: %w", kind, err)
	}
	return append(out, '\n'), nil
}

type yamlRenderer struct{}

func (r *yamlRenderer) Render(kind Kind, data any) ([]byte, error) {
	out, err := yaml.Marshal(payload(kind, data))
	if err != nil {
		return nil, fmt.Errorf("rendering %s as yaml: %w", kind, err)
	}
	return out, nil
}
