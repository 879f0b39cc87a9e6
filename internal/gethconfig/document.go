package gethconfig

import (
	"fmt"

	"gopkg.in/yaml.v3"
)

// ParseDocument parses a YAML or JSON document that must hold a single
// mapping. Parse failures and non-mapping documents are ErrStructural.
func ParseDocument(stage string, data []byte) (map[string]any, error) {
	var doc any
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, structural(stage, "", fmt.Errorf("parsing document: %w", err))
	}
	if doc == nil {
		return map[string]any{}, nil
	}
	return AsMapping(stage, doc)
}
