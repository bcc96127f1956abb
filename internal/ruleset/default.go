package ruleset

import (
	_ "embed"
	"fmt"
)

//go:embed default.yaml
var defaultYAML []byte

// DefaultSource returns the built-in kart rule base as YAML.
func DefaultSource() []byte {
	out := make([]byte, len(defaultYAML))
	copy(out, defaultYAML)
	return out
}

// Default parses the built-in kart rule base.
func Default() (*Document, error) {
	doc, err := Parse(defaultYAML, YAML)
	if err != nil {
		return nil, fmt.Errorf("default rule base: %w", err)
	}
	return doc, nil
}
