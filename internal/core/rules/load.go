package rules

import (
	"bytes"
	"encoding/json"
	"fmt"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	perr "shamewizard/internal/platform/errors"
	"shamewizard/internal/platform/validate"
)

// Format is the encoding of a rule file
type Format string

const (
	// FormatJSON is a JSON array of rules (the default)
	FormatJSON Format = "json"
	// FormatYAML is a YAML sequence of rules
	FormatYAML Format = "yaml"
)

// FormatFromPath picks the format by file extension; unknown extensions are JSON
func FormatFromPath(path string) Format {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return FormatYAML
	default:
		return FormatJSON
	}
}

// Parse decodes and validates a rule document
func Parse(data []byte, f Format) ([]TrackedRule, error) {
	var out []TrackedRule
	switch f {
	case FormatYAML:
		if err := yaml.Unmarshal(data, &out); err != nil {
			return nil, perr.Wrap(err, perr.ErrorCodeJSON, "rules: parse yaml")
		}
	default:
		if err := json.Unmarshal(bytes.TrimSpace(data), &out); err != nil {
			return nil, perr.Wrap(err, perr.ErrorCodeJSON, "rules: parse json")
		}
	}
	if err := Validate(out); err != nil {
		return nil, err
	}
	return out, nil
}

// Load parses data and builds a Set
func Load(data []byte, f Format) (*Set, error) {
	rs, err := Parse(data, f)
	if err != nil {
		return nil, err
	}
	return NewSet(rs), nil
}

// Validate checks every rule, reporting the first failure with its index
func Validate(rs []TrackedRule) error {
	for i := range rs {
		if err := validate.Struct(rs[i]); err != nil {
			field := fmt.Sprintf("[%d]", i)
			if e, ok := perr.As(err); ok && e.Field() != "" {
				field += "." + e.Field()
			}
			return perr.WithField(perr.Wrapf(err, perr.ErrorCodeValidation, "rules: rule %d invalid", i), field)
		}
	}
	return nil
}
