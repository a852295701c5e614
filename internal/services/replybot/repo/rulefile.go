package repo

import (
	"context"
	"errors"
	"io/fs"
	"os"

	"shamewizard/internal/core/rules"
	perr "shamewizard/internal/platform/errors"
)

// RuleFile reads tracked rules from a JSON or YAML file on every Load,
// so edits on disk are picked up by the refresher
type RuleFile struct {
	path   string
	format rules.Format
}

// NewRuleFile returns a rule source for path; the format follows the extension
func NewRuleFile(path string) *RuleFile {
	return &RuleFile{path: path, format: rules.FormatFromPath(path)}
}

// Path returns the file path
func (r *RuleFile) Path() string { return r.path }

// Load reads, parses and validates the file
func (r *RuleFile) Load(_ context.Context) (*rules.Set, error) {
	b, err := os.ReadFile(r.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, perr.Wrapf(err, perr.ErrorCodeNotFound, "rule file %s not found", r.path)
		}
		return nil, perr.Wrapf(err, perr.ErrorCodeUnavailable, "read rule file %s", r.path)
	}
	set, err := rules.Load(b, r.format)
	if err != nil {
		return nil, perr.WithOp(err, r.path)
	}
	return set, nil
}
