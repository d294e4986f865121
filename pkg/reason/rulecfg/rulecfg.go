// Package rulecfg loads and saves rule files. A rule file is an
// ordered collection of records with required fields id, pattern,
// consequent and bias; pattern and consequent use the parenthesized
// token grammar, e.g. "(is ?x car)". JSON and YAML encodings are
// supported, chosen by file extension.
package rulecfg

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/cognicore/reason/pkg/reason/internalerr"
	"github.com/cognicore/reason/pkg/reason/match"
	"github.com/cognicore/reason/pkg/reason/pattern"
)

// record mirrors one persisted rule. Pointer fields distinguish a
// missing field from a zero value.
type record struct {
	ID         *int     `json:"id" yaml:"id"`
	Pattern    *string  `json:"pattern" yaml:"pattern"`
	Consequent *string  `json:"consequent" yaml:"consequent"`
	Bias       *float64 `json:"bias" yaml:"bias"`
}

// Load reads rules from path. The format is chosen by extension:
// .json, or .yaml/.yml. Failures are descriptive: an unreadable file,
// a root that is not a collection, and a record missing a required
// field all name the problem rather than defaulting silently.
func Load(path string) ([]pattern.Rule, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("load rules: %w", err)
	}

	var records []record
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".json":
		records, err = decodeJSON(data)
	case ".yaml", ".yml":
		records, err = decodeYAML(data)
	default:
		return nil, fmt.Errorf("load rules %s: unsupported extension %q: %w", path, ext, internalerr.ErrInvalidConfig)
	}
	if err != nil {
		return nil, fmt.Errorf("load rules %s: %w", path, err)
	}

	rules := make([]pattern.Rule, 0, len(records))
	for i, rec := range records {
		rule, err := rec.toRule()
		if err != nil {
			return nil, fmt.Errorf("load rules %s: record %d: %w", path, i, err)
		}
		rules = append(rules, rule)
	}
	return rules, nil
}

// Save renders rules back into the record format and writes them to
// path, encoded by extension as in Load.
func Save(rules []pattern.Rule, path string) error {
	records := make([]record, len(rules))
	for i, rule := range rules {
		id := rule.ID
		pat := rule.Pattern.String()
		cons := rule.Consequent.String()
		bias := rule.Bias
		records[i] = record{ID: &id, Pattern: &pat, Consequent: &cons, Bias: &bias}
	}

	var (
		data []byte
		err  error
	)
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".json":
		data, err = json.MarshalIndent(records, "", "  ")
	case ".yaml", ".yml":
		data, err = yaml.Marshal(records)
	default:
		return fmt.Errorf("save rules %s: unsupported extension %q: %w", path, ext, internalerr.ErrInvalidConfig)
	}
	if err != nil {
		return fmt.Errorf("save rules %s: %w", path, err)
	}
	if data[len(data)-1] != '\n' {
		data = append(data, '\n')
	}

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("save rules: %w", err)
	}
	return nil
}

func decodeJSON(data []byte) ([]record, error) {
	var records []record
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, fmt.Errorf("root must be a list of rule records: %w", err)
	}
	return records, nil
}

func decodeYAML(data []byte) ([]record, error) {
	var records []record
	if err := yaml.Unmarshal(data, &records); err != nil {
		return nil, fmt.Errorf("root must be a list of rule records: %w", err)
	}
	return records, nil
}

func (r record) toRule() (pattern.Rule, error) {
	switch {
	case r.ID == nil:
		return pattern.Rule{}, fmt.Errorf("missing field %q: %w", "id", internalerr.ErrInvalidConfig)
	case r.Pattern == nil:
		return pattern.Rule{}, fmt.Errorf("missing field %q: %w", "pattern", internalerr.ErrInvalidConfig)
	case r.Consequent == nil:
		return pattern.Rule{}, fmt.Errorf("missing field %q: %w", "consequent", internalerr.ErrInvalidConfig)
	case r.Bias == nil:
		return pattern.Rule{}, fmt.Errorf("missing field %q: %w", "bias", internalerr.ErrInvalidConfig)
	}

	pat, err := pattern.Parse(*r.Pattern)
	if err != nil {
		return pattern.Rule{}, fmt.Errorf("pattern: %w", err)
	}
	cons, err := pattern.Parse(*r.Consequent)
	if err != nil {
		return pattern.Rule{}, fmt.Errorf("consequent: %w", err)
	}
	if !match.Validate(pat) || !match.Validate(cons) {
		return pattern.Rule{}, fmt.Errorf("empty predicate or argument: %w", internalerr.ErrInvalidRule)
	}

	return pattern.NewRule(*r.ID, pat, cons, *r.Bias), nil
}
