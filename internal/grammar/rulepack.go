package grammar

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"
)

// RulePack is a YAML file of extra rules appended after the built-in catalog:
//
//	name: school-slang
//	rules:
//	  - id: slang-lemme
//	    trigger: '\blemme\b'
//	    correction: let me
//	    category: Informal Language
//	    severity: low
//	    band: intermediate
type RulePack struct {
	Name  string `yaml:"name"`
	Rules []Rule `yaml:"rules"`
}

// ParseRulePack decodes a rule pack. Unknown fields are rejected.
func ParseRulePack(data []byte) (*RulePack, error) {
	var pack RulePack
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&pack); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("failed to parse rule pack: %w", err)
	}
	for i, r := range pack.Rules {
		if r.Band == "" {
			continue
		}
		band, err := ParseBand(string(r.Band))
		if err != nil {
			return nil, fmt.Errorf("%w: rule %d of pack %q: %v", ErrInvalidRule, i+1, pack.Name, err)
		}
		pack.Rules[i].Band = band
	}
	return &pack, nil
}

// LoadRulePack reads a rule pack from disk
func LoadRulePack(path string) (*RulePack, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read rule pack %s: %w", path, err)
	}
	pack, err := ParseRulePack(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	if pack.Name == "" {
		pack.Name = path
	}
	return pack, nil
}

// LoadCatalog extends base with the rule packs at paths, in order
func LoadCatalog(base *Catalog, paths ...string) (*Catalog, error) {
	if base == nil {
		base = DefaultCatalog()
	}
	catalog := base
	for _, path := range paths {
		pack, err := LoadRulePack(path)
		if err != nil {
			return nil, err
		}
		catalog, err = catalog.Extend(pack.Rules)
		if err != nil {
			return nil, fmt.Errorf("rule pack %s: %w", pack.Name, err)
		}
	}
	return catalog, nil
}
