package resolve

import (
	"os"

	"github.com/rotisserie/eris"
	"gopkg.in/yaml.v3"
)

// overrideFile mirrors the YAML shape of a resolver override file:
//
//	metrics:
//	  netSales:
//	    keywords: [NetSales, Revenue]
//	    range: {min: 1000000, max: 100000000000000}
//	    weights:
//	      consolidated: 25
//	      consolidated_current: 20
type overrideFile struct {
	Metrics map[string]specOverride `yaml:"metrics"`
}

// specOverride holds optional re-tunings for one metric. A present field
// replaces the builtin value wholesale; pointer fields distinguish absent
// from deliberately zeroed.
type specOverride struct {
	Patterns    []string `yaml:"patterns"`
	TagContains []string `yaml:"tag_contains"`
	Keywords    []string `yaml:"keywords"`
	Range       *Range   `yaml:"range"`
	Weights     *Weights `yaml:"weights"`
}

// LoadOverrides reads a YAML override file and applies it on top of base,
// returning a new spec set. Overrides naming unknown metrics are rejected,
// and the merged set must still validate.
func LoadOverrides(path string, base *SpecSet) (*SpecSet, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, eris.Wrapf(err, "resolve: read overrides %s", path)
	}
	return parseOverrides(raw, base)
}

func parseOverrides(raw []byte, base *SpecSet) (*SpecSet, error) {
	var file overrideFile
	if err := yaml.Unmarshal(raw, &file); err != nil {
		return nil, eris.Wrap(err, "resolve: parse overrides")
	}

	merged := base.clone()
	for name, ov := range file.Metrics {
		spec, ok := merged.specs[MetricID(name)]
		if !ok {
			return nil, eris.Errorf("resolve: override for unknown metric %q", name)
		}
		if len(ov.Patterns) > 0 {
			spec.Patterns = ov.Patterns
		}
		if len(ov.TagContains) > 0 {
			spec.TagContains = ov.TagContains
		}
		if len(ov.Keywords) > 0 {
			spec.Keywords = ov.Keywords
		}
		if ov.Range != nil {
			spec.Range = *ov.Range
		}
		if ov.Weights != nil {
			spec.Weights = *ov.Weights
		}
		merged.specs[MetricID(name)] = spec
	}

	if err := merged.Validate(); err != nil {
		return nil, err
	}
	return merged, nil
}

func (s *SpecSet) clone() *SpecSet {
	out := &SpecSet{
		order: append([]MetricID(nil), s.order...),
		specs: make(map[MetricID]MetricSpec, len(s.specs)),
	}
	for id, spec := range s.specs {
		out.specs[id] = spec
	}
	return out
}
