// Role: JSON persistence for the fuzzy Model. Uses goccy/go-json for the
// same reasons the landmark package does (faster drop-in Marshal/Unmarshal
// over a document that can grow to many rules/sets).

package fuzzy

import (
	"fmt"
	"os"

	json "github.com/goccy/go-json"
)

// wireDocument mirrors the persisted JSON shape: fuzzy sets as [a,b,c]
// triples and rule weights as optional fields, so a document can omit any
// subset of fields and fall back to defaults.
type wireDocument struct {
	MinGreen     *float64                         `json:"min_green"`
	MaxGreen     *float64                         `json:"max_green"`
	FuzzySets    map[string]map[string][3]float64 `json:"fuzzy_sets"`
	RulesTrigger []wireRule                       `json:"rules_trigger"`
	RulesExtend  []wireRule                       `json:"rules_extend"`
	Params       map[string]float64               `json:"params"`
}

type wireRule struct {
	If map[string]string `json:"if"`
	W  *float64          `json:"w"`
}

// Load reads a fuzzy model document from path, falling back to
// DefaultModel's fields for anything absent. A missing file is an error
// (the caller decides whether it is fatal; cmd/altroute's run subcommand
// falls back to DefaultModel); a present but empty/partial document
// degrades field by field.
func Load(path string) (*Model, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("fuzzy: read %q: %w", path, err)
	}

	var doc wireDocument
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("fuzzy: decode %q: %w", path, err)
	}

	m := DefaultModel()

	if len(doc.FuzzySets) > 0 {
		sets := make(map[string]map[string]TriMF, len(doc.FuzzySets))
		for variable, labels := range doc.FuzzySets {
			sets[variable] = make(map[string]TriMF, len(labels))
			for label, abc := range labels {
				sets[variable][label] = TriMF{A: abc[0], B: abc[1], C: abc[2]}
			}
		}
		m.FuzzySets = sets
	}

	if len(doc.RulesTrigger) > 0 {
		m.RulesTrigger = toRules(doc.RulesTrigger)
	}
	if len(doc.RulesExtend) > 0 {
		m.RulesExtend = toRules(doc.RulesExtend)
	}
	if doc.MinGreen != nil {
		m.MinGreen = *doc.MinGreen
	}
	if doc.MaxGreen != nil {
		m.MaxGreen = *doc.MaxGreen
	}

	for k, v := range doc.Params {
		switch k {
		case "trigger_threshold":
			m.Params.TriggerThreshold = v
		case "near_force_distance_m":
			m.Params.NearForceDistanceM = v
		case "release_distance_m":
			m.Params.ReleaseDistanceM = v
		}
	}

	return m, nil
}

func toRules(wire []wireRule) []Rule {
	rules := make([]Rule, len(wire))
	for i, wr := range wire {
		w := 1.0
		if wr.W != nil {
			w = *wr.W
		}
		rules[i] = Rule{If: wr.If, W: w}
	}
	return rules
}
