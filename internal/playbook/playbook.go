// Package playbook holds the conflict resolution playbook served to agents
// before they resolve merge-forward conflicts.
package playbook

import (
	_ "embed"
	"fmt"

	"gopkg.in/yaml.v3"
)

//go:embed playbook.yaml
var defaultData []byte

// Rule is one numbered resolution rule.
type Rule struct {
	Number     int      `yaml:"number" json:"number"`
	Name       string   `yaml:"name" json:"name"`
	Guidelines []string `yaml:"guidelines" json:"guidelines"`
}

// Example is a conflict seen in practice and how the rules resolved it.
type Example struct {
	ID                  string   `yaml:"id" json:"id"`
	Scenario            string   `yaml:"scenario" json:"scenario"`
	Tags                []string `yaml:"tags" json:"tags"`
	FilesAffected       []string `yaml:"files_affected" json:"files_affected"`
	Symptoms            []string `yaml:"symptoms,omitempty" json:"symptoms,omitempty"`
	DetectionCommand    string   `yaml:"detection_command,omitempty" json:"detection_command,omitempty"`
	ResolutionReference string   `yaml:"resolution_reference,omitempty" json:"resolution_reference,omitempty"`

	// PlaybookRules lists the numbers of the rules applied.
	PlaybookRules []int    `yaml:"playbook_rules" json:"playbook_rules"`
	DecisionLogic string   `yaml:"decision_logic" json:"decision_logic"`
	TimeToFix     string   `yaml:"time_to_fix" json:"time_to_fix"`
	SkipCost      string   `yaml:"skip_cost" json:"skip_cost"`
	Prevention    []string `yaml:"prevention,omitempty" json:"prevention,omitempty"`
	PatternLink   string   `yaml:"pattern_link,omitempty" json:"pattern_link,omitempty"`
}

// Playbook is the full set of rules, policies and worked examples.
type Playbook struct {
	Version          string    `yaml:"version" json:"version"`
	CorePrinciple    string    `yaml:"core_principle" json:"core_principle"`
	Rules            []Rule    `yaml:"rules" json:"rules"`
	ValidationPolicy []string  `yaml:"validation_policy" json:"validation_policy"`
	WorkflowPolicy   []string  `yaml:"workflow_policy" json:"workflow_policy"`
	Examples         []Example `yaml:"examples" json:"examples"`
}

// Default returns the embedded playbook.
func Default() (*Playbook, error) {
	return Parse(defaultData)
}

// Parse decodes a playbook document. Rule numbers must be positive and
// unique; example IDs must be unique and every rule an example cites must exist.
func Parse(data []byte) (*Playbook, error) {
	var pb Playbook
	if err := yaml.Unmarshal(data, &pb); err != nil {
		return nil, fmt.Errorf("parse playbook: %w", err)
	}

	seen := make(map[int]bool, len(pb.Rules))
	for _, r := range pb.Rules {
		if r.Number <= 0 {
			return nil, fmt.Errorf("playbook rule %q: number must be positive", r.Name)
		}
		if seen[r.Number] {
			return nil, fmt.Errorf("playbook rule %d: duplicate number", r.Number)
		}
		seen[r.Number] = true
	}

	ids := make(map[string]bool, len(pb.Examples))
	for _, ex := range pb.Examples {
		if ex.ID == "" {
			return nil, fmt.Errorf("playbook example %q: missing id", ex.Scenario)
		}
		if ids[ex.ID] {
			return nil, fmt.Errorf("playbook example %s: duplicate id", ex.ID)
		}
		ids[ex.ID] = true
		for _, n := range ex.PlaybookRules {
			if !seen[n] {
				return nil, fmt.Errorf("playbook example %s: unknown rule %d", ex.ID, n)
			}
		}
	}
	return &pb, nil
}

// Rule returns the rule with the given number.
func (p *Playbook) Rule(number int) (Rule, bool) {
	for _, r := range p.Rules {
		if r.Number == number {
			return r, true
		}
	}
	return Rule{}, false
}

// ExamplesForRule returns the examples that cite rule number, in document order.
func (p *Playbook) ExamplesForRule(number int) []Example {
	out := []Example{}
	for _, ex := range p.Examples {
		for _, n := range ex.PlaybookRules {
			if n == number {
				out = append(out, ex)
				break
			}
		}
	}
	return out
}
