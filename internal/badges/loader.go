package badges

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Metrics a YAML rule may threshold on.
const (
	MetricSolved    = "solved"
	MetricStreak    = "streak"
	MetricMaxStreak = "max_streak"
	MetricContests  = "contests"
	MetricLanguages = "languages"
)

type ruleSpec struct {
	Name      string `yaml:"name"`
	Metric    string `yaml:"metric"`
	Threshold int    `yaml:"threshold"`
}

type catalogSpec struct {
	Badges []ruleSpec `yaml:"badges"`
}

// LoadFromFile reads a declarative badge catalog from a YAML file so
// milestone thresholds can change without a rebuild. The file fully
// replaces the built-in table.
func LoadFromFile(path string) (*Evaluator, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read badge catalog: %w", err)
	}

	var spec catalogSpec
	if err := yaml.Unmarshal(content, &spec); err != nil {
		return nil, fmt.Errorf("failed to parse badge catalog: %w", err)
	}

	if len(spec.Badges) == 0 {
		return nil, fmt.Errorf("badge catalog %s defines no badges", path)
	}

	rules := make([]Rule, 0, len(spec.Badges))
	seen := make(map[string]bool)
	for _, rs := range spec.Badges {
		if rs.Name == "" {
			return nil, fmt.Errorf("badge catalog %s: rule with empty name", path)
		}
		if seen[rs.Name] {
			return nil, fmt.Errorf("badge catalog %s: duplicate badge name %q", path, rs.Name)
		}
		seen[rs.Name] = true

		match, err := matcherFor(rs.Metric, rs.Threshold)
		if err != nil {
			return nil, fmt.Errorf("badge catalog %s: badge %q: %w", path, rs.Name, err)
		}

		rules = append(rules, Rule{Name: rs.Name, Match: match})
	}

	return NewEvaluator(rules), nil
}

func matcherFor(metric string, threshold int) (func(Snapshot) bool, error) {
	if threshold < 1 {
		return nil, fmt.Errorf("threshold must be positive, got %d", threshold)
	}

	switch metric {
	case MetricSolved:
		return func(s Snapshot) bool { return s.TotalSolved >= threshold }, nil
	case MetricStreak:
		return func(s Snapshot) bool { return s.CurrentStreak >= threshold }, nil
	case MetricMaxStreak:
		return func(s Snapshot) bool { return s.MaxStreak >= threshold }, nil
	case MetricContests:
		return func(s Snapshot) bool { return s.Contests >= threshold }, nil
	case MetricLanguages:
		return func(s Snapshot) bool { return s.Languages >= threshold }, nil
	default:
		return nil, fmt.Errorf("unknown metric %q", metric)
	}
}
