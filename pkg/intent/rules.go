package intent

import (
	_ "embed"
	"fmt"
	"regexp"
	"strings"

	"github.com/Masterminds/semver/v3"
	"gopkg.in/yaml.v3"
)

//go:embed rules.yaml
var defaultRulesYAML []byte

// SupportedRules is the rule-set version range this classifier understands.
const SupportedRules = "^1"

// RuleSpec is one ordered rule as written in rules.yaml.
type RuleSpec struct {
	Intent   Intent   `yaml:"intent"`
	Patterns []string `yaml:"patterns"`
	Exclude  []string `yaml:"exclude,omitempty"`
}

// RuleFile is the on-disk rule-set document.
type RuleFile struct {
	Version     string     `yaml:"version"`
	UrduMarkers []string   `yaml:"urdu_markers"`
	Rules       []RuleSpec `yaml:"rules"`
}

// Rule is a compiled RuleSpec.
type Rule struct {
	Intent   Intent
	patterns []*regexp.Regexp
	exclude  []*regexp.Regexp
}

// Match reports whether the normalized text triggers the rule.
func (r Rule) Match(text string) bool {
	for _, ex := range r.exclude {
		if ex.MatchString(text) {
			return false
		}
	}
	for _, p := range r.patterns {
		if p.MatchString(text) {
			return true
		}
	}
	return false
}

// RuleSet is an immutable, compiled rule set.
type RuleSet struct {
	version     *semver.Version
	rules       []Rule
	urduMarkers map[string]bool
}

// Version returns the rule-set version.
func (rs *RuleSet) Version() string {
	return rs.version.String()
}

// Order returns the intents in evaluation order, one entry per rule.
func (rs *RuleSet) Order() []Intent {
	out := make([]Intent, len(rs.rules))
	for i, r := range rs.rules {
		out[i] = r.Intent
	}
	return out
}

// ParseRules compiles a YAML rule set and checks its version against SupportedRules.
func ParseRules(data []byte) (*RuleSet, error) {
	var f RuleFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("intent:rules - failed to parse rules: %w", err)
	}

	v, err := semver.NewVersion(f.Version)
	if err != nil {
		return nil, fmt.Errorf("intent:rules - invalid rules version %q: %w", f.Version, err)
	}
	c, err := semver.NewConstraint(SupportedRules)
	if err != nil {
		return nil, fmt.Errorf("intent:rules - invalid constraint: %w", err)
	}
	if !c.Check(v) {
		return nil, fmt.Errorf("intent:rules - rules version %s does not satisfy %s", v, SupportedRules)
	}

	if len(f.Rules) == 0 {
		return nil, fmt.Errorf("intent:rules - rule set %s has no rules", v)
	}

	rs := &RuleSet{version: v, urduMarkers: make(map[string]bool, len(f.UrduMarkers))}
	for _, m := range f.UrduMarkers {
		rs.urduMarkers[strings.ToLower(strings.TrimSpace(m))] = true
	}

	for i, spec := range f.Rules {
		if !spec.Intent.Valid() || spec.Intent == Conversation {
			return nil, fmt.Errorf("intent:rules - rule %d has unusable intent %q", i, spec.Intent)
		}
		if len(spec.Patterns) == 0 {
			return nil, fmt.Errorf("intent:rules - rule %d (%s) has no patterns", i, spec.Intent)
		}
		rule := Rule{Intent: spec.Intent}
		for _, p := range spec.Patterns {
			re, err := regexp.Compile(p)
			if err != nil {
				return nil, fmt.Errorf("intent:rules - rule %d (%s) pattern %q: %w", i, spec.Intent, p, err)
			}
			rule.patterns = append(rule.patterns, re)
		}
		for _, p := range spec.Exclude {
			re, err := regexp.Compile(p)
			if err != nil {
				return nil, fmt.Errorf("intent:rules - rule %d (%s) exclusion %q: %w", i, spec.Intent, p, err)
			}
			rule.exclude = append(rule.exclude, re)
		}
		rs.rules = append(rs.rules, rule)
	}
	return rs, nil
}

// DefaultRules returns the embedded rule set. It panics if the embedded
// document is invalid, which the package tests guard against.
func DefaultRules() *RuleSet {
	rs, err := ParseRules(defaultRulesYAML)
	if err != nil {
		panic(err)
	}
	return rs
}
