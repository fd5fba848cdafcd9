// Package gateway enables and disables the static network-blocking rule set.
package gateway

import (
	"context"
	_ "embed"
	"errors"
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"
)

// RuleSetName is the identifier of the single rule set the blocker toggles.
const RuleSetName = "blocking_rules"

// Gateway toggles a named rule set. Enable and Disable are idempotent and
// keep no state of their own beyond what they enforce.
type Gateway interface {
	Name() string
	Enable(ctx context.Context) error
	Disable(ctx context.Context) error
}

// RuleSet is the static list of domains blocked while a session runs.
type RuleSet struct {
	Name    string   `yaml:"name"`
	Domains []string `yaml:"domains"`
}

//go:embed rules.yaml
var defaultRules []byte

// DefaultRuleSet returns the rule set shipped with the binary.
func DefaultRuleSet() (RuleSet, error) {
	return ParseRuleSet(defaultRules)
}

// ParseRuleSet decodes a YAML rule set and normalizes its domains.
func ParseRuleSet(data []byte) (RuleSet, error) {
	var rs RuleSet
	if err := yaml.Unmarshal(data, &rs); err != nil {
		return RuleSet{}, fmt.Errorf("parse rule set yaml: %w", err)
	}
	if rs.Name == "" {
		return RuleSet{}, errors.New("rule set has no name")
	}

	seen := make(map[string]bool, len(rs.Domains))
	domains := rs.Domains[:0]
	for _, d := range rs.Domains {
		d = strings.ToLower(strings.TrimSpace(d))
		d = strings.TrimPrefix(d, "www.")
		if d == "" || seen[d] {
			continue
		}
		if strings.ContainsAny(d, " \t/#") {
			return RuleSet{}, fmt.Errorf("invalid domain %q", d)
		}
		seen[d] = true
		domains = append(domains, d)
	}
	if len(domains) == 0 {
		return RuleSet{}, fmt.Errorf("rule set %q has no domains", rs.Name)
	}
	rs.Domains = domains
	return rs, nil
}
