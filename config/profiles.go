package config

import (
	"fmt"

	"gopkg.in/yaml.v3"
)

// ProfileSet is the resolved form of the aws_profiles configuration.
// YAML accepts either a plain list of profile names or a mapping of
// profile name to match criteria; the shape is resolved once at load
// time so consumers never inspect it again.
//
// Names always carries every profile in declared order. Rules is nil
// for the plain-list shape; when non-nil, profile matching is enabled
// and rule order mirrors declaration order.
type ProfileSet struct {
	Names []string
	Rules []ProfileRule
}

// ProfileRule pairs a profile name with its match criteria. All
// criteria must hold for the rule to match (conjunctive).
type ProfileRule struct {
	Name     string
	Criteria map[string]CriterionValues
}

// CriterionValues is the acceptable value set for one criterion key.
// A YAML scalar decodes to a single-element set.
type CriterionValues []string

// UnmarshalYAML accepts a scalar or a sequence of scalars.
func (v *CriterionValues) UnmarshalYAML(node *yaml.Node) error {
	switch node.Kind {
	case yaml.ScalarNode:
		var s string
		if err := node.Decode(&s); err != nil {
			return err
		}
		*v = CriterionValues{s}
		return nil
	case yaml.SequenceNode:
		var vals []string
		if err := node.Decode(&vals); err != nil {
			return err
		}
		*v = vals
		return nil
	}
	return fmt.Errorf("criterion value must be a string or list of strings, got %s", node.Tag)
}

// Contains reports set membership.
func (v CriterionValues) Contains(s string) bool {
	for _, val := range v {
		if val == s {
			return true
		}
	}
	return false
}

// UnmarshalYAML resolves the list-or-map shape of aws_profiles.
func (p *ProfileSet) UnmarshalYAML(node *yaml.Node) error {
	switch node.Kind {
	case yaml.SequenceNode:
		var names []string
		if err := node.Decode(&names); err != nil {
			return fmt.Errorf("failed to parse aws_profiles list: %w", err)
		}
		p.Names = names
		p.Rules = nil
		return nil

	case yaml.MappingNode:
		// Content alternates key, value; iterating it preserves the
		// declared profile order, which is the matching tie-break.
		rules := make([]ProfileRule, 0, len(node.Content)/2)
		names := make([]string, 0, len(node.Content)/2)
		for i := 0; i+1 < len(node.Content); i += 2 {
			keyNode, valNode := node.Content[i], node.Content[i+1]

			var name string
			if err := keyNode.Decode(&name); err != nil {
				return fmt.Errorf("failed to parse profile name: %w", err)
			}

			rule := ProfileRule{Name: name}
			switch valNode.Kind {
			case yaml.MappingNode:
				if err := valNode.Decode(&rule.Criteria); err != nil {
					return fmt.Errorf("failed to parse criteria for profile %q: %w", name, err)
				}
			case yaml.ScalarNode:
				if valNode.Tag == "!!null" {
					break
				}
				return fmt.Errorf("profile %q: criteria must be a mapping, got scalar", name)
			default:
				return fmt.Errorf("profile %q: criteria must be a mapping", name)
			}

			names = append(names, name)
			rules = append(rules, rule)
		}
		p.Names = names
		p.Rules = rules
		return nil
	}

	return fmt.Errorf("aws_profiles must be a list of names or a mapping of name to criteria")
}

// IsZero reports whether aws_profiles was absent from the config.
func (p ProfileSet) IsZero() bool {
	return p.Names == nil && p.Rules == nil
}

// Matchable reports whether profile matching is enabled, i.e. the
// configuration used the mapping shape.
func (p ProfileSet) Matchable() bool {
	return p.Rules != nil
}

// HasProfile reports whether name is a declared profile.
func (p ProfileSet) HasProfile(name string) bool {
	for _, n := range p.Names {
		if n == name {
			return true
		}
	}
	return false
}
