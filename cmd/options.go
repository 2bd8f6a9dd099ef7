// Copyright © 2024 The BPLint authors

package cmd

import (
	"github.com/luthersystems/bplint/lint"
	"go.opentelemetry.io/otel/trace"
)

// Option configures an exported command factory (LintCommand, RulesCommand).
type Option func(*cmdConfig)

type cmdConfig struct {
	rules  []*lint.Rule
	tracer trace.Tracer
}

// WithRules registers additional rules alongside the built-in ones. They
// run by default and can be selected by name with --rules. A rule with the
// same name as a built-in rule replaces it.
func WithRules(rules ...*lint.Rule) Option {
	return func(c *cmdConfig) { c.rules = append(c.rules, rules...) }
}

// WithTracer sets the tracer used for lint spans. By default the global
// tracer provider is used.
func WithTracer(t trace.Tracer) Option {
	return func(c *cmdConfig) { c.tracer = t }
}

// catalog returns the built-in rules merged with the injected ones.
func (c *cmdConfig) catalog() []*lint.Rule {
	rules := lint.DefaultRules()
	for _, extra := range c.rules {
		replaced := false
		for i, r := range rules {
			if r.Name == extra.Name {
				rules[i] = extra
				replaced = true
				break
			}
		}
		if !replaced {
			rules = append(rules, extra)
		}
	}
	return rules
}

// selectRules resolves rule names against the catalog. Unknown names are
// kept as undefined rules so that linting reports them.
func (c *cmdConfig) selectRules(names []string) []*lint.Rule {
	catalog := c.catalog()
	if len(names) == 0 {
		return catalog
	}
	byName := make(map[string]*lint.Rule, len(catalog))
	for _, r := range catalog {
		byName[r.Name] = r
	}
	var rules []*lint.Rule
	seen := make(map[string]bool, len(names))
	for _, name := range names {
		if seen[name] {
			continue
		}
		seen[name] = true
		if r, ok := byName[name]; ok {
			rules = append(rules, r)
		} else {
			rules = append(rules, lint.Select([]string{name})...)
		}
	}
	return rules
}
