package lint

import (
	"context"
	"fmt"
	"os"
	"strings"

	sigsyaml "sigs.k8s.io/yaml"

	"github.com/p33ves/synlint/internal/graph"
	"github.com/p33ves/synlint/internal/workspace"
)

// PolicyFile represents a custom policy YAML file.
type PolicyFile struct {
	Rules []PolicyRule `json:"rules" yaml:"rules"`
}

// PolicyRule defines a single custom lint rule.
type PolicyRule struct {
	// ID is the unique rule identifier (e.g., "CUSTOM-001").
	ID string `json:"id" yaml:"id"`

	// Severity is the finding severity (high, medium, low).
	SeverityStr string `json:"severity" yaml:"severity"`

	// Match restricts the rule to a resource kind.
	Match PolicyMatch `json:"match" yaml:"match"`

	// Condition is a simple check description for matching.
	// Supported: "no description", "no folder", "no annotations",
	// "unreferenced".
	Condition string `json:"condition" yaml:"condition"`

	// Message is the finding message.
	Message string `json:"message" yaml:"message"`
}

// PolicyMatch restricts which resources a rule applies to.
// Kind is one of Pipeline, Dataset, LinkedService, DataFlow, Trigger;
// empty matches every kind.
type PolicyMatch struct {
	Kind string `json:"kind" yaml:"kind"`
}

// LoadPolicyFile loads a custom policy file from disk.
func LoadPolicyFile(path string) (*PolicyFile, error) {
	data, err := os.ReadFile(path) //nolint:gosec // path is user-provided CLI arg, not attacker-controlled
	if err != nil {
		return nil, fmt.Errorf("reading policy file %s: %w", path, err)
	}

	var pf PolicyFile
	if err := sigsyaml.Unmarshal(data, &pf); err != nil {
		return nil, fmt.Errorf("parsing policy file %s: %w", path, err)
	}

	for _, r := range pf.Rules {
		if r.ID == "" {
			return nil, fmt.Errorf("policy file %s: rule missing required 'id' field", path)
		}

		if r.Message == "" {
			return nil, fmt.Errorf("policy file %s: rule %s missing required 'message' field", path, r.ID)
		}

		if r.SeverityStr != "" {
			if _, err := ParseSeverity(r.SeverityStr); err != nil {
				return nil, fmt.Errorf("policy file %s: rule %s: %w", path, r.ID, err)
			}
		}

		if r.Condition != "" {
			if !isKnownCondition(r.Condition) {
				return nil, fmt.Errorf("policy file %s: rule %s: unknown condition %q; supported: %s",
					path, r.ID, r.Condition, strings.Join(knownConditions(), ", "))
			}
		}
	}

	return &pf, nil
}

// ToChecks converts policy rules into lint checks.
func (pf *PolicyFile) ToChecks() []Check {
	var checks []Check

	for _, rule := range pf.Rules {
		checks = append(checks, &customRuleCheck{rule: rule})
	}

	return checks
}

// customRuleCheck implements Check for a custom policy rule.
type customRuleCheck struct {
	rule PolicyRule
}

func (c *customRuleCheck) ID() string     { return c.rule.ID }
func (c *customRuleCheck) Detail() string { return c.rule.Message }

func (c *customRuleCheck) Severity() Severity {
	sev, _ := ParseSeverity(c.rule.SeverityStr)
	return sev
}

func (c *customRuleCheck) Run(_ context.Context, ws *workspace.Workspace, arts *graph.Artifacts) []Finding {
	var findings []Finding

	for _, tgt := range policyTargets(ws) {
		// Apply kind filter.
		if c.rule.Match.Kind != "" && tgt.kind != c.rule.Match.Kind {
			continue
		}

		if c.matchesCondition(tgt, arts) {
			findings = append(findings, Finding{
				RuleID:    c.rule.ID,
				Severity:  c.Severity(),
				Component: tgt.kind,
				Name:      tgt.resource.Name,
				Message:   c.rule.Message,
			})
		}
	}

	return findings
}

// policyTarget is the kind-agnostic surface custom conditions evaluate.
type policyTarget struct {
	kind        string
	resource    *workspace.Resource
	description string
	folder      string
	annotations []interface{}
	hasFolder   bool
}

// policyTargets flattens the typed views into the order the resources were
// declared in the template.
func policyTargets(ws *workspace.Workspace) []policyTarget {
	byKey := make(map[string]policyTarget, len(ws.Resources))

	for _, p := range ws.Pipelines {
		byKey[p.Resource.ID().Key()] = policyTarget{
			kind: "Pipeline", resource: p.Resource,
			description: p.Description, folder: p.Folder,
			annotations: p.Annotations, hasFolder: true,
		}
	}

	for _, df := range ws.DataFlows {
		byKey[df.Resource.ID().Key()] = policyTarget{
			kind: "DataFlow", resource: df.Resource, description: df.Description,
		}
	}

	for _, ds := range ws.Datasets {
		byKey[ds.Resource.ID().Key()] = policyTarget{
			kind: "Dataset", resource: ds.Resource,
			description: ds.Description, folder: ds.Folder,
			annotations: ds.Annotations, hasFolder: true,
		}
	}

	for _, ls := range ws.LinkedServices {
		byKey[ls.Resource.ID().Key()] = policyTarget{
			kind: "LinkedService", resource: ls.Resource, description: ls.Description,
		}
	}

	for _, tr := range ws.Triggers {
		byKey[tr.Resource.ID().Key()] = policyTarget{
			kind: "Trigger", resource: tr.Resource,
			description: tr.Description, annotations: tr.Annotations,
		}
	}

	targets := make([]policyTarget, 0, len(ws.Resources))
	for _, res := range ws.Resources {
		if tgt, ok := byKey[res.ID().Key()]; ok {
			targets = append(targets, tgt)
		}
	}

	return targets
}

// matchesCondition evaluates the rule condition against a target.
func (c *customRuleCheck) matchesCondition(tgt policyTarget, arts *graph.Artifacts) bool {
	condition := strings.ToLower(strings.TrimSpace(c.rule.Condition))

	switch condition {
	case "no description":
		return tgt.description == ""
	case "no folder":
		return tgt.hasFolder && tgt.folder == ""
	case "no annotations":
		return len(tgt.annotations) == 0
	case "unreferenced":
		return !arts.Referenced(tgt.resource.ID())
	default:
		// Unreachable when conditions are validated by LoadPolicyFile.
		return false
	}
}

// knownConditions returns the list of supported condition strings.
func knownConditions() []string {
	return []string{
		"no description",
		"no folder",
		"no annotations",
		"unreferenced",
	}
}

// isKnownCondition reports whether the given condition string is supported.
func isKnownCondition(cond string) bool {
	normalized := strings.ToLower(strings.TrimSpace(cond))
	for _, c := range knownConditions() {
		if c == normalized {
			return true
		}
	}

	return false
}
