// Package lint evaluates a catalog of independent checks over a workspace
// model and its graph artifacts, producing severity-tagged findings. It
// supports built-in rules, custom policy files, and multiple output formats
// (table, JSON, SARIF).
package lint

import (
	"context"
	"fmt"
	"strings"

	"github.com/p33ves/synlint/internal/graph"
	"github.com/p33ves/synlint/internal/workspace"
)

// Severity ranks the impact of a finding.
type Severity int

const (
	// SeverityLow indicates a hygiene concern.
	SeverityLow Severity = iota
	// SeverityMedium indicates a structural concern.
	SeverityMedium
	// SeverityHigh indicates a correctness issue.
	SeverityHigh
)

// String returns the lowercase label for the severity.
func (s Severity) String() string {
	switch s {
	case SeverityLow:
		return "low"
	case SeverityMedium:
		return "medium"
	case SeverityHigh:
		return "high"
	default:
		return fmt.Sprintf("unknown(%d)", int(s))
	}
}

// ParseSeverity parses a severity string (case-insensitive).
// Returns an error for unrecognised values.
func ParseSeverity(s string) (Severity, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "high":
		return SeverityHigh, nil
	case "medium":
		return SeverityMedium, nil
	case "low":
		return SeverityLow, nil
	default:
		return SeverityLow, fmt.Errorf("unknown severity %q, valid values: high, medium, low", s)
	}
}

// Finding represents a single reported issue. Immutable once produced.
type Finding struct {
	RuleID    string   `json:"ruleId"`
	Severity  Severity `json:"severity"`
	Component string   `json:"component"`
	Name      string   `json:"name"`
	Message   string   `json:"message"`
}

// Check is the interface every lint rule must implement. A check's result
// depends only on its target collection within the immutable model, so
// checks are idempotent and order-independent.
type Check interface {
	// ID returns the unique rule identifier (e.g. "PL-001").
	ID() string
	// Detail returns the human-readable description used in the summary.
	Detail() string
	// Severity returns the severity every finding of this rule carries.
	Severity() Severity
	// Run evaluates the check and returns any findings, in the target
	// collection's template order.
	Run(ctx context.Context, ws *workspace.Workspace, arts *graph.Artifacts) []Finding
}

// RuleSummary is the per-rule aggregate, one per catalog entry.
type RuleSummary struct {
	RuleID      string   `json:"ruleId"`
	IssueCount  int      `json:"issueCount"`
	CheckDetail string   `json:"checkDetail"`
	Severity    Severity `json:"severity"`
}

// Result aggregates the output of one analyzer run.
type Result struct {
	// Summary holds one entry per catalog rule, in catalog order.
	Summary []RuleSummary `json:"summary"`

	// Findings lists every issue in catalog order, then target order.
	Findings []Finding `json:"findings"`

	// Totals counts findings per severity label.
	Totals map[string]int `json:"totals"`
}

// Passed returns true when no finding meets or exceeds the threshold severity.
func (r *Result) Passed(threshold Severity) bool {
	for _, f := range r.Findings {
		if f.Severity >= threshold {
			return false
		}
	}

	return true
}

// Analyzer evaluates an ordered catalog of checks.
type Analyzer struct {
	checks []Check
}

// New creates an Analyzer with the given checks, evaluated in order.
func New(checks ...Check) *Analyzer {
	return &Analyzer{checks: checks}
}

// Run evaluates every check exactly once over the workspace and returns the
// aggregated result. Findings keep catalog order followed by each check's
// own target order, so identical input always yields an identical result.
func (a *Analyzer) Run(ctx context.Context, ws *workspace.Workspace, arts *graph.Artifacts) *Result {
	result := &Result{
		Summary: make([]RuleSummary, 0, len(a.checks)),
		Totals:  make(map[string]int),
	}

	for _, chk := range a.checks {
		findings := chk.Run(ctx, ws, arts)

		result.Summary = append(result.Summary, RuleSummary{
			RuleID:      chk.ID(),
			IssueCount:  len(findings),
			CheckDetail: chk.Detail(),
			Severity:    chk.Severity(),
		})

		for _, f := range findings {
			result.Totals[f.Severity.String()]++
		}

		result.Findings = append(result.Findings, findings...)
	}

	return result
}
