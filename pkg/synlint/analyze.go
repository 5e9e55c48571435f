// Package synlint provides a public Go API for analyzing exported Synapse
// workspace templates.
//
// This package exposes the synlint analysis pipeline as a library, allowing
// programmatic use without the CLI.
//
// Basic usage:
//
//	result, err := synlint.Analyze(ctx, "TemplateForWorkspace.json")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	for _, f := range result.Findings {
//	    fmt.Printf("%s %s: %s\n", f.Severity, f.RuleID, f.Message)
//	}
//
// With options:
//
//	result, err := synlint.Analyze(ctx, "TemplateForWorkspace.json",
//	    synlint.WithPolicyFiles("team-policy.yaml"),
//	    synlint.WithFailOn("high"),
//	)
package synlint

import (
	"context"
	"errors"
	"fmt"

	"github.com/p33ves/synlint/internal/graph"
	"github.com/p33ves/synlint/internal/lint"
	"github.com/p33ves/synlint/internal/workspace/parser"
)

// Option configures the analysis pipeline.
// Use the With* functions to create Options.
type Option func(*options)

// options holds the internal configuration for the analysis pipeline.
type options struct {
	policyFiles []string
	failOn      string
}

// WithPolicyFiles adds custom policy YAML files whose rules run after the
// built-in catalog.
func WithPolicyFiles(paths ...string) Option {
	return func(o *options) { o.policyFiles = append(o.policyFiles, paths...) }
}

// WithFailOn sets a severity threshold ("high", "medium", "low"). When any
// finding meets or exceeds it, Result.Passed is false.
func WithFailOn(severity string) Option {
	return func(o *options) { o.failOn = severity }
}

// Finding is one rule violation against one resource or activity.
type Finding struct {
	// RuleID identifies the violated rule (e.g. "PL-001").
	RuleID string

	// Severity is "high", "medium", or "low".
	Severity string

	// Component is the resource category (e.g. "Pipeline", "Activity").
	Component string

	// Name is the violating resource or "pipeline/activity" pair.
	Name string

	// Message is the human-readable description.
	Message string
}

// RuleSummary is the per-rule issue count, present for every rule evaluated.
type RuleSummary struct {
	RuleID     string
	IssueCount int
	Detail     string
	Severity   string
}

// Result holds the output of a successful analysis.
type Result struct {
	// Summary covers every evaluated rule in catalog order.
	Summary []RuleSummary

	// Findings lists every violation in catalog order, then template order.
	Findings []Finding

	// Totals counts findings per severity name.
	Totals map[string]int

	// ResourceCount is the number of analyzed workspace resources.
	ResourceCount int

	// Passed is false when WithFailOn was given and a finding met the
	// threshold. Without WithFailOn it is always true.
	Passed bool
}

// Analyze parses the workspace template at templatePath, evaluates the
// built-in check catalog plus any configured policies, and returns the
// aggregated result.
func Analyze(ctx context.Context, templatePath string, opts ...Option) (*Result, error) {
	if templatePath == "" {
		return nil, errors.New("template path must not be empty")
	}

	o := &options{}
	for _, opt := range opts {
		opt(o)
	}

	// 1. Load the template.
	ws, err := parser.LoadFile(ctx, templatePath)
	if err != nil {
		return nil, fmt.Errorf("loading template: %w", err)
	}

	// 2. Assemble the check set.
	checks := lint.Catalog()

	for _, path := range o.policyFiles {
		pf, loadErr := lint.LoadPolicyFile(path)
		if loadErr != nil {
			return nil, fmt.Errorf("loading policy %s: %w", path, loadErr)
		}

		checks = append(checks, pf.ToChecks()...)
	}

	// 3. Build the graph and run the analysis.
	arts := graph.Build(ws)
	result := lint.New(checks...).Run(ctx, ws, arts)

	// 4. Evaluate the threshold.
	passed := true

	if o.failOn != "" {
		threshold, parseErr := lint.ParseSeverity(o.failOn)
		if parseErr != nil {
			return nil, parseErr
		}

		passed = result.Passed(threshold)
	}

	return toPublicResult(result, len(ws.Resources), passed), nil
}

// toPublicResult converts the internal result into the exported shape.
func toPublicResult(r *lint.Result, resourceCount int, passed bool) *Result {
	out := &Result{
		Summary:       make([]RuleSummary, 0, len(r.Summary)),
		Findings:      make([]Finding, 0, len(r.Findings)),
		Totals:        r.Totals,
		ResourceCount: resourceCount,
		Passed:        passed,
	}

	for _, rs := range r.Summary {
		out.Summary = append(out.Summary, RuleSummary{
			RuleID:     rs.RuleID,
			IssueCount: rs.IssueCount,
			Detail:     rs.CheckDetail,
			Severity:   rs.Severity.String(),
		})
	}

	for _, f := range r.Findings {
		out.Findings = append(out.Findings, Finding{
			RuleID:    f.RuleID,
			Severity:  f.Severity.String(),
			Component: f.Component,
			Name:      f.Name,
			Message:   f.Message,
		})
	}

	return out
}
