package lint

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"
)

// Formatter writes analysis results to a writer.
type Formatter interface {
	Format(w io.Writer, result *Result) error
}

// NewFormatter returns a formatter for the given format name.
// Supported: "table" (default), "json", "sarif".
func NewFormatter(format string) (Formatter, error) {
	switch strings.ToLower(strings.TrimSpace(format)) {
	case "", "table":
		return &TableFormatter{}, nil
	case "json":
		return &JSONFormatter{}, nil
	case "sarif":
		return &SARIFFormatter{}, nil
	default:
		return nil, fmt.Errorf("unsupported output format %q: use table, json, or sarif", format)
	}
}

// --- Table Formatter ---

// TableFormatter writes the summary and findings as human-readable tables.
// A nil Summary or Findings slice suppresses the respective section.
type TableFormatter struct{}

// Format writes the result as human-readable tables.
func (f *TableFormatter) Format(w io.Writer, result *Result) error {
	if result.Summary != nil {
		if err := f.writeSummary(w, result); err != nil {
			return err
		}
	}

	if result.Findings != nil {
		if err := f.writeFindings(w, result); err != nil {
			return err
		}
	}

	// The totals map survives section pruning, so it carries the true
	// count even when both sections are suppressed.
	total := 0
	for _, count := range result.Totals {
		total += count
	}

	if result.Totals == nil {
		total = len(result.Findings)
	}

	_, _ = fmt.Fprintf(w, "Issues: %d total", total)

	parts := []string{}
	for _, sev := range []Severity{SeverityHigh, SeverityMedium, SeverityLow} {
		if count, ok := result.Totals[sev.String()]; ok && count > 0 {
			parts = append(parts, fmt.Sprintf("%d %s", count, sev.String()))
		}
	}

	if len(parts) > 0 {
		_, _ = fmt.Fprintf(w, " (%s)", strings.Join(parts, ", "))
	}

	_, _ = fmt.Fprintln(w)

	return nil
}

func (f *TableFormatter) writeSummary(w io.Writer, result *Result) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)

	_, _ = fmt.Fprintln(tw, "RULE\tSEVERITY\tISSUES\tCHECK")
	_, _ = fmt.Fprintln(tw, "----\t--------\t------\t-----")

	for _, rs := range result.Summary {
		_, _ = fmt.Fprintf(tw, "%s\t%s\t%d\t%s\n",
			rs.RuleID,
			strings.ToUpper(rs.Severity.String()),
			rs.IssueCount,
			rs.CheckDetail,
		)
	}

	if err := tw.Flush(); err != nil {
		return err
	}

	_, _ = fmt.Fprintln(w)

	return nil
}

func (f *TableFormatter) writeFindings(w io.Writer, result *Result) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)

	_, _ = fmt.Fprintln(tw, "SEVERITY\tRULE\tRESOURCE\tMESSAGE")
	_, _ = fmt.Fprintln(tw, "--------\t----\t--------\t-------")

	for _, finding := range result.Findings {
		_, _ = fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n",
			strings.ToUpper(finding.Severity.String()),
			finding.RuleID,
			finding.Component+"/"+finding.Name,
			finding.Message,
		)
	}

	if err := tw.Flush(); err != nil {
		return err
	}

	_, _ = fmt.Fprintln(w)

	return nil
}

// --- JSON Formatter ---

// JSONFormatter writes the result as JSON.
type JSONFormatter struct{}

// Format writes the result as JSON.
func (f *JSONFormatter) Format(w io.Writer, result *Result) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")

	type jsonSummary struct {
		RuleID      string `json:"ruleId"`
		IssueCount  int    `json:"issueCount"`
		CheckDetail string `json:"checkDetail"`
		Severity    string `json:"severity"`
	}

	type jsonFinding struct {
		RuleID    string `json:"ruleId"`
		Severity  string `json:"severity"`
		Component string `json:"component"`
		Name      string `json:"name"`
		Message   string `json:"message"`
	}

	type jsonResult struct {
		Summary  []jsonSummary  `json:"summary"`
		Findings []jsonFinding  `json:"findings"`
		Totals   map[string]int `json:"totals"`
		Total    int            `json:"total"`
	}

	summary := make([]jsonSummary, 0, len(result.Summary))
	total := 0

	for _, rs := range result.Summary {
		total += rs.IssueCount
		summary = append(summary, jsonSummary{
			RuleID:      rs.RuleID,
			IssueCount:  rs.IssueCount,
			CheckDetail: rs.CheckDetail,
			Severity:    rs.Severity.String(),
		})
	}

	findings := make([]jsonFinding, 0, len(result.Findings))
	for _, fd := range result.Findings {
		findings = append(findings, jsonFinding{
			RuleID:    fd.RuleID,
			Severity:  fd.Severity.String(),
			Component: fd.Component,
			Name:      fd.Name,
			Message:   fd.Message,
		})
	}

	totals := result.Totals
	if totals == nil {
		totals = make(map[string]int)
	}

	return enc.Encode(jsonResult{
		Summary:  summary,
		Findings: findings,
		Totals:   totals,
		Total:    total,
	})
}

// --- SARIF v2.1.0 Formatter ---

// SARIFFormatter writes findings in SARIF v2.1.0 format.
type SARIFFormatter struct{}

// Format writes the result in SARIF v2.1.0 format.
func (f *SARIFFormatter) Format(w io.Writer, result *Result) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")

	return enc.Encode(f.toSARIF(result))
}

// sarifLog is the top-level SARIF object.
type sarifLog struct {
	Schema  string     `json:"$schema"`
	Version string     `json:"version"`
	Runs    []sarifRun `json:"runs"`
}

type sarifRun struct {
	Tool    sarifTool     `json:"tool"`
	Results []sarifResult `json:"results"`
}

type sarifTool struct {
	Driver sarifDriver `json:"driver"`
}

type sarifDriver struct {
	Name           string      `json:"name"`
	Version        string      `json:"version"`
	InformationURI string      `json:"informationUri"`
	Rules          []sarifRule `json:"rules"`
}

type sarifRule struct {
	ID               string             `json:"id"`
	ShortDescription sarifMessage       `json:"shortDescription"`
	DefaultConfig    sarifDefaultConfig `json:"defaultConfiguration"`
}

type sarifDefaultConfig struct {
	Level string `json:"level"`
}

type sarifMessage struct {
	Text string `json:"text"`
}

type sarifResult struct {
	RuleID    string          `json:"ruleId"`
	Level     string          `json:"level"`
	Message   sarifMessage    `json:"message"`
	Locations []sarifLocation `json:"locations,omitempty"`
}

type sarifLocation struct {
	LogicalLocations []sarifLogicalLocation `json:"logicalLocations"`
}

type sarifLogicalLocation struct {
	Name               string `json:"name"`
	FullyQualifiedName string `json:"fullyQualifiedName"`
	Kind               string `json:"kind"`
}

func (f *SARIFFormatter) toSARIF(result *Result) sarifLog {
	// The summary carries the full catalog, so rules come from there.
	rules := make([]sarifRule, 0, len(result.Summary))
	for _, rs := range result.Summary {
		rules = append(rules, sarifRule{
			ID:               rs.RuleID,
			ShortDescription: sarifMessage{Text: rs.CheckDetail},
			DefaultConfig:    sarifDefaultConfig{Level: severityToSARIFLevel(rs.Severity)},
		})
	}

	var results []sarifResult

	for _, finding := range result.Findings {
		r := sarifResult{
			RuleID:  finding.RuleID,
			Level:   severityToSARIFLevel(finding.Severity),
			Message: sarifMessage{Text: finding.Message},
		}

		if finding.Name != "" {
			qualified := finding.Component + "/" + finding.Name
			r.Locations = []sarifLocation{{
				LogicalLocations: []sarifLogicalLocation{{
					Name:               finding.Name,
					FullyQualifiedName: qualified,
					Kind:               finding.Component,
				}},
			}}
		}

		results = append(results, r)
	}

	return sarifLog{
		Schema:  "https://raw.githubusercontent.com/oasis-tcs/sarif-spec/main/sarif-2.1/schema/sarif-schema-2.1.0.json",
		Version: "2.1.0",
		Runs: []sarifRun{{
			Tool: sarifTool{
				Driver: sarifDriver{
					Name:           "synlint",
					Version:        "1.0.0",
					InformationURI: "https://github.com/p33ves/synlint",
					Rules:          rules,
				},
			},
			Results: results,
		}},
	}
}

// severityToSARIFLevel maps our severity to SARIF level values.
func severityToSARIFLevel(s Severity) string {
	switch s {
	case SeverityHigh:
		return "error"
	case SeverityMedium:
		return "warning"
	default:
		return "note"
	}
}
