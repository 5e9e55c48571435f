package lint

import (
	"context"
	"fmt"
	"time"

	"github.com/p33ves/synlint/internal/graph"
	"github.com/p33ves/synlint/internal/workspace"
)

// Catalog returns every built-in check in catalog order. The summary and
// detail tables follow this order.
func Catalog() []Check {
	return []Check{
		&NoTriggerPipelineCheck{},
		&ConflictingChainCheck{},
		&PipelineDescriptionCheck{},
		&PipelineFolderCheck{},
		&PipelineAnnotationsCheck{},
		&DataFlowDescriptionCheck{},
		&ActivityTimeoutCheck{},
		&ActivityDescriptionCheck{},
		&ForEachBatchCountCheck{},
		&CredentialHygieneCheck{},
		&UnusedLinkedServiceCheck{},
		&LinkedServiceDescriptionCheck{},
		&UnusedDatasetCheck{},
		&DatasetDescriptionCheck{},
		&DatasetFolderCheck{},
		&DatasetAnnotationsCheck{},
		&UnusedTriggerCheck{},
		&TriggerDescriptionCheck{},
		&TriggerAnnotationsCheck{},
	}
}

// finding builds a Finding for a check and a resource-like target.
func finding(c Check, component, name, message string) Finding {
	return Finding{
		RuleID:    c.ID(),
		Severity:  c.Severity(),
		Component: component,
		Name:      name,
		Message:   message,
	}
}

// activityName qualifies an activity with its owning pipeline for display.
func activityName(a workspace.Activity) string {
	return a.PipelineName + "/" + a.Name
}

// --- PL-001: pipeline unreachable by any trigger ---

// NoTriggerPipelineCheck flags pipelines that no trigger or pipeline
// references. Only direct reference depth is considered, not transitive
// closure beyond one hop.
type NoTriggerPipelineCheck struct{}

func (c *NoTriggerPipelineCheck) ID() string         { return "PL-001" }
func (c *NoTriggerPipelineCheck) Detail() string     { return "pipeline has no triggers attached" }
func (c *NoTriggerPipelineCheck) Severity() Severity { return SeverityMedium }

func (c *NoTriggerPipelineCheck) Run(_ context.Context, ws *workspace.Workspace, arts *graph.Artifacts) []Finding {
	var findings []Finding

	for _, p := range ws.Pipelines {
		if !arts.Referenced(p.Resource.ID()) {
			findings = append(findings, finding(c, "Pipeline", p.Resource.Name,
				fmt.Sprintf("pipeline %s is not referenced by any trigger or pipeline", p.Resource.Name)))
		}
	}

	return findings
}

// --- PL-002: contradictory activity chain ---

// ConflictingChainCheck flags pipelines whose activity graph contains a
// failed/succeeded contradiction caught by graph.FindConflicts. A pipeline
// is flagged once regardless of how many activities conflict.
type ConflictingChainCheck struct{}

func (c *ConflictingChainCheck) ID() string { return "PL-002" }
func (c *ConflictingChainCheck) Detail() string {
	return "pipeline contains an impossible AND/OR activity execution chain"
}
func (c *ConflictingChainCheck) Severity() Severity { return SeverityHigh }

func (c *ConflictingChainCheck) Run(_ context.Context, ws *workspace.Workspace, arts *graph.Artifacts) []Finding {
	var findings []Finding

	for _, p := range ws.Pipelines {
		conflicts, ok := arts.Conflicts[p.Resource.Name]
		if !ok || len(conflicts) == 0 {
			continue
		}

		findings = append(findings, finding(c, "Pipeline", p.Resource.Name,
			fmt.Sprintf("pipeline %s has an impossible AND/OR activity execution chain involving %v", p.Resource.Name, conflicts)))
	}

	return findings
}

// --- PL-003 / PL-004 / PL-005: pipeline hygiene ---

// PipelineDescriptionCheck flags pipelines without a description.
type PipelineDescriptionCheck struct{}

func (c *PipelineDescriptionCheck) ID() string         { return "PL-003" }
func (c *PipelineDescriptionCheck) Detail() string     { return "pipeline has no description" }
func (c *PipelineDescriptionCheck) Severity() Severity { return SeverityLow }

func (c *PipelineDescriptionCheck) Run(_ context.Context, ws *workspace.Workspace, _ *graph.Artifacts) []Finding {
	var findings []Finding

	for _, p := range ws.Pipelines {
		if p.Description == "" {
			findings = append(findings, finding(c, "Pipeline", p.Resource.Name,
				fmt.Sprintf("pipeline %s has no description", p.Resource.Name)))
		}
	}

	return findings
}

// PipelineFolderCheck flags pipelines outside any folder.
type PipelineFolderCheck struct{}

func (c *PipelineFolderCheck) ID() string         { return "PL-004" }
func (c *PipelineFolderCheck) Detail() string     { return "pipeline is not organized into a folder" }
func (c *PipelineFolderCheck) Severity() Severity { return SeverityMedium }

func (c *PipelineFolderCheck) Run(_ context.Context, ws *workspace.Workspace, _ *graph.Artifacts) []Finding {
	var findings []Finding

	for _, p := range ws.Pipelines {
		if p.Folder == "" {
			findings = append(findings, finding(c, "Pipeline", p.Resource.Name,
				fmt.Sprintf("pipeline %s is not organized into a folder", p.Resource.Name)))
		}
	}

	return findings
}

// PipelineAnnotationsCheck flags pipelines without annotations.
type PipelineAnnotationsCheck struct{}

func (c *PipelineAnnotationsCheck) ID() string         { return "PL-005" }
func (c *PipelineAnnotationsCheck) Detail() string     { return "pipeline has no annotations" }
func (c *PipelineAnnotationsCheck) Severity() Severity { return SeverityLow }

func (c *PipelineAnnotationsCheck) Run(_ context.Context, ws *workspace.Workspace, _ *graph.Artifacts) []Finding {
	var findings []Finding

	for _, p := range ws.Pipelines {
		if len(p.Annotations) == 0 {
			findings = append(findings, finding(c, "Pipeline", p.Resource.Name,
				fmt.Sprintf("pipeline %s has no annotations", p.Resource.Name)))
		}
	}

	return findings
}

// --- DF-001: data flow hygiene ---

// DataFlowDescriptionCheck flags data flows without a description.
type DataFlowDescriptionCheck struct{}

func (c *DataFlowDescriptionCheck) ID() string         { return "DF-001" }
func (c *DataFlowDescriptionCheck) Detail() string     { return "data flow has no description" }
func (c *DataFlowDescriptionCheck) Severity() Severity { return SeverityLow }

func (c *DataFlowDescriptionCheck) Run(_ context.Context, ws *workspace.Workspace, _ *graph.Artifacts) []Finding {
	var findings []Finding

	for _, df := range ws.DataFlows {
		if df.Description == "" {
			findings = append(findings, finding(c, "DataFlow", df.Resource.Name,
				fmt.Sprintf("data flow %s has no description", df.Resource.Name)))
		}
	}

	return findings
}

// --- AC-001: excessive activity timeout ---

// maxActivityTimeout is the longest timeout an activity may declare before
// it is considered a hung-run risk.
const maxActivityTimeout = 4 * time.Hour

// ActivityTimeoutCheck flags activities whose declared timeout exceeds
// maxActivityTimeout. Activities without a timeout are not flagged.
type ActivityTimeoutCheck struct{}

func (c *ActivityTimeoutCheck) ID() string         { return "AC-001" }
func (c *ActivityTimeoutCheck) Detail() string     { return "activity timeout exceeds 4 hours" }
func (c *ActivityTimeoutCheck) Severity() Severity { return SeverityHigh }

func (c *ActivityTimeoutCheck) Run(_ context.Context, ws *workspace.Workspace, _ *graph.Artifacts) []Finding {
	var findings []Finding

	forEachActivity(ws, func(a workspace.Activity) {
		if d, ok := a.TimeoutDuration(); ok && d > maxActivityTimeout {
			findings = append(findings, finding(c, "Activity", activityName(a),
				fmt.Sprintf("activity %s declares a timeout of %s, exceeding %s", activityName(a), a.Timeout, maxActivityTimeout)))
		}
	})

	return findings
}

// --- AC-002: activity description ---

// ActivityDescriptionCheck flags activities without a description.
type ActivityDescriptionCheck struct{}

func (c *ActivityDescriptionCheck) ID() string         { return "AC-002" }
func (c *ActivityDescriptionCheck) Detail() string     { return "activity has no description" }
func (c *ActivityDescriptionCheck) Severity() Severity { return SeverityLow }

func (c *ActivityDescriptionCheck) Run(_ context.Context, ws *workspace.Workspace, _ *graph.Artifacts) []Finding {
	var findings []Finding

	forEachActivity(ws, func(a workspace.Activity) {
		if a.Description == "" {
			findings = append(findings, finding(c, "Activity", activityName(a),
				fmt.Sprintf("activity %s has no description", activityName(a))))
		}
	})

	return findings
}

// --- AC-003: parallel ForEach without batch count ---

// ForEachBatchCountCheck flags ForEach activities running in parallel
// (isSequential absent or false) without an explicit batchCount, which
// makes the degree of parallelism implicit.
type ForEachBatchCountCheck struct{}

func (c *ForEachBatchCountCheck) ID() string { return "AC-003" }
func (c *ForEachBatchCountCheck) Detail() string {
	return "parallel ForEach activity declares no batch count"
}
func (c *ForEachBatchCountCheck) Severity() Severity { return SeverityHigh }

func (c *ForEachBatchCountCheck) Run(_ context.Context, ws *workspace.Workspace, _ *graph.Artifacts) []Finding {
	var findings []Finding

	forEachActivity(ws, func(a workspace.Activity) {
		if a.IsForEach() && !a.IsSequential() && !a.HasBatchCount() {
			findings = append(findings, finding(c, "Activity", activityName(a),
				fmt.Sprintf("ForEach activity %s runs in parallel without a batch count", activityName(a))))
		}
	})

	return findings
}

// --- LS-001: credential hygiene ---

// CredentialHygieneCheck flags linked services that embed credential
// material inline instead of referencing a secret store. Secret-store
// services and workspace-default services are exempt; the verdict is the
// union over every type-property entry (see hygiene.go).
type CredentialHygieneCheck struct{}

func (c *CredentialHygieneCheck) ID() string { return "LS-001" }
func (c *CredentialHygieneCheck) Detail() string {
	return "linked service holds credentials outside a secret store"
}
func (c *CredentialHygieneCheck) Severity() Severity { return SeverityHigh }

func (c *CredentialHygieneCheck) Run(_ context.Context, ws *workspace.Workspace, _ *graph.Artifacts) []Finding {
	var findings []Finding

	for _, ls := range ws.LinkedServices {
		if lacksSecretReference(ls) {
			findings = append(findings, finding(c, "LinkedService", ls.Resource.Name,
				fmt.Sprintf("linked service %s references no secret store for its credentials", ls.Resource.Name)))
		}
	}

	return findings
}

// --- LS-002 / LS-003: linked service usage and hygiene ---

// UnusedLinkedServiceCheck flags linked services nothing depends on.
type UnusedLinkedServiceCheck struct{}

func (c *UnusedLinkedServiceCheck) ID() string         { return "LS-002" }
func (c *UnusedLinkedServiceCheck) Detail() string     { return "linked service is not used by any resource" }
func (c *UnusedLinkedServiceCheck) Severity() Severity { return SeverityMedium }

func (c *UnusedLinkedServiceCheck) Run(_ context.Context, ws *workspace.Workspace, arts *graph.Artifacts) []Finding {
	var findings []Finding

	for _, ls := range ws.LinkedServices {
		if !arts.Referenced(ls.Resource.ID()) {
			findings = append(findings, finding(c, "LinkedService", ls.Resource.Name,
				fmt.Sprintf("linked service %s is not used by any resource", ls.Resource.Name)))
		}
	}

	return findings
}

// LinkedServiceDescriptionCheck flags linked services without a description.
type LinkedServiceDescriptionCheck struct{}

func (c *LinkedServiceDescriptionCheck) ID() string         { return "LS-003" }
func (c *LinkedServiceDescriptionCheck) Detail() string     { return "linked service has no description" }
func (c *LinkedServiceDescriptionCheck) Severity() Severity { return SeverityLow }

func (c *LinkedServiceDescriptionCheck) Run(_ context.Context, ws *workspace.Workspace, _ *graph.Artifacts) []Finding {
	var findings []Finding

	for _, ls := range ws.LinkedServices {
		if ls.Description == "" {
			findings = append(findings, finding(c, "LinkedService", ls.Resource.Name,
				fmt.Sprintf("linked service %s has no description", ls.Resource.Name)))
		}
	}

	return findings
}

// --- DS-001 .. DS-004: dataset usage and hygiene ---

// UnusedDatasetCheck flags datasets nothing depends on.
type UnusedDatasetCheck struct{}

func (c *UnusedDatasetCheck) ID() string         { return "DS-001" }
func (c *UnusedDatasetCheck) Detail() string     { return "dataset is not used by any resource" }
func (c *UnusedDatasetCheck) Severity() Severity { return SeverityMedium }

func (c *UnusedDatasetCheck) Run(_ context.Context, ws *workspace.Workspace, arts *graph.Artifacts) []Finding {
	var findings []Finding

	for _, ds := range ws.Datasets {
		if !arts.Referenced(ds.Resource.ID()) {
			findings = append(findings, finding(c, "Dataset", ds.Resource.Name,
				fmt.Sprintf("dataset %s is not used by any resource", ds.Resource.Name)))
		}
	}

	return findings
}

// DatasetDescriptionCheck flags datasets without a description.
type DatasetDescriptionCheck struct{}

func (c *DatasetDescriptionCheck) ID() string         { return "DS-002" }
func (c *DatasetDescriptionCheck) Detail() string     { return "dataset has no description" }
func (c *DatasetDescriptionCheck) Severity() Severity { return SeverityLow }

func (c *DatasetDescriptionCheck) Run(_ context.Context, ws *workspace.Workspace, _ *graph.Artifacts) []Finding {
	var findings []Finding

	for _, ds := range ws.Datasets {
		if ds.Description == "" {
			findings = append(findings, finding(c, "Dataset", ds.Resource.Name,
				fmt.Sprintf("dataset %s has no description", ds.Resource.Name)))
		}
	}

	return findings
}

// DatasetFolderCheck flags datasets outside any folder.
type DatasetFolderCheck struct{}

func (c *DatasetFolderCheck) ID() string         { return "DS-003" }
func (c *DatasetFolderCheck) Detail() string     { return "dataset is not organized into a folder" }
func (c *DatasetFolderCheck) Severity() Severity { return SeverityMedium }

func (c *DatasetFolderCheck) Run(_ context.Context, ws *workspace.Workspace, _ *graph.Artifacts) []Finding {
	var findings []Finding

	for _, ds := range ws.Datasets {
		if ds.Folder == "" {
			findings = append(findings, finding(c, "Dataset", ds.Resource.Name,
				fmt.Sprintf("dataset %s is not organized into a folder", ds.Resource.Name)))
		}
	}

	return findings
}

// DatasetAnnotationsCheck flags datasets without annotations.
type DatasetAnnotationsCheck struct{}

func (c *DatasetAnnotationsCheck) ID() string         { return "DS-004" }
func (c *DatasetAnnotationsCheck) Detail() string     { return "dataset has no annotations" }
func (c *DatasetAnnotationsCheck) Severity() Severity { return SeverityLow }

func (c *DatasetAnnotationsCheck) Run(_ context.Context, ws *workspace.Workspace, _ *graph.Artifacts) []Finding {
	var findings []Finding

	for _, ds := range ws.Datasets {
		if len(ds.Annotations) == 0 {
			findings = append(findings, finding(c, "Dataset", ds.Resource.Name,
				fmt.Sprintf("dataset %s has no annotations", ds.Resource.Name)))
		}
	}

	return findings
}

// --- TR-001 .. TR-003: trigger usage and hygiene ---

// UnusedTriggerCheck flags triggers that neither wire a pipeline nor are
// referenced by anything.
type UnusedTriggerCheck struct{}

func (c *UnusedTriggerCheck) ID() string         { return "TR-001" }
func (c *UnusedTriggerCheck) Detail() string     { return "trigger does not start any pipeline" }
func (c *UnusedTriggerCheck) Severity() Severity { return SeverityMedium }

func (c *UnusedTriggerCheck) Run(_ context.Context, ws *workspace.Workspace, arts *graph.Artifacts) []Finding {
	var findings []Finding

	for _, tr := range ws.Triggers {
		if !arts.Referenced(tr.Resource.ID()) {
			findings = append(findings, finding(c, "Trigger", tr.Resource.Name,
				fmt.Sprintf("trigger %s does not start any pipeline", tr.Resource.Name)))
		}
	}

	return findings
}

// TriggerDescriptionCheck flags triggers without a description.
type TriggerDescriptionCheck struct{}

func (c *TriggerDescriptionCheck) ID() string         { return "TR-002" }
func (c *TriggerDescriptionCheck) Detail() string     { return "trigger has no description" }
func (c *TriggerDescriptionCheck) Severity() Severity { return SeverityLow }

func (c *TriggerDescriptionCheck) Run(_ context.Context, ws *workspace.Workspace, _ *graph.Artifacts) []Finding {
	var findings []Finding

	for _, tr := range ws.Triggers {
		if tr.Description == "" {
			findings = append(findings, finding(c, "Trigger", tr.Resource.Name,
				fmt.Sprintf("trigger %s has no description", tr.Resource.Name)))
		}
	}

	return findings
}

// TriggerAnnotationsCheck flags triggers without annotations.
type TriggerAnnotationsCheck struct{}

func (c *TriggerAnnotationsCheck) ID() string         { return "TR-003" }
func (c *TriggerAnnotationsCheck) Detail() string     { return "trigger has no annotations" }
func (c *TriggerAnnotationsCheck) Severity() Severity { return SeverityLow }

func (c *TriggerAnnotationsCheck) Run(_ context.Context, ws *workspace.Workspace, _ *graph.Artifacts) []Finding {
	var findings []Finding

	for _, tr := range ws.Triggers {
		if len(tr.Annotations) == 0 {
			findings = append(findings, finding(c, "Trigger", tr.Resource.Name,
				fmt.Sprintf("trigger %s has no annotations", tr.Resource.Name)))
		}
	}

	return findings
}

// activityVisitor is called for each activity across all pipelines.
type activityVisitor func(a workspace.Activity)

// forEachActivity iterates over every activity of every pipeline in
// template order.
func forEachActivity(ws *workspace.Workspace, fn activityVisitor) {
	for _, p := range ws.Pipelines {
		for _, a := range p.Activities {
			fn(a)
		}
	}
}
