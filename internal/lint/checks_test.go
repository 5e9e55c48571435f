package lint_test

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/p33ves/synlint/internal/graph"
	"github.com/p33ves/synlint/internal/identity"
	"github.com/p33ves/synlint/internal/lint"
	"github.com/p33ves/synlint/internal/workspace"
)

// depRef builds a workspace dependency expression the way workspace
// exports emit them.
func depRef(kindSegment, name string) string {
	return fmt.Sprintf("[concat(variables('workspaceId'), '/%s/%s')]", kindSegment, name)
}

func makeResource(kind identity.Kind, name string, props map[string]interface{}, deps ...string) *workspace.Resource {
	if props == nil {
		props = map[string]interface{}{}
	}

	return &workspace.Resource{
		Kind:       kind,
		Name:       name,
		Properties: props,
		DependsOn:  deps,
	}
}

// analyze runs the full catalog over the given resources and returns the
// result.
func analyze(t *testing.T, resources ...*workspace.Resource) *lint.Result {
	t.Helper()

	ws := workspace.New(resources)
	arts := graph.Build(ws)

	return lint.New(lint.Catalog()...).Run(context.Background(), ws, arts)
}

// ruleFindings filters a result down to one rule.
func ruleFindings(r *lint.Result, ruleID string) []lint.Finding {
	var out []lint.Finding
	for _, f := range r.Findings {
		if f.RuleID == ruleID {
			out = append(out, f)
		}
	}

	return out
}

func findingNames(findings []lint.Finding) []string {
	names := make([]string, 0, len(findings))
	for _, f := range findings {
		names = append(names, f.Name)
	}

	return names
}

func TestNoTriggerPipelineCheck(t *testing.T) {
	r := analyze(t,
		makeResource(identity.KindPipeline, "PL_Wired", nil),
		makeResource(identity.KindPipeline, "PL_Orphan", nil),
		makeResource(identity.KindTrigger, "TR_Nightly", nil, depRef("pipelines", "PL_Wired")),
	)

	findings := ruleFindings(r, "PL-001")
	require.Len(t, findings, 1)
	assert.Equal(t, "PL_Orphan", findings[0].Name)
	assert.Equal(t, "Pipeline", findings[0].Component)
	assert.Equal(t, lint.SeverityMedium, findings[0].Severity)
}

func TestNoTriggerPipelineCheck_PipelineReference(t *testing.T) {
	// A pipeline invoked by another pipeline counts as reachable even
	// without a trigger.
	r := analyze(t,
		makeResource(identity.KindPipeline, "PL_Parent", nil, depRef("pipelines", "PL_Child")),
		makeResource(identity.KindPipeline, "PL_Child", nil),
	)

	assert.Equal(t, []string{"PL_Parent"}, findingNames(ruleFindings(r, "PL-001")))
}

func activityDep(name string, conditions ...string) map[string]interface{} {
	conds := make([]interface{}, 0, len(conditions))
	for _, c := range conditions {
		conds = append(conds, c)
	}

	return map[string]interface{}{
		"activity":             name,
		"dependencyConditions": conds,
	}
}

func TestConflictingChainCheck(t *testing.T) {
	// Copy is required to fail on one branch and, through Archive's own
	// prerequisites, to succeed on another.
	pipeline := makeResource(identity.KindPipeline, "PL_Branching", map[string]interface{}{
		"activities": []interface{}{
			map[string]interface{}{
				"name": "Notify",
				"type": "WebActivity",
				"dependsOn": []interface{}{
					activityDep("Copy", "Failed"),
					activityDep("Validate", "Succeeded"),
				},
			},
			map[string]interface{}{
				"name": "Alert",
				"type": "WebActivity",
				"dependsOn": []interface{}{
					activityDep("Archive", "Failed"),
					activityDep("Audit", "Succeeded"),
				},
			},
			map[string]interface{}{
				"name": "Archive",
				"type": "Copy",
				"dependsOn": []interface{}{
					activityDep("Copy", "Succeeded"),
				},
			},
			map[string]interface{}{
				"name": "Validate",
				"type": "Validation",
			},
			map[string]interface{}{
				"name": "Audit",
				"type": "Lookup",
			},
			map[string]interface{}{
				"name": "Copy",
				"type": "Copy",
			},
		},
	})

	r := analyze(t, pipeline)

	findings := ruleFindings(r, "PL-002")
	require.Len(t, findings, 1)
	assert.Equal(t, "PL_Branching", findings[0].Name)
	assert.Equal(t, lint.SeverityHigh, findings[0].Severity)
	assert.Contains(t, findings[0].Message, "Copy")
}

func TestConflictingChainCheck_CleanPipeline(t *testing.T) {
	pipeline := makeResource(identity.KindPipeline, "PL_Linear", map[string]interface{}{
		"activities": []interface{}{
			map[string]interface{}{
				"name": "Load",
				"type": "Copy",
				"dependsOn": []interface{}{
					activityDep("Extract", "Succeeded"),
				},
			},
			map[string]interface{}{
				"name": "Extract",
				"type": "Copy",
			},
		},
	})

	r := analyze(t, pipeline)

	assert.Empty(t, ruleFindings(r, "PL-002"))
}

func TestHygieneChecks_Pipelines(t *testing.T) {
	documented := makeResource(identity.KindPipeline, "PL_Documented", map[string]interface{}{
		"description": "loads sales facts",
		"folder":      map[string]interface{}{"name": "ingest"},
		"annotations": []interface{}{"prod"},
	})
	bare := makeResource(identity.KindPipeline, "PL_Bare", nil)

	r := analyze(t, documented, bare)

	assert.Equal(t, []string{"PL_Bare"}, findingNames(ruleFindings(r, "PL-003")))
	assert.Equal(t, []string{"PL_Bare"}, findingNames(ruleFindings(r, "PL-004")))
	assert.Equal(t, []string{"PL_Bare"}, findingNames(ruleFindings(r, "PL-005")))
}

func TestHygieneChecks_Datasets(t *testing.T) {
	documented := makeResource(identity.KindDataset, "DS_Documented", map[string]interface{}{
		"description": "raw sales extract",
		"folder":      map[string]interface{}{"name": "raw"},
		"annotations": []interface{}{"prod"},
	})
	bare := makeResource(identity.KindDataset, "DS_Bare", nil)

	r := analyze(t, documented, bare)

	assert.Equal(t, []string{"DS_Bare"}, findingNames(ruleFindings(r, "DS-002")))
	assert.Equal(t, []string{"DS_Bare"}, findingNames(ruleFindings(r, "DS-003")))
	assert.Equal(t, []string{"DS_Bare"}, findingNames(ruleFindings(r, "DS-004")))
}

func TestHygieneChecks_TriggersAndDataFlows(t *testing.T) {
	r := analyze(t,
		makeResource(identity.KindTrigger, "TR_Bare", nil),
		makeResource(identity.KindDataFlow, "DF_Bare", nil),
	)

	assert.Equal(t, []string{"TR_Bare"}, findingNames(ruleFindings(r, "TR-002")))
	assert.Equal(t, []string{"TR_Bare"}, findingNames(ruleFindings(r, "TR-003")))
	assert.Equal(t, []string{"DF_Bare"}, findingNames(ruleFindings(r, "DF-001")))
}

func TestActivityTimeoutCheck(t *testing.T) {
	pipeline := makeResource(identity.KindPipeline, "PL_Jobs", map[string]interface{}{
		"activities": []interface{}{
			map[string]interface{}{
				"name":   "LongCopy",
				"type":   "Copy",
				"policy": map[string]interface{}{"timeout": "0.12:00:00"},
			},
			map[string]interface{}{
				"name":   "QuickCopy",
				"type":   "Copy",
				"policy": map[string]interface{}{"timeout": "01:30:00"},
			},
			map[string]interface{}{
				"name": "NoPolicy",
				"type": "Copy",
			},
		},
	})

	r := analyze(t, pipeline)

	findings := ruleFindings(r, "AC-001")
	require.Len(t, findings, 1)
	assert.Equal(t, "PL_Jobs/LongCopy", findings[0].Name)
	assert.Equal(t, "Activity", findings[0].Component)
	assert.Contains(t, findings[0].Message, "0.12:00:00")
}

func TestActivityDescriptionCheck(t *testing.T) {
	pipeline := makeResource(identity.KindPipeline, "PL_Jobs", map[string]interface{}{
		"activities": []interface{}{
			map[string]interface{}{
				"name":        "Documented",
				"type":        "Copy",
				"description": "copies raw sales",
			},
			map[string]interface{}{
				"name": "Bare",
				"type": "Copy",
			},
		},
	})

	r := analyze(t, pipeline)

	assert.Equal(t, []string{"PL_Jobs/Bare"}, findingNames(ruleFindings(r, "AC-002")))
}

func TestForEachBatchCountCheck(t *testing.T) {
	pipeline := makeResource(identity.KindPipeline, "PL_Loops", map[string]interface{}{
		"activities": []interface{}{
			map[string]interface{}{
				"name":           "ParallelNoBatch",
				"type":           "ForEach",
				"typeProperties": map[string]interface{}{},
			},
			map[string]interface{}{
				"name": "ParallelBatched",
				"type": "ForEach",
				"typeProperties": map[string]interface{}{
					"batchCount": float64(8),
				},
			},
			map[string]interface{}{
				"name": "Sequential",
				"type": "ForEach",
				"typeProperties": map[string]interface{}{
					"isSequential": true,
				},
			},
			map[string]interface{}{
				"name": "NotALoop",
				"type": "Copy",
			},
		},
	})

	r := analyze(t, pipeline)

	findings := ruleFindings(r, "AC-003")
	require.Len(t, findings, 1)
	assert.Equal(t, "PL_Loops/ParallelNoBatch", findings[0].Name)
	assert.Equal(t, lint.SeverityHigh, findings[0].Severity)
}

func linkedService(name, lsType string, typeProps map[string]interface{}) *workspace.Resource {
	props := map[string]interface{}{"type": lsType}
	if typeProps != nil {
		props["typeProperties"] = typeProps
	}

	return makeResource(identity.KindLinkedService, name, props)
}

func TestCredentialHygieneCheck(t *testing.T) {
	tests := []struct {
		name    string
		ls      *workspace.Resource
		flagged bool
	}{
		{
			name: "inline connection string",
			ls: linkedService("LS_Sql", "AzureSqlDatabase", map[string]interface{}{
				"connectionString": "Server=tcp:db;Password=hunter2",
			}),
			flagged: true,
		},
		{
			name: "key vault secret reference",
			ls: linkedService("LS_SqlVault", "AzureSqlDatabase", map[string]interface{}{
				"connectionString": map[string]interface{}{
					"type":       "AzureKeyVaultSecretReference",
					"secretName": "sql-conn",
				},
			}),
			flagged: false,
		},
		{
			name: "secretName nested in alternate auth entry",
			ls: linkedService("LS_Rest", "RestService", map[string]interface{}{
				"url": "https://api.example.com",
				"servicePrincipalKey": map[string]interface{}{
					"secretName": "sp-key",
				},
			}),
			flagged: false,
		},
		{
			name: "anonymous authentication",
			ls: linkedService("LS_Public", "HttpServer", map[string]interface{}{
				"url":                "https://downloads.example.com",
				"authenticationType": "Anonymous",
			}),
			flagged: false,
		},
		{
			name:    "secret store itself",
			ls:      linkedService("LS_Vault", "AzureKeyVault", map[string]interface{}{"baseUrl": "https://kv.vault.azure.net"}),
			flagged: false,
		},
		{
			name: "workspace default service",
			ls: linkedService("syn-WorkspaceDefaultStorage", "AzureBlobFS", map[string]interface{}{
				"url": "https://store.dfs.core.windows.net",
			}),
			flagged: false,
		},
		{
			name:    "no type properties at all",
			ls:      linkedService("LS_Empty", "AzureBlobStorage", nil),
			flagged: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := analyze(t, tt.ls)

			findings := ruleFindings(r, "LS-001")
			if tt.flagged {
				require.Len(t, findings, 1)
				assert.Equal(t, tt.ls.Name, findings[0].Name)
			} else {
				assert.Empty(t, findings)
			}
		})
	}
}

func TestUnusedResourceChecks(t *testing.T) {
	r := analyze(t,
		makeResource(identity.KindPipeline, "PL_Main", nil,
			depRef("linkedServices", "LS_Used"),
			depRef("datasets", "DS_Used"),
		),
		linkedService("LS_Used", "AzureKeyVault", nil),
		linkedService("LS_Orphan", "AzureKeyVault", nil),
		makeResource(identity.KindDataset, "DS_Used", nil),
		makeResource(identity.KindDataset, "DS_Orphan", nil),
		makeResource(identity.KindTrigger, "TR_Wired", nil, depRef("pipelines", "PL_Main")),
		makeResource(identity.KindTrigger, "TR_Orphan", nil),
	)

	assert.Equal(t, []string{"LS_Orphan"}, findingNames(ruleFindings(r, "LS-002")))
	assert.Equal(t, []string{"DS_Orphan"}, findingNames(ruleFindings(r, "DS-001")))
	assert.Equal(t, []string{"TR_Orphan"}, findingNames(ruleFindings(r, "TR-001")))
}

func TestCatalogFindingsFollowTemplateOrder(t *testing.T) {
	r := analyze(t,
		makeResource(identity.KindDataset, "DS_First", nil),
		makeResource(identity.KindDataset, "DS_Second", nil),
	)

	assert.Equal(t, []string{"DS_First", "DS_Second"}, findingNames(ruleFindings(r, "DS-002")))
}

func TestCatalogRunTwiceMatches(t *testing.T) {
	// Mixed workspace exercising most rule families, rebuilt from scratch
	// for each run so the second pass starts from identical input.
	resources := func() []*workspace.Resource {
		return []*workspace.Resource{
			makeResource(identity.KindPipeline, "PL_Main", map[string]interface{}{
				"activities": []interface{}{
					map[string]interface{}{
						"name": "LoopFiles",
						"type": "ForEach",
						"typeProperties": map[string]interface{}{
							"isSequential": false,
						},
					},
				},
			}),
			makeResource(identity.KindDataset, "DS_Raw", nil, depRef("linkedServices", "LS_Blob")),
			linkedService("LS_Blob", "AzureBlobStorage", map[string]interface{}{
				"connectionString": "DefaultEndpointsProtocol=https;AccountKey=abc",
				"containerName":    "raw",
			}),
			makeResource(identity.KindTrigger, "TR_Nightly", nil, depRef("pipelines", "PL_Main")),
		}
	}

	run := func() *lint.Result {
		ws := workspace.New(resources())
		arts := graph.Build(ws)

		return lint.New(lint.Catalog()...).Run(context.Background(), ws, arts)
	}

	r1 := run()
	r2 := run()

	require.NotEmpty(t, r1.Findings)
	assert.Equal(t, r1.Summary, r2.Summary)
	assert.Equal(t, r1.Findings, r2.Findings)
	assert.Equal(t, r1.Totals, r2.Totals)
}
