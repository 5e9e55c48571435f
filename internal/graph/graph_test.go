package graph_test

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/p33ves/synlint/internal/graph"
	"github.com/p33ves/synlint/internal/identity"
	"github.com/p33ves/synlint/internal/workspace"
)

// depRef builds a workspace dependency expression the way workspace
// exports emit them.
func depRef(kindSegment, name string) string {
	return fmt.Sprintf("[concat(variables('workspaceId'), '/%s/%s')]", kindSegment, name)
}

func makeResource(kind identity.Kind, name string, deps ...string) *workspace.Resource {
	return &workspace.Resource{
		Kind:       kind,
		Name:       name,
		Properties: map[string]interface{}{},
		DependsOn:  deps,
	}
}

func TestBuild_NodesAndEdges(t *testing.T) {
	ws := workspace.New([]*workspace.Resource{
		makeResource(identity.KindPipeline, "PL_Ingest", depRef("linkedServices", "LS_Blob"), depRef("datasets", "DS_Sales")),
		makeResource(identity.KindLinkedService, "LS_Blob"),
		makeResource(identity.KindDataset, "DS_Sales"),
		makeResource(identity.KindTrigger, "TR_Nightly", depRef("pipelines", "PL_Ingest")),
	})

	arts := graph.Build(ws)

	assert.Len(t, arts.Nodes, 4)

	assert.True(t, arts.Referenced(identity.MakeRef(identity.KindLinkedService, "LS_Blob")))
	assert.True(t, arts.Referenced(identity.MakeRef(identity.KindDataset, "DS_Sales")))
	assert.True(t, arts.Referenced(identity.MakeRef(identity.KindPipeline, "PL_Ingest")))

	// A wired trigger counts as in use even though nothing depends on it.
	assert.True(t, arts.Referenced(identity.MakeRef(identity.KindTrigger, "TR_Nightly")))

	assert.Empty(t, arts.Redundant)
}

func TestBuild_UnwiredTriggerIsRedundant(t *testing.T) {
	ws := workspace.New([]*workspace.Resource{
		makeResource(identity.KindTrigger, "TR_Orphan"),
	})

	arts := graph.Build(ws)

	assert.False(t, arts.Referenced(identity.MakeRef(identity.KindTrigger, "TR_Orphan")))
	assert.Equal(t, []string{"TR_Orphan"}, arts.Redundant[identity.KindTrigger])
}

func TestBuild_MalformedReferenceCreatesNoEdge(t *testing.T) {
	ws := workspace.New([]*workspace.Resource{
		makeResource(identity.KindPipeline, "PL_Ingest",
			"[variables('workspaceId')]",
			depRef("linkedServices", "LS_Blob"),
		),
		makeResource(identity.KindLinkedService, "LS_Blob"),
	})

	arts := graph.Build(ws)

	// The malformed entry is skipped, the well-formed one is kept.
	assert.True(t, arts.Referenced(identity.MakeRef(identity.KindLinkedService, "LS_Blob")))
	assert.Len(t, arts.EdgeTargets, 1)
}

// Every node is either referenced or redundant, never both.
func TestBuild_RedundancyPartition(t *testing.T) {
	ws := workspace.New([]*workspace.Resource{
		makeResource(identity.KindPipeline, "PL_A", depRef("datasets", "DS_Used")),
		makeResource(identity.KindPipeline, "PL_B"),
		makeResource(identity.KindDataset, "DS_Used"),
		makeResource(identity.KindDataset, "DS_Unused"),
		makeResource(identity.KindLinkedService, "LS_Unused"),
		makeResource(identity.KindTrigger, "TR_A", depRef("pipelines", "PL_A")),
	})

	arts := graph.Build(ws)

	redundantTotal := 0
	for kind, names := range arts.Redundant {
		redundantTotal += len(names)

		for _, name := range names {
			key := identity.MakeRef(kind, name).Key()
			assert.True(t, arts.Nodes[key], "redundant %s must be a node", key)
			assert.False(t, arts.EdgeTargets[key], "redundant %s must not be referenced", key)
		}
	}

	referencedNodes := 0
	for key := range arts.Nodes {
		if arts.EdgeTargets[key] {
			referencedNodes++
		}
	}

	assert.Equal(t, len(arts.Nodes), referencedNodes+redundantTotal)

	require.Equal(t, []string{"PL_B"}, arts.Redundant[identity.KindPipeline])
	require.Equal(t, []string{"DS_Unused"}, arts.Redundant[identity.KindDataset])
	require.Equal(t, []string{"LS_Unused"}, arts.Redundant[identity.KindLinkedService])
}

func TestBuild_RedundantPreservesTemplateOrder(t *testing.T) {
	ws := workspace.New([]*workspace.Resource{
		makeResource(identity.KindDataset, "DS_C"),
		makeResource(identity.KindDataset, "DS_A"),
		makeResource(identity.KindDataset, "DS_B"),
	})

	arts := graph.Build(ws)

	assert.Equal(t, []string{"DS_C", "DS_A", "DS_B"}, arts.Redundant[identity.KindDataset])
}
