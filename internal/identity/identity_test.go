package identity_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/p33ves/synlint/internal/identity"
)

func TestKind_String(t *testing.T) {
	tests := []struct {
		kind identity.Kind
		want string
	}{
		{identity.KindLinkedService, "LinkedService"},
		{identity.KindDataset, "Dataset"},
		{identity.KindPipeline, "Pipeline"},
		{identity.KindDataFlow, "DataFlow"},
		{identity.KindTrigger, "Trigger"},
		{identity.KindUnknown, "Unknown"},
	}
	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.kind.String())
		})
	}
}

func TestParseTypePath(t *testing.T) {
	tests := []struct {
		raw  string
		want identity.Kind
	}{
		{"Microsoft.Synapse/workspaces/pipelines", identity.KindPipeline},
		{"Microsoft.Synapse/workspaces/linkedServices", identity.KindLinkedService},
		{"Microsoft.Synapse/workspaces/datasets", identity.KindDataset},
		{"Microsoft.Synapse/workspaces/dataflows", identity.KindDataFlow},
		{"Microsoft.Synapse/workspaces/triggers", identity.KindTrigger},
		{"Microsoft.Synapse/workspaces/notebooks", identity.KindUnknown},
		{"Microsoft.Synapse/workspaces", identity.KindUnknown},
		{"noslash", identity.KindUnknown},
		{"", identity.KindUnknown},
	}
	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			assert.Equal(t, tt.want, identity.ParseTypePath(tt.raw))
		})
	}
}

func TestParseNameExpression(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want string
		ok   bool
	}{
		{
			"concat expression",
			"[concat(parameters('workspaceName'), '/PL_Ingest')]",
			"PL_Ingest",
			true,
		},
		{
			"double quoted",
			`[concat(parameters('workspaceName'), "/DS_Sales")]`,
			"DS_Sales",
			true,
		},
		{
			"no slash",
			"[parameters('workspaceName')]",
			"",
			false,
		},
		{
			"slash immediately terminated",
			"[concat(parameters('workspaceName'), '/')]",
			"",
			false,
		},
		{"empty", "", "", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := identity.ParseNameExpression(tt.raw)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseDependencyRef(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want identity.Ref
		ok   bool
	}{
		{
			"linked service",
			"[concat(variables('workspaceId'), '/linkedServices/LS_Blob')]",
			identity.Ref{Kind: identity.KindLinkedService, Name: "LS_Blob"},
			true,
		},
		{
			"pipeline",
			"[concat(variables('workspaceId'), '/pipelines/PL_Ingest')]",
			identity.Ref{Kind: identity.KindPipeline, Name: "PL_Ingest"},
			true,
		},
		{
			"case-insensitive kind segment",
			"[concat(variables('workspaceId'), '/Datasets/DS_Sales')]",
			identity.Ref{Kind: identity.KindDataset, Name: "DS_Sales"},
			true,
		},
		{
			"unknown kind segment",
			"[concat(variables('workspaceId'), '/notebooks/NB_Explore')]",
			identity.Ref{},
			false,
		},
		{
			"missing kind segment",
			"[concat(variables('workspaceId'), '/LS_Blob')]",
			identity.Ref{},
			false,
		},
		{"no slash at all", "[variables('workspaceId')]", identity.Ref{}, false},
		{"empty", "", identity.Ref{}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := identity.ParseDependencyRef(tt.raw)
			require.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestRef_Key(t *testing.T) {
	r := identity.MakeRef(identity.KindPipeline, "PL_Ingest")
	assert.Equal(t, "Pipeline|PL_Ingest", r.Key())
}
