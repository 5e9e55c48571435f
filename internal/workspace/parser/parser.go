// Package parser turns an exported workspace template document into a
// workspace.Workspace model.
package parser

import (
	"context"
	"fmt"
	"os"

	sigsyaml "sigs.k8s.io/yaml"

	"github.com/p33ves/synlint/internal/identity"
	"github.com/p33ves/synlint/internal/workspace"
)

// Parser parses raw workspace templates into a Workspace model.
type Parser interface {
	Parse(ctx context.Context, template []byte) (*workspace.Workspace, error)
}

// compile-time interface conformance check.
var _ Parser = (*DefaultParser)(nil)

// DefaultParser is the default implementation of the Parser interface.
type DefaultParser struct{}

// NewParser creates a new DefaultParser.
func NewParser() *DefaultParser {
	return &DefaultParser{}
}

// template mirrors the top level of an exported workspace ARM template.
// sigs.k8s.io/yaml accepts both the JSON export and YAML-authored variants.
type template struct {
	Resources []templateResource `json:"resources"`
}

// templateResource is one raw resource record.
type templateResource struct {
	Type       string                 `json:"type"`
	Name       string                 `json:"name"`
	Properties map[string]interface{} `json:"properties"`
	DependsOn  []string               `json:"dependsOn"`
}

// Parse decodes the template and builds the workspace model. Resources of
// kinds outside the analyzed set, or whose name expression cannot be
// normalized, are skipped; a malformed record never aborts the parse.
func (p *DefaultParser) Parse(_ context.Context, data []byte) (*workspace.Workspace, error) {
	var tpl template
	if err := sigsyaml.Unmarshal(data, &tpl); err != nil {
		return nil, fmt.Errorf("unmarshaling template: %w", err)
	}

	if len(tpl.Resources) == 0 {
		return nil, fmt.Errorf("template declares no resources")
	}

	var resources []*workspace.Resource

	for _, tr := range tpl.Resources {
		kind := identity.ParseTypePath(tr.Type)
		if kind == identity.KindUnknown {
			continue
		}

		name, ok := identity.ParseNameExpression(tr.Name)
		if !ok {
			continue
		}

		resources = append(resources, &workspace.Resource{
			Kind:       kind,
			Name:       name,
			RawType:    tr.Type,
			RawName:    tr.Name,
			Properties: tr.Properties,
			DependsOn:  tr.DependsOn,
		})
	}

	return workspace.New(resources), nil
}

// LoadFile reads and parses a workspace template from disk.
func LoadFile(ctx context.Context, path string) (*workspace.Workspace, error) {
	data, err := os.ReadFile(path) //nolint:gosec // path is user-provided CLI arg, not attacker-controlled
	if err != nil {
		return nil, fmt.Errorf("reading template %s: %w", path, err)
	}

	return NewParser().Parse(ctx, data)
}
