// Package workspace provides the in-memory model of an exported Synapse
// workspace template: the raw resource records plus typed per-kind views
// over their property bags.
package workspace

import (
	"github.com/p33ves/synlint/internal/identity"
)

// Resource is one top-level declared entity of the workspace template.
// Identity is (Kind, Name), unique within a manifest.
type Resource struct {
	// Kind is the normalized resource kind.
	Kind identity.Kind

	// Name is the normalized resource name.
	Name string

	// RawType is the original type path from the template.
	RawType string

	// RawName is the original ARM name expression from the template.
	RawName string

	// Properties is the opaque property bag; shape varies by Kind.
	Properties map[string]interface{}

	// DependsOn lists the raw dependency reference expressions, in
	// declaration order.
	DependsOn []string
}

// ID returns the canonical identity of the resource.
func (r *Resource) ID() identity.Ref {
	return identity.MakeRef(r.Kind, r.Name)
}

// QualifiedName returns "Kind/name" for display purposes.
func (r *Resource) QualifiedName() string {
	return r.Kind.String() + "/" + r.Name
}

// Workspace is the fully built model of one template. It is constructed
// once per run and read-only afterwards.
type Workspace struct {
	// Resources holds every analyzed resource in template order.
	Resources []*Resource

	// Typed views, each in template order.
	Pipelines      []*Pipeline
	DataFlows      []*DataFlow
	Datasets       []*Dataset
	LinkedServices []*LinkedService
	Triggers       []*Trigger
}

// Pipeline is the typed view over a pipeline resource.
type Pipeline struct {
	Resource    *Resource
	Description string
	Folder      string
	Annotations []interface{}
	Activities  []Activity
}

// DataFlow is the typed view over a data flow resource.
type DataFlow struct {
	Resource    *Resource
	Description string
}

// Dataset is the typed view over a dataset resource.
type Dataset struct {
	Resource    *Resource
	Description string
	Folder      string
	Annotations []interface{}
}

// LinkedService is the typed view over a linked service resource.
type LinkedService struct {
	Resource    *Resource
	Type        string
	Description string

	// TypeProperties is the type-property bag. A service may expose more
	// than one property group (e.g. alternate auth modes), so hygiene
	// checks must scan every entry.
	TypeProperties map[string]interface{}
}

// Trigger is the typed view over a trigger resource.
type Trigger struct {
	Resource    *Resource
	Description string
	Annotations []interface{}
}

// New builds a Workspace from raw resources, decoding the per-kind typed
// views. Resources of unknown kinds are kept out by the parser, so every
// resource here lands in exactly one view.
func New(resources []*Resource) *Workspace {
	ws := &Workspace{Resources: resources}

	for _, res := range resources {
		switch res.Kind {
		case identity.KindPipeline:
			ws.Pipelines = append(ws.Pipelines, newPipeline(res))
		case identity.KindDataFlow:
			ws.DataFlows = append(ws.DataFlows, &DataFlow{
				Resource:    res,
				Description: getString(res.Properties, "description"),
			})
		case identity.KindDataset:
			ws.Datasets = append(ws.Datasets, &Dataset{
				Resource:    res,
				Description: getString(res.Properties, "description"),
				Folder:      getString(getMap(res.Properties, "folder"), "name"),
				Annotations: getSlice(res.Properties, "annotations"),
			})
		case identity.KindLinkedService:
			ws.LinkedServices = append(ws.LinkedServices, &LinkedService{
				Resource:       res,
				Type:           getString(res.Properties, "type"),
				Description:    getString(res.Properties, "description"),
				TypeProperties: getMap(res.Properties, "typeProperties"),
			})
		case identity.KindTrigger:
			ws.Triggers = append(ws.Triggers, &Trigger{
				Resource:    res,
				Description: getString(res.Properties, "description"),
				Annotations: getSlice(res.Properties, "annotations"),
			})
		}
	}

	return ws
}

// newPipeline decodes a pipeline resource including its activity graph.
func newPipeline(res *Resource) *Pipeline {
	p := &Pipeline{
		Resource:    res,
		Description: getString(res.Properties, "description"),
		Folder:      getString(getMap(res.Properties, "folder"), "name"),
		Annotations: getSlice(res.Properties, "annotations"),
	}

	for _, raw := range getSlice(res.Properties, "activities") {
		am, ok := raw.(map[string]interface{})
		if !ok {
			continue
		}

		p.Activities = append(p.Activities, newActivity(am, res.Name))
	}

	return p
}

// --- property bag navigation helpers ---

func getString(m map[string]interface{}, key string) string {
	s, _ := m[key].(string)
	return s
}

func getMap(m map[string]interface{}, key string) map[string]interface{} {
	v, _ := m[key].(map[string]interface{})
	return v
}

func getSlice(m map[string]interface{}, key string) []interface{} {
	v, _ := m[key].([]interface{})
	return v
}
