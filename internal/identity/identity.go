// Package identity extracts canonical (kind, name) identities from the raw
// ARM expression strings found in exported Synapse workspace templates.
//
// Two string shapes occur in a workspace export:
//
//   - type paths, e.g. "Microsoft.Synapse/workspaces/pipelines", where the
//     segment after the last path separator names the resource kind;
//   - name and dependency expressions, e.g.
//     "[concat(parameters('workspaceName'), '/PL_Ingest')]", where the
//     resource name sits between the first slash and the closing quote.
//
// Dependency references embed an additional kind segment:
// "[concat(variables('workspaceId'), '/linkedServices/LS_Blob')]".
package identity

import "strings"

// Kind enumerates the workspace resource kinds the analyzer understands.
type Kind int

const (
	// KindUnknown marks resource types outside the analyzed set
	// (notebooks, SQL scripts, integration runtimes, ...).
	KindUnknown Kind = iota
	// KindLinkedService is a connection definition to an external store.
	KindLinkedService
	// KindDataset is a named view over data in a linked service.
	KindDataset
	// KindPipeline is an orchestration graph of activities.
	KindPipeline
	// KindDataFlow is a visually authored transformation.
	KindDataFlow
	// KindTrigger schedules or reacts to events to start pipelines.
	KindTrigger
)

// String returns the display label for the kind.
func (k Kind) String() string {
	switch k {
	case KindLinkedService:
		return "LinkedService"
	case KindDataset:
		return "Dataset"
	case KindPipeline:
		return "Pipeline"
	case KindDataFlow:
		return "DataFlow"
	case KindTrigger:
		return "Trigger"
	default:
		return "Unknown"
	}
}

// kindSegments maps lowercased template path segments to kinds. Both type
// paths and dependency references use these plural segment names.
var kindSegments = map[string]Kind{
	"linkedservices": KindLinkedService,
	"datasets":       KindDataset,
	"pipelines":      KindPipeline,
	"dataflows":      KindDataFlow,
	"triggers":       KindTrigger,
}

// KindFromSegment resolves a template path segment (e.g. "linkedServices")
// to a Kind. Unrecognised segments map to KindUnknown.
func KindFromSegment(segment string) Kind {
	return kindSegments[strings.ToLower(strings.TrimSpace(segment))]
}

// ParseTypePath extracts the kind from a resource type path such as
// "Microsoft.Synapse/workspaces/pipelines": the segment after the last
// path separator. Returns KindUnknown for types outside the analyzed set.
func ParseTypePath(raw string) Kind {
	idx := strings.LastIndex(raw, "/")
	if idx < 0 {
		return KindUnknown
	}

	return KindFromSegment(raw[idx+1:])
}

// quoteOrBracket terminates the embedded path segment of a name expression.
const quoteOrBracket = "'\")]"

// ParseNameExpression extracts the resource name from an ARM name expression
// such as "[concat(parameters('workspaceName'), '/PL_Ingest')]": the
// substring strictly between the first slash and the terminating quote or
// bracket. The boolean is false for malformed input.
func ParseNameExpression(raw string) (string, bool) {
	seg, ok := innerPathSegment(raw)
	if !ok {
		return "", false
	}

	return seg, true
}

// Ref is a canonical resource identity resolved from a raw reference.
type Ref struct {
	Kind Kind
	Name string
}

// Key returns the composite identity "Kind|name" used as a graph node key.
// The pipe delimiter keeps slashes inside resource names unambiguous.
func (r Ref) Key() string {
	return r.Kind.String() + "|" + r.Name
}

// MakeRef builds a Ref from an already-normalized kind and name.
func MakeRef(kind Kind, name string) Ref {
	return Ref{Kind: kind, Name: name}
}

// ParseDependencyRef resolves a dependsOn expression such as
// "[concat(variables('workspaceId'), '/pipelines/PL_Ingest')]" into a Ref.
// The first segment after the slash names the kind, the remainder the
// resource name. Returns false for malformed or unrecognised references;
// callers treat that as "no edge".
func ParseDependencyRef(raw string) (Ref, bool) {
	seg, ok := innerPathSegment(raw)
	if !ok {
		return Ref{}, false
	}

	slash := strings.Index(seg, "/")
	if slash <= 0 || slash == len(seg)-1 {
		return Ref{}, false
	}

	kind := KindFromSegment(seg[:slash])
	if kind == KindUnknown {
		return Ref{}, false
	}

	return Ref{Kind: kind, Name: seg[slash+1:]}, true
}

// innerPathSegment returns the substring strictly between the first slash of
// raw and the terminating quote or bracket that follows it.
func innerPathSegment(raw string) (string, bool) {
	start := strings.Index(raw, "/")
	if start < 0 {
		return "", false
	}

	rest := raw[start+1:]

	end := strings.IndexAny(rest, quoteOrBracket)
	if end <= 0 {
		return "", false
	}

	return rest[:end], true
}
