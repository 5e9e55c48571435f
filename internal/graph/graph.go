// Package graph builds the workspace dependency graph and derives the sets
// the lint rules consume: all declared identities, all referenced
// identities, the redundant remainder, and per-pipeline activity-chain
// conflicts.
package graph

import (
	"github.com/p33ves/synlint/internal/identity"
	"github.com/p33ves/synlint/internal/workspace"
)

// Artifacts holds the graph-derived sets for one workspace. Built once and
// read-only afterwards.
type Artifacts struct {
	// Nodes contains the composite identity key of every resource.
	Nodes map[string]bool

	// EdgeTargets contains every identity referenced as a dependency
	// target, plus triggers that declare any wiring of their own
	// (a wired trigger is a graph root, not a leaf).
	EdgeTargets map[string]bool

	// Redundant partitions Nodes − EdgeTargets by kind, preserving
	// template order within each kind.
	Redundant map[identity.Kind][]string

	// Conflicts maps a pipeline name to the activity names caught by the
	// two-hop failed/succeeded contradiction heuristic.
	Conflicts map[string][]string
}

// Build derives the graph artifacts in one pass over the resources and
// their dependency lists, then one pass per pipeline for conflicts.
func Build(ws *workspace.Workspace) *Artifacts {
	a := &Artifacts{
		Nodes:       make(map[string]bool, len(ws.Resources)),
		EdgeTargets: make(map[string]bool),
		Redundant:   make(map[identity.Kind][]string),
		Conflicts:   make(map[string][]string),
	}

	for _, res := range ws.Resources {
		a.Nodes[res.ID().Key()] = true

		for _, raw := range res.DependsOn {
			// Malformed references resolve to no edge, never an abort.
			ref, ok := identity.ParseDependencyRef(raw)
			if !ok {
				continue
			}

			a.EdgeTargets[ref.Key()] = true
		}

		// A trigger with any wiring is in use even though nothing
		// formally depends on it.
		if res.Kind == identity.KindTrigger && len(res.DependsOn) > 0 {
			a.EdgeTargets[res.ID().Key()] = true
		}
	}

	for _, res := range ws.Resources {
		if !a.EdgeTargets[res.ID().Key()] {
			a.Redundant[res.Kind] = append(a.Redundant[res.Kind], res.Name)
		}
	}

	for _, p := range ws.Pipelines {
		if conflicts := FindConflicts(p); len(conflicts) > 0 {
			a.Conflicts[p.Resource.Name] = conflicts
		}
	}

	return a
}

// Referenced reports whether the identity appears as a dependency target.
func (a *Artifacts) Referenced(ref identity.Ref) bool {
	return a.EdgeTargets[ref.Key()]
}
