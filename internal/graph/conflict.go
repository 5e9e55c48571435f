package graph

import "github.com/p33ves/synlint/internal/workspace"

// FindConflicts detects contradictory success/failure prerequisite chains
// among the activities of a single pipeline.
//
// An activity name X is a failure trigger when some activity gated by a
// combined condition (more than one dependency entry) requires X to have
// Failed. X conflicts when X's own dependencies require some activity to
// have Succeeded that is itself a failure trigger: the same upstream
// execution would have to both fail and succeed to unblock both branches.
//
// This is a bounded two-hop heuristic over activity names; it does not
// enumerate longer paths.
func FindConflicts(p *workspace.Pipeline) []string {
	var failureTriggers []string

	inFailureTriggers := make(map[string]bool)

	for _, act := range p.Activities {
		if len(act.DependsOn) <= 1 {
			continue
		}

		for _, dep := range act.DependsOn {
			if !dep.HasCondition(workspace.ConditionFailed) {
				continue
			}

			if !inFailureTriggers[dep.Activity] {
				inFailureTriggers[dep.Activity] = true
				failureTriggers = append(failureTriggers, dep.Activity)
			}
		}
	}

	if len(failureTriggers) == 0 {
		return nil
	}

	byName := make(map[string]workspace.Activity, len(p.Activities))
	for _, act := range p.Activities {
		byName[act.Name] = act
	}

	successCandidates := make(map[string]bool)

	for _, name := range failureTriggers {
		act, ok := byName[name]
		if !ok {
			continue
		}

		for _, dep := range act.DependsOn {
			if dep.HasCondition(workspace.ConditionSucceeded) {
				successCandidates[dep.Activity] = true
			}
		}
	}

	var conflicts []string

	for _, name := range failureTriggers {
		if successCandidates[name] {
			conflicts = append(conflicts, name)
		}
	}

	return conflicts
}
