package workspace

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Activity is one step inside a pipeline's execution graph. Activities are
// owned by their pipeline and are not standalone graph nodes.
type Activity struct {
	Name         string
	Type         string
	PipelineName string
	Description  string

	// DependsOn lists the conditional prerequisites on other activities
	// of the same pipeline, in declaration order.
	DependsOn []ActivityDependency

	// Timeout is the raw policy.timeout timespan (e.g. "0.12:00:00"),
	// empty when the activity declares none.
	Timeout string

	// TypeProperties is the opaque activity-specific property bag.
	TypeProperties map[string]interface{}
}

// ActivityDependency gates an activity on the outcome of another activity.
type ActivityDependency struct {
	// Activity is the upstream activity name.
	Activity string

	// Conditions holds the satisfying outcomes: Succeeded, Failed,
	// Skipped, Completed.
	Conditions []string
}

// Dependency outcome conditions.
const (
	ConditionSucceeded = "Succeeded"
	ConditionFailed    = "Failed"
	ConditionSkipped   = "Skipped"
	ConditionCompleted = "Completed"
)

// HasCondition reports whether the dependency lists the given condition.
func (d ActivityDependency) HasCondition(cond string) bool {
	for _, c := range d.Conditions {
		if c == cond {
			return true
		}
	}

	return false
}

// newActivity decodes one activity record from a pipeline's activities list.
func newActivity(m map[string]interface{}, pipelineName string) Activity {
	a := Activity{
		Name:           getString(m, "name"),
		Type:           getString(m, "type"),
		PipelineName:   pipelineName,
		Description:    getString(m, "description"),
		Timeout:        getString(getMap(m, "policy"), "timeout"),
		TypeProperties: getMap(m, "typeProperties"),
	}

	for _, raw := range getSlice(m, "dependsOn") {
		dm, ok := raw.(map[string]interface{})
		if !ok {
			continue
		}

		dep := ActivityDependency{Activity: getString(dm, "activity")}
		for _, c := range getSlice(dm, "dependencyConditions") {
			if cs, ok := c.(string); ok {
				dep.Conditions = append(dep.Conditions, cs)
			}
		}

		a.DependsOn = append(a.DependsOn, dep)
	}

	return a
}

// IsForEach reports whether the activity is a ForEach loop.
func (a Activity) IsForEach() bool {
	return a.Type == "ForEach"
}

// IsSequential reports the ForEach isSequential flag; absent defaults to
// false (parallel execution).
func (a Activity) IsSequential() bool {
	v, _ := a.TypeProperties["isSequential"].(bool)
	return v
}

// HasBatchCount reports whether the activity declares a batchCount.
func (a Activity) HasBatchCount() bool {
	_, ok := a.TypeProperties["batchCount"]
	return ok
}

// TimeoutDuration parses the activity's timeout timespan. The boolean is
// false when no timeout is declared or the value cannot be parsed.
func (a Activity) TimeoutDuration() (time.Duration, bool) {
	if a.Timeout == "" {
		return 0, false
	}

	d, err := ParseTimespan(a.Timeout)
	if err != nil {
		return 0, false
	}

	return d, true
}

// ParseTimespan parses the .NET timespan format used by activity policies:
// "d.hh:mm:ss" with an optional day component ("7.00:00:00", "0.12:00:00",
// "02:30:00").
func ParseTimespan(s string) (time.Duration, error) {
	days := 0
	rest := s

	if dot := strings.Index(s, "."); dot >= 0 {
		d, err := strconv.Atoi(s[:dot])
		if err != nil || d < 0 {
			return 0, fmt.Errorf("invalid timespan %q: bad day component", s)
		}

		days = d
		rest = s[dot+1:]
	}

	parts := strings.Split(rest, ":")
	if len(parts) != 3 {
		return 0, fmt.Errorf("invalid timespan %q: want hh:mm:ss", s)
	}

	nums := make([]int, 3)
	for i, p := range parts {
		n, err := strconv.Atoi(p)
		if err != nil || n < 0 {
			return 0, fmt.Errorf("invalid timespan %q: bad component %q", s, p)
		}

		nums[i] = n
	}

	return time.Duration(days)*24*time.Hour +
		time.Duration(nums[0])*time.Hour +
		time.Duration(nums[1])*time.Minute +
		time.Duration(nums[2])*time.Second, nil
}
