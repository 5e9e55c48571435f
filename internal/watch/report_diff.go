package watch

import (
	"fmt"

	"github.com/pmezard/go-difflib/difflib"
)

// DiffReports returns a unified diff between two rendered reports, or an
// empty string when they are identical.
func DiffReports(prev, curr string) (string, error) {
	if prev == curr {
		return "", nil
	}

	diff := difflib.UnifiedDiff{
		A:        difflib.SplitLines(prev),
		B:        difflib.SplitLines(curr),
		FromFile: "previous",
		ToFile:   "current",
		Context:  2,
	}

	text, err := difflib.GetUnifiedDiffString(diff)
	if err != nil {
		return "", fmt.Errorf("building report diff: %w", err)
	}

	return text, nil
}
