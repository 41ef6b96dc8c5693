// internal/hypothesis/resolver.go
package hypothesis

import (
	"github.com/xkilldash9x/triage-cli/api/schemas"
)

// relatedFileCap bounds how far analyzer-derived related files may grow the
// candidate list. Stack trace and user signals are never truncated; only
// the low-signal related files stop backfilling once the list reaches this
// size.
const relatedFileCap = 5

// resolvePrimaryFiles merges the three file signals into one ordered,
// deduplicated candidate list. Priority order: stack frames first, then
// user-suspected files, then analyzer-related files.
func resolvePrimaryFiles(frames []schemas.StackFrame, issue schemas.IssueContext, analysis schemas.CodeAnalysisContext) []string {
	var files []string
	seen := make(map[string]struct{})

	add := func(path string) {
		if path == "" {
			return
		}
		if _, dup := seen[path]; dup {
			return
		}
		seen[path] = struct{}{}
		files = append(files, path)
	}

	for _, f := range frames {
		add(f.FilePath)
	}
	for _, f := range issue.SuspectedFiles {
		add(f)
	}
	for _, f := range analysis.RelatedFiles {
		if len(files) >= relatedFileCap {
			break
		}
		add(f)
	}
	return files
}
