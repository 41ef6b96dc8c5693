// internal/hypothesis/builder_flaky.go
package hypothesis

import (
	"github.com/xkilldash9x/triage-cli/api/schemas"
)

// flakyConfidence deliberately outranks the structural async-ordering
// check: an explicit flakiness report is stronger direct evidence than a
// structural inference.
const flakyConfidence = 0.5

// buildFlakyHypothesis injects one timing/race hypothesis when the caller
// marked the issue as intermittent. Async function ranges within primary
// files are preferred; with none known it falls back to generic windows
// over the first two primary files (or analyzed files, as a last resort).
func buildFlakyHypothesis(em *emitter, issue schemas.IssueContext, primary []string, analysis schemas.CodeAnalysisContext) []schemas.Hypothesis {
	if !issue.IsFlaky {
		return nil
	}

	acc := newFileAccumulator()

	ranges := 0
	for _, path := range primary {
		if ranges >= 3 {
			break
		}
		for _, fn := range analysis.Files[path].Functions {
			if !fn.IsAsync {
				continue
			}
			acc.add(path, schemas.LineRange{Start: clampLine(fn.StartLine), End: fn.EndLine})
			ranges++
			if ranges >= 3 {
				break
			}
		}
	}

	if len(acc.result()) == 0 {
		window := schemas.LineRange{Start: 1, End: genericWindowEnd}
		candidates := primary
		if len(candidates) == 0 {
			candidates = sortedFilePaths(analysis)
		}
		for i, path := range candidates {
			if i == 2 {
				break
			}
			acc.add(path, window)
		}
	}

	files := acc.result()
	if len(files) == 0 {
		return nil
	}
	return []schemas.Hypothesis{
		em.emit(schemas.FailureRaceCondition, describe(schemas.FailureRaceCondition, files), flakyConfidence, files),
	}
}
