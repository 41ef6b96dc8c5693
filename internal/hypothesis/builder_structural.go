// internal/hypothesis/builder_structural.go
package hypothesis

import (
	"sort"

	"github.com/xkilldash9x/triage-cli/api/schemas"
)

// Fixed confidences for the structural checks. A structural inference is
// weaker than a matched error signature, so both sit low in the ranking.
const (
	errorGapConfidence      = 0.35
	asyncOrderingConfidence = 0.25
)

// asyncClusterThreshold is the async function count at which a file is
// considered at risk of ordering bugs.
const asyncClusterThreshold = 3

// buildStructuralHypotheses inspects the structural facts directly and
// proposes hypotheses independent of any error text. Both checks run over
// every analyzed file, not only primary files: a missing error handler is a
// property of the code, not of where the report happened to point.
func buildStructuralHypotheses(em *emitter, analysis schemas.CodeAnalysisContext) []schemas.Hypothesis {
	paths := sortedFilePaths(analysis)

	var out []schemas.Hypothesis
	if h, ok := errorHandlingGap(em, analysis, paths); ok {
		out = append(out, h)
	}
	if h, ok := asyncOrderingRisk(em, analysis, paths); ok {
		out = append(out, h)
	}
	return out
}

// errorHandlingGap flags async functions not covered by any error handling
// block, in files where async functions clearly outnumber handlers.
func errorHandlingGap(em *emitter, analysis schemas.CodeAnalysisContext, paths []string) (schemas.Hypothesis, bool) {
	acc := newFileAccumulator()

	for _, path := range paths {
		fa := analysis.Files[path]

		asyncCount := 0
		for _, fn := range fa.Functions {
			if fn.IsAsync {
				asyncCount++
			}
		}
		if asyncCount <= 2*len(fa.ErrorHandlers) {
			continue
		}

		for _, fn := range fa.Functions {
			if !fn.IsAsync {
				continue
			}
			if !coveredByHandler(fn, fa.ErrorHandlers) {
				acc.add(path, schemas.LineRange{Start: clampLine(fn.StartLine), End: fn.EndLine})
			}
		}
	}

	files := acc.result()
	if len(files) == 0 {
		return schemas.Hypothesis{}, false
	}
	return em.emit(schemas.FailureLogic, describe(schemas.FailureLogic, files), errorGapConfidence, files), true
}

// asyncOrderingRisk emits one race_condition hypothesis covering the first
// three async function ranges of every file with a dense async cluster.
func asyncOrderingRisk(em *emitter, analysis schemas.CodeAnalysisContext, paths []string) (schemas.Hypothesis, bool) {
	acc := newFileAccumulator()

	for _, path := range paths {
		fa := analysis.Files[path]

		var asyncFns []schemas.FunctionInfo
		for _, fn := range fa.Functions {
			if fn.IsAsync {
				asyncFns = append(asyncFns, fn)
			}
		}
		if len(asyncFns) < asyncClusterThreshold {
			continue
		}
		for i, fn := range asyncFns {
			if i == 3 {
				break
			}
			acc.add(path, schemas.LineRange{Start: clampLine(fn.StartLine), End: fn.EndLine})
		}
	}

	files := acc.result()
	if len(files) == 0 {
		return schemas.Hypothesis{}, false
	}
	return em.emit(schemas.FailureRaceCondition, describe(schemas.FailureRaceCondition, files), asyncOrderingConfidence, files), true
}

// coveredByHandler reports whether a function's range sits fully inside
// some error handling block.
func coveredByHandler(fn schemas.FunctionInfo, handlers []schemas.ErrorHandlerBlock) bool {
	for _, h := range handlers {
		if fn.StartLine >= h.StartLine && fn.EndLine <= h.EndLine {
			return true
		}
	}
	return false
}

// sortedFilePaths gives a deterministic iteration order over the analysis
// map; generation output must be identical across calls.
func sortedFilePaths(analysis schemas.CodeAnalysisContext) []string {
	paths := make([]string, 0, len(analysis.Files))
	for p := range analysis.Files {
		paths = append(paths, p)
	}
	sort.Strings(paths)
	return paths
}
