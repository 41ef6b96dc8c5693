// internal/hypothesis/builder_pattern.go
package hypothesis

import (
	"sort"
	"strings"

	"github.com/xkilldash9x/triage-cli/api/schemas"
)

// Confidence model weights for pattern hypotheses. The model is additive
// and capped: corroborating signals raise the score but can never push it
// to certainty.
const (
	keywordWeight    = 0.05
	stackFrameWeight = 0.1
)

// fallbackWindow is the line window used for a frame whose containing
// function is unknown, and for whole-file fallbacks.
const (
	frameWindowBefore = 5
	frameWindowAfter  = 10
	genericWindowEnd  = 50
)

// extraPrimaryFileCap bounds how many primary files without frame coverage
// a single pattern hypothesis may pull in.
const extraPrimaryFileCap = 3

// buildPatternHypotheses emits one hypothesis per matched error pattern,
// anchoring each to the stack frames and the strongest uncovered primary
// files.
func buildPatternHypotheses(em *emitter, matches []PatternMatch, frames []schemas.StackFrame, primary []string, issue schemas.IssueContext, analysis schemas.CodeAnalysisContext) []schemas.Hypothesis {
	errText := errorText(issue)

	var out []schemas.Hypothesis
	for _, match := range matches {
		p := match.Pattern

		confidence := p.ConfidenceBoost + keywordWeight*float64(len(keywordsIn(errText, p.Keywords)))
		if len(frames) > 0 {
			confidence += stackFrameWeight
		}

		acc := newFileAccumulator()

		// Stack frames anchor first: use the containing function's bounds
		// when the analyzer knows them, else a window around the frame.
		for _, frame := range frames {
			if fn, ok := containingFunction(analysis, frame.FilePath, frame.LineNumber); ok {
				acc.add(frame.FilePath, schemas.LineRange{Start: clampLine(fn.StartLine), End: fn.EndLine})
			} else {
				acc.add(frame.FilePath, schemas.LineRange{
					Start: clampLine(frame.LineNumber - frameWindowBefore),
					End:   frame.LineNumber + frameWindowAfter,
				})
			}
		}

		// Then primary files the frames did not cover, using failure-mode
		// specific heuristics over the structural facts.
		added := 0
		for _, path := range primary {
			if added >= extraPrimaryFileCap {
				break
			}
			if acc.has(path) {
				continue
			}
			ranges := heuristicRanges(p.FailureMode, analysis.Files[path])
			if len(ranges) == 0 {
				continue
			}
			acc.add(path, ranges...)
			added++
		}

		files := acc.result()
		if len(files) == 0 {
			files = fallbackAffectedFiles(primary, analysis)
		}
		if len(files) == 0 {
			// Nothing to anchor the theory to; a hypothesis naming no file
			// is useless downstream.
			continue
		}

		out = append(out, em.emit(p.FailureMode, describe(p.FailureMode, files), confidence, files))
	}
	return out
}

// containingFunction finds the analyzed function whose bounds contain the
// given line. Paths are matched exactly first, then by basename, since
// stack traces often carry absolute paths while the analyzer works with
// repository-relative ones.
func containingFunction(analysis schemas.CodeAnalysisContext, path string, line int) (schemas.FunctionInfo, bool) {
	fa, ok := analysis.Files[path]
	if !ok {
		base := basename(path)
		for p, candidate := range analysis.Files {
			if basename(p) == base {
				fa = candidate
				ok = true
				break
			}
		}
	}
	if !ok {
		return schemas.FunctionInfo{}, false
	}
	for _, fn := range fa.Functions {
		if line >= fn.StartLine && line <= fn.EndLine {
			return fn, true
		}
	}
	return schemas.FunctionInfo{}, false
}

// heuristicRanges proposes candidate line ranges in a file for a given
// failure mode. The switch is exhaustive over the closed FailureMode set.
func heuristicRanges(mode schemas.FailureMode, fa schemas.FileAnalysis) []schemas.LineRange {
	var ranges []schemas.LineRange

	switch mode {
	case schemas.FailureNullReference:
		// Any function could dereference a null; offer every known one.
		for _, fn := range fa.Functions {
			ranges = append(ranges, schemas.LineRange{Start: clampLine(fn.StartLine), End: fn.EndLine})
		}
	case schemas.FailureRaceCondition:
		for _, fn := range fa.Functions {
			if fn.IsAsync {
				ranges = append(ranges, schemas.LineRange{Start: clampLine(fn.StartLine), End: fn.EndLine})
			}
		}
	case schemas.FailureTypeError:
		for _, fn := range fa.Functions {
			if len(fn.Params) >= 1 {
				ranges = append(ranges, schemas.LineRange{Start: clampLine(fn.StartLine), End: fn.EndLine})
			}
		}
	case schemas.FailureCrossService:
		for _, h := range fa.ErrorHandlers {
			ranges = append(ranges, schemas.LineRange{Start: clampLine(h.StartLine), End: h.EndLine})
		}
	case schemas.FailureLogic, schemas.FailureOther:
		for i, fn := range fa.Functions {
			if i == 3 {
				break
			}
			ranges = append(ranges, schemas.LineRange{Start: clampLine(fn.StartLine), End: fn.EndLine})
		}
	}
	return ranges
}

// fallbackAffectedFiles picks a last-resort anchor when neither frames nor
// structural heuristics produced one: the first primary file, else the
// first analyzed file in sorted path order.
func fallbackAffectedFiles(primary []string, analysis schemas.CodeAnalysisContext) []schemas.AffectedFile {
	window := []schemas.LineRange{{Start: 1, End: genericWindowEnd}}
	if len(primary) > 0 {
		return []schemas.AffectedFile{{Path: primary[0], LineRanges: window}}
	}
	if len(analysis.Files) > 0 {
		paths := make([]string, 0, len(analysis.Files))
		for p := range analysis.Files {
			paths = append(paths, p)
		}
		sort.Strings(paths)
		return []schemas.AffectedFile{{Path: paths[0], LineRanges: window}}
	}
	return nil
}

func basename(path string) string {
	if i := strings.LastIndexAny(path, `/\`); i >= 0 {
		return path[i+1:]
	}
	return path
}
