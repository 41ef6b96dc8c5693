// internal/hypothesis/rank.go
package hypothesis

import (
	"sort"

	"github.com/xkilldash9x/triage-cli/api/schemas"
)

// minBackfill is the result floor: the downstream investigation always
// needs a minimum spread of theories to test, even when the top-ranked
// candidates cluster tightly.
const minBackfill = 3

// dedupKey collapses hypotheses that tell the same story about the same
// place. Composite key instead of string concatenation; equality semantics
// are identical.
type dedupKey struct {
	mode schemas.FailureMode
	file string
}

// rankHypotheses orders, deduplicates, filters, and bounds the candidate
// set. The backfill floor deliberately overrides the confidence filter:
// when fewer than three candidates survive the filter but at least three
// deduplicated candidates exist, the top three are returned regardless of
// minConfidence.
func rankHypotheses(candidates []schemas.Hypothesis, minConfidence float64, maxHypotheses int) []schemas.Hypothesis {
	if len(candidates) == 0 {
		return nil
	}

	sorted := make([]schemas.Hypothesis, len(candidates))
	copy(sorted, candidates)
	// Stable sort keeps emission order for equal confidences.
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Confidence > sorted[j].Confidence
	})

	seen := make(map[dedupKey]struct{})
	deduped := sorted[:0]
	for _, h := range sorted {
		key := dedupKey{mode: h.FailureMode, file: basename(h.AffectedFiles[0].Path)}
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		deduped = append(deduped, h)
	}

	var result []schemas.Hypothesis
	for _, h := range deduped {
		if h.Confidence < minConfidence {
			continue
		}
		result = append(result, h)
		if len(result) == maxHypotheses {
			break
		}
	}

	floor := minBackfill
	if len(deduped) < floor {
		floor = len(deduped)
	}
	if len(result) < floor {
		result = append(result[:0:0], deduped[:floor]...)
	}
	return result
}
