// internal/hypothesis/rank_test.go
package hypothesis

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xkilldash9x/triage-cli/api/schemas"
)

func hyp(id string, mode schemas.FailureMode, confidence float64, path string) schemas.Hypothesis {
	return schemas.Hypothesis{
		ID:          id,
		Confidence:  confidence,
		FailureMode: mode,
		Status:      schemas.StatusPending,
		AffectedFiles: []schemas.AffectedFile{
			{Path: path, LineRanges: []schemas.LineRange{{Start: 1, End: 10}}},
		},
	}
}

func TestRankHypothesesOrdersByConfidenceDescending(t *testing.T) {
	t.Parallel()

	candidates := []schemas.Hypothesis{
		hyp("HYP_1", schemas.FailureLogic, 0.2, "a.js"),
		hyp("HYP_2", schemas.FailureNullReference, 0.5, "b.js"),
		hyp("HYP_3", schemas.FailureCrossService, 0.4, "c.js"),
	}

	got := rankHypotheses(candidates, 0.1, 5)
	require.Len(t, got, 3)
	assert.Equal(t, "HYP_2", got[0].ID)
	assert.Equal(t, "HYP_3", got[1].ID)
	assert.Equal(t, "HYP_1", got[2].ID)
}

func TestRankHypothesesStableForEqualConfidence(t *testing.T) {
	t.Parallel()

	candidates := []schemas.Hypothesis{
		hyp("HYP_1", schemas.FailureLogic, 0.3, "a.js"),
		hyp("HYP_2", schemas.FailureNullReference, 0.3, "b.js"),
		hyp("HYP_3", schemas.FailureTypeError, 0.3, "c.js"),
	}

	got := rankHypotheses(candidates, 0.1, 5)
	require.Len(t, got, 3)
	// Emission order is preserved among ties.
	assert.Equal(t, []string{"HYP_1", "HYP_2", "HYP_3"}, []string{got[0].ID, got[1].ID, got[2].ID})
}

func TestRankHypothesesDeduplicatesOnModeAndBasename(t *testing.T) {
	t.Parallel()

	candidates := []schemas.Hypothesis{
		hyp("HYP_1", schemas.FailureNullReference, 0.5, "src/utils.js"),
		hyp("HYP_2", schemas.FailureNullReference, 0.4, "lib/utils.js"), // same basename, same mode
		hyp("HYP_3", schemas.FailureTypeError, 0.3, "src/utils.js"),     // same file, different mode
	}

	got := rankHypotheses(candidates, 0.1, 5)
	require.Len(t, got, 2)
	assert.Equal(t, "HYP_1", got[0].ID, "higher-confidence duplicate survives")
	assert.Equal(t, "HYP_3", got[1].ID)
}

func TestRankHypothesesAppliesFilterAndCap(t *testing.T) {
	t.Parallel()

	candidates := []schemas.Hypothesis{
		hyp("HYP_1", schemas.FailureNullReference, 0.9, "a.js"),
		hyp("HYP_2", schemas.FailureTypeError, 0.8, "b.js"),
		hyp("HYP_3", schemas.FailureCrossService, 0.7, "c.js"),
		hyp("HYP_4", schemas.FailureRaceCondition, 0.6, "d.js"),
		hyp("HYP_5", schemas.FailureLogic, 0.5, "e.js"),
		hyp("HYP_6", schemas.FailureLogic, 0.4, "f.js"),
		hyp("HYP_7", schemas.FailureLogic, 0.05, "g.js"),
	}

	got := rankHypotheses(candidates, 0.1, 5)
	require.Len(t, got, 5, "capped at maxHypotheses")
	assert.Equal(t, "HYP_1", got[0].ID)
	assert.Equal(t, "HYP_5", got[4].ID)
}

func TestRankHypothesesBackfillOverridesFilter(t *testing.T) {
	t.Parallel()

	candidates := []schemas.Hypothesis{
		hyp("HYP_1", schemas.FailureNullReference, 0.5, "a.js"),
		hyp("HYP_2", schemas.FailureTypeError, 0.05, "b.js"),
		hyp("HYP_3", schemas.FailureCrossService, 0.04, "c.js"),
		hyp("HYP_4", schemas.FailureLogic, 0.03, "d.js"),
	}

	got := rankHypotheses(candidates, 0.1, 5)
	require.Len(t, got, 3, "backfilled to the floor despite the filter")
	assert.Equal(t, "HYP_1", got[0].ID)
	assert.Equal(t, "HYP_2", got[1].ID)
	assert.Equal(t, "HYP_3", got[2].ID)
}

func TestRankHypothesesFloorBoundedByDedupedCount(t *testing.T) {
	t.Parallel()

	candidates := []schemas.Hypothesis{
		hyp("HYP_1", schemas.FailureLogic, 0.02, "a.js"),
		hyp("HYP_2", schemas.FailureTypeError, 0.01, "b.js"),
	}

	got := rankHypotheses(candidates, 0.1, 5)
	// Only two distinct candidates exist, so the floor is two.
	require.Len(t, got, 2)
}

func TestRankHypothesesEmptyInput(t *testing.T) {
	t.Parallel()
	assert.Nil(t, rankHypotheses(nil, 0.1, 5))
}
