// internal/hypothesis/emit.go
package hypothesis

import (
	"fmt"
	"strings"

	"github.com/xkilldash9x/triage-cli/api/schemas"
)

// maxConfidence caps every confidence the engine produces. Nothing the
// pipeline emits may be treated as certainty downstream.
const maxConfidence = 0.95

// emitter hands out sequential hypothesis IDs within one generation call.
type emitter struct {
	n int
}

// emit builds a pending hypothesis with the next sequential ID. Confidence
// is clamped into [0, maxConfidence] here so no builder can escape the cap.
func (e *emitter) emit(mode schemas.FailureMode, description string, confidence float64, files []schemas.AffectedFile) schemas.Hypothesis {
	e.n++
	if confidence > maxConfidence {
		confidence = maxConfidence
	}
	if confidence < 0 {
		confidence = 0
	}
	return schemas.Hypothesis{
		ID:            fmt.Sprintf("HYP_%d", e.n),
		Description:   description,
		Confidence:    confidence,
		AffectedFiles: files,
		FailureMode:   mode,
		Status:        schemas.StatusPending,
	}
}

// fileAccumulator builds an ordered affected-file list, merging additional
// line ranges into an already present path.
type fileAccumulator struct {
	order []string
	index map[string]int
	files []schemas.AffectedFile
}

func newFileAccumulator() *fileAccumulator {
	return &fileAccumulator{index: make(map[string]int)}
}

func (a *fileAccumulator) add(path string, ranges ...schemas.LineRange) {
	if path == "" || len(ranges) == 0 {
		return
	}
	i, ok := a.index[path]
	if !ok {
		i = len(a.files)
		a.index[path] = i
		a.order = append(a.order, path)
		a.files = append(a.files, schemas.AffectedFile{Path: path})
	}
	a.files[i].LineRanges = append(a.files[i].LineRanges, ranges...)
}

func (a *fileAccumulator) has(path string) bool {
	_, ok := a.index[path]
	return ok
}

func (a *fileAccumulator) result() []schemas.AffectedFile {
	return a.files
}

// describe renders the fixed natural-language template for a failure mode,
// naming the first one or two affected files by basename.
func describe(mode schemas.FailureMode, files []schemas.AffectedFile) string {
	names := make([]string, 0, 2)
	for _, f := range files {
		names = append(names, basename(f.Path))
		if len(names) == 2 {
			break
		}
	}
	loc := strings.Join(names, ", ")

	switch mode {
	case schemas.FailureNullReference:
		return fmt.Sprintf("Potential null/undefined reference in %s. A variable or property may be accessed before it's properly initialized or after it's been set to null.", loc)
	case schemas.FailureRaceCondition:
		return fmt.Sprintf("Possible race condition or timing issue in %s. Concurrent operations may be completing in an unexpected order.", loc)
	case schemas.FailureTypeError:
		return fmt.Sprintf("Possible type mismatch in %s. A value may be produced or converted with an unexpected type.", loc)
	case schemas.FailureCrossService:
		return fmt.Sprintf("Possible communication failure across a service or API boundary involving %s. A request may be failing, timing out, or returning an unexpected response.", loc)
	case schemas.FailureLogic:
		return fmt.Sprintf("Possible logic error in %s. A condition, calculation, or control-flow path may not behave as intended.", loc)
	default:
		return fmt.Sprintf("Unclassified issue in %s. The reported behavior does not match a known failure signature.", loc)
	}
}

// clampLine keeps line numbers 1-based.
func clampLine(n int) int {
	if n < 1 {
		return 1
	}
	return n
}
