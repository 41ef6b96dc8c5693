// internal/hypothesis/builder_crossfile.go
package hypothesis

import (
	"strings"

	"github.com/xkilldash9x/triage-cli/api/schemas"
)

const (
	apiBoundaryConfidence = 0.4
	importChainConfidence = 0.3
)

// Endpoint handler windows reach a little above the route registration and
// well into the handler body.
const (
	endpointWindowBefore = 2
	endpointWindowAfter  = 20
)

// importChainThreshold is the import count past which a file is considered
// a heavy hub in the dependency graph.
const importChainThreshold = 5

// buildCrossFileHypotheses proposes hypotheses for issues that plausibly
// span an API boundary or a long import chain.
func buildCrossFileHypotheses(em *emitter, primary []string, analysis schemas.CodeAnalysisContext) []schemas.Hypothesis {
	var out []schemas.Hypothesis
	if h, ok := apiBoundaryHypothesis(em, primary, analysis); ok {
		out = append(out, h)
	}
	if h, ok := importChainHypothesis(em, primary, analysis); ok {
		out = append(out, h)
	}
	return out
}

// apiBoundaryHypothesis fires when a discovered endpoint's handler file
// intersects the primary file list, by substring match in either direction.
func apiBoundaryHypothesis(em *emitter, primary []string, analysis schemas.CodeAnalysisContext) (schemas.Hypothesis, bool) {
	acc := newFileAccumulator()

	for _, ep := range analysis.Endpoints {
		if ep.HandlerFile == "" {
			continue
		}
		for _, pf := range primary {
			if strings.Contains(ep.HandlerFile, pf) || strings.Contains(pf, ep.HandlerFile) {
				acc.add(ep.HandlerFile, schemas.LineRange{
					Start: clampLine(ep.LineNumber - endpointWindowBefore),
					End:   ep.LineNumber + endpointWindowAfter,
				})
				break
			}
		}
	}

	files := acc.result()
	if len(files) == 0 {
		return schemas.Hypothesis{}, false
	}
	return em.emit(schemas.FailureCrossService, describe(schemas.FailureCrossService, files), apiBoundaryConfidence, files), true
}

// importChainHypothesis fires when the top primary files are heavy import
// hubs, or when the analyzer found related files beyond the primary set. A
// single-file "chain" is not a cross-file signal, so fewer than two
// affected files suppresses the hypothesis entirely.
func importChainHypothesis(em *emitter, primary []string, analysis schemas.CodeAnalysisContext) (schemas.Hypothesis, bool) {
	primarySet := make(map[string]struct{}, len(primary))
	for _, p := range primary {
		primarySet[p] = struct{}{}
	}

	heavyHubs := 0
	for i, p := range primary {
		if i == 2 {
			break
		}
		if len(analysis.Files[p].Imports) > importChainThreshold {
			heavyHubs++
		}
	}

	var extraRelated []string
	for _, rf := range analysis.RelatedFiles {
		if _, inPrimary := primarySet[rf]; !inPrimary {
			extraRelated = append(extraRelated, rf)
		}
	}

	if heavyHubs < 2 && len(extraRelated) == 0 {
		return schemas.Hypothesis{}, false
	}

	window := schemas.LineRange{Start: 1, End: genericWindowEnd}
	acc := newFileAccumulator()
	for i, p := range primary {
		if i == 2 {
			break
		}
		acc.add(p, window)
	}
	for _, rf := range extraRelated {
		if len(acc.result()) >= 2 {
			break
		}
		acc.add(rf, window)
	}

	files := acc.result()
	if len(files) < 2 {
		return schemas.Hypothesis{}, false
	}
	return em.emit(schemas.FailureLogic, describe(schemas.FailureLogic, files), importChainConfidence, files), true
}
