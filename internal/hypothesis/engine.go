// internal/hypothesis/engine.go

// Package hypothesis turns a free-text bug report plus structural
// code-analysis facts into a small, ranked, deduplicated set of root-cause
// hypotheses, each anchored to files and line ranges.
//
// The pipeline is a pure value-in/value-out transformation: the pattern
// matcher and stack trace parser run over the issue text, the primary file
// resolver merges their file signals, four independent builders emit
// candidate hypotheses, and the ranker produces the final ordered list. No
// builder depends on another's output and nothing here performs I/O.
package hypothesis

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/xkilldash9x/triage-cli/api/schemas"
	"github.com/xkilldash9x/triage-cli/internal/session"
)

// Default ranking policy.
const (
	DefaultMinConfidence = 0.1
	DefaultMaxHypotheses = 5
)

// Options tunes the ranking stage.
type Options struct {
	// MinConfidence drops hypotheses scoring below it, except where the
	// backfill floor applies.
	MinConfidence float64
	// MaxHypotheses caps the result size.
	MaxHypotheses int
}

// DefaultOptions returns the standard ranking policy.
func DefaultOptions() Options {
	return Options{MinConfidence: DefaultMinConfidence, MaxHypotheses: DefaultMaxHypotheses}
}

// Engine generates root-cause hypotheses. It is safe for concurrent use;
// all state is read-only after construction.
type Engine struct {
	log  *zap.Logger
	opts Options
}

// NewEngine builds an engine. Non-positive option fields fall back to the
// defaults.
func NewEngine(logger *zap.Logger, opts Options) *Engine {
	if opts.MaxHypotheses <= 0 {
		opts.MaxHypotheses = DefaultMaxHypotheses
	}
	if opts.MinConfidence <= 0 {
		opts.MinConfidence = DefaultMinConfidence
	}
	return &Engine{
		log:  logger.Named("hypothesis-engine"),
		opts: opts,
	}
}

// Generate runs the full pipeline and returns the ranked hypotheses.
// Deterministic: identical inputs yield identical output. Malformed input
// degrades to fewer, broader hypotheses rather than an error; an empty
// result is valid when nothing at all could be anchored to a file.
func (e *Engine) Generate(issue schemas.IssueContext, analysis schemas.CodeAnalysisContext) []schemas.Hypothesis {
	matches := matchPatterns(issue)
	frames := parseStackFrames(issue.ErrorMessages)
	primary := resolvePrimaryFiles(frames, issue, analysis)

	em := &emitter{}
	var candidates []schemas.Hypothesis
	candidates = append(candidates, buildPatternHypotheses(em, matches, frames, primary, issue, analysis)...)
	candidates = append(candidates, buildStructuralHypotheses(em, analysis)...)
	candidates = append(candidates, buildCrossFileHypotheses(em, primary, analysis)...)
	candidates = append(candidates, buildFlakyHypothesis(em, issue, primary, analysis)...)

	ranked := rankHypotheses(candidates, e.opts.MinConfidence, e.opts.MaxHypotheses)

	e.log.Debug("Hypothesis generation complete.",
		zap.Int("patterns_matched", len(matches)),
		zap.Int("stack_frames", len(frames)),
		zap.Int("primary_files", len(primary)),
		zap.Int("candidates", len(candidates)),
		zap.Int("returned", len(ranked)),
	)
	return ranked
}

// GenerateAndStore generates hypotheses and persists them under the given
// session ID. The store owns its own write contract; the only errors
// surfaced here are its.
func (e *Engine) GenerateAndStore(ctx context.Context, sessionID string, store session.Store, issue schemas.IssueContext, analysis schemas.CodeAnalysisContext) ([]schemas.Hypothesis, error) {
	hyps := e.Generate(issue, analysis)
	if err := store.SaveHypotheses(ctx, sessionID, hyps); err != nil {
		return nil, fmt.Errorf("failed to store hypotheses for session %s: %w", sessionID, err)
	}
	e.log.Info("Stored hypotheses.", zap.String("session_id", sessionID), zap.Int("count", len(hyps)))
	return hyps, nil
}
