// internal/hypothesis/patterns.go
package hypothesis

import (
	"regexp"

	"github.com/xkilldash9x/triage-cli/api/schemas"
)

// ErrorPattern is one failure-mode signature in the static registry.
// Regexes are matched against case-folded issue text, so the expressions
// below are written in lowercase.
type ErrorPattern struct {
	Name            string
	Regexes         []*regexp.Regexp
	Keywords        []string
	FailureMode     schemas.FailureMode
	ConfidenceBoost float64
}

// errorPatterns is the process-wide, read-only failure-mode registry. It is
// the leaf dependency of the whole pipeline; nothing ever mutates it.
var errorPatterns = []ErrorPattern{
	{
		Name: "null-reference",
		Regexes: []*regexp.Regexp{
			regexp.MustCompile(`cannot read propert(?:y|ies)\b.*\bof (?:undefined|null)`),
			regexp.MustCompile(`nil pointer dereference`),
			regexp.MustCompile(`undefined is not an object`),
			regexp.MustCompile(`'nonetype' object has no attribute`),
			regexp.MustCompile(`null ?pointer ?exception`),
		},
		Keywords:        []string{"undefined", "null", "nil", "none", "uninitialized"},
		FailureMode:     schemas.FailureNullReference,
		ConfidenceBoost: 0.4,
	},
	{
		Name: "race-condition",
		Regexes: []*regexp.Regexp{
			regexp.MustCompile(`race condition`),
			regexp.MustCompile(`deadlock`),
			regexp.MustCompile(`data race`),
			regexp.MustCompile(`concurrent map (?:read|write)`),
		},
		Keywords:        []string{"race", "deadlock", "lock", "mutex", "concurrent", "timing", "intermittent"},
		FailureMode:     schemas.FailureRaceCondition,
		ConfidenceBoost: 0.35,
	},
	{
		Name: "type-error",
		Regexes: []*regexp.Regexp{
			regexp.MustCompile(`typeerror`),
			regexp.MustCompile(`is not a function`),
			regexp.MustCompile(`cannot convert`),
			regexp.MustCompile(`type mismatch`),
			regexp.MustCompile(`incompatible types?`),
		},
		Keywords:        []string{"type", "cast", "conversion", "mismatch", "nan"},
		FailureMode:     schemas.FailureTypeError,
		ConfidenceBoost: 0.35,
	},
	{
		Name: "cross-service",
		Regexes: []*regexp.Regexp{
			regexp.MustCompile(`econn(?:refused|reset|aborted)`),
			regexp.MustCompile(`etimedout`),
			regexp.MustCompile(`socket hang up`),
			regexp.MustCompile(`connection (?:refused|reset|timed out|closed)`),
			regexp.MustCompile(`fetch failed`),
			regexp.MustCompile(`\bcors\b`),
			regexp.MustCompile(`status(?: code)? 5\d\d`),
		},
		Keywords:        []string{"api", "request", "response", "http", "network", "timeout", "endpoint"},
		FailureMode:     schemas.FailureCrossService,
		ConfidenceBoost: 0.4,
	},
	{
		Name: "incorrect-logic",
		Regexes: []*regexp.Regexp{
			regexp.MustCompile(`assertion (?:failed|error)`),
			regexp.MustCompile(`expected .+ (?:but )?(?:got|received|was)`),
			regexp.MustCompile(`off[- ]by[- ]one`),
		},
		Keywords:        []string{"incorrect", "wrong", "unexpected", "expected", "logic"},
		FailureMode:     schemas.FailureLogic,
		ConfidenceBoost: 0.2,
	},
}

// fallbackPattern is returned when nothing in the registry matches, so the
// pipeline always has at least one classification to build from.
var fallbackPattern = &errorPatterns[len(errorPatterns)-1]
