// api/schemas/hypothesis.go
package schemas

// -- Hypothesis Schemas --

// FailureMode is the closed classification of a root-cause theory. The
// values are lowercase snake_case to align with the persisted JSON contract.
type FailureMode string

// Constants defining the supported failure mode classifications.
const (
	FailureNullReference FailureMode = "null_reference"            // Access of an uninitialized or nulled value.
	FailureRaceCondition FailureMode = "race_condition"            // Timing or ordering dependent behavior.
	FailureTypeError     FailureMode = "type_error"                // Type mismatch or invalid conversion.
	FailureCrossService  FailureMode = "cross_service_communication" // Failure across an API or service boundary.
	FailureLogic         FailureMode = "incorrect_logic"           // Plain wrong logic; also the fallback class.
	FailureOther         FailureMode = "other"                     // Anything that fits none of the above.
)

// HypothesisStatus tracks the downstream lifecycle of a hypothesis.
// The engine only ever creates hypotheses as StatusPending; the evidence
// evaluation that runs later is the sole mutator.
type HypothesisStatus string

const (
	StatusPending      HypothesisStatus = "pending"
	StatusConfirmed    HypothesisStatus = "confirmed"
	StatusRejected     HypothesisStatus = "rejected"
	StatusInconclusive HypothesisStatus = "inconclusive"
)

// LineRange is an inclusive 1-based line span. Start <= End always holds
// for ranges produced by this module.
type LineRange struct {
	Start int `json:"start"`
	End   int `json:"end"`
}

// AffectedFile anchors a hypothesis to concrete locations in one file.
type AffectedFile struct {
	Path       string      `json:"path"`
	LineRanges []LineRange `json:"lineRanges"`
}

// Hypothesis is a single root-cause theory produced by the engine. This
// struct maps directly to the JSON payload consumed by the downstream
// evidence-evaluation stage, so the field set and tags are a contract.
type Hypothesis struct {
	// ID is sequential within one generation call ("HYP_1", "HYP_2", ...).
	ID string `json:"id"`

	// Description is a failure-mode-templated sentence naming at least one
	// affected file.
	Description string `json:"description"`

	// Confidence is an internal ranking signal in [0, 0.95]. It is never
	// surfaced to end users as a precise probability.
	Confidence float64 `json:"confidence"`

	AffectedFiles []AffectedFile `json:"affectedFiles"`

	FailureMode FailureMode `json:"failureMode"`

	Status HypothesisStatus `json:"status"`
}

// -- Issue Context Schemas --

// IssueContext carries the caller-supplied bug report. It is immutable for
// the duration of a generation call.
type IssueContext struct {
	ReproductionSteps []string `json:"reproductionSteps,omitempty"`
	ExpectedBehavior  string   `json:"expectedBehavior,omitempty"`
	ActualBehavior    string   `json:"actualBehavior,omitempty"`
	ErrorMessages     []string `json:"errorMessages,omitempty"`

	// IsFlaky marks the issue as intermittent. This is strong direct
	// evidence for a timing hypothesis.
	IsFlaky bool `json:"isFlaky,omitempty"`

	// SuspectedFiles are user-declared candidates, trusted above
	// analyzer-derived related files but below stack trace evidence.
	SuspectedFiles []string `json:"suspectedFiles,omitempty"`
}

// -- Code Analysis Schemas --

// FunctionInfo describes one function found by the code analyzer.
type FunctionInfo struct {
	Name      string   `json:"name"`
	StartLine int      `json:"startLine"`
	EndLine   int      `json:"endLine"`
	Params    []string `json:"params,omitempty"`
	IsAsync   bool     `json:"isAsync,omitempty"`
}

// ErrorHandlerBlock is the span of a try/catch, recover, or equivalent
// error handling construct.
type ErrorHandlerBlock struct {
	StartLine int `json:"startLine"`
	EndLine   int `json:"endLine"`
}

// ImportRecord is one import statement in an analyzed file.
type ImportRecord struct {
	Source string `json:"source"`
	Line   int    `json:"line,omitempty"`
}

// FileAnalysis bundles the structural facts the analyzer extracted from a
// single source file. The engine consumes these as-is; it never re-parses
// source text.
type FileAnalysis struct {
	Path          string              `json:"path"`
	Functions     []FunctionInfo      `json:"functions,omitempty"`
	ErrorHandlers []ErrorHandlerBlock `json:"errorHandlers,omitempty"`
	Imports       []ImportRecord      `json:"imports,omitempty"`
}

// APIEndpoint is one HTTP route discovered by the dependency grapher.
type APIEndpoint struct {
	Method          string `json:"method"`
	Path            string `json:"path"`
	HandlerFile     string `json:"handlerFile"`
	HandlerFunction string `json:"handlerFunction,omitempty"`
	LineNumber      int    `json:"lineNumber,omitempty"`
}

// CodeAnalysisContext aggregates everything the external analyzer and
// dependency grapher produced for one investigation.
type CodeAnalysisContext struct {
	// Files maps file path to its structural facts.
	Files map[string]FileAnalysis `json:"files,omitempty"`

	// RelatedFiles is the flat, deduplicated union of dependency-related
	// files across all analyzed inputs.
	RelatedFiles []string `json:"relatedFiles,omitempty"`

	// Endpoints is absent when endpoint discovery failed or was skipped.
	Endpoints []APIEndpoint `json:"endpoints,omitempty"`
}

// -- Stack Trace Schemas --

// StackFrame is one (file, line) location extracted from an error trace.
// Frames live only within a single generation call.
type StackFrame struct {
	FilePath     string `json:"filePath"`
	FunctionName string `json:"functionName,omitempty"`
	LineNumber   int    `json:"lineNumber"`
	ColumnNumber int    `json:"columnNumber,omitempty"`
}
