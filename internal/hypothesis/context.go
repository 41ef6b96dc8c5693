// internal/hypothesis/context.go
package hypothesis

import (
	"context"

	"go.uber.org/zap"

	"github.com/xkilldash9x/triage-cli/api/schemas"
)

// CodeAnalyzer is the external contract for extracting structural facts
// from one source file.
type CodeAnalyzer interface {
	AnalyzeFile(ctx context.Context, path string) (schemas.FileAnalysis, error)
}

// DependencyGrapher is the external contract for file-level dependency
// relationships and API endpoint discovery.
type DependencyGrapher interface {
	RelatedFiles(ctx context.Context, path string) ([]string, error)
	APIEndpoints(ctx context.Context) ([]schemas.APIEndpoint, error)
}

// BuildCodeAnalysisContext assembles the analysis context for a set of
// files. Calls are sequential; a failure analyzing any single file is
// logged and the file skipped, so partial analyzer outages degrade the
// context instead of aborting the assembly. Endpoint discovery failures
// leave endpoints absent. Callers needing bounded latency must impose it
// on the analyzer, not here.
func BuildCodeAnalysisContext(ctx context.Context, files []string, analyzer CodeAnalyzer, grapher DependencyGrapher, logger *zap.Logger) schemas.CodeAnalysisContext {
	log := logger.Named("context-builder")

	result := schemas.CodeAnalysisContext{
		Files: make(map[string]schemas.FileAnalysis, len(files)),
	}
	seenRelated := make(map[string]struct{})

	for _, path := range files {
		fa, err := analyzer.AnalyzeFile(ctx, path)
		if err != nil {
			log.Warn("Skipping file that failed analysis.", zap.String("path", path), zap.Error(err))
			continue
		}
		result.Files[path] = fa

		related, err := grapher.RelatedFiles(ctx, path)
		if err != nil {
			log.Warn("Failed to resolve related files.", zap.String("path", path), zap.Error(err))
			continue
		}
		for _, rf := range related {
			if _, dup := seenRelated[rf]; dup {
				continue
			}
			seenRelated[rf] = struct{}{}
			result.RelatedFiles = append(result.RelatedFiles, rf)
		}
	}

	endpoints, err := grapher.APIEndpoints(ctx)
	if err != nil {
		log.Warn("Endpoint discovery failed; continuing without endpoints.", zap.Error(err))
	} else {
		result.Endpoints = endpoints
	}
	return result
}
