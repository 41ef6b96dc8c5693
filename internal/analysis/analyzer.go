// internal/analysis/analyzer.go

// Package analysis is a lightweight, regex-driven implementation of the
// code analyzer and dependency grapher contracts the hypothesis engine
// consumes. It scans source lines for function declarations, error
// handling blocks, imports, and HTTP route registrations across Go,
// JavaScript/TypeScript, and Python. It deliberately does not build an
// AST; the structural facts here are heuristic by design.
package analysis

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"
	"sync"

	"go.uber.org/zap"

	"github.com/xkilldash9x/triage-cli/api/schemas"
)

// Declaration and import regexes, tried per line.
var (
	goFuncRegex     = regexp.MustCompile(`^func\s+(?:\([^)]*\)\s+)?(\w+)\s*\(([^)]*)\)`)
	jsFuncRegex     = regexp.MustCompile(`^\s*(async\s+)?function\s*\*?\s*(\w+)\s*\(([^)]*)\)`)
	jsArrowRegex    = regexp.MustCompile(`^\s*(?:export\s+)?(?:const|let|var)\s+(\w+)\s*=\s*(async\s*)?\(([^)]*)\)\s*=>`)
	pyFuncRegex     = regexp.MustCompile(`^\s*(async\s+)?def\s+(\w+)\s*\(([^)]*)\)`)
	goImportRegex   = regexp.MustCompile(`^\s*(?:import\s+)?(?:\w+\s+)?"([^"]+)"\s*$`)
	jsImportRegex   = regexp.MustCompile(`(?:^\s*import\b.*?from\s+['"]([^'"]+)['"])|(?:require\(\s*['"]([^'"]+)['"]\s*\))`)
	pyImportRegex   = regexp.MustCompile(`^\s*(?:from\s+(\S+)\s+import|import\s+([\w.]+))`)
	tryRegex        = regexp.MustCompile(`^\s*try\s*[:{]?\s*$|^\s*try\s*\{`)
	handlerTailRegex = regexp.MustCompile(`\b(?:catch|except|finally|recover\(\))\b`)
	routeRegex      = regexp.MustCompile(`(?:\w+)\.(get|post|put|delete|patch|GET|POST|PUT|DELETE|PATCH)\s*\(\s*['"]([^'"]+)['"]\s*,?\s*(\w+)?`)
)

// handlerScanLimit bounds how far below a try line the analyzer looks for
// the matching catch/except clause.
const handlerScanLimit = 40

// Analyzer implements the hypothesis engine's CodeAnalyzer and
// DependencyGrapher contracts over the local filesystem.
type Analyzer struct {
	root string
	log  *zap.Logger

	mu    sync.Mutex
	cache map[string]fileRecord
}

type fileRecord struct {
	analysis schemas.FileAnalysis
	lines    []string
}

// NewAnalyzer returns an analyzer rooted at the given directory. Relative
// paths passed to AnalyzeFile resolve against it.
func NewAnalyzer(root string, logger *zap.Logger) *Analyzer {
	return &Analyzer{
		root:  root,
		log:   logger.Named("code-analyzer"),
		cache: make(map[string]fileRecord),
	}
}

// AnalyzeFile extracts structural facts from one source file.
func (a *Analyzer) AnalyzeFile(ctx context.Context, path string) (schemas.FileAnalysis, error) {
	if err := ctx.Err(); err != nil {
		return schemas.FileAnalysis{}, err
	}

	full := path
	if !filepath.IsAbs(full) {
		full = filepath.Join(a.root, path)
	}
	data, err := os.ReadFile(full)
	if err != nil {
		return schemas.FileAnalysis{}, fmt.Errorf("failed to read source file: %w", err)
	}

	lines := strings.Split(string(data), "\n")
	fa := schemas.FileAnalysis{
		Path:          path,
		Functions:     scanFunctions(lines),
		ErrorHandlers: scanErrorHandlers(lines),
		Imports:       scanImports(path, lines),
	}

	a.mu.Lock()
	a.cache[path] = fileRecord{analysis: fa, lines: lines}
	a.mu.Unlock()

	a.log.Debug("Analyzed file.",
		zap.String("path", path),
		zap.Int("functions", len(fa.Functions)),
		zap.Int("error_handlers", len(fa.ErrorHandlers)),
		zap.Int("imports", len(fa.Imports)),
	)
	return fa, nil
}

// RelatedFiles resolves a file's relative imports to sibling files that
// exist on disk. Package-style imports (Go module paths, npm packages,
// Python modules) have no file resolution here and are skipped.
func (a *Analyzer) RelatedFiles(ctx context.Context, path string) ([]string, error) {
	fa, err := a.cachedOrAnalyze(ctx, path)
	if err != nil {
		return nil, err
	}

	dir := filepath.Dir(path)
	var related []string
	for _, imp := range fa.Imports {
		if !strings.HasPrefix(imp.Source, ".") {
			continue
		}
		for _, candidate := range resolveImport(dir, imp.Source) {
			full := candidate
			if !filepath.IsAbs(full) {
				full = filepath.Join(a.root, candidate)
			}
			if _, statErr := os.Stat(full); statErr == nil {
				related = append(related, candidate)
				break
			}
		}
	}
	return related, nil
}

// APIEndpoints scans every analyzed file for HTTP route registrations
// (express/gin style method calls with a string path).
func (a *Analyzer) APIEndpoints(ctx context.Context) ([]schemas.APIEndpoint, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	a.mu.Lock()
	paths := make([]string, 0, len(a.cache))
	for p := range a.cache {
		paths = append(paths, p)
	}
	records := make(map[string]fileRecord, len(a.cache))
	for p, r := range a.cache {
		records[p] = r
	}
	a.mu.Unlock()

	// Deterministic output ordering.
	sort.Strings(paths)

	var endpoints []schemas.APIEndpoint
	for _, p := range paths {
		for i, line := range records[p].lines {
			m := routeRegex.FindStringSubmatch(line)
			if m == nil {
				continue
			}
			endpoints = append(endpoints, schemas.APIEndpoint{
				Method:          strings.ToUpper(m[1]),
				Path:            m[2],
				HandlerFile:     p,
				HandlerFunction: m[3],
				LineNumber:      i + 1,
			})
		}
	}
	return endpoints, nil
}

func (a *Analyzer) cachedOrAnalyze(ctx context.Context, path string) (schemas.FileAnalysis, error) {
	a.mu.Lock()
	rec, ok := a.cache[path]
	a.mu.Unlock()
	if ok {
		return rec.analysis, nil
	}
	return a.AnalyzeFile(ctx, path)
}

// scanFunctions detects function declarations. A function's end line is
// approximated as the line before the next declaration (or EOF); good
// enough for line-window anchoring.
func scanFunctions(lines []string) []schemas.FunctionInfo {
	var fns []schemas.FunctionInfo

	record := func(name, params string, isAsync bool, startLine int) {
		fns = append(fns, schemas.FunctionInfo{
			Name:      name,
			StartLine: startLine,
			IsAsync:   isAsync,
			Params:    splitParams(params),
		})
	}

	for i, line := range lines {
		lineNo := i + 1
		switch {
		case goFuncRegex.MatchString(line):
			m := goFuncRegex.FindStringSubmatch(line)
			record(m[1], m[2], false, lineNo)
		case jsFuncRegex.MatchString(line):
			m := jsFuncRegex.FindStringSubmatch(line)
			record(m[2], m[3], strings.TrimSpace(m[1]) != "", lineNo)
		case jsArrowRegex.MatchString(line):
			m := jsArrowRegex.FindStringSubmatch(line)
			record(m[1], m[3], strings.TrimSpace(m[2]) != "", lineNo)
		case pyFuncRegex.MatchString(line):
			m := pyFuncRegex.FindStringSubmatch(line)
			record(m[2], m[3], strings.TrimSpace(m[1]) != "", lineNo)
		}
	}

	for i := range fns {
		if i+1 < len(fns) {
			fns[i].EndLine = fns[i+1].StartLine - 1
		} else {
			fns[i].EndLine = len(lines)
		}
		if fns[i].EndLine < fns[i].StartLine {
			fns[i].EndLine = fns[i].StartLine
		}
	}
	return fns
}

// scanErrorHandlers pairs try lines with their catch/except tail. Go
// recover() calls count as a small handler window on their own.
func scanErrorHandlers(lines []string) []schemas.ErrorHandlerBlock {
	var blocks []schemas.ErrorHandlerBlock

	for i, line := range lines {
		lineNo := i + 1
		if tryRegex.MatchString(line) {
			end := lineNo
			limit := i + handlerScanLimit
			if limit > len(lines) {
				limit = len(lines)
			}
			for j := i + 1; j < limit; j++ {
				if handlerTailRegex.MatchString(lines[j]) {
					end = j + 1
				}
			}
			if end > lineNo {
				blocks = append(blocks, schemas.ErrorHandlerBlock{StartLine: lineNo, EndLine: end})
			}
			continue
		}
		if strings.Contains(line, "recover()") {
			start := lineNo - 2
			if start < 1 {
				start = 1
			}
			end := lineNo + 5
			if end > len(lines) {
				end = len(lines)
			}
			blocks = append(blocks, schemas.ErrorHandlerBlock{StartLine: start, EndLine: end})
		}
	}
	return blocks
}

// scanImports extracts import statements for the file's language, guessed
// from the extension.
func scanImports(path string, lines []string) []schemas.ImportRecord {
	var imports []schemas.ImportRecord
	ext := strings.ToLower(filepath.Ext(path))

	inGoImportBlock := false
	for i, line := range lines {
		lineNo := i + 1
		switch ext {
		case ".go":
			trimmed := strings.TrimSpace(line)
			if strings.HasPrefix(trimmed, "import (") {
				inGoImportBlock = true
				continue
			}
			if inGoImportBlock && trimmed == ")" {
				inGoImportBlock = false
				continue
			}
			if inGoImportBlock || strings.HasPrefix(trimmed, "import ") {
				if m := goImportRegex.FindStringSubmatch(line); m != nil {
					imports = append(imports, schemas.ImportRecord{Source: m[1], Line: lineNo})
				}
			}
		case ".py":
			if m := pyImportRegex.FindStringSubmatch(line); m != nil {
				src := m[1]
				if src == "" {
					src = m[2]
				}
				imports = append(imports, schemas.ImportRecord{Source: src, Line: lineNo})
			}
		default:
			// JavaScript/TypeScript and friends.
			if m := jsImportRegex.FindStringSubmatch(line); m != nil {
				src := m[1]
				if src == "" {
					src = m[2]
				}
				imports = append(imports, schemas.ImportRecord{Source: src, Line: lineNo})
			}
		}
	}
	return imports
}

// resolveImport expands a relative import specifier into candidate file
// paths, most specific first.
func resolveImport(dir, source string) []string {
	base := filepath.Join(dir, source)
	candidates := []string{base}
	for _, ext := range []string{".ts", ".tsx", ".js", ".jsx", ".mjs", ".py", ".go"} {
		candidates = append(candidates, base+ext)
	}
	for _, idx := range []string{"index.ts", "index.js"} {
		candidates = append(candidates, filepath.Join(base, idx))
	}
	return candidates
}

func splitParams(params string) []string {
	var out []string
	for _, p := range strings.Split(params, ",") {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}
