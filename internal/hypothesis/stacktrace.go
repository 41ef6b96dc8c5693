// internal/hypothesis/stacktrace.go
package hypothesis

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/xkilldash9x/triage-cli/api/schemas"
)

// Regex definitions for the trace conventions the parser recognizes. No
// language hint is required; every line is tried against each convention.
var (
	// Java: at pkg.Class.method(File.java:123)
	javaFrameRegex = regexp.MustCompile(`at\s+([\w.$<>]+)\((\w[\w$]*\.java):(\d+)\)`)
	// Python: File "path/to/mod.py", line 42, in handler
	pythonFrameRegex = regexp.MustCompile(`File "(.+?)", line (\d+)(?:, in ([\w<>.]+))?`)
	// JavaScript/TypeScript with a function name: at fn (path:line:col)
	jsFuncFrameRegex = regexp.MustCompile(`at\s+([\w$.<>\[\]]+)\s+\((.+?):(\d+):(\d+)\)`)
	// JavaScript/TypeScript without one: at path:line:col
	jsBareFrameRegex = regexp.MustCompile(`at\s+([^\s()]+):(\d+):(\d+)`)
	// Go: an indented path.go:line location, preceded by the function line.
	goLocationRegex = regexp.MustCompile(`^\s*([^\s:]+\.go):(\d+)`)
	goFunctionRegex = regexp.MustCompile(`^([\w./@()*-]+)\(`)
)

// parseStackFrames extracts a deduplicated, order-preserving list of stack
// frames from raw error messages. Frames are deduplicated on (file, line)
// with the first occurrence winning; partially matched frames with no line
// number never make it out of the regexes, so nothing downstream has to
// cope with null locations.
func parseStackFrames(messages []string) []schemas.StackFrame {
	type frameKey struct {
		file string
		line int
	}

	var frames []schemas.StackFrame
	seen := make(map[frameKey]struct{})

	add := func(f schemas.StackFrame) {
		key := frameKey{file: f.FilePath, line: f.LineNumber}
		if _, dup := seen[key]; dup {
			return
		}
		seen[key] = struct{}{}
		frames = append(frames, f)
	}

	for _, msg := range messages {
		lines := strings.Split(msg, "\n")
		prevGoFunc := ""
		for _, line := range lines {
			switch {
			case javaFrameRegex.MatchString(line):
				m := javaFrameRegex.FindStringSubmatch(line)
				add(schemas.StackFrame{
					FilePath:     m[2],
					FunctionName: m[1],
					LineNumber:   atoi(m[3]),
				})

			case pythonFrameRegex.MatchString(line):
				m := pythonFrameRegex.FindStringSubmatch(line)
				add(schemas.StackFrame{
					FilePath:     m[1],
					FunctionName: m[3],
					LineNumber:   atoi(m[2]),
				})

			case jsFuncFrameRegex.MatchString(line):
				m := jsFuncFrameRegex.FindStringSubmatch(line)
				add(schemas.StackFrame{
					FilePath:     m[2],
					FunctionName: m[1],
					LineNumber:   atoi(m[3]),
					ColumnNumber: atoi(m[4]),
				})

			case jsBareFrameRegex.MatchString(line):
				m := jsBareFrameRegex.FindStringSubmatch(line)
				add(schemas.StackFrame{
					FilePath:     m[1],
					LineNumber:   atoi(m[2]),
					ColumnNumber: atoi(m[3]),
				})

			case goLocationRegex.MatchString(line):
				m := goLocationRegex.FindStringSubmatch(line)
				add(schemas.StackFrame{
					FilePath:     m[1],
					FunctionName: prevGoFunc,
					LineNumber:   atoi(m[2]),
				})
			}

			// Go traces put the function signature on the line above the
			// file location, so remember it for the next iteration.
			if fm := goFunctionRegex.FindStringSubmatch(line); fm != nil {
				prevGoFunc = fm[1]
			} else if strings.TrimSpace(line) == "" {
				prevGoFunc = ""
			}
		}
	}
	return frames
}

func atoi(s string) int {
	n, _ := strconv.Atoi(s)
	return n
}
