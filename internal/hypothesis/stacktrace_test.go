// internal/hypothesis/stacktrace_test.go
package hypothesis

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xkilldash9x/triage-cli/api/schemas"
)

func TestParseStackFramesJavaScript(t *testing.T) {
	t.Parallel()

	trace := "TypeError: Cannot read property 'name' of undefined\n" +
		"    at getUser (src/api/users.js:42:13)\n" +
		"    at src/middleware/auth.js:17:5"

	frames := parseStackFrames([]string{trace})
	require.Len(t, frames, 2)

	assert.Equal(t, schemas.StackFrame{
		FilePath:     "src/api/users.js",
		FunctionName: "getUser",
		LineNumber:   42,
		ColumnNumber: 13,
	}, frames[0])
	assert.Equal(t, schemas.StackFrame{
		FilePath:     "src/middleware/auth.js",
		LineNumber:   17,
		ColumnNumber: 5,
	}, frames[1])
}

func TestParseStackFramesPython(t *testing.T) {
	t.Parallel()

	trace := "Traceback (most recent call last):\n" +
		"  File \"app/views.py\", line 23, in get_user\n" +
		"    user = users[uid]\n" +
		"KeyError: 'uid'"

	frames := parseStackFrames([]string{trace})
	require.Len(t, frames, 1)
	assert.Equal(t, "app/views.py", frames[0].FilePath)
	assert.Equal(t, 23, frames[0].LineNumber)
	assert.Equal(t, "get_user", frames[0].FunctionName)
}

func TestParseStackFramesGo(t *testing.T) {
	t.Parallel()

	trace := "goroutine 1 [running]:\n" +
		"main.handleRequest(0xc000010000)\n" +
		"\t/app/server.go:87 +0x19\n" +
		"main.main()\n" +
		"\t/app/main.go:14 +0x25"

	frames := parseStackFrames([]string{trace})
	require.Len(t, frames, 2)
	assert.Equal(t, "/app/server.go", frames[0].FilePath)
	assert.Equal(t, 87, frames[0].LineNumber)
	assert.Equal(t, "main.handleRequest", frames[0].FunctionName)
	assert.Equal(t, "/app/main.go", frames[1].FilePath)
	assert.Equal(t, "main.main", frames[1].FunctionName)
}

func TestParseStackFramesJava(t *testing.T) {
	t.Parallel()

	trace := "java.lang.NullPointerException\n" +
		"\tat com.example.UserService.getUser(UserService.java:58)\n" +
		"\tat com.example.Controller.handle(Controller.java:31)"

	frames := parseStackFrames([]string{trace})
	require.Len(t, frames, 2)
	assert.Equal(t, "UserService.java", frames[0].FilePath)
	assert.Equal(t, 58, frames[0].LineNumber)
	assert.Equal(t, "com.example.UserService.getUser", frames[0].FunctionName)
}

func TestParseStackFramesDeduplicatesFirstWins(t *testing.T) {
	t.Parallel()

	trace := "    at retry (src/client.js:10:1)\n" +
		"    at attempt (src/client.js:10:1)\n" +
		"    at other (src/client.js:11:1)"

	frames := parseStackFrames([]string{trace})
	require.Len(t, frames, 2)
	// First occurrence of (file, line) wins.
	assert.Equal(t, "retry", frames[0].FunctionName)
	assert.Equal(t, "other", frames[1].FunctionName)
}

func TestParseStackFramesIgnoresPlainText(t *testing.T) {
	t.Parallel()

	frames := parseStackFrames([]string{"the page crashed and showed a blank screen"})
	assert.Empty(t, frames)
}

func TestParseStackFramesAcrossMessages(t *testing.T) {
	t.Parallel()

	frames := parseStackFrames([]string{
		"    at first (a.js:1:1)",
		"    at second (b.js:2:2)",
	})
	require.Len(t, frames, 2)
	assert.Equal(t, "a.js", frames[0].FilePath)
	assert.Equal(t, "b.js", frames[1].FilePath)
}
