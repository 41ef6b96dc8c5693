package analysis

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/xkilldash9x/triage-cli/api/schemas"
)

func writeFile(t *testing.T, root, name, content string) {
	t.Helper()
	full := filepath.Join(root, name)
	require.NoError(t, os.MkdirAll(filepath.Dir(full), 0o755))
	require.NoError(t, os.WriteFile(full, []byte(content), 0o644))
}

const usersJS = `import { db } from './db';
const helper = require('./helper');

async function getUser(id) {
  try {
    return await db.find(id);
  } catch (err) {
    helper.log(err);
  }
}

function formatUser(user) {
  return user.name;
}

app.get('/users/:id', getUser);
`

func TestAnalyzeFileJavaScript(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	writeFile(t, root, "users.js", usersJS)

	a := NewAnalyzer(root, zaptest.NewLogger(t))
	fa, err := a.AnalyzeFile(context.Background(), "users.js")
	require.NoError(t, err)

	require.Len(t, fa.Functions, 2)
	assert.Equal(t, "getUser", fa.Functions[0].Name)
	assert.True(t, fa.Functions[0].IsAsync)
	assert.Equal(t, 4, fa.Functions[0].StartLine)
	assert.Equal(t, []string{"id"}, fa.Functions[0].Params)
	assert.Equal(t, "formatUser", fa.Functions[1].Name)
	assert.False(t, fa.Functions[1].IsAsync)
	// End of getUser is approximated as the line before formatUser.
	assert.Equal(t, 11, fa.Functions[0].EndLine)

	require.Len(t, fa.ErrorHandlers, 1)
	assert.Equal(t, 5, fa.ErrorHandlers[0].StartLine)
	assert.Equal(t, 7, fa.ErrorHandlers[0].EndLine)

	require.Len(t, fa.Imports, 2)
	assert.Equal(t, "./db", fa.Imports[0].Source)
	assert.Equal(t, "./helper", fa.Imports[1].Source)
}

func TestAnalyzeFilePython(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	writeFile(t, root, "views.py", `from models import User
import asyncio

async def fetch_user(uid):
    try:
        return await User.get(uid)
    except KeyError:
        return None

def render(user):
    return user.name
`)

	a := NewAnalyzer(root, zaptest.NewLogger(t))
	fa, err := a.AnalyzeFile(context.Background(), "views.py")
	require.NoError(t, err)

	require.Len(t, fa.Functions, 2)
	assert.Equal(t, "fetch_user", fa.Functions[0].Name)
	assert.True(t, fa.Functions[0].IsAsync)
	assert.Equal(t, "render", fa.Functions[1].Name)

	require.Len(t, fa.ErrorHandlers, 1)
	require.Len(t, fa.Imports, 2)
	assert.Equal(t, "models", fa.Imports[0].Source)
	assert.Equal(t, "asyncio", fa.Imports[1].Source)
}

func TestAnalyzeFileGo(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	writeFile(t, root, "server.go", `package server

import (
	"fmt"
	"net/http"
)

func handle(w http.ResponseWriter, r *http.Request) {
	defer func() {
		if err := recover(); err != nil {
			fmt.Println(err)
		}
	}()
}

func shutdown() {
}
`)

	a := NewAnalyzer(root, zaptest.NewLogger(t))
	fa, err := a.AnalyzeFile(context.Background(), "server.go")
	require.NoError(t, err)

	require.Len(t, fa.Functions, 2)
	assert.Equal(t, "handle", fa.Functions[0].Name)
	assert.Len(t, fa.Functions[0].Params, 2)
	assert.Equal(t, "shutdown", fa.Functions[1].Name)

	require.Len(t, fa.Imports, 2)
	assert.Equal(t, "fmt", fa.Imports[0].Source)
	assert.Equal(t, "net/http", fa.Imports[1].Source)

	// recover() counts as an error handling window.
	require.NotEmpty(t, fa.ErrorHandlers)
}

func TestAnalyzeFileMissing(t *testing.T) {
	t.Parallel()

	a := NewAnalyzer(t.TempDir(), zaptest.NewLogger(t))
	_, err := a.AnalyzeFile(context.Background(), "does-not-exist.js")
	require.Error(t, err)
}

func TestAnalyzeFileCancelledContext(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	a := NewAnalyzer(t.TempDir(), zaptest.NewLogger(t))
	_, err := a.AnalyzeFile(ctx, "users.js")
	assert.ErrorIs(t, err, context.Canceled)
}

func TestRelatedFilesResolvesRelativeImports(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	writeFile(t, root, "users.js", usersJS)
	writeFile(t, root, "db.js", "module.exports = {};\n")
	writeFile(t, root, "helper.js", "module.exports = {};\n")

	a := NewAnalyzer(root, zaptest.NewLogger(t))
	related, err := a.RelatedFiles(context.Background(), "users.js")
	require.NoError(t, err)
	assert.Equal(t, []string{"db.js", "helper.js"}, related)
}

func TestRelatedFilesSkipsPackageImports(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	writeFile(t, root, "main.js", "import express from 'express';\nimport { x } from './missing';\n")

	a := NewAnalyzer(root, zaptest.NewLogger(t))
	related, err := a.RelatedFiles(context.Background(), "main.js")
	require.NoError(t, err)
	// Package imports have no file resolution and './missing' does not exist.
	assert.Empty(t, related)
}

func TestAPIEndpoints(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	writeFile(t, root, "routes.js", `const router = express.Router();
router.get('/users/:id', getUser);
router.post('/users', createUser);
`)

	a := NewAnalyzer(root, zaptest.NewLogger(t))
	ctx := context.Background()
	_, err := a.AnalyzeFile(ctx, "routes.js")
	require.NoError(t, err)

	endpoints, err := a.APIEndpoints(ctx)
	require.NoError(t, err)
	require.Len(t, endpoints, 2)

	assert.Equal(t, schemas.APIEndpoint{
		Method:          "GET",
		Path:            "/users/:id",
		HandlerFile:     "routes.js",
		HandlerFunction: "getUser",
		LineNumber:      2,
	}, endpoints[0])
	assert.Equal(t, "POST", endpoints[1].Method)
}

func TestAPIEndpointsEmptyBeforeAnalysis(t *testing.T) {
	t.Parallel()

	a := NewAnalyzer(t.TempDir(), zaptest.NewLogger(t))
	endpoints, err := a.APIEndpoints(context.Background())
	require.NoError(t, err)
	assert.Empty(t, endpoints)
}
