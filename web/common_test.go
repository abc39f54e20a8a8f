package web

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"path/filepath"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/lexandro/mdindex/docs"
	"github.com/lexandro/mdindex/guard"
	"github.com/lexandro/mdindex/ignore"
	"github.com/lexandro/mdindex/index"
	"github.com/lexandro/mdindex/render"
	"github.com/lexandro/mdindex/scanner"
	"github.com/lexandro/mdindex/search"
	"github.com/stretchr/testify/require"
)

var testFiles = map[string]string{
	"docs/README.md":   "# Readme\n\na sample markdown file",
	"docs/guide.md":    "# Guide\n\n```go\nfunc main() {}\n```\n",
	"notes/todo.md":    "- buy milk",
	"notes/ignore.txt": "not a document",
}

type testCase struct {
	name           string
	method         string
	endpoint       string
	queryParams    map[string]string
	expectedStatus int
	check          func(assert *require.Assertions, w *httptest.ResponseRecorder)
}

type testServer struct {
	router *gin.Engine
	root   string
}

func newTestLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// setupTestServer builds the full stack over <tmp>/root, with <tmp>/secret.md outside it.
func setupTestServer(t *testing.T, assert *require.Assertions) *testServer {
	t.Helper()

	parent, err := filepath.EvalSymlinks(t.TempDir())
	assert.NoError(err)
	assert.NoError(os.WriteFile(filepath.Join(parent, "secret.md"), []byte("secret"), 0644))

	root := filepath.Join(parent, "root")
	for relPath, content := range testFiles {
		fullPath := filepath.Join(root, filepath.FromSlash(relPath))
		assert.NoError(os.MkdirAll(filepath.Dir(fullPath), 0755), "could not create test sub-directory")
		assert.NoError(os.WriteFile(fullPath, []byte(content), 0644), "could not write test file")
	}
	root, err = guard.ResolveRoot(root)
	assert.NoError(err)

	logger := newTestLogger()
	rules := ignore.NewMatcher(ignore.MatcherOptions{RootDir: root})
	sc := scanner.New(root, rules, logger)
	files := index.NewFileIndex()
	_, err = files.Rebuild(context.Background(), sc)
	assert.NoError(err)

	service := docs.NewService(docs.Options{
		Files:   files,
		Scanner: sc,
		Rules:   rules,
		Engine:  search.NewEngine(files, nil, root, logger),
		Logger:  logger,
	})
	renderer, err := render.New("")
	assert.NoError(err, "could not create renderer")
	validator, err := NewValidator(logger)
	assert.NoError(err, "could not create validator")

	gin.SetMode(gin.TestMode)
	return &testServer{router: NewRouter(logger, service, renderer, validator), root: root}
}

func makeTestHTTPRequest(router *gin.Engine, assert *require.Assertions, method string, endpoint string, queryParams map[string]string) *httptest.ResponseRecorder {
	if method == "" {
		method = http.MethodGet
	}
	if len(queryParams) > 0 {
		values := url.Values{}
		for key, value := range queryParams {
			values.Set(key, value)
		}
		endpoint = endpoint + "?" + values.Encode()
	}

	req, err := http.NewRequest(method, endpoint, nil)
	assert.NoError(err)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

// decodeData unmarshals the envelope's data field into out.
func decodeData(assert *require.Assertions, w *httptest.ResponseRecorder, out any) {
	var envelope struct {
		Data   json.RawMessage `json:"data"`
		Errors []string        `json:"errors"`
	}
	assert.NoError(json.Unmarshal(w.Body.Bytes(), &envelope))
	assert.Empty(envelope.Errors)
	assert.NoError(json.Unmarshal(envelope.Data, out))
}

func decodeErrors(assert *require.Assertions, w *httptest.ResponseRecorder) []string {
	var envelope response
	assert.NoError(json.Unmarshal(w.Body.Bytes(), &envelope))
	assert.Nil(envelope.Data)
	return envelope.Errors
}

func runTestCases(t *testing.T, testCases []testCase) {
	t.Helper()
	assert := require.New(t)
	server := setupTestServer(t, assert)

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert := require.New(t)
			w := makeTestHTTPRequest(server.router, assert, tc.method, tc.endpoint, tc.queryParams)
			assert.Equal(tc.expectedStatus, w.Code, w.Body.String())
			if tc.check != nil {
				tc.check(assert, w)
			}
		})
	}
}
