package web

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

var searchHandlerTestCases = []testCase{
	{
		name:           "NameScopeDefault",
		endpoint:       "/api/search",
		queryParams:    map[string]string{"q": "README"},
		expectedStatus: http.StatusOK,
		check: func(assert *require.Assertions, w *httptest.ResponseRecorder) {
			var result searchJSON
			decodeData(assert, w, &result)
			assert.Equal(1, result.Total)
			assert.False(result.Truncated)
			assert.Equal("docs/README.md", result.Hits[0].Path)
			assert.Nil(result.Hits[0].Snippet)
		},
	},
	{
		name:           "ContentScope",
		endpoint:       "/api/search",
		queryParams:    map[string]string{"q": "sample markdown", "scope": "content"},
		expectedStatus: http.StatusOK,
		check: func(assert *require.Assertions, w *httptest.ResponseRecorder) {
			var result searchJSON
			decodeData(assert, w, &result)
			assert.Len(result.Hits, 1)
			assert.NotNil(result.Hits[0].Snippet)
			assert.Equal("sample markdown", result.Hits[0].Snippet.Match)
		},
	},
	{
		name:           "EmptyQuery",
		endpoint:       "/api/search",
		queryParams:    map[string]string{"q": "   ", "scope": "content"},
		expectedStatus: http.StatusOK,
		check: func(assert *require.Assertions, w *httptest.ResponseRecorder) {
			var result searchJSON
			decodeData(assert, w, &result)
			assert.Equal(0, result.Total)
			assert.Empty(result.Hits)
		},
	},
	{
		name:           "UnknownScope",
		endpoint:       "/api/search",
		queryParams:    map[string]string{"q": "x", "scope": "regex"},
		expectedStatus: http.StatusUnprocessableEntity,
	},
	{
		name:           "QueryTooLong",
		endpoint:       "/api/search",
		queryParams:    map[string]string{"q": strings.Repeat("a", 1001)},
		expectedStatus: http.StatusUnprocessableEntity,
	},
}

func TestSearchHandler(t *testing.T) {
	runTestCases(t, searchHandlerTestCases)
}
