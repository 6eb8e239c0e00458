package github

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const samplePatch = `@@ -1,3 +1,7 @@
 package handler
+
+func Added() int {
+	return 1
+}
 var existing = true
-var dropped = true
+var renamed = true`

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/repos/acme/api/pulls/7", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "token secret", r.Header.Get("Authorization"))
		fmt.Fprint(w, `{
			"title": "Add handler",
			"state": "open",
			"user": {"login": "dev"},
			"head": {"ref": "feature/handler"},
			"base": {"ref": "main"},
			"created_at": "2026-08-20T10:00:00Z",
			"updated_at": "2026-08-21T09:00:00Z"
		}`)
	})
	mux.HandleFunc("/repos/acme/api/pulls/7/files", func(w http.ResponseWriter, r *http.Request) {
		server := "http://" + r.Host
		fmt.Fprintf(w, `[
			{"filename": "handler.go", "status": "modified", "patch": %q, "contents_url": "%s/raw/handler.go"},
			{"filename": "assets/logo.svg", "status": "modified", "patch": "", "contents_url": "%s/raw/logo.svg"},
			{"filename": "legacy.go", "status": "removed", "patch": "", "contents_url": "%s/raw/legacy.go"}
		]`, samplePatch, server, server, server)
	})
	mux.HandleFunc("/raw/handler.go", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "application/vnd.github.v3.raw", r.Header.Get("Accept"))
		fmt.Fprint(w, "package handler\n\nfunc Added() int {\n\treturn 1\n}\n")
	})
	return httptest.NewServer(mux)
}

func TestClient_PullRequest(t *testing.T) {
	server := newTestServer(t)
	defer server.Close()

	client := New(Config{Token: "secret", APIURL: server.URL}, nil)
	pr, err := client.PullRequest(context.Background(), "acme", "api", 7)
	require.NoError(t, err)

	assert.Equal(t, 7, pr.Number)
	assert.Equal(t, "Add handler", pr.Title)
	assert.Equal(t, "dev", pr.Author)
	assert.Equal(t, "feature/handler", pr.HeadBranch)
	assert.Equal(t, "main", pr.BaseBranch)
	assert.Equal(t, "open", pr.State)
}

func TestClient_ChangedFiles(t *testing.T) {
	server := newTestServer(t)
	defer server.Close()

	client := New(Config{Token: "secret", APIURL: server.URL}, nil)
	files, err := client.ChangedFiles(context.Background(), "acme", "api", 7)
	require.NoError(t, err)

	// the svg is not reviewable and the removed file is skipped
	require.Len(t, files, 1)
	assert.Equal(t, "handler.go", files[0].Name)
	assert.Contains(t, files[0].Content, "func Added()")
	assert.Equal(t, samplePatch, files[0].Patch)
	assert.Equal(t, 5, files[0].AddedLines)
}

func TestClient_PullRequestErrorStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "no such pull request", http.StatusNotFound)
	}))
	defer server.Close()

	client := New(Config{APIURL: server.URL}, nil)
	_, err := client.PullRequest(context.Background(), "acme", "api", 404)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "404")
}

func TestAddedLines(t *testing.T) {
	assert.Equal(t, 5, addedLines(samplePatch))
	assert.Equal(t, 0, addedLines(""))
	assert.Equal(t, 0, addedLines("not a patch"))
}
