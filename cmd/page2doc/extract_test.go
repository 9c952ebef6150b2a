package main

// Notes:
// - Pages are served by httptest and loaded with --no-js; the browser
//   loader needs Chrome and is covered by the root integration tests.

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	page2doc "github.com/alnah/go-page2doc"
)

const readmePage = `<!DOCTYPE html>
<html><body>
<nav>menu</nav>
<article class="markdown-body">
<h1>Project</h1>
<p>Install with <code>go install</code>.</p>
<pre><code class="language-mermaid">graph TD
A-->B</code></pre>
</article>
</body></html>`

func newPageServer(t *testing.T) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/readme":
			w.Header().Set("Content-Type", "text/html; charset=utf-8")
			_, _ = w.Write([]byte(readmePage))
		case "/prose":
			w.Header().Set("Content-Type", "text/html; charset=utf-8")
			_, _ = w.Write([]byte(`<html><body><p>just prose</p></body></html>`))
		default:
			http.NotFound(w, r)
		}
	}))
	t.Cleanup(srv.Close)
	return srv
}

// ---------------------------------------------------------------------------
// TestRunExtractCmd - Plain output
// ---------------------------------------------------------------------------

func TestRunExtractCmd(t *testing.T) {
	t.Parallel()

	srv := newPageServer(t)

	tests := []struct {
		name       string
		args       []string
		wantCode   int
		wantStdout string
		wantStderr string
	}{
		{
			name:       "markdown",
			args:       []string{"--no-js", srv.URL + "/readme"},
			wantCode:   ExitSuccess,
			wantStdout: "# Project",
		},
		{
			name:       "mermaid",
			args:       []string{"--no-js", "--kind", "mermaid", srv.URL + "/readme"},
			wantCode:   ExitSuccess,
			wantStdout: "graph TD\nA-->B\n",
		},
		{
			name:       "nothing found",
			args:       []string{"--no-js", "-k", "mermaid", srv.URL + "/prose"},
			wantCode:   ExitNotFound,
			wantStderr: "Failed to extract mermaid: ",
		},
		{
			name:       "page missing",
			args:       []string{"--no-js", srv.URL + "/missing"},
			wantCode:   ExitBrowser,
			wantStderr: "404",
		},
		{
			name:       "too many targets",
			args:       []string{"--no-js", srv.URL + "/readme", srv.URL + "/prose"},
			wantCode:   ExitUsage,
			wantStderr: "exactly one",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			env, stdout, stderr := newTestEnv(nil)
			env.HTTPClient = srv.Client()

			code := runExtractCmd(context.Background(), tt.args, env)

			assert.Equal(t, tt.wantCode, code, "stderr: %s", stderr.String())
			if tt.wantStdout != "" {
				assert.Contains(t, stdout.String(), tt.wantStdout)
			}
			if tt.wantStderr != "" {
				assert.Contains(t, stderr.String(), tt.wantStderr)
			}
		})
	}
}

func TestRunExtractCmd_NotFoundHint(t *testing.T) {
	t.Parallel()

	srv := newPageServer(t)
	env, _, stderr := newTestEnv(nil)
	env.HTTPClient = srv.Client()

	code := runExtractCmd(context.Background(), []string{"--no-js", srv.URL + "/prose"}, env)

	assert.Equal(t, ExitNotFound, code)
	assert.Contains(t, stderr.String(), "hint: ")
	assert.Contains(t, stderr.String(), "--readability")
}

func TestRunExtractCmd_File(t *testing.T) {
	t.Parallel()

	page := writeFile(t, t.TempDir(), "readme.html", readmePage)
	env, stdout, stderr := newTestEnv(nil)

	code := runExtractCmd(context.Background(), []string{"-k", "mermaid", page}, env)

	require.Equal(t, ExitSuccess, code, stderr.String())
	assert.Equal(t, "graph TD\nA-->B\n", stdout.String())
}

// ---------------------------------------------------------------------------
// TestRunExtractCmd_JSON - Response envelope
// ---------------------------------------------------------------------------

func TestRunExtractCmd_JSON(t *testing.T) {
	t.Parallel()

	srv := newPageServer(t)

	t.Run("success", func(t *testing.T) {
		t.Parallel()

		env, stdout, stderr := newTestEnv(nil)
		env.HTTPClient = srv.Client()

		code := runExtractCmd(context.Background(), []string{"--no-js", "--json", srv.URL + "/readme"}, env)
		require.Equal(t, ExitSuccess, code, stderr.String())

		var resp page2doc.Response
		require.NoError(t, json.Unmarshal(stdout.Bytes(), &resp))
		assert.True(t, resp.Success)
		assert.Contains(t, resp.Markdown, "# Project")
		assert.Empty(t, resp.Mermaid)
		assert.Empty(t, resp.Error)
	})

	t.Run("failure", func(t *testing.T) {
		t.Parallel()

		env, stdout, _ := newTestEnv(nil)
		env.HTTPClient = srv.Client()

		code := runExtractCmd(context.Background(), []string{"--no-js", "--json", "-k", "mermaid", srv.URL + "/prose"}, env)
		assert.Equal(t, ExitNotFound, code)

		var resp page2doc.Response
		require.NoError(t, json.Unmarshal(stdout.Bytes(), &resp))
		assert.False(t, resp.Success)
		assert.Contains(t, resp.Error, "mermaid diagram")
	})
}

// ---------------------------------------------------------------------------
// TestRunExtractCmd_InvalidEnv - Environment tier validation
// ---------------------------------------------------------------------------

// Uses t.Setenv, so not parallel.
func TestRunExtractCmd_InvalidEnv(t *testing.T) {
	srv := newPageServer(t)
	t.Setenv("PAGE2DOC_MODE", "vector")

	env, stdout, stderr := newTestEnv(nil)
	env.HTTPClient = srv.Client()

	code := runExtractCmd(context.Background(), []string{"--no-js", srv.URL + "/readme"}, env)
	assert.Equal(t, ExitUsage, code)
	assert.Contains(t, stderr.String(), "markdown.mode")
	assert.Empty(t, stdout.String())
}
