package server_test

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"testing/iotest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lwmacct/251219-go-pkg-ctemplate/internal/command/server"
	"github.com/lwmacct/251219-go-pkg-ctemplate/pkg/ctemplate"
)

func newTestServer(t *testing.T) (*httptest.Server, *ctemplate.MemoryLoader) {
	t.Helper()

	ml := ctemplate.NewMemoryLoader()
	ml.Set("page.tpl", "<h1>{{TITLE:h}}</h1>\n\n{{#ROW}}<li>{{N}}</li>{{/ROW}}\n")
	ml.Set("broken.tpl", "{{#OPEN}}")

	logger := slog.New(slog.DiscardHandler)
	reg := ctemplate.NewRegistry(ctemplate.WithLoader(ml), ctemplate.WithLogger(logger))
	for _, name := range []string{"page.tpl", "broken.tpl", "gone.tpl"} {
		_ = reg.RegisterTemplate(name)
	}

	ts := httptest.NewServer(server.NewHandler(reg, ctemplate.DoNotStrip, logger))
	t.Cleanup(ts.Close)

	return ts, ml
}

func doRequest(t *testing.T, method, url, contentType, body string) (int, string) {
	t.Helper()

	req, err := http.NewRequestWithContext(t.Context(), method, url, strings.NewReader(body))
	require.NoError(t, err)
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()

	data, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	return resp.StatusCode, string(data)
}

func TestHandler_Health(t *testing.T) {
	ts, _ := newTestServer(t)

	code, body := doRequest(t, http.MethodGet, ts.URL+"/health", "", "")
	assert.Equal(t, http.StatusOK, code)
	assert.JSONEq(t, `{"status":"ok"}`, body)
}

func TestHandler_Expand(t *testing.T) {
	ts, _ := newTestServer(t)

	tests := []struct {
		name        string
		path        string
		contentType string
		body        string
		wantCode    int
		want        string
	}{
		{
			name:        "yaml body",
			path:        "/expand/page.tpl",
			contentType: "application/yaml",
			body:        "TITLE: <Hi>\nROW:\n  - N: 1\n  - N: 2\n",
			wantCode:    http.StatusOK,
			want:        "<h1>&lt;Hi&gt;</h1>\n\n<li>1</li><li>2</li>\n",
		},
		{
			name:        "json body with strip",
			path:        "/expand/page.tpl?strip=strip_blank_lines",
			contentType: "application/json",
			body:        `{"TITLE": "x"}`,
			wantCode:    http.StatusOK,
			want:        "<h1>x</h1>\n\n",
		},
		{
			name:     "empty body",
			path:     "/expand/page.tpl?strip=2",
			wantCode: http.StatusOK,
			want:     "<h1></h1>",
		},
		{name: "missing template", path: "/expand/nope.tpl", wantCode: http.StatusNotFound, want: "not found"},
		{name: "syntax error", path: "/expand/broken.tpl", wantCode: http.StatusUnprocessableEntity, want: "section is never closed"},
		{name: "bad strip", path: "/expand/page.tpl?strip=9", wantCode: http.StatusBadRequest, want: "unknown strip mode"},
		{
			name:        "bad data",
			path:        "/expand/page.tpl",
			contentType: "application/json",
			body:        `[1, 2]`,
			wantCode:    http.StatusBadRequest,
			want:        "invalid dictionary data",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			code, body := doRequest(t, http.MethodPost, ts.URL+tt.path, tt.contentType, tt.body)
			assert.Equal(t, tt.wantCode, code)
			if tt.wantCode == http.StatusOK {
				assert.Equal(t, tt.want, body)

				return
			}
			assert.Contains(t, body, tt.want)
		})
	}
}

func TestHandler_Dump(t *testing.T) {
	ts, _ := newTestServer(t)

	code, body := doRequest(t, http.MethodPost, ts.URL+"/dump?name=req", "application/json", `{"A": 1, "S": true}`)
	require.Equal(t, http.StatusOK, code)
	assert.Contains(t, body, "dictionary 'req' {\n   A: >1<\n   section S (dict 1 of 1) -->\n")
}

func TestHandler_BadSyntaxAndReload(t *testing.T) {
	ts, ml := newTestServer(t)

	code, body := doRequest(t, http.MethodGet, ts.URL+"/bad-syntax", "", "")
	require.Equal(t, http.StatusOK, code)

	var got struct {
		Bad     []string `json:"bad"`
		Missing []string `json:"missing"`
	}
	require.NoError(t, json.Unmarshal([]byte(body), &got))
	assert.Equal(t, []string{"broken.tpl"}, got.Bad)
	assert.Equal(t, []string{"gone.tpl"}, got.Missing)

	ml.Set("broken.tpl", "{{#OPEN}}fixed{{/OPEN}}")
	code, _ = doRequest(t, http.MethodPost, ts.URL+"/reload", "", "")
	require.Equal(t, http.StatusOK, code)

	code, body = doRequest(t, http.MethodPost, ts.URL+"/expand/broken.tpl", "application/json", `{"OPEN": true}`)
	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, "fixed", body)
}

func TestHandler_NamesOutsideRoot(t *testing.T) {
	base := t.TempDir()
	root := filepath.Join(base, "templates")
	require.NoError(t, os.MkdirAll(filepath.Join(root, "sub"), 0o750))
	require.NoError(t, os.WriteFile(filepath.Join(root, "sub", "page.tpl"), []byte("page {{A}}"), 0o600))
	secret := filepath.Join(base, "secret.txt")
	require.NoError(t, os.WriteFile(secret, []byte("TOP-SECRET"), 0o600))

	logger := slog.New(slog.DiscardHandler)
	reg := ctemplate.NewRegistry(ctemplate.WithRootDirectory(root), ctemplate.WithLogger(logger))
	ts := httptest.NewServer(server.NewHandler(reg, ctemplate.DoNotStrip, logger))
	t.Cleanup(ts.Close)

	code, body := doRequest(t, http.MethodPost, ts.URL+"/expand/sub/page.tpl", "application/json", `{"A": 1}`)
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, "page 1", body)

	for _, path := range []string{
		"/expand/..%2Fsecret.txt",
		"/expand/sub%2F..%2F..%2Fsecret.txt",
		"/expand/" + url.PathEscape(secret),
	} {
		code, body := doRequest(t, http.MethodPost, ts.URL+path, "", "")
		assert.Equal(t, http.StatusNotFound, code, path)
		assert.NotContains(t, body, "TOP-SECRET", path)
	}
}

func TestHandler_BodyErrors(t *testing.T) {
	logger := slog.New(slog.DiscardHandler)
	h := server.NewHandler(ctemplate.NewRegistry(ctemplate.WithLogger(logger)), ctemplate.DoNotStrip, logger)

	tests := []struct {
		name     string
		body     io.Reader
		wantCode int
		want     string
	}{
		{
			name:     "oversized body",
			body:     strings.NewReader("A: " + strings.Repeat("x", 4<<20)),
			wantCode: http.StatusRequestEntityTooLarge,
			want:     "request body too large",
		},
		{
			name:     "read failure",
			body:     iotest.ErrReader(errors.New("connection reset")),
			wantCode: http.StatusBadRequest,
			want:     "connection reset",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/dump", tt.body))
			assert.Equal(t, tt.wantCode, rec.Code)
			assert.Contains(t, rec.Body.String(), tt.want)
		})
	}
}
