package server

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/matzehuels/mindcanvas/pkg/config"
	"github.com/matzehuels/mindcanvas/pkg/pipeline"
)

const treeJSON = `{"id":"r","text":"Roadmap","children":[
	{"id":"a","text":"Research","children":[{"id":"a1","text":"Interviews"}]},
	{"id":"b","text":"Build"}
]}`

func newTestServer(t *testing.T, cfg *config.Config, opts ...Option) http.Handler {
	t.Helper()
	if cfg == nil {
		cfg = config.Default()
	}
	opts = append([]Option{WithConfig(cfg)}, opts...)
	return New(pipeline.NewRunner(nil, nil, nil), opts...).Handler()
}

func do(t *testing.T, h http.Handler, method, target, contentType, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) errorBody {
	t.Helper()
	var body errorBody
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body
}

func TestHealth(t *testing.T) {
	h := newTestServer(t, nil)
	rec := do(t, h, http.MethodGet, "/healthz", "", "")

	require.Equal(t, http.StatusOK, rec.Code)
	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "ok", body["status"])
	assert.Contains(t, body, "build")
}

func TestLayout(t *testing.T) {
	h := newTestServer(t, nil)
	rec := do(t, h, http.MethodPost, "/v1/layout", "application/json", `{"tree":`+treeJSON+`}`)

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

	var resp layoutResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "measured", resp.Phase)
	assert.Len(t, resp.Positions, 4)
	assert.Len(t, resp.Connections, 3)
	assert.NotEmpty(t, resp.TreeHash)
	assert.False(t, resp.Cached)

	// Fit is on by default.
	assert.InDelta(t, 0.8, resp.Viewport.Zoom, 1e-9)
	assert.Contains(t, resp.Transform, "scale(0.8)")

	root := resp.Positions["r"]
	child := resp.Positions["a"]
	assert.Greater(t, child.Y, root.Y, "children sit below the root")
}

func TestLayoutOptions(t *testing.T) {
	h := newTestServer(t, nil)
	body := `{"tree":` + treeJSON + `,"options":{"width":600,"estimate_only":true,"fit":false}}`
	rec := do(t, h, http.MethodPost, "/v1/layout", "application/json", body)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var resp layoutResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "estimated", resp.Phase)
	assert.Equal(t, 600.0, resp.Canvas.Width)
	assert.Equal(t, 800.0, resp.Canvas.Height, "unset options keep the configured value")
	assert.Equal(t, 1.0, resp.Viewport.Zoom)
}

func TestLayoutYAML(t *testing.T) {
	h := newTestServer(t, nil)
	yaml := "id: r\ntext: Root\nchildren:\n  - id: c\n    text: Child\n"
	rec := do(t, h, http.MethodPost, "/v1/layout?mode=free-drag", "application/yaml", yaml)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var resp layoutResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Len(t, resp.Positions, 2)
	assert.Len(t, resp.Connections, 1)
}

func TestLayoutRepairs(t *testing.T) {
	h := newTestServer(t, nil)
	tree := `{"id":"r","text":"Root","children":[{"id":"x","text":"A"},{"id":"x","text":"B"}]}`
	rec := do(t, h, http.MethodPost, "/v1/layout", "application/json", `{"tree":`+tree+`}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var resp layoutResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Len(t, resp.Positions, 3, "the duplicate id is replaced, not dropped")
	require.NotEmpty(t, resp.Issues)
	assert.Equal(t, "MALFORMED_INPUT", string(resp.Issues[0].Code))
}

func TestLayoutErrors(t *testing.T) {
	tests := []struct {
		name   string
		target string
		body   string
		status int
		code   string
	}{
		{"bad json", "/v1/layout", `{"tree":`, http.StatusBadRequest, "INVALID_INPUT"},
		{"no tree", "/v1/layout", `{}`, http.StatusBadRequest, "INVALID_INPUT"},
		{"bad mode", "/v1/layout?mode=radial", `{"tree":` + treeJSON + `}`, http.StatusBadRequest, "INVALID_INPUT"},
		{"bad width", "/v1/layout?width=wide", `{"tree":` + treeJSON + `}`, http.StatusBadRequest, "INVALID_INPUT"},
		{"bad format", "/v1/render?format=gif", `{"tree":` + treeJSON + `}`, http.StatusBadRequest, "INVALID_FORMAT"},
	}
	h := newTestServer(t, nil)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := do(t, h, http.MethodPost, tt.target, "application/json", tt.body)
			assert.Equal(t, tt.status, rec.Code)
			assert.Equal(t, tt.code, string(decodeError(t, rec).Error.Code))
		})
	}
}

func TestBodyLimit(t *testing.T) {
	cfg := config.Default()
	cfg.Server.MaxBodyBytes = 16
	h := newTestServer(t, cfg)

	rec := do(t, h, http.MethodPost, "/v1/layout", "application/json", `{"tree":`+treeJSON+`}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, decodeError(t, rec).Error.Message, "exceeds 16 bytes")
}

func TestRender(t *testing.T) {
	h := newTestServer(t, nil)

	tests := []struct {
		format      string
		contentType string
		contains    string
	}{
		{"svg", "image/svg+xml", "<svg"},
		{"json", "application/json", `"connections"`},
		{"txt", "text/plain; charset=utf-8", "Roadmap"},
	}
	for _, tt := range tests {
		t.Run(tt.format, func(t *testing.T) {
			rec := do(t, h, http.MethodPost, "/v1/render?format="+tt.format, "application/json", `{"tree":`+treeJSON+`}`)
			require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
			assert.Equal(t, tt.contentType, rec.Header().Get("Content-Type"))
			assert.Equal(t, "measured", rec.Header().Get("X-Layout-Phase"))
			assert.NotEmpty(t, rec.Header().Get("X-Tree-Hash"))
			assert.Contains(t, rec.Body.String(), tt.contains)
		})
	}
}

func TestRenderTheme(t *testing.T) {
	h := newTestServer(t, nil)
	body := `{"tree":` + treeJSON + `,"options":{"theme":"dark"}}`
	rec := do(t, h, http.MethodPost, "/v1/render", "application/json", body)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, "image/svg+xml", rec.Header().Get("Content-Type"))

	rec = do(t, h, http.MethodPost, "/v1/render?theme=neon", "application/json", `{"tree":`+treeJSON+`}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestCORS(t *testing.T) {
	cfg := config.Default()
	cfg.Server.AllowedOrigins = []string{"https://app.example.com"}
	h := newTestServer(t, cfg)

	req := httptest.NewRequest(http.MethodOptions, "/v1/layout", nil)
	req.Header.Set("Origin", "https://app.example.com")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, "https://app.example.com", rec.Header().Get("Access-Control-Allow-Origin"))

	req = httptest.NewRequest(http.MethodGet, "/healthz", nil)
	req.Header.Set("Origin", "https://evil.example.com")
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, rec.Header().Get("Access-Control-Allow-Origin"))
}

func TestMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	counter := prometheus.NewCounter(prometheus.CounterOpts{Name: "mindcanvas_test_total", Help: "test"})
	reg.MustRegister(counter)
	counter.Inc()

	h := newTestServer(t, nil, WithGatherer(reg))
	rec := do(t, h, http.MethodGet, "/metrics", "", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "mindcanvas_test_total 1")

	// Without a gatherer the route is not mounted.
	h = newTestServer(t, nil)
	rec = do(t, h, http.MethodGet, "/metrics", "", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestStatusFor(t *testing.T) {
	assert.Equal(t, http.StatusBadRequest, statusFor("INVALID_FORMAT"))
	assert.Equal(t, http.StatusNotFound, statusFor("FILE_NOT_FOUND"))
	assert.Equal(t, http.StatusBadGateway, statusFor("NETWORK_ERROR"))
	assert.Equal(t, http.StatusInternalServerError, statusFor(""))
}

func TestWriteJSON(t *testing.T) {
	rec := httptest.NewRecorder()
	writeJSON(rec, http.StatusTeapot, map[string]int{"n": 1})
	assert.Equal(t, http.StatusTeapot, rec.Code)
	assert.JSONEq(t, `{"n":1}`, string(bytes.TrimSpace(rec.Body.Bytes())))
}
