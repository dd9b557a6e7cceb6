package cli

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/matzehuels/mindcanvas/pkg/cache"
	"github.com/matzehuels/mindcanvas/pkg/config"
	"github.com/matzehuels/mindcanvas/pkg/observability"
	"github.com/matzehuels/mindcanvas/pkg/pipeline"
)

func get(t *testing.T, url string) (int, string) {
	t.Helper()
	resp, err := http.Get(url)
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	body, _ := io.ReadAll(resp.Body)
	return resp.StatusCode, string(body)
}

func TestServeMetrics(t *testing.T) {
	t.Cleanup(observability.Reset)

	c := New(io.Discard, LogInfo)
	srv := c.newServer(pipeline.NewRunner(cache.NewNullCache(), nil, c.Logger))
	ts := httptest.NewServer(srv.Handler())
	defer ts.Close()

	tree := `{"tree":{"id":"r","text":"Roadmap","children":[{"id":"a","text":"Plan"}]}}`
	resp, err := http.Post(ts.URL+"/v1/layout", "application/json", strings.NewReader(tree))
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("layout status = %d", resp.StatusCode)
	}

	code, body := get(t, ts.URL+"/metrics")
	if code != http.StatusOK {
		t.Fatalf("metrics status = %d", code)
	}
	for _, want := range []string{"mindcanvas_http_requests_total", "mindcanvas_stage_duration_seconds"} {
		if !strings.Contains(body, want) {
			t.Errorf("metrics missing %s", want)
		}
	}
}

func TestServeWithoutMetrics(t *testing.T) {
	t.Cleanup(observability.Reset)

	c := New(io.Discard, LogInfo)
	c.Config = config.Default()
	c.Config.Server.Metrics = false
	ts := httptest.NewServer(c.newServer(nil).Handler())
	defer ts.Close()

	if code, _ := get(t, ts.URL+"/metrics"); code != http.StatusNotFound {
		t.Errorf("metrics status = %d, want 404", code)
	}
	if code, body := get(t, ts.URL+"/healthz"); code != http.StatusOK || !strings.Contains(body, "ok") {
		t.Errorf("healthz = %d %s", code, body)
	}
}
