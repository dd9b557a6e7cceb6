package cli

import (
	"path/filepath"
	"strings"
	"testing"

	"github.com/matzehuels/mindcanvas/pkg/config"
)

func TestConfigInit(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.toml")

	if _, err := execute(t, "--config", path, "config", "init"); err != nil {
		t.Fatalf("config init: %v", err)
	}
	cfg, err := config.Load(path)
	if err != nil {
		t.Fatalf("written config does not load: %v", err)
	}
	if cfg.Layout.Mode != config.Default().Layout.Mode {
		t.Errorf("mode = %q", cfg.Layout.Mode)
	}

	if _, err := execute(t, "--config", path, "config", "init"); err == nil {
		t.Error("init over an existing file should fail without --force")
	}
	if _, err := execute(t, "--config", path, "config", "init", "--force"); err != nil {
		t.Errorf("init --force: %v", err)
	}
}

func TestConfigPath(t *testing.T) {
	path := writeConfig(t, config.Default())
	out, err := execute(t, "--config", path, "config", "path")
	if err != nil {
		t.Fatal(err)
	}
	if strings.TrimSpace(out) != path {
		t.Errorf("config path = %q, want %q", out, path)
	}
}

func TestConfigRows(t *testing.T) {
	cfg := config.Default()
	cfg.Server.AllowedOrigins = []string{"https://a.example", "https://b.example"}
	rows := configRows(cfg)

	got := make(map[string]string, len(rows))
	for _, kv := range rows {
		got[kv[0]] = kv[1]
	}
	want := map[string]string{
		"layout.canvas":   "1200x800",
		"settle.debounce": "250ms",
		"server.origins":  "https://a.example, https://b.example",
		"viewport.fit":    "0.8",
	}
	for k, v := range want {
		if got[k] != v {
			t.Errorf("%s = %q, want %q", k, got[k], v)
		}
	}
}
