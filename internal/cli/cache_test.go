package cli

import (
	"bytes"
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/alicebob/miniredis/v2"

	"github.com/matzehuels/mindcanvas/pkg/cache"
	"github.com/matzehuels/mindcanvas/pkg/config"
)

// writeConfig saves cfg to a temporary file and returns its path.
func writeConfig(t *testing.T, cfg *config.Config) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := config.Save(path, cfg); err != nil {
		t.Fatalf("save config: %v", err)
	}
	return path
}

// execute runs the root command with args and returns its stdout.
func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	c := New(io.Discard, LogInfo)
	root := c.RootCommand()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(io.Discard)
	root.SetArgs(args)
	err := root.ExecuteContext(context.Background())
	return out.String(), err
}

func TestCacheLocation(t *testing.T) {
	tests := []struct {
		name  string
		cache config.CacheConfig
		want  string
	}{
		{"none", config.CacheConfig{Backend: config.CacheNone}, "disabled"},
		{"file dir", config.CacheConfig{Backend: config.CacheFile, Dir: "/tmp/mc"}, "/tmp/mc"},
		{"file default", config.CacheConfig{Backend: config.CacheFile}, cache.DefaultDir()},
		{"redis", config.CacheConfig{Backend: config.CacheRedis, RedisAddr: "cache:6379", RedisPrefix: "mc:"}, "redis://cache:6379 (prefix mc:)"},
		{"redis db", config.CacheConfig{Backend: config.CacheRedis, RedisAddr: "cache:6379", RedisDB: 2}, "redis://cache:6379/2"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := config.Default()
			cfg.Cache = tt.cache
			if got := cacheLocation(cfg); got != tt.want {
				t.Errorf("cacheLocation() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestCachePathCommand(t *testing.T) {
	cfg := config.Default()
	cfg.Cache.Dir = filepath.Join(t.TempDir(), "store")
	out, err := execute(t, "--config", writeConfig(t, cfg), "cache", "path")
	if err != nil {
		t.Fatalf("cache path: %v", err)
	}
	if strings.TrimSpace(out) != cfg.Cache.Dir {
		t.Errorf("cache path = %q, want %q", out, cfg.Cache.Dir)
	}
}

func TestCacheClearFile(t *testing.T) {
	cfg := config.Default()
	cfg.Cache.Dir = t.TempDir()
	for _, name := range []string{"a.json", "b.json"} {
		if err := os.WriteFile(filepath.Join(cfg.Cache.Dir, name), []byte("{}"), 0o644); err != nil {
			t.Fatal(err)
		}
	}

	if _, err := execute(t, "--config", writeConfig(t, cfg), "cache", "clear"); err != nil {
		t.Fatalf("cache clear: %v", err)
	}
	entries, err := os.ReadDir(cfg.Cache.Dir)
	if err != nil {
		t.Fatalf("cache dir should survive: %v", err)
	}
	if len(entries) != 0 {
		t.Errorf("cache dir has %d entries after clear", len(entries))
	}
}

func TestCacheClearRedis(t *testing.T) {
	mr := miniredis.RunT(t)
	mr.Set("mc:layout:abc", "1")
	mr.Set("mc:render:def", "2")
	mr.Set("other:key", "3")

	cfg := config.Default()
	cfg.Cache = config.CacheConfig{Backend: config.CacheRedis, RedisAddr: mr.Addr(), RedisPrefix: "mc:"}

	if _, err := execute(t, "--config", writeConfig(t, cfg), "cache", "clear"); err != nil {
		t.Fatalf("cache clear: %v", err)
	}
	if mr.Exists("mc:layout:abc") || mr.Exists("mc:render:def") {
		t.Error("prefixed keys should be cleared")
	}
	if !mr.Exists("other:key") {
		t.Error("keys outside the prefix should survive")
	}
}

func TestCacheClearUnreachableRedis(t *testing.T) {
	mr := miniredis.RunT(t)
	addr := mr.Addr()
	mr.Close()

	cfg := config.Default()
	cfg.Cache = config.CacheConfig{Backend: config.CacheRedis, RedisAddr: addr, RedisPrefix: "mc:"}
	if _, err := execute(t, "--config", writeConfig(t, cfg), "cache", "clear"); err == nil {
		t.Error("clearing an unreachable redis should fail")
	}
}
