package cli

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestCachePath(t *testing.T) {
	c := newTestCLI(t)
	cacheHome := os.Getenv("XDG_CACHE_HOME")

	got := mustRun(t, c, "cache", "path")
	want := filepath.Join(cacheHome, "stateflow")
	if strings.TrimSpace(got) != want {
		t.Errorf("cache path = %q, want %q", strings.TrimSpace(got), want)
	}
}

func TestCachePathFromConfig(t *testing.T) {
	c := newTestCLI(t)
	dir := t.TempDir()
	cfg := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(cfg, []byte("[cache]\nbackend = \"file\"\ndir = \""+filepath.ToSlash(dir)+"\"\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	got := mustRun(t, c, "--config", cfg, "cache", "path")
	if strings.TrimSpace(got) != filepath.ToSlash(dir) {
		t.Errorf("cache path = %q, want %q", strings.TrimSpace(got), dir)
	}
}

func TestCacheClear(t *testing.T) {
	c := newTestCLI(t)
	seedCart(t, c)
	mustRun(t, c, "render", "cart", "-o", filepath.Join(t.TempDir(), "cart.svg"))

	dir := filepath.Join(os.Getenv("XDG_CACHE_HOME"), "stateflow")
	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("read cache dir: %v", err)
	}
	if len(entries) == 0 {
		t.Fatal("render should populate the cache")
	}

	got := mustRun(t, c, "cache", "clear")
	if !strings.Contains(got, "Cache cleared") {
		t.Errorf("cache clear output = %q", got)
	}
	entries, _ = os.ReadDir(dir)
	if len(entries) != 0 {
		t.Errorf("cache dir still has %d entries", len(entries))
	}
}

func TestCacheClearNonFileBackend(t *testing.T) {
	c := newTestCLI(t)
	cfg := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(cfg, []byte("[cache]\nbackend = \"none\"\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	got := mustRun(t, c, "--config", cfg, "cache", "clear")
	if !strings.Contains(got, "nothing to clear") {
		t.Errorf("cache clear output = %q", got)
	}
}
