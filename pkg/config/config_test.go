package config

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/alicebob/miniredis/v2"

	"github.com/matzehuels/stateflow/pkg/cache"
	"github.com/matzehuels/stateflow/pkg/errors"
	"github.com/matzehuels/stateflow/pkg/layout"
	"github.com/matzehuels/stateflow/pkg/store"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestDefaultPath(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", "/xdg")
	got, err := DefaultPath()
	if err != nil {
		t.Fatal(err)
	}
	if want := filepath.Join("/xdg", "stateflow", "config.toml"); got != want {
		t.Errorf("DefaultPath() = %q, want %q", got, want)
	}
}

func TestLoadMissingDefault(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Store.Backend != BackendFile || cfg.Server.Addr != ":8080" {
		t.Errorf("unexpected defaults: %+v", cfg)
	}
	if cfg.Layout != layout.DefaultConfig() {
		t.Error("layout should default to the standard geometry")
	}
}

func TestLoadMissingExplicit(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.toml"))
	if !errors.Is(err, errors.ErrCodeFileNotFound) {
		t.Errorf("got %v, want FILE_NOT_FOUND", err)
	}
}

func TestLoadOverridesDefaults(t *testing.T) {
	path := writeConfig(t, `
[store]
backend = "memory"

[layout]
step_height = 80
actor_gap = 20

[server]
addr = "127.0.0.1:9000"
metrics = false

[cache]
backend = "none"
`)
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Store.Backend != BackendMemory {
		t.Errorf("store backend = %q", cfg.Store.Backend)
	}
	if cfg.Layout.StepHeight != 80 || cfg.Layout.ActorGap != 20 {
		t.Errorf("layout overrides not applied: %+v", cfg.Layout)
	}
	if cfg.Layout.ActorWidth != layout.DefaultConfig().ActorWidth {
		t.Error("unset layout keys should keep their defaults")
	}
	if cfg.Server.Addr != "127.0.0.1:9000" || cfg.Server.Metrics {
		t.Errorf("server = %+v", cfg.Server)
	}
	if cfg.Cache.Backend != BackendNone {
		t.Errorf("cache backend = %q", cfg.Cache.Backend)
	}
}

func TestLoadRejects(t *testing.T) {
	tests := []struct {
		name    string
		content string
		code    errors.Code
	}{
		{"syntax", "[store\nbackend=", errors.ErrCodeInvalidFormat},
		{"unknown key", "[store]\nbakend = \"file\"\n", errors.ErrCodeInvalidInput},
		{"unknown backend", "[store]\nbackend = \"sqlite\"\n", errors.ErrCodeInvalidInput},
		{"redis without url", "[store]\nbackend = \"redis\"\n", errors.ErrCodeInvalidInput},
		{"cache redis without url", "[cache]\nbackend = \"redis\"\n", errors.ErrCodeInvalidInput},
		{"empty addr", "[server]\naddr = \"\"\n", errors.ErrCodeInvalidInput},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(writeConfig(t, tt.content))
			if !errors.Is(err, tt.code) {
				t.Errorf("got %v, want %s", err, tt.code)
			}
		})
	}
}

func TestOpenStore(t *testing.T) {
	ctx := context.Background()

	cfg := Default()
	cfg.Store.Backend = BackendMemory
	st, err := cfg.OpenStore(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if _, ok := st.(*store.Memory); !ok {
		t.Errorf("memory backend opened %T", st)
	}

	cfg.Store = StoreConfig{Backend: BackendFile, Dir: t.TempDir()}
	st, err = cfg.OpenStore(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if f, ok := st.(*store.File); !ok || f.Path() != cfg.Store.Dir {
		t.Errorf("file backend opened %T", st)
	}

	mr := miniredis.RunT(t)
	cfg.Store = StoreConfig{Backend: BackendRedis, URL: "redis://" + mr.Addr(), Prefix: "t:"}
	st, err = cfg.OpenStore(ctx)
	if err != nil {
		t.Fatal(err)
	}
	defer st.Close()
	if _, ok := st.(*store.Redis); !ok {
		t.Errorf("redis backend opened %T", st)
	}

	cfg.Store.Backend = "bogus"
	if _, err := cfg.OpenStore(ctx); !errors.Is(err, errors.ErrCodeInvalidInput) {
		t.Errorf("got %v", err)
	}
}

func TestOpenCache(t *testing.T) {
	ctx := context.Background()
	cfg := Default()

	cfg.Cache = CacheConfig{Backend: BackendNone}
	c, err := cfg.OpenCache(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if _, ok := c.(*cache.NullCache); !ok {
		t.Errorf("none backend opened %T", c)
	}

	dir := t.TempDir()
	cfg.Cache = CacheConfig{Backend: BackendFile, Dir: dir}
	c, err = cfg.OpenCache(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if fc, ok := c.(*cache.FileCache); !ok || fc.Dir() != dir {
		t.Errorf("file backend opened %T", c)
	}

	mr := miniredis.RunT(t)
	cfg.Cache = CacheConfig{Backend: BackendRedis, URL: "redis://" + mr.Addr(), Prefix: "c:"}
	c, err = cfg.OpenCache(ctx)
	if err != nil {
		t.Fatal(err)
	}
	defer c.Close()
	if err := c.Set(ctx, "k", []byte("v"), 0); err != nil {
		t.Fatal(err)
	}
	if !mr.Exists("c:k") {
		t.Error("redis cache did not apply the prefix")
	}

	cfg.Cache = CacheConfig{Backend: BackendRedis, URL: "redis://127.0.0.1:1"}
	if _, err := cfg.OpenCache(ctx); !errors.Is(err, errors.ErrCodeStoreUnavailable) {
		t.Errorf("unreachable redis: got %v", err)
	}
}
