// Package config loads stateflow settings from a TOML file.
//
// The default location is $XDG_CONFIG_HOME/stateflow/config.toml (falling
// back to ~/.config/stateflow/config.toml). A missing file is not an error;
// every setting has a default:
//
//	[store]
//	backend = "file"          # file | memory | redis | mongo | postgres
//	dir = ""                  # file backend, defaults to the XDG data dir
//	url = ""                  # redis, mongo and postgres
//
//	[layout]
//	step_height = 60
//
//	[server]
//	addr = ":8080"
//	metrics = true
//
//	[cache]
//	backend = "file"          # file | redis | none
package config

import (
	"context"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/go-playground/validator/v10"
	"github.com/redis/go-redis/v9"

	"github.com/matzehuels/stateflow/pkg/cache"
	"github.com/matzehuels/stateflow/pkg/errors"
	"github.com/matzehuels/stateflow/pkg/layout"
	"github.com/matzehuels/stateflow/pkg/store"
)

// Store backends.
const (
	BackendFile     = "file"
	BackendMemory   = "memory"
	BackendRedis    = "redis"
	BackendMongo    = "mongo"
	BackendPostgres = "postgres"
	BackendNone     = "none"
)

// Config is the complete file configuration.
type Config struct {
	Store  StoreConfig   `toml:"store"`
	Layout layout.Config `toml:"layout"`
	Server ServerConfig  `toml:"server"`
	Cache  CacheConfig   `toml:"cache"`
}

// StoreConfig selects where diagrams are persisted.
type StoreConfig struct {
	Backend    string `toml:"backend" validate:"oneof=file memory redis mongo postgres"`
	Dir        string `toml:"dir"`
	URL        string `toml:"url" validate:"required_if=Backend redis,required_if=Backend mongo,required_if=Backend postgres"`
	Database   string `toml:"database"`
	Collection string `toml:"collection"`
	Prefix     string `toml:"prefix"`
}

// ServerConfig configures `stateflow serve`.
type ServerConfig struct {
	Addr    string `toml:"addr" validate:"required"`
	Metrics bool   `toml:"metrics"`
}

// CacheConfig selects the layout and artifact cache.
type CacheConfig struct {
	Backend string `toml:"backend" validate:"oneof=file redis none"`
	Dir     string `toml:"dir"`
	URL     string `toml:"url" validate:"required_if=Backend redis"`
	Prefix  string `toml:"prefix"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Store: StoreConfig{
			Backend:    BackendFile,
			Database:   "stateflow",
			Collection: "diagrams",
			Prefix:     store.DefaultRedisPrefix,
		},
		Layout: layout.DefaultConfig(),
		Server: ServerConfig{Addr: ":8080", Metrics: true},
		Cache:  CacheConfig{Backend: BackendFile, Prefix: "stateflow:cache:"},
	}
}

// DefaultPath returns the standard config file location.
func DefaultPath() (string, error) {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "stateflow", "config.toml"), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", "stateflow", "config.toml"), nil
}

// Load reads path over the defaults. An empty path means [DefaultPath];
// a missing file at the default location yields the defaults, while a
// missing explicit path is an error.
func Load(path string) (Config, error) {
	cfg := Default()
	explicit := path != ""
	if !explicit {
		p, err := DefaultPath()
		if err != nil {
			return cfg, nil
		}
		path = p
	}

	md, err := toml.DecodeFile(path, &cfg)
	if err != nil {
		if os.IsNotExist(err) {
			if explicit {
				return cfg, errors.Wrap(errors.ErrCodeFileNotFound, err, "config file %s", path)
			}
			return Default(), nil
		}
		return cfg, errors.Wrap(errors.ErrCodeInvalidFormat, err, "parse config %s", path)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		return cfg, errors.New(errors.ErrCodeInvalidInput, "unknown config keys in %s: %s", path, strings.Join(keys, ", "))
	}
	return cfg, cfg.Validate()
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// Validate checks backend names and required URLs.
func (c Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		if verrs, ok := err.(validator.ValidationErrors); ok && len(verrs) > 0 {
			e := verrs[0]
			return errors.New(errors.ErrCodeInvalidInput, "config %s: failed %q (value %v)",
				strings.ToLower(e.Namespace()), e.Tag(), e.Value())
		}
		return errors.Wrap(errors.ErrCodeInvalidInput, err, "invalid config")
	}
	return nil
}

// OpenStore connects the configured store backend.
func (c Config) OpenStore(ctx context.Context) (store.Store, error) {
	s := c.Store
	var (
		st  store.Store
		err error
	)
	switch s.Backend {
	case BackendMemory:
		st = store.NewMemory()
	case BackendRedis:
		st, err = store.NewRedis(ctx, s.URL, store.WithRedisPrefix(s.Prefix))
	case BackendMongo:
		st, err = store.NewMongo(ctx, s.URL, s.Database, s.Collection)
	case BackendPostgres:
		st, err = store.NewPostgres(ctx, s.URL)
	case BackendFile, "":
		st, err = store.NewFile(s.Dir)
	default:
		return nil, errors.New(errors.ErrCodeInvalidInput, "unknown store backend %q", s.Backend)
	}
	if err != nil {
		return nil, err
	}
	return st, nil
}

// OpenCache opens the configured cache backend.
func (c Config) OpenCache(ctx context.Context) (cache.Cache, error) {
	cc := c.Cache
	switch cc.Backend {
	case BackendNone:
		return cache.NewNullCache(), nil
	case BackendRedis:
		opts, err := redis.ParseURL(cc.URL)
		if err != nil {
			return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "cache url")
		}
		client := redis.NewClient(opts)
		if err := client.Ping(ctx).Err(); err != nil {
			_ = client.Close()
			return nil, errors.Wrap(errors.ErrCodeStoreUnavailable, err, "connect cache")
		}
		return cache.NewRedisCache(client, cc.Prefix), nil
	case BackendFile, "":
		dir := cc.Dir
		if dir == "" {
			d, err := cache.DefaultDir()
			if err != nil {
				return nil, err
			}
			dir = d
		}
		return cache.NewFileCache(dir)
	}
	return nil, errors.New(errors.ErrCodeInvalidInput, "unknown cache backend %q", cc.Backend)
}
