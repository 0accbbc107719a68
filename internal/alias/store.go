package alias

import (
	"context"
	"os"
	"path/filepath"

	"github.com/matst80/code-open/internal/obs"
)

// AppName names the per-user configuration directory.
const AppName = "code-open-server"

// TableFileName is the alias table file inside the configuration directory.
const TableFileName = "table.json"

// Store loads the alias table from wherever the operator keeps it.
type Store interface {
	Load(ctx context.Context) (Table, error)
	Location() string
}

// ConfigError reports an alias store that cannot be read, created or parsed.
type ConfigError struct {
	Location string
	Err      error
}

func (e *ConfigError) Error() string { return "alias table " + e.Location + ": " + e.Err.Error() }
func (e *ConfigError) Unwrap() error { return e.Err }

// DefaultTablePath returns <user config dir>/code-open-server/table.json.
func DefaultTablePath() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", &ConfigError{Location: "user config dir", Err: err}
	}
	return filepath.Join(dir, AppName, TableFileName), nil
}

// StoreConfig selects and configures an alias backend. A non-empty
// RedisAddr selects redis, otherwise the JSON file at TablePath is used.
type StoreConfig struct {
	TablePath     string
	RedisAddr     string
	RedisPassword string
	RedisDB       int
	RedisKey      string
}

// NewStore creates either a file-backed or Redis-backed alias store.
func NewStore(ctx context.Context, cfg StoreConfig) (Store, error) {
	if cfg.RedisAddr == "" {
		obs.Info("alias.backend", obs.Fields{"type": "file", "path": cfg.TablePath})
		return NewFileStore(cfg.TablePath), nil
	}
	obs.Info("alias.backend", obs.Fields{"type": "redis", "addr": cfg.RedisAddr, "key": cfg.RedisKey})
	return newRedisStore(ctx, cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB, cfg.RedisKey)
}
