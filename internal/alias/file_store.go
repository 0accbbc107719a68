package alias

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/matst80/code-open/internal/obs"
	"github.com/tidwall/jsonc"
)

// FileStore keeps the table as a JSON object on disk. Comments and
// trailing commas are accepted.
type FileStore struct {
	path string
}

func NewFileStore(path string) *FileStore {
	return &FileStore{path: path}
}

func (f *FileStore) Location() string { return f.path }

// Load reads the table. A missing file is replaced by a freshly written
// empty table. A file that exists but does not parse is an error and is
// left untouched.
func (f *FileStore) Load(ctx context.Context) (Table, error) {
	data, err := os.ReadFile(f.path)
	if errors.Is(err, fs.ErrNotExist) {
		if err := f.bootstrap(); err != nil {
			return nil, err
		}
		obs.Info("alias.table.created", obs.Fields{"path": f.path})
		return Table{}, nil
	}
	if err != nil {
		return nil, &ConfigError{Location: f.path, Err: err}
	}
	table := Table{}
	if err := json.Unmarshal(jsonc.ToJSON(data), &table); err != nil {
		return nil, &ConfigError{Location: f.path, Err: fmt.Errorf("parsing: %w", err)}
	}
	if err := table.Validate(); err != nil {
		return nil, &ConfigError{Location: f.path, Err: err}
	}
	return table, nil
}

func (f *FileStore) bootstrap() error {
	if err := os.MkdirAll(filepath.Dir(f.path), 0o755); err != nil {
		return &ConfigError{Location: f.path, Err: fmt.Errorf("creating config directory: %w", err)}
	}
	data, err := json.Marshal(Table{})
	if err != nil {
		return &ConfigError{Location: f.path, Err: err}
	}
	if err := os.WriteFile(f.path, data, 0o644); err != nil {
		return &ConfigError{Location: f.path, Err: fmt.Errorf("writing empty table: %w", err)}
	}
	return nil
}
