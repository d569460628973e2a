// Package registry persists the space table: a small JSON file mapping
// stable space keys to named root directories.
package registry

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/natefinch/atomic"

	"inkstone/internal/inkerr"
	"inkstone/internal/models"
)

type spaceRecord struct {
	Name string `json:"name"`
	Path string `json:"path"`
}

// Registry is the on-disk space table. All methods are safe for
// concurrent use within one process.
type Registry struct {
	path string

	mu     sync.Mutex
	spaces map[string]spaceRecord
}

// Open loads the registry file at path, creating an empty table if the
// file does not exist yet.
func Open(path string) (*Registry, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return nil, inkerr.InvalidPath("registry path is required")
	}

	r := &Registry{path: path, spaces: map[string]spaceRecord{}}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return r, nil
		}
		return nil, inkerr.IO(err, "read registry %s", path)
	}
	if err := json.Unmarshal(data, &r.spaces); err != nil {
		return nil, inkerr.IO(err, "parse registry %s", path)
	}
	return r, nil
}

// Add registers a space. The path must be an existing directory; it is
// stored in absolute form. Fails if the key is already taken.
func (r *Registry) Add(space models.Space) error {
	if err := models.ValidateSpaceKey(space.Key); err != nil {
		return inkerr.InvalidName("%v", err)
	}

	abs, err := filepath.Abs(space.Path)
	if err != nil {
		return inkerr.InvalidPath("resolve space path: %v", err)
	}
	info, err := os.Stat(abs)
	if err != nil {
		if os.IsNotExist(err) {
			return inkerr.NotFound("space path does not exist: %s", abs)
		}
		return inkerr.IO(err, "stat space path")
	}
	if !info.IsDir() {
		return inkerr.InvalidPath("space path is not a directory: %s", abs)
	}

	name := strings.TrimSpace(space.Name)
	if name == "" {
		name = space.Key
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.spaces[space.Key]; ok {
		return inkerr.AlreadyExists("space %q already registered", space.Key)
	}
	r.spaces[space.Key] = spaceRecord{Name: name, Path: abs}
	return r.persistLocked()
}

// Get returns a space by key.
func (r *Registry) Get(key string) (models.Space, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	rec, ok := r.spaces[key]
	if !ok {
		return models.Space{}, inkerr.NotFound("space not found: %s", key)
	}
	return models.Space{Key: key, Name: rec.Name, Path: rec.Path}, nil
}

// Remove deletes a space entry. Document files are left untouched.
func (r *Registry) Remove(key string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.spaces[key]; !ok {
		return inkerr.NotFound("space not found: %s", key)
	}
	delete(r.spaces, key)
	return r.persistLocked()
}

// List returns all spaces ordered by key.
func (r *Registry) List() []models.Space {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]models.Space, 0, len(r.spaces))
	for key, rec := range r.spaces {
		out = append(out, models.Space{Key: key, Name: rec.Name, Path: rec.Path})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Key < out[j].Key })
	return out
}

func (r *Registry) persistLocked() error {
	data, err := json.MarshalIndent(r.spaces, "", "  ")
	if err != nil {
		return inkerr.IO(err, "encode registry")
	}
	if err := os.MkdirAll(filepath.Dir(r.path), 0o755); err != nil {
		return inkerr.IO(err, "create registry dir")
	}
	if err := atomic.WriteFile(r.path, bytes.NewReader(data)); err != nil {
		return inkerr.IO(err, "write registry %s", r.path)
	}
	return nil
}
