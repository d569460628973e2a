// Package space is the orchestration layer tying the document store,
// the search index, and the task runner together. Every mutation that
// touches tags or attributes writes through the store first (durable
// write), then re-indexes that single document.
package space

import (
	"context"
	"io"
	"log/slog"
	"path"
	"strings"

	"inkstone/internal/docstore"
	"inkstone/internal/index"
	"inkstone/internal/inkerr"
	"inkstone/internal/intel"
	"inkstone/internal/models"
	"inkstone/internal/registry"
	"inkstone/internal/tasks"
)

// Manager exposes the library entry points consumed by outer layers.
// It does not serialize concurrent writes to the same document; that
// responsibility stays with the caller, as does not running two
// re-index jobs on the same space at once.
type Manager struct {
	registry *registry.Registry
	index    *index.Index
	runner   *tasks.Runner
	analyzer intel.Analyzer
	log      *slog.Logger
}

// NewManager constructs a Manager over explicit dependencies.
func NewManager(reg *registry.Registry, ix *index.Index, runner *tasks.Runner, analyzer intel.Analyzer) *Manager {
	return &Manager{
		registry: reg,
		index:    ix,
		runner:   runner,
		analyzer: analyzer,
		log:      slog.Default(),
	}
}

// Runner exposes the task runner for status polling.
func (m *Manager) Runner() *tasks.Runner {
	return m.runner
}

// Store resolves the document store for a space.
func (m *Manager) Store(spaceKey string) (*docstore.Store, error) {
	space, err := m.registry.Get(spaceKey)
	if err != nil {
		return nil, err
	}
	return docstore.New(space.Path)
}

// AddDocument creates a document and indexes it.
func (m *Manager) AddDocument(ctx context.Context, spaceKey, docPath string, content io.Reader, mimeType string) error {
	store, err := m.Store(spaceKey)
	if err != nil {
		return err
	}
	if err := store.AddDocument(docPath, content, mimeType); err != nil {
		return err
	}
	return m.index.IndexDocument(ctx, spaceKey, docPath, store)
}

// ImportDocument copies an external file into the space and indexes it.
func (m *Manager) ImportDocument(ctx context.Context, spaceKey, docPath, srcPath string) error {
	store, err := m.Store(spaceKey)
	if err != nil {
		return err
	}
	if err := store.ImportDocument(docPath, srcPath); err != nil {
		return err
	}
	return m.index.IndexDocument(ctx, spaceKey, docPath, store)
}

// RemoveDocument deletes a document from disk and from the index.
func (m *Manager) RemoveDocument(ctx context.Context, spaceKey, docPath string) error {
	store, err := m.Store(spaceKey)
	if err != nil {
		return err
	}
	if err := store.RemoveDocument(docPath); err != nil {
		return err
	}
	return m.index.DeleteDocument(ctx, spaceKey, docPath)
}

// RemoveFolder deletes a folder and cascades the deletion to every
// indexed document under it.
func (m *Manager) RemoveFolder(ctx context.Context, spaceKey, folder string) error {
	store, err := m.Store(spaceKey)
	if err != nil {
		return err
	}
	docs, err := store.FindDocuments(folder)
	if err != nil {
		if inkerr.IsNotFound(err) {
			return nil
		}
		return err
	}
	if err := store.RemoveFolder(folder); err != nil {
		return err
	}
	for _, docPath := range docs {
		if err := m.index.DeleteDocument(ctx, spaceKey, docPath); err != nil {
			return err
		}
	}
	return nil
}

// RenameDocument renames a document; its associations survive because
// the index row is updated in place, not recreated.
func (m *Manager) RenameDocument(ctx context.Context, spaceKey, oldPath, newPath string) error {
	store, err := m.Store(spaceKey)
	if err != nil {
		return err
	}
	if err := store.RenameDocument(oldPath, newPath); err != nil {
		return err
	}
	return m.index.UpdateDocumentPath(ctx, spaceKey, oldPath, newPath)
}

// RenameFolder renames a folder and rewrites the indexed path of every
// document under it.
func (m *Manager) RenameFolder(ctx context.Context, spaceKey, oldPath, newPath string) error {
	store, err := m.Store(spaceKey)
	if err != nil {
		return err
	}
	docs, err := store.FindDocuments(oldPath)
	if err != nil {
		return err
	}
	if err := store.RenameFolder(oldPath, newPath); err != nil {
		return err
	}

	oldPrefix := strings.Trim(path.Clean("/"+oldPath), "/")
	newPrefix := strings.Trim(path.Clean("/"+newPath), "/")
	for _, docPath := range docs {
		moved := newPrefix + strings.TrimPrefix(docPath, oldPrefix)
		if err := m.index.UpdateDocumentPath(ctx, spaceKey, docPath, moved); err != nil {
			return err
		}
	}
	return nil
}

// AddTags merges tags into a document's metadata and re-indexes it.
func (m *Manager) AddTags(ctx context.Context, spaceKey, docPath string, tags []string) error {
	return m.mutateMeta(ctx, spaceKey, docPath, func(meta *models.Meta) {
		meta.Tags = models.NormalizeTags(append(meta.Tags, tags...))
	})
}

// RemoveTags removes tags from a document's metadata and re-indexes it.
func (m *Manager) RemoveTags(ctx context.Context, spaceKey, docPath string, tags []string) error {
	drop := map[string]struct{}{}
	for _, tag := range tags {
		drop[strings.TrimSpace(tag)] = struct{}{}
	}
	return m.mutateMeta(ctx, spaceKey, docPath, func(meta *models.Meta) {
		kept := meta.Tags[:0]
		for _, tag := range meta.Tags {
			if _, ok := drop[tag]; !ok {
				kept = append(kept, tag)
			}
		}
		meta.Tags = kept
	})
}

// SetAttribute sets one attribute to the given values and re-indexes.
func (m *Manager) SetAttribute(ctx context.Context, spaceKey, docPath, key string, value models.AttrValue) error {
	key = strings.TrimSpace(key)
	if key == "" {
		return inkerr.InvalidName("attribute key is required")
	}
	return m.mutateMeta(ctx, spaceKey, docPath, func(meta *models.Meta) {
		if meta.Attributes == nil {
			meta.Attributes = map[string]models.AttrValue{}
		}
		meta.Attributes[key] = value
	})
}

// DeleteAttribute removes one attribute and re-indexes.
func (m *Manager) DeleteAttribute(ctx context.Context, spaceKey, docPath, key string) error {
	return m.mutateMeta(ctx, spaceKey, docPath, func(meta *models.Meta) {
		delete(meta.Attributes, key)
	})
}

// mutateMeta is the merge-then-write step for tag and attribute
// mutations: read, apply, overwrite, then re-index the one document.
func (m *Manager) mutateMeta(ctx context.Context, spaceKey, docPath string, apply func(*models.Meta)) error {
	store, err := m.Store(spaceKey)
	if err != nil {
		return err
	}
	meta, err := store.ReadMeta(docPath)
	if err != nil {
		return err
	}
	apply(meta)
	if err := store.WriteMeta(docPath, meta); err != nil {
		return err
	}
	return m.index.IndexDocument(ctx, spaceKey, docPath, store)
}

// ReadMeta returns a document's metadata.
func (m *Manager) ReadMeta(spaceKey, docPath string) (*models.Meta, error) {
	store, err := m.Store(spaceKey)
	if err != nil {
		return nil, err
	}
	return store.ReadMeta(docPath)
}

// ReadDir lists a folder.
func (m *Manager) ReadDir(spaceKey, folder string) ([]models.DirEntry, error) {
	store, err := m.Store(spaceKey)
	if err != nil {
		return nil, err
	}
	return store.ReadDir(folder)
}

// Search runs a filtered document query.
func (m *Manager) Search(ctx context.Context, spaceKey string, query models.SearchQuery) ([]string, error) {
	if _, err := m.registry.Get(spaceKey); err != nil {
		return nil, err
	}
	return m.index.Search(ctx, spaceKey, query)
}

// Overview returns space statistics.
func (m *Manager) Overview(ctx context.Context, spaceKey string) (models.Overview, error) {
	if _, err := m.registry.Get(spaceKey); err != nil {
		return models.Overview{}, err
	}
	return m.index.Overview(ctx, spaceKey)
}

// ExportContent streams a document's raw content.
func (m *Manager) ExportContent(spaceKey, docPath string) (io.ReadCloser, string, error) {
	store, err := m.Store(spaceKey)
	if err != nil {
		return nil, "", err
	}
	return store.ExportContent(docPath)
}

// ExportArchive writes a zip of the whole document sidecar to w.
func (m *Manager) ExportArchive(spaceKey, docPath string, w io.Writer) error {
	store, err := m.Store(spaceKey)
	if err != nil {
		return err
	}
	return store.ExportArchive(docPath, w)
}

// SubmitReindex submits a full re-index of a space as an async task
// and returns the task id immediately.
func (m *Manager) SubmitReindex(ctx context.Context, spaceKey string) (string, error) {
	store, err := m.Store(spaceKey)
	if err != nil {
		return "", err
	}

	id, err := m.runner.Add(func(ctx context.Context, progress func(int)) error {
		return m.index.IndexSpace(ctx, spaceKey, store, progress)
	})
	if err != nil {
		return "", err
	}

	m.log.Info("reindex submitted", "space", spaceKey, "task", id)
	go func() {
		if err := m.runner.Execute(ctx, id); err != nil {
			m.log.Error("reindex task did not start", "task", id, "error", err)
		}
	}()
	return id, nil
}
