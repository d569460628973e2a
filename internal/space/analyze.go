package space

import (
	"context"
	"encoding/json"
	"io"
	"strings"

	"inkstone/internal/inkerr"
	"inkstone/internal/intel"
	"inkstone/internal/layoutcache"
	"inkstone/internal/models"
)

// ReadLayout returns the cached layout for a page, with ok=false on a
// cache miss.
func (m *Manager) ReadLayout(spaceKey, docPath string, page int) (json.RawMessage, bool, error) {
	store, err := m.Store(spaceKey)
	if err != nil {
		return nil, false, err
	}
	dir, err := store.SidecarDir(docPath)
	if err != nil {
		return nil, false, err
	}
	return layoutcache.New(dir).Read(page)
}

// SubmitAnalyze submits page-layout analysis of a document as an async
// task. Each analyzed page is written to the layout cache; for pages
// already cached the index moves to the newest result.
func (m *Manager) SubmitAnalyze(ctx context.Context, spaceKey, docPath string) (string, error) {
	store, err := m.Store(spaceKey)
	if err != nil {
		return "", err
	}
	dir, err := store.SidecarDir(docPath)
	if err != nil {
		return "", err
	}
	meta, err := store.ReadMeta(docPath)
	if err != nil {
		return "", err
	}
	mimeType := meta.Mimetype

	id, err := m.runner.Add(func(ctx context.Context, progress func(int)) error {
		content, _, err := store.ExportContent(docPath)
		if err != nil {
			return err
		}
		defer content.Close()

		layouts, err := m.analyze(ctx, mimeType, content)
		if err != nil {
			return err
		}

		cache := layoutcache.New(dir)
		total := len(layouts)
		for i, layout := range layouts {
			data, err := json.Marshal(layout)
			if err != nil {
				return inkerr.IO(err, "encode layout for page %d", layout.Page)
			}
			if err := cache.Write(layout.Page, data); err != nil {
				return err
			}
			progress((i + 1) * 100 / total)
		}
		return nil
	})
	if err != nil {
		return "", err
	}

	m.log.Info("analysis submitted", "space", spaceKey, "doc", docPath, "task", id)
	go func() {
		if err := m.runner.Execute(ctx, id); err != nil {
			m.log.Error("analysis task did not start", "task", id, "error", err)
		}
	}()
	return id, nil
}

func (m *Manager) analyze(ctx context.Context, mimeType string, content io.Reader) ([]intel.PageLayout, error) {
	if isPDF(mimeType) {
		return m.analyzer.AnalyzePDF(ctx, content)
	}
	layout, err := m.analyzer.AnalyzeImage(ctx, content)
	if err != nil {
		return nil, err
	}
	return []intel.PageLayout{layout}, nil
}

// Task returns a snapshot of a submitted task.
func (m *Manager) Task(id string) (models.Task, error) {
	return m.runner.Get(id)
}

func isPDF(mimeType string) bool {
	return strings.Contains(strings.ToLower(mimeType), "pdf")
}
