// Package docstore owns the on-disk representation of documents: a
// <name>.ink sidecar directory per document holding raw content plus
// metadata, annotations, and cache files. It never touches the search
// index; keeping index updates with the caller keeps the store
// rebuildable from disk alone.
package docstore

import (
	"bytes"
	"encoding/json"
	"io"
	"mime"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/natefinch/atomic"

	"inkstone/internal/inkerr"
	"inkstone/internal/models"
)

const (
	// SidecarSuffix marks a directory as one document.
	SidecarSuffix = ".ink"

	MetaFileName        = "meta.json"
	AnnotationsFileName = "annotations.json"
	LayoutIndexFileName = "analyzed-layout-index.json"
	LayoutLogFileName   = "analyzed-layout.jsonl"

	contentFilePrefix = "content"

	fallbackMimeType = "application/octet-stream"
)

// Characters illegal in a document basename on at least one supported OS.
const illegalNameChars = "/\x00<>:\"\\|?*"

var extensionByMimeType = map[string]string{
	"application/pdf": ".pdf",
	"image/jpeg":      ".jpg",
	"image/png":       ".png",
	"text/markdown":   ".md",
	"text/plain":      ".txt",
}

// Store resolves logical document paths under one space root. It holds
// no locks; callers serialize writes to the same document.
type Store struct {
	root string
}

// New opens a store over an existing space root directory.
func New(root string) (*Store, error) {
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, inkerr.InvalidPath("resolve space root: %v", err)
	}
	info, err := os.Stat(abs)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, inkerr.NotFound("space root does not exist: %s", abs)
		}
		return nil, inkerr.IO(err, "stat space root")
	}
	if !info.IsDir() {
		return nil, inkerr.InvalidPath("space root is not a directory: %s", abs)
	}
	return &Store{root: abs}, nil
}

// Root returns the absolute space root directory.
func (s *Store) Root() string {
	return s.root
}

// AddDocument creates the sidecar directory for a new document, writes
// its content file, and seeds meta.json with the basename as title.
func (s *Store) AddDocument(docPath string, content io.Reader, mimeType string) error {
	return s.addDocument(docPath, content, mimeType, extensionFor(mimeType))
}

// ImportDocument copies an external file into the store as a new
// document, inferring the mime type from the source extension.
func (s *Store) ImportDocument(docPath, srcPath string) error {
	f, err := os.Open(srcPath)
	if err != nil {
		if os.IsNotExist(err) {
			return inkerr.NotFound("import source does not exist: %s", srcPath)
		}
		return inkerr.IO(err, "open import source")
	}
	defer f.Close()

	ext := strings.ToLower(filepath.Ext(srcPath))
	mimeType := mime.TypeByExtension(ext)
	if mimeType == "" {
		mimeType = fallbackMimeType
	}
	if ext == "" {
		ext = extensionFor(mimeType)
	}
	return s.addDocument(docPath, f, mimeType, ext)
}

func (s *Store) addDocument(docPath string, content io.Reader, mimeType, ext string) error {
	dir, base, err := s.sidecar(docPath)
	if err != nil {
		return err
	}
	if err := checkBasename(base); err != nil {
		return err
	}

	if _, statErr := os.Stat(dir); statErr == nil {
		return inkerr.AlreadyExists("document already exists: %s", docPath)
	} else if !os.IsNotExist(statErr) {
		return inkerr.IO(statErr, "stat %s", docPath)
	}

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return inkerr.IO(err, "create sidecar for %s", docPath)
	}

	if err := atomic.WriteFile(filepath.Join(dir, contentFilePrefix+ext), content); err != nil {
		_ = os.RemoveAll(dir)
		return inkerr.IO(err, "write content for %s", docPath)
	}

	meta := models.NewMeta(mimeType, base)
	if err := s.writeMetaFile(dir, meta); err != nil {
		_ = os.RemoveAll(dir)
		return err
	}
	return nil
}

// RemoveDocument deletes a document's sidecar directory. Removing a
// missing document is not an error.
func (s *Store) RemoveDocument(docPath string) error {
	dir, _, err := s.sidecar(docPath)
	if err != nil {
		return err
	}
	if err := os.RemoveAll(dir); err != nil {
		return inkerr.IO(err, "remove %s", docPath)
	}
	return nil
}

// RemoveFolder recursively deletes a folder. Idempotent.
func (s *Store) RemoveFolder(folder string) error {
	dir, err := s.resolveFolder(folder)
	if err != nil {
		return err
	}
	if dir == s.root {
		return inkerr.InvalidPath("cannot remove space root")
	}
	if err := os.RemoveAll(dir); err != nil {
		return inkerr.IO(err, "remove folder %s", folder)
	}
	return nil
}

// RenameDocument renames a document with a single filesystem-level
// directory rename.
func (s *Store) RenameDocument(oldPath, newPath string) error {
	oldDir, _, err := s.sidecar(oldPath)
	if err != nil {
		return err
	}
	newDir, newBase, err := s.sidecar(newPath)
	if err != nil {
		return err
	}
	return s.rename(oldDir, newDir, newBase, oldPath, newPath)
}

// RenameFolder renames a folder, carrying all documents under it.
func (s *Store) RenameFolder(oldPath, newPath string) error {
	oldDir, err := s.resolveFolder(oldPath)
	if err != nil {
		return err
	}
	newDir, err := s.resolveFolder(newPath)
	if err != nil {
		return err
	}
	return s.rename(oldDir, newDir, path.Base(newPath), oldPath, newPath)
}

func (s *Store) rename(oldDir, newDir, newBase, oldPath, newPath string) error {
	if err := checkBasename(newBase); err != nil {
		return err
	}
	if _, err := os.Stat(oldDir); err != nil {
		if os.IsNotExist(err) {
			return inkerr.NotFound("not found: %s", oldPath)
		}
		return inkerr.IO(err, "stat %s", oldPath)
	}
	if _, err := os.Stat(newDir); err == nil {
		return inkerr.AlreadyExists("target already exists: %s", newPath)
	} else if !os.IsNotExist(err) {
		return inkerr.IO(err, "stat %s", newPath)
	}
	if err := os.MkdirAll(filepath.Dir(newDir), 0o755); err != nil {
		return inkerr.IO(err, "create parent of %s", newPath)
	}
	if err := os.Rename(oldDir, newDir); err != nil {
		return inkerr.IO(err, "rename %s to %s", oldPath, newPath)
	}
	return nil
}

// ReadMeta reads a document's meta.json.
func (s *Store) ReadMeta(docPath string) (*models.Meta, error) {
	dir, err := s.SidecarDir(docPath)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(filepath.Join(dir, MetaFileName))
	if err != nil {
		return nil, inkerr.IO(err, "read meta for %s", docPath)
	}
	var meta models.Meta
	if err := json.Unmarshal(data, &meta); err != nil {
		return nil, inkerr.IO(err, "parse meta for %s", docPath)
	}
	if meta.Attributes == nil {
		meta.Attributes = map[string]models.AttrValue{}
	}
	return &meta, nil
}

// WriteMeta overwrites a document's meta.json. Merge semantics live in
// the caller.
func (s *Store) WriteMeta(docPath string, meta *models.Meta) error {
	dir, err := s.SidecarDir(docPath)
	if err != nil {
		return err
	}
	return s.writeMetaFile(dir, meta)
}

func (s *Store) writeMetaFile(dir string, meta *models.Meta) error {
	data, err := json.MarshalIndent(meta, "", "  ")
	if err != nil {
		return inkerr.IO(err, "encode meta")
	}
	if err := atomic.WriteFile(filepath.Join(dir, MetaFileName), bytes.NewReader(data)); err != nil {
		return inkerr.IO(err, "write meta")
	}
	return nil
}

// ReadAnnotations reads a document's annotations. A missing
// annotations file reads as an empty list.
func (s *Store) ReadAnnotations(docPath string) ([]models.Annotation, error) {
	dir, err := s.SidecarDir(docPath)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(filepath.Join(dir, AnnotationsFileName))
	if err != nil {
		if os.IsNotExist(err) {
			return []models.Annotation{}, nil
		}
		return nil, inkerr.IO(err, "read annotations for %s", docPath)
	}
	var annotations []models.Annotation
	if err := json.Unmarshal(data, &annotations); err != nil {
		return nil, inkerr.IO(err, "parse annotations for %s", docPath)
	}
	return annotations, nil
}

// WriteAnnotations overwrites a document's annotations file.
func (s *Store) WriteAnnotations(docPath string, annotations []models.Annotation) error {
	dir, err := s.SidecarDir(docPath)
	if err != nil {
		return err
	}
	if annotations == nil {
		annotations = []models.Annotation{}
	}
	data, err := json.MarshalIndent(annotations, "", "  ")
	if err != nil {
		return inkerr.IO(err, "encode annotations")
	}
	if err := atomic.WriteFile(filepath.Join(dir, AnnotationsFileName), bytes.NewReader(data)); err != nil {
		return inkerr.IO(err, "write annotations for %s", docPath)
	}
	return nil
}

// ReadDir lists the immediate children of a folder. Entries ending in
// the sidecar suffix are documents with the suffix stripped; dotfiles
// are filtered out. Stray regular files are skipped too: only
// directories can be folders, so a loose file in a space root is not
// addressable and never surfaces in a listing.
func (s *Store) ReadDir(folder string) ([]models.DirEntry, error) {
	dir, err := s.resolveFolder(folder)
	if err != nil {
		return nil, err
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, inkerr.NotFound("folder not found: %s", folder)
		}
		return nil, inkerr.IO(err, "read folder %s", folder)
	}

	out := make([]models.DirEntry, 0, len(entries))
	for _, entry := range entries {
		name := entry.Name()
		if strings.HasPrefix(name, ".") {
			continue
		}
		if strings.HasSuffix(name, SidecarSuffix) {
			out = append(out, models.DirEntry{
				Name: strings.TrimSuffix(name, SidecarSuffix),
				Kind: models.EntryFile,
			})
			continue
		}
		if entry.IsDir() {
			out = append(out, models.DirEntry{Name: name, Kind: models.EntryFolder})
		}
	}
	return out, nil
}

// FindDocuments walks a folder recursively and returns every document
// path under it, in lexical order. Sidecar directories are leaves.
func (s *Store) FindDocuments(folder string) ([]string, error) {
	dir, err := s.resolveFolder(folder)
	if err != nil {
		return nil, err
	}
	if _, err := os.Stat(dir); err != nil {
		if os.IsNotExist(err) {
			return nil, inkerr.NotFound("folder not found: %s", folder)
		}
		return nil, inkerr.IO(err, "stat folder %s", folder)
	}

	prefix := strings.Trim(path.Clean("/"+folder), "/")
	var docs []string
	var walk func(rel, abs string) error
	walk = func(rel, abs string) error {
		entries, err := os.ReadDir(abs)
		if err != nil {
			return inkerr.IO(err, "read folder %s", rel)
		}
		for _, entry := range entries {
			name := entry.Name()
			if strings.HasPrefix(name, ".") || !entry.IsDir() {
				continue
			}
			childRel := path.Join(rel, name)
			if strings.HasSuffix(name, SidecarSuffix) {
				docs = append(docs, strings.TrimSuffix(childRel, SidecarSuffix))
				continue
			}
			if err := walk(childRel, filepath.Join(abs, name)); err != nil {
				return err
			}
		}
		return nil
	}
	if err := walk(prefix, dir); err != nil {
		return nil, err
	}
	return docs, nil
}

// DocumentExists reports whether a document sidecar exists.
func (s *Store) DocumentExists(docPath string) bool {
	dir, _, err := s.sidecar(docPath)
	if err != nil {
		return false
	}
	info, err := os.Stat(dir)
	return err == nil && info.IsDir()
}

// SidecarDir resolves a document path to its sidecar directory,
// failing with NotFound if the document does not exist.
func (s *Store) SidecarDir(docPath string) (string, error) {
	dir, _, err := s.sidecar(docPath)
	if err != nil {
		return "", err
	}
	info, err := os.Stat(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return "", inkerr.NotFound("document not found: %s", docPath)
		}
		return "", inkerr.IO(err, "stat %s", docPath)
	}
	if !info.IsDir() {
		return "", inkerr.InvalidPath("not a document: %s", docPath)
	}
	return dir, nil
}

func (s *Store) sidecar(docPath string) (dir, base string, err error) {
	rel, err := s.resolve(docPath)
	if err != nil {
		return "", "", err
	}
	return rel + SidecarSuffix, path.Base(docPath), nil
}

func (s *Store) resolveFolder(folder string) (string, error) {
	if strings.Trim(folder, "/") == "" {
		return s.root, nil
	}
	return s.resolve(folder)
}

// resolve maps a slash-separated logical path to an absolute path
// under the space root. Every resolved path must stay lexically inside
// the root.
func (s *Store) resolve(logical string) (string, error) {
	logical = strings.Trim(logical, "/")
	if logical == "" {
		return "", inkerr.InvalidPath("path is required")
	}
	clean := path.Clean(logical)
	if clean == "." || clean == ".." || strings.HasPrefix(clean, "../") {
		return "", inkerr.InvalidPath("path escapes space root: %s", logical)
	}
	for _, segment := range strings.Split(clean, "/") {
		if segment == "" || segment == "." || segment == ".." {
			return "", inkerr.InvalidPath("invalid path segment in %s", logical)
		}
	}
	return filepath.Join(s.root, filepath.FromSlash(clean)), nil
}

func checkBasename(base string) error {
	if strings.TrimSpace(base) == "" {
		return inkerr.InvalidName("name is required")
	}
	if strings.ContainsAny(base, illegalNameChars) {
		return inkerr.InvalidName("name contains illegal characters: %q", base)
	}
	return nil
}

func extensionFor(mimeType string) string {
	if ext, ok := extensionByMimeType[normalizeMimeType(mimeType)]; ok {
		return ext
	}
	if exts, err := mime.ExtensionsByType(mimeType); err == nil && len(exts) > 0 {
		return exts[0]
	}
	return ".bin"
}

func normalizeMimeType(mimeType string) string {
	parsed, _, err := mime.ParseMediaType(mimeType)
	if err != nil {
		return strings.ToLower(strings.TrimSpace(mimeType))
	}
	return parsed
}
