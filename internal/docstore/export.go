package docstore

import (
	"archive/zip"
	"io"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"strings"

	"inkstone/internal/inkerr"
)

// ExportContent returns the raw content byte-stream of a document and
// the suggested download filename (basename plus content extension).
func (s *Store) ExportContent(docPath string) (io.ReadCloser, string, error) {
	dir, err := s.SidecarDir(docPath)
	if err != nil {
		return nil, "", err
	}
	contentName, err := contentFileName(dir)
	if err != nil {
		return nil, "", err
	}
	f, err := os.Open(filepath.Join(dir, contentName))
	if err != nil {
		return nil, "", inkerr.IO(err, "open content for %s", docPath)
	}
	return f, path.Base(docPath) + filepath.Ext(contentName), nil
}

// ExportArchive writes a zip of the entire sidecar directory (content,
// metadata, annotations, caches) to w. Files are enumerated in lexical
// order so exports are reproducible for a given input.
func (s *Store) ExportArchive(docPath string, w io.Writer) error {
	dir, err := s.SidecarDir(docPath)
	if err != nil {
		return err
	}

	zw := zip.NewWriter(w)
	archiveRoot := path.Base(docPath) + SidecarSuffix

	// WalkDir visits entries in lexical order.
	walkErr := filepath.WalkDir(dir, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		rel, err := filepath.Rel(dir, p)
		if err != nil {
			return err
		}
		info, err := d.Info()
		if err != nil {
			return err
		}
		header, err := zip.FileInfoHeader(info)
		if err != nil {
			return err
		}
		header.Name = path.Join(archiveRoot, filepath.ToSlash(rel))
		header.Method = zip.Deflate

		entry, err := zw.CreateHeader(header)
		if err != nil {
			return err
		}
		f, err := os.Open(p)
		if err != nil {
			return err
		}
		defer f.Close()
		_, err = io.Copy(entry, f)
		return err
	})
	if walkErr != nil {
		_ = zw.Close()
		return inkerr.IO(walkErr, "archive %s", docPath)
	}
	if err := zw.Close(); err != nil {
		return inkerr.IO(err, "finish archive for %s", docPath)
	}
	return nil
}

func contentFileName(dir string) (string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return "", inkerr.IO(err, "read sidecar")
	}
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() {
			continue
		}
		if name == contentFilePrefix || strings.HasPrefix(name, contentFilePrefix+".") {
			return name, nil
		}
	}
	return "", inkerr.NotFound("document has no content file")
}
