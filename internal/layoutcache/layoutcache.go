// Package layoutcache memoizes expensive per-page analysis results
// inside a document's sidecar: an append-only JSONL log plus a JSON map
// from page number to line offset. The log line is flushed to disk
// before the index is rewritten, so the index never points past the end
// of the log; an orphaned log line after a crash is just a miss.
package layoutcache

import (
	"bufio"
	"bytes"
	"encoding/json"
	"io"
	"os"
	"path/filepath"
	"strconv"

	"github.com/natefinch/atomic"

	"inkstone/internal/docstore"
	"inkstone/internal/inkerr"
)

// Cache is the layout cache of one document sidecar directory. It is
// not safe for concurrent writers; callers serialize writes per
// document.
type Cache struct {
	indexPath string
	logPath   string
}

// New opens the layout cache inside sidecarDir.
func New(sidecarDir string) *Cache {
	return &Cache{
		indexPath: filepath.Join(sidecarDir, docstore.LayoutIndexFileName),
		logPath:   filepath.Join(sidecarDir, docstore.LayoutLogFileName),
	}
}

// Read returns the cached layout for a page. A missing index file or
// absent page entry is a miss (ok=false), never an error.
func (c *Cache) Read(page int) (json.RawMessage, bool, error) {
	index, err := c.readIndex()
	if err != nil {
		return nil, false, err
	}
	offset, ok := index[page]
	if !ok {
		return nil, false, nil
	}

	f, err := os.Open(c.logPath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, false, nil
		}
		return nil, false, inkerr.IO(err, "open layout log")
	}
	defer f.Close()

	if _, err := f.Seek(offset, io.SeekStart); err != nil {
		return nil, false, inkerr.IO(err, "seek layout log")
	}
	reader := bufio.NewReader(f)
	line, err := reader.ReadBytes('\n')
	if err != nil && err != io.EOF {
		return nil, false, inkerr.IO(err, "read layout log")
	}
	line = bytes.TrimRight(line, "\n")
	if len(line) == 0 {
		return nil, false, nil
	}
	if !json.Valid(line) {
		return nil, false, inkerr.IO(nil, "corrupt layout log line at offset %d", offset)
	}
	return json.RawMessage(append([]byte(nil), line...)), true, nil
}

// Write appends data as one JSON line to the log, syncs it, then
// points the index entry for the page at the new line. The newest
// write wins in the index; the log keeps history.
func (c *Cache) Write(page int, data json.RawMessage) error {
	compact := &bytes.Buffer{}
	if err := json.Compact(compact, data); err != nil {
		return inkerr.IO(err, "encode layout record")
	}

	f, err := os.OpenFile(c.logPath, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return inkerr.IO(err, "open layout log")
	}
	info, err := f.Stat()
	if err != nil {
		_ = f.Close()
		return inkerr.IO(err, "stat layout log")
	}
	offset := info.Size()

	if _, err := f.Write(append(compact.Bytes(), '\n')); err != nil {
		_ = f.Close()
		return inkerr.IO(err, "append layout log")
	}
	// The log line must be durable before the index can reference it.
	if err := f.Sync(); err != nil {
		_ = f.Close()
		return inkerr.IO(err, "sync layout log")
	}
	if err := f.Close(); err != nil {
		return inkerr.IO(err, "close layout log")
	}

	index, err := c.readIndex()
	if err != nil {
		return err
	}
	index[page] = offset
	return c.writeIndex(index)
}

func (c *Cache) readIndex() (map[int]int64, error) {
	data, err := os.ReadFile(c.indexPath)
	if err != nil {
		if os.IsNotExist(err) {
			return map[int]int64{}, nil
		}
		return nil, inkerr.IO(err, "read layout index")
	}

	raw := map[string]int64{}
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, inkerr.IO(err, "parse layout index")
	}
	index := make(map[int]int64, len(raw))
	for key, offset := range raw {
		page, err := strconv.Atoi(key)
		if err != nil {
			return nil, inkerr.IO(err, "parse layout index page %q", key)
		}
		index[page] = offset
	}
	return index, nil
}

func (c *Cache) writeIndex(index map[int]int64) error {
	raw := make(map[string]int64, len(index))
	for page, offset := range index {
		raw[strconv.Itoa(page)] = offset
	}
	data, err := json.Marshal(raw)
	if err != nil {
		return inkerr.IO(err, "encode layout index")
	}
	if err := atomic.WriteFile(c.indexPath, bytes.NewReader(data)); err != nil {
		return inkerr.IO(err, "write layout index")
	}
	return nil
}
