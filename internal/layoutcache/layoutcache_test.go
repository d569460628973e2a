package layoutcache

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestReadMissFromEmptyCache(t *testing.T) {
	c := New(t.TempDir())

	data, ok, err := c.Read(1)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if ok || data != nil {
		t.Fatalf("expected miss, got ok=%v data=%s", ok, data)
	}
}

func TestWriteThenRead(t *testing.T) {
	c := New(t.TempDir())

	if err := c.Write(1, json.RawMessage(`{"page": 1, "blocks": []}`)); err != nil {
		t.Fatalf("write: %v", err)
	}

	data, ok, err := c.Read(1)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if !ok {
		t.Fatal("expected hit")
	}
	// Stored compact, read back byte-for-byte.
	if string(data) != `{"page":1,"blocks":[]}` {
		t.Fatalf("unexpected record: %s", data)
	}
}

func TestReadOtherPageStillMisses(t *testing.T) {
	c := New(t.TempDir())
	if err := c.Write(1, json.RawMessage(`{"page":1}`)); err != nil {
		t.Fatalf("write: %v", err)
	}

	_, ok, err := c.Read(2)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if ok {
		t.Fatal("expected miss for uncached page")
	}
}

func TestNewestWriteWins(t *testing.T) {
	dir := t.TempDir()
	c := New(dir)

	if err := c.Write(1, json.RawMessage(`{"v":1}`)); err != nil {
		t.Fatalf("first write: %v", err)
	}
	if err := c.Write(2, json.RawMessage(`{"v":2}`)); err != nil {
		t.Fatalf("second write: %v", err)
	}
	if err := c.Write(1, json.RawMessage(`{"v":3}`)); err != nil {
		t.Fatalf("third write: %v", err)
	}

	data, ok, err := c.Read(1)
	if err != nil || !ok {
		t.Fatalf("read: ok=%v err=%v", ok, err)
	}
	if string(data) != `{"v":3}` {
		t.Fatalf("expected newest record, got %s", data)
	}

	data, ok, err = c.Read(2)
	if err != nil || !ok {
		t.Fatalf("read page 2: ok=%v err=%v", ok, err)
	}
	if string(data) != `{"v":2}` {
		t.Fatalf("unexpected record for page 2: %s", data)
	}

	// The log keeps all three lines; only the index moved.
	log, err := os.ReadFile(filepath.Join(dir, "analyzed-layout.jsonl"))
	if err != nil {
		t.Fatalf("read log: %v", err)
	}
	if got := strings.Count(string(log), "\n"); got != 3 {
		t.Fatalf("expected 3 log lines, got %d", got)
	}
}

func TestWriteRejectsInvalidJSON(t *testing.T) {
	c := New(t.TempDir())
	if err := c.Write(1, json.RawMessage(`{not json`)); err == nil {
		t.Fatal("expected error for invalid record")
	}
}

func TestOrphanedLogLineIsAMiss(t *testing.T) {
	dir := t.TempDir()
	c := New(dir)

	// A log line with no index entry mimics a crash between the log
	// append and the index rewrite.
	logPath := filepath.Join(dir, "analyzed-layout.jsonl")
	if err := os.WriteFile(logPath, []byte(`{"v":1}`+"\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	_, ok, err := c.Read(1)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if ok {
		t.Fatal("orphaned log line must read as a miss")
	}
}
