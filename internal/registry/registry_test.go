package registry

import (
	"path/filepath"
	"testing"

	"inkstone/internal/inkerr"
	"inkstone/internal/models"
)

func testRegistry(t *testing.T) (*Registry, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "registry.json")
	reg, err := Open(path)
	if err != nil {
		t.Fatalf("open registry: %v", err)
	}
	return reg, path
}

func TestAddAndGet(t *testing.T) {
	reg, _ := testRegistry(t)
	root := t.TempDir()

	if err := reg.Add(models.Space{Key: "s1", Name: "Notes", Path: root}); err != nil {
		t.Fatalf("add: %v", err)
	}

	space, err := reg.Get("s1")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if space.Name != "Notes" || space.Path != root {
		t.Fatalf("unexpected space: %+v", space)
	}
}

func TestAddDefaultsNameToKey(t *testing.T) {
	reg, _ := testRegistry(t)

	if err := reg.Add(models.Space{Key: "s1", Path: t.TempDir()}); err != nil {
		t.Fatalf("add: %v", err)
	}
	space, _ := reg.Get("s1")
	if space.Name != "s1" {
		t.Fatalf("expected name defaulted to key, got %q", space.Name)
	}
}

func TestAddDuplicateKey(t *testing.T) {
	reg, _ := testRegistry(t)
	root := t.TempDir()

	if err := reg.Add(models.Space{Key: "s1", Path: root}); err != nil {
		t.Fatalf("add: %v", err)
	}
	err := reg.Add(models.Space{Key: "s1", Path: root})
	if !inkerr.IsAlreadyExists(err) {
		t.Fatalf("expected already_exists, got %v", err)
	}
}

func TestAddMissingPath(t *testing.T) {
	reg, _ := testRegistry(t)
	err := reg.Add(models.Space{Key: "s1", Path: filepath.Join(t.TempDir(), "missing")})
	if !inkerr.IsNotFound(err) {
		t.Fatalf("expected not_found, got %v", err)
	}
}

func TestGetUnknownSpace(t *testing.T) {
	reg, _ := testRegistry(t)
	if _, err := reg.Get("nope"); !inkerr.IsNotFound(err) {
		t.Fatalf("expected not_found, got %v", err)
	}
}

func TestRemove(t *testing.T) {
	reg, _ := testRegistry(t)
	if err := reg.Add(models.Space{Key: "s1", Path: t.TempDir()}); err != nil {
		t.Fatalf("add: %v", err)
	}
	if err := reg.Remove("s1"); err != nil {
		t.Fatalf("remove: %v", err)
	}
	if _, err := reg.Get("s1"); !inkerr.IsNotFound(err) {
		t.Fatalf("expected not_found after remove, got %v", err)
	}
	if err := reg.Remove("s1"); !inkerr.IsNotFound(err) {
		t.Fatalf("expected not_found for second remove, got %v", err)
	}
}

func TestPersistenceAcrossReopen(t *testing.T) {
	reg, path := testRegistry(t)
	rootA := t.TempDir()
	rootB := t.TempDir()

	if err := reg.Add(models.Space{Key: "b", Path: rootB}); err != nil {
		t.Fatalf("add b: %v", err)
	}
	if err := reg.Add(models.Space{Key: "a", Path: rootA}); err != nil {
		t.Fatalf("add a: %v", err)
	}

	reopened, err := Open(path)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	spaces := reopened.List()
	if len(spaces) != 2 {
		t.Fatalf("expected 2 spaces, got %d", len(spaces))
	}
	// List is ordered by key.
	if spaces[0].Key != "a" || spaces[1].Key != "b" {
		t.Fatalf("unexpected order: %+v", spaces)
	}
}

func TestInvalidSpaceKey(t *testing.T) {
	reg, _ := testRegistry(t)
	err := reg.Add(models.Space{Key: "Bad Key", Path: t.TempDir()})
	if !inkerr.IsInvalidName(err) {
		t.Fatalf("expected invalid_name, got %v", err)
	}
}
