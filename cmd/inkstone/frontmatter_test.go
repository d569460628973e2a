package main

import (
	"os"
	"path/filepath"
	"sort"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func writeTempFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "note.md")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestFrontMatterMetadata(t *testing.T) {
	path := writeTempFile(t, `---
title: Field Notes
author: Jane Doe
year: 2024
draft: true
tags:
  - biology
  - fieldwork
---
# Field Notes
Body text.
`)

	tags, attrs, err := frontMatterMetadata(path)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	sort.Strings(tags)
	if diff := cmp.Diff([]string{"biology", "fieldwork"}, tags); diff != "" {
		t.Fatalf("tags mismatch (-want +got):\n%s", diff)
	}
	want := map[string]string{
		"title":  "Field Notes",
		"author": "Jane Doe",
		"year":   "2024",
		"draft":  "true",
	}
	if diff := cmp.Diff(want, attrs); diff != "" {
		t.Fatalf("attrs mismatch (-want +got):\n%s", diff)
	}
}

func TestFrontMatterScalarTag(t *testing.T) {
	path := writeTempFile(t, `---
tags: solo
---
body
`)
	tags, _, err := frontMatterMetadata(path)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if diff := cmp.Diff([]string{"solo"}, tags); diff != "" {
		t.Fatalf("tags mismatch (-want +got):\n%s", diff)
	}
}

func TestFrontMatterAbsent(t *testing.T) {
	path := writeTempFile(t, "# Just a heading\n\nNo front matter here.\n")
	tags, attrs, err := frontMatterMetadata(path)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if tags != nil || attrs != nil {
		t.Fatalf("expected nothing, got tags=%v attrs=%v", tags, attrs)
	}
}

func TestFrontMatterUnclosed(t *testing.T) {
	path := writeTempFile(t, "---\ntitle: Oops\n\nbody without closing fence\n")
	if _, _, err := frontMatterMetadata(path); err == nil {
		t.Fatal("expected error for unclosed front matter")
	}
}
