package models

import (
	"fmt"
	"strings"
)

// Space maps a stable key to one document collection root.
type Space struct {
	Key  string `json:"key"`
	Name string `json:"name"`
	Path string `json:"path"`
}

// EntryKind classifies a directory listing entry.
type EntryKind string

const (
	EntryFile   EntryKind = "file"
	EntryFolder EntryKind = "folder"
)

// DirEntry is one immediate child of a folder, with the sidecar suffix
// already stripped for files.
type DirEntry struct {
	Name string    `json:"name"`
	Kind EntryKind `json:"kind"`
}

// Annotation is one user annotation on a document page.
type Annotation struct {
	ID      string    `json:"id"`
	Page    int       `json:"page"`
	Type    string    `json:"type"`
	Rect    []float64 `json:"rect,omitempty"`
	Color   string    `json:"color,omitempty"`
	Comment string    `json:"comment,omitempty"`
}

// SearchQuery describes one filtered document search. Tags are an
// OR-set membership test; attribute filters AND per-key substring
// matches.
type SearchQuery struct {
	Tags       []string
	Attributes map[string]string
	Offset     int
	Limit      int
}

// Overview reports space-wide index statistics. AttributeCount counts
// distinct attribute keys, not values.
type Overview struct {
	DocumentCount  int `json:"document_count"`
	TagCount       int `json:"tag_count"`
	AttributeCount int `json:"attribute_count"`
}

const spaceKeyMaxLength = 64

// ValidateSpaceKey checks a space key for use as a registry key.
func ValidateSpaceKey(key string) error {
	key = strings.TrimSpace(key)
	if key == "" {
		return fmt.Errorf("space key is required")
	}
	if len(key) > spaceKeyMaxLength {
		return fmt.Errorf("space key too long")
	}
	for _, r := range key {
		if r >= 'a' && r <= 'z' || r >= '0' && r <= '9' || r == '-' || r == '_' {
			continue
		}
		return fmt.Errorf("invalid space key: %q", key)
	}
	return nil
}

// NormalizeTags trims and dedupes tags, preserving first-seen order
// and case. Empty tags are dropped.
func NormalizeTags(tags []string) []string {
	out := make([]string, 0, len(tags))
	seen := map[string]struct{}{}
	for _, tag := range tags {
		tag = strings.TrimSpace(tag)
		if tag == "" {
			continue
		}
		if _, ok := seen[tag]; ok {
			continue
		}
		seen[tag] = struct{}{}
		out = append(out, tag)
	}
	return out
}
