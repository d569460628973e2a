package index

import (
	"context"
	"path/filepath"
	"sort"
	"testing"

	"github.com/google/go-cmp/cmp"

	"inkstone/internal/inkerr"
	"inkstone/internal/models"
)

// fakeSource is an in-memory MetaSource keyed by document path.
type fakeSource struct {
	metas map[string]*models.Meta
}

func (f *fakeSource) ReadMeta(docPath string) (*models.Meta, error) {
	meta, ok := f.metas[docPath]
	if !ok {
		return nil, inkerr.NotFound("document not found: %s", docPath)
	}
	return meta, nil
}

func (f *fakeSource) FindDocuments(folder string) ([]string, error) {
	paths := make([]string, 0, len(f.metas))
	for p := range f.metas {
		paths = append(paths, p)
	}
	sort.Strings(paths)
	return paths, nil
}

func testIndex(t *testing.T, indexedAttributes ...string) *Index {
	t.Helper()
	if indexedAttributes == nil {
		indexedAttributes = []string{"author", "title"}
	}
	ix, err := Open(filepath.Join(t.TempDir(), "index.db"), indexedAttributes)
	if err != nil {
		t.Fatalf("open index: %v", err)
	}
	t.Cleanup(func() { _ = ix.Close() })
	return ix
}

func metaWith(tags []string, attrs map[string]models.AttrValue) *models.Meta {
	if attrs == nil {
		attrs = map[string]models.AttrValue{}
	}
	return &models.Meta{Mimetype: "application/pdf", Tags: tags, Attributes: attrs}
}

func TestIndexDocumentAndSearchByTag(t *testing.T) {
	ix := testIndex(t)
	ctx := context.Background()
	src := &fakeSource{metas: map[string]*models.Meta{
		"a": metaWith([]string{"physics"}, nil),
		"b": metaWith([]string{"biology"}, nil),
	}}

	for _, p := range []string{"a", "b"} {
		if err := ix.IndexDocument(ctx, "s1", p, src); err != nil {
			t.Fatalf("index %s: %v", p, err)
		}
	}

	got, err := ix.Search(ctx, "s1", models.SearchQuery{Tags: []string{"physics"}})
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	if diff := cmp.Diff([]string{"a"}, got); diff != "" {
		t.Fatalf("results mismatch (-want +got):\n%s", diff)
	}
}

func TestIndexDocumentIdempotent(t *testing.T) {
	ix := testIndex(t)
	ctx := context.Background()
	src := &fakeSource{metas: map[string]*models.Meta{
		"a": metaWith([]string{"x", "y"}, map[string]models.AttrValue{
			"author": models.Attr("Doe"),
		}),
	}}

	for i := 0; i < 3; i++ {
		if err := ix.IndexDocument(ctx, "s1", "a", src); err != nil {
			t.Fatalf("index pass %d: %v", i, err)
		}
	}

	overview, err := ix.Overview(ctx, "s1")
	if err != nil {
		t.Fatalf("overview: %v", err)
	}
	want := models.Overview{DocumentCount: 1, TagCount: 2, AttributeCount: 1}
	if diff := cmp.Diff(want, overview); diff != "" {
		t.Fatalf("overview mismatch (-want +got):\n%s", diff)
	}
}

func TestReindexDropsStaleAssociations(t *testing.T) {
	ix := testIndex(t)
	ctx := context.Background()
	src := &fakeSource{metas: map[string]*models.Meta{
		"a": metaWith([]string{"old"}, nil),
	}}

	if err := ix.IndexDocument(ctx, "s1", "a", src); err != nil {
		t.Fatalf("index: %v", err)
	}

	src.metas["a"] = metaWith([]string{"new"}, nil)
	if err := ix.IndexDocument(ctx, "s1", "a", src); err != nil {
		t.Fatalf("reindex: %v", err)
	}

	got, err := ix.Search(ctx, "s1", models.SearchQuery{Tags: []string{"old"}})
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	if len(got) != 0 {
		t.Fatalf("stale tag still matches: %v", got)
	}
	got, err = ix.Search(ctx, "s1", models.SearchQuery{Tags: []string{"new"}})
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	if diff := cmp.Diff([]string{"a"}, got); diff != "" {
		t.Fatalf("results mismatch (-want +got):\n%s", diff)
	}
}

func TestNonIndexedAttributesSkipped(t *testing.T) {
	ix := testIndex(t, "author")
	ctx := context.Background()
	src := &fakeSource{metas: map[string]*models.Meta{
		"a": metaWith(nil, map[string]models.AttrValue{
			"author": models.Attr("Doe"),
			"color":  models.Attr("red"),
		}),
	}}

	if err := ix.IndexDocument(ctx, "s1", "a", src); err != nil {
		t.Fatalf("index: %v", err)
	}

	overview, err := ix.Overview(ctx, "s1")
	if err != nil {
		t.Fatalf("overview: %v", err)
	}
	if overview.AttributeCount != 1 {
		t.Fatalf("expected only allow-listed attribute indexed, got %d", overview.AttributeCount)
	}
	got, err := ix.Search(ctx, "s1", models.SearchQuery{Attributes: map[string]string{"color": "red"}})
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	if len(got) != 0 {
		t.Fatalf("non-indexed attribute should not match, got %v", got)
	}
}

func TestSearchByAttributeSubstring(t *testing.T) {
	ix := testIndex(t)
	ctx := context.Background()
	src := &fakeSource{metas: map[string]*models.Meta{
		"a": metaWith(nil, map[string]models.AttrValue{"author": models.Attr("Jane Doe")}),
		"b": metaWith(nil, map[string]models.AttrValue{"author": models.Attr("John Smith")}),
	}}
	for _, p := range []string{"a", "b"} {
		if err := ix.IndexDocument(ctx, "s1", p, src); err != nil {
			t.Fatalf("index %s: %v", p, err)
		}
	}

	got, err := ix.Search(ctx, "s1", models.SearchQuery{Attributes: map[string]string{"author": "doe"}})
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	// LIKE is case-insensitive for ASCII.
	if diff := cmp.Diff([]string{"a"}, got); diff != "" {
		t.Fatalf("results mismatch (-want +got):\n%s", diff)
	}
}

func TestSearchCombinesTagAndAttributeFilters(t *testing.T) {
	ix := testIndex(t)
	ctx := context.Background()
	src := &fakeSource{metas: map[string]*models.Meta{
		"a": metaWith([]string{"paper"}, map[string]models.AttrValue{"author": models.Attr("Doe")}),
		"b": metaWith([]string{"paper"}, map[string]models.AttrValue{"author": models.Attr("Smith")}),
		"c": metaWith([]string{"note"}, map[string]models.AttrValue{"author": models.Attr("Doe")}),
	}}
	for _, p := range []string{"a", "b", "c"} {
		if err := ix.IndexDocument(ctx, "s1", p, src); err != nil {
			t.Fatalf("index %s: %v", p, err)
		}
	}

	got, err := ix.Search(ctx, "s1", models.SearchQuery{
		Tags:       []string{"paper"},
		Attributes: map[string]string{"author": "Doe"},
	})
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	if diff := cmp.Diff([]string{"a"}, got); diff != "" {
		t.Fatalf("results mismatch (-want +got):\n%s", diff)
	}
}

func TestSearchPagination(t *testing.T) {
	ix := testIndex(t)
	ctx := context.Background()
	metas := map[string]*models.Meta{}
	for _, p := range []string{"d01", "d02", "d03", "d04", "d05", "d06", "d07", "d08", "d09", "d10", "d11", "d12"} {
		metas[p] = metaWith([]string{"all"}, nil)
	}
	src := &fakeSource{metas: metas}
	docs, _ := src.FindDocuments("")
	for _, p := range docs {
		if err := ix.IndexDocument(ctx, "s1", p, src); err != nil {
			t.Fatalf("index %s: %v", p, err)
		}
	}

	// Default limit caps the first page at 10.
	page1, err := ix.Search(ctx, "s1", models.SearchQuery{Tags: []string{"all"}})
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	if len(page1) != DefaultSearchLimit {
		t.Fatalf("expected %d results, got %d", DefaultSearchLimit, len(page1))
	}

	page2, err := ix.Search(ctx, "s1", models.SearchQuery{Tags: []string{"all"}, Offset: 10})
	if err != nil {
		t.Fatalf("search page 2: %v", err)
	}
	if diff := cmp.Diff([]string{"d11", "d12"}, page2); diff != "" {
		t.Fatalf("page 2 mismatch (-want +got):\n%s", diff)
	}
}

func TestSearchScopedToSpace(t *testing.T) {
	ix := testIndex(t)
	ctx := context.Background()
	src := &fakeSource{metas: map[string]*models.Meta{
		"a": metaWith([]string{"shared"}, nil),
	}}
	if err := ix.IndexDocument(ctx, "s1", "a", src); err != nil {
		t.Fatalf("index: %v", err)
	}

	got, err := ix.Search(ctx, "s2", models.SearchQuery{Tags: []string{"shared"}})
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	if len(got) != 0 {
		t.Fatalf("results leaked across spaces: %v", got)
	}
}

func TestUpdateDocumentPathKeepsAssociations(t *testing.T) {
	ix := testIndex(t)
	ctx := context.Background()
	src := &fakeSource{metas: map[string]*models.Meta{
		"old": metaWith([]string{"keep"}, nil),
	}}
	if err := ix.IndexDocument(ctx, "s1", "old", src); err != nil {
		t.Fatalf("index: %v", err)
	}

	if err := ix.UpdateDocumentPath(ctx, "s1", "old", "sub/new"); err != nil {
		t.Fatalf("update path: %v", err)
	}

	got, err := ix.Search(ctx, "s1", models.SearchQuery{Tags: []string{"keep"}})
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	if diff := cmp.Diff([]string{"sub/new"}, got); diff != "" {
		t.Fatalf("results mismatch (-want +got):\n%s", diff)
	}
}

func TestDeleteDocument(t *testing.T) {
	ix := testIndex(t)
	ctx := context.Background()
	src := &fakeSource{metas: map[string]*models.Meta{
		"a": metaWith([]string{"x"}, nil),
	}}
	if err := ix.IndexDocument(ctx, "s1", "a", src); err != nil {
		t.Fatalf("index: %v", err)
	}

	if err := ix.DeleteDocument(ctx, "s1", "a"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	overview, err := ix.Overview(ctx, "s1")
	if err != nil {
		t.Fatalf("overview: %v", err)
	}
	if overview.DocumentCount != 0 {
		t.Fatalf("document row survived delete: %+v", overview)
	}
	// Deleting twice is harmless.
	if err := ix.DeleteDocument(ctx, "s1", "a"); err != nil {
		t.Fatalf("second delete: %v", err)
	}
}

func TestIndexSpaceRebuildsFromScratch(t *testing.T) {
	ix := testIndex(t)
	ctx := context.Background()

	stale := &fakeSource{metas: map[string]*models.Meta{
		"gone": metaWith([]string{"stale"}, nil),
	}}
	if err := ix.IndexDocument(ctx, "s1", "gone", stale); err != nil {
		t.Fatalf("seed index: %v", err)
	}

	src := &fakeSource{metas: map[string]*models.Meta{
		"a": metaWith([]string{"shared"}, map[string]models.AttrValue{"author": models.Attr("Doe")}),
		"b": metaWith([]string{"shared"}, nil),
	}}
	var percents []int
	if err := ix.IndexSpace(ctx, "s1", src, func(p int) { percents = append(percents, p) }); err != nil {
		t.Fatalf("index space: %v", err)
	}

	overview, err := ix.Overview(ctx, "s1")
	if err != nil {
		t.Fatalf("overview: %v", err)
	}
	want := models.Overview{DocumentCount: 2, TagCount: 1, AttributeCount: 1}
	if diff := cmp.Diff(want, overview); diff != "" {
		t.Fatalf("overview mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]int{50, 100}, percents); diff != "" {
		t.Fatalf("progress mismatch (-want +got):\n%s", diff)
	}

	if got, _ := ix.Search(ctx, "s1", models.SearchQuery{Tags: []string{"stale"}}); len(got) != 0 {
		t.Fatalf("stale document survived rebuild: %v", got)
	}
}

func TestIndexSpaceEmptyReportsComplete(t *testing.T) {
	ix := testIndex(t)
	src := &fakeSource{metas: map[string]*models.Meta{}}

	var percents []int
	if err := ix.IndexSpace(context.Background(), "s1", src, func(p int) { percents = append(percents, p) }); err != nil {
		t.Fatalf("index space: %v", err)
	}
	if diff := cmp.Diff([]int{100}, percents); diff != "" {
		t.Fatalf("progress mismatch (-want +got):\n%s", diff)
	}
}
