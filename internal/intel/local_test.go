package intel

import (
	"context"
	"strings"
	"testing"
)

func TestAnalyzeImage(t *testing.T) {
	a := NewLocalAnalyzer()
	layout, err := a.AnalyzeImage(context.Background(), strings.NewReader("not really pixels"))
	if err != nil {
		t.Fatalf("analyze: %v", err)
	}
	if layout.Page != 1 {
		t.Fatalf("expected page 1, got %d", layout.Page)
	}
	if len(layout.Blocks) != 1 || layout.Blocks[0].Type != "region" {
		t.Fatalf("unexpected blocks: %+v", layout.Blocks)
	}
}

func TestAnalyzePDFCountsPages(t *testing.T) {
	a := NewLocalAnalyzer()
	pdf := `%PDF-1.4
1 0 obj << /Type /Pages /Count 2 >> endobj
2 0 obj << /Type /Page /Parent 1 0 R >> endobj
3 0 obj << /Type /Page /Parent 1 0 R >> endobj`

	layouts, err := a.AnalyzePDF(context.Background(), strings.NewReader(pdf))
	if err != nil {
		t.Fatalf("analyze: %v", err)
	}
	if len(layouts) != 2 {
		t.Fatalf("expected 2 pages, got %d", len(layouts))
	}
	for i, layout := range layouts {
		if layout.Page != i+1 {
			t.Fatalf("expected page %d, got %d", i+1, layout.Page)
		}
	}
}

func TestAnalyzePDFMinimumOnePage(t *testing.T) {
	a := NewLocalAnalyzer()
	layouts, err := a.AnalyzePDF(context.Background(), strings.NewReader("no markers here"))
	if err != nil {
		t.Fatalf("analyze: %v", err)
	}
	if len(layouts) != 1 {
		t.Fatalf("expected fallback to 1 page, got %d", len(layouts))
	}
}

func TestAnalyzeHonorsCanceledContext(t *testing.T) {
	a := NewLocalAnalyzer()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := a.AnalyzeImage(ctx, strings.NewReader("x")); err == nil {
		t.Fatal("expected context error")
	}
	if _, err := a.AnalyzePDF(ctx, strings.NewReader("x")); err == nil {
		t.Fatal("expected context error")
	}
}

func TestFromConfig(t *testing.T) {
	for _, name := range []string{"", "local"} {
		a, err := FromConfig(name)
		if err != nil {
			t.Fatalf("analyzer %q: %v", name, err)
		}
		if a == nil {
			t.Fatalf("analyzer %q: nil", name)
		}
	}
	if _, err := FromConfig("cloud"); err == nil {
		t.Fatal("expected error for unknown analyzer")
	}
}
