package intel

import (
	"bytes"
	"context"
	"io"
)

// A4 page size in points; layouts from the local analyzer use it as
// the reference frame.
const (
	defaultPageWidth  = 595.0
	defaultPageHeight = 842.0
)

// LocalAnalyzer is the offline analyzer: it performs a trivial
// segmentation that treats each page as one full-page region. Results
// are deterministic for a given input, which makes cache behavior
// testable.
type LocalAnalyzer struct{}

// NewLocalAnalyzer constructs a LocalAnalyzer.
func NewLocalAnalyzer() *LocalAnalyzer {
	return &LocalAnalyzer{}
}

// AnalyzeImage returns a single full-page region for the image.
func (a *LocalAnalyzer) AnalyzeImage(ctx context.Context, r io.Reader) (PageLayout, error) {
	if err := ctx.Err(); err != nil {
		return PageLayout{}, err
	}
	if _, err := io.Copy(io.Discard, r); err != nil {
		return PageLayout{}, err
	}
	return fullPageLayout(1), nil
}

// AnalyzePDF splits the content on PDF page markers and returns one
// full-page region per page. Non-PDF content analyzes as one page.
func (a *LocalAnalyzer) AnalyzePDF(ctx context.Context, r io.Reader) ([]PageLayout, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}

	pages := bytes.Count(data, []byte("/Type /Page")) - bytes.Count(data, []byte("/Type /Pages"))
	if pages < 1 {
		pages = 1
	}

	layouts := make([]PageLayout, 0, pages)
	for page := 1; page <= pages; page++ {
		layouts = append(layouts, fullPageLayout(page))
	}
	return layouts, nil
}

func fullPageLayout(page int) PageLayout {
	return PageLayout{
		Page:   page,
		Width:  defaultPageWidth,
		Height: defaultPageHeight,
		Blocks: []Block{{
			Type: "region",
			BBox: [4]float64{0, 0, defaultPageWidth, defaultPageHeight},
		}},
	}
}
