// Package intel defines the document-intelligence capability set as a
// swappable strategy, selected by configuration. Cloud-backed
// implementations plug in behind the same interface; the local
// analyzer keeps the pipeline functional without external services.
package intel

import (
	"context"
	"fmt"
	"io"
	"strings"
)

// Block is one detected region on a page.
type Block struct {
	Type string     `json:"type"`
	Text string     `json:"text,omitempty"`
	BBox [4]float64 `json:"bbox"`
}

// PageLayout is the analysis result for one page.
type PageLayout struct {
	Page   int     `json:"page"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
	Blocks []Block `json:"blocks"`
}

// Analyzer is the document-intelligence capability set.
type Analyzer interface {
	// AnalyzeImage treats the content as a single page.
	AnalyzeImage(ctx context.Context, r io.Reader) (PageLayout, error)
	// AnalyzePDF returns one layout per page, in page order.
	AnalyzePDF(ctx context.Context, r io.Reader) ([]PageLayout, error)
}

// FromConfig selects an analyzer implementation by name.
func FromConfig(name string) (Analyzer, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "local":
		return NewLocalAnalyzer(), nil
	default:
		return nil, fmt.Errorf("unknown analyzer: %q", name)
	}
}
