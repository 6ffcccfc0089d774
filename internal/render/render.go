// Package render rasterizes PDF pages and extracts their text.
package render

import (
	"context"
	"image"
)

// Document is a PDF opened for rendering.
type Document interface {
	// NumPages returns the number of pages.
	NumPages() int
	// RenderPage rasterizes the 1-based page pageNr. A scale of 1 renders one pixel
	// per PDF point.
	RenderPage(ctx context.Context, pageNr int, scale float64) (image.Image, error)
	// PageText returns the text items of the 1-based page pageNr in content order.
	PageText(pageNr int) ([]string, error)
	Close() error
}

// Loader opens documents for rendering.
type Loader interface {
	Open(ctx context.Context, data []byte) (Document, error)
}
