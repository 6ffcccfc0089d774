package services

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/jpeg"
	"strings"

	"github.com/Lllllllleong/pdftools/internal/session"
)

// CompressionLevel selects how much fidelity is traded for size.
type CompressionLevel string

const (
	CompressLow    CompressionLevel = "low"
	CompressMedium CompressionLevel = "medium"
	CompressHigh   CompressionLevel = "high"
)

var compressionQuality = map[CompressionLevel]float64{
	CompressLow:    0.8,
	CompressMedium: 0.5,
	CompressHigh:   0.3,
}

// Quality returns the JPEG quality factor in (0,1). Unknown levels get the medium
// factor.
func (l CompressionLevel) Quality() float64 {
	if q, ok := compressionQuality[CompressionLevel(strings.ToLower(string(l)))]; ok {
		return q
	}
	return compressionQuality[CompressMedium]
}

// Compress rasterizes every page at native scale and rebuilds the PDF from JPEG
// page images. Text and vector content become pixels.
func (t *Toolkit) Compress(ctx context.Context, s *session.Session, level CompressionLevel) (*Result, error) {
	snap := s.Read()
	doc, err := t.openForRender(ctx, snap)
	if err != nil {
		return nil, err
	}
	defer closeRender(doc)

	quality := jpegQuality(level.Quality())
	pages := make([][]byte, 0, doc.NumPages())
	for i := 1; i <= doc.NumPages(); i++ {
		img, err := doc.RenderPage(ctx, i, 1.0)
		if err != nil {
			return nil, fmt.Errorf("failed to render page %d: %w", i, err)
		}
		encoded, err := encodeJPEG(img, quality)
		if err != nil {
			return nil, fmt.Errorf("failed to encode page %d: %w", i, err)
		}
		pages = append(pages, encoded)
	}
	if len(pages) == 0 {
		return nil, ErrNoPages
	}

	payload, err := t.engine.ImagesToPDF(pages)
	if err != nil {
		return nil, fmt.Errorf("failed to build compressed PDF: %w", err)
	}
	return &Result{Payload: payload, SuggestedName: CompressName, ContentType: pdfContentType}, nil
}

// jpegQuality maps a (0,1) factor onto image/jpeg's 1..100 scale.
func jpegQuality(factor float64) int {
	q := int(factor*100 + 0.5)
	return min(max(q, 1), 100)
}

func encodeJPEG(img image.Image, quality int) ([]byte, error) {
	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: quality}); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
