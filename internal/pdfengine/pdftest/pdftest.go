// Package pdftest builds small PDF fixtures for tests.
package pdftest

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"testing"

	"github.com/Lllllllleong/pdftools/internal/pdfengine"
)

// PNG returns a solid PNG image of the given size.
func PNG(t testing.TB, width, height int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			img.Set(x, y, color.RGBA{R: uint8(x), G: uint8(y), B: 200, A: 255})
		}
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("png.Encode: %v", err)
	}
	return buf.Bytes()
}

// PDF returns a document with one page per width. Page i is widths[i] points wide
// and 40 points high, which lets tests identify pages after reordering.
func PDF(t testing.TB, widths ...int) []byte {
	t.Helper()
	images := make([][]byte, len(widths))
	for i, w := range widths {
		images[i] = PNG(t, w, 40)
	}
	data, err := pdfengine.New().ImagesToPDF(images)
	if err != nil {
		t.Fatalf("ImagesToPDF: %v", err)
	}
	return data
}

// Widths parses data and returns the width of every page.
func Widths(t testing.TB, data []byte) []int {
	t.Helper()
	doc, err := pdfengine.New().Read(data)
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	sizes, err := doc.PageSizes()
	if err != nil {
		t.Fatalf("PageSizes: %v", err)
	}
	widths := make([]int, len(sizes))
	for i, s := range sizes {
		widths[i] = int(s.Width + 0.5)
	}
	return widths
}
