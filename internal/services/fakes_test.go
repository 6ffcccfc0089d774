package services

import (
	"context"
	"fmt"
	"image"
	"image/color"

	"github.com/Lllllllleong/pdftools/internal/render"
	"github.com/Lllllllleong/pdftools/internal/sources"
)

// fakeLoader renders page i as a widths[i] x 40 image at scale 1.
type fakeLoader struct {
	widths []int
	text   [][]string
	opened int
	closed int
}

func (l *fakeLoader) Open(_ context.Context, data []byte) (render.Document, error) {
	l.opened++
	return &fakeDocument{loader: l}, nil
}

type fakeDocument struct {
	loader *fakeLoader
}

func (d *fakeDocument) NumPages() int { return len(d.loader.widths) }

func (d *fakeDocument) RenderPage(_ context.Context, pageNr int, scale float64) (image.Image, error) {
	if pageNr < 1 || pageNr > d.NumPages() {
		return nil, fmt.Errorf("page %d out of range", pageNr)
	}
	w := int(float64(d.loader.widths[pageNr-1]) * scale)
	h := int(40 * scale)
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, color.RGBA{R: 10, G: uint8(x), B: uint8(y), A: 255})
		}
	}
	return img, nil
}

func (d *fakeDocument) PageText(pageNr int) ([]string, error) {
	if pageNr-1 < len(d.loader.text) {
		return d.loader.text[pageNr-1], nil
	}
	return nil, nil
}

func (d *fakeDocument) Close() error {
	d.loader.closed++
	return nil
}

type stubFetcher struct {
	files map[string][]byte
}

func (s *stubFetcher) Fetch(_ context.Context, f sources.RemoteFile) (*sources.File, error) {
	data, ok := s.files[f.Link]
	if !ok {
		return nil, fmt.Errorf("%w: %s returned status 404", sources.ErrNetwork, f.Link)
	}
	return &sources.File{Name: f.Name, Data: data}, nil
}
