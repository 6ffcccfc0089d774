package services

import (
	"context"
	"errors"
	"slices"
	"testing"

	"github.com/Lllllllleong/pdftools/internal/pdfengine/pdftest"
)

func TestCompressionLevel_Quality(t *testing.T) {
	tests := []struct {
		level CompressionLevel
		want  float64
	}{
		{CompressLow, 0.8},
		{CompressMedium, 0.5},
		{CompressHigh, 0.3},
		{"HIGH", 0.3},
		{"extreme", 0.5},
		{"", 0.5},
	}
	for _, tt := range tests {
		if got := tt.level.Quality(); got != tt.want {
			t.Errorf("CompressionLevel(%q).Quality() = %v, want %v", tt.level, got, tt.want)
		}
	}
}

func TestJPEGQuality(t *testing.T) {
	tests := []struct {
		factor float64
		want   int
	}{
		{0.8, 80},
		{0.3, 30},
		{0, 1},
		{1.5, 100},
	}
	for _, tt := range tests {
		if got := jpegQuality(tt.factor); got != tt.want {
			t.Errorf("jpegQuality(%v) = %d, want %d", tt.factor, got, tt.want)
		}
	}
}

func TestToolkit_Compress(t *testing.T) {
	loader := &fakeLoader{widths: []int{12, 24, 36}}
	tk := newTestToolkit(loader)
	s := loadedSession(t, tk, pdftest.PDF(t, 12, 24, 36))

	res, err := tk.Compress(context.Background(), s, CompressHigh)
	if err != nil {
		t.Fatalf("Compress: %v", err)
	}
	if res.SuggestedName != CompressName || res.ContentType != "application/pdf" {
		t.Errorf("result = %s (%s), want %s", res.SuggestedName, res.ContentType, CompressName)
	}
	if got, want := pdftest.Widths(t, res.Payload), []int{12, 24, 36}; !slices.Equal(got, want) {
		t.Errorf("page widths = %v, want %v", got, want)
	}
	if loader.opened != 1 || loader.closed != 1 {
		t.Errorf("render document opened %d and closed %d times, want 1 and 1", loader.opened, loader.closed)
	}
}

func TestToolkit_CompressErrors(t *testing.T) {
	tk := newTestToolkit(&fakeLoader{})
	if _, err := tk.Compress(context.Background(), tk.NewSession(), CompressLow); !errors.Is(err, ErrNotLoaded) {
		t.Errorf("Compress on empty session error = %v, want ErrNotLoaded", err)
	}
	s := loadedSession(t, tk, pdftest.PDF(t, 10))
	if _, err := tk.Compress(context.Background(), s, CompressLow); !errors.Is(err, ErrNoPages) {
		t.Errorf("Compress with no rendered pages error = %v, want ErrNoPages", err)
	}
}
