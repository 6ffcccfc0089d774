package render

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/png"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/ledongthuc/pdf"
)

const pointsPerInch = 72

// DefaultBinary is the pdftoppm executable looked up on PATH.
const DefaultBinary = "pdftoppm"

// PageCounter counts the pages of a PDF.
type PageCounter interface {
	PageCount(data []byte) (int, error)
}

// Poppler renders pages with poppler's pdftoppm and extracts text with a pure Go
// reader.
type Poppler struct {
	binary  string
	counter PageCounter
}

// NewPoppler returns a Loader that runs binary, DefaultBinary when empty.
func NewPoppler(binary string, counter PageCounter) *Poppler {
	if binary == "" {
		binary = DefaultBinary
	}
	return &Poppler{binary: binary, counter: counter}
}

// Open writes data to a private temp directory used by every render call.
func (p *Poppler) Open(ctx context.Context, data []byte) (Document, error) {
	numPages, err := p.counter.PageCount(data)
	if err != nil {
		return nil, err
	}
	tmpDir, err := os.MkdirTemp("", "pdf-render-*")
	if err != nil {
		return nil, fmt.Errorf("failed to create temp dir: %w", err)
	}
	input := filepath.Join(tmpDir, "input.pdf")
	if err := os.WriteFile(input, data, 0o600); err != nil {
		os.RemoveAll(tmpDir)
		return nil, fmt.Errorf("failed to write temp file: %w", err)
	}
	return &popplerDocument{
		binary:   p.binary,
		data:     data,
		tmpDir:   tmpDir,
		input:    input,
		numPages: numPages,
	}, nil
}

type popplerDocument struct {
	binary   string
	data     []byte
	tmpDir   string
	input    string
	numPages int

	text *pdf.Reader
}

func (d *popplerDocument) NumPages() int { return d.numPages }

func (d *popplerDocument) RenderPage(ctx context.Context, pageNr int, scale float64) (image.Image, error) {
	if pageNr < 1 || pageNr > d.numPages {
		return nil, fmt.Errorf("page %d out of range [1,%d]", pageNr, d.numPages)
	}
	page := strconv.Itoa(pageNr)
	outBase := filepath.Join(d.tmpDir, "page-"+page)
	dpi := strconv.FormatFloat(scale*pointsPerInch, 'f', -1, 64)

	var stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, d.binary,
		"-f", page, "-l", page,
		"-r", dpi,
		"-png", "-singlefile",
		d.input, outBase,
	)
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		return nil, fmt.Errorf("pdftoppm page %d: %w: %s", pageNr, err, strings.TrimSpace(stderr.String()))
	}

	out := outBase + ".png"
	defer os.Remove(out)
	f, err := os.Open(out)
	if err != nil {
		return nil, fmt.Errorf("failed to open rendered page %d: %w", pageNr, err)
	}
	defer f.Close()
	img, err := png.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("failed to decode rendered page %d: %w", pageNr, err)
	}
	return img, nil
}

// PageText groups the glyphs of a page into rows; each row is one text item.
func (d *popplerDocument) PageText(pageNr int) ([]string, error) {
	if d.text == nil {
		r, err := pdf.NewReader(bytes.NewReader(d.data), int64(len(d.data)))
		if err != nil {
			return nil, fmt.Errorf("open pdf for text: %w", err)
		}
		d.text = r
	}
	if pageNr < 1 || pageNr > d.text.NumPage() {
		return nil, fmt.Errorf("page %d out of range [1,%d]", pageNr, d.text.NumPage())
	}
	page := d.text.Page(pageNr)
	if page.V.IsNull() {
		return nil, nil
	}
	rows, err := page.GetTextByRow()
	if err != nil {
		return nil, fmt.Errorf("page %d: %w", pageNr, err)
	}
	items := make([]string, 0, len(rows))
	for _, row := range rows {
		var sb strings.Builder
		for _, glyph := range row.Content {
			sb.WriteString(glyph.S)
		}
		if s := sb.String(); s != "" {
			items = append(items, s)
		}
	}
	return items, nil
}

func (d *popplerDocument) Close() error {
	if err := os.RemoveAll(d.tmpDir); err != nil {
		slog.Warn("Failed to remove render temp dir.", "path", d.tmpDir, "error", err)
		return err
	}
	return nil
}
