package services

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/Lllllllleong/pdftools/internal/pdfengine"
	"github.com/Lllllllleong/pdftools/internal/render"
	"github.com/Lllllllleong/pdftools/internal/session"
)

// Suggested download names of the operation results.
const (
	SplitName       = "dividido.pdf"
	MergeName       = "combinado.pdf"
	CompressName    = "comprimido.pdf"
	ConvertBaseName = "convertido"
	ProtectName     = "protegido.pdf"
	UnprotectName   = "desprotegido.pdf"

	pdfContentType = "application/pdf"
)

// PDFEngine is the document object model the toolkit drives.
type PDFEngine interface {
	Read(data []byte) (*pdfengine.Document, error)
	ReadWithPassword(data []byte, password string) (*pdfengine.Document, error)
	CopyPages(src *pdfengine.Document, indices []int) (*pdfengine.Document, error)
	CopyAll(src *pdfengine.Document) (*pdfengine.Document, error)
	Write(doc *pdfengine.Document) ([]byte, error)
	WriteEncrypted(doc *pdfengine.Document, password string) ([]byte, error)
	Merge(sources [][]byte) ([]byte, error)
	ImagesToPDF(images [][]byte) ([]byte, error)
}

// Toolkit runs the PDF operations. Each call is independent; the only state read
// is the session passed in.
type Toolkit struct {
	engine   PDFEngine
	renderer render.Loader
}

// NewToolkit returns a Toolkit using engine for document structure and renderer
// for rasterization and text.
func NewToolkit(engine PDFEngine, renderer render.Loader) *Toolkit {
	return &Toolkit{engine: engine, renderer: renderer}
}

// NewSession returns an empty session parsed by the toolkit's engine.
func (t *Toolkit) NewSession() *session.Session {
	return session.New(t.engine)
}

// Split copies the pages selected by ranges into a new PDF.
func (t *Toolkit) Split(ctx context.Context, s *session.Session, ranges string) (*Result, error) {
	snap := s.Read()
	if snap.Document == nil {
		return nil, ErrNotLoadedOrProtected
	}
	indices := ParseRanges(ranges, snap.Document.PageCount())
	if len(indices) == 0 {
		return nil, ErrNoPagesSelected
	}
	slog.Debug("Splitting PDF.", "name", snap.Name, "ranges", ranges, "pages", len(indices))

	doc, err := t.engine.CopyPages(snap.Document, indices)
	if err != nil {
		return nil, fmt.Errorf("failed to split PDF: %w", err)
	}
	payload, err := t.engine.Write(doc)
	if err != nil {
		return nil, fmt.Errorf("failed to split PDF: %w", err)
	}
	return &Result{Payload: payload, SuggestedName: SplitName, ContentType: pdfContentType}, nil
}

// Merge concatenates every page of files, in list order.
func (t *Toolkit) Merge(ctx context.Context, files []session.NamedFile) (*Result, error) {
	if len(files) < 2 {
		return nil, ErrNeedTwoFiles
	}
	sources := make([][]byte, len(files))
	for i, f := range files {
		// Inputs get no encryption bypass, unlike Session.Load.
		doc, err := t.engine.Read(f.Data)
		if err != nil {
			return nil, fmt.Errorf("%w %q: %v", ErrMergeInput, f.Name, err)
		}
		if doc.Encrypted() {
			return nil, fmt.Errorf("%w %q: the file is encrypted", ErrMergeInput, f.Name)
		}
		sources[i] = f.Data
	}
	payload, err := t.engine.Merge(sources)
	if err != nil {
		return nil, fmt.Errorf("failed to merge PDFs: %w", err)
	}
	return &Result{Payload: payload, SuggestedName: MergeName, ContentType: pdfContentType}, nil
}

func (t *Toolkit) openForRender(ctx context.Context, snap session.Snapshot) (render.Document, error) {
	if !snap.Loaded() {
		return nil, ErrNotLoaded
	}
	doc, err := t.renderer.Open(ctx, snap.Raw)
	if err != nil {
		return nil, fmt.Errorf("failed to open PDF for rendering: %w", err)
	}
	return doc, nil
}

func closeRender(doc render.Document) {
	if err := doc.Close(); err != nil {
		slog.Warn("Failed to close render document.", "error", err)
	}
}
