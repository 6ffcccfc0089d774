// Package pdfengine wraps pdfcpu behind the small set of document operations the
// toolkit needs: read, copy pages into a fresh document, merge, import images and
// serialize with or without encryption.
package pdfengine

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"sync"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
)

// EncryptKeyLength is the key length used when protecting a document.
const EncryptKeyLength = 128

var disableConfigDir sync.Once

// ErrNoPages is returned when a page copy would produce a document without pages.
var ErrNoPages = errors.New("pdfengine: no pages to copy")

// Document is a parsed PDF held in memory.
type Document struct {
	ctx *model.Context
}

// PageCount returns the number of pages of the document.
func (d *Document) PageCount() int {
	return d.ctx.PageCount
}

// Encrypted reports whether the source file carried an encryption dictionary.
func (d *Document) Encrypted() bool {
	return d.ctx.Encrypt != nil
}

// Engine performs document operations with a relaxed pdfcpu configuration.
type Engine struct{}

// New returns an Engine. pdfcpu's on-disk configuration directory is disabled so
// the engine runs in read-only containers.
func New() *Engine {
	disableConfigDir.Do(api.DisableConfigDir)
	return &Engine{}
}

func (e *Engine) config() *model.Configuration {
	conf := model.NewDefaultConfiguration()
	conf.ValidationMode = model.ValidationRelaxed
	return conf
}

// Read parses data without a password. Files protected only by an owner password
// are accepted; files that require a user password fail.
func (e *Engine) Read(data []byte) (*Document, error) {
	return e.read(data, e.config())
}

// ReadWithPassword parses data, decrypting it with password.
func (e *Engine) ReadWithPassword(data []byte, password string) (*Document, error) {
	conf := e.config()
	conf.UserPW = password
	conf.OwnerPW = password
	return e.read(data, conf)
}

func (e *Engine) read(data []byte, conf *model.Configuration) (*Document, error) {
	ctx, err := api.ReadValidateAndOptimize(bytes.NewReader(data), conf)
	if err != nil {
		return nil, fmt.Errorf("failed to read PDF: %w", err)
	}
	return &Document{ctx: ctx}, nil
}

// CopyPages copies the zero-based page indices of src, in the given order, into a
// new document.
func (e *Engine) CopyPages(src *Document, indices []int) (*Document, error) {
	if len(indices) == 0 {
		return nil, ErrNoPages
	}
	pageNrs := make([]int, len(indices))
	for i, idx := range indices {
		if idx < 0 || idx >= src.PageCount() {
			return nil, fmt.Errorf("page index %d out of range [0,%d)", idx, src.PageCount())
		}
		pageNrs[i] = idx + 1
	}
	ctx, err := pdfcpu.ExtractPages(src.ctx, pageNrs, false)
	if err != nil {
		return nil, fmt.Errorf("failed to copy pages: %w", err)
	}
	return &Document{ctx: ctx}, nil
}

// CopyAll copies every page of src into a new document.
func (e *Engine) CopyAll(src *Document) (*Document, error) {
	indices := make([]int, src.PageCount())
	for i := range indices {
		indices[i] = i
	}
	return e.CopyPages(src, indices)
}

// Write serializes doc without encryption.
func (e *Engine) Write(doc *Document) ([]byte, error) {
	var buf bytes.Buffer
	if err := api.WriteContext(doc.ctx, &buf); err != nil {
		return nil, fmt.Errorf("failed to write PDF: %w", err)
	}
	return buf.Bytes(), nil
}

// WriteEncrypted serializes doc with user and owner password both set to password.
func (e *Engine) WriteEncrypted(doc *Document, password string) ([]byte, error) {
	plain, err := e.Write(doc)
	if err != nil {
		return nil, err
	}
	conf := e.config()
	conf.UserPW = password
	conf.OwnerPW = password
	conf.EncryptUsingAES = true
	conf.EncryptKeyLength = EncryptKeyLength

	var buf bytes.Buffer
	if err := api.Encrypt(bytes.NewReader(plain), &buf, conf); err != nil {
		return nil, fmt.Errorf("failed to encrypt PDF: %w", err)
	}
	return buf.Bytes(), nil
}

// Merge concatenates sources, in order, into one document. No encryption bypass is
// attempted: an input that needs a password fails the merge.
func (e *Engine) Merge(sources [][]byte) ([]byte, error) {
	rsc := make([]io.ReadSeeker, len(sources))
	for i, src := range sources {
		rsc[i] = bytes.NewReader(src)
	}
	var buf bytes.Buffer
	if err := api.MergeRaw(rsc, &buf, false, e.config()); err != nil {
		return nil, fmt.Errorf("failed to merge PDFs: %w", err)
	}
	return buf.Bytes(), nil
}

// ImagesToPDF creates a document with one page per image. Each page has the size
// of its image.
func (e *Engine) ImagesToPDF(images [][]byte) ([]byte, error) {
	if len(images) == 0 {
		return nil, ErrNoPages
	}
	readers := make([]io.Reader, len(images))
	for i, img := range images {
		readers[i] = bytes.NewReader(img)
	}
	var buf bytes.Buffer
	if err := api.ImportImages(nil, &buf, readers, pdfcpu.DefaultImportConfig(), e.config()); err != nil {
		return nil, fmt.Errorf("failed to import images: %w", err)
	}
	return buf.Bytes(), nil
}

// PageCount counts the pages of data without keeping the parsed document.
func (e *Engine) PageCount(data []byte) (int, error) {
	n, err := api.PageCount(bytes.NewReader(data), e.config())
	if err != nil {
		return 0, fmt.Errorf("failed to get page count: %w", err)
	}
	return n, nil
}

// Size is a page size in PDF points.
type Size struct {
	Width, Height float64
}

// PageSizes returns the media box size of every page in page order.
func (d *Document) PageSizes() ([]Size, error) {
	dims, err := d.ctx.PageDims()
	if err != nil {
		return nil, fmt.Errorf("failed to get page dimensions: %w", err)
	}
	sizes := make([]Size, len(dims))
	for i, dim := range dims {
		sizes[i] = Size{Width: dim.Width, Height: dim.Height}
	}
	return sizes, nil
}
