package services

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/png"
	"strings"

	"github.com/klauspost/compress/zip"

	"github.com/Lllllllleong/pdftools/internal/render"
	"github.com/Lllllllleong/pdftools/internal/session"
)

// Format is a conversion target.
type Format string

const (
	FormatJPEG Format = "jpg"
	FormatPNG  Format = "png"
	FormatHTML Format = "html"
	FormatWord Format = "docx"
	FormatCSV  Format = "xlsx"
)

const (
	imageScale = 2.0
	// jpegDefaultQuality matches a canvas JPEG export without a quality argument.
	jpegDefaultQuality = 92
	// ImageFolder is the folder holding the page images inside the zip archive.
	ImageFolder = "pdf_images"
)

const wordTemplate = `
<html xmlns:o='urn:schemas-microsoft-com:office:office' xmlns:w='urn:schemas-microsoft-com:office:word' xmlns='http://www.w3.org/TR/REC-html40'>
<head><meta charset='utf-8'><title>Documento Exportado</title></head>
<body>
%s
</body></html>`

// Convert turns the loaded PDF into images or a flat text rendition. No layout is
// reconstructed: text formats are a page-by-page dump of the text items.
func (t *Toolkit) Convert(ctx context.Context, s *session.Session, format Format) (*Result, error) {
	switch format {
	case FormatJPEG, FormatPNG, FormatHTML, FormatWord, FormatCSV:
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedFormat, format)
	}

	snap := s.Read()
	doc, err := t.openForRender(ctx, snap)
	if err != nil {
		return nil, err
	}
	defer closeRender(doc)

	switch format {
	case FormatJPEG:
		return convertImages(ctx, doc, "jpg", "image/jpeg")
	case FormatPNG:
		return convertImages(ctx, doc, "png", "image/png")
	}

	text, err := extractText(doc)
	if err != nil {
		return nil, err
	}
	switch format {
	case FormatHTML:
		html := "<html><body><pre>" + text + "</pre></body></html>"
		return converted([]byte(html), "html", "text/html"), nil
	case FormatWord:
		var paragraphs strings.Builder
		for _, line := range strings.Split(text, "\n") {
			paragraphs.WriteString("<p>" + line + "</p>")
		}
		markup := fmt.Sprintf(wordTemplate, paragraphs.String())
		// Word opens HTML saved as .doc without a format warning.
		return converted([]byte(markup), "doc", "application/msword"), nil
	default:
		csv := strings.Join(strings.Split(strings.ReplaceAll(text, "\t", ","), "\n"), "\r\n")
		return converted([]byte(csv), "csv", "text/csv;charset=utf-8;"), nil
	}
}

func converted(payload []byte, ext, contentType string) *Result {
	return &Result{Payload: payload, SuggestedName: ConvertBaseName + "." + ext, ContentType: contentType}
}

// extractText joins each page's text items with spaces and ends every page with a
// blank line.
func extractText(doc render.Document) (string, error) {
	var sb strings.Builder
	for i := 1; i <= doc.NumPages(); i++ {
		items, err := doc.PageText(i)
		if err != nil {
			return "", fmt.Errorf("failed to extract text of page %d: %w", i, err)
		}
		sb.WriteString(strings.Join(items, " "))
		sb.WriteString("\n\n")
	}
	return sb.String(), nil
}

// convertImages returns a single image for a one-page document and a zip of
// page_<n>.<ext> entries otherwise.
func convertImages(ctx context.Context, doc render.Document, ext, contentType string) (*Result, error) {
	n := doc.NumPages()
	if n == 0 {
		return nil, ErrNoPages
	}
	if n == 1 {
		data, err := pageImage(ctx, doc, 1, ext)
		if err != nil {
			return nil, err
		}
		return converted(data, ext, contentType), nil
	}

	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	for i := 1; i <= n; i++ {
		data, err := pageImage(ctx, doc, i, ext)
		if err != nil {
			zw.Close()
			return nil, err
		}
		entry, err := zw.Create(fmt.Sprintf("%s/page_%d.%s", ImageFolder, i, ext))
		if err != nil {
			zw.Close()
			return nil, fmt.Errorf("failed to create zip entry: %w", err)
		}
		if _, err := entry.Write(data); err != nil {
			zw.Close()
			return nil, fmt.Errorf("failed to write zip entry: %w", err)
		}
	}
	if err := zw.Close(); err != nil {
		return nil, fmt.Errorf("failed to finalize zip: %w", err)
	}
	return converted(buf.Bytes(), "zip", "application/zip"), nil
}

func pageImage(ctx context.Context, doc render.Document, pageNr int, ext string) ([]byte, error) {
	img, err := doc.RenderPage(ctx, pageNr, imageScale)
	if err != nil {
		return nil, fmt.Errorf("failed to render page %d: %w", pageNr, err)
	}
	data, err := encodeImage(img, ext)
	if err != nil {
		return nil, fmt.Errorf("failed to encode page %d: %w", pageNr, err)
	}
	return data, nil
}

func encodeImage(img image.Image, ext string) ([]byte, error) {
	if ext == "jpg" {
		return encodeJPEG(img, jpegDefaultQuality)
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
