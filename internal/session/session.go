// Package session holds the currently loaded PDF: its raw bytes, display name and,
// when it could be parsed without a password, the parsed document.
package session

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"

	"github.com/Lllllllleong/pdftools/internal/pdfengine"
)

// DefaultName is used when a file is loaded without a name.
const DefaultName = "document.pdf"

var pdfHeader = []byte("%PDF-")

// ErrUnreadable is returned when the loaded data is not a readable PDF file.
var ErrUnreadable = errors.New("session: failed to read the PDF file")

// LoadOutcome reports what a Load call achieved.
type LoadOutcome int

const (
	// LoadNone means nothing has been loaded yet.
	LoadNone LoadOutcome = iota
	// LoadParsed means raw bytes were stored and the document parsed.
	LoadParsed
	// LoadRawOnly means raw bytes were stored but the document needs a password or
	// is corrupt.
	LoadRawOnly
	// LoadFailed means the data could not be read; the session kept its previous state.
	LoadFailed
)

func (o LoadOutcome) String() string {
	switch o {
	case LoadParsed:
		return "parsed"
	case LoadRawOnly:
		return "raw-only"
	case LoadFailed:
		return "failed"
	default:
		return "none"
	}
}

// Parser parses PDF bytes without a password.
type Parser interface {
	Read(data []byte) (*pdfengine.Document, error)
}

// Snapshot is a consistent view of a Session.
type Snapshot struct {
	Raw      []byte
	Name     string
	Document *pdfengine.Document
	Outcome  LoadOutcome
}

// Loaded reports whether raw bytes are present.
func (s Snapshot) Loaded() bool {
	return len(s.Raw) > 0
}

// Session is safe for concurrent use. Operations work on the snapshot they read,
// so a Load that lands mid-operation does not affect it.
type Session struct {
	parser Parser

	mu      sync.RWMutex
	raw     []byte
	name    string
	doc     *pdfengine.Document
	outcome LoadOutcome
}

// New returns an empty session that parses with p.
func New(p Parser) *Session {
	return &Session{parser: p}
}

// Load replaces the session content with data. Encryption or corruption is not an
// error: the bytes are kept and the outcome is LoadRawOnly.
func (s *Session) Load(data []byte, name string) (LoadOutcome, error) {
	if len(data) == 0 || !bytes.HasPrefix(bytes.TrimLeft(data, "\x00\t\n\r "), pdfHeader) {
		return LoadFailed, ErrUnreadable
	}
	if name == "" {
		name = DefaultName
	}
	raw := bytes.Clone(data)

	outcome := LoadParsed
	doc, err := s.parser.Read(raw)
	if err != nil {
		slog.Debug("PDF is encrypted or corrupt, a password will be required.", "name", name, "error", err)
		doc = nil
		outcome = LoadRawOnly
	}

	s.mu.Lock()
	s.raw, s.name, s.doc, s.outcome = raw, name, doc, outcome
	s.mu.Unlock()
	return outcome, nil
}

// LoadReader reads r fully and loads the result.
func (s *Session) LoadReader(r io.Reader, name string) (LoadOutcome, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return LoadFailed, fmt.Errorf("%w: %v", ErrUnreadable, err)
	}
	return s.Load(data, name)
}

// Read returns the current content of the session.
func (s *Session) Read() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return Snapshot{Raw: s.raw, Name: s.name, Document: s.doc, Outcome: s.outcome}
}
