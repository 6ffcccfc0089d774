package session_test

import (
	"bytes"
	"errors"
	"testing"
	"testing/iotest"

	"github.com/Lllllllleong/pdftools/internal/pdfengine"
	"github.com/Lllllllleong/pdftools/internal/pdfengine/pdftest"
	"github.com/Lllllllleong/pdftools/internal/session"
)

func TestSession_LoadParsed(t *testing.T) {
	s := session.New(pdfengine.New())
	data := pdftest.PDF(t, 10, 20)

	outcome, err := s.Load(data, "a.pdf")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if outcome != session.LoadParsed {
		t.Errorf("outcome = %v, want parsed", outcome)
	}
	snap := s.Read()
	if !bytes.Equal(snap.Raw, data) || snap.Name != "a.pdf" {
		t.Errorf("snapshot = %q/%d bytes, want a.pdf/%d bytes", snap.Name, len(snap.Raw), len(data))
	}
	if snap.Document == nil || snap.Document.PageCount() != 2 {
		t.Errorf("snapshot document not parsed with 2 pages")
	}
}

func TestSession_LoadEncryptedIsRawOnly(t *testing.T) {
	e := pdfengine.New()
	doc, err := e.Read(pdftest.PDF(t, 10))
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	locked, err := e.WriteEncrypted(doc, "pw")
	if err != nil {
		t.Fatalf("WriteEncrypted: %v", err)
	}

	s := session.New(e)
	outcome, err := s.Load(locked, "")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if outcome != session.LoadRawOnly {
		t.Errorf("outcome = %v, want raw-only", outcome)
	}
	snap := s.Read()
	if snap.Document != nil {
		t.Error("encrypted document was parsed without a password")
	}
	if snap.Name != session.DefaultName {
		t.Errorf("Name = %q, want %q", snap.Name, session.DefaultName)
	}
	if !snap.Loaded() {
		t.Error("raw bytes not kept")
	}
}

func TestSession_LoadFailedKeepsPrevious(t *testing.T) {
	s := session.New(pdfengine.New())
	data := pdftest.PDF(t, 10)
	if _, err := s.Load(data, "first.pdf"); err != nil {
		t.Fatalf("Load: %v", err)
	}

	for _, bad := range [][]byte{nil, []byte("hello world")} {
		outcome, err := s.Load(bad, "bad.pdf")
		if outcome != session.LoadFailed || !errors.Is(err, session.ErrUnreadable) {
			t.Errorf("Load(%q) = %v, %v; want failed, ErrUnreadable", bad, outcome, err)
		}
	}
	if got := s.Read().Name; got != "first.pdf" {
		t.Errorf("Name = %q after failed loads, want first.pdf", got)
	}
}

func TestSession_LoadReaderError(t *testing.T) {
	s := session.New(pdfengine.New())
	outcome, err := s.LoadReader(iotest.ErrReader(errors.New("boom")), "x.pdf")
	if outcome != session.LoadFailed || !errors.Is(err, session.ErrUnreadable) {
		t.Errorf("LoadReader = %v, %v; want failed, ErrUnreadable", outcome, err)
	}
}

func TestSession_LoadCorruptIsRawOnly(t *testing.T) {
	s := session.New(pdfengine.New())
	outcome, err := s.Load([]byte("%PDF-1.4\ngarbage"), "broken.pdf")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if outcome != session.LoadRawOnly {
		t.Errorf("outcome = %v, want raw-only", outcome)
	}
}

func TestMergeList(t *testing.T) {
	var l session.MergeList
	l.Add(session.NamedFile{Name: "a"}, session.NamedFile{Name: "b"})
	l.Add(session.NamedFile{Name: "a"})
	if l.Len() != 3 {
		t.Fatalf("Len() = %d, want 3", l.Len())
	}
	if err := l.Remove(1); err != nil {
		t.Fatalf("Remove: %v", err)
	}
	if err := l.Remove(5); err == nil {
		t.Error("Remove(5) succeeded")
	}
	var names []string
	for _, f := range l.Files() {
		names = append(names, f.Name)
	}
	if got := names; len(got) != 2 || got[0] != "a" || got[1] != "a" {
		t.Errorf("names = %v, want [a a]", got)
	}
}
