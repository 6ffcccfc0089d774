package pdfengine_test

import (
	"errors"
	"reflect"
	"testing"

	"github.com/Lllllllleong/pdftools/internal/pdfengine"
	"github.com/Lllllllleong/pdftools/internal/pdfengine/pdftest"
)

func TestEngine_ReadPageCount(t *testing.T) {
	e := pdfengine.New()
	doc, err := e.Read(pdftest.PDF(t, 10, 20, 30))
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if got := doc.PageCount(); got != 3 {
		t.Errorf("PageCount() = %d, want 3", got)
	}
}

func TestEngine_ReadGarbage(t *testing.T) {
	if _, err := pdfengine.New().Read([]byte("%PDF-1.7 not really")); err == nil {
		t.Fatal("Read of garbage succeeded")
	}
}

func TestEngine_CopyPagesKeepsOrder(t *testing.T) {
	e := pdfengine.New()
	src, err := e.Read(pdftest.PDF(t, 10, 20, 30, 40))
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	dst, err := e.CopyPages(src, []int{1, 3})
	if err != nil {
		t.Fatalf("CopyPages: %v", err)
	}
	data, err := e.Write(dst)
	if err != nil {
		t.Fatalf("Write: %v", err)
	}
	if got, want := pdftest.Widths(t, data), []int{20, 40}; !reflect.DeepEqual(got, want) {
		t.Errorf("widths = %v, want %v", got, want)
	}
}

func TestEngine_CopyPagesRejects(t *testing.T) {
	e := pdfengine.New()
	src, err := e.Read(pdftest.PDF(t, 10))
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if _, err := e.CopyPages(src, nil); !errors.Is(err, pdfengine.ErrNoPages) {
		t.Errorf("CopyPages(nil) error = %v, want ErrNoPages", err)
	}
	if _, err := e.CopyPages(src, []int{1}); err == nil {
		t.Error("CopyPages out of range succeeded")
	}
}

func TestEngine_Merge(t *testing.T) {
	e := pdfengine.New()
	out, err := e.Merge([][]byte{pdftest.PDF(t, 10, 20), pdftest.PDF(t, 30, 40, 50)})
	if err != nil {
		t.Fatalf("Merge: %v", err)
	}
	if got, want := pdftest.Widths(t, out), []int{10, 20, 30, 40, 50}; !reflect.DeepEqual(got, want) {
		t.Errorf("widths = %v, want %v", got, want)
	}
}

func TestEngine_EncryptRoundTrip(t *testing.T) {
	e := pdfengine.New()
	src, err := e.Read(pdftest.PDF(t, 10, 20))
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	locked, err := e.WriteEncrypted(src, "secret")
	if err != nil {
		t.Fatalf("WriteEncrypted: %v", err)
	}
	if _, err := e.Read(locked); err == nil {
		t.Fatal("Read of encrypted PDF without password succeeded")
	}
	if _, err := e.ReadWithPassword(locked, "wrong"); err == nil {
		t.Fatal("ReadWithPassword with wrong password succeeded")
	}
	doc, err := e.ReadWithPassword(locked, "secret")
	if err != nil {
		t.Fatalf("ReadWithPassword: %v", err)
	}
	if got := doc.PageCount(); got != 2 {
		t.Errorf("PageCount() = %d, want 2", got)
	}
}

func TestEngine_ImagesToPDF(t *testing.T) {
	e := pdfengine.New()
	out, err := e.ImagesToPDF([][]byte{pdftest.PNG(t, 12, 40), pdftest.PNG(t, 24, 40)})
	if err != nil {
		t.Fatalf("ImagesToPDF: %v", err)
	}
	n, err := e.PageCount(out)
	if err != nil {
		t.Fatalf("PageCount: %v", err)
	}
	if n != 2 {
		t.Errorf("PageCount = %d, want 2", n)
	}
	if _, err := e.ImagesToPDF(nil); !errors.Is(err, pdfengine.ErrNoPages) {
		t.Errorf("ImagesToPDF(nil) error = %v, want ErrNoPages", err)
	}
}
