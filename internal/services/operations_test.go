package services

import (
	"context"
	"errors"
	"slices"
	"testing"

	"github.com/Lllllllleong/pdftools/internal/models"
	"github.com/Lllllllleong/pdftools/internal/pdfengine/pdftest"
	"github.com/Lllllllleong/pdftools/internal/session"
	"github.com/Lllllllleong/pdftools/internal/sources"
)

func newTestOperations(t *testing.T, remote map[string][]byte) *OperationsFunction {
	t.Helper()
	fetcher := &stubFetcher{files: remote}
	resolver := &sources.Resolver{URL: fetcher, Dropbox: fetcher, Drive: fetcher}
	return NewOperationsWith(OperationsConfig{}, newTestToolkit(&fakeLoader{widths: []int{10, 20}}), resolver)
}

func TestOperations_Split(t *testing.T) {
	ops := newTestOperations(t, nil)
	res, err := ops.Process(context.Background(), &models.OperationRequest{
		Operation: "Split",
		Source:    &models.SourceRef{Name: "in.pdf", Data: pdftest.PDF(t, 10, 20, 30)},
		Ranges:    "2-3",
	})
	if err != nil {
		t.Fatalf("Process: %v", err)
	}
	if got, want := pdftest.Widths(t, res.Payload), []int{20, 30}; !slices.Equal(got, want) {
		t.Errorf("page widths = %v, want %v", got, want)
	}
}

func TestOperations_MergeKeepsSourceOrder(t *testing.T) {
	ops := newTestOperations(t, map[string][]byte{
		"https://example.com/b.pdf": pdftest.PDF(t, 20),
		"https://example.com/d.pdf": pdftest.PDF(t, 40),
	})
	res, err := ops.Process(context.Background(), &models.OperationRequest{
		Operation: models.OperationMerge,
		Sources: []models.SourceRef{
			{Name: "a.pdf", Data: pdftest.PDF(t, 10)},
			{URL: "https://example.com/b.pdf"},
			{Name: "c.pdf", Data: pdftest.PDF(t, 30)},
			{DropboxLink: "https://example.com/d.pdf"},
			{Name: "e.pdf", Data: pdftest.PDF(t, 50)},
		},
	})
	if err != nil {
		t.Fatalf("Process: %v", err)
	}
	if got, want := pdftest.Widths(t, res.Payload), []int{10, 20, 30, 40, 50}; !slices.Equal(got, want) {
		t.Errorf("page widths = %v, want %v", got, want)
	}
}

func TestOperations_Errors(t *testing.T) {
	ops := newTestOperations(t, nil)
	pdf := pdftest.PDF(t, 10)
	tests := []struct {
		name string
		req  models.OperationRequest
		want error
	}{
		{"unknown operation", models.OperationRequest{Operation: "rotate"}, ErrUnsupportedOperation},
		{"missing source", models.OperationRequest{Operation: models.OperationSplit}, ErrMissingSource},
		{"empty source", models.OperationRequest{Operation: models.OperationSplit, Source: &models.SourceRef{}}, sources.ErrInvalidRef},
		{"not a pdf", models.OperationRequest{Operation: models.OperationSplit, Source: &models.SourceRef{Data: []byte("hello")}}, session.ErrUnreadable},
		{"password mismatch", models.OperationRequest{
			Operation: models.OperationProtect, Mode: "add", NewPassword: "a", ConfirmPassword: "b",
			Source: &models.SourceRef{Data: pdf},
		}, ErrPasswordMismatch},
		{"missing confirmation", models.OperationRequest{
			Operation: models.OperationProtect, Mode: "add", NewPassword: "a",
			Source: &models.SourceRef{Data: pdf},
		}, ErrPasswordMismatch},
		{"merge needs two", models.OperationRequest{
			Operation: models.OperationMerge, Sources: []models.SourceRef{{Data: pdf}},
		}, ErrNeedTwoFiles},
		{"merge fetch failure", models.OperationRequest{
			Operation: models.OperationMerge, Sources: []models.SourceRef{{Data: pdf}, {URL: "https://example.com/missing.pdf"}},
		}, sources.ErrNetwork},
		{"bad format", models.OperationRequest{
			Operation: models.OperationConvert, Format: "pptx", Source: &models.SourceRef{Data: pdf},
		}, ErrUnsupportedFormat},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := ops.Process(context.Background(), &tt.req); !errors.Is(err, tt.want) {
				t.Errorf("Process error = %v, want %v", err, tt.want)
			}
		})
	}
}

func TestOperations_ProtectAndConvert(t *testing.T) {
	ops := newTestOperations(t, nil)
	res, err := ops.Process(context.Background(), &models.OperationRequest{
		Operation:       models.OperationProtect,
		Mode:            "add",
		NewPassword:     "pw",
		ConfirmPassword: "pw",
		Source:          &models.SourceRef{Data: pdftest.PDF(t, 10, 20)},
	})
	if err != nil {
		t.Fatalf("protect: %v", err)
	}
	if res.SuggestedName != ProtectName {
		t.Errorf("SuggestedName = %q, want %q", res.SuggestedName, ProtectName)
	}

	// Convert renders from raw bytes, so a protected file is still accepted.
	res, err = ops.Process(context.Background(), &models.OperationRequest{
		Operation: models.OperationConvert,
		Format:    "JPG",
		Source:    &models.SourceRef{Data: res.Payload},
	})
	if err != nil {
		t.Fatalf("convert: %v", err)
	}
	if res.SuggestedName != "convertido.zip" {
		t.Errorf("SuggestedName = %q, want convertido.zip", res.SuggestedName)
	}
}
