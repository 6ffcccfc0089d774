package services

import (
	"errors"

	"github.com/Lllllllleong/pdftools/internal/session"
	"github.com/Lllllllleong/pdftools/internal/sources"
)

// Errors returned by the toolkit operations.
var (
	ErrNotLoaded            = errors.New("no PDF loaded")
	ErrNotLoadedOrProtected = errors.New("the PDF is not loaded or is protected (remove the protection first)")
	ErrNoPagesSelected      = errors.New("the page ranges select no pages")
	ErrNoPages              = errors.New("the PDF has no pages")
	ErrNeedTwoFiles         = errors.New("at least two PDF files are needed to merge")
	ErrMergeInput           = errors.New("failed to read a PDF to merge")
	ErrUnsupportedFormat    = errors.New("unsupported format")
	ErrUnsupportedMode      = errors.New("unsupported protection mode")
	ErrUnsupportedOperation = errors.New("unsupported operation")
	ErrPasswordRequired     = errors.New("a password is required")
	ErrPasswordMismatch     = errors.New("the passwords do not match")
	ErrIncorrectPassword    = errors.New("incorrect password")
	ErrMissingSource        = errors.New("no source file given")
)

// Step names the stage an error belongs to, for user-facing messages.
type Step string

const (
	StepRequest    Step = "request"
	StepRead       Step = "read"
	StepNetwork    Step = "network"
	StepSecurity   Step = "security"
	StepProcessing Step = "processing"
)

// StepOf classifies err.
func StepOf(err error) Step {
	switch {
	case errors.Is(err, sources.ErrNetwork), errors.Is(err, sources.ErrTooLarge):
		return StepNetwork
	case errors.Is(err, ErrIncorrectPassword), errors.Is(err, ErrPasswordRequired),
		errors.Is(err, ErrPasswordMismatch), errors.Is(err, ErrNotLoadedOrProtected):
		return StepSecurity
	case errors.Is(err, session.ErrUnreadable), errors.Is(err, ErrMergeInput):
		return StepRead
	case errors.Is(err, ErrNotLoaded), errors.Is(err, ErrNoPagesSelected), errors.Is(err, ErrNoPages),
		errors.Is(err, ErrNeedTwoFiles), errors.Is(err, ErrUnsupportedFormat),
		errors.Is(err, ErrUnsupportedMode), errors.Is(err, ErrUnsupportedOperation),
		errors.Is(err, ErrMissingSource), errors.Is(err, sources.ErrInvalidRef):
		return StepRequest
	default:
		return StepProcessing
	}
}

// UserMessage returns a short message for err. Collaborator details are not
// exposed; the known failures carry their own message.
func UserMessage(err error) string {
	for _, known := range []error{
		ErrNotLoaded, ErrNotLoadedOrProtected, ErrNoPagesSelected, ErrNoPages, ErrNeedTwoFiles,
		ErrMergeInput, ErrUnsupportedFormat, ErrUnsupportedMode, ErrUnsupportedOperation,
		ErrPasswordRequired, ErrPasswordMismatch, ErrIncorrectPassword, ErrMissingSource,
		session.ErrUnreadable, sources.ErrNetwork, sources.ErrTooLarge, sources.ErrInvalidRef,
	} {
		if errors.Is(err, known) {
			return string(StepOf(err)) + " error: " + known.Error()
		}
	}
	return string(StepProcessing) + " error: the operation failed"
}
