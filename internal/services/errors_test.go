package services

import (
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/Lllllllleong/pdftools/internal/session"
	"github.com/Lllllllleong/pdftools/internal/sources"
)

func TestStepOf(t *testing.T) {
	tests := []struct {
		err  error
		want Step
	}{
		{fmt.Errorf("source 2: %w", sources.ErrNetwork), StepNetwork},
		{sources.ErrTooLarge, StepNetwork},
		{ErrIncorrectPassword, StepSecurity},
		{ErrNotLoadedOrProtected, StepSecurity},
		{session.ErrUnreadable, StepRead},
		{fmt.Errorf("%w %q: boom", ErrMergeInput, "a.pdf"), StepRead},
		{ErrNoPagesSelected, StepRequest},
		{ErrUnsupportedFormat, StepRequest},
		{errors.New("pdfcpu: xref corrupt"), StepProcessing},
	}
	for _, tt := range tests {
		if got := StepOf(tt.err); got != tt.want {
			t.Errorf("StepOf(%v) = %s, want %s", tt.err, got, tt.want)
		}
	}
}

func TestUserMessage(t *testing.T) {
	msg := UserMessage(fmt.Errorf("wrap: %w", ErrIncorrectPassword))
	if msg != "security error: incorrect password" {
		t.Errorf("UserMessage = %q", msg)
	}
	msg = UserMessage(errors.New("open /tmp/pdf-render-123/input.pdf: no such file"))
	if strings.Contains(msg, "/tmp") {
		t.Errorf("UserMessage leaks the cause: %q", msg)
	}
	if !strings.HasPrefix(msg, "processing error") {
		t.Errorf("UserMessage = %q, want a processing error", msg)
	}
}
