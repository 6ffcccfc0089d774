package services

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/Lllllllleong/pdftools/internal/session"
)

// ProtectMode selects between adding and removing a password.
type ProtectMode string

const (
	ProtectAdd    ProtectMode = "add"
	ProtectRemove ProtectMode = "remove"
)

// Passwords carries the password fields of a protect request. Confirm is only
// compared by the request layer.
type Passwords struct {
	New     string
	Confirm string
	Current string
}

// Protect adds a password to the loaded PDF or removes it.
func (t *Toolkit) Protect(ctx context.Context, s *session.Session, mode ProtectMode, pw Passwords) (*Result, error) {
	switch mode {
	case ProtectAdd:
		return t.addPassword(s.Read(), pw.New)
	case ProtectRemove:
		return t.removePassword(s.Read(), pw.Current)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedMode, mode)
	}
}

func (t *Toolkit) addPassword(snap session.Snapshot, password string) (*Result, error) {
	if snap.Document == nil {
		return nil, ErrNotLoaded
	}
	if password == "" {
		return nil, ErrPasswordRequired
	}
	// A fresh copy gives a clean structure instead of re-saving the loaded one.
	clean, err := t.engine.CopyAll(snap.Document)
	if err != nil {
		return nil, fmt.Errorf("failed to copy pages: %w", err)
	}
	payload, err := t.engine.WriteEncrypted(clean, password)
	if err != nil {
		return nil, fmt.Errorf("failed to protect PDF: %w", err)
	}
	return &Result{Payload: payload, SuggestedName: ProtectName, ContentType: pdfContentType}, nil
}

func (t *Toolkit) removePassword(snap session.Snapshot, password string) (*Result, error) {
	if !snap.Loaded() {
		return nil, ErrNotLoaded
	}
	if password == "" {
		return nil, ErrPasswordRequired
	}
	decrypted, err := t.engine.ReadWithPassword(snap.Raw, password)
	if err != nil {
		// Wrong password and corrupt file are reported the same way.
		slog.Debug("Failed to open PDF with the supplied password.", "name", snap.Name, "error", err)
		return nil, ErrIncorrectPassword
	}
	clean, err := t.engine.CopyAll(decrypted)
	if err != nil {
		return nil, ErrIncorrectPassword
	}
	payload, err := t.engine.Write(clean)
	if err != nil {
		return nil, fmt.Errorf("failed to write unprotected PDF: %w", err)
	}
	return &Result{Payload: payload, SuggestedName: UnprotectName, ContentType: pdfContentType}, nil
}
