package sources

import (
	"context"
	"fmt"

	"github.com/Lllllllleong/pdftools/internal/models"
)

// Resolver picks the fetcher matching a source reference.
type Resolver struct {
	URL     Fetcher
	Dropbox Fetcher
	Drive   Fetcher
	// GCS is nil when no storage client is configured.
	GCS Fetcher
}

// Resolve returns the file ref points at. Inline data is returned without a fetch.
func (r *Resolver) Resolve(ctx context.Context, ref models.SourceRef) (*File, error) {
	switch {
	case len(ref.Data) > 0:
		return &File{Name: ref.Name, Data: ref.Data}, nil
	case ref.GCSUri != "":
		if r.GCS == nil {
			return nil, fmt.Errorf("%w: gcs sources are not enabled", ErrInvalidRef)
		}
		return r.GCS.Fetch(ctx, RemoteFile{ID: ref.GCSUri, Name: ref.Name})
	case ref.DriveFileID != "":
		return r.Drive.Fetch(ctx, RemoteFile{ID: ref.DriveFileID, Name: ref.Name, Token: ref.DriveAccessToken})
	case ref.DropboxLink != "":
		return r.Dropbox.Fetch(ctx, RemoteFile{Link: ref.DropboxLink, Name: ref.Name})
	case ref.URL != "":
		return r.URL.Fetch(ctx, RemoteFile{Link: ref.URL, Name: ref.Name})
	default:
		return nil, fmt.Errorf("%w: no location given", ErrInvalidRef)
	}
}
