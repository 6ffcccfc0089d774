// Package sources downloads PDFs picked from remote locations. Every vendor sits
// behind Fetcher, so the toolkit only ever sees bytes and a name.
package sources

import (
	"context"
	"errors"
	"fmt"
	"io"
)

// DefaultMaxBytes caps a download when no limit is configured.
const DefaultMaxBytes = 100 << 20

var (
	ErrNetwork    = errors.New("cannot access the remote file (network failure or blocked request)")
	ErrTooLarge   = errors.New("the remote file is too large")
	ErrInvalidRef = errors.New("invalid source reference")
)

// RemoteFile identifies a picked file. Which fields are used depends on the
// fetcher: Link for URL and Dropbox, ID and Token for Drive, ID for GCS.
type RemoteFile struct {
	ID    string
	Name  string
	Link  string
	Token string
}

// File is a downloaded file.
type File struct {
	Name string
	Data []byte
}

// Fetcher returns the bytes of a picked remote file.
type Fetcher interface {
	Fetch(ctx context.Context, f RemoteFile) (*File, error)
}

// readLimited reads r up to limit bytes and fails with ErrTooLarge beyond that.
func readLimited(r io.Reader, limit int64) ([]byte, error) {
	if limit <= 0 {
		limit = DefaultMaxBytes
	}
	data, err := io.ReadAll(io.LimitReader(r, limit+1))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrNetwork, err)
	}
	if int64(len(data)) > limit {
		return nil, fmt.Errorf("%w: more than %d bytes", ErrTooLarge, limit)
	}
	return data, nil
}
