package sources

import (
	"context"
	"errors"
	"fmt"

	"golang.org/x/oauth2"
	"google.golang.org/api/drive/v3"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"
)

// DriveScope is the OAuth scope the picker token must carry.
const DriveScope = drive.DriveReadonlyScope

// DriveFetcher downloads a Google Drive file with the user's OAuth access token.
type DriveFetcher struct {
	maxBytes int64
	opts     []option.ClientOption
}

// NewDriveFetcher returns a Drive fetcher; opts are appended to every client, which
// lets tests point it at a local endpoint.
func NewDriveFetcher(maxBytes int64, opts ...option.ClientOption) *DriveFetcher {
	return &DriveFetcher{maxBytes: maxBytes, opts: opts}
}

func (d *DriveFetcher) Fetch(ctx context.Context, f RemoteFile) (*File, error) {
	if f.ID == "" || f.Token == "" {
		return nil, fmt.Errorf("%w: drive file id and access token are required", ErrInvalidRef)
	}
	opts := append([]option.ClientOption{
		option.WithTokenSource(oauth2.StaticTokenSource(&oauth2.Token{AccessToken: f.Token})),
	}, d.opts...)
	srv, err := drive.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create drive client: %w", err)
	}

	name := f.Name
	if name == "" {
		meta, err := srv.Files.Get(f.ID).Fields("name").Context(ctx).Do()
		if err != nil {
			return nil, driveError(f.ID, err)
		}
		name = meta.Name
	}

	resp, err := srv.Files.Get(f.ID).Context(ctx).Download()
	if err != nil {
		return nil, driveError(f.ID, err)
	}
	defer resp.Body.Close()
	data, err := readLimited(resp.Body, d.maxBytes)
	if err != nil {
		return nil, err
	}
	return &File{Name: name, Data: data}, nil
}

func driveError(id string, err error) error {
	var gerr *googleapi.Error
	if errors.As(err, &gerr) {
		return fmt.Errorf("%w: drive file %s: status %d", ErrNetwork, id, gerr.Code)
	}
	return fmt.Errorf("%w: drive file %s: %v", ErrNetwork, id, err)
}
