package sources

import (
	"context"
	"fmt"
	"path"
	"strings"

	"cloud.google.com/go/storage"
)

// GCSFetcher downloads gs://bucket/object references.
type GCSFetcher struct {
	client   *storage.Client
	maxBytes int64
}

func NewGCSFetcher(client *storage.Client, maxBytes int64) *GCSFetcher {
	return &GCSFetcher{client: client, maxBytes: maxBytes}
}

// Fetch reads the object named by f.ID, a gs:// URI.
func (g *GCSFetcher) Fetch(ctx context.Context, f RemoteFile) (*File, error) {
	bucket, object, err := ParseGCSURI(f.ID)
	if err != nil {
		return nil, err
	}
	reader, err := g.client.Bucket(bucket).Object(object).NewReader(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to get GCS object reader for gs://%s/%s: %v", ErrNetwork, bucket, object, err)
	}
	defer reader.Close()
	data, err := readLimited(reader, g.maxBytes)
	if err != nil {
		return nil, err
	}
	name := f.Name
	if name == "" {
		name = path.Base(object)
	}
	return &File{Name: name, Data: data}, nil
}

// ParseGCSURI splits gs://bucket/object.
func ParseGCSURI(uri string) (bucket, object string, err error) {
	rest, ok := strings.CutPrefix(uri, "gs://")
	if !ok {
		return "", "", fmt.Errorf("%w: %q is not a gs:// URI", ErrInvalidRef, uri)
	}
	bucket, object, ok = strings.Cut(rest, "/")
	if !ok || bucket == "" || object == "" {
		return "", "", fmt.Errorf("%w: %q must name a bucket and an object", ErrInvalidRef, uri)
	}
	return bucket, object, nil
}
