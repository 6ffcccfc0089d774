package sources

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"path"
	"strings"
)

// URLImportName is the name given to files imported from a plain URL.
const URLImportName = "url-import.pdf"

// URLFetcher downloads a file with an HTTP GET.
type URLFetcher struct {
	client   *http.Client
	maxBytes int64
}

// NewURLFetcher returns a fetcher using client (http.DefaultClient when nil).
func NewURLFetcher(client *http.Client, maxBytes int64) *URLFetcher {
	if client == nil {
		client = http.DefaultClient
	}
	return &URLFetcher{client: client, maxBytes: maxBytes}
}

func (u *URLFetcher) Fetch(ctx context.Context, f RemoteFile) (*File, error) {
	name := f.Name
	if name == "" {
		name = URLImportName
	}
	data, err := u.get(ctx, f.Link)
	if err != nil {
		return nil, err
	}
	return &File{Name: name, Data: data}, nil
}

func (u *URLFetcher) get(ctx context.Context, rawURL string) ([]byte, error) {
	parsed, err := url.Parse(rawURL)
	if err != nil || (parsed.Scheme != "http" && parsed.Scheme != "https") {
		return nil, fmt.Errorf("%w: %q is not an http(s) URL", ErrInvalidRef, rawURL)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, parsed.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidRef, err)
	}
	resp, err := u.client.Do(req)
	if err != nil {
		if errors.Is(err, ErrBlockedAddress) {
			return nil, fmt.Errorf("%w: %v", ErrInvalidRef, err)
		}
		return nil, fmt.Errorf("%w: %v", ErrNetwork, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("%w: %s returned status %d", ErrNetwork, parsed.Host, resp.StatusCode)
	}
	return readLimited(resp.Body, u.maxBytes)
}

// DropboxFetcher downloads files picked with the Dropbox chooser. Direct links are
// fetched as they are; share links are switched to their download form.
type DropboxFetcher struct {
	http *URLFetcher
}

func NewDropboxFetcher(client *http.Client, maxBytes int64) *DropboxFetcher {
	return &DropboxFetcher{http: NewURLFetcher(client, maxBytes)}
}

func (d *DropboxFetcher) Fetch(ctx context.Context, f RemoteFile) (*File, error) {
	parsed, err := url.Parse(f.Link)
	if err != nil || !IsDropboxHost(parsed.Hostname()) {
		return nil, fmt.Errorf("%w: %q is not a Dropbox link", ErrInvalidRef, f.Link)
	}
	link := DirectLink(f.Link)
	name := f.Name
	if name == "" {
		name = path.Base(parsed.Path)
	}
	data, err := d.http.get(ctx, link)
	if err != nil {
		return nil, err
	}
	return &File{Name: name, Data: data}, nil
}

// IsDropboxHost reports whether host is dropbox.com, dropboxusercontent.com or
// one of their subdomains.
func IsDropboxHost(host string) bool {
	host = strings.ToLower(host)
	for _, domain := range []string{"dropbox.com", "dropboxusercontent.com"} {
		if host == domain || strings.HasSuffix(host, "."+domain) {
			return true
		}
	}
	return false
}

// DirectLink rewrites a Dropbox share link (dl=0 or no dl parameter) to dl=1.
// Other links are returned unchanged.
func DirectLink(link string) string {
	parsed, err := url.Parse(link)
	if err != nil {
		return link
	}
	host := strings.ToLower(parsed.Hostname())
	if host != "dropbox.com" && !strings.HasSuffix(host, ".dropbox.com") {
		return link
	}
	q := parsed.Query()
	if q.Get("dl") == "1" || q.Get("raw") == "1" {
		return link
	}
	q.Set("dl", "1")
	parsed.RawQuery = q.Encode()
	return parsed.String()
}
