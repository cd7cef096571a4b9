package bundle

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"net/http"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"

	"talisman/internal/config"
)

// ErrNotExist reports that a logical path is absent from the bundle. Callers
// treat it as a per-record condition, not an I/O fault.
var ErrNotExist = errors.New("bundle: file does not exist")

// Fs fetches raw bytes for a logical bundle path.
type Fs interface {
	Read(ctx context.Context, name string) ([]byte, error)
}

// LocalFs reads an extracted bundle tree rooted at a directory.
type LocalFs struct {
	root string
}

// NewLocalFs creates a local backend over root.
func NewLocalFs(root string) *LocalFs {
	return &LocalFs{root: root}
}

func (l *LocalFs) Read(_ context.Context, name string) ([]byte, error) {
	cleaned := filepath.FromSlash(path.Clean("/" + name))
	data, err := os.ReadFile(filepath.Join(l.root, cleaned))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrNotExist, name)
		}
		return nil, fmt.Errorf("read %s: %w", name, err)
	}
	return data, nil
}

// WebFs reads bundle files from an HTTP mirror.
type WebFs struct {
	baseURL    string
	httpClient *http.Client
}

// WebOption configures a WebFs.
type WebOption func(*WebFs)

// WithHTTPClient overrides the default HTTP client.
func WithHTTPClient(client *http.Client) WebOption {
	return func(w *WebFs) {
		if client != nil {
			w.httpClient = client
		}
	}
}

// NewWebFs creates an HTTP backend rooted at baseURL.
func NewWebFs(baseURL string, opts ...WebOption) (*WebFs, error) {
	baseURL = strings.TrimSpace(baseURL)
	if baseURL == "" {
		return nil, errors.New("bundle: base url required")
	}
	if _, err := url.Parse(baseURL); err != nil {
		return nil, fmt.Errorf("bundle: parse base url: %w", err)
	}
	if !strings.HasSuffix(baseURL, "/") {
		baseURL += "/"
	}
	w := &WebFs{
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: 60 * time.Second},
	}
	for _, opt := range opts {
		opt(w)
	}
	return w, nil
}

// NewCDNFs creates an HTTP backend addressing the game patch CDN at a
// specific patch version.
func NewCDNFs(patch string, opts ...WebOption) (*WebFs, error) {
	patch = strings.TrimSpace(patch)
	if patch == "" {
		return nil, errors.New("bundle: patch version required")
	}
	return NewWebFs(config.PatchCDNURL(patch), opts...)
}

func (w *WebFs) Read(ctx context.Context, name string) ([]byte, error) {
	target := w.baseURL + strings.TrimPrefix(name, "/")
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return nil, fmt.Errorf("build request for %s: %w", name, err)
	}

	resp, err := w.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch %s: %w", name, err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return nil, fmt.Errorf("%w: %s", ErrNotExist, name)
	case resp.StatusCode != http.StatusOK:
		return nil, fmt.Errorf("fetch %s: unexpected status %d", name, resp.StatusCode)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read body for %s: %w", name, err)
	}
	return data, nil
}
