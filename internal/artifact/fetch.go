// Package artifact fetches the model files the classifier loads at startup.
package artifact

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"time"
)

// ErrNoSource is returned when a file is missing locally and no URL is set.
var ErrNoSource = errors.New("file missing and no download url configured")

// Fetcher downloads artifacts over HTTP.
type Fetcher struct {
	Client *http.Client
}

// NewFetcher returns a Fetcher with a generous timeout for large models.
func NewFetcher() *Fetcher {
	return &Fetcher{Client: &http.Client{Timeout: 10 * time.Minute}}
}

// Ensure makes sure path exists, downloading it from url when it does not.
// An existing file is never re-downloaded.
func (f *Fetcher) Ensure(ctx context.Context, path, url string) error {
	if _, err := os.Stat(path); err == nil {
		return nil
	} else if !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("stat %s: %w", path, err)
	}

	if url == "" {
		return fmt.Errorf("%s: %w", path, ErrNoSource)
	}

	slog.Info("downloading artifact", "url", url, "path", path)
	start := time.Now()

	n, err := f.download(ctx, path, url)
	if err != nil {
		return err
	}

	slog.Info("artifact downloaded", "path", path, "bytes", n, "duration", time.Since(start).String())
	return nil
}

// download streams url into a temp file next to path and renames it into place,
// so a failed download never leaves a truncated artifact behind.
func (f *Fetcher) download(ctx context.Context, path, url string) (int64, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return 0, fmt.Errorf("build request: %w", err)
	}

	resp, err := f.Client.Do(req)
	if err != nil {
		return 0, fmt.Errorf("download %s: %w", url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return 0, fmt.Errorf("download %s: unexpected status %s", url, resp.Status)
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return 0, fmt.Errorf("create dir %s: %w", dir, err)
	}

	tmp, err := os.CreateTemp(dir, filepath.Base(path)+".*.part")
	if err != nil {
		return 0, fmt.Errorf("create temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	n, err := io.Copy(tmp, resp.Body)
	if err != nil {
		tmp.Close()
		return 0, fmt.Errorf("write %s: %w", path, err)
	}
	if err := tmp.Close(); err != nil {
		return 0, fmt.Errorf("close %s: %w", tmp.Name(), err)
	}
	if n == 0 {
		return 0, fmt.Errorf("download %s: empty body", url)
	}

	if err := os.Rename(tmp.Name(), path); err != nil {
		return 0, fmt.Errorf("move into place: %w", err)
	}
	return n, nil
}
