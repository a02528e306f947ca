// Package source resolves a user supplied path or URL to a local audio file.
package source

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"
)

const (
	// DefaultSource is used when no source is given.
	DefaultSource = "song.mp3"
	// DefaultDownloadPath is where remote sources are saved.
	DefaultDownloadPath = "downloaded_song.mp3"
	// DefaultChunkSize is the download copy buffer size.
	DefaultChunkSize = 8192
)

// ErrSourceResolution is wrapped by every error from Resolve.
var ErrSourceResolution = errors.New("cannot resolve music source")

// Options configures Resolve.
type Options struct {
	// DownloadPath is the file remote sources are written to. An existing
	// file is overwritten.
	DownloadPath string
	// ChunkSize is the size of each read from the response body.
	ChunkSize int
	// Client defaults to http.DefaultClient.
	Client *http.Client
	// Logger defaults to slog.Default().
	Logger *slog.Logger
	// Progress, if set, receives user facing progress lines.
	Progress io.Writer
}

func (o *Options) setDefaults() {
	if o.DownloadPath == "" {
		o.DownloadPath = DefaultDownloadPath
	}
	if o.ChunkSize <= 0 {
		o.ChunkSize = DefaultChunkSize
	}
	if o.Client == nil {
		o.Client = http.DefaultClient
	}
	if o.Logger == nil {
		o.Logger = slog.Default()
	}
	if o.Progress == nil {
		o.Progress = io.Discard
	}
}

// IsRemote reports whether src is an http or https URL.
func IsRemote(src string) bool {
	return strings.HasPrefix(src, "http://") || strings.HasPrefix(src, "https://")
}

// Resolve returns a local path for src. URLs are downloaded to
// opts.DownloadPath; anything else must be an existing local file. There are
// no retries.
func Resolve(ctx context.Context, src string, opts Options) (string, error) {
	opts.setDefaults()

	if IsRemote(src) {
		return download(ctx, src, opts)
	}

	info, err := os.Stat(src)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return "", errors.Wrapf(ErrSourceResolution, "file not found at %s", src)
		}
		return "", errors.Wrapf(ErrSourceResolution, "cannot stat %s: %v", src, err)
	}
	if info.IsDir() {
		return "", errors.Wrapf(ErrSourceResolution, "%s is a directory", src)
	}

	return src, nil
}

func download(ctx context.Context, url string, opts Options) (string, error) {
	fmt.Fprintf(opts.Progress, "Downloading from %s...\n", url)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", errors.Wrapf(ErrSourceResolution, "invalid url %q: %v", url, err)
	}

	resp, err := opts.Client.Do(req)
	if err != nil {
		return "", errors.Wrapf(ErrSourceResolution, "failed to download: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", errors.Wrapf(ErrSourceResolution, "failed to download: server returned %s", resp.Status)
	}

	// Write next to the target and rename, so that a failed transfer never
	// leaves a partial file under the target name.
	dir := filepath.Dir(opts.DownloadPath)
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(opts.DownloadPath)+".*")
	if err != nil {
		return "", errors.Wrapf(ErrSourceResolution, "failed to create download file: %v", err)
	}
	defer os.Remove(tmp.Name())

	n, err := io.CopyBuffer(onlyWriter{tmp}, onlyReader{resp.Body}, make([]byte, opts.ChunkSize))
	if err != nil {
		tmp.Close()
		return "", errors.Wrapf(ErrSourceResolution, "failed to download after %d bytes: %v", n, err)
	}
	if err := tmp.Close(); err != nil {
		return "", errors.Wrapf(ErrSourceResolution, "failed to write download file: %v", err)
	}

	if err := os.Rename(tmp.Name(), opts.DownloadPath); err != nil {
		return "", errors.Wrapf(ErrSourceResolution, "failed to save download: %v", err)
	}

	opts.Logger.Debug(
		"downloaded music source",
		"url", url,
		"path", opts.DownloadPath,
		"bytes", n)

	return opts.DownloadPath, nil
}

// onlyReader and onlyWriter hide ReadFrom/WriteTo so that io.CopyBuffer
// really moves data in ChunkSize pieces.
type onlyReader struct{ io.Reader }

type onlyWriter struct{ io.Writer }
