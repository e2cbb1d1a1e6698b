// Package fetcher opens dataset locations (local paths, http(s) and ftp
// URLs) and decodes the tabular and archive formats the loader reads.
package fetcher

import (
	"context"
	"io"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
)

// Fetcher downloads remote data.
type Fetcher interface {
	// Download fetches the URL and returns the response body.
	Download(ctx context.Context, url string) (io.ReadCloser, error)

	// DownloadToFile fetches the URL and writes it to the given path. Returns bytes written.
	DownloadToFile(ctx context.Context, url string, path string) (int64, error)
}

// Options configures a Router.
type Options struct {
	UserAgent string
	Timeout   time.Duration
	// RateLimit caps requests per second per host; zero means the default.
	RateLimit float64
}

// Router opens a location through the fetcher its scheme selects. Plain
// paths and file:// URLs are read from disk.
type Router struct {
	schemes map[string]Fetcher
}

// NewRouter returns a router with http, https and ftp fetchers.
func NewRouter(opts Options) *Router {
	h := NewHTTPFetcher(HTTPOptions{
		UserAgent: opts.UserAgent,
		Timeout:   opts.Timeout,
		RateLimit: opts.RateLimit,
	})
	r := &Router{schemes: make(map[string]Fetcher)}
	r.register("http", h)
	r.register("https", h)
	r.register("ftp", NewFTPFetcher(FTPOptions{Timeout: opts.Timeout}))
	return r
}

// register installs f for scheme, replacing any existing one.
func (r *Router) register(scheme string, f Fetcher) {
	r.schemes[strings.ToLower(scheme)] = f
}

// IsRemote reports whether location is a URL with a scheme the router
// downloads.
func (r *Router) IsRemote(location string) bool {
	_, ok := r.fetcherFor(location)
	return ok
}

func (r *Router) fetcherFor(location string) (Fetcher, bool) {
	u, err := url.Parse(location)
	if err != nil || u.Scheme == "" {
		return nil, false
	}
	f, ok := r.schemes[strings.ToLower(u.Scheme)]
	return f, ok
}

// Open returns a reader over location.
func (r *Router) Open(ctx context.Context, location string) (io.ReadCloser, error) {
	if f, ok := r.fetcherFor(location); ok {
		return f.Download(ctx, location)
	}
	p, err := LocalPath(location)
	if err != nil {
		return nil, err
	}
	file, err := os.Open(p)
	if err != nil {
		return nil, eris.Wrap(err, "fetcher: open file")
	}
	return file, nil
}

// Fetch returns a local path holding location's content. Local paths are
// returned as-is; remote locations are downloaded into dir under their
// base name.
func (r *Router) Fetch(ctx context.Context, location, dir string) (string, error) {
	f, ok := r.fetcherFor(location)
	if !ok {
		return LocalPath(location)
	}

	dest := filepath.Join(dir, BaseName(location))
	n, err := f.DownloadToFile(ctx, location, dest)
	if err != nil {
		return "", err
	}
	zap.L().Debug("fetcher: downloaded",
		zap.String("location", location),
		zap.String("path", dest),
		zap.Int64("bytes", n),
	)
	return dest, nil
}

// LocalPath strips a file:// scheme from location.
func LocalPath(location string) (string, error) {
	if !strings.HasPrefix(location, "file://") {
		return location, nil
	}
	u, err := url.Parse(location)
	if err != nil {
		return "", eris.Wrap(err, "fetcher: parse file url")
	}
	return filepath.FromSlash(u.Path), nil
}

// BaseName returns the last path element of location, ignoring any query
// string. It falls back to "download".
func BaseName(location string) string {
	p := location
	if u, err := url.Parse(location); err == nil && u.Scheme != "" {
		p = u.Path
	}
	base := path.Base(filepath.ToSlash(p))
	if base == "." || base == "/" || base == "" {
		return "download"
	}
	return base
}

// Ext returns the lower-cased extension of location's base name.
func Ext(location string) string {
	return strings.ToLower(path.Ext(BaseName(location)))
}

func writeFile(body io.Reader, dest string) (int64, error) {
	file, err := os.Create(dest)
	if err != nil {
		return 0, eris.Wrap(err, "create file")
	}
	defer file.Close() //nolint:errcheck

	n, err := io.Copy(file, body)
	if err != nil {
		return n, eris.Wrap(err, "write file")
	}
	return n, nil
}
