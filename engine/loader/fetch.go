package loader

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"strings"
)

// errStopped is returned by a progress reader when its consumer stops listening.
var errStopped = errors.New("load stopped by consumer")

// progressFunc receives the fraction of the body read so far, or a negative value when
// the total size is unknown. Returning false aborts the read.
type progressFunc func(fraction float64) bool

// fetcher retrieves the main asset file and resolves resources it references.
type fetcher interface {
	// Fetch reads the resource at rawURL, reporting progress while the body is read.
	//
	// Parameters:
	//   - ctx: cancels the request
	//   - rawURL: an http(s) or file URL, or a filesystem path
	//   - progress: progress callback; may be nil
	//
	// Returns:
	//   - []byte: the body
	//   - resourceResolver: resolves URIs relative to rawURL
	//   - error: error if the resource cannot be read
	Fetch(ctx context.Context, rawURL string, progress progressFunc) ([]byte, resourceResolver, error)
}

// urlFetcher implements fetcher over net/http and the local filesystem.
type urlFetcher struct {
	client *http.Client
}

var _ fetcher = &urlFetcher{}

func (f *urlFetcher) Fetch(ctx context.Context, rawURL string, progress progressFunc) ([]byte, resourceResolver, error) {
	u, err := url.Parse(rawURL)
	if err == nil && (u.Scheme == "http" || u.Scheme == "https") {
		data, err := f.fetchHTTP(ctx, u.String(), progress)
		if err != nil {
			return nil, nil, err
		}
		return data, f.httpResolver(ctx, u), nil
	}

	p := rawURL
	if err == nil && u.Scheme == "file" {
		p = u.Path
	} else if err == nil && u.Scheme != "" && len(u.Scheme) > 1 {
		// Single-letter schemes are Windows drive letters.
		return nil, nil, fmt.Errorf("unsupported URL scheme %q", u.Scheme)
	}
	data, err := readFile(ctx, p, progress)
	if err != nil {
		return nil, nil, err
	}
	return data, fileResolver(filepath.Dir(p)), nil
}

func (f *urlFetcher) fetchHTTP(ctx context.Context, target string, progress progressFunc) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}
	resp, err := f.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch %s: %w", target, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("failed to fetch %s: %s", target, resp.Status)
	}
	return readAll(resp.Body, resp.ContentLength, progress)
}

func (f *urlFetcher) httpResolver(ctx context.Context, base *url.URL) resourceResolver {
	return func(uri string) ([]byte, error) {
		ref, err := url.Parse(uri)
		if err != nil {
			return nil, fmt.Errorf("invalid resource URI %q: %w", uri, err)
		}
		return f.fetchHTTP(ctx, base.ResolveReference(ref).String(), nil)
	}
}

func fileResolver(dir string) resourceResolver {
	return func(uri string) ([]byte, error) {
		rel, err := url.PathUnescape(uri)
		if err != nil {
			return nil, fmt.Errorf("invalid resource URI %q: %w", uri, err)
		}
		rel = path.Clean("/" + rel)[1:]
		return os.ReadFile(filepath.Join(dir, filepath.FromSlash(rel)))
	}
}

func readFile(ctx context.Context, p string, progress progressFunc) ([]byte, error) {
	file, err := os.Open(p)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", p, err)
	}
	defer file.Close()

	size := int64(-1)
	if info, err := file.Stat(); err == nil {
		size = info.Size()
	}
	return readAll(&ctxReader{ctx: ctx, r: file}, size, progress)
}

// readChunk is the read granularity between progress reports.
const readChunk = 64 * 1024

func readAll(r io.Reader, total int64, progress progressFunc) ([]byte, error) {
	var buf []byte
	if total > 0 {
		buf = make([]byte, 0, total)
	}
	chunk := make([]byte, readChunk)
	for {
		n, err := r.Read(chunk)
		buf = append(buf, chunk[:n]...)
		if n > 0 && progress != nil {
			frac := -1.0
			if total > 0 {
				frac = min(float64(len(buf))/float64(total), 1)
			}
			if !progress(frac) {
				return nil, errStopped
			}
		}
		if errors.Is(err, io.EOF) {
			return buf, nil
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read body: %w", err)
		}
	}
}

// ctxReader aborts reads once its context is done.
type ctxReader struct {
	ctx context.Context
	r   io.Reader
}

func (c *ctxReader) Read(p []byte) (int, error) {
	if err := c.ctx.Err(); err != nil {
		return 0, err
	}
	return c.r.Read(p)
}

// assetName derives a display name from the last path element of rawURL.
func assetName(rawURL string) string {
	p := rawURL
	if u, err := url.Parse(rawURL); err == nil && u.Path != "" {
		p = u.Path
	}
	p = strings.TrimRight(filepath.ToSlash(p), "/")
	name := path.Base(p)
	if ext := path.Ext(name); ext != "" {
		name = strings.TrimSuffix(name, ext)
	}
	if name == "" || name == "." || name == "/" {
		return "asset"
	}
	return name
}
