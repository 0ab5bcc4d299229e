// package loader fetches and imports 3D assets. A load is exposed as a lazy sequence of
// LoadEvents so callers can observe progress and the final Ready or Failed outcome
// without callbacks leaking into the import code.
package loader

import (
	"context"
	"errors"
	"fmt"
	"iter"
	"net/http"
	"sync"
	"time"

	"github.com/Carmen-Shannon/oxy-showcase/engine/logger"

	"github.com/Carmen-Shannon/automation/tools/worker"
)

// LoaderBackendType identifies the model file format backend to use.
type LoaderBackendType int

const (
	// BackendTypeGLTF selects the glTF/GLB loader backend.
	BackendTypeGLTF LoaderBackendType = iota
)

// progressStep is the minimum progress change reported between two Loading events.
const progressStep = 0.01

// ErrLoaderClosed is delivered as a Failed event by LoadAsync after Close.
var ErrLoaderClosed = errors.New("loader is closed")

// loader is the implementation of the Loader interface.
type loader struct {
	mu *sync.Mutex

	fetcher  fetcher
	client   *http.Client
	backends map[LoaderBackendType]loaderBackend

	timeout time.Duration
	pool    worker.DynamicWorkerPool
	taskID  int
	closed  bool
}

// Loader defines the public-facing interface for loading 3D assets.
// It abstracts the transport (http, file) and the file format (glTF, GLB) behind
// a single event sequence.
type Loader interface {
	// Load returns the lazy event sequence for one load of url. Nothing is fetched until
	// the sequence is ranged over, and each iteration restarts the fetch. The sequence
	// starts with Loading{0}, yields Loading as the body is read, and ends with exactly
	// one Ready or Failed. Breaking out early cancels the read and disposes any asset
	// that was already imported.
	//
	// Parameters:
	//   - ctx: cancels the fetch; a cancelled load ends with Failed
	//   - url: an http(s) URL, a file URL, or a filesystem path
	//
	// Returns:
	//   - iter.Seq[LoadEvent]: the event sequence
	Load(ctx context.Context, url string) iter.Seq[LoadEvent]

	// LoadAsync ranges over Load on the loader's worker pool and hands every event to fn
	// from the worker goroutine. fn must hand events to the owning thread itself.
	//
	// Parameters:
	//   - ctx: cancels the fetch
	//   - url: the asset URL
	//   - fn: receives each event in order
	LoadAsync(ctx context.Context, url string, fn func(LoadEvent))

	// Close stops the worker started by LoadAsync. A load already running finishes first,
	// so callers cancel its context before closing. Later LoadAsync calls fail with
	// ErrLoaderClosed. Safe to call more than once.
	//
	// Returns:
	//   - error: always nil
	Close() error
}

var _ Loader = &loader{}

// NewLoader creates a new Loader instance with the specified backend type and options applied.
//
// Parameters:
//   - backendType: the type of loader backend to use (e.g., BackendTypeGLTF)
//   - options: a variadic list of LoaderBuilderOption functions to configure the Loader
//
// Returns:
//   - Loader: a new instance of Loader configured with the provided backend and options
func NewLoader(backendType LoaderBackendType, options ...LoaderBuilderOption) Loader {
	l := &loader{
		mu:       &sync.Mutex{},
		client:   http.DefaultClient,
		backends: make(map[LoaderBackendType]loaderBackend),
	}

	switch backendType {
	case BackendTypeGLTF:
		l.backends[BackendTypeGLTF] = gltfLoaderBackend{}
	}

	for _, option := range options {
		option(l)
	}
	if l.fetcher == nil {
		l.fetcher = &urlFetcher{client: l.client}
	}
	return l
}

func (l *loader) Load(ctx context.Context, url string) iter.Seq[LoadEvent] {
	return func(yield func(LoadEvent) bool) {
		if !yield(Loading{Progress: 0}) {
			return
		}

		loadCtx := ctx
		if l.timeout > 0 {
			var cancel context.CancelFunc
			loadCtx, cancel = context.WithTimeout(ctx, l.timeout)
			defer cancel()
		}

		stopped := false
		last := 0.0
		data, resolve, err := l.fetcher.Fetch(loadCtx, url, func(frac float64) bool {
			if frac < 0 || (frac-last < progressStep && frac < 1) {
				return true
			}
			last = frac
			if !yield(Loading{Progress: frac}) {
				stopped = true
				return false
			}
			return true
		})
		if stopped {
			return
		}
		if err != nil {
			yield(Failed{Err: l.contextError(loadCtx, err)})
			return
		}
		if last < 1 && !yield(Loading{Progress: 1}) {
			return
		}

		asset, err := l.decode(url, data, resolve)
		if err != nil {
			yield(Failed{Err: l.contextError(loadCtx, err)})
			return
		}
		if loadCtx.Err() != nil {
			asset.Dispose()
			yield(Failed{Err: l.contextError(loadCtx, loadCtx.Err())})
			return
		}
		logger.Debug("imported %q: %d meshes, %d clips", asset.Name, asset.MeshCount(), len(asset.Clips))
		if !yield(Ready{Asset: asset}) {
			asset.Dispose()
		}
	}
}

func (l *loader) LoadAsync(ctx context.Context, url string, fn func(LoadEvent)) {
	l.mu.Lock()
	if l.closed {
		l.mu.Unlock()
		fn(Failed{Err: ErrLoaderClosed})
		return
	}
	// One worker: the pool's stop signals share a channel, and only a lone worker is
	// guaranteed to receive its own.
	if l.pool == nil {
		l.pool = worker.NewDynamicWorkerPool(1, 16, 1*time.Second)
	}
	pool := l.pool
	id := l.taskID
	l.taskID++
	l.mu.Unlock()

	pool.SubmitTask(worker.Task{
		ID: id,
		Do: func() (any, error) {
			for ev := range l.Load(ctx, url) {
				fn(ev)
			}
			return nil, nil
		},
	})
}

func (l *loader) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.closed {
		return nil
	}
	l.closed = true
	if l.pool != nil {
		l.pool.Stop()
		l.pool = nil
	}
	return nil
}

// decode picks a backend and imports the payload. A panic inside a backend becomes an
// error so that a malformed file can never take down the worker.
func (l *loader) decode(url string, data []byte, resolve resourceResolver) (asset *Asset, err error) {
	defer func() {
		if r := recover(); r != nil {
			asset, err = nil, fmt.Errorf("decoder panic: %v", r)
		}
	}()

	backend, err := l.resolveBackend(url, data)
	if err != nil {
		return nil, err
	}
	return backend.Decode(assetName(url), data, resolve)
}

func (l *loader) contextError(ctx context.Context, err error) error {
	if ctx.Err() == context.DeadlineExceeded && l.timeout > 0 {
		return fmt.Errorf("timed out after %s: %w", l.timeout, err)
	}
	return err
}
