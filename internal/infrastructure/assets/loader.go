// Package assets loads decoded resources from an fs.FS with cancellation:
// a batch that is cancelled or fails releases everything it already
// decoded, so nothing half-loaded reaches a scene.
package assets

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"path"
	"sync"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// ErrNotLoaded is returned by Require for names no batch has loaded.
var ErrNotLoaded = errors.New("assets: not loaded")

// DecodeFunc turns a file's contents into a resource.
type DecodeFunc[T any] func(r io.Reader) (T, error)

// ReleaseFunc frees a resource (GPU memory for textures).
type ReleaseFunc[T any] func(T)

// Loader caches resources by name. Names map to <dir>/<name><ext>.
// Entries are reference counted: every successful LoadAll takes one
// reference per distinct name and Unload drops one, so owners sharing a
// resource never release it under each other.
// Lookups are safe from any goroutine; loads are usually run off the
// frame goroutine by the scene loader.
type Loader[T any] struct {
	fsys    fs.FS
	dir     string
	ext     string
	decode  DecodeFunc[T]
	release ReleaseFunc[T]
	workers int
	log     *zap.Logger

	mu    sync.RWMutex
	cache map[string]*entry[T]
}

type entry[T any] struct {
	v    T
	refs int
}

// NewLoader creates a loader reading <dir>/<name><ext> from fsys.
func NewLoader[T any](fsys fs.FS, dir, ext string, decode DecodeFunc[T], release ReleaseFunc[T], log *zap.Logger) *Loader[T] {
	if log == nil {
		log = zap.NewNop()
	}
	return &Loader[T]{
		fsys:    fsys,
		dir:     dir,
		ext:     ext,
		decode:  decode,
		release: release,
		workers: 4,
		log:     log,
		cache:   make(map[string]*entry[T]),
	}
}

// Get returns a loaded resource.
func (l *Loader[T]) Get(name string) (T, bool) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	en, ok := l.cache[name]
	if !ok {
		var zero T
		return zero, false
	}
	return en.v, true
}

// Require is Get with an error wrapping ErrNotLoaded for unknown names.
func (l *Loader[T]) Require(name string) (T, error) {
	v, ok := l.Get(name)
	if !ok {
		return v, fmt.Errorf("%s%s: %w", name, l.ext, ErrNotLoaded)
	}
	return v, nil
}

// Len returns the number of cached resources.
func (l *Loader[T]) Len() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.cache)
}

// Load loads a single resource, or returns the cached one.
func (l *Loader[T]) Load(ctx context.Context, name string) (T, error) {
	if err := l.LoadAll(ctx, []string{name}); err != nil {
		var zero T
		return zero, err
	}
	v, _ := l.Get(name)
	return v, nil
}

// LoadAll decodes every name not already cached, concurrently, and takes a
// reference on each distinct name. On error or cancellation the resources
// decoded by this call are released, no references are kept and nothing
// new is cached; ctx.Err() is returned for cancellation.
func (l *Loader[T]) LoadAll(ctx context.Context, names []string) error {
	pinned, pending := l.acquire(names)
	if len(pending) == 0 {
		if err := ctx.Err(); err != nil {
			l.Unload(pinned...)
			return err
		}
		return nil
	}

	decoded := make([]T, len(pending))
	done := make([]bool, len(pending))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(l.workers)
	for i, name := range pending {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			v, err := l.decodeFile(name)
			if err != nil {
				return err
			}
			decoded[i], done[i] = v, true
			return nil
		})
	}
	err := g.Wait()
	if err == nil {
		err = ctx.Err()
	}

	if err != nil {
		released := 0
		for i := range pending {
			if done[i] {
				l.release(decoded[i])
				released++
			}
		}
		l.Unload(pinned...)
		l.log.Warn("asset batch aborted",
			zap.Int("requested", len(pending)),
			zap.Int("released", released),
			zap.Error(err),
		)
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		return err
	}

	l.mu.Lock()
	for i, name := range pending {
		if en, ok := l.cache[name]; ok {
			// Raced with another batch; keep the first.
			en.refs++
			l.release(decoded[i])
			continue
		}
		l.cache[name] = &entry[T]{v: decoded[i], refs: 1}
	}
	l.mu.Unlock()

	l.log.Debug("assets loaded", zap.Strings("names", pending))
	return nil
}

// Unload drops one reference on each distinct name and releases the
// resources nobody holds any more. Unknown names are ignored.
func (l *Loader[T]) Unload(names ...string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	for _, name := range distinct(names) {
		en, ok := l.cache[name]
		if !ok {
			continue
		}
		if en.refs--; en.refs <= 0 {
			l.release(en.v)
			delete(l.cache, name)
		}
	}
}

// Refs returns how many owners hold name.
func (l *Loader[T]) Refs(name string) int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	if en, ok := l.cache[name]; ok {
		return en.refs
	}
	return 0
}

// Close releases every cached resource.
func (l *Loader[T]) Close() {
	l.mu.Lock()
	defer l.mu.Unlock()
	for name, en := range l.cache {
		l.release(en.v)
		delete(l.cache, name)
	}
}

// acquire references the cached names and returns the rest for decoding.
func (l *Loader[T]) acquire(names []string) (pinned, pending []string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	for _, n := range distinct(names) {
		if en, ok := l.cache[n]; ok {
			en.refs++
			pinned = append(pinned, n)
			continue
		}
		pending = append(pending, n)
	}
	return pinned, pending
}

func distinct(names []string) []string {
	seen := make(map[string]bool, len(names))
	out := make([]string, 0, len(names))
	for _, n := range names {
		if !seen[n] {
			seen[n] = true
			out = append(out, n)
		}
	}
	return out
}

func (l *Loader[T]) decodeFile(name string) (T, error) {
	var zero T
	p := path.Join(l.dir, name+l.ext)
	f, err := l.fsys.Open(p)
	if err != nil {
		return zero, fmt.Errorf("open asset %s: %w", p, err)
	}
	defer f.Close()

	v, err := l.decode(f)
	if err != nil {
		return zero, fmt.Errorf("decode asset %s: %w", p, err)
	}
	return v, nil
}
