package lifecycle

import (
	"context"
	"errors"
	"fmt"
	"sync"

	cmap "github.com/orcaman/concurrent-map/v2"
	"github.com/panjf2000/ants/v2"

	"github.com/srediag/arena-coder/api"
	"github.com/srediag/arena-coder/internal/logging"
	"github.com/srediag/arena-coder/pkg/config"
)

// Host drives plugins the way the contest applet does. Cacheable plugins are
// kept between problems; the rest are disposed when closed.
type Host struct {
	factory api.Factory
	cache   cmap.ConcurrentMap[string, *Guard]
	active  cmap.ConcurrentMap[string, *Guard]
	// claims holds the names being opened or preloaded.
	claims cmap.ConcurrentMap[string, struct{}]
	pool   *ants.Pool
	log    *logging.Logger
}

var _ api.Lifecycle = (*Host)(nil)

// NewHost returns a host constructing plugins with factory. workers sizes the
// pool used by Preload.
func NewHost(factory api.Factory, workers int) (*Host, error) {
	if factory == nil {
		return nil, errors.New("lifecycle: nil plugin factory")
	}
	log := logging.New("host", nil)
	pool, err := ants.NewPool(workers, ants.WithPanicHandler(func(p interface{}) {
		log.Errorf("preload panicked: %v", p)
	}))
	if err != nil {
		return nil, fmt.Errorf("lifecycle: create preload pool: %w", err)
	}
	return &Host{
		factory: factory,
		cache:   cmap.New[*Guard](),
		active:  cmap.New[*Guard](),
		claims:  cmap.New[struct{}](),
		pool:    pool,
		log:     log,
	}, nil
}

// NewHostFromConfig returns a host whose preload pool has cfg.StartupWorkers workers.
func NewHostFromConfig(factory api.Factory, cfg *config.Config) (*Host, error) {
	if err := config.VerifyConfig(cfg); err != nil {
		return nil, err
	}
	return NewHost(factory, cfg.StartupWorkers)
}

func (h *Host) claim(name string) bool {
	return h.claims.SetIfAbsent(name, struct{}{})
}

func (h *Host) release(name string) {
	h.claims.Remove(name)
}

// construct builds and names a new plugin.
func (h *Host) construct(name string) (*Guard, error) {
	plugin := h.factory()
	if plugin == nil {
		return nil, fmt.Errorf("lifecycle: factory returned no plugin for %q", name)
	}
	g := NewGuard(plugin)
	if err := g.SetName(name); err != nil {
		return nil, err
	}
	return g, nil
}

// Open takes the plugin out of the cache, or constructs it, and runs
// StartUsing, EditorPanel, SetProblemComponent and SetSource.
func (h *Host) Open(ctx context.Context, name string, component api.ProblemComponent, language api.Language, renderer api.Renderer, source string) (api.EntryPoint, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if !h.claim(name) {
		return nil, fmt.Errorf("%w: %s", ErrInUse, name)
	}
	defer h.release(name)
	if h.active.Has(name) {
		return nil, fmt.Errorf("%w: %s", ErrInUse, name)
	}
	g, cached := h.cache.Pop(name)
	if !cached {
		var err error
		if g, err = h.construct(name); err != nil {
			return nil, err
		}
	}
	h.log.Debugf("open %s cached=%t", name, cached)

	steps := []func() error{
		g.StartUsing,
		func() error { _, err := g.EditorPanel(); return err },
		func() error { return g.SetProblemComponent(component, language, renderer) },
		func() error { return g.SetSource(source) },
	}
	for _, step := range steps {
		if err := step(); err != nil {
			_ = g.Dispose()
			return nil, err
		}
	}
	h.active.Set(name, g)
	return g.Plugin(), nil
}

// Source asks an open plugin for its source, as the compile and submit buttons do.
func (h *Host) Source(name string) (string, error) {
	g, ok := h.active.Get(name)
	if !ok {
		return "", fmt.Errorf("%w: %s", ErrNotOpen, name)
	}
	return g.GetSource()
}

// Close runs StopUsing and IsCacheable, then caches or disposes the plugin.
func (h *Host) Close(_ context.Context, name string) error {
	g, ok := h.active.Pop(name)
	if !ok {
		return fmt.Errorf("%w: %s", ErrNotOpen, name)
	}
	if err := g.StopUsing(); err != nil {
		return err
	}
	return h.retire(g)
}

func (h *Host) retire(g *Guard) error {
	cacheable, err := g.IsCacheable()
	if err != nil {
		return err
	}
	if !cacheable {
		return g.Dispose()
	}
	var displaced *Guard
	h.cache.Upsert(g.Name(), g, func(exist bool, old, fresh *Guard) *Guard {
		if exist && old != fresh {
			displaced = old
		}
		return fresh
	})
	if displaced != nil {
		h.log.Debugf("replacing cached %s", g.Name())
		return displaced.Dispose()
	}
	return nil
}

// Preload runs the startup sequence (construct, SetName, StartUsing, StopUsing,
// IsCacheable) for every name on the worker pool and waits for all of them.
func (h *Host) Preload(ctx context.Context, names ...string) error {
	var (
		wg   sync.WaitGroup
		mu   sync.Mutex
		errs []error
	)
	record := func(err error) {
		mu.Lock()
		errs = append(errs, err)
		mu.Unlock()
	}
	for _, name := range names {
		if err := ctx.Err(); err != nil {
			record(err)
			break
		}
		name := name
		wg.Add(1)
		err := h.pool.Submit(func() {
			defer wg.Done()
			if err := h.preload(name); err != nil {
				record(fmt.Errorf("preload %s: %w", name, err))
			}
		})
		if err != nil {
			wg.Done()
			record(fmt.Errorf("preload %s: %w", name, err))
		}
	}
	wg.Wait()
	return errors.Join(errs...)
}

func (h *Host) preload(name string) error {
	if !h.claim(name) {
		return nil
	}
	defer h.release(name)
	if h.cache.Has(name) || h.active.Has(name) {
		return nil
	}
	g, err := h.construct(name)
	if err != nil {
		return err
	}
	if err := g.StartUsing(); err != nil {
		_ = g.Dispose()
		return err
	}
	if err := g.StopUsing(); err != nil {
		_ = g.Dispose()
		return err
	}
	return h.retire(g)
}

// Cached returns the names of cached plugins.
func (h *Host) Cached() []string {
	return h.cache.Keys()
}

// Shutdown disposes every cached and open plugin and releases the pool.
func (h *Host) Shutdown() {
	for _, g := range h.active.Items() {
		_ = g.StopUsing()
		_ = g.Dispose()
	}
	h.active.Clear()
	for _, g := range h.cache.Items() {
		_ = g.Dispose()
	}
	h.cache.Clear()
	h.pool.Release()
}
