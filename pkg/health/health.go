// Package health exposes plugin liveness and readiness through a healthcheck handler.
package health

import (
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/heptiolabs/healthcheck"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/srediag/arena-coder/api"
)

// ErrStale is returned by LivenessCheck when no heartbeat arrived within the window.
var ErrStale = errors.New("health: heartbeat is stale")

// Provider tracks heartbeats per plugin and serves liveness and readiness checks.
// It does not listen on its own; the embedding host mounts Handler if it wants to.
type Provider struct {
	handler healthcheck.Handler
	window  time.Duration

	mu    sync.RWMutex
	beats map[string]time.Time
	now   func() time.Time
}

var _ api.Health = (*Provider)(nil)

// NewProvider returns a provider whose check results are also exported as
// gauges on reg under namespace. A nil reg disables the gauges.
func NewProvider(reg prometheus.Registerer, namespace string, window time.Duration) *Provider {
	var h healthcheck.Handler
	if reg != nil {
		h = healthcheck.NewMetricsHandler(reg, namespace)
	} else {
		h = healthcheck.NewHandler()
	}
	return &Provider{
		handler: h,
		window:  window,
		beats:   make(map[string]time.Time),
		now:     time.Now,
	}
}

// AddLivenessCheck registers a check that fails /live when it returns an error.
func (p *Provider) AddLivenessCheck(name string, check func() error) {
	p.handler.AddLivenessCheck(name, check)
}

// AddReadinessCheck registers a check that fails /ready when it returns an error.
func (p *Provider) AddReadinessCheck(name string, check func() error) {
	p.handler.AddReadinessCheck(name, check)
}

// Handler serves /live and /ready.
func (p *Provider) Handler() http.Handler {
	return p.handler
}

// Heartbeat records that pluginID is alive now.
func (p *Provider) Heartbeat(pluginID string) error {
	if pluginID == "" {
		return errors.New("health: empty plugin id")
	}
	p.mu.Lock()
	p.beats[pluginID] = p.now()
	p.mu.Unlock()
	return nil
}

// LivenessCheck reports whether pluginID sent a heartbeat within the window.
// A zero window only requires one heartbeat ever.
func (p *Provider) LivenessCheck(pluginID string) (bool, error) {
	p.mu.RLock()
	last, ok := p.beats[pluginID]
	p.mu.RUnlock()
	if !ok {
		return false, fmt.Errorf("health: no heartbeat from %q", pluginID)
	}
	if p.window > 0 && p.now().Sub(last) > p.window {
		return false, fmt.Errorf("%w: %q last seen %s ago", ErrStale, pluginID, p.now().Sub(last))
	}
	return true, nil
}

// Forget drops the heartbeat state of pluginID.
func (p *Provider) Forget(pluginID string) {
	p.mu.Lock()
	delete(p.beats, pluginID)
	p.mu.Unlock()
}
