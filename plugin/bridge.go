/*
 * Copyright 2025 SREDiag Authors
 * Copyright 2023 CloudWeGo Authors
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *     http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

// Package plugin implements the editor plugin the arena host loads. A Bridge
// turns the problem the host opens into a project generated by a language
// support and reads the solution back when the host asks for the source.
package plugin

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/srediag/arena-coder/adapter"
	"github.com/srediag/arena-coder/api"
	"github.com/srediag/arena-coder/internal/logging"
	"github.com/srediag/arena-coder/pkg/audit"
	"github.com/srediag/arena-coder/pkg/config"
	"github.com/srediag/arena-coder/pkg/display"
	"github.com/srediag/arena-coder/pkg/health"
	"github.com/srediag/arena-coder/pkg/languages"
	"github.com/srediag/arena-coder/pkg/security"
)

// ErrNoLanguageSupport is returned by GetSource when the current problem has
// no active language support.
var ErrNoLanguageSupport = errors.New("plugin: no language support active")

// Bridge is the api.EntryPoint handed to the host.
type Bridge struct {
	cfg        *config.Config
	dispatcher *display.Dispatcher
	area       *display.LogArea
	registry   *languages.Registry
	reporter   Reporter
	audit      api.Audit
	recorder   *audit.Recorder
	otel       *adapter.OTel
	gatherer   prometheus.Gatherer
	metrics    *Metrics
	health     *health.Provider
	log        *logging.Logger

	mu       sync.Mutex
	name     string
	support  languages.Support
	language string
	disposed bool
}

var _ api.EntryPoint = (*Bridge)(nil)

// Option customizes a Bridge built by NewWithConfig.
type Option func(*Bridge)

// WithRegistry replaces the language registry built from the configuration.
func WithRegistry(r *languages.Registry) Option {
	return func(b *Bridge) { b.registry = r }
}

// WithReporter replaces the reporter that shows unexpected errors.
func WithReporter(r Reporter) Option {
	return func(b *Bridge) { b.reporter = r }
}

// WithAudit sends audit events to sink in addition to the in-memory recorder.
func WithAudit(sink api.Audit) Option {
	return func(b *Bridge) { b.audit = adapter.FanoutAudit{b.recorder, sink} }
}

// WithTelemetry traces plugin calls through o.
func WithTelemetry(o *adapter.OTel) Option {
	return func(b *Bridge) { b.otel = o }
}

// WithMetricsRegistry registers the plugin metrics on reg instead of a
// private registry.
func WithMetricsRegistry(reg *prometheus.Registry) Option {
	return func(b *Bridge) { b.gatherer = reg }
}

// New is the no-argument constructor the host uses. Configuration comes from
// the environment; an invalid environment falls back to the defaults.
func New() api.EntryPoint {
	log := logging.New("plugin", nil)
	cfg, err := config.Load()
	if err != nil {
		log.Errorf("load config, using defaults: %v", err)
		cfg = config.DefaultConfig()
	}
	logging.SetLevel(cfg.LogLevel)
	logging.SetDebugMode(cfg.DebugMode)

	b, err := NewWithConfig(cfg)
	if err != nil {
		log.Errorf("build plugin: %v", err)
		b = newInert(cfg, err)
	}
	return b
}

// NewFactory returns an api.Factory building bridges from cfg.
func NewFactory(cfg *config.Config, opts ...Option) api.Factory {
	return func() api.EntryPoint {
		b, err := NewWithConfig(cfg, opts...)
		if err != nil {
			return newInert(cfg, err)
		}
		return b
	}
}

// NewWithConfig builds a Bridge from cfg.
func NewWithConfig(cfg *config.Config, opts ...Option) (*Bridge, error) {
	if err := config.VerifyConfig(cfg); err != nil {
		return nil, err
	}
	d := display.NewDispatcher()
	b := &Bridge{
		cfg:        cfg,
		dispatcher: d,
		area:       display.NewLogArea(d),
		recorder:   audit.NewRecorder(0),
		log:        logging.New("plugin", nil),
	}
	b.audit = b.recorder
	for _, opt := range opts {
		opt(b)
	}
	if b.registry == nil {
		registry, err := defaultRegistry(cfg)
		if err != nil {
			d.Close(context.Background())
			return nil, err
		}
		b.registry = registry
	}
	if b.reporter == nil {
		b.reporter = areaReporter{area: b.area, log: b.log}
	}
	if b.otel == nil {
		b.otel = adapter.NopOTel()
	}
	b.wireTelemetry()
	return b, nil
}

func defaultRegistry(cfg *config.Config) (*languages.Registry, error) {
	defs, err := languages.LoadDefinitions(cfg.LanguagesFile)
	if err != nil {
		return nil, err
	}
	policy, err := security.NewPolicy(cfg.Workspace)
	if err != nil {
		return nil, err
	}
	return languages.NewTemplateRegistry(defs, languages.Options{
		Policy:        policy,
		MinFreeBytes:  cfg.MinFreeBytes,
		Retries:       cfg.SubmissionRetries,
		RetryInterval: cfg.SubmissionRetryInterval,
	})
}

func (b *Bridge) wireTelemetry() {
	reg, shared := b.gatherer.(*prometheus.Registry)
	if !shared || reg == nil {
		shared = false
		reg = prometheus.NewRegistry()
		b.gatherer = reg
	}
	// Per-instance gauges only go to a private registry; a shared one would
	// keep the first instance's.
	var (
		pending   func() float64
		healthReg prometheus.Registerer
	)
	if !shared {
		pending = func() float64 { return float64(b.dispatcher.Pending()) }
		healthReg = reg
	}
	b.metrics = NewMetrics(reg, b.cfg.MetricsNamespace, pending)
	b.health = health.NewProvider(healthReg, b.cfg.MetricsNamespace, b.cfg.HeartbeatWindow)
	b.health.AddLivenessCheck("display-loop", func() error {
		if !b.dispatcher.Alive() {
			return display.ErrClosed
		}
		return nil
	})
	b.health.AddLivenessCheck("heartbeat", func() error {
		name := b.Name()
		if name == "" {
			return nil
		}
		_, err := b.health.LivenessCheck(name)
		return err
	})
	b.health.AddReadinessCheck("language-support", func() error {
		if b.currentSupport() == nil {
			return ErrNoLanguageSupport
		}
		return nil
	})
}

// newInert returns a Bridge that only reports why it could not be built.
func newInert(cfg *config.Config, cause error) *Bridge {
	d := display.NewDispatcher()
	b := &Bridge{
		cfg:        cfg,
		dispatcher: d,
		area:       display.NewLogArea(d),
		registry:   languages.NewRegistry(),
		recorder:   audit.NewRecorder(0),
		otel:       adapter.NopOTel(),
		log:        logging.New("plugin", nil),
	}
	b.audit = b.recorder
	b.reporter = areaReporter{area: b.area, log: b.log}
	b.wireTelemetry()
	b.reporter.Report(context.Background(), fmt.Errorf("plugin unavailable: %w", cause))
	return b
}

// SetName records the unique instance name given by the host.
func (b *Bridge) SetName(name string) {
	b.mu.Lock()
	b.name = name
	b.mu.Unlock()
	b.beat()
	b.log.Debugf("named %q", name)
}

// Name returns the instance name.
func (b *Bridge) Name() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.name
}

// StartUsing refreshes the log area when the plugin becomes the active editor.
func (b *Bridge) StartUsing() {
	if err := b.area.Reset(context.Background()); err != nil {
		b.log.Debugf("start using: %v", err)
	}
	b.beat()
}

// StopUsing does nothing; the generated project outlives the editor switch.
func (b *Bridge) StopUsing() {
	b.log.Tracef("stop using")
}

// EditorPanel returns the log area.
func (b *Bridge) EditorPanel() api.Panel {
	return b.area
}

// SetSource ignores the host's copy of the source; the editor owns the file.
func (b *Bridge) SetSource(source string) {
	b.log.Debugf("ignoring source from host (%d bytes)", len(source))
}

// GetSource returns the solution the current language support reads back.
// A failed read is reported and yields an empty source.
func (b *Bridge) GetSource() (string, error) {
	b.beat()
	support := b.currentSupport()
	if support == nil {
		return "", ErrNoLanguageSupport
	}
	ctx := context.Background()
	source, err := support.Submission(ctx)
	if err != nil {
		b.report(ctx, fmt.Errorf("read submission: %w", err))
		return "", nil
	}
	return source, nil
}

// Clear empties the log area.
func (b *Bridge) Clear() {
	if err := b.area.Reset(context.Background()); err != nil {
		b.log.Debugf("clear: %v", err)
	}
}

// IsCacheable reports whether the host may keep this instance after StopUsing.
func (b *Bridge) IsCacheable() bool {
	return b.cfg.Cacheable
}

// Install does nothing.
func (b *Bridge) Install() error { return nil }

// Configure does nothing; settings come from the environment.
func (b *Bridge) Configure() error { return nil }

// Uninstall does nothing.
func (b *Bridge) Uninstall() error { return nil }

// Dispose stops the display loop. Later calls are inert.
func (b *Bridge) Dispose() {
	b.dispose(context.Background())
}

// dispose does not wait for the loop when ctx belongs to it.
func (b *Bridge) dispose(ctx context.Context) {
	b.mu.Lock()
	if b.disposed {
		b.mu.Unlock()
		return
	}
	b.disposed = true
	name := b.name
	b.support = nil
	b.language = ""
	b.mu.Unlock()

	b.dispatcher.Close(ctx)
	b.health.Forget(name)
	b.log.Debugf("disposed %q", name)
}

// Flush waits until every queued display update has run.
func (b *Bridge) Flush(ctx context.Context) error {
	return b.dispatcher.Flush(ctx)
}

// Language returns the keyword of the active language support, if any.
func (b *Bridge) Language() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.language
}

// Gatherer exposes the plugin metrics.
func (b *Bridge) Gatherer() prometheus.Gatherer {
	return b.gatherer
}

// Health serves the liveness and readiness endpoints.
func (b *Bridge) Health() http.Handler {
	return b.health.Handler()
}

// Audit returns the events recorded by this instance.
func (b *Bridge) Audit() []audit.Event {
	return b.recorder.Events()
}

func (b *Bridge) currentSupport() languages.Support {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.support
}

func (b *Bridge) setSupport(s languages.Support, language string) {
	b.mu.Lock()
	b.support = s
	b.language = language
	b.mu.Unlock()
}

func (b *Bridge) beat() {
	name := b.Name()
	if name == "" {
		return
	}
	if err := b.health.Heartbeat(name); err != nil {
		b.log.Debugf("heartbeat: %v", err)
	}
}

func (b *Bridge) report(ctx context.Context, err error) {
	b.metrics.Errors.Inc()
	b.event(audit.EventError, map[string]interface{}{"error": err.Error()})
	b.reporter.Report(ctx, err)
}

func (b *Bridge) event(name string, details map[string]interface{}) {
	if err := b.audit.LogEvent(name, details); err != nil {
		b.log.Warnf("audit %s: %v", name, err)
	}
}
