package lifecycle

import (
	"fmt"
	"sync"

	"github.com/srediag/arena-coder/api"
)

// Guard forwards calls to a plugin only when the documented call order allows
// them. Out-of-order calls never reach the plugin.
type Guard struct {
	mu     sync.Mutex
	plugin api.EntryPoint
	name   string
	state  State
}

// NewGuard wraps a freshly constructed plugin.
func NewGuard(plugin api.EntryPoint) *Guard {
	return &Guard{plugin: plugin, state: StateConstructed}
}

// Plugin returns the wrapped plugin.
func (g *Guard) Plugin() api.EntryPoint { return g.plugin }

// Name returns the name given by SetName.
func (g *Guard) Name() string {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.name
}

// State returns the current state.
func (g *Guard) State() State {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.state
}

// call runs fn when the state is one of allowed and then moves to next.
// next < 0 keeps the state.
func (g *Guard) call(method string, next State, fn func(), allowed ...State) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	ok := false
	for _, s := range allowed {
		if g.state == s {
			ok = true
			break
		}
	}
	if !ok {
		return fmt.Errorf("%w: %s in state %s", ErrOutOfOrder, method, g.state)
	}
	fn()
	if next >= 0 {
		g.state = next
	}
	return nil
}

const keep State = -1

func (g *Guard) SetName(name string) error {
	return g.call("SetName", StateNamed, func() {
		g.name = name
		g.plugin.SetName(name)
	}, StateConstructed)
}

func (g *Guard) StartUsing() error {
	return g.call("StartUsing", StateInUse, g.plugin.StartUsing, StateNamed, StateIdle)
}

func (g *Guard) StopUsing() error {
	return g.call("StopUsing", StateIdle, g.plugin.StopUsing, StateInUse)
}

func (g *Guard) EditorPanel() (api.Panel, error) {
	var p api.Panel
	err := g.call("EditorPanel", keep, func() { p = g.plugin.EditorPanel() }, StateInUse)
	return p, err
}

func (g *Guard) SetProblemComponent(component api.ProblemComponent, language api.Language, renderer api.Renderer) error {
	return g.call("SetProblemComponent", keep, func() {
		g.plugin.SetProblemComponent(component, language, renderer)
	}, StateInUse)
}

func (g *Guard) SetSource(source string) error {
	return g.call("SetSource", keep, func() { g.plugin.SetSource(source) }, StateInUse)
}

func (g *Guard) GetSource() (string, error) {
	var (
		source string
		srcErr error
	)
	if err := g.call("GetSource", keep, func() { source, srcErr = g.plugin.GetSource() }, StateInUse); err != nil {
		return "", err
	}
	return source, srcErr
}

func (g *Guard) Clear() error {
	return g.call("Clear", keep, g.plugin.Clear, StateInUse)
}

func (g *Guard) IsCacheable() (bool, error) {
	var cacheable bool
	err := g.call("IsCacheable", keep, func() { cacheable = g.plugin.IsCacheable() }, StateNamed, StateIdle)
	return cacheable, err
}

func (g *Guard) Install() error {
	var pluginErr error
	if err := g.call("Install", keep, func() { pluginErr = g.plugin.Install() }, StateNamed); err != nil {
		return err
	}
	return pluginErr
}

func (g *Guard) Configure() error {
	var pluginErr error
	if err := g.call("Configure", keep, func() { pluginErr = g.plugin.Configure() }, StateNamed); err != nil {
		return err
	}
	return pluginErr
}

func (g *Guard) Uninstall() error {
	var pluginErr error
	if err := g.call("Uninstall", keep, func() { pluginErr = g.plugin.Uninstall() }, StateNamed); err != nil {
		return err
	}
	return pluginErr
}

// Dispose may be called in any state but once.
func (g *Guard) Dispose() error {
	return g.call("Dispose", StateDisposed, g.plugin.Dispose,
		StateConstructed, StateNamed, StateInUse, StateIdle)
}
