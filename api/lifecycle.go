// Package api defines public API contracts for arena-coder.
package api

import "context"

// Lifecycle is the host side of the plugin contract: it constructs, caches
// and retires plugins in the documented call order.
type Lifecycle interface {
	// Open runs the problem-opened sequence for the named plugin.
	Open(ctx context.Context, name string, component ProblemComponent, language Language, renderer Renderer, source string) (EntryPoint, error)
	// Close runs StopUsing and caches or disposes the plugin.
	Close(ctx context.Context, name string) error
	// Preload runs the startup sequence for the named plugins.
	Preload(ctx context.Context, names ...string) error
}
