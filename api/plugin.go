// Package api defines public API contracts for arena-coder.
package api

// Panel is the display surface a plugin hands to the host coding frame.
type Panel interface {
	Text() string
}

// EntryPoint is the editor plugin contract of the contest applet.
//
// The host calls it in a fixed order; see pkg/lifecycle for the enforced
// sequence. When a problem is opened a fresh or cached plugin receives
// StartUsing, EditorPanel, SetProblemComponent and SetSource, then GetSource
// and Clear in response to user actions, and finally StopUsing and
// IsCacheable. Dispose is called for plugins that are not cached.
type EntryPoint interface {
	// SetName is called once, right after construction, with the unique
	// instance name the user gave the plugin.
	SetName(name string)
	// StartUsing tells the plugin it is about to be used.
	StartUsing()
	// StopUsing tells the plugin it will not be used until the next StartUsing.
	StopUsing()
	// EditorPanel returns the panel embedded in the coding frame.
	EditorPanel() Panel
	// SetProblemComponent hands over the opened problem, the chosen language
	// and a renderer already linked to the problem.
	SetProblemComponent(component ProblemComponent, language Language, renderer Renderer)
	// SetSource passes previously stored source, or "" when there is none.
	SetSource(source string)
	// GetSource returns the source to compile or submit.
	GetSource() (string, error)
	// Clear is called between problems to drop the prior source.
	Clear()
	// IsCacheable reports whether the host may keep the instance for reuse.
	IsCacheable() bool
	Install() error
	Configure() error
	Uninstall() error
	// Dispose releases the plugin. No other method is called afterwards.
	Dispose()
}

// Factory constructs a plugin with no arguments, as the host does.
type Factory func() EntryPoint
