// Package api defines public API contracts for arena-coder.
package api

// Health defines the interface for plugin health and liveness.
type Health interface {
	Heartbeat(pluginID string) error
	LivenessCheck(pluginID string) (bool, error)
}
