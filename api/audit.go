// Package api defines public API contracts for arena-coder.
package api

// Audit records plugin events such as an opened problem or a generated project.
type Audit interface {
	LogEvent(event string, details map[string]interface{}) error
}
