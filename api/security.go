// Package api defines public API contracts for arena-coder.
package api

// Policy guards what host-supplied names may do on the local file system.
type Policy interface {
	// ValidateIdentifier rejects names that are not plain identifiers.
	ValidateIdentifier(name string) error
	// ResolvePath joins elem under the policy root and rejects escapes.
	ResolvePath(elem ...string) (string, error)
}
