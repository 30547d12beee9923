// Package security validates host-supplied names before they touch the file system.
package security

import (
	"errors"
	"fmt"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/srediag/arena-coder/api"
)

var (
	// ErrInvalidIdentifier is returned for class or method names that are not identifiers.
	ErrInvalidIdentifier = errors.New("invalid identifier")
	// ErrPathEscape is returned when a resolved path leaves the policy root.
	ErrPathEscape = errors.New("path escapes workspace")
)

var identifier = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// Policy confines generated files to a workspace root.
type Policy struct {
	root string
}

var _ api.Policy = (*Policy)(nil)

// NewPolicy returns a policy rooted at the absolute form of root.
func NewPolicy(root string) (*Policy, error) {
	if root == "" {
		return nil, errors.New("security: empty workspace root")
	}
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("security: resolve root: %w", err)
	}
	return &Policy{root: abs}, nil
}

// Root returns the absolute workspace root.
func (p *Policy) Root() string {
	return p.root
}

func (p *Policy) ValidateIdentifier(name string) error {
	if !identifier.MatchString(name) {
		return fmt.Errorf("%w: %q", ErrInvalidIdentifier, name)
	}
	return nil
}

func (p *Policy) ResolvePath(elem ...string) (string, error) {
	joined := filepath.Join(append([]string{p.root}, elem...)...)
	rel, err := filepath.Rel(p.root, joined)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrPathEscape, err)
	}
	if rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", fmt.Errorf("%w: %s", ErrPathEscape, filepath.Join(elem...))
	}
	return joined, nil
}
