// Package languages resolves a language keyword to the generator that turns a
// problem.Statement into a project on disk.
package languages

import (
	"context"
	"errors"

	"github.com/srediag/arena-coder/api"
	"github.com/srediag/arena-coder/pkg/problem"
)

// Language keywords understood by the registry.
const (
	CPP    = "cpp"
	Java   = "java"
	CSharp = "csharp"
	Python = "python"
)

var (
	// ErrSupportNotFound is returned by Registry.Create when no generator is
	// installed for a supported language.
	ErrSupportNotFound = errors.New("languages: no support installed")
	// ErrNoProject is returned by Submission before any project was created.
	ErrNoProject = errors.New("languages: no project created yet")
)

// CreatedProject describes a generated project.
type CreatedProject struct {
	Language     string
	Dir          string
	SolutionFile string
	// Title is the statement title, the class name when it has none.
	Title string
	// Description is what the plugin shows to the user.
	Description string
}

// Support generates projects for one language and reads the solution back.
type Support interface {
	CreateProject(ctx context.Context, statement *problem.Statement) (*CreatedProject, error)
	Submission(ctx context.Context) (string, error)
}

// NameFor maps a host language to its keyword. Only C++, Java, C# and Python
// are supported.
func NameFor(language api.Language) (string, bool) {
	switch language.ID {
	case api.CPP.ID:
		return CPP, true
	case api.Java.ID:
		return Java, true
	case api.CSharp.ID:
		return CSharp, true
	case api.Python.ID:
		return Python, true
	}
	return "", false
}
